package tally

// ParticleStore is the view of the particle data the merge step needs.
type ParticleStore interface {
	NLocal() int
	NGhost() int
	NAll() int

	// FirstOwned returns the group-inclusion boundary for the f·r virial
	// path, or -1 when every local atom participates.
	FirstOwned() int

	Positions() []float64

	// ForceArena returns the per-thread force arena, nthreads*nall*3
	// values with the canonical array in the thread-0 region.
	ForceArena() []float64

	// TorqueArena returns the per-thread torque arena, or nil when
	// torques are not in use.
	TorqueArena() []float64
}

// Reduce merges the calling thread's accumulator into the category's shared
// totals. It is cooperative: every worker must call it after finishing its
// share of the category, since it synchronizes on the pool barrier before
// any cross-thread read. The critical section is O(1) per thread.
//
// When this category is the last one scheduled for the timestep, Reduce also
// folds the per-thread force and torque arenas into the canonical arrays.
func (e *Engine) Reduce(st ParticleStore, thr *ThreadData) {
	nall := st.NAll()
	nthreads := e.pool.nthreads
	tid := thr.tid
	fl := e.flags()

	switch e.style {
	case StylePair:
		p := e.pair
		if p.FdotR {
			// forces must reflect only this category's contribution,
			// so this runs before any cross-category force mixing
			e.pool.Barrier()
			f := st.ForceArena()[tid*nall*3 : (tid+1)*nall*3]
			thr.VirialFdotr(st.Positions(), f, st.NLocal(), st.NGhost(), st.FirstOwned())
		}
		if fl.any() {
			e.pool.Barrier()
			e.pool.critical(func() {
				if fl.GlobalEnergy {
					p.EngVdwl += thr.EngVdwl
					p.EngCoul += thr.EngCoul
				}
				if fl.GlobalVirial {
					p.Virial.Add(thr.VirPair)
				}
			})
		}

	default:
		t := e.bonded
		if fl.any() {
			e.pool.Barrier()
			e.pool.critical(func() {
				if fl.GlobalEnergy {
					t.Energy += e.localEnergy(thr)
				}
				if fl.GlobalVirial {
					t.Virial.Add(*e.localVirial(thr))
				}
			})
		}
	}

	if fl.AtomEnergy {
		e.pool.Barrier()
		reduceFloats(e.eatomArena(), nall, nthreads, 1, tid)
	}
	if fl.AtomVirial {
		e.pool.Barrier()
		reduceVirials(e.vatomArena(), nall, nthreads, tid)
	}

	if e.style == e.pool.LastStyle() {
		e.pool.Barrier()
		reduceFloats(st.ForceArena(), nall, nthreads, 3, tid)
		if torque := st.TorqueArena(); torque != nil {
			reduceFloats(torque, nall, nthreads, 3, tid)
		}
	}
}

func (e *Engine) localEnergy(thr *ThreadData) float64 {
	switch e.style {
	case StyleBond:
		return thr.EngBond
	case StyleAngle:
		return thr.EngAngl
	case StyleDihedral:
		return thr.EngDihd
	case StyleImproper:
		return thr.EngImpr
	case StyleKSpace:
		return thr.EngKspc
	}
	return thr.EngVdwl + thr.EngCoul
}

// reduceFloats folds all thread slices of a flat arena into the thread-0
// slice. The atom-index range is split across threads so each reduces a
// disjoint contiguous chunk; non-canonical slices are zeroed, which makes a
// repeated reduction a no-op.
func reduceFloats(data []float64, nall, nthreads, ndim, tid int) {
	if nthreads < 2 {
		return
	}
	nvals := ndim * nall
	chunk := nvals/nthreads + 1
	from := tid * chunk
	to := from + chunk
	if to > nvals {
		to = nvals
	}
	for m := 1; m < nthreads; m++ {
		offs := m * nvals
		for i := from; i < to; i++ {
			data[i] += data[offs+i]
			data[offs+i] = 0
		}
	}
}

// reduceVirials is reduceFloats for the 6-component per-atom virial arena.
func reduceVirials(data []Virial, nall, nthreads, tid int) {
	if nthreads < 2 {
		return
	}
	chunk := nall/nthreads + 1
	from := tid * chunk
	to := from + chunk
	if to > nall {
		to = nall
	}
	for m := 1; m < nthreads; m++ {
		offs := m * nall
		for i := from; i < to; i++ {
			data[i].Add(data[offs+i])
			data[offs+i] = Virial{}
		}
	}
}
