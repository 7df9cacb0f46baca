package potential

import (
	"github.com/san-kum/mdtally/internal/atoms"
	"github.com/san-kum/mdtally/internal/tally"
)

// LJCut is a Lennard-Jones potential with a plain radial cutoff.
//
// Newton selects the evaluation regime: with Newton on, every pair is
// evaluated once and both atoms receive force and full tally credit; with
// Newton off, ghost partners receive no force and the tally engine splits
// credit between locally owned atoms.
type LJCut struct {
	Epsilon float64
	Sigma   float64
	Cutoff  float64
	Newton  bool
}

// Compute evaluates the calling thread's chunk of local atoms against all
// higher-indexed partners.
func (p *LJCut) Compute(st *atoms.Store, eng *tally.Engine, thr *tally.ThreadData) {
	nlocal := st.NLocal()
	nall := st.NAll()
	from, to := splitRange(nlocal, st.NThreads(), thr.Tid())

	x := st.X
	f := st.ForceSlice(thr.Tid())
	cut2 := p.Cutoff * p.Cutoff

	sigma6 := p.Sigma * p.Sigma * p.Sigma * p.Sigma * p.Sigma * p.Sigma
	c6 := 4.0 * p.Epsilon * sigma6
	c12 := 4.0 * p.Epsilon * sigma6 * sigma6

	for i := from; i < to; i++ {
		xi, yi, zi := x[3*i], x[3*i+1], x[3*i+2]
		for j := i + 1; j < nall; j++ {
			delx := xi - x[3*j]
			dely := yi - x[3*j+1]
			delz := zi - x[3*j+2]
			r2 := delx*delx + dely*dely + delz*delz
			if r2 > cut2 || r2 == 0 {
				continue
			}

			r2inv := 1.0 / r2
			r6inv := r2inv * r2inv * r2inv
			evdwl := r6inv * (c12*r6inv - c6)
			fpair := r6inv * (12.0*c12*r6inv - 6.0*c6) * r2inv

			f[3*i] += delx * fpair
			f[3*i+1] += dely * fpair
			f[3*i+2] += delz * fpair
			if p.Newton || j < nlocal {
				f[3*j] -= delx * fpair
				f[3*j+1] -= dely * fpair
				f[3*j+2] -= delz * fpair
			}

			eng.Tally(i, j, nlocal, p.Newton, evdwl, 0, fpair, delx, dely, delz, thr)
		}
	}
}

// splitRange partitions [0, n) into contiguous chunks, one per thread.
func splitRange(n, nthreads, tid int) (int, int) {
	chunk := (n + nthreads - 1) / nthreads
	from := tid * chunk
	to := from + chunk
	if from > n {
		from = n
	}
	if to > n {
		to = n
	}
	return from, to
}
