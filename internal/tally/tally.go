package tally

// The tally family runs once per interaction inside each worker's evaluation
// loop. Every operation writes only to the calling thread's accumulator and
// its exclusive arena slices.
//
// Ownership rule: an atom with index >= nlocal is a ghost. In half mode
// (newton == false) only locally owned atoms are credited, each with half
// the contribution; in newton mode the caller guarantees each interaction is
// evaluated exactly once, so the full contribution is added without gating.

func (e *Engine) addGlobalEnergy(thr *ThreadData, e1, e2 float64) {
	switch e.style {
	case StylePair:
		thr.EngVdwl += e1
		thr.EngCoul += e2
	case StyleBond:
		thr.EngBond += e1 + e2
	case StyleAngle:
		thr.EngAngl += e1 + e2
	case StyleDihedral:
		thr.EngDihd += e1 + e2
	case StyleImproper:
		thr.EngImpr += e1 + e2
	case StyleKSpace:
		thr.EngKspc += e1 + e2
	}
}

func (e *Engine) localVirial(thr *ThreadData) *Virial {
	switch e.style {
	case StyleBond:
		return &thr.VirBond
	case StyleAngle:
		return &thr.VirAngl
	case StyleDihedral:
		return &thr.VirDihd
	case StyleImproper:
		return &thr.VirImpr
	case StyleKSpace:
		return &thr.VirKspc
	}
	return &thr.VirPair
}

// TallyEnergy tallies the two energy terms of a pair-shaped interaction.
func (e *Engine) TallyEnergy(i, j, nlocal int, newton bool, evdwl, ecoul float64, thr *ThreadData) {
	fl := e.flags()
	if fl.GlobalEnergy {
		if newton {
			e.addGlobalEnergy(thr, evdwl, ecoul)
		} else {
			if i < nlocal {
				e.addGlobalEnergy(thr, 0.5*evdwl, 0.5*ecoul)
			}
			if j < nlocal {
				e.addGlobalEnergy(thr, 0.5*evdwl, 0.5*ecoul)
			}
		}
	}
	if fl.AtomEnergy {
		// per-atom credit is always a 50/50 split, gated by ownership
		half := 0.5 * (evdwl + ecoul)
		if newton || i < nlocal {
			thr.eatom[i] += half
		}
		if newton || j < nlocal {
			thr.eatom[j] += half
		}
	}
}

func (e *Engine) tallyVirialPair(i, j, nlocal int, newton bool, v Virial, thr *ThreadData) {
	fl := e.flags()
	if e.globalVirial(fl) {
		va := e.localVirial(thr)
		if newton {
			va.Add(v)
		} else {
			if i < nlocal {
				va.AddScaled(0.5, v)
			}
			if j < nlocal {
				va.AddScaled(0.5, v)
			}
		}
	}
	if fl.AtomVirial {
		if newton || i < nlocal {
			thr.vatom[i].AddScaled(0.5, v)
		}
		if newton || j < nlocal {
			thr.vatom[j].AddScaled(0.5, v)
		}
	}
}

// Tally tallies energy and virial for a pair-shaped interaction with a
// radial force: f = fpair * delta.
func (e *Engine) Tally(i, j, nlocal int, newton bool, evdwl, ecoul, fpair, delx, dely, delz float64, thr *ThreadData) {
	fl := e.flags()
	if fl.anyEnergy() {
		e.TallyEnergy(i, j, nlocal, newton, evdwl, ecoul, thr)
	}
	if fl.anyVirial() {
		v := Virial{
			delx * delx * fpair,
			dely * dely * fpair,
			delz * delz * fpair,
			delx * dely * fpair,
			delx * delz * fpair,
			dely * delz * fpair,
		}
		e.tallyVirialPair(i, j, nlocal, newton, v, thr)
	}
}

// TallyXYZ is Tally with explicit force components instead of a magnitude.
func (e *Engine) TallyXYZ(i, j, nlocal int, newton bool, evdwl, ecoul, fx, fy, fz, delx, dely, delz float64, thr *ThreadData) {
	fl := e.flags()
	if fl.anyEnergy() {
		e.TallyEnergy(i, j, nlocal, newton, evdwl, ecoul, thr)
	}
	if fl.anyVirial() {
		v := Virial{
			delx * fx,
			dely * fy,
			delz * fz,
			delx * fy,
			delx * fz,
			dely * fz,
		}
		e.tallyVirialPair(i, j, nlocal, newton, v, thr)
	}
}

// Tally3 tallies a three-body interaction. The caller guarantees newton
// semantics, so shares are unconditional. The virial decomposition is
// v = drji*fj + drki*fk.
func (e *Engine) Tally3(i, j, k int, evdwl, ecoul float64, fj, fk, drji, drki [3]float64, thr *ThreadData) {
	fl := e.flags()
	if fl.anyEnergy() {
		if fl.GlobalEnergy {
			e.addGlobalEnergy(thr, evdwl, ecoul)
		}
		if fl.AtomEnergy {
			third := (evdwl + ecoul) / 3.0
			thr.eatom[i] += third
			thr.eatom[j] += third
			thr.eatom[k] += third
		}
	}
	if fl.anyVirial() {
		v := Virial{
			drji[0]*fj[0] + drki[0]*fk[0],
			drji[1]*fj[1] + drki[1]*fk[1],
			drji[2]*fj[2] + drki[2]*fk[2],
			drji[0]*fj[1] + drki[0]*fk[1],
			drji[0]*fj[2] + drki[0]*fk[2],
			drji[1]*fj[2] + drki[1]*fk[2],
		}
		if e.globalVirial(fl) {
			e.localVirial(thr).Add(v)
		}
		if fl.AtomVirial {
			thr.vatom[i].AddScaled(1.0/3.0, v)
			thr.vatom[j].AddScaled(1.0/3.0, v)
			thr.vatom[k].AddScaled(1.0/3.0, v)
		}
	}
}

// Tally4 tallies a four-body interaction, newton semantics assumed.
// v = drim*fi + drjm*fj + drkm*fk.
func (e *Engine) Tally4(i, j, k, m int, evdwl float64, fi, fj, fk, drim, drjm, drkm [3]float64, thr *ThreadData) {
	fl := e.flags()
	if fl.anyEnergy() {
		if fl.GlobalEnergy {
			e.addGlobalEnergy(thr, evdwl, 0)
		}
		if fl.AtomEnergy {
			quarter := 0.25 * evdwl
			thr.eatom[i] += quarter
			thr.eatom[j] += quarter
			thr.eatom[k] += quarter
			thr.eatom[m] += quarter
		}
	}
	if fl.anyVirial() {
		v := Virial{
			drim[0]*fi[0] + drjm[0]*fj[0] + drkm[0]*fk[0],
			drim[1]*fi[1] + drjm[1]*fj[1] + drkm[1]*fk[1],
			drim[2]*fi[2] + drjm[2]*fj[2] + drkm[2]*fk[2],
			drim[0]*fi[1] + drjm[0]*fj[1] + drkm[0]*fk[1],
			drim[0]*fi[2] + drjm[0]*fj[2] + drkm[0]*fk[2],
			drim[1]*fi[2] + drjm[1]*fj[2] + drkm[1]*fk[2],
		}
		if e.globalVirial(fl) {
			e.localVirial(thr).Add(v)
		}
		if fl.AtomVirial {
			thr.vatom[i].AddScaled(0.25, v)
			thr.vatom[j].AddScaled(0.25, v)
			thr.vatom[k].AddScaled(0.25, v)
			thr.vatom[m].AddScaled(0.25, v)
		}
	}
}

// TallyList spreads an interaction across an explicit atom list, newton
// semantics assumed. The supplied virial v is the full interaction virial;
// each listed atom receives v/len(list). The caller must not pass an empty
// list.
func (e *Engine) TallyList(list []int, ecoul float64, v Virial, thr *ThreadData) {
	fl := e.flags()
	n := float64(len(list))
	if fl.anyEnergy() {
		if fl.GlobalEnergy {
			e.addGlobalEnergy(thr, 0, ecoul)
		}
		if fl.AtomEnergy {
			share := ecoul / n
			for _, idx := range list {
				thr.eatom[idx] += share
			}
		}
	}
	if fl.anyVirial() {
		if e.globalVirial(fl) {
			e.localVirial(thr).Add(v)
		}
		if fl.AtomVirial {
			for _, idx := range list {
				thr.vatom[idx].AddScaled(1.0/n, v)
			}
		}
	}
}

// TallyDihedral tallies a four-body dihedral with ownership-aware scaling.
// In newton mode the full contribution is credited; otherwise energy and
// global virial scale by ownedCount/4 and per-atom quarter shares are
// written only for owned atoms.
// v = vb1*f1 + vb2*f3 + (vb3+vb2)*f4.
func (e *Engine) TallyDihedral(i1, i2, i3, i4, nlocal int, newton bool, edihedral float64,
	f1, f3, f4, vb1, vb2, vb3 [3]float64, thr *ThreadData) {

	fl := e.flags()
	cnt := 0
	if !newton {
		if i1 < nlocal {
			cnt++
		}
		if i2 < nlocal {
			cnt++
		}
		if i3 < nlocal {
			cnt++
		}
		if i4 < nlocal {
			cnt++
		}
	}

	if fl.anyEnergy() {
		quarter := 0.25 * edihedral
		if fl.GlobalEnergy {
			if newton {
				thr.EngDihd += edihedral
			} else {
				thr.EngDihd += float64(cnt) * quarter
			}
		}
		if fl.AtomEnergy {
			if newton || i1 < nlocal {
				thr.eatom[i1] += quarter
			}
			if newton || i2 < nlocal {
				thr.eatom[i2] += quarter
			}
			if newton || i3 < nlocal {
				thr.eatom[i3] += quarter
			}
			if newton || i4 < nlocal {
				thr.eatom[i4] += quarter
			}
		}
	}

	if fl.anyVirial() {
		v := Virial{
			vb1[0]*f1[0] + vb2[0]*f3[0] + (vb3[0]+vb2[0])*f4[0],
			vb1[1]*f1[1] + vb2[1]*f3[1] + (vb3[1]+vb2[1])*f4[1],
			vb1[2]*f1[2] + vb2[2]*f3[2] + (vb3[2]+vb2[2])*f4[2],
			vb1[0]*f1[1] + vb2[0]*f3[1] + (vb3[0]+vb2[0])*f4[1],
			vb1[0]*f1[2] + vb2[0]*f3[2] + (vb3[0]+vb2[0])*f4[2],
			vb1[1]*f1[2] + vb2[1]*f3[2] + (vb3[1]+vb2[1])*f4[2],
		}
		if e.globalVirial(fl) {
			if newton {
				thr.VirDihd.Add(v)
			} else {
				thr.VirDihd.AddScaled(0.25*float64(cnt), v)
			}
		}
		if fl.AtomVirial {
			// quarter share per owned atom, mirroring the energy split
			if newton || i1 < nlocal {
				thr.vatom[i1].AddScaled(0.25, v)
			}
			if newton || i2 < nlocal {
				thr.vatom[i2].AddScaled(0.25, v)
			}
			if newton || i3 < nlocal {
				thr.vatom[i3].AddScaled(0.25, v)
			}
			if newton || i4 < nlocal {
				thr.vatom[i4].AddScaled(0.25, v)
			}
		}
	}
}

// TallyVirial2 adds the half-split per-atom virial of a radial pair force,
// newton semantics assumed.
func (e *Engine) TallyVirial2(i, j int, fpair float64, drij [3]float64, thr *ThreadData) {
	if !e.flags().AtomVirial {
		return
	}
	v := Virial{
		0.5 * drij[0] * drij[0] * fpair,
		0.5 * drij[1] * drij[1] * fpair,
		0.5 * drij[2] * drij[2] * fpair,
		0.5 * drij[0] * drij[1] * fpair,
		0.5 * drij[0] * drij[2] * fpair,
		0.5 * drij[1] * drij[2] * fpair,
	}
	thr.vatom[i].Add(v)
	thr.vatom[j].Add(v)
}

// TallyVirial3 adds third-split per-atom virials of a three-body force.
func (e *Engine) TallyVirial3(i, j, k int, fi, fj, drik, drjk [3]float64, thr *ThreadData) {
	if !e.flags().AtomVirial {
		return
	}
	const third = 1.0 / 3.0
	v := Virial{
		third * (drik[0]*fi[0] + drjk[0]*fj[0]),
		third * (drik[1]*fi[1] + drjk[1]*fj[1]),
		third * (drik[2]*fi[2] + drjk[2]*fj[2]),
		third * (drik[0]*fi[1] + drjk[0]*fj[1]),
		third * (drik[0]*fi[2] + drjk[0]*fj[2]),
		third * (drik[1]*fi[2] + drjk[1]*fj[2]),
	}
	thr.vatom[i].Add(v)
	thr.vatom[j].Add(v)
	thr.vatom[k].Add(v)
}

// TallyVirial4 adds quarter-split per-atom virials of a four-body force.
func (e *Engine) TallyVirial4(i, j, k, m int, fi, fj, fk, drim, drjm, drkm [3]float64, thr *ThreadData) {
	if !e.flags().AtomVirial {
		return
	}
	v := Virial{
		0.25 * (drim[0]*fi[0] + drjm[0]*fj[0] + drkm[0]*fk[0]),
		0.25 * (drim[1]*fi[1] + drjm[1]*fj[1] + drkm[1]*fk[1]),
		0.25 * (drim[2]*fi[2] + drjm[2]*fj[2] + drkm[2]*fk[2]),
		0.25 * (drim[0]*fi[1] + drjm[0]*fj[1] + drkm[0]*fk[1]),
		0.25 * (drim[0]*fi[2] + drjm[0]*fj[2] + drkm[0]*fk[2]),
		0.25 * (drim[1]*fi[2] + drjm[1]*fj[2] + drkm[1]*fk[2]),
	}
	thr.vatom[i].Add(v)
	thr.vatom[j].Add(v)
	thr.vatom[k].Add(v)
	thr.vatom[m].Add(v)
}
