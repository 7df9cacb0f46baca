package potential

import (
	"math"

	"github.com/san-kum/mdtally/internal/atoms"
	"github.com/san-kum/mdtally/internal/tally"
)

// DihedralHarmonic is a four-body torsion term: E = K (1 + cos(phi)).
type DihedralHarmonic struct {
	K      float64
	Newton bool
}

// Compute evaluates the calling thread's chunk of the dihedral list.
func (d *DihedralHarmonic) Compute(st *atoms.Store, topo *atoms.Topology, eng *tally.Engine, thr *tally.ThreadData) {
	nlocal := st.NLocal()
	from, to := splitRange(len(topo.Dihedrals), st.NThreads(), thr.Tid())

	x := st.X
	f := st.ForceSlice(thr.Tid())

	for n := from; n < to; n++ {
		i1 := topo.Dihedrals[n][0]
		i2 := topo.Dihedrals[n][1]
		i3 := topo.Dihedrals[n][2]
		i4 := topo.Dihedrals[n][3]

		rij := sub(at(x, i1), at(x, i2))
		rkj := sub(at(x, i3), at(x, i2))
		rkl := sub(at(x, i3), at(x, i4))

		m := cross(rij, rkj)
		nv := cross(rkj, rkl)
		m2 := dot(m, m)
		n2 := dot(nv, nv)
		nrkj := math.Sqrt(dot(rkj, rkj))
		if m2 < 1e-12 || n2 < 1e-12 || nrkj == 0 {
			continue
		}

		cosphi := dot(m, nv) / math.Sqrt(m2*n2)
		sinphi := dot(rij, nv) * nrkj / math.Sqrt(m2*n2)
		phi := math.Atan2(sinphi, cosphi)

		edihedral := d.K * (1.0 + math.Cos(phi))
		p := d.K * math.Sin(phi) // -dE/dphi

		var fi, fl, svec, fj3, fk3 [3]float64
		cu := dot(rij, rkj) / (nrkj * nrkj)
		cv := dot(rkl, rkj) / (nrkj * nrkj)
		for c := 0; c < 3; c++ {
			fi[c] = p * nrkj / m2 * m[c]
			fl[c] = -p * nrkj / n2 * nv[c]
			svec[c] = cu*fi[c] - cv*fl[c]
		}
		for c := 0; c < 3; c++ {
			fj3[c] = svec[c] - fi[c]  // force on atom 2
			fk3[c] = -svec[c] - fl[c] // force on atom 3
		}

		apply := func(idx int, fv [3]float64) {
			if d.Newton || idx < nlocal {
				f[3*idx] += fv[0]
				f[3*idx+1] += fv[1]
				f[3*idx+2] += fv[2]
			}
		}
		apply(i1, fi)
		apply(i2, fj3)
		apply(i3, fk3)
		apply(i4, fl)

		// displacement vectors in the tally's virial convention
		vb1 := rij
		vb2 := rkj
		vb3 := sub(at(x, i4), at(x, i3))

		eng.TallyDihedral(i1, i2, i3, i4, nlocal, d.Newton, edihedral,
			fi, fk3, fl, vb1, vb2, vb3, thr)
	}
}

func at(x []float64, i int) [3]float64 {
	return [3]float64{x[3*i], x[3*i+1], x[3*i+2]}
}

func sub(a, b [3]float64) [3]float64 {
	return [3]float64{a[0] - b[0], a[1] - b[1], a[2] - b[2]}
}
