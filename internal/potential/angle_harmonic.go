package potential

import (
	"math"

	"github.com/san-kum/mdtally/internal/atoms"
	"github.com/san-kum/mdtally/internal/tally"
)

// AngleHarmonic is a three-body harmonic bending term:
// E = K (theta - Theta0)^2, with the center atom second in each triple.
// Angles are always evaluated with newton semantics.
type AngleHarmonic struct {
	K      float64
	Theta0 float64 // radians
}

// Compute evaluates the calling thread's chunk of the angle list.
func (a *AngleHarmonic) Compute(st *atoms.Store, topo *atoms.Topology, eng *tally.Engine, thr *tally.ThreadData) {
	from, to := splitRange(len(topo.Angles), st.NThreads(), thr.Tid())

	x := st.X
	f := st.ForceSlice(thr.Tid())

	for n := from; n < to; n++ {
		i1, i2, i3 := topo.Angles[n][0], topo.Angles[n][1], topo.Angles[n][2]

		// bond vectors from the center atom
		del1 := [3]float64{x[3*i1] - x[3*i2], x[3*i1+1] - x[3*i2+1], x[3*i1+2] - x[3*i2+2]}
		del2 := [3]float64{x[3*i3] - x[3*i2], x[3*i3+1] - x[3*i2+1], x[3*i3+2] - x[3*i2+2]}

		rsq1 := dot(del1, del1)
		rsq2 := dot(del2, del2)
		r1 := math.Sqrt(rsq1)
		r2 := math.Sqrt(rsq2)
		if r1 == 0 || r2 == 0 {
			continue
		}

		c := dot(del1, del2) / (r1 * r2)
		if c > 1.0 {
			c = 1.0
		}
		if c < -1.0 {
			c = -1.0
		}
		s := math.Sqrt(1.0 - c*c)
		if s < 1e-8 {
			s = 1e-8
		}

		dtheta := math.Acos(c) - a.Theta0
		eangle := a.K * dtheta * dtheta

		// dE/dtheta folded into the two bond-direction gradients
		tk := -2.0 * a.K * dtheta / s
		a11 := tk * c / rsq1
		a12 := -tk / (r1 * r2)
		a22 := tk * c / rsq2

		var f1, f3 [3]float64
		for d := 0; d < 3; d++ {
			f1[d] = a11*del1[d] + a12*del2[d]
			f3[d] = a22*del2[d] + a12*del1[d]
		}

		for d := 0; d < 3; d++ {
			f[3*i1+d] += f1[d]
			f[3*i2+d] -= f1[d] + f3[d]
			f[3*i3+d] += f3[d]
		}

		eng.Tally3(i1, i2, i3, eangle, 0, f1, f3, del1, del2, thr)
	}
}

func dot(a, b [3]float64) float64 {
	return a[0]*b[0] + a[1]*b[1] + a[2]*b[2]
}

func cross(a, b [3]float64) [3]float64 {
	return [3]float64{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}
