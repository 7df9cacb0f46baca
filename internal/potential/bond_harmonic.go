package potential

import (
	"math"

	"github.com/san-kum/mdtally/internal/atoms"
	"github.com/san-kum/mdtally/internal/tally"
)

// BondHarmonic is a two-body harmonic spring: E = K (r - R0)^2.
type BondHarmonic struct {
	K      float64
	R0     float64
	Newton bool
}

// Compute evaluates the calling thread's chunk of the bond list.
func (b *BondHarmonic) Compute(st *atoms.Store, topo *atoms.Topology, eng *tally.Engine, thr *tally.ThreadData) {
	nlocal := st.NLocal()
	from, to := splitRange(len(topo.Bonds), st.NThreads(), thr.Tid())

	x := st.X
	f := st.ForceSlice(thr.Tid())

	for n := from; n < to; n++ {
		i1, i2 := topo.Bonds[n][0], topo.Bonds[n][1]

		delx := x[3*i1] - x[3*i2]
		dely := x[3*i1+1] - x[3*i2+1]
		delz := x[3*i1+2] - x[3*i2+2]

		r := math.Sqrt(delx*delx + dely*dely + delz*delz)
		dr := r - b.R0
		ebond := b.K * dr * dr

		var fbond float64
		if r > 0 {
			fbond = -2.0 * b.K * dr / r
		}

		if b.Newton || i1 < nlocal {
			f[3*i1] += delx * fbond
			f[3*i1+1] += dely * fbond
			f[3*i1+2] += delz * fbond
		}
		if b.Newton || i2 < nlocal {
			f[3*i2] -= delx * fbond
			f[3*i2+1] -= dely * fbond
			f[3*i2+2] -= delz * fbond
		}

		eng.Tally(i1, i2, nlocal, b.Newton, ebond, 0, fbond, delx, dely, delz, thr)
	}
}
