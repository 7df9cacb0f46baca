package tally

// ThreadData is one worker thread's private accumulator. It is reset before
// the force phase of a timestep, read during the merge step, and logically
// stale until the next reset.
type ThreadData struct {
	tid int

	// per-category scalar energies
	EngVdwl float64
	EngCoul float64
	EngBond float64
	EngAngl float64
	EngDihd float64
	EngImpr float64
	EngKspc float64

	// per-category virials
	VirPair Virial
	VirBond Virial
	VirAngl Virial
	VirDihd Virial
	VirImpr Virial
	VirKspc Virial

	// exclusive views into the shared per-atom arenas, installed by
	// Engine.SetupAtom; never written by any other thread
	eatom []float64
	vatom []Virial
}

func NewThreadData(tid int) *ThreadData {
	return &ThreadData{tid: tid}
}

func (d *ThreadData) Tid() int { return d.tid }

// EAtom exposes the thread's per-atom energy slice for tests and kernels
// that inspect their own contributions.
func (d *ThreadData) EAtom() []float64 { return d.eatom }

func (d *ThreadData) VAtom() []Virial { return d.vatom }

// ClearAll zeroes every scalar and tensor accumulator and drops the arena
// views. Call once per thread before the first tally of a timestep.
func (d *ThreadData) ClearAll() {
	d.EngVdwl = 0
	d.EngCoul = 0
	d.EngBond = 0
	d.EngAngl = 0
	d.EngDihd = 0
	d.EngImpr = 0
	d.EngKspc = 0
	d.VirPair = Virial{}
	d.VirBond = Virial{}
	d.VirAngl = Virial{}
	d.VirDihd = Virial{}
	d.VirImpr = Virial{}
	d.VirKspc = Virial{}
	d.eatom = nil
	d.vatom = nil
}

// VirialFdotr accumulates sum(x_i · f_i) into the pair virial, with f the
// calling thread's private force slice. nfirst < 0 sums over all atoms;
// otherwise the group-inclusion variant sums atoms below nfirst plus the
// ghost range.
func (d *ThreadData) VirialFdotr(x, f []float64, nlocal, nghost, nfirst int) {
	if nfirst < 0 {
		d.fdotrRange(x, f, 0, nlocal+nghost)
		return
	}
	d.fdotrRange(x, f, 0, nfirst)
	d.fdotrRange(x, f, nlocal, nlocal+nghost)
}

func (d *ThreadData) fdotrRange(x, f []float64, from, to int) {
	for i := from; i < to; i++ {
		xi := x[3*i : 3*i+3]
		fi := f[3*i : 3*i+3]
		d.VirPair[0] += fi[0] * xi[0]
		d.VirPair[1] += fi[1] * xi[1]
		d.VirPair[2] += fi[2] * xi[2]
		d.VirPair[3] += fi[1] * xi[0]
		d.VirPair[4] += fi[2] * xi[0]
		d.VirPair[5] += fi[2] * xi[1]
	}
}
