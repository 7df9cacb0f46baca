package tally

// Style identifies an interaction category. Each category keeps independent
// energy and virial totals.
type Style int

const (
	StylePair Style = iota
	StyleBond
	StyleAngle
	StyleDihedral
	StyleImproper
	StyleKSpace
)

func (s Style) String() string {
	switch s {
	case StylePair:
		return "pair"
	case StyleBond:
		return "bond"
	case StyleAngle:
		return "angle"
	case StyleDihedral:
		return "dihedral"
	case StyleImproper:
		return "improper"
	case StyleKSpace:
		return "kspace"
	}
	return "unknown"
}

// Virial is a symmetric stress tensor stored as xx, yy, zz, xy, xz, yz.
type Virial [6]float64

func (v *Virial) Add(w Virial) {
	v[0] += w[0]
	v[1] += w[1]
	v[2] += w[2]
	v[3] += w[3]
	v[4] += w[4]
	v[5] += w[5]
}

func (v *Virial) AddScaled(scale float64, w Virial) {
	v[0] += scale * w[0]
	v[1] += scale * w[1]
	v[2] += scale * w[2]
	v[3] += scale * w[3]
	v[4] += scale * w[4]
	v[5] += scale * w[5]
}

// Trace returns xx+yy+zz, the isotropic part used as a pressure proxy.
func (v Virial) Trace() float64 { return v[0] + v[1] + v[2] }

// Flags selects which accumulations a category performs this timestep.
type Flags struct {
	GlobalEnergy bool
	AtomEnergy   bool
	GlobalVirial bool
	AtomVirial   bool
}

func (f Flags) anyEnergy() bool { return f.GlobalEnergy || f.AtomEnergy }
func (f Flags) anyVirial() bool { return f.GlobalVirial || f.AtomVirial }
func (f Flags) any() bool       { return f.anyEnergy() || f.anyVirial() }

// PairTotals holds the shared accumulators owned by the pairwise category.
// EAtom and VAtom are arenas of size nthreads*nall; after reduction the
// canonical per-atom values live in the thread-0 region.
type PairTotals struct {
	Flags   Flags
	EngVdwl float64
	EngCoul float64
	Virial  Virial

	EAtom []float64
	VAtom []Virial

	// FdotR selects the position-dot-force virial path: the global virial
	// is computed from the accumulated forces rather than per-pair tallies.
	FdotR bool
}

// Grow sizes the per-atom arenas for the requested flags.
func (t *PairTotals) Grow(nthreads, nall int) {
	growArenas(&t.EAtom, &t.VAtom, t.Flags, nthreads, nall)
}

// Zero resets the shared totals at the start of a timestep.
func (t *PairTotals) Zero() {
	t.EngVdwl = 0
	t.EngCoul = 0
	t.Virial = Virial{}
	zeroArenas(t.EAtom, t.VAtom)
}

// BondedTotals holds the shared accumulators for the bond, angle, dihedral,
// improper and k-space categories.
type BondedTotals struct {
	Flags  Flags
	Energy float64
	Virial Virial

	EAtom []float64
	VAtom []Virial
}

func (t *BondedTotals) Grow(nthreads, nall int) {
	growArenas(&t.EAtom, &t.VAtom, t.Flags, nthreads, nall)
}

func (t *BondedTotals) Zero() {
	t.Energy = 0
	t.Virial = Virial{}
	zeroArenas(t.EAtom, t.VAtom)
}

func growArenas(eatom *[]float64, vatom *[]Virial, fl Flags, nthreads, nall int) {
	if fl.AtomEnergy && len(*eatom) < nthreads*nall {
		*eatom = make([]float64, nthreads*nall)
	}
	if fl.AtomVirial && len(*vatom) < nthreads*nall {
		*vatom = make([]Virial, nthreads*nall)
	}
}

func zeroArenas(eatom []float64, vatom []Virial) {
	for i := range eatom {
		eatom[i] = 0
	}
	for i := range vatom {
		vatom[i] = Virial{}
	}
}

// Engine routes interaction contributions into the calling thread's
// accumulator and merges thread-local sums into its category's shared
// totals. It is stateless apart from the category tag and the references
// fixed at construction; the same engine value is shared by all threads.
type Engine struct {
	style  Style
	pair   *PairTotals
	bonded *BondedTotals
	pool   *Pool
}

// NewPairEngine builds the engine for the pairwise category. The pool is a
// hard requirement: without thread registration the simulation cannot run.
func NewPairEngine(totals *PairTotals, pool *Pool) (*Engine, error) {
	if pool == nil {
		return nil, ErrNoPool
	}
	if totals == nil {
		return nil, ErrNoTotals
	}
	return &Engine{style: StylePair, pair: totals, pool: pool}, nil
}

// NewBondedEngine builds the engine for a bonded or k-space category.
func NewBondedEngine(style Style, totals *BondedTotals, pool *Pool) (*Engine, error) {
	if style == StylePair {
		return nil, ErrBadStyle
	}
	if pool == nil {
		return nil, ErrNoPool
	}
	if totals == nil {
		return nil, ErrNoTotals
	}
	return &Engine{style: style, bonded: totals, pool: pool}, nil
}

func (e *Engine) Style() Style { return e.style }

func (e *Engine) flags() Flags {
	if e.style == StylePair {
		return e.pair.Flags
	}
	return e.bonded.Flags
}

// globalVirial reports whether per-interaction global virial sums are
// wanted this timestep; the pair f·r path supersedes them.
func (e *Engine) globalVirial(fl Flags) bool {
	if e.style == StylePair && e.pair.FdotR {
		return false
	}
	return fl.GlobalVirial
}

func (e *Engine) eatomArena() []float64 {
	if e.style == StylePair {
		return e.pair.EAtom
	}
	return e.bonded.EAtom
}

func (e *Engine) vatomArena() []Virial {
	if e.style == StylePair {
		return e.pair.VAtom
	}
	return e.bonded.VAtom
}

// SetupAtom hooks the calling thread's exclusive regions of the per-atom
// arenas into its accumulator: offset = tid*nall. A flag that is not
// requested this timestep leaves the corresponding slice untouched.
// Must be called once per thread per timestep before any tally.
func (e *Engine) SetupAtom(nall int, thr *ThreadData) {
	fl := e.flags()
	tid := thr.tid
	if fl.AtomEnergy {
		thr.eatom = e.eatomArena()[tid*nall : (tid+1)*nall]
	}
	if fl.AtomVirial {
		thr.vatom = e.vatomArena()[tid*nall : (tid+1)*nall]
	}
}
