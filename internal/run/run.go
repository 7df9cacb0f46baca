package run

import (
	"context"
	"math/rand"

	"github.com/san-kum/mdtally/internal/atoms"
	"github.com/san-kum/mdtally/internal/config"
	"github.com/san-kum/mdtally/internal/metrics"
	"github.com/san-kum/mdtally/internal/potential"
	"github.com/san-kum/mdtally/internal/tally"
)

// StepRecord captures the merged category totals of one timestep.
type StepRecord struct {
	Step        int
	EngVdwl     float64
	EngCoul     float64
	EngBond     float64
	EngAngle    float64
	EngDihedral float64
	Virial      tally.Virial
}

func (r StepRecord) TotalEnergy() float64 {
	return r.EngVdwl + r.EngCoul + r.EngBond + r.EngAngle + r.EngDihedral
}

type Result struct {
	Records []StepRecord
	Metrics map[string]float64
}

// category pairs a tally engine with the kernel that feeds it.
type category struct {
	engine  *tally.Engine
	compute func(thr *tally.ThreadData)
}

// System wires a synthetic particle set, the worker pool, the per-category
// engines and their kernels into a repeatable force-evaluation loop. Atoms
// do not move; an optional per-step jitter keeps the tallied series
// non-trivial.
type System struct {
	cfg   *config.Config
	store *atoms.Store
	topo  *atoms.Topology
	pool  *tally.Pool
	data  []*tally.ThreadData
	rng   *rand.Rand

	PairTotals  *tally.PairTotals
	BondTotals  *tally.BondedTotals
	AngleTotals *tally.BondedTotals
	DihedTotals *tally.BondedTotals

	categories []category
	metrics    []metrics.Metric
}

func NewSystem(cfg *config.Config) (*System, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	pool, err := tally.NewPool(cfg.Threads)
	if err != nil {
		return nil, err
	}
	store, err := atoms.NewStore(cfg.Atoms, cfg.Ghosts, cfg.Threads, cfg.Torque)
	if err != nil {
		return nil, err
	}
	store.Seed(cfg.Box, cfg.Seed)

	s := &System{
		cfg:   cfg,
		store: store,
		topo:  store.ChainTopology(),
		pool:  pool,
		rng:   rand.New(rand.NewSource(cfg.Seed + 1)),
	}
	for tid := 0; tid < cfg.Threads; tid++ {
		s.data = append(s.data, tally.NewThreadData(tid))
	}

	flags := tally.Flags{
		GlobalEnergy: true,
		GlobalVirial: true,
		AtomEnergy:   cfg.AtomEnergy,
		AtomVirial:   cfg.AtomVirial,
	}
	nall := store.NAll()

	s.PairTotals = &tally.PairTotals{Flags: flags, FdotR: cfg.FdotR}
	s.PairTotals.Grow(cfg.Threads, nall)
	pairEng, err := tally.NewPairEngine(s.PairTotals, pool)
	if err != nil {
		return nil, err
	}
	lj := &potential.LJCut{
		Epsilon: cfg.Pair.Epsilon,
		Sigma:   cfg.Pair.Sigma,
		Cutoff:  cfg.Pair.Cutoff,
		Newton:  cfg.Newton,
	}
	s.categories = append(s.categories, category{
		engine:  pairEng,
		compute: func(thr *tally.ThreadData) { lj.Compute(store, pairEng, thr) },
	})

	if cfg.Bonds.Enabled {
		s.BondTotals = &tally.BondedTotals{Flags: flags}
		s.BondTotals.Grow(cfg.Threads, nall)
		eng, err := tally.NewBondedEngine(tally.StyleBond, s.BondTotals, pool)
		if err != nil {
			return nil, err
		}
		bond := &potential.BondHarmonic{K: cfg.Bonds.K, R0: cfg.Bonds.R0, Newton: cfg.Newton}
		s.categories = append(s.categories, category{
			engine:  eng,
			compute: func(thr *tally.ThreadData) { bond.Compute(store, s.topo, eng, thr) },
		})
	}
	if cfg.Angles.Enabled {
		s.AngleTotals = &tally.BondedTotals{Flags: flags}
		s.AngleTotals.Grow(cfg.Threads, nall)
		eng, err := tally.NewBondedEngine(tally.StyleAngle, s.AngleTotals, pool)
		if err != nil {
			return nil, err
		}
		angle := &potential.AngleHarmonic{K: cfg.Angles.K, Theta0: cfg.Angles.Theta0}
		s.categories = append(s.categories, category{
			engine:  eng,
			compute: func(thr *tally.ThreadData) { angle.Compute(store, s.topo, eng, thr) },
		})
	}
	if cfg.Dihedrals.Enabled {
		s.DihedTotals = &tally.BondedTotals{Flags: flags}
		s.DihedTotals.Grow(cfg.Threads, nall)
		eng, err := tally.NewBondedEngine(tally.StyleDihedral, s.DihedTotals, pool)
		if err != nil {
			return nil, err
		}
		dihed := &potential.DihedralHarmonic{K: cfg.Dihedrals.K, Newton: cfg.Newton}
		s.categories = append(s.categories, category{
			engine:  eng,
			compute: func(thr *tally.ThreadData) { dihed.Compute(store, s.topo, eng, thr) },
		})
	}

	return s, nil
}

func (s *System) AddMetric(m metrics.Metric) { s.metrics = append(s.metrics, m) }

// Reset restores the seeded positions and the jitter stream, so a fresh
// sequence of steps reproduces the original run.
func (s *System) Reset() {
	s.store.Seed(s.cfg.Box, s.cfg.Seed)
	s.rng = rand.New(rand.NewSource(s.cfg.Seed + 1))
}

func (s *System) Store() *atoms.Store { return s.store }

// Step runs one full force-evaluation pass: clear, tally every active
// category across the pool, merge each category, and fold the force arenas
// after the last one.
func (s *System) Step(step int) StepRecord {
	if s.cfg.Jitter > 0 && step > 0 {
		s.perturb()
	}

	s.store.ClearForces()
	s.PairTotals.Zero()
	for _, t := range []*tally.BondedTotals{s.BondTotals, s.AngleTotals, s.DihedTotals} {
		if t != nil {
			t.Zero()
		}
	}

	s.pool.SetLastStyle(s.categories[len(s.categories)-1].engine.Style())

	s.pool.Run(func(tid int) { s.data[tid].ClearAll() })

	nall := s.store.NAll()
	for _, cat := range s.categories {
		cat := cat
		s.pool.Run(func(tid int) {
			thr := s.data[tid]
			cat.engine.SetupAtom(nall, thr)
			cat.compute(thr)
			cat.engine.Reduce(s.store, thr)
		})
	}

	rec := StepRecord{
		Step:    step,
		EngVdwl: s.PairTotals.EngVdwl,
		EngCoul: s.PairTotals.EngCoul,
		Virial:  s.PairTotals.Virial,
	}
	if s.BondTotals != nil {
		rec.EngBond = s.BondTotals.Energy
		rec.Virial.Add(s.BondTotals.Virial)
	}
	if s.AngleTotals != nil {
		rec.EngAngle = s.AngleTotals.Energy
		rec.Virial.Add(s.AngleTotals.Virial)
	}
	if s.DihedTotals != nil {
		rec.EngDihedral = s.DihedTotals.Energy
		rec.Virial.Add(s.DihedTotals.Virial)
	}
	return rec
}

// Run executes cfg.Steps force evaluations, observing metrics per step.
func (s *System) Run(ctx context.Context) (*Result, error) {
	for _, m := range s.metrics {
		m.Reset()
	}

	result := &Result{
		Records: make([]StepRecord, 0, s.cfg.Steps),
		Metrics: make(map[string]float64),
	}

	for step := 0; step < s.cfg.Steps; step++ {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		rec := s.Step(step)
		result.Records = append(result.Records, rec)

		for _, m := range s.metrics {
			m.Observe(step, rec.TotalEnergy(), rec.Virial.Trace())
		}
	}

	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
	return result, nil
}

// perturb resamples local positions by the jitter amplitude and refreshes
// the ghost copies.
func (s *System) perturb() {
	x := s.store.X
	for i := 0; i < s.store.NLocal()*3; i++ {
		x[i] += s.cfg.Jitter * (2.0*s.rng.Float64() - 1.0)
	}
	s.store.RefreshGhosts(s.cfg.Box)
}
