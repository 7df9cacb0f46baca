package atoms

import (
	"errors"
	"math/rand"
)

// ErrBadCounts indicates invalid atom or thread counts.
var ErrBadCounts = errors.New("atoms: atom and thread counts must be positive")

// Store holds the particle arrays shared by all worker threads. Positions
// are plain shared state; forces and torques are per-thread arenas of
// nthreads*nall*3 values, with the canonical array in the thread-0 region.
// Each thread writes only its own slice during force evaluation, so the hot
// loop needs no locking.
type Store struct {
	nlocal   int
	nghost   int
	nthreads int

	// FirstIdx is the group-inclusion boundary for the f·r virial path;
	// -1 means every local atom participates.
	FirstIdx int

	X      []float64 // positions, nall*3
	F      []float64 // force arena, nthreads*nall*3
	Torque []float64 // optional torque arena, same layout
}

func NewStore(nlocal, nghost, nthreads int, withTorque bool) (*Store, error) {
	if nlocal < 1 || nghost < 0 || nthreads < 1 {
		return nil, ErrBadCounts
	}
	nall := nlocal + nghost
	s := &Store{
		nlocal:   nlocal,
		nghost:   nghost,
		nthreads: nthreads,
		FirstIdx: -1,
		X:        make([]float64, nall*3),
		F:        make([]float64, nthreads*nall*3),
	}
	if withTorque {
		s.Torque = make([]float64, nthreads*nall*3)
	}
	return s, nil
}

func (s *Store) NLocal() int   { return s.nlocal }
func (s *Store) NGhost() int   { return s.nghost }
func (s *Store) NAll() int     { return s.nlocal + s.nghost }
func (s *Store) NThreads() int { return s.nthreads }

func (s *Store) FirstOwned() int { return s.FirstIdx }

func (s *Store) Positions() []float64   { return s.X }
func (s *Store) ForceArena() []float64  { return s.F }
func (s *Store) TorqueArena() []float64 { return s.Torque }

// Owned reports whether index i refers to a locally owned atom rather than
// a ghost.
func (s *Store) Owned(i int) bool { return i < s.nlocal }

// ForceSlice returns thread tid's exclusive force region.
func (s *Store) ForceSlice(tid int) []float64 {
	n := s.NAll() * 3
	return s.F[tid*n : (tid+1)*n]
}

// TorqueSlice returns thread tid's exclusive torque region, or nil.
func (s *Store) TorqueSlice(tid int) []float64 {
	if s.Torque == nil {
		return nil
	}
	n := s.NAll() * 3
	return s.Torque[tid*n : (tid+1)*n]
}

// CanonicalForce returns the reduced force array (thread-0 region).
func (s *Store) CanonicalForce() []float64 { return s.ForceSlice(0) }

// ClearForces zeroes every thread's force and torque slices.
func (s *Store) ClearForces() {
	for i := range s.F {
		s.F[i] = 0
	}
	for i := range s.Torque {
		s.Torque[i] = 0
	}
}

// Topology lists the bonded interactions of a system. Indices may reference
// ghosts; kernels decide crediting via the tally ownership rules.
type Topology struct {
	Bonds     [][2]int
	Angles    [][3]int
	Dihedrals [][4]int
}

// Seed fills positions with a jittered cubic lattice inside a box of the
// given side length. Local atoms come first; the ghost range is filled with
// copies displaced by one box length, standing in for boundary replicas.
func (s *Store) Seed(box float64, seed int64) {
	rng := rand.New(rand.NewSource(seed))
	side := 1
	for side*side*side < s.nlocal {
		side++
	}
	spacing := box / float64(side)
	for i := 0; i < s.nlocal; i++ {
		ix := i % side
		iy := (i / side) % side
		iz := i / (side * side)
		s.X[3*i] = (float64(ix) + 0.5 + 0.1*rng.Float64()) * spacing
		s.X[3*i+1] = (float64(iy) + 0.5 + 0.1*rng.Float64()) * spacing
		s.X[3*i+2] = (float64(iz) + 0.5 + 0.1*rng.Float64()) * spacing
	}
	s.RefreshGhosts(box)
}

// RefreshGhosts re-derives the ghost positions from their source atoms
// after local positions change.
func (s *Store) RefreshGhosts(box float64) {
	for g := 0; g < s.nghost; g++ {
		src := g % s.nlocal
		i := s.nlocal + g
		s.X[3*i] = s.X[3*src] + box
		s.X[3*i+1] = s.X[3*src+1]
		s.X[3*i+2] = s.X[3*src+2]
	}
}

// ChainTopology builds a linear bond chain over the local atoms with the
// angles and dihedrals it implies, the usual synthetic polymer layout.
func (s *Store) ChainTopology() *Topology {
	topo := &Topology{}
	for i := 0; i+1 < s.nlocal; i++ {
		topo.Bonds = append(topo.Bonds, [2]int{i, i + 1})
	}
	for i := 0; i+2 < s.nlocal; i++ {
		topo.Angles = append(topo.Angles, [3]int{i, i + 1, i + 2})
	}
	for i := 0; i+3 < s.nlocal; i++ {
		topo.Dihedrals = append(topo.Dihedrals, [4]int{i, i + 1, i + 2, i + 3})
	}
	return topo
}
