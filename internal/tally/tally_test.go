package tally

import (
	"math"
	"testing"
)

func newPairEngineForTest(t *testing.T, fl Flags, fdotr bool, nall int) (*Engine, *PairTotals, *ThreadData) {
	t.Helper()
	pool, err := NewPool(1)
	if err != nil {
		t.Fatalf("NewPool failed: %v", err)
	}
	totals := &PairTotals{Flags: fl, FdotR: fdotr}
	totals.Grow(1, nall)
	eng, err := NewPairEngine(totals, pool)
	if err != nil {
		t.Fatalf("NewPairEngine failed: %v", err)
	}
	thr := NewThreadData(0)
	eng.SetupAtom(nall, thr)
	return eng, totals, thr
}

func newBondedEngineForTest(t *testing.T, style Style, fl Flags, nall int) (*Engine, *BondedTotals, *ThreadData) {
	t.Helper()
	pool, err := NewPool(1)
	if err != nil {
		t.Fatalf("NewPool failed: %v", err)
	}
	totals := &BondedTotals{Flags: fl}
	totals.Grow(1, nall)
	eng, err := NewBondedEngine(style, totals, pool)
	if err != nil {
		t.Fatalf("NewBondedEngine failed: %v", err)
	}
	thr := NewThreadData(0)
	eng.SetupAtom(nall, thr)
	return eng, totals, thr
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-12
}

func TestEngineConstructorErrors(t *testing.T) {
	pool, _ := NewPool(1)

	if _, err := NewPairEngine(nil, pool); err != ErrNoTotals {
		t.Errorf("nil totals: expected ErrNoTotals, got %v", err)
	}
	if _, err := NewPairEngine(&PairTotals{}, nil); err != ErrNoPool {
		t.Errorf("nil pool: expected ErrNoPool, got %v", err)
	}
	if _, err := NewBondedEngine(StylePair, &BondedTotals{}, pool); err != ErrBadStyle {
		t.Errorf("pair style: expected ErrBadStyle, got %v", err)
	}
	if _, err := NewBondedEngine(StyleBond, nil, pool); err != ErrNoTotals {
		t.Errorf("nil totals: expected ErrNoTotals, got %v", err)
	}
}

func TestTallyNewtonMatchesHalfForLocalPair(t *testing.T) {
	fl := Flags{GlobalEnergy: true, GlobalVirial: true}
	const nlocal = 4

	engN, _, thrN := newPairEngineForTest(t, fl, false, nlocal)
	engH, _, thrH := newPairEngineForTest(t, fl, false, nlocal)

	engN.Tally(0, 1, nlocal, true, 2.0, 1.0, 3.0, 1.0, 0.5, -0.25, thrN)
	engH.Tally(0, 1, nlocal, false, 2.0, 1.0, 3.0, 1.0, 0.5, -0.25, thrH)

	if !almostEqual(thrN.EngVdwl, thrH.EngVdwl) || !almostEqual(thrN.EngCoul, thrH.EngCoul) {
		t.Errorf("energies differ: newton (%v, %v) vs half (%v, %v)",
			thrN.EngVdwl, thrN.EngCoul, thrH.EngVdwl, thrH.EngCoul)
	}
	for c := 0; c < 6; c++ {
		if !almostEqual(thrN.VirPair[c], thrH.VirPair[c]) {
			t.Errorf("virial[%d] differs: newton %v vs half %v", c, thrN.VirPair[c], thrH.VirPair[c])
		}
	}
}

func TestTallyHalfModeGhostPartner(t *testing.T) {
	fl := Flags{GlobalEnergy: true, GlobalVirial: true}
	const nlocal = 4
	const nall = 6

	eng, _, thr := newPairEngineForTest(t, fl, false, nall)

	// i local, j ghost: only i is credited, with half the contribution
	eng.Tally(0, 5, nlocal, false, 2.0, 0, 1.0, 1.0, 0, 0, thr)

	if !almostEqual(thr.EngVdwl, 1.0) {
		t.Errorf("expected half energy 1.0, got %v", thr.EngVdwl)
	}
	if !almostEqual(thr.VirPair[0], 0.5) {
		t.Errorf("expected half virial 0.5, got %v", thr.VirPair[0])
	}

	// both ghosts: nothing is credited
	thr.ClearAll()
	eng.SetupAtom(nall, thr)
	eng.Tally(4, 5, nlocal, false, 2.0, 0, 1.0, 1.0, 0, 0, thr)
	if thr.EngVdwl != 0 || thr.VirPair[0] != 0 {
		t.Errorf("ghost-only pair credited: energy %v, virial %v", thr.EngVdwl, thr.VirPair[0])
	}
}

func TestTallyPerAtomShares(t *testing.T) {
	fl := Flags{AtomEnergy: true, AtomVirial: true}
	const nlocal = 4
	const nall = 6

	eng, _, thr := newPairEngineForTest(t, fl, false, nall)

	eng.Tally(0, 1, nlocal, true, 2.0, 1.0, 1.0, 1.0, 0, 0, thr)
	if !almostEqual(thr.eatom[0], 1.5) || !almostEqual(thr.eatom[1], 1.5) {
		t.Errorf("expected 50/50 per-atom energy split, got %v %v", thr.eatom[0], thr.eatom[1])
	}
	if !almostEqual(thr.vatom[0][0], 0.5) || !almostEqual(thr.vatom[1][0], 0.5) {
		t.Errorf("expected half per-atom virial, got %v %v", thr.vatom[0][0], thr.vatom[1][0])
	}

	// half mode with a ghost partner: ghost gets nothing
	thr.ClearAll()
	eng.SetupAtom(nall, thr)
	eng.Tally(0, 5, nlocal, false, 2.0, 0, 1.0, 1.0, 0, 0, thr)
	if !almostEqual(thr.eatom[0], 1.0) {
		t.Errorf("expected owned-atom half share 1.0, got %v", thr.eatom[0])
	}
	if thr.eatom[5] != 0 {
		t.Errorf("ghost atom credited: %v", thr.eatom[5])
	}
}

func TestTally3Shares(t *testing.T) {
	fl := Flags{GlobalEnergy: true, GlobalVirial: true, AtomEnergy: true, AtomVirial: true}
	const nall = 4

	eng, _, thr := newBondedEngineForTest(t, StyleAngle, fl, nall)

	fj := [3]float64{1, 0, 0}
	fk := [3]float64{0, 1, 0}
	drji := [3]float64{0.5, 0.5, 0}
	drki := [3]float64{0, 0.5, 0.5}
	eng.Tally3(0, 1, 2, 3.0, 0, fj, fk, drji, drki, thr)

	if !almostEqual(thr.EngAngl, 3.0) {
		t.Errorf("expected energy 3.0, got %v", thr.EngAngl)
	}
	sum := thr.eatom[0] + thr.eatom[1] + thr.eatom[2]
	if !almostEqual(sum, 3.0) {
		t.Errorf("per-atom thirds do not sum to total: %v", sum)
	}
	if !almostEqual(thr.eatom[0], thr.eatom[1]) || !almostEqual(thr.eatom[1], thr.eatom[2]) {
		t.Errorf("thirds unequal: %v %v %v", thr.eatom[0], thr.eatom[1], thr.eatom[2])
	}

	// global virial decomposition v = drji*fj + drki*fk
	if !almostEqual(thr.VirAngl[0], 0.5) {
		t.Errorf("virial xx: got %v, expected 0.5", thr.VirAngl[0])
	}
	if !almostEqual(thr.VirAngl[1], 0.5) {
		t.Errorf("virial yy: got %v, expected 0.5", thr.VirAngl[1])
	}
	for c := 0; c < 6; c++ {
		want := thr.VirAngl[c] / 3.0
		if !almostEqual(thr.vatom[0][c], want) {
			t.Errorf("vatom[0][%d]: got %v, expected third share %v", c, thr.vatom[0][c], want)
		}
	}
}

func TestTally4Shares(t *testing.T) {
	fl := Flags{GlobalEnergy: true, GlobalVirial: true, AtomEnergy: true, AtomVirial: true}
	const nall = 5

	eng, _, thr := newBondedEngineForTest(t, StyleImproper, fl, nall)

	fi := [3]float64{1, 0, 0}
	fj := [3]float64{0, 1, 0}
	fk := [3]float64{0, 0, 1}
	drim := [3]float64{1, 0, 0}
	drjm := [3]float64{0, 1, 0}
	drkm := [3]float64{0, 0, 1}
	eng.Tally4(0, 1, 2, 3, 4.0, fi, fj, fk, drim, drjm, drkm, thr)

	if !almostEqual(thr.EngImpr, 4.0) {
		t.Errorf("expected energy 4.0, got %v", thr.EngImpr)
	}
	for _, i := range []int{0, 1, 2, 3} {
		if !almostEqual(thr.eatom[i], 1.0) {
			t.Errorf("eatom[%d]: got %v, expected quarter share 1.0", i, thr.eatom[i])
		}
	}
	if !almostEqual(thr.VirImpr[0], 1.0) || !almostEqual(thr.VirImpr[1], 1.0) || !almostEqual(thr.VirImpr[2], 1.0) {
		t.Errorf("diagonal virial: got %v", thr.VirImpr)
	}
	for c := 0; c < 6; c++ {
		if !almostEqual(thr.vatom[0][c], 0.25*thr.VirImpr[c]) {
			t.Errorf("vatom[0][%d]: got %v, expected quarter of %v", c, thr.vatom[0][c], thr.VirImpr[c])
		}
	}
}

func TestTallyListShares(t *testing.T) {
	fl := Flags{GlobalEnergy: true, GlobalVirial: true, AtomEnergy: true, AtomVirial: true}
	const nall = 6

	eng, _, thr := newBondedEngineForTest(t, StyleKSpace, fl, nall)

	list := []int{0, 2, 4}
	v := Virial{6, 3, 0, 1.5, 0, 0}
	eng.TallyList(list, 9.0, v, thr)

	if !almostEqual(thr.EngKspc, 9.0) {
		t.Errorf("expected energy 9.0, got %v", thr.EngKspc)
	}
	for _, idx := range list {
		if !almostEqual(thr.eatom[idx], 3.0) {
			t.Errorf("eatom[%d]: got %v, expected 3.0", idx, thr.eatom[idx])
		}
		if !almostEqual(thr.vatom[idx][0], 2.0) || !almostEqual(thr.vatom[idx][3], 0.5) {
			t.Errorf("vatom[%d]: got %v, expected v/3 shares", idx, thr.vatom[idx])
		}
	}
	if thr.eatom[1] != 0 {
		t.Errorf("unlisted atom credited: %v", thr.eatom[1])
	}
	for c := 0; c < 6; c++ {
		if !almostEqual(thr.VirKspc[c], v[c]) {
			t.Errorf("global virial[%d]: got %v, expected %v", c, thr.VirKspc[c], v[c])
		}
	}
}

func TestTallyDihedralOwnershipScaling(t *testing.T) {
	fl := Flags{GlobalEnergy: true, GlobalVirial: true, AtomEnergy: true, AtomVirial: true}
	const nlocal = 2
	const nall = 6

	eng, _, thr := newBondedEngineForTest(t, StyleDihedral, fl, nall)

	f1 := [3]float64{1, 0, 0}
	f3 := [3]float64{0, 1, 0}
	f4 := [3]float64{0, 0, 1}
	vb1 := [3]float64{1, 0, 0}
	vb2 := [3]float64{0, 1, 0}
	vb3 := [3]float64{0, 0, 1}

	// atoms 0 and 1 are owned, 4 and 5 are ghosts: two of four owned
	eng.TallyDihedral(0, 1, 4, 5, nlocal, false, 8.0, f1, f3, f4, vb1, vb2, vb3, thr)

	if !almostEqual(thr.EngDihd, 4.0) {
		t.Errorf("expected 2/4 of energy, got %v", thr.EngDihd)
	}

	fullVirial := Virial{1, 1, 1, 0, 0, 1}
	for c := 0; c < 6; c++ {
		if !almostEqual(thr.VirDihd[c], 0.5*fullVirial[c]) {
			t.Errorf("global virial[%d]: got %v, expected 2/4 of %v", c, thr.VirDihd[c], fullVirial[c])
		}
	}

	// owned atoms each get a symmetric quarter share, ghosts nothing
	for _, i := range []int{0, 1} {
		if !almostEqual(thr.eatom[i], 2.0) {
			t.Errorf("eatom[%d]: got %v, expected quarter 2.0", i, thr.eatom[i])
		}
		for c := 0; c < 6; c++ {
			if !almostEqual(thr.vatom[i][c], 0.25*fullVirial[c]) {
				t.Errorf("vatom[%d][%d]: got %v, expected quarter %v", i, c, thr.vatom[i][c], 0.25*fullVirial[c])
			}
		}
	}
	for _, i := range []int{4, 5} {
		if thr.eatom[i] != 0 || thr.vatom[i] != (Virial{}) {
			t.Errorf("ghost atom %d credited: %v %v", i, thr.eatom[i], thr.vatom[i])
		}
	}
}

func TestTallyDihedralNewtonFullCredit(t *testing.T) {
	fl := Flags{GlobalEnergy: true, GlobalVirial: true}
	const nall = 6

	eng, _, thr := newBondedEngineForTest(t, StyleDihedral, fl, nall)

	f1 := [3]float64{1, 0, 0}
	f3 := [3]float64{0, 1, 0}
	f4 := [3]float64{0, 0, 1}
	vb1 := [3]float64{1, 0, 0}
	vb2 := [3]float64{0, 1, 0}
	vb3 := [3]float64{0, 0, 1}

	eng.TallyDihedral(0, 1, 4, 5, 2, true, 8.0, f1, f3, f4, vb1, vb2, vb3, thr)

	if !almostEqual(thr.EngDihd, 8.0) {
		t.Errorf("expected full energy 8.0, got %v", thr.EngDihd)
	}
	if !almostEqual(thr.VirDihd[0], 1.0) || !almostEqual(thr.VirDihd[2], 1.0) {
		t.Errorf("expected full virial, got %v", thr.VirDihd)
	}
}

func TestFdotrSuppressesPerPairVirial(t *testing.T) {
	fl := Flags{GlobalEnergy: true, GlobalVirial: true}
	const nlocal = 4

	eng, _, thr := newPairEngineForTest(t, fl, true, nlocal)

	eng.Tally(0, 1, nlocal, true, 2.0, 0, 3.0, 1.0, 0, 0, thr)

	if !almostEqual(thr.EngVdwl, 2.0) {
		t.Errorf("energy not tallied under fdotr: %v", thr.EngVdwl)
	}
	if thr.VirPair != (Virial{}) {
		t.Errorf("per-pair virial tallied despite fdotr: %v", thr.VirPair)
	}
}

func TestTallyVirialHelpersGuarded(t *testing.T) {
	// AtomVirial off: the helpers must be no-ops even with nil arenas
	eng, _, thr := newPairEngineForTest(t, Flags{GlobalEnergy: true}, false, 4)

	eng.TallyVirial2(0, 1, 1.0, [3]float64{1, 0, 0}, thr)
	eng.TallyVirial3(0, 1, 2, [3]float64{1, 0, 0}, [3]float64{0, 1, 0},
		[3]float64{1, 0, 0}, [3]float64{0, 1, 0}, thr)
	eng.TallyVirial4(0, 1, 2, 3, [3]float64{1, 0, 0}, [3]float64{0, 1, 0}, [3]float64{0, 0, 1},
		[3]float64{1, 0, 0}, [3]float64{0, 1, 0}, [3]float64{0, 0, 1}, thr)

	if thr.vatom != nil {
		t.Error("vatom installed without AtomVirial flag")
	}
}

func TestTallyVirial2HalfSplit(t *testing.T) {
	fl := Flags{AtomVirial: true}
	const nall = 4

	eng, _, thr := newPairEngineForTest(t, fl, false, nall)

	eng.TallyVirial2(0, 1, 2.0, [3]float64{1, 2, 3}, thr)

	want := Virial{1, 4, 9, 2, 3, 6}
	for c := 0; c < 6; c++ {
		if !almostEqual(thr.vatom[0][c], want[c]) || !almostEqual(thr.vatom[1][c], want[c]) {
			t.Errorf("component %d: got %v/%v, expected %v", c, thr.vatom[0][c], thr.vatom[1][c], want[c])
		}
	}
}
