package storage

import (
	"testing"

	"github.com/san-kum/mdtally/internal/config"
	"github.com/san-kum/mdtally/internal/run"
	"github.com/san-kum/mdtally/internal/tally"
)

func sampleResult() *run.Result {
	return &run.Result{
		Records: []run.StepRecord{
			{Step: 0, EngVdwl: 1.5, EngBond: 0.25, Virial: tally.Virial{1, 2, 3, 0, 0, 0}},
			{Step: 1, EngVdwl: 1.4, EngBond: 0.30, Virial: tally.Virial{1, 1, 1, 0, 0, 0}},
		},
		Metrics: map[string]float64{"mean_energy": 1.725},
	}
}

func TestSaveLoadRun(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	cfg := config.DefaultConfig()
	cfg.Atoms = 100
	cfg.Threads = 4

	runID, err := st.Save(cfg, sampleResult())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if meta.Atoms != 100 || meta.Threads != 4 {
		t.Errorf("metadata mismatch: %+v", meta)
	}
	if meta.Metrics["mean_energy"] != 1.725 {
		t.Errorf("metrics not preserved: %v", meta.Metrics)
	}

	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 1 || runs[0].ID != runID {
		t.Errorf("expected one run %s, got %+v", runID, runs)
	}
}

func TestLoadSeries(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	result := sampleResult()
	runID, err := st.Save(config.DefaultConfig(), result)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	energy, vtrace, err := st.LoadSeries(runID)
	if err != nil {
		t.Fatalf("load series failed: %v", err)
	}
	if len(energy) != 2 || len(vtrace) != 2 {
		t.Fatalf("expected 2 samples, got %d/%d", len(energy), len(vtrace))
	}
	if energy[0] != 1.75 {
		t.Errorf("energy[0]: got %v, expected 1.75", energy[0])
	}
	if vtrace[0] != 6.0 || vtrace[1] != 3.0 {
		t.Errorf("virial traces: got %v %v", vtrace[0], vtrace[1])
	}
}

func TestListEmptyDir(t *testing.T) {
	st := New(t.TempDir() + "/missing")
	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected no runs, got %d", len(runs))
	}
}

func TestLoadUnknownRun(t *testing.T) {
	st := New(t.TempDir())
	if _, err := st.Load("run_0"); err == nil {
		t.Error("expected error for unknown run")
	}
}
