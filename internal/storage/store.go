package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/san-kum/mdtally/internal/config"
	"github.com/san-kum/mdtally/internal/run"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID        string             `json:"id"`
	Timestamp time.Time          `json:"timestamp"`
	Atoms     int                `json:"atoms"`
	Ghosts    int                `json:"ghosts"`
	Threads   int                `json:"threads"`
	Steps     int                `json:"steps"`
	Newton    bool               `json:"newton"`
	Seed      int64              `json:"seed"`
	Metrics   map[string]float64 `json:"metrics"`
}

var seriesHeader = []string{"step", "evdwl", "ecoul", "ebond", "eangle", "edihedral", "etotal", "vtrace"}

// Save writes a run directory: metadata.json plus the per-step energy and
// virial series as energies.csv.
func (s *Store) Save(cfg *config.Config, result *run.Result) (string, error) {
	runID := fmt.Sprintf("run_%d", time.Now().Unix())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:        runID,
		Timestamp: time.Now(),
		Atoms:     cfg.Atoms,
		Ghosts:    cfg.Ghosts,
		Threads:   cfg.Threads,
		Steps:     cfg.Steps,
		Newton:    cfg.Newton,
		Seed:      cfg.Seed,
		Metrics:   result.Metrics,
	}

	metaFile, err := os.Create(filepath.Join(runDir, "metadata.json"))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, "energies.csv"))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	defer w.Flush()

	if err := w.Write(seriesHeader); err != nil {
		return "", err
	}
	for _, rec := range result.Records {
		row := []string{
			strconv.Itoa(rec.Step),
			strconv.FormatFloat(rec.EngVdwl, 'f', 6, 64),
			strconv.FormatFloat(rec.EngCoul, 'f', 6, 64),
			strconv.FormatFloat(rec.EngBond, 'f', 6, 64),
			strconv.FormatFloat(rec.EngAngle, 'f', 6, 64),
			strconv.FormatFloat(rec.EngDihedral, 'f', 6, 64),
			strconv.FormatFloat(rec.TotalEnergy(), 'f', 6, 64),
			strconv.FormatFloat(rec.Virial.Trace(), 'f', 6, 64),
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}

	return runID, nil
}

func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		data, err := os.ReadFile(filepath.Join(s.baseDir, entry.Name(), "metadata.json"))
		if err != nil {
			continue
		}

		var meta RunMetadata
		if err := json.Unmarshal(data, &meta); err != nil {
			continue
		}
		runs = append(runs, meta)
	}

	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// LoadSeries returns the per-step total energy and virial trace of a run.
func (s *Store) LoadSeries(runID string) (energy, vtrace []float64, err error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, "energies.csv"))
	if err != nil {
		return nil, nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, err
	}
	if len(records) < 2 {
		return []float64{}, []float64{}, nil
	}

	for i := 1; i < len(records); i++ {
		rec := records[i]
		if len(rec) < len(seriesHeader) {
			continue
		}
		e, err := strconv.ParseFloat(rec[6], 64)
		if err != nil {
			continue
		}
		v, err := strconv.ParseFloat(rec[7], 64)
		if err != nil {
			continue
		}
		energy = append(energy, e)
		vtrace = append(vtrace, v)
	}
	return energy, vtrace, nil
}
