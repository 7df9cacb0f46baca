package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultAtoms   = 256
	DefaultGhosts  = 64
	DefaultThreads = 4
	DefaultSteps   = 50
	DefaultBox     = 12.0
	DefaultCutoff  = 2.5
	DefaultEpsilon = 1.0
	DefaultSigma   = 1.0
)

type Config struct {
	Atoms   int     `yaml:"atoms"`
	Ghosts  int     `yaml:"ghosts"`
	Threads int     `yaml:"threads"`
	Steps   int     `yaml:"steps"`
	Box     float64 `yaml:"box"`
	Seed    int64   `yaml:"seed"`

	// Jitter resamples positions by this amplitude each step so the
	// tallied energies form a non-trivial series.
	Jitter float64 `yaml:"jitter"`

	Newton bool `yaml:"newton"`
	FdotR  bool `yaml:"fdotr"`
	Torque bool `yaml:"torque"`

	AtomEnergy bool `yaml:"atom_energy"`
	AtomVirial bool `yaml:"atom_virial"`

	Pair      PairConfig   `yaml:"pair"`
	Bonds     BondedConfig `yaml:"bonds"`
	Angles    BondedConfig `yaml:"angles"`
	Dihedrals BondedConfig `yaml:"dihedrals"`
}

type PairConfig struct {
	Epsilon float64 `yaml:"epsilon"`
	Sigma   float64 `yaml:"sigma"`
	Cutoff  float64 `yaml:"cutoff"`
}

type BondedConfig struct {
	Enabled bool    `yaml:"enabled"`
	K       float64 `yaml:"k"`
	R0      float64 `yaml:"r0,omitempty"`
	Theta0  float64 `yaml:"theta0,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		Atoms:   DefaultAtoms,
		Ghosts:  DefaultGhosts,
		Threads: DefaultThreads,
		Steps:   DefaultSteps,
		Box:     DefaultBox,
		Jitter:  0.02,
		Newton:  true,
		Pair: PairConfig{
			Epsilon: DefaultEpsilon,
			Sigma:   DefaultSigma,
			Cutoff:  DefaultCutoff,
		},
		Bonds:     BondedConfig{Enabled: true, K: 100.0, R0: 1.0},
		Angles:    BondedConfig{Enabled: true, K: 50.0, Theta0: 1.9},
		Dihedrals: BondedConfig{Enabled: true, K: 5.0},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	if c.Atoms < 1 {
		return fmt.Errorf("atoms must be positive, got %d", c.Atoms)
	}
	if c.Ghosts < 0 {
		return fmt.Errorf("ghosts must be non-negative, got %d", c.Ghosts)
	}
	if c.Threads < 1 {
		return fmt.Errorf("threads must be positive, got %d", c.Threads)
	}
	if c.Steps < 1 {
		return fmt.Errorf("steps must be positive, got %d", c.Steps)
	}
	if c.Box <= 0 {
		return fmt.Errorf("box must be positive, got %f", c.Box)
	}
	if c.Pair.Cutoff <= 0 {
		return fmt.Errorf("pair cutoff must be positive, got %f", c.Pair.Cutoff)
	}
	return nil
}
