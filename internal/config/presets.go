package config

// Presets are ready-made system configurations for the CLI.
var Presets = map[string]*Config{
	"lj-gas": {
		Atoms: 256, Ghosts: 64, Threads: 4, Steps: 50, Box: 12.0,
		Jitter: 0.02, Newton: true,
		Pair: PairConfig{Epsilon: 1.0, Sigma: 1.0, Cutoff: 2.5},
	},
	"lj-half": {
		Atoms: 256, Ghosts: 64, Threads: 4, Steps: 50, Box: 12.0,
		Jitter: 0.02, Newton: false,
		Pair: PairConfig{Epsilon: 1.0, Sigma: 1.0, Cutoff: 2.5},
	},
	"polymer": {
		Atoms: 200, Ghosts: 40, Threads: 4, Steps: 100, Box: 10.0,
		Jitter: 0.01, Newton: true, AtomEnergy: true, AtomVirial: true,
		Pair:      PairConfig{Epsilon: 0.5, Sigma: 1.0, Cutoff: 2.0},
		Bonds:     BondedConfig{Enabled: true, K: 100.0, R0: 1.0},
		Angles:    BondedConfig{Enabled: true, K: 50.0, Theta0: 1.9},
		Dihedrals: BondedConfig{Enabled: true, K: 5.0},
	},
	"fdotr": {
		Atoms: 256, Ghosts: 64, Threads: 4, Steps: 50, Box: 12.0,
		Jitter: 0.02, Newton: true, FdotR: true,
		Pair: PairConfig{Epsilon: 1.0, Sigma: 1.0, Cutoff: 2.5},
	},
	"bench": {
		Atoms: 2000, Ghosts: 400, Threads: 8, Steps: 20, Box: 25.0,
		Jitter: 0.0, Newton: true,
		Pair:  PairConfig{Epsilon: 1.0, Sigma: 1.0, Cutoff: 2.5},
		Bonds: BondedConfig{Enabled: true, K: 100.0, R0: 1.0},
	},
}

func GetPreset(name string) *Config {
	return Presets[name]
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	return names
}
