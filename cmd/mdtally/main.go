package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/mdtally/internal/config"
	"github.com/san-kum/mdtally/internal/metrics"
	"github.com/san-kum/mdtally/internal/run"
	"github.com/san-kum/mdtally/internal/storage"
	"github.com/san-kum/mdtally/internal/viz"
	"github.com/spf13/cobra"
)

var (
	dataDir    string
	natoms     int
	nghost     int
	nthreads   int
	nsteps     int
	box        float64
	seed       int64
	jitter     float64
	newton     bool
	fdotr      bool
	atomEnergy bool
	atomVirial bool
	cutoff     float64
	epsilon    float64
	sigma      float64
	configFile string
	preset     string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "mdtally",
		Short: "thread-parallel energy and virial tally lab",
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".mdtally", "data directory")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a tally loop and save the series",
		RunE:  runLoop,
	}
	addSystemFlags(runCmd)

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "benchmark the tally loop across thread counts",
		RunE:  benchLoop,
	}
	benchCmd.Flags().IntVar(&natoms, "atoms", 2000, "local atom count")
	benchCmd.Flags().IntVar(&nghost, "ghosts", 400, "ghost atom count")
	benchCmd.Flags().IntVar(&nsteps, "steps", 10, "steps per measurement")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot the energy and virial series of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run metadata",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run with live terminal visualization",
		RunE:  runLive,
	}
	addSystemFlags(liveCmd)

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, p := range config.ListPresets() {
				fmt.Println(p)
			}
			return nil
		},
	}

	rootCmd.AddCommand(runCmd, benchCmd, listCmd, plotCmd, exportCmd, liveCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addSystemFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&natoms, "atoms", config.DefaultAtoms, "local atom count")
	cmd.Flags().IntVar(&nghost, "ghosts", config.DefaultGhosts, "ghost atom count")
	cmd.Flags().IntVar(&nthreads, "threads", config.DefaultThreads, "worker thread count")
	cmd.Flags().IntVar(&nsteps, "steps", config.DefaultSteps, "timestep count")
	cmd.Flags().Float64Var(&box, "box", config.DefaultBox, "box side length")
	cmd.Flags().Int64Var(&seed, "seed", 42, "random seed")
	cmd.Flags().Float64Var(&jitter, "jitter", 0.02, "per-step position jitter")
	cmd.Flags().BoolVar(&newton, "newton", true, "full neighbor crediting")
	cmd.Flags().BoolVar(&fdotr, "fdotr", false, "f dot r pair virial")
	cmd.Flags().BoolVar(&atomEnergy, "atom-energy", false, "tally per-atom energies")
	cmd.Flags().BoolVar(&atomVirial, "atom-virial", false, "tally per-atom virials")
	cmd.Flags().Float64Var(&cutoff, "cutoff", config.DefaultCutoff, "pair cutoff")
	cmd.Flags().Float64Var(&epsilon, "epsilon", config.DefaultEpsilon, "lj epsilon")
	cmd.Flags().Float64Var(&sigma, "sigma", config.DefaultSigma, "lj sigma")
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
}

// buildConfig resolves the run configuration: preset first, then config
// file, then any explicitly set CLI flags on top.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		p := config.GetPreset(preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		*cfg = *p
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	if cmd.Flags().Changed("atoms") {
		cfg.Atoms = natoms
	}
	if cmd.Flags().Changed("ghosts") {
		cfg.Ghosts = nghost
	}
	if cmd.Flags().Changed("threads") {
		cfg.Threads = nthreads
	}
	if cmd.Flags().Changed("steps") {
		cfg.Steps = nsteps
	}
	if cmd.Flags().Changed("box") {
		cfg.Box = box
	}
	if cmd.Flags().Changed("seed") {
		cfg.Seed = seed
	}
	if cmd.Flags().Changed("jitter") {
		cfg.Jitter = jitter
	}
	if cmd.Flags().Changed("newton") {
		cfg.Newton = newton
	}
	if cmd.Flags().Changed("fdotr") {
		cfg.FdotR = fdotr
	}
	if cmd.Flags().Changed("atom-energy") {
		cfg.AtomEnergy = atomEnergy
	}
	if cmd.Flags().Changed("atom-virial") {
		cfg.AtomVirial = atomVirial
	}
	if cmd.Flags().Changed("cutoff") {
		cfg.Pair.Cutoff = cutoff
	}
	if cmd.Flags().Changed("epsilon") {
		cfg.Pair.Epsilon = epsilon
	}
	if cmd.Flags().Changed("sigma") {
		cfg.Pair.Sigma = sigma
	}

	return cfg, nil
}

func runLoop(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	sys, err := run.NewSystem(cfg)
	if err != nil {
		return err
	}
	sys.AddMetric(&metrics.MeanEnergy{})
	sys.AddMetric(&metrics.EnergyDrift{})
	sys.AddMetric(metrics.NewPressure(cfg.Box * cfg.Box * cfg.Box))

	fmt.Printf("running %d atoms (%d ghosts) on %d threads...\n", cfg.Atoms, cfg.Ghosts, cfg.Threads)
	start := time.Now()

	result, err := sys.Run(context.Background())
	if err != nil {
		return err
	}

	elapsed := time.Since(start)

	runID, err := st.Save(cfg, result)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("steps: %d\n", len(result.Records))
	fmt.Println("\nmetrics:")
	for name, val := range result.Metrics {
		fmt.Printf("  %s: %.6f\n", name, val)
	}

	return nil
}

func benchLoop(cmd *cobra.Command, args []string) error {
	threadCounts := []int{1, 2, 4, 8}

	fmt.Printf("benchmarking %d atoms (%d ghosts), %d steps\n\n", natoms, nghost, nsteps)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "THREADS\tSTEPS\tTIME\tSTEPS/SEC")

	for _, nt := range threadCounts {
		cfg := config.DefaultConfig()
		cfg.Atoms = natoms
		cfg.Ghosts = nghost
		cfg.Threads = nt
		cfg.Steps = nsteps
		cfg.Jitter = 0
		cfg.Box = 25.0

		sys, err := run.NewSystem(cfg)
		if err != nil {
			return err
		}

		start := time.Now()
		result, err := sys.Run(context.Background())
		if err != nil {
			return err
		}
		elapsed := time.Since(start)

		steps := len(result.Records)
		fmt.Fprintf(w, "%d\t%d\t%v\t%.1f\n", nt, steps, elapsed, float64(steps)/elapsed.Seconds())
	}

	return w.Flush()
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTIME\tATOMS\tGHOSTS\tTHREADS\tSTEPS\tNEWTON")

	for _, r := range runs {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\t%d\t%v\n",
			r.ID,
			r.Timestamp.Format("2006-01-02 15:04:05"),
			r.Atoms,
			r.Ghosts,
			r.Threads,
			r.Steps,
			r.Newton,
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	energy, vtrace, err := st.LoadSeries(runID)
	if err != nil {
		return err
	}

	if len(energy) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("atoms: %d (%d ghosts), threads: %d\n", meta.Atoms, meta.Ghosts, meta.Threads)
	fmt.Printf("samples: %d\n\n", len(energy))

	graph := asciigraph.Plot(energy,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption("total energy"),
	)
	fmt.Println(graph)
	fmt.Println()

	graph = asciigraph.Plot(vtrace,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption("virial trace"),
	)
	fmt.Println(graph)

	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	sys, err := run.NewSystem(cfg)
	if err != nil {
		return err
	}

	m := viz.NewModel(sys, "mdtally")
	p := tea.NewProgram(m)
	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}
