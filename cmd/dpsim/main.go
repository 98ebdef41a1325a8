package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Trawczynski/double-pendulum/internal/config"
	"github.com/Trawczynski/double-pendulum/internal/integrators"
	"github.com/Trawczynski/double-pendulum/internal/viz"
)

var (
	dataDir string
	verbose bool
	logger  = zap.NewNop()

	// Pendulum and run parameters. Defaults mirror config.DefaultConfig.
	r1, r2       float64
	m1, m2       float64
	gravity      float64
	a1, a2       float64
	steps        int
	sampleEvery  int
	integrator   string
	trackChaos   bool
	validate     bool
	configFile   string
	preset       string
	noSave       bool
	writeConfig  string
	xAxis, yAxis string
	poincare     bool
	outDir       string
	dpi          int
	writeSVG     bool
	sweepFrom    float64
	sweepTo      float64
	sweepPoints  int
	frameRate    int
	speed        int
	theme        string
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "dpsim",
		Short:         "double pendulum simulation lab",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			l, err := newLogger(verbose)
			if err != nil {
				return err
			}
			logger = l
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".dpsim", "data directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a simulation and save it",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	addPendulumFlags(runCmd)
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "print the summary without saving")
	runCmd.Flags().StringVar(&writeConfig, "write-config", "", "write the resolved config to this yaml file")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list saved runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot angles, energy and the chaos estimate of a run",
		Args:  cobra.MaximumNArgs(1),
		RunE:  plotRun,
	}

	phaseCmd := &cobra.Command{
		Use:   "phase [run_id]",
		Short: "phase portrait or Poincare section of a run",
		Args:  cobra.MaximumNArgs(1),
		RunE:  phasePlot,
	}
	phaseCmd.Flags().StringVar(&xAxis, "x", "a1", "x axis variable (a1, a2, v1, v2)")
	phaseCmd.Flags().StringVar(&yAxis, "y", "v1", "y axis variable (a1, a2, v1, v2)")
	phaseCmd.Flags().BoolVar(&poincare, "poincare", false, "only plot upward crossings of a2 = 0")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "spectral analysis of the angles",
		Args:  cobra.MaximumNArgs(1),
		RunE:  analyzeRun,
	}

	renderCmd := &cobra.Command{
		Use:   "render [run_id]",
		Short: "render a run to png (and svg) images",
		Args:  cobra.MaximumNArgs(1),
		RunE:  renderRun,
	}
	renderCmd.Flags().StringVarP(&outDir, "out", "o", "", "output directory (default <data>/<run_id>)")
	renderCmd.Flags().IntVar(&dpi, "dpi", 150, "image resolution")
	renderCmd.Flags().BoolVar(&writeSVG, "svg", true, "also write trajectory.svg")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "write the samples of a run as csv to stdout",
		Args:  cobra.MaximumNArgs(1),
		RunE:  exportCSV,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "write a run and its samples as json to stdout",
		Args:  cobra.MaximumNArgs(1),
		RunE:  exportJSON,
	}

	compareCmd := &cobra.Command{
		Use:   "compare [integrator...]",
		Short: "run the same pendulum with several integrators",
		RunE:  compareIntegrators,
	}
	addPendulumFlags(compareCmd)

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "scan the chaos estimate over the first initial angle",
		Args:  cobra.NoArgs,
		RunE:  sweepAngles,
	}
	addPendulumFlags(sweepCmd)
	sweepCmd.Flags().Float64Var(&sweepFrom, "from", 0.1, "first a1")
	sweepCmd.Flags().Float64Var(&sweepTo, "to", 3.0, "last a1")
	sweepCmd.Flags().IntVar(&sweepPoints, "points", 30, "number of a1 values")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list presets",
		Args:  cobra.NoArgs,
		RunE:  listPresets,
	}

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "animate the pendulum in the terminal",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	addPendulumFlags(liveCmd)
	liveCmd.Flags().IntVar(&frameRate, "fps", 60, "frames per second")
	liveCmd.Flags().IntVar(&speed, "speed", 1, "integration steps per frame")
	liveCmd.Flags().StringVar(&theme, "theme", "cyberpunk", "colour theme ("+strings.Join(viz.ThemeNames(), ", ")+")")

	rootCmd.AddCommand(runCmd, listCmd, plotCmd, phaseCmd, analyzeCmd, renderCmd,
		exportCSVCmd, exportJSONCmd, compareCmd, sweepCmd, presetsCmd, liveCmd)

	err := rootCmd.Execute()
	_ = logger.Sync()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func addPendulumFlags(cmd *cobra.Command) {
	def := config.DefaultConfig()
	f := cmd.Flags()
	f.Float64Var(&r1, "r1", def.Pendulum.R1, "upper rod length")
	f.Float64Var(&r2, "r2", def.Pendulum.R2, "lower rod length")
	f.Float64Var(&m1, "m1", def.Pendulum.M1, "upper bob mass")
	f.Float64Var(&m2, "m2", def.Pendulum.M2, "lower bob mass")
	f.Float64Var(&gravity, "g", def.Pendulum.G, "gravity")
	f.Float64Var(&a1, "a1", def.Pendulum.A1, "initial upper angle (rad)")
	f.Float64Var(&a2, "a2", def.Pendulum.A2, "initial lower angle (rad)")
	f.IntVar(&steps, "steps", def.Steps, "number of steps")
	f.IntVar(&sampleEvery, "sample-every", def.SampleEvery, "record every n-th step")
	f.StringVar(&integrator, "integrator", def.Integrator, "integrator ("+strings.Join(integrators.Names(), ", ")+")")
	f.BoolVar(&trackChaos, "chaos", def.TrackChaos, "track the chaos estimate")
	f.BoolVar(&validate, "validate", def.ValidateState, "stop at the first non-finite state")
	f.StringVar(&configFile, "config", "", "config file path (yaml)")
	f.StringVar(&preset, "preset", "", "use preset configuration")
}

// resolveConfig layers defaults, the preset, the config file and finally
// flags the user set explicitly.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}

	if configFile != "" {
		loaded, err := config.LoadOver(configFile, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	floats := []struct {
		name string
		src  float64
		dst  *float64
	}{
		{"r1", r1, &cfg.Pendulum.R1},
		{"r2", r2, &cfg.Pendulum.R2},
		{"m1", m1, &cfg.Pendulum.M1},
		{"m2", m2, &cfg.Pendulum.M2},
		{"g", gravity, &cfg.Pendulum.G},
		{"a1", a1, &cfg.Pendulum.A1},
		{"a2", a2, &cfg.Pendulum.A2},
	}
	for _, f := range floats {
		if flags.Changed(f.name) {
			*f.dst = f.src
		}
	}
	if flags.Changed("steps") {
		cfg.Steps = steps
	}
	if flags.Changed("sample-every") {
		cfg.SampleEvery = sampleEvery
	}
	if flags.Changed("integrator") {
		cfg.Integrator = integrator
	}
	if flags.Changed("chaos") {
		cfg.TrackChaos = trackChaos
	}
	if flags.Changed("validate") {
		cfg.ValidateState = validate
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	cfg.Encoding = "console"
	return cfg.Build()
}
