package main

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"strings"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/Trawczynski/double-pendulum/internal/analysis"
	"github.com/Trawczynski/double-pendulum/internal/config"
	"github.com/Trawczynski/double-pendulum/internal/export"
	"github.com/Trawczynski/double-pendulum/internal/integrators"
	"github.com/Trawczynski/double-pendulum/internal/metrics"
	"github.com/Trawczynski/double-pendulum/internal/sim"
	"github.com/Trawczynski/double-pendulum/internal/storage"
	"github.com/Trawczynski/double-pendulum/internal/viz"
)

func openStore() (*storage.Store, error) {
	st := storage.New(dataDir, storage.WithLogger(logger))
	if err := st.Init(); err != nil {
		return nil, err
	}
	return st, nil
}

// pickRun returns the run named in args, or the latest saved run.
func pickRun(st *storage.Store, args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	return st.Latest()
}

func addMetrics(s *sim.Simulator) {
	s.AddMetric(metrics.NewEnergyDrift())
	s.AddMetric(metrics.NewRodConstraint())
	s.AddMetric(metrics.NewLyapunov())
	s.AddMetric(metrics.NewFinite())
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	method, err := cfg.Method()
	if err != nil {
		return err
	}

	if writeConfig != "" {
		if err := config.Save(writeConfig, cfg); err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	s := sim.New(cfg.NewPendulum(), method, sim.WithLogger(logger))
	addMetrics(s)

	fmt.Printf("running %s for %d steps...\n", method, cfg.Steps)
	result, runErr := s.Run(ctx, cfg.SimConfig())
	if runErr != nil && result == nil {
		return runErr
	}

	final, _ := result.Final()
	fmt.Printf("steps:        %d\n", result.StepsTaken)
	fmt.Printf("elapsed:      %v\n", result.Elapsed)
	fmt.Printf("final state:  a1=%.4f a2=%.4f v1=%.4f v2=%.4f\n",
		final.State[0], final.State[1], final.State[2], final.State[3])
	fmt.Printf("energy drift: %.4e\n", result.EnergyDrift)
	for _, name := range []string{"rod_residual", "lyapunov", "finite"} {
		if v, ok := result.Metrics[name]; ok {
			fmt.Printf("%-13s %.6g\n", name+":", v)
		}
	}
	for _, e := range result.Errors {
		fmt.Printf("error:        %v\n", e)
	}

	if noSave {
		return runErr
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	meta := storage.RunMetadata{
		Integrator:  method.String(),
		Preset:      preset,
		Steps:       cfg.Steps,
		SampleEvery: cfg.SampleEvery,
		TrackChaos:  cfg.TrackChaos,
		Initial: storage.Initial{
			R1: cfg.Pendulum.R1, R2: cfg.Pendulum.R2,
			M1: cfg.Pendulum.M1, M2: cfg.Pendulum.M2,
			G:  cfg.Pendulum.G,
			A1: cfg.Pendulum.A1, A2: cfg.Pendulum.A2,
		},
	}
	runID, err := st.Save(meta, result)
	if err != nil {
		return err
	}
	fmt.Printf("saved: %s\n", runID)
	return runErr
}

func listRuns(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}

	runs, err := st.List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTIME\tINTEGRATOR\tSTEPS\tDRIFT\tLYAPUNOV")
	for _, r := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%.3e\t%.4g\n",
			r.ID,
			r.Timestamp.Format(time.DateTime),
			r.Integrator,
			r.StepsTaken,
			float64(r.EnergyDrift),
			float64(r.Metrics["lyapunov"]),
		)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	runID, err := pickRun(st, args)
	if err != nil {
		return err
	}
	samples, err := st.LoadSamples(runID)
	if err != nil {
		return err
	}
	if len(samples) == 0 {
		return errors.New("run has no samples")
	}

	result := &sim.Result{Samples: samples}
	charts := []struct {
		caption string
		field   func(sim.Sample) float64
	}{
		{"a1 (rad)", func(s sim.Sample) float64 { return s.State[0] }},
		{"a2 (rad)", func(s sim.Sample) float64 { return s.State[1] }},
		{"total energy", func(s sim.Sample) float64 { return s.Total }},
		{"chaos estimate", func(s sim.Sample) float64 { return s.Lyapunov }},
	}

	fmt.Printf("run %s (%d samples)\n\n", runID, len(samples))
	for _, c := range charts {
		data := finiteOnly(downsample(result.Column(c.field), 400))
		if len(data) == 0 {
			fmt.Printf("%s: no finite values\n\n", c.caption)
			continue
		}
		fmt.Println(asciigraph.Plot(data, asciigraph.Height(10), asciigraph.Width(80), asciigraph.Caption(c.caption)))
		fmt.Println()
	}
	return nil
}

func phasePlot(cmd *cobra.Command, args []string) error {
	xIdx, ok := analysis.IndexByName(xAxis)
	if !ok {
		return fmt.Errorf("unknown axis %q (use a1, a2, v1 or v2)", xAxis)
	}
	yIdx, ok := analysis.IndexByName(yAxis)
	if !ok {
		return fmt.Errorf("unknown axis %q (use a1, a2, v1 or v2)", yAxis)
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	runID, err := pickRun(st, args)
	if err != nil {
		return err
	}
	samples, err := st.LoadSamples(runID)
	if err != nil {
		return err
	}

	states := (&sim.Result{Samples: samples}).States()
	var pp *analysis.PhasePortrait
	title := "phase portrait"
	if poincare {
		pp = analysis.PoincareSection(states, analysis.IndexA2, 0, xIdx, yIdx)
		title = "poincare section (a2 = 0, rising)"
	} else {
		pp = analysis.PortraitFromStates(states, xIdx, yIdx)
	}

	minX, maxX, minY, maxY, ok := pp.Bounds()
	if !ok {
		return errors.New("no finite points to plot")
	}
	fmt.Printf("%s: %s vs %s, %d points\n", title, yAxis, xAxis, len(pp.Points))
	fmt.Printf("%s in [%.3f, %.3f], %s in [%.3f, %.3f]\n\n", xAxis, minX, maxX, yAxis, minY, maxY)
	fmt.Print(pp.ASCII(80, 30))
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	runID, err := pickRun(st, args)
	if err != nil {
		return err
	}
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	samples, err := st.LoadSamples(runID)
	if err != nil {
		return err
	}

	result := &sim.Result{Samples: samples}
	every := meta.SampleEvery
	if every < 1 {
		every = 1
	}

	fmt.Printf("analysis of %s (%s, %d samples)\n\n", runID, meta.Integrator, len(samples))
	for i, name := range []string{"a1", "a2"} {
		idx := i
		series := result.Column(func(s sim.Sample) float64 { return s.State[idx] })
		freq, power := analysis.DominantFrequency(series)
		if freq == 0 {
			fmt.Printf("%s: too few samples for a spectrum\n", name)
			continue
		}
		// Samples are every-th step apart.
		perStep := freq / float64(every)
		fmt.Printf("%s: dominant frequency %.5f cycles/step (period %.1f steps), power %.4g\n",
			name, perStep, 1/perStep, power)
	}

	spectrum := analysis.PowerSpectrum(result.Column(func(s sim.Sample) float64 { return s.State[0] }))
	if len(spectrum) > 8 {
		data := finiteOnly(spectrum[1 : len(spectrum)/4])
		if len(data) > 0 {
			fmt.Println()
			fmt.Println(asciigraph.Plot(downsample(data, 200), asciigraph.Height(10), asciigraph.Width(80),
				asciigraph.Caption("a1 power spectrum (low frequencies)")))
		}
	}

	fmt.Printf("\nenergy drift: %.4e\n", float64(meta.EnergyDrift))
	if v, ok := meta.Metrics["lyapunov"]; ok {
		fmt.Printf("chaos estimate: %.6g\n", float64(v))
	}
	return nil
}

func renderRun(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	runID, err := pickRun(st, args)
	if err != nil {
		return err
	}
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	samples, err := st.LoadSamples(runID)
	if err != nil {
		return err
	}

	dir := outDir
	if dir == "" {
		dir = filepath.Join(st.Dir(), runID)
	}
	opts := export.DefaultOptions()
	opts.DPI = dpi

	files, err := export.Render(dir, samples, opts)
	if err != nil {
		return err
	}
	if writeSVG {
		svgPath := filepath.Join(dir, "trajectory.svg")
		svg := export.TrajectorySVG(samples, meta.Initial.R1, meta.Initial.R2, 600)
		if err := os.WriteFile(svgPath, []byte(svg), 0644); err != nil {
			return fmt.Errorf("write svg: %w", err)
		}
		files = append(files, svgPath)
	}

	for _, f := range files {
		fmt.Println(f)
	}
	return nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	runID, err := pickRun(st, args)
	if err != nil {
		return err
	}
	samples, err := st.LoadSamples(runID)
	if err != nil {
		return err
	}
	return storage.WriteCSV(os.Stdout, samples)
}

func exportJSON(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	runID, err := pickRun(st, args)
	if err != nil {
		return err
	}
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	samples, err := st.LoadSamples(runID)
	if err != nil {
		return err
	}
	return storage.ExportJSON(os.Stdout, meta, samples)
}

func compareIntegrators(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	methods := integrators.Methods()
	if len(args) > 0 {
		methods = methods[:0:0]
		for _, name := range args {
			m, err := integrators.ParseMethod(name)
			if err != nil {
				return err
			}
			methods = append(methods, m)
		}
	}

	sims := make([]*sim.Simulator, len(methods))
	for i, m := range methods {
		sims[i] = sim.New(cfg.NewPendulum(), m, sim.WithLogger(logger))
		addMetrics(sims[i])
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	runCfg := cfg.SimConfig()
	// Only the final state is reported.
	runCfg.SampleEvery = cfg.Steps
	results, err := sim.RunAll(ctx, sims, runCfg)
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Sugar().Warnw("compare finished with errors", "error", err)
	}

	fmt.Printf("comparing integrators: a1=%.3f a2=%.3f, %d steps\n\n", cfg.Pendulum.A1, cfg.Pendulum.A2, cfg.Steps)
	fmt.Printf("%-20s  %-12s  %-12s  %-12s  %-12s  %-10s\n", "integrator", "final_a1", "final_a2", "energy_drift", "lyapunov", "time_ms")
	fmt.Println(strings.Repeat("-", 88))

	for i, r := range results {
		if r == nil {
			fmt.Printf("%-20s  (not run)\n", methods[i])
			continue
		}
		final, _ := r.Final()
		fmt.Printf("%-20s  %-12.6f  %-12.6f  %-12.4e  %-12.6g  %-10.2f\n",
			methods[i],
			final.State[0],
			final.State[1],
			r.EnergyDrift,
			r.Metrics["lyapunov"],
			float64(r.Elapsed.Microseconds())/1000,
		)
	}
	return err
}

func sweepAngles(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	method, err := cfg.Method()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("sweeping a1 over [%.3f, %.3f] with %d points, %d steps each (%s)\n\n",
		sweepFrom, sweepTo, sweepPoints, cfg.Steps, method)
	points, err := analysis.Sweep(ctx, analysis.SweepConfig{
		Params: cfg.Params(),
		A2:     cfg.Pendulum.A2,
		From:   sweepFrom,
		To:     sweepTo,
		Points: sweepPoints,
		Steps:  cfg.Steps,
		Method: method,
	})
	if err != nil && len(points) == 0 {
		return err
	}

	lya := finiteOnly(analysis.Series(points, func(p analysis.SweepPoint) float64 { return p.Lyapunov }))
	if len(lya) > 1 {
		fmt.Println(asciigraph.Plot(lya, asciigraph.Height(12), asciigraph.Width(80),
			asciigraph.Caption("chaos estimate vs initial a1")))
		fmt.Println()
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "A1\tLYAPUNOV\tDRIFT\tFINITE")
	for _, p := range points {
		fmt.Fprintf(w, "%.4f\t%.6g\t%.3e\t%t\n", p.A1, p.Lyapunov, p.EnergyDrift, p.Finite)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	sum := analysis.Summarize(points)
	fmt.Printf("\n%d finite points, %d with a positive estimate\n", sum.Points, sum.Chaotic)
	fmt.Printf("lyapunov: mean %.6g, std %.6g\n", sum.MeanLyapunov, sum.StdLyapunov)
	fmt.Printf("drift:    mean %.3e, std %.3e\n", sum.MeanDrift, sum.StdDrift)
	return err
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tINTEGRATOR\tA1\tA2\tSTEPS\tDESCRIPTION")
	for _, name := range config.ListPresets() {
		p := config.GetPreset(name)
		fmt.Fprintf(w, "%s\t%s\t%.3f\t%.3f\t%d\t%s\n",
			name, p.Integrator, p.Pendulum.A1, p.Pendulum.A2, p.Steps, config.Describe(name))
	}
	return w.Flush()
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	method, err := cfg.Method()
	if err != nil {
		return err
	}
	if !slices.Contains(viz.ThemeNames(), theme) {
		return fmt.Errorf("unknown theme: %s (available: %v)", theme, viz.ThemeNames())
	}

	opts := viz.DefaultOptions()
	opts.FPS = frameRate
	opts.StepsPerTick = speed
	opts.Theme = theme

	model := viz.NewModel(cfg.NewPendulum(), method, opts)
	p := tea.NewProgram(model, tea.WithAltScreen())
	_, err = p.Run()
	return err
}

func finiteOnly(data []float64) []float64 {
	out := make([]float64, 0, len(data))
	for _, v := range data {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			out = append(out, v)
		}
	}
	return out
}

// downsample keeps at most n evenly spaced values.
func downsample(data []float64, n int) []float64 {
	if len(data) <= n || n < 2 {
		return data
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = data[i*(len(data)-1)/(n-1)]
	}
	return out
}
