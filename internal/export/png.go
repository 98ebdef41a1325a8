// Package export renders recorded runs as image files.
package export

import (
	"bufio"
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/Trawczynski/double-pendulum/internal/sim"
)

var (
	firstColor  = color.RGBA{R: 0x00, G: 0x7a, B: 0xcc, A: 0xff}
	secondColor = color.RGBA{R: 0xe0, G: 0x4f, B: 0x2f, A: 0xff}
)

// Options controls the size of rendered images.
type Options struct {
	WidthIn, HeightIn float64
	DPI               int
}

func DefaultOptions() Options {
	return Options{WidthIn: 8, HeightIn: 6, DPI: 150}
}

// Render writes trajectory.png, energy.png and angles.png into dir and
// returns their paths.
func Render(dir string, samples []sim.Sample, opts Options) ([]string, error) {
	if len(samples) == 0 {
		return nil, fmt.Errorf("export: no samples to render")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("cannot create directory: %w", err)
	}

	plots := []struct {
		name  string
		build func([]sim.Sample) (*plot.Plot, error)
	}{
		{"trajectory.png", TrajectoryPlot},
		{"energy.png", EnergyPlot},
		{"angles.png", AnglesPlot},
	}

	paths := make([]string, 0, len(plots))
	for _, pl := range plots {
		p, err := pl.build(samples)
		if err != nil {
			return paths, fmt.Errorf("%s: %w", pl.name, err)
		}
		path := filepath.Join(dir, pl.name)
		if err := SavePNG(p, path, opts); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// TrajectoryPlot traces both bobs in the plane, with y pointing up.
func TrajectoryPlot(samples []sim.Sample) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = "Bob trajectories"
	p.X.Label.Text = "x"
	p.Y.Label.Text = "y"
	stylePlot(p)

	first := make(plotter.XYs, 0, len(samples))
	second := make(plotter.XYs, 0, len(samples))
	for _, s := range samples {
		if finite(s.X1, s.Y1) {
			first = append(first, plotter.XY{X: s.X1, Y: -s.Y1})
		}
		if finite(s.X2, s.Y2) {
			second = append(second, plotter.XY{X: s.X2, Y: -s.Y2})
		}
	}

	if err := addLine(p, "bob 1", first, firstColor); err != nil {
		return nil, err
	}
	if err := addLine(p, "bob 2", second, secondColor); err != nil {
		return nil, err
	}
	p.Legend.Top = true
	return p, nil
}

// EnergyPlot shows kinetic minus potential and kinetic plus potential
// energy against the step number.
func EnergyPlot(samples []sim.Sample) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = "Energy"
	p.X.Label.Text = "step"
	p.Y.Label.Text = "energy"
	stylePlot(p)

	if err := addLine(p, "K - P", series(samples, func(s sim.Sample) float64 { return s.Energy }), firstColor); err != nil {
		return nil, err
	}
	if err := addLine(p, "K + P", series(samples, func(s sim.Sample) float64 { return s.Total }), secondColor); err != nil {
		return nil, err
	}
	p.Legend.Top = true
	return p, nil
}

func AnglesPlot(samples []sim.Sample) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = "Angles"
	p.X.Label.Text = "step"
	p.Y.Label.Text = "angle (rad)"
	stylePlot(p)

	if err := addLine(p, "a1", series(samples, func(s sim.Sample) float64 { return s.State[0] }), firstColor); err != nil {
		return nil, err
	}
	if err := addLine(p, "a2", series(samples, func(s sim.Sample) float64 { return s.State[1] }), secondColor); err != nil {
		return nil, err
	}
	p.Legend.Top = true
	return p, nil
}

func SavePNG(p *plot.Plot, filename string, opts Options) error {
	w := vg.Length(opts.WidthIn) * vg.Inch
	h := vg.Length(opts.HeightIn) * vg.Inch

	c := vgimg.NewWith(
		vgimg.UseWH(w, h),
		vgimg.UseDPI(opts.DPI),
	)
	p.Draw(draw.New(c))

	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("cannot create png: %w", err)
	}
	defer f.Close()

	bw := bufio.NewWriter(f)
	pngc := vgimg.PngCanvas{Canvas: c}
	if _, err := pngc.WriteTo(bw); err != nil {
		return fmt.Errorf("cannot write png: %w", err)
	}
	return bw.Flush()
}

func stylePlot(p *plot.Plot) {
	p.Title.TextStyle.Font.Size = vg.Points(16)
	p.Title.Padding = vg.Points(8)
	p.X.Padding = vg.Points(10)
	p.Y.Padding = vg.Points(10)
	p.Add(plotter.NewGrid())
}

func addLine(p *plot.Plot, label string, pts plotter.XYs, c color.Color) error {
	if len(pts) == 0 {
		return nil
	}
	line, err := plotter.NewLine(pts)
	if err != nil {
		return err
	}
	line.LineStyle.Width = vg.Points(1.5)
	line.LineStyle.Color = c
	p.Add(line)
	p.Legend.Add(label, line)
	return nil
}

// series pairs f with the step number, dropping non-finite values.
func series(samples []sim.Sample, f func(sim.Sample) float64) plotter.XYs {
	pts := make(plotter.XYs, 0, len(samples))
	for _, s := range samples {
		if v := f(s); finite(v) {
			pts = append(pts, plotter.XY{X: float64(s.Step), Y: v})
		}
	}
	return pts
}

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
