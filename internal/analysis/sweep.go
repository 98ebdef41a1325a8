package analysis

import (
	"context"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/Trawczynski/double-pendulum/internal/dynamo"
	"github.com/Trawczynski/double-pendulum/internal/integrators"
	"github.com/Trawczynski/double-pendulum/internal/metrics"
	"github.com/Trawczynski/double-pendulum/internal/pendulum"
)

// SweepConfig describes a scan over the initial first angle. Every point
// starts from rest with the same A2 and parameters.
type SweepConfig struct {
	Params   pendulum.Params
	A2       float64
	From, To float64
	Points   int
	Steps    int
	Method   integrators.Method
}

// SweepPoint is the outcome of one run in a sweep.
type SweepPoint struct {
	A1          float64
	Lyapunov    float64
	EnergyDrift float64
	Finite      bool
}

// Sweep runs cfg.Points independent simulations with A1 spaced evenly over
// [From, To]. It stops between points when ctx is done and returns what it
// has so far.
func Sweep(ctx context.Context, cfg SweepConfig) ([]SweepPoint, error) {
	if cfg.Points < 1 {
		return nil, fmt.Errorf("%w: sweep needs at least one point, got %d", dynamo.ErrInvalidConfig, cfg.Points)
	}
	if cfg.Steps < 1 {
		return nil, fmt.Errorf("%w: sweep needs at least one step, got %d", dynamo.ErrInvalidConfig, cfg.Steps)
	}

	step := 0.0
	if cfg.Points > 1 {
		step = (cfg.To - cfg.From) / float64(cfg.Points-1)
	}

	results := make([]SweepPoint, 0, cfg.Points)
	drift := metrics.NewEnergyDrift()

	for i := 0; i < cfg.Points; i++ {
		select {
		case <-ctx.Done():
			return results, ctx.Err()
		default:
		}

		a1 := cfg.From + float64(i)*step
		p := pendulum.New(cfg.Params, a1, cfg.A2, true)

		drift.Reset()
		drift.Observe(p, 0)
		for s := 1; s <= cfg.Steps; s++ {
			p.Step(cfg.Method)
		}
		drift.Observe(p, cfg.Steps)

		estimate, _ := p.Lyapunov()
		results = append(results, SweepPoint{
			A1:          a1,
			Lyapunov:    estimate,
			EnergyDrift: drift.Current(),
			Finite:      p.Vector().IsValid(),
		})
	}

	return results, nil
}

// Summary aggregates the finite points of a sweep.
type Summary struct {
	Points       int
	MeanLyapunov float64
	StdLyapunov  float64
	MeanDrift    float64
	StdDrift     float64
	// Chaotic counts points with a positive estimate.
	Chaotic int
}

func Summarize(points []SweepPoint) Summary {
	lya := make([]float64, 0, len(points))
	drift := make([]float64, 0, len(points))

	var s Summary
	for _, p := range points {
		if !p.Finite || math.IsNaN(p.Lyapunov) || math.IsInf(p.Lyapunov, 0) {
			continue
		}
		lya = append(lya, p.Lyapunov)
		drift = append(drift, p.EnergyDrift)
		if p.Lyapunov > 0 {
			s.Chaotic++
		}
	}

	s.Points = len(lya)
	switch len(lya) {
	case 0:
	case 1:
		s.MeanLyapunov, s.MeanDrift = lya[0], drift[0]
	default:
		s.MeanLyapunov, s.StdLyapunov = stat.MeanStdDev(lya, nil)
		s.MeanDrift, s.StdDrift = stat.MeanStdDev(drift, nil)
	}
	return s
}

// Series returns one field of every point, in sweep order.
func Series(points []SweepPoint, field func(SweepPoint) float64) []float64 {
	out := make([]float64, len(points))
	for i, p := range points {
		out[i] = field(p)
	}
	return out
}
