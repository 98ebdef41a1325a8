package sim

import (
	"context"
	"errors"
	"math"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Trawczynski/double-pendulum/internal/dynamo"
	"github.com/Trawczynski/double-pendulum/internal/integrators"
	"github.com/Trawczynski/double-pendulum/internal/metrics"
	"github.com/Trawczynski/double-pendulum/internal/pendulum"
)

var testParams = pendulum.Params{R1: 120, R2: 120, M1: 10, M2: 10, G: 1}

func TestSimulatorRun(t *testing.T) {
	p := pendulum.New(testParams, 1.0, 0.5, true)
	s := New(p, integrators.MethodRK4)

	result, err := s.Run(context.Background(), Config{Steps: 100})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if result.StepsTaken != 100 {
		t.Errorf("expected 100 steps, got %d", result.StepsTaken)
	}
	if len(result.Samples) != 101 {
		t.Errorf("expected 101 samples, got %d", len(result.Samples))
	}

	final, ok := result.Final()
	if !ok {
		t.Fatal("expected a final sample")
	}
	if final.Step != 100 {
		t.Errorf("expected final step 100, got %d", final.Step)
	}
	if final.State[0] != p.A1 || final.State[3] != p.V2 {
		t.Errorf("final sample %v does not match pendulum %v", final.State, p.Vector())
	}
	if lya, _ := p.Lyapunov(); final.Lyapunov != lya {
		t.Errorf("expected sampled estimate %g, got %g", lya, final.Lyapunov)
	}
	if result.EnergyDrift > 1e-3 {
		t.Errorf("RK4 drift unexpectedly large: %g", result.EnergyDrift)
	}
}

func TestSimulatorMatchesDirectStepping(t *testing.T) {
	direct := pendulum.New(testParams, 1.0, -0.5, false)
	for i := 0; i < 50; i++ {
		direct.StepSemiImplicitEuler()
	}

	p := pendulum.New(testParams, 1.0, -0.5, false)
	if _, err := New(p, integrators.MethodSemiImplicitEuler).Run(context.Background(), Config{Steps: 50}); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	for i, v := range direct.Vector() {
		if p.Vector()[i] != v {
			t.Fatalf("state differs at %d: %v vs %v", i, p.Vector(), direct.Vector())
		}
	}
}

func TestSimulatorSampling(t *testing.T) {
	p := pendulum.New(testParams, 0.3, 0.3, false)
	result, err := New(p, integrators.MethodRK4).Run(context.Background(), Config{Steps: 25, SampleEvery: 10})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	var steps []int
	for _, s := range result.Samples {
		steps = append(steps, s.Step)
	}
	want := []int{0, 10, 20, 25}
	if len(steps) != len(want) {
		t.Fatalf("expected samples at %v, got %v", want, steps)
	}
	for i := range want {
		if steps[i] != want[i] {
			t.Errorf("expected samples at %v, got %v", want, steps)
			break
		}
	}
}

func TestSimulatorInvalidConfig(t *testing.T) {
	s := New(pendulum.New(testParams, 0, 0, false), integrators.MethodRK4)

	tests := []struct {
		name string
		cfg  Config
	}{
		{"zero steps", Config{Steps: 0}},
		{"negative steps", Config{Steps: -5}},
		{"negative sample interval", Config{Steps: 10, SampleEvery: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Run(context.Background(), tt.cfg)
			if !errors.Is(err, dynamo.ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestSimulatorCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	p := pendulum.New(testParams, 1, 1, false)
	s := New(p, integrators.MethodRK4)
	s.AddObserver(ObserverFunc(func(_ *pendulum.Pendulum, step int) {
		if step == 10 {
			cancel()
		}
	}))

	result, err := s.Run(ctx, Config{Steps: 1000})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if !errors.Is(err, dynamo.ErrCanceled) {
		t.Errorf("expected ErrCanceled, got %v", err)
	}
	if result == nil {
		t.Fatal("expected partial result")
	}
	if result.StepsTaken != 10 {
		t.Errorf("expected 10 steps before cancel, got %d", result.StepsTaken)
	}
}

func TestSimulatorNonFinite(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)

	singular := pendulum.Params{R1: 1, R2: 1, M1: 0, M2: 1, G: 1}
	p := pendulum.New(singular, 0.5, 0.5, false)
	s := New(p, integrators.MethodForwardEuler, WithLogger(zap.New(core)))

	result, err := s.Run(context.Background(), Config{Steps: 10, ValidateState: true})
	if err != nil {
		t.Fatalf("non-finite state should not fail the run: %v", err)
	}
	if len(result.Errors) != 1 {
		t.Fatalf("expected 1 error, got %d", len(result.Errors))
	}

	var simErr *dynamo.SimulationError
	if !errors.As(result.Errors[0], &simErr) {
		t.Fatalf("expected SimulationError, got %T", result.Errors[0])
	}
	if simErr.Step != 1 {
		t.Errorf("expected failure at step 1, got %d", simErr.Step)
	}
	if !errors.Is(result.Errors[0], dynamo.ErrNonFinite) {
		t.Error("expected error to wrap ErrNonFinite")
	}
	if result.StepsTaken != 0 {
		t.Errorf("expected no completed steps, got %d", result.StepsTaken)
	}
	if logs.FilterMessage("non-finite state").Len() != 1 {
		t.Error("expected a warning to be logged")
	}
}

func TestSimulatorWithoutValidationKeepsGoing(t *testing.T) {
	singular := pendulum.Params{R1: 1, R2: 1, M1: 0, M2: 1, G: 1}
	p := pendulum.New(singular, 0.5, 0.5, false)
	s := New(p, integrators.MethodForwardEuler)
	finite := metrics.NewFinite()
	s.AddMetric(finite)

	result, err := s.Run(context.Background(), Config{Steps: 4})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if result.StepsTaken != 4 || len(result.Errors) != 0 {
		t.Errorf("expected 4 steps and no errors, got %d and %v", result.StepsTaken, result.Errors)
	}
	// step 0 is the only finite observation
	if got := result.Metrics["finite"]; math.Abs(got-0.2) > 1e-12 {
		t.Errorf("expected finite fraction 0.2, got %g", got)
	}
}

func TestSimulatorMetrics(t *testing.T) {
	p := pendulum.New(testParams, 0.5, 0.5, true)
	s := New(p, integrators.MethodForwardEuler)
	s.AddMetric(metrics.NewEnergyDrift())
	s.AddMetric(metrics.NewRodConstraint())
	s.AddMetric(metrics.NewLyapunov())

	result, err := s.Run(context.Background(), Config{Steps: 30})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	for _, name := range []string{"energy_drift", "rod_residual", "lyapunov"} {
		if _, ok := result.Metrics[name]; !ok {
			t.Errorf("missing metric %s", name)
		}
	}
	if result.Metrics["energy_drift"] < result.EnergyDrift {
		t.Errorf("max drift %g below final drift %g", result.Metrics["energy_drift"], result.EnergyDrift)
	}
	if lya, _ := p.Lyapunov(); result.Metrics["lyapunov"] != lya {
		t.Errorf("expected lyapunov metric %g, got %g", lya, result.Metrics["lyapunov"])
	}
}

func TestSimulatorObserverSeesEveryStep(t *testing.T) {
	var seen []int
	s := New(pendulum.New(testParams, 0.2, 0.1, false), integrators.MethodRK4)
	s.AddObserver(ObserverFunc(func(_ *pendulum.Pendulum, step int) {
		seen = append(seen, step)
	}))

	if _, err := s.Run(context.Background(), Config{Steps: 5, SampleEvery: 3}); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if len(seen) != 6 || seen[0] != 0 || seen[5] != 5 {
		t.Errorf("expected steps 0..5, got %v", seen)
	}
}

func TestRunAll(t *testing.T) {
	methods := integrators.Methods()
	sims := make([]*Simulator, len(methods))
	for i, m := range methods {
		sims[i] = New(pendulum.New(testParams, 1.2, 0.4, true), m)
	}

	results, err := RunAll(context.Background(), sims, Config{Steps: 40})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	for i, m := range methods {
		want := pendulum.New(testParams, 1.2, 0.4, true)
		for j := 0; j < 40; j++ {
			want.Step(m)
		}
		final, _ := results[i].Final()
		for k, v := range want.Vector() {
			if final.State[k] != v {
				t.Fatalf("%s: concurrent run differs from sequential stepping", m)
			}
		}
	}
}

func TestResultColumns(t *testing.T) {
	r := &Result{Samples: []Sample{
		{Step: 0, State: dynamo.State{1, 2, 3, 4}, Energy: 5},
		{Step: 1, State: dynamo.State{6, 7, 8, 9}, Energy: 10},
	}}

	states := r.States()
	if len(states) != 2 || states[1][0] != 6 {
		t.Errorf("unexpected states %v", states)
	}

	energy := r.Column(func(s Sample) float64 { return s.Energy })
	if energy[0] != 5 || energy[1] != 10 {
		t.Errorf("unexpected column %v", energy)
	}

	if _, ok := (&Result{}).Final(); ok {
		t.Error("expected no final sample for empty result")
	}
}
