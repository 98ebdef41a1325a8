package integrators

import (
	"math"
	"testing"

	"github.com/Trawczynski/double-pendulum/internal/dynamo"
)

type harmonicOscillator struct{}

func (h *harmonicOscillator) StateDim() int { return 2 }

func (h *harmonicOscillator) Derive(x dynamo.State) dynamo.State {
	return dynamo.State{x[1], -x[0]}
}

func (h *harmonicOscillator) Accelerate(x dynamo.State) dynamo.State {
	return dynamo.State{-x[0]}
}

func (h *harmonicOscillator) Energy(x dynamo.State) float64 {
	return 0.5 * (x[0]*x[0] + x[1]*x[1])
}

func TestEulerSingleStep(t *testing.T) {
	tests := []struct {
		name  string
		integ dynamo.Integrator
		want  dynamo.State
	}{
		{"forward", NewForwardEuler(), dynamo.State{1.0, -0.1}},
		{"semi-implicit", NewSemiImplicitEuler(), dynamo.State{0.99, -0.1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.integ.Step(&harmonicOscillator{}, dynamo.State{1.0, 0.0}, 0.1)
			for i := range tt.want {
				if math.Abs(got[i]-tt.want[i]) > 1e-12 {
					t.Errorf("x[%d] = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestEulerFallsBackToDerive(t *testing.T) {
	x := dynamo.State{0.7, 0.2}
	for _, integ := range []dynamo.Integrator{NewForwardEuler(), NewSemiImplicitEuler()} {
		withAcc := integ.Step(&harmonicOscillator{}, x, 0.05)
		withoutAcc := integ.Step(&simpleDynamics{}, x, 0.05)
		for i := range x {
			if withAcc[i] != withoutAcc[i] {
				t.Errorf("%T: component %d differs: %v vs %v", integ, i, withAcc[i], withoutAcc[i])
			}
		}
	}
}

func TestEulerEnergyBehaviour(t *testing.T) {
	dyn := &harmonicOscillator{}
	x0 := dynamo.State{1.0, 0.0}
	e0 := dyn.Energy(x0)
	dt := 0.01

	forward, semi := x0.Clone(), x0.Clone()
	fe, se := NewForwardEuler(), NewSemiImplicitEuler()
	for i := 0; i < 1000; i++ {
		forward = fe.Step(dyn, forward, dt)
		semi = se.Step(dyn, semi, dt)
	}

	if growth := dyn.Energy(forward) / e0; growth < 1.05 {
		t.Errorf("forward Euler should gain energy on an oscillator, growth = %.4f", growth)
	}
	if drift := math.Abs(dyn.Energy(semi)-e0) / e0; drift > 0.02 {
		t.Errorf("semi-implicit Euler drift too high: %e", drift)
	}
}
