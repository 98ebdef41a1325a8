package integrators

import "github.com/Trawczynski/double-pendulum/internal/dynamo"

// ForwardEuler advances coordinates with the old rates, then rates with the
// accelerations evaluated at the old state.
type ForwardEuler struct{}

func NewForwardEuler() *ForwardEuler {
	return &ForwardEuler{}
}

func (e *ForwardEuler) Step(sys dynamo.System, x dynamo.State, dt float64) dynamo.State {
	half := len(x) / 2
	acc := accelerations(sys, x)
	result := make(dynamo.State, len(x))
	for i := 0; i < half; i++ {
		result[i] = x[i] + dt*x[half+i]
		result[half+i] = x[half+i] + dt*acc[i]
	}
	return result
}

// SemiImplicitEuler is the symplectic Euler variant: rates are updated
// first and the coordinates move with the new rates. It is sometimes called
// "backward" Euler, but no implicit solve takes place.
type SemiImplicitEuler struct{}

func NewSemiImplicitEuler() *SemiImplicitEuler {
	return &SemiImplicitEuler{}
}

func (e *SemiImplicitEuler) Step(sys dynamo.System, x dynamo.State, dt float64) dynamo.State {
	half := len(x) / 2
	acc := accelerations(sys, x)
	result := make(dynamo.State, len(x))
	for i := 0; i < half; i++ {
		result[half+i] = x[half+i] + dt*acc[i]
		result[i] = x[i] + dt*result[half+i]
	}
	return result
}

// accelerations prefers the system's own acceleration form and falls back to
// the rate half of its derivative.
func accelerations(sys dynamo.System, x dynamo.State) dynamo.State {
	if so, ok := sys.(dynamo.SecondOrder); ok {
		return so.Accelerate(x)
	}
	dx := sys.Derive(x)
	return dx[len(x)/2:]
}
