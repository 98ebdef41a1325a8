package integrators

import (
	"gonum.org/v1/gonum/floats"

	"github.com/Trawczynski/double-pendulum/internal/dynamo"
)

// RK4 is the classical four-stage Runge-Kutta scheme. Stage buffers are
// reused between steps, so an RK4 value must not be shared by callers
// stepping concurrently.
type RK4 struct {
	k1, k2, k3, k4 dynamo.State
	scratch        dynamo.State
}

func NewRK4() *RK4 {
	return &RK4{}
}

func (r *RK4) ensureScratch(n int) {
	if len(r.k1) != n {
		r.k1 = make(dynamo.State, n)
		r.k2 = make(dynamo.State, n)
		r.k3 = make(dynamo.State, n)
		r.k4 = make(dynamo.State, n)
		r.scratch = make(dynamo.State, n)
	}
}

func (r *RK4) Step(sys dynamo.System, x dynamo.State, dt float64) dynamo.State {
	n := len(x)
	r.ensureScratch(n)

	copy(r.k1, sys.Derive(x))

	floats.AddScaledTo(r.scratch, x, dt*0.5, r.k1)
	copy(r.k2, sys.Derive(r.scratch))

	floats.AddScaledTo(r.scratch, x, dt*0.5, r.k2)
	copy(r.k3, sys.Derive(r.scratch))

	floats.AddScaledTo(r.scratch, x, dt, r.k3)
	copy(r.k4, sys.Derive(r.scratch))

	result := make(dynamo.State, n)
	dt6 := dt / 6.0
	for i := 0; i < n; i++ {
		result[i] = x[i] + dt6*(r.k1[i]+2*r.k2[i]+2*r.k3[i]+r.k4[i])
	}

	return result
}
