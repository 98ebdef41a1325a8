// Package pendulum models a planar double pendulum: two point masses on
// rigid, massless rods, the first pivoting from a fixed point and the second
// from the tip of the first.
//
// A [Pendulum] holds fixed parameters ([Params]) and four dynamical
// variables (angles A1, A2 measured from the downward vertical, angular
// velocities V1, V2). Derived quantities such as tip positions and energies
// are recomputed on every read.
//
// # Stepping
//
// Each step advances the state by one unit tick:
//
//	p := pendulum.New(pendulum.Params{R1: 120, R2: 120, M1: 10, M2: 10, G: 1}, math.Pi/2, math.Pi/2, true)
//	for i := 0; i < 1000; i++ {
//	    p.StepRK4()
//	}
//	lambda, ok := p.Lyapunov()
//
// Steps never validate input. A vanishing denominator in the equations of
// motion injects NaN or Inf into the state, and it stays there; callers
// detect this by inspecting the state afterwards.
package pendulum
