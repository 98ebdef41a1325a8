// Package dynamo provides the shared primitives for stepping dynamical systems.
//
// The package defines the small vocabulary that the physics model, the
// integrators and the simulation driver agree on:
//
//   - [State]: flat state vector with element-wise helpers
//   - [System]: autonomous ODE (dX/dt = f(X))
//   - [SecondOrder]: system that can report accelerations directly
//   - [Integrator]: one fixed-size step of a numerical scheme
//
// # Errors
//
// Integrators never validate their input. Non-finite values propagate
// through every later step, and drivers detect them afterwards with
// [State.IsValid], reporting [ErrNonFinite] wrapped in a [SimulationError].
package dynamo
