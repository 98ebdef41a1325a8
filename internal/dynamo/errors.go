package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for simulation drivers. The physics core never returns
// these; they are raised by code that inspects state after stepping.
var (
	// ErrNonFinite indicates a state vector containing NaN or Inf.
	ErrNonFinite = errors.New("dynamo: non-finite state (NaN or Inf detected)")

	// ErrInvalidConfig indicates a run configuration that cannot be executed.
	ErrInvalidConfig = errors.New("dynamo: invalid run configuration")

	// ErrCanceled indicates the simulation was interrupted by its context.
	ErrCanceled = errors.New("dynamo: simulation canceled by context")

	// ErrDimensionMismatch indicates a state of the wrong length for a system.
	ErrDimensionMismatch = errors.New("dynamo: dimension mismatch between state and system")
)

// SimulationError wraps an error with the step at which it was detected.
type SimulationError struct {
	Step    int
	State   State
	Wrapped error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("step %d: %v (state=%v)", e.Step, e.Wrapped, []float64(e.State))
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}
