package dynamo

import (
	"fmt"
	"math"
)

// State is a flat state vector. For second-order systems the first half
// holds generalized coordinates and the second half their rates.
type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (s State) Norm() float64 {
	sum := 0.0
	for _, v := range s {
		sum += v * v
	}
	return math.Sqrt(sum)
}

func (s State) Add(other State) State {
	result := make(State, len(s))
	for i := range s {
		if i < len(other) {
			result[i] = s[i] + other[i]
		} else {
			result[i] = s[i]
		}
	}
	return result
}

func (s State) Scale(factor float64) State {
	result := make(State, len(s))
	for i := range s {
		result[i] = s[i] * factor
	}
	return result
}

func (s State) Sub(other State) State {
	result := make(State, len(s))
	for i := range s {
		if i < len(other) {
			result[i] = s[i] - other[i]
		} else {
			result[i] = s[i]
		}
	}
	return result
}

func (s State) String() string {
	return fmt.Sprintf("%v", []float64(s))
}

// System is an autonomous ODE dX/dt = f(X).
type System interface {
	Derive(x State) State
	StateDim() int
}

// SecondOrder systems expose their accelerations directly. Accelerate
// returns one value per generalized coordinate (len(x)/2 values).
type SecondOrder interface {
	System
	Accelerate(x State) State
}

type Integrator interface {
	Step(sys System, x State, dt float64) State
}
