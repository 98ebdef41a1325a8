package pendulum

import (
	"errors"
	"fmt"
	"math"

	"github.com/Trawczynski/double-pendulum/internal/dynamo"
)

const (
	DefaultMass    = 10.0
	DefaultLength  = 120.0
	DefaultGravity = 1.0
)

var ErrInvalidParams = errors.New("pendulum: parameters must be positive and finite")

// Params are the fixed physical parameters of a double pendulum.
type Params struct {
	R1, R2 float64 // rod lengths
	M1, M2 float64 // bob masses
	G      float64 // gravitational acceleration
}

func DefaultParams() Params {
	return Params{
		R1: DefaultLength, R2: DefaultLength,
		M1: DefaultMass, M2: DefaultMass,
		G: DefaultGravity,
	}
}

// Validate is for drivers building a pendulum from user input; the model
// itself never checks its parameters.
func (p Params) Validate() error {
	fields := []struct {
		name string
		v    float64
	}{
		{"r1", p.R1}, {"r2", p.R2}, {"m1", p.M1}, {"m2", p.M2}, {"g", p.G},
	}
	for _, f := range fields {
		if !(f.v > 0) || math.IsInf(f.v, 0) {
			return fmt.Errorf("%w: %s=%v", ErrInvalidParams, f.name, f.v)
		}
	}
	return nil
}

func (p Params) StateDim() int { return 4 }

// Accelerations is the closed-form acceleration form of the equations of
// motion. The shared denominator vanishes when 2*m1+m2 == m2*cos(2*a1-2*a2).
func (p Params) Accelerations(a1, a2, v1, v2 float64) (acc1, acc2 float64) {
	r1, r2, m1, m2, g := p.R1, p.R2, p.M1, p.M2, p.G

	num1 := -g * (2*m1 + m2) * math.Sin(a1)
	num2 := -m2 * g * math.Sin(a1-2*a2)
	num3 := -2 * math.Sin(a1-a2) * m2
	num4 := v2*v2*r2 + v1*v1*r1*math.Cos(a1-a2)
	den := r1 * (2*m1 + m2 - m2*math.Cos(2*a1-2*a2))
	acc1 = (num1 + num2 + num3*num4) / den

	num1 = 2 * math.Sin(a1-a2)
	num2 = v1 * v1 * r1 * (m1 + m2)
	num3 = g * (m1 + m2) * math.Cos(a1)
	num4 = v2 * v2 * r2 * m2 * math.Cos(a1-a2)
	den = r2 * (2*m1 + m2 - m2*math.Cos(2*a1-2*a2))
	acc2 = num1 * (num2 + num3 + num4) / den

	return acc1, acc2
}

// Accelerate applies the acceleration form to x = [a1, a2, v1, v2].
func (p Params) Accelerate(x dynamo.State) dynamo.State {
	acc1, acc2 := p.Accelerations(x[0], x[1], x[2], x[3])
	return dynamo.State{acc1, acc2}
}

// Derive is the Lagrangian derivative form used by multi-stage schemes.
// x = [θ1, θ2, ω1, ω2] may be an intermediate stage rather than a live state.
func (p Params) Derive(x dynamo.State) dynamo.State {
	t1, t2, w1, w2 := x[0], x[1], x[2], x[3]
	r1, r2, m1, m2, g := p.R1, p.R2, p.M1, p.M2, p.G

	alpha1 := (r2 / r1) * (m2 / (m1 + m2)) * math.Cos(t1-t2)
	alpha2 := (r1 / r2) * math.Cos(t1-t2)

	f1 := -(r2/r1)*(m2/(m1+m2))*(w2*w2)*math.Sin(t1-t2) - (g/r1)*math.Sin(t1)
	f2 := (r1/r2)*(w1*w1)*math.Sin(t1-t2) - (g/r2)*math.Sin(t2)

	gamma1 := (f1 - alpha1*f2) / (1 - alpha1*alpha2)
	gamma2 := (f2 - alpha2*f1) / (1 - alpha1*alpha2)

	return dynamo.State{w1, w2, gamma1, gamma2}
}

var (
	_ dynamo.System      = Params{}
	_ dynamo.SecondOrder = Params{}
)
