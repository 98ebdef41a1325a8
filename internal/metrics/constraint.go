package metrics

import (
	"math"

	"github.com/Trawczynski/double-pendulum/internal/pendulum"
)

// RodConstraint records the worst deviation of the first bob from the
// circle of radius R1 around the pivot.
type RodConstraint struct {
	name     string
	residual float64
}

func NewRodConstraint() *RodConstraint {
	return &RodConstraint{name: "rod_residual"}
}

func (r *RodConstraint) Name() string { return r.name }

func (r *RodConstraint) Observe(p *pendulum.Pendulum, step int) {
	d := math.Abs(math.Hypot(p.X1(), p.Y1()) - p.R1)
	if d > r.residual || math.IsNaN(d) {
		r.residual = d
	}
}

func (r *RodConstraint) Value() float64 { return r.residual }

func (r *RodConstraint) Reset() { r.residual = 0 }
