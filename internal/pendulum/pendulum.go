package pendulum

import (
	"fmt"
	"math"

	"github.com/Trawczynski/double-pendulum/internal/dynamo"
	"github.com/Trawczynski/double-pendulum/internal/integrators"
	"github.com/Trawczynski/double-pendulum/internal/lyapunov"
)

// Pendulum is the live, mutable state of a double pendulum.
type Pendulum struct {
	Params
	A1, A2 float64 // angles from the downward vertical, never wrapped
	V1, V2 float64 // angular velocities

	lya *lyapunov.Estimator
	rk4 *integrators.RK4
}

// New starts a pendulum at rest. With trackChaos set, every step feeds a
// Lyapunov estimator.
func New(params Params, a1, a2 float64, trackChaos bool) *Pendulum {
	p := &Pendulum{Params: params, A1: a1, A2: a2}
	if trackChaos {
		p.lya = lyapunov.New()
	}
	return p
}

// FromPendulum copies the parameters and angles of src into a new pendulum
// at rest.
func FromPendulum(src *Pendulum, trackChaos bool) *Pendulum {
	return New(src.Params, src.A1, src.A2, trackChaos)
}

// Reset reinitialises the pendulum in place. G is left untouched. When
// tracking is enabled the estimator is replaced by a fresh one.
func (p *Pendulum) Reset(r1, r2, m1, m2, a1, a2 float64) {
	p.R1, p.R2 = r1, r2
	p.M1, p.M2 = m1, m2
	p.A1, p.A2 = a1, a2
	p.V1, p.V2 = 0, 0

	if p.lya != nil {
		p.lya = lyapunov.New()
	}
}

func (p *Pendulum) X1() float64 { return p.R1 * math.Sin(p.A1) }
func (p *Pendulum) Y1() float64 { return p.R1 * math.Cos(p.A1) }
func (p *Pendulum) X2() float64 { return p.X1() + p.R2*math.Sin(p.A2) }
func (p *Pendulum) Y2() float64 { return p.Y1() + p.R2*math.Cos(p.A2) }

// DX1 and DY1 form the Lyapunov proxy vector. They are not a momentum.
func (p *Pendulum) DX1() float64 { return p.V1 * p.R1 * math.Cos(p.A1) }
func (p *Pendulum) DY1() float64 { return p.V1 * p.R1 * math.Sin(p.A1) }

func (p *Pendulum) KineticEnergy() float64 {
	r1, r2, m1, m2 := p.R1, p.R2, p.M1, p.M2
	v1, v2 := p.V1, p.V2
	return 0.5*m1*r1*r1*v1*v1 +
		0.5*m2*(r1*r1*v1*v1+r2*r2*v2*v2+2*r1*r2*v1*v2*math.Cos(p.A1-p.A2))
}

// PotentialEnergy is measured from the pivot height; hanging straight down
// is the minimum.
func (p *Pendulum) PotentialEnergy() float64 {
	return -(p.M1+p.M2)*p.G*p.R1*math.Cos(p.A1) - p.M2*p.G*p.R2*math.Cos(p.A2)
}

// MechanicalEnergy is kinetic minus potential energy. The difference is the
// established convention of this model; see TotalEnergy for the conserved sum.
func (p *Pendulum) MechanicalEnergy() float64 {
	return p.KineticEnergy() - p.PotentialEnergy()
}

// TotalEnergy is kinetic plus potential energy, the quantity the exact
// dynamics conserve. Drift metrics use it.
func (p *Pendulum) TotalEnergy() float64 {
	return p.KineticEnergy() + p.PotentialEnergy()
}

// Accelerations evaluates the acceleration form at the current state.
func (p *Pendulum) Accelerations() (acc1, acc2 float64) {
	return p.Params.Accelerations(p.A1, p.A2, p.V1, p.V2)
}

// Lyapunov returns the running estimate; ok is false when tracking was never
// enabled.
func (p *Pendulum) Lyapunov() (estimate float64, ok bool) {
	if p.lya == nil {
		return 0, false
	}
	return p.lya.Estimate(), true
}

func (p *Pendulum) Tracking() bool { return p.lya != nil }

// Estimator exposes the attached estimator, or nil.
func (p *Pendulum) Estimator() *lyapunov.Estimator { return p.lya }

// Vector returns [A1, A2, V1, V2].
func (p *Pendulum) Vector() dynamo.State {
	return dynamo.State{p.A1, p.A2, p.V1, p.V2}
}

// SetVector overwrites the dynamical variables from [A1, A2, V1, V2]
// without touching the estimator.
func (p *Pendulum) SetVector(x dynamo.State) {
	p.A1, p.A2, p.V1, p.V2 = x[0], x[1], x[2], x[3]
}

func (p *Pendulum) String() string {
	return fmt.Sprintf("pendulum{a1=%.6f a2=%.6f v1=%.6f v2=%.6f}", p.A1, p.A2, p.V1, p.V2)
}
