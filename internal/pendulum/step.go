package pendulum

import (
	"github.com/Trawczynski/double-pendulum/internal/dynamo"
	"github.com/Trawczynski/double-pendulum/internal/integrators"
)

// tick is the fixed, dimensionless step size.
const tick = 1.0

var (
	forwardEuler      = integrators.NewForwardEuler()
	semiImplicitEuler = integrators.NewSemiImplicitEuler()
)

// StepForwardEuler moves the angles with the old velocities, then the
// velocities with the accelerations of the old state.
func (p *Pendulum) StepForwardEuler() {
	p.advance(forwardEuler)
}

// StepSemiImplicitEuler updates the velocities first and moves the angles
// with the new velocities.
func (p *Pendulum) StepSemiImplicitEuler() {
	p.advance(semiImplicitEuler)
}

// StepRK4 advances [A1, A2, V1, V2] with the classical Runge-Kutta scheme on
// the derivative form.
func (p *Pendulum) StepRK4() {
	if p.rk4 == nil {
		p.rk4 = integrators.NewRK4()
	}
	p.advance(p.rk4)
}

// Step dispatches on m.
func (p *Pendulum) Step(m integrators.Method) {
	switch m {
	case integrators.MethodForwardEuler:
		p.StepForwardEuler()
	case integrators.MethodSemiImplicitEuler:
		p.StepSemiImplicitEuler()
	default:
		p.StepRK4()
	}
}

func (p *Pendulum) advance(integ dynamo.Integrator) {
	p.SetVector(integ.Step(p.Params, p.Vector(), tick))
	if p.lya != nil {
		p.lya.Ingest(p.DX1(), p.DY1())
	}
}
