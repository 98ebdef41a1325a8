package metrics

import (
	"math"

	"github.com/Trawczynski/double-pendulum/internal/pendulum"
)

// EnergyDrift tracks the largest relative departure of the total energy
// from its value at the first observed step.
type EnergyDrift struct {
	name          string
	initialEnergy float64
	currentEnergy float64
	maxDrift      float64
	samples       int
}

func NewEnergyDrift() *EnergyDrift {
	return &EnergyDrift{name: "energy_drift"}
}

func (e *EnergyDrift) Name() string { return e.name }

func (e *EnergyDrift) Observe(p *pendulum.Pendulum, step int) {
	energy := p.TotalEnergy()

	if e.samples == 0 {
		e.initialEnergy = energy
	}

	e.currentEnergy = energy
	e.samples++

	if drift := RelativeDrift(e.initialEnergy, energy); drift > e.maxDrift {
		e.maxDrift = drift
	}
}

func (e *EnergyDrift) Value() float64 {
	return e.maxDrift
}

// Current is the relative drift of the last observed step.
func (e *EnergyDrift) Current() float64 {
	return RelativeDrift(e.initialEnergy, e.currentEnergy)
}

func (e *EnergyDrift) Reset() {
	e.initialEnergy = 0
	e.currentEnergy = 0
	e.maxDrift = 0
	e.samples = 0
}

// RelativeDrift is |e-e0|/|e0|, or 0 when e0 is zero.
func RelativeDrift(e0, e float64) float64 {
	if e0 == 0 {
		return 0
	}
	return math.Abs(e-e0) / math.Abs(e0)
}
