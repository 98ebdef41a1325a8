package sim

import (
	"time"

	"github.com/Trawczynski/double-pendulum/internal/dynamo"
	"github.com/Trawczynski/double-pendulum/internal/pendulum"
)

type Metric interface {
	Name() string
	Observe(p *pendulum.Pendulum, step int)
	Value() float64
	Reset()
}

type Observer interface {
	OnStep(p *pendulum.Pendulum, step int)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(p *pendulum.Pendulum, step int)

func (f ObserverFunc) OnStep(p *pendulum.Pendulum, step int) { f(p, step) }

type Config struct {
	Steps int
	// SampleEvery keeps every n-th step in Result.Samples; 0 means every
	// step. Step 0 and the last step are always kept.
	SampleEvery   int
	ValidateState bool
}

// Sample is a recorded step with its derived quantities.
type Sample struct {
	Step     int
	State    dynamo.State
	X1, Y1   float64
	X2, Y2   float64
	Energy   float64 // kinetic minus potential
	Total    float64 // kinetic plus potential
	Lyapunov float64
}

func NewSample(p *pendulum.Pendulum, step int) Sample {
	lya, _ := p.Lyapunov()
	return Sample{
		Step:     step,
		State:    p.Vector(),
		X1:       p.X1(),
		Y1:       p.Y1(),
		X2:       p.X2(),
		Y2:       p.Y2(),
		Energy:   p.MechanicalEnergy(),
		Total:    p.TotalEnergy(),
		Lyapunov: lya,
	}
}

type Result struct {
	Samples     []Sample
	StepsTaken  int
	Metrics     map[string]float64
	Errors      []error
	EnergyDrift float64
	Elapsed     time.Duration
}

// States returns the recorded state vectors in order.
func (r *Result) States() []dynamo.State {
	states := make([]dynamo.State, len(r.Samples))
	for i, s := range r.Samples {
		states[i] = s.State
	}
	return states
}

// Final is the last recorded sample.
func (r *Result) Final() (Sample, bool) {
	if len(r.Samples) == 0 {
		return Sample{}, false
	}
	return r.Samples[len(r.Samples)-1], true
}

// Column extracts one value per sample.
func (r *Result) Column(f func(Sample) float64) []float64 {
	out := make([]float64, len(r.Samples))
	for i, s := range r.Samples {
		out[i] = f(s)
	}
	return out
}
