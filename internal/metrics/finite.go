package metrics

import "github.com/Trawczynski/double-pendulum/internal/pendulum"

// Finite is the fraction of observed steps whose dynamical variables were
// all finite. A run that hits the singular configuration drops below 1.
type Finite struct {
	name       string
	violations int
	samples    int
}

func NewFinite() *Finite {
	return &Finite{name: "finite"}
}

func (f *Finite) Name() string {
	return f.name
}

func (f *Finite) Observe(p *pendulum.Pendulum, step int) {
	f.samples++
	if !p.Vector().IsValid() {
		f.violations++
	}
}

func (f *Finite) Value() float64 {
	if f.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(f.violations)/float64(f.samples)
}

func (f *Finite) Reset() {
	f.violations = 0
	f.samples = 0
}
