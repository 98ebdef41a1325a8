package metrics

import "github.com/Trawczynski/double-pendulum/internal/pendulum"

// Lyapunov reports the pendulum's own running estimate as of the last
// observed step. Untracked pendulums read as 0.
type Lyapunov struct {
	name     string
	estimate float64
}

func NewLyapunov() *Lyapunov {
	return &Lyapunov{name: "lyapunov"}
}

func (l *Lyapunov) Name() string { return l.name }

func (l *Lyapunov) Observe(p *pendulum.Pendulum, step int) {
	l.estimate, _ = p.Lyapunov()
}

func (l *Lyapunov) Value() float64 { return l.estimate }

func (l *Lyapunov) Reset() { l.estimate = 0 }
