package sim

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Trawczynski/double-pendulum/internal/dynamo"
	"github.com/Trawczynski/double-pendulum/internal/integrators"
	"github.com/Trawczynski/double-pendulum/internal/metrics"
	"github.com/Trawczynski/double-pendulum/internal/pendulum"
)

// Simulator drives one pendulum with a fixed integration method. The
// pendulum is stepped in place.
type Simulator struct {
	p         *pendulum.Pendulum
	method    integrators.Method
	metrics   []Metric
	observers []Observer
	logger    *zap.Logger
}

type Option func(*Simulator)

// WithLogger sets the logger for run diagnostics. The default discards
// everything.
func WithLogger(l *zap.Logger) Option {
	return func(s *Simulator) {
		if l != nil {
			s.logger = l
		}
	}
}

func New(p *pendulum.Pendulum, method integrators.Method, opts ...Option) *Simulator {
	s := &Simulator{
		p:         p,
		method:    method,
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

func (s *Simulator) Pendulum() *pendulum.Pendulum { return s.p }
func (s *Simulator) Method() integrators.Method   { return s.method }

// Run advances the pendulum cfg.Steps times. On cancellation the partial
// result is returned together with an error wrapping both
// dynamo.ErrCanceled and the context error. A non-finite state stops the
// run when cfg.ValidateState is set; that is reported in Result.Errors, not
// as the returned error.
func (s *Simulator) Run(ctx context.Context, cfg Config) (*Result, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	every := cfg.SampleEvery
	if every == 0 {
		every = 1
	}

	log := s.logger.With(
		zap.Stringer("integrator", s.method),
		zap.Int("steps", cfg.Steps),
	)
	log.Debug("run started", zap.Stringer("pendulum", s.p))

	result := &Result{
		Samples: make([]Sample, 0, cfg.Steps/every+2),
		Metrics: make(map[string]float64),
		Errors:  make([]error, 0),
	}
	start := time.Now()

	for _, m := range s.metrics {
		m.Reset()
	}

	initialEnergy := s.p.TotalEnergy()
	s.observe(0)
	result.Samples = append(result.Samples, NewSample(s.p, 0))

	for i := 1; i <= cfg.Steps; i++ {
		select {
		case <-ctx.Done():
			s.finish(result, initialEnergy, start)
			log.Info("run canceled", zap.Int("steps_taken", result.StepsTaken))
			return result, fmt.Errorf("%w: %w", dynamo.ErrCanceled, ctx.Err())
		default:
		}

		s.p.Step(s.method)

		if cfg.ValidateState && !s.p.Vector().IsValid() {
			err := &dynamo.SimulationError{Step: i, State: s.p.Vector(), Wrapped: dynamo.ErrNonFinite}
			result.Errors = append(result.Errors, err)
			log.Warn("non-finite state", zap.Int("step", i), zap.Error(err))
			break
		}

		result.StepsTaken++
		s.observe(i)

		if i%every == 0 || i == cfg.Steps {
			result.Samples = append(result.Samples, NewSample(s.p, i))
		}
	}

	s.finish(result, initialEnergy, start)
	log.Info("run finished",
		zap.Int("steps_taken", result.StepsTaken),
		zap.Float64("energy_drift", result.EnergyDrift),
		zap.Duration("elapsed", result.Elapsed),
	)
	return result, nil
}

func (s *Simulator) observe(step int) {
	for _, m := range s.metrics {
		m.Observe(s.p, step)
	}
	for _, obs := range s.observers {
		obs.OnStep(s.p, step)
	}
}

func (s *Simulator) finish(result *Result, initialEnergy float64, start time.Time) {
	result.EnergyDrift = metrics.RelativeDrift(initialEnergy, s.p.TotalEnergy())
	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
	result.Elapsed = time.Since(start)
}

func validateConfig(cfg Config) error {
	if cfg.Steps <= 0 {
		return fmt.Errorf("%w: steps must be positive, got %d", dynamo.ErrInvalidConfig, cfg.Steps)
	}
	if cfg.SampleEvery < 0 {
		return fmt.Errorf("%w: sample interval must not be negative, got %d", dynamo.ErrInvalidConfig, cfg.SampleEvery)
	}
	return nil
}
