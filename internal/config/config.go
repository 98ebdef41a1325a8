package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Trawczynski/double-pendulum/internal/integrators"
	"github.com/Trawczynski/double-pendulum/internal/pendulum"
	"github.com/Trawczynski/double-pendulum/internal/sim"
)

const (
	DefaultSteps       = 2000
	DefaultSampleEvery = 1
	DefaultAngle       = 1.5
)

var ErrInvalid = errors.New("config: invalid")

type Config struct {
	Integrator    string         `yaml:"integrator"`
	Steps         int            `yaml:"steps"`
	SampleEvery   int            `yaml:"sample_every"`
	TrackChaos    bool           `yaml:"track_chaos"`
	ValidateState bool           `yaml:"validate_state"`
	Pendulum      PendulumConfig `yaml:"pendulum"`
}

type PendulumConfig struct {
	R1 float64 `yaml:"r1"`
	R2 float64 `yaml:"r2"`
	M1 float64 `yaml:"m1"`
	M2 float64 `yaml:"m2"`
	G  float64 `yaml:"g"`
	A1 float64 `yaml:"a1"`
	A2 float64 `yaml:"a2"`
}

func DefaultConfig() *Config {
	p := pendulum.DefaultParams()
	return &Config{
		Integrator:    integrators.MethodRK4.String(),
		Steps:         DefaultSteps,
		SampleEvery:   DefaultSampleEvery,
		TrackChaos:    true,
		ValidateState: true,
		Pendulum: PendulumConfig{
			R1: p.R1, R2: p.R2,
			M1: p.M1, M2: p.M2,
			G:  p.G,
			A1: DefaultAngle, A2: DefaultAngle,
		},
	}
}

// Load reads a YAML file over the defaults. Missing keys keep their
// default values.
func Load(path string) (*Config, error) {
	return LoadOver(path, DefaultConfig())
}

// LoadOver reads a YAML file over a copy of base, so a config file can
// refine a preset.
func LoadOver(path string, base *Config) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg := base.Clone()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks everything a run needs: positive finite parameters, a
// positive step count, a non-negative sample interval and a known
// integrator.
func (c *Config) Validate() error {
	if err := c.Params().Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if c.Steps <= 0 {
		return fmt.Errorf("%w: steps must be positive, got %d", ErrInvalid, c.Steps)
	}
	if c.SampleEvery < 0 {
		return fmt.Errorf("%w: sample_every must not be negative, got %d", ErrInvalid, c.SampleEvery)
	}
	if _, err := c.Method(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return nil
}

func (c *Config) Params() pendulum.Params {
	return pendulum.Params{
		R1: c.Pendulum.R1, R2: c.Pendulum.R2,
		M1: c.Pendulum.M1, M2: c.Pendulum.M2,
		G: c.Pendulum.G,
	}
}

func (c *Config) Method() (integrators.Method, error) {
	return integrators.ParseMethod(c.Integrator)
}

// NewPendulum builds the initial pendulum described by the config.
func (c *Config) NewPendulum() *pendulum.Pendulum {
	return pendulum.New(c.Params(), c.Pendulum.A1, c.Pendulum.A2, c.TrackChaos)
}

func (c *Config) SimConfig() sim.Config {
	return sim.Config{
		Steps:         c.Steps,
		SampleEvery:   c.SampleEvery,
		ValidateState: c.ValidateState,
	}
}

func (c *Config) Clone() *Config {
	cp := *c
	return &cp
}
