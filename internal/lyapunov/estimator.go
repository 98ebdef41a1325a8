// Package lyapunov estimates the largest Lyapunov exponent from a single
// stream of 2D samples.
//
// The estimator treats consecutive samples of a proxy vector as if they were
// the separation between two nearby trajectories: the distance between the
// first two samples is the reference separation d0, and every later pair
// contributes ln(d/d0) to a running sum. The estimate is that sum divided by
// the number of samples seen. This is not the two-trajectory renormalization
// method and produces different numbers; callers rely on the exact sampling
// rules below.
package lyapunov

import "math"

// Vector is a 2D sample.
type Vector struct {
	X, Y float64
}

// Distance returns the Euclidean distance between v and w.
func (v Vector) Distance(w Vector) float64 {
	dx := v.X - w.X
	dy := v.Y - w.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// Estimator is a streaming Lyapunov estimate. The zero value is ready to use.
type Estimator struct {
	current           *Vector
	previous          *Vector
	initialSeparation *float64
	accumulated       float64
	samples           int
}

func New() *Estimator {
	return &Estimator{}
}

// Ingest records one sample. The second sample fixes the initial separation;
// every sample after that adds ln(d/d0). A zero initial separation is not
// guarded against, so later terms become infinite or NaN.
func (e *Estimator) Ingest(x, y float64) {
	e.previous = e.current
	e.current = &Vector{X: x, Y: y}

	switch {
	case e.samples == 1:
		d0 := e.current.Distance(*e.previous)
		e.initialSeparation = &d0
	case e.samples > 1:
		e.accumulated += math.Log(e.current.Distance(*e.previous) / *e.initialSeparation)
	}
	e.samples++
}

// Estimate returns 0 until two samples have been seen, then the accumulated
// log ratio divided by the sample count.
func (e *Estimator) Estimate() float64 {
	if e.samples <= 1 {
		return 0
	}
	return e.accumulated / float64(e.samples)
}

func (e *Estimator) Samples() int { return e.samples }

func (e *Estimator) Accumulated() float64 { return e.accumulated }

// InitialSeparation reports d0 once the second sample has arrived.
func (e *Estimator) InitialSeparation() (float64, bool) {
	if e.initialSeparation == nil {
		return 0, false
	}
	return *e.initialSeparation, true
}

func (e *Estimator) Current() (Vector, bool) {
	if e.current == nil {
		return Vector{}, false
	}
	return *e.current, true
}

func (e *Estimator) Previous() (Vector, bool) {
	if e.previous == nil {
		return Vector{}, false
	}
	return *e.previous, true
}
