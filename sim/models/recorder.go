package models

import "github.com/inference-sim/devsim/sim"

// Sample is one value seen by a Recorder.
type Sample[T any] struct {
	Time  sim.Time
	Value T
}

// Recorder keeps every value delivered to "in" with its arrival time.
type Recorder[T any] struct {
	samples []Sample[T]
}

// NewRecorder creates an empty recorder.
func NewRecorder[T any]() *Recorder[T] { return &Recorder[T]{} }

func (m *Recorder[T]) Ports() sim.Ports {
	return sim.Ports{Inputs: []sim.InputPort{sim.Input(PortIn, func(ctx *sim.ModelCtx, v T) error {
		m.samples = append(m.samples, Sample[T]{Time: ctx.Time(), Value: v})
		ctx.Logger().Debugf("recorded %v", v)
		return nil
	})}}
}

// Samples returns the recorded samples in arrival order.
func (m *Recorder[T]) Samples() []Sample[T] { return m.samples }

// Values returns the recorded values in arrival order.
func (m *Recorder[T]) Values() []T {
	out := make([]T, len(m.samples))
	for i, s := range m.samples {
		out[i] = s.Value
	}
	return out
}

// Times returns the arrival times as unit counts.
func (m *Recorder[T]) Times() []float64 {
	out := make([]float64, len(m.samples))
	for i, s := range m.samples {
		out[i] = s.Time.Units()
	}
	return out
}
