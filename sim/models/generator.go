package models

import (
	"math"
	"math/rand"

	"github.com/inference-sim/devsim/sim"
)

// PortGenerate is the trigger input of Generator.
const PortGenerate = "generate"

// Sampler draws one value from a model's random source.
type Sampler[T any] func(r *rand.Rand) T

// Generator emits one sampled value on "out" per "generate" signal. Sampling
// happens in the generator's own update at the same instant, so several
// signals within one instant produce a single value.
type Generator[T any] struct {
	sample Sampler[T]
	out    sim.Output[T]
}

// NewGenerator creates a generator drawing from sample.
func NewGenerator[T any](sample Sampler[T]) *Generator[T] {
	return &Generator[T]{sample: sample, out: sim.NewOutput[T](PortOut)}
}

func (m *Generator[T]) Ports() sim.Ports {
	return sim.Ports{
		Inputs: []sim.InputPort{sim.SignalInput(PortGenerate, func(ctx *sim.ModelCtx) error {
			return ctx.ScheduleUpdate(sim.Immediately())
		})},
		Outputs: []sim.OutputPort{m.out.Port()},
	}
}

func (m *Generator[T]) HandleUpdate(ctx *sim.ModelCtx) error {
	return m.out.Emit(ctx, m.sample(ctx.Rand()))
}

// Constant always returns v.
func Constant[T any](v T) Sampler[T] {
	return func(*rand.Rand) T { return v }
}

// UniformFloat samples uniformly from [lo, hi).
func UniformFloat(lo, hi float64) Sampler[float64] {
	return func(r *rand.Rand) float64 { return lo + r.Float64()*(hi-lo) }
}

// UniformInt samples uniformly from [lo, hi].
func UniformInt(lo, hi int) Sampler[int] {
	span := uint64(hi) - uint64(lo)
	switch {
	case span < math.MaxInt64:
		return func(r *rand.Rand) int { return lo + r.Intn(int(span)+1) }
	case span == math.MaxUint64:
		return func(r *rand.Rand) int { return int(r.Uint64()) }
	}
	// Spans past the int63 range draw an offset from lo modulo span+1.
	return func(r *rand.Rand) int { return int(uint64(lo) + r.Uint64()%(span+1)) }
}

// Exponential samples inter-event gaps of a Poisson process with the given rate.
func Exponential(rate float64) Sampler[float64] {
	return func(r *rand.Rand) float64 { return r.ExpFloat64() / rate }
}
