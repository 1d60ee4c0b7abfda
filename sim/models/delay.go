package models

import "github.com/inference-sim/devsim/sim"

type delayed[T any] struct {
	due   sim.Time
	value T
}

// Delay re-emits every value received on "in" on "out", Duration later.
// Values keep their arrival order.
type Delay[T any] struct {
	Duration sim.Duration

	pending []delayed[T]
	out     sim.Output[T]
}

// NewDelay creates a delay line.
func NewDelay[T any](d sim.Duration) *Delay[T] {
	return &Delay[T]{Duration: d, out: sim.NewOutput[T](PortOut)}
}

// InFlight returns the number of values not yet re-emitted.
func (m *Delay[T]) InFlight() int { return len(m.pending) }

func (m *Delay[T]) Ports() sim.Ports {
	return sim.Ports{
		Inputs: []sim.InputPort{sim.Input(PortIn, func(ctx *sim.ModelCtx, v T) error {
			m.pending = append(m.pending, delayed[T]{due: ctx.Time().Add(m.Duration), value: v})
			if len(m.pending) == 1 {
				return ctx.ScheduleUpdate(sim.At(m.pending[0].due))
			}
			return nil
		})},
		Outputs: []sim.OutputPort{m.out.Port()},
	}
}

func (m *Delay[T]) HandleUpdate(ctx *sim.ModelCtx) error {
	now := ctx.Time()
	for len(m.pending) > 0 && !m.pending[0].due.After(now) {
		v := m.pending[0].value
		m.pending = m.pending[1:]
		if err := m.out.Emit(ctx, v); err != nil {
			return err
		}
	}
	if len(m.pending) > 0 {
		return ctx.ScheduleUpdate(sim.At(m.pending[0].due))
	}
	return nil
}
