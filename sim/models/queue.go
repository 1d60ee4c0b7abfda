package models

import "github.com/inference-sim/devsim/sim"

// Port names of Queue.
const (
	PortIn  = "in"
	PortPop = "pop"
)

// Queue buffers values received on "in" and emits the oldest one on "out"
// each time "pop" is signalled. A pop on an empty queue does nothing.
type Queue[T any] struct {
	items []T
	out   sim.Output[T]
}

// NewQueue creates an empty FIFO queue.
func NewQueue[T any]() *Queue[T] {
	return &Queue[T]{out: sim.NewOutput[T](PortOut)}
}

// Len returns the number of buffered values.
func (m *Queue[T]) Len() int { return len(m.items) }

func (m *Queue[T]) Ports() sim.Ports {
	return sim.Ports{
		Inputs: []sim.InputPort{
			sim.Input(PortIn, func(_ *sim.ModelCtx, v T) error {
				m.items = append(m.items, v)
				return nil
			}),
			sim.SignalInput(PortPop, m.pop),
		},
		Outputs: []sim.OutputPort{m.out.Port()},
	}
}

func (m *Queue[T]) pop(ctx *sim.ModelCtx) error {
	if len(m.items) == 0 {
		return nil
	}
	v := m.items[0]
	var zero T
	m.items[0] = zero
	m.items = m.items[1:]
	return m.out.Emit(ctx, v)
}
