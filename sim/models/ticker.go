package models

import "github.com/inference-sim/devsim/sim"

// PortOut is the conventional name of a model's single output.
const PortOut = "out"

// Ticker emits 0, 1, 2, ... on "out", one value per Period, starting when its
// first activation is scheduled from outside. A positive Limit stops it after
// that many values.
type Ticker struct {
	Period sim.Duration
	Limit  int

	next int
	out  sim.Output[int]
}

// NewTicker creates an unlimited ticker.
func NewTicker(period sim.Duration) *Ticker {
	return &Ticker{Period: period, out: sim.NewOutput[int](PortOut)}
}

func (m *Ticker) Ports() sim.Ports {
	return sim.Ports{Outputs: []sim.OutputPort{m.out.Port()}}
}

func (m *Ticker) HandleUpdate(ctx *sim.ModelCtx) error {
	v := m.next
	m.next++
	if m.Limit <= 0 || m.next < m.Limit {
		if err := ctx.ScheduleUpdate(sim.After(m.Period)); err != nil {
			return err
		}
	}
	return m.out.Emit(ctx, v)
}
