package models

import "github.com/inference-sim/devsim/sim"

// PortSignal is the output port of Timer.
const PortSignal = "signal"

// Timer emits a sim.Signal once at Start+Delay, then every Repeat until End.
// Without Start the first signal fires Delay after the simulation starts.
// A zero Repeat fires once.
type Timer struct {
	Start  *sim.Time
	End    *sim.Time
	Delay  sim.Duration
	Repeat sim.Duration

	fired  int
	signal sim.Output[sim.Signal]
}

// NewTimer creates a timer firing every repeat after an initial delay.
func NewTimer(delay, repeat sim.Duration) *Timer {
	return &Timer{Delay: delay, Repeat: repeat, signal: sim.NewOutput[sim.Signal](PortSignal)}
}

// Fired returns the number of signals emitted so far.
func (m *Timer) Fired() int { return m.fired }

func (m *Timer) Ports() sim.Ports {
	return sim.Ports{Outputs: []sim.OutputPort{m.signal.Port()}}
}

func (m *Timer) Init(ctx *sim.ModelCtx) error {
	first := ctx.Time()
	if m.Start != nil {
		first = *m.Start
	}
	first = first.Add(m.Delay)
	if m.End != nil && first.After(*m.End) {
		ctx.Logger().Debugf("timer never fires: first signal %v is after end %v", first, *m.End)
		return nil
	}
	return ctx.ScheduleUpdate(sim.At(first))
}

func (m *Timer) HandleUpdate(ctx *sim.ModelCtx) error {
	m.fired++
	if err := m.signal.Emit(ctx, sim.Signal{}); err != nil {
		return err
	}
	if m.Repeat <= 0 {
		return nil
	}
	if m.End != nil && ctx.Time().Add(m.Repeat).After(*m.End) {
		return nil
	}
	return ctx.ScheduleUpdate(sim.After(m.Repeat))
}
