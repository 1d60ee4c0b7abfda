package sim

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// newTestSim creates a seeded simulation starting at unit 0.
func newTestSim(t *testing.T, cascadeLimit int) *Simulation {
	t.Helper()
	cfg := NewConfig(cascadeLimit).WithSeed(42)
	cfg.StartTime = TimeOf(0)
	s, err := NewSimulation(cfg)
	require.NoError(t, err)
	return s
}

// tickerModel emits 0, 1, 2, ... on "out", one value per period.
type tickerModel struct {
	period Duration
	out    Output[int]
	n      int
}

func newTicker(period float64) *tickerModel {
	return &tickerModel{period: DurationOf(period), out: NewOutput[int]("out")}
}

func (m *tickerModel) Ports() Ports { return Ports{Outputs: []OutputPort{m.out.Port()}} }

func (m *tickerModel) HandleUpdate(ctx *ModelCtx) error {
	if err := ctx.ScheduleUpdate(After(m.period)); err != nil {
		return err
	}
	v := m.n
	m.n++
	return m.out.Emit(ctx, v)
}

type received struct {
	at float64
	v  int
}

// sinkModel records every int delivered to "in".
type sinkModel struct {
	got []received
}

func (m *sinkModel) Ports() Ports {
	return Ports{Inputs: []InputPort{
		Input("in", func(ctx *ModelCtx, v int) error {
			m.got = append(m.got, received{at: ctx.Time().Units(), v: v})
			return nil
		}),
	}}
}

// oneShotModel schedules itself at a fixed time from Init and emits value once.
type oneShotModel struct {
	at    Time
	value int
	out   Output[int]
}

func newOneShot(at float64, value int) *oneShotModel {
	return &oneShotModel{at: TimeOf(at), value: value, out: NewOutput[int]("out")}
}

func (m *oneShotModel) Ports() Ports { return Ports{Outputs: []OutputPort{m.out.Port()}} }

func (m *oneShotModel) Init(ctx *ModelCtx) error { return ctx.ScheduleUpdate(At(m.at)) }

func (m *oneShotModel) HandleUpdate(ctx *ModelCtx) error { return m.out.Emit(ctx, m.value) }

// relayModel re-emits every received int plus one, at the same instant.
// With kick set it also exposes a "kick" input sharing the same handler.
type relayModel struct {
	out  Output[int]
	kick bool
	seen int
}

func newRelay() *relayModel { return &relayModel{out: NewOutput[int]("out")} }

func newKickableRelay() *relayModel {
	r := newRelay()
	r.kick = true
	return r
}

func (m *relayModel) Ports() Ports {
	relay := func(ctx *ModelCtx, v int) error {
		m.seen++
		return m.out.Emit(ctx, v+1)
	}
	inputs := []InputPort{Input("in", relay)}
	if m.kick {
		inputs = append(inputs, Input("kick", relay))
	}
	return Ports{Inputs: inputs, Outputs: []OutputPort{m.out.Port()}}
}

// funcModel adapts closures to the Updater capability.
type funcModel struct {
	ports  Ports
	update func(ctx *ModelCtx) error
}

func (m *funcModel) Ports() Ports { return m.ports }

func (m *funcModel) HandleUpdate(ctx *ModelCtx) error {
	if m.update == nil {
		return nil
	}
	return m.update(ctx)
}

// portsOnly is a model without update handler.
type portsOnly struct{ ports Ports }

func (m *portsOnly) Ports() Ports { return m.ports }
