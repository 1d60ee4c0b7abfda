package sim

import (
	"context"
	"fmt"
	"reflect"

	"github.com/sirupsen/logrus"

	"github.com/inference-sim/devsim/sim/trace"
)

// StopReason tells why a run returned.
type StopReason string

const (
	StopQueueEmpty   StopReason = "queue-empty"
	StopUntilReached StopReason = "until-reached"
	StopCancelled    StopReason = "cancelled"
	StopFailed       StopReason = "failed"
)

// StepOutcome reports what one instant did.
type StepOutcome struct {
	Time        Time
	Activations int // queue entries processed
	Deliveries  int // input handler invocations
	Emissions   int
}

// RunOutcome reports how a run ended.
type RunOutcome struct {
	Steps  int
	Clock  Time
	Reason StopReason
}

type phase uint8

const (
	phaseBuild   phase = iota // models and connections may be added
	phaseReady                // sealed, between instants
	phaseInstant              // resolving an instant
)

// Simulation is the coupled-model root: it owns the models, the immutable
// connection graph, the event queue, the clock and the random state.
//
// Thread-safety: NOT thread-safe. Handlers run one at a time on the caller's
// goroutine.
type Simulation struct {
	cfg   Config
	graph *graph
	queue *EventQueue
	clock Time
	rng   *PartitionedRNG
	trace *trace.SimulationTrace

	phase    phase
	startErr error
	steps    int

	// Per-instant state. Entries with a sequence number above instantSeq
	// were queued while resolving the current instant.
	instantSeq  uint64
	invocations int
	failure     *Error
	current     StepOutcome
}

// NewSimulation creates an empty simulation in its build phase.
func NewSimulation(cfg Config) (*Simulation, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	var key SimulationKey
	if cfg.Seed != nil {
		key = NewSimulationKey(*cfg.Seed)
	} else {
		key = RandomSimulationKey()
		logrus.Infof("No seed configured; using seed %d (pass it back to reproduce this run)", int64(key))
	}

	s := &Simulation{
		cfg:   cfg,
		graph: newGraph(),
		queue: NewEventQueue(),
		clock: cfg.StartTime,
		rng:   NewPartitionedRNG(key),
	}
	if cfg.Trace.Enabled() {
		s.trace = trace.NewSimulationTrace(cfg.Trace)
	}
	return s, nil
}

// === Build phase ===

// AddModel registers m under id.
func (s *Simulation) AddModel(id ModelID, m Model) error {
	if err := s.requireBuild(); err != nil {
		return err
	}
	return s.graph.addModel(id, m)
}

// Connect routes the output port of src to the input port of dst. Both ports
// must carry the same type and the input must not be fed already. A rejected
// connection leaves the graph unchanged.
func (s *Simulation) Connect(src ModelID, output string, dst ModelID, input string) error {
	if err := s.requireBuild(); err != nil {
		return err
	}
	from, to := Endpoint{Model: src, Port: output}, Endpoint{Model: dst, Port: input}
	if err := s.graph.connect(from, to); err != nil {
		return err
	}
	logrus.Debugf("Connected %s -> %s", from, to)
	return nil
}

// ScheduleUpdate queues the initial self-activation of a model. Once the
// simulation has started, models schedule themselves through ModelCtx.
func (s *Simulation) ScheduleUpdate(id ModelID, when Trigger) error {
	if err := s.requireBuild(); err != nil {
		return err
	}
	entry, err := s.graph.model(id)
	if err != nil {
		return err
	}
	return s.scheduleUpdate(entry, when)
}

// Inject queues v for delivery to an input port from outside the graph.
// It may be called before the run and between instants, not from a handler.
func (s *Simulation) Inject(id ModelID, input string, v any, when Trigger) error {
	if s.phase == phaseInstant {
		return &Error{Kind: KindInvalidSchedule, Model: id, Port: input, Time: s.clock,
			Detail: "inject called from a handler; emit instead"}
	}
	entry, err := s.graph.model(id)
	if err != nil {
		return err
	}
	port, ok := entry.inputs[input]
	if !ok {
		return &Error{Kind: KindUnknownPort, Model: id, Port: input, Detail: "no such input"}
	}
	if !assignable(v, port.typ) {
		return &Error{Kind: KindPortTypeMismatch, Model: id, Port: input,
			Detail: "injected " + describeValueType(v) + ", port accepts " + describeType(port.typ)}
	}
	at, err := when.Resolve(s.clock)
	if err != nil {
		return withModel(err, id, input)
	}
	s.queue.Push(ScheduledEvent{Time: at, Model: id, Kind: EntryInput, Port: input, Value: v})
	return nil
}

// Start seals the graph and runs every Initializer in the order models were
// added. Step and Run call it implicitly. An initializer failure is returned
// by every later call.
func (s *Simulation) Start() error {
	if s.phase != phaseBuild {
		return s.startErr
	}
	s.phase = phaseInstant
	s.beginInstant(s.clock)
	logrus.Infof("[t %v] Starting simulation: %d models, %d connections, seed %d",
		s.clock, len(s.graph.order), len(s.graph.connections), int64(s.rng.Key()))

	for _, id := range s.graph.order {
		entry := s.graph.models[id]
		init, ok := entry.model.(Initializer)
		if !ok {
			continue
		}
		if err := s.invoke(entry, "init", "", false, init.Init); err != nil {
			s.startErr = err
			break
		}
	}
	s.phase = phaseReady
	return s.startErr
}

func (s *Simulation) requireBuild() error {
	if s.phase != phaseBuild {
		return &Error{Kind: KindGraphSealed, Detail: "the graph is immutable once the simulation has started"}
	}
	return nil
}

// === Execution ===

// Step resolves exactly one logical instant: the clock moves to the earliest
// queued time and every entry due at that time, including those scheduled
// while the instant is being resolved, is processed. It returns
// ErrSimulationEnded when the queue is empty.
func (s *Simulation) Step() (StepOutcome, error) {
	return s.step(nil)
}

// Run steps until the queue is empty or ctx is cancelled. Cancellation is
// checked between instants only.
func (s *Simulation) Run(ctx context.Context) (RunOutcome, error) {
	return s.run(ctx, nil)
}

// RunUntil steps until the next instant would be at or after until. That
// instant is not entered, so a later RunUntil with a larger bound continues
// from it.
func (s *Simulation) RunUntil(ctx context.Context, until Time) (RunOutcome, error) {
	return s.run(ctx, &until)
}

func (s *Simulation) run(ctx context.Context, until *Time) (RunOutcome, error) {
	out := RunOutcome{Clock: s.clock}
	if err := s.Start(); err != nil {
		out.Reason = StopFailed
		return out, err
	}
	if !s.hasWork(until) {
		out.Reason = s.stopReason()
		return out, s.ended("nothing scheduled before the bound")
	}

	logrus.Infof("[t %v] Run started (until %s)", s.clock, describeBound(until))
	for {
		if err := ctx.Err(); err != nil {
			out.Clock, out.Reason = s.clock, StopCancelled
			logrus.Infof("[t %v] Run cancelled after %d steps", s.clock, out.Steps)
			return out, err
		}
		_, err := s.step(until)
		if IsTerminal(err) {
			break
		}
		if err != nil {
			out.Clock, out.Reason = s.clock, StopFailed
			logrus.Infof("[t %v] Run failed after %d steps: %v", s.clock, out.Steps, err)
			return out, err
		}
		out.Steps++
	}
	out.Clock, out.Reason = s.clock, s.stopReason()
	logrus.Infof("[t %v] Run stopped (%s) after %d steps", s.clock, out.Reason, out.Steps)
	return out, nil
}

func (s *Simulation) step(until *Time) (StepOutcome, error) {
	if err := s.Start(); err != nil {
		return StepOutcome{Time: s.clock}, err
	}
	next, ok := s.queue.PeekMinTime()
	if !ok {
		return StepOutcome{Time: s.clock}, s.ended("event queue is empty")
	}
	if until != nil && !next.Before(*until) {
		return StepOutcome{Time: s.clock}, s.ended(fmt.Sprintf("next instant %v is not before %v", next, *until))
	}
	// Clock monotonicity: the queue never holds entries before the clock.
	if next.Before(s.clock) {
		panic(fmt.Sprintf("Clock went backwards: %v < %v", next, s.clock))
	}

	s.phase = phaseInstant
	defer func() { s.phase = phaseReady }()
	s.beginInstant(next)

	for {
		t, ok := s.queue.PeekMinTime()
		if !ok || !t.Equal(s.clock) {
			break
		}
		ev, _ := s.queue.PopMin()
		if err := s.dispatch(ev); err != nil {
			return s.current, err
		}
	}
	s.steps++
	return s.current, nil
}

func (s *Simulation) beginInstant(t Time) {
	s.clock = t
	s.invocations = 0
	s.instantSeq = s.queue.LastSeq()
	s.failure = nil
	s.current = StepOutcome{Time: t}
}

func (s *Simulation) dispatch(ev ScheduledEvent) error {
	entry := s.graph.models[ev.Model]
	cascaded := ev.Seq > s.instantSeq
	s.current.Activations++
	if s.trace != nil && s.trace.Config.Detailed() {
		rec := trace.ActivationRecord{Seq: ev.Seq, Clock: s.clock.Units(), Model: string(ev.Model), Source: trace.SourceUpdate}
		if ev.Kind == EntryInput {
			rec.Source, rec.Port = trace.SourceInput, ev.Port
		}
		s.trace.RecordActivation(rec)
	}

	if ev.Kind == EntryInput {
		logrus.Debugf("[t %v] #%d injected value for %s.%s", s.clock, ev.Seq, ev.Model, ev.Port)
		return s.deliver(Endpoint{}, Endpoint{Model: ev.Model, Port: ev.Port}, ev.Value, cascaded)
	}
	logrus.Debugf("[t %v] #%d update %s", s.clock, ev.Seq, ev.Model)
	return s.invoke(entry, "update", "", cascaded, entry.updater.HandleUpdate)
}

// route hands v to every input connected to from, depth-first and in
// connection order.
func (s *Simulation) route(from Endpoint, v any) error {
	if s.failure != nil {
		return s.failure
	}
	dests := s.graph.destinations(from)
	s.current.Emissions++
	if s.trace != nil {
		s.trace.RecordEmission(trace.EmissionRecord{
			Clock: s.clock.Units(), Model: string(from.Model), Port: from.Port, Value: v, Fanout: len(dests),
		})
	}
	if len(dests) == 0 {
		logrus.Debugf("[t %v] Boundary output %s = %v", s.clock, from, v)
		return nil
	}
	for _, to := range dests {
		if err := s.deliver(from, to, v, true); err != nil {
			return err
		}
	}
	return nil
}

func (s *Simulation) deliver(from, to Endpoint, v any, counted bool) error {
	entry := s.graph.models[to.Model]
	port := entry.inputs[to.Port]
	s.current.Deliveries++
	if s.trace != nil && s.trace.Config.Detailed() {
		s.trace.RecordDelivery(trace.DeliveryRecord{
			Clock: s.clock.Units(), From: string(from.Model), FromPort: from.Port, To: string(to.Model), ToPort: to.Port,
		})
	}
	return s.invoke(entry, "input", to.Port, counted, func(ctx *ModelCtx) error {
		return port.handle(ctx, v)
	})
}

// invoke runs one handler. The first failure of an instant is sticky: it is
// returned by every later routing or invocation attempt in the same instant,
// so a handler that discards an Emit error cannot hide it.
//
// counted marks cascade work (routed deliveries and entries queued during the
// instant), which is what the cascade limit bounds.
func (s *Simulation) invoke(entry *modelEntry, role, port string, counted bool, handler func(*ModelCtx) error) error {
	if s.failure != nil {
		return s.failure
	}
	if counted {
		s.invocations++
		if s.invocations > s.cfg.CascadeLimit {
			s.failure = &Error{Kind: KindCascadeLimit, Model: entry.id, Port: port, Time: s.clock,
				Detail: fmt.Sprintf("more than %d cascaded invocations in one instant", s.cfg.CascadeLimit)}
			return s.failure
		}
	}

	ctx := &ModelCtx{sim: s, entry: entry, time: s.clock, active: true}
	err := handler(ctx)
	ctx.active = false

	if s.failure != nil {
		return s.failure
	}
	if err == nil {
		return nil
	}
	if kerr, ok := err.(*Error); ok {
		s.failure = kerr
	} else {
		s.failure = &Error{Kind: KindHandler, Model: entry.id, Port: port, Time: s.clock, Detail: role, Err: err}
	}
	return s.failure
}

func (s *Simulation) scheduleUpdate(entry *modelEntry, when Trigger) error {
	if entry.updater == nil {
		return &Error{Kind: KindInvalidSchedule, Model: entry.id, Time: s.clock, Detail: "model has no update handler"}
	}
	at, err := when.Resolve(s.clock)
	if err != nil {
		return withModel(err, entry.id, "")
	}
	s.queue.Push(ScheduledEvent{Time: at, Model: entry.id, Kind: EntryUpdate})
	return nil
}

func (s *Simulation) hasWork(until *Time) bool {
	next, ok := s.queue.PeekMinTime()
	return ok && (until == nil || next.Before(*until))
}

func (s *Simulation) stopReason() StopReason {
	if s.queue.Len() == 0 {
		return StopQueueEmpty
	}
	return StopUntilReached
}

func (s *Simulation) ended(detail string) error {
	return &Error{Kind: KindSimulationEnded, Time: s.clock, Detail: detail}
}

func withModel(err error, id ModelID, port string) error {
	if e, ok := err.(*Error); ok {
		e.Model, e.Port = id, port
	}
	return err
}

func describeBound(until *Time) string {
	if until == nil {
		return "queue empty"
	}
	return until.String()
}

// === Inspection ===

// Now returns the clock: the time of the last instant entered, or the start
// time before the first one.
func (s *Simulation) Now() Time { return s.clock }

// NextTime returns the time of the earliest queued entry.
func (s *Simulation) NextTime() (Time, bool) { return s.queue.PeekMinTime() }

// Pending returns a copy of the queue in processing order.
func (s *Simulation) Pending() []ScheduledEvent { return s.queue.Snapshot() }

// PendingUpdate returns the time of a model's pending self-activation.
func (s *Simulation) PendingUpdate(id ModelID) (Time, bool) { return s.queue.PendingUpdate(id) }

// Seed returns the top-level seed in use, whether configured or drawn.
func (s *Simulation) Seed() int64 { return int64(s.rng.Key()) }

// Steps returns the number of instants fully resolved so far.
func (s *Simulation) Steps() int { return s.steps }

// Trace returns the recorded trace, or nil when tracing is disabled.
func (s *Simulation) Trace() *trace.SimulationTrace { return s.trace }

// Config returns the configuration the simulation was created with.
func (s *Simulation) Config() Config { return s.cfg }

// Model returns the model registered under id.
func (s *Simulation) Model(id ModelID) (Model, bool) {
	entry, ok := s.graph.models[id]
	if !ok {
		return nil, false
	}
	return entry.model, true
}

// InputType returns the declared value type of an input port.
func (s *Simulation) InputType(id ModelID, input string) (reflect.Type, error) {
	entry, err := s.graph.model(id)
	if err != nil {
		return nil, err
	}
	port, ok := entry.inputs[input]
	if !ok {
		return nil, &Error{Kind: KindUnknownPort, Model: id, Port: input, Detail: "no such input"}
	}
	return port.typ, nil
}

// Models returns the model ids in the order they were added.
func (s *Simulation) Models() []ModelID {
	return append([]ModelID(nil), s.graph.order...)
}

// Connections returns the connections in declaration order.
func (s *Simulation) Connections() []Connection {
	return append([]Connection(nil), s.graph.connections...)
}
