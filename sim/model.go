package sim

import (
	"math/rand"

	"github.com/sirupsen/logrus"
)

// Model is the capability every simulable unit implements. Different model
// kinds are unified behind it and stored type-erased in the simulation's
// model table, addressed by ModelID.
type Model interface {
	// Ports declares the model's inputs (with their handlers) and outputs.
	// It is called once, when the model is added.
	Ports() Ports
}

// Updater is implemented by models that schedule their own activations.
// HandleUpdate runs when the pending self-activation becomes due. A model
// that does not schedule again goes dormant until an input wakes it.
type Updater interface {
	HandleUpdate(ctx *ModelCtx) error
}

// Initializer is implemented by models that need to act before the first
// instant, e.g. to schedule their first activation. Init runs once per model,
// in the order models were added, when the simulation starts.
type Initializer interface {
	Init(ctx *ModelCtx) error
}

// ModelCtx is the context of one handler invocation. It is only valid until
// the handler returns; models must not keep it.
type ModelCtx struct {
	sim    *Simulation
	entry  *modelEntry
	time   Time
	active bool
}

// Time returns the current logical time.
func (c *ModelCtx) Time() Time { return c.time }

// ID returns the id of the model being invoked.
func (c *ModelCtx) ID() ModelID { return c.entry.id }

// ScheduleUpdate requests a self-activation, replacing any pending one.
func (c *ModelCtx) ScheduleUpdate(when Trigger) error {
	if err := c.check(); err != nil {
		return err
	}
	return c.sim.scheduleUpdate(c.entry, when)
}

// CancelUpdate drops the pending self-activation. It reports whether one existed.
func (c *ModelCtx) CancelUpdate() bool {
	if c.check() != nil {
		return false
	}
	return c.sim.queue.Remove(c.entry.id)
}

// PendingUpdate returns the time of this model's pending self-activation.
func (c *ModelCtx) PendingUpdate() (Time, bool) {
	return c.sim.queue.PendingUpdate(c.entry.id)
}

// Emit sends v through the named output port. Every connected input handler
// runs, at the same logical time, before Emit returns.
func (c *ModelCtx) Emit(port string, v any) error {
	return c.emit(port, v)
}

// Rand returns this model's random source. Its sequence depends only on the
// simulation seed and the model id.
func (c *ModelCtx) Rand() *rand.Rand {
	return c.sim.rng.ForModel(c.entry.id)
}

// Logger returns a logger annotated with the model id and current time.
func (c *ModelCtx) Logger() *logrus.Entry {
	return logrus.WithFields(logrus.Fields{
		"model": string(c.entry.id),
		"time":  c.time.String(),
	})
}

func (c *ModelCtx) emit(port string, v any) error {
	if err := c.check(); err != nil {
		return err
	}
	out, ok := c.entry.outputs[port]
	if !ok {
		return &Error{Kind: KindUnknownPort, Model: c.entry.id, Port: port, Time: c.time, Detail: "emit on undeclared output"}
	}
	if !assignable(v, out.typ) {
		return &Error{Kind: KindPortTypeMismatch, Model: c.entry.id, Port: port, Time: c.time,
			Detail: "emitted " + describeValueType(v) + ", port carries " + describeType(out.typ)}
	}
	return c.sim.route(Endpoint{Model: c.entry.id, Port: port}, v)
}

func (c *ModelCtx) check() error {
	if !c.active {
		return &Error{Kind: KindContextExpired, Model: c.entry.id, Time: c.time, Detail: "context used after its handler returned"}
	}
	return nil
}
