package sim

import (
	"fmt"

	"github.com/inference-sim/devsim/sim/trace"
)

// Config groups the parameters fixed for the lifetime of a Simulation.
type Config struct {
	// Seed is the top-level random seed. Nil draws a random seed, which is
	// logged and available from Simulation.Seed.
	Seed *int64
	// CascadeLimit bounds the cascade work of one instant: routed deliveries
	// plus activations queued for the same instant while resolving it.
	// Entries already queued when the instant begins do not count. It must be
	// set explicitly (> 0).
	CascadeLimit int
	// StartTime is the clock value before the first instant.
	StartTime Time
	// Trace selects what the run records.
	Trace trace.TraceConfig
}

// NewConfig returns a Config with the given cascade limit, a random seed and
// tracing disabled.
func NewConfig(cascadeLimit int) Config {
	return Config{CascadeLimit: cascadeLimit}
}

// WithSeed returns a copy of c using the given seed.
func (c Config) WithSeed(seed int64) Config {
	c.Seed = &seed
	return c
}

// WithTrace returns a copy of c recording at the given level.
func (c Config) WithTrace(level trace.TraceLevel) Config {
	c.Trace = trace.TraceConfig{Level: level}
	return c
}

// Validate checks that the configuration is usable.
func (c Config) Validate() error {
	if c.CascadeLimit <= 0 {
		return &Error{Kind: KindInvalidConfig, Detail: fmt.Sprintf("cascade limit must be positive, got %d", c.CascadeLimit)}
	}
	if !validTime(c.StartTime) {
		return &Error{Kind: KindInvalidConfig, Detail: fmt.Sprintf("invalid start time %v", c.StartTime)}
	}
	if !trace.IsValidTraceLevel(string(c.Trace.Level)) {
		return &Error{Kind: KindInvalidConfig, Detail: fmt.Sprintf("unknown trace level %q", c.Trace.Level)}
	}
	return nil
}
