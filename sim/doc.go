// Package sim provides a discrete-event simulation kernel in the DEVS style.
//
// # Reading Guide
//
// Start with these three files to understand the kernel:
//   - model.go: the Model capability and the ModelCtx handed to every handler
//   - queue.go: the EventQueue ordered by (time, sequence number)
//   - simulator.go: the build phase, the step loop and the routing cascade
//
// # Architecture
//
// Models are black boxes with typed input and output ports. They are added
// to a Simulation and wired output-to-input during the build phase; the
// graph is sealed when the simulation starts. Each Step resolves one logical
// instant: every self-activation due at that time runs, and every value
// emitted during the instant is delivered synchronously, depth-first, before
// the emitting call returns. The clock never moves backwards.
//
// Sub-packages:
//   - sim/models/: reusable library models (timer, ticker, queue, generator, ...)
//   - sim/scenario/: YAML scenario files assembled into a Simulation
//   - sim/trace/: run trace recording, rendering and persistence
//
// # Time
//
// Time is float64 units by default. Build with -tags simtime_f32 for float32
// units, or -tags simtime_calendar for wall-calendar time where one unit is
// one second. Code that must work in every build uses TimeOf and DurationOf.
//
// # Key Interfaces
//
//   - Model: declares ports; input handlers live on the ports
//   - Updater: handles the model's own scheduled activations
//   - Initializer: runs once when the simulation starts
package sim
