// Package models provides reusable library models for the sim kernel.
//
// Every model here declares its ports with fixed names so that scenarios can
// wire them without knowing the Go types:
//   - Timer: output "signal"
//   - Ticker: output "out"
//   - Queue: inputs "in", "pop"; output "out"
//   - Cloner: input "in"; outputs "out_0" .. "out_{n-1}"
//   - Merge: inputs "in_0" .. "in_{n-1}"; output "out"
//   - Generator: input "generate"; output "out"
//   - Delay: input "in"; output "out"
//   - Recorder: input "in"
package models
