// Package trace provides run-trace recording for simulation analysis.
// This package has no dependencies on sim/; it stores pure data types.
package trace

// Activation sources.
const (
	SourceUpdate = "update" // a model's scheduled self-activation
	SourceInput  = "input"  // a value injected from outside the graph
)

// ActivationRecord captures one queue entry being processed.
type ActivationRecord struct {
	Index  int
	Seq    uint64
	Clock  float64
	Model  string
	Source string
	Port   string // SourceInput only
}

// EmissionRecord captures a value emitted on an output port.
type EmissionRecord struct {
	Index  int
	Clock  float64
	Model  string
	Port   string
	Value  any
	Fanout int // number of connected inputs; 0 means boundary output
}

// DeliveryRecord captures a value handed to an input handler.
type DeliveryRecord struct {
	Index    int
	Clock    float64
	From     string // empty for injected values
	FromPort string
	To       string
	ToPort   string
}
