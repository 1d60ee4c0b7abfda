package trace

// TraceLevel controls the verbosity of run tracing.
type TraceLevel string

const (
	// TraceLevelNone disables tracing (zero overhead).
	TraceLevelNone TraceLevel = "none"
	// TraceLevelEmissions captures every emitted value, including boundary outputs.
	TraceLevelEmissions TraceLevel = "emissions"
	// TraceLevelAll additionally captures activations and deliveries.
	TraceLevelAll TraceLevel = "all"
)

// validTraceLevels maps accepted trace level strings.
var validTraceLevels = map[TraceLevel]bool{
	TraceLevelNone:      true,
	TraceLevelEmissions: true,
	TraceLevelAll:       true,
	"":                  true, // empty defaults to none
}

// IsValidTraceLevel returns true if the given level string is a recognized trace level.
func IsValidTraceLevel(level string) bool {
	return validTraceLevels[TraceLevel(level)]
}

// TraceConfig controls trace collection behavior.
type TraceConfig struct {
	Level TraceLevel
}

// Enabled reports whether anything is recorded.
func (c TraceConfig) Enabled() bool {
	return c.Level == TraceLevelEmissions || c.Level == TraceLevelAll
}

// Detailed reports whether activations and deliveries are recorded.
func (c TraceConfig) Detailed() bool {
	return c.Level == TraceLevelAll
}

// SimulationTrace collects records during a run. Every record carries an
// Index giving its position across all record kinds.
type SimulationTrace struct {
	Config      TraceConfig
	Activations []ActivationRecord
	Emissions   []EmissionRecord
	Deliveries  []DeliveryRecord

	next int
}

// NewSimulationTrace creates a SimulationTrace ready for recording.
func NewSimulationTrace(config TraceConfig) *SimulationTrace {
	return &SimulationTrace{
		Config:      config,
		Activations: make([]ActivationRecord, 0),
		Emissions:   make([]EmissionRecord, 0),
		Deliveries:  make([]DeliveryRecord, 0),
	}
}

// RecordActivation appends an activation record.
func (st *SimulationTrace) RecordActivation(record ActivationRecord) {
	record.Index = st.nextIndex()
	st.Activations = append(st.Activations, record)
}

// RecordEmission appends an emission record.
func (st *SimulationTrace) RecordEmission(record EmissionRecord) {
	record.Index = st.nextIndex()
	st.Emissions = append(st.Emissions, record)
}

// RecordDelivery appends a delivery record.
func (st *SimulationTrace) RecordDelivery(record DeliveryRecord) {
	record.Index = st.nextIndex()
	st.Deliveries = append(st.Deliveries, record)
}

// BoundaryOutputs returns the emissions that left the simulation: those made
// on output ports with no connection.
func (st *SimulationTrace) BoundaryOutputs() []EmissionRecord {
	var out []EmissionRecord
	for _, e := range st.Emissions {
		if e.Fanout == 0 {
			out = append(out, e)
		}
	}
	return out
}

func (st *SimulationTrace) nextIndex() int {
	st.next++
	return st.next
}
