package trace

// TraceSummary aggregates statistics from a SimulationTrace.
type TraceSummary struct {
	Activations     int
	Emissions       int
	Deliveries      int
	BoundaryOutputs int
	Instants        int     // distinct clock values seen
	BusiestInstant  float64 // clock with the most records
	BusiestRecords  int
	FirstClock      float64
	LastClock       float64
	EmissionsByPort map[string]int // "model.port" → count
}

// Summarize computes aggregate statistics from a SimulationTrace.
// Safe for nil or empty traces (returns zero-value fields).
func Summarize(st *SimulationTrace) *TraceSummary {
	summary := &TraceSummary{
		EmissionsByPort: make(map[string]int),
	}
	if st == nil {
		return summary
	}

	summary.Activations = len(st.Activations)
	summary.Emissions = len(st.Emissions)
	summary.Deliveries = len(st.Deliveries)

	perInstant := make(map[float64]int)
	seen := false
	observe := func(clock float64) {
		perInstant[clock]++
		if !seen || clock < summary.FirstClock {
			summary.FirstClock = clock
		}
		if !seen || clock > summary.LastClock {
			summary.LastClock = clock
		}
		seen = true
	}

	for _, a := range st.Activations {
		observe(a.Clock)
	}
	for _, e := range st.Emissions {
		observe(e.Clock)
		summary.EmissionsByPort[e.Model+"."+e.Port]++
		if e.Fanout == 0 {
			summary.BoundaryOutputs++
		}
	}
	for _, d := range st.Deliveries {
		observe(d.Clock)
	}

	summary.Instants = len(perInstant)
	for clock, n := range perInstant {
		if n > summary.BusiestRecords || (n == summary.BusiestRecords && clock < summary.BusiestInstant) {
			summary.BusiestInstant = clock
			summary.BusiestRecords = n
		}
	}

	return summary
}
