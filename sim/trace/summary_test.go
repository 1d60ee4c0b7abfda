package trace

import "testing"

func TestSummarize_NilAndEmpty(t *testing.T) {
	for _, st := range []*SimulationTrace{nil, NewSimulationTrace(TraceConfig{Level: TraceLevelAll})} {
		summary := Summarize(st)
		if summary.Activations != 0 || summary.Emissions != 0 || summary.Deliveries != 0 {
			t.Error("expected zero counts")
		}
		if summary.Instants != 0 || summary.BusiestRecords != 0 {
			t.Error("expected no instants")
		}
		if len(summary.EmissionsByPort) != 0 {
			t.Error("expected empty port distribution")
		}
	}
}

func TestSummarize_PopulatedTrace(t *testing.T) {
	// GIVEN records spread over instants 1, 2 and 4
	st := NewSimulationTrace(TraceConfig{Level: TraceLevelAll})
	st.RecordActivation(ActivationRecord{Clock: 1, Model: "a", Source: SourceUpdate})
	st.RecordEmission(EmissionRecord{Clock: 1, Model: "a", Port: "out", Fanout: 1})
	st.RecordDelivery(DeliveryRecord{Clock: 1, From: "a", FromPort: "out", To: "b", ToPort: "in"})
	st.RecordActivation(ActivationRecord{Clock: 2, Model: "a", Source: SourceUpdate})
	st.RecordEmission(EmissionRecord{Clock: 2, Model: "a", Port: "out", Fanout: 1})
	st.RecordDelivery(DeliveryRecord{Clock: 2, From: "a", FromPort: "out", To: "b", ToPort: "in"})
	st.RecordActivation(ActivationRecord{Clock: 4, Model: "c", Source: SourceUpdate})
	st.RecordEmission(EmissionRecord{Clock: 4, Model: "c", Port: "done", Fanout: 0})

	// WHEN summarized
	summary := Summarize(st)

	// THEN counts match
	if summary.Activations != 3 || summary.Emissions != 3 || summary.Deliveries != 2 {
		t.Errorf("counts = %d/%d/%d, want 3/3/2", summary.Activations, summary.Emissions, summary.Deliveries)
	}
	if summary.BoundaryOutputs != 1 {
		t.Errorf("expected 1 boundary output, got %d", summary.BoundaryOutputs)
	}
	if summary.Instants != 3 {
		t.Errorf("expected 3 instants, got %d", summary.Instants)
	}
	// Instants 1 and 2 tie with 3 records; the earlier one wins.
	if summary.BusiestInstant != 1 || summary.BusiestRecords != 3 {
		t.Errorf("busiest = %v (%d records), want 1 (3)", summary.BusiestInstant, summary.BusiestRecords)
	}
	if summary.FirstClock != 1 || summary.LastClock != 4 {
		t.Errorf("clock span = [%v, %v], want [1, 4]", summary.FirstClock, summary.LastClock)
	}
	if summary.EmissionsByPort["a.out"] != 2 || summary.EmissionsByPort["c.done"] != 1 {
		t.Errorf("unexpected port distribution %v", summary.EmissionsByPort)
	}
}
