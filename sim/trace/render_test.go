package trace

import (
	"bytes"
	"errors"
	"testing"

	"github.com/inference-sim/devsim/sim/internal/testutil"
)

func TestRender_Golden(t *testing.T) {
	st := NewSimulationTrace(TraceConfig{Level: TraceLevelAll})
	st.RecordActivation(ActivationRecord{Seq: 1, Clock: 0, Model: "tick", Source: SourceUpdate})
	st.RecordEmission(EmissionRecord{Clock: 0, Model: "tick", Port: "out", Value: 0, Fanout: 1})
	st.RecordDelivery(DeliveryRecord{Clock: 0, From: "tick", FromPort: "out", To: "sink", ToPort: "in"})
	st.RecordActivation(ActivationRecord{Seq: 2, Clock: 1.5, Model: "sink", Source: SourceInput, Port: "in"})
	st.RecordDelivery(DeliveryRecord{Clock: 1.5, To: "sink", ToPort: "in"})
	st.RecordEmission(EmissionRecord{Clock: 1.5, Model: "sink", Port: "echo", Value: "hi", Fanout: 0})

	var buf bytes.Buffer
	if err := Render(&buf, st); err != nil {
		t.Fatalf("Render: %v", err)
	}
	testutil.AssertGolden(t, "render_all", buf.Bytes())
}

func TestRender_NilTraceWritesNothing(t *testing.T) {
	var buf bytes.Buffer
	if err := Render(&buf, nil); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if buf.Len() != 0 {
		t.Errorf("expected no output, got %q", buf.String())
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestRender_PropagatesWriteErrors(t *testing.T) {
	st := NewSimulationTrace(TraceConfig{Level: TraceLevelEmissions})
	st.RecordEmission(EmissionRecord{Clock: 1, Model: "a", Port: "out"})
	if err := Render(failingWriter{}, st); err == nil {
		t.Error("expected write error")
	}
}
