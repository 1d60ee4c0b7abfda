package sim

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModelID_Child(t *testing.T) {
	assert.Equal(t, ModelID("plant/pump"), ModelID("plant").Child("pump"))
	assert.Equal(t, ModelID("pump"), ModelID("").Child("pump"))
}

func TestParseEndpoint(t *testing.T) {
	ep, err := ParseEndpoint("plant/pump.out")
	require.NoError(t, err)
	assert.Equal(t, Endpoint{Model: "plant/pump", Port: "out"}, ep)

	ep, err = ParseEndpoint("a.b.c")
	require.NoError(t, err)
	assert.Equal(t, Endpoint{Model: "a.b", Port: "c"}, ep)

	for _, bad := range []string{"", "model", ".port", "model."} {
		_, err := ParseEndpoint(bad)
		assert.Error(t, err, bad)
	}
}

func TestAddModel_Rejections(t *testing.T) {
	s := newTestSim(t, 10)
	require.NoError(t, s.AddModel("sink", &sinkModel{}))

	tests := []struct {
		name  string
		id    ModelID
		model Model
		want  error
	}{
		{"duplicate id", "sink", &sinkModel{}, ErrDuplicateModel},
		{"empty id", "", &sinkModel{}, ErrInvalidModel},
		{"nil model", "x", nil, ErrInvalidModel},
		{"duplicate port", "dup", &portsOnly{ports: Ports{Inputs: []InputPort{
			SignalInput("in", func(*ModelCtx) error { return nil }),
			SignalInput("in", func(*ModelCtx) error { return nil }),
		}}}, ErrDuplicatePort},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.AddModel(tt.id, tt.model)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
	assert.Equal(t, []ModelID{"sink"}, s.Models())
}

func TestConnect_Rejections(t *testing.T) {
	s := newTestSim(t, 10)
	require.NoError(t, s.AddModel("tick", newTicker(1)))
	require.NoError(t, s.AddModel("sink", &sinkModel{}))

	tests := []struct {
		name              string
		src, out, dst, in string
		want              error
	}{
		{"unknown source", "nope", "out", "sink", "in", ErrUnknownModel},
		{"unknown destination", "tick", "out", "nope", "in", ErrUnknownModel},
		{"unknown output", "tick", "missing", "sink", "in", ErrUnknownPort},
		{"unknown input", "tick", "out", "sink", "missing", ErrUnknownPort},
		{"output used as input", "sink", "in", "tick", "out", ErrUnknownPort},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.Connect(ModelID(tt.src), tt.out, ModelID(tt.dst), tt.in)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
	assert.Empty(t, s.Connections())
}

func TestConnect_TypeMismatchKeepsGraphBuildable(t *testing.T) {
	// GIVEN an int output and a string input
	s := newTestSim(t, 10)
	require.NoError(t, s.AddModel("tick", newTicker(1)))
	require.NoError(t, s.AddModel("words", &portsOnly{ports: Ports{Inputs: []InputPort{
		Input("in", func(*ModelCtx, string) error { return nil }),
	}}}))
	require.NoError(t, s.AddModel("sink", &sinkModel{}))

	// WHEN connecting them
	err := s.Connect("tick", "out", "words", "in")

	// THEN the connection is rejected with a descriptive error
	require.True(t, errors.Is(err, ErrPortTypeMismatch))
	var kerr *Error
	require.True(t, errors.As(err, &kerr))
	assert.Equal(t, ModelID("words"), kerr.Model)
	assert.Contains(t, kerr.Error(), "int")
	assert.Contains(t, kerr.Error(), "string")

	// AND an unrelated valid connection still succeeds
	require.NoError(t, s.Connect("tick", "out", "sink", "in"))
	assert.Len(t, s.Connections(), 1)
}

func TestConnect_InputAcceptsSingleProducer(t *testing.T) {
	s := newTestSim(t, 10)
	require.NoError(t, s.AddModel("a", newTicker(1)))
	require.NoError(t, s.AddModel("b", newTicker(1)))
	require.NoError(t, s.AddModel("sink", &sinkModel{}))

	require.NoError(t, s.Connect("a", "out", "sink", "in"))
	err := s.Connect("b", "out", "sink", "in")
	assert.True(t, errors.Is(err, ErrInputAlreadyConnected))
	assert.Contains(t, err.Error(), "a.out")
}

func TestConnect_FanOutKeepsDeclarationOrder(t *testing.T) {
	s := newTestSim(t, 10)
	require.NoError(t, s.AddModel("tick", newTicker(1)))
	require.NoError(t, s.AddModel("s2", &sinkModel{}))
	require.NoError(t, s.AddModel("s1", &sinkModel{}))
	require.NoError(t, s.Connect("tick", "out", "s2", "in"))
	require.NoError(t, s.Connect("tick", "out", "s1", "in"))

	got := s.graph.destinations(Endpoint{Model: "tick", Port: "out"})
	assert.Equal(t, []Endpoint{{Model: "s2", Port: "in"}, {Model: "s1", Port: "in"}}, got)
}

func TestBuild_SealedAfterStart(t *testing.T) {
	s := newTestSim(t, 10)
	require.NoError(t, s.AddModel("tick", newTicker(1)))
	require.NoError(t, s.AddModel("sink", &sinkModel{}))
	require.NoError(t, s.Start())

	assert.True(t, errors.Is(s.AddModel("late", &sinkModel{}), ErrGraphSealed))
	assert.True(t, errors.Is(s.Connect("tick", "out", "sink", "in"), ErrGraphSealed))
	assert.True(t, errors.Is(s.ScheduleUpdate("tick", Immediately()), ErrGraphSealed))
}

func TestInputType(t *testing.T) {
	s := newTestSim(t, 10)
	require.NoError(t, s.AddModel("sink", &sinkModel{}))

	typ, err := s.InputType("sink", "in")
	require.NoError(t, err)
	assert.Equal(t, "int", typ.String())

	_, err = s.InputType("sink", "out")
	assert.True(t, errors.Is(err, ErrUnknownPort))
	_, err = s.InputType("nope", "in")
	assert.True(t, errors.Is(err, ErrUnknownModel))
}
