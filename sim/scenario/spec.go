// Package scenario loads YAML scenario files and assembles them into a
// ready-to-run sim.Simulation built from the library models.
package scenario

import (
	"bytes"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/inference-sim/devsim/sim"
	"github.com/inference-sim/devsim/sim/trace"
)

// CurrentVersion is the scenario format version written by this package.
const CurrentVersion = "1"

// ScenarioSpec is the top-level scenario description.
// Loaded from YAML via LoadScenario(path).
type ScenarioSpec struct {
	Version      string           `yaml:"version"`
	Name         string           `yaml:"name"`
	Seed         *int64           `yaml:"seed,omitempty"` // nil = random seed, logged
	CascadeLimit int              `yaml:"cascade_limit"`
	Start        float64          `yaml:"start,omitempty"`
	Until        *float64         `yaml:"until,omitempty"` // nil = run until the queue is empty
	Trace        string           `yaml:"trace,omitempty"`
	Models       []ModelSpec      `yaml:"models"`
	Connections  []ConnectionSpec `yaml:"connections"`
	Schedule     []ActivationSpec `yaml:"schedule,omitempty"`
	Inject       []InjectionSpec  `yaml:"inject,omitempty"`
}

// ModelSpec declares one model instance.
type ModelSpec struct {
	ID     string     `yaml:"id"`
	Kind   string     `yaml:"kind"`
	Type   string     `yaml:"type,omitempty"` // payload type of generic kinds
	Params ParamsSpec `yaml:"params,omitempty"`
}

// ParamsSpec holds the parameters of every kind; each kind reads its own subset.
type ParamsSpec struct {
	Period       *float64  `yaml:"period,omitempty"`   // ticker
	Limit        int       `yaml:"limit,omitempty"`    // ticker; 0 = unlimited
	Start        *float64  `yaml:"start,omitempty"`    // timer
	End          *float64  `yaml:"end,omitempty"`      // timer
	Delay        *float64  `yaml:"delay,omitempty"`    // timer
	Repeat       *float64  `yaml:"repeat,omitempty"`   // timer
	Ports        int       `yaml:"ports,omitempty"`    // cloner outputs, merge inputs
	Duration     *float64  `yaml:"duration,omitempty"` // delay
	Distribution *DistSpec `yaml:"distribution,omitempty"`
}

// DistSpec parameterizes a generator's sampling distribution.
type DistSpec struct {
	Type  string  `yaml:"type"` // constant, uniform, exponential
	Value float64 `yaml:"value,omitempty"`
	Min   float64 `yaml:"min,omitempty"`
	Max   float64 `yaml:"max,omitempty"`
	Rate  float64 `yaml:"rate,omitempty"`
}

// ConnectionSpec wires an output to an input, both written "model.port".
type ConnectionSpec struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`
}

// ActivationSpec schedules a model's first self-activation. With neither At
// nor After set it fires at the start time.
type ActivationSpec struct {
	Model string   `yaml:"model"`
	At    *float64 `yaml:"at,omitempty"`
	After *float64 `yaml:"after,omitempty"`
}

// InjectionSpec delivers a value to an input ("model.port") from outside
// the graph. Signal inputs ignore Value.
type InjectionSpec struct {
	To    string   `yaml:"to"`
	Value any      `yaml:"value,omitempty"`
	At    *float64 `yaml:"at,omitempty"`
}

// LoadScenario reads and parses a YAML scenario file.
// Uses strict parsing: unrecognized keys (typos) are rejected.
func LoadScenario(path string) (*ScenarioSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML.
func ParseScenario(data []byte) (*ScenarioSpec, error) {
	var spec ScenarioSpec
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&spec); err != nil {
		return nil, fmt.Errorf("parsing scenario: %w", err)
	}
	if spec.Version == "" {
		logrus.Warnf("scenario has no version; assuming %q", CurrentVersion)
		spec.Version = CurrentVersion
	}
	return &spec, nil
}

// Config returns the simulation configuration described by the scenario.
func (s *ScenarioSpec) Config() sim.Config {
	cfg := sim.NewConfig(s.CascadeLimit)
	if s.Seed != nil {
		cfg = cfg.WithSeed(*s.Seed)
	}
	cfg.StartTime = sim.TimeOf(s.Start)
	cfg.Trace = trace.TraceConfig{Level: trace.TraceLevel(s.Trace)}
	return cfg
}

// UntilTime returns the run bound, if the scenario sets one.
func (s *ScenarioSpec) UntilTime() (sim.Time, bool) {
	if s.Until == nil {
		return sim.MaxTime, false
	}
	return sim.TimeOf(*s.Until), true
}
