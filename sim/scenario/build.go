package scenario

import (
	"fmt"
	"math"
	"reflect"

	"github.com/sirupsen/logrus"

	"github.com/inference-sim/devsim/sim"
)

// Build validates the scenario and assembles it into a simulation created
// with cfg. The caller usually starts from Config and applies overrides.
func (s *ScenarioSpec) Build(cfg sim.Config) (*sim.Simulation, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	simulation, err := sim.NewSimulation(cfg)
	if err != nil {
		return nil, err
	}

	for i, m := range s.Models {
		model, err := kinds[m.Kind].build(m)
		if err != nil {
			return nil, fmt.Errorf("model[%d] %q: %w", i, m.ID, err)
		}
		if err := simulation.AddModel(sim.ModelID(m.ID), model); err != nil {
			return nil, fmt.Errorf("model[%d] %q: %w", i, m.ID, err)
		}
	}

	for i, c := range s.Connections {
		from, err := sim.ParseEndpoint(c.From)
		if err != nil {
			return nil, fmt.Errorf("connection[%d]: %w", i, err)
		}
		to, err := sim.ParseEndpoint(c.To)
		if err != nil {
			return nil, fmt.Errorf("connection[%d]: %w", i, err)
		}
		if err := simulation.Connect(from.Model, from.Port, to.Model, to.Port); err != nil {
			return nil, fmt.Errorf("connection[%d] %s -> %s: %w", i, c.From, c.To, err)
		}
	}

	for i, a := range s.Schedule {
		if err := simulation.ScheduleUpdate(sim.ModelID(a.Model), a.trigger()); err != nil {
			return nil, fmt.Errorf("schedule[%d]: %w", i, err)
		}
	}

	for i, in := range s.Inject {
		ep, err := sim.ParseEndpoint(in.To)
		if err != nil {
			return nil, fmt.Errorf("inject[%d]: %w", i, err)
		}
		typ, err := simulation.InputType(ep.Model, ep.Port)
		if err != nil {
			return nil, fmt.Errorf("inject[%d]: %w", i, err)
		}
		v, err := coerce(in.Value, typ)
		if err != nil {
			return nil, fmt.Errorf("inject[%d] %s: %w", i, in.To, err)
		}
		trigger := sim.Immediately()
		if in.At != nil {
			trigger = sim.At(sim.TimeOf(*in.At))
		}
		if err := simulation.Inject(ep.Model, ep.Port, v, trigger); err != nil {
			return nil, fmt.Errorf("inject[%d]: %w", i, err)
		}
	}

	logrus.Infof("Built scenario %q: %d models, %d connections, %d initial activations, %d injections",
		s.Name, len(s.Models), len(s.Connections), len(s.Schedule), len(s.Inject))
	return simulation, nil
}

func (a ActivationSpec) trigger() sim.Trigger {
	switch {
	case a.At != nil:
		return sim.At(sim.TimeOf(*a.At))
	case a.After != nil:
		return sim.After(sim.DurationOf(*a.After))
	default:
		return sim.Immediately()
	}
}

var signalType = reflect.TypeOf(sim.Signal{})

// coerce converts a YAML scalar to the type an input port declares.
func coerce(v any, typ reflect.Type) (any, error) {
	if typ == signalType {
		return sim.Signal{}, nil
	}
	if v == nil {
		return nil, fmt.Errorf("value is required for %v input", typ)
	}
	rv := reflect.ValueOf(v)
	if rv.Type().AssignableTo(typ) {
		return v, nil
	}
	if isNumeric(rv.Kind()) && isNumeric(typ.Kind()) {
		if isInteger(typ.Kind()) && rv.CanFloat() && rv.Float() != math.Trunc(rv.Float()) {
			return nil, fmt.Errorf("value %v is not a whole number", v)
		}
		return rv.Convert(typ).Interface(), nil
	}
	return nil, fmt.Errorf("value %v (%T) does not fit %v input", v, v, typ)
}

func isInteger(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return true
	}
	return false
}

func isNumeric(k reflect.Kind) bool {
	return isInteger(k) || k == reflect.Float32 || k == reflect.Float64
}
