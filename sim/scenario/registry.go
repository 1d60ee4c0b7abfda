package scenario

import (
	"fmt"
	"sort"
	"strings"

	"github.com/inference-sim/devsim/sim"
	"github.com/inference-sim/devsim/sim/models"
)

// Payload type names accepted in ModelSpec.Type.
const (
	TypeInt    = "int"
	TypeFloat  = "float"
	TypeString = "string"
	TypeSignal = "signal"
)

// Distribution names accepted in DistSpec.Type.
const (
	DistConstant    = "constant"
	DistUniform     = "uniform"
	DistExponential = "exponential"
)

var allTypes = []string{TypeInt, TypeFloat, TypeString, TypeSignal}

// kind describes one library model usable from scenario files.
type kind struct {
	types    []string // accepted payload types; empty for fixed-type kinds
	validate func(prefix string, p *ParamsSpec) error
	build    func(m ModelSpec) (sim.Model, error)
}

var kinds = map[string]kind{
	"ticker": {
		validate: validateTicker,
		build: func(m ModelSpec) (sim.Model, error) {
			t := models.NewTicker(sim.DurationOf(*m.Params.Period))
			t.Limit = m.Params.Limit
			return t, nil
		},
	},
	"timer": {
		validate: validateTimer,
		build:    buildTimer,
	},
	"queue": {
		types:    allTypes,
		validate: validateNothing,
		build: func(m ModelSpec) (sim.Model, error) {
			return typed(m.Type,
				func() sim.Model { return models.NewQueue[int]() },
				func() sim.Model { return models.NewQueue[float64]() },
				func() sim.Model { return models.NewQueue[string]() },
				func() sim.Model { return models.NewQueue[sim.Signal]() })
		},
	},
	"cloner": {
		types:    allTypes,
		validate: validatePorts,
		build: func(m ModelSpec) (sim.Model, error) {
			n := m.Params.Ports
			return typed(m.Type,
				func() sim.Model { return models.NewCloner[int](n) },
				func() sim.Model { return models.NewCloner[float64](n) },
				func() sim.Model { return models.NewCloner[string](n) },
				func() sim.Model { return models.NewCloner[sim.Signal](n) })
		},
	},
	"merge": {
		types:    allTypes,
		validate: validatePorts,
		build: func(m ModelSpec) (sim.Model, error) {
			n := m.Params.Ports
			return typed(m.Type,
				func() sim.Model { return models.NewMerge[int](n) },
				func() sim.Model { return models.NewMerge[float64](n) },
				func() sim.Model { return models.NewMerge[string](n) },
				func() sim.Model { return models.NewMerge[sim.Signal](n) })
		},
	},
	"delay": {
		types:    allTypes,
		validate: validateDelay,
		build: func(m ModelSpec) (sim.Model, error) {
			d := sim.DurationOf(*m.Params.Duration)
			return typed(m.Type,
				func() sim.Model { return models.NewDelay[int](d) },
				func() sim.Model { return models.NewDelay[float64](d) },
				func() sim.Model { return models.NewDelay[string](d) },
				func() sim.Model { return models.NewDelay[sim.Signal](d) })
		},
	},
	"recorder": {
		types:    allTypes,
		validate: validateNothing,
		build: func(m ModelSpec) (sim.Model, error) {
			return typed(m.Type,
				func() sim.Model { return models.NewRecorder[int]() },
				func() sim.Model { return models.NewRecorder[float64]() },
				func() sim.Model { return models.NewRecorder[string]() },
				func() sim.Model { return models.NewRecorder[sim.Signal]() })
		},
	},
	"generator": {
		types:    []string{TypeInt, TypeFloat},
		validate: validateGenerator,
		build:    buildGenerator,
	},
}

// Kinds returns the model kinds usable in scenario files, sorted.
func Kinds() []string {
	names := make([]string, 0, len(kinds))
	for name := range kinds {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func kindNames() string { return strings.Join(Kinds(), ", ") }

func typed(typ string, ints, floats, strs, signals func() sim.Model) (sim.Model, error) {
	switch typ {
	case TypeInt:
		return ints(), nil
	case TypeFloat:
		return floats(), nil
	case TypeString:
		return strs(), nil
	case TypeSignal:
		return signals(), nil
	}
	return nil, fmt.Errorf("unknown type %q", typ)
}

func buildTimer(m ModelSpec) (sim.Model, error) {
	p := m.Params
	t := models.NewTimer(durationOrZero(p.Delay), durationOrZero(p.Repeat))
	if p.Start != nil {
		start := sim.TimeOf(*p.Start)
		t.Start = &start
	}
	if p.End != nil {
		end := sim.TimeOf(*p.End)
		t.End = &end
	}
	return t, nil
}

func buildGenerator(m ModelSpec) (sim.Model, error) {
	d := m.Params.Distribution
	if m.Type == TypeInt {
		switch d.Type {
		case DistConstant:
			return models.NewGenerator(models.Constant(int(d.Value))), nil
		case DistUniform:
			return models.NewGenerator(models.UniformInt(int(d.Min), int(d.Max))), nil
		}
		return nil, fmt.Errorf("distribution %s produces floats; use type float", d.Type)
	}
	switch d.Type {
	case DistConstant:
		return models.NewGenerator(models.Constant(d.Value)), nil
	case DistUniform:
		return models.NewGenerator(models.UniformFloat(d.Min, d.Max)), nil
	case DistExponential:
		return models.NewGenerator(models.Exponential(d.Rate)), nil
	}
	return nil, fmt.Errorf("unknown distribution %q", d.Type)
}

func durationOrZero(v *float64) sim.Duration {
	if v == nil {
		return sim.ZeroDuration
	}
	return sim.DurationOf(*v)
}
