package scenario

import (
	"fmt"
	"math"
	"slices"

	"github.com/inference-sim/devsim/sim"
	"github.com/inference-sim/devsim/sim/trace"
)

// Validate checks the scenario for errors that can be found without
// building it. Port names and types are checked by Build.
func (s *ScenarioSpec) Validate() error {
	if s.Version != CurrentVersion {
		return fmt.Errorf("unsupported version %q; supported: %s", s.Version, CurrentVersion)
	}
	if s.CascadeLimit <= 0 {
		return fmt.Errorf("cascade_limit must be positive, got %d", s.CascadeLimit)
	}
	if !trace.IsValidTraceLevel(s.Trace) {
		return fmt.Errorf("unknown trace level %q; valid: none, emissions, all", s.Trace)
	}
	if err := validateFinite("start", s.Start); err != nil {
		return err
	}
	if s.Until != nil {
		if err := validateFinite("until", *s.Until); err != nil {
			return err
		}
		if *s.Until < s.Start {
			return fmt.Errorf("until (%g) is before start (%g)", *s.Until, s.Start)
		}
	}
	if len(s.Models) == 0 {
		return fmt.Errorf("at least one model required")
	}

	ids := make(map[string]bool, len(s.Models))
	for i := range s.Models {
		m := &s.Models[i]
		if err := validateModel(m, i); err != nil {
			return err
		}
		if ids[m.ID] {
			return fmt.Errorf("model[%d]: duplicate id %q", i, m.ID)
		}
		ids[m.ID] = true
	}

	for i, c := range s.Connections {
		prefix := fmt.Sprintf("connection[%d]", i)
		for _, ref := range []string{c.From, c.To} {
			ep, err := sim.ParseEndpoint(ref)
			if err != nil {
				return fmt.Errorf("%s: %w", prefix, err)
			}
			if !ids[string(ep.Model)] {
				return fmt.Errorf("%s: unknown model %q", prefix, ep.Model)
			}
		}
	}
	for i, a := range s.Schedule {
		prefix := fmt.Sprintf("schedule[%d]", i)
		if !ids[a.Model] {
			return fmt.Errorf("%s: unknown model %q", prefix, a.Model)
		}
		if a.At != nil && a.After != nil {
			return fmt.Errorf("%s: at and after are mutually exclusive", prefix)
		}
		if a.At != nil {
			if err := validateFinite(prefix+".at", *a.At); err != nil {
				return err
			}
		}
		if a.After != nil {
			if err := validateNonNegative(prefix+".after", *a.After); err != nil {
				return err
			}
		}
	}
	for i, in := range s.Inject {
		prefix := fmt.Sprintf("inject[%d]", i)
		ep, err := sim.ParseEndpoint(in.To)
		if err != nil {
			return fmt.Errorf("%s: %w", prefix, err)
		}
		if !ids[string(ep.Model)] {
			return fmt.Errorf("%s: unknown model %q", prefix, ep.Model)
		}
		if in.At != nil {
			if err := validateFinite(prefix+".at", *in.At); err != nil {
				return err
			}
		}
	}
	return nil
}

func validateModel(m *ModelSpec, idx int) error {
	prefix := fmt.Sprintf("model[%d]", idx)
	if m.ID == "" {
		return fmt.Errorf("%s: id is required", prefix)
	}
	prefix = fmt.Sprintf("model[%d] %q", idx, m.ID)
	k, ok := kinds[m.Kind]
	if !ok {
		return fmt.Errorf("%s: unknown kind %q; valid: %s", prefix, m.Kind, kindNames())
	}
	if len(k.types) == 0 {
		if m.Type != "" {
			return fmt.Errorf("%s: kind %s takes no type", prefix, m.Kind)
		}
	} else if !slices.Contains(k.types, m.Type) {
		return fmt.Errorf("%s: kind %s needs type in %v, got %q", prefix, m.Kind, k.types, m.Type)
	}
	if err := k.validate(prefix+".params", &m.Params); err != nil {
		return err
	}
	if m.Kind == "generator" && m.Type == TypeInt {
		return validateIntDistribution(prefix+".params.distribution", m.Params.Distribution)
	}
	return nil
}

// validateIntDistribution checks that an int generator's parameters are whole
// numbers inside the int range.
func validateIntDistribution(prefix string, d *DistSpec) error {
	if d.Type == DistExponential {
		return fmt.Errorf("%s: exponential produces floats; use type float", prefix)
	}
	for _, f := range []struct {
		name string
		val  float64
	}{{"value", d.Value}, {"min", d.Min}, {"max", d.Max}} {
		if f.val < float64(math.MinInt) || f.val >= -float64(math.MinInt) {
			return fmt.Errorf("%s.%s is outside the int range, got %g", prefix, f.name, f.val)
		}
		if f.val != math.Trunc(f.val) {
			return fmt.Errorf("%s.%s must be a whole number for type int, got %g", prefix, f.name, f.val)
		}
	}
	return nil
}

func validateTicker(prefix string, p *ParamsSpec) error {
	if p.Period == nil {
		return fmt.Errorf("%s.period is required", prefix)
	}
	if err := validatePositive(prefix+".period", *p.Period); err != nil {
		return err
	}
	if p.Limit < 0 {
		return fmt.Errorf("%s.limit must be non-negative, got %d", prefix, p.Limit)
	}
	return nil
}

func validateTimer(prefix string, p *ParamsSpec) error {
	if p.Delay != nil {
		if err := validateNonNegative(prefix+".delay", *p.Delay); err != nil {
			return err
		}
	}
	if p.Repeat != nil {
		if err := validateNonNegative(prefix+".repeat", *p.Repeat); err != nil {
			return err
		}
	}
	if p.Start != nil {
		if err := validateFinite(prefix+".start", *p.Start); err != nil {
			return err
		}
	}
	if p.End != nil {
		if err := validateFinite(prefix+".end", *p.End); err != nil {
			return err
		}
	}
	return nil
}

func validatePorts(prefix string, p *ParamsSpec) error {
	if p.Ports <= 0 {
		return fmt.Errorf("%s.ports must be positive, got %d", prefix, p.Ports)
	}
	return nil
}

func validateDelay(prefix string, p *ParamsSpec) error {
	if p.Duration == nil {
		return fmt.Errorf("%s.duration is required", prefix)
	}
	return validateNonNegative(prefix+".duration", *p.Duration)
}

func validateGenerator(prefix string, p *ParamsSpec) error {
	d := p.Distribution
	if d == nil {
		return fmt.Errorf("%s.distribution is required", prefix)
	}
	prefix += ".distribution"
	for _, f := range []struct {
		name string
		val  float64
	}{{"value", d.Value}, {"min", d.Min}, {"max", d.Max}, {"rate", d.Rate}} {
		if err := validateFinite(prefix+"."+f.name, f.val); err != nil {
			return err
		}
	}
	switch d.Type {
	case DistConstant:
	case DistUniform:
		if d.Max < d.Min {
			return fmt.Errorf("%s: max (%g) is below min (%g)", prefix, d.Max, d.Min)
		}
	case DistExponential:
		if err := validatePositive(prefix+".rate", d.Rate); err != nil {
			return err
		}
	default:
		return fmt.Errorf("%s: unknown type %q; valid: constant, uniform, exponential", prefix, d.Type)
	}
	return nil
}

func validateNothing(string, *ParamsSpec) error { return nil }

func validateFinite(name string, val float64) error {
	if math.IsNaN(val) || math.IsInf(val, 0) {
		return fmt.Errorf("%s must be a finite number, got %f", name, val)
	}
	return nil
}

func validateNonNegative(name string, val float64) error {
	if err := validateFinite(name, val); err != nil {
		return err
	}
	if val < 0 {
		return fmt.Errorf("%s must be non-negative, got %f", name, val)
	}
	return nil
}

func validatePositive(name string, val float64) error {
	if err := validateFinite(name, val); err != nil {
		return err
	}
	if val <= 0 {
		return fmt.Errorf("%s must be positive, got %f", name, val)
	}
	return nil
}
