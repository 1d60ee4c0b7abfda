package cmd

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/inference-sim/devsim/sim"
	"github.com/inference-sim/devsim/sim/scenario"
	"github.com/inference-sim/devsim/sim/trace"
)

// RunReport is what the run command prints.
type RunReport struct {
	Scenario string
	Seed     int64
	Outcome  sim.RunOutcome
	RunID    string // set when the run was stored

	Trace   *trace.SimulationTrace
	Summary *trace.TraceSummary
}

// runScenario builds the scenario, runs it to its bound and, when store is
// non-nil, persists the trace.
func runScenario(ctx context.Context, spec *scenario.ScenarioSpec, store *trace.Store) (*RunReport, error) {
	s, err := spec.Build(spec.Config())
	if err != nil {
		return nil, err
	}

	var out sim.RunOutcome
	if bound, ok := spec.UntilTime(); ok {
		out, err = s.RunUntil(ctx, bound)
	} else {
		out, err = s.Run(ctx)
	}
	if err != nil && !sim.IsTerminal(err) {
		return nil, err
	}

	report := &RunReport{Scenario: spec.Name, Seed: s.Seed(), Outcome: out, Trace: s.Trace()}
	if report.Trace != nil {
		report.Summary = trace.Summarize(report.Trace)
	}
	if store != nil {
		id, err := store.SaveRun(trace.RunMeta{
			Scenario:   spec.Name,
			Seed:       s.Seed(),
			Steps:      out.Steps,
			FinalClock: out.Clock.Units(),
			StopReason: string(out.Reason),
		}, report.Trace)
		if err != nil {
			return nil, err
		}
		report.RunID = id
	}
	return report, nil
}

// Print writes the report. With full set the rendered trace follows.
func (r *RunReport) Print(w io.Writer, full bool) error {
	p := &printer{w: w}
	p.line("=== Simulation Result ===")
	p.line("Scenario             : %s", r.Scenario)
	p.line("Seed                 : %d", r.Seed)
	p.line("Steps                : %d", r.Outcome.Steps)
	p.line("Final Clock          : %v", r.Outcome.Clock)
	p.line("Stop Reason          : %s", r.Outcome.Reason)
	if r.RunID != "" {
		p.line("Run ID               : %s", r.RunID)
	}

	if r.Summary != nil {
		s := r.Summary
		p.line("=== Trace Summary ===")
		p.line("Activations          : %d", s.Activations)
		p.line("Emissions            : %d", s.Emissions)
		p.line("Deliveries           : %d", s.Deliveries)
		p.line("Instants             : %d", s.Instants)
		if s.Instants > 0 {
			p.line("Busiest Instant      : %g (%d records)", s.BusiestInstant, s.BusiestRecords)
		}
		ports := make([]string, 0, len(s.EmissionsByPort))
		for port := range s.EmissionsByPort {
			ports = append(ports, port)
		}
		sort.Strings(ports)
		for _, port := range ports {
			p.line("  %-19s: %d", port, s.EmissionsByPort[port])
		}

		p.line("=== Boundary Outputs ===")
		for _, e := range r.Trace.BoundaryOutputs() {
			p.line("t=%g %s.%s = %v", e.Clock, e.Model, e.Port, e.Value)
		}
	}
	if p.err != nil {
		return p.err
	}
	if full && r.Trace != nil {
		return trace.Render(w, r.Trace)
	}
	return nil
}

// validateScenario loads, validates and builds a scenario without running it.
func validateScenario(path string) (string, error) {
	spec, err := scenario.LoadScenario(path)
	if err != nil {
		return "", err
	}
	cfg := spec.Config()
	s, err := spec.Build(cfg)
	if err != nil {
		return "", fmt.Errorf("invalid scenario %s: %w", path, err)
	}
	return fmt.Sprintf("scenario %q is valid: %d models, %d connections, %d pending activations",
		spec.Name, len(s.Models()), len(s.Connections()), len(s.Pending())), nil
}

// listRuns prints the runs of a trace database, oldest first.
func listRuns(w io.Writer, store *trace.Store) error {
	runs, err := store.ListRuns()
	if err != nil {
		return err
	}
	p := &printer{w: w}
	p.line("%-36s  %-20s  %-20s  %6s  %-14s  %s", "ID", "CREATED", "SCENARIO", "STEPS", "STOP", "SEED")
	for _, r := range runs {
		p.line("%-36s  %-20s  %-20s  %6d  %-14s  %d",
			r.ID, r.CreatedAt.Format("2006-01-02T15:04:05Z"), r.Scenario, r.Steps, r.StopReason, r.Seed)
	}
	return p.err
}

// printer remembers the first write error.
type printer struct {
	w   io.Writer
	err error
}

func (p *printer) line(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format+"\n", args...)
}
