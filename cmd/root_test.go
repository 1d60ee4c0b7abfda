package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inference-sim/devsim/sim"
	"github.com/inference-sim/devsim/sim/scenario"
	"github.com/inference-sim/devsim/sim/trace"
)

func loadExample(t *testing.T, name string) *scenario.ScenarioSpec {
	t.Helper()
	spec, err := scenario.LoadScenario(filepath.Join("..", "examples", name))
	require.NoError(t, err)
	return spec
}

// overrideCmd returns a command carrying the run flags, restoring the
// package-level flag variables when the test ends.
func overrideCmd(t *testing.T) *cobra.Command {
	t.Helper()
	t.Cleanup(func() {
		seed, until, cascadeLimit, traceLevel, traceDBPath, printTrace = 0, 0, 0, "", "", false
	})
	c := &cobra.Command{Use: "run"}
	registerRunFlags(c)
	return c
}

func TestRunScenario_TickerExample(t *testing.T) {
	// GIVEN the ticker example bounded at t=5
	spec := loadExample(t, "ticker.yaml")

	// WHEN it runs without a store
	report, err := runScenario(context.Background(), spec, nil)
	require.NoError(t, err)

	// THEN five instants ran and the bound stopped the run
	assert.Equal(t, 5, report.Outcome.Steps)
	assert.Equal(t, sim.StopUntilReached, report.Outcome.Reason)
	assert.Equal(t, 4.0, report.Outcome.Clock.Units())
	assert.Equal(t, int64(42), report.Seed)
	require.NotNil(t, report.Summary)
	assert.Equal(t, 5, report.Summary.Emissions)
	assert.Equal(t, 0, report.Summary.BoundaryOutputs)
	assert.Empty(t, report.RunID)
}

func TestRunScenario_SameSeedSameBoundaryOutputs(t *testing.T) {
	// GIVEN the pipeline example, whose generator draws random values
	run := func() []trace.EmissionRecord {
		report, err := runScenario(context.Background(), loadExample(t, "pipeline.yaml"), nil)
		require.NoError(t, err)
		return report.Trace.BoundaryOutputs()
	}

	// WHEN it runs twice with the scenario's seed
	first, second := run(), run()

	// THEN the unconnected clone output saw identical values
	require.Len(t, first, 4)
	assert.Equal(t, first, second)
}

func TestRunScenario_NothingScheduledIsNotAnError(t *testing.T) {
	// GIVEN a scenario with no initial activations
	spec, err := scenario.ParseScenario([]byte(`
version: "1"
name: idle
seed: 1
cascade_limit: 10
models:
  - id: tick
    kind: ticker
    params:
      period: 1
`))
	require.NoError(t, err)

	// WHEN it runs
	report, err := runScenario(context.Background(), spec, nil)

	// THEN the run ends cleanly with an empty queue
	require.NoError(t, err)
	assert.Equal(t, 0, report.Outcome.Steps)
	assert.Equal(t, sim.StopQueueEmpty, report.Outcome.Reason)
	assert.Nil(t, report.Summary)
}

func TestRunScenario_StoresRun(t *testing.T) {
	// GIVEN a trace database in a temp dir
	store, err := trace.OpenStore(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	defer store.Close()

	// WHEN the ticker example runs against it
	report, err := runScenario(context.Background(), loadExample(t, "ticker.yaml"), store)
	require.NoError(t, err)

	// THEN the run is listed with its emissions
	require.NotEmpty(t, report.RunID)
	emissions, err := store.Emissions(report.RunID)
	require.NoError(t, err)
	assert.Len(t, emissions, 5)

	var buf bytes.Buffer
	require.NoError(t, listRuns(&buf, store))
	assert.Contains(t, buf.String(), report.RunID)
	assert.Contains(t, buf.String(), "ticker")
	assert.Contains(t, buf.String(), string(sim.StopUntilReached))
}

func TestReportPrint(t *testing.T) {
	// GIVEN a finished pipeline run
	report, err := runScenario(context.Background(), loadExample(t, "pipeline.yaml"), nil)
	require.NoError(t, err)

	// WHEN the report is printed with the full trace
	var buf bytes.Buffer
	require.NoError(t, report.Print(&buf, true))
	out := buf.String()

	// THEN the result, summary and boundary sections are present
	assert.True(t, strings.HasPrefix(out, "=== Simulation Result ===\n"))
	assert.Contains(t, out, "Scenario             : pipeline")
	assert.Contains(t, out, "Seed                 : 7")
	assert.Contains(t, out, "=== Trace Summary ===")
	assert.Contains(t, out, "=== Boundary Outputs ===")
	require.Contains(t, out, "# level=all")

	// AND each boundary output is listed once before the rendered trace
	start := strings.Index(out, "=== Boundary Outputs ===")
	end := strings.Index(out, "# level=")
	require.True(t, start >= 0 && start < end)
	assert.Equal(t, 4, strings.Count(out[start:end], "split.out_1 = "))
	assert.Equal(t, 4, strings.Count(out[end:], "emit split.out_1 = "))
}

func TestApplyOverrides_OnlyChangedFlags(t *testing.T) {
	// GIVEN the ticker example and a command with only --seed set
	spec := loadExample(t, "ticker.yaml")
	c := overrideCmd(t)
	require.NoError(t, c.Flags().Set("seed", "9"))

	// WHEN overrides apply
	applyOverrides(c, spec)

	// THEN the seed changes and everything else keeps the scenario's values
	require.NotNil(t, spec.Seed)
	assert.Equal(t, int64(9), *spec.Seed)
	require.NotNil(t, spec.Until)
	assert.Equal(t, 5.0, *spec.Until)
	assert.Equal(t, 100, spec.CascadeLimit)
	assert.Equal(t, "emissions", spec.Trace)
}

func TestApplyOverrides_TraceDBForcesTracing(t *testing.T) {
	// GIVEN --trace none with a trace database
	spec := loadExample(t, "ticker.yaml")
	c := overrideCmd(t)
	require.NoError(t, c.Flags().Set("trace", "none"))
	require.NoError(t, c.Flags().Set("trace-db", "runs.db"))

	// WHEN overrides apply
	applyOverrides(c, spec)

	// THEN emissions are still recorded
	assert.Equal(t, string(trace.TraceLevelEmissions), spec.Trace)
}

func TestApplyOverrides_UntilAndCascadeLimit(t *testing.T) {
	// GIVEN explicit --until and --cascade-limit
	spec := loadExample(t, "ticker.yaml")
	c := overrideCmd(t)
	require.NoError(t, c.Flags().Set("until", "2"))
	require.NoError(t, c.Flags().Set("cascade-limit", "3"))

	// WHEN overrides apply and the scenario runs
	applyOverrides(c, spec)
	report, err := runScenario(context.Background(), spec, nil)
	require.NoError(t, err)

	// THEN the shorter bound is honoured
	assert.Equal(t, 3, spec.CascadeLimit)
	assert.Equal(t, 2, report.Outcome.Steps)
}

func TestValidateScenario(t *testing.T) {
	// GIVEN the pipeline example
	// WHEN it is validated
	msg, err := validateScenario(filepath.Join("..", "examples", "pipeline.yaml"))

	// THEN the summary counts its graph
	require.NoError(t, err)
	assert.Contains(t, msg, `"pipeline"`)
	assert.Contains(t, msg, "7 models")
	assert.Contains(t, msg, "6 connections")
}

func TestValidateScenario_RejectsBadConnection(t *testing.T) {
	// GIVEN a scenario connecting an int output to a float input
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
version: "1"
name: bad
cascade_limit: 10
models:
  - id: tick
    kind: ticker
    params:
      period: 1
  - id: sink
    kind: recorder
    type: float
connections:
  - from: tick.out
    to: sink.in
`), 0o644))

	// WHEN it is validated
	_, err := validateScenario(path)

	// THEN the type mismatch is reported
	require.Error(t, err)
	assert.ErrorIs(t, err, sim.ErrPortTypeMismatch)
}
