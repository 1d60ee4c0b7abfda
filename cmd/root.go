package cmd

import (
	"context"
	"os"
	"os/signal"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/inference-sim/devsim/sim/scenario"
	"github.com/inference-sim/devsim/sim/trace"
)

var (
	// CLI flags shared by the subcommands
	scenarioPath string // Path to the scenario YAML file
	logLevel     string // Log verbosity level
	traceDBPath  string // SQLite database holding stored runs

	// CLI flags overriding scenario values when set
	seed         int64   // Top-level random seed
	until        float64 // Exclusive run bound
	cascadeLimit int     // Maximum cascaded invocations per instant
	traceLevel   string  // Trace verbosity (none, emissions, all)
	printTrace   bool    // Render the full trace after the summary
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "devsim",
	Short: "Discrete-event simulator for coupled port-based models",
}

// runCmd builds a scenario, runs it and prints the result
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a scenario",
	Run: func(cmd *cobra.Command, args []string) {
		setLogLevel()

		spec, err := scenario.LoadScenario(scenarioPath)
		if err != nil {
			logrus.Fatalf("unable to load scenario; %v", err)
		}
		applyOverrides(cmd, spec)
		if err := spec.Validate(); err != nil {
			logrus.Fatalf("invalid scenario %s: %v", scenarioPath, err)
		}

		var store *trace.Store
		if traceDBPath != "" {
			if store, err = trace.OpenStore(traceDBPath); err != nil {
				logrus.Fatalf("%v", err)
			}
			defer store.Close()
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		logrus.Infof("Running scenario %q from %s", spec.Name, scenarioPath)
		report, err := runScenario(ctx, spec, store)
		if err != nil {
			logrus.Fatalf("simulation failed: %v", err)
		}
		if err := report.Print(os.Stdout, printTrace); err != nil {
			logrus.Fatalf("writing report: %v", err)
		}
		logrus.Info("Simulation complete.")
	},
}

// validateCmd checks that a scenario loads and builds without running it
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a scenario without running it",
	Run: func(cmd *cobra.Command, args []string) {
		setLogLevel()
		msg, err := validateScenario(scenarioPath)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		cmd.Println(msg)
	},
}

// runsCmd lists the runs stored in a trace database
var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List runs stored in a trace database",
	Run: func(cmd *cobra.Command, args []string) {
		setLogLevel()
		if traceDBPath == "" {
			logrus.Fatalf("--trace-db is required")
		}
		store, err := trace.OpenStore(traceDBPath)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		defer store.Close()
		if err := listRuns(os.Stdout, store); err != nil {
			logrus.Fatalf("%v", err)
		}
	},
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func setLogLevel() {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		logrus.Fatalf("Invalid log level: %s", logLevel)
	}
	logrus.SetLevel(level)
}

// applyOverrides copies explicitly set flags over the scenario's values.
func applyOverrides(cmd *cobra.Command, spec *scenario.ScenarioSpec) {
	flags := cmd.Flags()
	if flags.Changed("seed") {
		s := seed
		spec.Seed = &s
	}
	if flags.Changed("until") {
		u := until
		spec.Until = &u
	}
	if flags.Changed("cascade-limit") {
		spec.CascadeLimit = cascadeLimit
	}
	if flags.Changed("trace") {
		spec.Trace = traceLevel
	}
	if traceDBPath != "" && !(trace.TraceConfig{Level: trace.TraceLevel(spec.Trace)}).Enabled() {
		logrus.Warnf("--trace-db given with trace level %q; recording emissions", spec.Trace)
		spec.Trace = string(trace.TraceLevelEmissions)
	}
}

func registerRunFlags(c *cobra.Command) {
	c.Flags().Int64Var(&seed, "seed", 0, "Random seed (overrides the scenario; random when neither sets it)")
	c.Flags().Float64Var(&until, "until", 0, "Stop before the first instant at or after this time (overrides the scenario)")
	c.Flags().IntVar(&cascadeLimit, "cascade-limit", 0, "Maximum cascaded invocations per instant (overrides the scenario)")
	c.Flags().StringVar(&traceLevel, "trace", "", "Trace level: none, emissions, all (overrides the scenario)")
	c.Flags().StringVar(&traceDBPath, "trace-db", "", "SQLite database to store the run trace in")
	c.Flags().BoolVar(&printTrace, "print-trace", false, "Print the full trace after the summary")
}

// init sets up CLI flags and subcommands
func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "error", "Log level (trace, debug, info, warn, error, fatal, panic)")

	registerRunFlags(runCmd)
	runCmd.Flags().StringVar(&scenarioPath, "scenario", "", "Path to the scenario YAML file")
	_ = runCmd.MarkFlagRequired("scenario")

	validateCmd.Flags().StringVar(&scenarioPath, "scenario", "", "Path to the scenario YAML file")
	_ = validateCmd.MarkFlagRequired("scenario")

	runsCmd.Flags().StringVar(&traceDBPath, "trace-db", "", "SQLite database holding stored runs")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(runsCmd)
}
