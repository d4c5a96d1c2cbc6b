package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/simergy/simergy/sim"
	"github.com/simergy/simergy/sim/trace"
)

var (
	// CLI flags shared by run and console
	seed     int64  // Seed for every random stream of a department
	logLevel string // Log verbosity level

	// CLI flags for run
	scenarioPath string  // Path to the YAML scenario
	presetName   string  // Preset scenario from the defaults file
	defaultsPath string  // Path to defaults.yaml
	duration     float64 // Virtual time to simulate
	traceLevel   string  // Trace verbosity (none, events)
	outputPath   string  // Optional JSON report path
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "simergy",
	Short: "Discrete-event simulator for emergency departments",
}

func setupLogging() {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		logrus.Fatalf("Invalid log level: %s", logLevel)
	}
	logrus.SetLevel(level)
}

// Report is the JSON document printed at the end of a run.
type Report struct {
	Department string              `json:"department"`
	RunID      string              `json:"run_id"`
	Seed       int64               `json:"seed"`
	Time       float64             `json:"time"`
	Patients   int                 `json:"patients"`
	Discharged int                 `json:"discharged"`
	KPIs       sim.KPISummary      `json:"kpis"`
	Trace      *trace.TraceSummary `json:"trace,omitempty"`
}

// runCmd builds the department described by a scenario and simulates it
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a scenario for a fixed virtual duration",
	Run: func(cmd *cobra.Command, args []string) {
		setupLogging()

		if !trace.IsValidTraceLevel(traceLevel) {
			logrus.Fatalf("Invalid trace level: %s", traceLevel)
		}
		var sc *sim.Scenario
		var err error
		switch {
		case scenarioPath != "" && presetName != "":
			logrus.Fatalf("--scenario and --preset are mutually exclusive")
		case scenarioPath != "":
			sc, err = sim.LoadScenario(scenarioPath)
		case presetName != "":
			sc, err = GetPreset(presetName, defaultsPath)
		default:
			logrus.Fatalf("Neither --scenario nor --preset provided. Exiting simulation.")
		}
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		if cmd.Flags().Changed("seed") {
			sc.Seed = seed
		}

		st := trace.NewSimulationTrace(trace.TraceConfig{Level: trace.TraceLevel(traceLevel)})
		report, err := runScenario(sc, duration, st)
		if err != nil {
			logrus.Fatalf("%v", err)
		}

		out := io.Writer(os.Stdout)
		if outputPath != "" {
			f, err := os.Create(outputPath)
			if err != nil {
				logrus.Fatalf("creating output file: %v", err)
			}
			defer f.Close()
			out = f
		}
		if err := writeReport(out, report, st); err != nil {
			logrus.Fatalf("%v", err)
		}
	},
}

// runScenario builds sc, records patient events into st and simulates it
// for the given virtual duration.
func runScenario(sc *sim.Scenario, duration float64, st *trace.SimulationTrace) (*Report, error) {
	d, err := sc.Build()
	if err != nil {
		return nil, err
	}
	if st.Enabled() {
		d.Subscribe(func(id int, ev sim.Event) {
			st.RecordEvent(trace.EventRecord{PatientID: id, Label: ev.Label, Clock: ev.Timestamp})
		})
	}
	logrus.Infof("Starting simulation of %s (run %s), seed=%d, duration=%g", d.Name, d.RunID, sc.Seed, duration)
	startTime := time.Now()
	d.RunFor(duration)
	logrus.Infof("Simulation complete in %v, virtual time %g", time.Since(startTime), d.Time())

	snap := d.Snapshot()
	report := &Report{
		Department: d.Name,
		RunID:      snap.RunID,
		Seed:       sc.Seed,
		Time:       snap.Time,
		Patients:   len(snap.Patients),
		Discharged: snap.Discharged,
		KPIs:       d.Summary(),
	}
	if st.Enabled() {
		report.Trace = trace.Summarize(st)
	}
	return report, nil
}

func writeReport(w io.Writer, report *Report, st *trace.SimulationTrace) error {
	doc := struct {
		*Report
		Events []trace.EventRecord `json:"events,omitempty"`
	}{Report: report}
	if st.Enabled() {
		doc.Events = st.Events
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// consoleCmd starts the interactive command interpreter
var consoleCmd = &cobra.Command{
	Use:   "console [file]",
	Short: "Interpret department commands from stdin or a command file",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		setupLogging()
		c := NewConsole(os.Stdout, seed)
		if len(args) == 1 {
			if err := c.RunFile(args[0]); err != nil {
				logrus.Fatalf("%v", err)
			}
			return
		}
		fmt.Println(`This is the SimErgy application - type "help" for a list of available commands or "stop" to quit:`)
		if err := c.Run(os.Stdin, true); err != nil {
			logrus.Fatalf("reading commands: %v", err)
		}
	},
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().Int64Var(&seed, "seed", 42, "Seed for random arrivals, durations and examinations")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "warn", "Log level (trace, debug, info, warn, error, fatal, panic)")

	runCmd.Flags().StringVar(&scenarioPath, "scenario", "", "Path to a YAML scenario file")
	runCmd.Flags().StringVar(&presetName, "preset", "", "Name of a preset scenario in the defaults file")
	runCmd.Flags().StringVar(&defaultsPath, "defaults", "defaults.yaml", "Path to the defaults file holding preset scenarios")
	runCmd.Flags().Float64Var(&duration, "duration", 1440, "Virtual time to simulate")
	runCmd.Flags().StringVar(&traceLevel, "trace", "none", "Trace level (none, events)")
	runCmd.Flags().StringVar(&outputPath, "output", "", "Write the JSON report to this file instead of stdout")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(consoleCmd)
}
