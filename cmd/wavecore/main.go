// =============================================================================
// wavecore - Verilog analysis workbench
// =============================================================================
//
// One binary, one pipeline:
//   1. Syntax checker verifies structural health (paired keywords, balance)
//   2. Extractor pulls module facts (ports, parameters, internal signals)
//   3. CUE validator enforces the facts contract (crash on schema mismatch)
//   4. OPA evaluates design rules against the extracted facts
//   5. Testbench generator synthesizes a self-checking bench
//   6. Simulator runs it (or the synthetic trace generator stands in)
//   7. VCD parser and trace audit close the loop
//
// Subcommands expose individual stages (check, info, testbench, trace,
// infer) as well as the whole pipeline (run).
// =============================================================================

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/awavelab/wavecore/internal/config"
	"github.com/awavelab/wavecore/internal/extractor"
	"github.com/awavelab/wavecore/internal/logic"
	"github.com/awavelab/wavecore/internal/syntax"
	"github.com/awavelab/wavecore/internal/testbench"
	"github.com/awavelab/wavecore/internal/vcd"
	"github.com/awavelab/wavecore/internal/workbench"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	args, opts := splitOptions(os.Args[2:])

	switch cmd {
	case "init":
		runInit()
	case "check":
		requireArgs(args, 1)
		runCheck(args[0], opts)
	case "info":
		requireArgs(args, 1)
		runInfo(args[0])
	case "testbench":
		requireArgs(args, 1)
		runTestbench(args[0], opts)
	case "run":
		requireArgs(args, 1)
		runPipeline(args[0], opts)
	case "trace":
		requireArgs(args, 1)
		runTrace(args[0], opts)
	case "infer":
		requireArgs(args, 3)
		runInfer(args[0], args[1], args[2:])
	case "-h", "--help", "help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		printUsage()
		os.Exit(1)
	}
}

type options struct {
	verbose    bool
	jsonOutput bool
	configPath string
}

// splitOptions separates flag-style arguments from positional ones.
func splitOptions(argv []string) ([]string, options) {
	var args []string
	var opts options
	for i := 0; i < len(argv); i++ {
		switch argv[i] {
		case "-v", "--verbose":
			opts.verbose = true
		case "--json":
			opts.jsonOutput = true
		case "-c", "--config":
			if i+1 < len(argv) {
				i++
				opts.configPath = argv[i]
			}
		default:
			args = append(args, argv[i])
		}
	}
	return args, opts
}

func requireArgs(args []string, n int) {
	if len(args) < n {
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `Usage: wavecore <command> [options] <args>

Commands:
  check <file.v>                    Check structural syntax and design rules
  info <file.v>                     Show extracted module facts as JSON
  testbench <file.v>                Generate a testbench on stdout
  run <file.v>                      Full pipeline: check, simulate, audit
  trace <file.vcd>                  Parse a trace and audit its health
  infer <file.vcd> <out> <in>...    Infer the logic function driving a signal
  init                              Create a wavecore.json configuration file

Options:
  -v, --verbose     Enable verbose output
  -c, --config      Use a specific config file
  --json            Emit JSON instead of text

Configuration:
  wavecore looks for configuration in:
    1. ./wavecore.json
    2. ./.wavecore.json
    3. ~/.config/wavecore/config.json

  Run 'wavecore init' to create a default configuration file.`)
}

func loadConfig(path string, opts options) *config.Config {
	if opts.configPath != "" {
		cfg, err := config.LoadFile(opts.configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config %s: %v\n", opts.configPath, err)
			os.Exit(1)
		}
		return cfg
	}
	cfg, err := config.Load(path)
	if err != nil {
		fmt.Printf("Warning: Could not load config: %v (using defaults)\n", err)
		cfg = config.DefaultConfig()
	}
	return cfg
}

func newWorkbench(path string, opts options) *workbench.Workbench {
	w, err := workbench.New(loadConfig(path, opts))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	w.Verbose = opts.verbose
	return w
}

func runInit() {
	configPath := "wavecore.json"

	if _, err := os.Stat(configPath); err == nil {
		fmt.Printf("Config file %s already exists. Overwrite? [y/N]: ", configPath)
		var response string
		fmt.Scanln(&response)
		if response != "y" && response != "Y" {
			fmt.Println("Aborted.")
			return
		}
	}

	cfg := config.DefaultConfig()
	if err := cfg.Save(configPath); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating config: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Created %s\n", configPath)
	fmt.Println("\nEdit this file to configure:")
	fmt.Println("  - Simulator commands and timeouts")
	fmt.Println("  - Testbench stimulus vector count")
	fmt.Println("  - Design rule severities")
}

func runCheck(path string, opts options) {
	w := newWorkbench(path, opts)
	report, err := w.Analyze(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if opts.jsonOutput {
		printJSON(report)
	} else {
		printCheckReport(report)
	}

	if !report.Valid || report.PolicySummary.Errors > 0 {
		os.Exit(1)
	}
}

func printCheckReport(report *workbench.Report) {
	fmt.Printf("%s: %s", report.File, report.Version)
	if report.Module.Name != "" {
		fmt.Printf(", module %s", report.Module.Name)
	}
	fmt.Println()

	for _, d := range report.Diagnostics {
		fmt.Printf("  %s: %s\n", d.Severity, d.Message)
	}
	for _, v := range report.Violations {
		fmt.Printf("  %s: [%s] %s\n", v.Severity, v.Rule, v.Message)
	}
	if len(report.Diagnostics) == 0 && len(report.Violations) == 0 {
		fmt.Println("  clean")
	}
}

func runInfo(path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	source := string(data)
	info := extractor.Extract(source)
	if len(info.Ports()) == 0 {
		// A testbench module has no ports of its own; recover the
		// instantiated design's interface instead.
		if recovered := extractor.FromTestbench(source); recovered.Name != "" {
			info = recovered
		}
	}
	if info.Name == "" {
		fmt.Fprintln(os.Stderr, "Error: no module declaration found")
		os.Exit(1)
	}
	printJSON(info)
}

func runTestbench(path string, opts options) {
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	source := string(data)

	if valid, diags := syntax.Check(source); !valid {
		for _, d := range diags {
			if d.Severity == syntax.Error {
				fmt.Fprintf(os.Stderr, "Error: %s\n", d.Message)
			}
		}
		os.Exit(1)
	}

	info := extractor.Extract(source)
	if info.Name == "" {
		fmt.Fprintln(os.Stderr, "Error: no module declaration found")
		os.Exit(1)
	}

	cfg := loadConfig(path, opts)
	fmt.Print(testbench.Synthesize(info, cfg.Testbench.VectorCount))
}

func runPipeline(path string, opts options) {
	w := newWorkbench(path, opts)
	report, err := w.Run(context.Background(), path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if opts.jsonOutput {
		printJSON(report)
	} else {
		printCheckReport(report)
		if report.Simulation != nil {
			fmt.Printf("  simulation: %s", report.Simulation.Phase)
			if report.Simulation.FallbackReason != "" {
				fmt.Printf(" (%s)", report.Simulation.FallbackReason)
			}
			fmt.Println()
			fmt.Printf("  trace: %s\n", report.Simulation.TracePath)
		}
		if report.Audit != nil {
			fmt.Printf("  clocks: %s, resets: %s, active: %d, idle: %d\n",
				nameList(report.Audit.ClockSignals), nameList(report.Audit.ResetSignals),
				report.Audit.ActiveSignals, report.Audit.IdleSignals)
		}
	}

	if !report.Valid {
		os.Exit(1)
	}
}

func runTrace(path string, opts options) {
	trace, err := vcd.ParseFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	audit := logic.Audit(trace.Signals)
	if opts.jsonOutput {
		printJSON(struct {
			Timescale float64           `json:"timescale"`
			Signals   vcd.SignalTable   `json:"signals"`
			Audit     logic.AuditReport `json:"audit"`
			Anomalies []string          `json:"anomalies,omitempty"`
		}{trace.Timescale, trace.Signals, audit, trace.Anomalies})
		return
	}

	fmt.Printf("%s: %d signals, %d changes\n", path, len(trace.Signals), len(trace.Changes))
	for _, rec := range trace.Signals {
		fmt.Printf("  %-30s width=%-3d changes=%d\n", rec.FullName, rec.Width, len(rec.Changes))
	}
	fmt.Printf("clocks: %s, resets: %s, active: %d, idle: %d\n",
		nameList(audit.ClockSignals), nameList(audit.ResetSignals),
		audit.ActiveSignals, audit.IdleSignals)
	for _, a := range trace.Anomalies {
		fmt.Printf("anomaly: %s\n", a)
	}
}

func runInfer(tracePath, outputName string, inputNames []string) {
	trace, err := vcd.ParseFile(tracePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	output := trace.ByName(outputName)
	if output == nil {
		fmt.Fprintf(os.Stderr, "Error: signal %q not found in trace\n", outputName)
		os.Exit(1)
	}
	var inputs []*vcd.SignalRecord
	for _, name := range inputNames {
		rec := trace.ByName(name)
		if rec == nil {
			fmt.Fprintf(os.Stderr, "Error: signal %q not found in trace\n", name)
			os.Exit(1)
		}
		inputs = append(inputs, rec)
	}

	result, err := logic.Infer(inputs, output)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("inferred: %s\n", result.Label)
	fmt.Printf("samples: %d used, %d discarded\n", result.Samples, result.Discarded)
	fmt.Printf("\n %s | %s\n", strings.Join(inputNames, " "), outputName)
	for _, combo := range logic.Combos(len(inputs)) {
		out, ok := result.Table[combo]
		if !ok {
			out = "-"
		}
		fmt.Printf(" %s | %s\n", strings.Join(strings.Split(combo, ""), " "), out)
	}

	if result.Verification != nil {
		fmt.Println()
		for _, check := range result.Verification {
			fmt.Printf(" %s: expected %s, observed %s: %s\n",
				check.Inputs, check.Expected, check.Observed, check.Status)
		}
		pass := logic.CountStatus(result.Verification, logic.Pass)
		mismatch := logic.CountStatus(result.Verification, logic.Mismatch)
		fmt.Printf("verification: %d pass, %d mismatch\n", pass, mismatch)
	}
}

func nameList(names []string) string {
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, ",")
}

func printJSON(v interface{}) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(data))
}
