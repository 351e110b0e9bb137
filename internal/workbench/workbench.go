// Package workbench orchestrates the full analysis pipeline: syntax
// checking, module extraction, contract validation, design-rule
// evaluation, testbench synthesis, simulation and trace audit. Each
// stage feeds the next; syntax errors stop the pipeline before any
// testbench is generated.
package workbench

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/awavelab/wavecore/internal/config"
	"github.com/awavelab/wavecore/internal/extractor"
	"github.com/awavelab/wavecore/internal/logic"
	"github.com/awavelab/wavecore/internal/policy"
	"github.com/awavelab/wavecore/internal/sim"
	"github.com/awavelab/wavecore/internal/syntax"
	"github.com/awavelab/wavecore/internal/testbench"
	"github.com/awavelab/wavecore/internal/vcd"
	"github.com/awavelab/wavecore/internal/validator"
)

// Report is the result of analyzing one design file. It always
// carries the syntax verdict and extracted module facts; simulation
// and audit sections are present only when the pipeline got that far.
type Report struct {
	File          string               `json:"file"`
	Version       syntax.Version       `json:"version"`
	Valid         bool                 `json:"valid"`
	Module        extractor.ModuleInfo `json:"module"`
	Diagnostics   []syntax.Diagnostic  `json:"diagnostics,omitempty"`
	Violations    []policy.Violation   `json:"violations,omitempty"`
	PolicySummary policy.Summary       `json:"policy_summary"`
	TestbenchFile string               `json:"testbench_file,omitempty"`
	Simulation    *sim.Result          `json:"simulation,omitempty"`
	Audit         *logic.AuditReport   `json:"audit,omitempty"`
}

// Workbench wires the analysis stages together. Construct it once and
// reuse it; the policy engine and schema validators are immutable.
type Workbench struct {
	// Verbose output
	Verbose bool

	// Progress output (lightweight, streaming)
	Progress bool

	// Timing output (JSONL)
	Timing     bool
	TimingPath string

	cfg     *config.Config
	engine  *policy.Engine
	facts   *validator.FactsValidator
	reports *validator.ReportValidator
}

// New builds a workbench around the given configuration. A nil config
// uses defaults.
func New(cfg *config.Config) (*Workbench, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	engine, err := policy.New()
	if err != nil {
		return nil, fmt.Errorf("creating policy engine: %w", err)
	}
	facts, err := validator.NewFactsValidator()
	if err != nil {
		return nil, fmt.Errorf("creating facts validator: %w", err)
	}
	reports, err := validator.NewReportValidator()
	if err != nil {
		return nil, fmt.Errorf("creating report validator: %w", err)
	}

	return &Workbench{
		cfg:     cfg,
		engine:  engine,
		facts:   facts,
		reports: reports,
	}, nil
}

// Config returns the workbench configuration.
func (w *Workbench) Config() *config.Config { return w.cfg }

// Analyze runs the static stages only: syntax check, extraction,
// facts validation and design rules. No testbench is generated and no
// simulator runs.
func (w *Workbench) Analyze(path string) (*Report, error) {
	return w.analyze(path, nil)
}

func (w *Workbench) analyze(path string, timing *timingRecorder) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading design file: %w", err)
	}
	source := string(data)

	stageStart := time.Now()
	valid, diags := syntax.Check(source)
	version := syntax.DetectVersion(source)
	timing.RecordStage("syntax", stageStart, "ok")
	w.progressf("syntax: %d diagnostics, %s", len(diags), version)

	stageStart = time.Now()
	info := extractor.Extract(source)
	timing.RecordStage("extract", stageStart, "ok")
	w.progressf("extract: module %q, %d ports", info.Name, len(info.Ports()))

	report := &Report{
		File:        path,
		Version:     version,
		Valid:       valid,
		Module:      info,
		Diagnostics: diags,
	}

	if info.Name == "" {
		return report, nil
	}

	stageStart = time.Now()
	if err := w.facts.Validate(info); err != nil {
		timing.RecordStage("validate-facts", stageStart, "failed")
		return nil, fmt.Errorf("extracted facts rejected: %w", err)
	}
	timing.RecordStage("validate-facts", stageStart, "ok")

	stageStart = time.Now()
	result, err := w.engine.Evaluate(toPolicyInput(info, version))
	if err != nil {
		timing.RecordStage("policy", stageStart, "failed")
		return nil, fmt.Errorf("evaluating design rules: %w", err)
	}
	w.applyRuleConfig(result)
	timing.RecordStage("policy", stageStart, "ok")
	w.progressf("policy: %d violations", result.Summary.TotalViolations)

	report.Violations = result.Violations
	report.PolicySummary = result.Summary
	return report, nil
}

// Run executes the full pipeline: static analysis, testbench
// synthesis, simulation (with synthetic fallback) and trace audit.
// Syntax errors stop the pipeline after the static stages; the
// partial report is still returned.
func (w *Workbench) Run(ctx context.Context, path string) (*Report, error) {
	runStart := time.Now()
	timing := newTimingRecorder(runStart, w.resolveTimingPath(w.cfg.Output.Dir))
	defer timing.Close()

	report, err := w.analyze(path, timing)
	if err != nil {
		return nil, err
	}
	if !report.Valid {
		w.progressf("syntax errors present, skipping testbench and simulation")
		return report, nil
	}

	stageStart := time.Now()
	tbSource := testbench.Synthesize(report.Module, w.cfg.Testbench.VectorCount)
	tbFile := filepath.Join(w.cfg.Output.Dir, report.Module.Name+"_tb.v")
	if err := os.WriteFile(tbFile, []byte(tbSource), 0644); err != nil {
		timing.RecordStage("testbench", stageStart, "failed")
		return nil, fmt.Errorf("writing testbench: %w", err)
	}
	timing.RecordStage("testbench", stageStart, "ok")
	report.TestbenchFile = tbFile
	w.progressf("testbench: %s", tbFile)

	stageStart = time.Now()
	simResult, err := sim.Run(ctx, path, tbFile, report.Module, sim.Options{
		CompileCommand: w.cfg.Simulator.CompileCommand,
		RunCommand:     w.cfg.Simulator.RunCommand,
		CompileArgs:    w.cfg.Simulator.CompileArgs,
		CompileTimeout: w.cfg.CompileTimeout(),
		RunTimeout:     w.cfg.RunTimeout(),
		OutputDir:      w.cfg.Output.Dir,
		TraceFile:      w.cfg.Output.TraceFile,
		Seed:           w.cfg.Simulator.SyntheticSeed,
		Progress:       func(msg string) { w.progressf("sim: %s", msg) },
	})
	if err != nil {
		timing.RecordStage("simulate", stageStart, "failed")
		return nil, fmt.Errorf("running simulation: %w", err)
	}
	timing.RecordStage("simulate", stageStart, string(simResult.Phase))
	report.Simulation = simResult

	stageStart = time.Now()
	trace, err := vcd.ParseFile(simResult.TracePath)
	if err != nil {
		timing.RecordStage("trace", stageStart, "failed")
		return nil, fmt.Errorf("parsing trace: %w", err)
	}
	timing.RecordStage("trace", stageStart, "ok")
	w.progressf("trace: %d signals, %d anomalies", len(trace.Signals), len(trace.Anomalies))

	audit := logic.Audit(trace.Signals)
	report.Audit = &audit

	if err := w.reports.Validate(report); err != nil {
		return nil, fmt.Errorf("report rejected: %w", err)
	}
	return report, nil
}

// applyRuleConfig drops disabled rules and applies per-rule severity
// overrides, then recomputes the summary from what is left.
func (w *Workbench) applyRuleConfig(result *policy.Result) {
	var kept []policy.Violation
	var summary policy.Summary
	for _, v := range result.Violations {
		if !w.cfg.IsRuleEnabled(v.Rule) {
			continue
		}
		v.Severity = w.cfg.GetRuleSeverity(v.Rule, v.Severity)
		kept = append(kept, v)
		switch v.Severity {
		case "error":
			summary.Errors++
		case "warning":
			summary.Warnings++
		case "info":
			summary.Info++
		}
	}
	summary.TotalViolations = len(kept)
	result.Violations = kept
	result.Summary = summary
}

func toPolicyInput(info extractor.ModuleInfo, version syntax.Version) policy.Input {
	return policy.Input{
		Version: string(version),
		Module: policy.Module{
			Name:       info.Name,
			Parameters: toPolicyParameters(info.Parameters),
			Inputs:     toPolicyPorts(info.Inputs),
			Outputs:    toPolicyPorts(info.Outputs),
			Inouts:     toPolicyPorts(info.Inouts),
			Wires:      toPolicySignals(info.Wires),
			Regs:       toPolicySignals(info.Regs),
		},
	}
}

func toPolicyParameters(params []extractor.Parameter) []policy.Parameter {
	var out []policy.Parameter
	for _, p := range params {
		out = append(out, policy.Parameter{Name: p.Name, Value: p.Value})
	}
	return out
}

func toPolicyPorts(ports []extractor.Port) []policy.Port {
	var out []policy.Port
	for _, p := range ports {
		out = append(out, policy.Port{Name: p.Name, Width: p.Width})
	}
	return out
}

func toPolicySignals(signals []extractor.Signal) []policy.Signal {
	var out []policy.Signal
	for _, s := range signals {
		out = append(out, policy.Signal{Name: s.Name, Width: s.Width})
	}
	return out
}

func (w *Workbench) progressf(format string, args ...interface{}) {
	if w.Verbose || w.Progress {
		fmt.Printf(format+"\n", args...)
	}
}
