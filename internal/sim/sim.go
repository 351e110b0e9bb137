// Package sim drives an external Verilog simulator and falls back to
// a built-in synthetic trace generator when the simulator is missing,
// fails, or times out.
//
// The fallback policy is an explicit state machine rather than nested
// error handling, so it can be tested without a real simulator binary:
//
//	NotStarted -> Compiling -> Running -> Succeeded
//	                 |            |
//	                 +------------+--> FellBackToSynthetic
//
// Simulation failure is never terminal: every path ends with a
// well-formed trace file.
package sim

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/awavelab/wavecore/internal/extractor"
	"github.com/awavelab/wavecore/internal/testbench"
)

// Phase is a state in the simulation fallback machine.
type Phase string

const (
	NotStarted          Phase = "not_started"
	Compiling           Phase = "compiling"
	Running             Phase = "running"
	Succeeded           Phase = "succeeded"
	FellBackToSynthetic Phase = "fell_back_to_synthetic"
)

// Options configures the runner. Zero values fall back to defaults.
type Options struct {
	// CompileCommand and RunCommand name the simulator binaries.
	CompileCommand string
	RunCommand     string

	// CompileArgs are extra flags passed to the compile step.
	CompileArgs []string

	CompileTimeout time.Duration
	RunTimeout     time.Duration

	// OutputDir receives the compiled artifact and the trace file.
	OutputDir string

	// TraceFile is the trace name the testbench dumps, relative to
	// OutputDir.
	TraceFile string

	// Seed drives the synthetic generator when the fallback fires.
	Seed int64

	// Progress, when set, receives one-line status updates.
	Progress func(string)
}

func (o *Options) applyDefaults() {
	if o.CompileCommand == "" {
		o.CompileCommand = "iverilog"
	}
	if o.RunCommand == "" {
		o.RunCommand = "vvp"
	}
	if len(o.CompileArgs) == 0 {
		o.CompileArgs = []string{"-g2012"}
	}
	if o.CompileTimeout == 0 {
		o.CompileTimeout = 30 * time.Second
	}
	if o.RunTimeout == 0 {
		o.RunTimeout = 60 * time.Second
	}
	if o.OutputDir == "" {
		o.OutputDir = "."
	}
	if o.TraceFile == "" {
		o.TraceFile = testbench.TraceFile
	}
}

func (o *Options) progress(msg string) {
	if o.Progress != nil {
		o.Progress(msg)
	}
}

// Result reports how a simulation ended. Phase is always Succeeded or
// FellBackToSynthetic; TracePath points at a readable trace either way.
type Result struct {
	Phase     Phase  `json:"phase"`
	TracePath string `json:"trace_path"`
	Stdout    string `json:"stdout,omitempty"`

	// FallbackReason explains why the synthetic generator ran.
	FallbackReason string `json:"fallback_reason,omitempty"`
}

// Probe reports whether the configured compiler responds. A short
// timeout keeps a hung binary from stalling the whole flow.
func Probe(ctx context.Context, opts Options) bool {
	opts.applyDefaults()
	probeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return exec.CommandContext(probeCtx, opts.CompileCommand, "-V").Run() == nil
}

// Run compiles and executes the design plus testbench, falling back
// to the synthetic generator on any failure. The returned error is
// non-nil only when even the fallback could not write a trace.
func Run(ctx context.Context, designFile, testbenchFile string, info extractor.ModuleInfo, opts Options) (*Result, error) {
	opts.applyDefaults()
	result := &Result{Phase: NotStarted, TracePath: filepath.Join(opts.OutputDir, opts.TraceFile)}

	if !Probe(ctx, opts) {
		opts.progress("simulator not found, using built-in trace generator")
		return fallback(result, info, opts, "simulator not available")
	}

	result.Phase = Compiling
	opts.progress("compiling design and testbench")
	artifact := filepath.Join(opts.OutputDir, "simulation.vvp")
	if err := compile(ctx, artifact, designFile, testbenchFile, opts); err != nil {
		opts.progress("compilation failed, using built-in trace generator")
		return fallback(result, info, opts, err.Error())
	}

	result.Phase = Running
	opts.progress("running simulation")
	stdout, err := run(ctx, artifact, opts)
	if err != nil {
		opts.progress("simulation failed, using built-in trace generator")
		return fallback(result, info, opts, err.Error())
	}
	result.Stdout = stdout

	// A run that reports success but leaves no trace behind is still
	// a failure.
	if _, err := os.Stat(result.TracePath); err != nil {
		opts.progress("no trace produced, using built-in trace generator")
		return fallback(result, info, opts, "simulator produced no trace file")
	}

	result.Phase = Succeeded
	opts.progress("simulation completed")
	return result, nil
}

func compile(ctx context.Context, artifact, designFile, testbenchFile string, opts Options) error {
	compileCtx, cancel := context.WithTimeout(ctx, opts.CompileTimeout)
	defer cancel()

	args := append([]string{"-o", artifact}, opts.CompileArgs...)
	args = append(args, designFile, testbenchFile)
	cmd := exec.CommandContext(compileCtx, opts.CompileCommand, args...)
	out, err := cmd.CombinedOutput()
	if compileCtx.Err() == context.DeadlineExceeded {
		return errors.New("compile timed out")
	}
	if err != nil {
		return errors.Wrapf(err, "compiling design: %s", strings.TrimSpace(string(out)))
	}
	return nil
}

func run(ctx context.Context, artifact string, opts Options) (string, error) {
	runCtx, cancel := context.WithTimeout(ctx, opts.RunTimeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, opts.RunCommand, artifact)
	cmd.Dir = opts.OutputDir
	out, err := cmd.CombinedOutput()
	if runCtx.Err() == context.DeadlineExceeded {
		return "", errors.New("simulation timed out")
	}
	if err != nil {
		return "", errors.Wrapf(err, "running simulation: %s", strings.TrimSpace(string(out)))
	}
	return string(out), nil
}

func fallback(result *Result, info extractor.ModuleInfo, opts Options, reason string) (*Result, error) {
	trace := Generate(info, opts.Seed)
	if err := os.WriteFile(result.TracePath, []byte(trace), 0644); err != nil {
		return nil, errors.Wrap(err, "writing synthetic trace")
	}
	result.Phase = FellBackToSynthetic
	result.FallbackReason = reason
	return result, nil
}
