package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Config is the top-level configuration for wavecore
type Config struct {
	// Simulator configures the external simulator invocation
	Simulator SimulatorConfig `json:"simulator,omitempty"`

	// Testbench configures generated testbench stimulus
	Testbench TestbenchConfig `json:"testbench,omitempty"`

	// Output configures where artifacts land
	Output OutputConfig `json:"output,omitempty"`

	// Policy contains design-rule configuration
	Policy PolicyConfig `json:"policy,omitempty"`
}

// SimulatorConfig configures the compile and run commands
type SimulatorConfig struct {
	// CompileCommand is the compiler binary, default "iverilog"
	CompileCommand string `json:"compileCommand,omitempty"`

	// RunCommand is the runtime binary, default "vvp"
	RunCommand string `json:"runCommand,omitempty"`

	// CompileArgs are extra compiler flags, default ["-g2012"]
	CompileArgs []string `json:"compileArgs,omitempty"`

	// CompileTimeoutSeconds bounds the compile step (default 30)
	CompileTimeoutSeconds int `json:"compileTimeoutSeconds,omitempty"`

	// RunTimeoutSeconds bounds the simulation run (default 60)
	RunTimeoutSeconds int `json:"runTimeoutSeconds,omitempty"`

	// SyntheticSeed seeds the fallback trace generator
	SyntheticSeed int64 `json:"syntheticSeed,omitempty"`
}

// TestbenchConfig configures stimulus generation
type TestbenchConfig struct {
	// VectorCount is the number of random stimulus vectors (default 10)
	VectorCount int `json:"vectorCount,omitempty"`
}

// OutputConfig configures artifact locations
type OutputConfig struct {
	// Dir receives generated testbenches, compiled artifacts and traces
	Dir string `json:"dir,omitempty"`

	// TraceFile is the trace name the simulation is expected to dump,
	// relative to Dir. Generated testbenches always dump wave.vcd, so
	// changing this only makes sense with a hand-written testbench.
	TraceFile string `json:"traceFile,omitempty"`
}

// PolicyConfig contains design-rule configuration
type PolicyConfig struct {
	// Rules maps rule names to severity: "off", "warning", "error"
	Rules map[string]string `json:"rules,omitempty"`
}

// DefaultConfig returns a sensible default configuration
func DefaultConfig() *Config {
	return &Config{
		Simulator: SimulatorConfig{
			CompileCommand:        "iverilog",
			RunCommand:            "vvp",
			CompileArgs:           []string{"-g2012"},
			CompileTimeoutSeconds: 30,
			RunTimeoutSeconds:     60,
		},
		Testbench: TestbenchConfig{
			VectorCount: 10,
		},
		Output: OutputConfig{
			Dir:       ".",
			TraceFile: "wave.vcd",
		},
		Policy: PolicyConfig{
			Rules: map[string]string{},
		},
	}
}

// Load finds and loads the configuration file
// Search order:
//  1. ./wavecore.json (current working directory)
//  2. ./.wavecore.json (current working directory)
//  3. <rootPath>/wavecore.json (if different from cwd)
//  4. ~/.config/wavecore/config.json
//
// Returns DefaultConfig if no config file is found
func Load(rootPath string) (*Config, error) {
	cwd, _ := os.Getwd()

	searchPaths := []string{
		filepath.Join(cwd, "wavecore.json"),
		filepath.Join(cwd, ".wavecore.json"),
	}

	// If rootPath is a directory and different from cwd, also check there
	if info, err := os.Stat(rootPath); err == nil && info.IsDir() {
		absRoot, _ := filepath.Abs(rootPath)
		if absRoot != cwd {
			searchPaths = append(searchPaths,
				filepath.Join(rootPath, "wavecore.json"),
				filepath.Join(rootPath, ".wavecore.json"),
			)
		}
	}

	if home, err := os.UserHomeDir(); err == nil {
		searchPaths = append(searchPaths, filepath.Join(home, ".config", "wavecore", "config.json"))
	}

	for _, path := range searchPaths {
		if _, err := os.Stat(path); err == nil {
			return LoadFile(path)
		}
	}

	// No config found, return defaults
	return DefaultConfig(), nil
}

// LoadFile loads configuration from a specific file
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.applyDefaults()

	return &cfg, nil
}

// applyDefaults fills in missing configuration with defaults
func (c *Config) applyDefaults() {
	if c.Simulator.CompileCommand == "" {
		c.Simulator.CompileCommand = "iverilog"
	}
	if c.Simulator.RunCommand == "" {
		c.Simulator.RunCommand = "vvp"
	}
	if len(c.Simulator.CompileArgs) == 0 {
		c.Simulator.CompileArgs = []string{"-g2012"}
	}
	if c.Simulator.CompileTimeoutSeconds == 0 {
		c.Simulator.CompileTimeoutSeconds = 30
	}
	if c.Simulator.RunTimeoutSeconds == 0 {
		c.Simulator.RunTimeoutSeconds = 60
	}
	if c.Testbench.VectorCount == 0 {
		c.Testbench.VectorCount = 10
	}
	if c.Output.Dir == "" {
		c.Output.Dir = "."
	}
	if c.Output.TraceFile == "" {
		c.Output.TraceFile = "wave.vcd"
	}
	if c.Policy.Rules == nil {
		c.Policy.Rules = make(map[string]string)
	}
}

// Save writes the configuration to a file
func (c *Config) Save(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// CompileTimeout returns the compile timeout as a duration
func (c *Config) CompileTimeout() time.Duration {
	return time.Duration(c.Simulator.CompileTimeoutSeconds) * time.Second
}

// RunTimeout returns the simulation timeout as a duration
func (c *Config) RunTimeout() time.Duration {
	return time.Duration(c.Simulator.RunTimeoutSeconds) * time.Second
}

// GetRuleSeverity returns the severity for a rule, or the default if not configured
func (c *Config) GetRuleSeverity(rule string, defaultSeverity string) string {
	if severity, ok := c.Policy.Rules[rule]; ok {
		return severity
	}
	return defaultSeverity
}

// IsRuleEnabled returns true if the rule is not set to "off"
func (c *Config) IsRuleEnabled(rule string) bool {
	if severity, ok := c.Policy.Rules[rule]; ok {
		return severity != "off"
	}
	return true // enabled by default
}
