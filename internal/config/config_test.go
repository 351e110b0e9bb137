package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Simulator.CompileCommand != "iverilog" || cfg.Simulator.RunCommand != "vvp" {
		t.Fatalf("simulator defaults: %#v", cfg.Simulator)
	}
	if cfg.Testbench.VectorCount != 10 {
		t.Fatalf("vector count: %d", cfg.Testbench.VectorCount)
	}
	if cfg.Output.TraceFile != "wave.vcd" {
		t.Fatalf("trace file: %q", cfg.Output.TraceFile)
	}
	if cfg.CompileTimeout() != 30*time.Second || cfg.RunTimeout() != 60*time.Second {
		t.Fatalf("timeouts: %v / %v", cfg.CompileTimeout(), cfg.RunTimeout())
	}
}

func TestLoadFileAppliesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wavecore.json")
	content := `{"testbench": {"vectorCount": 25}, "policy": {"rules": {"missing-clock": "off"}}}`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.Testbench.VectorCount != 25 {
		t.Fatalf("vector count: %d", cfg.Testbench.VectorCount)
	}
	// Unset fields fall back to defaults.
	if cfg.Simulator.CompileCommand != "iverilog" {
		t.Fatalf("compile command: %q", cfg.Simulator.CompileCommand)
	}
	if cfg.Simulator.RunTimeoutSeconds != 60 {
		t.Fatalf("run timeout: %d", cfg.Simulator.RunTimeoutSeconds)
	}
	if cfg.IsRuleEnabled("missing-clock") {
		t.Fatal("rule set to off must be disabled")
	}
	if !cfg.IsRuleEnabled("missing-reset") {
		t.Fatal("unconfigured rule must be enabled")
	}
}

func TestLoadFileRejectsMalformedJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wavecore.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFile(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestLoadSearchesRootPath(t *testing.T) {
	dir := t.TempDir()
	content := `{"simulator": {"compileCommand": "verilator"}}`
	if err := os.WriteFile(filepath.Join(dir, "wavecore.json"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Simulator.CompileCommand != "verilator" {
		t.Fatalf("compile command: %q", cfg.Simulator.CompileCommand)
	}
}

func TestLoadFallsBackToDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Simulator.CompileCommand != "iverilog" {
		t.Fatalf("compile command: %q", cfg.Simulator.CompileCommand)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wavecore.json")
	cfg := DefaultConfig()
	cfg.Testbench.VectorCount = 42
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if loaded.Testbench.VectorCount != 42 {
		t.Fatalf("vector count: %d", loaded.Testbench.VectorCount)
	}
}

func TestGetRuleSeverity(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Policy.Rules["wide-port"] = "error"
	if got := cfg.GetRuleSeverity("wide-port", "warning"); got != "error" {
		t.Fatalf("got %q", got)
	}
	if got := cfg.GetRuleSeverity("missing-clock", "warning"); got != "warning" {
		t.Fatalf("got %q", got)
	}
}
