// Package testbench synthesizes a self-stimulating Verilog testbench
// from extracted module metadata.
//
// Synthesis is a pure function of the ModuleInfo and the vector count:
// the emitted text instantiates the module under test with every
// parameter and port connected by name, drives detected clock and
// reset inputs with fixed waveforms, feeds the remaining inputs with
// random vectors, and dumps the full testbench scope to a VCD file.
package testbench

import (
	"fmt"
	"strings"

	"github.com/awavelab/wavecore/internal/extractor"
)

// TraceFile is the trace path the emitted $dumpfile directive names.
// The simulator runner looks for the same file after a run.
const TraceFile = "wave.vcd"

// IsClock reports whether a port name marks it as a free-running
// clock candidate.
func IsClock(name string) bool {
	lower := strings.ToLower(name)
	return strings.Contains(lower, "clk") || strings.Contains(lower, "clock")
}

// IsReset reports whether a port name marks it as a reset candidate.
func IsReset(name string) bool {
	lower := strings.ToLower(name)
	return strings.Contains(lower, "rst") || strings.Contains(lower, "reset")
}

// Synthesize emits a complete testbench for the module. vectorCount
// is the number of random stimulus iterations; values below 1 are
// clamped to 1. The output always has balanced module/endmodule and
// begin/end pairs and is accepted by syntax.Check.
func Synthesize(info extractor.ModuleInfo, vectorCount int) string {
	if vectorCount < 1 {
		vectorCount = 1
	}
	tbName := info.Name + "_tb"
	var b strings.Builder

	fmt.Fprintf(&b, "// Testbench for %s\n", info.Name)
	b.WriteString("`timescale 1ns/1ps\n\n")
	fmt.Fprintf(&b, "module %s;\n\n", tbName)

	if len(info.Parameters) > 0 {
		b.WriteString("    // Parameters\n")
		for _, p := range info.Parameters {
			fmt.Fprintf(&b, "    parameter %s = %s;\n", p.Name, p.Value)
		}
		b.WriteString("\n")
	}

	b.WriteString("    // Inputs\n")
	for _, p := range info.Inputs {
		writeDecl(&b, "reg", p)
	}

	b.WriteString("\n    // Outputs\n")
	for _, p := range info.Outputs {
		writeDecl(&b, "wire", p)
	}

	if len(info.Inouts) > 0 {
		b.WriteString("\n    // Inouts\n")
		for _, p := range info.Inouts {
			writeDecl(&b, "wire", p)
		}
	}

	writeInstantiation(&b, info)

	clock, hasClock := firstMatching(info.Inputs, IsClock)
	reset, hasReset := firstMatching(info.Inputs, IsReset)

	if hasClock {
		b.WriteString("    // Clock generation: 100MHz\n")
		b.WriteString("    initial begin\n")
		fmt.Fprintf(&b, "        %s = 0;\n", clock.Name)
		fmt.Fprintf(&b, "        forever #5 %s = ~%s;\n", clock.Name, clock.Name)
		b.WriteString("    end\n\n")
	}

	if hasReset {
		b.WriteString("    // Reset pulse\n")
		b.WriteString("    initial begin\n")
		fmt.Fprintf(&b, "        %s = 1;\n", reset.Name)
		fmt.Fprintf(&b, "        #20 %s = 0;\n", reset.Name)
		fmt.Fprintf(&b, "        #10 %s = 1;\n", reset.Name)
		b.WriteString("    end\n\n")
	}

	writeStimulus(&b, info, clock, hasClock, reset, hasReset, vectorCount)
	writeMonitor(&b, info)

	b.WriteString("    // VCD dump for waveform viewing\n")
	b.WriteString("    initial begin\n")
	fmt.Fprintf(&b, "        $dumpfile(%q);\n", TraceFile)
	fmt.Fprintf(&b, "        $dumpvars(0, %s);\n", tbName)
	b.WriteString("    end\n\n")

	b.WriteString("endmodule\n")
	return b.String()
}

func writeDecl(b *strings.Builder, kind string, p extractor.Port) {
	if p.Width > 1 {
		fmt.Fprintf(b, "    %s [%d:%d] %s;\n", kind, p.Msb, p.Lsb, p.Name)
	} else {
		fmt.Fprintf(b, "    %s %s;\n", kind, p.Name)
	}
}

// writeInstantiation connects every parameter and port by name,
// preserving declaration order.
func writeInstantiation(b *strings.Builder, info extractor.ModuleInfo) {
	b.WriteString("\n    // Instantiate the unit under test\n")
	fmt.Fprintf(b, "    %s ", info.Name)

	if len(info.Parameters) > 0 {
		b.WriteString("#(\n")
		lines := make([]string, len(info.Parameters))
		for i, p := range info.Parameters {
			lines[i] = fmt.Sprintf("        .%s(%s)", p.Name, p.Name)
		}
		b.WriteString(strings.Join(lines, ",\n"))
		b.WriteString("\n    ) ")
	}

	b.WriteString("uut (\n")
	ports := info.Ports()
	lines := make([]string, len(ports))
	for i, p := range ports {
		lines[i] = fmt.Sprintf("        .%s(%s)", p.Name, p.Name)
	}
	b.WriteString(strings.Join(lines, ",\n"))
	b.WriteString("\n    );\n\n")
}

func writeStimulus(b *strings.Builder, info extractor.ModuleInfo, clock extractor.Port, hasClock bool, reset extractor.Port, hasReset bool, vectorCount int) {
	driven := func(p extractor.Port) bool {
		return (hasClock && p.Name == clock.Name) || (hasReset && p.Name == reset.Name)
	}

	b.WriteString("    // Test stimulus\n")
	b.WriteString("    integer i;\n")
	b.WriteString("    initial begin\n")
	for _, p := range info.Inputs {
		if !driven(p) {
			fmt.Fprintf(b, "        %s = 0;\n", p.Name)
		}
	}
	b.WriteString("\n        // Wait for reset\n")
	b.WriteString("        #50;\n\n")
	fmt.Fprintf(b, "        for (i = 0; i < %d; i = i + 1) begin\n", vectorCount)
	for _, p := range info.Inputs {
		if driven(p) {
			continue
		}
		if p.Width > 1 {
			fmt.Fprintf(b, "            %s = $random %% (1 << %d);\n", p.Name, p.Width)
		} else {
			fmt.Fprintf(b, "            %s = $random %% 2;\n", p.Name)
		}
	}
	b.WriteString("            #10;\n")
	b.WriteString("        end\n\n")
	b.WriteString("        #100;\n")
	b.WriteString("        $display(\"Simulation completed\");\n")
	b.WriteString("        $finish;\n")
	b.WriteString("    end\n\n")
}

func writeMonitor(b *strings.Builder, info extractor.ModuleInfo) {
	b.WriteString("    // Monitor signals\n")
	b.WriteString("    initial begin\n")
	b.WriteString("        $monitor(\"Time=%0t\", $time")
	for _, p := range info.Inputs {
		fmt.Fprintf(b, ", \" %s=%%b\", %s", p.Name, p.Name)
	}
	for _, p := range info.Outputs {
		fmt.Fprintf(b, ", \" %s=%%b\", %s", p.Name, p.Name)
	}
	b.WriteString(");\n")
	b.WriteString("    end\n\n")
}

func firstMatching(ports []extractor.Port, match func(string) bool) (extractor.Port, bool) {
	for _, p := range ports {
		if match(p.Name) {
			return p, true
		}
	}
	return extractor.Port{}, false
}
