package extractor

import (
	"fmt"
	"regexp"

	"github.com/awavelab/wavecore/internal/syntax"
)

var (
	// Pattern: <module> [#(...)] <instance> ( ... );
	// Parameter and port blocks hold .name(signal) pairs, so both
	// allow one level of nested parentheses.
	instantiationPattern = regexp.MustCompile(
		`(?s)(\w+)\s*(?:#\s*\((?:[^()]+|\([^()]*\))*\))?\s+(\w+)\s*\(((?:[^()]+|\([^()]*\))*)\)\s*;`)

	// Pattern: .<port>(<signal>)
	connectionPattern = regexp.MustCompile(`\.\s*(\w+)\s*\(\s*(\w+)\s*\)`)

	instantiationSkip = map[string]bool{
		"module": true, "initial": true, "always": true, "assign": true,
		"reg": true, "wire": true, "integer": true, "parameter": true,
		"begin": true, "end": true, "for": true, "if": true,
		"forever": true, "while": true,
	}
)

// FromTestbench recovers the instantiated module's metadata from
// generated testbench text, so a saved testbench can be reloaded
// without the original design file. Direction is inferred from the
// testbench-side declaration: reg-driven connections are DUT inputs,
// wire connections are DUT outputs. Unresolvable connections default
// to scalar inputs.
func FromTestbench(source string) ModuleInfo {
	info := ModuleInfo{}
	code := syntax.StripComments(source)

	for _, m := range instantiationPattern.FindAllStringSubmatch(code, -1) {
		moduleName, body := m[1], m[3]
		if instantiationSkip[moduleName] {
			continue
		}

		info.Name = moduleName
		for _, conn := range connectionPattern.FindAllStringSubmatch(body, -1) {
			portName, signalName := conn[1], conn[2]
			switch {
			case declaredAs("reg", code, signalName):
				msb, lsb, width := declaredBounds("reg", code, signalName)
				info.Inputs = append(info.Inputs, Port{Name: portName, Width: width, Msb: msb, Lsb: lsb})
			case declaredAs("wire", code, signalName):
				msb, lsb, width := declaredBounds("wire", code, signalName)
				info.Outputs = append(info.Outputs, Port{Name: portName, Width: width, Msb: msb, Lsb: lsb})
			default:
				info.Inputs = append(info.Inputs, Port{Name: portName, Width: 1})
			}
		}
		// First plausible instantiation is the DUT.
		if info.Name != "" {
			break
		}
	}

	return info
}

func declaredAs(kind, code, signal string) bool {
	re := regexp.MustCompile(fmt.Sprintf(`\b%s\s+(?:\[[^\]]+\]\s*)?%s\b`, kind, regexp.QuoteMeta(signal)))
	return re.MatchString(code)
}

func declaredBounds(kind, code, signal string) (msb, lsb, width int) {
	re := regexp.MustCompile(fmt.Sprintf(`\b%s\s*\[(\d+):(\d+)\]\s*%s\b`, kind, regexp.QuoteMeta(signal)))
	if m := re.FindStringSubmatch(code); m != nil {
		return rangeBounds(m[1], m[2])
	}
	return 0, 0, 1
}
