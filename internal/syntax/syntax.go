// Package syntax performs structural validation of Verilog source text.
//
// The checks here are deliberately shallow: keyword pair counting,
// bracket balancing and a handful of heuristics. They gate testbench
// generation, they do not replace a compiler. Every finding is returned
// as data; Check never fails.
package syntax

import (
	"fmt"
	"regexp"
	"strings"
)

// Severity classifies a diagnostic.
type Severity int

const (
	Error Severity = iota
	Warning
	Info
)

func (s Severity) String() string {
	switch s {
	case Error:
		return "error"
	case Warning:
		return "warning"
	default:
		return "info"
	}
}

// Diagnostic is a single finding from a syntax check.
type Diagnostic struct {
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}

// Version identifies the detected Verilog language generation.
type Version string

const (
	Verilog95     Version = "Verilog-95"
	Verilog2001   Version = "Verilog-2001"
	SystemVerilog Version = "SystemVerilog"
)

var (
	moduleDeclPattern = regexp.MustCompile(`\bmodule\s+\w+`)
	modulePattern     = regexp.MustCompile(`\bmodule\s+`)
	endmodulePattern  = regexp.MustCompile(`\bendmodule\b`)
	beginPattern      = regexp.MustCompile(`\bbegin\b`)
	endPattern        = regexp.MustCompile(`\bend\b`)
	casePattern       = regexp.MustCompile(`\bcase[xz]?\b`)
	endcasePattern    = regexp.MustCompile(`\bendcase\b`)
	functionPattern   = regexp.MustCompile(`\bfunction\b`)
	endfunctionPat    = regexp.MustCompile(`\bendfunction\b`)
	taskPattern       = regexp.MustCompile(`\btask\b`)
	endtaskPattern    = regexp.MustCompile(`\bendtask\b`)

	moduleBodyPattern = regexp.MustCompile(`(?s)module\s+\w+.*?endmodule`)
	portKeywordPat    = regexp.MustCompile(`input|output|inout`)
	logicPattern      = regexp.MustCompile(`always|assign|initial|\w+\s+\w+\s*\(`)
	declStartPattern  = regexp.MustCompile(`^(input|output|inout|wire|reg|parameter|assign|integer|real)\s+`)

	sysVerilogPattern = regexp.MustCompile(`\b(logic|always_ff|always_comb|always_latch|interface|class|package)\b`)
	v2001Pattern      = regexp.MustCompile(`\b(localparam|generate|signed|unsigned)\b`)
	starSensePattern  = regexp.MustCompile(`@\(\s*\*\s*\)`)

	lineCommentPattern  = regexp.MustCompile(`(?m)//.*?$`)
	blockCommentPattern = regexp.MustCompile(`(?s)/\*.*?\*/`)
)

// StripComments removes // line comments and /* */ block comments.
// Every structural check runs on stripped text so commented-out code
// cannot produce false positives.
func StripComments(source string) string {
	out := blockCommentPattern.ReplaceAllString(source, "")
	return lineCommentPattern.ReplaceAllString(out, "")
}

// Check validates the structure of Verilog source and returns whether
// it is valid along with the ordered list of diagnostics. Validity
// means no Error-severity diagnostic; warnings and infos do not block.
func Check(source string) (bool, []Diagnostic) {
	var errs, warns []Diagnostic
	code := StripComments(source)

	if !moduleDeclPattern.MatchString(code) {
		errs = append(errs, Diagnostic{Error, "no module declaration found"})
	}

	moduleCount := len(modulePattern.FindAllString(code, -1))
	endmoduleCount := len(endmodulePattern.FindAllString(code, -1))
	if moduleCount != endmoduleCount {
		errs = append(errs, Diagnostic{Error, fmt.Sprintf(
			"module/endmodule mismatch (found %d module(s) but %d endmodule(s))",
			moduleCount, endmoduleCount)})
	}

	// end also closes endmodule/endcase constructs elsewhere, so this
	// count is lossy; a warning, never an error.
	beginCount := len(beginPattern.FindAllString(code, -1))
	endCount := len(endPattern.FindAllString(code, -1))
	if beginCount != endCount {
		warns = append(warns, Diagnostic{Warning, fmt.Sprintf(
			"begin/end mismatch (found %d begin(s) but %d end(s))",
			beginCount, endCount)})
	}

	caseCount := len(casePattern.FindAllString(code, -1))
	endcaseCount := len(endcasePattern.FindAllString(code, -1))
	if caseCount != endcaseCount {
		errs = append(errs, Diagnostic{Error, fmt.Sprintf(
			"case/endcase mismatch (found %d case(s) but %d endcase(s))",
			caseCount, endcaseCount)})
	}

	if len(functionPattern.FindAllString(code, -1)) != len(endfunctionPat.FindAllString(code, -1)) {
		errs = append(errs, Diagnostic{Error, "function/endfunction mismatch"})
	}
	if len(taskPattern.FindAllString(code, -1)) != len(endtaskPattern.FindAllString(code, -1)) {
		errs = append(errs, Diagnostic{Error, "task/endtask mismatch"})
	}

	errs = append(errs, scanBalance(code, '(', ')', "parenthesis", "parentheses")...)
	errs = append(errs, scanBalance(code, '[', ']', "bracket", "brackets")...)

	if moduleCount > 1 {
		warns = append(warns, Diagnostic{Info, fmt.Sprintf(
			"multiple modules found (%d); only the first will be used for testbench generation",
			moduleCount)})
	}

	if body := moduleBodyPattern.FindString(code); body != "" {
		if !portKeywordPat.MatchString(body) && !logicPattern.MatchString(body) {
			warns = append(warns, Diagnostic{Warning,
				"module appears to be empty (no ports or logic found)"})
		}
	}

	warns = append(warns, missingSemicolons(code)...)

	all := append(errs, warns...)
	return len(errs) == 0, all
}

// scanBalance walks the text character by character tracking a running
// balance for one delimiter pair. A negative balance reports the line
// it happened on; a positive residual reports how many stayed open.
func scanBalance(code string, open, close byte, singular, plural string) []Diagnostic {
	var diags []Diagnostic
	balance := 0
	for lineIdx, line := range strings.Split(code, "\n") {
		for i := 0; i < len(line); i++ {
			switch line[i] {
			case open:
				balance++
			case close:
				balance--
				if balance < 0 {
					diags = append(diags, Diagnostic{Error, fmt.Sprintf(
						"unmatched closing %s at line %d", singular, lineIdx+1)})
					balance = 0
				}
			}
		}
	}
	if balance > 0 {
		diags = append(diags, Diagnostic{Error, fmt.Sprintf(
			"%d unclosed %s", balance, plural)})
	}
	return diags
}

// missingSemicolons flags declaration lines that do not end with a
// statement terminator and are not continued on the next line. A
// rough heuristic; it only ever warns.
func missingSemicolons(code string) []Diagnostic {
	var diags []Diagnostic
	lines := strings.Split(code, "\n")
	terminators := []string{";", ",", ")", "(", "begin", "end"}
	for i, raw := range lines {
		line := strings.TrimSpace(raw)
		if line == "" || !declStartPattern.MatchString(line) {
			continue
		}
		terminated := false
		for _, t := range terminators {
			if strings.HasSuffix(line, t) {
				terminated = true
				break
			}
		}
		if terminated {
			continue
		}
		if i+1 < len(lines) {
			next := strings.TrimSpace(lines[i+1])
			if strings.HasPrefix(next, ")") || strings.HasPrefix(next, ",") {
				continue
			}
		}
		quoted := line
		if len(quoted) > 50 {
			quoted = quoted[:50]
		}
		diags = append(diags, Diagnostic{Warning, fmt.Sprintf(
			"line %d might be missing semicolon: %s", i+1, quoted)})
	}
	return diags
}

// DetectVersion guesses the language generation from keyword use.
// SystemVerilog keywords win over Verilog-2001 markers; plain sources
// fall back to Verilog-95. Detection is independent of validity.
func DetectVersion(source string) Version {
	if sysVerilogPattern.MatchString(source) {
		return SystemVerilog
	}
	if v2001Pattern.MatchString(source) || starSensePattern.MatchString(source) {
		return Verilog2001
	}
	return Verilog95
}
