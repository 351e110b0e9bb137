package syntax

import (
	"strings"
	"testing"
)

const validCounter = `
module counter(input clk, input rst, output reg [3:0] count);
    always @(posedge clk) begin
        if (rst)
            count <= 0;
        else
            count <= count + 1;
    end
endmodule
`

func TestCheckValidModule(t *testing.T) {
	valid, diags := Check(validCounter)
	if !valid {
		t.Fatalf("expected valid, got diagnostics %#v", diags)
	}
	for _, d := range diags {
		if d.Severity == Error {
			t.Fatalf("unexpected error diagnostic: %#v", d)
		}
	}
}

func TestCheckModuleEndmoduleMismatch(t *testing.T) {
	src := `
module a(input x);
endmodule
module b(input y);
`
	valid, diags := Check(src)
	if valid {
		t.Fatal("expected invalid")
	}
	found := false
	for _, d := range diags {
		if d.Severity == Error && strings.Contains(d.Message, "mismatch") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a mismatch error, got %#v", diags)
	}
}

func TestCheckNoModule(t *testing.T) {
	valid, diags := Check("wire w;")
	if valid {
		t.Fatal("expected invalid")
	}
	if len(diags) == 0 || diags[0].Severity != Error {
		t.Fatalf("expected leading error diagnostic, got %#v", diags)
	}
}

func TestCheckCommentedOutCodeIgnored(t *testing.T) {
	src := `
module m(input a, output b);
    // module ghost(input c);
    /* begin
       case (a)
    */
    assign b = a;
endmodule
`
	valid, diags := Check(src)
	if !valid {
		t.Fatalf("commented-out keywords should not count, got %#v", diags)
	}
}

func TestCheckUnbalancedParens(t *testing.T) {
	src := `
module m(input a, output b;
    assign b = a;
endmodule
`
	valid, diags := Check(src)
	if valid {
		t.Fatal("expected invalid")
	}
	found := false
	for _, d := range diags {
		if strings.Contains(d.Message, "unclosed parenthes") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected unclosed parenthesis error, got %#v", diags)
	}
}

func TestCheckUnmatchedClosingBracketReportsLine(t *testing.T) {
	src := "module m(input a);\nwire [3:0] w;\nwire x];\nendmodule\n"
	valid, diags := Check(src)
	if valid {
		t.Fatal("expected invalid")
	}
	found := false
	for _, d := range diags {
		if strings.Contains(d.Message, "unmatched closing bracket at line 3") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected bracket error with line number, got %#v", diags)
	}
}

func TestCheckBeginEndMismatchIsWarning(t *testing.T) {
	src := `
module m(input clk, output reg q);
    always @(posedge clk) begin
        q <= 1;
endmodule
`
	valid, diags := Check(src)
	if !valid {
		t.Fatalf("begin/end mismatch must stay a warning, got %#v", diags)
	}
	found := false
	for _, d := range diags {
		if d.Severity == Warning && strings.Contains(d.Message, "begin/end mismatch") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected begin/end warning, got %#v", diags)
	}
}

func TestCheckCaseEndcaseMismatch(t *testing.T) {
	src := `
module m(input [1:0] s, output reg q);
    always @(*)
        case (s)
            2'b00: q = 0;
endmodule
`
	valid, diags := Check(src)
	if valid {
		t.Fatal("expected invalid")
	}
	found := false
	for _, d := range diags {
		if d.Severity == Error && strings.Contains(d.Message, "case/endcase") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected case/endcase error, got %#v", diags)
	}
}

func TestCheckMultipleModulesInfo(t *testing.T) {
	src := `
module a(input x);
endmodule
module b(input y);
endmodule
`
	valid, diags := Check(src)
	if !valid {
		t.Fatalf("two balanced modules are valid, got %#v", diags)
	}
	found := false
	for _, d := range diags {
		if d.Severity == Info && strings.Contains(d.Message, "multiple modules") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected multiple-modules info, got %#v", diags)
	}
}

func TestCheckMissingSemicolonWarning(t *testing.T) {
	src := "module m(input a);\nwire w\nassign w = a;\nendmodule\n"
	_, diags := Check(src)
	found := false
	for _, d := range diags {
		if d.Severity == Warning && strings.Contains(d.Message, "missing semicolon") &&
			strings.Contains(d.Message, "line 2") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected missing-semicolon warning for line 2, got %#v", diags)
	}
}

func TestDetectVersion(t *testing.T) {
	cases := []struct {
		name string
		src  string
		want Version
	}{
		{"plain", "module m(a); input a; endmodule", Verilog95},
		{"localparam", "module m; localparam W = 4; endmodule", Verilog2001},
		{"star sensitivity", "module m; always @(*) x = y; endmodule", Verilog2001},
		{"logic keyword", "module m(input logic a); endmodule", SystemVerilog},
		{"always_ff", "module m; always_ff @(posedge clk) q <= d; endmodule", SystemVerilog},
		{"sv wins over 2001", "module m; localparam W = 4; logic x; endmodule", SystemVerilog},
	}
	for _, tc := range cases {
		if got := DetectVersion(tc.src); got != tc.want {
			t.Errorf("%s: got %s, want %s", tc.name, got, tc.want)
		}
	}
}

func TestStripComments(t *testing.T) {
	in := "a // line\nb /* block\nstill */ c"
	got := StripComments(in)
	if strings.Contains(got, "line") || strings.Contains(got, "block") {
		t.Fatalf("comments survived: %q", got)
	}
	if !strings.Contains(got, "a") || !strings.Contains(got, "b") || !strings.Contains(got, "c") {
		t.Fatalf("code removed: %q", got)
	}
}
