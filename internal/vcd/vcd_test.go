package vcd

import (
	"strings"
	"testing"
)

const sampleTrace = `$date
   October 1, 2025
$end
$version
   wavecore test
$end
$timescale 1ns $end
$scope module top_tb $end
$scope module uut $end
$var wire 1 ! clk $end
$var wire 1 " rst $end
$var wire 4 # count $end
$upscope $end
$upscope $end
$enddefinitions $end
#0
$dumpvars
0!
1"
b0000 #
$end
#5
1!
#10
0!
0"
b0001 #
#15
1!
b0010 #
`

func TestParseHeader(t *testing.T) {
	trace, err := Parse(strings.NewReader(sampleTrace))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if trace.Timescale != 1e-9 {
		t.Fatalf("timescale: got %v, want 1e-9", trace.Timescale)
	}
	if len(trace.Signals) != 3 {
		t.Fatalf("signals: got %d, want 3", len(trace.Signals))
	}

	clk := trace.Signals["!"]
	if clk == nil {
		t.Fatal("clk not registered")
	}
	if clk.Name != "clk" || clk.Width != 1 || clk.Kind != "wire" {
		t.Fatalf("clk record: %#v", clk)
	}
	if clk.FullName != "top_tb.uut.clk" {
		t.Fatalf("full name: got %q", clk.FullName)
	}

	count := trace.Signals["#"]
	if count == nil || count.Width != 4 {
		t.Fatalf("count record: %#v", count)
	}
}

func TestParseChanges(t *testing.T) {
	trace, err := Parse(strings.NewReader(sampleTrace))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	clk := trace.Signals["!"]
	want := []Change{{0, "0"}, {5, "1"}, {10, "0"}, {15, "1"}}
	if len(clk.Changes) != len(want) {
		t.Fatalf("clk changes: %#v", clk.Changes)
	}
	for i, c := range want {
		if clk.Changes[i] != c {
			t.Fatalf("clk change %d: got %#v, want %#v", i, clk.Changes[i], c)
		}
	}

	count := trace.Signals["#"]
	if len(count.Changes) != 3 || count.Changes[1] != (Change{10, "0001"}) {
		t.Fatalf("count changes: %#v", count.Changes)
	}

	// Global log is ordered and covers every change.
	if len(trace.Changes) != 4+2+3 {
		t.Fatalf("change log: %d entries: %#v", len(trace.Changes), trace.Changes)
	}
	var last uint64
	for _, e := range trace.Changes {
		if e.Time < last {
			t.Fatalf("change log out of order: %#v", trace.Changes)
		}
		last = e.Time
	}
}

func TestParseTimescaleUnits(t *testing.T) {
	cases := []struct {
		decl string
		want float64
	}{
		{"$timescale 1 s $end", 1},
		{"$timescale 10 ms $end", 10e-3},
		{"$timescale 1 us $end", 1e-6},
		{"$timescale 100 ps $end", 100e-12},
		{"$timescale 1 fs $end", 1e-15},
		{"$timescale 1 parsec $end", 1e-9}, // unknown unit defaults to ns
	}
	for _, tc := range cases {
		src := tc.decl + "\n$enddefinitions $end\n"
		trace, err := Parse(strings.NewReader(src))
		if err != nil {
			t.Fatalf("%s: %v", tc.decl, err)
		}
		if trace.Timescale != tc.want {
			t.Errorf("%s: got %v, want %v", tc.decl, trace.Timescale, tc.want)
		}
	}
}

func TestParseNoSignals(t *testing.T) {
	trace, err := Parse(strings.NewReader("$enddefinitions $end\n#0\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !trace.Empty() {
		t.Fatalf("expected empty table, got %#v", trace.Signals)
	}
}

func TestParseUnknownIdentifierIsAnomaly(t *testing.T) {
	src := `$var wire 1 ! a $end
$enddefinitions $end
#0
0!
1?
`
	trace, err := Parse(strings.NewReader(src))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(trace.Signals["!"].Changes) != 1 {
		t.Fatalf("known signal changes: %#v", trace.Signals["!"].Changes)
	}
	if len(trace.Anomalies) != 1 || !strings.Contains(trace.Anomalies[0], "unknown identifier") {
		t.Fatalf("anomalies: %#v", trace.Anomalies)
	}
}

func TestParseRedeclaredIdentifierLastWins(t *testing.T) {
	src := `$var wire 1 ! a $end
$var reg 4 ! b $end
$enddefinitions $end
`
	trace, err := Parse(strings.NewReader(src))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	rec := trace.Signals["!"]
	if rec.Name != "b" || rec.Width != 4 || rec.Kind != "reg" {
		t.Fatalf("redeclaration should win: %#v", rec)
	}
}

func TestParseUpscopeOnEmptyStack(t *testing.T) {
	src := `$upscope $end
$scope module top $end
$var wire 1 ! a $end
$enddefinitions $end
`
	trace, err := Parse(strings.NewReader(src))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if trace.Signals["!"].FullName != "top.a" {
		t.Fatalf("full name: %q", trace.Signals["!"].FullName)
	}
}

func TestParseDumpvarsBlockValuesAtTimeZero(t *testing.T) {
	src := `$var wire 1 ! a $end
$enddefinitions $end
$dumpvars
1!
$end
#10
0!
`
	trace, err := Parse(strings.NewReader(src))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	changes := trace.Signals["!"].Changes
	if len(changes) != 2 || changes[0] != (Change{0, "1"}) || changes[1] != (Change{10, "0"}) {
		t.Fatalf("changes: %#v", changes)
	}
}

func TestByName(t *testing.T) {
	trace, err := Parse(strings.NewReader(sampleTrace))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if rec := trace.ByName("count"); rec == nil || rec.ID != "#" {
		t.Fatalf("short name lookup failed: %#v", rec)
	}
	if rec := trace.ByName("top_tb.uut.clk"); rec == nil || rec.ID != "!" {
		t.Fatalf("full name lookup failed: %#v", rec)
	}
	if rec := trace.ByName("missing"); rec != nil {
		t.Fatalf("expected nil, got %#v", rec)
	}
}
