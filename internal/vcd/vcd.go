// Package vcd parses Value Change Dump traces into a time-indexed
// signal model and answers point-in-time value queries over it.
//
// The parser is a two-state machine: Header until $enddefinitions,
// then Body until end of input. All mutable state lives in a builder
// scoped to one Parse call; the returned Trace is a frozen snapshot,
// so concurrent parses are safe. Malformed lines never abort a parse,
// they are skipped and surfaced as anomalies.
package vcd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Change is one recorded value change. Value is a string over
// {0,1,x,X,z,Z}: length 1 for scalars, the declared width for vectors.
type Change struct {
	Time  uint64 `json:"time"`
	Value string `json:"value"`
}

// SignalRecord is one declared signal and its ordered change history.
// Timestamps are non-decreasing; for equal timestamps the later
// insertion wins on query.
type SignalRecord struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	FullName string   `json:"full_name"`
	Width    int      `json:"width"`
	Kind     string   `json:"kind"`
	Changes  []Change `json:"changes"`
}

// LogEntry is one change in the global, all-signals change log.
type LogEntry struct {
	Time  uint64 `json:"time"`
	ID    string `json:"id"`
	Value string `json:"value"`
}

// SignalTable maps trace identifiers to their records.
type SignalTable map[string]*SignalRecord

// Trace is the frozen result of one parse.
type Trace struct {
	// Timescale is the seconds-per-time-unit multiplier.
	Timescale float64

	Signals SignalTable
	Changes []LogEntry

	// Anomalies lists skipped body lines: unknown identifiers and
	// malformed value tokens. Informational, never fatal.
	Anomalies []string
}

// Empty reports whether the trace declared no signals at all.
func (t *Trace) Empty() bool { return len(t.Signals) == 0 }

// ByName returns the first signal whose short or full name matches.
func (t *Trace) ByName(name string) *SignalRecord {
	for _, rec := range t.Signals {
		if rec.Name == name || rec.FullName == name {
			return rec
		}
	}
	return nil
}

var timeUnits = map[string]float64{
	"s": 1, "ms": 1e-3, "us": 1e-6, "ns": 1e-9, "ps": 1e-12, "fs": 1e-15,
}

type parserState int

const (
	stateHeader parserState = iota
	stateBody
)

type builder struct {
	state       parserState
	scopes      []string
	currentTime uint64
	trace       *Trace
}

// ParseFile parses the VCD file at path.
func ParseFile(path string) (*Trace, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening trace: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse consumes line-oriented VCD text. The only possible error is a
// read failure; structural problems in the trace are anomalies on the
// returned Trace. A trace with zero $var declarations parses to an
// empty table.
func Parse(r io.Reader) (*Trace, error) {
	b := &builder{trace: &Trace{
		Timescale: 1e-9,
		Signals:   make(SignalTable),
	}}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if b.state == stateHeader {
			b.headerLine(line)
		} else {
			b.bodyLine(line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading trace: %w", err)
	}
	return b.trace, nil
}

func (b *builder) headerLine(line string) {
	switch {
	case strings.HasPrefix(line, "$timescale"):
		b.timescale(line)
	case strings.HasPrefix(line, "$scope"):
		if parts := strings.Fields(line); len(parts) >= 3 {
			b.scopes = append(b.scopes, parts[2])
		}
	case strings.HasPrefix(line, "$upscope"):
		// Popping an empty stack is a no-op, not an error.
		if len(b.scopes) > 0 {
			b.scopes = b.scopes[:len(b.scopes)-1]
		}
	case strings.HasPrefix(line, "$var"):
		b.varDecl(line)
	case strings.HasPrefix(line, "$enddefinitions"):
		b.state = stateBody
	}
}

func (b *builder) timescale(line string) {
	// $timescale 1 ns $end or $timescale 1ns $end
	rest := strings.TrimPrefix(line, "$timescale")
	rest = strings.TrimSuffix(strings.TrimSpace(rest), "$end")
	rest = strings.TrimSpace(rest)
	i := 0
	for i < len(rest) && rest[i] >= '0' && rest[i] <= '9' {
		i++
	}
	if i == 0 {
		return
	}
	value, err := strconv.ParseUint(rest[:i], 10, 64)
	if err != nil {
		return
	}
	unit := strings.TrimSpace(rest[i:])
	mult, ok := timeUnits[unit]
	if !ok {
		mult = 1e-9
	}
	b.trace.Timescale = float64(value) * mult
}

func (b *builder) varDecl(line string) {
	// $var <kind> <width> <id> <name> $end
	parts := strings.Fields(line)
	if len(parts) < 5 {
		return
	}
	width, err := strconv.Atoi(parts[2])
	if err != nil || width < 1 {
		return
	}
	id, name := parts[3], parts[4]
	fullName := strings.Join(append(append([]string{}, b.scopes...), name), ".")
	// Re-declaring an identifier overwrites: last declaration wins.
	b.trace.Signals[id] = &SignalRecord{
		ID:       id,
		Name:     name,
		FullName: fullName,
		Width:    width,
		Kind:     parts[1],
	}
}

func (b *builder) bodyLine(line string) {
	switch {
	case strings.HasPrefix(line, "#"):
		t, err := strconv.ParseUint(line[1:], 10, 64)
		if err != nil {
			b.anomaly("malformed time marker %q", line)
			return
		}
		b.currentTime = t
	case line[0] == 'b' || line[0] == 'B':
		b.vectorChange(line)
	case isValueChar(line[0]):
		b.scalarChange(line)
	case strings.HasPrefix(line, "$"):
		// $dumpvars/$end block markers carry no value themselves;
		// the lines between them are ordinary value lines.
	default:
		b.anomaly("unrecognized line %q", line)
	}
}

func (b *builder) scalarChange(line string) {
	value := string(line[0])
	id := strings.TrimSpace(line[1:])
	if id == "" {
		b.anomaly("scalar change without identifier %q", line)
		return
	}
	b.record(id, value)
}

func (b *builder) vectorChange(line string) {
	parts := strings.Fields(line)
	if len(parts) < 2 {
		b.anomaly("vector change without identifier %q", line)
		return
	}
	value := parts[0][1:]
	for i := 0; i < len(value); i++ {
		if !isValueChar(value[i]) {
			b.anomaly("malformed vector value %q", line)
			return
		}
	}
	b.record(parts[1], value)
}

func (b *builder) record(id, value string) {
	rec, ok := b.trace.Signals[id]
	if !ok {
		b.anomaly("value change for unknown identifier %q", id)
		return
	}
	rec.Changes = append(rec.Changes, Change{Time: b.currentTime, Value: value})
	b.trace.Changes = append(b.trace.Changes, LogEntry{Time: b.currentTime, ID: id, Value: value})
}

func (b *builder) anomaly(format string, args ...interface{}) {
	b.trace.Anomalies = append(b.trace.Anomalies, fmt.Sprintf(format, args...))
}

func isValueChar(c byte) bool {
	switch c {
	case '0', '1', 'x', 'X', 'z', 'Z':
		return true
	}
	return false
}
