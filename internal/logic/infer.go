// Package logic infers combinational behavior from sampled signal
// traces: it builds a truth table from observed values, names the
// gate the table matches, and verifies the observation against the
// gate's canonical table.
package logic

import (
	"fmt"
	"sort"

	"github.com/awavelab/wavecore/internal/vcd"
)

// TruthTable maps a concatenated input-bit string (e.g. "01") to the
// resolved output bit. Only combinations actually observed in the
// trace are present; entries are always over {"0","1"} by
// construction, samples containing x or z are discarded before
// aggregation.
type TruthTable map[string]string

// Sample is one valid observation: every input and the output were a
// definite 0 or 1 at the sample time.
type Sample struct {
	Time   uint64
	Inputs string
	Output string
}

// Result is the outcome of one inference run.
type Result struct {
	Table        TruthTable
	Label        GateLabel
	Verification []Check
	Samples      int
	Discarded    int
}

// Infer samples the inputs and output at every timestamp any of them
// changed, aggregates the valid samples into a truth table, classifies
// the gate, and replays the classification's canonical table against
// the observation. All records must be scalar (width 1).
func Infer(inputs []*vcd.SignalRecord, output *vcd.SignalRecord) (*Result, error) {
	if len(inputs) == 0 {
		return nil, fmt.Errorf("no input signals given")
	}
	if output == nil {
		return nil, fmt.Errorf("no output signal given")
	}
	for _, rec := range inputs {
		if rec == nil || rec.Width != 1 {
			return nil, fmt.Errorf("input signals must be scalar, got %#v", rec)
		}
	}
	if output.Width != 1 {
		return nil, fmt.Errorf("output signal %s must be scalar, width is %d", output.Name, output.Width)
	}

	samples, discarded := collectSamples(inputs, output)
	table := resolveSamples(samples)
	label := Classify(table, len(inputs))

	return &Result{
		Table:        table,
		Label:        label,
		Verification: Verify(label, table, len(inputs)),
		Samples:      len(samples),
		Discarded:    discarded,
	}, nil
}

// collectSamples evaluates every record at every change timestamp.
// Sample points are sorted ascending so the process is reproducible.
// A sample survives only if every fetched value is a definite bit.
func collectSamples(inputs []*vcd.SignalRecord, output *vcd.SignalRecord) ([]Sample, int) {
	all := append(append([]*vcd.SignalRecord{}, inputs...), output)
	times := vcd.Timestamps(all...)

	var samples []Sample
	discarded := 0
	for _, t := range times {
		combo := make([]byte, 0, len(inputs))
		valid := true
		for _, rec := range inputs {
			v := vcd.ValueAt(rec, t)
			if v != "0" && v != "1" {
				valid = false
				break
			}
			combo = append(combo, v[0])
		}
		out := vcd.ValueAt(output, t)
		if !valid || (out != "0" && out != "1") {
			discarded++
			continue
		}
		samples = append(samples, Sample{Time: t, Inputs: string(combo), Output: out})
	}
	return samples, discarded
}

// resolveSamples groups samples by input combination and resolves each
// group to one output by majority vote. Ties break deterministically:
// the output value first observed at the earliest sample time wins.
func resolveSamples(samples []Sample) TruthTable {
	type tally struct {
		count map[string]int
		first map[string]uint64
	}
	groups := make(map[string]*tally)
	var order []string
	for _, s := range samples {
		g, ok := groups[s.Inputs]
		if !ok {
			g = &tally{count: make(map[string]int), first: make(map[string]uint64)}
			groups[s.Inputs] = g
			order = append(order, s.Inputs)
		}
		g.count[s.Output]++
		if _, seen := g.first[s.Output]; !seen {
			g.first[s.Output] = s.Time
		}
	}

	table := make(TruthTable, len(groups))
	for _, combo := range order {
		g := groups[combo]
		values := make([]string, 0, len(g.count))
		for v := range g.count {
			values = append(values, v)
		}
		sort.Slice(values, func(i, j int) bool {
			ci, cj := g.count[values[i]], g.count[values[j]]
			if ci != cj {
				return ci > cj
			}
			return g.first[values[i]] < g.first[values[j]]
		})
		table[combo] = values[0]
	}
	return table
}
