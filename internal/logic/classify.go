package logic

import (
	"fmt"
	"strings"
)

// GateLabel names the combinational function a truth table matches.
type GateLabel string

const (
	LabelNot     GateLabel = "NOT Gate"
	LabelBuffer  GateLabel = "BUFFER"
	LabelAnd     GateLabel = "AND Gate"
	LabelOr      GateLabel = "OR Gate"
	LabelXor     GateLabel = "XOR Gate"
	LabelNand    GateLabel = "NAND Gate"
	LabelNor     GateLabel = "NOR Gate"
	LabelXnor    GateLabel = "XNOR Gate"
	LabelCustom  GateLabel = "Custom Logic"
	LabelUnknown GateLabel = "Unknown"
	LabelAnd3    GateLabel = "3-input AND"
	LabelOr3     GateLabel = "3-input OR"
	LabelXor3    GateLabel = "3-input XOR/Complex"
	LabelLogic3  GateLabel = "3-input Logic"
)

// twoInputSignatures lists the canonical 4-tuples over the combination
// order 00, 01, 10, 11. First exact match wins.
var twoInputSignatures = []struct {
	label GateLabel
	outs  [4]string
}{
	{LabelAnd, [4]string{"0", "0", "0", "1"}},
	{LabelOr, [4]string{"0", "1", "1", "1"}},
	{LabelXor, [4]string{"0", "1", "1", "0"}},
	{LabelNand, [4]string{"1", "1", "1", "0"}},
	{LabelNor, [4]string{"1", "0", "0", "0"}},
	{LabelXnor, [4]string{"1", "0", "0", "1"}},
}

// Classify names the gate an observed truth table matches for the
// given input arity. Missing combinations are treated as unknown,
// never defaulted: a partial table can only classify when every
// combination a signature needs is present and agrees.
func Classify(table TruthTable, numInputs int) GateLabel {
	switch numInputs {
	case 1:
		return classifyUnary(table)
	case 2:
		return classifyBinary(table)
	case 3:
		return classifyTernary(table)
	default:
		return GateLabel(fmt.Sprintf("%d-input Logic", numInputs))
	}
}

func classifyUnary(table TruthTable) GateLabel {
	low, okLow := table["0"]
	high, okHigh := table["1"]
	if okLow && okHigh {
		if low == "1" && high == "0" {
			return LabelNot
		}
		if low == "0" && high == "1" {
			return LabelBuffer
		}
	}
	return LabelUnknown
}

func classifyBinary(table TruthTable) GateLabel {
	combos := []string{"00", "01", "10", "11"}
	for _, sig := range twoInputSignatures {
		match := true
		for i, combo := range combos {
			v, ok := table[combo]
			if !ok || v != sig.outs[i] {
				match = false
				break
			}
		}
		if match {
			return sig.label
		}
	}
	return LabelCustom
}

// classifyTernary is a coarse heuristic by count of 1 outputs among
// the observed entries.
func classifyTernary(table TruthTable) GateLabel {
	ones := 0
	for _, v := range table {
		if v == "1" {
			ones++
		}
	}
	switch ones {
	case 1:
		if table["111"] == "1" {
			return LabelAnd3
		}
	case 7:
		if v, ok := table["000"]; ok && v == "0" {
			return LabelOr3
		}
	case 4:
		return LabelXor3
	}
	return LabelLogic3
}

// Canonical returns the full reference truth table for a label, or
// nil for labels that do not name a definite function.
func Canonical(label GateLabel, numInputs int) TruthTable {
	switch label {
	case LabelNot:
		return TruthTable{"0": "1", "1": "0"}
	case LabelBuffer:
		return TruthTable{"0": "0", "1": "1"}
	case LabelAnd, LabelAnd3:
		return generate(numInputs, func(combo string) string {
			if strings.Count(combo, "1") == len(combo) {
				return "1"
			}
			return "0"
		})
	case LabelOr, LabelOr3:
		return generate(numInputs, func(combo string) string {
			if strings.Contains(combo, "1") {
				return "1"
			}
			return "0"
		})
	case LabelXor:
		return generate(2, func(combo string) string {
			if strings.Count(combo, "1")%2 == 1 {
				return "1"
			}
			return "0"
		})
	case LabelNand:
		return TruthTable{"00": "1", "01": "1", "10": "1", "11": "0"}
	case LabelNor:
		return TruthTable{"00": "1", "01": "0", "10": "0", "11": "0"}
	case LabelXnor:
		return TruthTable{"00": "1", "01": "0", "10": "0", "11": "1"}
	}
	return nil
}

// Combos enumerates all input combinations for an arity in ascending
// binary order.
func Combos(numInputs int) []string {
	n := 1 << numInputs
	combos := make([]string, 0, n)
	for i := 0; i < n; i++ {
		bits := make([]byte, numInputs)
		for b := 0; b < numInputs; b++ {
			if i&(1<<(numInputs-1-b)) != 0 {
				bits[b] = '1'
			} else {
				bits[b] = '0'
			}
		}
		combos = append(combos, string(bits))
	}
	return combos
}

func generate(numInputs int, f func(string) string) TruthTable {
	table := make(TruthTable)
	for _, combo := range Combos(numInputs) {
		table[combo] = f(combo)
	}
	return table
}
