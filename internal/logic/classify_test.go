package logic

import "testing"

func TestClassifyTwoInputSignatures(t *testing.T) {
	cases := []struct {
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
	combos := []string{"00", "01", "10", "11"}
	for _, tc := range cases {
		table := TruthTable{}
		for i, combo := range combos {
			table[combo] = tc.outs[i]
		}
		if got := Classify(table, 2); got != tc.label {
			t.Errorf("%v: got %q, want %q", tc.outs, got, tc.label)
		}
	}
}

func TestClassifyCustomLogic(t *testing.T) {
	table := TruthTable{"00": "1", "01": "1", "10": "0", "11": "1"}
	if got := Classify(table, 2); got != LabelCustom {
		t.Fatalf("got %q", got)
	}
}

func TestClassifyUnary(t *testing.T) {
	if got := Classify(TruthTable{"0": "1", "1": "0"}, 1); got != LabelNot {
		t.Fatalf("got %q", got)
	}
	if got := Classify(TruthTable{"0": "0", "1": "1"}, 1); got != LabelBuffer {
		t.Fatalf("got %q", got)
	}
	if got := Classify(TruthTable{"0": "0"}, 1); got != LabelUnknown {
		t.Fatalf("partial unary table must stay unknown, got %q", got)
	}
}

func TestClassifyTernary(t *testing.T) {
	and3 := TruthTable{}
	for _, combo := range Combos(3) {
		if combo == "111" {
			and3[combo] = "1"
		} else {
			and3[combo] = "0"
		}
	}
	if got := Classify(and3, 3); got != LabelAnd3 {
		t.Fatalf("got %q", got)
	}

	or3 := TruthTable{}
	for _, combo := range Combos(3) {
		if combo == "000" {
			or3[combo] = "0"
		} else {
			or3[combo] = "1"
		}
	}
	if got := Classify(or3, 3); got != LabelOr3 {
		t.Fatalf("got %q", got)
	}

	xor3 := TruthTable{}
	for _, combo := range Combos(3) {
		ones := 0
		for i := 0; i < 3; i++ {
			if combo[i] == '1' {
				ones++
			}
		}
		if ones%2 == 1 {
			xor3[combo] = "1"
		} else {
			xor3[combo] = "0"
		}
	}
	if got := Classify(xor3, 3); got != LabelXor3 {
		t.Fatalf("got %q", got)
	}
}

func TestClassifyWideArity(t *testing.T) {
	if got := Classify(TruthTable{}, 5); got != GateLabel("5-input Logic") {
		t.Fatalf("got %q", got)
	}
}

func TestCombos(t *testing.T) {
	got := Combos(2)
	want := []string{"00", "01", "10", "11"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestVerifyNotExercisedDistinctFromMismatch(t *testing.T) {
	observed := TruthTable{"00": "0", "01": "1", "11": "1"}
	checks := Verify(LabelAnd, observed, 2)
	if len(checks) != 4 {
		t.Fatalf("checks: %#v", checks)
	}
	byCombo := map[string]Check{}
	for _, c := range checks {
		byCombo[c.Inputs] = c
	}
	if byCombo["00"].Status != Pass {
		t.Fatalf("00: %#v", byCombo["00"])
	}
	if byCombo["01"].Status != Mismatch {
		t.Fatalf("01: %#v", byCombo["01"])
	}
	if byCombo["10"].Status != NotExercised {
		t.Fatalf("10: %#v", byCombo["10"])
	}
	if byCombo["11"].Status != Pass {
		t.Fatalf("11: %#v", byCombo["11"])
	}
}

func TestVerifyNoCanonicalTable(t *testing.T) {
	if checks := Verify(LabelCustom, TruthTable{"00": "1"}, 2); checks != nil {
		t.Fatalf("custom logic has no canonical table, got %#v", checks)
	}
	if checks := Verify(LabelUnknown, TruthTable{}, 1); checks != nil {
		t.Fatalf("unknown has no canonical table, got %#v", checks)
	}
}
