package logic

// CheckStatus is the outcome for one combination during verification.
type CheckStatus string

const (
	// Pass means the observed output matches the canonical one.
	Pass CheckStatus = "pass"
	// Mismatch means the combination was observed with a different output.
	Mismatch CheckStatus = "mismatch"
	// NotExercised means the trace never produced the combination.
	// Distinct from Mismatch: absence is not evidence of a fault.
	NotExercised CheckStatus = "not exercised"
)

// Check is the verification result for a single input combination.
type Check struct {
	Inputs   string      `json:"inputs"`
	Expected string      `json:"expected"`
	Observed string      `json:"observed,omitempty"`
	Status   CheckStatus `json:"status"`
}

// Verify replays the classified label's canonical truth table against
// the observed one, one check per canonical combination. Labels with
// no canonical table (custom, unknown, generic n-input) verify to nil.
func Verify(label GateLabel, observed TruthTable, numInputs int) []Check {
	canonical := Canonical(label, numInputs)
	if canonical == nil {
		return nil
	}

	checks := make([]Check, 0, len(canonical))
	for _, combo := range Combos(numInputs) {
		expected, ok := canonical[combo]
		if !ok {
			continue
		}
		check := Check{Inputs: combo, Expected: expected}
		switch got, seen := observed[combo]; {
		case !seen:
			check.Status = NotExercised
		case got == expected:
			check.Observed = got
			check.Status = Pass
		default:
			check.Observed = got
			check.Status = Mismatch
		}
		checks = append(checks, check)
	}
	return checks
}

// CountStatus tallies checks with the given status.
func CountStatus(checks []Check, status CheckStatus) int {
	n := 0
	for _, c := range checks {
		if c.Status == status {
			n++
		}
	}
	return n
}
