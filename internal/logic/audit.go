package logic

import (
	"sort"
	"strings"

	"github.com/awavelab/wavecore/internal/vcd"
)

// AuditReport summarizes the health of a parsed trace: which
// clock-like and reset-like signals it contains, how many signals
// actually toggled, and which ever carried an x or z value.
type AuditReport struct {
	ClockSignals   []string `json:"clock_signals,omitempty"`
	ResetSignals   []string `json:"reset_signals,omitempty"`
	ActiveSignals  int      `json:"active_signals"`
	IdleSignals    int      `json:"idle_signals"`
	UnknownSignals []string `json:"unknown_signals,omitempty"`
}

// Audit scans a signal table and reports trace health. A clock
// candidate must be scalar and have toggled more than twice; a signal
// counts as active when it recorded more than one change.
func Audit(table vcd.SignalTable) AuditReport {
	report := AuditReport{}
	for _, rec := range sortedRecords(table) {
		lower := strings.ToLower(rec.Name)
		if (strings.Contains(lower, "clk") || strings.Contains(lower, "clock")) &&
			rec.Width == 1 && len(rec.Changes) > 2 {
			report.ClockSignals = append(report.ClockSignals, rec.Name)
		}
		if strings.Contains(lower, "rst") || strings.Contains(lower, "reset") {
			report.ResetSignals = append(report.ResetSignals, rec.Name)
		}
		if len(rec.Changes) > 1 {
			report.ActiveSignals++
		} else {
			report.IdleSignals++
		}
		for _, c := range rec.Changes {
			if strings.ContainsAny(strings.ToLower(c.Value), "xz") {
				report.UnknownSignals = append(report.UnknownSignals, rec.Name)
				break
			}
		}
	}
	return report
}

// sortedRecords gives the audit a stable iteration order; the table
// itself is a map keyed by trace identifier.
func sortedRecords(table vcd.SignalTable) []*vcd.SignalRecord {
	records := make([]*vcd.SignalRecord, 0, len(table))
	for _, rec := range table {
		records = append(records, rec)
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].FullName < records[j].FullName
	})
	return records
}
