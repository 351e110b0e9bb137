package vcd

import (
	"sort"
	"strings"
)

// Unknown returns the unknown value "x" extended to the given width.
func Unknown(width int) string {
	if width <= 1 {
		return "x"
	}
	return strings.Repeat("x", width)
}

// ValueAt returns the signal's value at time t: the value of the last
// change with timestamp <= t. When equal timestamps exist the latest
// inserted one wins. If t precedes the first change, or the record has
// no changes, the unknown value is returned at the record's width.
func ValueAt(rec *SignalRecord, t uint64) string {
	if rec == nil || len(rec.Changes) == 0 {
		if rec == nil {
			return Unknown(1)
		}
		return Unknown(rec.Width)
	}
	// First index with Time > t; the entry before it is the answer.
	idx := sort.Search(len(rec.Changes), func(i int) bool {
		return rec.Changes[i].Time > t
	})
	if idx == 0 {
		return Unknown(rec.Width)
	}
	return rec.Changes[idx-1].Value
}

// Timestamps returns the sorted, de-duplicated set of timestamps
// appearing in any of the given records' change lists.
func Timestamps(records ...*SignalRecord) []uint64 {
	seen := make(map[uint64]bool)
	for _, rec := range records {
		if rec == nil {
			continue
		}
		for _, c := range rec.Changes {
			seen[c.Time] = true
		}
	}
	times := make([]uint64, 0, len(seen))
	for t := range seen {
		times = append(times, t)
	}
	sort.Slice(times, func(i, j int) bool { return times[i] < times[j] })
	return times
}
