package vcd

import "testing"

func TestValueAt(t *testing.T) {
	rec := &SignalRecord{
		ID: "!", Name: "q", Width: 1,
		Changes: []Change{{0, "0"}, {10, "1"}},
	}

	cases := []struct {
		t    uint64
		want string
	}{
		{0, "0"},
		{5, "0"},
		{10, "1"},
		{20, "1"},
	}
	for _, tc := range cases {
		if got := ValueAt(rec, tc.t); got != tc.want {
			t.Errorf("t=%d: got %q, want %q", tc.t, got, tc.want)
		}
	}
}

func TestValueAtBeforeFirstChange(t *testing.T) {
	rec := &SignalRecord{
		ID: "!", Name: "q", Width: 1,
		Changes: []Change{{5, "1"}},
	}
	if got := ValueAt(rec, 0); got != "x" {
		t.Fatalf("got %q, want x", got)
	}
}

func TestValueAtEmptyRecord(t *testing.T) {
	rec := &SignalRecord{ID: "!", Name: "bus", Width: 4}
	if got := ValueAt(rec, 100); got != "xxxx" {
		t.Fatalf("got %q, want width-extended unknown", got)
	}
}

func TestValueAtNilRecord(t *testing.T) {
	if got := ValueAt(nil, 0); got != "x" {
		t.Fatalf("got %q, want x", got)
	}
}

func TestValueAtEqualTimestampLastWriteWins(t *testing.T) {
	rec := &SignalRecord{
		ID: "!", Name: "q", Width: 1,
		Changes: []Change{{0, "0"}, {10, "1"}, {10, "0"}},
	}
	if got := ValueAt(rec, 10); got != "0" {
		t.Fatalf("got %q, want the later write at t=10", got)
	}
	if got := ValueAt(rec, 11); got != "0" {
		t.Fatalf("got %q, want 0", got)
	}
}

func TestTimestamps(t *testing.T) {
	a := &SignalRecord{Changes: []Change{{0, "0"}, {10, "1"}}}
	b := &SignalRecord{Changes: []Change{{5, "0"}, {10, "1"}, {20, "0"}}}

	got := Timestamps(a, b, nil)
	want := []uint64{0, 5, 10, 20}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestUnknown(t *testing.T) {
	if Unknown(1) != "x" || Unknown(0) != "x" || Unknown(3) != "xxx" {
		t.Fatal("unexpected unknown encoding")
	}
}
