package progress

import "testing"

func TestFormatSummary(t *testing.T) {
	got := FormatSummary(3, 1000, 400)
	want := "3 files, 1.0 kB -> 400 B"
	if got != want {
		t.Fatalf("FormatSummary = %q, want %q", got, want)
	}
}

func TestNoOp_DoesNotPanic(t *testing.T) {
	var m Meter = NoOp{}
	m.Add(100)
	m.DecrementTotal(10)
	m.Finish()
}
