package logging

import "testing"

func TestLogger_WarnAccumulates(t *testing.T) {
	l := New()
	l.Warn("skipping %s: %v", "foo.txt", "permission denied")
	l.Warn("skipping %s", "bar.txt")

	got := l.Warnings()
	if len(got) != 2 {
		t.Fatalf("len(Warnings()) = %d, want 2", len(got))
	}
	if got[0] != "skipping foo.txt: permission denied" {
		t.Fatalf("warning[0] = %q", got[0])
	}
}

func TestLogger_WarningsReturnsCopy(t *testing.T) {
	l := New()
	l.Warn("one")
	got := l.Warnings()
	got[0] = "mutated"
	if l.Warnings()[0] == "mutated" {
		t.Fatalf("Warnings() leaked internal slice")
	}
}
