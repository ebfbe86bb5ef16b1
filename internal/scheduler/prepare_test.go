package scheduler

import (
	"errors"
	"testing"

	"github.com/radyx/radyx/internal/archive"
	"github.com/radyx/radyx/internal/extindex"
	"github.com/radyx/radyx/internal/radyxerr"
)

func mkEntry(dirPath, name string) Entry {
	d := &archive.Dir{Path: dirPath}
	r := &archive.FileRecord{Dir: d, Name: name}
	if dot := lastDot(name); dot >= 0 {
		r.ExtOffset = dot + 1
	}
	AssignExtIndex(r)
	return Entry{Record: r}
}

func lastDot(name string) int {
	for i := len(name) - 1; i >= 0; i-- {
		if name[i] == '.' {
			return i
		}
	}
	return -1
}

func TestPrepare_SortsByExtensionThenBaseName(t *testing.T) {
	entries := []Entry{
		mkEntry("/a/", "zeta.txt"),
		mkEntry("/a/", "alpha.exe"),
		mkEntry("/a/", "beta.txt"),
	}
	got, err := Prepare(entries, false)
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	// Executables sort into their own ext_index group, which this
	// table places after the plain-text extensions.
	if got[0].Record.Name != "beta.txt" || got[1].Record.Name != "zeta.txt" {
		t.Fatalf("unexpected order: %v, %v", got[0].Record.Name, got[1].Record.Name)
	}
	if got[2].Record.Name != "alpha.exe" {
		t.Fatalf("expected alpha.exe last, got %s", got[2].Record.Name)
	}
}

func TestPrepare_DedupsIdenticalStoredPaths(t *testing.T) {
	entries := []Entry{
		mkEntry("/a/", "file.txt"),
		mkEntry("/a/", "file.txt"),
	}
	got, err := Prepare(entries, false)
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("len = %d, want 1 after dedup", len(got))
	}
}

func TestPrepare_CollisionErrorsWhenNotStoringFullPaths(t *testing.T) {
	a := &archive.Dir{Path: "/a/"}
	b := &archive.Dir{Path: "/b/"}
	entries := []Entry{
		{Record: &archive.FileRecord{Dir: a, Name: "file.txt", RootOffset: len("/a/")}},
		{Record: &archive.FileRecord{Dir: b, Name: "file.txt", RootOffset: len("/b/")}},
	}
	_, err := Prepare(entries, false)
	if err == nil {
		t.Fatalf("expected a collision error when two entries store as the same path")
	}
	if !errors.Is(err, radyxerr.ErrNameCollision) {
		t.Fatalf("expected errors.Is(err, radyxerr.ErrNameCollision), got %v", err)
	}
}

func TestPrepare_NoCollisionCheckWhenStoringFullPaths(t *testing.T) {
	a := &archive.Dir{Path: "/a/"}
	b := &archive.Dir{Path: "/b/"}
	entries := []Entry{
		{Record: &archive.FileRecord{Dir: a, Name: "file.txt"}},
		{Record: &archive.FileRecord{Dir: b, Name: "file.txt"}},
	}
	got, err := Prepare(entries, true)
	if err != nil {
		t.Fatalf("Prepare with full paths should not fail on matching basenames: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
}

func TestAssignExtIndex_ExecutableGroup(t *testing.T) {
	r := &archive.FileRecord{Name: "tool.exe", ExtOffset: len("tool.")}
	AssignExtIndex(r)
	if !extindex.IsExecutable(r.ExtIndex) {
		t.Fatalf("expected .exe to land in the executables group")
	}
}
