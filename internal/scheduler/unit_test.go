package scheduler

import (
	"testing"

	"github.com/radyx/radyx/internal/extindex"
)

func TestUnitState_NeverClosesOnFirstFile(t *testing.T) {
	var u unitState
	opts := Options{SolidUnitSize: 1, SolidFileCount: 1}
	if u.shouldClose(opts, 0, 1<<30) {
		t.Fatalf("an empty unit must never refuse its first file")
	}
}

func TestUnitState_ClosesOnSizeCap(t *testing.T) {
	var u unitState
	opts := Options{SolidUnitSize: 100}
	u.add(1, 90)
	if !u.shouldClose(opts, 1, 20) {
		t.Fatalf("expected close: 90+20 > 100")
	}
	if u.shouldClose(opts, 1, 5) {
		t.Fatalf("unexpected close: 90+5 <= 100")
	}
}

func TestUnitState_ClosesOnFileCountCap(t *testing.T) {
	var u unitState
	opts := Options{SolidFileCount: 2}
	u.add(1, 10)
	u.add(1, 10)
	if !u.shouldClose(opts, 1, 10) {
		t.Fatalf("expected close at file-count cap")
	}
}

func TestUnitState_ClosesAtNonExeToExeBoundaryWhenBCJEnabled(t *testing.T) {
	var u unitState
	opts := Options{UseBCJ: true}
	txt := extindex.Lookup("txt")
	exe := extindex.Lookup("exe")
	u.add(txt, 10)
	if !u.shouldClose(opts, exe, 10) {
		t.Fatalf("expected a new unit to start at the non-exe -> exe boundary")
	}
}

func TestUnitState_NoBoundaryWhenBCJDisabled(t *testing.T) {
	var u unitState
	opts := Options{UseBCJ: false}
	txt := extindex.Lookup("txt")
	exe := extindex.Lookup("exe")
	u.add(txt, 10)
	if u.shouldClose(opts, exe, 10) {
		t.Fatalf("the exe boundary should only apply when BCJ is enabled")
	}
}

func TestUnitState_SolidByExtGroupsSameExtensionOnly(t *testing.T) {
	var u unitState
	opts := Options{SolidByExt: true}
	txt := extindex.Lookup("txt")
	md := extindex.Lookup("md")
	u.add(txt, 10)
	if !u.shouldClose(opts, md, 10) {
		t.Fatalf("expected close when solid-by-extension and the extension changes")
	}
	if u.shouldClose(opts, txt, 10) {
		t.Fatalf("unexpected close: same extension should stay in the unit")
	}
}

func TestUnitState_Reset(t *testing.T) {
	var u unitState
	u.add(1, 123)
	u.reset()
	if u.fileCount != 0 || u.unpackSize != 0 || u.haveExt {
		t.Fatalf("reset did not clear state: %+v", u)
	}
}
