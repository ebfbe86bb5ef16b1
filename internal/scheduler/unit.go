package scheduler

import "github.com/radyx/radyx/internal/extindex"

// unitState accumulates the current solid unit's running totals while
// the per-file loop decides whether the next file would close it.
type unitState struct {
	unpackSize uint64
	fileCount  int
	firstExt   int
	haveExt    bool
}

func (u *unitState) reset() {
	*u = unitState{}
}

// shouldClose reports whether adding nextSize bytes of a file with
// nextExt (the fixed table's ext_index) would need to start a new unit
// instead, per the unit policy: size/file-count caps, the
// non-exe-to-exe boundary when BCJ is enabled, and optional
// solid-by-extension grouping.
func (u *unitState) shouldClose(opts Options, nextExt int, nextSize uint64) bool {
	if u.fileCount == 0 {
		return false
	}
	if opts.SolidUnitSize > 0 && u.unpackSize+nextSize > opts.SolidUnitSize {
		return true
	}
	if opts.SolidFileCount > 0 && u.fileCount >= opts.SolidFileCount {
		return true
	}
	if opts.UseBCJ && !extindex.IsExecutable(u.firstExt) && extindex.IsExecutable(nextExt) {
		return true
	}
	if opts.SolidByExt && u.haveExt && nextExt != u.firstExt {
		return true
	}
	return false
}

func (u *unitState) add(ext int, size uint64) {
	if u.fileCount == 0 {
		u.firstExt = ext
		u.haveExt = true
	}
	u.fileCount++
	u.unpackSize += size
}
