package scheduler

import (
	"sort"

	"github.com/radyx/radyx/internal/archive"
	"github.com/radyx/radyx/internal/extindex"
	"github.com/radyx/radyx/internal/radyxerr"
)

// Entry is one file queued for archiving before preparation sorts and
// deduplicates the list.
type Entry struct {
	Record *archive.FileRecord
}

// Prepare sorts entries by (directory, name) and drops duplicates,
// optionally runs the stored-name collision check, then re-sorts by
// (ext_index, base-name-without-extension, name) to cluster
// similar files for better solid-unit compression.
func Prepare(entries []Entry, storeFullPaths bool) ([]Entry, error) {
	sort.SliceStable(entries, func(i, j int) bool {
		di, dj := entries[i].Record.Dir, entries[j].Record.Dir
		if di != dj {
			return dirLess(di, dj)
		}
		return nameLess(entries[i].Record.Name, entries[j].Record.Name)
	})

	entries = dedup(entries)

	if !storeFullPaths {
		if err := checkCollisions(entries); err != nil {
			return nil, err
		}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		ri, rj := entries[i].Record, entries[j].Record
		if ri.ExtIndex != rj.ExtIndex {
			return ri.ExtIndex < rj.ExtIndex
		}
		bi, bj := baseWithoutExt(ri), baseWithoutExt(rj)
		if bi != bj {
			return bi < bj
		}
		return ri.Name < rj.Name
	})

	return entries, nil
}

func dirLess(a, b *archive.Dir) bool {
	ap, bp := "", ""
	if a != nil {
		ap = a.Path
	}
	if b != nil {
		bp = b.Path
	}
	return ap < bp
}

func nameLess(a, b string) bool { return a < b }

func baseWithoutExt(r *archive.FileRecord) string {
	if r.ExtOffset <= 0 || r.ExtOffset > len(r.Name) {
		return r.Name
	}
	cut := r.ExtOffset - 1 // drop the separating dot too
	if cut < 0 {
		cut = 0
	}
	return r.Name[:cut]
}

// dedup removes consecutive entries whose directory and name compare
// fs-equal, since entries are already sorted by (directory, name).
func dedup(entries []Entry) []Entry {
	out := entries[:0:0]
	for i, e := range entries {
		if i > 0 && sameFile(entries[i-1].Record, e.Record) {
			continue
		}
		out = append(out, e)
	}
	return out
}

func sameFile(a, b *archive.FileRecord) bool {
	ad, bd := "", ""
	if a.Dir != nil {
		ad = a.Dir.Path
	}
	if b.Dir != nil {
		bd = b.Dir.Path
	}
	return equalFoldPlatform(ad, bd) && equalFoldPlatform(a.Name, b.Name)
}

// equalFoldPlatform compares names case-insensitively on platforms
// with case-insensitive filesystems and byte-wise elsewhere. This
// build targets byte-wise comparison (non-Windows); a build-tagged
// Windows variant would switch to strings.EqualFold directly.
func equalFoldPlatform(a, b string) bool {
	return a == b
}

// checkCollisions is fatal if two entries would store the same
// (directory-from-root + name) path, naming the colliding path.
func checkCollisions(entries []Entry) error {
	seen := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		p := e.Record.StoredPath()
		if _, ok := seen[p]; ok {
			return radyxerr.WithPath(radyxerr.ErrNameCollision, p)
		}
		seen[p] = struct{}{}
	}
	return nil
}

// AssignExtIndex fills in ExtIndex from the fixed extension table;
// callers run this once per record before Prepare.
func AssignExtIndex(r *archive.FileRecord) {
	r.ExtIndex = extindex.Lookup(r.Extension())
}
