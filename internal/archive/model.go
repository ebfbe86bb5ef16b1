// Package archive holds the shared data model of the archiver: file
// records, solid-unit metadata, coder descriptors, and the match-link
// representation produced by the match finder. It also defines the
// narrow input/output stream interfaces the encoder and scheduler pull
// through.
package archive

import "time"

// Dir is an interned, content-keyed directory-path handle. Multiple
// FileRecords sharing a directory hold the same *Dir, so comparisons and
// sorts by directory are pointer compares after interning.
type Dir struct {
	Path string
}

// DirInterner interns directory path strings so FileRecords can cheaply
// share a single *Dir per distinct path, matching the
// sync.Pool-flavored reuse discipline but applied to string content
// instead of scratch buffers.
type DirInterner struct {
	byPath map[string]*Dir
}

// NewDirInterner returns an empty interner.
func NewDirInterner() *DirInterner {
	return &DirInterner{byPath: make(map[string]*Dir)}
}

// Intern returns the shared *Dir for path, creating it on first use.
func (in *DirInterner) Intern(path string) *Dir {
	if d, ok := in.byPath[path]; ok {
		return d
	}
	d := &Dir{Path: path}
	in.byPath[path] = d
	return d
}

// FileRecord describes one file added to the archive session.
type FileRecord struct {
	Dir           *Dir   // interned directory
	Name          string // base name
	RootOffset    int    // leading characters of Dir.Path to strip when storing
	ExtOffset     int    // offset into Name where the extension begins
	Size          uint64 // size in bytes, set as bytes are read
	CRC32         uint32 // CRC-32 of content, updated as bytes are read
	ModTime       *time.Time
	CreationTime  *time.Time
	Attributes    *uint32
	ExtIndex      int // index into the fixed extension table, 0 = unknown

	// Empty reports whether the file contributed zero bytes (used for
	// the 7z "empty stream" bitmap); it never holds a CRC or substream
	// entry.
	Empty bool
}

// StoredPath returns the path as it will be written to the archive:
// the directory from RootOffset forward, plus the name.
func (f *FileRecord) StoredPath() string {
	dir := ""
	if f.Dir != nil && f.RootOffset < len(f.Dir.Path) {
		dir = f.Dir.Path[f.RootOffset:]
	}
	if dir == "" {
		return f.Name
	}
	return dir + f.Name
}

// RealPath returns the actual, openable filesystem path: Dir.Path (the
// untruncated directory, regardless of RootOffset) plus Name. Unlike
// StoredPath, this is never stripped for archive naming.
func (f *FileRecord) RealPath() string {
	if f.Dir == nil {
		return f.Name
	}
	return f.Dir.Path + f.Name
}

// Extension returns the file's extension (without the dot), or "" if
// the name has none.
func (f *FileRecord) Extension() string {
	if f.ExtOffset <= 0 || f.ExtOffset >= len(f.Name) {
		return ""
	}
	return f.Name[f.ExtOffset:]
}

// CoderInfo is the 7z header-level descriptor for one step in a unit's
// coding pipeline.
type CoderInfo struct {
	MethodID      []byte // variable-length method id, e.g. {0x21} for LZMA2
	Props         []byte // optional properties blob (e.g. one dict-size byte for LZMA2)
	NumInStreams  int    // default 1
	NumOutStreams int    // default 1
}

// Complex reports whether the coder has other than exactly one input
// and one output stream, matching CoderInfo::IsComplex in the original.
func (c CoderInfo) Complex() bool {
	return c.NumInStreams != 1 || c.NumOutStreams != 1
}

// NewSimpleCoderInfo builds a CoderInfo with one input and one output
// stream, the common case for both LZMA2 and BCJ.
func NewSimpleCoderInfo(methodID, props []byte) CoderInfo {
	return CoderInfo{MethodID: methodID, Props: props, NumInStreams: 1, NumOutStreams: 1}
}

// DataUnit is the metadata recorded for one solid block.
//
// Invariant: the sum of uncompressed file sizes assigned to the unit
// equals UnpackSize; the sum of written bytes equals PackSize.
type DataUnit struct {
	OutFilePos   uint64 // output file offset where this unit's packed stream begins
	UnpackSize   uint64
	PackSize     uint64
	FileCount    int
	FirstFile    int // index into the archive's file list, inclusive
	LastFile     int // index into the archive's file list, exclusive
	Lzma2Coder   CoderInfo
	BcjCoder     CoderInfo // zero value when UsedBCJ is false
	UsedBCJ      bool
}

// MatchLink is one match-finder result for a single dictionary
// position: a backward distance and a length. Dist and Length are both
// zero for a null (no match) link.
//
// NullLink is used by the packed 32-bit representation's sentinel; the
// structured representation (separate arrays) uses Length==0 as null
// instead, since its Dist field has no reserved value.
type MatchLink struct {
	Dist   uint32 // p - link - 1 in spec terms (so Dist==0 means adjacent byte)
	Length uint32
}

// IsNull reports whether the link carries no match.
func (m MatchLink) IsNull() bool {
	return m.Length == 0
}

// ArchiveStreamIn is the pull-driven input contract the scheduler
// exposes to the encoder.
type ArchiveStreamIn interface {
	// Read fills buffer with up to len(buffer) bytes and returns the
	// count actually written.
	Read(buffer []byte) (int, error)
	// Complete reports whether the input is exhausted.
	Complete() bool
}

// OutputStream is the archive's output sink contract. The
// signature header is the only region written out of order (Seek to 0
// at the very end).
type OutputStream interface {
	Write(p []byte) (int, error)
	WriteByte(b byte) error
	Tell() int64
	Seek(abs int64) error
	Fail() bool
}
