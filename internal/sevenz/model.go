package sevenz

import "github.com/radyx/radyx/internal/archive"

// FolderCoder describes one coder in a folder's pipeline: its method
// id, properties, and stream counts, plus the bind-pair wiring when a
// folder has more than one coder (BCJ feeding LZMA2).
type FolderCoder struct {
	Info archive.CoderInfo
}

// Folder is one solid unit's coder pipeline plus its per-coder
// unpacked sizes. A folder with BCJ has two coders and one bind pair
// (output of coder 0, LZMA2, feeds input of coder 1, BCJ); a folder without BCJ has
// one coder and no bind pairs.
type Folder struct {
	Coders       []FolderCoder
	UnpackSizes  []uint64 // one per coder, in the same order as Coders
	HasBindPair  bool     // true when len(Coders) == 2
	UnpackCRC    *uint32  // optional, only set for single-output folders we choose to checksum
}

// FinalOutputSize is the folder's overall (last coder's) unpacked size,
// the value SubStreamsInfo sizes must sum to.
func (f Folder) FinalOutputSize() uint64 {
	if len(f.UnpackSizes) == 0 {
		return 0
	}
	return f.UnpackSizes[len(f.UnpackSizes)-1]
}

// StreamsInfo is the archive-level PackInfo + UnpackInfo +
// SubStreamsInfo bundle: one Folder per solid unit, pack sizes in
// output order, and per-file sizes/CRCs within each folder.
type StreamsInfo struct {
	PackPos       uint64
	PackSizes     []uint64
	Folders       []Folder
	NumUnpackStreams []int    // per folder, number of non-empty files it contains
	SubStreamSizes   []uint64 // per file, excluding each folder's implicit last size
	SubStreamCRCs    []uint32
	SubStreamCRCDefined []bool
}

// FileEntry is one archive file-list entry, independent of whether it
// has an associated data substream.
type FileEntry struct {
	Name         string // stored path, forward slashes
	Empty        bool   // zero-byte file: no substream, still gets an EmptyFile bit if also "is file"
	HasMTime     bool
	MTime        uint64 // Windows FILETIME ticks
	HasCTime     bool
	CTime        uint64
	HasAttrib    bool
	Attributes   uint32
}
