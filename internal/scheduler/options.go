// Package scheduler owns the archive session: the sorted file list,
// the current solid unit, the encoder stack, the output sink, and the
// progress meter. It is grounded on a single top-level
// driver function (internal/lzo/compress9x.go's compress9x, which owns
// the whole compress-one-buffer loop end to end) generalized from one
// buffer to many files grouped into solid units, with the addition of
// a real file list, a match table refreshed per unit, and a container
// writer.
package scheduler

import (
	"github.com/google/uuid"

	"github.com/radyx/radyx/internal/interrupt"
	"github.com/radyx/radyx/internal/lzma2"
)

// Options configures one archive session, mirroring the CLI surface's
// compression-affecting flags.
type Options struct {
	DictionarySize  int
	FastLength      uint32
	ThreadCount     int
	LC, LP, PB      uint32
	UseBCJ          bool
	StoreFullPaths  bool
	StoreCreateTime bool
	BlockOverlap    int

	SolidUnitSize   uint64 // 0 means unbounded
	SolidFileCount  int    // 0 means unbounded
	SolidByExt      bool

	Interrupt *interrupt.Flag
}

// DefaultOptions returns the conventional "-mx5 normal" preset: 2 GiB
// solid units, BCJ enabled, dictionary sized to 24 bits.
func DefaultOptions() Options {
	return Options{
		DictionarySize: 1 << 24,
		FastLength:     64,
		ThreadCount:    1,
		LC:             3,
		LP:             0,
		PB:             2,
		UseBCJ:         true,
		SolidUnitSize:  2 << 30,
		BlockOverlap:   1 << 16,
	}
}

func (o Options) lzmaParams() lzma2.Params {
	return lzma2.Params{LC: o.LC, LP: o.LP, PB: o.PB, FastLength: o.FastLength, DictSize: uint32(o.DictionarySize)}
}

// tempSuffix returns a per-session unique scratch-file suffix so a
// partially written archive can be identified as "this session's own
// output" unambiguously, even with concurrent runs sharing a
// directory.
func tempSuffix() string {
	return uuid.NewString()
}
