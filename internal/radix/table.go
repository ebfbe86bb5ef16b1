// Package radix implements the multi-threaded radix/bucket-sort match
// finder: for every position in a data block it produces one best
// forward match (distance, length) by repeatedly partitioning position
// lists on shared-prefix bytes, falling back to brute-force comparison
// once a list is short.
//
// The finder is grounded on the chain-based match search in the
// teacher package (internal/lzo's slidingWindowDict and
// hcMatch3Table/hcMatch2Table: hash-bucket heads, chain-next arrays,
// and a cached best-length-per-node to cut off unproductive chain
// walks) generalized from a single hash bucket per key to full
// recursive prefix partitioning, and from a single worker to a
// work-stealing pool of workers sharing one output table.
package radix

import "math"

// Table is the match-table trait selected at session start from the
// dictionary size.
type Table interface {
	// Get returns the match recorded at position p.
	Get(p int) (dist uint32, length uint32)
	// SetIfLonger records a match at position p, but only if length exceeds
	// whatever is already recorded there (matches are monotone).
	SetIfLonger(p int, dist, length uint32)
	// Len returns the number of positions the table covers.
	Len() int
}

// MaxPackedDictSize is the largest dictionary size addressable by the
// packed 32-bit table: 26 bits of link plus 6 bits of length.
const MaxPackedDictSize = 1 << 26

// maxPackedLength is the largest length the packed table can record (6 bits).
const maxPackedLength = 63

// packedNull is the all-ones sentinel marking "no match" in a packed word.
const packedNull uint32 = math.MaxUint32

// PackedTable is the 32-bit packed representation used when the
// dictionary is small enough (<= MaxPackedDictSize) that a 26-bit link
// plus 6-bit length fit in one word.
type PackedTable struct {
	words []uint32
}

// NewPackedTable allocates a packed table covering n positions, all
// initially null.
func NewPackedTable(n int) *PackedTable {
	t := &PackedTable{words: make([]uint32, n)}
	for i := range t.words {
		t.words[i] = packedNull
	}
	return t
}

func (t *PackedTable) Len() int { return len(t.words) }

func (t *PackedTable) Get(p int) (dist uint32, length uint32) {
	w := t.words[p]
	if w == packedNull {
		return 0, 0
	}
	return w & 0x03FFFFFF, (w >> 26) + 1
}

func (t *PackedTable) SetIfLonger(p int, dist, length uint32) {
	if length == 0 {
		return
	}
	if length > maxPackedLength {
		length = maxPackedLength
	}
	if dist > 0x03FFFFFF {
		return
	}
	_, curLen := t.Get(p)
	if length <= curLen {
		return
	}
	t.words[p] = dist | ((length - 1) << 26)
}

// StructuredTable stores link and length in separate arrays, used for
// dictionaries larger than MaxPackedDictSize where a 26-bit link would
// overflow.
type StructuredTable struct {
	dist   []uint32
	length []uint32
}

// NewStructuredTable allocates a structured table covering n positions.
func NewStructuredTable(n int) *StructuredTable {
	return &StructuredTable{dist: make([]uint32, n), length: make([]uint32, n)}
}

func (t *StructuredTable) Len() int { return len(t.length) }

func (t *StructuredTable) Get(p int) (dist uint32, length uint32) {
	return t.dist[p], t.length[p]
}

func (t *StructuredTable) SetIfLonger(p int, dist, length uint32) {
	if length <= t.length[p] {
		return
	}
	t.dist[p] = dist
	t.length[p] = length
}

// NewTable selects a Table implementation for the given dictionary size,
// per the Design Notes' "select at session start from options" rule.
func NewTable(n int, dictSize int) Table {
	if dictSize <= MaxPackedDictSize {
		return NewPackedTable(n)
	}
	return NewStructuredTable(n)
}
