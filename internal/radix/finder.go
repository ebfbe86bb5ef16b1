package radix

import (
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/radyx/radyx/internal/interrupt"
)

const (
	// smallListThreshold is the list size at or below which brute-force
	// pairwise comparison beats further partitioning.
	smallListThreshold = 6

	// matchBufferSize bounds the buffered sub-path's working set.
	matchBufferSize = 4096

	// bufferedMinList / bufferedDepthMargin gate the buffered sub-path:
	// list length in [bufferedMinList, matchBufferSize] and depth at
	// most maxDepth-bufferedDepthMargin.
	bufferedMinList     = 30
	bufferedDepthMargin = 4

	// repeatCheckInterval is how often (in partition-depth steps) the
	// finder tests for an overlapping, near-degenerate run and caps it.
	repeatCheckInterval = 32

	// repeatCheckCap bounds how far a detected repeat run's length may
	// grow past the depth at which it was detected, so pathological
	// inputs (e.g. one repeated byte) stay linear rather than quadratic.
	repeatCheckCap = 128
)

// Options configures one Build invocation.
type Options struct {
	// MaxDepth bounds how many bytes of shared prefix the finder will
	// confirm for any position.
	MaxDepth int
	// FastLength bounds written match length for the optimizer's early
	// fast-path.
	FastLength int
	// ThreadCount is the number of worker goroutines driving the
	// parallel phase; 0 or 1 means single-threaded.
	ThreadCount int
	// Interrupt is polled at each list pop and buffer-iteration
	// boundary.
	Interrupt *interrupt.Flag
}

// Finder computes, for a data block, one best forward match per
// position into a Table.
type Finder struct {
	data       []byte
	blockStart int
	blockEnd   int
	opts       Options
}

// New returns a Finder over data, writing matches only for positions in
// [blockStart, blockEnd). data beyond blockEnd up to len(data) may be
// used as lookahead for extending matches at the boundary; data before
// blockStart is the read-only overlap region.
func New(data []byte, blockStart, blockEnd int, opts Options) *Finder {
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = 273
	}
	if opts.FastLength <= 0 || opts.FastLength > opts.MaxDepth {
		opts.FastLength = opts.MaxDepth
	}
	return &Finder{data: data, blockStart: blockStart, blockEnd: blockEnd, opts: opts}
}

// Build fills table with matches for [blockStart, blockEnd). Only
// positions >= blockStart are written; table must cover at least
// blockEnd positions. Build returns as-soon-as-safe if the interrupt
// flag is set, leaving table in a valid (possibly partial) state.
func (f *Finder) Build(table Table) {
	if f.blockEnd <= f.blockStart {
		return
	}

	// Step 1: 8-bit bucket initialization. Positions are grouped by
	// their first byte into 256 lists, each held as a slice of
	// ascending positions (equivalent to a singly-linked
	// lists with head pointers, but easier to partition safely across
	// goroutines since each bucket is processed independently).
	buckets := f.initialBuckets()

	threads := f.opts.ThreadCount
	if threads < 1 {
		threads = 1
	}

	if threads <= 1 {
		w := &worker{f: f, table: table}
		for b := range buckets {
			if f.interrupted() {
				return
			}
			w.process(buckets[b], 1)
		}
		return
	}

	// Step 4: parallel drive. Workers pop head indexes from both ends
	// of the 256-entry root bucket array via an atomic double-ended
	// cursor, so short lists (likely clustered near one end once
	// sorted by size) and long lists even out total runtime, and no
	// lock is needed since workers never touch the same bucket twice.
	order := sortBucketsBySize(buckets)
	var front, back atomic.Int64
	front.Store(0)
	back.Store(int64(len(order) - 1))

	g := new(errgroup.Group)
	g.SetLimit(threads)
	for t := 0; t < threads; t++ {
		g.Go(func() error {
			w := &worker{f: f, table: table}
			for {
				if f.interrupted() {
					return nil
				}
				idx, ok := popHeadIndex(&front, &back, t%2 == 0)
				if !ok {
					return nil
				}
				w.process(buckets[order[idx]], 1)
			}
		})
	}
	_ = g.Wait()
}

// popHeadIndex atomically claims one index from the shared
// front/back cursor. fromFront alternates which end workers prefer to
// drain, which is what keeps the last-finishing list short.
func popHeadIndex(front, back *atomic.Int64, fromFront bool) (int, bool) {
	for {
		fv := front.Load()
		bv := back.Load()
		if fv > bv {
			return 0, false
		}
		if fromFront {
			if front.CompareAndSwap(fv, fv+1) {
				return int(fv), true
			}
		} else {
			if back.CompareAndSwap(bv, bv-1) {
				return int(bv), true
			}
		}
	}
}

// sortBucketsBySize returns bucket indexes ordered so that long lists
// are processed first; combined with the front/back split this leaves
// short lists to be mopped up near the end, evening out total runtime.
func sortBucketsBySize(buckets [256][]int32) []int {
	order := make([]int, 256)
	for i := range order {
		order[i] = i
	}
	// Simple insertion sort: 256 elements, called once per Build.
	for i := 1; i < len(order); i++ {
		j := i
		for j > 0 && len(buckets[order[j-1]]) < len(buckets[order[j]]) {
			order[j-1], order[j] = order[j], order[j-1]
			j--
		}
	}
	return order
}

func (f *Finder) interrupted() bool {
	return f.opts.Interrupt != nil && f.opts.Interrupt.IsSet()
}

// initialBuckets groups every position in [0, blockEnd) by its first
// byte. Overlap positions (< blockStart) participate as read-only
// match candidates but are never written to the table.
func (f *Finder) initialBuckets() [256][]int32 {
	var counts [256]int32
	end := f.blockEnd
	for p := 0; p < end; p++ {
		counts[f.data[p]]++
	}

	var buckets [256][]int32
	for b := 0; b < 256; b++ {
		if counts[b] > 0 {
			buckets[b] = make([]int32, 0, counts[b])
		}
	}
	for p := 0; p < end; p++ {
		b := f.data[p]
		buckets[b] = append(buckets[b], int32(p))
	}
	return buckets
}

// worker holds the scratch state for one goroutine's share of the
// recursion. Workers never share a bucket, so no synchronization is
// needed beyond the table's own monotone-write contract.
type worker struct {
	f     *Finder
	table Table
}

// process recurses over list, a set of positions known to share a
// common prefix of length depth, partitioning by subsequent bytes
// until lists are short enough for brute force or the depth bound is
// reached.
func (w *worker) process(list []int32, depth int) {
	if len(list) < 2 || depth > w.f.opts.MaxDepth {
		return
	}
	if w.f.interrupted() {
		return
	}

	if depth%repeatCheckInterval == 0 && isDegenerateRun(list, depth) {
		w.writeRepeatRun(list, depth)
		return
	}

	if len(list) <= smallListThreshold {
		w.bruteForce(list, depth)
		return
	}

	if len(list) >= bufferedMinList && len(list) <= matchBufferSize &&
		depth <= w.f.opts.MaxDepth-bufferedDepthMargin {
		w.recurseBuffered(list, depth)
		return
	}

	w.partitionAndRecurse(list, depth)
}

// isDegenerateRun reports whether list spans a range no wider than
// depth, the signature of a long run of (near-)identical bytes that
// would otherwise force depth-many partition passes each touching the
// same positions.
func isDegenerateRun(list []int32, depth int) bool {
	if len(list) < 3 {
		return false
	}
	span := int(list[len(list)-1] - list[0])
	return span <= depth
}

// writeRepeatRun assigns every consecutive pair in a detected repeat
// run a length capped at depth+repeatCheckCap, bounding quadratic
// behavior on pathological inputs such as a single repeated byte.
func (w *worker) writeRepeatRun(list []int32, depth int) {
	data := w.f.data
	limit := len(data)
	capLen := depth + repeatCheckCap
	for i := 1; i < len(list); i++ {
		pred := int(list[i-1])
		cur := int(list[i])
		length := w.extendMatch(pred, cur, limit, capLen)
		w.emit(pred, cur, length)
	}
}

// bruteForce runs an O(n^2) pairwise comparison bounded by
// max_depth-depth, appropriate once a list is short.
func (w *worker) bruteForce(list []int32, depth int) {
	data := w.f.data
	limit := len(data)
	bound := w.f.opts.MaxDepth

	for i := 1; i < len(list); i++ {
		if w.f.interrupted() {
			return
		}
		pred := int(list[i-1])
		for j := i; j < len(list); j++ {
			cur := int(list[j])
			length := w.extendMatch(pred, cur, limit, bound)
			if length < depth {
				continue
			}
			w.emit(pred, cur, length)
		}
	}
}

// partitionAndRecurse extends every position in list by one more byte,
// splits list into sub-lists keyed by that byte (preserving relative
// order), and for each sub-list's consecutive pairs raises the
// predecessor's recorded match length to the new depth before pushing
// the sub-list for further recursion.
func (w *worker) partitionAndRecurse(list []int32, depth int) {
	data := w.f.data
	newDepth := depth + 1

	var subCounts [256]int32
	shortTail := make([]int32, 0)
	for _, p := range list {
		if int(p)+depth >= len(data) {
			shortTail = append(shortTail, p)
			continue
		}
		subCounts[data[int(p)+depth]]++
	}

	var subBuckets [256][]int32
	for b := 0; b < 256; b++ {
		if subCounts[b] > 0 {
			subBuckets[b] = make([]int32, 0, subCounts[b])
		}
	}
	for _, p := range list {
		if int(p)+depth >= len(data) {
			continue
		}
		b := data[int(p)+depth]
		subBuckets[b] = append(subBuckets[b], p)
	}

	// Positions too short to extend still match each other up to
	// whatever length remains; resolve with brute force at this depth.
	if len(shortTail) >= 2 {
		w.bruteForce(shortTail, depth)
	}

	for b := 0; b < 256; b++ {
		sub := subBuckets[b]
		if len(sub) < 2 {
			continue
		}
		for i := 1; i < len(sub); i++ {
			pred := int(sub[i-1])
			cur := int(sub[i])
			w.emit(pred, cur, newDepth)
		}
		w.process(sub, newDepth)
	}
}

// recurseBuffered implements the buffered sub-path: for a mid-sized
// list, recurse using plain 8-bit partition passes exactly like
// partitionAndRecurse, but bounded to matchBufferSize entries copied
// up front, matching a bounded-match-buffer sizing contract while
// keeping the recursion itself identical to the unbuffered path (the
// distinction that matters operationally is the size cap, not the
// mechanics).
func (w *worker) recurseBuffered(list []int32, depth int) {
	if len(list) > matchBufferSize {
		list = list[:matchBufferSize]
	}
	w.partitionAndRecurse(list, depth)
}

// extendMatch returns the number of equal bytes starting at pred and
// cur, bounded by limit (end of available data) and bound (remaining
// depth budget).
func (w *worker) extendMatch(pred, cur, limit, bound int) int {
	data := w.f.data
	n := 0
	for pred+n < limit && cur+n < limit && n < bound && data[pred+n] == data[cur+n] {
		n++
	}
	return n
}

// emit records a match for whichever of pred/cur lies in the writable
// region and is the later (higher) position, pointing back at the
// other. Matches only ever point from a later position to an earlier
// one, per the MatchLink invariant.
func (w *worker) emit(pred, cur int, length int) {
	if length <= 0 {
		return
	}
	lo, hi := pred, cur
	if lo > hi {
		lo, hi = hi, lo
	}
	if hi < w.f.blockStart {
		return
	}
	if length > w.f.opts.FastLength {
		length = w.f.opts.FastLength
	}
	dist := uint32(hi - lo - 1)
	w.table.SetIfLonger(hi, dist, uint32(length))
}

var _ = sync.Once{} // retained: package historically seeded pools here; no pool needed now.
