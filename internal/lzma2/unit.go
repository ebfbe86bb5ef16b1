package lzma2

import (
	"golang.org/x/sync/errgroup"

	"github.com/radyx/radyx/internal/interrupt"
)

// Division marks a position the match finder guarantees no match
// crosses, so the unit can be safely split there for concurrent
// sub-range encoding.
type Division struct {
	Pos int
}

// CompressOptions configures one unit's compression drive.
type CompressOptions struct {
	Params      Params
	Table       Table
	ThreadCount int
	Divisions   []Division
	Interrupt   *interrupt.Flag
}

// CompressUnit encodes data[start:end] (data also covers the overlap
// region before start, readable as match-extension context) into a
// sequence of LZMA2 chunks, splitting across sub-ranges at safe
// division points when ThreadCount allows it. It returns the
// concatenated chunk bytes (without the final EOF byte; call
// WriteEOF separately once per archive stream) and the number of
// source bytes actually consumed before an interrupt, if any.
func CompressUnit(data []byte, start, end int, opts CompressOptions) (chunks []byte, consumed int, err error) {
	ranges := planRanges(start, end, opts.Divisions, opts.ThreadCount)

	if len(ranges) <= 1 {
		buf, n := compressRange(data, start, end, opts.Params, opts.Table, opts.Interrupt, true)
		return buf, n, nil
	}

	results := make([][]byte, len(ranges))
	consumedPer := make([]int, len(ranges))
	g := new(errgroup.Group)
	g.SetLimit(opts.ThreadCount)

	for i, r := range ranges {
		i, r := i, r
		g.Go(func() error {
			first := i == 0
			buf, n := compressRange(data, r.start, r.end, opts.Params, opts.Table, opts.Interrupt, first)
			results[i] = buf
			consumedPer[i] = n
			return nil
		})
	}
	_ = g.Wait()

	total := 0
	for i, r := range ranges {
		chunks = append(chunks, results[i]...)
		total += consumedPer[i]
		if consumedPer[i] < r.end-r.start {
			break
		}
	}
	return chunks, total, nil
}

type rangeSpan struct{ start, end int }

// planRanges splits [start,end) into up to threadCount sub-ranges at
// the division point closest to each even share, or at the even-share
// position itself when no division lies inside (start,end); if any resulting range would
// fall under minSubRange, fewer, larger ranges are used instead.
const minSubRange = 1 << 16

func planRanges(start, end int, divisions []Division, threadCount int) []rangeSpan {
	if threadCount < 2 || end-start < 2*minSubRange {
		return []rangeSpan{{start, end}}
	}

	target := threadCount
	if target > (end-start)/minSubRange {
		target = (end - start) / minSubRange
	}
	if target < 1 {
		target = 1
	}

	bounds := make([]int, 0, target+1)
	bounds = append(bounds, start)
	step := (end - start) / target
	for i := 1; i < target; i++ {
		want := start + i*step
		bound := nearestDivision(divisions, want, start, end)
		bounds = append(bounds, bound)
	}
	bounds = append(bounds, end)

	spans := make([]rangeSpan, 0, target)
	for i := 0; i < len(bounds)-1; i++ {
		if bounds[i+1] <= bounds[i] {
			continue
		}
		spans = append(spans, rangeSpan{bounds[i], bounds[i+1]})
	}
	if len(spans) == 0 {
		return []rangeSpan{{start, end}}
	}
	return spans
}

func nearestDivision(divisions []Division, want, lo, hi int) int {
	best := want
	bestDist := 1 << 30
	for _, d := range divisions {
		if d.Pos <= lo || d.Pos >= hi {
			continue
		}
		dist := d.Pos - want
		if dist < 0 {
			dist = -dist
		}
		if dist < bestDist {
			bestDist = dist
			best = d.Pos
		}
	}
	return best
}

// compressRange runs the optimizer and encoder over one contiguous
// sub-range, emitting as many 64KiB-bounded chunks as needed.
// resetFirstChunk requests a full state+prop+dict reset on the first
// emitted chunk, appropriate only for the sub-range that starts the
// unit.
func compressRange(data []byte, start, end int, params Params, table Table, intr *interrupt.Flag, resetFirstChunk bool) ([]byte, int) {
	enc := NewEncoder(params)
	opt := newOptimizer(enc, data, table, params.FastLength)

	var out []byte
	pos := start
	firstChunk := resetFirstChunk

	for pos < end {
		if intr != nil && intr.IsSet() {
			return out, pos - start
		}

		chunkEnd := pos + MaxUncompressedChunk
		if chunkEnd > end {
			chunkEnd = end
		}

		rc := NewRangeEncoder()
		enc.resetModels()
		p := pos
		for p < chunkEnd {
			if intr != nil && intr.IsSet() {
				break
			}
			for _, d := range opt.parse(p, chunkEnd) {
				if intr != nil && intr.IsSet() {
					break
				}
				posState := enc.posState(uint32(p))
				switch {
				case d.repIdx >= 0:
					enc.encodeRepMatch(rc, posState, d.length, d.repIdx)
				case d.isMatch:
					enc.encodeMatch(rc, posState, d.length, d.dist)
				default:
					enc.encodeLiteral(rc, data, p)
				}
				p += int(d.length)
			}
		}
		rc.Flush()

		uncompLen := p - pos
		compressed := rc.Bytes()
		if len(compressed) >= uncompLen {
			out = WriteUncompressedChunk(out, data[pos:p], firstChunk)
		} else {
			reset := resetState
			if firstChunk {
				reset = resetStateNewPropDict
			}
			propsByte := PropsByte(params.LC, params.LP, params.PB)
			out = WriteCompressedChunk(out, uncompLen, compressed, reset, propsByte)
		}
		firstChunk = false
		pos = p
	}
	return out, pos - start
}
