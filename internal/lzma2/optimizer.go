package lzma2

// decision is one parse step: either a literal or a match/rep-match of
// the given length, emitted at the optimizer's current position.
type decision struct {
	length  uint32
	dist    uint32 // 0-based; only meaningful when isMatch and repIdx < 0
	repIdx  int    // -1 for a fresh (non-rep) match, -2 for a literal
	isMatch bool
}

// optNode is one entry in the optimal-parse window: the cheapest price
// found so far to reach this position, the state/rep history that
// price assumes, and a back-link to reconstruct the chosen step.
type optNode struct {
	price   uint32
	state   uint32
	reps    [4]uint32
	prevIdx int
	length  uint32
	repIdx  int // -1 fresh match, -2 literal, >=0 rep index
	dist    uint32
}

// optWindowCap bounds how many positions ahead one parse() call
// considers, keeping the DP's O(window * fastLength) cost bounded
// regardless of how large a chunk or unit is.
const optWindowCap = 4096

// optimizer runs a forward dynamic program over a bounded window of
// upcoming positions: at each position it prices a literal, a short
// rep, every rep distance's match, and the match table's fresh match,
// against the encoder's live bit-model probabilities
// (internal/lzma2/prices.go), and keeps the cheapest way to reach every
// later position in the window, matching the standard LZMA optimal
// parser's shape (price against live probabilities, vary only
// state/rep bookkeeping per candidate) rather than a single-step
// lazy-match heuristic.
type optimizer struct {
	enc        *Encoder
	data       []byte
	table      Table
	fastLength uint32
}

func newOptimizer(enc *Encoder, data []byte, table Table, fastLength uint32) *optimizer {
	return &optimizer{enc: enc, data: data, table: table, fastLength: fastLength}
}

// extendRep returns how far data[pos:] matches data[pos-dist-1:],
// bounded by fastLength and the data available.
func (o *optimizer) extendRep(pos int, dist uint32) uint32 {
	src := pos - int(dist) - 1
	if src < 0 {
		return 0
	}
	limit := len(o.data)
	var n uint32
	for pos+int(n) < limit && o.data[src+int(n)] == o.data[pos+int(n)] && n < o.fastLength {
		n++
	}
	return n
}

// shortRepEligible reports whether a length-1 "short rep" (rep0 with
// length exactly 1) is usable at pos: the byte at pos must equal the
// byte at the rep0 distance.
func (o *optimizer) shortRepEligible(pos int, dist uint32) bool {
	src := pos - int(dist) - 1
	return src >= 0 && o.data[src] == o.data[pos]
}

// rotateReps applies the same rep-history rotation encodeRepMatch
// performs when repIndex is used: repIndex's distance moves to the
// front, the reps ahead of it shift back by one. repIndex 0 is a no-op,
// matching encodeRepMatch's own behavior.
func rotateReps(reps [4]uint32, repIndex int) [4]uint32 {
	out := reps
	dist := reps[repIndex]
	copy(out[1:repIndex+1], reps[0:repIndex])
	out[0] = dist
	return out
}

func (o *optimizer) literalPrice(pos int, state uint32, reps [4]uint32) uint32 {
	posState := o.enc.posState(uint32(pos))
	price := getPrice0(o.enc.isMatch[state][posState])
	var prevByte byte
	if pos > 0 {
		prevByte = o.data[pos-1]
	}
	b := o.data[pos]
	if stateIsCharState(state) {
		price += o.enc.litCoder.PriceNormal(uint32(pos), prevByte, b)
	} else {
		matchByte := o.data[pos-int(reps[0])-1]
		price += o.enc.litCoder.PriceMatched(uint32(pos), prevByte, matchByte, b)
	}
	return price
}

func (o *optimizer) shortRepPrice(state, posState uint32) uint32 {
	price := getPrice1(o.enc.isMatch[state][posState])
	price += getPrice1(o.enc.isRep[state])
	price += getPrice0(o.enc.isRepG0[state])
	price += getPrice0(o.enc.isRep0Long[state][posState])
	return price
}

func (o *optimizer) repMatchPrice(state, posState uint32, repIdx int, length uint32) uint32 {
	price := getPrice1(o.enc.isMatch[state][posState])
	price += getPrice1(o.enc.isRep[state])
	if repIdx == 0 {
		price += getPrice0(o.enc.isRepG0[state])
		price += getPrice1(o.enc.isRep0Long[state][posState])
	} else {
		price += getPrice1(o.enc.isRepG0[state])
		if repIdx == 1 {
			price += getPrice0(o.enc.isRepG1[state])
		} else {
			price += getPrice1(o.enc.isRepG1[state])
			if repIdx == 2 {
				price += getPrice0(o.enc.isRepG2[state])
			} else {
				price += getPrice1(o.enc.isRepG2[state])
			}
		}
	}
	price += o.enc.repLenCoder.Price(length-matchMinLen, posState)
	return price
}

func (o *optimizer) matchPrice(state, posState, length, dist uint32) uint32 {
	price := getPrice1(o.enc.isMatch[state][posState])
	price += getPrice0(o.enc.isRep[state])
	price += o.enc.lenCoder.Price(length-matchMinLen, posState)
	price += o.enc.distCoder.Price(length, dist)
	return price
}

// parse runs the forward DP starting at pos, bounded by limit and by
// optWindowCap, and returns the cheapest sequence of decisions spanning
// from pos to pos+window, in emission order. It returns nil only when
// pos has already reached limit.
func (o *optimizer) parse(pos, limit int) []decision {
	window := limit - pos
	if window > optWindowCap {
		window = optWindowCap
	}
	if window <= 0 {
		return nil
	}

	opt := make([]optNode, window+1)
	for i := 1; i <= window; i++ {
		opt[i].price = infinityPrice
	}
	opt[0] = optNode{state: o.enc.state, reps: o.enc.reps, prevIdx: -1, repIdx: -2}

	for i := 0; i < window; i++ {
		cur := opt[i]
		if cur.price >= infinityPrice {
			continue
		}
		p := pos + i
		posState := o.enc.posState(uint32(p))

		litPrice := cur.price + o.literalPrice(p, cur.state, cur.reps)
		if litPrice < opt[i+1].price {
			opt[i+1] = optNode{
				price: litPrice, state: stateUpdateLiteral(cur.state), reps: cur.reps,
				prevIdx: i, length: 1, repIdx: -2,
			}
		}

		if o.shortRepEligible(p, cur.reps[0]) {
			price := cur.price + o.shortRepPrice(cur.state, posState)
			if price < opt[i+1].price {
				opt[i+1] = optNode{
					price: price, state: stateUpdateShortRep(cur.state), reps: cur.reps,
					prevIdx: i, length: 1, repIdx: 0,
				}
			}
		}

		for r := 0; r < 4; r++ {
			repLen := o.extendRep(p, cur.reps[r])
			if repLen < matchMinLen {
				continue
			}
			maxLen := int(repLen)
			if maxLen > window-i {
				maxLen = window - i
			}
			newReps := rotateReps(cur.reps, r)
			for l := matchMinLen; l <= uint32(maxLen); l++ {
				price := cur.price + o.repMatchPrice(cur.state, posState, r, l)
				idx := i + int(l)
				if price < opt[idx].price {
					opt[idx] = optNode{
						price: price, state: stateUpdateRep(cur.state), reps: newReps,
						prevIdx: i, length: l, repIdx: r,
					}
				}
			}
		}

		dist, matchLen := o.table.Get(p)
		if matchLen > o.fastLength {
			matchLen = o.fastLength
		}
		if matchLen >= minMatchLen {
			maxLen := int(matchLen)
			if maxLen > window-i {
				maxLen = window - i
			}
			newReps := [4]uint32{dist, cur.reps[0], cur.reps[1], cur.reps[2]}
			for l := uint32(minMatchLen); l <= uint32(maxLen); l++ {
				price := cur.price + o.matchPrice(cur.state, posState, l, dist)
				idx := i + int(l)
				if price < opt[idx].price {
					opt[idx] = optNode{
						price: price, state: stateUpdateMatch(cur.state), reps: newReps,
						prevIdx: i, length: l, repIdx: -1, dist: dist,
					}
				}
			}
		}
	}

	steps := make([]decision, 0, window)
	for idx := window; idx > 0; idx = opt[idx].prevIdx {
		n := opt[idx]
		d := decision{length: n.length, repIdx: n.repIdx, isMatch: n.repIdx != -2}
		if n.repIdx == -1 {
			d.dist = n.dist
		}
		steps = append(steps, d)
	}
	for l, r := 0, len(steps)-1; l < r; l, r = l+1, r-1 {
		steps[l], steps[r] = steps[r], steps[l]
	}
	return steps
}
