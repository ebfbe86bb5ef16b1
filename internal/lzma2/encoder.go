package lzma2

import (
	"github.com/radyx/radyx/internal/radix"
)

// Params are the LZMA literal/position context bit-widths, carried
// through from the archive session's configured lc/lp/pb.
type Params struct {
	LC, LP, PB uint32
	FastLength uint32
	DictSize   uint32
}

// DefaultParams returns the conventional lc=3, lp=0, pb=2 setting used
// by the 7z "normal" preset.
func DefaultParams() Params {
	return Params{LC: 3, LP: 0, PB: 2, FastLength: 64, DictSize: 1 << 24}
}

// Encoder drives the LZMA bit-model state (probabilities, state
// automaton, rep distances) across a sequence of chunks belonging to
// one solid unit. A fresh Encoder should be used per unit; ResetState
// reinitializes probabilities and automaton state without reallocating.
type Encoder struct {
	params Params

	state      uint32
	reps       [4]uint32
	litCoder   *literalCoder
	lenCoder   *lenCoder
	repLenCoder *lenCoder
	distCoder  *distCoder

	isMatch    [numStates][numPosStatesMax]prob
	isRep      [numStates]prob
	isRepG0    [numStates]prob
	isRepG1    [numStates]prob
	isRepG2    [numStates]prob
	isRep0Long [numStates][numPosStatesMax]prob
}

// NewEncoder allocates an Encoder with fresh probability tables for
// the given parameters.
func NewEncoder(p Params) *Encoder {
	e := &Encoder{params: p}
	e.resetModels()
	return e
}

func (e *Encoder) resetModels() {
	e.state = 0
	e.reps = [4]uint32{0, 0, 0, 0}
	e.litCoder = newLiteralCoder(e.params.LC, e.params.LP)
	e.lenCoder = newLenCoder()
	e.repLenCoder = newLenCoder()
	e.distCoder = newDistCoder()
	for s := range e.isMatch {
		for ps := range e.isMatch[s] {
			e.isMatch[s][ps] = bitModelTotal / 2
			e.isRep0Long[s][ps] = bitModelTotal / 2
		}
		e.isRep[s] = bitModelTotal / 2
		e.isRepG0[s] = bitModelTotal / 2
		e.isRepG1[s] = bitModelTotal / 2
		e.isRepG2[s] = bitModelTotal / 2
	}
}

// ResetState reinitializes probabilities and the automaton, used on an
// LZMA2 chunk control byte that requests a state reset.
func (e *Encoder) ResetState() {
	e.resetModels()
}

func (e *Encoder) posState(pos uint32) uint32 {
	return pos & ((1 << e.params.PB) - 1)
}

// encodeLiteral writes one literal byte at absolute position pos.
func (e *Encoder) encodeLiteral(rc *RangeEncoder, data []byte, pos int) {
	posState := e.posState(uint32(pos))
	e.EncodeIsMatch(rc, posState, 0)

	var prevByte byte
	if pos > 0 {
		prevByte = data[pos-1]
	}
	b := data[pos]
	if stateIsCharState(e.state) {
		e.litCoder.EncodeNormal(rc, uint32(pos), prevByte, b)
	} else {
		matchByte := data[pos-int(e.reps[0])-1]
		e.litCoder.EncodeMatched(rc, uint32(pos), prevByte, matchByte, b)
	}
	e.state = stateUpdateLiteral(e.state)
}

// EncodeIsMatch writes the is-match flag for the current state/posState.
func (e *Encoder) EncodeIsMatch(rc *RangeEncoder, posState uint32, bit uint32) {
	rc.EncodeBit(&e.isMatch[e.state][posState], bit)
}

// encodeMatch writes a new (non-rep) match of length and distance
// (0-based) at the current position, and rotates the rep-distance
// history.
func (e *Encoder) encodeMatch(rc *RangeEncoder, posState uint32, length, dist uint32) {
	e.EncodeIsMatch(rc, posState, 1)
	rc.EncodeBit(&e.isRep[e.state], 0)
	e.state = stateUpdateMatch(e.state)

	e.lenCoder.Encode(rc, length-matchMinLen, posState)
	e.distCoder.Encode(rc, length, dist)

	e.reps[3], e.reps[2], e.reps[1], e.reps[0] = e.reps[2], e.reps[1], e.reps[0], dist
}

// encodeRepMatch writes a repeat-distance match using repIndex
// (0..3) into the rep history, rotating it to the front.
func (e *Encoder) encodeRepMatch(rc *RangeEncoder, posState uint32, length uint32, repIndex int) {
	e.EncodeIsMatch(rc, posState, 1)
	rc.EncodeBit(&e.isRep[e.state], 1)

	if repIndex == 0 {
		rc.EncodeBit(&e.isRepG0[e.state], 0)
		if length == 1 {
			rc.EncodeBit(&e.isRep0Long[e.state][posState], 0)
			e.state = stateUpdateShortRep(e.state)
			return
		}
		rc.EncodeBit(&e.isRep0Long[e.state][posState], 1)
	} else {
		rc.EncodeBit(&e.isRepG0[e.state], 1)
		if repIndex == 1 {
			rc.EncodeBit(&e.isRepG1[e.state], 0)
		} else {
			rc.EncodeBit(&e.isRepG1[e.state], 1)
			if repIndex == 2 {
				rc.EncodeBit(&e.isRepG2[e.state], 0)
			} else {
				rc.EncodeBit(&e.isRepG2[e.state], 1)
			}
		}
		dist := e.reps[repIndex]
		copy(e.reps[1:repIndex+1], e.reps[0:repIndex])
		e.reps[0] = dist
	}

	e.repLenCoder.Encode(rc, length-matchMinLen, posState)
	e.state = stateUpdateRep(e.state)
}

// Table is the subset of radix.Table the optimizer needs.
type Table = radix.Table
