package lzma2

// LZMA2 chunk control-byte values and size limits, matching the
// widely deployed format referenced by 7z method id 0x21.
const (
	ControlEOF              = 0x00
	ControlUncompressedReset = 0x01
	ControlUncompressedNoReset = 0x02

	// MaxUncompressedChunk is the largest uncompressed payload a single
	// chunk (of either kind) may carry.
	MaxUncompressedChunk = 1 << 16
	// MaxCompressedChunk is the largest compressed payload a single
	// LZMA chunk may carry.
	MaxCompressedChunk = 1 << 16
)

// resetKind classifies what an LZMA chunk's control byte resets.
type resetKind int

const (
	resetNone resetKind = iota
	resetState
	resetStateNewProp
	resetStateNewPropDict
)

// WriteUncompressedChunk appends an LZMA2 uncompressed chunk for
// data (at most MaxUncompressedChunk bytes) to out.
func WriteUncompressedChunk(out []byte, data []byte, dictReset bool) []byte {
	n := len(data)
	control := byte(ControlUncompressedNoReset)
	if dictReset {
		control = ControlUncompressedReset
	}
	out = append(out, control)
	size := uint32(n - 1)
	out = append(out, byte(size>>8), byte(size))
	out = append(out, data...)
	return out
}

// WriteCompressedChunk appends an LZMA2 compressed chunk header
// followed by compressed (the range-coded bytes) to out. uncompLen is
// the number of source bytes the chunk represents; propsByte is
// written only when reset is resetStateNewProp or resetStateNewPropDict.
func WriteCompressedChunk(out []byte, uncompLen int, compressed []byte, reset resetKind, propsByte byte) []byte {
	control := byte(0x80)
	control |= byte(reset) << 5
	u := uint32(uncompLen - 1)
	control |= byte(u >> 16)
	out = append(out, control)
	out = append(out, byte(u>>8), byte(u))

	c := uint32(len(compressed) - 1)
	out = append(out, byte(c>>8), byte(c))

	if reset == resetStateNewProp || reset == resetStateNewPropDict {
		out = append(out, propsByte)
	}
	out = append(out, compressed...)
	return out
}

// WriteEOF appends the single EOF control byte.
func WriteEOF(out []byte) []byte {
	return append(out, ControlEOF)
}

// PropsByte encodes lc, lp, pb into the single LZMA properties byte
// used by the LZMA2 "new prop" reset and by the 7z LZMA2 coder's
// dictionary-size-only property (LZMA2's own props byte is just the
// dictionary size encoding, handled by the 7z writer; this helper is
// for the inner LZMA chunk's lc/lp/pb triple, same formula as LZMA1).
func PropsByte(lc, lp, pb uint32) byte {
	return byte((pb*5+lp)*9 + lc)
}
