package lzma2

import "testing"

func TestWriteUncompressedChunk_Header(t *testing.T) {
	data := make([]byte, 10)
	out := WriteUncompressedChunk(nil, data, true)
	if out[0] != ControlUncompressedReset {
		t.Fatalf("control byte = %#x, want reset", out[0])
	}
	size := uint32(out[1])<<8 | uint32(out[2])
	if int(size)+1 != len(data) {
		t.Fatalf("decoded size %d, want %d", size+1, len(data))
	}
	if len(out) != 3+len(data) {
		t.Fatalf("chunk length = %d, want %d", len(out), 3+len(data))
	}
}

func TestWriteCompressedChunk_Header(t *testing.T) {
	compressed := []byte{1, 2, 3, 4, 5}
	out := WriteCompressedChunk(nil, 100, compressed, resetStateNewPropDict, PropsByte(3, 0, 2))

	if out[0]&0x80 == 0 {
		t.Fatalf("control byte %#x missing high bit", out[0])
	}
	gotReset := resetKind((out[0] >> 5) & 3)
	if gotReset != resetStateNewPropDict {
		t.Fatalf("reset kind = %d, want %d", gotReset, resetStateNewPropDict)
	}

	u := (uint32(out[0]&0x1F) << 16) | uint32(out[1])<<8 | uint32(out[2])
	if int(u)+1 != 100 {
		t.Fatalf("uncompressed size = %d, want 100", u+1)
	}

	c := uint32(out[3])<<8 | uint32(out[4])
	if int(c)+1 != len(compressed) {
		t.Fatalf("compressed size = %d, want %d", c+1, len(compressed))
	}

	propsByte := out[5]
	if propsByte != PropsByte(3, 0, 2) {
		t.Fatalf("props byte = %#x, want %#x", propsByte, PropsByte(3, 0, 2))
	}

	tail := out[6:]
	if string(tail) != string(compressed) {
		t.Fatalf("compressed payload mismatch")
	}
}

func TestWriteCompressedChunk_NoPropsWhenNotReset(t *testing.T) {
	compressed := []byte{9, 9}
	out := WriteCompressedChunk(nil, 10, compressed, resetState, 0)
	// header is 5 bytes (no props byte) then payload
	if len(out) != 5+len(compressed) {
		t.Fatalf("chunk length = %d, want %d", len(out), 5+len(compressed))
	}
}

func TestPropsByte(t *testing.T) {
	// lc=3, lp=0, pb=2 is the conventional default.
	got := PropsByte(3, 0, 2)
	want := byte((2*5+0)*9 + 3)
	if got != want {
		t.Fatalf("PropsByte = %d, want %d", got, want)
	}
}

func TestWriteEOF(t *testing.T) {
	out := WriteEOF([]byte{1, 2})
	if out[len(out)-1] != ControlEOF {
		t.Fatalf("last byte = %#x, want EOF", out[len(out)-1])
	}
}
