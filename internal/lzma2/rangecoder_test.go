package lzma2

import "testing"

func TestRangeEncoder_EncodeBitProducesOutput(t *testing.T) {
	e := NewRangeEncoder()
	p := prob(bitModelTotal / 2)
	for i := 0; i < 64; i++ {
		e.EncodeBit(&p, uint32(i%2))
	}
	e.Flush()
	if len(e.Bytes()) == 0 {
		t.Fatalf("expected output bytes after flush")
	}
}

func TestRangeEncoder_ProbabilityAdaptsTowardFrequentBit(t *testing.T) {
	e := NewRangeEncoder()
	p := prob(bitModelTotal / 2)
	for i := 0; i < 200; i++ {
		e.EncodeBit(&p, 0)
	}
	if p <= bitModelTotal/2 {
		t.Fatalf("probability did not move toward the frequent bit: %d", p)
	}
}

func TestRangeEncoder_ResetClearsBuffer(t *testing.T) {
	e := NewRangeEncoder()
	p := prob(bitModelTotal / 2)
	for i := 0; i < 10; i++ {
		e.EncodeBit(&p, 1)
	}
	e.Flush()
	if len(e.Bytes()) == 0 {
		t.Fatalf("expected bytes before reset")
	}
	e.Reset()
	if len(e.Bytes()) != 0 {
		t.Fatalf("Reset did not clear buffer")
	}
}

func TestBitTreeEncode_DoesNotPanic(t *testing.T) {
	e := NewRangeEncoder()
	probs := newProbs(1 << 8)
	BitTreeEncode(e, probs, 8, 0xAB)
	BitTreeReverseEncode(e, probs, 8, 0xCD)
	e.Flush()
	if len(e.Bytes()) == 0 {
		t.Fatalf("expected output")
	}
}

func TestEncodeDirectBits_DoesNotPanic(t *testing.T) {
	e := NewRangeEncoder()
	e.EncodeDirectBits(0x5A, 8)
	e.Flush()
	if len(e.Bytes()) == 0 {
		t.Fatalf("expected output")
	}
}
