package dict

import (
	"bytes"
	"testing"
)

func TestAsyncPair_FillAndSwap(t *testing.T) {
	p := NewAsyncPair(16, nil)

	active := p.Active()
	src1 := bytes.NewReader([]byte("0123456789ABCDEF"))
	if _, err := active.ReadInto(src1); err != nil {
		t.Fatalf("ReadInto: %v", err)
	}

	src2 := bytes.NewReader([]byte("ghijklmnopqrstuv"))
	p.StartFill(src2, 4)
	if err := p.WaitFill(); err != nil {
		t.Fatalf("WaitFill: %v", err)
	}

	p.Swap()
	newActive := p.Active()

	wantOverlap := []byte("CDEF")
	gotOverlap := newActive.Bytes()[:4]
	if !bytes.Equal(gotOverlap, wantOverlap) {
		t.Fatalf("carried overlap = %q, want %q", gotOverlap, wantOverlap)
	}
}
