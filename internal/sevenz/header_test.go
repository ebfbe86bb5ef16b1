package sevenz

import (
	"bytes"
	"hash/crc32"
	"testing"

	"github.com/radyx/radyx/internal/archive"
)

func TestWriteBoolVector_PacksMSBFirst(t *testing.T) {
	got := writeBoolVector(nil, []bool{true, false, true, true, false, false, false, false})
	want := byte(0b10110000)
	if len(got) != 1 || got[0] != want {
		t.Fatalf("writeBoolVector = %08b, want %08b", got, want)
	}
}

func TestWriteBoolVector_PadsPartialByte(t *testing.T) {
	got := writeBoolVector(nil, []bool{true, true, true})
	want := byte(0b11100000)
	if len(got) != 1 || got[0] != want {
		t.Fatalf("writeBoolVector = %08b, want %08b", got, want)
	}
}

func TestWriteDigests_AllDefinedSkipsVector(t *testing.T) {
	got := writeDigests(nil, []bool{true, true}, []uint32{1, 2})
	if got[0] != 1 {
		t.Fatalf("expected all-defined flag byte 1, got %d", got[0])
	}
	if len(got) != 1+4+4 {
		t.Fatalf("length = %d, want 9", len(got))
	}
}

func TestWriteDigests_PartialDefinedWritesVector(t *testing.T) {
	got := writeDigests(nil, []bool{true, false, true}, []uint32{1, 2})
	if got[0] != 0 {
		t.Fatalf("expected all-defined flag byte 0, got %d", got[0])
	}
	// 1 flag byte + 1 bit-vector byte + 2*4 CRC bytes
	if len(got) != 1+1+8 {
		t.Fatalf("length = %d, want 10: % x", len(got), got)
	}
}

func TestHelloTxtCRC_MatchesSpecExample(t *testing.T) {
	content := []byte{0x48, 0x65, 0x6C, 0x6C, 0x6F, 0x0A}
	got := crc32.ChecksumIEEE(content)
	want := uint32(0x6B2F47A5)
	if got != want {
		t.Fatalf("CRC32(%x) = %#x, want %#x", content, got, want)
	}
}

func TestWriteFolder_SingleCoderNoBindPairs(t *testing.T) {
	f := Folder{
		Coders: []FolderCoder{{
			Info: archive.NewSimpleCoderInfo([]byte{0x21}, []byte{30}),
		}},
		UnpackSizes: []uint64{100},
	}
	out := writeFolder(nil, f)

	if out[0] != 1 {
		t.Fatalf("NumCoders = %d, want 1", out[0])
	}
	idFlags := out[1]
	if idFlags&0x0F != 1 {
		t.Fatalf("codec id size = %d, want 1", idFlags&0x0F)
	}
	if idFlags&0x10 != 0 {
		t.Fatalf("single coder folder should not be marked complex")
	}
	if idFlags&0x20 == 0 {
		t.Fatalf("expected attributes-present bit for a coder with props")
	}
	if out[2] != 0x21 {
		t.Fatalf("method id = %#x, want 0x21", out[2])
	}
}

func TestWriteFolder_TwoCoderHasBindPair(t *testing.T) {
	f := Folder{
		Coders: []FolderCoder{
			{Info: archive.NewSimpleCoderInfo([]byte{0x21}, []byte{30})},
			{Info: archive.NewSimpleCoderInfo([]byte{0x03, 0x03, 0x01, 0x03}, nil)},
		},
		UnpackSizes: []uint64{100, 100},
	}
	out := writeFolder(nil, f)
	if out[0] != 2 {
		t.Fatalf("NumCoders = %d, want 2", out[0])
	}
	// Presence of a bind pair is exercised indirectly: the function
	// should not panic and should produce more bytes than the
	// single-coder case for the same props length.
	if len(out) < 8 {
		t.Fatalf("unexpectedly short folder encoding: % x", out)
	}
}

func TestWriteHeader_SingleTinyFile(t *testing.T) {
	crc := crc32.ChecksumIEEE([]byte{0x48, 0x65, 0x6C, 0x6C, 0x6F, 0x0A})
	data := ArchiveData{
		Streams: StreamsInfo{
			PackPos:   0,
			PackSizes: []uint64{10},
			Folders: []Folder{{
				Coders:      []FolderCoder{{Info: archive.NewSimpleCoderInfo([]byte{0x21}, []byte{30})}},
				UnpackSizes: []uint64{6},
			}},
			NumUnpackStreams:    []int{1},
			SubStreamCRCs:       []uint32{crc},
			SubStreamCRCDefined: []bool{true},
		},
		Files: []FileEntry{
			{Name: "hello.txt"},
		},
	}
	out := WriteHeader(data)
	if out[0] != idHeader {
		t.Fatalf("first byte = %#x, want kHeader", out[0])
	}
	if !bytes.Contains(out, []byte{idFilesInfo}) {
		t.Fatalf("expected kFilesInfo in header stream")
	}
	if out[len(out)-1] != idEnd {
		t.Fatalf("last byte = %#x, want kEnd", out[len(out)-1])
	}
}

func TestBuildSignatureHeader_Layout(t *testing.T) {
	sig := buildSignatureHeader(100, 50, []byte{1, 2, 3})
	if len(sig) != signatureHeaderSize {
		t.Fatalf("signature header length = %d, want %d", len(sig), signatureHeaderSize)
	}
	if !bytes.Equal(sig[0:6], signatureMagic[:]) {
		t.Fatalf("magic mismatch: % x", sig[0:6])
	}
	if sig[6] != 0 || sig[7] != 3 {
		t.Fatalf("version = %d.%d, want 0.3", sig[6], sig[7])
	}
}

func TestLzma2DictSizeProp_RoundTripsMonotone(t *testing.T) {
	prev := uint32(0)
	for _, size := range []uint32{1 << 20, 1 << 24, 1 << 26, 1 << 28} {
		p := lzma2DictSizeProp(size)
		got := lzma2DictSizeForProp(p)
		if got < size {
			t.Fatalf("lzma2DictSizeForProp(%d) = %d, smaller than requested %d", p, got, size)
		}
		if uint32(p) < prev {
			t.Fatalf("prop not monotone: %d after previous", p)
		}
		prev = uint32(p)
	}
}
