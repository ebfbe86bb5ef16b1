package sevenz

import (
	"hash/crc32"

	"github.com/radyx/radyx/internal/archive"
	"github.com/radyx/radyx/internal/lzma2"
)

// signatureHeaderSize is the fixed 32-byte reserved region at the
// start of every 7z file.
const signatureHeaderSize = 32

// Writer drives the 7z container: it reserves the signature header,
// lets the caller stream each unit's compressed bytes directly to the
// output, then builds and compresses the Header database and rewinds
// to patch in the signature header.
type Writer struct {
	out    archive.OutputStream
	data   ArchiveData
	params lzma2.Params
}

// NewWriter returns a Writer over out. params configures the LZMA2
// encoder used to compress the header itself.
func NewWriter(out archive.OutputStream, params lzma2.Params) *Writer {
	return &Writer{out: out, params: params}
}

// WriteSignaturePlaceholder reserves the first 32 bytes of the output
// file with zeros; the real signature header is patched in by
// Finalize once the header offset and sizes are known.
func (w *Writer) WriteSignaturePlaceholder() error {
	var zeros [signatureHeaderSize]byte
	_, err := w.out.Write(zeros[:])
	return err
}

// RecordUnit appends one completed solid unit's folder/file metadata,
// in file-list order, to the archive's pending header data. Callers
// pass one Folder (with BCJ as the optional second coder) and the
// slice of FileEntry/sizes/CRCs belonging to that unit.
func (w *Writer) RecordUnit(packSize uint64, folder Folder, numFilesInUnit int, subSizes []uint64, subCRCs []uint32, subCRCDefined []bool) {
	w.data.Streams.PackSizes = append(w.data.Streams.PackSizes, packSize)
	w.data.Streams.Folders = append(w.data.Streams.Folders, folder)
	w.data.Streams.NumUnpackStreams = append(w.data.Streams.NumUnpackStreams, numFilesInUnit)
	w.data.Streams.SubStreamSizes = append(w.data.Streams.SubStreamSizes, subSizes...)
	w.data.Streams.SubStreamCRCs = append(w.data.Streams.SubStreamCRCs, subCRCs...)
	w.data.Streams.SubStreamCRCDefined = append(w.data.Streams.SubStreamCRCDefined, subCRCDefined...)
}

// AddFile appends one file-list entry (independent of unit boundaries;
// FilesInfo covers every file regardless of which unit holds its data).
func (w *Writer) AddFile(f FileEntry) {
	w.data.Files = append(w.data.Files, f)
}

// Finalize builds the Header structure, compresses it through a fresh
// LZMA2 stream, writes the uncompressed HeaderHeader describing where
// to find it, and rewinds to write the real signature header. The
// caller must have already written every unit's pack stream directly
// to out before calling Finalize.
func (w *Writer) Finalize() error {
	w.data.Streams.PackPos = 0

	headerBytes := WriteHeader(w.data)

	headerStartOffset := w.out.Tell() - signatureHeaderSize

	compressedHeader, _, err := lzma2.CompressUnit(headerBytes, 0, len(headerBytes), lzma2.CompressOptions{
		Params:      w.params,
		Table:       noMatchTable{},
		ThreadCount: 1,
	})
	if err != nil {
		return err
	}
	compressedHeader = lzma2.WriteEOF(compressedHeader)

	if _, err := w.out.Write(compressedHeader); err != nil {
		return err
	}

	encodedHeaderDesc := buildEncodedHeaderDesc(uint64(headerStartOffset), uint64(len(headerBytes)), uint64(len(compressedHeader)), w.params)

	headerHeaderOffset := w.out.Tell() - signatureHeaderSize
	if _, err := w.out.Write(encodedHeaderDesc); err != nil {
		return err
	}
	headerHeaderSize := uint64(len(encodedHeaderDesc))

	sig := buildSignatureHeader(uint64(headerHeaderOffset), headerHeaderSize, encodedHeaderDesc)
	if err := w.out.Seek(0); err != nil {
		return err
	}
	_, err = w.out.Write(sig)
	return err
}

// buildEncodedHeaderDesc writes the tiny uncompressed structure that
// tells a reader "the real header is compressed with LZMA2 at this
// offset/size": kEncodedHeader plus a one-folder, one-coder
// StreamsInfo whose single pack stream is the compressed header.
func buildEncodedHeaderDesc(headerOffset, rawHeaderSize, compressedSize uint64, params lzma2.Params) []byte {
	var out []byte
	out = append(out, idEncodedHeader)
	s := StreamsInfo{
		PackPos:   headerOffset,
		PackSizes: []uint64{compressedSize},
		Folders: []Folder{{
			Coders: []FolderCoder{{
				Info: archive.NewSimpleCoderInfo([]byte{0x21}, []byte{lzma2DictSizeProp(params.DictSize)}),
			}},
			UnpackSizes: []uint64{rawHeaderSize},
		}},
	}
	out = writePackInfo(out, s)
	out = writeUnpackInfo(out, s)
	out = append(out, idEnd) // close StreamsInfo (no SubStreamsInfo needed: one folder, one file)
	out = append(out, idEnd) // close Header
	return out
}

// DictSizeProp encodes a dictionary size into LZMA2's single property
// byte; exported so callers building FolderCoder entries for their own
// data coders (outside of Finalize's header-stream coder) can match
// the same encoding.
func DictSizeProp(dictSize uint32) byte {
	return lzma2DictSizeProp(dictSize)
}

// lzma2DictSizeProp encodes a dictionary size into LZMA2's single
// property byte: a mantissa/exponent encoding where 40 means
// 0xFFFFFFFF (unbounded) and a value p below that means
// (2 | p&1) << (p/2 + 11), matching the format's conventional encoding.
func lzma2DictSizeProp(dictSize uint32) byte {
	if dictSize >= 0xFFFFFFFF-1 {
		return 40
	}
	for i := byte(0); i < 40; i++ {
		size := lzma2DictSizeForProp(i)
		if size >= dictSize {
			return i
		}
	}
	return 40
}

func lzma2DictSizeForProp(p byte) uint32 {
	if p > 40 {
		p = 40
	}
	if p == 40 {
		return 0xFFFFFFFF
	}
	bits := uint(p/2 + 11)
	base := uint32(2|p&1) << bits
	return base
}

func buildSignatureHeader(headerOffset, headerSize uint64, headerBytes []byte) []byte {
	var rest []byte
	rest = writeUint64Fixed(rest, headerOffset)
	rest = writeUint64Fixed(rest, headerSize)
	headerCRC := crc32.ChecksumIEEE(headerBytes)
	rest = writeUint32(rest, headerCRC)

	startCRC := crc32.ChecksumIEEE(rest)

	sig := make([]byte, 0, signatureHeaderSize)
	sig = append(sig, signatureMagic[:]...)
	sig = append(sig, 0, 3) // major.minor version
	sig = writeUint32(sig, startCRC)
	sig = append(sig, rest...)
	return sig
}

// noMatchTable is a radix.Table that reports no matches anywhere,
// appropriate for compressing the small, rarely-repetitive header
// stream with literals-and-reps only rather than running the full
// match finder over a few hundred bytes.
type noMatchTable struct{}

func (noMatchTable) Get(p int) (uint32, uint32)     { return 0, 0 }
func (noMatchTable) SetIfLonger(p int, d, l uint32) {}
func (noMatchTable) Len() int                       { return 0 }
