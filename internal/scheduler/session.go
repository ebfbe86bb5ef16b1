package scheduler

import (
	"hash/crc32"
	"io"
	"os"

	"github.com/radyx/radyx/internal/archive"
	"github.com/radyx/radyx/internal/bcj"
	"github.com/radyx/radyx/internal/dict"
	"github.com/radyx/radyx/internal/extindex"
	"github.com/radyx/radyx/internal/fileio"
	"github.com/radyx/radyx/internal/logging"
	"github.com/radyx/radyx/internal/lzma2"
	"github.com/radyx/radyx/internal/progress"
	"github.com/radyx/radyx/internal/radix"
	"github.com/radyx/radyx/internal/radyxerr"
	"github.com/radyx/radyx/internal/sevenz"
)

// Session owns one archive run: the prepared file list, the dictionary
// buffer, the container writer, and the progress/log sinks.
type Session struct {
	opts   Options
	log    *logging.Logger
	meter  progress.Meter
	buf    *dict.Buffer
	filter *bcj.X86
	writer *sevenz.Writer
	out    *archive.FileOutputStream

	tempSuffix string
	fileIndex  int
	units      []archive.DataUnit
}

// NewSession prepares a Session for writing outPath. The archive is
// written to a sibling temp file first and renamed into place on
// success, per the session-owns-its-temp-file-identity contract; on
// failure or interrupt the temp file is removed instead.
func NewSession(opts Options, log *logging.Logger, meter progress.Meter) *Session {
	var filters []dict.Filter
	var filter *bcj.X86
	if opts.UseBCJ {
		filter = bcj.New()
		filters = append(filters, filter)
	}
	return &Session{
		opts:       opts,
		log:        log,
		meter:      meter,
		buf:        dict.New(opts.DictionarySize, filters),
		filter:     filter,
		tempSuffix: tempSuffix(),
	}
}

// DataUnits returns the metadata recorded for every solid unit written
// so far, for callers (tests, a future listing command) that need to
// check the archive's bookkeeping against the file list.
func (s *Session) DataUnits() []archive.DataUnit {
	return append([]archive.DataUnit(nil), s.units...)
}

// Run archives entries (already Prepared) into outPath.
func (s *Session) Run(entries []Entry, outPath string) (err error) {
	tempPath := outPath + "." + s.tempSuffix + ".tmp"
	f, err := os.OpenFile(tempPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return radyxerr.WithPath(radyxerr.ErrIoOpen, tempPath)
	}
	s.out = archive.NewFileOutputStream(f)
	s.writer = sevenz.NewWriter(s.out, s.opts.lzmaParams())

	defer func() {
		closeErr := f.Close()
		if err != nil || (s.opts.Interrupt != nil && s.opts.Interrupt.IsSet()) {
			os.Remove(tempPath)
			return
		}
		if closeErr != nil {
			err = radyxerr.WithPath(radyxerr.ErrIoWrite, tempPath)
			os.Remove(tempPath)
			return
		}
		if renameErr := os.Rename(tempPath, outPath); renameErr != nil {
			err = radyxerr.WithPath(radyxerr.ErrIoWrite, outPath)
		}
	}()

	if err = s.writer.WriteSignaturePlaceholder(); err != nil {
		return radyxerr.WithPath(radyxerr.ErrIoWrite, outPath)
	}

	if err = s.runUnits(entries); err != nil {
		return err
	}

	if err = s.writer.Finalize(); err != nil {
		return radyxerr.WithPath(radyxerr.ErrIoWrite, outPath)
	}
	return nil
}

// runUnits groups entries into solid units per the unit policy and
// compresses each in turn.
func (s *Session) runUnits(entries []Entry) error {
	i := 0
	for i < len(entries) {
		var cur unitState
		start := i
		for i < len(entries) {
			r := entries[i].Record
			if cur.shouldClose(s.opts, r.ExtIndex, r.Size) {
				break
			}
			cur.add(r.ExtIndex, r.Size)
			i++
		}
		if err := s.runOneUnit(entries[start:i]); err != nil {
			return err
		}
	}
	return nil
}

// fileStream adapts one open file into archive.ArchiveStreamIn,
// tracking a running CRC-32 and bytes consumed so the caller can
// recover both once the file is exhausted.
type fileStream struct {
	fh        *os.File
	remaining uint64
	hasher    hashWriter
	n         int
}

// hashWriter is the subset of hash.Hash32 fileStream needs, named
// narrowly so fileStream doesn't have to import hash/crc32's full
// interface just to hold a CRC accumulator.
type hashWriter interface {
	Write(p []byte) (int, error)
	Sum32() uint32
}

var _ archive.ArchiveStreamIn = (*fileStream)(nil)

func newFileStream(fh *os.File, size uint64) *fileStream {
	return &fileStream{fh: fh, remaining: size, hasher: crc32.NewIEEE()}
}

// Read fills buffer with up to len(buffer) bytes, bounded by the
// file's declared remaining size, and folds what it read into the
// running CRC.
func (fs *fileStream) Read(buffer []byte) (int, error) {
	if fs.remaining == 0 {
		return 0, io.EOF
	}
	want := uint64(len(buffer))
	if want > fs.remaining {
		want = fs.remaining
	}
	n, err := io.ReadFull(fs.fh, buffer[:want])
	if n > 0 {
		fs.hasher.Write(buffer[:n])
		fs.remaining -= uint64(n)
		fs.n += n
	}
	if err == io.ErrUnexpectedEOF {
		// The file was shorter than its recorded size; treat what was
		// read as the whole file rather than failing the unit.
		fs.remaining = 0
		err = nil
	}
	return n, err
}

// Complete reports whether the file's declared size has been consumed.
func (fs *fileStream) Complete() bool { return fs.remaining == 0 }

func (fs *fileStream) crc() uint32 { return fs.hasher.Sum32() }

// unitWriter accumulates one solid unit's compressed stream across
// however many dictionary-buffer flushes its content needs, and
// records the resulting archive.DataUnit once the unit closes.
type unitWriter struct {
	s       *Session
	filters []dict.Filter

	packStart   int64
	packTotal   uint64
	unpackTotal uint64
	flushedAny  bool
}

// flush compresses the buffer's active region [BlockStart, processedEnd)
// and writes it directly to the session's output. final appends the
// LZMA2 end-of-stream marker and leaves the buffer in place; a
// non-final flush shifts the buffer by the configured overlap so the
// next fill can continue the dictionary window.
func (u *unitWriter) flush(final bool) error {
	s := u.s
	processedEnd := s.buf.RunFilters(u.filters, true)
	if final {
		// The last few bytes the filter could not classify are
		// compressed unfiltered at the end of the unit.
		processedEnd = s.buf.BlockEnd()
	}
	if processedEnd <= s.buf.BlockStart() && !final {
		return nil
	}

	table := radix.NewTable(processedEnd, s.opts.DictionarySize)
	finder := radix.New(s.buf.Bytes(), s.buf.BlockStart(), processedEnd, radix.Options{
		MaxDepth:    273,
		FastLength:  int(s.opts.FastLength),
		ThreadCount: s.opts.ThreadCount,
		Interrupt:   s.opts.Interrupt,
	})
	finder.Build(table)

	if s.opts.Interrupt != nil && s.opts.Interrupt.IsSet() {
		return radyxerr.ErrInterrupted
	}

	chunks, _, err := lzma2.CompressUnit(s.buf.Bytes(), s.buf.BlockStart(), processedEnd, lzma2.CompressOptions{
		Params:      s.opts.lzmaParams(),
		Table:       table,
		ThreadCount: s.opts.ThreadCount,
		Interrupt:   s.opts.Interrupt,
	})
	if err != nil {
		return err
	}
	if final {
		chunks = lzma2.WriteEOF(chunks)
	}

	if !u.flushedAny {
		u.packStart = s.out.Tell()
	}
	if _, err := s.out.Write(chunks); err != nil {
		return radyxerr.ErrIoWrite
	}
	u.packTotal += uint64(len(chunks))
	u.unpackTotal += uint64(processedEnd - s.buf.BlockStart())
	u.flushedAny = true

	if !final {
		// Bytes past processedEnd have not been filtered or compressed
		// yet: shift from processedEnd and put them back after the
		// retained overlap so the next pass starts with them.
		tail := append([]byte(nil), s.buf.Bytes()[processedEnd:s.buf.BlockEnd()]...)
		s.buf.Rewind(processedEnd)
		s.buf.Shift(s.opts.BlockOverlap)
		copy(s.buf.Bytes()[s.buf.BlockEnd():], tail)
		s.buf.Advance(len(tail))
	}
	return nil
}

// runOneUnit streams entries' file content into the dictionary buffer,
// flushing the encoder every time the buffer fills (so a unit's total
// size is never bounded by the dictionary size), runs the BCJ filter
// and match finder per flush, and records the unit's folder/file
// metadata with the container writer once every file has been read.
func (s *Session) runOneUnit(unit []Entry) error {
	if len(unit) == 0 {
		return nil
	}

	s.buf.Reset()
	useBCJ := s.filter != nil && extindex.IsExecutable(unit[0].Record.ExtIndex)
	if s.filter != nil && !useBCJ {
		// BCJ stays disabled for this unit; keep state clean for the
		// next one that re-enables it.
		s.filter.Reset()
	}
	var filters []dict.Filter
	if useBCJ {
		filters = []dict.Filter{s.filter}
	}

	u := &unitWriter{s: s, filters: filters}

	type fileRange struct {
		rec  *archive.FileRecord
		size int
	}
	var ranges []fileRange

	for _, e := range unit {
		r := e.Record
		fh, err := fileio.Open(r.RealPath())
		if err != nil {
			s.log.Warn("skipping %s: %v", r.RealPath(), err)
			s.meter.DecrementTotal(int64(r.Size))
			continue
		}

		fs := newFileStream(fh, r.Size)
		flushedThisFile := false
		var readErr error

		for !fs.Complete() {
			if s.opts.Interrupt != nil && s.opts.Interrupt.IsSet() {
				readErr = radyxerr.ErrInterrupted
				break
			}
			if s.buf.AvailableSpace() <= 0 {
				if err := u.flush(false); err != nil {
					fh.Close()
					return err
				}
				flushedThisFile = true
			}
			space := s.buf.AvailableSpace()
			dst := s.buf.Bytes()[s.buf.BlockEnd() : s.buf.BlockEnd()+space]
			n, err := fs.Read(dst)
			if n > 0 {
				s.buf.Advance(n)
			}
			if err != nil {
				if err == io.EOF {
					break
				}
				readErr = err
				break
			}
		}
		fh.Close()

		if readErr != nil {
			if readErr == radyxerr.ErrInterrupted {
				return readErr
			}
			if !flushedThisFile {
				// Nothing from this file has reached the output yet:
				// drop its buffered bytes and move on to the next file.
				s.buf.Rewind(s.buf.BlockEnd() - fs.n)
				s.log.Warn("skipping %s: %v", r.RealPath(), readErr)
				s.meter.DecrementTotal(int64(r.Size))
				continue
			}
			return radyxerr.WithPath(radyxerr.ErrIoUnrecoverable, r.RealPath())
		}

		r.CRC32 = fs.crc()
		r.Size = uint64(fs.n)
		r.Empty = fs.n == 0
		ranges = append(ranges, fileRange{rec: r, size: fs.n})
		s.meter.Add(int64(fs.n))
	}

	if len(ranges) == 0 {
		return nil
	}

	if u.unpackTotal > 0 || s.buf.BlockEnd() > s.buf.BlockStart() {
		if err := u.flush(true); err != nil {
			return err
		}
	}
	if u.unpackTotal == 0 {
		// Every file in the unit was empty; no folder to record, but
		// the files still need their (empty) entries in the file list.
		for _, r := range ranges {
			s.writer.AddFile(toFileEntry(r.rec, s.opts.StoreCreateTime))
		}
		s.fileIndex += len(ranges)
		return nil
	}

	folder := sevenz.Folder{
		Coders: []sevenz.FolderCoder{{
			Info: archive.NewSimpleCoderInfo([]byte{0x21}, []byte{sevenz.DictSizeProp(uint32(s.opts.DictionarySize))}),
		}},
		UnpackSizes: []uint64{u.unpackTotal},
	}
	lzma2Coder := folder.Coders[0].Info
	var bcjCoder archive.CoderInfo
	if useBCJ {
		id, _ := s.filter.CoderInfo()
		bcjCoder = archive.NewSimpleCoderInfo(id, nil)
		folder.Coders = append(folder.Coders, sevenz.FolderCoder{Info: bcjCoder})
		folder.UnpackSizes = append(folder.UnpackSizes, u.unpackTotal)
		folder.HasBindPair = true
	}

	// Empty files have no substream: only non-empty files are counted
	// and sized, and the last one's size is implicit.
	var subSizes []uint64
	var subCRCs []uint32
	var subDefined []bool
	for _, r := range ranges {
		if r.rec.Empty {
			continue
		}
		subSizes = append(subSizes, uint64(r.size))
		subCRCs = append(subCRCs, r.rec.CRC32)
		subDefined = append(subDefined, true)
	}
	numStreams := len(subSizes)
	subSizes = subSizes[:numStreams-1]

	s.writer.RecordUnit(u.packTotal, folder, numStreams, subSizes, subCRCs, subDefined)
	for _, r := range ranges {
		s.writer.AddFile(toFileEntry(r.rec, s.opts.StoreCreateTime))
	}

	s.units = append(s.units, archive.DataUnit{
		OutFilePos: uint64(u.packStart),
		UnpackSize: u.unpackTotal,
		PackSize:   u.packTotal,
		FileCount:  len(ranges),
		FirstFile:  s.fileIndex,
		LastFile:   s.fileIndex + len(ranges),
		Lzma2Coder: lzma2Coder,
		BcjCoder:   bcjCoder,
		UsedBCJ:    useBCJ,
	})
	s.fileIndex += len(ranges)

	return nil
}

func toFileEntry(r *archive.FileRecord, storeCTime bool) sevenz.FileEntry {
	fe := sevenz.FileEntry{Name: r.StoredPath(), Empty: r.Empty}
	if r.ModTime != nil {
		fe.HasMTime = true
		fe.MTime = toFiletime(*r.ModTime)
	}
	if storeCTime && r.CreationTime != nil {
		fe.HasCTime = true
		fe.CTime = toFiletime(*r.CreationTime)
	}
	if r.Attributes != nil {
		fe.HasAttrib = true
		fe.Attributes = *r.Attributes
	}
	return fe
}

// toFiletime converts a time.Time to Windows FILETIME ticks (100ns
// intervals since 1601-01-01), the unit 7z stores timestamps in.
func toFiletime(t interface{ UnixNano() int64 }) uint64 {
	const epochDiff = 116444736000000000 // 1601-01-01 to 1970-01-01, in 100ns ticks
	return uint64(t.UnixNano()/100) + epochDiff
}
