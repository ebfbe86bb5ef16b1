package sevenz

import "unicode/utf16"

// ArchiveData is everything WriteHeader needs to build the in-memory
// Header byte stream for one archive: the streams (pack/unpack/substream
// info) and the file list.
type ArchiveData struct {
	Streams StreamsInfo
	Files   []FileEntry
}

// WriteHeader builds the full 7z Header property stream (kHeader plus
// kMainStreamsInfo and kFilesInfo), ready to be compressed by the
// LZMA2 encoder as the archive's encoded header.
func WriteHeader(d ArchiveData) []byte {
	var out []byte
	out = append(out, idHeader)
	out = writeStreamsInfo(out, d.Streams)
	out = writeFilesInfo(out, d.Files)
	out = append(out, idEnd)
	return out
}

func writeStreamsInfo(out []byte, s StreamsInfo) []byte {
	out = append(out, idMainStreamsInfo)
	out = writePackInfo(out, s)
	out = writeUnpackInfo(out, s)
	out = writeSubStreamsInfo(out, s)
	out = append(out, idEnd)
	return out
}

func writePackInfo(out []byte, s StreamsInfo) []byte {
	out = append(out, idPackInfo)
	out = writeUint64(out, s.PackPos)
	out = writeUint64(out, uint64(len(s.PackSizes)))

	out = append(out, idSize)
	for _, sz := range s.PackSizes {
		out = writeUint64(out, sz)
	}
	out = append(out, idEnd)
	return out
}

func writeUnpackInfo(out []byte, s StreamsInfo) []byte {
	out = append(out, idUnpackInfo)
	out = append(out, idFolder)
	out = writeUint64(out, uint64(len(s.Folders)))
	out = append(out, 0) // External = 0, folders stored inline

	for _, f := range s.Folders {
		out = writeFolder(out, f)
	}

	out = append(out, idCodersUnpackSize)
	for _, f := range s.Folders {
		for _, sz := range f.UnpackSizes {
			out = writeUint64(out, sz)
		}
	}

	hasCRC := false
	for _, f := range s.Folders {
		if f.UnpackCRC != nil {
			hasCRC = true
			break
		}
	}
	if hasCRC {
		out = append(out, idCRC)
		defined := make([]bool, len(s.Folders))
		var crcs []uint32
		for i, f := range s.Folders {
			if f.UnpackCRC != nil {
				defined[i] = true
				crcs = append(crcs, *f.UnpackCRC)
			}
		}
		out = writeDigests(out, defined, crcs)
	}

	out = append(out, idEnd)
	return out
}

func writeFolder(out []byte, f Folder) []byte {
	out = writeUint64(out, uint64(len(f.Coders)))

	totalOut := 0
	totalIn := 0
	for _, c := range f.Coders {
		info := c.Info
		idFlags := byte(len(info.MethodID)) & 0x0F
		complex := info.Complex()
		if complex {
			idFlags |= 0x10
		}
		hasProps := len(info.Props) > 0
		if hasProps {
			idFlags |= 0x20
		}
		out = append(out, idFlags)
		out = append(out, info.MethodID...)
		if complex {
			out = writeUint64(out, uint64(info.NumInStreams))
			out = writeUint64(out, uint64(info.NumOutStreams))
			totalIn += info.NumInStreams
			totalOut += info.NumOutStreams
		} else {
			totalIn++
			totalOut++
		}
		if hasProps {
			out = writeUint64(out, uint64(len(info.Props)))
			out = append(out, info.Props...)
		}
	}

	// A two-coder folder is BCJ -> LZMA2: coder 0 is LZMA2 (its input
	// is the packed stream), coder 1 is BCJ (its output is the
	// folder's final output). Bind pair (inIndex, outIndex) says
	// "coder input at inIndex is bound to coder output at outIndex".
	numBindPairs := totalOut - 1
	if numBindPairs > 0 {
		// BCJ (coder 1) input 1 is bound to LZMA2 (coder 0) output 0.
		out = writeUint64(out, 1)
		out = writeUint64(out, 0)
	}

	numPackedStreams := totalIn - numBindPairs
	if numPackedStreams > 1 {
		// Index of the folder's remaining free input stream(s); with
		// exactly one BCJ+LZMA2 pair there is exactly one packed
		// stream (LZMA2's input, index 0) and this is not reached.
		for i := 0; i < numPackedStreams; i++ {
			out = writeUint64(out, uint64(i+1))
		}
	}
	return out
}

func writeSubStreamsInfo(out []byte, s StreamsInfo) []byte {
	out = append(out, idSubStreamsInfo)

	out = append(out, idNumUnpackStream)
	for _, n := range s.NumUnpackStreams {
		out = writeUint64(out, uint64(n))
	}

	// Sizes: for each folder, all but the last file's size (the last
	// is derived from the folder's total unpack size minus the sum of
	// the others).
	out = append(out, idSize)
	idx := 0
	for _, n := range s.NumUnpackStreams {
		if n <= 0 {
			continue
		}
		for i := 0; i < n-1; i++ {
			out = writeUint64(out, s.SubStreamSizes[idx])
			idx++
		}
		idx++ // skip the implicit last size, not stored
	}

	if len(s.SubStreamCRCs) > 0 {
		out = append(out, idCRC)
		out = writeDigests(out, s.SubStreamCRCDefined, definedOnly(s.SubStreamCRCs, s.SubStreamCRCDefined))
	}

	out = append(out, idEnd)
	return out
}

func definedOnly(crcs []uint32, defined []bool) []uint32 {
	var out []uint32
	for i, d := range defined {
		if d {
			out = append(out, crcs[i])
		}
	}
	return out
}

// writeDigests writes a CRC digest block: an all-defined flag byte (1
// if every entry in defined is true, skipping the explicit bit
// vector), then one 4-byte little-endian CRC per defined entry.
func writeDigests(out []byte, defined []bool, crcs []uint32) []byte {
	allDefined := true
	for _, d := range defined {
		if !d {
			allDefined = false
			break
		}
	}
	if allDefined {
		out = append(out, 1)
	} else {
		out = append(out, 0)
		out = writeBoolVector(out, defined)
	}
	for _, c := range crcs {
		out = writeUint32(out, c)
	}
	return out
}

// writeBoolVector packs one bit per entry, MSB-first, 8 per byte.
func writeBoolVector(out []byte, bits []bool) []byte {
	var cur byte
	var n int
	for _, b := range bits {
		cur <<= 1
		if b {
			cur |= 1
		}
		n++
		if n == 8 {
			out = append(out, cur)
			cur = 0
			n = 0
		}
	}
	if n > 0 {
		cur <<= uint(8 - n)
		out = append(out, cur)
	}
	return out
}

func writeFilesInfo(out []byte, files []FileEntry) []byte {
	out = append(out, idFilesInfo)
	out = writeUint64(out, uint64(len(files)))

	var emptyStream []bool
	anyEmptyStream := false
	for _, f := range files {
		emptyStream = append(emptyStream, f.Empty)
		if f.Empty {
			anyEmptyStream = true
		}
	}
	if anyEmptyStream {
		out = append(out, idEmptyStream)
		body := writeBoolVector(nil, emptyStream)
		out = writeUint64(out, uint64(len(body)))
		out = append(out, body...)

		// Every empty-stream entry is also an "empty file" (a real,
		// zero-length file rather than a directory marker); since this
		// archiver never stores directory entries, all empty streams
		// are empty files.
		numEmpty := 0
		for _, b := range emptyStream {
			if b {
				numEmpty++
			}
		}
		allEmpty := make([]bool, numEmpty)
		for i := range allEmpty {
			allEmpty[i] = true
		}
		out = append(out, idEmptyFile)
		body = writeBoolVector(nil, allEmpty)
		out = writeUint64(out, uint64(len(body)))
		out = append(out, body...)
	}

	out = append(out, idName)
	nameBody := writeNames(files)
	out = writeUint64(out, uint64(len(nameBody)))
	out = append(out, nameBody...)

	if body, ok := writeTimeProperty(files, func(f FileEntry) (bool, uint64) { return f.HasMTime, f.MTime }); ok {
		out = append(out, idMTime)
		out = writeUint64(out, uint64(len(body)))
		out = append(out, body...)
	}
	if body, ok := writeTimeProperty(files, func(f FileEntry) (bool, uint64) { return f.HasCTime, f.CTime }); ok {
		out = append(out, idCTime)
		out = writeUint64(out, uint64(len(body)))
		out = append(out, body...)
	}
	if body, ok := writeAttributesProperty(files); ok {
		out = append(out, idWinAttributes)
		out = writeUint64(out, uint64(len(body)))
		out = append(out, body...)
	}

	out = append(out, idEnd)
	return out
}

func writeNames(files []FileEntry) []byte {
	var body []byte
	body = append(body, 0) // External = 0
	for _, f := range files {
		units := utf16.Encode([]rune(f.Name))
		for _, u := range units {
			body = append(body, byte(u), byte(u>>8))
		}
		body = append(body, 0, 0) // NUL terminator
	}
	return body
}

func writeTimeProperty(files []FileEntry, get func(FileEntry) (bool, uint64)) ([]byte, bool) {
	defined := make([]bool, len(files))
	any := false
	for i, f := range files {
		has, _ := get(f)
		defined[i] = has
		any = any || has
	}
	if !any {
		return nil, false
	}
	var body []byte
	allDefined := true
	for _, d := range defined {
		if !d {
			allDefined = false
			break
		}
	}
	if allDefined {
		body = append(body, 1)
	} else {
		body = append(body, 0)
		body = writeBoolVector(body, defined)
	}
	body = append(body, 0) // External = 0
	for i, f := range files {
		if !defined[i] {
			continue
		}
		_, v := get(f)
		body = writeUint64Fixed(body, v)
	}
	return body, true
}

func writeAttributesProperty(files []FileEntry) ([]byte, bool) {
	defined := make([]bool, len(files))
	any := false
	for i, f := range files {
		defined[i] = f.HasAttrib
		any = any || f.HasAttrib
	}
	if !any {
		return nil, false
	}
	var body []byte
	allDefined := true
	for _, d := range defined {
		if !d {
			allDefined = false
			break
		}
	}
	if allDefined {
		body = append(body, 1)
	} else {
		body = append(body, 0)
		body = writeBoolVector(body, defined)
	}
	body = append(body, 0) // External = 0
	for i, f := range files {
		if !defined[i] {
			continue
		}
		body = writeUint32(body, f.Attributes)
	}
	return body, true
}
