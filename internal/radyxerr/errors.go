// Package radyxerr defines the error kinds shared across the archiver.
//
// Each kind is a sentinel that callers can match with errors.Is; the
// propagation policy for each kind (log-and-skip vs. fatal) lives with
// the caller, not here.
package radyxerr

import "errors"

// Sentinel error kinds (spec §7).
var (
	// ErrInvalidArgument marks a CLI/option parsing failure.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrIoOpen marks a failure to open an input file.
	ErrIoOpen = errors.New("io: open failed")
	// ErrIoRead marks a failure reading an input file.
	ErrIoRead = errors.New("io: read failed")
	// ErrIoWrite marks a failure writing the output archive.
	ErrIoWrite = errors.New("io: write failed")
	// ErrIoUnrecoverable marks a read failure mid-file after bytes were
	// already flushed to the output; the unit cannot be salvaged.
	ErrIoUnrecoverable = errors.New("io: unrecoverable failure mid-file")
	// ErrOutOfMemory marks an allocation failure.
	ErrOutOfMemory = errors.New("out of memory")
	// ErrNameCollision marks two input entries resolving to the same
	// stored archive path.
	ErrNameCollision = errors.New("name collision")
	// ErrArchiveExists marks an attempt to overwrite an existing archive.
	ErrArchiveExists = errors.New("archive already exists")
	// ErrInterrupted marks a user- or signal-triggered cancellation.
	ErrInterrupted = errors.New("interrupted")
)

// PathError wraps one of the sentinel kinds with the file path it concerns.
type PathError struct {
	Kind error
	Path string
}

func (e *PathError) Error() string {
	if e.Path == "" {
		return e.Kind.Error()
	}
	return e.Kind.Error() + ": " + e.Path
}

func (e *PathError) Unwrap() error {
	return e.Kind
}

// WithPath wraps kind with the offending path.
func WithPath(kind error, path string) error {
	return &PathError{Kind: kind, Path: path}
}
