// Package fileio opens input files for the scheduler's per-file loop,
// opportunistically requesting O_NOATIME on platforms that support it
// and falling back to a default, portable open on any failure —
// per the open question: "open may fall back to default flags" is
// the full extent of the contract, the retry path itself is not
// specified behavior to match byte-for-byte.
package fileio

import "os"

// Open opens path for reading, trying the platform's opportunistic
// flags first (see fileio_linux.go / fileio_other.go) and retrying with
// a plain os.Open on any error, since the opportunistic flags can fail
// for reasons unrelated to the file itself (e.g. permission to skip
// atime updates).
func Open(path string) (*os.File, error) {
	if f, err := openOpportunistic(path); err == nil {
		return f, nil
	}
	return os.Open(path)
}
