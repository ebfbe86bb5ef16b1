// Package interrupt provides the single process-wide cancellation flag
// polled throughout the pipeline: set by
// the signal path, read with acquire semantics at every suspension
// point (match-finder list pops, encoder sub-range position checks,
// read/write boundaries).
package interrupt

import "sync/atomic"

// Flag is an atomic boolean. The zero value is "not set".
type Flag struct {
	v atomic.Bool
}

// Set marks the flag. Only the signal/cancellation path should call this.
func (f *Flag) Set() {
	f.v.Store(true)
}

// IsSet reports whether the flag has been set. All long loops and
// fallible paths should treat true as an error-equivalent condition.
func (f *Flag) IsSet() bool {
	return f.v.Load()
}

// Reset clears the flag, for reuse across archive sessions in the same process.
func (f *Flag) Reset() {
	f.v.Store(false)
}
