// Package progress wraps schollz/progressbar/v3 behind a small
// interface so the scheduler depends on a contract rather than the
// library directly, matching the progress-meter contract described for
// the scheduler: a running total, atomic byte-count adds, and a
// decrement when a file is skipped.
package progress

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/schollz/progressbar/v3"
)

// Meter is the scheduler's view of a progress indicator.
type Meter interface {
	// Add advances the meter by n bytes.
	Add(n int64)
	// DecrementTotal reduces the expected total by n bytes, used when a
	// file is skipped after being counted into the initial total.
	DecrementTotal(n int64)
	// Finish marks the meter complete; it prints no summary line of its
	// own (see FormatSummary).
	Finish()
}

// barMeter is the concrete Meter backed by a schollz/progressbar/v3 bar.
type barMeter struct {
	bar   *progressbar.ProgressBar
	total int64
}

// New returns a Meter over totalBytes, writing to w.
func New(w io.Writer, totalBytes int64) Meter {
	bar := progressbar.NewOptions64(totalBytes,
		progressbar.OptionSetWriter(w),
		progressbar.OptionShowBytes(true),
		progressbar.OptionSetDescription("compressing"),
		progressbar.OptionThrottle(100_000_000),
	)
	return &barMeter{bar: bar, total: totalBytes}
}

func (m *barMeter) Add(n int64) {
	_ = m.bar.Add64(n)
}

func (m *barMeter) DecrementTotal(n int64) {
	m.total -= n
	m.bar.ChangeMax64(m.total)
}

func (m *barMeter) Finish() {
	_ = m.bar.Finish()
}

// NoOp is a Meter that discards all updates, used when the CLI's quiet
// flag (-q) is set.
type NoOp struct{}

func (NoOp) Add(int64)            {}
func (NoOp) DecrementTotal(int64) {}
func (NoOp) Finish()              {}

// FormatSummary renders a human-readable "N files, S compressed to T"
// style line for the end-of-run report.
func FormatSummary(fileCount int, inputBytes, outputBytes uint64) string {
	return fmt.Sprintf("%d files, %s -> %s", fileCount,
		humanize.Bytes(inputBytes), humanize.Bytes(outputBytes))
}
