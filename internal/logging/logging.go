// Package logging provides the archiver's warning list and end-of-run
// summary, carried on the standard library rather than a third-party
// logger: the one application-scale repo in the retrieval pack
// (rpcpool-yellowstone-faithful) itself logs through leveled
// log.Printf-style helpers rather than a structured logging library.
package logging

import (
	"fmt"
	"log"
	"os"
	"sync"
)

// Logger collects per-file warnings (e.g. a skipped file)
// without aborting the run, and prints an end-of-run summary.
type Logger struct {
	std *log.Logger

	mu       sync.Mutex
	warnings []string
}

// New returns a Logger writing to os.Stderr with no timestamp prefix,
// matching a CLI tool's convention of leaving timing to the caller's
// shell.
func New() *Logger {
	return &Logger{std: log.New(os.Stderr, "", 0)}
}

// Warn records a warning and prints it immediately, prefixed the way
// the archiver reports a per-file problem without failing the run.
func (l *Logger) Warn(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	l.mu.Lock()
	l.warnings = append(l.warnings, msg)
	l.mu.Unlock()
	l.std.Printf("warning: %s", msg)
}

// Errorf prints a hard failure message; the caller still decides
// whether to exit non-zero.
func (l *Logger) Errorf(format string, args ...any) {
	l.std.Printf("error: "+format, args...)
}

// Warnings returns every warning recorded so far, for the end-of-run summary.
func (l *Logger) Warnings() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.warnings...)
}

// Summary prints a one-line count of warnings, if any were recorded.
func (l *Logger) Summary() {
	n := len(l.Warnings())
	if n == 0 {
		return
	}
	l.std.Printf("%d warning(s)", n)
}
