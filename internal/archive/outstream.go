package archive

import "os"

// FileOutputStream is the concrete OutputStream backed by an *os.File.
// It tracks a failure flag rather than propagating write errors as
// exceptions, matching the OutputStream contract.
type FileOutputStream struct {
	f       *os.File
	pos     int64
	failed  bool
	lastErr error
}

// NewFileOutputStream wraps f for sequential (and one out-of-order
// seek-to-0) writing.
func NewFileOutputStream(f *os.File) *FileOutputStream {
	return &FileOutputStream{f: f}
}

func (o *FileOutputStream) Write(p []byte) (int, error) {
	if o.failed {
		return 0, o.lastErr
	}
	n, err := o.f.Write(p)
	o.pos += int64(n)
	if err != nil {
		o.failed = true
		o.lastErr = err
	}
	return n, err
}

func (o *FileOutputStream) WriteByte(b byte) error {
	_, err := o.Write([]byte{b})
	return err
}

func (o *FileOutputStream) Tell() int64 {
	return o.pos
}

func (o *FileOutputStream) Seek(abs int64) error {
	if o.failed {
		return o.lastErr
	}
	if _, err := o.f.Seek(abs, 0); err != nil {
		o.failed = true
		o.lastErr = err
		return err
	}
	o.pos = abs
	return nil
}

func (o *FileOutputStream) Fail() bool {
	return o.failed
}

// Err returns the first write/seek error encountered, if any.
func (o *FileOutputStream) Err() error {
	return o.lastErr
}
