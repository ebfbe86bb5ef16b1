package dict

import (
	"io"
	"sync"
)

// AsyncPair holds two Buffers that swap the active/compressing role
// each unit: while one buffer compresses, a background goroutine fills
// the other, so the next unit's data is ready by the time the encoder
// asks for it. Grounded on sliding_window_pool.go
// (sync.Pool-backed dictionary reuse), generalized from buffer pooling
// to a fixed pair of roles with an explicit fill-ahead goroutine.
type AsyncPair struct {
	bufs    [2]*Buffer
	active  int
	mu      sync.Mutex
	filling bool
	fillErr error
	done    chan struct{}
}

// NewAsyncPair allocates both buffers with the given main size and
// filter set.
func NewAsyncPair(mainSize int, filters []Filter) *AsyncPair {
	return &AsyncPair{
		bufs: [2]*Buffer{
			New(mainSize, filters),
			New(mainSize, filters),
		},
	}
}

// Active returns the buffer currently being consumed by the encoder.
func (p *AsyncPair) Active() *Buffer {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.bufs[p.active]
}

// StartFill kicks off a background read-ahead into the inactive
// buffer, carrying overlap bytes forward from the active buffer before
// the active buffer is swapped in. The read runs in its own goroutine;
// call WaitFill before Swap to ensure it has finished.
func (p *AsyncPair) StartFill(r io.Reader, overlap int) {
	p.mu.Lock()
	inactive := p.bufs[1-p.active]
	activeBuf := p.bufs[p.active]
	p.mu.Unlock()

	// Carry the overlap tail from the active buffer into the inactive
	// one before filling, so the read thread never touches the
	// compressing buffer's own storage.
	tailLen := activeBuf.blockEnd - overlap
	if tailLen < 0 {
		tailLen = 0
	}
	if max := inactive.mainSize; activeBuf.blockEnd-tailLen > max {
		tailLen = activeBuf.blockEnd - max
	}
	n := activeBuf.blockEnd - tailLen
	copy(inactive.data[0:n], activeBuf.data[tailLen:activeBuf.blockEnd])
	inactive.blockStart = overlap
	if n < overlap {
		inactive.blockStart = n
	}
	inactive.blockEnd = n

	p.mu.Lock()
	p.filling = true
	p.fillErr = nil
	p.done = make(chan struct{})
	p.mu.Unlock()

	go func() {
		defer close(p.done)
		_, err := inactive.ReadInto(r)
		p.mu.Lock()
		p.filling = false
		p.fillErr = err
		p.mu.Unlock()
	}()
}

// WaitFill blocks until a prior StartFill completes and returns its
// error, if any. Calling WaitFill with no fill in progress is a no-op.
func (p *AsyncPair) WaitFill() error {
	p.mu.Lock()
	done := p.done
	p.mu.Unlock()
	if done == nil {
		return nil
	}
	<-done
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.fillErr
}

// Swap makes the previously-filling buffer active. Callers must have
// called WaitFill first.
func (p *AsyncPair) Swap() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.active = 1 - p.active
}
