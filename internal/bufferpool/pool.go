// Package bufferpool provides a bounded free-list of reusable byte buffers,
// reducing steady-state allocator pressure on a proxy's hot packet path.
package bufferpool

const defaultCapacity = 16 * 1024

// Pool is a bounded free-list of *[]byte buffers, backed by a buffered
// channel so its size is exact rather than advisory (unlike sync.Pool, whose
// retained-item count the runtime is free to discard at any GC).
//
// maxCap bounds the capacity a released buffer is allowed to retain; a
// buffer released above that is dropped instead of pooled, so one outsized
// packet doesn't permanently inflate the pool's steady-state footprint.
type Pool struct {
	free   chan *[]byte
	maxCap int
}

// New creates a Pool holding at most maxRetained buffers, each retained at
// up to maxCap bytes of capacity.
func New(maxCap int, maxRetained int) *Pool {
	return &Pool{
		free:   make(chan *[]byte, maxRetained),
		maxCap: maxCap,
	}
}

// Acquire returns a cleared buffer with capacity at least minCapacity,
// pulling from the free list when possible and allocating otherwise (pool
// empty, or every pooled buffer is smaller than requested).
func (p *Pool) Acquire(minCapacity int) *[]byte {
	select {
	case buf := <-p.free:
		if cap(*buf) >= minCapacity {
			*buf = (*buf)[:0]
			return buf
		}
		// Too small to satisfy the request; let it go and allocate fresh.
	default:
	}

	size := minCapacity
	if size < defaultCapacity {
		size = defaultCapacity
	}
	b := make([]byte, 0, size)
	return &b
}

// Release clears buf's length and returns it to the free list, unless the
// pool is already at its retained-buffer bound or buf exceeds maxCap — in
// either case it is dropped for the GC to collect.
func (p *Pool) Release(buf *[]byte) {
	if buf == nil {
		return
	}
	if p.maxCap > 0 && cap(*buf) > p.maxCap {
		return
	}
	*buf = (*buf)[:0]
	select {
	case p.free <- buf:
	default:
		// Free list is full; drop it.
	}
}

// Scoped acquires a buffer with at least minCapacity and returns it along
// with a release func; callers should defer the release func so the buffer
// is returned to the pool on every exit path, including error unwinds:
//
//	buf, release := pool.Scoped(4096)
//	defer release()
func (p *Pool) Scoped(minCapacity int) (*[]byte, func()) {
	buf := p.Acquire(minCapacity)
	return buf, func() { p.Release(buf) }
}
