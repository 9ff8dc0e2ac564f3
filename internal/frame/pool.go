package frame

import "sync/atomic"

// Pool recycles a small fixed set of frame buffers between a producer
// goroutine and the renderer. Handles are reference counted: the producer
// may only overwrite a buffer once every reader has released it. When all
// buffers are still referenced the producer skips a frame instead of
// allocating.
type Pool struct {
	buffers []*Buffer
	width   int
	height  int
}

// PoolSize is the number of buffers a producer keeps in flight. Four is
// enough for one frame being filled, one in the channel, one held by the
// renderer and one spare.
const PoolSize = 4

// NewPool preallocates size buffers of the given dimensions. Sizes below
// PoolSize are raised to it.
func NewPool(width, height, size int) *Pool {
	if size < PoolSize {
		size = PoolSize
	}
	p := &Pool{width: width, height: height}
	p.buffers = make([]*Buffer, size)
	for i := range p.buffers {
		p.buffers[i] = NewBuffer(width, height)
	}
	return p
}

// Acquire returns a free buffer with its reference count set to 1, or nil
// when every buffer is still held elsewhere (the caller should skip the
// frame rather than allocate).
func (p *Pool) Acquire() *Buffer {
	for _, b := range p.buffers {
		if atomic.CompareAndSwapInt32(&b.refs, 0, 1) {
			return b
		}
	}
	return nil
}

// Retain adds a reference, e.g. before handing the buffer to a channel.
func (b *Buffer) Retain() {
	atomic.AddInt32(&b.refs, 1)
}

// Release drops a reference. Once the count reaches zero the owning pool
// may hand the buffer out again.
func (b *Buffer) Release() {
	if b == nil {
		return
	}
	atomic.AddInt32(&b.refs, -1)
}

// Refs reports the current reference count; used by tests to assert the
// steady-state recycling discipline.
func (b *Buffer) Refs() int32 {
	return atomic.LoadInt32(&b.refs)
}
