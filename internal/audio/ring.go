package audio

import "sync/atomic"

// Ring is a single-producer single-consumer lock-free ring buffer of float32
// samples. The portaudio callback pushes, the analyzer pops; neither side
// ever blocks or allocates. On overflow the producer discards the oldest
// samples so the analyzer always sees the freshest audio.
type Ring struct {
	buf  []float32
	mask uint64
	head atomic.Uint64 // next write position (producer)
	tail atomic.Uint64 // next read position (consumer)
}

// NewRing creates a ring with at least capacity samples (rounded up to a
// power of two). Capacity should cover ≥2 s at the capture rate.
func NewRing(capacity int) *Ring {
	size := 1
	for size < capacity {
		size <<= 1
	}
	return &Ring{
		buf:  make([]float32, size),
		mask: uint64(size - 1),
	}
}

// Push appends samples, discarding the oldest buffered data when full.
// Producer side only.
func (r *Ring) Push(samples []float32) {
	head := r.head.Load()
	tail := r.tail.Load()
	free := uint64(len(r.buf)) - (head - tail)

	if uint64(len(samples)) > free {
		// Drop oldest: advance the tail past the overflow. The consumer
		// tolerates this because it re-reads tail on every Pop.
		drop := uint64(len(samples)) - free
		r.tail.Store(tail + drop)
	}

	for _, s := range samples {
		r.buf[head&r.mask] = s
		head++
	}
	r.head.Store(head)
}

// Pop drains up to len(out) buffered samples into out and returns the
// count. Consumer side only.
func (r *Ring) Pop(out []float32) int {
	tail := r.tail.Load()
	head := r.head.Load()
	available := head - tail
	n := uint64(len(out))
	if n > available {
		n = available
	}
	for i := uint64(0); i < n; i++ {
		out[i] = r.buf[(tail+i)&r.mask]
	}
	r.tail.Store(tail + n)
	return int(n)
}

// Len reports the number of buffered samples.
func (r *Ring) Len() int {
	return int(r.head.Load() - r.tail.Load())
}
