package audio

import (
	"sync/atomic"

	"github.com/linuxmatters/jivescii/internal/frame"
)

// FeatureSlot is a triple-buffered single-writer single-reader slot for
// AudioFeatures. The writer commits into a spare buffer and swaps it with
// the shared middle slot in one atomic exchange; the reader does the same
// from its side. Reads never block, never tear, and always return the
// freshest committed value.
type FeatureSlot struct {
	bufs [3]frame.AudioFeatures
	// state packs the middle-buffer index in the low bits and a "fresh"
	// flag in bit 2.
	state       atomic.Uint32
	writerIndex int
	readerIndex int
}

const slotFreshBit = 4

// NewFeatureSlot builds a slot seeded with zero features.
func NewFeatureSlot() *FeatureSlot {
	s := &FeatureSlot{writerIndex: 0, readerIndex: 2}
	s.state.Store(1) // middle = buffer 1, not fresh
	return s
}

// Write publishes a new feature frame. Writer goroutine only.
func (s *FeatureSlot) Write(f frame.AudioFeatures) {
	s.bufs[s.writerIndex] = f
	old := s.state.Swap(uint32(s.writerIndex) | slotFreshBit)
	s.writerIndex = int(old & 3)
}

// Read returns the most recently committed frame. Reader goroutine only.
// When no new frame was committed since the last read, the previous value
// is returned again.
func (s *FeatureSlot) Read() frame.AudioFeatures {
	state := s.state.Load()
	if state&slotFreshBit != 0 {
		old := s.state.Swap(uint32(s.readerIndex))
		s.readerIndex = int(old & 3)
	}
	return s.bufs[s.readerIndex]
}
