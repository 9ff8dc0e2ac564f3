package audio

import "sync/atomic"

// MediaClock is the shared playback position. The audio output callback is
// the master: it advances the sample position every buffer; the renderer
// and analyzer read it. All fields are atomic, no locks.
type MediaClock struct {
	samplePos  atomic.Int64
	sampleRate atomic.Int64
	started    atomic.Bool
	paused     atomic.Bool
}

// NewMediaClock creates a clock with an initial sample rate. A zero rate
// may be set later once decoding reports the real rate.
func NewMediaClock(sampleRate int) *MediaClock {
	c := &MediaClock{}
	c.sampleRate.Store(int64(sampleRate))
	return c
}

// PosSecs returns the playback position in seconds.
func (c *MediaClock) PosSecs() float64 {
	rate := c.sampleRate.Load()
	if rate == 0 {
		return 0
	}
	return float64(c.samplePos.Load()) / float64(rate)
}

// SamplePos returns the position in samples.
func (c *MediaClock) SamplePos() int {
	return int(c.samplePos.Load())
}

// SetSamplePos stores a new position (output callback or seek).
func (c *MediaClock) SetSamplePos(pos int) {
	c.samplePos.Store(int64(pos))
}

// SetSampleRate updates the rate once decoding knows it.
func (c *MediaClock) SetSampleRate(rate int) {
	c.sampleRate.Store(int64(rate))
}

// SampleRate returns the source sample rate.
func (c *MediaClock) SampleRate() int {
	return int(c.sampleRate.Load())
}

// MarkStarted flags that the first output callback has run.
func (c *MediaClock) MarkStarted() {
	c.started.Store(true)
}

// Started reports whether playback has begun.
func (c *MediaClock) Started() bool {
	return c.started.Load()
}

// SetPaused updates the pause flag.
func (c *MediaClock) SetPaused(paused bool) {
	c.paused.Store(paused)
}

// Paused reports the pause state.
func (c *MediaClock) Paused() bool {
	return c.paused.Load()
}
