package audio

import (
	"fmt"

	"github.com/gordonklaus/portaudio"
	"go.uber.org/zap"
)

// Capture streams the default input device into a lock-free ring buffer,
// downmixed to mono float32. The portaudio callback is the producer, the
// analyzer the consumer.
type Capture struct {
	stream     *portaudio.Stream
	ring       *Ring
	sampleRate int
	log        *zap.Logger
}

// captureChannels is what we request from the device; the stream is mono,
// so the callback pushes each buffer into the ring unchanged.
const captureChannels = 1

// StartCapture opens the default input device and begins streaming.
// Callers must Close the capture; portaudio.Initialize must have been
// called once at startup.
func StartCapture(log *zap.Logger) (*Capture, error) {
	dev, err := portaudio.DefaultInputDevice()
	if err != nil {
		return nil, fmt.Errorf("no audio input device: %w", err)
	}
	sampleRate := int(dev.DefaultSampleRate)

	// Two seconds of headroom between the callback and the analyzer.
	c := &Capture{
		ring:       NewRing(sampleRate * 2),
		sampleRate: sampleRate,
		log:        log,
	}

	params := portaudio.LowLatencyParameters(dev, nil)
	params.Input.Channels = captureChannels
	params.SampleRate = float64(sampleRate)

	stream, err := portaudio.OpenStream(params, c.callback)
	if err != nil {
		return nil, fmt.Errorf("open capture stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		return nil, fmt.Errorf("start capture stream: %w", err)
	}
	c.stream = stream
	log.Info("audio capture started", zap.Int("sample_rate", sampleRate))
	return c, nil
}

// callback runs on the portaudio thread; it must not block or allocate.
func (c *Capture) callback(in []float32) {
	c.ring.Push(in)
}

// ReadSamples drains buffered samples into out and returns the count.
func (c *Capture) ReadSamples(out []float32) int {
	return c.ring.Pop(out)
}

// Buffered returns how many samples are waiting.
func (c *Capture) Buffered() int {
	return c.ring.Len()
}

// SampleRate returns the capture rate.
func (c *Capture) SampleRate() int {
	return c.sampleRate
}

// Close stops and releases the stream.
func (c *Capture) Close() error {
	if c.stream == nil {
		return nil
	}
	if err := c.stream.Stop(); err != nil {
		c.log.Warn("stopping capture stream", zap.Error(err))
	}
	return c.stream.Close()
}
