package audio

import (
	"fmt"

	"github.com/gordonklaus/portaudio"
	"go.uber.org/zap"
)

// Playback streams a fully decoded mono track to the default output device,
// looping at the end. The output callback owns the media clock: it advances
// the source-rate sample position every buffer, resampling between the
// source rate and the device rate by taking the nearest lower source sample
// (no interpolation).
type Playback struct {
	stream  *portaudio.Stream
	samples []float32
	clock   *MediaClock
	ratio   float64 // source samples per output sample
	posF    float64 // fractional source position, callback-local
	log     *zap.Logger
}

// StartPlayback opens the default output device and starts looping the
// track. The clock's sample rate must match the decoded source rate.
func StartPlayback(samples []float32, clock *MediaClock, log *zap.Logger) (*Playback, error) {
	if len(samples) == 0 {
		return nil, fmt.Errorf("empty audio track")
	}

	dev, err := portaudio.DefaultOutputDevice()
	if err != nil {
		return nil, fmt.Errorf("no audio output device: %w", err)
	}
	outRate := dev.DefaultSampleRate

	p := &Playback{
		samples: samples,
		clock:   clock,
		ratio:   float64(clock.SampleRate()) / outRate,
		log:     log,
	}

	params := portaudio.LowLatencyParameters(nil, dev)
	params.Output.Channels = 1
	params.SampleRate = outRate

	stream, err := portaudio.OpenStream(params, p.callback)
	if err != nil {
		return nil, fmt.Errorf("open playback stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		return nil, fmt.Errorf("start playback stream: %w", err)
	}
	p.stream = stream
	log.Info("audio playback started",
		zap.Float64("device_rate", outRate),
		zap.Int("source_rate", clock.SampleRate()))
	return p, nil
}

// callback runs on the portaudio thread. No blocking, no allocation.
func (p *Playback) callback(out []float32) {
	p.clock.MarkStarted()

	if p.clock.Paused() {
		for i := range out {
			out[i] = 0
		}
		return
	}

	total := len(p.samples)

	// Resync after an external seek: if the shared position drifted away
	// from the callback's local cursor, adopt it.
	shared := p.clock.SamplePos()
	local := int(p.posF)
	if diff := shared - local; diff > 4096 || diff < -4096 {
		p.posF = float64(shared)
	}

	for i := range out {
		idx := int(p.posF)
		if idx >= total {
			idx %= total
		}
		out[i] = p.samples[idx]
		p.posF += p.ratio
	}
	if p.posF >= float64(total) {
		p.posF -= float64(total)
	}
	p.clock.SetSamplePos(int(p.posF))
}

// Close stops the output stream.
func (p *Playback) Close() error {
	if p.stream == nil {
		return nil
	}
	if err := p.stream.Stop(); err != nil {
		p.log.Warn("stopping playback stream", zap.Error(err))
	}
	return p.stream.Close()
}
