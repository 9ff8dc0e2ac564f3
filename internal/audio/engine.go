package audio

import (
	"time"

	"github.com/linuxmatters/jivescii/internal/frame"
	"go.uber.org/zap"
)

// Command controls the audio driver from the app loop. The channel is
// lossless: every command is eventually observed.
type Command int

const (
	CmdPlay Command = iota
	CmdPause
	CmdSeek
	CmdQuit
)

// SeekCommand pairs a command with its relative seek offset in seconds;
// the offset is only meaningful for CmdSeek.
type SeekCommand struct {
	Command
	DeltaSecs float64
}

// Engine runs the analysis goroutine and owns whichever driver (capture or
// file playback) feeds it. Features flow to the renderer through the
// triple-buffered slot; commands flow in through a channel.
type Engine struct {
	Slot  *FeatureSlot
	Clock *MediaClock

	cmds     chan SeekCommand
	capture  *Capture
	playback *Playback
	samples  []float32
	fps      int
	smooth   float32
	log      *zap.Logger
}

// NewMicEngine starts microphone analysis. The capture driver must already
// be running.
func NewMicEngine(capture *Capture, targetFPS int, smoothing float32, log *zap.Logger) *Engine {
	e := &Engine{
		Slot:    NewFeatureSlot(),
		Clock:   NewMediaClock(capture.SampleRate()),
		cmds:    make(chan SeekCommand, 16),
		capture: capture,
		fps:     targetFPS,
		smooth:  smoothing,
		log:     log,
	}
	go e.runCapture()
	return e
}

// NewFileEngine decodes path, starts looped playback, and analyzes at the
// playback position so the visuals track what is heard.
func NewFileEngine(path string, targetFPS int, smoothing float32, log *zap.Logger) (*Engine, error) {
	samples, sampleRate, err := DecodeFile(path)
	if err != nil {
		return nil, err
	}

	clock := NewMediaClock(sampleRate)
	playback, err := StartPlayback(samples, clock, log)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		Slot:     NewFeatureSlot(),
		Clock:    clock,
		cmds:     make(chan SeekCommand, 16),
		playback: playback,
		samples:  samples,
		fps:      targetFPS,
		smooth:   smoothing,
		log:      log,
	}
	go e.runFile()
	return e, nil
}

// Send queues a command for the analysis goroutine.
func (e *Engine) Send(cmd SeekCommand) {
	e.cmds <- cmd
}

// Close shuts down the driver; the analysis goroutine exits on CmdQuit.
func (e *Engine) Close() {
	select {
	case e.cmds <- SeekCommand{Command: CmdQuit}:
	default:
	}
	if e.capture != nil {
		_ = e.capture.Close()
	}
	if e.playback != nil {
		_ = e.playback.Close()
	}
}

// runCapture analyzes the microphone ring buffer once per frame period.
func (e *Engine) runCapture() {
	fft := NewFFT(WindowSize)
	beat := NewBeatDetector()
	smoother := NewSmoother(e.smooth)
	sampleBuf := make([]float32, WindowSize*2)
	window := make([]float32, 0, WindowSize)
	framePeriod := frameDuration(e.fps)
	envelope := float32(0)

	for {
		if e.drainCommands() {
			return
		}

		n := e.capture.ReadSamples(sampleBuf)
		if n > 0 {
			window = append(window, sampleBuf[:n]...)
			if len(window) > WindowSize {
				window = window[len(window)-WindowSize:]
			}
		}

		if len(window) >= WindowSize {
			envelope = e.analyze(fft, beat, smoother, window, e.capture.SampleRate(), envelope)
			window = window[:0]
		}

		time.Sleep(framePeriod)
	}
}

// runFile analyzes the 2048 samples trailing the playback position.
func (e *Engine) runFile() {
	fft := NewFFT(WindowSize)
	beat := NewBeatDetector()
	smoother := NewSmoother(e.smooth)
	window := make([]float32, WindowSize)
	framePeriod := frameDuration(e.fps)
	total := len(e.samples)
	envelope := float32(0)

	for {
		if e.drainCommands() {
			return
		}

		if e.Clock.Paused() {
			e.Slot.Write(frame.AudioFeatures{})
			time.Sleep(framePeriod)
			continue
		}

		pos := e.Clock.SamplePos()
		for i := range window {
			idx := (total + pos - WindowSize + i) % total
			window[i] = e.samples[idx]
		}

		envelope = e.analyze(fft, beat, smoother, window, e.Clock.SampleRate(), envelope)
		time.Sleep(framePeriod)
	}
}

// analyze runs one feature frame through the full chain and publishes it.
// Returns the updated onset envelope.
func (e *Engine) analyze(fft *FFT, beat *BeatDetector, smoother *Smoother, window []float32, sampleRate int, envelope float32) float32 {
	spectrum := fft.Process(window)
	feats := ExtractFeatures(window, spectrum, sampleRate)

	fps := float32(e.fps)
	onset, intensity, bpm, phase := beat.Process(spectrum, feats.RMS, fps)
	feats.Onset = onset
	feats.BeatIntensity = intensity
	feats.BPM = bpm
	feats.BeatPhase = phase

	if onset {
		envelope = 1
	} else {
		envelope *= DefaultStrobeDecay
	}
	feats.OnsetEnvelope = envelope

	e.Slot.Write(smoother.Smooth(feats))
	return envelope
}

// drainCommands applies pending commands; returns true on quit.
func (e *Engine) drainCommands() bool {
	for {
		select {
		case cmd := <-e.cmds:
			switch cmd.Command {
			case CmdPlay:
				e.Clock.SetPaused(false)
			case CmdPause:
				e.Clock.SetPaused(true)
			case CmdSeek:
				if len(e.samples) > 0 {
					rate := e.Clock.SampleRate()
					newSecs := e.Clock.PosSecs() + cmd.DeltaSecs
					if newSecs < 0 {
						newSecs = 0
					}
					newPos := int(newSecs * float64(rate))
					e.Clock.SetSamplePos(newPos % len(e.samples))
				}
			case CmdQuit:
				return true
			}
		default:
			return false
		}
	}
}

func frameDuration(fps int) time.Duration {
	if fps < 1 {
		fps = 1
	}
	return time.Duration(float64(time.Second) / float64(fps))
}
