package audio

import "github.com/linuxmatters/jivescii/internal/frame"

// BatchAnalyzer pre-analyzes a whole track into a Timeline for offline
// export. It slices the samples at the target frame rate, extracts features
// per frame, and then replays the exact live onset logic over the stored
// flux so live and batch renders agree on every beat.
type BatchAnalyzer struct {
	fft        *FFT
	targetFPS  int
	sampleRate int
}

// NewBatchAnalyzer builds an analyzer for the given pacing.
func NewBatchAnalyzer(targetFPS, sampleRate, fftSize int) *BatchAnalyzer {
	return &BatchAnalyzer{
		fft:        NewFFT(fftSize),
		targetFPS:  targetFPS,
		sampleRate: sampleRate,
	}
}

// AnalyzeFile decodes and analyzes an audio file.
func (a *BatchAnalyzer) AnalyzeFile(path string) (*Timeline, error) {
	samples, rate, err := DecodeFile(path)
	if err != nil {
		return nil, err
	}
	a.sampleRate = rate
	return a.AnalyzeAll(samples), nil
}

// AnalyzeAll analyzes a full sample buffer into a Timeline.
func (a *BatchAnalyzer) AnalyzeAll(samples []float32) *Timeline {
	frameDuration := 1.0 / float32(a.targetFPS)
	samplesPerFrame := int(float32(a.sampleRate) * frameDuration)
	if samplesPerFrame == 0 {
		return &Timeline{FrameDuration: frameDuration, SampleRate: a.sampleRate}
	}

	numFrames := (len(samples) + samplesPerFrame - 1) / samplesPerFrame
	frames := make([]frame.AudioFeatures, 0, numFrames)

	var prevMagnitudes []float32

	for i := 0; i < numFrames; i++ {
		start := i * samplesPerFrame
		end := start + a.fft.Size()
		if end > len(samples) {
			end = len(samples)
		}
		var frameSamples []float32
		if start < len(samples) {
			frameSamples = samples[start:end]
		}

		magnitudes := a.fft.Process(frameSamples)
		feats := ExtractFeatures(frameSamples, magnitudes, a.sampleRate)

		// Bass-weighted flux, computed exactly as the live detector does so
		// the onset pass sees the same values; Normalize rescales it
		// track-wide afterwards.
		if prevMagnitudes == nil {
			prevMagnitudes = make([]float32, len(magnitudes))
		} else {
			feats.SpectralFlux = BassFlux(magnitudes, prevMagnitudes)
		}
		copy(prevMagnitudes, magnitudes)

		frames = append(frames, feats)
	}

	detectOnsets(frames, float32(a.targetFPS))

	tl := &Timeline{
		Frames:        frames,
		FrameDuration: frameDuration,
		SampleRate:    a.sampleRate,
	}
	tl.Normalize()
	tl.ComputeEnergyLevels()
	return tl
}

// detectOnsets replays the live onset pass over the stored flux values,
// filling onset, intensity, bpm, phase and envelope for every frame. The
// constants are shared with BeatDetector so the two stay in lockstep.
func detectOnsets(frames []frame.AudioFeatures, fps float32) {
	cooldown := CooldownFrames(fps)
	var emaFlux, bpm, phase, envelope float32
	// Frame i is the live detector's frame i+1, so the last onset starts at
	// -1 to match its zero-initialized counter.
	lastOnset := -1
	intervals := make([]int, 0, intervalRingCap)

	for i := range frames {
		f := &frames[i]
		flux := f.SpectralFlux

		emaFlux = emaFlux*(1-fluxEMAAlpha) + flux*fluxEMAAlpha
		threshold := emaFlux*thresholdRatio + thresholdFloor

		f.BeatIntensity = 0
		if flux > threshold {
			intensity := (flux - threshold) / (threshold + 0.001)
			if intensity > 1 {
				intensity = 1
			}
			f.BeatIntensity = intensity
		}

		since := i - lastOnset
		onset := i >= warmupFrames &&
			f.RMS > silenceRMS &&
			flux > threshold &&
			uint64(since) > cooldown

		if onset {
			f.Onset = true
			lastOnset = i

			if since > 5 && since < 300 {
				intervals = append(intervals, since)
				if len(intervals) > intervalRingCap {
					intervals = intervals[1:]
				}
				if len(intervals) >= minBPMSamples {
					var sum float64
					for _, iv := range intervals {
						sum += float64(iv)
					}
					avg := sum / float64(len(intervals))
					if avg > 0 {
						bpm = clampBPM(float32(60.0 * float64(fps) / avg))
					}
				}
			}

			phase = 0
			envelope = 1
		} else {
			f.Onset = false
			envelope *= DefaultStrobeDecay
			if bpm > 0 {
				phase += bpm / (60.0 * fps)
				for phase >= 1 {
					phase--
				}
			}
		}

		f.OnsetEnvelope = envelope
		f.BPM = bpm
		f.BeatPhase = phase
	}
}
