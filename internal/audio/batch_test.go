package audio

import (
	"testing"
)

// clickTrack builds samples with short full-scale bursts at a fixed period,
// silence in between. period is in seconds.
func clickTrack(t *testing.T, durationSecs float64, sampleRate int, period float64) []float32 {
	t.Helper()
	total := int(durationSecs * float64(sampleRate))
	samples := make([]float32, total)
	burst := 64
	step := int(period * float64(sampleRate))
	for pos := step; pos+burst < total; pos += step {
		for i := 0; i < burst; i++ {
			if (i % 2) == 0 {
				samples[pos+i] = 1
			} else {
				samples[pos+i] = -1
			}
		}
	}
	return samples
}

func TestBatchAnalyzerFrameCount(t *testing.T) {
	a := NewBatchAnalyzer(60, 44100, 2048)
	tl := a.AnalyzeAll(make([]float32, 44100)) // 1 second of silence
	if tl.TotalFrames() != 60 {
		t.Errorf("frames = %d, want 60", tl.TotalFrames())
	}
	if tl.FrameDuration != 1.0/60.0 {
		t.Errorf("frame duration = %f", tl.FrameDuration)
	}
}

func TestBatchAnalyzerSilenceHasNoOnsets(t *testing.T) {
	a := NewBatchAnalyzer(30, 44100, 2048)
	tl := a.AnalyzeAll(make([]float32, 44100*3))
	for i, f := range tl.Frames {
		if f.Onset {
			t.Fatalf("onset in silence at frame %d", i)
		}
	}
}

func TestBatchAnalyzerDetectsClicks(t *testing.T) {
	const fps = 30
	samples := clickTrack(t, 5.0, 44100, 0.5) // 120 BPM clicks
	a := NewBatchAnalyzer(fps, 44100, 2048)
	tl := a.AnalyzeAll(samples)

	onsets := 0
	var lastBPM float32
	for _, f := range tl.Frames {
		if f.Onset {
			onsets++
		}
		if f.BPM > 0 {
			lastBPM = f.BPM
		}
	}
	if onsets < 5 {
		t.Fatalf("detected %d onsets on a 5s click track, want >= 5", onsets)
	}
	if lastBPM < 100 || lastBPM > 140 {
		t.Errorf("click track BPM = %f, want ~120", lastBPM)
	}
}

// TestOnsetReplayParity drives the live beat detector with the exact frame
// windows the batch analyzer uses and compares the onset frame indices.
// Live and offline must agree beat for beat.
func TestOnsetReplayParity(t *testing.T) {
	const fps = 30
	const sampleRate = 44100
	samples := clickTrack(t, 5.0, sampleRate, 0.5)

	// Offline pass.
	batch := NewBatchAnalyzer(fps, sampleRate, 2048)
	tl := batch.AnalyzeAll(samples)
	var batchOnsets []int
	for i, f := range tl.Frames {
		if f.Onset {
			batchOnsets = append(batchOnsets, i)
		}
	}

	// Live pass over the same windows.
	fft := NewFFT(2048)
	det := NewBeatDetector()
	samplesPerFrame := sampleRate / fps
	var liveOnsets []int
	for i := 0; i < tl.TotalFrames(); i++ {
		start := i * samplesPerFrame
		end := start + 2048
		if end > len(samples) {
			end = len(samples)
		}
		var window []float32
		if start < len(samples) {
			window = samples[start:end]
		}
		spectrum := fft.Process(window)
		feats := ExtractFeatures(window, spectrum, sampleRate)
		onset, _, _, _ := det.Process(spectrum, feats.RMS, fps)
		if onset {
			liveOnsets = append(liveOnsets, i)
		}
	}

	if len(batchOnsets) == 0 {
		t.Fatal("batch pass found no onsets")
	}
	if len(batchOnsets) != len(liveOnsets) {
		t.Fatalf("onset counts differ: batch %v vs live %v", batchOnsets, liveOnsets)
	}
	for i := range batchOnsets {
		if batchOnsets[i] != liveOnsets[i] {
			t.Errorf("onset %d: batch frame %d vs live frame %d", i, batchOnsets[i], liveOnsets[i])
		}
	}
}

func TestTimelineAtClamps(t *testing.T) {
	a := NewBatchAnalyzer(30, 44100, 2048)
	tl := a.AnalyzeAll(make([]float32, 44100))

	// Far past the end returns the last frame rather than panicking.
	_ = tl.At(999.0)
	_ = tl.At(-1.0)

	empty := &Timeline{FrameDuration: 1.0 / 30.0}
	f := empty.At(1.0)
	if f.RMS != 0 {
		t.Error("empty timeline should return zero features")
	}
}

func TestTimelineNormalize(t *testing.T) {
	a := NewBatchAnalyzer(30, 44100, 2048)
	// Half-scale tone: after normalization the track max must be 1.
	samples := make([]float32, 44100*2)
	for i := range samples {
		samples[i] = 0.25 * float32(i%100-50) / 50.0
	}
	tl := a.AnalyzeAll(samples)

	var maxRMS float32
	for _, f := range tl.Frames {
		if f.RMS > maxRMS {
			maxRMS = f.RMS
		}
	}
	if maxRMS < 0.999 {
		t.Errorf("normalized max RMS = %f, want 1", maxRMS)
	}
}

func TestTimelineEnergyLevels(t *testing.T) {
	a := NewBatchAnalyzer(30, 44100, 2048)
	// First half quiet, second half loud.
	samples := make([]float32, 44100*2)
	for i := 44100; i < len(samples); i++ {
		samples[i] = float32(i%2*2-1) * 0.8
	}
	tl := a.AnalyzeAll(samples)
	if len(tl.EnergyLevels) != tl.TotalFrames() {
		t.Fatalf("energy levels length = %d, want %d", len(tl.EnergyLevels), tl.TotalFrames())
	}
	if tl.EnergyLevels[0] != EnergyQuiet {
		t.Errorf("quiet half classified as %v", tl.EnergyLevels[0])
	}
	if lv := tl.EnergyLevels[tl.TotalFrames()-2]; lv != EnergyLoud {
		t.Errorf("loud half classified as %v", lv)
	}
}
