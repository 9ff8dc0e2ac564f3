package frame

// SpectrumBands is the number of log-spaced bands kept for visualization.
const SpectrumBands = 32

// AudioFeatures is the analysis result for one frame of audio. Written by
// the analyzer goroutine, read by the renderer through a triple-buffered
// slot. Fixed size, copied by value, never allocated on the hot path.
//
// All scalar fields are normalized to [0, 1] unless noted.
type AudioFeatures struct {
	// RMS level of the current window.
	RMS float32
	// Peak absolute amplitude of the current window.
	Peak float32

	// Band energies, mean magnitude over the band's FFT bins.
	SubBass    float32 // 20–60 Hz
	Bass       float32 // 60–250 Hz
	LowMid     float32 // 250–500 Hz
	Mid        float32 // 500–2000 Hz
	HighMid    float32 // 2000–4000 Hz
	Presence   float32 // 4000–6000 Hz
	Brilliance float32 // 6000–20000 Hz

	// SpectralCentroid is the brightness of the timbre.
	SpectralCentroid float32
	// SpectralFlux is the frame-to-frame spectral change.
	SpectralFlux float32
	// SpectralFlatness distinguishes noise (1) from tonal content (0).
	SpectralFlatness float32
	// SpectralRolloff is the frequency below which 85% of the energy sits,
	// normalized by 20 kHz.
	SpectralRolloff float32
	// ZeroCrossingRate of the raw window.
	ZeroCrossingRate float32
	// TimbralBrightness is the energy fraction at and above 3 kHz.
	TimbralBrightness float32
	// TimbralRoughness estimates beating between adjacent bands.
	TimbralRoughness float32

	// Onset is true when an attack was detected this frame.
	Onset bool
	// BeatIntensity grades how far the flux exceeded the threshold.
	BeatIntensity float32
	// BPM estimate, [30, 300], or 0 when unknown.
	BPM float32
	// BeatPhase is the fractional position within the beat; 0 on the beat.
	BeatPhase float32
	// OnsetEnvelope is 1 on an onset, decaying by the strobe factor after.
	OnsetEnvelope float32

	// Spectrum holds log-frequency bands for the spectrum sparkline.
	Spectrum [SpectrumBands]float32
}
