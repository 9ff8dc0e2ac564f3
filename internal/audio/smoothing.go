package audio

import "github.com/linuxmatters/jivescii/internal/frame"

// Smoother applies exponential moving average smoothing with attack/release
// asymmetry: fast attack so hits land immediately, slow release so values
// decay gracefully. Event fields pass through untouched.
type Smoother struct {
	attack      float32
	release     float32
	prev        frame.AudioFeatures
	initialized bool
}

// NewSmoother builds a smoother. alpha sets the base responsiveness:
// attack = min(1, 2α), release = max(0.01, 0.5α).
func NewSmoother(alpha float32) *Smoother {
	a := alpha
	if a < 0.01 {
		a = 0.01
	} else if a > 1 {
		a = 1
	}
	attack := a * 2
	if attack > 1 {
		attack = 1
	}
	release := a * 0.5
	if release < 0.01 {
		release = 0.01
	}
	return &Smoother{attack: attack, release: release}
}

// Smooth filters one feature frame. The first frame passes through to seed
// the state.
func (s *Smoother) Smooth(current frame.AudioFeatures) frame.AudioFeatures {
	if !s.initialized {
		s.prev = current
		s.initialized = true
		return current
	}

	out := current
	out.RMS = s.ar(current.RMS, s.prev.RMS)
	out.Peak = s.ar(current.Peak, s.prev.Peak)
	out.SubBass = s.ar(current.SubBass, s.prev.SubBass)
	out.Bass = s.ar(current.Bass, s.prev.Bass)
	out.LowMid = s.ar(current.LowMid, s.prev.LowMid)
	out.Mid = s.ar(current.Mid, s.prev.Mid)
	out.HighMid = s.ar(current.HighMid, s.prev.HighMid)
	out.Presence = s.ar(current.Presence, s.prev.Presence)
	out.Brilliance = s.ar(current.Brilliance, s.prev.Brilliance)
	out.SpectralCentroid = s.ar(current.SpectralCentroid, s.prev.SpectralCentroid)
	out.SpectralFlux = s.ar(current.SpectralFlux, s.prev.SpectralFlux)
	out.SpectralFlatness = s.ar(current.SpectralFlatness, s.prev.SpectralFlatness)
	out.SpectralRolloff = s.ar(current.SpectralRolloff, s.prev.SpectralRolloff)
	out.ZeroCrossingRate = s.ar(current.ZeroCrossingRate, s.prev.ZeroCrossingRate)
	out.TimbralBrightness = s.ar(current.TimbralBrightness, s.prev.TimbralBrightness)
	out.TimbralRoughness = s.ar(current.TimbralRoughness, s.prev.TimbralRoughness)
	out.BPM = s.ar(current.BPM, s.prev.BPM)
	out.BeatIntensity = s.ar(current.BeatIntensity, s.prev.BeatIntensity)

	// Events and phase are not smoothed.
	out.Onset = current.Onset
	out.BeatPhase = current.BeatPhase
	out.OnsetEnvelope = current.OnsetEnvelope

	for i := range out.Spectrum {
		out.Spectrum[i] = s.ar(current.Spectrum[i], s.prev.Spectrum[i])
	}

	s.prev = out
	return out
}

// ar picks the attack or release coefficient depending on direction.
func (s *Smoother) ar(current, previous float32) float32 {
	alpha := s.release
	if current > previous {
		alpha = s.attack
	}
	return alpha*current + (1-alpha)*previous
}
