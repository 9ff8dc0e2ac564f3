// Package mapping applies audio-feature→visual-parameter edges to the
// render config. The resolve/curve/apply math lives in pure functions used
// by both the live engine and the offline generative mapper, so the two
// produce bit-identical results from identical features.
package mapping

import (
	"github.com/linuxmatters/jivescii/internal/config"
	"github.com/linuxmatters/jivescii/internal/frame"
)

// ResolveSource extracts a mapping source value in [0,1] from the feature
// frame. Unknown names resolve to 0.
func ResolveSource(f *frame.AudioFeatures, source string) float32 {
	switch source {
	case "rms":
		return f.RMS
	case "peak":
		return f.Peak
	case "sub_bass":
		return f.SubBass
	case "bass":
		return f.Bass
	case "low_mid":
		return f.LowMid
	case "mid":
		return f.Mid
	case "high_mid":
		return f.HighMid
	case "presence":
		return f.Presence
	case "brilliance":
		return f.Brilliance
	case "spectral_centroid":
		return f.SpectralCentroid
	case "spectral_flux":
		return f.SpectralFlux
	case "spectral_flatness":
		return f.SpectralFlatness
	case "spectral_rolloff":
		return f.SpectralRolloff
	case "zero_crossing_rate":
		return f.ZeroCrossingRate
	case "timbral_brightness":
		return f.TimbralBrightness
	case "timbral_roughness":
		return f.TimbralRoughness
	case "beat_intensity":
		return f.BeatIntensity
	case "beat_phase":
		return f.BeatPhase
	case "onset":
		if f.Onset {
			return 1
		}
		return 0
	case "onset_envelope":
		return f.OnsetEnvelope
	case "bpm":
		return f.BPM / 200.0
	}
	return 0
}

// ApplyCurve shapes a source value through the edge's response curve.
func ApplyCurve(curve config.Curve, v float32) float32 {
	switch curve {
	case config.CurveLinear:
		return v
	case config.CurveExponential:
		return v * v
	case config.CurveThreshold:
		if v > 0.3 {
			return (v - 0.3) / 0.7
		}
		return 0
	case config.CurveSmooth:
		return v * v * (3 - 2*v)
	}
	return v
}

// ApplyTarget adds delta to the named parameter, clamped to its declared
// range. The invert target toggles when delta crosses 0.5; camera targets
// scale the delta before adding. Deltas are additive over the base config
// snapshot, never accumulated across frames.
func ApplyTarget(cfg *config.Render, target string, delta float32) {
	switch target {
	case "edge_threshold":
		cfg.EdgeThreshold = clamp(cfg.EdgeThreshold+delta, 0, 1)
	case "edge_mix":
		cfg.EdgeMix = clamp(cfg.EdgeMix+delta, 0, 1)
	case "contrast":
		cfg.Contrast = clamp(cfg.Contrast+delta, 0.1, 3)
	case "brightness":
		cfg.Brightness = clamp(cfg.Brightness+delta, -1, 1)
	case "saturation":
		cfg.Saturation = clamp(cfg.Saturation+delta, 0, 3)
	case "density_scale":
		cfg.DensityScale = clamp(cfg.DensityScale+delta, 0.25, 4)
	case "invert":
		if delta > 0.5 {
			cfg.Invert = !cfg.Invert
		}
	case "beat_flash_intensity":
		cfg.BeatFlashIntensity = clamp(cfg.BeatFlashIntensity+delta, 0, 2)
	case "chromatic_offset":
		cfg.ChromaticOffset = clamp(cfg.ChromaticOffset+delta, 0, 5)
	case "wave_amplitude":
		cfg.WaveAmplitude = clamp(cfg.WaveAmplitude+delta, 0, 1)
	case "color_pulse_speed":
		cfg.ColorPulseSpeed = clamp(cfg.ColorPulseSpeed+delta, 0, 5)
	case "fade_decay":
		cfg.FadeDecay = clamp(cfg.FadeDecay+delta, 0, 1)
	case "glow_intensity":
		cfg.GlowIntensity = clamp(cfg.GlowIntensity+delta, 0, 2)
	case "zalgo_intensity":
		cfg.ZalgoIntensity = clamp(cfg.ZalgoIntensity+delta, 0, 5)
	case "camera_zoom":
		cfg.CameraZoom = clamp(cfg.CameraZoom+delta*2, 0.1, 10)
	case "camera_rotation":
		cfg.CameraRotation += delta * 0.1
	case "camera_pan_x":
		cfg.CameraPanX = clamp(cfg.CameraPanX+delta*0.5, -2, 2)
	case "camera_pan_y":
		cfg.CameraPanY = clamp(cfg.CameraPanY+delta*0.5, -2, 2)
	}
}

// Engine applies the mapping table each frame with per-edge EMA smoothing.
// The smoothing state persists across frames; everything else resets to the
// base config snapshot every frame.
type Engine struct {
	smoothState []float32
}

// NewEngine returns an engine with empty smoothing state; state grows to
// match the mapping table on first use.
func NewEngine() *Engine {
	return &Engine{}
}

// Apply mutates cfg (a private per-frame snapshot) according to its own
// mapping table and the current features.
func (e *Engine) Apply(cfg *config.Render, features *frame.AudioFeatures) {
	if len(e.smoothState) != len(cfg.AudioMappings) {
		e.smoothState = make([]float32, len(cfg.AudioMappings))
	}

	sensitivity := cfg.AudioSensitivity
	globalSmoothing := cfg.AudioSmoothing

	for i := range cfg.AudioMappings {
		m := &cfg.AudioMappings[i]
		if !m.Enabled {
			continue
		}

		shaped := ApplyCurve(m.Curve, ResolveSource(features, m.Source))
		rawDelta := shaped*m.Amount*sensitivity + m.Offset

		alpha := globalSmoothing
		if m.Smoothing != nil {
			alpha = *m.Smoothing
		}
		e.smoothState[i] = e.smoothState[i]*(1-alpha) + rawDelta*alpha

		ApplyTarget(cfg, m.Target, e.smoothState[i])
	}
}

func clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
