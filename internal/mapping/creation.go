package mapping

import (
	"math"
	"strings"

	"github.com/linuxmatters/jivescii/internal/config"
	"github.com/linuxmatters/jivescii/internal/frame"
)

// Preset names an autopilot profile: a fixed set of expressions that drive
// the post-processing and camera parameters from the current features.
type Preset int

const (
	PresetAmbient Preset = iota
	PresetPercussive
	PresetPsychedelic
	PresetCinematic
	PresetMinimal
	PresetPhotoreal
	PresetAbstract
	PresetGlitch
	PresetLoFi
	PresetSpectral
	PresetCustom
)

// Next cycles to the following preset.
func (p Preset) Next() Preset {
	return (p + 1) % 11
}

// String returns the display name.
func (p Preset) String() string {
	switch p {
	case PresetAmbient:
		return "Ambient"
	case PresetPercussive:
		return "Percussive"
	case PresetPsychedelic:
		return "Psychedelic"
	case PresetCinematic:
		return "Cinematic"
	case PresetMinimal:
		return "Minimal"
	case PresetPhotoreal:
		return "Photoreal"
	case PresetAbstract:
		return "Abstract"
	case PresetGlitch:
		return "Glitch"
	case PresetLoFi:
		return "Lo-Fi"
	case PresetSpectral:
		return "Spectral"
	case PresetCustom:
		return "Custom"
	}
	return "Custom"
}

// ParsePreset resolves a --preset name.
func ParsePreset(name string) (Preset, bool) {
	name = strings.ReplaceAll(name, "-", "")
	for p := PresetAmbient; p <= PresetCustom; p++ {
		if strings.EqualFold(strings.ReplaceAll(p.String(), "-", ""), name) {
			return p, true
		}
	}
	return PresetCustom, false
}

// ImageFeatures summarizes the current grid for feedback-driven modulation.
type ImageFeatures struct {
	// AvgLuminance of cell foregrounds [0,1].
	AvgLuminance float32
	// ContrastRatio is the luminance stddev scaled to [0,1].
	ContrastRatio float32
	// EdgeDensity is the fraction of non-space cells.
	EdgeDensity float32
	// DominantHue bucket [0,1).
	DominantHue float32
}

// ComputeImageFeatures scans the grid once with stack accumulators only.
func ComputeImageFeatures(grid *frame.Grid) ImageFeatures {
	total := float32(len(grid.Cells))
	if total < 1 {
		return ImageFeatures{}
	}

	var sumLum, sumLumSq float32
	var nonEmpty uint32
	var hueBuckets [6]uint32

	for i := range grid.Cells {
		cell := &grid.Cells[i]
		r, g, b := cell.Fg[0], cell.Fg[1], cell.Fg[2]
		m := r
		if g > m {
			m = g
		}
		if b > m {
			m = b
		}
		lum := float32(m) / 255.0
		sumLum += lum
		sumLumSq += lum * lum

		if cell.Ch != ' ' {
			nonEmpty++
		}

		if r > 10 || g > 10 || b > 10 {
			var bucket int
			switch {
			case r >= g && r >= b:
				if g >= b {
					bucket = 0
				} else {
					bucket = 5
				}
			case g >= r && g >= b:
				if r >= b {
					bucket = 1
				} else {
					bucket = 2
				}
			case r >= g:
				bucket = 4
			default:
				bucket = 3
			}
			hueBuckets[bucket]++
		}
	}

	avg := sumLum / total
	variance := sumLumSq/total - avg*avg
	if variance < 0 {
		variance = 0
	}
	stddev := sqrtf(variance)

	dominant := 0
	for i, c := range hueBuckets {
		if c > hueBuckets[dominant] {
			dominant = i
		}
	}

	return ImageFeatures{
		AvgLuminance:  avg,
		ContrastRatio: clamp(stddev/0.5, 0, 1),
		EdgeDensity:   float32(nonEmpty) / total,
		DominantHue:   float32(dominant) / 6.0,
	}
}

// Creation is the preset autopilot. When auto mode is on and the preset is
// not Custom, it SETS post-processing and camera parameters every frame as
// functions of the features; it never accumulates except for the internal
// color pulse phase and camera rotation.
type Creation struct {
	// AutoMode enables modulation.
	AutoMode bool
	// MasterIntensity scales every expression [0,2].
	MasterIntensity float32
	// ActivePreset selects the expression set.
	ActivePreset Preset

	colorPulsePhase float32
	prevDensity     float32
}

// NewCreation returns the default autopilot: Ambient at full intensity.
func NewCreation() *Creation {
	return &Creation{
		AutoMode:        true,
		MasterIntensity: 1.0,
		ActivePreset:    PresetAmbient,
		prevDensity:     1.0,
	}
}

// densityThrash is the minimum density change worth applying; smaller
// deltas would resize the grid every frame.
const densityThrash = 0.15

// Modulate sets the effect parameters on cfg from the current audio and
// image features. dt is the frame delta in seconds.
func (c *Creation) Modulate(audio *frame.AudioFeatures, image *ImageFeatures, cfg *config.Render, dt float32) {
	if !c.AutoMode || c.ActivePreset == PresetCustom {
		return
	}

	mi := c.MasterIntensity
	env := audio.OnsetEnvelope

	// Brightness compensation against a collapsing image.
	if image.AvgLuminance < 0.2 {
		cfg.Brightness = clamp((0.2-image.AvgLuminance)*mi, -1, 1)
	} else {
		cfg.Brightness = 0
	}

	c.colorPulsePhase += dt * mi

	switch c.ActivePreset {
	case PresetAmbient:
		cfg.FadeDecay = clamp(audio.RMS*0.8*mi, 0, 1)
		cfg.GlowIntensity = clamp(audio.SpectralCentroid*0.6*mi, 0, 2)
		cfg.ColorPulseSpeed = clamp(audio.SpectralCentroid*0.8*mi, 0, 5)
		cfg.WaveAmplitude = clamp(audio.RMS*0.15*mi, 0, 1)
		cfg.ChromaticOffset = 0
		cfg.BeatFlashIntensity = clamp(env*0.3*mi, 0, 2)

	case PresetPercussive:
		cfg.BeatFlashIntensity = clamp(env*0.8*mi, 0, 2)
		cfg.ChromaticOffset = clamp(audio.Bass*3*mi, 0, 5)
		cfg.WaveAmplitude = clamp(env*0.5*mi, 0, 1)
		cfg.FadeDecay = clamp(audio.RMS*0.4*mi, 0, 1)
		cfg.GlowIntensity = clamp(audio.Mid*0.5*mi, 0, 2)
		cfg.ColorPulseSpeed = 0
		cfg.ZalgoIntensity = clamp(env*1.2*mi, 0, 5)

	case PresetPsychedelic:
		cfg.ColorPulseSpeed = clamp(audio.RMS*3*mi, 0, 5)
		cfg.WaveAmplitude = clamp(audio.Mid*0.6*mi, 0, 1)
		cfg.ChromaticOffset = clamp(audio.SpectralFlux*3*mi+audio.Bass, 0, 5)
		cfg.BeatFlashIntensity = clamp(env*mi, 0, 2)
		cfg.GlowIntensity = clamp(audio.RMS*1.2*mi, 0, 2)
		cfg.FadeDecay = clamp(audio.SpectralCentroid*0.6*mi, 0, 1)
		cfg.ZalgoIntensity = clamp(audio.SpectralFlux*2*mi, 0, 5)
		cfg.ScanlineGap = scanGap(audio.Presence*4*mi, 8)
		cfg.CameraRotation += audio.SpectralCentroid * 0.02 * mi
		cfg.CameraZoom = clamp(1+audio.Bass*0.3*mi, 0.1, 10)

	case PresetCinematic:
		cfg.FadeDecay = clamp(audio.RMS*0.9*mi, 0, 1)
		cfg.GlowIntensity = clamp(audio.SpectralCentroid*0.7*mi, 0, 2)
		cfg.ChromaticOffset = clamp(audio.Bass*0.5*mi, 0, 5)
		cfg.WaveAmplitude = 0
		cfg.ColorPulseSpeed = clamp(audio.RMS*0.3*mi, 0, 5)
		cfg.BeatFlashIntensity = clamp(env*0.5*mi, 0, 2)
		cfg.ScanlineGap = scanGap(audio.Presence*3*mi, 6)

	case PresetMinimal:
		fadeScore := audio.RMS
		chromScore := audio.SpectralFlux
		waveScore := audio.Bass
		switch {
		case fadeScore >= chromScore && fadeScore >= waveScore:
			cfg.FadeDecay = clamp(fadeScore*0.8*mi, 0, 1)
			cfg.ChromaticOffset = 0
			cfg.WaveAmplitude = 0
		case chromScore >= waveScore:
			cfg.FadeDecay = 0
			cfg.ChromaticOffset = clamp(chromScore*2*mi, 0, 5)
			cfg.WaveAmplitude = 0
		default:
			cfg.FadeDecay = 0
			cfg.ChromaticOffset = 0
			cfg.WaveAmplitude = clamp(waveScore*0.4*mi, 0, 1)
		}
		cfg.GlowIntensity = clamp(audio.SpectralCentroid*0.3*mi, 0, 2)
		cfg.BeatFlashIntensity = clamp(env*0.3*mi, 0, 2)
		cfg.ColorPulseSpeed = 0

	case PresetPhotoreal:
		cfg.TemporalStability = clamp(0.7*mi, 0, 1)
		cfg.GlowIntensity = clamp(0.3*mi, 0, 2)
		cfg.FadeDecay = clamp(0.2*mi, 0, 1)
		cfg.ChromaticOffset = 0
		cfg.WaveAmplitude = 0
		cfg.ZalgoIntensity = 0
		cfg.ColorPulseSpeed = 0
		cfg.BeatFlashIntensity = clamp(env*0.15*mi, 0, 2)
		cfg.Contrast = clamp(1+audio.SpectralCentroid*0.3*mi, 0.1, 3)

	case PresetAbstract:
		cfg.WaveAmplitude = clamp(audio.SpectralFlatness*0.6*mi, 0, 1)
		cfg.ChromaticOffset = clamp(audio.TimbralRoughness*3*mi, 0, 5)
		cfg.ColorPulseSpeed = clamp(audio.SpectralCentroid*2*mi, 0, 5)
		cfg.ScanlineGap = scanGap(audio.BeatPhase*6*mi, 8)
		cfg.GlowIntensity = clamp(audio.Mid*0.8*mi, 0, 2)
		cfg.FadeDecay = clamp(audio.SpectralFlux*0.7*mi, 0, 1)
		cfg.BeatFlashIntensity = clamp(env*0.6*mi, 0, 2)
		cfg.ZalgoIntensity = clamp(audio.TimbralBrightness*1.5*mi, 0, 5)
		cfg.CameraPanX = clamp(audio.SpectralFlatness*0.3*mi-0.15, -2, 2)
		cfg.CameraRotation += audio.TimbralRoughness * 0.01 * mi

	case PresetGlitch:
		cfg.ZalgoIntensity = clamp(audio.SpectralFlux*3*mi, 0, 5)
		cfg.ChromaticOffset = clamp(audio.Bass*4*mi, 0, 5)
		cfg.BeatFlashIntensity = clamp(env*mi, 0, 2)
		cfg.WaveAmplitude = clamp(audio.Mid*0.3*mi, 0, 1)
		cfg.FadeDecay = clamp(audio.RMS*0.3*mi, 0, 1)
		cfg.GlowIntensity = 0
		cfg.ColorPulseSpeed = clamp(audio.TimbralRoughness*2*mi, 0, 5)
		if audio.Onset {
			cfg.Invert = !cfg.Invert
		}

	case PresetLoFi:
		cfg.ScanlineGap = uint8(clamp(4*mi, 0, 8))
		cfg.FadeDecay = clamp(0.7*mi, 0, 1)
		cfg.TemporalStability = clamp(0.5*mi, 0, 1)
		cfg.GlowIntensity = clamp(audio.TimbralRoughness*0.4*mi, 0, 2)
		cfg.ChromaticOffset = 0
		cfg.WaveAmplitude = 0
		cfg.ColorPulseSpeed = 0
		cfg.BeatFlashIntensity = clamp(env*0.2*mi, 0, 2)
		cfg.ZalgoIntensity = 0

	case PresetSpectral:
		cfg.WaveAmplitude = clamp(audio.SubBass*0.5*mi, 0, 1)
		cfg.GlowIntensity = clamp(audio.Bass*mi, 0, 2)
		cfg.ChromaticOffset = clamp(audio.Mid*2.5*mi, 0, 5)
		cfg.ColorPulseSpeed = clamp(audio.HighMid*2*mi, 0, 5)
		cfg.ZalgoIntensity = clamp(audio.Brilliance*2*mi, 0, 5)
		cfg.FadeDecay = clamp(audio.RMS*0.5*mi, 0, 1)
		cfg.BeatFlashIntensity = clamp(env*0.5*mi, 0, 2)
		cfg.CameraZoom = clamp(1+audio.SubBass*0.2*mi, 0.1, 10)
		cfg.CameraPanX = clamp((audio.Brilliance-0.5)*0.2*mi, -2, 2)
	}

	// Density modulation with anti-thrashing.
	target := cfg.DensityScale
	switch c.ActivePreset {
	case PresetPercussive:
		target = clamp(1+audio.Bass*0.5*mi, 0.25, 4)
	case PresetAbstract:
		target = clamp(0.5+audio.SpectralCentroid*1.5*mi, 0.25, 4)
	case PresetSpectral:
		target = clamp(0.75+audio.RMS*mi, 0.25, 4)
	}
	if diff := target - c.prevDensity; diff > densityThrash || diff < -densityThrash {
		cfg.DensityScale = target
		c.prevDensity = target
	} else {
		cfg.DensityScale = c.prevDensity
	}
}

func scanGap(v float32, max uint8) uint8 {
	g := uint8(v)
	if g < 2 {
		return 0
	}
	if g > max {
		return max
	}
	return g
}

func sqrtf(v float32) float32 {
	if v <= 0 {
		return 0
	}
	return float32(math.Sqrt(float64(v)))
}
