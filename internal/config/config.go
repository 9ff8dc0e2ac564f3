// Package config defines the full render configuration, its TOML file
// format, atomic publication between goroutines, and hot reloading.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

// RenderMode selects the pixel→glyph packing scheme.
type RenderMode int

const (
	ModeAscii RenderMode = iota
	ModeHalfBlock
	ModeQuadrant
	ModeSextant
	ModeOctant
	ModeBraille
)

// Next cycles through the render modes in Tab order.
func (m RenderMode) Next() RenderMode {
	return (m + 1) % 6
}

// String returns the config-file name of the mode.
func (m RenderMode) String() string {
	switch m {
	case ModeAscii:
		return "ascii"
	case ModeHalfBlock:
		return "halfblock"
	case ModeQuadrant:
		return "quadrant"
	case ModeSextant:
		return "sextant"
	case ModeOctant:
		return "octant"
	case ModeBraille:
		return "braille"
	}
	return "ascii"
}

// ParseRenderMode parses a mode name as used by --mode and config files.
func ParseRenderMode(s string) (RenderMode, error) {
	switch strings.ToLower(s) {
	case "ascii":
		return ModeAscii, nil
	case "halfblock":
		return ModeHalfBlock, nil
	case "quadrant":
		return ModeQuadrant, nil
	case "sextant":
		return ModeSextant, nil
	case "octant":
		return ModeOctant, nil
	case "braille":
		return ModeBraille, nil
	}
	return ModeAscii, fmt.Errorf("unknown render mode %q", s)
}

// ColorMode selects how source colors map to cell foregrounds.
type ColorMode int

const (
	ColorDirect ColorMode = iota
	ColorHSVBright
	ColorQuantized
	ColorOklab
)

// Next cycles the color modes.
func (m ColorMode) Next() ColorMode {
	return (m + 1) % 4
}

func (m ColorMode) String() string {
	switch m {
	case ColorDirect:
		return "direct"
	case ColorHSVBright:
		return "hsv_bright"
	case ColorQuantized:
		return "quantized"
	case ColorOklab:
		return "oklab"
	}
	return "direct"
}

// BgStyle selects the cell background treatment.
type BgStyle int

const (
	BgBlack BgStyle = iota
	BgSourceDim
	BgTransparent
)

// Next cycles the background styles.
func (s BgStyle) Next() BgStyle {
	return (s + 1) % 3
}

// Curve shapes a mapping source value before scaling. Tagged values rather
// than function pointers so mapping tables stay serializable.
type Curve int

const (
	CurveLinear Curve = iota
	CurveExponential
	CurveThreshold
	CurveSmooth
)

// ParseCurve parses a curve name from a config file.
func ParseCurve(s string) (Curve, error) {
	switch strings.ToLower(s) {
	case "", "linear":
		return CurveLinear, nil
	case "exponential":
		return CurveExponential, nil
	case "threshold":
		return CurveThreshold, nil
	case "smooth":
		return CurveSmooth, nil
	}
	return CurveLinear, fmt.Errorf("unknown curve %q", s)
}

// AudioMapping is one configured audio-feature→visual-parameter edge.
type AudioMapping struct {
	// Source feature name: "rms", "bass", "spectral_flux", "onset", ...
	Source string
	// Target parameter name: "contrast", "edge_threshold", "camera_zoom", ...
	Target string
	// Amount scales the shaped source value.
	Amount float32
	// Offset is added after multiplication.
	Offset float32
	// Curve shapes the source before scaling.
	Curve Curve
	// Enabled gates the edge without removing it from the table.
	Enabled bool
	// Smoothing overrides the global EMA alpha when non-nil.
	Smoothing *float32
}

// Render is the complete, hot-reloadable render configuration. A published
// Render is immutable: writers build a fresh value and swap it through a
// Store; readers snapshot once per frame.
type Render struct {
	// Mode and charset.
	RenderMode   RenderMode
	Charset      string
	CharsetIndex int
	Invert       bool
	ColorEnabled bool

	// Conversion.
	EdgeThreshold float32 // [0,1], 0 disables edges
	EdgeMix       float32 // 0 = fill only, 1 = edges only
	ShapeMatching bool
	AspectRatio   float32 // terminal cell height/width, typically 2.0
	DensityScale  float32 // [0.25, 4]
	DitherEnabled bool

	// Color.
	ColorMode  ColorMode
	Saturation float32 // [0, 3]
	Contrast   float32 // [0.1, 3]
	Brightness float32 // [-1, 1]
	BgStyle    BgStyle

	// Post-processing intensities.
	FadeDecay          float32 // [0, 0.95]
	GlowIntensity      float32 // [0, 2]
	BeatFlashIntensity float32 // [0, 2]
	ChromaticOffset    float32 // [0, 5]
	WaveAmplitude      float32 // [0, 1]
	ZalgoIntensity     float32 // [0, 5]
	ScanlineGap        uint8   // [0, 8]
	StrobeDecay        float32 // onset envelope decay per frame
	ColorPulseSpeed    float32 // [0, 5]
	TemporalStability  float32 // [0, 1]

	// Virtual camera.
	CameraZoom     float32 // [0.1, 10]
	CameraRotation float32 // radians
	CameraPanX     float32 // [-2, 2], fraction of frame size
	CameraPanY     float32 // [-2, 2]

	// Audio reactivity.
	AudioMappings    []AudioMapping
	AudioSmoothing   float32 // [0, 1]
	AudioSensitivity float32 // [0, 5]

	// Pacing.
	TargetFPS int
}

// Default returns the baseline configuration with the stock mapping table.
func Default() Render {
	return Render{
		RenderMode:   ModeAscii,
		Charset:      " .:-=+*#%@",
		CharsetIndex: 0,
		Invert:       false,
		ColorEnabled: true,

		EdgeThreshold: 0.3,
		EdgeMix:       0.5,
		ShapeMatching: false,
		AspectRatio:   2.0,
		DensityScale:  1.0,
		DitherEnabled: false,

		ColorMode:  ColorHSVBright,
		Saturation: 1.2,
		Contrast:   1.0,
		Brightness: 0.0,
		BgStyle:    BgBlack,

		StrobeDecay: 0.85,
		CameraZoom:  1.0,

		AudioMappings: []AudioMapping{
			{Source: "bass", Target: "edge_threshold", Amount: 0.3, Enabled: true},
			{Source: "spectral_flux", Target: "contrast", Amount: 0.5, Enabled: true},
			{Source: "onset", Target: "invert", Amount: 1.0, Enabled: true},
			{Source: "rms", Target: "brightness", Amount: 0.2, Enabled: true},
		},
		AudioSmoothing:   0.7,
		AudioSensitivity: 1.0,

		TargetFPS: 30,
	}
}

// fileFormat mirrors the on-disk TOML layout. Every field is optional so a
// config file only overrides what it names.
type fileFormat struct {
	Render renderSection `toml:"render"`
	Audio  audioSection  `toml:"audio"`
}

type renderSection struct {
	RenderMode    *string  `toml:"render_mode"`
	Charset       *string  `toml:"charset"`
	Invert        *bool    `toml:"invert"`
	ColorEnabled  *bool    `toml:"color_enabled"`
	EdgeThreshold *float32 `toml:"edge_threshold"`
	EdgeMix       *float32 `toml:"edge_mix"`
	ShapeMatching *bool    `toml:"shape_matching"`
	AspectRatio   *float32 `toml:"aspect_ratio"`
	DensityScale  *float32 `toml:"density_scale"`
	Dither        *bool    `toml:"dither"`
	ColorMode     *string  `toml:"color_mode"`
	Saturation    *float32 `toml:"saturation"`
	Contrast      *float32 `toml:"contrast"`
	Brightness    *float32 `toml:"brightness"`
	BgStyle       *string  `toml:"bg_style"`
	TargetFPS     *int     `toml:"target_fps"`

	FadeDecay       *float32 `toml:"fade_decay"`
	GlowIntensity   *float32 `toml:"glow_intensity"`
	BeatFlash       *float32 `toml:"beat_flash_intensity"`
	ChromaticOffset *float32 `toml:"chromatic_offset"`
	WaveAmplitude   *float32 `toml:"wave_amplitude"`
	ZalgoIntensity  *float32 `toml:"zalgo_intensity"`
	ScanlineGap     *int     `toml:"scanline_gap"`
	StrobeDecay     *float32 `toml:"strobe_decay"`
	ColorPulseSpeed *float32 `toml:"color_pulse_speed"`

	CameraZoom     *float32 `toml:"camera_zoom"`
	CameraRotation *float32 `toml:"camera_rotation"`
	CameraPanX     *float32 `toml:"camera_pan_x"`
	CameraPanY     *float32 `toml:"camera_pan_y"`
}

type audioSection struct {
	Smoothing   *float32      `toml:"smoothing"`
	Sensitivity *float32      `toml:"sensitivity"`
	Mappings    []mappingFile `toml:"mappings"`
}

type mappingFile struct {
	Source    string   `toml:"source"`
	Target    string   `toml:"target"`
	Amount    float32  `toml:"amount"`
	Offset    float32  `toml:"offset"`
	Curve     string   `toml:"curve"`
	Enabled   *bool    `toml:"enabled"`
	Smoothing *float32 `toml:"smoothing"`
}

// Load reads a TOML config file and merges it over the defaults. A file
// that cannot be read or parsed returns an error and no config; callers
// keep whatever config they already have.
func Load(path string) (Render, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Render{}, fmt.Errorf("read config %s: %w", path, err)
	}

	var file fileFormat
	if err := toml.Unmarshal(content, &file); err != nil {
		return Render{}, fmt.Errorf("parse config %s: %w", path, err)
	}

	cfg := Default()
	r := file.Render
	if r.RenderMode != nil {
		mode, err := ParseRenderMode(*r.RenderMode)
		if err != nil {
			return Render{}, fmt.Errorf("config %s: %w", path, err)
		}
		cfg.RenderMode = mode
	}
	if r.Charset != nil {
		cfg.Charset = *r.Charset
	}
	setBool(&cfg.Invert, r.Invert)
	setBool(&cfg.ColorEnabled, r.ColorEnabled)
	setF32(&cfg.EdgeThreshold, r.EdgeThreshold)
	setF32(&cfg.EdgeMix, r.EdgeMix)
	setBool(&cfg.ShapeMatching, r.ShapeMatching)
	setF32(&cfg.AspectRatio, r.AspectRatio)
	setF32(&cfg.DensityScale, r.DensityScale)
	setBool(&cfg.DitherEnabled, r.Dither)
	if r.ColorMode != nil {
		switch strings.ToLower(*r.ColorMode) {
		case "direct":
			cfg.ColorMode = ColorDirect
		case "hsv_bright", "hsv":
			cfg.ColorMode = ColorHSVBright
		case "quantized":
			cfg.ColorMode = ColorQuantized
		case "oklab":
			cfg.ColorMode = ColorOklab
		default:
			return Render{}, fmt.Errorf("config %s: unknown color mode %q", path, *r.ColorMode)
		}
	}
	setF32(&cfg.Saturation, r.Saturation)
	setF32(&cfg.Contrast, r.Contrast)
	setF32(&cfg.Brightness, r.Brightness)
	if r.BgStyle != nil {
		switch strings.ToLower(*r.BgStyle) {
		case "black":
			cfg.BgStyle = BgBlack
		case "source_dim":
			cfg.BgStyle = BgSourceDim
		case "transparent":
			cfg.BgStyle = BgTransparent
		default:
			return Render{}, fmt.Errorf("config %s: unknown bg style %q", path, *r.BgStyle)
		}
	}
	if r.TargetFPS != nil {
		if *r.TargetFPS < 1 || *r.TargetFPS > 240 {
			return Render{}, fmt.Errorf("config %s: target_fps %d out of range", path, *r.TargetFPS)
		}
		cfg.TargetFPS = *r.TargetFPS
	}

	setF32(&cfg.FadeDecay, r.FadeDecay)
	setF32(&cfg.GlowIntensity, r.GlowIntensity)
	setF32(&cfg.BeatFlashIntensity, r.BeatFlash)
	setF32(&cfg.ChromaticOffset, r.ChromaticOffset)
	setF32(&cfg.WaveAmplitude, r.WaveAmplitude)
	setF32(&cfg.ZalgoIntensity, r.ZalgoIntensity)
	if r.ScanlineGap != nil {
		gap := *r.ScanlineGap
		if gap < 0 || gap > 8 {
			return Render{}, fmt.Errorf("config %s: scanline_gap %d out of range", path, gap)
		}
		cfg.ScanlineGap = uint8(gap)
	}
	setF32(&cfg.StrobeDecay, r.StrobeDecay)
	setF32(&cfg.ColorPulseSpeed, r.ColorPulseSpeed)
	setF32(&cfg.CameraZoom, r.CameraZoom)
	setF32(&cfg.CameraRotation, r.CameraRotation)
	setF32(&cfg.CameraPanX, r.CameraPanX)
	setF32(&cfg.CameraPanY, r.CameraPanY)

	a := file.Audio
	setF32(&cfg.AudioSmoothing, a.Smoothing)
	setF32(&cfg.AudioSensitivity, a.Sensitivity)
	if a.Mappings != nil {
		mappings := make([]AudioMapping, 0, len(a.Mappings))
		for _, m := range a.Mappings {
			curve, err := ParseCurve(m.Curve)
			if err != nil {
				return Render{}, fmt.Errorf("config %s: %w", path, err)
			}
			enabled := true
			if m.Enabled != nil {
				enabled = *m.Enabled
			}
			mappings = append(mappings, AudioMapping{
				Source:    m.Source,
				Target:    m.Target,
				Amount:    m.Amount,
				Offset:    m.Offset,
				Curve:     curve,
				Enabled:   enabled,
				Smoothing: m.Smoothing,
			})
		}
		cfg.AudioMappings = mappings
	}

	return cfg, nil
}

func setF32(dst *float32, src *float32) {
	if src != nil {
		*dst = *src
	}
}

func setBool(dst *bool, src *bool) {
	if src != nil {
		*dst = *src
	}
}
