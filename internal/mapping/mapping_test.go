package mapping

import (
	"testing"

	"github.com/linuxmatters/jivescii/internal/audio"
	"github.com/linuxmatters/jivescii/internal/config"
	"github.com/linuxmatters/jivescii/internal/frame"
)

func TestResolveSource(t *testing.T) {
	f := frame.AudioFeatures{
		RMS:  0.5,
		Bass: 0.7,
		BPM:  120,
	}
	f.Onset = true

	cases := []struct {
		source string
		want   float32
	}{
		{"rms", 0.5},
		{"bass", 0.7},
		{"onset", 1},
		{"bpm", 0.6},
		{"nonexistent", 0},
	}
	for _, c := range cases {
		if got := ResolveSource(&f, c.source); got != c.want {
			t.Errorf("ResolveSource(%q) = %f, want %f", c.source, got, c.want)
		}
	}

	f.Onset = false
	if got := ResolveSource(&f, "onset"); got != 0 {
		t.Errorf("onset false resolves to %f, want 0", got)
	}
}

func TestApplyCurve(t *testing.T) {
	cases := []struct {
		curve config.Curve
		in    float32
		want  float32
	}{
		{config.CurveLinear, 0.5, 0.5},
		{config.CurveExponential, 0.5, 0.25},
		{config.CurveThreshold, 0.2, 0},
		{config.CurveThreshold, 1.0, 1.0},
		{config.CurveSmooth, 0, 0},
		{config.CurveSmooth, 1, 1},
		{config.CurveSmooth, 0.5, 0.5},
	}
	for _, c := range cases {
		got := ApplyCurve(c.curve, c.in)
		if diff := got - c.want; diff > 1e-6 || diff < -1e-6 {
			t.Errorf("curve %v (%f) = %f, want %f", c.curve, c.in, got, c.want)
		}
	}
}

func TestEngineZeroAmountIsIdentity(t *testing.T) {
	cfg := config.Default()
	cfg.AudioMappings = []config.AudioMapping{
		{Source: "rms", Target: "contrast", Amount: 0, Offset: 0, Enabled: true},
	}
	base := cfg

	features := frame.AudioFeatures{RMS: 1.0}
	engine := NewEngine()
	for i := 0; i < 10; i++ {
		working := base
		engine.Apply(&working, &features)
		if working.Contrast != base.Contrast {
			t.Fatalf("contrast changed with zero amount: %f", working.Contrast)
		}
	}
}

func TestEngineRespectsClampsUnderAdversarialInput(t *testing.T) {
	one := float32(1.0)
	cfg := config.Default()
	cfg.AudioSensitivity = 5
	cfg.AudioMappings = []config.AudioMapping{
		{Source: "rms", Target: "contrast", Amount: 100, Offset: 100, Enabled: true, Smoothing: &one},
		{Source: "rms", Target: "brightness", Amount: 100, Offset: 100, Enabled: true, Smoothing: &one},
		{Source: "rms", Target: "density_scale", Amount: 100, Offset: 100, Enabled: true, Smoothing: &one},
		{Source: "rms", Target: "camera_zoom", Amount: 100, Offset: 100, Enabled: true, Smoothing: &one},
		{Source: "rms", Target: "edge_threshold", Amount: 100, Offset: 100, Enabled: true, Smoothing: &one},
	}

	features := frame.AudioFeatures{RMS: 1.0}
	engine := NewEngine()
	working := cfg
	engine.Apply(&working, &features)

	if working.Contrast != 3 {
		t.Errorf("contrast = %f, want clamp 3", working.Contrast)
	}
	if working.Brightness != 1 {
		t.Errorf("brightness = %f, want clamp 1", working.Brightness)
	}
	if working.DensityScale != 4 {
		t.Errorf("density = %f, want clamp 4", working.DensityScale)
	}
	if working.CameraZoom != 10 {
		t.Errorf("zoom = %f, want clamp 10", working.CameraZoom)
	}
	if working.EdgeThreshold != 1 {
		t.Errorf("edge threshold = %f, want clamp 1", working.EdgeThreshold)
	}
}

func TestInvertTogglesOnlyAboveHalf(t *testing.T) {
	one := float32(1.0)
	base := config.Default()
	base.AudioMappings = []config.AudioMapping{
		{Source: "rms", Target: "invert", Amount: 1, Enabled: true, Smoothing: &one},
	}

	engine := NewEngine()

	working := base
	features := frame.AudioFeatures{RMS: 0.4}
	engine.Apply(&working, &features)
	if working.Invert {
		t.Error("invert toggled with delta 0.4")
	}

	engine = NewEngine()
	working = base
	features.RMS = 0.9
	engine.Apply(&working, &features)
	if !working.Invert {
		t.Error("invert did not toggle with delta 0.9")
	}
}

func TestDisabledMappingIgnored(t *testing.T) {
	one := float32(1.0)
	cfg := config.Default()
	cfg.AudioMappings = []config.AudioMapping{
		{Source: "rms", Target: "contrast", Amount: 1, Enabled: false, Smoothing: &one},
	}
	working := cfg
	features := frame.AudioFeatures{RMS: 1}
	NewEngine().Apply(&working, &features)
	if working.Contrast != cfg.Contrast {
		t.Errorf("disabled mapping changed contrast to %f", working.Contrast)
	}
}

func TestPerEdgeSmoothingConverges(t *testing.T) {
	alpha := float32(0.5)
	base := config.Default()
	base.AudioMappings = []config.AudioMapping{
		{Source: "rms", Target: "brightness", Amount: 0.5, Enabled: true, Smoothing: &alpha},
	}
	base.AudioSensitivity = 1

	engine := NewEngine()
	features := frame.AudioFeatures{RMS: 1}

	var prev float32
	for i := 0; i < 20; i++ {
		working := base
		engine.Apply(&working, &features)
		delta := working.Brightness - base.Brightness
		if i > 0 && delta < prev-1e-6 {
			t.Fatalf("smoothed delta regressed: %f -> %f", prev, delta)
		}
		prev = delta
	}
	// EMA converges toward amount * sensitivity = 0.5.
	if prev < 0.49 || prev > 0.51 {
		t.Errorf("converged delta = %f, want ~0.5", prev)
	}
}

// TestLiveOfflineParity drives Engine and Generative with identical
// features and asserts identical effective configs frame by frame.
func TestLiveOfflineParity(t *testing.T) {
	smoothing := float32(0.3)
	base := config.Default()
	base.AudioMappings = []config.AudioMapping{
		{Source: "bass", Target: "contrast", Amount: 0.8, Curve: config.CurveSmooth, Enabled: true, Smoothing: &smoothing},
		{Source: "rms", Target: "glow_intensity", Amount: 1.2, Curve: config.CurveExponential, Enabled: true},
	}

	// Synthetic timeline with varying features.
	frames := make([]frame.AudioFeatures, 60)
	for i := range frames {
		frames[i].Bass = float32(i%10) / 10.0
		frames[i].RMS = float32(i%7) / 7.0
	}
	tl := &audio.Timeline{Frames: frames, FrameDuration: 1.0 / 30.0, SampleRate: 44100}

	gen := NewGenerative(base, tl)
	live := NewEngine()

	for i := range frames {
		tSecs := float64(i) / 30.0

		var offline config.Render
		gen.ApplyAt(tSecs, &offline)

		online := base
		live.Apply(&online, &frames[i])

		if offline.Contrast != online.Contrast {
			t.Fatalf("frame %d: contrast offline %f vs live %f", i, offline.Contrast, online.Contrast)
		}
		if offline.GlowIntensity != online.GlowIntensity {
			t.Fatalf("frame %d: glow offline %f vs live %f", i, offline.GlowIntensity, online.GlowIntensity)
		}
	}
}

func TestCreationCustomPresetIsInert(t *testing.T) {
	c := NewCreation()
	c.ActivePreset = PresetCustom
	cfg := config.Default()
	before := cfg
	audioF := frame.AudioFeatures{RMS: 1, Bass: 1}
	img := ImageFeatures{AvgLuminance: 0.5}
	c.Modulate(&audioF, &img, &cfg, 1.0/30.0)
	if cfg.FadeDecay != before.FadeDecay || cfg.GlowIntensity != before.GlowIntensity ||
		cfg.Brightness != before.Brightness || cfg.DensityScale != before.DensityScale {
		t.Error("custom preset modified effect parameters")
	}
}

func TestCreationDensityAntiThrashing(t *testing.T) {
	c := NewCreation()
	c.ActivePreset = PresetPercussive
	cfg := config.Default()
	img := ImageFeatures{AvgLuminance: 0.5}

	// Small bass wiggle below the threshold keeps density pinned.
	audioF := frame.AudioFeatures{Bass: 0.1}
	c.Modulate(&audioF, &img, &cfg, 0.033)
	first := cfg.DensityScale

	audioF.Bass = 0.15
	c.Modulate(&audioF, &img, &cfg, 0.033)
	if cfg.DensityScale != first {
		t.Errorf("density thrashed: %f -> %f", first, cfg.DensityScale)
	}

	// A big jump crosses the threshold and applies.
	audioF.Bass = 1.0
	c.Modulate(&audioF, &img, &cfg, 0.033)
	if cfg.DensityScale == first {
		t.Error("large density change was suppressed")
	}
}

func TestCreationPresetCycle(t *testing.T) {
	p := PresetAmbient
	seen := map[Preset]bool{}
	for i := 0; i < 11; i++ {
		seen[p] = true
		p = p.Next()
	}
	if len(seen) != 11 || p != PresetAmbient {
		t.Errorf("preset cycle covered %d presets", len(seen))
	}
}

func TestParsePreset(t *testing.T) {
	if p, ok := ParsePreset("psychedelic"); !ok || p != PresetPsychedelic {
		t.Errorf("parse psychedelic = %v, %v", p, ok)
	}
	if p, ok := ParsePreset("lofi"); !ok || p != PresetLoFi {
		t.Errorf("parse lofi = %v, %v", p, ok)
	}
	if _, ok := ParsePreset("nope"); ok {
		t.Error("parsed an unknown preset")
	}
}

func TestComputeImageFeatures(t *testing.T) {
	g := frame.NewGrid(4, 4)
	// Half the cells bright red glyphs.
	for i := 0; i < 8; i++ {
		g.Cells[i] = frame.Cell{Ch: '#', Fg: [3]uint8{255, 0, 0}}
	}
	img := ComputeImageFeatures(g)
	if img.EdgeDensity != 0.5 {
		t.Errorf("edge density = %f, want 0.5", img.EdgeDensity)
	}
	if img.AvgLuminance < 0.4 || img.AvgLuminance > 0.6 {
		t.Errorf("avg luminance = %f, want ~0.5", img.AvgLuminance)
	}
	if img.DominantHue != 0 {
		t.Errorf("dominant hue bucket = %f, want 0 (red)", img.DominantHue)
	}
}
