package render

import (
	"strings"
	"testing"

	"github.com/linuxmatters/jivescii/internal/config"
	"github.com/linuxmatters/jivescii/internal/frame"
)

func TestFadeTrailsZeroDecayIsIdentity(t *testing.T) {
	current := frame.NewGrid(4, 4)
	previous := frame.NewGrid(4, 4)
	for i := range current.Cells {
		cell := frame.Cell{Ch: '#', Fg: [3]uint8{100, 100, 100}}
		current.Cells[i] = cell
		previous.Cells[i] = cell
	}
	before := make([]frame.Cell, len(current.Cells))
	copy(before, current.Cells)

	ApplyFadeTrails(current, previous, 0)

	for i := range current.Cells {
		if current.Cells[i] != before[i] {
			t.Fatalf("cell %d changed with decay 0", i)
		}
	}
}

func TestFadeTrailsAdoptsGhost(t *testing.T) {
	current := frame.NewGrid(2, 1)
	previous := frame.NewGrid(2, 1)
	previous.Set(0, 0, frame.Cell{Ch: '@', Fg: [3]uint8{200, 100, 50}})

	ApplyFadeTrails(current, previous, 0.5)

	ghost := current.Get(0, 0)
	if ghost.Ch != '@' {
		t.Errorf("blank cell did not adopt previous glyph: %q", ghost.Ch)
	}
	if ghost.Fg != [3]uint8{100, 50, 25} {
		t.Errorf("ghost fg = %v, want dimmed by decay", ghost.Fg)
	}
}

func TestFadeTrailsDimensionMismatchNoop(t *testing.T) {
	current := frame.NewGrid(4, 4)
	previous := frame.NewGrid(5, 4)
	for i := range previous.Cells {
		previous.Cells[i] = frame.Cell{Ch: '#', Fg: [3]uint8{255, 255, 255}}
	}
	ApplyFadeTrails(current, previous, 0.9)
	if current.Get(0, 0).Ch != ' ' {
		t.Error("fade trails ran on mismatched dimensions")
	}
}

func TestBeatFlashBoost(t *testing.T) {
	grid := frame.NewGrid(2, 2)
	for i := range grid.Cells {
		grid.Cells[i] = frame.Cell{Ch: '#', Fg: [3]uint8{100, 200, 250}}
	}
	features := frame.AudioFeatures{Onset: true, BeatIntensity: 0.5}

	ApplyBeatFlash(grid, &features, 1.0)

	// boost = floor(0.5 * 80) = 40, saturating.
	got := grid.Get(0, 0).Fg
	if got != [3]uint8{140, 240, 255} {
		t.Errorf("flashed fg = %v, want (140,240,255)", got)
	}
}

func TestBeatFlashRequiresOnset(t *testing.T) {
	grid := frame.NewGrid(1, 1)
	grid.Set(0, 0, frame.Cell{Ch: '#', Fg: [3]uint8{100, 100, 100}})
	features := frame.AudioFeatures{Onset: false, BeatIntensity: 1}
	ApplyBeatFlash(grid, &features, 1.0)
	if grid.Get(0, 0).Fg != [3]uint8{100, 100, 100} {
		t.Error("beat flash applied without an onset")
	}
}

func TestGlowSpreadsFromBrightNeighbors(t *testing.T) {
	grid := frame.NewGrid(5, 5)
	for i := range grid.Cells {
		grid.Cells[i] = frame.Cell{Ch: '.', Fg: [3]uint8{50, 50, 50}}
	}
	grid.Set(2, 2, frame.Cell{Ch: '@', Fg: [3]uint8{255, 255, 255}})

	var scratch []uint8
	ApplyGlow(grid, 1.0, &scratch)

	// 4-neighbors of the bright cell get +40.
	if got := grid.Get(1, 2).Fg; got != [3]uint8{90, 90, 90} {
		t.Errorf("west neighbor fg = %v, want (90,90,90)", got)
	}
	// Diagonal neighbors are untouched.
	if got := grid.Get(1, 1).Fg; got != [3]uint8{50, 50, 50} {
		t.Errorf("diagonal fg = %v, want unchanged", got)
	}
}

func TestScanlines(t *testing.T) {
	grid := frame.NewGrid(3, 6)
	for i := range grid.Cells {
		grid.Cells[i] = frame.Cell{Ch: '#'}
	}
	ApplyScanlines(grid, 3)
	if grid.Get(0, 0).Ch != ' ' || grid.Get(0, 3).Ch != ' ' {
		t.Error("scanline rows not blanked")
	}
	if grid.Get(0, 1).Ch != '#' {
		t.Error("non-scanline row blanked")
	}
}

func TestCameraIdentityIsByteCopy(t *testing.T) {
	cfg := config.Default()
	in := frame.NewBuffer(8, 8)
	for i := range in.Data {
		in.Data[i] = byte(i % 251)
	}
	out := frame.NewBuffer(8, 8)

	ApplyCamera(&cfg, in, out)

	for i := range in.Data {
		if out.Data[i] != in.Data[i] {
			t.Fatalf("byte %d differs under identity camera", i)
		}
	}
}

func TestCameraBakedSourceBypassed(t *testing.T) {
	cfg := config.Default()
	cfg.CameraZoom = 3.0
	cfg.CameraRotation = 1.0

	in := frame.NewBuffer(8, 8)
	in.CameraBaked = true
	for i := range in.Data {
		in.Data[i] = byte(i % 100)
	}
	out := frame.NewBuffer(8, 8)

	ApplyCamera(&cfg, in, out)
	for i := range in.Data {
		if out.Data[i] != in.Data[i] {
			t.Fatal("camera transformed a camera-baked source")
		}
	}
}

func TestCameraOutOfBoundsIsTransparentBlack(t *testing.T) {
	cfg := config.Default()
	cfg.CameraZoom = 0.25 // zoom out: borders sample outside the input

	in := frame.NewBuffer(8, 8)
	for i := range in.Data {
		in.Data[i] = 255
	}
	out := frame.NewBuffer(8, 8)

	ApplyCamera(&cfg, in, out)

	// Corner pixels map far outside the source.
	if out.Data[0] != 0 || out.Data[3] != 0 {
		t.Errorf("corner pixel = %v, want transparent black", out.Data[:4])
	}
	// Center still samples the source.
	centerIdx := (4*8 + 4) * 4
	if out.Data[centerIdx] != 255 {
		t.Error("center pixel lost under zoom-out")
	}
}

func TestFPSCounterWindow(t *testing.T) {
	c := NewFPSCounter(10)
	if c.FPS() != 0 {
		t.Error("fresh counter should report 0")
	}
	for i := 0; i < 12; i++ {
		c.Tick()
	}
	if c.FPS() <= 0 {
		t.Error("fps not positive after ticks")
	}
}

func TestANSIWriterTruecolor(t *testing.T) {
	grid := frame.NewGrid(2, 1)
	grid.Set(0, 0, frame.Cell{Ch: 'A', Fg: [3]uint8{255, 0, 0}})
	grid.Set(1, 0, frame.Cell{Ch: 'B', Fg: [3]uint8{255, 0, 0}, Bg: [3]uint8{0, 0, 255}})

	out := NewANSIWriter(2, 1).Render(grid, 0)

	if !strings.Contains(out, "\x1b[38;2;255;0;0m") {
		t.Error("missing truecolor foreground sequence")
	}
	if !strings.Contains(out, "\x1b[48;2;0;0;255m") {
		t.Error("missing truecolor background sequence")
	}
	if !strings.Contains(out, "A") || !strings.Contains(out, "B") {
		t.Error("missing cell glyphs")
	}
	// Identical consecutive fg colors are not re-emitted.
	if strings.Count(out, "38;2;255;0;0") != 1 {
		t.Errorf("fg sequence repeated: %q", out)
	}
}

func TestANSIWriterShadeGlyphResetsBg(t *testing.T) {
	grid := frame.NewGrid(2, 1)
	grid.Set(0, 0, frame.Cell{Ch: '#', Fg: [3]uint8{10, 10, 10}, Bg: [3]uint8{1, 2, 3}})
	grid.Set(1, 0, frame.Cell{Ch: '▒', Fg: [3]uint8{200, 200, 200}})

	out := NewANSIWriter(2, 1).Render(grid, 0)
	// The shade glyph with black bg must drop back to the default bg.
	if !strings.Contains(out, "\x1b[49m") {
		t.Errorf("no bg reset before shade glyph: %q", out)
	}
}

func TestANSIWriterZalgoDeterministic(t *testing.T) {
	grid := frame.NewGrid(8, 2)
	for i := range grid.Cells {
		grid.Cells[i] = frame.Cell{Ch: 'x', Fg: [3]uint8{255, 255, 255}}
	}
	a := NewANSIWriter(8, 2).Render(grid, 3.0)
	b := NewANSIWriter(8, 2).Render(grid, 3.0)
	if a != b {
		t.Error("zalgo output is not deterministic for identical frames")
	}
	if a == NewANSIWriter(8, 2).Render(grid, 0) {
		t.Error("zalgo intensity 3 produced no decoration")
	}
}
