package ascii

import (
	"testing"

	"github.com/linuxmatters/jivescii/internal/config"
	"github.com/linuxmatters/jivescii/internal/frame"
)

// solidBuffer builds a buffer filled with one color.
func solidBuffer(t *testing.T, w, h int, r, g, b uint8) *frame.Buffer {
	t.Helper()
	buf := frame.NewBuffer(w, h)
	for i := 0; i < len(buf.Data); i += 4 {
		buf.Data[i] = r
		buf.Data[i+1] = g
		buf.Data[i+2] = b
		buf.Data[i+3] = 255
	}
	return buf
}

func TestEncodeBrailleExtremes(t *testing.T) {
	if got := EncodeBraille([8]bool{}); got != 0x2800 {
		t.Errorf("empty braille = %U, want U+2800", got)
	}
	all := [8]bool{true, true, true, true, true, true, true, true}
	if got := EncodeBraille(all); got != 0x28FF {
		t.Errorf("full braille = %U, want U+28FF", got)
	}
}

func TestEncodeBrailleDotOrder(t *testing.T) {
	// Dot 1 (top-left) sets bit 0; dot 8 (bottom-right) sets bit 7.
	var d [8]bool
	d[0] = true
	if got := EncodeBraille(d); got != 0x2801 {
		t.Errorf("dot 1 = %U, want U+2801", got)
	}
	d = [8]bool{}
	d[7] = true
	if got := EncodeBraille(d); got != 0x2880 {
		t.Errorf("dot 8 = %U, want U+2880", got)
	}
}

func TestSextantTableEndpoints(t *testing.T) {
	if sextantChars[0] != ' ' {
		t.Errorf("sextant[0] = %q, want space", sextantChars[0])
	}
	if sextantChars[63] != '█' {
		t.Errorf("sextant[63] = %q, want full block", sextantChars[63])
	}
	if len(sextantChars) != 64 {
		t.Errorf("sextant table length = %d, want 64", len(sextantChars))
	}
}

func TestQuadrantTable(t *testing.T) {
	if quadrantChars[0] != ' ' || quadrantChars[15] != '█' {
		t.Errorf("quadrant endpoints = %q, %q", quadrantChars[0], quadrantChars[15])
	}
	// bit0=TL alone.
	if quadrantChars[1] != '▘' {
		t.Errorf("quadrant TL = %q, want ▘", quadrantChars[1])
	}
	// Bottom half: BL|BR = bits 2|3.
	if quadrantChars[12] != '▄' {
		t.Errorf("quadrant bottom half = %q, want ▄", quadrantChars[12])
	}
}

func TestOctantTablePromotions(t *testing.T) {
	if octantChars[0x00] != ' ' || octantChars[0xFF] != '█' {
		t.Error("octant endpoints wrong")
	}
	if octantChars[0x0F] != '▀' || octantChars[0xF0] != '▄' {
		t.Error("octant half-block promotions wrong")
	}
	if octantChars[0x55] != '▌' || octantChars[0xAA] != '▐' {
		t.Error("octant column promotions wrong")
	}
	// A mask with no quadrant equivalent degrades to braille.
	if ch := octantChars[0x01]; ch < 0x2800 || ch > 0x28FF {
		t.Errorf("octant fallback = %U, want braille range", ch)
	}
}

func TestAsciiMidGrayStillImage(t *testing.T) {
	// 100×100 mid-gray frame, charset " .:#@", 50×50 grid: every cell maps
	// to ':' and keeps the gray in direct color mode.
	in := solidBuffer(t, 100, 100, 128, 128, 128)
	grid := frame.NewGrid(50, 50)
	cfg := config.Default()
	cfg.Charset = " .:#@"
	cfg.ColorMode = config.ColorDirect
	cfg.EdgeThreshold = 0

	c := NewCompositor(cfg.Charset)
	c.Process(in, &cfg, grid)

	for y := 0; y < grid.Height; y++ {
		for x := 0; x < grid.Width; x++ {
			cell := grid.Get(x, y)
			if cell.Ch != ':' {
				t.Fatalf("cell (%d,%d) = %q, want ':'", x, y, cell.Ch)
			}
			if cell.Fg != [3]uint8{128, 128, 128} {
				t.Fatalf("cell (%d,%d) fg = %v, want gray", x, y, cell.Fg)
			}
		}
	}
}

func TestHalfBlockTwoColor(t *testing.T) {
	// 4×4 image alternating red/blue rows; grid 4×2: each cell's top
	// sub-pixel row is red and its bottom row blue, so every cell is '▄'
	// with fg=blue (bottom) and bg=red (top).
	in := frame.NewBuffer(4, 4)
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			idx := (y*4 + x) * 4
			if y%2 == 0 {
				in.Data[idx] = 255 // red
			} else {
				in.Data[idx+2] = 255 // blue
			}
			in.Data[idx+3] = 255
		}
	}
	grid := frame.NewGrid(4, 2)
	cfg := config.Default()
	cfg.RenderMode = config.ModeHalfBlock

	NewCompositor(cfg.Charset).Process(in, &cfg, grid)

	for y := 0; y < 2; y++ {
		for x := 0; x < 4; x++ {
			cell := grid.Get(x, y)
			if cell.Ch != '▄' {
				t.Fatalf("cell (%d,%d) = %q, want ▄", x, y, cell.Ch)
			}
			if cell.Fg != [3]uint8{0, 0, 255} {
				t.Fatalf("cell (%d,%d) fg = %v, want blue", x, y, cell.Fg)
			}
			if cell.Bg != [3]uint8{255, 0, 0} {
				t.Fatalf("cell (%d,%d) bg = %v, want red", x, y, cell.Bg)
			}
		}
	}
}

func TestBrailleUniformFieldIsEmpty(t *testing.T) {
	// On a uniform field nothing clears the local-mean threshold, so every
	// cell is the empty braille pattern.
	in := solidBuffer(t, 8, 16, 100, 100, 100)
	grid := frame.NewGrid(4, 4)
	cfg := config.Default()
	cfg.RenderMode = config.ModeBraille

	NewCompositor(cfg.Charset).Process(in, &cfg, grid)
	if ch := grid.Get(0, 0).Ch; ch != 0x2800 {
		t.Errorf("uniform braille cell = %U, want U+2800", ch)
	}
}

func TestBayerDitherPreservesExtremes(t *testing.T) {
	for x := 0; x < 8; x++ {
		for y := 0; y < 8; y++ {
			if got := Bayer8x8(0, x, y, 5); got != 0 {
				t.Fatalf("dither(0) at (%d,%d) = %d", x, y, got)
			}
			if got := Bayer8x8(255, x, y, 5); got != 255 {
				t.Fatalf("dither(255) at (%d,%d) = %d", x, y, got)
			}
		}
	}
}

func TestBayerDitherBounded(t *testing.T) {
	// Dither amplitude must stay within one quantization step.
	const levels = 5
	levelsF := float64(levels)
	for lum := 2; lum <= 253; lum += 13 {
		for x := 0; x < 8; x++ {
			for y := 0; y < 8; y++ {
				got := int(Bayer8x8(uint8(lum), x, y, levels))
				maxDelta := int(255.0/levelsF/2.0) + 2
				if diff := got - lum; diff > maxDelta || diff < -maxDelta {
					t.Fatalf("dither moved %d -> %d at (%d,%d)", lum, got, x, y)
				}
			}
		}
	}
}

func TestEdgeCharDirections(t *testing.T) {
	cases := []struct {
		gx, gy float32
		want   rune
	}{
		{1, 0, '─'},
		{0, 1, '│'},
		{1, 1, '╲'},
		{-1, 1, '╱'},
		{0, 0, ' '},
	}
	for _, c := range cases {
		if got := EdgeChar(c.gx, c.gy); got != c.want {
			t.Errorf("EdgeChar(%f,%f) = %q, want %q", c.gx, c.gy, got, c.want)
		}
	}
}

func TestDetectEdgeRange(t *testing.T) {
	// A hard vertical boundary produces a strong normalized magnitude.
	in := frame.NewBuffer(10, 10)
	for y := 0; y < 10; y++ {
		for x := 5; x < 10; x++ {
			idx := (y*10 + x) * 4
			in.Data[idx], in.Data[idx+1], in.Data[idx+2], in.Data[idx+3] = 255, 255, 255, 255
		}
	}
	mag := DetectEdge(in, 5, 5)
	if mag <= 0.3 || mag > 1.0 {
		t.Errorf("edge magnitude at boundary = %f", mag)
	}
	if got := DetectEdge(in, 0, 0); got != 0 {
		t.Errorf("border edge magnitude = %f, want 0", got)
	}
}

func TestShapeMatcherExtremes(t *testing.T) {
	m := NewShapeMatcher()
	var black [25]uint8
	if got := m.Match(&black); got != ' ' {
		t.Errorf("all-black match = %q, want space", got)
	}
	var white [25]uint8
	for i := range white {
		white[i] = 255
	}
	if got := m.Match(&white); got != '█' {
		t.Errorf("all-white match = %q, want full block", got)
	}
}
