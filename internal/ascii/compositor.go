package ascii

import (
	"runtime"
	"sync"

	"github.com/linuxmatters/jivescii/internal/charset"
	"github.com/linuxmatters/jivescii/internal/config"
	"github.com/linuxmatters/jivescii/internal/frame"
)

// Compositor converts pixel frames into character grids, dispatching on the
// configured render mode. The luminance LUT is rebuilt only when the
// charset string changes; everything else is stateless per frame.
type Compositor struct {
	lut            *charset.LUT
	currentCharset string
	charsetLen     int
	shapes         *ShapeMatcher
}

// NewCompositor builds a compositor for the given charset.
func NewCompositor(cs string) *Compositor {
	return &Compositor{
		lut:            charset.NewLUT(cs),
		currentCharset: cs,
		charsetLen:     len([]rune(cs)),
		shapes:         NewShapeMatcher(),
	}
}

// UpdateCharset rebuilds the LUT if the charset changed.
func (c *Compositor) UpdateCharset(cs string) {
	if c.currentCharset != cs {
		c.lut = charset.NewLUT(cs)
		c.currentCharset = cs
		c.charsetLen = len([]rune(cs))
	}
}

// Process renders one frame into the grid using the mode from cfg.
func (c *Compositor) Process(in *frame.Buffer, cfg *config.Render, grid *frame.Grid) {
	if grid.Width == 0 || grid.Height == 0 || in.Width == 0 || in.Height == 0 {
		return
	}
	c.UpdateCharset(cfg.Charset)

	switch cfg.RenderMode {
	case config.ModeAscii:
		c.processAscii(in, cfg, grid)
	case config.ModeHalfBlock:
		processHalfBlock(in, grid)
	case config.ModeQuadrant:
		processQuadrant(in, cfg, grid)
	case config.ModeSextant:
		processSextant(in, cfg, grid)
	case config.ModeOctant:
		processOctant(in, cfg, grid)
	case config.ModeBraille:
		processBraille(in, cfg, grid)
	}
}

// parallelRows splits grid rows across workers and waits for all of them.
// Joins complete before the next pipeline stage starts.
func parallelRows(height int, fn func(y int)) {
	workers := runtime.NumCPU()
	if workers > height {
		workers = height
	}
	if workers <= 1 {
		for y := 0; y < height; y++ {
			fn(y)
		}
		return
	}

	var wg sync.WaitGroup
	chunk := (height + workers - 1) / workers
	for w := 0; w < workers; w++ {
		start := w * chunk
		end := start + chunk
		if end > height {
			end = height
		}
		if start >= end {
			break
		}
		wg.Add(1)
		go func(y0, y1 int) {
			defer wg.Done()
			for y := y0; y < y1; y++ {
				fn(y)
			}
		}(start, end)
	}
	wg.Wait()
}

// applyContrastBrightness adjusts a luminance value: contrast multiplies
// around mid-gray, brightness offsets, result clamped to [0,255].
func applyContrastBrightness(lum uint8, contrast, brightness float32) uint8 {
	v := (float32(lum)-128.0)*contrast + 128.0 + brightness*255.0
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

// processAscii samples one pixel per cell, maps luminance through the LUT
// and overlays edge glyphs where the Sobel magnitude crosses the threshold.
// Color is applied in a second pass so the glyph choice stays pure.
func (c *Compositor) processAscii(in *frame.Buffer, cfg *config.Render, grid *frame.Grid) {
	gw, gh := grid.Width, grid.Height
	levels := float32(c.charsetLen)

	// Edge glyphs take over once the magnitude clears this cutoff; at
	// edge_mix 1 that is the plain threshold, at 0 it is unreachable.
	edgeCutoff := cfg.EdgeThreshold + (1.0-cfg.EdgeMix)*(1.0-cfg.EdgeThreshold)

	parallelRows(gh, func(cy int) {
		py := cy * in.Height / gh
		if py > in.Height-1 {
			py = in.Height - 1
		}
		for cx := 0; cx < gw; cx++ {
			px := cx * in.Width / gw
			if px > in.Width-1 {
				px = in.Width - 1
			}

			lum := in.LuminanceLinear(px, py)
			if cfg.Invert {
				lum = 255 - lum
			}
			lum = applyContrastBrightness(lum, cfg.Contrast, cfg.Brightness)
			if cfg.DitherEnabled {
				lum = Bayer8x8(lum, cx, cy, levels)
			}

			var ch rune
			switch {
			case cfg.ShapeMatching:
				ch = c.shapes.MatchAt(in, px, py)
			default:
				ch = c.lut.Map(lum)
			}

			if cfg.EdgeThreshold > 0 && cfg.EdgeMix > 0 {
				if mag := DetectEdge(in, px, py); mag > cfg.EdgeThreshold && mag >= edgeCutoff {
					gx, gy := Gradient(in, px, py)
					if ec := EdgeChar(gx, gy); ec != ' ' {
						ch = ec
					}
				}
			}

			r, g, b, _ := in.Pixel(px, py)
			cell := frame.Cell{Ch: ch, Fg: [3]uint8{lum, lum, lum}}
			if cfg.ColorEnabled {
				mr, mg, mb := MapColor(r, g, b, cfg.ColorMode, cfg.Saturation)
				cell.Fg = [3]uint8{mr, mg, mb}
			}
			if cfg.BgStyle == config.BgSourceDim {
				cell.Bg = [3]uint8{r / 4, g / 4, b / 4}
			}
			grid.Set(cx, cy, cell)
		}
	})
}

// processHalfBlock renders two vertical pixels per cell with the lower half
// block: the top sample becomes the background, the bottom the foreground.
func processHalfBlock(in *frame.Buffer, grid *frame.Grid) {
	gw, gh := grid.Width, grid.Height
	pixelH := gh * 2

	parallelRows(gh, func(cy int) {
		for cx := 0; cx < gw; cx++ {
			x0 := cx * in.Width / gw
			x1 := (cx + 1) * in.Width / gw
			if x1 > in.Width {
				x1 = in.Width
			}
			yTop := cy * 2 * in.Height / pixelH
			yMid := (cy*2 + 1) * in.Height / pixelH
			yBot := (cy*2 + 2) * in.Height / pixelH
			if yBot > in.Height {
				yBot = in.Height
			}

			tr, tg, tb, _ := in.AreaSample(x0, yTop, x1, yMid)
			br, bg, bb, _ := in.AreaSample(x0, yMid, x1, yBot)

			grid.Set(cx, cy, frame.Cell{
				Ch: '▄',
				Fg: [3]uint8{br, bg, bb},
				Bg: [3]uint8{tr, tg, tb},
			})
		}
	})
}

// subCell collects k sub-pixel luminances plus the average color for one
// cell of a bitmask mode.
func subCell(in *frame.Buffer, cx, cy, cols, rows, gw, gh int, lums []uint8) (avg [3]uint8, lumSum uint32) {
	pixelW := gw * cols
	pixelH := gh * rows
	baseX := cx * cols * in.Width / pixelW
	baseY := cy * rows * in.Height / pixelH

	var sr, sg, sb uint32
	i := 0
	for dy := 0; dy < rows; dy++ {
		for dx := 0; dx < cols; dx++ {
			px := baseX + dx*in.Width/pixelW
			if px > in.Width-1 {
				px = in.Width - 1
			}
			py := baseY + dy*in.Height/pixelH
			if py > in.Height-1 {
				py = in.Height - 1
			}
			lum := in.LuminanceLinear(px, py)
			r, g, b, _ := in.Pixel(px, py)
			lums[i] = lum
			lumSum += uint32(lum)
			sr += uint32(r)
			sg += uint32(g)
			sb += uint32(b)
			i++
		}
	}
	n := uint32(cols * rows)
	return [3]uint8{uint8(sr / n), uint8(sg / n), uint8(sb / n)}, lumSum
}

// processQuadrant packs 2×2 sub-pixels per cell using a local-mean
// threshold and the 16-entry quadrant table.
func processQuadrant(in *frame.Buffer, cfg *config.Render, grid *frame.Grid) {
	parallelRows(grid.Height, func(cy int) {
		var lums [4]uint8
		for cx := 0; cx < grid.Width; cx++ {
			avg, lumSum := subCell(in, cx, cy, 2, 2, grid.Width, grid.Height, lums[:])
			threshold := uint8(lumSum / 4)
			var bitmap uint8
			for bit := 0; bit < 4; bit++ {
				if subOn(lums[bit], threshold, cfg.Invert) {
					bitmap |= 1 << bit
				}
			}
			grid.Set(cx, cy, frame.Cell{Ch: quadrantChars[bitmap], Fg: avg})
		}
	})
}

// processSextant packs 2×3 sub-pixels per cell into the 64-entry table.
func processSextant(in *frame.Buffer, cfg *config.Render, grid *frame.Grid) {
	parallelRows(grid.Height, func(cy int) {
		var lums [6]uint8
		for cx := 0; cx < grid.Width; cx++ {
			avg, lumSum := subCell(in, cx, cy, 2, 3, grid.Width, grid.Height, lums[:])
			threshold := uint8(lumSum / 6)
			var mask uint8
			// Sample order is row-major but the table expects column-major
			// bits: TL,ML,BL in bits 0–2, TR,MR,BR in bits 3–5.
			order := [6]uint8{0, 3, 1, 4, 2, 5}
			for i := 0; i < 6; i++ {
				if subOn(lums[i], threshold, cfg.Invert) {
					mask |= 1 << order[i]
				}
			}
			grid.Set(cx, cy, frame.Cell{Ch: sextantChars[mask], Fg: avg})
		}
	})
}

// processOctant packs 2×4 sub-pixels per cell with a fixed mid threshold in
// gamma space, matching the higher contrast expected of octant output.
func processOctant(in *frame.Buffer, cfg *config.Render, grid *frame.Grid) {
	const threshold = 128
	gw, gh := grid.Width, grid.Height
	pixelW := gw * 2
	pixelH := gh * 4

	parallelRows(gh, func(cy int) {
		for cx := 0; cx < gw; cx++ {
			baseX := cx * 2 * in.Width / pixelW
			baseY := cy * 4 * in.Height / pixelH

			var mask uint8
			var sr, sg, sb uint32
			for dy := 0; dy < 4; dy++ {
				for dx := 0; dx < 2; dx++ {
					px := min(baseX+dx*in.Width/pixelW, in.Width-1)
					py := min(baseY+dy*in.Height/pixelH, in.Height-1)
					lum := in.Luminance(px, py)
					r, g, b, _ := in.Pixel(px, py)
					if subOn(lum, threshold, cfg.Invert) {
						mask |= 1 << (dy*2 + dx)
					}
					sr += uint32(r)
					sg += uint32(g)
					sb += uint32(b)
				}
			}
			grid.Set(cx, cy, frame.Cell{
				Ch: octantChars[mask],
				Fg: [3]uint8{uint8(sr / 8), uint8(sg / 8), uint8(sb / 8)},
			})
		}
	})
}

// processBraille packs 2×4 sub-pixels per cell into braille dots using the
// local-mean threshold.
func processBraille(in *frame.Buffer, cfg *config.Render, grid *frame.Grid) {
	gw, gh := grid.Width, grid.Height
	pixelW := gw * 2
	pixelH := gh * 4

	// Braille dot index per (dy, dx): left column 1,2,3,7, right 4,5,6,8.
	dotIndex := [4][2]uint8{{0, 3}, {1, 4}, {2, 5}, {6, 7}}

	parallelRows(gh, func(cy int) {
		var lums [8]uint8
		var dots [8]bool
		for cx := 0; cx < gw; cx++ {
			baseX := cx * 2 * in.Width / pixelW
			baseY := cy * 4 * in.Height / pixelH

			var sr, sg, sb, lumSum uint32
			i := 0
			for dy := 0; dy < 4; dy++ {
				for dx := 0; dx < 2; dx++ {
					px := min(baseX+dx*in.Width/pixelW, in.Width-1)
					py := min(baseY+dy*in.Height/pixelH, in.Height-1)
					lums[i] = in.LuminanceLinear(px, py)
					lumSum += uint32(lums[i])
					r, g, b, _ := in.Pixel(px, py)
					sr += uint32(r)
					sg += uint32(g)
					sb += uint32(b)
					i++
				}
			}

			threshold := uint8(lumSum / 8)
			i = 0
			for dy := 0; dy < 4; dy++ {
				for dx := 0; dx < 2; dx++ {
					dots[dotIndex[dy][dx]] = subOn(lums[i], threshold, cfg.Invert)
					i++
				}
			}

			grid.Set(cx, cy, frame.Cell{
				Ch: EncodeBraille(dots),
				Fg: [3]uint8{uint8(sr / 8), uint8(sg / 8), uint8(sb / 8)},
			})
		}
	})
}

func subOn(lum, threshold uint8, invert bool) bool {
	if invert {
		return lum < threshold
	}
	return lum > threshold
}
