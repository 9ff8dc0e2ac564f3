// Package export turns character grids back into pixels and feeds them to
// an external encoder: the offline half of the pipeline.
package export

import (
	"fmt"
	"image"
	"os"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/linuxmatters/jivescii/internal/frame"
)

// Rasterizer composes grids into RGBA images through a precomputed glyph
// atlas: one 8-bit alpha mask per character at a fixed pixel size. Atlas
// ranges cover ASCII, the block elements, braille, and the combining
// diacritics used by the Zalgo decoration.
type Rasterizer struct {
	cellW int
	cellH int
	atlas map[rune][]uint8
	empty []uint8
}

// zalgoDiacritics mirrors the live renderer's glitch marks.
var zalgoDiacritics = [5]rune{0x0300, 0x0313, 0x0330, 0x0336, 0x0346}

// NewRasterizer builds the atlas from a TTF/OTF font file at the given
// pixel size. An empty fontPath falls back to the built-in bitmap face.
func NewRasterizer(fontPath string, sizePx float64) (*Rasterizer, error) {
	var face font.Face
	if fontPath == "" {
		face = basicfont.Face7x13
	} else {
		data, err := os.ReadFile(fontPath)
		if err != nil {
			return nil, fmt.Errorf("read font %s: %w", fontPath, err)
		}
		parsed, err := opentype.Parse(data)
		if err != nil {
			return nil, fmt.Errorf("parse font %s: %w", fontPath, err)
		}
		face, err = opentype.NewFace(parsed, &opentype.FaceOptions{
			Size:    sizePx,
			DPI:     72,
			Hinting: font.HintingFull,
		})
		if err != nil {
			return nil, fmt.Errorf("build font face: %w", err)
		}
	}

	metrics := face.Metrics()
	cellH := (metrics.Ascent + metrics.Descent).Ceil()
	adv, ok := face.GlyphAdvance('M')
	if !ok {
		adv = fixed.I(cellH / 2)
	}
	cellW := adv.Ceil()
	if cellW < 1 {
		cellW = 1
	}
	if cellH < 1 {
		cellH = 1
	}

	r := &Rasterizer{
		cellW: cellW,
		cellH: cellH,
		atlas: make(map[rune][]uint8, 512),
		empty: make([]uint8, cellW*cellH),
	}

	ascent := metrics.Ascent
	r.cacheRange(face, ascent, 32, 126)
	r.cacheRange(face, ascent, 0x2580, 0x259F) // block elements
	r.cacheRange(face, ascent, 0x2800, 0x28FF) // braille patterns
	r.cacheRange(face, ascent, 0x0300, 0x036F) // combining diacritics
	r.cacheRange(face, ascent, 0x2500, 0x2502) // box-drawing edge glyphs
	r.cacheRune(face, ascent, '╱')
	r.cacheRune(face, ascent, '╲')

	return r, nil
}

func (r *Rasterizer) cacheRange(face font.Face, ascent fixed.Int26_6, lo, hi rune) {
	for ch := lo; ch <= hi; ch++ {
		r.cacheRune(face, ascent, ch)
	}
}

func (r *Rasterizer) cacheRune(face font.Face, ascent fixed.Int26_6, ch rune) {
	mask := image.NewAlpha(image.Rect(0, 0, r.cellW, r.cellH))
	d := font.Drawer{
		Dst:  mask,
		Src:  image.White,
		Face: face,
		Dot:  fixed.Point26_6{X: 0, Y: ascent},
	}
	d.DrawString(string(ch))
	r.atlas[ch] = mask.Pix
}

// CellSize reports the atlas cell dimensions.
func (r *Rasterizer) CellSize() (w, h int) {
	return r.cellW, r.cellH
}

// TargetDimensions reports the pixel size of a rasterized grid.
func (r *Rasterizer) TargetDimensions(gridW, gridH int) (w, h int) {
	return gridW * r.cellW, gridH * r.cellH
}

// lcg matches the live renderer's deterministic Zalgo source.
type lcg struct{ state uint32 }

func (g *lcg) next() uint32 {
	g.state = g.state*1664525 + 1013904223
	return g.state
}

// Render composes the grid into fb, which must be sized by
// TargetDimensions. Rows of cells are processed in parallel bands; each
// cell alpha-blends its glyph's foreground over the background. Zalgo
// picks up to eight diacritics from a per-row seeded LCG and maxes their
// alphas over the base glyph.
func (r *Rasterizer) Render(grid *frame.Grid, fb *frame.Buffer, zalgoIntensity float32) {
	stride := fb.Width * 4

	parallelBands(grid.Height, func(gy int) {
		rng := lcg{state: 0x12345678 + uint32(gy)*1337}
		bandTop := gy * r.cellH

		for gx := 0; gx < grid.Width; gx++ {
			cell := grid.Get(gx, gy)
			glyph, ok := r.atlas[cell.Ch]
			if !ok {
				glyph = r.empty
			}

			var diacritics [8][]uint8
			diacriticCount := 0
			if zalgoIntensity > 0 && rng.next()%100 < uint32(zalgoIntensity*10) {
				iterations := int(zalgoIntensity * 2)
				if iterations < 1 {
					iterations = 1
				} else if iterations > 8 {
					iterations = 8
				}
				for i := 0; i < iterations; i++ {
					if d, ok := r.atlas[zalgoDiacritics[rng.next()%5]]; ok {
						diacritics[diacriticCount] = d
						diacriticCount++
					}
				}
			}

			cellLeft := gx * r.cellW
			for cy := 0; cy < r.cellH; cy++ {
				rowOff := (bandTop+cy)*stride + cellLeft*4
				glyphRow := cy * r.cellW
				for cx := 0; cx < r.cellW; cx++ {
					alpha := glyph[glyphRow+cx]
					for i := 0; i < diacriticCount; i++ {
						if a := diacritics[i][glyphRow+cx]; a > alpha {
							alpha = a
						}
					}

					af := float32(alpha) / 255.0
					inv := 1 - af
					idx := rowOff + cx*4
					fb.Data[idx] = uint8(float32(cell.Fg[0])*af + float32(cell.Bg[0])*inv)
					fb.Data[idx+1] = uint8(float32(cell.Fg[1])*af + float32(cell.Bg[1])*inv)
					fb.Data[idx+2] = uint8(float32(cell.Fg[2])*af + float32(cell.Bg[2])*inv)
					fb.Data[idx+3] = 255
				}
			}
		}
	})
}
