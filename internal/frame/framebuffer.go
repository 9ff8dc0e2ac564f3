// Package frame holds the pixel and character-cell primitives shared by
// every stage of the pipeline: the RGBA frame buffer, the ASCII cell grid,
// and the per-frame audio feature snapshot.
package frame

import "math"

// srgbToLinear is a gamma ~2.0 decode table. (v/255)^2 is accurate enough
// for character-cell rendering and avoids a pow() per pixel.
var srgbToLinear = func() [256]float32 {
	var lut [256]float32
	for i := range lut {
		s := float32(i) / 255.0
		lut[i] = s * s
	}
	return lut
}()

// Buffer is a reusable RGBA pixel buffer, row-major, 4 bytes per pixel.
// Width and height are fixed at construction; the hot path never resizes it.
type Buffer struct {
	// Data holds RGBA bytes, len == 4*Width*Height.
	Data []byte
	// Width in pixels.
	Width int
	// Height in pixels.
	Height int

	// CameraBaked marks a procedural source that applies its own viewport
	// transform. The virtual camera passes such frames through untouched.
	CameraBaked bool

	refs int32
}

// NewBuffer allocates a zeroed buffer of the given dimensions.
func NewBuffer(width, height int) *Buffer {
	return &Buffer{
		Data:   make([]byte, width*height*4),
		Width:  width,
		Height: height,
	}
}

// Pixel returns the RGBA components at (x, y).
func (b *Buffer) Pixel(x, y int) (r, g, bl, a uint8) {
	idx := (y*b.Width + x) * 4
	if idx < 0 || idx+3 >= len(b.Data) {
		return 0, 0, 0, 0
	}
	return b.Data[idx], b.Data[idx+1], b.Data[idx+2], b.Data[idx+3]
}

// Luminance returns the BT.709 perceptual luminance at (x, y), computed in
// gamma space.
func (b *Buffer) Luminance(x, y int) uint8 {
	r, g, bl, _ := b.Pixel(x, y)
	return uint8((uint32(r)*2126 + uint32(g)*7152 + uint32(bl)*722) / 10000)
}

// LuminanceLinear returns BT.709 luminance computed in linear light and
// re-encoded with sqrt. More faithful than Luminance for dark tones and
// gradients; the sub-pixel compositors use it for thresholding.
func (b *Buffer) LuminanceLinear(x, y int) uint8 {
	r, g, bl, _ := b.Pixel(x, y)
	lin := 0.2126*srgbToLinear[r] + 0.7152*srgbToLinear[g] + 0.0722*srgbToLinear[bl]
	return uint8(sqrt32(lin) * 255.0)
}

// AreaSample averages the rectangle [x0,x1)×[y0,y1) and returns the mean
// color plus the linear luminance of that mean. Pure arithmetic, no
// allocation; degenerate regions collapse to a single-pixel fast path.
func (b *Buffer) AreaSample(x0, y0, x1, y1 int) (r, g, bl, lum uint8) {
	x0 = clampInt(x0, 0, b.Width-1)
	y0 = clampInt(y0, 0, b.Height-1)
	if x1 > b.Width {
		x1 = b.Width
	}
	if y1 > b.Height {
		y1 = b.Height
	}

	if x1 <= x0+1 && y1 <= y0+1 {
		pr, pg, pb, _ := b.Pixel(x0, y0)
		return pr, pg, pb, b.LuminanceLinear(x0, y0)
	}

	var sr, sg, sb, count uint32
	for py := y0; py < y1; py++ {
		row := (py*b.Width + x0) * 4
		for px := x0; px < x1; px++ {
			if row+2 < len(b.Data) {
				sr += uint32(b.Data[row])
				sg += uint32(b.Data[row+1])
				sb += uint32(b.Data[row+2])
				count++
			}
			row += 4
		}
	}
	if count == 0 {
		return 0, 0, 0, 0
	}
	ar := uint8(sr / count)
	ag := uint8(sg / count)
	ab := uint8(sb / count)
	lin := 0.2126*srgbToLinear[ar] + 0.7152*srgbToLinear[ag] + 0.0722*srgbToLinear[ab]
	return ar, ag, ab, uint8(sqrt32(lin) * 255.0)
}

func sqrt32(v float32) float32 {
	if v <= 0 {
		return 0
	}
	return float32(math.Sqrt(float64(v)))
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
