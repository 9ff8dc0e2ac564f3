package ascii

import (
	"math"

	"github.com/linuxmatters/jivescii/internal/frame"
)

// sobelMax is the theoretical Sobel magnitude ceiling: sqrt(2)*1020 ≈ 1442.
const sobelMax = 1442.0

// Gradient returns the Sobel gx/gy components at (x, y) in gamma-space
// luminance. Border pixels report zero gradient.
func Gradient(b *frame.Buffer, x, y int) (gx, gy float32) {
	if x <= 0 || y <= 0 || x >= b.Width-1 || y >= b.Height-1 {
		return 0, 0
	}

	tl := float32(b.Luminance(x-1, y-1))
	tc := float32(b.Luminance(x, y-1))
	tr := float32(b.Luminance(x+1, y-1))
	ml := float32(b.Luminance(x-1, y))
	mr := float32(b.Luminance(x+1, y))
	bl := float32(b.Luminance(x-1, y+1))
	bc := float32(b.Luminance(x, y+1))
	br := float32(b.Luminance(x+1, y+1))

	gx = -tl + tr - 2*ml + 2*mr - bl + br
	gy = -tl - 2*tc - tr + bl + 2*bc + br
	return gx, gy
}

// DetectEdge returns the normalized edge magnitude [0,1] at (x, y).
func DetectEdge(b *frame.Buffer, x, y int) float32 {
	gx, gy := Gradient(b, x, y)
	mag := float32(math.Sqrt(float64(gx*gx + gy*gy)))
	m := mag / sobelMax
	if m > 1 {
		return 1
	}
	return m
}

// EdgeChar selects an overlay glyph from the gradient direction.
func EdgeChar(gx, gy float32) rune {
	if gx > -0.001 && gx < 0.001 && gy > -0.001 && gy < 0.001 {
		return ' '
	}

	angle := float32(math.Atan2(float64(gy), float64(gx)) * 180 / math.Pi)
	if angle < 0 {
		angle += 180
	}

	switch {
	case angle < 22.5 || angle >= 157.5:
		return '─'
	case angle < 67.5:
		return '╲'
	case angle < 112.5:
		return '│'
	default:
		return '╱'
	}
}
