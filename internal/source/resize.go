package source

import "github.com/linuxmatters/jivescii/internal/frame"

// Resizer scales one frame buffer into another with area averaging when
// shrinking and bilinear sampling when growing. Identical dimensions reduce
// to a byte copy. It holds no allocation in steady state.
type Resizer struct{}

// NewResizer returns a resizer.
func NewResizer() *Resizer {
	return &Resizer{}
}

// Resize scales src into dst; dst's dimensions pick the output size.
func (r *Resizer) Resize(src, dst *frame.Buffer) {
	if src.Width == dst.Width && src.Height == dst.Height {
		copy(dst.Data, src.Data)
		return
	}
	if src.Width <= 0 || src.Height <= 0 || dst.Width <= 0 || dst.Height <= 0 {
		return
	}

	if dst.Width < src.Width || dst.Height < src.Height {
		r.areaAverage(src, dst)
	} else {
		r.bilinear(src, dst)
	}
}

// areaAverage boxes each destination pixel over its source footprint.
func (r *Resizer) areaAverage(src, dst *frame.Buffer) {
	for dy := 0; dy < dst.Height; dy++ {
		sy0 := dy * src.Height / dst.Height
		sy1 := (dy + 1) * src.Height / dst.Height
		if sy1 <= sy0 {
			sy1 = sy0 + 1
		}
		if sy1 > src.Height {
			sy1 = src.Height
		}
		for dx := 0; dx < dst.Width; dx++ {
			sx0 := dx * src.Width / dst.Width
			sx1 := (dx + 1) * src.Width / dst.Width
			if sx1 <= sx0 {
				sx1 = sx0 + 1
			}
			if sx1 > src.Width {
				sx1 = src.Width
			}

			var sr, sg, sb, sa, count uint32
			for sy := sy0; sy < sy1; sy++ {
				idx := (sy*src.Width + sx0) * 4
				for sx := sx0; sx < sx1; sx++ {
					sr += uint32(src.Data[idx])
					sg += uint32(src.Data[idx+1])
					sb += uint32(src.Data[idx+2])
					sa += uint32(src.Data[idx+3])
					count++
					idx += 4
				}
			}

			out := (dy*dst.Width + dx) * 4
			dst.Data[out] = uint8(sr / count)
			dst.Data[out+1] = uint8(sg / count)
			dst.Data[out+2] = uint8(sb / count)
			dst.Data[out+3] = uint8(sa / count)
		}
	}
}

// bilinear interpolates between the four nearest source pixels.
func (r *Resizer) bilinear(src, dst *frame.Buffer) {
	xRatio := float32(src.Width-1) / float32(maxI(dst.Width-1, 1))
	yRatio := float32(src.Height-1) / float32(maxI(dst.Height-1, 1))

	for dy := 0; dy < dst.Height; dy++ {
		fy := float32(dy) * yRatio
		sy := int(fy)
		wy := fy - float32(sy)
		sy1 := sy + 1
		if sy1 > src.Height-1 {
			sy1 = src.Height - 1
		}
		for dx := 0; dx < dst.Width; dx++ {
			fx := float32(dx) * xRatio
			sx := int(fx)
			wx := fx - float32(sx)
			sx1 := sx + 1
			if sx1 > src.Width-1 {
				sx1 = src.Width - 1
			}

			out := (dy*dst.Width + dx) * 4
			for ch := 0; ch < 4; ch++ {
				tl := float32(src.Data[(sy*src.Width+sx)*4+ch])
				tr := float32(src.Data[(sy*src.Width+sx1)*4+ch])
				bl := float32(src.Data[(sy1*src.Width+sx)*4+ch])
				br := float32(src.Data[(sy1*src.Width+sx1)*4+ch])
				top := tl + (tr-tl)*wx
				bot := bl + (br-bl)*wx
				dst.Data[out+ch] = uint8(top + (bot-top)*wy)
			}
		}
	}
}

func maxI(a, b int) int {
	if a > b {
		return a
	}
	return b
}
