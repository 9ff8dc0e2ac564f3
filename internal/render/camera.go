package render

import (
	"math"

	"github.com/linuxmatters/jivescii/internal/config"
	"github.com/linuxmatters/jivescii/internal/frame"
)

// ApplyCamera performs the virtual camera's affine transform (zoom, pan,
// rotation) by reverse mapping: each output pixel samples its source
// position through the inverse transform with nearest-neighbor rounding.
// Out-of-bounds samples become transparent black. Identity parameters with
// matching dimensions reduce to a byte copy, and camera-baked sources skip
// the transform entirely.
func ApplyCamera(cfg *config.Render, in *frame.Buffer, out *frame.Buffer) {
	zoom := cfg.CameraZoom
	if zoom < 0.01 {
		zoom = 0.01
	}
	rot := cfg.CameraRotation
	panX := cfg.CameraPanX
	panY := cfg.CameraPanY

	identity := zoom == 1 && rot == 0 && panX == 0 && panY == 0 &&
		in.Width == out.Width && in.Height == out.Height

	if identity || in.CameraBaked {
		if len(in.Data) == len(out.Data) {
			copy(out.Data, in.Data)
		}
		return
	}

	outW := float32(out.Width)
	outH := float32(out.Height)
	centerX := outW / 2
	centerY := outH / 2
	inCenterX := float32(in.Width) / 2
	inCenterY := float32(in.Height) / 2

	cosA := float32(math.Cos(float64(rot)))
	sinA := float32(math.Sin(float64(rot)))

	inStride := in.Width * 4

	for yOut := 0; yOut < out.Height; yOut++ {
		yF := float32(yOut) - centerY
		rowStart := yOut * out.Width * 4
		for xOut := 0; xOut < out.Width; xOut++ {
			xF := float32(xOut) - centerX

			// Reverse pan, zoom, then rotation.
			xPanned := xF - panX*outW
			yPanned := yF - panY*outH
			xZoomed := xPanned / zoom
			yZoomed := yPanned / zoom
			xSrcF := xZoomed*cosA - yZoomed*sinA + inCenterX
			ySrcF := xZoomed*sinA + yZoomed*cosA + inCenterY

			xSrc := int(math.Round(float64(xSrcF)))
			ySrc := int(math.Round(float64(ySrcF)))

			outIdx := rowStart + xOut*4
			if xSrc >= 0 && xSrc < in.Width && ySrc >= 0 && ySrc < in.Height {
				inIdx := ySrc*inStride + xSrc*4
				copy(out.Data[outIdx:outIdx+4], in.Data[inIdx:inIdx+4])
			} else {
				out.Data[outIdx] = 0
				out.Data[outIdx+1] = 0
				out.Data[outIdx+2] = 0
				out.Data[outIdx+3] = 0
			}
		}
	}
}
