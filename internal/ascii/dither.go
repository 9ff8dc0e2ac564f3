package ascii

// bayer8 is the 8×8 ordered dither matrix, values 0–63.
var bayer8 = [8][8]uint8{
	{0, 32, 8, 40, 2, 34, 10, 42},
	{48, 16, 56, 24, 50, 18, 58, 26},
	{12, 44, 4, 36, 14, 46, 6, 38},
	{60, 28, 52, 20, 62, 30, 54, 22},
	{3, 35, 11, 43, 1, 33, 9, 41},
	{51, 19, 59, 27, 49, 17, 57, 25},
	{15, 47, 7, 39, 13, 45, 5, 37},
	{63, 31, 55, 23, 61, 29, 53, 21},
}

// Bayer8x8 applies ordered dithering to a luminance value before it is
// quantized onto the charset. The threshold amplitude covers exactly one
// quantization step (1/levels), which breaks banding on subtle gradients
// without visibly shifting tone. Values hugging the extremes pass through
// so solid black and white stay solid.
func Bayer8x8(lum uint8, x, y int, levels float32) uint8 {
	if lum < 2 || lum > 253 {
		return lum
	}
	if levels < 2 {
		levels = 2
	}

	threshold := float32(bayer8[y%8][x%8])/64.0 - 0.5
	base := float32(lum) / 255.0
	dithered := base + threshold/levels
	if dithered < 0 {
		dithered = 0
	} else if dithered > 1 {
		dithered = 1
	}
	return uint8(dithered*255.0 + 0.5)
}
