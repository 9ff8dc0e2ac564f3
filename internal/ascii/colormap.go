package ascii

import (
	"github.com/linuxmatters/jivescii/internal/colorspace"
	"github.com/linuxmatters/jivescii/internal/config"
)

// MapColor applies the selected color mode to a source pixel color.
func MapColor(r, g, b uint8, mode config.ColorMode, saturation float32) (uint8, uint8, uint8) {
	switch mode {
	case config.ColorDirect:
		return r, g, b
	case config.ColorHSVBright:
		return colorspace.HSVBright(r, g, b, saturation)
	case config.ColorQuantized:
		return colorspace.Quantize(r, g, b)
	case config.ColorOklab:
		return colorspace.OklabBright(r, g, b, saturation)
	}
	return r, g, b
}
