// Package ascii converts pixel frames into character-cell grids. It holds
// the five sub-pixel packing schemes, the ordered dither, the Sobel edge
// overlay and the color mapping pass.
package ascii

// quadrantChars maps a 2×2 bitmap (bit0=TL, bit1=TR, bit2=BL, bit3=BR) to
// its block element.
var quadrantChars = [16]rune{
	' ', '▘', '▝', '▀', '▖', '▌', '▞', '▛', '▗', '▚', '▐', '▜', '▄', '▙', '▟', '█',
}

// sextantChars maps a 6-bit mask (bit0=TL, bit1=ML, bit2=BL, bit3=TR,
// bit4=MR, bit5=BR) to the Unicode 13 legacy-computing sextant. Index 0 is
// a space, index 63 the full block, and the two full columns (7, 56) the
// left and right half blocks; the U+1FB00–U+1FB3B run covers the rest.
var sextantChars = [64]rune{
	' ', 0x1FB00, 0x1FB03, 0x1FB04, 0x1FB0F, 0x1FB10, 0x1FB13, '▌',
	0x1FB01, 0x1FB02, 0x1FB05, 0x1FB06, 0x1FB11, 0x1FB12, 0x1FB14, 0x1FB15,
	0x1FB07, 0x1FB08, 0x1FB0B, 0x1FB0C, 0x1FB16, 0x1FB17, 0x1FB1A, 0x1FB1B,
	0x1FB09, 0x1FB0A, 0x1FB0D, 0x1FB0E, 0x1FB18, 0x1FB19, 0x1FB1C, 0x1FB1D,
	0x1FB1E, 0x1FB1F, 0x1FB22, 0x1FB23, 0x1FB2D, 0x1FB2E, 0x1FB31, 0x1FB32,
	0x1FB20, 0x1FB21, 0x1FB24, 0x1FB25, 0x1FB2F, 0x1FB30, 0x1FB33, 0x1FB34,
	0x1FB26, 0x1FB27, 0x1FB29, 0x1FB2A, 0x1FB35, 0x1FB36, 0x1FB39, 0x1FB3A,
	'▐', 0x1FB28, 0x1FB2B, 0x1FB2C, 0x1FB37, 0x1FB38, 0x1FB3B, '█',
}

// octantChars maps an 8-bit mask (two columns of four, bit = row*2+col) to
// a glyph. Unicode 16 octants are not yet reliably available in terminal
// fonts, so the table promotes the masks that coincide with quadrant block
// elements and degrades the rest to the isomorphic braille pattern.
var octantChars = buildOctantTable()

func buildOctantTable() [256]rune {
	var lut [256]rune
	for i := range lut {
		b := uint8(i)
		switch b {
		case 0x00:
			lut[i] = ' '
		case 0xFF:
			lut[i] = '█'
		case 0x05:
			lut[i] = '▘'
		case 0x0A:
			lut[i] = '▝'
		case 0x50:
			lut[i] = '▖'
		case 0xA0:
			lut[i] = '▗'
		case 0x0F:
			lut[i] = '▀'
		case 0xF0:
			lut[i] = '▄'
		case 0x55:
			lut[i] = '▌'
		case 0xAA:
			lut[i] = '▐'
		case 0xA5:
			lut[i] = '▚'
		case 0x5A:
			lut[i] = '▞'
		case 0x5F:
			lut[i] = '▛'
		case 0xAF:
			lut[i] = '▜'
		case 0xF5:
			lut[i] = '▙'
		case 0xFA:
			lut[i] = '▟'
		default:
			// Octant rows 1..4 left column map onto braille dots 1,2,3,7
			// and the right column onto 4,5,6,8.
			var mask rune
			if b&(1<<0) != 0 {
				mask |= 0x01
			}
			if b&(1<<1) != 0 {
				mask |= 0x08
			}
			if b&(1<<2) != 0 {
				mask |= 0x02
			}
			if b&(1<<3) != 0 {
				mask |= 0x10
			}
			if b&(1<<4) != 0 {
				mask |= 0x04
			}
			if b&(1<<5) != 0 {
				mask |= 0x20
			}
			if b&(1<<6) != 0 {
				mask |= 0x40
			}
			if b&(1<<7) != 0 {
				mask |= 0x80
			}
			lut[i] = 0x2800 + mask
		}
	}
	return lut
}

// brailleChar maps an 8-bit dot mask directly onto the U+2800 block, which
// is bit-for-bit aligned with the braille dot numbering.
func brailleChar(mask uint8) rune {
	return 0x2800 + rune(mask)
}

// EncodeBraille packs eight dot states into a braille character. Dots are
// numbered column-major: 1,2,3,7 down the left column, 4,5,6,8 down the
// right; dot N sets bit N-1.
func EncodeBraille(dots [8]bool) rune {
	var mask uint8
	for i, on := range dots {
		if on {
			mask |= 1 << i
		}
	}
	return brailleChar(mask)
}
