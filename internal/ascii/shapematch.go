package ascii

import "github.com/linuxmatters/jivescii/internal/frame"

// ShapeMatcher picks characters by correlating a 5×5 luminance block
// against hardcoded glyph bitmaps. Slower than the LUT but better at
// preserving structure; gated by the shape_matching flag.
type ShapeMatcher struct {
	entries []shapeEntry
}

type shapeEntry struct {
	ch     rune
	bitmap uint32
}

// NewShapeMatcher builds the matcher with its fixed character set.
func NewShapeMatcher() *ShapeMatcher {
	table := []shapeEntry{
		{' ', 0b00000_00000_00000_00000_00000},
		{'.', 0b00000_00000_00000_00100_00000},
		{'-', 0b00000_00000_11111_00000_00000},
		{'|', 0b00100_00100_00100_00100_00100},
		{'+', 0b00100_00100_11111_00100_00100},
		{'/', 0b00001_00010_00100_01000_10000},
		{'\\', 0b10000_01000_00100_00010_00001},
		{'O', 0b01110_10001_10001_10001_01110},
		{'#', 0b01010_11111_01010_11111_01010},
		{'@', 0b01110_10001_10111_10001_01110},
		{'A', 0b01110_10001_11111_10001_10001},
		{'M', 0b10001_11011_10101_10001_10001},
		{'W', 0b10001_10001_10101_11011_10001},
		{'█', 0b11111_11111_11111_11111_11111},
		{'░', 0b10100_01010_10100_01010_10100},
		{'▒', 0b10101_01010_10101_01010_10101},
		{'▓', 0b01011_10101_01011_10101_01011},
	}
	return &ShapeMatcher{entries: table}
}

// Match correlates a row-major 5×5 luminance block against the table and
// returns the best scoring character.
func (m *ShapeMatcher) Match(block *[25]uint8) rune {
	var input uint32
	for i, lum := range block {
		if lum > 128 {
			input |= 1 << i
		}
	}

	best := ' '
	var bestScore int
	for _, e := range m.entries {
		// Popcount of XNOR over the 25 used bits.
		xnor := ^(input ^ e.bitmap) & 0x01FF_FFFF
		score := popcount25(xnor)
		if score > bestScore {
			bestScore = score
			best = e.ch
		}
	}
	return best
}

// MatchAt samples a 5×5 block centered on (px, py) and matches it.
func (m *ShapeMatcher) MatchAt(b *frame.Buffer, px, py int) rune {
	var block [25]uint8
	i := 0
	for dy := -2; dy <= 2; dy++ {
		for dx := -2; dx <= 2; dx++ {
			x := clampInt(px+dx, 0, b.Width-1)
			y := clampInt(py+dy, 0, b.Height-1)
			block[i] = b.LuminanceLinear(x, y)
			i++
		}
	}
	return m.Match(&block)
}

func popcount25(v uint32) int {
	count := 0
	for v != 0 {
		v &= v - 1
		count++
	}
	return count
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
