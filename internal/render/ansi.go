package render

import (
	"strconv"
	"strings"

	"github.com/linuxmatters/jivescii/internal/frame"
)

// zalgoDiacritics are the combining marks used for the glitch decoration.
var zalgoDiacritics = [5]rune{0x0300, 0x0313, 0x0330, 0x0336, 0x0346}

// lcg is the deterministic random source for Zalgo placement; seeded per
// frame so batch renders are reproducible.
type lcg struct{ state uint32 }

func (r *lcg) next() uint32 {
	r.state = r.state*1664525 + 1013904223
	return r.state
}

// ANSIWriter serializes a grid into truecolor SGR escape sequences. The
// internal builder is reused across frames to keep the hot path free of
// per-cell allocation.
type ANSIWriter struct {
	sb strings.Builder
}

// NewANSIWriter returns a writer with a pre-grown buffer for the given grid
// size.
func NewANSIWriter(width, height int) *ANSIWriter {
	w := &ANSIWriter{}
	w.sb.Grow(width * height * 24)
	return w
}

// Render serializes the grid. Runs of identical colors reuse the active
// SGR state; rows end with a reset so the TUI chrome to the right is not
// tinted. Shade glyphs (U+2591..U+2593) on a black background emit an
// explicit Reset background so the terminal's own blending shows through.
func (w *ANSIWriter) Render(grid *frame.Grid, zalgoIntensity float32) string {
	w.sb.Reset()
	rng := lcg{state: 0x12345678}

	var curFg [3]uint8
	var curBgSet bool
	var curBg [3]uint8
	fgValid := false

	for y := 0; y < grid.Height; y++ {
		fgValid = false
		curBgSet = false
		for x := 0; x < grid.Width; x++ {
			cell := grid.Get(x, y)

			shade := cell.Ch == '░' || cell.Ch == '▒' || cell.Ch == '▓'
			wantBg := cell.Bg != [3]uint8{} && !(shade && cell.Bg == [3]uint8{})

			if !fgValid || cell.Fg != curFg {
				w.writeFg(cell.Fg)
				curFg = cell.Fg
				fgValid = true
			}
			switch {
			case wantBg && (!curBgSet || cell.Bg != curBg):
				w.writeBg(cell.Bg)
				curBg = cell.Bg
				curBgSet = true
			case !wantBg && curBgSet:
				w.sb.WriteString("\x1b[49m")
				curBgSet = false
			}

			if zalgoIntensity > 0 && rng.next()%100 < uint32(zalgoIntensity*10) {
				w.sb.WriteRune(cell.Ch)
				iterations := int(zalgoIntensity * 2)
				if iterations < 1 {
					iterations = 1
				} else if iterations > 8 {
					iterations = 8
				}
				for i := 0; i < iterations; i++ {
					w.sb.WriteRune(zalgoDiacritics[rng.next()%5])
				}
			} else {
				w.sb.WriteRune(cell.Ch)
			}
		}
		w.sb.WriteString("\x1b[0m")
		if y < grid.Height-1 {
			w.sb.WriteByte('\n')
		}
	}
	return w.sb.String()
}

func (w *ANSIWriter) writeFg(c [3]uint8) {
	w.sb.WriteString("\x1b[38;2;")
	w.writeColor(c)
}

func (w *ANSIWriter) writeBg(c [3]uint8) {
	w.sb.WriteString("\x1b[48;2;")
	w.writeColor(c)
}

func (w *ANSIWriter) writeColor(c [3]uint8) {
	w.sb.WriteString(strconv.Itoa(int(c[0])))
	w.sb.WriteByte(';')
	w.sb.WriteString(strconv.Itoa(int(c[1])))
	w.sb.WriteByte(';')
	w.sb.WriteString(strconv.Itoa(int(c[2])))
	w.sb.WriteByte('m')
}
