// Package render holds the grid-level post-processing effects, the virtual
// camera, the terminal ANSI writer, and the FPS counter.
package render

import (
	"github.com/linuxmatters/jivescii/internal/frame"
)

// ApplyFadeTrails blends the previous grid into the current one. decay 0
// leaves the grid untouched; 0.95 is the ceiling so trails always die out.
// Blank cells adopt the previous glyph dimmed by the decay; occupied cells
// lerp their foreground toward the previous frame. Dimension mismatch is a
// no-op.
func ApplyFadeTrails(current *frame.Grid, previous *frame.Grid, decay float32) {
	if decay < 0.01 || current.Width != previous.Width || current.Height != previous.Height {
		return
	}
	d := decay
	if d > 0.95 {
		d = 0.95
	}
	keep := 1 - d

	for i := range current.Cells {
		cur := &current.Cells[i]
		prev := &previous.Cells[i]

		if cur.Ch == ' ' && prev.Ch != ' ' {
			cur.Ch = prev.Ch
			cur.Fg = [3]uint8{
				uint8(float32(prev.Fg[0]) * d),
				uint8(float32(prev.Fg[1]) * d),
				uint8(float32(prev.Fg[2]) * d),
			}
		} else if cur.Ch != ' ' {
			cur.Fg = [3]uint8{
				uint8(float32(cur.Fg[0])*keep + float32(prev.Fg[0])*d),
				uint8(float32(cur.Fg[1])*keep + float32(prev.Fg[1])*d),
				uint8(float32(cur.Fg[2])*keep + float32(prev.Fg[2])*d),
			}
		}
	}
}

// ApplyBeatFlash saturate-boosts every foreground channel on an onset.
func ApplyBeatFlash(grid *frame.Grid, features *frame.AudioFeatures, intensity float32) {
	if !features.Onset || intensity <= 0 {
		return
	}
	boost := uint8(features.BeatIntensity * 80.0 * intensity)
	if boost == 0 {
		return
	}
	for i := range grid.Cells {
		fg := &grid.Cells[i].Fg
		fg[0] = satAdd(fg[0], boost)
		fg[1] = satAdd(fg[1], boost)
		fg[2] = satAdd(fg[2], boost)
	}
}

// glowNeighborThreshold is the brightness a 4-neighbor must exceed for a
// cell to receive glow.
const glowNeighborThreshold = 200

// ApplyGlow brightens cells adjacent to bright cells. The brightness map is
// taken in a read-only pass first so the effect does not feed on itself.
// The scratch slice is grown once and reused across frames.
func ApplyGlow(grid *frame.Grid, intensity float32, scratch *[]uint8) {
	if intensity < 0.01 {
		return
	}
	w, h := grid.Width, grid.Height
	need := w * h
	if cap(*scratch) < need {
		*scratch = make([]uint8, need)
	}
	brightness := (*scratch)[:need]

	for i := range grid.Cells {
		fg := grid.Cells[i].Fg
		m := fg[0]
		if fg[1] > m {
			m = fg[1]
		}
		if fg[2] > m {
			m = fg[2]
		}
		brightness[i] = m
	}

	glow := uint8(intensity * 40.0)
	for cy := 1; cy < h-1; cy++ {
		for cx := 1; cx < w-1; cx++ {
			idx := cy*w + cx
			maxN := brightness[idx-1]
			if brightness[idx+1] > maxN {
				maxN = brightness[idx+1]
			}
			if brightness[idx-w] > maxN {
				maxN = brightness[idx-w]
			}
			if brightness[idx+w] > maxN {
				maxN = brightness[idx+w]
			}
			if maxN > glowNeighborThreshold {
				fg := &grid.Cells[idx].Fg
				fg[0] = satAdd(fg[0], glow)
				fg[1] = satAdd(fg[1], glow)
				fg[2] = satAdd(fg[2], glow)
			}
		}
	}
}

// ApplyScanlines blanks every Nth row for the retro CRT look.
func ApplyScanlines(grid *frame.Grid, gap uint8) {
	if gap < 2 {
		return
	}
	for y := 0; y < grid.Height; y += int(gap) {
		for x := 0; x < grid.Width; x++ {
			grid.Set(x, y, frame.BlankCell)
		}
	}
}

func satAdd(a, b uint8) uint8 {
	sum := uint16(a) + uint16(b)
	if sum > 255 {
		return 255
	}
	return uint8(sum)
}
