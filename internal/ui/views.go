package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	colorful "github.com/lucasb-eyer/go-colorful"
)

var (
	sidebarStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			Width(sidebarWidth - 1).
			PaddingLeft(1)

	sidebarValueStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("#FFFFFF"))

	sidebarTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("#7D00A4"))

	helpBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#7D00A4")).
			Padding(1, 2)

	pausedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFF00"))
)

// spectrumGlyphs are the eighth-block bar characters, shortest to tallest.
var spectrumGlyphs = []rune(" ▁▂▃▄▅▆▇█")

// View renders the full frame: canvas with sidebar to the right, spectrum
// sparkline below, help overlay on top when toggled.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	if m.showHelp {
		return m.helpView()
	}

	canvas := m.canvasView
	if canvas == "" {
		canvas = m.emptyCanvas()
	}

	body := lipgloss.JoinHorizontal(lipgloss.Top, canvas, m.sidebarView())
	return body + "\n" + m.spectrumView()
}

func (m *Model) emptyCanvas() string {
	if m.canvasH < 1 {
		return ""
	}
	row := strings.Repeat(" ", m.canvasW)
	rows := make([]string, m.canvasH)
	for i := range rows {
		rows[i] = row
	}
	mid := m.canvasH / 2
	msg := "no source"
	if len(msg) < m.canvasW {
		pad := (m.canvasW - len(msg)) / 2
		rows[mid] = strings.Repeat(" ", pad) + msg + strings.Repeat(" ", m.canvasW-pad-len(msg))
	}
	return strings.Join(rows, "\n")
}

// sidebarView shows the live parameters and audio state.
func (m *Model) sidebarView() string {
	var b strings.Builder
	cfg := &m.effective

	b.WriteString(sidebarTitleStyle.Render("jivescii"))
	b.WriteString("\n\n")

	line := func(key, value string) {
		b.WriteString(key)
		b.WriteString("\n ")
		b.WriteString(sidebarValueStyle.Render(value))
		b.WriteString("\n")
	}

	line("mode", cfg.RenderMode.String())
	line("color", cfg.ColorMode.String())
	line("preset", m.creation.ActivePreset.String())
	line("fps", fmt.Sprintf("%.1f", m.fps.FPS()))
	line("con/bri", fmt.Sprintf("%.1f %+.2f", cfg.Contrast, cfg.Brightness))
	line("density", fmt.Sprintf("%.2f", cfg.DensityScale))
	line("sens", fmt.Sprintf("%.1f", cfg.AudioSensitivity))

	if m.features.BPM > 0 {
		line("bpm", fmt.Sprintf("%.0f", m.features.BPM))
	} else {
		line("bpm", "—")
	}

	if m.paused {
		b.WriteString("\n")
		b.WriteString(pausedStyle.Render("⏸ paused"))
	}

	return sidebarStyle.Render(b.String())
}

// spectrumView renders the 32 log bands as a bar sparkline colored along a
// hue ramp.
func (m *Model) spectrumView() string {
	width := m.termW
	if width < 1 {
		return ""
	}

	var b strings.Builder
	bands := m.features.Spectrum
	for i, v := range bands {
		if v < 0 {
			v = 0
		} else if v > 1 {
			v = 1
		}
		glyph := spectrumGlyphs[int(v*float32(len(spectrumGlyphs)-1))]

		hue := 270.0 - float64(i)/float64(len(bands))*240.0
		col := colorful.Hsv(hue, 0.8, 0.9)
		b.WriteString(lipgloss.NewStyle().
			Foreground(lipgloss.Color(col.Hex())).
			Render(string(glyph)))
	}

	bar := b.String()
	label := fmt.Sprintf(" rms %.2f  flux %.2f", m.features.RMS, m.features.SpectralFlux)
	return bar + sidebarStyle.Render(label)
}

// helpView is the keyboard reference overlay.
func (m *Model) helpView() string {
	help := `q / esc     quit
space       pause
tab         cycle render mode
1-5         select charset
d / D       density -/+
c           toggle color
i           invert
[ / ]       contrast -/+
{ / }       brightness -/+
- / +       saturation -/+
e           toggle edges
s           shape matching
a           cycle aspect ratio
m           cycle color mode
b           cycle background
p           cycle creation preset
↑ / ↓       audio sensitivity
← / →       audio smoothing
, / .       seek -/+ 5s
?           close help`

	title := sidebarTitleStyle.Render("jivescii — keys")
	return helpBoxStyle.Render(title + "\n\n" + help)
}
