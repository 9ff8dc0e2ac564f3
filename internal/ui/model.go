package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/linuxmatters/jivescii/internal/ascii"
	"github.com/linuxmatters/jivescii/internal/audio"
	"github.com/linuxmatters/jivescii/internal/charset"
	"github.com/linuxmatters/jivescii/internal/config"
	"github.com/linuxmatters/jivescii/internal/frame"
	"github.com/linuxmatters/jivescii/internal/mapping"
	"github.com/linuxmatters/jivescii/internal/render"
	"github.com/linuxmatters/jivescii/internal/source"
)

// Model is the Bubbletea model for the live renderer. One tick arrives per
// frame budget; each tick runs the full pipeline (features → mapping →
// resize → camera → composite → effects) and the View serializes the
// result with the sidebar and spectrum chrome.
type Model struct {
	cfg    *config.Store
	src    source.Source
	engine *audio.Engine
	log    *zap.Logger

	compositor *ascii.Compositor
	resizer    *source.Resizer
	mapper     *mapping.Engine
	creation   *mapping.Creation
	ansi       *render.ANSIWriter
	fps        *render.FPSCounter

	grid       *frame.Grid
	prevGrid   *frame.Grid
	resized    *frame.Buffer
	camBuf     *frame.Buffer
	glowBuf    []uint8
	lastFrame  *frame.Buffer
	features   frame.AudioFeatures
	effective  config.Render
	canvasView string

	termW, termH     int
	canvasW, canvasH int

	paused   bool
	showHelp bool
	quitting bool
	lastTick time.Time
}

// NewModel wires the live pipeline. src and engine may be nil: the canvas
// stays empty and the visuals run without audio respectively.
func NewModel(cfg *config.Store, src source.Source, engine *audio.Engine, log *zap.Logger) *Model {
	c := cfg.Load()
	return &Model{
		cfg:        cfg,
		src:        src,
		engine:     engine,
		log:        log,
		compositor: ascii.NewCompositor(c.Charset),
		resizer:    source.NewResizer(),
		mapper:     mapping.NewEngine(),
		creation:   mapping.NewCreation(),
		fps:        render.NewFPSCounter(60),
		lastTick:   time.Now(),
	}
}

// Init schedules the first frame tick.
func (m *Model) Init() tea.Cmd {
	return m.tick()
}

func (m *Model) tick() tea.Cmd {
	fps := m.cfg.Load().TargetFPS
	if fps < 1 {
		fps = 30
	}
	return tea.Tick(time.Second/time.Duration(fps), func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Update handles input, resize and frame ticks.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.termW, m.termH = msg.Width, msg.Height
		m.reallocate()
		return m, nil

	case tickMsg:
		if m.quitting {
			return m, tea.Quit
		}
		now := time.Time(msg)
		dt := float32(now.Sub(m.lastTick).Seconds())
		m.lastTick = now
		if !m.paused {
			m.renderFrame(dt)
		}
		return m, m.tick()
	}
	return m, nil
}

// reallocate resizes every per-canvas buffer after a terminal resize or a
// density change. Rare, so allocating here is fine.
func (m *Model) reallocate() {
	m.canvasW = m.termW - sidebarWidth
	m.canvasH = m.termH - spectrumHeight
	if m.canvasW < 1 {
		m.canvasW = 1
	}
	if m.canvasH < 1 {
		m.canvasH = 1
	}

	cfg := m.cfg.Load()
	gw, gh := gridSize(m.canvasW, m.canvasH, cfg.DensityScale)

	m.grid = frame.NewGrid(gw, gh)
	m.prevGrid = frame.NewGrid(gw, gh)
	pw, ph := pixelSize(gw, gh, cfg.RenderMode, cfg.AspectRatio)
	m.resized = frame.NewBuffer(pw, ph)
	m.camBuf = frame.NewBuffer(pw, ph)
	m.ansi = render.NewANSIWriter(gw, gh)
}

// gridSize applies the density multiplier to the canvas cell budget.
func gridSize(canvasW, canvasH int, density float32) (int, int) {
	if density <= 0 {
		density = 1
	}
	gw := int(float32(canvasW) * density)
	gh := int(float32(canvasH) * density)
	if gw < 1 {
		gw = 1
	}
	if gh < 1 {
		gh = 1
	}
	if gw > canvasW {
		gw = canvasW
	}
	if gh > canvasH {
		gh = canvasH
	}
	return gw, gh
}

// pixelSize derives the sampling buffer dimensions from the grid, mode and
// terminal cell aspect ratio.
func pixelSize(gw, gh int, mode config.RenderMode, aspect float32) (int, int) {
	var pw, ph int
	switch mode {
	case config.ModeAscii:
		pw, ph = gw, gh
	case config.ModeHalfBlock:
		pw, ph = gw, gh*2
	case config.ModeQuadrant:
		pw, ph = gw*2, gh*2
	case config.ModeSextant:
		pw, ph = gw*2, gh*3
	case config.ModeOctant, config.ModeBraille:
		pw, ph = gw*2, gh*4
	}
	// Terminal cells are taller than wide; shrinking the sampling height by
	// the aspect ratio undoes the stretch.
	if aspect > 0 {
		ph = int(float32(ph) / aspect)
	}
	if pw < 1 {
		pw = 1
	}
	if ph < 1 {
		ph = 1
	}
	return pw, ph
}

// renderFrame runs one full pipeline pass and caches the canvas string.
func (m *Model) renderFrame(dt float32) {
	if m.grid == nil {
		return
	}

	// Non-blocking feature snapshot.
	if m.engine != nil {
		m.features = m.engine.Slot.Read()
	}

	// Effective config: base snapshot + mapping edges + creation autopilot.
	m.effective = m.cfg.Snapshot()
	m.mapper.Apply(&m.effective, &m.features)
	img := mapping.ComputeImageFeatures(m.prevGrid)
	m.creation.Modulate(&m.features, &img, &m.effective, dt)

	// The effective density/mode may disagree with the allocated buffers;
	// reallocate when they drift (grid dims or pixel dims changed).
	gw, gh := gridSize(m.canvasW, m.canvasH, m.effective.DensityScale)
	pw, ph := pixelSize(gw, gh, m.effective.RenderMode, m.effective.AspectRatio)
	if gw != m.grid.Width || gh != m.grid.Height || pw != m.resized.Width || ph != m.resized.Height {
		m.grid = frame.NewGrid(gw, gh)
		m.prevGrid = frame.NewGrid(gw, gh)
		m.resized = frame.NewBuffer(pw, ph)
		m.camBuf = frame.NewBuffer(pw, ph)
		m.ansi = render.NewANSIWriter(gw, gh)
	}

	// Latest source frame; keep the last one on a miss.
	if m.src != nil {
		if f := m.src.NextFrame(); f != nil {
			m.lastFrame = f
		}
	}
	if m.lastFrame == nil {
		m.canvasView = ""
		m.fps.Tick()
		return
	}

	m.resizer.Resize(m.lastFrame, m.resized)
	m.resized.CameraBaked = m.lastFrame.CameraBaked
	render.ApplyCamera(&m.effective, m.resized, m.camBuf)

	m.compositor.Process(m.camBuf, &m.effective, m.grid)

	render.ApplyFadeTrails(m.grid, m.prevGrid, m.effective.FadeDecay)
	render.ApplyBeatFlash(m.grid, &m.features, m.effective.BeatFlashIntensity)
	render.ApplyGlow(m.grid, m.effective.GlowIntensity, &m.glowBuf)
	render.ApplyScanlines(m.grid, m.effective.ScanlineGap)
	m.prevGrid.CopyFrom(m.grid)

	m.canvasView = m.ansi.Render(m.grid, m.effective.ZalgoIntensity)
	m.fps.Tick()
}

// handleKey implements the live keyboard surface.
func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc", "ctrl+c":
		m.quitting = true
		if m.engine != nil {
			m.engine.Send(audio.SeekCommand{Command: audio.CmdQuit})
		}
		return m, tea.Quit

	case " ", "space":
		m.paused = !m.paused
		if m.engine != nil {
			if m.paused {
				m.engine.Send(audio.SeekCommand{Command: audio.CmdPause})
			} else {
				m.engine.Send(audio.SeekCommand{Command: audio.CmdPlay})
			}
		}

	case "?":
		m.showHelp = !m.showHelp

	case "tab":
		m.cfg.Update(func(c *config.Render) { c.RenderMode = c.RenderMode.Next() })

	case "1", "2", "3", "4", "5":
		idx := int(msg.String()[0] - '1')
		m.cfg.Update(func(c *config.Render) {
			c.CharsetIndex = idx
			c.Charset = charset.Builtins[idx]
		})

	case "d":
		m.cfg.Update(func(c *config.Render) { c.DensityScale = clampF(c.DensityScale-0.25, 0.25, 4) })
	case "D":
		m.cfg.Update(func(c *config.Render) { c.DensityScale = clampF(c.DensityScale+0.25, 0.25, 4) })

	case "c":
		m.cfg.Update(func(c *config.Render) { c.ColorEnabled = !c.ColorEnabled })
	case "i":
		m.cfg.Update(func(c *config.Render) { c.Invert = !c.Invert })

	case "[":
		m.cfg.Update(func(c *config.Render) { c.Contrast = clampF(c.Contrast-0.1, 0.1, 3) })
	case "]":
		m.cfg.Update(func(c *config.Render) { c.Contrast = clampF(c.Contrast+0.1, 0.1, 3) })
	case "{":
		m.cfg.Update(func(c *config.Render) { c.Brightness = clampF(c.Brightness-0.05, -1, 1) })
	case "}":
		m.cfg.Update(func(c *config.Render) { c.Brightness = clampF(c.Brightness+0.05, -1, 1) })
	case "-":
		m.cfg.Update(func(c *config.Render) { c.Saturation = clampF(c.Saturation-0.1, 0, 3) })
	case "+", "=":
		m.cfg.Update(func(c *config.Render) { c.Saturation = clampF(c.Saturation+0.1, 0, 3) })

	case "e":
		m.cfg.Update(func(c *config.Render) {
			if c.EdgeThreshold > 0 {
				c.EdgeThreshold = 0
			} else {
				c.EdgeThreshold = 0.3
			}
		})
	case "s":
		m.cfg.Update(func(c *config.Render) { c.ShapeMatching = !c.ShapeMatching })

	case "a":
		m.cfg.Update(func(c *config.Render) {
			switch {
			case c.AspectRatio < 1.75:
				c.AspectRatio = 2.0
			case c.AspectRatio < 2.25:
				c.AspectRatio = 2.5
			default:
				c.AspectRatio = 1.5
			}
		})

	case "m":
		m.cfg.Update(func(c *config.Render) { c.ColorMode = c.ColorMode.Next() })
	case "b":
		m.cfg.Update(func(c *config.Render) { c.BgStyle = c.BgStyle.Next() })

	case "p":
		m.creation.ActivePreset = m.creation.ActivePreset.Next()

	case "up":
		m.cfg.Update(func(c *config.Render) { c.AudioSensitivity = clampF(c.AudioSensitivity+0.1, 0, 5) })
	case "down":
		m.cfg.Update(func(c *config.Render) { c.AudioSensitivity = clampF(c.AudioSensitivity-0.1, 0, 5) })
	case "left":
		m.cfg.Update(func(c *config.Render) { c.AudioSmoothing = clampF(c.AudioSmoothing-0.05, 0, 1) })
	case "right":
		m.cfg.Update(func(c *config.Render) { c.AudioSmoothing = clampF(c.AudioSmoothing+0.05, 0, 1) })

	case ",":
		if m.engine != nil {
			m.engine.Send(audio.SeekCommand{Command: audio.CmdSeek, DeltaSecs: -5})
		}
	case ".":
		if m.engine != nil {
			m.engine.Send(audio.SeekCommand{Command: audio.CmdSeek, DeltaSecs: 5})
		}
	}
	return m, nil
}

func clampF(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
