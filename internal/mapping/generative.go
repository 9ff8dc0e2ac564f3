package mapping

import (
	"github.com/linuxmatters/jivescii/internal/audio"
	"github.com/linuxmatters/jivescii/internal/config"
)

// Generative is the offline counterpart of Engine: it walks a pre-analyzed
// feature timeline in time order, carrying the same per-edge EMA state, so
// an offline render is bit-identical to a live render fed the same
// features.
type Generative struct {
	base     config.Render
	timeline *audio.Timeline
	engine   *Engine
}

// NewGenerative pairs a base config with a timeline.
func NewGenerative(base config.Render, timeline *audio.Timeline) *Generative {
	return &Generative{
		base:     base,
		timeline: timeline,
		engine:   NewEngine(),
	}
}

// ApplyAt writes the effective config for time t into out. Must be called
// in ascending time order for the EMA state to match the live engine.
func (g *Generative) ApplyAt(t float64, out *config.Render) {
	features := g.timeline.At(t)
	*out = g.base
	g.engine.Apply(out, &features)
}

// Timeline exposes the analyzed track.
func (g *Generative) Timeline() *audio.Timeline {
	return g.timeline
}

// SetBase replaces the base config used by subsequent ApplyAt calls.
func (g *Generative) SetBase(cfg config.Render) {
	g.base = cfg
}
