package audio

import "github.com/linuxmatters/jivescii/internal/frame"

// EnergyLevel is a coarse per-frame loudness class used for clip pacing in
// batch export.
type EnergyLevel int

const (
	EnergyQuiet EnergyLevel = iota
	EnergyMedium
	EnergyLoud
)

// Timeline is the dense pre-analyzed feature track for offline rendering.
// Frames are indexed by ordinal; FrameDuration is 1/target_fps.
type Timeline struct {
	Frames        []frame.AudioFeatures
	FrameDuration float32
	SampleRate    int
	EnergyLevels  []EnergyLevel
}

// At returns the features for time t in seconds, clamped to the track.
func (tl *Timeline) At(t float64) frame.AudioFeatures {
	if len(tl.Frames) == 0 {
		return frame.AudioFeatures{}
	}
	idx := int(float32(t) / tl.FrameDuration)
	if idx < 0 {
		idx = 0
	}
	if idx > len(tl.Frames)-1 {
		idx = len(tl.Frames) - 1
	}
	return tl.Frames[idx]
}

// TotalFrames reports the number of analyzed frames.
func (tl *Timeline) TotalFrames() int {
	return len(tl.Frames)
}

// Normalize rescales the level-like features to [0,1] track-wide so quiet
// masters drive the visuals as hard as loud ones.
func (tl *Timeline) Normalize() {
	var maxRMS, maxFlux, maxBass float32
	for i := range tl.Frames {
		f := &tl.Frames[i]
		if f.RMS > maxRMS {
			maxRMS = f.RMS
		}
		if f.SpectralFlux > maxFlux {
			maxFlux = f.SpectralFlux
		}
		if f.Bass > maxBass {
			maxBass = f.Bass
		}
	}
	for i := range tl.Frames {
		f := &tl.Frames[i]
		if maxRMS > 0 {
			f.RMS /= maxRMS
		}
		if maxFlux > 0 {
			f.SpectralFlux /= maxFlux
		}
		if maxBass > 0 {
			f.Bass /= maxBass
		}
	}
}

// ComputeEnergyLevels classifies each frame against the track's mean RMS.
func (tl *Timeline) ComputeEnergyLevels() {
	tl.EnergyLevels = make([]EnergyLevel, len(tl.Frames))
	if len(tl.Frames) == 0 {
		return
	}
	var sum float64
	for i := range tl.Frames {
		sum += float64(tl.Frames[i].RMS)
	}
	mean := float32(sum / float64(len(tl.Frames)))

	for i := range tl.Frames {
		rms := tl.Frames[i].RMS
		switch {
		case rms < mean*0.5:
			tl.EnergyLevels[i] = EnergyQuiet
		case rms > mean*1.5:
			tl.EnergyLevels[i] = EnergyLoud
		default:
			tl.EnergyLevels[i] = EnergyMedium
		}
	}
}
