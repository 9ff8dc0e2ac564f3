package export

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

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

// BatchOptions configures an offline export run.
type BatchOptions struct {
	Folder    string
	AudioPath string // empty = auto-discover in Folder
	Output    string // empty = <folder name>-<timestamp>.mp4
	FontPath  string // empty = built-in bitmap face
	TargetFPS int
	Config    config.Render
}

// BatchResult summarizes a finished export for the report writer.
type BatchResult struct {
	OutputPath  string
	TotalFrames int
	Duration    time.Duration
	OnsetCount  int
	FinalBPM    float32
	EnergyQuiet int
	EnergyLoud  int
}

// strongOnsetIntensity gates the macro clip-sequencing rules.
const strongOnsetIntensity = 0.85

// Macro rule probabilities, in percent, drawn from a seeded LCG so a given
// track always exports the same video.
const (
	macroModePct    = 25
	macroInvertPct  = 20
	macroCharsetPct = 33
)

type macroState struct {
	rng        batchRNG
	mode       *config.RenderMode
	invert     *bool
	charsetIdx *int
}

type batchRNG struct{ state uint32 }

func (r *batchRNG) pct() uint32 {
	r.state = r.state*1664525 + 1013904223
	return r.state % 100
}

// apply mutates cfg with the macro overrides, rolling new ones on strong
// onsets.
func (m *macroState) apply(cfg *config.Render, feats *frame.AudioFeatures, src *source.FolderSource) {
	if feats.Onset && feats.BeatIntensity > strongOnsetIntensity {
		src.NextMedia()

		if m.rng.pct() < macroModePct {
			next := cfg.RenderMode
			if m.mode != nil {
				next = *m.mode
			}
			next = next.Next()
			m.mode = &next
		}
		if m.rng.pct() < macroInvertPct {
			cur := cfg.Invert
			if m.invert != nil {
				cur = *m.invert
			}
			flipped := !cur
			m.invert = &flipped
		}
		if m.rng.pct() < macroCharsetPct {
			idx := cfg.CharsetIndex
			if m.charsetIdx != nil {
				idx = *m.charsetIdx
			}
			next := (idx + 1) % len(charset.Rotation)
			m.charsetIdx = &next
		}
	}

	if m.mode != nil {
		cfg.RenderMode = *m.mode
	}
	if m.invert != nil {
		cfg.Invert = *m.invert
	}
	if m.charsetIdx != nil {
		cfg.CharsetIndex = *m.charsetIdx
		cfg.Charset = charset.Rotation[*m.charsetIdx]
	}
}

// RunBatch drives the full offline pipeline: analyze the audio, walk the
// media folder, render every frame through the same compositor and mapping
// math as the live path, and hand the frames to the external encoder.
func RunBatch(opts BatchOptions, log *zap.Logger) (*BatchResult, error) {
	start := time.Now()

	audioPath := opts.AudioPath
	if audioPath == "" {
		found, ok := source.FindAudioFile(opts.Folder)
		if !ok {
			return nil, fmt.Errorf("no audio file found in %s; pass --audio", opts.Folder)
		}
		audioPath = found
		log.Info("auto-discovered audio", zap.String("path", audioPath))
	}

	outputPath := opts.Output
	if outputPath == "" {
		name := fmt.Sprintf("%s-%s.mp4", filepath.Base(opts.Folder), time.Now().Format("20060102-150405"))
		outputPath = filepath.Join(".", name)
	}

	// Pass 1: full offline audio analysis.
	log.Info("analyzing audio", zap.String("path", audioPath))
	analyzer := audio.NewBatchAnalyzer(opts.TargetFPS, 44100, audio.WindowSize)
	timeline, err := analyzer.AnalyzeFile(audioPath)
	if err != nil {
		return nil, fmt.Errorf("audio analysis: %w", err)
	}

	// Media folder source.
	folderSrc, err := source.NewFolderSource(opts.Folder, opts.TargetFPS, log)
	if err != nil {
		return nil, err
	}
	defer folderSrc.Close()

	nativeW, nativeH := folderSrc.NativeSize()
	targetW := maxI(nativeW, 1280)
	targetH := maxI(nativeH, 720)
	gridW := targetW / 8
	gridH := targetH / 16

	// Rendering state, preallocated once.
	rasterizer, err := NewRasterizer(opts.FontPath, 16.0)
	if err != nil {
		return nil, err
	}
	rasterW, rasterH := rasterizer.TargetDimensions(gridW, gridH)

	tempVideo := outputPath + ".temp.mp4"
	encoder, err := NewEncoder(tempVideo, rasterW, rasterH, opts.TargetFPS)
	if err != nil {
		return nil, err
	}

	gen := mapping.NewGenerative(opts.Config, timeline)
	compositor := ascii.NewCompositor(opts.Config.Charset)
	resizer := source.NewResizer()

	grid := frame.NewGrid(gridW, gridH)
	prevGrid := frame.NewGrid(gridW, gridH)
	resized := frame.NewBuffer(targetW, targetH)
	rasterFB := frame.NewBuffer(rasterW, rasterH)

	macro := macroState{rng: batchRNG{state: 0x6A5C1170}}
	totalFrames := timeline.TotalFrames()
	frameDuration := 1.0 / float64(opts.TargetFPS)

	result := &BatchResult{OutputPath: outputPath, TotalFrames: totalFrames}
	var frameCfg config.Render

	log.Info("rendering",
		zap.Int("frames", totalFrames),
		zap.Int("fps", opts.TargetFPS),
		zap.String("output", outputPath))

	for i := 0; i < totalFrames; i++ {
		t := float64(i) * frameDuration
		feats := timeline.At(t)
		if feats.Onset {
			result.OnsetCount++
		}
		if feats.BPM > 0 {
			result.FinalBPM = feats.BPM
		}

		gen.ApplyAt(t, &frameCfg)
		macro.apply(&frameCfg, &feats, folderSrc)

		srcFrame := folderSrc.NextFrame()
		if srcFrame == nil {
			continue
		}
		resizer.Resize(srcFrame, resized)
		compositor.Process(resized, &frameCfg, grid)

		// Effects mirror the live order so offline output matches.
		render.ApplyFadeTrails(grid, prevGrid, frameCfg.FadeDecay)
		render.ApplyBeatFlash(grid, &feats, 1.0)
		prevGrid.CopyFrom(grid)

		rasterizer.Render(grid, rasterFB, frameCfg.ZalgoIntensity)
		if err := encoder.WriteFrame(rasterFB); err != nil {
			_ = encoder.Finish()
			return nil, fmt.Errorf("frame %d: %w", i, err)
		}

		if i%300 == 0 {
			log.Info("progress", zap.Int("frame", i), zap.Int("total", totalFrames))
		}
	}

	if err := encoder.Finish(); err != nil {
		return nil, err
	}

	log.Info("muxing audio")
	if err := MuxAudio(tempVideo, audioPath, outputPath); err != nil {
		return nil, err
	}
	if err := os.Remove(tempVideo); err != nil {
		log.Warn("could not delete intermediate", zap.String("path", tempVideo), zap.Error(err))
	}

	for _, lv := range timeline.EnergyLevels {
		switch lv {
		case audio.EnergyQuiet:
			result.EnergyQuiet++
		case audio.EnergyLoud:
			result.EnergyLoud++
		}
	}
	result.Duration = time.Since(start)
	return result, nil
}

func maxI(a, b int) int {
	if a > b {
		return a
	}
	return b
}
