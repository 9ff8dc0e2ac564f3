package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/alecthomas/kong"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/gordonklaus/portaudio"
	"go.uber.org/zap"

	"github.com/linuxmatters/jivescii/internal/audio"
	"github.com/linuxmatters/jivescii/internal/cli"
	"github.com/linuxmatters/jivescii/internal/config"
	"github.com/linuxmatters/jivescii/internal/export"
	"github.com/linuxmatters/jivescii/internal/logging"
	"github.com/linuxmatters/jivescii/internal/source"
	"github.com/linuxmatters/jivescii/internal/ui"
)

// version is set via ldflags at build time
// Local dev builds: "dev"
// Release builds: git tag (e.g. "0.1.0")
var version = "dev"

// CLI defines the command-line interface
type CLI struct {
	Version  bool   `short:"v" help:"Show version information"`
	Debug    bool   `short:"d" help:"Enable debug logging to jivescii-debug.log"`
	LogLevel string `help:"Log level: debug, info, warn, error" default:"warn"`

	Play  PlayCmd  `cmd:"" default:"withargs" help:"Live audio-reactive rendering in the terminal"`
	Batch BatchCmd `cmd:"" help:"Offline export of a media folder to MP4"`
}

// PlayCmd is the live rendering subcommand.
type PlayCmd struct {
	Image      string `help:"Visual source: path to a still image" type:"existingfile"`
	Video      string `help:"Visual source: path to a video file" type:"existingfile"`
	Webcam     bool   `help:"Visual source: capture device"`
	Procedural string `help:"Visual source: procedural generator (mandelbrot)"`

	Audio   string `help:"Audio source: 'mic' or a file path"`
	Config  string `help:"TOML config file" default:"config/default.toml"`
	Preset  string `help:"Named preset from config/presets/"`
	Mode    string `help:"Initial render mode: ascii, halfblock, quadrant, sextant, octant, braille"`
	FPS     int    `help:"Target framerate"`
	NoColor bool   `help:"Disable truecolor output"`
}

// BatchCmd is the offline export subcommand.
type BatchCmd struct {
	Folder string `help:"Media folder to render" type:"existingdir" required:""`
	Audio  string `help:"Audio track (default: auto-discover in folder)"`
	Output string `help:"Output MP4 path"`
	Font   string `help:"TTF font for rasterization (default: built-in bitmap face)"`
	FPS    int    `help:"Target framerate" default:"30"`
	Config string `help:"TOML config file" default:"config/default.toml"`
}

func main() {
	cliArgs := &CLI{}
	ctx := kong.Parse(cliArgs,
		kong.Name("jivescii"),
		kong.Description("Audio-reactive ASCII art engine for the terminal"),
		kong.UsageOnError(),
		kong.Vars{"version": version},
		kong.Help(cli.StyledHelpPrinter(kong.HelpOptions{Compact: true})),
	)

	if cliArgs.Version {
		cli.PrintVersion(version)
		os.Exit(0)
	}

	logPath := ""
	if cliArgs.Debug {
		logPath = "jivescii-debug.log"
	}
	log, err := logging.NewLogger(logPath, cliArgs.LogLevel)
	if err != nil {
		cli.PrintError(err.Error())
		os.Exit(1)
	}
	defer log.Sync()

	switch ctx.Command() {
	case "batch":
		if err := runBatch(&cliArgs.Batch, log); err != nil {
			cli.PrintError(err.Error())
			os.Exit(1)
		}
	default:
		if err := runPlay(&cliArgs.Play, log); err != nil {
			cli.PrintError(err.Error())
			os.Exit(1)
		}
	}
}

// resolveConfig loads the base configuration: a named preset wins over the
// config path; a missing default config falls back to built-in defaults.
func resolveConfig(configPath, preset string, log *zap.Logger) (config.Render, error) {
	if preset != "" {
		path := filepath.Join("config", "presets", preset+".toml")
		if _, err := os.Stat(path); err != nil {
			return config.Render{}, fmt.Errorf("unknown preset %q (no %s)", preset, path)
		}
		return config.Load(path)
	}
	if _, err := os.Stat(configPath); err != nil {
		log.Warn("config not found, using defaults", zap.String("path", configPath))
		return config.Default(), nil
	}
	return config.Load(configPath)
}

func runPlay(cmd *PlayCmd, log *zap.Logger) error {
	sourceCount := 0
	for _, set := range []bool{cmd.Image != "", cmd.Video != "", cmd.Webcam, cmd.Procedural != ""} {
		if set {
			sourceCount++
		}
	}
	if sourceCount != 1 {
		return fmt.Errorf("exactly one visual source required: --image, --video, --webcam, or --procedural")
	}

	cfg, err := resolveConfig(cmd.Config, cmd.Preset, log)
	if err != nil {
		return err
	}
	if cmd.Mode != "" {
		mode, err := config.ParseRenderMode(cmd.Mode)
		if err != nil {
			return err
		}
		cfg.RenderMode = mode
	}
	if cmd.FPS > 0 {
		cfg.TargetFPS = cmd.FPS
	}
	if cmd.NoColor {
		cfg.ColorEnabled = false
	}

	store := config.NewStore(cfg)

	// Hot reload is best effort; a missing config file is not fatal.
	if _, err := os.Stat(cmd.Config); err == nil {
		stop, err := config.WatchFile(cmd.Config, store, log)
		if err != nil {
			log.Warn("config hot reload unavailable", zap.Error(err))
		} else {
			defer stop()
		}
	}

	// Audio is optional and degrades gracefully: the visual pipeline runs
	// with default features when no device or file is available.
	var engine *audio.Engine
	if cmd.Audio != "" {
		if err := portaudio.Initialize(); err != nil {
			log.Warn("portaudio unavailable, audio disabled", zap.Error(err))
		} else {
			defer portaudio.Terminate()
			engine, err = startAudio(cmd.Audio, &cfg, log)
			if err != nil {
				log.Warn("audio disabled", zap.Error(err))
				engine = nil
			}
		}
	}
	if engine != nil {
		defer engine.Close()
	}

	src, err := startSource(cmd, &cfg, store, log)
	if err != nil {
		return err
	}
	defer src.Close()

	model := ui.NewModel(store, src, engine, log)
	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("terminal UI: %w", err)
	}
	return nil
}

func startAudio(arg string, cfg *config.Render, log *zap.Logger) (*audio.Engine, error) {
	switch arg {
	case "mic", "default", "microphone":
		capture, err := audio.StartCapture(log)
		if err != nil {
			return nil, err
		}
		return audio.NewMicEngine(capture, cfg.TargetFPS, cfg.AudioSmoothing, log), nil
	default:
		if _, err := os.Stat(arg); err != nil {
			return nil, fmt.Errorf("audio source not found: %s", arg)
		}
		return audio.NewFileEngine(arg, cfg.TargetFPS, cfg.AudioSmoothing, log)
	}
}

func startSource(cmd *PlayCmd, cfg *config.Render, store *config.Store, log *zap.Logger) (source.Source, error) {
	switch {
	case cmd.Image != "":
		return source.NewImageSource(cmd.Image)
	case cmd.Video != "":
		return source.NewVideoSource(cmd.Video, cfg.TargetFPS, log)
	case cmd.Webcam:
		return source.NewWebcamSource("", cfg.TargetFPS, log)
	default:
		// Procedural resolution follows the terminal later; start at a
		// reasonable default and let resizes take over.
		return source.NewProcedural(cmd.Procedural, 640, 360, store)
	}
}

func runBatch(cmd *BatchCmd, log *zap.Logger) error {
	cfg, err := resolveConfig(cmd.Config, "", log)
	if err != nil {
		return err
	}

	startTime := time.Now()
	result, err := export.RunBatch(export.BatchOptions{
		Folder:    cmd.Folder,
		AudioPath: cmd.Audio,
		Output:    cmd.Output,
		FontPath:  cmd.Font,
		TargetFPS: cmd.FPS,
		Config:    cfg,
	}, log)
	if err != nil {
		return err
	}

	report := logging.ReportData{
		AudioPath:   cmd.Audio,
		OutputPath:  result.OutputPath,
		StartTime:   startTime,
		EndTime:     time.Now(),
		TotalFrames: result.TotalFrames,
		TargetFPS:   cmd.FPS,
		OnsetCount:  result.OnsetCount,
		FinalBPM:    result.FinalBPM,
		EnergyQuiet: result.EnergyQuiet,
		EnergyLoud:  result.EnergyLoud,
	}
	if err := logging.GenerateReport(report); err != nil {
		log.Warn("report generation failed", zap.Error(err))
	}

	cli.PrintSuccess(fmt.Sprintf("Exported %d frames to %s in %s",
		result.TotalFrames, result.OutputPath, cli.FormatDuration(result.Duration)))
	return nil
}
