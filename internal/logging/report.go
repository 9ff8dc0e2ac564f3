package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ReportData collects everything the export report needs.
type ReportData struct {
	AudioPath   string
	OutputPath  string
	StartTime   time.Time
	EndTime     time.Time
	TotalFrames int
	TargetFPS   int
	OnsetCount  int
	FinalBPM    float32
	EnergyQuiet int
	EnergyLoud  int
}

// interpretTempo describes the estimated tempo in musical terms.
func interpretTempo(bpm float32) string {
	switch {
	case bpm == 0:
		return "no stable tempo detected"
	case bpm < 70:
		return "slow, adagio range"
	case bpm < 100:
		return "moderate, andante range"
	case bpm < 130:
		return "steady, allegro range"
	case bpm < 170:
		return "fast, vivace range"
	default:
		return "very fast, presto range"
	}
}

// interpretOnsetDensity describes how busy the track's transient content is.
func interpretOnsetDensity(onsetsPerMinute float64) string {
	switch {
	case onsetsPerMinute < 30:
		return "sparse, sustained material"
	case onsetsPerMinute < 90:
		return "moderate transient density"
	case onsetsPerMinute < 180:
		return "busy, percussive material"
	default:
		return "extremely dense transients"
	}
}

// GenerateReport writes a plain-text analysis report next to the exported
// video. The file name appends "-report.txt" to the output base name.
func GenerateReport(data ReportData) error {
	var b strings.Builder

	b.WriteString("jivescii export report\n")
	b.WriteString(strings.Repeat("=", 60))
	b.WriteString("\n\n")

	fmt.Fprintf(&b, "Audio:       %s\n", data.AudioPath)
	fmt.Fprintf(&b, "Output:      %s\n", data.OutputPath)
	fmt.Fprintf(&b, "Started:     %s\n", data.StartTime.Format(time.RFC1123))
	fmt.Fprintf(&b, "Finished:    %s\n", data.EndTime.Format(time.RFC1123))
	fmt.Fprintf(&b, "Render time: %s\n\n", data.EndTime.Sub(data.StartTime).Round(time.Millisecond))

	durationSecs := float64(data.TotalFrames) / float64(maxInt(data.TargetFPS, 1))
	fmt.Fprintf(&b, "Frames:      %d @ %d fps (%.1fs)\n", data.TotalFrames, data.TargetFPS, durationSecs)

	fmt.Fprintf(&b, "Tempo:       %.0f BPM — %s\n", data.FinalBPM, interpretTempo(data.FinalBPM))

	onsetsPerMinute := 0.0
	if durationSecs > 0 {
		onsetsPerMinute = float64(data.OnsetCount) / durationSecs * 60.0
	}
	fmt.Fprintf(&b, "Onsets:      %d (%.0f/min) — %s\n",
		data.OnsetCount, onsetsPerMinute, interpretOnsetDensity(onsetsPerMinute))

	if data.TotalFrames > 0 {
		quietPct := float64(data.EnergyQuiet) / float64(data.TotalFrames) * 100
		loudPct := float64(data.EnergyLoud) / float64(data.TotalFrames) * 100
		fmt.Fprintf(&b, "Energy:      %.0f%% quiet / %.0f%% loud / %.0f%% medium\n",
			quietPct, loudPct, 100-quietPct-loudPct)
	}

	path := reportPath(data.OutputPath)
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("write report %s: %w", path, err)
	}
	return nil
}

func reportPath(outputPath string) string {
	ext := filepath.Ext(outputPath)
	return strings.TrimSuffix(outputPath, ext) + "-report.txt"
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
