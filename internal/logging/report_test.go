package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestGenerateReport(t *testing.T) {
	out := filepath.Join(t.TempDir(), "export.mp4")
	data := ReportData{
		AudioPath:   "/tmp/track.wav",
		OutputPath:  out,
		StartTime:   time.Now().Add(-time.Minute),
		EndTime:     time.Now(),
		TotalFrames: 1800,
		TargetFPS:   30,
		OnsetCount:  120,
		FinalBPM:    120,
		EnergyQuiet: 300,
		EnergyLoud:  600,
	}

	if err := GenerateReport(data); err != nil {
		t.Fatalf("generate report: %v", err)
	}

	content, err := os.ReadFile(reportPath(out))
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	text := string(content)

	for _, want := range []string{"120 BPM", "allegro", "1800 @ 30 fps", "Onsets:"} {
		if !strings.Contains(text, want) {
			t.Errorf("report missing %q:\n%s", want, text)
		}
	}
}

func TestInterpretTempo(t *testing.T) {
	cases := []struct {
		bpm  float32
		want string
	}{
		{0, "no stable tempo"},
		{60, "adagio"},
		{120, "allegro"},
		{200, "presto"},
	}
	for _, c := range cases {
		if got := interpretTempo(c.bpm); !strings.Contains(got, c.want) {
			t.Errorf("interpretTempo(%f) = %q, want contains %q", c.bpm, got, c.want)
		}
	}
}
