package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"
)

// waitFor polls cond for up to two seconds.
func waitFor(t *testing.T, cond func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return cond()
}

func TestHotReloadAppliesValidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[render]\nrender_mode = \"ascii\"\n"), 0o644); err != nil {
		t.Fatalf("write initial config: %v", err)
	}

	store := NewStore(Default())
	stop, err := WatchFile(path, store, zap.NewNop())
	if err != nil {
		t.Fatalf("watch: %v", err)
	}
	defer stop()

	if err := os.WriteFile(path, []byte("[render]\nrender_mode = \"quadrant\"\n"), 0o644); err != nil {
		t.Fatalf("rewrite config: %v", err)
	}

	if !waitFor(t, func() bool { return store.Load().RenderMode == ModeQuadrant }) {
		t.Errorf("mode after reload = %v, want quadrant", store.Load().RenderMode)
	}
}

func TestHotReloadKeepsConfigOnParseError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[render]\ncontrast = 1.5\n"), 0o644); err != nil {
		t.Fatalf("write initial config: %v", err)
	}

	store := NewStore(Default())
	stop, err := WatchFile(path, store, zap.NewNop())
	if err != nil {
		t.Fatalf("watch: %v", err)
	}
	defer stop()

	// Set a known value, then clobber the file with garbage.
	store.Update(func(c *Render) { c.Contrast = 2.5 })
	if err := os.WriteFile(path, []byte("this [ is not toml"), 0o644); err != nil {
		t.Fatalf("write malformed config: %v", err)
	}

	// Give the watcher time to see the event, then confirm nothing changed.
	time.Sleep(300 * time.Millisecond)
	if got := store.Load().Contrast; got != 2.5 {
		t.Errorf("contrast after malformed reload = %f, want 2.5", got)
	}
}
