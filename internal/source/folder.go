package source

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/linuxmatters/jivescii/internal/frame"
	"go.uber.org/zap"
)

var (
	imageExts = map[string]bool{".png": true, ".jpg": true, ".jpeg": true, ".gif": true}
	videoExts = map[string]bool{".mp4": true, ".mkv": true, ".avi": true, ".mov": true, ".webm": true}
	audioExts = map[string]bool{".mp3": true, ".wav": true, ".flac": true, ".ogg": true, ".aac": true}
)

// FolderSource walks a media folder for batch export, serving the current
// file's frames and rotating to the next on demand (the orchestrator
// advances it on strong onsets).
type FolderSource struct {
	files      []string
	currentIdx int

	currentImage *frame.Buffer
	currentVideo *VideoSource

	targetFPS int
	log       *zap.Logger
}

// NewFolderSource scans folder recursively for media, sorted by path.
func NewFolderSource(folder string, targetFPS int, log *zap.Logger) (*FolderSource, error) {
	var files []string
	err := filepath.WalkDir(folder, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		if imageExts[ext] || videoExts[ext] {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan media folder %s: %w", folder, err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no media files in %s", folder)
	}
	sort.Strings(files)

	s := &FolderSource{
		files:     files,
		targetFPS: targetFPS,
		log:       log,
	}
	s.loadCurrent()
	return s, nil
}

// FindAudioFile returns the first audio file in folder, if any.
func FindAudioFile(folder string) (string, bool) {
	var found string
	_ = filepath.WalkDir(folder, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || found != "" {
			return nil
		}
		if audioExts[strings.ToLower(filepath.Ext(path))] {
			found = path
		}
		return nil
	})
	return found, found != ""
}

// NextMedia rotates to the next file, typically on a strong onset.
func (s *FolderSource) NextMedia() {
	if len(s.files) == 0 {
		return
	}
	s.currentIdx = (s.currentIdx + 1) % len(s.files)
	s.loadCurrent()
}

func (s *FolderSource) loadCurrent() {
	path := s.files[s.currentIdx]

	s.currentImage = nil
	if s.currentVideo != nil {
		_ = s.currentVideo.Close()
		s.currentVideo = nil
	}

	ext := strings.ToLower(filepath.Ext(path))
	if imageExts[ext] {
		fb, err := LoadImage(path)
		if err != nil {
			s.log.Warn("folder source: image load failed", zap.String("path", path), zap.Error(err))
			return
		}
		s.currentImage = fb
		return
	}

	vs, err := NewVideoSource(path, s.targetFPS, s.log)
	if err != nil {
		s.log.Warn("folder source: video open failed", zap.String("path", path), zap.Error(err))
		return
	}
	s.currentVideo = vs
}

// NextFrame serves the current media's frame.
func (s *FolderSource) NextFrame() *frame.Buffer {
	if s.currentImage != nil {
		return s.currentImage
	}
	if s.currentVideo != nil {
		return s.currentVideo.NextFrame()
	}
	return nil
}

// NativeSize reports the current media's dimensions.
func (s *FolderSource) NativeSize() (int, int) {
	if s.currentImage != nil {
		return s.currentImage.Width, s.currentImage.Height
	}
	if s.currentVideo != nil {
		return s.currentVideo.NativeSize()
	}
	return 0, 0
}

// IsLive is false: folder content is finite media replayed deterministically.
func (s *FolderSource) IsLive() bool {
	return false
}

// Close releases the current video child, if any.
func (s *FolderSource) Close() error {
	if s.currentVideo != nil {
		return s.currentVideo.Close()
	}
	return nil
}
