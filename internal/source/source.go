// Package source provides the visual producers: still images, video and
// webcam streams piped from an external demuxer, the procedural generator,
// and the batch folder walker. All implement the Source interface.
package source

import "github.com/linuxmatters/jivescii/internal/frame"

// Source feeds pixel frames to the pipeline.
//
// NextFrame never blocks: it returns the most recent frame when no new one
// is ready, and nil only when the source has no frame to give (none produced
// yet, or its media could not be opened). Implementations do not allocate
// per frame: stills serve one decoded buffer, streaming producers recycle
// buffers from a small pool.
type Source interface {
	NextFrame() *frame.Buffer
	// NativeSize reports the producer's dimensions before any resize.
	NativeSize() (w, h int)
	// IsLive distinguishes endless producers (webcam, procedural) from
	// finite files.
	IsLive() bool
	// Close releases any child process or device.
	Close() error
}
