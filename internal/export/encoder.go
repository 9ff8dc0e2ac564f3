package export

import (
	"fmt"
	"io"
	"os/exec"
	"strconv"

	"github.com/linuxmatters/jivescii/internal/frame"
)

// Encoder streams raw RGBA frames into an ffmpeg child encoding a lossless
// RGB intermediate. After Finish, MuxAudio combines the intermediate with
// the original audio track into the final container.
type Encoder struct {
	child *exec.Cmd
	stdin io.WriteCloser
}

// NewEncoder spawns the encoder child writing to outputPath.
func NewEncoder(outputPath string, width, height, fps int) (*Encoder, error) {
	cmd := exec.Command("ffmpeg",
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-f", "rawvideo",
		"-vcodec", "rawvideo",
		"-s", fmt.Sprintf("%dx%d", width, height),
		"-pix_fmt", "rgba",
		"-r", strconv.Itoa(fps),
		"-i", "-",
		"-c:v", "libx264rgb",
		"-crf", "0",
		"-preset", "veryslow",
		"-pix_fmt", "rgb24",
		"-color_range", "pc",
		outputPath,
	)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("encoder stdin pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("spawn ffmpeg encoder (is ffmpeg on PATH?): %w", err)
	}
	return &Encoder{child: cmd, stdin: stdin}, nil
}

// WriteFrame streams one RGBA buffer to the encoder.
func (e *Encoder) WriteFrame(fb *frame.Buffer) error {
	if _, err := e.stdin.Write(fb.Data); err != nil {
		return fmt.Errorf("write frame to encoder: %w", err)
	}
	return nil
}

// Finish closes the pipe and waits for the encoder to flush.
func (e *Encoder) Finish() error {
	if err := e.stdin.Close(); err != nil {
		return fmt.Errorf("close encoder stdin: %w", err)
	}
	if err := e.child.Wait(); err != nil {
		return fmt.Errorf("ffmpeg encoder failed: %w", err)
	}
	return nil
}

// MuxAudio combines the encoded intermediate with the original audio track
// into finalPath (video copied, audio transcoded to AAC).
func MuxAudio(videoPath, audioPath, finalPath string) error {
	out, err := exec.Command("ffmpeg",
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-i", videoPath,
		"-i", audioPath,
		"-map", "0:v:0",
		"-map", "1:a:0",
		"-c:v", "copy",
		"-c:a", "aac",
		"-b:a", "320k",
		"-shortest",
		finalPath,
	).CombinedOutput()
	if err != nil {
		return fmt.Errorf("mux audio/video: %w (%s)", err, out)
	}
	return nil
}
