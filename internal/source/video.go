package source

import (
	"encoding/json"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"sync"
	"time"

	"github.com/linuxmatters/jivescii/internal/frame"
	"go.uber.org/zap"
)

// VideoInfo describes a probed video stream.
type VideoInfo struct {
	Width  int
	Height int
	FPS    float64
}

// ProbeVideo asks ffprobe for the first video stream's dimensions.
func ProbeVideo(path string) (VideoInfo, error) {
	out, err := exec.Command("ffprobe",
		"-v", "quiet",
		"-select_streams", "v:0",
		"-show_streams",
		"-print_format", "json",
		path,
	).Output()
	if err != nil {
		return VideoInfo{}, fmt.Errorf("ffprobe %s (is ffprobe on PATH?): %w", path, err)
	}

	var probe struct {
		Streams []struct {
			Width      int    `json:"width"`
			Height     int    `json:"height"`
			AvgFPSFrac string `json:"avg_frame_rate"`
		} `json:"streams"`
	}
	if err := json.Unmarshal(out, &probe); err != nil {
		return VideoInfo{}, fmt.Errorf("parse ffprobe output: %w", err)
	}
	if len(probe.Streams) == 0 || probe.Streams[0].Width == 0 {
		return VideoInfo{}, fmt.Errorf("no video stream in %s", path)
	}

	info := VideoInfo{
		Width:  probe.Streams[0].Width,
		Height: probe.Streams[0].Height,
		FPS:    parseFrac(probe.Streams[0].AvgFPSFrac),
	}
	return info, nil
}

func parseFrac(s string) float64 {
	var num, den float64 = 0, 1
	for i := 0; i < len(s); i++ {
		if s[i] == '/' {
			num, _ = strconv.ParseFloat(s[:i], 64)
			den, _ = strconv.ParseFloat(s[i+1:], 64)
			break
		}
	}
	if den == 0 {
		return 0
	}
	return num / den
}

// SpawnDemuxer starts an ffmpeg child decoding path to raw RGBA frames at
// the given size and rate on stdout. The producer reads exactly 4·w·h
// bytes per frame.
func SpawnDemuxer(path string, w, h, fps int, input string) (*exec.Cmd, io.ReadCloser, error) {
	args := []string{
		"-hide_banner",
		"-loglevel", "error",
		"-nostdin",
	}
	if input != "" {
		args = append(args, "-f", input)
	}
	args = append(args,
		"-i", path,
		"-vf", fmt.Sprintf("scale=%d:%d", w, h),
		"-pix_fmt", "rgba",
		"-f", "rawvideo",
		"-r", strconv.Itoa(fps),
		"pipe:1",
	)
	cmd := exec.Command("ffmpeg", args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, nil, fmt.Errorf("demuxer stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, nil, fmt.Errorf("spawn demuxer (is ffmpeg on PATH?): %w", err)
	}
	return cmd, stdout, nil
}

// readFull reads exactly len(buf) bytes; it reports io.EOF cleanly when the
// stream ends on a frame boundary.
func readFull(r io.Reader, buf []byte) (eof bool, err error) {
	n, err := io.ReadFull(r, buf)
	if err == io.EOF || (err == io.ErrUnexpectedEOF && n == 0) {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	return false, nil
}

// VideoSource reads RGBA frames from an external demuxer child process. A
// producer goroutine fills pool buffers and sends them down a bounded
// channel; NextFrame try-receives and keeps the last frame on a miss. On
// EOF the child is respawned from offset zero (loop).
type VideoSource struct {
	path   string
	info   VideoInfo
	fps    int
	device bool

	pool    *frame.Pool
	frames  chan *frame.Buffer
	last    *frame.Buffer
	quit    chan struct{}
	wg      sync.WaitGroup
	killMu  sync.Mutex
	child   *exec.Cmd
	stdout  io.ReadCloser
	log     *zap.Logger
	started bool
}

// NewVideoSource probes the file and starts the producer.
func NewVideoSource(path string, targetFPS int, log *zap.Logger) (*VideoSource, error) {
	info, err := ProbeVideo(path)
	if err != nil {
		return nil, err
	}
	return newPipeSource(path, info, targetFPS, false, log)
}

// NewWebcamSource opens a capture device through the same demuxer pipe.
// On Linux the path is a v4l2 device node such as /dev/video0.
func NewWebcamSource(device string, targetFPS int, log *zap.Logger) (*VideoSource, error) {
	if device == "" {
		device = "/dev/video0"
	}
	info := VideoInfo{Width: 640, Height: 480, FPS: float64(targetFPS)}
	return newPipeSource(device, info, targetFPS, true, log)
}

func newPipeSource(path string, info VideoInfo, targetFPS int, device bool, log *zap.Logger) (*VideoSource, error) {
	s := &VideoSource{
		path:   path,
		info:   info,
		fps:    targetFPS,
		device: device,
		pool:   frame.NewPool(info.Width, info.Height, frame.PoolSize),
		frames: make(chan *frame.Buffer, 2),
		quit:   make(chan struct{}),
		log:    log,
	}
	if err := s.spawn(); err != nil {
		return nil, err
	}
	s.started = true
	s.wg.Add(1)
	go s.produce()
	return s, nil
}

func (s *VideoSource) spawn() error {
	input := ""
	if s.device {
		input = "v4l2"
	}
	child, stdout, err := SpawnDemuxer(s.path, s.info.Width, s.info.Height, s.fps, input)
	if err != nil {
		return err
	}
	s.killMu.Lock()
	s.child = child
	s.stdout = stdout
	s.killMu.Unlock()
	return nil
}

// produce is the source goroutine: read a frame, hand it to the channel,
// drop under backpressure, respawn the child on EOF.
func (s *VideoSource) produce() {
	defer s.wg.Done()
	frameBytes := s.info.Width * s.info.Height * 4
	restarted := false

	for {
		select {
		case <-s.quit:
			return
		default:
		}

		buf := s.pool.Acquire()
		if buf == nil {
			// Every buffer is in flight: skip a frame rather than allocate.
			time.Sleep(time.Millisecond)
			continue
		}

		eof, err := readFull(s.stdout, buf.Data[:frameBytes])
		if err != nil {
			buf.Release()
			if restarted {
				s.log.Warn("video pipe failed twice, stopping producer", zap.Error(err))
				return
			}
			// Transient pipe error: restart the producer once.
			s.log.Warn("video pipe error, restarting demuxer", zap.Error(err))
			s.killChild()
			if err := s.spawn(); err != nil {
				s.log.Warn("demuxer restart failed", zap.Error(err))
				return
			}
			restarted = true
			continue
		}
		if eof {
			buf.Release()
			if s.device {
				// A capture device reporting EOF is gone for good.
				return
			}
			// Finite file: loop by respawning at offset zero.
			s.killChild()
			if err := s.spawn(); err != nil {
				s.log.Warn("demuxer loop respawn failed", zap.Error(err))
				return
			}
			continue
		}
		restarted = false

		select {
		case s.frames <- buf:
		case <-s.quit:
			buf.Release()
			return
		default:
			// Renderer is behind; reuse the buffer rather than queue it.
			buf.Release()
		}
	}
}

// NextFrame try-receives the newest frame and keeps the last on a miss.
func (s *VideoSource) NextFrame() *frame.Buffer {
	select {
	case f := <-s.frames:
		if s.last != nil {
			s.last.Release()
		}
		s.last = f
		return f
	default:
		return s.last
	}
}

// NativeSize reports the demuxed dimensions.
func (s *VideoSource) NativeSize() (int, int) {
	return s.info.Width, s.info.Height
}

// IsLive is true for devices, false for files.
func (s *VideoSource) IsLive() bool {
	return s.device
}

func (s *VideoSource) killChild() {
	s.killMu.Lock()
	defer s.killMu.Unlock()
	if s.child != nil && s.child.Process != nil {
		_ = s.child.Process.Kill()
		_ = s.child.Wait()
	}
}

// Close stops the producer and kills the child process.
func (s *VideoSource) Close() error {
	if !s.started {
		return nil
	}
	close(s.quit)
	s.killChild()
	s.wg.Wait()
	return nil
}
