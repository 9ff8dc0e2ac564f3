package audio

import (
	"fmt"
	"io"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	gowav "github.com/go-audio/wav"
)

// DecodeFile decodes an audio file into mono float32 samples. WAV files are
// read natively; everything else goes through an ffmpeg child process
// emitting raw float32 PCM on stdout.
func DecodeFile(path string) (samples []float32, sampleRate int, err error) {
	if strings.EqualFold(filepath.Ext(path), ".wav") {
		return decodeWAV(path)
	}
	return decodeFFmpeg(path)
}

// decodeWAV reads a PCM WAV file and downmixes to mono.
func decodeWAV(path string) ([]float32, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("open audio file: %w", err)
	}
	defer f.Close()

	dec := gowav.NewDecoder(f)
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, 0, fmt.Errorf("decode WAV %s: %w", path, err)
	}
	if buf == nil || buf.Format == nil || len(buf.Data) == 0 {
		return nil, 0, fmt.Errorf("empty WAV file: %s", path)
	}

	channels := buf.Format.NumChannels
	if channels < 1 {
		channels = 1
	}
	bits := dec.BitDepth
	if bits == 0 {
		bits = 16
	}
	scale := float32(int64(1) << (bits - 1))

	frames := len(buf.Data) / channels
	samples := make([]float32, frames)
	for i := 0; i < frames; i++ {
		var sum float32
		for ch := 0; ch < channels; ch++ {
			sum += float32(buf.Data[i*channels+ch]) / scale
		}
		samples[i] = sum / float32(channels)
	}

	return samples, buf.Format.SampleRate, nil
}

// decodeSampleRate is the rate ffmpeg resamples compressed audio to.
const decodeSampleRate = 44100

// decodeFFmpeg shells out to ffmpeg for non-WAV formats: decode, downmix to
// mono, resample, and stream raw little-endian float32 to stdout.
func decodeFFmpeg(path string) ([]float32, int, error) {
	cmd := exec.Command("ffmpeg",
		"-hide_banner",
		"-loglevel", "error",
		"-nostdin",
		"-i", path,
		"-f", "f32le",
		"-acodec", "pcm_f32le",
		"-ac", "1",
		"-ar", fmt.Sprint(decodeSampleRate),
		"pipe:1",
	)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, 0, fmt.Errorf("ffmpeg stdout pipe: %w", err)
	}
	cmd.Stderr = os.Stderr
	if err := cmd.Start(); err != nil {
		return nil, 0, fmt.Errorf("spawn ffmpeg decoder (is ffmpeg on PATH?): %w", err)
	}

	raw, err := io.ReadAll(stdout)
	if err != nil {
		_ = cmd.Wait()
		return nil, 0, fmt.Errorf("read decoded audio: %w", err)
	}
	if err := cmd.Wait(); err != nil {
		return nil, 0, fmt.Errorf("ffmpeg decode %s: %w", path, err)
	}

	samples := make([]float32, len(raw)/4)
	for i := range samples {
		bits := uint32(raw[i*4]) | uint32(raw[i*4+1])<<8 | uint32(raw[i*4+2])<<16 | uint32(raw[i*4+3])<<24
		samples[i] = math.Float32frombits(bits)
	}

	if len(samples) == 0 {
		return nil, 0, fmt.Errorf("no audio decoded from %s", path)
	}
	return samples, decodeSampleRate, nil
}
