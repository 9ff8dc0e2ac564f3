// Package audio contains the analysis pipeline (FFT, feature extraction,
// onset detection, smoothing), the capture and playback drivers, and the
// offline batch analyzer.
package audio

import (
	"math"

	"github.com/mjibson/go-dsp/fft"
)

// WindowSize is the fixed FFT window, set once at construction.
const WindowSize = 2048

// FFT computes windowed real FFTs with a precomputed Hann window and a
// reusable input buffer. The magnitude output slice is owned by the FFT and
// overwritten on each call.
type FFT struct {
	size      int
	window    []float64
	input     []float64
	magnitude []float32
}

// NewFFT builds a pipeline for the given window size.
func NewFFT(size int) *FFT {
	if size <= 0 {
		size = WindowSize
	}
	window := make([]float64, size)
	for i := range window {
		window[i] = 0.5 * (1.0 - math.Cos(2.0*math.Pi*float64(i)/float64(size-1)))
	}
	return &FFT{
		size:      size,
		window:    window,
		input:     make([]float64, size),
		magnitude: make([]float32, size/2+1),
	}
}

// Size returns the FFT window size.
func (f *FFT) Size() int {
	return f.size
}

// Process windows the samples, runs the real FFT, and returns the magnitude
// spectrum of length size/2+1 scaled by 1/size. Short inputs are
// zero-padded. The returned slice is reused across calls.
func (f *FFT) Process(samples []float32) []float32 {
	n := len(samples)
	if n > f.size {
		n = f.size
	}
	for i := 0; i < n; i++ {
		f.input[i] = float64(samples[i]) * f.window[i]
	}
	for i := n; i < f.size; i++ {
		f.input[i] = 0
	}

	coeffs := fft.FFTReal(f.input)
	scale := 1.0 / float64(f.size)
	for i := range f.magnitude {
		c := coeffs[i]
		f.magnitude[i] = float32(math.Hypot(real(c), imag(c)) * scale)
	}
	return f.magnitude
}
