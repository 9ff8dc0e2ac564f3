package source

import (
	"fmt"
	"math"
	"runtime"
	"strings"
	"sync"

	"github.com/linuxmatters/jivescii/internal/config"
	"github.com/linuxmatters/jivescii/internal/frame"
)

// NewProcedural builds the named generator. "mandelbrot" is the only field
// currently implemented.
func NewProcedural(name string, width, height int, cfg *config.Store) (Source, error) {
	switch strings.ToLower(name) {
	case "mandelbrot":
		return NewMandelbrot(width, height, cfg), nil
	}
	return nil, fmt.Errorf("unknown procedural generator %q (supported: mandelbrot)", name)
}

// Mandelbrot evaluates the fractal per pixel with smooth iteration
// coloring. The camera parameters from the live config modulate zoom,
// rotation and pan directly in the complex plane, so frames are marked
// camera-baked and the virtual camera skips them.
type Mandelbrot struct {
	width      int
	height     int
	pool       *frame.Pool
	last       *frame.Buffer
	frameCount uint64
	cfg        *config.Store
}

// Seahorse Valley, a zoom target with endless structure.
const (
	mandelFocusX = -0.743643887037151
	mandelFocusY = 0.131825904205330
	mandelMaxIt  = 100
)

// NewMandelbrot creates the generator at the given resolution.
func NewMandelbrot(width, height int, cfg *config.Store) *Mandelbrot {
	m := &Mandelbrot{
		width:  width,
		height: height,
		pool:   frame.NewPool(width, height, 6),
		cfg:    cfg,
	}
	return m
}

// NextFrame renders the next animation step into a recycled pool buffer.
// When the pool is saturated it skips the step and returns the previous
// frame.
func (m *Mandelbrot) NextFrame() *frame.Buffer {
	fb := m.pool.Acquire()
	if fb == nil {
		return m.last
	}
	fb.CameraBaked = true

	cfg := m.cfg.Load()
	t := float64(m.frameCount) / 60.0

	zoom := float64(cfg.CameraZoom) * math.Exp(t*0.1)
	rot := float64(cfg.CameraRotation)
	panX := float64(cfg.CameraPanX)
	panY := float64(cfg.CameraPanY)

	cosA := math.Cos(rot)
	sinA := math.Sin(rot)
	w := float64(m.width)
	h := float64(m.height)

	rows := m.height
	workers := runtime.NumCPU()
	if workers > rows {
		workers = rows
	}
	var wg sync.WaitGroup
	chunk := (rows + workers - 1) / workers
	for wi := 0; wi < workers; wi++ {
		y0 := wi * chunk
		y1 := y0 + chunk
		if y1 > rows {
			y1 = rows
		}
		if y0 >= y1 {
			break
		}
		wg.Add(1)
		go func(y0, y1 int) {
			defer wg.Done()
			for py := y0; py < y1; py++ {
				rowIdx := py * m.width * 4
				for px := 0; px < m.width; px++ {
					rawX := (float64(px) - w/2) / (w * zoom) * 3.5
					rawY := (float64(py) - h/2) / (h * zoom) * 3.5

					rotX := rawX*cosA - rawY*sinA
					rotY := rawX*sinA + rawY*cosA

					cx := rotX + mandelFocusX - panX*3.5/zoom
					cy := rotY + mandelFocusY - panY*3.5/zoom

					var x, y float64
					iter := 0
					for x*x+y*y <= 4 && iter < mandelMaxIt {
						x, y = x*x-y*y+cx, 2*x*y+cy
						iter++
					}

					var luma uint8
					if iter < mandelMaxIt {
						// Smooth coloring removes the iteration banding.
						logZn := math.Log(x*x+y*y) / 2
						nu := math.Log(logZn/math.Ln2) / math.Ln2
						smooth := float64(iter) + 1 - nu
						luma = uint8(smooth / mandelMaxIt * 255)
					}

					idx := rowIdx + px*4
					fb.Data[idx] = luma
					fb.Data[idx+1] = luma
					fb.Data[idx+2] = luma
					fb.Data[idx+3] = 255
				}
			}
		}(y0, y1)
	}
	wg.Wait()

	m.frameCount++
	// The previous frame's handle is dropped one frame late so the
	// renderer can still be reading it while this one was drawn.
	if m.last != nil {
		m.last.Release()
	}
	m.last = fb
	return fb
}

// NativeSize reports the render resolution.
func (m *Mandelbrot) NativeSize() (int, int) {
	return m.width, m.height
}

// IsLive is true: the field is endless.
func (m *Mandelbrot) IsLive() bool {
	return true
}

// Close is a no-op.
func (m *Mandelbrot) Close() error {
	return nil
}
