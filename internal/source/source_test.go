package source

import (
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/linuxmatters/jivescii/internal/frame"
)

func TestResizeIdentityIsByteCopy(t *testing.T) {
	src := frame.NewBuffer(6, 6)
	for i := range src.Data {
		src.Data[i] = byte(i % 250)
	}
	dst := frame.NewBuffer(6, 6)
	NewResizer().Resize(src, dst)
	for i := range src.Data {
		if dst.Data[i] != src.Data[i] {
			t.Fatalf("byte %d differs under identity resize", i)
		}
	}
}

func TestResizeUpscaleFromSinglePixel(t *testing.T) {
	src := frame.NewBuffer(1, 1)
	src.Data[0], src.Data[1], src.Data[2], src.Data[3] = 10, 20, 30, 255

	dst := frame.NewBuffer(4, 4)
	NewResizer().Resize(src, dst)

	for i := 0; i < len(dst.Data); i += 4 {
		if dst.Data[i] != 10 || dst.Data[i+1] != 20 || dst.Data[i+2] != 30 {
			t.Fatalf("pixel %d = %v, want source pixel", i/4, dst.Data[i:i+3])
		}
	}
}

func TestResizeDownscaleAverages(t *testing.T) {
	// 2×2 checkerboard of 0 and 200 downscaled to 1×1 averages to 100.
	src := frame.NewBuffer(2, 2)
	for i, v := range []uint8{200, 0, 0, 200} {
		idx := i * 4
		src.Data[idx] = v
		src.Data[idx+3] = 255
	}
	dst := frame.NewBuffer(1, 1)
	NewResizer().Resize(src, dst)
	if dst.Data[0] != 100 {
		t.Errorf("averaged value = %d, want 100", dst.Data[0])
	}
}

func TestImageSourceServesDecodedStill(t *testing.T) {
	// Write a tiny PNG and load it back.
	img := image.NewRGBA(image.Rect(0, 0, 3, 2))
	for i := range img.Pix {
		img.Pix[i] = 128
	}
	path := filepath.Join(t.TempDir(), "test.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create temp png: %v", err)
	}
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	f.Close()

	src, err := NewImageSource(path)
	if err != nil {
		t.Fatalf("open image source: %v", err)
	}
	defer src.Close()

	w, h := src.NativeSize()
	if w != 3 || h != 2 {
		t.Errorf("native size = %dx%d, want 3x2", w, h)
	}
	if src.IsLive() {
		t.Error("image source claims to be live")
	}

	// The still is served forever.
	for i := 0; i < 3; i++ {
		fb := src.NextFrame()
		if fb == nil {
			t.Fatal("image source returned nil frame")
		}
		if fb.Width != 3 || fb.Height != 2 {
			t.Fatalf("frame size = %dx%d", fb.Width, fb.Height)
		}
	}
}

func TestImageSourceMissingFile(t *testing.T) {
	if _, err := NewImageSource("/nonexistent/nope.png"); err == nil {
		t.Error("missing image did not error")
	}
}

func TestParseFrac(t *testing.T) {
	if got := parseFrac("30000/1001"); got < 29.9 || got > 30.0 {
		t.Errorf("parseFrac NTSC = %f", got)
	}
	if got := parseFrac("0/0"); got != 0 {
		t.Errorf("parseFrac degenerate = %f", got)
	}
}

func TestMandelbrotGeneratesFrames(t *testing.T) {
	store := testConfigStore()
	m := NewMandelbrot(64, 48, store)

	fb := m.NextFrame()
	if fb == nil {
		t.Fatal("mandelbrot returned nil on a fresh pool")
	}
	if !fb.CameraBaked {
		t.Error("mandelbrot frames must be camera-baked")
	}
	if fb.Width != 64 || fb.Height != 48 {
		t.Errorf("frame size = %dx%d", fb.Width, fb.Height)
	}

	// Alpha is opaque everywhere, and the image is not a constant field.
	first := fb.Data[0]
	varied := false
	for i := 0; i < len(fb.Data); i += 4 {
		if fb.Data[i+3] != 255 {
			t.Fatal("transparent pixel in procedural output")
		}
		if fb.Data[i] != first {
			varied = true
		}
	}
	if !varied {
		t.Error("mandelbrot rendered a constant field")
	}
	if !m.IsLive() {
		t.Error("procedural source must be live")
	}
}

func TestMandelbrotPoolRecycling(t *testing.T) {
	m := NewMandelbrot(16, 16, testConfigStore())
	for i := 0; i < 50; i++ {
		if fb := m.NextFrame(); fb == nil {
			t.Fatalf("pool starved at frame %d with a single consumer", i)
		}
	}
}
