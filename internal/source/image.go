package source

import (
	"fmt"
	"image"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"github.com/nfnt/resize"

	"github.com/linuxmatters/jivescii/internal/frame"
)

// maxStillDimension caps decoded stills; anything larger is pre-fit so the
// per-frame resize to the canvas stays cheap.
const maxStillDimension = 2048

// ImageSource serves a single decoded still forever.
type ImageSource struct {
	frame *frame.Buffer
}

// NewImageSource decodes the image at path.
func NewImageSource(path string) (*ImageSource, error) {
	fb, err := LoadImage(path)
	if err != nil {
		return nil, err
	}
	return &ImageSource{frame: fb}, nil
}

// LoadImage decodes an image file into an RGBA frame buffer, downsampling
// oversized stills to maxStillDimension first.
func LoadImage(path string) (*frame.Buffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open image %s: %w", path, err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode image %s: %w", path, err)
	}

	bounds := img.Bounds()
	if bounds.Dx() > maxStillDimension || bounds.Dy() > maxStillDimension {
		img = resize.Thumbnail(maxStillDimension, maxStillDimension, img, resize.Bilinear)
		bounds = img.Bounds()
	}

	rgba, ok := img.(*image.RGBA)
	if !ok || rgba.Stride != bounds.Dx()*4 {
		rgba = image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
		draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)
	}

	return &frame.Buffer{
		Data:   rgba.Pix,
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
	}, nil
}

// NextFrame always returns the decoded still.
func (s *ImageSource) NextFrame() *frame.Buffer {
	return s.frame
}

// NativeSize reports the decoded dimensions.
func (s *ImageSource) NativeSize() (int, int) {
	return s.frame.Width, s.frame.Height
}

// IsLive is false: a still never changes, but it also never runs out.
func (s *ImageSource) IsLive() bool {
	return false
}

// Close is a no-op for stills.
func (s *ImageSource) Close() error {
	return nil
}
