// Package frame provides the dense RGBA pixel buffer the pipeline stages
// operate on, plus conversions to and from the standard image types.
package frame

import (
	"errors"
	"fmt"
	"image"
	"os"

	"github.com/disintegration/imaging"
	xdraw "golang.org/x/image/draw"
)

// ErrZeroArea indicates a buffer with zero width or height was requested.
var ErrZeroArea = errors.New("frame: zero-area buffer")

// Buffer is a dense RGBA frame, 4 bytes per pixel in row-major order.
// Intermediate arithmetic is performed in wider types by the callers and
// clamped back to [0,255] on store.
type Buffer struct {
	Width  int
	Height int
	Pix    []uint8
}

// NewBuffer allocates a zeroed RGBA buffer. Returns an error for
// non-positive dimensions; downstream stages must never see zero-area
// buffers.
func NewBuffer(width, height int) (*Buffer, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrZeroArea, width, height)
	}
	return &Buffer{Width: width, Height: height, Pix: make([]uint8, width*height*4)}, nil
}

// Clone returns a deep copy of the buffer.
func (b *Buffer) Clone() *Buffer {
	pix := make([]uint8, len(b.Pix))
	copy(pix, b.Pix)
	return &Buffer{Width: b.Width, Height: b.Height, Pix: pix}
}

// Offset returns the byte offset of pixel (x, y). Callers are responsible
// for bounds.
func (b *Buffer) Offset(x, y int) int { return (y*b.Width + x) * 4 }

// RGBA returns the channels at (x, y).
func (b *Buffer) RGBA(x, y int) (r, g, bl, a uint8) {
	i := b.Offset(x, y)
	return b.Pix[i], b.Pix[i+1], b.Pix[i+2], b.Pix[i+3]
}

// SetRGBA stores the channels at (x, y).
func (b *Buffer) SetRGBA(x, y int, r, g, bl, a uint8) {
	i := b.Offset(x, y)
	b.Pix[i] = r
	b.Pix[i+1] = g
	b.Pix[i+2] = bl
	b.Pix[i+3] = a
}

// FromImage converts an arbitrary image into a Buffer, scaling to the
// given target dimensions when they differ from the source. Scaling uses
// bilinear interpolation; the frame source feeds live video so quality is
// traded for speed.
func FromImage(img image.Image, width, height int) (*Buffer, error) {
	if img == nil {
		return nil, errors.New("frame: nil source image")
	}
	bounds := img.Bounds()
	if bounds.Dx() == 0 || bounds.Dy() == 0 {
		return nil, fmt.Errorf("%w: source %v", ErrZeroArea, bounds)
	}
	if width <= 0 || height <= 0 {
		width, height = bounds.Dx(), bounds.Dy()
	}

	rgba := image.NewRGBA(image.Rect(0, 0, width, height))
	if bounds.Dx() == width && bounds.Dy() == height {
		xdraw.Draw(rgba, rgba.Bounds(), img, bounds.Min, xdraw.Src)
	} else {
		xdraw.BiLinear.Scale(rgba, rgba.Bounds(), img, bounds, xdraw.Src, nil)
	}
	return &Buffer{Width: width, Height: height, Pix: rgba.Pix}, nil
}

// ToImage converts the buffer into an *image.RGBA sharing no storage with
// the buffer.
func (b *Buffer) ToImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, b.Width, b.Height))
	copy(img.Pix, b.Pix)
	return img
}

// Load reads an image file and converts it into a Buffer at its native
// dimensions.
func Load(path string) (*Buffer, error) {
	img, err := imaging.Open(path)
	if err != nil {
		return nil, fmt.Errorf("frame: open %s: %w", path, err)
	}
	return FromImage(img, 0, 0)
}

// Save writes the buffer to disk; the format is derived from the file
// extension.
func (b *Buffer) Save(path string) error {
	if err := imaging.Save(b.ToImage(), path); err != nil {
		return fmt.Errorf("frame: save %s: %w", path, err)
	}
	return nil
}

// Fit downscales the buffer to fit within maxWidth x maxHeight while
// preserving aspect ratio. Buffers already within bounds are returned
// unchanged.
func (b *Buffer) Fit(maxWidth, maxHeight int) (*Buffer, error) {
	if b.Width <= maxWidth && b.Height <= maxHeight {
		return b, nil
	}
	fitted := imaging.Fit(b.ToImage(), maxWidth, maxHeight, imaging.Linear)
	return FromImage(fitted, 0, 0)
}

// Exists reports whether path names an existing regular file. Used by the
// CLI to validate inputs before constructing a pipeline.
func Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
