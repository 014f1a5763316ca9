package pix

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/pkg/errors"
)

const maxDimension = 0xFFFF

// Buffer is an 8 bit per channel RGB or RGBA image stored row-major.
type Buffer struct {
	Width    int
	Height   int
	Channels int // 3 (RGB) or 4 (RGBA)
	Pix      []byte
}

// NewBuffer allocates a zeroed w x h buffer.
func NewBuffer(w, h, channels int) *Buffer {
	return &Buffer{
		Width:    w,
		Height:   h,
		Channels: channels,
		Pix:      make([]byte, w*h*channels),
	}
}

// Validate reports whether b can be stored in a PIX container.
func (b *Buffer) Validate() error {
	if b == nil {
		return errors.Wrap(ErrInvalidBuffer, "nil buffer")
	}
	if b.Channels != 3 && b.Channels != 4 {
		return errors.Wrapf(ErrInvalidBuffer, "channels=%d", b.Channels)
	}
	if b.Width < 0 || b.Height < 0 {
		return errors.Wrapf(ErrInvalidBuffer, "size %dx%d", b.Width, b.Height)
	}
	if b.Width > maxDimension || b.Height > maxDimension {
		return errors.Wrapf(ErrImageTooLarge, "size %dx%d", b.Width, b.Height)
	}
	if want := b.Width * b.Height * b.Channels; len(b.Pix) != want {
		return errors.Wrapf(ErrInvalidBuffer, "pix len=%d want=%d", len(b.Pix), want)
	}
	return nil
}

// PixelCount is Width*Height.
func (b *Buffer) PixelCount() int {
	return b.Width * b.Height
}

// HasAlpha reports whether any pixel is not fully opaque.
func (b *Buffer) HasAlpha() bool {
	if b.Channels != 4 {
		return false
	}
	for i := 3; i < len(b.Pix); i += 4 {
		if b.Pix[i] != 0xFF {
			return true
		}
	}
	return false
}

// Packed returns b in storage layout: RGBA when some pixel is translucent,
// RGB otherwise. b itself is returned when it already has that layout.
func (b *Buffer) Packed() *Buffer {
	if b.Channels == 3 || b.HasAlpha() {
		return b
	}
	out := NewBuffer(b.Width, b.Height, 3)
	for i, j := 0, 0; i < len(b.Pix); i, j = i+4, j+3 {
		out.Pix[j+0] = b.Pix[i+0]
		out.Pix[j+1] = b.Pix[i+1]
		out.Pix[j+2] = b.Pix[i+2]
	}
	return out
}

// RGBA returns a 4 channel copy of b. Missing alpha becomes 255.
func (b *Buffer) RGBA() *Buffer {
	out := NewBuffer(b.Width, b.Height, 4)
	if b.Channels == 4 {
		copy(out.Pix, b.Pix)
		return out
	}
	for i, j := 0, 0; i < len(b.Pix); i, j = i+3, j+4 {
		out.Pix[j+0] = b.Pix[i+0]
		out.Pix[j+1] = b.Pix[i+1]
		out.Pix[j+2] = b.Pix[i+2]
		out.Pix[j+3] = 0xFF
	}
	return out
}

// At returns the pixel at (x, y); RGB buffers report opaque alpha.
func (b *Buffer) At(x, y int) color.NRGBA {
	i := (y*b.Width + x) * b.Channels
	c := color.NRGBA{R: b.Pix[i], G: b.Pix[i+1], B: b.Pix[i+2], A: 0xFF}
	if b.Channels == 4 {
		c.A = b.Pix[i+3]
	}
	return c
}

// Image exposes b as an *image.NRGBA.
func (b *Buffer) Image() *image.NRGBA {
	rgba := b
	if b.Channels != 4 {
		rgba = b.RGBA()
	}
	img := image.NewNRGBA(image.Rect(0, 0, b.Width, b.Height))
	copy(img.Pix, rgba.Pix)
	return img
}

// FromImage copies any image.Image into a 4 channel Buffer with bounds
// starting at (0,0).
func FromImage(src image.Image) *Buffer {
	r := src.Bounds()
	dst, ok := src.(*image.NRGBA)
	if !ok || dst.Stride != 4*r.Dx() || r.Min != (image.Point{}) {
		dst = image.NewNRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
		draw.Draw(dst, dst.Bounds(), src, r.Min, draw.Src)
	}
	out := NewBuffer(r.Dx(), r.Dy(), 4)
	copy(out.Pix, dst.Pix)
	return out
}
