package pix

import (
	"io"

	"github.com/pkg/errors"
)

// Decoder reconstructs pixels from any PIX method. Damaged payloads degrade
// gracefully: a stream that ends early still yields an image whose missing
// pixels are opaque black.
type Decoder struct{}

// NewDecoder returns a Decoder.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Decode returns the image stored in data as a 4 channel buffer.
func (d *Decoder) Decode(data []byte) (*Buffer, error) {
	h, payload, err := ParseHeader(data)
	if err != nil {
		return nil, err
	}
	raw, err := pipelines[h.Method].decode(payload, frame{
		width:    h.Width,
		height:   h.Height,
		channels: h.Channels(),
	})
	if err != nil {
		return nil, errors.Wrapf(err, "decode %s", h.Method)
	}
	return fit(raw, h), nil
}

// DecodeFrom reads a whole PIX file from r and decodes it.
func (d *Decoder) DecodeFrom(r io.Reader) (*Buffer, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return d.Decode(data)
}

// fit copies decoded bytes into a width*height RGBA buffer. Extra pixels are
// dropped; missing ones, including a trailing partial pixel, are opaque black.
func fit(raw []byte, h Header) *Buffer {
	out := NewBuffer(h.Width, h.Height, 4)
	ch := h.Channels()
	n := min(len(raw)/ch, h.PixelCount())
	if ch == 4 {
		copy(out.Pix, raw[:n*4])
	} else {
		for i := 0; i < n; i++ {
			copy(out.Pix[i*4:i*4+3], raw[i*3:i*3+3])
			out.Pix[i*4+3] = 0xFF
		}
	}
	for i := n; i < h.PixelCount(); i++ {
		out.Pix[i*4+3] = 0xFF
	}
	if n < h.PixelCount() {
		log.Debugf("padded %d missing pixels", h.PixelCount()-n)
	}
	return out
}

// Decode decodes a PIX file.
func Decode(data []byte) (*Buffer, error) {
	return NewDecoder().Decode(data)
}
