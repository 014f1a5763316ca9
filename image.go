package pix

import (
	"image"
	"image/color"
	"io"

	"github.com/pkg/errors"
)

func init() {
	image.RegisterFormat("pix", magic, decodeImage, decodeImageConfig)
}

func decodeImage(r io.Reader) (image.Image, error) {
	b, err := NewDecoder().DecodeFrom(r)
	if err != nil {
		return nil, err
	}
	return b.Image(), nil
}

func decodeImageConfig(r io.Reader) (image.Config, error) {
	var buf [headerSize]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return image.Config{}, errors.Wrapf(ErrTruncatedPayload, "header: %v", err)
	}
	h, err := DecodeHeader(buf[:])
	if err != nil {
		return image.Config{}, err
	}
	return image.Config{
		ColorModel: color.NRGBAModel,
		Width:      h.Width,
		Height:     h.Height,
	}, nil
}

// EncodeImage converts img and encodes it with e.
func (e *Encoder) EncodeImage(img image.Image) ([]byte, error) {
	return e.Encode(FromImage(img))
}
