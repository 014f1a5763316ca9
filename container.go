package pix

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

const (
	magic      = "PX"
	headerSize = 7

	flagMethodMask = 0x0F
	flagAlpha      = 0x10
)

// Header is the fixed 7 byte prefix of every PIX file.
type Header struct {
	Width  int
	Height int
	Method Method
	Alpha  bool
}

// Channels is the number of bytes per stored pixel.
func (h Header) Channels() int {
	if h.Alpha {
		return 4
	}
	return 3
}

// PixelCount is Width*Height.
func (h Header) PixelCount() int {
	return h.Width * h.Height
}

// Append writes the header to dst. Reserved flag bits are always zero.
func (h Header) Append(dst []byte) []byte {
	flags := byte(h.Method) & flagMethodMask
	if h.Alpha {
		flags |= flagAlpha
	}
	dst = append(dst, magic...)
	dst = binary.LittleEndian.AppendUint16(dst, uint16(h.Width))
	dst = binary.LittleEndian.AppendUint16(dst, uint16(h.Height))
	return append(dst, flags)
}

// ParseHeader splits data into its header and payload.
func ParseHeader(data []byte) (Header, []byte, error) {
	if len(data) < len(magic) || string(data[:len(magic)]) != magic {
		if len(data) < len(magic) {
			return Header{}, nil, errors.Wrapf(ErrTruncatedPayload, "short magic: %d bytes", len(data))
		}
		return Header{}, nil, errors.Wrapf(ErrBadMagic, "%q", data[:len(magic)])
	}
	if len(data) < headerSize {
		return Header{}, nil, errors.Wrapf(ErrTruncatedPayload, "short header: %d bytes", len(data))
	}
	flags := data[6]
	h := Header{
		Width:  int(binary.LittleEndian.Uint16(data[2:4])),
		Height: int(binary.LittleEndian.Uint16(data[4:6])),
		Method: Method(flags & flagMethodMask),
		Alpha:  flags&flagAlpha != 0,
	}
	if !h.Method.Valid() {
		return h, nil, errors.Wrapf(ErrUnsupportedMethod, "method id %d", h.Method)
	}
	return h, data[headerSize:], nil
}

// DecodeHeader parses only the header of a PIX file.
func DecodeHeader(data []byte) (Header, error) {
	h, _, err := ParseHeader(data)
	return h, err
}
