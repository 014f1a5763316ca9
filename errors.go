package pix

import "github.com/pkg/errors"

var (
	ErrBadMagic            = errors.New("pix: bad magic")
	ErrUnsupportedMethod   = errors.New("pix: unsupported method")
	ErrTruncatedPayload    = errors.New("pix: truncated payload")
	ErrCorruptPayload      = errors.New("pix: corrupt payload")
	ErrPaletteOverflow     = errors.New("pix: more than 256 colors")
	ErrAllCandidatesFailed = errors.New("pix: no method succeeded")
	ErrImageTooLarge       = errors.New("pix: image dimensions exceed 65535")
	ErrInvalidBuffer       = errors.New("pix: invalid pixel buffer")
)
