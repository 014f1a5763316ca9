package pix

import (
	"bytes"
	"io"
	"sync"

	"github.com/klauspost/compress/zlib"
	"github.com/pkg/errors"
)

// FastMethods are the methods DecodeFast understands.
var FastMethods = []Method{MethodRaw, MethodZlib, MethodZlibBest, MethodRowFilter}

var zlibReaderPool sync.Pool

// inflateExact inflates payload into dst, which must be filled exactly by a
// complete, checksummed stream.
func inflateExact(payload, dst []byte) error {
	br := bytes.NewReader(payload)
	var zr io.ReadCloser
	if v := zlibReaderPool.Get(); v != nil {
		zr = v.(io.ReadCloser)
		if err := zr.(zlib.Resetter).Reset(br, nil); err != nil {
			return errors.Wrapf(ErrCorruptPayload, "zlib header: %v", err)
		}
	} else {
		var err error
		if zr, err = zlib.NewReader(br); err != nil {
			return errors.Wrapf(ErrCorruptPayload, "zlib header: %v", err)
		}
	}
	defer zlibReaderPool.Put(zr)

	if _, err := io.ReadFull(zr, dst); err != nil {
		return errors.Wrapf(ErrTruncatedPayload, "zlib stream: %v", err)
	}
	extra, err := io.Copy(io.Discard, zr)
	if err != nil {
		return errors.Wrapf(ErrCorruptPayload, "zlib stream: %v", err)
	}
	if extra != 0 {
		return errors.Wrapf(ErrCorruptPayload, "zlib stream: %d trailing bytes", extra)
	}
	return nil
}

// DecodeFast decodes the FastMethods subset with strict checks: payloads must
// have exactly the expected size. Any other method or irregularity is an
// error; use DecodePreferFast to fall back to Decode.
func DecodeFast(data []byte) (*Buffer, error) {
	h, payload, err := ParseHeader(data)
	if err != nil {
		return nil, err
	}
	ch := h.Channels()
	rowBytes := h.Width * ch
	raw := make([]byte, h.Height*rowBytes)

	switch h.Method {
	case MethodRaw:
		if len(payload) != len(raw) {
			return nil, errors.Wrapf(ErrTruncatedPayload, "raw: %d of %d bytes", len(payload), len(raw))
		}
		raw = payload
	case MethodZlib, MethodZlibBest:
		if err := inflateExact(payload, raw); err != nil {
			return nil, err
		}
	case MethodRowFilter:
		var stream []byte
		if len(raw) > 0 {
			stream = make([]byte, h.Height*(rowBytes+1))
		}
		if err := inflateExact(payload, stream); err != nil {
			return nil, err
		}
		if raw, err = unfilterImage(stream, h.Width, ch); err != nil {
			return nil, err
		}
	default:
		return nil, errors.Wrapf(ErrUnsupportedMethod, "fast path: %s", h.Method)
	}
	return fit(raw, h), nil
}

// DecodePreferFast tries DecodeFast and falls back to Decode on any failure.
// Only an error from Decode is returned.
func DecodePreferFast(data []byte) (*Buffer, error) {
	b, err := DecodeFast(data)
	if err == nil {
		return b, nil
	}
	log.Debugf("fast path failed, falling back: %v", err)
	return Decode(data)
}
