package pix

import (
	"bytes"
	"io"
	"sync"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zlib"
	"github.com/pkg/errors"
)

// Strategy selects a deflate preset. It is never recorded in the output:
// every strategy produces a plain zlib stream.
type Strategy uint8

const (
	StrategyDefault Strategy = iota
	StrategyFiltered
	StrategyHuffmanOnly

	strategyCount
)

var strategyNames = [strategyCount]string{
	StrategyDefault:     "default",
	StrategyFiltered:    "filtered",
	StrategyHuffmanOnly: "huffman",
}

func (s Strategy) String() string {
	if s < strategyCount {
		return strategyNames[s]
	}
	return "unknown"
}

func (s Strategy) level() int {
	switch s {
	case StrategyFiltered:
		return flate.DefaultCompression
	case StrategyHuffmanOnly:
		return flate.HuffmanOnly
	default:
		return flate.BestCompression
	}
}

func mustNewZlibWriter(s Strategy) *zlib.Writer {
	zw, err := zlib.NewWriterLevel(nil, s.level())
	if err != nil {
		panic(err)
	}
	return zw
}

var zlibWriterPools = [strategyCount]sync.Pool{
	StrategyDefault:     {New: func() any { return mustNewZlibWriter(StrategyDefault) }},
	StrategyFiltered:    {New: func() any { return mustNewZlibWriter(StrategyFiltered) }},
	StrategyHuffmanOnly: {New: func() any { return mustNewZlibWriter(StrategyHuffmanOnly) }},
}

// deflate compresses data into a zlib stream using strategy s.
func deflate(data []byte, s Strategy) ([]byte, error) {
	if s >= strategyCount {
		return nil, errors.Errorf("pix: unknown deflate strategy %d", s)
	}
	var buf bytes.Buffer
	buf.Grow(len(data)/2 + 64)

	zw := zlibWriterPools[s].Get().(*zlib.Writer)
	defer zlibWriterPools[s].Put(zw)
	zw.Reset(&buf)

	if _, err := zw.Write(data); err != nil {
		return nil, errors.WithStack(err)
	}
	if err := zw.Close(); err != nil {
		return nil, errors.WithStack(err)
	}
	return buf.Bytes(), nil
}

// inflate decompresses a zlib stream. When the stream ends early the bytes
// recovered so far are returned together with ErrTruncatedPayload.
func inflate(data []byte) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		if isShortRead(err) {
			return nil, errors.Wrap(ErrTruncatedPayload, "zlib header")
		}
		return nil, errors.Wrapf(ErrCorruptPayload, "zlib header: %v", err)
	}
	defer zr.Close()

	out, err := io.ReadAll(zr)
	switch {
	case err == nil:
		return out, nil
	case isShortRead(err):
		return out, errors.Wrapf(ErrTruncatedPayload, "zlib stream: recovered %d bytes", len(out))
	default:
		return out, errors.Wrapf(ErrCorruptPayload, "zlib stream: %v", err)
	}
}

func isShortRead(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF)
}
