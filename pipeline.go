package pix

import (
	"github.com/pkg/errors"
)

// frame describes the pixels a pipeline works on.
type frame struct {
	width    int
	height   int
	channels int
}

func (f frame) pixels() int {
	return f.width * f.height
}

type (
	encodeFunc func(src []byte, f frame) ([]byte, error)
	decodeFunc func(payload []byte, f frame) ([]byte, error)
)

type pipeline struct {
	encode encodeFunc
	decode decodeFunc
}

var pipelines = [methodCount]pipeline{
	MethodRaw:        {encodeRaw, decodeRaw},
	MethodRLE:        {encodeRLE, decodeRLE},
	MethodZlib:       {encodeZlib, decodeZlib},
	MethodZlibBest:   {encodeZlibBest, decodeZlib},
	MethodDelta:      {encodeDelta, decodeDelta},
	MethodPalette:    {encodePalette, decodePalette},
	MethodRowFilter:  {encodeRowFilter, decodeFiltered},
	MethodFilterAll:  {encodeFilterAll, decodeFiltered},
	MethodRLEFilter:  {encodeRLEFilter, decodeRLEFilter},
	MethodRowFilter2: {twice(encodeRowFilter), decodeFilteredTwice},
	MethodFilterAll2: {twice(encodeFilterAll), decodeFilteredTwice},
}

// inflatePartial is inflate for the lenient decoder: a stream that ends early
// yields its recovered prefix with truncated set instead of an error.
func inflatePartial(payload []byte) (out []byte, truncated bool, err error) {
	out, err = inflate(payload)
	if err != nil && errors.Is(err, ErrTruncatedPayload) {
		log.Debugf("inflate: %v", err)
		return out, true, nil
	}
	return out, false, err
}

// smallest runs try for n variants and keeps the shortest output, ties going
// to the lowest variant.
func smallest(n int, try func(i int) ([]byte, error)) (int, []byte, error) {
	bestIdx, best := -1, []byte(nil)
	var lastErr error
	for i := 0; i < n; i++ {
		out, err := try(i)
		if err != nil {
			lastErr = err
			continue
		}
		if bestIdx < 0 || len(out) < len(best) {
			bestIdx, best = i, out
		}
	}
	if bestIdx < 0 {
		return 0, nil, lastErr
	}
	return bestIdx, best, nil
}

func twice(enc encodeFunc) encodeFunc {
	return func(src []byte, f frame) ([]byte, error) {
		once, err := enc(src, f)
		if err != nil {
			return nil, err
		}
		return deflate(once, StrategyDefault)
	}
}

// 0: raw

func encodeRaw(src []byte, _ frame) ([]byte, error) {
	return src, nil
}

func decodeRaw(payload []byte, _ frame) ([]byte, error) {
	return payload, nil
}

// 1: rle -> deflate

func encodeRLE(src []byte, f frame) ([]byte, error) {
	return deflate(rlePack(src, f.channels), StrategyDefault)
}

func decodeRLE(payload []byte, f frame) ([]byte, error) {
	packed, truncated, err := inflatePartial(payload)
	if err != nil {
		return nil, err
	}
	out, err := rleExpand(packed, f.channels, f.pixels())
	if err != nil && truncated {
		return out, nil
	}
	return out, err
}

// 2, 3: deflate

func encodeZlib(src []byte, _ frame) ([]byte, error) {
	return deflate(src, StrategyDefault)
}

func encodeZlibBest(src []byte, _ frame) ([]byte, error) {
	_, out, err := smallest(int(strategyCount), func(i int) ([]byte, error) {
		return deflate(src, Strategy(i))
	})
	return out, err
}

func decodeZlib(payload []byte, _ frame) ([]byte, error) {
	out, _, err := inflatePartial(payload)
	return out, err
}

// 4: predictor residuals -> deflate, preceded by a predictor tag byte.

func encodeDelta(src []byte, f frame) ([]byte, error) {
	tag, out, err := smallest(int(predictorCount), func(i int) ([]byte, error) {
		return deflate(Predictor(i).residuals(src, f.width, f.channels), StrategyDefault)
	})
	if err != nil {
		return nil, err
	}
	return append([]byte{byte(tag)}, out...), nil
}

func decodeDelta(payload []byte, f frame) ([]byte, error) {
	if len(payload) < 1 {
		return nil, errors.Wrap(ErrTruncatedPayload, "delta: missing predictor tag")
	}
	p := Predictor(payload[0])
	if p >= predictorCount {
		return nil, errors.Wrapf(ErrCorruptPayload, "delta: predictor tag %d", payload[0])
	}
	if f.width <= 0 {
		return nil, nil
	}
	res, _, err := inflatePartial(payload[1:])
	if err != nil {
		return nil, err
	}
	return p.reconstruct(res, f.width, f.channels), nil
}

// 5: palette -> deflate

func encodePalette(src []byte, f frame) ([]byte, error) {
	p, err := buildPalette(src, f.channels)
	if err != nil {
		return nil, err
	}
	return deflate(p.marshal(), StrategyDefault)
}

func decodePalette(payload []byte, f frame) ([]byte, error) {
	data, truncated, err := inflatePartial(payload)
	if err != nil {
		return nil, err
	}
	out, err := expandPalette(data, f.channels)
	if err != nil && truncated && errors.Is(err, ErrTruncatedPayload) {
		return out, nil
	}
	return out, err
}

// 6, 7: row filters -> deflate

func encodeRowFilter(src []byte, f frame) ([]byte, error) {
	return deflate(filterAdaptive(src, f.width, f.channels), StrategyDefault)
}

func encodeFilterAll(src []byte, f frame) ([]byte, error) {
	ft, out, err := smallest(int(filterCount), func(i int) ([]byte, error) {
		return deflate(filterUniform(src, f.width, f.channels, FilterType(i)), StrategyDefault)
	})
	if err == nil {
		log.Debugf("png-all: %s filter, %d bytes", FilterType(ft), len(out))
	}
	return out, err
}

func decodeFiltered(payload []byte, f frame) ([]byte, error) {
	stream, _, err := inflatePartial(payload)
	if err != nil {
		return nil, err
	}
	return unfilterImage(stream, f.width, f.channels)
}

// 8: rle -> row filters -> deflate. The rle stream is laid out in rows of
// width*channels bytes; the zero padding of the last row is never reached
// because expansion stops at the pixel count.

func encodeRLEFilter(src []byte, f frame) ([]byte, error) {
	packed := rlePack(src, f.channels)
	return deflate(filterAdaptive(packed, f.width, f.channels), StrategyDefault)
}

func decodeRLEFilter(payload []byte, f frame) ([]byte, error) {
	stream, truncated, err := inflatePartial(payload)
	if err != nil {
		return nil, err
	}
	packed, err := unfilterImage(stream, f.width, f.channels)
	if err != nil {
		return nil, err
	}
	out, err := rleExpand(packed, f.channels, f.pixels())
	if err != nil && truncated {
		return out, nil
	}
	return out, err
}

// 9, 10: second deflate pass over 6, 7

func decodeFilteredTwice(payload []byte, f frame) ([]byte, error) {
	inner, _, err := inflatePartial(payload)
	if err != nil {
		return nil, err
	}
	return decodeFiltered(inner, f)
}
