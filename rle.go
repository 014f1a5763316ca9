package pix

import (
	"bytes"

	"github.com/pkg/errors"
)

const maxRun = 255

// rlePack stores maximal runs of identical pixels as (count, pixel) pairs.
// Runs longer than 255 pixels are split.
func rlePack(data []byte, channels int) []byte {
	if len(data) == 0 {
		return nil
	}
	out := make([]byte, 0, len(data)/2+channels+1)
	for i := 0; i < len(data); {
		px := data[i:min(i+channels, len(data))]
		run := 1
		for run < maxRun {
			next := i + run*channels
			if next+len(px) > len(data) || !bytes.Equal(data[next:next+len(px)], px) {
				break
			}
			run++
		}
		out = append(out, byte(run))
		out = append(out, px...)
		i += run * len(px)
	}
	return out
}

// rleExpand reverses rlePack, stopping once limit pixels have been produced.
// A negative limit expands the whole stream.
func rleExpand(data []byte, channels, limit int) ([]byte, error) {
	capHint := limit * channels
	if limit < 0 {
		capHint = len(data) * 4
	}
	out := make([]byte, 0, capHint)
	pixels := 0
	for i := 0; i < len(data) && (limit < 0 || pixels < limit); {
		if i+1+channels > len(data) {
			return out, errors.Wrapf(ErrTruncatedPayload, "rle: incomplete pair at offset %d", i)
		}
		run := int(data[i])
		px := data[i+1 : i+1+channels]
		for n := 0; n < run && (limit < 0 || pixels < limit); n++ {
			out = append(out, px...)
			pixels++
		}
		i += 1 + channels
	}
	return out, nil
}
