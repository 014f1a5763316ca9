package pix

import (
	"github.com/pkg/errors"
)

// FilterType is the PNG style tag stored in front of every filtered row.
type FilterType uint8

const (
	FilterNone FilterType = iota
	FilterSub
	FilterUp
	FilterAverage
	FilterPaeth

	filterCount
)

var filterNames = [filterCount]string{"none", "sub", "up", "average", "paeth"}

func (f FilterType) String() string {
	if f < filterCount {
		return filterNames[f]
	}
	return "unknown"
}

// paeth picks whichever of left, up and upLeft is closest to left+up-upLeft,
// preferring left, then up.
func paeth(left, up, upLeft byte) byte {
	p := int(left) + int(up) - int(upLeft)
	pa := abs(p - int(left))
	pb := abs(p - int(up))
	pc := abs(p - int(upLeft))
	if pa <= pb && pa <= pc {
		return left
	}
	if pb <= pc {
		return up
	}
	return upLeft
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// filterRow writes the residuals of row into dst. prev is the unfiltered row
// above, or nil on the first row.
func filterRow(f FilterType, dst, row, prev []byte, channels int) {
	for i := range row {
		var left, up, upLeft byte
		if i >= channels {
			left = row[i-channels]
		}
		if prev != nil {
			up = prev[i]
			if i >= channels {
				upLeft = prev[i-channels]
			}
		}
		switch f {
		case FilterNone:
			dst[i] = row[i]
		case FilterSub:
			dst[i] = row[i] - left
		case FilterUp:
			dst[i] = row[i] - up
		case FilterAverage:
			dst[i] = row[i] - byte((int(left)+int(up))>>1)
		case FilterPaeth:
			dst[i] = row[i] - paeth(left, up, upLeft)
		}
	}
}

// unfilterRow reconstructs row in place. prev is the reconstructed row above,
// or nil on the first row.
func unfilterRow(f FilterType, row, prev []byte, channels int) {
	for i := range row {
		var left, up, upLeft byte
		if i >= channels {
			left = row[i-channels]
		}
		if prev != nil {
			up = prev[i]
			if i >= channels {
				upLeft = prev[i-channels]
			}
		}
		switch f {
		case FilterSub:
			row[i] += left
		case FilterUp:
			row[i] += up
		case FilterAverage:
			row[i] += byte((int(left) + int(up)) >> 1)
		case FilterPaeth:
			row[i] += paeth(left, up, upLeft)
		}
	}
}

// rowScore is the selection heuristic for adaptive filtering: sum of |b-128|.
func rowScore(b []byte) int {
	sum := 0
	for _, v := range b {
		sum += abs(int(v) - 128)
	}
	return sum
}

// imageRows splits data into rows of rowBytes. A short final row is
// zero padded.
func imageRows(data []byte, rowBytes int) [][]byte {
	if rowBytes <= 0 || len(data) == 0 {
		return nil
	}
	n := (len(data) + rowBytes - 1) / rowBytes
	rows := make([][]byte, n)
	for r := 0; r < n; r++ {
		start := r * rowBytes
		if start+rowBytes <= len(data) {
			rows[r] = data[start : start+rowBytes]
			continue
		}
		padded := make([]byte, rowBytes)
		copy(padded, data[start:])
		rows[r] = padded
	}
	return rows
}

// filterAdaptive filters every row with whichever filter valid at that row
// scores lowest and emits tagged rows. Sub and average need width > 1; up,
// average and paeth need a row above.
func filterAdaptive(data []byte, width, channels int) []byte {
	rowBytes := width * channels
	rows := imageRows(data, rowBytes)
	out := make([]byte, 0, len(rows)*(rowBytes+1))
	scratch := make([]byte, rowBytes)
	best := make([]byte, rowBytes)

	var prev []byte
	for r, row := range rows {
		bestType, bestScore := FilterNone, -1
		for f := FilterNone; f < filterCount; f++ {
			if (f == FilterSub || f == FilterAverage) && width <= 1 {
				continue
			}
			if (f == FilterUp || f == FilterAverage || f == FilterPaeth) && r == 0 {
				continue
			}
			filterRow(f, scratch, row, prev, channels)
			if score := rowScore(scratch); bestScore < 0 || score < bestScore {
				bestType, bestScore = f, score
				best, scratch = scratch, best
			}
		}
		out = append(out, byte(bestType))
		out = append(out, best...)
		prev = row
	}
	return out
}

// filterUniform applies f to every row, still tagging each row.
func filterUniform(data []byte, width, channels int, f FilterType) []byte {
	rowBytes := width * channels
	rows := imageRows(data, rowBytes)
	out := make([]byte, len(rows)*(rowBytes+1))

	var prev []byte
	for r, row := range rows {
		o := r * (rowBytes + 1)
		out[o] = byte(f)
		filterRow(f, out[o+1:o+1+rowBytes], row, prev, channels)
		prev = row
	}
	return out
}

// unfilterImage reverses filterAdaptive and filterUniform. Rows are read until
// the stream ends. Only the bytes present in a short final row are returned.
func unfilterImage(stream []byte, width, channels int) ([]byte, error) {
	rowBytes := width * channels
	if rowBytes <= 0 {
		return nil, nil
	}
	n := (len(stream) + rowBytes) / (rowBytes + 1)
	out := make([]byte, n*rowBytes)
	size := 0

	var prev []byte
	for r := 0; r < n; r++ {
		pos := r * (rowBytes + 1)
		f := FilterType(stream[pos])
		if f >= filterCount {
			return out[:size], errors.Wrapf(ErrCorruptPayload, "row %d: filter type %d", r, f)
		}
		row := out[r*rowBytes : (r+1)*rowBytes]
		size += copy(row, stream[pos+1:min(pos+1+rowBytes, len(stream))])
		unfilterRow(f, row, prev, channels)
		prev = row
	}
	return out[:size], nil
}
