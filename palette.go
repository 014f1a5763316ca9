package pix

import (
	"github.com/pkg/errors"
)

const maxPaletteSize = 256

// palette is a table of at most 256 distinct pixels plus one index per pixel.
type palette struct {
	channels int
	colors   []byte // len(colors) == size*channels
	indices  []byte
}

func (p *palette) size() int {
	return len(p.colors) / p.channels
}

// buildPalette collects the distinct pixels of data in first-seen order.
func buildPalette(data []byte, channels int) (*palette, error) {
	n := len(data) / channels
	if n == 0 {
		return nil, errors.Wrap(ErrInvalidBuffer, "palette: empty image")
	}
	p := &palette{
		channels: channels,
		colors:   make([]byte, 0, maxPaletteSize*channels),
		indices:  make([]byte, n),
	}
	seen := make(map[uint32]byte, maxPaletteSize)
	for i := 0; i < n; i++ {
		px := data[i*channels : (i+1)*channels]
		key := pixelKey(px)
		idx, ok := seen[key]
		if !ok {
			if len(seen) == maxPaletteSize {
				return nil, errors.Wrapf(ErrPaletteOverflow, "at pixel %d", i)
			}
			idx = byte(len(seen))
			seen[key] = idx
			p.colors = append(p.colors, px...)
		}
		p.indices[i] = idx
	}
	return p, nil
}

func pixelKey(px []byte) uint32 {
	key := uint32(px[0])<<24 | uint32(px[1])<<16 | uint32(px[2])<<8
	if len(px) == 4 {
		key |= uint32(px[3])
	}
	return key
}

// countColors returns the number of distinct pixels, stopping early once the
// count exceeds limit.
func countColors(data []byte, channels, limit int) int {
	seen := make(map[uint32]struct{}, limit+1)
	for i := 0; i+channels <= len(data); i += channels {
		seen[pixelKey(data[i:i+channels])] = struct{}{}
		if len(seen) > limit {
			break
		}
	}
	return len(seen)
}

// marshal lays the palette out as [size-1][colors][indices].
func (p *palette) marshal() []byte {
	out := make([]byte, 0, 1+len(p.colors)+len(p.indices))
	out = append(out, byte(p.size()-1))
	out = append(out, p.colors...)
	return append(out, p.indices...)
}

// expandPalette resolves the index stream of a marshaled palette into pixels.
// Missing indices are left to the caller's padding.
func expandPalette(data []byte, channels int) ([]byte, error) {
	if len(data) < 1 {
		return nil, errors.Wrap(ErrTruncatedPayload, "palette: missing size")
	}
	size := int(data[0]) + 1
	tableEnd := 1 + size*channels
	if len(data) < tableEnd {
		return nil, errors.Wrapf(ErrTruncatedPayload, "palette: table has %d of %d bytes", len(data)-1, size*channels)
	}
	table := data[1:tableEnd]
	indices := data[tableEnd:]
	out := make([]byte, 0, len(indices)*channels)
	for i, idx := range indices {
		if int(idx) >= size {
			return out, errors.Wrapf(ErrCorruptPayload, "palette: index %d at pixel %d out of range %d", idx, i, size)
		}
		out = append(out, table[int(idx)*channels:(int(idx)+1)*channels]...)
	}
	return out, nil
}
