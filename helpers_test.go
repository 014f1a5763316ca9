package pix

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

// makeTestImage builds a deterministic gradient/noise mix. With alpha set the
// alpha channel varies too.
func makeTestImage(w, h int, alpha bool) *Buffer {
	ch := 3
	if alpha {
		ch = 4
	}
	b := NewBuffer(w, h, ch)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := (y*w + x) * ch
			b.Pix[i+0] = uint8((x * 17) ^ (y * 31))
			b.Pix[i+1] = uint8((x * 43) + (y * 13))
			b.Pix[i+2] = uint8((x * 7) ^ (y * 11))
			if alpha {
				b.Pix[i+3] = uint8(255 - (x+y)%7)
			}
		}
	}
	return b
}

// makeFlatImage fills every pixel with the same color.
func makeFlatImage(w, h int, px ...byte) *Buffer {
	b := NewBuffer(w, h, len(px))
	for i := 0; i < len(b.Pix); i += len(px) {
		copy(b.Pix[i:], px)
	}
	return b
}

func assertSamePixels(t *testing.T, got *Buffer, want *Buffer) {
	t.Helper()
	want = want.RGBA()
	if got.Width != want.Width || got.Height != want.Height {
		t.Fatalf("size mismatch: got %dx%d want %dx%d", got.Width, got.Height, want.Width, want.Height)
	}
	if got.Channels != 4 {
		t.Fatalf("decoded channels=%d want 4", got.Channels)
	}
	if diff := cmp.Diff(want.Pix, got.Pix); diff != "" {
		t.Fatalf("pixels mismatch (-want +got):\n%s", diff)
	}
}
