package pix

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestPaeth(t *testing.T) {
	for _, tc := range []struct {
		left, up, upLeft, want byte
	}{
		{0, 0, 0, 0},
		{10, 0, 0, 10},
		{0, 10, 0, 10},
		{15, 40, 10, 40},
		{40, 15, 10, 40},
		{10, 10, 200, 10},
		{100, 50, 75, 75},
	} {
		if got := paeth(tc.left, tc.up, tc.upLeft); got != tc.want {
			t.Errorf("paeth(%d,%d,%d) = %d, want %d", tc.left, tc.up, tc.upLeft, got, tc.want)
		}
	}
}

func TestFilterPaeth2x2(t *testing.T) {
	data := []byte{
		10, 20, 30, 40, 50, 60,
		15, 25, 35, 45, 55, 65,
	}
	filtered := filterUniform(data, 2, 3, FilterPaeth)
	expect := []byte{
		4, 10, 20, 30, 30, 30, 30, // row 0: left only
		4, 5, 5, 5, 5, 5, 5, // row 1, col 0: above only
	}
	if diff := cmp.Diff(expect, filtered); diff != "" {
		t.Fatalf("filtered mismatch (-want +got):\n%s", diff)
	}
	restored, err := unfilterImage(filtered, 2, 3)
	if err != nil {
		t.Fatalf("unfilterImage: %v", err)
	}
	if diff := cmp.Diff(data, restored); diff != "" {
		t.Fatalf("restored mismatch (-want +got):\n%s", diff)
	}
}

func TestFilterRoundTrip(t *testing.T) {
	for _, tc := range []struct {
		name string
		img  *Buffer
	}{
		{"rgb", makeTestImage(19, 11, false)},
		{"rgba", makeTestImage(8, 8, true)},
		{"one column", makeTestImage(1, 9, false)},
		{"one row", makeTestImage(12, 1, true)},
	} {
		t.Run(tc.name, func(tt *testing.T) {
			b := tc.img
			streams := map[string][]byte{
				"adaptive": filterAdaptive(b.Pix, b.Width, b.Channels),
			}
			for f := FilterNone; f < filterCount; f++ {
				streams[f.String()] = filterUniform(b.Pix, b.Width, b.Channels, f)
			}
			for name, stream := range streams {
				if want := b.Height * (b.Width*b.Channels + 1); len(stream) != want {
					tt.Errorf("%s: stream len=%d want %d", name, len(stream), want)
				}
				restored, err := unfilterImage(stream, b.Width, b.Channels)
				if err != nil {
					tt.Fatalf("%s: unfilterImage: %v", name, err)
				}
				if !cmp.Equal(restored, b.Pix) {
					tt.Errorf("%s: round trip mismatch", name)
				}
			}
		})
	}
}

func TestFilterAdaptiveChoice(t *testing.T) {
	t.Run("row 0 never uses up, average or paeth", func(tt *testing.T) {
		b := makeTestImage(6, 1, false)
		stream := filterAdaptive(b.Pix, b.Width, b.Channels)
		if f := FilterType(stream[0]); f != FilterNone && f != FilterSub {
			tt.Errorf("row 0 filter = %s", f)
		}
	})
	t.Run("width 1 never uses sub or average", func(tt *testing.T) {
		b := makeTestImage(1, 8, false)
		stream := filterAdaptive(b.Pix, b.Width, b.Channels)
		for r := 0; r < b.Height; r++ {
			f := FilterType(stream[r*(b.Channels+1)])
			if f == FilterSub || f == FilterAverage {
				tt.Errorf("row %d filter = %s", r, f)
			}
		}
	})
	t.Run("bytes at 128 stay unfiltered", func(tt *testing.T) {
		// residuals of 0 score 128 each, the literal 128s score 0
		b := makeFlatImage(4, 2, 128, 128, 128)
		stream := filterAdaptive(b.Pix, b.Width, b.Channels)
		if f := FilterType(stream[0]); f != FilterNone {
			tt.Errorf("row 0 filter = %s, want none", f)
		}
		if f := FilterType(stream[13]); f != FilterNone {
			tt.Errorf("row 1 filter = %s, want none", f)
		}
	})
}

func TestUnfilterRejectsUnknownTag(t *testing.T) {
	_, err := unfilterImage([]byte{9, 1, 2, 3}, 1, 3)
	if err == nil {
		t.Fatalf("expected error for filter tag 9")
	}
}
