package raster

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"
	"github.com/svanichkin/pix"
)

func makeTestBuffer(w, h int) *pix.Buffer {
	b := pix.NewBuffer(w, h, 4)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := (y*w + x) * 4
			b.Pix[i+0] = uint8((x * 17) ^ (y * 31))
			b.Pix[i+1] = uint8((x * 43) + (y * 13))
			b.Pix[i+2] = uint8((x * 7) ^ (y * 11))
			b.Pix[i+3] = uint8(255 - (x+y)%5)
		}
	}
	return b
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	src := makeTestBuffer(23, 11)
	for _, format := range []string{"png", "qoi", "pix"} {
		t.Run(format, func(tt *testing.T) {
			var buf bytes.Buffer
			if err := Encode(&buf, src, format); err != nil {
				tt.Fatalf("Encode: %v", err)
			}
			got, name, err := Decode(&buf)
			if err != nil {
				tt.Fatalf("Decode: %v", err)
			}
			if name != format {
				tt.Errorf("format=%q want %q", name, format)
			}
			if got.Width != src.Width || got.Height != src.Height {
				tt.Fatalf("size %dx%d want %dx%d", got.Width, got.Height, src.Width, src.Height)
			}
			if diff := cmp.Diff(src.Pix, got.Pix); diff != "" {
				tt.Errorf("pixels mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestEncode_UnknownFormat(t *testing.T) {
	err := Encode(&bytes.Buffer{}, makeTestBuffer(2, 2), "tiff")
	if !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("expected ErrUnknownFormat, got %v", err)
	}
}

func TestFormatFromPath(t *testing.T) {
	for path, want := range map[string]string{
		"a.PNG":      "png",
		"b.qoi":      "qoi",
		"c/d.pix":    "pix",
		"e.jpeg":     "jpeg",
		"noext":      "png",
		"archive.gz": "png",
	} {
		if got := FormatFromPath(path); got != want {
			t.Errorf("FormatFromPath(%q)=%q want %q", path, got, want)
		}
	}
}

func TestWriteReadFile(t *testing.T) {
	dir := t.TempDir()
	src := makeTestBuffer(8, 8)
	for _, name := range []string{"out.png", "out.qoi", "out.pix"} {
		t.Run(name, func(tt *testing.T) {
			path := filepath.Join(dir, name)
			if err := WriteFile(path, src); err != nil {
				tt.Fatalf("WriteFile: %v", err)
			}
			got, _, err := ReadFile(path)
			if err != nil {
				tt.Fatalf("ReadFile: %v", err)
			}
			if !cmp.Equal(src.Pix, got.Pix) {
				tt.Errorf("pixels changed after %s round trip", name)
			}
		})
	}
	if _, _, err := ReadFile(filepath.Join(dir, "missing.png")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected os.ErrNotExist, got %v", err)
	}
}
