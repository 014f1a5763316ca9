package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"
	"github.com/svanichkin/pix"
	"github.com/svanichkin/pix/raster"
)

func writeTestPNG(t *testing.T, dir, name string) (string, *pix.Buffer) {
	t.Helper()
	img := pix.NewBuffer(12, 7, 4)
	for i := range img.Pix {
		img.Pix[i] = uint8(i * 13)
	}
	path := filepath.Join(dir, name)
	if err := raster.WriteFile(path, img); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path, img
}

func TestEncodeDecodeFiles(t *testing.T) {
	dir := t.TempDir()
	in, img := writeTestPNG(t, dir, "a.png")

	for _, tc := range []struct {
		name string
		args []string
	}{
		{"selected", []string{in}},
		{"forced", []string{"-method", "png-all", in}},
		{"fast", []string{"-fast", "-list", in}},
	} {
		t.Run(tc.name, func(tt *testing.T) {
			if err := runEncode(tc.args); err != nil {
				tt.Fatalf("runEncode: %v", err)
			}
			pixPath := filepath.Join(dir, "a.pix")
			out := filepath.Join(dir, "a-out.png")
			if err := runDecode([]string{pixPath, out}); err != nil {
				tt.Fatalf("runDecode: %v", err)
			}
			got, _, err := raster.ReadFile(out)
			if err != nil {
				tt.Fatalf("ReadFile: %v", err)
			}
			if diff := cmp.Diff(img.Pix, got.Pix); diff != "" {
				tt.Errorf("pixels mismatch (-want +got):\n%s", diff)
			}
			if err := runInfo([]string{pixPath}); err != nil {
				tt.Errorf("runInfo: %v", err)
			}
		})
	}
}

func TestEncode_ForcedMethodStored(t *testing.T) {
	dir := t.TempDir()
	in, _ := writeTestPNG(t, dir, "b.png")
	if err := runEncode([]string{"-method", "9", in}); err != nil {
		t.Fatalf("runEncode: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "b.pix"))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	h, err := pix.DecodeHeader(data)
	if err != nil {
		t.Fatalf("DecodeHeader: %v", err)
	}
	if h.Method != pix.MethodRowFilter2 {
		t.Errorf("method=%s want %s", h.Method, pix.MethodRowFilter2)
	}
}

func TestEncode_ForcedPaletteOverflow(t *testing.T) {
	dir := t.TempDir()
	img := pix.NewBuffer(300, 1, 3)
	for i := 0; i < 300; i++ {
		img.Pix[i*3+0] = uint8(i)
		img.Pix[i*3+1] = uint8(i >> 8)
	}
	in := filepath.Join(dir, "many.png")
	if err := raster.WriteFile(in, img); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if err := runEncode([]string{"-method", "palette", in}); !errors.Is(err, pix.ErrPaletteOverflow) {
		t.Errorf("expected ErrPaletteOverflow, got %v", err)
	}
}

func TestEncode_MultipleInputs(t *testing.T) {
	dir := t.TempDir()
	a, _ := writeTestPNG(t, dir, "c.png")
	b, _ := writeTestPNG(t, dir, "d.png")
	if err := runEncode([]string{a, b}); err != nil {
		t.Fatalf("runEncode: %v", err)
	}
	for _, name := range []string{"c.pix", "d.pix"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("%s: %v", name, err)
		}
	}
}

func TestCommandErrors(t *testing.T) {
	if err := runEncode(nil); err == nil {
		t.Errorf("encode without inputs succeeded")
	}
	if err := runDecode(nil); err == nil {
		t.Errorf("decode without inputs succeeded")
	}
	if err := runInfo([]string{filepath.Join(t.TempDir(), "missing.pix")}); err == nil {
		t.Errorf("info on a missing file succeeded")
	}
}
