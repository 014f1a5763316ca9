// Package raster converts between pix.Buffer and the common raster formats
// (png, jpeg, gif, qoi) as well as PIX containers.
package raster

import (
	"bufio"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/svanichkin/pix"
	"github.com/xfmoulet/qoi"
)

// ErrUnknownFormat is returned when no writer exists for a format name.
var ErrUnknownFormat = errors.New("raster: unknown format")

// Decode reads any registered image format and returns its pixels with the
// format name reported by image.Decode.
func Decode(r io.Reader) (*pix.Buffer, string, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, "", errors.Wrap(err, "raster: decode")
	}
	return pix.FromImage(img), format, nil
}

// Encode writes buf in the named format. PNG output favours speed over size.
func Encode(w io.Writer, buf *pix.Buffer, format string) error {
	switch format {
	case "png":
		enc := &png.Encoder{CompressionLevel: png.BestSpeed}
		return errors.WithStack(enc.Encode(w, buf.Image()))
	case "qoi":
		return errors.WithStack(qoi.Encode(w, buf.Image()))
	case "pix":
		return errors.WithStack(pix.NewEncoder().EncodeTo(w, buf))
	}
	return errors.Wrapf(ErrUnknownFormat, "%q", format)
}

// FormatFromPath maps a file extension to a format name. Unknown extensions
// map to "png".
func FormatFromPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".qoi":
		return "qoi"
	case ".pix":
		return "pix"
	case ".jpg", ".jpeg":
		return "jpeg"
	case ".gif":
		return "gif"
	}
	return "png"
}

// ReadFile decodes the image stored at path.
func ReadFile(path string) (*pix.Buffer, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", errors.WithStack(err)
	}
	defer f.Close()

	buf, format, err := Decode(bufio.NewReader(f))
	if err != nil {
		return nil, "", errors.Wrapf(err, "%s", path)
	}
	return buf, format, nil
}

// WriteFile encodes buf into path using the format implied by its extension.
func WriteFile(path string, buf *pix.Buffer) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.WithStack(err)
	}
	w := bufio.NewWriter(f)
	if err := Encode(w, buf, FormatFromPath(path)); err != nil {
		f.Close()
		return errors.Wrapf(err, "%s", path)
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return errors.WithStack(err)
	}
	return errors.WithStack(f.Close())
}
