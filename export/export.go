// Package export encodes a rendered card to PNG, JPEG or PDF.
//
// The PDF writer embeds the card as a PNG image on a single page with
// pdfcpu, so the document carries the exact raster the surface produced.
package export

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/gogpu/card/internal/prim"
)

// Format is an output encoding.
type Format string

// Supported formats.
const (
	PNG  Format = "png"
	JPEG Format = "jpeg"
	PDF  Format = "pdf"
)

// DefaultQuality is used when the quality argument is outside [0, 1].
const DefaultQuality = 0.92

var (
	// ErrUnsupportedFormat is returned for an unknown format or extension.
	ErrUnsupportedFormat = errors.New("export: unsupported format")

	// ErrNilImage is returned when there is nothing to encode.
	ErrNilImage = errors.New("export: nil image")
)

// ParseFormat maps a format name or file extension ("png", ".jpg",
// "JPEG", "pdf") to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(s, ".")) {
	case "png":
		return PNG, nil
	case "jpg", "jpeg":
		return JPEG, nil
	case "pdf":
		return PDF, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
}

// Ext returns the conventional file extension for f, with the dot.
func (f Format) Ext() string {
	if f == JPEG {
		return ".jpg"
	}
	return "." + string(f)
}

// FormatOf picks the format from path's extension.
func FormatOf(path string) (Format, error) {
	ext := filepath.Ext(path)
	if ext == "" {
		return "", fmt.Errorf("%w: %q has no extension", ErrUnsupportedFormat, path)
	}
	return ParseFormat(ext)
}

// FileName returns a download name for a card addressed to the given
// recipient, e.g. "greeting-card-dear-friend.png".
func FileName(to string, f Format) string {
	return "greeting-card-" + prim.Slug(to, "card") + f.Ext()
}

// jpegQuality maps a 0..1 quality to the encoder's 1..100 scale, so 0 is
// the lowest quality. Values outside [0, 1] select DefaultQuality.
func jpegQuality(q float64) int {
	if q < 0 || q > 1 || math.IsNaN(q) {
		q = DefaultQuality
	}
	return int(prim.Clamp(math.Round(q*100), 1, 100))
}

// Encode writes img to w in format f. Quality in [0, 1] applies to JPEG;
// other values select DefaultQuality.
func Encode(w io.Writer, img image.Image, f Format, quality float64) error {
	if img == nil {
		return ErrNilImage
	}
	switch f {
	case PNG:
		return png.Encode(w, img)
	case JPEG:
		return jpeg.Encode(w, img, &jpeg.Options{Quality: jpegQuality(quality)})
	case PDF:
		return encodePDF(w, img)
	}
	return fmt.Errorf("%w: %q", ErrUnsupportedFormat, f)
}

func encodePDF(w io.Writer, img image.Image) error {
	var raster bytes.Buffer
	if err := png.Encode(&raster, img); err != nil {
		return err
	}
	conf := model.NewDefaultConfiguration()
	imp := pdfcpu.DefaultImportConfig()
	if err := api.ImportImages(nil, w, []io.Reader{&raster}, imp, conf); err != nil {
		return fmt.Errorf("export: pdf: %w", err)
	}
	return nil
}

// WriteFile encodes img to path, choosing the format by extension. The
// file is written to a temporary sibling and renamed into place.
func WriteFile(path string, img image.Image, quality float64) (err error) {
	f, err := FormatOf(path)
	if err != nil {
		return err
	}
	if img == nil {
		return ErrNilImage
	}
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()
	if err = Encode(tmp, img, f, quality); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
