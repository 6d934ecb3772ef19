// Package export encodes poster rasters into image files.
//
// The poster core only produces pixels; encoding is delegated to
// github.com/disintegration/imaging so the core never deals with file formats.
package export

import (
	"bytes"
	"image"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/disintegration/imaging"

	"github.com/matzehuels/genposter/pkg/errors"
)

// Format constants for output formats.
const (
	FormatPNG  = "png"
	FormatJPEG = "jpeg"
)

// DefaultJPEGQuality is used when Options.Quality is zero.
const DefaultJPEGQuality = 92

// DownloadName is the file name offered for browser downloads.
const DownloadName = "generative_poster.png"

var formats = []string{FormatPNG, FormatJPEG}

// Formats lists the supported formats.
func Formats() []string {
	return slices.Clone(formats)
}

// Options tunes encoding.
type Options struct {
	// Quality is the JPEG quality in [1, 100]; ignored for PNG.
	Quality int
}

// ParseFormat normalizes a format name. "jpg" is accepted as an alias.
func ParseFormat(name string) (string, error) {
	f := strings.ToLower(strings.TrimSpace(name))
	if f == "jpg" {
		f = FormatJPEG
	}
	if !slices.Contains(formats, f) {
		return "", errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: png, jpeg)", name)
	}
	return f, nil
}

// ParseFormats normalizes and de-duplicates a list of formats, keeping order.
func ParseFormats(names []string) ([]string, error) {
	out := make([]string, 0, len(names))
	for _, n := range names {
		f, err := ParseFormat(n)
		if err != nil {
			return nil, err
		}
		if !slices.Contains(out, f) {
			out = append(out, f)
		}
	}
	return out, nil
}

// Extension returns the file extension including the dot.
func Extension(format string) string {
	if format == FormatJPEG {
		return ".jpg"
	}
	return ".png"
}

// ContentType returns the MIME type for format.
func ContentType(format string) string {
	if format == FormatJPEG {
		return "image/jpeg"
	}
	return "image/png"
}

// Encode writes img to w in the given format.
func Encode(w io.Writer, img image.Image, format string, opts Options) error {
	f, err := ParseFormat(format)
	if err != nil {
		return err
	}

	var encErr error
	switch f {
	case FormatJPEG:
		q := opts.Quality
		if q == 0 {
			q = DefaultJPEGQuality
		}
		if q < 1 || q > 100 {
			return errors.New(errors.ErrCodeInvalidParameter, "jpeg quality must be within [1, 100], got %d", q)
		}
		encErr = imaging.Encode(w, img, imaging.JPEG, imaging.JPEGQuality(q))
	default:
		encErr = imaging.Encode(w, img, imaging.PNG)
	}
	if encErr != nil {
		return errors.Wrap(errors.ErrCodeInternal, encErr, "encode %s", f)
	}
	return nil
}

// Bytes encodes img into memory.
func Bytes(img image.Image, format string, opts Options) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, img, format, opts); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteFile writes already encoded data to path, creating parent directories.
func WriteFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0o644)
}

// OutputPath derives the file name for format from base. An extension on
// base is replaced; "-" is passed through for stdout.
func OutputPath(base, format string) string {
	if base == "-" {
		return base
	}
	return strings.TrimSuffix(base, filepath.Ext(base)) + Extension(format)
}
