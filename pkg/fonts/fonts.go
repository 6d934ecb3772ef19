// Package fonts provides the embedded typefaces used for the poster title block.
//
// The Go fonts ship inside golang.org/x/image, so posters render identically
// on every machine without looking up system fonts. Parsed fonts are cached
// after first use; faces are cheap and built per size.
package fonts

import (
	"sync"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/matzehuels/genposter/pkg/errors"
)

// Weight selects one of the embedded typefaces.
type Weight int

const (
	Regular Weight = iota
	Bold
)

// FontFamily is the display name of the embedded family.
const FontFamily = "Go"

var (
	parseOnce sync.Once
	parsed    map[Weight]*truetype.Font
	parseErr  error
)

func load() (map[Weight]*truetype.Font, error) {
	parseOnce.Do(func() {
		regular, err := truetype.Parse(goregular.TTF)
		if err != nil {
			parseErr = errors.Wrap(errors.ErrCodeInternal, err, "parse regular font")
			return
		}
		bold, err := truetype.Parse(gobold.TTF)
		if err != nil {
			parseErr = errors.Wrap(errors.ErrCodeInternal, err, "parse bold font")
			return
		}
		parsed = map[Weight]*truetype.Font{Regular: regular, Bold: bold}
	})
	return parsed, parseErr
}

// TTF returns the raw font data for w.
func TTF(w Weight) []byte {
	if w == Bold {
		return gobold.TTF
	}
	return goregular.TTF
}

// Face returns a face of the given point size rendered at dpi.
func Face(w Weight, points, dpi float64) (font.Face, error) {
	if points <= 0 || dpi <= 0 {
		return nil, errors.New(errors.ErrCodeInvalidParameter, "font size and dpi must be positive, got %v pt at %v dpi", points, dpi)
	}
	fonts, err := load()
	if err != nil {
		return nil, err
	}
	f, ok := fonts[w]
	if !ok {
		f = fonts[Regular]
	}
	return truetype.NewFace(f, &truetype.Options{
		Size:    points,
		DPI:     dpi,
		Hinting: font.HintingFull,
	}), nil
}
