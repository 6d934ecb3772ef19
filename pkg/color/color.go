// Package color is the single color representation used by the poster engine.
//
// Internally every color is a numeric RGB triple in [0, 1]. Hex strings only
// appear at the edge of the system, through Parse and Color.Hex. Every
// arithmetic helper clamps its result, so no channel ever leaves [0, 1].
package color

import (
	stdcolor "image/color"
	"math"
	"strings"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/matzehuels/genposter/pkg/errors"
)

// Luminance weights (ITU-R BT.601), used consistently for contrast decisions.
const (
	lumaR = 0.299
	lumaG = 0.587
	lumaB = 0.114
)

// ContrastThreshold is the minimum luminance difference between title text
// and background.
const ContrastThreshold = 0.5

// Color is an RGB triple with channels in [0, 1].
type Color struct {
	R, G, B float64
}

// Common colors.
var (
	Black = Color{0, 0, 0}
	White = Color{1, 1, 1}
)

var named = map[string]Color{
	"black": Black,
	"white": White,
	"red":   {1, 0, 0},
	"green": {0, 0.5, 0},
	"blue":  {0, 0, 1},
	"gray":  {0.5, 0.5, 0.5},
	"grey":  {0.5, 0.5, 0.5},
}

// RGB builds a clamped color.
func RGB(r, g, b float64) Color {
	return Color{R: r, G: g, B: b}.Clamp()
}

// Gray builds a clamped gray with v on every channel.
func Gray(v float64) Color {
	return RGB(v, v, v)
}

// Clamp forces every channel into [0, 1]. NaN becomes 0.
func (c Color) Clamp() Color {
	return Color{R: clamp01(c.R), G: clamp01(c.G), B: clamp01(c.B)}
}

// Scale multiplies every channel by f.
func (c Color) Scale(f float64) Color {
	return RGB(c.R*f, c.G*f, c.B*f)
}

// Offset adds d to every channel (negative d darkens).
func (c Color) Offset(d float64) Color {
	return RGB(c.R+d, c.G+d, c.B+d)
}

// Luminance returns 0.299R + 0.587G + 0.114B.
func (c Color) Luminance() float64 {
	return lumaR*c.R + lumaG*c.G + lumaB*c.B
}

// Hex formats the color as #rrggbb.
func (c Color) Hex() string {
	c = c.Clamp()
	return colorful.Color{R: c.R, G: c.G, B: c.B}.Hex()
}

// String implements fmt.Stringer.
func (c Color) String() string { return c.Hex() }

// NRGBA converts to a non-premultiplied 8-bit color with the given alpha.
func (c Color) NRGBA(alpha float64) stdcolor.NRGBA {
	c = c.Clamp()
	return stdcolor.NRGBA{
		R: to8(c.R),
		G: to8(c.G),
		B: to8(c.B),
		A: to8(clamp01(alpha)),
	}
}

// FromStd converts a standard library color, dropping alpha.
func FromStd(c stdcolor.Color) Color {
	n := stdcolor.NRGBAModel.Convert(c).(stdcolor.NRGBA)
	return Color{R: float64(n.R) / 255, G: float64(n.G) / 255, B: float64(n.B) / 255}
}

// FromHSL converts hue (in turns, [0, 1)), saturation and lightness to RGB
// using the standard HSL model.
func FromHSL(h, s, l float64) Color {
	h = h - math.Floor(h)
	c := colorful.Hsl(h*360, clamp01(s), clamp01(l))
	return RGB(c.R, c.G, c.B)
}

// Parse reads "#rrggbb", "#rgb", the same without '#', or a few basic names.
// Malformed input fails with INVALID_COLOR; it never falls back to black.
func Parse(s string) (Color, error) {
	raw := strings.ToLower(strings.TrimSpace(s))
	if c, ok := named[raw]; ok {
		return c, nil
	}
	if raw == "" {
		return Color{}, errors.New(errors.ErrCodeInvalidColor, "empty color")
	}
	if !strings.HasPrefix(raw, "#") {
		raw = "#" + raw
	}
	if len(raw) != 4 && len(raw) != 7 {
		return Color{}, errors.New(errors.ErrCodeInvalidColor, "malformed color %q", s)
	}
	for _, r := range raw[1:] {
		if !isHexDigit(r) {
			return Color{}, errors.New(errors.ErrCodeInvalidColor, "malformed color %q", s)
		}
	}
	c, err := colorful.Hex(raw)
	if err != nil {
		return Color{}, errors.Wrap(errors.ErrCodeInvalidColor, err, "malformed color %q", s)
	}
	return RGB(c.R, c.G, c.B), nil
}

// MustParse is like Parse but panics on error. Intended for constants.
func MustParse(s string) Color {
	c, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return c
}

// Contrast returns the absolute luminance difference of a and b.
func Contrast(a, b Color) float64 {
	return math.Abs(a.Luminance() - b.Luminance())
}

// AutoText picks white text on dark backgrounds and black text otherwise.
// The result always differs from bg in luminance by at least ContrastThreshold.
func AutoText(bg Color) Color {
	if bg.Luminance() < 0.5 {
		return White
	}
	return Black
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func to8(v float64) uint8 {
	return uint8(math.Round(v * 255))
}

func isHexDigit(r rune) bool {
	return ('0' <= r && r <= '9') || ('a' <= r && r <= 'f')
}
