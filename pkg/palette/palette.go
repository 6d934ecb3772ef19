// Package palette samples ordered color sets according to named styles.
//
// Every style draws from the caller's random stream, so a seeded stream always
// yields the same palette. Draw order per style:
//
//   - pastel, neon, random: per entry, one draw per channel in R, G, B order
//   - monochrome: one base draw, then one jitter draw per entry
//   - earth, ocean, sunset, cyberpunk: one index draw per entry
//   - rainbow: one shuffle of the hue list, then saturation and lightness per hue
package palette

import (
	"slices"
	"strings"

	"github.com/matzehuels/genposter/pkg/color"
	"github.com/matzehuels/genposter/pkg/random"
)

// Style names a palette sampling rule.
type Style string

// Supported styles.
const (
	StylePastel     Style = "pastel"
	StyleNeon       Style = "neon"
	StyleMonochrome Style = "monochrome"
	StyleEarth      Style = "earth"
	StyleOcean      Style = "ocean"
	StyleSunset     Style = "sunset"
	StyleCyberpunk  Style = "cyberpunk"
	StyleRandom     Style = "random"
	StyleRainbow    Style = "rainbow"
)

// DefaultStyle is used when no style is configured.
const DefaultStyle = StylePastel

// Fallback is the style unknown names degrade to.
const Fallback = StyleRandom

var styles = []Style{
	StylePastel,
	StyleNeon,
	StyleMonochrome,
	StyleEarth,
	StyleOcean,
	StyleSunset,
	StyleCyberpunk,
	StyleRandom,
	StyleRainbow,
}

// Curated tone lists, drawn from with replacement.
var curated = map[Style][]color.Color{
	StyleEarth: {
		{R: 0.42, G: 0.26, B: 0.15},
		{R: 0.55, G: 0.47, B: 0.37},
		{R: 0.62, G: 0.74, B: 0.55},
		{R: 0.84, G: 0.78, B: 0.58},
		{R: 0.40, G: 0.55, B: 0.30},
	},
	StyleOcean: {
		{R: 0.0, G: 0.3, B: 0.5},
		{R: 0.1, G: 0.6, B: 0.8},
		{R: 0.2, G: 0.8, B: 0.9},
		{R: 0.0, G: 0.5, B: 0.4},
		{R: 0.4, G: 0.9, B: 1.0},
	},
	StyleSunset: {
		{R: 1.0, G: 0.5, B: 0.0},
		{R: 1.0, G: 0.2, B: 0.3},
		{R: 0.8, G: 0.3, B: 0.6},
		{R: 0.6, G: 0.2, B: 0.8},
		{R: 0.9, G: 0.7, B: 0.3},
	},
	StyleCyberpunk: {
		{R: 1.0, G: 0.0, B: 0.8},
		{R: 0.0, G: 1.0, B: 1.0},
		{R: 0.2, G: 0.2, B: 1.0},
		{R: 1.0, G: 0.8, B: 0.1},
		{R: 0.1, G: 0.0, B: 0.1},
	},
}

// Rainbow saturation and lightness ranges.
const (
	rainbowSatMin   = 0.3
	rainbowSatMax   = 0.9
	rainbowLightMin = 0.3
	rainbowLightMax = 0.7
)

// Styles returns every supported style in display order.
func Styles() []Style {
	return slices.Clone(styles)
}

// ParseStyle resolves a style name case-insensitively. Unknown names degrade
// to Fallback and report ok=false so the caller can surface the substitution.
func ParseStyle(name string) (Style, bool) {
	s := Style(strings.ToLower(strings.TrimSpace(name)))
	if s == "" {
		return DefaultStyle, true
	}
	if slices.Contains(styles, s) {
		return s, true
	}
	return Fallback, false
}

// Valid reports whether s is a known style.
func (s Style) Valid() bool {
	return slices.Contains(styles, s)
}

// Title returns the display name, e.g. "Pastel".
func (s Style) Title() string {
	if s == "" {
		return ""
	}
	return strings.ToUpper(string(s[:1])) + string(s[1:])
}

// Generate returns k colors sampled according to style. k <= 0 yields an
// empty palette. Unknown styles sample like StyleRandom.
func Generate(s *random.Stream, style Style, k int) []color.Color {
	if k <= 0 {
		return []color.Color{}
	}
	switch style {
	case StylePastel:
		return sample(k, func() color.Color {
			return color.RGB(0.6+0.4*s.Float64(), 0.6+0.4*s.Float64(), 0.6+0.4*s.Float64())
		})
	case StyleNeon:
		return sample(k, func() color.Color {
			return color.RGB(s.Uniform(0.5, 1), s.Uniform(0, 1), s.Uniform(0.5, 1))
		})
	case StyleMonochrome:
		base := s.Float64()
		return sample(k, func() color.Color {
			return color.Gray(base + 0.1*s.Float64())
		})
	case StyleEarth, StyleOcean, StyleSunset, StyleCyberpunk:
		tones := curated[style]
		return sample(k, func() color.Color {
			return random.Choice(s, tones)
		})
	case StyleRainbow:
		return rainbow(s, k)
	default:
		return sample(k, func() color.Color {
			return color.RGB(s.Float64(), s.Float64(), s.Float64())
		})
	}
}

// rainbow spaces k hues evenly around the wheel, shuffles them and converts
// each from HSL with a random saturation and lightness.
func rainbow(s *random.Stream, k int) []color.Color {
	hues := make([]float64, k)
	for i := range hues {
		hues[i] = float64(i) / float64(k)
	}
	random.Shuffle(s, hues)

	out := make([]color.Color, k)
	for i, h := range hues {
		sat := s.Uniform(rainbowSatMin, rainbowSatMax)
		light := s.Uniform(rainbowLightMin, rainbowLightMax)
		out[i] = color.FromHSL(h, sat, light)
	}
	return out
}

func sample(k int, next func() color.Color) []color.Color {
	out := make([]color.Color, k)
	for i := range out {
		out[i] = next()
	}
	return out
}
