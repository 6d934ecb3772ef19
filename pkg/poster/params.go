package poster

import (
	"strings"

	"github.com/matzehuels/genposter/pkg/color"
	"github.com/matzehuels/genposter/pkg/errors"
	"github.com/matzehuels/genposter/pkg/palette"
	"github.com/matzehuels/genposter/pkg/shading"
	"github.com/matzehuels/genposter/pkg/shape"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI, web panel, studio and presets
// =============================================================================

const (
	DefaultLayers             = 30
	DefaultWobble             = 0.4
	DefaultBackground         = "#ffffff"
	DefaultTitleColor         = TitleColorAuto
	DefaultShadowOffset       = 0.02
	DefaultBrightnessStrength = 0.3
	DefaultAlphaMin           = 0.6
	DefaultAlphaMax           = 0.9
	DefaultLightAngle         = 45.0
	DefaultRotationRange      = 0.3
	DefaultRimIntensity       = 0.15
	DefaultSpecularIntensity  = 0.1
	DefaultMetallicStrength   = 0.1
	DefaultWidth              = 1200
	DefaultHeight             = 1700
	DefaultTitle              = "Generative Poster"
	DefaultSubtitle           = "Layered shapes, light and shadow"

	// DefaultPaletteSize is how many colors a render samples before layers
	// pick from them.
	DefaultPaletteSize = 40

	DefaultDPI          = 150.0
	DefaultRadiusMin    = 0.02
	DefaultRadiusMax    = 0.22
	DefaultMargin       = 0.05
	DefaultShadowPasses = shading.MaxShadowPasses
)

// TitleColorAuto selects black or white text from the background luminance.
const TitleColorAuto = "auto"

// Upper bounds that keep a single render bounded in memory and time.
const (
	MaxDimension   = 8000
	MaxLayers      = 1000
	MaxPaletteSize = 1000
	MaxResolution  = 10000
	MaxSmoothness  = 256
	MaxSides       = 64
	MaxDPI         = 1200.0

	// Blur sigma and blob noise scale with these; past them a single
	// render exhausts memory or rasterizes outlines far off the canvas.
	MaxWobble       = 5.0
	MaxBlurStrength = 10.0
	MaxShadowOffset = 1.0
)

// Params is the flat bundle that, together with Seed, fully determines a
// poster. Start from DefaultParams and override fields; the zero value is
// not a useful configuration.
//
// Sizes and offsets marked "fraction" are relative to the canvas short side.
type Params struct {
	// Seed makes the render reproducible. Nil draws a fresh seed per call.
	Seed *int64 `json:"seed,omitempty" toml:"seed,omitempty"`

	PaletteStyle string  `json:"palette_style" toml:"palette_style"`
	ShapeKind    string  `json:"shape_kind" toml:"shape_kind"`
	Layers       int     `json:"layers" toml:"layers"`
	Wobble       float64 `json:"wobble" toml:"wobble"`

	Background string `json:"background" toml:"background"`
	TitleColor string `json:"title_color" toml:"title_color"` // "auto" or a color

	ShadowOffset       float64 `json:"shadow_offset" toml:"shadow_offset"` // fraction
	BrightnessStrength float64 `json:"brightness_strength" toml:"brightness_strength"`
	AlphaMin           float64 `json:"alpha_min" toml:"alpha_min"`
	AlphaMax           float64 `json:"alpha_max" toml:"alpha_max"`
	LightAngle         float64 `json:"light_angle" toml:"light_angle"`       // degrees
	RotationRange      float64 `json:"rotation_range" toml:"rotation_range"` // radians
	RimIntensity       float64 `json:"rim_intensity" toml:"rim_intensity"`
	SpecularIntensity  float64 `json:"specular_intensity" toml:"specular_intensity"`
	MetallicStrength   float64 `json:"metallic_strength" toml:"metallic_strength"`
	BlurStrength       float64 `json:"blur_strength" toml:"blur_strength"` // sigma as percent of short side

	Width    int    `json:"width" toml:"width"`
	Height   int    `json:"height" toml:"height"`
	Title    string `json:"title" toml:"title"`
	Subtitle string `json:"subtitle" toml:"subtitle"`

	PaletteSize  int     `json:"palette_size" toml:"palette_size"`
	Resolution   int     `json:"resolution" toml:"resolution"`
	Smoothness   int     `json:"smoothness" toml:"smoothness"`
	Sides        int     `json:"sides" toml:"sides"` // 0 = random per polygon
	AlphaMode    string  `json:"alpha_mode" toml:"alpha_mode"`
	ShadowPasses int     `json:"shadow_passes" toml:"shadow_passes"`
	DPI          float64 `json:"dpi" toml:"dpi"`
	RadiusMin    float64 `json:"radius_min" toml:"radius_min"` // fraction
	RadiusMax    float64 `json:"radius_max" toml:"radius_max"` // fraction
	Margin       float64 `json:"margin" toml:"margin"`         // fraction of each axis kept clear of centers

	InfoLine        bool `json:"info_line" toml:"info_line"`
	EnforceContrast bool `json:"enforce_contrast" toml:"enforce_contrast"`
}

// DefaultParams returns the default configuration with no seed.
func DefaultParams() Params {
	return Params{
		PaletteStyle:       string(palette.DefaultStyle),
		ShapeKind:          string(shape.KindBlob),
		Layers:             DefaultLayers,
		Wobble:             DefaultWobble,
		Background:         DefaultBackground,
		TitleColor:         DefaultTitleColor,
		ShadowOffset:       DefaultShadowOffset,
		BrightnessStrength: DefaultBrightnessStrength,
		AlphaMin:           DefaultAlphaMin,
		AlphaMax:           DefaultAlphaMax,
		LightAngle:         DefaultLightAngle,
		RotationRange:      DefaultRotationRange,
		RimIntensity:       DefaultRimIntensity,
		SpecularIntensity:  DefaultSpecularIntensity,
		MetallicStrength:   DefaultMetallicStrength,
		Width:              DefaultWidth,
		Height:             DefaultHeight,
		Title:              DefaultTitle,
		Subtitle:           DefaultSubtitle,
		PaletteSize:        DefaultPaletteSize,
		Resolution:         shape.DefaultResolution,
		Smoothness:         shape.DefaultSmoothness,
		AlphaMode:          string(shading.AlphaRandom),
		ShadowPasses:       DefaultShadowPasses,
		DPI:                DefaultDPI,
		RadiusMin:          DefaultRadiusMin,
		RadiusMax:          DefaultRadiusMax,
		Margin:             DefaultMargin,
		InfoLine:           true,
	}
}

// WithSeed returns a copy of p with the seed set.
func (p Params) WithSeed(seed int64) Params {
	p.Seed = &seed
	return p
}

// SeedStride is the smallest seed distance at which two posters with p's
// layer count share no stream. Layer i of seed s draws from seed s+i+1, so
// adjacent seeds would repeat each other's layers shifted by one.
func (p Params) SeedStride() int64 { return int64(p.Layers) + 1 }

// Seeded reports whether p carries a seed.
func (p Params) Seeded() bool { return p.Seed != nil }

// Validate checks every field and fails on the first problem, before any
// drawing starts. Unknown palette styles and shape kinds are not errors:
// they degrade to the random palette and blob shape during planning.
func (p Params) Validate() error {
	if err := errors.ValidateIntRange("width", p.Width, 1, MaxDimension); err != nil {
		return err
	}
	if err := errors.ValidateIntRange("height", p.Height, 1, MaxDimension); err != nil {
		return err
	}
	if err := errors.ValidateIntRange("layers", p.Layers, 0, MaxLayers); err != nil {
		return err
	}
	minPalette := 0
	if p.Layers > 0 {
		minPalette = 1
	}
	if err := errors.ValidateIntRange("palette_size", p.PaletteSize, minPalette, MaxPaletteSize); err != nil {
		return err
	}

	for _, f := range []struct {
		name string
		v    float64
	}{
		{"rotation_range", p.RotationRange},
		{"rim_intensity", p.RimIntensity},
		{"specular_intensity", p.SpecularIntensity},
		{"metallic_strength", p.MetallicStrength},
	} {
		if err := errors.ValidateNonNegative(f.name, f.v); err != nil {
			return err
		}
	}
	if err := errors.ValidateRange("wobble", p.Wobble, 0, MaxWobble); err != nil {
		return err
	}
	if err := errors.ValidateRange("shadow_offset", p.ShadowOffset, 0, MaxShadowOffset); err != nil {
		return err
	}
	if err := errors.ValidateRange("blur_strength", p.BlurStrength, 0, MaxBlurStrength); err != nil {
		return err
	}
	if err := errors.ValidateFinite("brightness_strength", p.BrightnessStrength); err != nil {
		return err
	}
	if err := errors.ValidateFinite("light_angle", p.LightAngle); err != nil {
		return err
	}

	if err := errors.ValidateUnit("alpha_min", p.AlphaMin); err != nil {
		return err
	}
	if err := errors.ValidateUnit("alpha_max", p.AlphaMax); err != nil {
		return err
	}
	if p.AlphaMin > p.AlphaMax {
		return errors.Invalid("alpha_min", "alpha_min (%v) must not exceed alpha_max (%v)", p.AlphaMin, p.AlphaMax)
	}
	if _, err := shading.ParseAlphaMode(p.AlphaMode); err != nil {
		return err
	}
	if err := errors.ValidateIntRange("shadow_passes", p.ShadowPasses, 0, shading.MaxShadowPasses); err != nil {
		return err
	}

	if err := errors.ValidateIntRange("resolution", p.Resolution, 3, MaxResolution); err != nil {
		return err
	}
	if err := errors.ValidateIntRange("smoothness", p.Smoothness, shape.MinSmoothness, MaxSmoothness); err != nil {
		return err
	}
	if p.Sides != 0 {
		if err := errors.ValidateIntRange("sides", p.Sides, shape.MinSides, MaxSides); err != nil {
			return err
		}
	}
	if err := errors.ValidatePositive("radius_min", p.RadiusMin); err != nil {
		return err
	}
	if err := errors.ValidateRange("radius_max", p.RadiusMax, p.RadiusMin, 1); err != nil {
		return err
	}
	if err := errors.ValidateRange("margin", p.Margin, 0, 0.49); err != nil {
		return err
	}
	if err := errors.ValidateRange("dpi", p.DPI, 1, MaxDPI); err != nil {
		return err
	}

	if err := errors.ValidateText("title", p.Title); err != nil {
		return err
	}
	if err := errors.ValidateText("subtitle", p.Subtitle); err != nil {
		return err
	}

	if _, err := parseBackground(p.Background); err != nil {
		return err
	}
	if _, err := parseTitleColor(p.TitleColor); err != nil {
		return err
	}
	return nil
}

func parseBackground(s string) (color.Color, error) {
	c, err := color.Parse(s)
	if err != nil {
		return color.Color{}, errors.Wrap(errors.ErrCodeInvalidColor, err, "background").WithField("background")
	}
	return c, nil
}

// parseTitleColor returns a nil color for "auto".
func parseTitleColor(s string) (*color.Color, error) {
	if s == "" || strings.EqualFold(strings.TrimSpace(s), TitleColorAuto) {
		return nil, nil
	}
	c, err := color.Parse(s)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidColor, err, "title_color").WithField("title_color")
	}
	return &c, nil
}

// TextColor picks the title block color for bg. A nil explicit color means
// "auto". With enforce set, an explicit color too close to bg in luminance
// is replaced by the automatic choice.
func TextColor(bg color.Color, explicit *color.Color, enforce bool) color.Color {
	if explicit == nil {
		return color.AutoText(bg)
	}
	if enforce && color.Contrast(*explicit, bg) < color.ContrastThreshold {
		return color.AutoText(bg)
	}
	return *explicit
}
