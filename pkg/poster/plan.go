package poster

import (
	"fmt"

	"github.com/matzehuels/genposter/pkg/color"
	"github.com/matzehuels/genposter/pkg/compose"
	"github.com/matzehuels/genposter/pkg/geom"
	"github.com/matzehuels/genposter/pkg/palette"
	"github.com/matzehuels/genposter/pkg/random"
	"github.com/matzehuels/genposter/pkg/shading"
	"github.com/matzehuels/genposter/pkg/shape"
)

// Composition is a fully planned poster: every random choice has been made,
// nothing has been drawn yet.
type Composition struct {
	Width  int
	Height int
	DPI    float64

	// Seed is the seed the root stream was built from; Seeded is false when
	// it came from process entropy.
	Seed   int64
	Seeded bool

	Style      palette.Style
	Shape      shape.Kind
	Background color.Color
	Palette    []color.Color
	Layers     []compose.Layer
	Title      compose.TitleBlock
	Blur       float64

	// Warnings lists silent substitutions made while planning.
	Warnings []string
}

// Plan validates p and makes every random choice of the render.
func Plan(p Params) (*Composition, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	style, kind, warnings := p.Resolve()

	// Validate has already parsed these.
	bg, _ := parseBackground(p.Background)
	explicit, _ := parseTitleColor(p.TitleColor)
	mode, _ := shading.ParseAlphaMode(p.AlphaMode)

	root := random.New(p.Seed)
	colors := palette.Generate(root, style, p.PaletteSize)

	short := float64(min(p.Width, p.Height))
	model := shading.Model{
		BrightnessStrength: p.BrightnessStrength,
		RimIntensity:       p.RimIntensity,
		SpecularIntensity:  p.SpecularIntensity,
		MetallicStrength:   p.MetallicStrength,
		AlphaMin:           p.AlphaMin,
		AlphaMax:           p.AlphaMax,
		AlphaMode:          mode,
		ShadowOffset:       p.ShadowOffset * short,
		ShadowPasses:       p.ShadowPasses,
		ShadowAlpha:        shading.DefaultShadowAlpha,
		ShadowColor:        color.Black,
		LightAngle:         p.LightAngle,
	}
	shadows := model.Shadows()

	layers := make([]compose.Layer, 0, p.Layers)
	for i := range p.Layers {
		s := root.Derive(int64(i) + 1)

		center := geom.Point{
			X: s.Uniform(p.Margin, 1-p.Margin) * float64(p.Width),
			Y: s.Uniform(p.Margin, 1-p.Margin) * float64(p.Height),
		}
		radius := s.Uniform(p.RadiusMin, p.RadiusMax) * short
		angle := s.Uniform(-p.RotationRange, p.RotationRange)

		outline, err := shape.Generate(s, shape.Params{
			Center:     center,
			Radius:     radius,
			Resolution: p.Resolution,
			Kind:       kind,
			Wobble:     p.Wobble,
			Smoothness: p.Smoothness,
			Sides:      p.Sides,
		})
		if err != nil {
			return nil, err
		}

		base := random.Choice(s, colors)
		lit := model.Shade(s, base, i, p.Layers)

		layers = append(layers, compose.Layer{
			Outline:  geom.Rotate(outline, center, angle),
			Fill:     lit.Color,
			Alpha:    lit.Alpha,
			Center:   center,
			Rotation: angle,
			Index:    i,
			Total:    p.Layers,
			Shadows:  shadows,
		})
	}

	title := compose.TitleBlock{
		Title:    p.Title,
		Subtitle: p.Subtitle,
		Color:    TextColor(bg, explicit, p.EnforceContrast),
		DPI:      p.DPI,
	}
	if p.InfoLine {
		title.Info = InfoLine(style, kind)
	}

	return &Composition{
		Width:      p.Width,
		Height:     p.Height,
		DPI:        p.DPI,
		Seed:       root.Seed(),
		Seeded:     root.Seeded(),
		Style:      style,
		Shape:      kind,
		Background: bg,
		Palette:    colors,
		Layers:     layers,
		Title:      title,
		Blur:       p.BlurStrength,
		Warnings:   warnings,
	}, nil
}

// Resolve maps the palette style and shape names to known values, degrading
// unknown names and describing each substitution.
func (p Params) Resolve() (palette.Style, shape.Kind, []string) {
	var warnings []string
	style, ok := palette.ParseStyle(p.PaletteStyle)
	if !ok {
		warnings = append(warnings, fmt.Sprintf("unknown palette style %q, using %q", p.PaletteStyle, style))
	}
	kind, ok := shape.ParseKind(p.ShapeKind)
	if !ok {
		warnings = append(warnings, fmt.Sprintf("unknown shape %q, using %q", p.ShapeKind, kind))
	}
	return style, kind, warnings
}

// InfoLine formats the small parameter line under the subtitle,
// e.g. "Style: Pastel / Shape: Blob".
func InfoLine(style palette.Style, kind shape.Kind) string {
	return fmt.Sprintf("Style: %s / Shape: %s", style.Title(), kind.Title())
}
