package poster

import (
	"math"
	"strconv"
	"strings"

	"github.com/matzehuels/genposter/pkg/errors"
	"github.com/matzehuels/genposter/pkg/palette"
	"github.com/matzehuels/genposter/pkg/shading"
	"github.com/matzehuels/genposter/pkg/shape"
)

// FieldKind tells front-ends which control to offer for a field.
type FieldKind int

const (
	FieldInt FieldKind = iota
	FieldFloat
	FieldText
	FieldColor
	FieldChoice
	FieldBool
	FieldSeed
)

// Field describes one user-facing parameter. Name matches the JSON and TOML
// key. Min, Max and Step are hints for sliders; Validate remains the
// authority on accepted values.
type Field struct {
	Name    string
	Label   string
	Kind    FieldKind
	Min     float64
	Max     float64
	Step    float64
	Options []string

	get func(*Params) string
	set func(*Params, string) error
}

// Get returns the field's current value in p, formatted for display.
func (f Field) Get(p *Params) string { return f.get(p) }

// Set parses s into the field of p. Bool fields accept "on" as true so
// HTML checkboxes work unchanged. An empty seed, or "0", clears the seed.
func (f Field) Set(p *Params, s string) error { return f.set(p, s) }

// Numeric reports whether the field can be nudged by Step.
func (f Field) Numeric() bool { return f.Kind == FieldInt || f.Kind == FieldFloat }

// Nudge moves a numeric field by steps increments, clamped to [Min, Max].
// Choice fields cycle through their options. Other kinds are left alone.
func (f Field) Nudge(p *Params, steps int) error {
	switch f.Kind {
	case FieldInt, FieldFloat:
		v, err := strconv.ParseFloat(f.get(p), 64)
		if err != nil {
			return err
		}
		v += float64(steps) * f.Step
		v = math.Round(min(max(v, f.Min), f.Max)*1e6) / 1e6
		if f.Kind == FieldInt {
			return f.set(p, strconv.Itoa(int(v+0.5)))
		}
		return f.set(p, formatFloat(v))
	case FieldChoice:
		if len(f.Options) == 0 {
			return nil
		}
		cur := f.get(p)
		i := 0
		for j, o := range f.Options {
			if o == cur {
				i = j
				break
			}
		}
		n := len(f.Options)
		i = ((i+steps)%n + n) % n
		return f.set(p, f.Options[i])
	case FieldBool:
		if steps%2 != 0 {
			v, _ := parseBool(f.get(p))
			return f.set(p, strconv.FormatBool(!v))
		}
	}
	return nil
}

var fields = buildFields()

// Fields returns the descriptors of every parameter in display order.
func Fields() []Field {
	out := make([]Field, len(fields))
	copy(out, fields)
	return out
}

// LookupField finds a field by name. Dashes are treated as underscores so
// flag-style names resolve too.
func LookupField(name string) (Field, bool) {
	name = strings.ReplaceAll(strings.ToLower(name), "-", "_")
	for _, f := range fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Set assigns one parameter by name.
func (p *Params) Set(name, value string) error {
	f, ok := LookupField(name)
	if !ok {
		return errors.Invalid(name, "unknown parameter %q", name)
	}
	return f.Set(p, value)
}

func buildFields() []Field {
	styles := make([]string, 0, len(palette.Styles()))
	for _, s := range palette.Styles() {
		styles = append(styles, string(s))
	}
	kinds := make([]string, 0, len(shape.Kinds()))
	for _, k := range shape.Kinds() {
		kinds = append(kinds, string(k))
	}
	modes := make([]string, 0, 2)
	for _, m := range shading.AlphaModes() {
		modes = append(modes, string(m))
	}

	return []Field{
		{
			Name: "seed", Label: "Seed", Kind: FieldSeed,
			get: func(p *Params) string {
				if p.Seed == nil {
					return ""
				}
				return strconv.FormatInt(*p.Seed, 10)
			},
			set: func(p *Params, s string) error {
				s = strings.TrimSpace(s)
				if s == "" || s == "0" {
					p.Seed = nil
					return nil
				}
				v, err := strconv.ParseInt(s, 10, 64)
				if err != nil {
					return invalid("seed", s)
				}
				p.Seed = &v
				return nil
			},
		},
		choice("palette_style", "Palette style", styles, func(p *Params) *string { return &p.PaletteStyle }),
		choice("shape_kind", "Shape", kinds, func(p *Params) *string { return &p.ShapeKind }),
		intField("layers", "Layers", 0, 200, 1, func(p *Params) *int { return &p.Layers }),
		floatField("wobble", "Wobble", 0, 2, 0.05, func(p *Params) *float64 { return &p.Wobble }),
		textField("background", "Background", FieldColor, func(p *Params) *string { return &p.Background }),
		textField("title_color", "Title color", FieldColor, func(p *Params) *string { return &p.TitleColor }),
		floatField("shadow_offset", "Shadow offset", 0, 0.1, 0.005, func(p *Params) *float64 { return &p.ShadowOffset }),
		floatField("brightness_strength", "Brightness", -1, 1, 0.05, func(p *Params) *float64 { return &p.BrightnessStrength }),
		floatField("alpha_min", "Alpha min", 0, 1, 0.05, func(p *Params) *float64 { return &p.AlphaMin }),
		floatField("alpha_max", "Alpha max", 0, 1, 0.05, func(p *Params) *float64 { return &p.AlphaMax }),
		choice("alpha_mode", "Alpha mode", modes, func(p *Params) *string { return &p.AlphaMode }),
		floatField("light_angle", "Light angle", 0, 360, 5, func(p *Params) *float64 { return &p.LightAngle }),
		floatField("rotation_range", "Rotation", 0, 3.14, 0.05, func(p *Params) *float64 { return &p.RotationRange }),
		floatField("rim_intensity", "Rim light", 0, 1, 0.05, func(p *Params) *float64 { return &p.RimIntensity }),
		floatField("specular_intensity", "Specular", 0, 1, 0.05, func(p *Params) *float64 { return &p.SpecularIntensity }),
		floatField("metallic_strength", "Metallic", 0, 1, 0.05, func(p *Params) *float64 { return &p.MetallicStrength }),
		floatField("blur_strength", "Blur", 0, 5, 0.1, func(p *Params) *float64 { return &p.BlurStrength }),
		intField("width", "Width", 100, 4000, 50, func(p *Params) *int { return &p.Width }),
		intField("height", "Height", 100, 4000, 50, func(p *Params) *int { return &p.Height }),
		textField("title", "Title", FieldText, func(p *Params) *string { return &p.Title }),
		textField("subtitle", "Subtitle", FieldText, func(p *Params) *string { return &p.Subtitle }),
		intField("palette_size", "Palette size", 1, 200, 1, func(p *Params) *int { return &p.PaletteSize }),
		intField("resolution", "Resolution", 3, 1000, 10, func(p *Params) *int { return &p.Resolution }),
		intField("smoothness", "Smoothness", shape.MinSmoothness, 32, 1, func(p *Params) *int { return &p.Smoothness }),
		intField("sides", "Sides", 0, 12, 1, func(p *Params) *int { return &p.Sides }),
		intField("shadow_passes", "Shadow passes", 0, shading.MaxShadowPasses, 1, func(p *Params) *int { return &p.ShadowPasses }),
		floatField("dpi", "DPI", 36, 600, 6, func(p *Params) *float64 { return &p.DPI }),
		floatField("radius_min", "Radius min", 0.005, 1, 0.005, func(p *Params) *float64 { return &p.RadiusMin }),
		floatField("radius_max", "Radius max", 0.005, 1, 0.01, func(p *Params) *float64 { return &p.RadiusMax }),
		floatField("margin", "Margin", 0, 0.49, 0.01, func(p *Params) *float64 { return &p.Margin }),
		boolField("info_line", "Info line", func(p *Params) *bool { return &p.InfoLine }),
		boolField("enforce_contrast", "Enforce contrast", func(p *Params) *bool { return &p.EnforceContrast }),
	}
}

func intField(name, label string, lo, hi, step float64, ptr func(*Params) *int) Field {
	return Field{
		Name: name, Label: label, Kind: FieldInt, Min: lo, Max: hi, Step: step,
		get: func(p *Params) string { return strconv.Itoa(*ptr(p)) },
		set: func(p *Params, s string) error {
			v, err := strconv.Atoi(strings.TrimSpace(s))
			if err != nil {
				return invalid(name, s)
			}
			*ptr(p) = v
			return nil
		},
	}
}

func floatField(name, label string, lo, hi, step float64, ptr func(*Params) *float64) Field {
	return Field{
		Name: name, Label: label, Kind: FieldFloat, Min: lo, Max: hi, Step: step,
		get: func(p *Params) string { return formatFloat(*ptr(p)) },
		set: func(p *Params, s string) error {
			v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
			if err != nil {
				return invalid(name, s)
			}
			*ptr(p) = v
			return nil
		},
	}
}

func textField(name, label string, kind FieldKind, ptr func(*Params) *string) Field {
	return Field{
		Name: name, Label: label, Kind: kind,
		get: func(p *Params) string { return *ptr(p) },
		set: func(p *Params, s string) error {
			*ptr(p) = s
			return nil
		},
	}
}

func choice(name, label string, options []string, ptr func(*Params) *string) Field {
	f := textField(name, label, FieldChoice, ptr)
	f.Options = options
	return f
}

func boolField(name, label string, ptr func(*Params) *bool) Field {
	return Field{
		Name: name, Label: label, Kind: FieldBool,
		get: func(p *Params) string { return strconv.FormatBool(*ptr(p)) },
		set: func(p *Params, s string) error {
			v, err := parseBool(s)
			if err != nil {
				return invalid(name, s)
			}
			*ptr(p) = v
			return nil
		},
	}
}

func parseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "on", "yes":
		return true, nil
	case "off", "no", "":
		return false, nil
	}
	return strconv.ParseBool(s)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func invalid(name, s string) error {
	return errors.Invalid(name, "%s: cannot parse %q", name, s)
}
