// Package shading computes the per-layer color and alpha modifiers that fake
// lighting on flat shapes: a brightness gradient across the stack, rim light
// and specular terms concentrated on early layers, metallic roughness noise,
// and soft shadow passes cast away from the light.
//
// For layer i of n, progress t = i / max(1, n-1), so the first layer has t=0
// and the last t=1.
//
// Draw order per layer: roughness draws U(0,0.3) then U(0,0.1); the random
// alpha mode then draws one more value. The ramp alpha mode draws nothing.
package shading

import (
	"math"
	"slices"
	"strings"

	"github.com/matzehuels/genposter/pkg/color"
	"github.com/matzehuels/genposter/pkg/errors"
	"github.com/matzehuels/genposter/pkg/geom"
	"github.com/matzehuels/genposter/pkg/random"
)

// AlphaMode selects how a layer's opacity is chosen.
type AlphaMode string

const (
	// AlphaRandom draws alpha uniformly from [AlphaMin, AlphaMax].
	AlphaRandom AlphaMode = "random"

	// AlphaRamp fades layers with progress: 0.42·(1−t+0.3), clamped to
	// [AlphaMin, AlphaMax].
	AlphaRamp AlphaMode = "ramp"
)

const (
	// BrightnessBase is the brightness factor of the first layer.
	BrightnessBase = 0.75

	// DefaultShadowAlpha is the opacity of the innermost shadow pass.
	DefaultShadowAlpha = 0.35

	// MaxShadowPasses bounds the number of shadow copies.
	MaxShadowPasses = 3

	rampScale = 0.42
	rampBias  = 0.3

	roughnessMajor = 0.3
	roughnessMinor = 0.1
)

// ParseAlphaMode resolves a mode name; unknown names fail.
func ParseAlphaMode(name string) (AlphaMode, error) {
	m := AlphaMode(strings.ToLower(strings.TrimSpace(name)))
	switch m {
	case "":
		return AlphaRandom, nil
	case AlphaRandom, AlphaRamp:
		return m, nil
	}
	return "", errors.New(errors.ErrCodeInvalidParameter, "unknown alpha mode %q (must be one of: random, ramp)", name)
}

// AlphaModes lists the supported modes.
func AlphaModes() []AlphaMode {
	return []AlphaMode{AlphaRandom, AlphaRamp}
}

// Model holds the lighting configuration shared by every layer of a poster.
type Model struct {
	BrightnessStrength float64
	RimIntensity       float64
	SpecularIntensity  float64
	MetallicStrength   float64

	AlphaMin  float64
	AlphaMax  float64
	AlphaMode AlphaMode

	// ShadowOffset is the distance between consecutive shadow passes, in pixels.
	ShadowOffset float64
	ShadowPasses int
	ShadowAlpha  float64
	ShadowColor  color.Color

	// LightAngle is in degrees; 0 points along +x, 90 along +y (down).
	LightAngle float64
}

// Shade is the computed appearance of one lit layer.
type Shade struct {
	Color     color.Color
	Alpha     float64
	Rim       float64
	Specular  float64
	Roughness float64
}

// Pass is one shadow copy: the lit outline shifted by Offset.
type Pass struct {
	Offset geom.Point
	Alpha  float64
	Color  color.Color
}

// Progress returns i / max(1, n-1).
func Progress(i, n int) float64 {
	return float64(i) / float64(max(1, n-1))
}

// Brightness scales base by 0.75 + strength·t.
func (m Model) Brightness(base color.Color, i, n int) color.Color {
	return base.Scale(BrightnessBase + m.BrightnessStrength*Progress(i, n))
}

// Rim returns rim·(1−t).
func (m Model) Rim(i, n int) float64 {
	return m.RimIntensity * (1 - Progress(i, n))
}

// Specular returns specular·max(0, 1−t)².
func (m Model) Specular(i, n int) float64 {
	f := max(0, 1-Progress(i, n))
	return m.SpecularIntensity * f * f
}

// Roughness returns metallic·(U(0,0.3)+U(0,0.1)). Both draws are made even
// when MetallicStrength is zero so the stream position does not depend on it.
func (m Model) Roughness(s *random.Stream) float64 {
	major := s.Uniform(0, roughnessMajor)
	minor := s.Uniform(0, roughnessMinor)
	return m.MetallicStrength * (major + minor)
}

// Alpha returns the layer opacity according to AlphaMode.
func (m Model) Alpha(s *random.Stream, i, n int) float64 {
	if m.AlphaMode == AlphaRamp {
		t := Progress(i, n)
		return min(m.AlphaMax, max(m.AlphaMin, rampScale*(1-t+rampBias)))
	}
	return s.Uniform(m.AlphaMin, m.AlphaMax)
}

// Shade computes the lit color and alpha of layer i of n.
func (m Model) Shade(s *random.Stream, base color.Color, i, n int) Shade {
	bright := m.Brightness(base, i, n)
	rim := m.Rim(i, n)
	spec := m.Specular(i, n)
	rough := m.Roughness(s)
	alpha := m.Alpha(s, i, n)

	// Sum unclamped so negative terms can cancel positive ones, then clamp.
	d := rim + spec - rough
	c := color.Color{R: bright.R + d, G: bright.G + d, B: bright.B + d}.Clamp()

	return Shade{Color: c, Alpha: alpha, Rim: rim, Specular: spec, Roughness: rough}
}

// LightDirection returns the unit vector (cos a, sin a).
func (m Model) LightDirection() geom.Point {
	sin, cos := math.Sincos(m.LightAngle * math.Pi / 180)
	return geom.Point{X: cos, Y: sin}
}

// Shadows returns the shadow passes ordered back to front: the farthest and
// most transparent copy first. Pass k (1-based) sits k·ShadowOffset along the
// light direction with alpha ShadowAlpha/k. A zero offset casts no shadow.
func (m Model) Shadows() []Pass {
	if m.ShadowOffset <= 0 || m.ShadowPasses <= 0 {
		return nil
	}
	passes := min(m.ShadowPasses, MaxShadowPasses)
	alpha := m.ShadowAlpha
	if alpha == 0 {
		alpha = DefaultShadowAlpha
	}
	dir := m.LightDirection()

	out := make([]Pass, 0, passes)
	for k := passes; k >= 1; k-- {
		out = append(out, Pass{
			Offset: dir.Scale(float64(k) * m.ShadowOffset),
			Alpha:  alpha / float64(k),
			Color:  m.ShadowColor,
		})
	}
	return out
}

// Validate checks the ranges the model relies on.
func (m Model) Validate() error {
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"brightness_strength", m.BrightnessStrength},
		{"rim_intensity", m.RimIntensity},
		{"specular_intensity", m.SpecularIntensity},
		{"metallic_strength", m.MetallicStrength},
		{"light_angle", m.LightAngle},
	} {
		if err := errors.ValidateFinite(f.name, f.v); err != nil {
			return err
		}
	}
	if err := errors.ValidateUnit("alpha_min", m.AlphaMin); err != nil {
		return err
	}
	if err := errors.ValidateUnit("alpha_max", m.AlphaMax); err != nil {
		return err
	}
	if m.AlphaMin > m.AlphaMax {
		return errors.New(errors.ErrCodeInvalidParameter, "alpha_min (%v) must not exceed alpha_max (%v)", m.AlphaMin, m.AlphaMax)
	}
	if !slices.Contains(AlphaModes(), m.AlphaMode) {
		return errors.New(errors.ErrCodeInvalidParameter, "unknown alpha mode %q", m.AlphaMode)
	}
	if err := errors.ValidateNonNegative("shadow_offset", m.ShadowOffset); err != nil {
		return err
	}
	if err := errors.ValidateIntRange("shadow_passes", m.ShadowPasses, 0, MaxShadowPasses); err != nil {
		return err
	}
	return errors.ValidateUnit("shadow_alpha", m.ShadowAlpha)
}
