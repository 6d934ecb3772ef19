// Package shape generates closed outlines for the poster layers.
//
// Three kinds exist:
//
//   - circle: Resolution points at exact radius
//   - polygon: Sides vertices (3–8 at random when unset), first vertex repeated
//   - blob: a circle whose radius is perturbed by smooth low-frequency noise
//
// # Blob perturbation
//
// Blobs use interpolated noise: Smoothness samples are drawn from
// Normal(0, Wobble), placed evenly around the circle and linearly interpolated
// across all Resolution angles, wrapping from the last sample back to the
// first so the outline closes without a seam. Smoothness therefore sets the
// number of undulations: few samples give gentle lobes, many give a busier
// edge. The radius never drops below MinRadiusFraction of the base radius.
//
// Draw order: circle draws nothing; polygon draws one side count when Sides
// is 0; blob draws Smoothness normal samples.
package shape

import (
	"math"
	"slices"
	"strings"

	"github.com/matzehuels/genposter/pkg/errors"
	"github.com/matzehuels/genposter/pkg/geom"
	"github.com/matzehuels/genposter/pkg/random"
)

// Kind names an outline family.
type Kind string

// Supported kinds.
const (
	KindBlob    Kind = "blob"
	KindCircle  Kind = "circle"
	KindPolygon Kind = "polygon"
)

var kinds = []Kind{KindBlob, KindCircle, KindPolygon}

const (
	// DefaultResolution is the number of outline points for blobs and circles.
	DefaultResolution = 300

	// DefaultSmoothness is the number of blob noise samples.
	DefaultSmoothness = 5

	// MinSmoothness keeps blob interpolation well defined.
	MinSmoothness = 2

	// MinRadiusFraction floors perturbed blob radii as a fraction of Radius.
	MinRadiusFraction = 0.05

	// Random polygon side counts are drawn from [MinSides, MaxRandomSides].
	MinSides       = 3
	MaxRandomSides = 8
)

// Params describes one outline.
type Params struct {
	Center     geom.Point
	Radius     float64
	Resolution int
	Kind       Kind
	Wobble     float64
	Smoothness int
	Sides      int // 0 picks a random count for polygons
}

// Kinds returns the supported kinds.
func Kinds() []Kind {
	return slices.Clone(kinds)
}

// ParseKind resolves a kind name case-insensitively. Unknown names degrade
// to KindBlob and report ok=false.
func ParseKind(name string) (Kind, bool) {
	k := Kind(strings.ToLower(strings.TrimSpace(name)))
	if k == "" {
		return KindBlob, true
	}
	if slices.Contains(kinds, k) {
		return k, true
	}
	return KindBlob, false
}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	return slices.Contains(kinds, k)
}

// Title returns the display name, e.g. "Blob".
func (k Kind) Title() string {
	if k == "" {
		return ""
	}
	return strings.ToUpper(string(k[:1])) + string(k[1:])
}

// Validate checks the parameters before any draw is made.
func (p Params) Validate() error {
	if err := errors.ValidatePositive("radius", p.Radius); err != nil {
		return err
	}
	if p.Resolution < 3 {
		return errors.New(errors.ErrCodeInvalidParameter, "resolution must be at least 3, got %d", p.Resolution)
	}
	if err := errors.ValidateNonNegative("wobble", p.Wobble); err != nil {
		return err
	}
	if p.Sides != 0 && p.Sides < MinSides {
		return errors.New(errors.ErrCodeInvalidParameter, "polygon sides must be at least %d, got %d", MinSides, p.Sides)
	}
	if p.Smoothness < 0 {
		return errors.New(errors.ErrCodeInvalidParameter, "smoothness must not be negative, got %d", p.Smoothness)
	}
	return nil
}

// Generate builds the outline described by p. Unknown kinds are drawn as blobs.
func Generate(s *random.Stream, p Params) (geom.Outline, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	switch p.Kind {
	case KindCircle:
		return circle(p.Center, p.Radius, p.Resolution), nil
	case KindPolygon:
		sides := p.Sides
		if sides == 0 {
			sides = s.IntRange(MinSides, MaxRandomSides)
		}
		return polygon(p.Center, p.Radius, sides), nil
	default:
		return blob(s, p), nil
	}
}

func circle(c geom.Point, r float64, n int) geom.Outline {
	out := make(geom.Outline, n)
	for j := range out {
		out[j] = geom.Polar(c, r, 2*math.Pi*float64(j)/float64(n))
	}
	return out
}

func polygon(c geom.Point, r float64, sides int) geom.Outline {
	out := make(geom.Outline, sides+1)
	for j := 0; j < sides; j++ {
		out[j] = geom.Polar(c, r, 2*math.Pi*float64(j)/float64(sides))
	}
	out[sides] = out[0]
	return out
}

func blob(s *random.Stream, p Params) geom.Outline {
	k := p.Smoothness
	if k == 0 {
		k = DefaultSmoothness
	}
	k = max(k, MinSmoothness)

	noise := make([]float64, k)
	for i := range noise {
		noise[i] = s.Normal(0, p.Wobble)
	}

	floor := MinRadiusFraction * p.Radius
	out := make(geom.Outline, p.Resolution)
	for j := range out {
		u := float64(j) / float64(p.Resolution)
		r := max(p.Radius*(1+cyclicLerp(noise, u)), floor)
		out[j] = geom.Polar(p.Center, r, 2*math.Pi*u)
	}
	return out
}

// cyclicLerp samples the closed piecewise-linear curve through xs at u in
// [0, 1); sample i sits at u = i/len(xs) and the last wraps to the first.
func cyclicLerp(xs []float64, u float64) float64 {
	pos := u * float64(len(xs))
	i := int(math.Floor(pos)) % len(xs)
	frac := pos - math.Floor(pos)
	next := (i + 1) % len(xs)
	return xs[i]*(1-frac) + xs[next]*frac
}
