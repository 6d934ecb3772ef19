// Package geom holds planar points, closed outlines and the rigid transforms
// applied to them. All functions are pure: they return new outlines and never
// modify their input.
package geom

import "math"

// Point is a position in canvas pixels, y pointing down.
type Point struct {
	X, Y float64
}

// Add returns p + q.
func (p Point) Add(q Point) Point { return Point{p.X + q.X, p.Y + q.Y} }

// Sub returns p - q.
func (p Point) Sub(q Point) Point { return Point{p.X - q.X, p.Y - q.Y} }

// Scale returns p * f.
func (p Point) Scale(f float64) Point { return Point{p.X * f, p.Y * f} }

// Dist returns the euclidean distance between p and q.
func (p Point) Dist(q Point) float64 { return math.Hypot(p.X-q.X, p.Y-q.Y) }

// Polar returns the point at angle theta (radians) and distance r from c.
func Polar(c Point, r, theta float64) Point {
	return Point{X: c.X + r*math.Cos(theta), Y: c.Y + r*math.Sin(theta)}
}

// Outline is an ordered sequence of points describing a closed curve.
// Drawing always closes the curve; polygons additionally repeat their first
// point as the last one.
type Outline []Point

// Rect is an axis-aligned bounding box.
type Rect struct {
	Min, Max Point
}

// Dx returns the width.
func (r Rect) Dx() float64 { return r.Max.X - r.Min.X }

// Dy returns the height.
func (r Rect) Dy() float64 { return r.Max.Y - r.Min.Y }

// Center returns the midpoint of the box.
func (r Rect) Center() Point {
	return Point{(r.Min.X + r.Max.X) / 2, (r.Min.Y + r.Max.Y) / 2}
}

// Closed reports whether the first and last points coincide.
func (o Outline) Closed() bool {
	return len(o) > 1 && o[0] == o[len(o)-1]
}

// Bounds returns the bounding box. An empty outline yields the zero Rect.
func (o Outline) Bounds() Rect {
	if len(o) == 0 {
		return Rect{}
	}
	r := Rect{Min: o[0], Max: o[0]}
	for _, p := range o[1:] {
		r.Min.X = min(r.Min.X, p.X)
		r.Min.Y = min(r.Min.Y, p.Y)
		r.Max.X = max(r.Max.X, p.X)
		r.Max.Y = max(r.Max.Y, p.Y)
	}
	return r
}

// Contains reports whether p lies inside the outline (even-odd rule).
func (o Outline) Contains(p Point) bool {
	inside := false
	n := len(o)
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		a, b := o[i], o[j]
		if (a.Y > p.Y) != (b.Y > p.Y) {
			x := (b.X-a.X)*(p.Y-a.Y)/(b.Y-a.Y) + a.X
			if p.X < x {
				inside = !inside
			}
		}
	}
	return inside
}

// Rotate turns every point of o about pivot by theta radians using the
// standard rotation matrix.
func Rotate(o Outline, pivot Point, theta float64) Outline {
	sin, cos := math.Sincos(theta)
	out := make(Outline, len(o))
	for i, p := range o {
		dx, dy := p.X-pivot.X, p.Y-pivot.Y
		out[i] = Point{
			X: dx*cos - dy*sin + pivot.X,
			Y: dx*sin + dy*cos + pivot.Y,
		}
	}
	return out
}

// Translate shifts every point of o by (dx, dy).
func Translate(o Outline, dx, dy float64) Outline {
	out := make(Outline, len(o))
	for i, p := range o {
		out[i] = Point{X: p.X + dx, Y: p.Y + dy}
	}
	return out
}
