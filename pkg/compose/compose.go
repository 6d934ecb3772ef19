// Package compose owns the poster canvas and rasterizes layers onto it.
//
// Layers are drawn in the order they are given: the first layer ends up at
// the back and the last on top. Each layer paints its shadow passes first
// (the same outline shifted along the light direction) and then its lit fill.
// The title block is drawn over every layer, and an optional blur softens the
// whole composition at the end.
//
// Drawing is delegated to github.com/fogleman/gg; the blur comes from
// github.com/disintegration/imaging.
package compose

import (
	"image"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"

	"github.com/matzehuels/genposter/pkg/color"
	"github.com/matzehuels/genposter/pkg/errors"
	"github.com/matzehuels/genposter/pkg/geom"
	"github.com/matzehuels/genposter/pkg/shading"
)

// Layer is one shape instance ready to be drawn. Outline is already rotated
// and positioned in canvas pixels.
type Layer struct {
	Outline  geom.Outline
	Fill     color.Color
	Alpha    float64
	Center   geom.Point
	Rotation float64
	Index    int
	Total    int
	Shadows  []shading.Pass
}

// Canvas is a fixed-size pixel buffer with a solid background.
type Canvas struct {
	dc     *gg.Context
	width  int
	height int
	bg     color.Color
}

// NewCanvas creates a canvas filled with bg.
func NewCanvas(width, height int, bg color.Color) (*Canvas, error) {
	if width <= 0 || height <= 0 {
		return nil, errors.New(errors.ErrCodeInvalidParameter, "canvas size must be positive, got %dx%d", width, height)
	}
	dc := gg.NewContext(width, height)
	dc.SetColor(bg.NRGBA(1))
	dc.Clear()
	return &Canvas{dc: dc, width: width, height: height, bg: bg}, nil
}

// Width returns the canvas width in pixels.
func (c *Canvas) Width() int { return c.width }

// Height returns the canvas height in pixels.
func (c *Canvas) Height() int { return c.height }

// Background returns the fill color the canvas was created with.
func (c *Canvas) Background() color.Color { return c.bg }

// DrawLayer paints the layer's shadow passes followed by its lit fill.
func (c *Canvas) DrawLayer(l Layer) {
	if len(l.Outline) < 3 {
		return
	}
	for _, p := range l.Shadows {
		c.fill(geom.Translate(l.Outline, p.Offset.X, p.Offset.Y), p.Color, p.Alpha)
	}
	c.fill(l.Outline, l.Fill, l.Alpha)
}

func (c *Canvas) fill(o geom.Outline, col color.Color, alpha float64) {
	if alpha <= 0 {
		return
	}
	c.dc.NewSubPath()
	c.dc.MoveTo(o[0].X, o[0].Y)
	for _, p := range o[1:] {
		c.dc.LineTo(p.X, p.Y)
	}
	c.dc.ClosePath()
	c.dc.SetColor(col.NRGBA(alpha))
	c.dc.Fill()
}

// Blur applies a gaussian blur over the whole canvas with sigma equal to
// strength percent of the short side. A zero strength leaves the canvas as is.
func (c *Canvas) Blur(strength float64) {
	if strength <= 0 {
		return
	}
	sigma := strength * float64(min(c.width, c.height)) / 100
	blurred := imaging.Blur(c.dc.Image(), sigma)
	c.dc = gg.NewContextForImage(blurred)
}

// Image returns a copy of the canvas pixels.
func (c *Canvas) Image() *image.NRGBA {
	return imaging.Clone(c.dc.Image())
}
