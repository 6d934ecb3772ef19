package compose

import (
	"image"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"github.com/matzehuels/genposter/pkg/color"
	"github.com/matzehuels/genposter/pkg/fonts"
)

// Title block layout, as fractions of the canvas.
const (
	TitleLeft      = 0.01
	TitleTop       = 0.03
	SubtitleTop    = 0.07
	InfoTop        = 0.105
	TitlePoints    = 38
	SubtitlePoints = 16
	InfoPoints     = 13

	inkPadding = 2
)

// TitleBlock is the text overlaid on the top-left corner of the poster.
type TitleBlock struct {
	Title    string
	Subtitle string
	Info     string
	Color    color.Color
	DPI      float64
}

type textLine struct {
	text   string
	top    float64
	points float64
	alpha  float64
	weight fonts.Weight
}

func (tb TitleBlock) lines() []textLine {
	return []textLine{
		{tb.Title, TitleTop, TitlePoints, 0.95, fonts.Bold},
		{tb.Subtitle, SubtitleTop, SubtitlePoints, 0.90, fonts.Regular},
		{tb.Info, InfoTop, InfoPoints, 0.85, fonts.Regular},
	}
}

// DrawTitle renders the non-empty lines of tb and returns the pixel region
// they cover, clipped to the canvas. Nothing drawn yields an empty rectangle.
func (c *Canvas) DrawTitle(tb TitleBlock) (image.Rectangle, error) {
	var region image.Rectangle
	x := TitleLeft * float64(c.width)

	for _, ln := range tb.lines() {
		if ln.text == "" {
			continue
		}
		face, err := fonts.Face(ln.weight, ln.points, tb.DPI)
		if err != nil {
			return image.Rectangle{}, err
		}
		c.dc.SetFontFace(face)
		c.dc.SetColor(tb.Color.NRGBA(ln.alpha))

		top := ln.top * float64(c.height)
		w, h := c.dc.MeasureString(ln.text)
		c.dc.DrawStringAnchored(ln.text, x, top, 0, 1)

		// Union the layout box with the ink box; glyphs may overhang
		// their advance.
		baseline := top + h
		ink, _ := font.BoundString(face, ln.text)
		region = region.Union(toRect(x, top, x+w, baseline)).
			Union(toRect(
				x+fixedToFloat(ink.Min.X), baseline+fixedToFloat(ink.Min.Y),
				x+fixedToFloat(ink.Max.X), baseline+fixedToFloat(ink.Max.Y),
			).Inset(-inkPadding))
	}

	return region.Intersect(image.Rect(0, 0, c.width, c.height)), nil
}

func toRect(x0, y0, x1, y1 float64) image.Rectangle {
	return image.Rect(
		int(math.Floor(x0)), int(math.Floor(y0)),
		int(math.Ceil(x1)), int(math.Ceil(y1)),
	)
}

func fixedToFloat(v fixed.Int26_6) float64 {
	return float64(v) / 64
}
