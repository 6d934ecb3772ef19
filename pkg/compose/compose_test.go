package compose

import (
	"image"
	stdcolor "image/color"
	"testing"

	"github.com/matzehuels/genposter/pkg/color"
	"github.com/matzehuels/genposter/pkg/errors"
	"github.com/matzehuels/genposter/pkg/geom"
	"github.com/matzehuels/genposter/pkg/shading"
)

var (
	white = stdcolor.NRGBA{255, 255, 255, 255}
	red   = stdcolor.NRGBA{255, 0, 0, 255}
	blue  = stdcolor.NRGBA{0, 0, 255, 255}
)

func square(x0, y0, size float64) geom.Outline {
	return geom.Outline{
		{X: x0, Y: y0},
		{X: x0 + size, Y: y0},
		{X: x0 + size, Y: y0 + size},
		{X: x0, Y: y0 + size},
		{X: x0, Y: y0},
	}
}

func mustCanvas(t *testing.T, w, h int, bg color.Color) *Canvas {
	t.Helper()
	c, err := NewCanvas(w, h, bg)
	if err != nil {
		t.Fatalf("NewCanvas: %v", err)
	}
	return c
}

func TestNewCanvasFillsBackground(t *testing.T) {
	c := mustCanvas(t, 40, 30, color.White)
	img := c.Image()
	if got := img.Bounds(); got != image.Rect(0, 0, 40, 30) {
		t.Fatalf("bounds = %v", got)
	}
	for _, p := range []image.Point{{0, 0}, {39, 29}, {20, 15}} {
		if got := img.NRGBAAt(p.X, p.Y); got != white {
			t.Errorf("pixel %v = %v, want white", p, got)
		}
	}
}

func TestNewCanvasInvalidSize(t *testing.T) {
	for _, sz := range [][2]int{{0, 10}, {10, 0}, {-5, 5}} {
		if _, err := NewCanvas(sz[0], sz[1], color.White); !errors.Is(err, errors.ErrCodeInvalidParameter) {
			t.Errorf("NewCanvas(%d, %d) error = %v, want INVALID_PARAMETER", sz[0], sz[1], err)
		}
	}
}

func TestDrawLayerFillsOutline(t *testing.T) {
	c := mustCanvas(t, 100, 100, color.White)
	c.DrawLayer(Layer{Outline: square(20, 20, 40), Fill: color.RGB(1, 0, 0), Alpha: 1})
	img := c.Image()

	if got := img.NRGBAAt(40, 40); got != red {
		t.Errorf("inside pixel = %v, want red", got)
	}
	if got := img.NRGBAAt(80, 80); got != white {
		t.Errorf("outside pixel = %v, want white", got)
	}
}

func TestDrawLayerOrder(t *testing.T) {
	c := mustCanvas(t, 100, 100, color.White)
	c.DrawLayer(Layer{Outline: square(10, 10, 50), Fill: color.RGB(1, 0, 0), Alpha: 1})
	c.DrawLayer(Layer{Outline: square(30, 30, 50), Fill: color.RGB(0, 0, 1), Alpha: 1})
	img := c.Image()

	if got := img.NRGBAAt(45, 45); got != blue {
		t.Errorf("overlap pixel = %v, want blue (last layer on top)", got)
	}
	if got := img.NRGBAAt(20, 20); got != red {
		t.Errorf("first-layer-only pixel = %v, want red", got)
	}
}

func TestDrawLayerShadowBehindFill(t *testing.T) {
	c := mustCanvas(t, 100, 100, color.White)
	c.DrawLayer(Layer{
		Outline: square(20, 20, 30),
		Fill:    color.RGB(1, 0, 0),
		Alpha:   1,
		Shadows: []shading.Pass{{Offset: geom.Point{X: 20, Y: 0}, Alpha: 1, Color: color.Black}},
	})
	img := c.Image()

	if got := img.NRGBAAt(60, 35); got.R > 10 || got.G > 10 || got.B > 10 {
		t.Errorf("shadow-only pixel = %v, want black", got)
	}
	if got := img.NRGBAAt(45, 35); got != red {
		t.Errorf("fill over shadow = %v, want red", got)
	}
}

func TestDrawLayerTranslucent(t *testing.T) {
	c := mustCanvas(t, 50, 50, color.White)
	c.DrawLayer(Layer{Outline: square(0, 0, 50), Fill: color.Black, Alpha: 0.5})
	got := c.Image().NRGBAAt(25, 25)
	if got.R < 110 || got.R > 145 {
		t.Errorf("half-transparent black over white = %v, want mid gray", got)
	}
}

func TestDrawLayerSkipsDegenerateOutline(t *testing.T) {
	c := mustCanvas(t, 20, 20, color.White)
	c.DrawLayer(Layer{Outline: geom.Outline{{X: 1, Y: 1}, {X: 5, Y: 5}}, Fill: color.Black, Alpha: 1})
	if got := c.Image().NRGBAAt(3, 3); got != white {
		t.Errorf("pixel = %v, want untouched background", got)
	}
}

func TestBlur(t *testing.T) {
	build := func() *Canvas {
		c := mustCanvas(t, 100, 100, color.White)
		c.DrawLayer(Layer{Outline: square(0, 0, 50), Fill: color.Black, Alpha: 1})
		return c
	}

	sharp := build()
	before := sharp.Image()
	sharp.Blur(0)
	if after := sharp.Image(); string(after.Pix) != string(before.Pix) {
		t.Error("Blur(0) changed the canvas")
	}

	soft := build()
	soft.Blur(3)
	edge := soft.Image().NRGBAAt(50, 25)
	if edge.R == 0 || edge.R == 255 {
		t.Errorf("edge pixel after blur = %v, want an intermediate value", edge)
	}
}

func TestDrawTitle(t *testing.T) {
	c := mustCanvas(t, 600, 800, color.White)
	region, err := c.DrawTitle(TitleBlock{
		Title:    "Generative Poster",
		Subtitle: "Layered shapes",
		Info:     "Style: Pastel / Shape: Blob",
		Color:    color.Black,
		DPI:      72,
	})
	if err != nil {
		t.Fatalf("DrawTitle: %v", err)
	}
	if region.Empty() {
		t.Fatal("title region is empty")
	}
	if !region.In(image.Rect(0, 0, 600, 800)) {
		t.Errorf("region %v outside canvas", region)
	}
	// Text starts at 1% of the width and 3% of the height.
	if region.Min.X > 6 || region.Min.X < 4 || region.Min.Y > 24 || region.Min.Y < 18 {
		t.Errorf("region origin = %v, want near (6, 24)", region.Min)
	}

	img := c.Image()
	inked := false
	for y := region.Min.Y; y < region.Max.Y && !inked; y++ {
		for x := region.Min.X; x < region.Max.X; x++ {
			if img.NRGBAAt(x, y) != white {
				inked = true
				break
			}
		}
	}
	if !inked {
		t.Error("no text pixels inside the title region")
	}
	if got := img.NRGBAAt(590, 790); got != white {
		t.Errorf("pixel far from the title = %v, want white", got)
	}
}

func TestDrawTitleEmpty(t *testing.T) {
	c := mustCanvas(t, 100, 100, color.White)
	region, err := c.DrawTitle(TitleBlock{Color: color.Black, DPI: 150})
	if err != nil {
		t.Fatalf("DrawTitle: %v", err)
	}
	if !region.Empty() {
		t.Errorf("region = %v, want empty", region)
	}
}

func TestDrawTitleInvalidDPI(t *testing.T) {
	c := mustCanvas(t, 100, 100, color.White)
	if _, err := c.DrawTitle(TitleBlock{Title: "x", DPI: 0}); err == nil {
		t.Error("DrawTitle with zero DPI should fail")
	}
}
