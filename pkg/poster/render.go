package poster

import (
	"image"

	"github.com/matzehuels/genposter/pkg/compose"
)

// Raster is a rendered poster.
type Raster struct {
	Image *image.NRGBA

	// Seed reproduces this raster when passed back in Params.Seed.
	Seed   int64
	Seeded bool

	// TitleRegion is the pixel area covered by the title block.
	TitleRegion image.Rectangle

	Width  int
	Height int
	DPI    float64

	Warnings []string
}

// Render validates p, plans the composition and draws it.
func Render(p Params) (*Raster, error) {
	c, err := Plan(p)
	if err != nil {
		return nil, err
	}
	return c.Draw()
}

// Draw rasterizes the composition: layers back to front, the title block on
// top, then the blur.
func (c *Composition) Draw() (*Raster, error) {
	canvas, err := compose.NewCanvas(c.Width, c.Height, c.Background)
	if err != nil {
		return nil, err
	}
	for _, l := range c.Layers {
		canvas.DrawLayer(l)
	}
	region, err := canvas.DrawTitle(c.Title)
	if err != nil {
		return nil, err
	}
	canvas.Blur(c.Blur)

	return &Raster{
		Image:       canvas.Image(),
		Seed:        c.Seed,
		Seeded:      c.Seeded,
		TitleRegion: region,
		Width:       c.Width,
		Height:      c.Height,
		DPI:         c.DPI,
		Warnings:    c.Warnings,
	}, nil
}
