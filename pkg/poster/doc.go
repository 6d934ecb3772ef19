// Package poster turns a parameter bundle into a finished poster raster.
//
// Render is the single entry point used by the CLI, the web panel and the
// studio. It validates the parameters, plans every layer and composes them:
//
//	p := poster.DefaultParams().WithSeed(42)
//	p.PaletteStyle = "neon"
//	r, err := poster.Render(p)
//	if err != nil {
//	    return err
//	}
//	// r.Image is an *image.NRGBA of p.Width × p.Height
//
// # Determinism
//
// Each render owns one random stream seeded from Params.Seed. The palette is
// drawn from that root stream first; layer i then draws from a stream derived
// with offset i+1, in this order: center x, center y, radius, rotation, the
// shape's own draws, the palette pick, roughness and alpha. The same seed and
// parameters therefore always yield byte-identical pixels, and concurrent
// renders never share state.
//
// A nil seed draws one from process entropy; Raster.Seed reports it so a
// lucky poster can be reproduced.
//
// # Degradation
//
// Unknown palette styles fall back to "random" and unknown shapes to "blob".
// Plan records the substitutions in Composition.Warnings. Malformed numbers
// and colors are errors.
package poster
