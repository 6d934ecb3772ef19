// Package pkg provides the core libraries for genposter.
//
// # Overview
//
// genposter renders abstract posters from stacked, shaded shapes. The pkg
// directory is organized into three areas:
//
//  1. Core - the deterministic poster engine ([random], [palette], [shape],
//     [geom], [shading], [fonts], [compose], [poster])
//  2. Infrastructure - encoding, caching and hooks ([export], [cache],
//     [observability], [config], [errors], [buildinfo])
//  3. [pipeline] - Orchestration (validate → cache → render → encode)
//
// # Architecture
//
// The typical data flow through genposter:
//
//	poster.Params (+ seed)
//	         ↓
//	    [poster] Plan (palette, outlines, shading per layer)
//	         ↓
//	    [compose] Canvas (fill, shadows, blur, title block)
//	         ↓
//	    [export] PNG/JPEG bytes
//
// # Quick Start
//
//	import (
//	    "os"
//	    "github.com/matzehuels/genposter/pkg/export"
//	    "github.com/matzehuels/genposter/pkg/poster"
//	)
//
//	p := poster.DefaultParams().WithSeed(42)
//	p.PaletteStyle = "sunset"
//	r, err := poster.Render(p)
//	if err != nil {
//	    return err
//	}
//	data, err := export.Bytes(r.Image, export.FormatPNG, export.Options{})
//	if err != nil {
//	    return err
//	}
//	os.WriteFile("poster.png", data, 0o644)
//
// # Caching and batches
//
// [pipeline.Runner] adds a content-addressed cache in front of the renderer.
// Only seeded renders are cached: the key is a hash of the validated
// parameters plus the output format.
//
// [random]: https://pkg.go.dev/github.com/matzehuels/genposter/pkg/random
// [palette]: https://pkg.go.dev/github.com/matzehuels/genposter/pkg/palette
// [shape]: https://pkg.go.dev/github.com/matzehuels/genposter/pkg/shape
// [geom]: https://pkg.go.dev/github.com/matzehuels/genposter/pkg/geom
// [shading]: https://pkg.go.dev/github.com/matzehuels/genposter/pkg/shading
// [fonts]: https://pkg.go.dev/github.com/matzehuels/genposter/pkg/fonts
// [compose]: https://pkg.go.dev/github.com/matzehuels/genposter/pkg/compose
// [poster]: https://pkg.go.dev/github.com/matzehuels/genposter/pkg/poster
// [export]: https://pkg.go.dev/github.com/matzehuels/genposter/pkg/export
// [cache]: https://pkg.go.dev/github.com/matzehuels/genposter/pkg/cache
// [observability]: https://pkg.go.dev/github.com/matzehuels/genposter/pkg/observability
// [config]: https://pkg.go.dev/github.com/matzehuels/genposter/pkg/config
// [errors]: https://pkg.go.dev/github.com/matzehuels/genposter/pkg/errors
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/genposter/pkg/buildinfo
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/genposter/pkg/pipeline
// [pipeline.Runner]: https://pkg.go.dev/github.com/matzehuels/genposter/pkg/pipeline#Runner
package pkg
