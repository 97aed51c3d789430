// Package pkg provides the core libraries for tavola catalogue layout.
//
// # Overview
//
// Tavola turns a folder of object photographs (pottery sherds, vessels,
// small finds) into printable catalogue plates. Images are sorted, scaled
// and captioned, then placed onto fixed-size pages by one of three
// strategies. Every page is rendered twice from the same placements: a
// raster canvas for PDF and bitmap export, and a vector element list for SVG.
//
// # Architecture
//
// The typical data flow:
//
//	Image folder + metadata table
//	         ↓
//	    [catalog] (decode images, attach metadata rows)
//	         ↓
//	    [layout] (sort, scale, place with grid / puzzle / masonry)
//	         ↓
//	    [render] (book of pages: raster + vector, captions, overlays)
//	         ↓
//	    [export] (PDF, PNG/JPG, SVG, zipped when multi-page)
//
// [pipeline] runs these stages with validation, plan caching and hooks, and
// is what the CLI calls.
//
// # Quick Start
//
//	runner := pipeline.NewRunner(nil, nil, logger)
//	opts := pipeline.DefaultOptions()
//	opts.Input = "photos"
//	opts.Metadata = "finds.csv"
//	opts.Mode = "masonry"
//	opts.Output = "plates.pdf"
//
//	res, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    return err
//	}
//	path, err := runner.Export(ctx, res, opts)
//
// # Main Packages
//
// [catalog] - Items (photograph plus metadata and caption record) and the
// folder and metadata table loaders (.csv, .json, .toml).
//
// [layout] - Sorting (natural, random with seed, metadata columns), scale
// computation, the grid, puzzle and masonry strategies, the recorded Plan
// and coverage checks.
//
// [layout/binpack] - MaxRects rectangle packing used by the puzzle mode.
//
// [render] - The Book and Page sink, caption composition, group dividers,
// scale bar, table number and margin overlays, and SVG serialization.
//
// [fonts] - Font resolution with embedded Go fonts and system font probing.
//
// [export] - Writers for PDF, raster images, SVG and ZIP archives.
//
// [cache] - Plan caches: file (with a lock file), Redis and null.
//
// [observability] - Pipeline and cache hooks.
//
// [errors] - Structured error codes and input validation.
//
// # Testing
//
//	go test ./pkg/...
//
// [catalog]: https://pkg.go.dev/github.com/matzehuels/tavola/pkg/catalog
// [layout]: https://pkg.go.dev/github.com/matzehuels/tavola/pkg/layout
// [layout/binpack]: https://pkg.go.dev/github.com/matzehuels/tavola/pkg/layout/binpack
// [render]: https://pkg.go.dev/github.com/matzehuels/tavola/pkg/render
// [fonts]: https://pkg.go.dev/github.com/matzehuels/tavola/pkg/fonts
// [export]: https://pkg.go.dev/github.com/matzehuels/tavola/pkg/export
// [cache]: https://pkg.go.dev/github.com/matzehuels/tavola/pkg/cache
// [observability]: https://pkg.go.dev/github.com/matzehuels/tavola/pkg/observability
// [errors]: https://pkg.go.dev/github.com/matzehuels/tavola/pkg/errors
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/tavola/pkg/pipeline
package pkg
