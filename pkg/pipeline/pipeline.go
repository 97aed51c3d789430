// Package pipeline provides the catalogue layout pipeline for tavola.
//
// This package implements the complete load → arrange → render pipeline used
// by the CLI. By centralizing this logic, every front end applies the same
// defaults, validation and caching.
//
// # Architecture
//
// The pipeline runs these stages in order:
//
//  1. Load: decode the input folder and attach the metadata table
//  2. Arrange: sort, scale (optionally to a target images-per-page) and caption
//  3. Place: run the grid, puzzle or masonry strategy onto a render.Book
//  4. Annotate: scale bar, table number and margin border per page
//  5. Export: write PDF, JPG/PNG or SVG
//
// Placement is cached: the plan of where every item landed is stored under
// a key derived from the inputs and layout settings, and replayed onto a
// fresh book on the next run.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.DefaultOptions()
//	opts.Input = "photos"
//	opts.Output = "plates.pdf"
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	path, err := runner.Export(ctx, result, opts)
package pipeline

import (
	"time"

	"github.com/matzehuels/tavola/pkg/catalog"
	"github.com/matzehuels/tavola/pkg/layout"
	"github.com/matzehuels/tavola/pkg/render"
)

// =============================================================================
// Default Values - Single Source of Truth for the CLI and config files
// =============================================================================

const (
	DefaultPageSize = "A4"
	DefaultDPI      = render.DefaultDPI
	DefaultMode     = string(layout.ModeGrid)
	DefaultMargin   = 50
	DefaultSpacing  = 10
	DefaultScale    = 1.0

	DefaultRows           = 4
	DefaultCols           = 3
	DefaultMasonryColumns = 3

	DefaultCaptionFontSize = 12.0
	DefaultCaptionPadding  = 5

	DefaultScaleBarTarget = 5.0
	DefaultPixelsPerUnit  = 118.0 // pixels per centimetre at 300 dpi
	DefaultScaleBarUnit   = "cm"

	DefaultTablePrefix   = "Tav."
	DefaultTableStart    = 1
	DefaultTablePosition = string(render.TopLeft)
	DefaultTableFontSize = 18.0

	DefaultSortPrimary   = layout.SortAlphabetical
	DefaultSortSecondary = layout.SortNone

	DefaultBreakType           = string(layout.BreakDivider)
	DefaultDividerThickness    = 2
	DefaultDividerWidthPercent = 80.0
	DefaultHeaderFontSize      = render.DefaultDividerFontSize

	DefaultQuality = 95
)

// =============================================================================
// Result
// =============================================================================

// Result contains the outputs of a pipeline run.
type Result struct {
	// RunID identifies the run in logs and archive notes.
	RunID string

	// Pages are the rendered pages, raster and vector.
	Pages []*render.Page

	// Plan records where every item landed.
	Plan *layout.Plan

	// Items are the items as placed (sorted, scaled, captioned).
	Items []catalog.Item

	// Skipped lists input files that could not be decoded.
	Skipped []catalog.Skip

	// Coverage compares the loaded items with the plan.
	Coverage layout.Coverage

	// Suggestions are hints for improving the layout.
	Suggestions []string

	// Scale is the factor actually applied.
	Scale float64

	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Items     int
	Pages     int
	Dividers  int
	Fallbacks []string

	LoadTime  time.Duration
	PlaceTime time.Duration
	TotalTime time.Duration
}

// CacheInfo tracks how the plan was obtained.
type CacheInfo struct {
	Key      string // empty when caching was bypassed
	PlanHit  bool   // plan came from the cache
	Bypassed bool   // run was not cacheable (unseeded random sort)
}
