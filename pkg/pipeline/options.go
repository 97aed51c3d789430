package pipeline

import (
	"io"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/tavola/pkg/cache"
	"github.com/matzehuels/tavola/pkg/errors"
	"github.com/matzehuels/tavola/pkg/export"
	"github.com/matzehuels/tavola/pkg/fonts"
	"github.com/matzehuels/tavola/pkg/layout"
	"github.com/matzehuels/tavola/pkg/render"
)

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for a pipeline run. It serializes to
// JSON and TOML; the TOML form is the --config file.
type Options struct {
	// Input and output
	Input    string `json:"input" toml:"input"`
	Metadata string `json:"metadata,omitempty" toml:"metadata"`
	Output   string `json:"output" toml:"output"`

	// Page
	PageSize   string `json:"page_size" toml:"page_size"`
	CustomSize string `json:"custom_size,omitempty" toml:"custom_size"`
	DPI        int    `json:"dpi" toml:"dpi"`
	Margin     int    `json:"margin" toml:"margin"`
	Spacing    int    `json:"spacing" toml:"spacing"`

	// Layout
	Mode           string  `json:"mode" toml:"mode"`
	Scale          float64 `json:"scale" toml:"scale"`
	ImagesPerPage  int     `json:"images_per_page,omitempty" toml:"images_per_page"`
	Rows           int     `json:"rows" toml:"rows"`
	Cols           int     `json:"cols" toml:"cols"`
	MasonryColumns int     `json:"masonry_columns" toml:"masonry_columns"`
	PuzzleGrouped  bool    `json:"puzzle_grouped_bins" toml:"puzzle_grouped_bins"`

	// Sorting and grouping
	SortPrimary         string  `json:"sort_primary" toml:"sort_primary"`
	SortSecondary       string  `json:"sort_secondary" toml:"sort_secondary"`
	Seed                *uint64 `json:"seed,omitempty" toml:"seed,omitempty"`
	GroupBreak          bool    `json:"group_break" toml:"group_break"`
	BreakType           string  `json:"break_type" toml:"break_type"`
	DividerThickness    int     `json:"divider_thickness" toml:"divider_thickness"`
	DividerWidthPercent float64 `json:"divider_width_percent" toml:"divider_width_percent"`
	GroupHeaders        bool    `json:"group_headers" toml:"group_headers"`
	HeaderFontSize      float64 `json:"header_font_size" toml:"header_font_size"`

	// Captions
	Captions        bool     `json:"captions" toml:"captions"`
	CaptionFontSize float64  `json:"caption_font_size" toml:"caption_font_size"`
	CaptionPadding  int      `json:"caption_padding" toml:"caption_padding"`
	CaptionFields   []string `json:"caption_fields,omitempty" toml:"caption_fields"`
	HideFieldNames  bool     `json:"hide_field_names" toml:"hide_field_names"`
	StripExtension  bool     `json:"strip_extension" toml:"strip_extension"`
	Font            string   `json:"font,omitempty" toml:"font"` // "", "system", a font file name or a .ttf path

	// Annotations
	ScaleBar       bool    `json:"scale_bar" toml:"scale_bar"`
	ScaleBarTarget float64 `json:"scale_bar_target" toml:"scale_bar_target"`
	PixelsPerUnit  float64 `json:"pixels_per_unit" toml:"pixels_per_unit"`
	ScaleBarUnit   string  `json:"scale_bar_unit" toml:"scale_bar_unit"`
	TableNumber    bool    `json:"table_number" toml:"table_number"`
	TablePrefix    string  `json:"table_prefix" toml:"table_prefix"`
	TableStart     int     `json:"table_start" toml:"table_start"`
	TablePosition  string  `json:"table_position" toml:"table_position"`
	TableFontSize  float64 `json:"table_font_size" toml:"table_font_size"`
	MarginBorder   bool    `json:"margin_border" toml:"margin_border"`
	MarginGuides   bool    `json:"margin_guides" toml:"margin_guides"`

	// Export
	Quality int    `json:"quality" toml:"quality"`
	Title   string `json:"title,omitempty" toml:"title"`

	// Runtime options (not serialized)
	Refresh bool           `json:"-" toml:"-"` // ignore cached plans
	Logger  *log.Logger    `json:"-" toml:"-"`
	Fonts   fonts.Resolver `json:"-" toml:"-"`

	size      render.Size
	mode      layout.Mode
	breakType layout.BreakType
	validated bool
}

// DefaultOptions returns options with every default applied. Fields whose
// zero value is a valid choice (margin 0, captions off) get their defaults
// here rather than in SetDefaults.
func DefaultOptions() Options {
	o := Options{
		Margin:         DefaultMargin,
		Spacing:        DefaultSpacing,
		CaptionPadding: DefaultCaptionPadding,
		TablePrefix:    DefaultTablePrefix,
		PuzzleGrouped:  true,
		Captions:       true,
		ScaleBar:       true,
		TableNumber:    true,
	}
	o.SetDefaults()
	return o
}

// SetDefaults fills zero-valued fields with their defaults.
func (o *Options) SetDefaults() {
	setDefault(&o.PageSize, DefaultPageSize)
	setDefault(&o.DPI, DefaultDPI)
	setDefault(&o.Mode, DefaultMode)
	setDefault(&o.Scale, DefaultScale)
	setDefault(&o.Rows, DefaultRows)
	setDefault(&o.Cols, DefaultCols)
	setDefault(&o.MasonryColumns, DefaultMasonryColumns)
	setDefault(&o.SortPrimary, DefaultSortPrimary)
	setDefault(&o.SortSecondary, DefaultSortSecondary)
	setDefault(&o.BreakType, DefaultBreakType)
	setDefault(&o.DividerThickness, DefaultDividerThickness)
	setDefault(&o.DividerWidthPercent, DefaultDividerWidthPercent)
	setDefault(&o.HeaderFontSize, DefaultHeaderFontSize)
	setDefault(&o.CaptionFontSize, DefaultCaptionFontSize)
	setDefault(&o.ScaleBarTarget, DefaultScaleBarTarget)
	setDefault(&o.PixelsPerUnit, DefaultPixelsPerUnit)
	setDefault(&o.ScaleBarUnit, DefaultScaleBarUnit)
	setDefault(&o.TableStart, DefaultTableStart)
	setDefault(&o.TablePosition, DefaultTablePosition)
	setDefault(&o.TableFontSize, DefaultTableFontSize)
	setDefault(&o.Quality, DefaultQuality)
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

func setDefault[T comparable](field *T, def T) {
	var zero T
	if *field == zero {
		*field = def
	}
}

// Validate checks the options and applies defaults. Every configuration
// error surfaces here, before any image is decoded.
// This method is idempotent.
func (o *Options) Validate() error {
	if o.validated {
		return nil
	}
	o.SetDefaults()

	if strings.TrimSpace(o.Input) == "" {
		return errors.New(errors.ErrCodeInvalidInput, "input folder is required")
	}
	if o.Output != "" {
		if err := errors.ValidateOutputPath(o.Output); err != nil {
			return err
		}
		if _, err := export.FormatFor(o.Output); err != nil {
			return err
		}
	}

	size, err := render.ParseSize(o.PageSize, o.CustomSize)
	if err != nil {
		return err
	}
	mode, err := layout.ParseMode(o.Mode)
	if err != nil {
		return err
	}
	breakType, err := layout.ParseBreakType(o.BreakType)
	if err != nil {
		return err
	}
	if err := layout.ValidateScale(o.Scale); err != nil {
		return err
	}

	switch {
	case o.DPI <= 0:
		return errors.New(errors.ErrCodeInvalidInput, "dpi must be positive, got %d", o.DPI)
	case o.Rows <= 0 || o.Cols <= 0:
		return errors.New(errors.ErrCodeInvalidInput, "grid rows and columns must be positive, got %dx%d", o.Rows, o.Cols)
	case o.MasonryColumns <= 0:
		return errors.New(errors.ErrCodeInvalidInput, "masonry columns must be positive, got %d", o.MasonryColumns)
	case o.DividerWidthPercent <= 0 || o.DividerWidthPercent > 100:
		return errors.New(errors.ErrCodeInvalidInput, "divider width must be in (0, 100] percent, got %v", o.DividerWidthPercent)
	case o.CaptionPadding < 0:
		return errors.New(errors.ErrCodeInvalidInput, "caption padding must not be negative")
	case o.ScaleBar && (o.ScaleBarTarget <= 0 || o.PixelsPerUnit <= 0):
		return errors.New(errors.ErrCodeInvalidInput, "scale bar length and pixels per unit must be positive")
	case o.Quality < 1 || o.Quality > 100:
		return errors.New(errors.ErrCodeInvalidInput, "quality must be between 1 and 100, got %d", o.Quality)
	}

	for _, key := range []string{o.SortPrimary, o.SortSecondary} {
		if err := errors.ValidateFieldName(key); err != nil {
			return err
		}
	}
	for _, f := range o.CaptionFields {
		if err := errors.ValidateFieldName(f); err != nil {
			return err
		}
	}

	cfg := layout.PageConfig{Size: size, Margin: o.Margin, Spacing: o.Spacing, ImagesPerPage: o.ImagesPerPage}
	if err := cfg.Validate(); err != nil {
		return err
	}

	o.size, o.mode, o.breakType = size, mode, breakType
	o.validated = true
	return nil
}

// Size returns the validated page size.
func (o *Options) Size() render.Size { return o.size }

// LayoutMode returns the validated layout mode.
func (o *Options) LayoutMode() layout.Mode { return o.mode }

// PageConfig returns the geometry and grouping rules for placement.
func (o *Options) PageConfig() layout.PageConfig {
	return layout.PageConfig{
		Size:                o.size,
		Margin:              o.Margin,
		Spacing:             o.Spacing,
		ImagesPerPage:       o.ImagesPerPage,
		GroupBreak:          o.GroupBreak,
		BreakType:           o.breakType,
		DividerThickness:    o.DividerThickness,
		DividerWidthPercent: o.DividerWidthPercent,
		GroupHeaders:        o.GroupHeaders,
		HeaderFontSize:      o.HeaderFontSize,
		Logger:              o.Logger,
	}
}

// Strategy returns the placement strategy for the selected mode. composer
// is handed to masonry, which composes captions after fitting items to its
// columns.
func (o *Options) Strategy(composer *render.Composer) layout.Strategy {
	switch o.mode {
	case layout.ModePuzzle:
		return &layout.Puzzle{Grouped: o.PuzzleGrouped}
	case layout.ModeMasonry:
		return &layout.Masonry{Columns: o.MasonryColumns, ReservedCaptions: composer}
	default:
		return &layout.Grid{Rows: o.Rows, Cols: o.Cols}
	}
}

// FontResolver returns the configured resolver, building one from Font when
// none was injected.
func (o *Options) FontResolver() fonts.Resolver {
	if o.Fonts != nil {
		return o.Fonts
	}
	switch f := o.Font; {
	case f == "":
		o.Fonts = fonts.NewResolver()
	case f == "system":
		o.Fonts = fonts.NewResolver(fonts.WithSystemFont())
	case strings.ContainsRune(f, filepath.Separator) || strings.ContainsRune(f, '/'):
		o.Fonts = fonts.NewResolver(fonts.WithFontFile(f))
	default:
		o.Fonts = fonts.NewResolver(fonts.WithSystemFont(f))
	}
	return o.Fonts
}

// Composer returns the caption composer, or nil when captions are off.
func (o *Options) Composer(columns []string) *render.Composer {
	if !o.Captions {
		return nil
	}
	return &render.Composer{
		Fonts:          o.FontResolver(),
		FontSize:       o.CaptionFontSize,
		Padding:        o.CaptionPadding,
		Fields:         o.CaptionFields,
		Columns:        columns,
		HideFieldNames: o.HideFieldNames,
		StripExtension: o.StripExtension,
	}
}

// Overlay returns the page annotations. An unknown table number position is
// logged and replaced by the bottom-center default.
func (o *Options) Overlay(scale float64) *render.Overlay {
	ov := &render.Overlay{
		Fonts:        o.FontResolver(),
		Margin:       o.Margin,
		MarginBorder: o.MarginBorder,
	}
	if o.ScaleBar {
		ov.ScaleBar = &render.ScaleBarOptions{
			Target:    o.ScaleBarTarget,
			PxPerUnit: o.PixelsPerUnit,
			Scale:     scale,
			Unit:      o.ScaleBarUnit,
		}
	}
	if o.TableNumber {
		pos, err := render.ParsePosition(o.TablePosition)
		if err != nil {
			o.Logger.Warn("invalid table number position", "position", o.TablePosition, "using", pos)
		}
		ov.TableNumber = &render.TableNumberOptions{
			Prefix:   o.TablePrefix,
			Start:    o.TableStart,
			Position: pos,
			FontSize: o.TableFontSize,
		}
	}
	return ov
}

// ExportOptions returns the options for export.Save.
func (o *Options) ExportOptions(runID string) export.Options {
	eo := export.Options{
		DPI:     o.DPI,
		Quality: o.Quality,
		Title:   o.Title,
		RunID:   runID,
		Logger:  o.Logger,
	}
	if o.Title != "" {
		eo.SVG = append(eo.SVG, render.WithTitle(o.Title))
	}
	if o.MarginGuides {
		eo.SVG = append(eo.SVG, render.WithMarginGuides(o.Margin))
	}
	return eo
}

// Cacheable reports whether placement is reproducible and may be cached.
// A random sort without a seed differs on every run.
func (o *Options) Cacheable() bool {
	random := o.SortPrimary == layout.SortRandom || o.SortSecondary == layout.SortRandom
	return !random || o.Seed != nil
}

// PlanKeyOpts returns the cache key options for placement. scale is the
// factor actually applied.
func (o *Options) PlanKeyOpts(scale float64) cache.PlanKeyOpts {
	k := cache.PlanKeyOpts{
		Mode:          string(o.mode),
		PageWidth:     o.size.Width,
		PageHeight:    o.size.Height,
		Margin:        o.Margin,
		Spacing:       o.Spacing,
		Scale:         scale,
		ImagesPerPage: o.ImagesPerPage,
		SortPrimary:   o.SortPrimary,
		SortSecondary: o.SortSecondary,
		GroupBreak:    o.GroupBreak,
		BreakType:     string(o.breakType),
		GroupHeaders:  o.GroupHeaders,
	}
	if o.Seed != nil {
		k.Seed = *o.Seed
	}
	if o.Captions {
		k.Captions = strings.Join([]string{
			strings.Join(o.CaptionFields, ","),
			formatFloat(o.CaptionFontSize),
			formatInt(o.CaptionPadding),
			formatBool(o.HideFieldNames),
			formatBool(o.StripExtension),
			o.Font,
		}, "|")
	}
	switch o.mode {
	case layout.ModeGrid:
		k.Extra = formatInt(o.Rows) + "x" + formatInt(o.Cols)
	case layout.ModePuzzle:
		k.Extra = "grouped=" + formatBool(o.PuzzleGrouped)
	case layout.ModeMasonry:
		k.Extra = "columns=" + formatInt(o.MasonryColumns)
	}
	if o.GroupBreak {
		k.Extra += "|divider=" + formatInt(o.DividerThickness) + "," + formatFloat(o.DividerWidthPercent) + "," + formatFloat(o.HeaderFontSize)
	}
	return k
}
