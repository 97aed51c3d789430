package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/matzehuels/tavola/pkg/errors"
	"github.com/matzehuels/tavola/pkg/pipeline"
)

// layoutFlags holds the flags shared by compose and inspect. Every layout
// option is bound straight onto a pipeline.Options; the remaining fields
// control where those options come from and how the runner caches.
type layoutFlags struct {
	opts     pipeline.Options
	config   string // TOML file loaded before flags are applied
	seed     uint64
	noCache  bool
	cacheURL string
	refresh  bool
}

func newLayoutFlags() *layoutFlags {
	return &layoutFlags{opts: pipeline.DefaultOptions()}
}

// register adds the flags to cmd.
func (f *layoutFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	bindOptions(fs, &f.opts)

	fs.StringVarP(&f.config, "config", "c", "", "TOML config file (flags override its values)")
	fs.Uint64Var(&f.seed, "seed", 0, "seed for the random sort key (makes random orders reproducible)")
	fs.BoolVar(&f.noCache, "no-cache", false, "disable the plan cache")
	fs.StringVar(&f.cacheURL, "cache-url", "", "plan cache: a directory, file://dir, redis://host:port/db or none (env "+cacheURLEnv+")")
	fs.BoolVar(&f.refresh, "refresh", false, "ignore cached plans and lay out again")
}

// bindOptions registers one flag per layout option on fs, bound to o.
// The current values of o are the flag defaults.
func bindOptions(fs *pflag.FlagSet, o *pipeline.Options) {
	fs.StringVarP(&o.Metadata, "metadata", "m", o.Metadata, "metadata table (.csv, .json or .toml) keyed by filename")
	fs.StringVarP(&o.Output, "output", "o", o.Output, "output file: .pdf, .png, .jpg or .svg (default <input>.pdf)")

	fs.StringVarP(&o.PageSize, "page-size", "p", o.PageSize, "page size: A4, A3, HD, 4K, LETTER, WIDTHxHEIGHT or custom")
	fs.StringVar(&o.CustomSize, "custom-size", o.CustomSize, "WIDTHxHEIGHT in pixels when --page-size=custom")
	fs.IntVar(&o.DPI, "dpi", o.DPI, "print resolution for PDF export")
	fs.IntVar(&o.Margin, "margin", o.Margin, "page margin in pixels")
	fs.IntVar(&o.Spacing, "spacing", o.Spacing, "spacing between images in pixels")

	fs.StringVar(&o.Mode, "mode", o.Mode, "layout mode: grid, puzzle or masonry")
	fs.Float64Var(&o.Scale, "scale", o.Scale, "scale factor applied to every image (0.1 to 5)")
	fs.IntVar(&o.ImagesPerPage, "images-per-page", o.ImagesPerPage, "target images per page; computes the scale (0 disables)")
	fs.IntVar(&o.Rows, "rows", o.Rows, "grid rows")
	fs.IntVar(&o.Cols, "cols", o.Cols, "grid columns")
	fs.IntVar(&o.MasonryColumns, "columns", o.MasonryColumns, "masonry columns")
	fs.BoolVar(&o.PuzzleGrouped, "puzzle-grouped", o.PuzzleGrouped, "pack each group into its own bins (puzzle)")

	fs.StringVarP(&o.SortPrimary, "sort", "s", o.SortPrimary, "primary sort key: alphabetical, natural_name, random, none or a metadata column")
	fs.StringVar(&o.SortSecondary, "sort-secondary", o.SortSecondary, "secondary sort key")
	fs.BoolVar(&o.GroupBreak, "group-break", o.GroupBreak, "separate groups of the primary sort key")
	fs.StringVar(&o.BreakType, "break-type", o.BreakType, "group separation: divider or new_page")
	fs.IntVar(&o.DividerThickness, "divider-thickness", o.DividerThickness, "divider line thickness in pixels")
	fs.Float64Var(&o.DividerWidthPercent, "divider-width", o.DividerWidthPercent, "divider width in percent of the content width")
	fs.BoolVar(&o.GroupHeaders, "group-headers", o.GroupHeaders, "label dividers with the group value")
	fs.Float64Var(&o.HeaderFontSize, "header-font-size", o.HeaderFontSize, "group header font size")

	fs.BoolVar(&o.Captions, "captions", o.Captions, "draw captions under images")
	fs.Float64Var(&o.CaptionFontSize, "caption-font-size", o.CaptionFontSize, "caption font size")
	fs.IntVar(&o.CaptionPadding, "caption-padding", o.CaptionPadding, "space between image and caption")
	fs.StringSliceVar(&o.CaptionFields, "caption-fields", o.CaptionFields, "metadata columns shown in captions (default all)")
	fs.BoolVar(&o.HideFieldNames, "hide-field-names", o.HideFieldNames, "show caption values without column names")
	fs.BoolVar(&o.StripExtension, "strip-extension", o.StripExtension, "drop the file extension from caption titles")
	fs.StringVar(&o.Font, "font", o.Font, `caption font: a .ttf path, a system font name or "system" (default embedded)`)

	fs.BoolVar(&o.ScaleBar, "scale-bar", o.ScaleBar, "draw a scale bar on each plate")
	fs.Float64Var(&o.ScaleBarTarget, "scale-bar-length", o.ScaleBarTarget, "scale bar length in units")
	fs.Float64Var(&o.PixelsPerUnit, "pixels-per-unit", o.PixelsPerUnit, "source image pixels per unit")
	fs.StringVar(&o.ScaleBarUnit, "scale-bar-unit", o.ScaleBarUnit, "scale bar unit label")
	fs.BoolVar(&o.TableNumber, "table-number", o.TableNumber, "number each plate")
	fs.StringVar(&o.TablePrefix, "table-prefix", o.TablePrefix, "plate number prefix")
	fs.IntVar(&o.TableStart, "table-start", o.TableStart, "number of the first plate")
	fs.StringVar(&o.TablePosition, "table-position", o.TablePosition, "plate number position: top_left, top_center, top_right, bottom_left, bottom_center or bottom_right")
	fs.Float64Var(&o.TableFontSize, "table-font-size", o.TableFontSize, "plate number font size")
	fs.BoolVar(&o.MarginBorder, "margin-border", o.MarginBorder, "outline the page and content area")
	fs.BoolVar(&o.MarginGuides, "margin-guides", o.MarginGuides, "add margin guides to SVG output")

	fs.IntVar(&o.Quality, "quality", o.Quality, "JPEG quality (1-100)")
	fs.StringVar(&o.Title, "title", o.Title, "document title for PDF metadata and SVG archives")
}

// resolve builds the pipeline options for a run: defaults, then the config
// file, then every flag the user set explicitly, then the positional input.
func (f *layoutFlags) resolve(cmd *cobra.Command, args []string) (pipeline.Options, error) {
	opts := f.opts
	if f.config != "" {
		base, err := pipeline.LoadConfig(f.config)
		if err != nil {
			return opts, err
		}
		if err := overlayChanged(cmd.Flags(), &base); err != nil {
			return opts, err
		}
		opts = base
	}

	if len(args) > 0 {
		opts.Input = args[0]
	}
	if strings.TrimSpace(opts.Input) == "" {
		return opts, errors.New(errors.ErrCodeInvalidInput, "no input folder given (pass it as an argument or set input in the config)")
	}
	if cmd.Flags().Changed("seed") {
		seed := f.seed
		opts.Seed = &seed
	}
	opts.Refresh = f.refresh
	return opts, nil
}

// overlayChanged copies the flags the user set on fs onto o.
func overlayChanged(fs *pflag.FlagSet, o *pipeline.Options) error {
	target := pflag.NewFlagSet("config", pflag.ContinueOnError)
	bindOptions(target, o)

	var err error
	fs.Visit(func(fl *pflag.Flag) {
		dst := target.Lookup(fl.Name)
		if dst == nil || err != nil {
			return
		}
		if src, ok := fl.Value.(pflag.SliceValue); ok {
			err = dst.Value.(pflag.SliceValue).Replace(src.GetSlice())
			return
		}
		if serr := dst.Value.Set(fl.Value.String()); serr != nil {
			err = fmt.Errorf("flag --%s: %w", fl.Name, serr)
		}
	})
	return err
}

// defaultOutput names the output after the input folder.
func defaultOutput(input string) string {
	name := filepath.Base(filepath.Clean(input))
	if name == "." || name == string(filepath.Separator) {
		name = appName
	}
	return name + ".pdf"
}
