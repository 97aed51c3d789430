package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/tavola/pkg/catalog"
	"github.com/matzehuels/tavola/pkg/errors"
	"github.com/matzehuels/tavola/pkg/pipeline"
)

// composeCommand creates the compose command, which lays out a folder of
// photographs and exports the plates.
func (c *CLI) composeCommand() *cobra.Command {
	flags := newLayoutFlags()
	var pick bool

	cmd := &cobra.Command{
		Use:   "compose [input-dir]",
		Short: "Lay out a folder of photographs as catalogue plates",
		Long: `Compose loads every image in the input folder, sorts and scales it, places
it with the selected layout mode and exports the plates.

The output format follows the extension of --output: .pdf writes one
document, .png and .jpg write one file per plate (zipped when there is more
than one), .svg writes vector plates that reference the photographs.`,
		Example: `  tavola compose photos -o plates.pdf
  tavola compose photos -m finds.csv --mode masonry --columns 4 --sort Site --group-break
  tavola compose photos --images-per-page 9 -o plates.svg
  tavola compose -c catalogue.toml --seed 7 --sort random`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := flags.resolve(cmd, args)
			if err != nil {
				return err
			}
			if pick {
				if err := pickCaptionFields(cmd.Context(), &opts); err != nil {
					return err
				}
			}
			return c.runCompose(cmd.Context(), opts, flags)
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&pick, "pick-fields", false, "choose caption fields interactively from the metadata columns")

	return cmd
}

// pickCaptionFields lets the user choose caption fields from the metadata
// table's columns.
func pickCaptionFields(ctx context.Context, opts *pipeline.Options) error {
	if opts.Metadata == "" {
		return errors.New(errors.ErrCodeInvalidInput, "--pick-fields needs a metadata table (--metadata)")
	}
	columns, err := catalog.Headers(opts.Metadata)
	if err != nil {
		return err
	}
	fields, err := pickFields(ctx, columns, opts.CaptionFields)
	if err != nil {
		return err
	}
	opts.CaptionFields = fields
	return nil
}

func (c *CLI) runCompose(ctx context.Context, opts pipeline.Options, flags *layoutFlags) error {
	logger := loggerFromContext(ctx)
	opts.Logger = logger
	if opts.Output == "" {
		opts.Output = defaultOutput(opts.Input)
	}

	runner, err := c.newRunner(ctx, flags.cacheURL, flags.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	prog := newProgress(logger)
	spinner := newSpinnerWithContext(ctx, "Laying out "+opts.Input+"...")
	spinner.Start()
	res, err := runner.Execute(ctx, opts)
	if err != nil {
		spinner.Stop()
		return err
	}

	path, err := runner.Export(ctx, res, opts)
	spinner.Stop()
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Exported %d plates", len(res.Pages)))

	printComposeSummary(res, path)
	return nil
}

// printComposeSummary prints what was written and what deserves attention.
func printComposeSummary(res *pipeline.Result, path string) {
	printSuccess("Composed %d plates", res.Stats.Pages)
	printFile(path)
	printStats(res.Stats.Items, res.Stats.Pages, res.Stats.Dividers, res.CacheInfo.PlanHit)

	if len(res.Skipped) > 0 {
		printWarning("%d files could not be read", len(res.Skipped))
		for _, s := range res.Skipped {
			printDetail("%s: %s", s.Name, errors.UserMessage(s.Err))
		}
	}
	if n := len(res.Stats.Fallbacks); n > 0 {
		printWarning("%d images did not fit the layout and got a plate of their own", n)
		printDetail("%s", strings.Join(res.Stats.Fallbacks, ", "))
	}
	if !res.Coverage.Complete() {
		printWarning("%d of %d images were not placed exactly once", len(res.Coverage.Missing)+len(res.Coverage.Duplicated), res.Coverage.Expected)
	}
	if len(res.Suggestions) > 0 {
		printNewline()
		printInfo("Suggestions")
		for _, s := range res.Suggestions {
			printDetail("%s", s)
		}
	}
}
