package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/tavola/pkg/pipeline"
)

// inspectOpts holds the flags of the inspect command beyond the layout flags.
type inspectOpts struct {
	format     string // table, markdown or csv
	placements bool   // list every placement instead of per-plate totals
}

// inspectCommand creates the inspect command, which runs the layout without
// exporting and reports where everything landed.
func (c *CLI) inspectCommand() *cobra.Command {
	flags := newLayoutFlags()
	opts := inspectOpts{format: formatTable}

	cmd := &cobra.Command{
		Use:   "inspect [input-dir]",
		Short: "Report the layout of a folder without exporting",
		Long: `Inspect runs the same layout as compose and prints a summary of the plates,
the images per plate and any layout suggestions. Nothing is written.`,
		Example: `  tavola inspect photos --mode puzzle
  tavola inspect photos --placements --format csv > placements.csv`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateTableFormat(opts.format); err != nil {
				return err
			}
			popts, err := flags.resolve(cmd, args)
			if err != nil {
				return err
			}
			popts.Output = ""
			return c.runInspect(cmd.Context(), cmd.OutOrStdout(), popts, flags, opts)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format: table, markdown or csv")
	cmd.Flags().BoolVar(&opts.placements, "placements", false, "list every placement")

	return cmd
}

func (c *CLI) runInspect(ctx context.Context, w io.Writer, popts pipeline.Options, flags *layoutFlags, opts inspectOpts) error {
	popts.Logger = loggerFromContext(ctx)

	runner, err := c.newRunner(ctx, flags.cacheURL, flags.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	res, err := runner.Execute(ctx, popts)
	if err != nil {
		return err
	}

	if opts.placements {
		return writePlacements(w, opts.format, res)
	}
	if err := writeSummary(w, opts.format, res, popts); err != nil {
		return err
	}
	if err := writePlates(w, opts.format, res); err != nil {
		return err
	}
	if opts.format == formatTable && len(res.Suggestions) > 0 {
		fmt.Fprintln(w)
		for _, s := range res.Suggestions {
			fmt.Fprintln(w, StyleDim.Render("› "+s))
		}
	}
	return nil
}

// writeSummary prints one row per layout statistic.
func writeSummary(w io.Writer, format string, res *pipeline.Result, opts pipeline.Options) error {
	cacheState := "fresh"
	switch {
	case res.CacheInfo.Bypassed:
		cacheState = "bypassed"
	case res.CacheInfo.PlanHit:
		cacheState = "hit"
	}

	rows := [][]string{
		{"Mode", opts.Mode},
		{"Page size", opts.PageSize},
		{"Images", strconv.Itoa(res.Stats.Items)},
		{"Skipped", strconv.Itoa(len(res.Skipped))},
		{"Plates", strconv.Itoa(res.Stats.Pages)},
		{"Dividers", strconv.Itoa(res.Stats.Dividers)},
		{"Fallback plates", strconv.Itoa(len(res.Stats.Fallbacks))},
		{"Scale", strconv.FormatFloat(res.Scale, 'f', 3, 64)},
		{"Plan cache", cacheState},
		{"Time", res.Stats.TotalTime.Round(time.Millisecond).String()},
	}
	if !res.Coverage.Complete() {
		rows = append(rows,
			[]string{"Missing", strings.Join(res.Coverage.Missing, ", ")},
			[]string{"Duplicated", strings.Join(res.Coverage.Duplicated, ", ")})
	}
	return writeTable(w, format, []string{"Setting", "Value"}, rows, nil)
}

// writePlates prints how many images and dividers each plate carries.
func writePlates(w io.Writer, format string, res *pipeline.Result) error {
	images := make([]int, res.Plan.Pages)
	dividers := make([]int, res.Plan.Pages)
	for _, e := range res.Plan.Placements {
		if e.Page < len(images) {
			images[e.Page]++
		}
	}
	for _, d := range res.Plan.Dividers {
		if d.Page < len(dividers) {
			dividers[d.Page]++
		}
	}

	rows := make([][]string, res.Plan.Pages)
	for i := range rows {
		rows[i] = []string{strconv.Itoa(i + 1), strconv.Itoa(images[i]), strconv.Itoa(dividers[i])}
	}
	return writeTable(w, format, []string{"Plate", "Images", "Dividers"}, rows,
		[]columnAlignment{alignRight, alignRight, alignRight})
}

// writePlacements prints one row per placed image.
func writePlacements(w io.Writer, format string, res *pipeline.Result) error {
	rows := make([][]string, len(res.Plan.Placements))
	for i, e := range res.Plan.Placements {
		rows[i] = []string{
			e.Name,
			strconv.Itoa(e.Page + 1),
			strconv.Itoa(e.X),
			strconv.Itoa(e.Y),
			strconv.Itoa(e.W),
			strconv.Itoa(e.H),
		}
	}
	return writeTable(w, format, []string{"Image", "Plate", "X", "Y", "W", "H"}, rows,
		[]columnAlignment{alignLeft, alignRight, alignRight, alignRight, alignRight, alignRight})
}
