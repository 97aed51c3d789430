package cli

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/tavola/pkg/render"
)

// sizesCommand creates the sizes command, which lists the page size presets.
func (c *CLI) sizesCommand() *cobra.Command {
	format := formatTable

	cmd := &cobra.Command{
		Use:   "sizes",
		Short: "List the page size presets",
		Long: `Sizes lists the named page sizes accepted by --page-size. Pixel sizes are
given at 300 dpi; any WIDTHxHEIGHT pair is accepted as well.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateTableFormat(format); err != nil {
				return err
			}
			return writeTable(cmd.OutOrStdout(), format,
				[]string{"Name", "Width", "Height", "Orientation"},
				sizeRows(render.Presets),
				[]columnAlignment{alignLeft, alignRight, alignRight, alignLeft})
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", format, "output format: table, markdown or csv")

	return cmd
}

func sizeRows(sizes []render.Size) [][]string {
	rows := make([][]string, len(sizes))
	for i, s := range sizes {
		orientation := "portrait"
		if s.Width > s.Height {
			orientation = "landscape"
		}
		rows[i] = []string{s.Name, strconv.Itoa(s.Width), strconv.Itoa(s.Height), orientation}
	}
	return rows
}
