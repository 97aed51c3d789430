package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/tavola/pkg/catalog"
)

// fieldsCommand creates the fields command, which lists the columns of a
// metadata table for use as sort keys and caption fields.
func (c *CLI) fieldsCommand() *cobra.Command {
	var pick bool

	cmd := &cobra.Command{
		Use:   "fields <metadata-file>",
		Short: "List the columns of a metadata table",
		Long: `Fields prints the column names of a metadata table (.csv, .json or .toml).
Any column can be used with --sort and --caption-fields. With --pick the
columns are offered in an interactive list and the chosen ones are printed
as a --caption-fields value.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			columns, err := catalog.Headers(args[0])
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()

			if pick {
				chosen, err := pickFields(cmd.Context(), columns, nil)
				if err != nil {
					return err
				}
				fmt.Fprintln(w, "--caption-fields="+strings.Join(chosen, ","))
				return nil
			}

			for _, col := range columns {
				fmt.Fprintln(w, col)
			}
			if len(columns) == 0 {
				loggerFromContext(cmd.Context()).Warn("metadata table has no columns", "file", args[0])
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&pick, "pick", false, "choose fields interactively")

	return cmd
}
