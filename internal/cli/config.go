package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/tavola/pkg/errors"
	"github.com/matzehuels/tavola/pkg/pipeline"
)

// configCommand creates the config command, which prints a config file
// holding every option at its default value.
func (c *CLI) configCommand() *cobra.Command {
	var output string
	var check string

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print a default config file",
		Long: `Config writes every layout option with its default value as TOML. Edit the
result and pass it to compose or inspect with --config. With --check an
existing file is parsed and validated instead.`,
		Example: `  tavola config -o catalogue.toml
  tavola config --check catalogue.toml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if check != "" {
				opts, err := pipeline.LoadConfig(check)
				if err != nil {
					return err
				}
				if opts.Input == "" {
					opts.Input = "."
				}
				if err := opts.Validate(); err != nil {
					return err
				}
				printSuccess("%s is valid", check)
				return nil
			}

			if output == "" {
				return pipeline.WriteConfig(cmd.OutOrStdout(), pipeline.DefaultOptions())
			}
			if _, err := os.Stat(output); err == nil {
				return errors.New(errors.ErrCodeInvalidPath, "%s already exists", output)
			}
			f, err := os.Create(output)
			if err != nil {
				return errors.Wrap(errors.ErrCodeInvalidPath, err, "create %s", output)
			}
			if err := pipeline.WriteConfig(f, pipeline.DefaultOptions()); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			printSuccess("Wrote config")
			printFile(output)
			printNextStep("Use it", appName+" compose --config "+output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write the config to a file instead of stdout")
	cmd.Flags().StringVar(&check, "check", "", "validate an existing config file")

	return cmd
}
