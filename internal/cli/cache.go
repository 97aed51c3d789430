package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/tavola/pkg/cache"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	var url string

	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the layout plan cache",
		Long: `Layouts are cached as plans keyed by the input images and the layout
options, so re-exporting an unchanged folder skips placement. Plans live in
the user cache directory unless --cache-url points elsewhere.`,
	}

	cmd.PersistentFlags().StringVar(&url, "cache-url", "", "plan cache: a directory, file://dir or redis://host:port/db (env "+cacheURLEnv+")")

	cmd.AddCommand(c.cacheClearCommand(&url))
	cmd.AddCommand(c.cachePathCommand(&url))

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand(url *string) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete all cached plans",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openCache(cmd.Context(), *url, false)
			if err != nil {
				return err
			}
			defer store.Close()

			clearer, ok := store.(cache.Clearer)
			if !ok {
				printInfo("Cache is disabled, nothing to clear")
				return nil
			}
			count, err := clearer.Clear(cmd.Context())
			if err != nil {
				return fmt.Errorf("clear cache: %w", err)
			}

			printSuccess("Cleared %d cached plans", count)
			if fc, ok := store.(*cache.FileCache); ok {
				printDetail("Directory: %s", fc.Dir())
			}
			return nil
		},
	}
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand(url *string) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print where plans are cached",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			location := cacheURL(*url)
			if location == "" {
				location = cache.DefaultDir()
			}
			fmt.Fprintln(cmd.OutOrStdout(), location)
			return nil
		},
	}
}
