package cli

import (
	"context"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/tavola/pkg/buildinfo"
	"github.com/matzehuels/tavola/pkg/cache"
	"github.com/matzehuels/tavola/pkg/observability"
	"github.com/matzehuels/tavola/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "tavola"

	// cacheURLEnv overrides the default plan cache location.
	cacheURLEnv = "TAVOLA_CACHE_URL"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level. At debug level the pipeline and
// cache hooks are traced through the logger as well.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
	if level <= log.DebugLevel {
		hooks := observability.NewLogHooks(c.Logger)
		observability.SetPipelineHooks(hooks)
		observability.SetCacheHooks(hooks)
	}
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Tavola lays out pottery photographs as catalogue plates",
		Long: `Tavola arranges a folder of object photographs into printable catalogue
plates (tavole) using a grid, puzzle or masonry layout, with captions from a
metadata table, scale bars and plate numbers. Plates are exported as PDF,
PNG/JPG or SVG.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.AddCommand(c.composeCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.fieldsCommand())
	root.AddCommand(c.sizesCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, cacheURL string, noCache bool) (*pipeline.Runner, error) {
	store, err := openCache(ctx, cacheURL, noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(store, nil, c.Logger), nil
}

// openCache opens the plan cache named by url, falling back to the
// environment and then to the per-user cache directory.
func openCache(ctx context.Context, url string, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	return cache.Open(ctx, cacheURL(url))
}

func cacheURL(flag string) string {
	if flag != "" {
		return flag
	}
	return os.Getenv(cacheURLEnv)
}
