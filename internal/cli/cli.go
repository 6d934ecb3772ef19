// Package cli implements the genposter command-line interface.
package cli

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/genposter/pkg/buildinfo"
	"github.com/matzehuels/genposter/pkg/cache"
	"github.com/matzehuels/genposter/pkg/observability"
	"github.com/matzehuels/genposter/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "genposter"

	// envRedisURL selects a shared redis cache instead of the local file cache.
	envRedisURL = "GENPOSTER_REDIS_URL"

	// envListen overrides the serve command's listen address.
	envListen = "GENPOSTER_LISTEN"
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

	hooks *observability.LogHooks
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "genposter renders layered generative posters",
		Long: `genposter renders abstract posters from stacked, shaded shapes.

Every poster is fully determined by its parameters and seed: render the same
seed twice and you get the same pixels. Without a seed a fresh one is drawn
and reported so a lucky result can be reproduced.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.AddCommand(c.renderCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.studioCommand())
	root.AddCommand(c.presetCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use. When redisURL is set the
// runner shares a redis cache, otherwise it uses the local file cache.
func (c *CLI) newRunner(ctx context.Context, noCache bool, redisURL string) (*pipeline.Runner, error) {
	cc, err := c.newCache(ctx, noCache, redisURL)
	if err != nil {
		return nil, err
	}
	if c.hooks == nil {
		c.hooks = observability.NewLogHooks(c.Logger)
		c.hooks.Register()
	}
	return pipeline.NewRunner(cc, cache.NewScopedKeyer(nil, appName+":"), c.Logger), nil
}

func (c *CLI) newCache(ctx context.Context, noCache bool, redisURL string) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	if redisURL != "" {
		rc, err := cache.NewRedisCache(ctx, redisURL)
		if err != nil {
			return nil, err
		}
		c.Logger.Debug("using redis cache")
		return rc, nil
	}
	dir, err := cacheDir()
	if err != nil {
		c.Logger.Warn("cache disabled", "err", err)
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/genposter/).
func cacheDir() (string, error) {
	return cache.DefaultDir()
}

// =============================================================================
// Options Helpers
// =============================================================================

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.DefaultFormat}
	}
	parts := strings.Split(s, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// envOr returns the environment variable key, or fallback when unset.
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
