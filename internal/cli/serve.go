package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/genposter/internal/server"
)

// serveCommand creates the serve command for the web control panel.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr       string
		redis      string
		noCache    bool
		maxRenders int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the web control panel",
		Long: `Start the web control panel.

The panel shows a form with every poster parameter next to a live preview
and a PNG download link. The same renderer is available as a JSON API under
/api/v1 for scripts.

Seeded posters are cached in the local cache directory, or in redis when
--redis (or ` + envRedisURL + `) is set so several instances can share work.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), addr, redis, noCache, maxRenders)
		},
	}

	cmd.Flags().StringVarP(&addr, "listen", "l", envOr(envListen, server.DefaultAddr), "listen address (env "+envListen+")")
	cmd.Flags().StringVar(&redis, "redis", os.Getenv(envRedisURL), "redis URL for a shared cache (env "+envRedisURL+")")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().IntVar(&maxRenders, "max-renders", 0, "posters rendered at once (default: number of CPUs)")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, addr, redis string, noCache bool, maxRenders int) error {
	runner, err := c.newRunner(ctx, noCache, redis)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	srv := server.New(runner, loggerFromContext(ctx))
	srv.SetMaxRenders(maxRenders)
	if err := srv.ListenAndServe(ctx, addr); err != nil {
		return err
	}

	stats := c.hooks.Stats()
	c.Logger.Info("server stopped",
		"requests", stats.Requests,
		"renders", stats.Renders,
		"failures", stats.Failures,
		"cache_hits", stats.CacheHits)
	return nil
}
