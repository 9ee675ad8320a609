package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/wiring/internal/server"
)

// serveCommand runs the HTTP API until interrupted.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Run the HTTP API.

  GET  /api/v1/health
  GET  /api/v1/colors
  POST /api/v1/check?strict=true
  POST /api/v1/render?format=svg&group=<name>

Rendered diagrams share the artifact cache with the render command. Set
cache.redis_url to share it between several servers.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := c.settings()
			if addr == "" {
				addr = cfg.Server.Addr
			}

			opts, err := c.baseOptions()
			if err != nil {
				return err
			}
			runner, err := c.newRunner(ctx, noCache)
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close()

			srv, err := server.New(server.Deps{
				Config: server.Config{
					Addr:         addr,
					MaxBodyBytes: cfg.Server.MaxBodyBytes,
					Defaults:     opts,
				},
				Runner: runner,
				Colors: opts.Colors,
				Logger: c.Logger,
			})
			if err != nil {
				return err
			}

			printInfo("Serving on %s", StyleNumber.Render("http://"+addr))
			printNextStep("Try", "curl --data-binary @harness.yaml http://"+addr+"/api/v1/check")
			return srv.ListenAndServe(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, 127.0.0.1:8080)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}
