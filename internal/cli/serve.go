package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/wordcanvas/internal/server"
	"github.com/matzehuels/wordcanvas/pkg/observability"
)

type serveOpts struct {
	addr    string
	baseURL string
	timeout time.Duration
	noCache bool
}

// serveCommand creates the serve command for the HTTP render service.
func (c *CLI) serveCommand() *cobra.Command {
	var so serveOpts

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve word cloud layouts and canvas renders over HTTP",
		Long: `Serve starts the HTTP render service.

Routes:
  POST /v1/wordcloud             lay out a word cloud, or render it with ?format=
  GET  /v1/canvas/{id}.{format}  replay and render a canvas (svg, png, json, pdf)
  GET  /v1/stats                 pipeline and cache counters
  GET  /healthz                  liveness probe`,
		Example: `  wordcanvas serve
  wordcanvas serve --addr :9000 --api https://canvas.example.com`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd, so)
		},
	}

	cmd.Flags().StringVar(&so.addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().StringVar(&so.baseURL, "api", "", "canvas API base URL")
	cmd.Flags().DurationVar(&so.timeout, "timeout", 0, "per-request timeout (default from config, 30s)")
	cmd.Flags().BoolVar(&so.noCache, "no-cache", false, "disable caching")

	return cmd
}

func (c *CLI) runServe(cmd *cobra.Command, so serveOpts) error {
	ctx := cmd.Context()
	if so.addr == "" {
		so.addr = c.Config.Server.Addr
	}
	if so.timeout <= 0 {
		so.timeout = c.Config.Server.Timeout
	}

	runner, err := c.newRunner(ctx, so.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	client, err := c.newClient(so.baseURL, runner.Cache)
	if err != nil {
		return err
	}

	srv := server.New(runner, client,
		server.WithLogger(c.Logger),
		server.WithTimeout(so.timeout),
		server.WithDefaults(c.Config.PipelineOptions()),
		server.WithCounters(observability.InstallCounters()),
	)
	printKeyValue("Listening", so.addr)
	printKeyValue("Canvas API", client.BaseURL())
	printKeyValue("Cache", c.Config.Cache.Backend)
	return srv.ListenAndServe(ctx, so.addr)
}
