package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/wordcanvas/pkg/buildinfo"
	"github.com/matzehuels/wordcanvas/pkg/cache"
	"github.com/matzehuels/wordcanvas/pkg/canvas"
	"github.com/matzehuels/wordcanvas/pkg/observability"
	"github.com/matzehuels/wordcanvas/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "wordcanvas"
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
	Config Config

	configFile string
}

// New creates a new CLI instance with a default logger and configuration.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: DefaultConfig(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "wordcanvas replays and renders canvas histories",
		Long: `wordcanvas replays the action history of a shared drawing canvas and renders
it to SVG, PNG, PDF or JSON. Word clouds are laid out with an Archimedean
spiral search.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.loadConfig()
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configFile, "config", "", "config file (default: $XDG_CONFIG_HOME/wordcanvas/config.toml)")

	// Register all subcommands
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.watchCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig reads the config file named by --config, or the default one
// if it exists, and installs the logging hooks.
func (c *CLI) loadConfig() error {
	path, required := c.configFile, true
	if path == "" {
		p, err := configPath()
		if err != nil {
			return nil
		}
		path, required = p, false
	}
	cfg, err := LoadConfig(path, required)
	if err != nil {
		return err
	}
	c.Config = cfg
	installHooks(c.Logger)
	return nil
}

// installHooks routes pipeline, cache and HTTP events to the debug log.
func installHooks(l *log.Logger) {
	h := &logHooks{logger: l}
	observability.SetPipelineHooks(h)
	observability.SetCacheHooks(h)
	observability.SetHTTPHooks(h)
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	cc, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(cc, c.keyer(), c.Logger), nil
}

func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	cc, err := cache.Open(ctx, c.Config.CacheOptions(dir))
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	return cc, nil
}

func (c *CLI) keyer() cache.Keyer {
	return c.Config.CacheOptions("").Keyer()
}

// newClient creates a canvas client. An empty baseURL uses the configured one.
func (c *CLI) newClient(baseURL string, cc cache.Cache) (*canvas.Client, error) {
	if baseURL == "" {
		baseURL = c.Config.API.BaseURL
	}
	opts := []canvas.Option{
		canvas.WithLogger(c.Logger),
		canvas.WithHeader("User-Agent", buildinfo.UserAgent()),
	}
	if cc != nil {
		opts = append(opts, canvas.WithCache(cc, c.keyer()))
	}
	return canvas.NewClient(baseURL, opts...)
}

// =============================================================================
// Options Helpers
// =============================================================================

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatSVG}
	}
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}
