package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/wordcanvas/pkg/canvas"
	"github.com/matzehuels/wordcanvas/pkg/pipeline"
	"github.com/matzehuels/wordcanvas/pkg/render/sink"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output   string // output file (single format) or base path (multiple)
	formats  string // comma-separated output formats
	canvasID string // render a remote canvas instead of a file
	baseURL  string // canvas server address
	noCache  bool
	opts     pipeline.Options
}

// renderCommand creates the render command for replaying a history.
func (c *CLI) renderCommand() *cobra.Command {
	var ro renderOpts

	cmd := &cobra.Command{
		Use:   "render [history.json]",
		Short: "Replay a canvas history and render it",
		Long: `Replay a canvas history and render the result.

The history is either a local JSON file (an array of {timestamp, action,
params} entries) or a remote canvas given with --canvas. Actions this
renderer does not draw are skipped with a warning.

Replays and renders are cached; --refresh recomputes them.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 && ro.canvasID == "" {
				return fmt.Errorf("either a history file or --canvas is required")
			}
			if len(args) == 1 && ro.canvasID != "" {
				return fmt.Errorf("a history file and --canvas are mutually exclusive")
			}
			input := ""
			if len(args) == 1 {
				input = args[0]
			}
			return c.runRender(cmd.Context(), input, ro)
		},
	}

	cmd.Flags().StringVarP(&ro.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&ro.formats, "format", "f", "", "output format(s): svg (default), png, pdf, json (comma-separated)")
	cmd.Flags().StringVar(&ro.canvasID, "canvas", "", "remote canvas id")
	cmd.Flags().StringVar(&ro.baseURL, "api", "", "canvas server URL (default from config)")
	cmd.Flags().BoolVar(&ro.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&ro.opts.Refresh, "refresh", false, "ignore cached results")
	cmd.Flags().Float64Var(&ro.opts.Width, "width", 0, "canvas width before any create action (default 800)")
	cmd.Flags().Float64Var(&ro.opts.Height, "height", 0, "canvas height before any create action (default 600)")
	cmd.Flags().Float64Var(&ro.opts.Scale, "scale", 0, "PNG scale factor (default from config)")

	return cmd
}

// runRender loads the history, runs the pipeline and writes one file per format.
func (c *CLI) runRender(ctx context.Context, input string, ro renderOpts) error {
	opts := c.mergeOptions(ro.opts)
	opts.Formats = parseFormats(ro.formats)
	opts.CanvasID = ro.canvasID
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, ro.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinner(ctx, os.Stderr, "Rendering...")
	spinner.Start()

	var result *pipeline.Result
	if ro.canvasID != "" {
		client, cerr := c.newClient(ro.baseURL, runner.Cache)
		if cerr != nil {
			spinner.StopWithError("Invalid canvas server")
			return cerr
		}
		result, err = runner.FetchAndExecute(ctx, client, opts)
	} else {
		var history []canvas.Entry
		history, err = canvas.ReadHistoryFile(input)
		if err == nil {
			result, err = runner.Execute(ctx, history, opts)
		}
	}
	if err != nil {
		spinner.StopWithError("Render failed")
		return err
	}
	spinner.Stop()

	base := basePath(ro.output, input, ro.canvasID)
	single := len(opts.Formats) == 1 && ro.output != ""

	printSuccess("Rendered %s", displayName(input, ro.canvasID))
	for _, format := range sortedFormats(result.Artifacts) {
		path := base + "." + format
		if single {
			path = ro.output
		}
		if err := os.WriteFile(path, result.Artifacts[format], 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		printFile(path)
	}
	printStats(result.Stats.Replay, result.Stats.Commands, result.CacheInfo.SceneHit)
	if ro.canvasID != "" {
		printNextStep("Follow it live", "wordcanvas watch "+ro.canvasID)
	}
	return nil
}

// mergeOptions layers flag values over the configured defaults.
func (c *CLI) mergeOptions(flags pipeline.Options) pipeline.Options {
	opts := c.Config.PipelineOptions()
	opts.Logger = c.Logger
	opts.Refresh = flags.Refresh
	opts.Width, opts.Height = flags.Width, flags.Height
	if flags.Scale > 0 {
		opts.Scale = flags.Scale
	}
	if flags.Speed > 0 {
		opts.Speed = flags.Speed
	}
	return opts
}

// basePath derives the base output path. An explicit output loses a known
// format extension; otherwise the input file name (or canvas id) is used.
func basePath(output, input, canvasID string) string {
	if output != "" {
		ext := filepath.Ext(output)
		if slices.Contains(sink.Formats, strings.TrimPrefix(ext, ".")) {
			return strings.TrimSuffix(output, ext)
		}
		return output
	}
	if input != "" {
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	return canvasID
}

func displayName(input, canvasID string) string {
	if canvasID != "" {
		return "canvas " + canvasID
	}
	return input
}

func sortedFormats(artifacts map[string][]byte) []string {
	formats := make([]string, 0, len(artifacts))
	for f := range artifacts {
		formats = append(formats, f)
	}
	sort.Strings(formats)
	return formats
}
