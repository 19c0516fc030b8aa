package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/wordcanvas/pkg/pipeline"
	"github.com/matzehuels/wordcanvas/pkg/render/sink"
)

// layoutOpts holds the flags of the layout command.
type layoutOpts struct {
	file   string
	output string
	json   bool
	wc     pipeline.WordCloud
}

// layoutCommand creates the layout command for placing a standalone word cloud.
func (c *CLI) layoutCommand() *cobra.Command {
	opts := layoutOpts{}
	opts.wc.Color = "#4ba3ff"

	cmd := &cobra.Command{
		Use:   "layout [word=value ...]",
		Short: "Lay out a word cloud",
		Long: `Lay out a word cloud with the spiral placement search.

Words come from arguments (go=10 rust=4), from a file (-f) or from stdin
(-f -). Files hold either a JSON word cloud request

  {"word_texts": ["go", "rust"], "word_values": [10, 4], "color": "#4ba3ff"}

or one "word value" pair per line.

The placed words are printed as a table (or JSON with --json). With -o the
cloud is also rendered; the format follows the file extension.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLayout(cmd.Context(), cmd.OutOrStdout(), args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "read words from file (- for stdin)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "render the cloud to this file (.svg, .png, .pdf, .json)")
	cmd.Flags().BoolVar(&opts.json, "json", false, "print the layout as JSON")
	cmd.Flags().StringVar(&opts.wc.Color, "color", opts.wc.Color, "base color the word shades derive from")
	cmd.Flags().StringVar(&opts.wc.Theme, "theme", "", "background theme: dark (default), light")
	cmd.Flags().StringVar(&opts.wc.Title, "title", "", "title drawn above the cloud")
	cmd.Flags().BoolVar(&opts.wc.Transparent, "transparent", false, "skip the theme background")
	cmd.Flags().Float64Var(&opts.wc.Width, "width", pipeline.DefaultWidth, "canvas width")
	cmd.Flags().Float64Var(&opts.wc.Height, "height", pipeline.DefaultHeight, "canvas height")

	return cmd
}

// runLayout gathers the words, lays them out and prints or renders the result.
func (c *CLI) runLayout(ctx context.Context, w io.Writer, args []string, opts layoutOpts) error {
	wc := opts.wc
	switch {
	case opts.file != "":
		fromFile, err := readWordFile(opts.file)
		if err != nil {
			return err
		}
		mergeWordCloud(&wc, fromFile)
	case len(args) > 0:
		texts, values, err := parseWordArgs(args)
		if err != nil {
			return err
		}
		wc.WordTexts, wc.WordValues = texts, values
	default:
		return fmt.Errorf("no words given: pass word=value arguments or --file")
	}

	prog := newProgress(c.Logger)
	res, err := pipeline.Layout(ctx, wc, c.Config.WordCloud)
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Placed %d of %d words", len(res.Words), len(wc.WordTexts)))

	if opts.output != "" {
		if err := writeRendered(res, opts.output); err != nil {
			return err
		}
	}

	if opts.json {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}

	fmt.Fprintln(w, wordTable(res.Words))
	if len(res.Dropped) > 0 {
		names := make([]string, len(res.Dropped))
		for i, d := range res.Dropped {
			names[i] = d.Text
		}
		printWarning("%d words did not fit: %s", len(res.Dropped), strings.Join(names, ", "))
	}
	if opts.output != "" {
		printFile(opts.output)
	}
	return nil
}

// writeRendered renders the cloud's scene in the format named by the
// extension of path.
func writeRendered(res *pipeline.LayoutResult, path string) error {
	format := strings.TrimPrefix(filepath.Ext(path), ".")
	data, err := sink.Render(res.Scene, format, sink.Options{})
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// mergeWordCloud copies words from a file request into wc. Styling in the
// file wins over flag defaults only where the file sets it.
func mergeWordCloud(wc *pipeline.WordCloud, from pipeline.WordCloud) {
	wc.WordTexts, wc.WordValues = from.WordTexts, from.WordValues
	if from.Color != "" {
		wc.Color = from.Color
	}
	if from.Theme != "" {
		wc.Theme = from.Theme
	}
	if from.Title != "" {
		wc.Title = from.Title
	}
	if from.Transparent {
		wc.Transparent = true
	}
	if from.Width > 0 {
		wc.Width = from.Width
	}
	if from.Height > 0 {
		wc.Height = from.Height
	}
}

// parseWordArgs parses word=value arguments. The value may be omitted, in
// which case it is 1.
func parseWordArgs(args []string) ([]string, []float64, error) {
	texts := make([]string, 0, len(args))
	values := make([]float64, 0, len(args))
	for _, a := range args {
		text, raw, found := strings.Cut(a, "=")
		if text == "" {
			return nil, nil, fmt.Errorf("invalid word %q: empty text", a)
		}
		v := 1.0
		if found {
			var err error
			if v, err = strconv.ParseFloat(raw, 64); err != nil {
				return nil, nil, fmt.Errorf("invalid word %q: %w", a, err)
			}
		}
		texts = append(texts, text)
		values = append(values, v)
	}
	return texts, values, nil
}

// readWordFile reads a JSON request or "word value" lines from path.
func readWordFile(path string) (pipeline.WordCloud, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return pipeline.WordCloud{}, fmt.Errorf("read words: %w", err)
	}
	return parseWordData(data)
}

func parseWordData(data []byte) (pipeline.WordCloud, error) {
	var wc pipeline.WordCloud
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "{") {
		if err := json.Unmarshal(data, &wc); err != nil {
			return wc, fmt.Errorf("parse words: %w", err)
		}
		return wc, nil
	}

	sc := bufio.NewScanner(strings.NewReader(trimmed))
	for line := 1; sc.Scan(); line++ {
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Fields(strings.ReplaceAll(text, ",", " "))
		v := 1.0
		if len(fields) > 1 {
			var err error
			if v, err = strconv.ParseFloat(fields[len(fields)-1], 64); err != nil {
				return wc, fmt.Errorf("line %d: invalid value %q", line, fields[len(fields)-1])
			}
			fields = fields[:len(fields)-1]
		}
		wc.WordTexts = append(wc.WordTexts, strings.Join(fields, " "))
		wc.WordValues = append(wc.WordValues, v)
	}
	return wc, sc.Err()
}
