package actions

import (
	"context"
	"encoding/json"
	"time"

	"github.com/matzehuels/wordcanvas/pkg/observability"
	"github.com/matzehuels/wordcanvas/pkg/palette"
	"github.com/matzehuels/wordcanvas/pkg/scene"
	"github.com/matzehuels/wordcanvas/pkg/wordcloud"
)

// Word cloud typography. The cloud and its title are set in bold monospace.
const (
	wordCloudFont = "Courier New"
	titleSize     = 18.0
)

// WordCloudConfig overrides the word cloud layout parameters. Zero fields
// keep the layout defaults.
type WordCloudConfig struct {
	MinSize   float64 `toml:"min_size"`
	MaxSize   float64 `toml:"max_size"`
	AngleStep float64 `toml:"angle_step"`
	Growth    float64 `toml:"growth"`
	Margin    float64 `toml:"margin"`
	TitleBand float64 `toml:"title_band"`
}

// Frame returns the layout frame for a canvas of the given size.
func (c WordCloudConfig) Frame(width, height float64, titled bool) wordcloud.Frame {
	f := wordcloud.NewFrame(width, height, titled)
	if c.Margin > 0 {
		f.Margin = c.Margin
	}
	if titled && c.TitleBand > 0 {
		f.TitleBand = c.TitleBand
	}
	return f
}

// Options returns the layout options for the configured overrides.
func (c WordCloudConfig) Options() []wordcloud.Option {
	var opts []wordcloud.Option
	if c.MinSize > 0 || c.MaxSize > 0 {
		lo, hi := c.MinSize, c.MaxSize
		if lo <= 0 {
			lo = wordcloud.DefaultMinSize
		}
		if hi <= 0 {
			hi = wordcloud.DefaultMaxSize
		}
		opts = append(opts, wordcloud.WithFontRange(lo, hi))
	}
	if c.AngleStep > 0 || c.Growth > 0 {
		step, growth := c.AngleStep, c.Growth
		if step <= 0 {
			step = wordcloud.DefaultAngleStep
		}
		if growth <= 0 {
			growth = wordcloud.DefaultGrowth
		}
		opts = append(opts, wordcloud.WithSpiral(step, growth))
	}
	return opts
}

// WordCloudParams are the params of a graph_wordcloud action.
type WordCloudParams struct {
	WordTexts   []string  `json:"word_texts"`
	WordValues  []float64 `json:"word_values"`
	Color       string    `json:"color"`
	Theme       string    `json:"theme"`
	Title       string    `json:"title"`
	Transparent bool      `json:"transparent"`
}

// Valid reports whether p describes a drawable cloud.
func (p WordCloudParams) Valid() bool {
	return len(p.WordTexts) > 0 && len(p.WordTexts) == len(p.WordValues) && p.Color != ""
}

func handleWordCloud(s *State, params json.RawMessage) error {
	var p WordCloudParams
	if err := decode(params, &p); err != nil {
		return err
	}
	if !p.Valid() {
		s.Logger.Debug("ignoring word cloud with malformed params",
			"texts", len(p.WordTexts), "values", len(p.WordValues), "color", p.Color)
		return nil
	}

	res := DrawWordCloud(s.Scene, p, s.WordCloud, s.Measurer)
	s.Stats.WordsPlaced += len(res.Words)
	s.Stats.WordsDropped += len(res.Dropped)
	if len(res.Dropped) > 0 {
		s.Logger.Debug("word cloud overflow", "placed", len(res.Words), "dropped", len(res.Dropped))
	}
	return nil
}

// DrawWordCloud lays out a word cloud and appends its draw commands to sc:
// the theme background unless transparent, a centred title, then one text
// command per placed word with its baseline on the bottom of its box.
func DrawWordCloud(sc *scene.Scene, p WordCloudParams, cfg WordCloudConfig, m wordcloud.Measurer) wordcloud.Result {
	if !p.Valid() {
		return wordcloud.Result{}
	}
	style := palette.Theme(p.Theme)
	frame := cfg.Frame(sc.Width, sc.Height, p.Title != "")

	if !p.Transparent {
		sc.Append(scene.Fill{Color: style.Background})
	}
	if p.Title != "" {
		sc.Append(scene.Text{
			Text:   p.Title,
			X:      sc.Width / 2,
			Y:      frame.Margin,
			Font:   wordCloudFont,
			Size:   titleSize,
			Color:  style.Text,
			Bold:   true,
			Anchor: scene.AnchorMiddle,
		})
	}

	ctx := context.Background()
	hooks := observability.Pipeline()
	hooks.OnLayoutStart(ctx, len(p.WordTexts))
	start := time.Now()
	res := wordcloud.Layout(p.WordTexts, p.WordValues, p.Color, frame, m, cfg.Options()...)
	hooks.OnLayoutComplete(ctx, len(res.Words), len(res.Dropped), time.Since(start))

	for _, w := range res.Words {
		sc.Append(scene.Text{
			Text:   w.Text,
			X:      w.X,
			Y:      w.Baseline(),
			Font:   wordCloudFont,
			Size:   w.FontSize,
			Color:  w.Color,
			Bold:   true,
			Anchor: scene.AnchorStart,
		})
	}
	return res
}
