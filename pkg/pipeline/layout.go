package pipeline

import (
	"context"

	"github.com/matzehuels/wordcanvas/pkg/actions"
	"github.com/matzehuels/wordcanvas/pkg/errors"
	"github.com/matzehuels/wordcanvas/pkg/fonts"
	"github.com/matzehuels/wordcanvas/pkg/scene"
	"github.com/matzehuels/wordcanvas/pkg/wordcloud"
)

// =============================================================================
// Standalone Word Clouds
// =============================================================================

// WordCloud is a word cloud request outside of any canvas history.
type WordCloud struct {
	actions.WordCloudParams
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`
}

// LayoutResult is a laid out standalone word cloud.
type LayoutResult struct {
	wordcloud.Result
	Frame wordcloud.Frame `json:"-"`

	// Scene draws the cloud exactly as a graph_wordcloud action would.
	Scene *scene.Scene `json:"-"`
}

// Layout places a standalone word cloud. Unlike a replayed action, malformed
// input is reported as INVALID_INPUT instead of being ignored.
func Layout(ctx context.Context, wc WordCloud, cfg actions.WordCloudConfig) (*LayoutResult, error) {
	if len(wc.WordTexts) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "word_texts is required")
	}
	if len(wc.WordTexts) != len(wc.WordValues) {
		return nil, errors.New(errors.ErrCodeInvalidInput,
			"word_texts and word_values differ in length (%d != %d)", len(wc.WordTexts), len(wc.WordValues))
	}
	if len(wc.WordTexts) > MaxWords {
		return nil, errors.New(errors.ErrCodeInvalidInput,
			"too many words (%d > %d)", len(wc.WordTexts), MaxWords)
	}
	if err := validateSize(wc.Width, wc.Height); err != nil {
		return nil, err
	}
	if err := errors.ValidateColor(wc.Color); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	w, h := orDefault(wc.Width, DefaultWidth), orDefault(wc.Height, DefaultHeight)
	sc := scene.New(w, h, "")
	if wc.Title != "" {
		sc.Name = wc.Title
	}

	res := actions.DrawWordCloud(sc, wc.WordCloudParams, cfg, fonts.Measurer{Family: fonts.MonoBold})

	return &LayoutResult{
		Result: res,
		Frame:  cfg.Frame(w, h, wc.Title != ""),
		Scene:  sc,
	}, nil
}
