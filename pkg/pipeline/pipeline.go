// Package pipeline provides the core replay pipeline for wordcanvas.
//
// This package implements the complete history → scene → artifact pipeline
// used by the CLI and the HTTP render service. Centralizing it keeps caching,
// defaults and validation identical across entry points.
//
// # Architecture
//
// The pipeline consists of two stages:
//
//  1. Replay: Dispatch every history entry to its action handler, building a
//     [scene.Scene]. Word clouds are laid out here.
//  2. Render: Draw the scene into one or more output formats (SVG, PNG, JSON, PDF)
//
// Each stage can be run independently or as part of the complete pipeline.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    Formats: []string{"svg", "png"},
//	}
//	result, err := runner.Execute(ctx, history, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
//
// Run individual stages:
//
//	// Replay only
//	sc, err := runner.Replay(ctx, history, opts)
//
//	// Render an existing scene
//	artifacts, err := runner.Render(ctx, sc, opts)
//
// [scene.Scene]: github.com/matzehuels/wordcanvas/pkg/scene.Scene
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/wordcanvas/pkg/actions"
	"github.com/matzehuels/wordcanvas/pkg/cache"
	"github.com/matzehuels/wordcanvas/pkg/errors"
	"github.com/matzehuels/wordcanvas/pkg/render/sink"
	"github.com/matzehuels/wordcanvas/pkg/scene"
	"github.com/matzehuels/wordcanvas/pkg/wordcloud"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and server
// =============================================================================

const (
	// DefaultWidth is the canvas width used until a create action sets one.
	DefaultWidth = scene.DefaultWidth

	// DefaultHeight is the canvas height used until a create action sets one.
	DefaultHeight = scene.DefaultHeight

	// DefaultSpeed is the drawing speed multiplier. Larger is slower.
	DefaultSpeed = 1.0

	// DefaultScale is the PNG scale factor.
	DefaultScale = 1.0

	// MaxSize is the largest accepted canvas width or height.
	MaxSize = scene.MaxSize

	// MaxScale is the largest accepted PNG scale factor.
	MaxScale = 4.0

	// MaxWords is the largest accepted standalone word cloud.
	MaxWords = 1000

	// measurerName identifies the text measurer in scene cache keys.
	measurerName = "go-mono-bold"
)

// Format constants, re-exported from the sink package.
const (
	FormatSVG  = sink.FormatSVG
	FormatPNG  = sink.FormatPNG
	FormatJSON = sink.FormatJSON
	FormatPDF  = sink.FormatPDF
)

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the replay pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Replay options
	CanvasID   string  `json:"canvas_id,omitempty"`
	Name       string  `json:"name,omitempty"`
	Width      float64 `json:"width,omitempty"`
	Height     float64 `json:"height,omitempty"`
	Background string  `json:"background,omitempty"`
	Refresh    bool    `json:"refresh,omitempty"`

	// Word cloud overrides
	WordCloud actions.WordCloudConfig `json:"wordcloud,omitempty"`

	// Render options
	Formats []string `json:"formats,omitempty"`
	Scale   float64  `json:"scale,omitempty"`

	// Speed multiplies the delay between revealed commands in live views.
	Speed float64 `json:"speed,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Scene is the replayed draw command list.
	Scene *scene.Scene

	// HistoryHash is the content hash of the replayed history.
	HistoryHash string

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Entries    int
	Commands   int
	Replay     actions.Stats
	ReplayTime time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	SceneHit  bool // Whether the scene came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := errors.ValidateFormat(f, sink.Formats...); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks fields and applies defaults for the full pipeline.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForReplay(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForReplay checks the replay fields and sets their defaults.
func (o *Options) ValidateForReplay() error {
	if o.CanvasID != "" {
		if err := errors.ValidateCanvasID(o.CanvasID); err != nil {
			return err
		}
	}
	if err := validateSize(o.Width, o.Height); err != nil {
		return err
	}
	o.SetReplayDefaults()
	return nil
}

// SetReplayDefaults sets default values for replay.
func (o *Options) SetReplayDefaults() {
	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.Height == 0 {
		o.Height = DefaultHeight
	}
	if o.Background == "" {
		o.Background = scene.DefaultBackground
	}
	if o.Speed <= 0 {
		o.Speed = DefaultSpeed
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.Scale <= 0 {
		o.Scale = DefaultScale
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	if o.Scale > MaxScale {
		return errors.New(errors.ErrCodeInvalidInput, "scale %g exceeds %g", o.Scale, MaxScale)
	}
	return ValidateFormats(o.Formats)
}

// validateSize rejects negative sizes and sizes beyond MaxSize. Zero means
// the default.
func validateSize(width, height float64) error {
	if width < 0 || height < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "canvas size must not be negative")
	}
	if width > MaxSize || height > MaxSize {
		return errors.New(errors.ErrCodeInvalidInput,
			"canvas size %gx%g exceeds %dx%d", width, height, MaxSize, MaxSize)
	}
	return nil
}

// RevealDelay returns the pause between two commands drawn by action in a
// live view: the action's pace scaled by Speed.
func (o *Options) RevealDelay(action string) time.Duration {
	speed := o.Speed
	if speed <= 0 {
		speed = DefaultSpeed
	}
	return time.Duration(float64(actions.Pace(action)) * speed)
}

// SceneKeyOpts returns cache key options for replay.
func (o *Options) SceneKeyOpts() cache.SceneKeyOpts {
	return cache.SceneKeyOpts{
		Width:     o.Width,
		Height:    o.Height,
		MinSize:   orDefault(o.WordCloud.MinSize, wordcloud.DefaultMinSize),
		MaxSize:   orDefault(o.WordCloud.MaxSize, wordcloud.DefaultMaxSize),
		Step:      orDefault(o.WordCloud.AngleStep, wordcloud.DefaultAngleStep),
		Growth:    orDefault(o.WordCloud.Growth, wordcloud.DefaultGrowth),
		Margin:    orDefault(o.WordCloud.Margin, wordcloud.DefaultMargin),
		TitleBand: orDefault(o.WordCloud.TitleBand, wordcloud.DefaultTitleBand),
		Measurer:  measurerName,
		Name:      o.SceneName(),
	}
}

// SceneName returns the title given to replayed scenes: the canvas name,
// falling back to its id.
func (o *Options) SceneName() string {
	if o.Name != "" {
		return o.Name
	}
	return o.CanvasID
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	k := cache.ArtifactKeyOpts{Format: format}
	if format == FormatPNG {
		k.Scale = o.Scale
	}
	return k
}

// SinkOptions returns the options passed to the output sinks.
func (o *Options) SinkOptions() sink.Options {
	return sink.Options{Scale: o.Scale}
}

func orDefault(v, def float64) float64 {
	if v > 0 {
		return v
	}
	return def
}
