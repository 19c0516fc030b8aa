// Package actions turns a canvas history into a [scene.Scene].
//
// Every history entry names an action. A [Registry] maps action names to
// handlers that decode the entry params and append draw commands to the
// replay [State]. Unknown actions are logged and skipped so one bad entry
// never stops a replay.
package actions

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/wordcanvas/pkg/canvas"
	"github.com/matzehuels/wordcanvas/pkg/fonts"
	"github.com/matzehuels/wordcanvas/pkg/scene"
	"github.com/matzehuels/wordcanvas/pkg/wordcloud"
)

// Sentinel errors returned by [Registry.Dispatch].
var (
	// ErrUnknownAction is returned for action names with no handler.
	ErrUnknownAction = errors.New("unknown action")

	// ErrUnsupportedAction is returned for actions the canvas server knows
	// about but this renderer does not draw.
	ErrUnsupportedAction = errors.New("unsupported action")
)

// Handler applies one action's params to the replay state.
type Handler func(s *State, params json.RawMessage) error

// Stats counts what a replay did.
type Stats struct {
	Applied      int  `json:"applied"`
	Skipped      int  `json:"skipped"`
	Failed       int  `json:"failed"`
	WordsPlaced  int  `json:"words_placed"`
	WordsDropped int  `json:"words_dropped"`
	Terminated   bool `json:"terminated"`
}

// State is the mutable context handlers draw into.
type State struct {
	Scene *scene.Scene
	// Framed is set by the first create action; later creates are ignored.
	Framed    bool
	Measurer  wordcloud.Measurer
	WordCloud WordCloudConfig
	Logger    *log.Logger
	Stats     Stats
}

// NewState returns a state drawing into an empty scene of the given frame.
// The word cloud measurer defaults to the bold monospace face the cloud is
// drawn in.
func NewState(width, height float64, background string) *State {
	if width <= 0 {
		width = scene.DefaultWidth
	}
	if height <= 0 {
		height = scene.DefaultHeight
	}
	if background == "" {
		background = scene.DefaultBackground
	}
	return &State{
		Scene:    scene.New(width, height, background),
		Measurer: fonts.Measurer{Family: fonts.MonoBold},
		Logger:   log.New(io.Discard),
	}
}

// Registry maps action names to handlers.
type Registry struct {
	handlers    map[string]Handler
	unsupported map[string]bool
}

// unsupportedActions are drawn by the browser client but not here.
var unsupportedActions = []string{
	"draw_gradient", "draw_turtle", "draw_raster", "draw_bitmap",
	canvas.TerminalAction,
}

// revealPace is the pause between two commands of one action in a live
// view at speed 1. Unlisted actions appear all at once.
var revealPace = map[string]time.Duration{
	"graph_wordcloud": 10 * time.Millisecond,
	"graph_bar":       40 * time.Millisecond,
	"graph_bubble":    40 * time.Millisecond,
	"graph_histogram": 30 * time.Millisecond,
	"graph_pie":       20 * time.Millisecond,
	"graph_donut":     20 * time.Millisecond,
	"graph_scatter":   20 * time.Millisecond,
	"graph_heatmap":   2 * time.Millisecond,
}

// Pace returns the pause between two revealed commands drawn by action, at
// speed 1.
func Pace(action string) time.Duration {
	return revealPace[action]
}

// NewRegistry returns a registry with every built-in action registered.
func NewRegistry() *Registry {
	r := &Registry{
		handlers:    make(map[string]Handler),
		unsupported: make(map[string]bool),
	}
	for _, name := range unsupportedActions {
		r.unsupported[name] = true
	}
	r.Register("create", handleCreate)
	r.Register("clear", handleClear)
	r.Register("draw_line", handleLine)
	r.Register("draw_circle", handleCircle)
	r.Register("draw_rectangle", handleRectangle)
	r.Register("draw_text", handleText)
	r.Register("draw_point", handlePoint)
	r.Register("draw_arc", handleArc)
	r.Register("draw_polygon", handlePolygon)
	r.Register("draw_bezier", handleBezier)
	r.Register("draw_path", handlePath)
	r.Register("draw_spline", handleSpline)
	r.Register("graph_bar", handleBarChart)
	r.Register("graph_line", handleLineChart)
	r.Register("graph_area", handleAreaChart)
	r.Register("graph_scatter", handleScatterChart)
	r.Register("graph_bubble", handleBubbleChart)
	r.Register("graph_pie", handlePieChart)
	r.Register("graph_donut", handleDonutChart)
	r.Register("graph_radar", handleRadarChart)
	r.Register("graph_heatmap", handleHeatmap)
	r.Register("graph_histogram", handleHistogram)
	r.Register("graph_gauge", handleGauge)
	r.Register("graph_wordcloud", handleWordCloud)
	return r
}

// Register adds or replaces the handler for name.
func (r *Registry) Register(name string, h Handler) {
	r.handlers[name] = h
	delete(r.unsupported, name)
}

// Names returns the registered action names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.handlers))
	for n := range r.handlers {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Supports reports whether name has a handler.
func (r *Registry) Supports(name string) bool {
	_, ok := r.handlers[name]
	return ok
}

// Dispatch applies a single entry. It returns ErrUnknownAction or
// ErrUnsupportedAction (wrapped) when the entry cannot be drawn, and the
// handler's error otherwise. Stats are not touched.
func (r *Registry) Dispatch(s *State, e canvas.Entry) error {
	h, ok := r.handlers[e.Action]
	if !ok {
		if r.unsupported[e.Action] {
			return fmt.Errorf("%w: %s", ErrUnsupportedAction, e.Action)
		}
		return fmt.Errorf("%w: %q", ErrUnknownAction, e.Action)
	}
	params := e.Params
	if len(params) == 0 || string(params) == "null" {
		params = json.RawMessage("{}")
	}
	return h(s, params)
}

// Replay dispatches entries in order, updating s.Stats. Entries that cannot
// be drawn are logged and skipped; a handler error is logged and counted as
// failed. Replay stops after a terminal action.
func (r *Registry) Replay(s *State, entries []canvas.Entry) {
	for i, e := range entries {
		if s.Stats.Terminated {
			return
		}
		err := r.Dispatch(s, e)
		switch {
		case err == nil:
			s.Stats.Applied++
		case IsSkippable(err):
			s.Stats.Skipped++
			s.Logger.Warn("skipping action", "index", i, "action", e.Action, "reason", err)
		default:
			s.Stats.Failed++
			s.Logger.Warn("action failed", "index", i, "action", e.Action, "err", err)
		}
		if e.Terminal() {
			s.Stats.Terminated = true
		}
	}
}

// Replay is a convenience that replays entries into a fresh state using the
// built-in registry.
func Replay(entries []canvas.Entry, width, height float64, background string) (*scene.Scene, Stats) {
	s := NewState(width, height, background)
	NewRegistry().Replay(s, entries)
	return s.Scene, s.Stats
}

// IsSkippable reports whether err only means the action was not drawable.
func IsSkippable(err error) bool {
	return errors.Is(err, ErrUnknownAction) || errors.Is(err, ErrUnsupportedAction)
}
