package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/wordcanvas/pkg/actions"
	"github.com/matzehuels/wordcanvas/pkg/cache"
	"github.com/matzehuels/wordcanvas/pkg/canvas"
	"github.com/matzehuels/wordcanvas/pkg/errors"
)

func entry(t *testing.T, action string, params any) canvas.Entry {
	t.Helper()
	e, err := canvas.NewEntry(action, params)
	if err != nil {
		t.Fatal(err)
	}
	return e
}

func sampleHistory(t *testing.T) []canvas.Entry {
	return []canvas.Entry{
		entry(t, "create", map[string]any{"x": 400, "y": 300, "color": "#222222"}),
		entry(t, "draw_line", map[string]any{"start_x": 0, "start_y": 0, "end_x": 10, "end_y": 10, "color": "#ffffff"}),
		entry(t, "graph_wordcloud", actions.WordCloudParams{
			WordTexts:  []string{"go", "cloud", "spiral"},
			WordValues: []float64{10, 5, 1},
			Color:      "#4ba3ff",
			Title:      "Words",
		}),
		entry(t, "draw_turtle", map[string]any{}),
	}
}

func newTestRunner(t *testing.T) *Runner {
	t.Helper()
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return NewRunner(fc, nil, log.New(&bytes.Buffer{}))
}

func TestReplay(t *testing.T) {
	sc, stats := Replay(sampleHistory(t), Options{CanvasID: "demo"})

	if sc.Width != 400 || sc.Height != 300 {
		t.Errorf("size = %vx%v, want 400x300 from create", sc.Width, sc.Height)
	}
	if sc.Name != "demo" {
		t.Errorf("Name = %q, want canvas id", sc.Name)
	}
	if stats.Applied != 3 || stats.Skipped != 1 {
		t.Errorf("stats = %+v, want 3 applied and 1 skipped", stats)
	}
	if stats.WordsPlaced != 3 {
		t.Errorf("WordsPlaced = %d, want 3", stats.WordsPlaced)
	}
}

func TestApplyMetadata(t *testing.T) {
	m := &canvas.Metadata{Name: "Board", Width: 1024, Height: 768, BgColor: "#fff"}

	var opts Options
	ApplyMetadata(&opts, m)
	if opts.Width != 1024 || opts.Height != 768 || opts.Background != "#fff" || opts.Name != "Board" {
		t.Errorf("ApplyMetadata() = %+v", opts)
	}

	opts = Options{Width: 200}
	ApplyMetadata(&opts, m)
	if opts.Width != 200 {
		t.Errorf("explicit width overwritten: %v", opts.Width)
	}

	ApplyMetadata(&opts, nil)

	opts = Options{}
	ApplyMetadata(&opts, &canvas.Metadata{Width: 1 << 20, Height: 1 << 20})
	if opts.Width != MaxSize || opts.Height != MaxSize {
		t.Errorf("oversized metadata = %vx%v, want clamped to %d", opts.Width, opts.Height, MaxSize)
	}
}

func TestRunnerExecuteCaches(t *testing.T) {
	ctx := context.Background()
	r := newTestRunner(t)
	history := sampleHistory(t)
	opts := Options{Formats: []string{FormatSVG, FormatJSON}}

	first, err := r.Execute(ctx, history, opts)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if first.CacheInfo.SceneHit || first.CacheInfo.RenderHit {
		t.Errorf("first run should miss, got %+v", first.CacheInfo)
	}
	if len(first.Artifacts) != 2 {
		t.Fatalf("got %d artifacts, want 2", len(first.Artifacts))
	}
	if !strings.Contains(string(first.Artifacts[FormatSVG]), "<svg") {
		t.Error("svg artifact is not an SVG document")
	}
	if first.Stats.Entries != 4 || first.Stats.Commands == 0 {
		t.Errorf("stats = %+v", first.Stats)
	}

	second, err := r.Execute(ctx, history, opts)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !second.CacheInfo.SceneHit || !second.CacheInfo.RenderHit {
		t.Errorf("second run should hit, got %+v", second.CacheInfo)
	}
	if second.Stats.Replay != first.Stats.Replay {
		t.Errorf("cached stats = %+v, want %+v", second.Stats.Replay, first.Stats.Replay)
	}
	if !bytes.Equal(first.Artifacts[FormatSVG], second.Artifacts[FormatSVG]) {
		t.Error("cached svg differs from rendered svg")
	}
	if second.HistoryHash != first.HistoryHash {
		t.Error("history hash should be stable")
	}
}

func TestRunnerRefreshBypassesCache(t *testing.T) {
	ctx := context.Background()
	r := newTestRunner(t)
	history := sampleHistory(t)

	if _, err := r.Execute(ctx, history, Options{}); err != nil {
		t.Fatal(err)
	}
	res, err := r.Execute(ctx, history, Options{Refresh: true})
	if err != nil {
		t.Fatal(err)
	}
	if res.CacheInfo.SceneHit || res.CacheInfo.RenderHit {
		t.Errorf("refresh should bypass the cache, got %+v", res.CacheInfo)
	}
}

func TestRunnerPartialRenderHit(t *testing.T) {
	ctx := context.Background()
	r := newTestRunner(t)
	sc, err := r.Replay(ctx, sampleHistory(t), Options{})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := r.Render(ctx, sc, Options{Formats: []string{FormatSVG}}); err != nil {
		t.Fatal(err)
	}
	arts, hit, err := r.RenderWithCacheInfo(ctx, sc, Options{Formats: []string{FormatSVG, FormatJSON}})
	if err != nil {
		t.Fatal(err)
	}
	if hit {
		t.Error("json was never rendered, so not every format can hit")
	}
	if len(arts) != 2 {
		t.Errorf("got %d artifacts, want 2", len(arts))
	}
}

func TestRunnerInvalidFormat(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	_, err := r.Execute(context.Background(), nil, Options{Formats: []string{"gif"}})
	if !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("error = %v, want INVALID_FORMAT", err)
	}
}

func TestRunnerCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := NewRunner(nil, nil, nil)
	if _, err := r.Execute(ctx, sampleHistory(t), Options{}); err == nil {
		t.Error("Execute on a cancelled context should fail")
	}
}

func TestRunnerFetchAndExecute(t *testing.T) {
	history := sampleHistory(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/object/board-1":
			json.NewEncoder(w).Encode(canvas.Metadata{ID: "board-1", Name: "Team board", Width: 640, Height: 480})
		case "/object/board-1/history":
			json.NewEncoder(w).Encode(history)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	client, err := canvas.NewClient(srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	r := NewRunner(nil, nil, log.New(&bytes.Buffer{}))

	res, err := r.FetchAndExecute(context.Background(), client, Options{CanvasID: "board-1"})
	if err != nil {
		t.Fatalf("FetchAndExecute: %v", err)
	}
	if res.Scene.Name != "Team board" {
		t.Errorf("Name = %q, want metadata name", res.Scene.Name)
	}
	// The create action in the history resizes the canvas.
	if res.Scene.Width != 400 {
		t.Errorf("Width = %v, want 400", res.Scene.Width)
	}

	if _, err := r.FetchAndExecute(context.Background(), client, Options{CanvasID: "missing"}); !errors.Is(err, errors.ErrCodeCanvasNotFound) {
		t.Errorf("missing canvas error = %v, want CANVAS_NOT_FOUND", err)
	}
	if _, err := r.FetchAndExecute(context.Background(), client, Options{}); err == nil {
		t.Error("FetchAndExecute without canvas id should fail")
	}
}

func TestLayout(t *testing.T) {
	ctx := context.Background()
	wc := WordCloud{
		WordCloudParams: actions.WordCloudParams{
			WordTexts:  []string{"go", "rust", "zig"},
			WordValues: []float64{3, 2, 1},
			Color:      "#4ba3ff",
		},
	}

	res, err := Layout(ctx, wc, actions.WordCloudConfig{})
	if err != nil {
		t.Fatalf("Layout: %v", err)
	}
	if len(res.Words) != 3 || res.Words[0].Text != "go" {
		t.Errorf("words = %+v", res.Words)
	}
	if res.Scene.Width != DefaultWidth {
		t.Errorf("scene width = %v, want default", res.Scene.Width)
	}

	bad := []struct {
		name string
		mod  func(*WordCloud)
		code errors.Code
	}{
		{"no words", func(w *WordCloud) { w.WordTexts, w.WordValues = nil, nil }, errors.ErrCodeInvalidInput},
		{"length mismatch", func(w *WordCloud) { w.WordValues = w.WordValues[:1] }, errors.ErrCodeInvalidInput},
		{"bad color", func(w *WordCloud) { w.Color = "blue" }, errors.ErrCodeInvalidColor},
		{"too tall", func(w *WordCloud) { w.Width, w.Height = 90, 2e7 }, errors.ErrCodeInvalidInput},
		{"negative width", func(w *WordCloud) { w.Width = -5 }, errors.ErrCodeInvalidInput},
		{"too many words", func(w *WordCloud) {
			w.WordTexts = make([]string, MaxWords+1)
			w.WordValues = make([]float64, MaxWords+1)
		}, errors.ErrCodeInvalidInput},
	}
	for _, tt := range bad {
		t.Run(tt.name, func(t *testing.T) {
			in := wc
			in.WordValues = append([]float64(nil), wc.WordValues...)
			tt.mod(&in)
			if _, err := Layout(ctx, in, actions.WordCloudConfig{}); !errors.Is(err, tt.code) {
				t.Errorf("error = %v, want %s", err, tt.code)
			}
		})
	}
}
