// Package pkg provides the core libraries for wordcanvas.
//
// # Overview
//
// wordcanvas replays the action history of a shared drawing canvas and
// renders the result. Its signature action is the word cloud: words are
// sized by value and placed one by one along an Archimedean spiral until
// they fit without overlapping anything placed before them.
//
// # Architecture
//
// The typical data flow:
//
//	Canvas history (remote API or JSON file)
//	         ↓
//	    [canvas] package (fetch, poll, entries)
//	         ↓
//	    [actions] package (replay entries into draw commands)
//	         ↓
//	    [wordcloud] package (spiral placement for graph_wordcloud)
//	         ↓
//	    [scene] package (ordered draw commands, progressive reveal)
//	         ↓
//	    [render/sink] package (SVG, PNG, PDF, JSON)
//
// [pipeline] ties the stages together with caching through [cache].
//
// # Quick Start
//
// Lay out a word cloud without any canvas:
//
//	res := wordcloud.Layout(
//	    []string{"go", "rust", "zig"},
//	    []float64{10, 5, 1},
//	    "#4ba3ff",
//	    wordcloud.NewFrame(800, 600, false),
//	    fonts.Measurer{Family: fonts.MonoBold},
//	)
//	for _, w := range res.Words {
//	    fmt.Println(w.Text, w.X, w.Y, w.FontSize)
//	}
//
// Replay and render a history file:
//
//	history, _ := canvas.ReadHistoryFile("board.json")
//	runner := pipeline.NewRunner(nil, nil, nil)
//	res, _ := runner.Execute(ctx, history, pipeline.Options{
//	    CanvasID: "board",
//	    Formats:  []string{"svg", "png"},
//	})
//	os.WriteFile("board.svg", res.Artifacts["svg"], 0o644)
//
// # Main Packages
//
// [wordcloud] - Spiral placement: font sizing, ordering, the spiral
// generator, bounds and overlap tests. Pure and deterministic.
//
// [palette] - Color shades derived from a base color, themes and CSS
// color sanitizing.
//
// [scene] - The draw command model shared by every sink, plus [scene.Reveal]
// for paced, progressive drawing.
//
// [actions] - The action registry: one handler per canvas action, turning
// entries into scene commands. Unknown actions are skipped and counted.
//
// [canvas] - Canvas API client (metadata and history) and a poller that
// emits only new history entries.
//
// [fonts] - Embedded Go fonts for text measurement and rasterizing.
//
// [render/sink] - Output formats.
//
// [pipeline] - Orchestration (replay → render) with stage caching.
//
// ## Infrastructure
//
// [cache] - Cache interface with file, Redis, MongoDB and null backends.
//
// [httputil] - Retry with exponential backoff for flaky upstreams.
//
// [observability] - Hook registry for pipeline, cache and HTTP events.
//
// [errors] - Coded errors and input validation.
//
// [buildinfo] - Version information set at build time.
//
// [canvas]: github.com/matzehuels/wordcanvas/pkg/canvas
// [actions]: github.com/matzehuels/wordcanvas/pkg/actions
// [wordcloud]: github.com/matzehuels/wordcanvas/pkg/wordcloud
// [scene]: github.com/matzehuels/wordcanvas/pkg/scene
// [scene.Reveal]: github.com/matzehuels/wordcanvas/pkg/scene.Reveal
// [render/sink]: github.com/matzehuels/wordcanvas/pkg/render/sink
// [pipeline]: github.com/matzehuels/wordcanvas/pkg/pipeline
// [cache]: github.com/matzehuels/wordcanvas/pkg/cache
// [palette]: github.com/matzehuels/wordcanvas/pkg/palette
// [fonts]: github.com/matzehuels/wordcanvas/pkg/fonts
// [httputil]: github.com/matzehuels/wordcanvas/pkg/httputil
// [observability]: github.com/matzehuels/wordcanvas/pkg/observability
// [errors]: github.com/matzehuels/wordcanvas/pkg/errors
// [buildinfo]: github.com/matzehuels/wordcanvas/pkg/buildinfo
package pkg
