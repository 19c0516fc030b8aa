package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/wordcanvas/pkg/actions"
	"github.com/matzehuels/wordcanvas/pkg/cache"
	"github.com/matzehuels/wordcanvas/pkg/canvas"
	"github.com/matzehuels/wordcanvas/pkg/observability"
	"github.com/matzehuels/wordcanvas/pkg/scene"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and server use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// replayRecord is the cached form of a replay.
type replayRecord struct {
	Scene *scene.Scene  `json:"scene"`
	Stats actions.Stats `json:"stats"`
}

// Execute runs the complete replay → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, history []canvas.Entry, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{
		Artifacts: make(map[string][]byte),
	}
	result.Stats.Entries = len(history)

	// Stage 1: Replay
	replayStart := time.Now()
	sc, stats, hash, sceneHit, err := r.replay(ctx, history, opts)
	if err != nil {
		return nil, fmt.Errorf("replay: %w", err)
	}
	result.Scene = sc
	result.HistoryHash = hash
	result.Stats.Replay = stats
	result.Stats.Commands = sc.Len()
	result.Stats.ReplayTime = time.Since(replayStart)
	result.CacheInfo.SceneHit = sceneHit

	r.Logger.Info("replayed history",
		"entries", len(history),
		"commands", sc.Len(),
		"skipped", stats.Skipped,
		"duration", result.Stats.ReplayTime)

	// Stage 2: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, sc, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// FetchAndExecute loads a remote canvas and runs the pipeline on its history.
// The canvas name, size and background come from its metadata unless opts
// sets them.
func (r *Runner) FetchAndExecute(ctx context.Context, client *canvas.Client, opts Options) (*Result, error) {
	if opts.CanvasID == "" {
		return nil, fmt.Errorf("invalid options: canvas id is required")
	}
	meta, err := client.Metadata(ctx, opts.CanvasID)
	if err != nil {
		return nil, err
	}
	history, err := client.History(ctx, opts.CanvasID)
	if err != nil {
		return nil, err
	}
	ApplyMetadata(&opts, meta)
	return r.Execute(ctx, history, opts)
}

// ReplayWithCacheInfo builds the scene for history with caching and returns
// cache hit info.
func (r *Runner) ReplayWithCacheInfo(ctx context.Context, history []canvas.Entry, opts Options) (*scene.Scene, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForReplay(); err != nil {
		return nil, false, err
	}
	sc, _, _, hit, err := r.replay(ctx, history, opts)
	return sc, hit, err
}

// Replay is a convenience wrapper that calls ReplayWithCacheInfo and discards the cache hit info.
func (r *Runner) Replay(ctx context.Context, history []canvas.Entry, opts Options) (*scene.Scene, error) {
	sc, _, err := r.ReplayWithCacheInfo(ctx, history, opts)
	return sc, err
}

func (r *Runner) replay(ctx context.Context, history []canvas.Entry, opts Options) (*scene.Scene, actions.Stats, string, bool, error) {
	hooks := observability.Pipeline()
	hooks.OnReplayStart(ctx, opts.CanvasID, len(history))
	start := time.Now()

	// Compute cache key
	historyHash, err := cache.HashJSON(history)
	if err != nil {
		hooks.OnReplayComplete(ctx, opts.CanvasID, 0, time.Since(start), err)
		return nil, actions.Stats{}, "", false, fmt.Errorf("serialize history for cache key: %w", err)
	}
	cacheKey := r.Keyer.SceneKey(historyHash, opts.SceneKeyOpts())

	// Try cache first (unless refresh requested)
	if !opts.Refresh {
		var rec replayRecord
		if err := cache.GetJSON(ctx, r.Cache, cacheKey, &rec); err == nil && rec.Scene != nil {
			observability.Cache().OnCacheHit(ctx, "scene")
			hooks.OnReplayComplete(ctx, opts.CanvasID, rec.Scene.Len(), time.Since(start), nil)
			return rec.Scene, rec.Stats, historyHash, true, nil
		}
		observability.Cache().OnCacheMiss(ctx, "scene")
	}

	if err := ctx.Err(); err != nil {
		hooks.OnReplayComplete(ctx, opts.CanvasID, 0, time.Since(start), err)
		return nil, actions.Stats{}, "", false, err
	}
	sc, stats := Replay(history, opts)

	// Cache the result
	if err := cache.SetJSON(ctx, r.Cache, cacheKey, replayRecord{Scene: sc, Stats: stats}, cache.TTLScene); err == nil {
		observability.Cache().OnCacheSet(ctx, "scene", sc.Len())
	}

	hooks.OnReplayComplete(ctx, opts.CanvasID, sc.Len(), time.Since(start), nil)
	return sc, stats, historyHash, false, nil
}

// RenderWithCacheInfo generates artifacts with caching and returns cache hit info.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, sc *scene.Scene, opts Options) (map[string][]byte, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}

	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, opts.Formats)
	start := time.Now()

	// Compute cache key from scene data
	sceneHash, err := cache.HashJSON(sc)
	if err != nil {
		hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
		return nil, false, fmt.Errorf("serialize scene for cache key: %w", err)
	}

	// Serve cached formats, render the rest
	artifacts := make(map[string][]byte, len(opts.Formats))
	var missing []string
	for _, format := range opts.Formats {
		cacheKey := r.Keyer.ArtifactKey(sceneHash, opts.ArtifactKeyOpts(format))
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit && !opts.Refresh {
			observability.Cache().OnCacheHit(ctx, "artifact")
			artifacts[format] = data
			continue
		}
		observability.Cache().OnCacheMiss(ctx, "artifact")
		missing = append(missing, format)
	}
	if len(missing) == 0 {
		hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), nil)
		return artifacts, true, nil // All artifacts from cache
	}

	renderOpts := opts
	renderOpts.Formats = missing
	rendered, err := Render(ctx, sc, renderOpts)
	if err != nil {
		hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
		return nil, false, err
	}

	// Cache each format
	for format, data := range rendered {
		cacheKey := r.Keyer.ArtifactKey(sceneHash, opts.ArtifactKeyOpts(format))
		if err := r.Cache.Set(ctx, cacheKey, data, cache.TTLArtifact); err == nil {
			observability.Cache().OnCacheSet(ctx, "artifact", len(data))
		}
		artifacts[format] = data
	}

	hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), nil)
	return artifacts, false, nil // Cache miss
}

// Render is a convenience wrapper that calls RenderWithCacheInfo and discards the cache hit info.
func (r *Runner) Render(ctx context.Context, sc *scene.Scene, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, sc, opts)
	return artifacts, err
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
