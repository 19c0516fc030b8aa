package observability

import (
	"context"
	"sync/atomic"
	"time"
)

// Counters tallies pipeline, cache and HTTP events. Every event is also
// forwarded to the hooks that were registered when it was installed, so
// debug logging keeps working alongside it.
type Counters struct {
	replays, replayErrors  atomic.Int64
	renders, renderErrors  atomic.Int64
	layouts                atomic.Int64
	wordsPlaced, wordsDrop atomic.Int64
	cacheHits, cacheMisses atomic.Int64
	cacheSets              atomic.Int64
	requests, httpErrors   atomic.Int64

	pipeline PipelineHooks
	cache    CacheHooks
	http     HTTPHooks
}

// InstallCounters registers a new Counters in front of the current hooks.
func InstallCounters() *Counters {
	c := &Counters{pipeline: Pipeline(), cache: Cache(), http: HTTP()}
	SetPipelineHooks(c)
	SetCacheHooks(c)
	SetHTTPHooks(c)
	return c
}

// Snapshot is a point-in-time copy of the counters.
type Snapshot struct {
	Replays      int64 `json:"replays"`
	ReplayErrors int64 `json:"replay_errors"`
	Layouts      int64 `json:"layouts"`
	WordsPlaced  int64 `json:"words_placed"`
	WordsDropped int64 `json:"words_dropped"`
	Renders      int64 `json:"renders"`
	RenderErrors int64 `json:"render_errors"`
	CacheHits    int64 `json:"cache_hits"`
	CacheMisses  int64 `json:"cache_misses"`
	CacheSets    int64 `json:"cache_sets"`
	Requests     int64 `json:"upstream_requests"`
	HTTPErrors   int64 `json:"upstream_errors"`
}

// Snapshot reads all counters. Counters keep moving while it runs, so the
// values are not a consistent cut.
func (c *Counters) Snapshot() Snapshot {
	return Snapshot{
		Replays:      c.replays.Load(),
		ReplayErrors: c.replayErrors.Load(),
		Layouts:      c.layouts.Load(),
		WordsPlaced:  c.wordsPlaced.Load(),
		WordsDropped: c.wordsDrop.Load(),
		Renders:      c.renders.Load(),
		RenderErrors: c.renderErrors.Load(),
		CacheHits:    c.cacheHits.Load(),
		CacheMisses:  c.cacheMisses.Load(),
		CacheSets:    c.cacheSets.Load(),
		Requests:     c.requests.Load(),
		HTTPErrors:   c.httpErrors.Load(),
	}
}

func (c *Counters) OnReplayStart(ctx context.Context, canvasID string, entries int) {
	c.pipeline.OnReplayStart(ctx, canvasID, entries)
}

func (c *Counters) OnReplayComplete(ctx context.Context, canvasID string, commands int, d time.Duration, err error) {
	c.replays.Add(1)
	if err != nil {
		c.replayErrors.Add(1)
	}
	c.pipeline.OnReplayComplete(ctx, canvasID, commands, d, err)
}

func (c *Counters) OnLayoutStart(ctx context.Context, words int) {
	c.pipeline.OnLayoutStart(ctx, words)
}

func (c *Counters) OnLayoutComplete(ctx context.Context, placed, dropped int, d time.Duration) {
	c.layouts.Add(1)
	c.wordsPlaced.Add(int64(placed))
	c.wordsDrop.Add(int64(dropped))
	c.pipeline.OnLayoutComplete(ctx, placed, dropped, d)
}

func (c *Counters) OnRenderStart(ctx context.Context, formats []string) {
	c.pipeline.OnRenderStart(ctx, formats)
}

func (c *Counters) OnRenderComplete(ctx context.Context, formats []string, d time.Duration, err error) {
	c.renders.Add(1)
	if err != nil {
		c.renderErrors.Add(1)
	}
	c.pipeline.OnRenderComplete(ctx, formats, d, err)
}

func (c *Counters) OnCacheHit(ctx context.Context, keyType string) {
	c.cacheHits.Add(1)
	c.cache.OnCacheHit(ctx, keyType)
}

func (c *Counters) OnCacheMiss(ctx context.Context, keyType string) {
	c.cacheMisses.Add(1)
	c.cache.OnCacheMiss(ctx, keyType)
}

func (c *Counters) OnCacheSet(ctx context.Context, keyType string, size int) {
	c.cacheSets.Add(1)
	c.cache.OnCacheSet(ctx, keyType, size)
}

func (c *Counters) OnRequest(ctx context.Context, method, host, path string) {
	c.requests.Add(1)
	c.http.OnRequest(ctx, method, host, path)
}

func (c *Counters) OnResponse(ctx context.Context, method, host, path string, status int, d time.Duration) {
	c.http.OnResponse(ctx, method, host, path, status, d)
}

func (c *Counters) OnError(ctx context.Context, method, host, path string, err error) {
	c.httpErrors.Add(1)
	c.http.OnError(ctx, method, host, path, err)
}

var (
	_ PipelineHooks = (*Counters)(nil)
	_ CacheHooks    = (*Counters)(nil)
	_ HTTPHooks     = (*Counters)(nil)
)
