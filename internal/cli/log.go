// Package cli implements the wordcanvas command-line interface.
//
// This package provides commands for laying out word clouds, replaying and
// rendering canvas histories, watching a live canvas, serving renders over
// HTTP and managing the local cache. The CLI is built using cobra and
// supports verbose logging via the charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - layout: Place a word list and print the result as a table or JSON
//   - render: Render a history file or remote canvas to SVG, PNG, PDF or JSON
//   - watch: Follow a remote canvas live in the terminal
//   - serve: Run the HTTP render service
//   - cache: Manage the cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. With debug
// logging on, pipeline, cache and HTTP events are logged as they happen.
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates a new logger with timestamp formatting.
// The logger writes to w and filters messages at the specified level.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress tracks the start time of an operation and logs completion with elapsed duration.
// It is safe for sequential use by a single goroutine; concurrent calls to done will race.
type progress struct {
	logger *log.Logger
	start  time.Time
}

// newProgress creates a progress tracker that captures the current time as start.
func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg along with the elapsed time since progress was created.
// Example output: "Rendered 3 formats (12ms)"
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

// =============================================================================
// Observability Hooks
// =============================================================================

// logHooks writes pipeline, cache and HTTP events to the debug log.
type logHooks struct {
	logger *log.Logger
}

func (h *logHooks) OnReplayStart(_ context.Context, canvasID string, entries int) {
	h.logger.Debug("replay started", "canvas", canvasID, "entries", entries)
}

func (h *logHooks) OnReplayComplete(_ context.Context, canvasID string, commands int, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("replay failed", "canvas", canvasID, "err", err, "duration", d)
		return
	}
	h.logger.Debug("replay finished", "canvas", canvasID, "commands", commands, "duration", d)
}

func (h *logHooks) OnLayoutStart(_ context.Context, words int) {
	h.logger.Debug("word cloud layout started", "words", words)
}

func (h *logHooks) OnLayoutComplete(_ context.Context, placed, dropped int, d time.Duration) {
	h.logger.Debug("word cloud layout finished", "placed", placed, "dropped", dropped, "duration", d)
}

func (h *logHooks) OnRenderStart(_ context.Context, formats []string) {
	h.logger.Debug("render started", "formats", formats)
}

func (h *logHooks) OnRenderComplete(_ context.Context, formats []string, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("render failed", "formats", formats, "err", err)
		return
	}
	h.logger.Debug("render finished", "formats", formats, "duration", d)
}

func (h *logHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h *logHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h *logHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "type", keyType, "size", size)
}

func (h *logHooks) OnRequest(_ context.Context, method, host, path string) {
	h.logger.Debug("request", "method", method, "host", host, "path", path)
}

func (h *logHooks) OnResponse(_ context.Context, method, host, path string, status int, d time.Duration) {
	h.logger.Debug("response", "method", method, "host", host, "path", path, "status", status, "duration", d)
}

func (h *logHooks) OnError(_ context.Context, method, host, path string, err error) {
	h.logger.Debug("request failed", "method", method, "host", host, "path", path, "err", err)
}
