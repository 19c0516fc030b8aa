// Package canvas talks to a remote canvas server: it fetches canvas
// metadata and the append-only action history, and polls the history for
// new entries.
//
// The server exposes two read endpoints:
//
//	GET {base}/object/{id}          → Metadata
//	GET {base}/object/{id}/history  → []Entry
//
// Histories can also be read from and written to local JSON files for
// offline rendering.
package canvas

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// Sentinel errors returned by [Client].
var (
	// ErrNotFound is returned when the canvas does not exist.
	ErrNotFound = errors.New("canvas not found")

	// ErrNetwork is returned for HTTP failures (timeouts, connection errors, 5xx responses).
	ErrNetwork = errors.New("network error")
)

// TerminalAction ends a history: once it is seen nothing after it is drawn
// and polling stops.
const TerminalAction = "render_threejs"

// Entry is one action in a canvas history.
type Entry struct {
	Timestamp string          `json:"timestamp"`
	Action    string          `json:"action"`
	Params    json.RawMessage `json:"params"`
}

// Terminal reports whether e ends the history.
func (e Entry) Terminal() bool { return e.Action == TerminalAction }

// Metadata describes a canvas.
type Metadata struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	BgColor   string `json:"bg_color"`
	CreatedAt string `json:"created_at"`
}

// NewEntry builds an entry from an action name and a params value.
func NewEntry(action string, params any) (Entry, error) {
	raw, err := json.Marshal(params)
	if err != nil {
		return Entry{}, fmt.Errorf("encode %s params: %w", action, err)
	}
	return Entry{Action: action, Params: raw}, nil
}

// ReadHistoryFile loads a history saved by [WriteHistoryFile] or downloaded
// from the history endpoint.
func ReadHistoryFile(path string) ([]Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse history %s: %w", path, err)
	}
	return entries, nil
}

// WriteHistoryFile saves entries as indented JSON.
func WriteHistoryFile(path string, entries []Entry) error {
	if entries == nil {
		entries = []Entry{}
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0644)
}
