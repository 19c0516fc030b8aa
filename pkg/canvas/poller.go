package canvas

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// DefaultPollInterval matches the refresh rate of the browser client.
const DefaultPollInterval = 250 * time.Millisecond

// HistorySource fetches a canvas history. [*Client] implements it.
type HistorySource interface {
	History(ctx context.Context, id string) ([]Entry, error)
}

// Batch is one delivery from a [Poller]: either the entries appended since
// the previous batch, or a fetch error.
type Batch struct {
	// Offset is the history index of Entries[0].
	Offset  int
	Entries []Entry
	// Done is set on the final batch, after a terminal action.
	Done bool
	Err  error
}

// Poller watches a canvas history and emits only what is new.
type Poller struct {
	source   HistorySource
	id       string
	interval time.Duration
	logger   *log.Logger
	rendered int
}

// PollerOption configures a [Poller].
type PollerOption func(*Poller)

// WithInterval sets the poll interval. Non-positive values are ignored.
func WithInterval(d time.Duration) PollerOption {
	return func(p *Poller) {
		if d > 0 {
			p.interval = d
		}
	}
}

// WithPollerLogger sets the poller's logger.
func WithPollerLogger(l *log.Logger) PollerOption {
	return func(p *Poller) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithOffset skips the first n entries, e.g. ones already replayed.
func WithOffset(n int) PollerOption {
	return func(p *Poller) { p.rendered = max(n, 0) }
}

// NewPoller creates a poller for canvas id.
func NewPoller(source HistorySource, id string, opts ...PollerOption) *Poller {
	p := &Poller{
		source:   source,
		id:       id,
		interval: DefaultPollInterval,
		logger:   log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Start polls in a new goroutine. The first fetch happens immediately. The
// returned channel is closed when ctx ends or after the batch containing a
// terminal action.
//
// Fetch errors are delivered as batches and polling continues; a history
// that shrinks is ignored until it grows past what was already emitted.
func (p *Poller) Start(ctx context.Context) <-chan Batch {
	out := make(chan Batch)
	go func() {
		defer close(out)
		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()

		for {
			b, ok := p.poll(ctx)
			if ok {
				select {
				case out <- b:
				case <-ctx.Done():
					return
				}
				if b.Done {
					return
				}
			}
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()
	return out
}

// poll performs one fetch. ok is false when there is nothing to deliver.
func (p *Poller) poll(ctx context.Context) (Batch, bool) {
	entries, err := p.source.History(ctx, p.id)
	if err != nil {
		if ctx.Err() != nil {
			return Batch{}, false
		}
		p.logger.Warn("poll failed", "canvas", p.id, "err", err)
		return Batch{Offset: p.rendered, Err: err}, true
	}
	if len(entries) <= p.rendered {
		return Batch{}, false
	}

	b := Batch{Offset: p.rendered}
	for _, e := range entries[p.rendered:] {
		b.Entries = append(b.Entries, e)
		if e.Terminal() {
			b.Done = true
			break
		}
	}
	p.rendered += len(b.Entries)
	p.logger.Debug("new entries", "canvas", p.id, "count", len(b.Entries), "total", p.rendered)
	return b, true
}

// Rendered returns how many history entries have been emitted so far.
// It must not be called concurrently with a running Start loop.
func (p *Poller) Rendered() int { return p.rendered }
