package canvas

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

// fakeSource serves a history that grows between calls.
type fakeSource struct {
	mu    sync.Mutex
	steps [][]Entry
	errs  []error
	calls int
}

func (f *fakeSource) History(ctx context.Context, id string) ([]Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := min(f.calls, len(f.steps)-1)
	f.calls++
	if i < len(f.errs) && f.errs[i] != nil {
		return nil, f.errs[i]
	}
	return f.steps[i], nil
}

func entries(actions ...string) []Entry {
	out := make([]Entry, len(actions))
	for i, a := range actions {
		out[i] = Entry{Action: a}
	}
	return out
}

func collectBatches(t *testing.T, ch <-chan Batch, n int) []Batch {
	t.Helper()
	var got []Batch
	timeout := time.After(2 * time.Second)
	for len(got) < n {
		select {
		case b, ok := <-ch:
			if !ok {
				return got
			}
			got = append(got, b)
		case <-timeout:
			t.Fatalf("timed out after %d batches", len(got))
		}
	}
	return got
}

func TestPollerEmitsOnlyNewEntries(t *testing.T) {
	src := &fakeSource{steps: [][]Entry{
		entries("create"),
		entries("create"),
		entries("create", "draw_line", "draw_point"),
	}}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	p := NewPoller(src, "abc", WithInterval(time.Millisecond))
	got := collectBatches(t, p.Start(ctx), 2)

	if len(got) != 2 {
		t.Fatalf("got %d batches, want 2", len(got))
	}
	if got[0].Offset != 0 || len(got[0].Entries) != 1 {
		t.Errorf("first batch = %+v", got[0])
	}
	if got[1].Offset != 1 || len(got[1].Entries) != 2 || got[1].Entries[0].Action != "draw_line" {
		t.Errorf("second batch = %+v", got[1])
	}
}

func TestPollerStopsAtTerminal(t *testing.T) {
	src := &fakeSource{steps: [][]Entry{
		entries("create", "render_threejs", "draw_line"),
	}}
	p := NewPoller(src, "abc", WithInterval(time.Millisecond))
	ch := p.Start(context.Background())

	got := collectBatches(t, ch, 2)
	if len(got) != 1 {
		t.Fatalf("got %d batches, want 1 then close", len(got))
	}
	if !got[0].Done || len(got[0].Entries) != 2 {
		t.Errorf("batch = %+v, want entries up to the terminal action", got[0])
	}
}

func TestPollerReportsErrorsAndContinues(t *testing.T) {
	boom := errors.New("boom")
	src := &fakeSource{
		steps: [][]Entry{nil, entries("create")},
		errs:  []error{boom},
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := collectBatches(t, NewPoller(src, "abc", WithInterval(time.Millisecond)).Start(ctx), 2)
	if !errors.Is(got[0].Err, boom) {
		t.Errorf("first batch err = %v, want boom", got[0].Err)
	}
	if got[1].Err != nil || len(got[1].Entries) != 1 {
		t.Errorf("second batch = %+v", got[1])
	}
}

func TestPollerOffset(t *testing.T) {
	src := &fakeSource{steps: [][]Entry{entries("create", "clear", "draw_line")}}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	p := NewPoller(src, "abc", WithInterval(time.Millisecond), WithOffset(2))
	got := collectBatches(t, p.Start(ctx), 1)
	if got[0].Offset != 2 || len(got[0].Entries) != 1 || got[0].Entries[0].Action != "draw_line" {
		t.Errorf("batch = %+v", got[0])
	}
}

func TestPollerCancel(t *testing.T) {
	src := &fakeSource{steps: [][]Entry{entries("create")}}
	ctx, cancel := context.WithCancel(context.Background())

	ch := NewPoller(src, "abc", WithInterval(time.Millisecond)).Start(ctx)
	<-ch
	cancel()

	select {
	case _, ok := <-ch:
		if ok {
			// A batch may race with cancellation; the channel must still close.
			<-ch
		}
	case <-time.After(2 * time.Second):
		t.Fatal("channel not closed after cancel")
	}
}
