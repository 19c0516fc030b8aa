package canvas

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/matzehuels/wordcanvas/pkg/cache"
	"github.com/matzehuels/wordcanvas/pkg/errors"
	"github.com/matzehuels/wordcanvas/pkg/httputil"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := NewClient(srv.URL, WithHTTPClient(srv.Client()))
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return c
}

func TestNewClientRejectsBadURL(t *testing.T) {
	if _, err := NewClient("ftp://example.com"); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("NewClient(ftp) error = %v, want INVALID_INPUT", err)
	}
	c, err := NewClient("http://localhost:8000/")
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	if c.BaseURL() != "http://localhost:8000" {
		t.Errorf("BaseURL() = %q, want trailing slash trimmed", c.BaseURL())
	}
}

func TestClientMetadata(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/object/brisk-vortex-197" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if r.Header.Get("Accept") != "application/json" {
			t.Errorf("Accept = %q", r.Header.Get("Accept"))
		}
		json.NewEncoder(w).Encode(Metadata{
			ID: "brisk-vortex-197", Name: "demo", Width: 640, Height: 480, BgColor: "#111",
		})
	})

	m, err := c.Metadata(context.Background(), "brisk-vortex-197")
	if err != nil {
		t.Fatalf("Metadata: %v", err)
	}
	if m.Name != "demo" || m.Width != 640 || m.Height != 480 {
		t.Errorf("Metadata = %+v", m)
	}
}

func TestClientMetadataCached(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		json.NewEncoder(w).Encode(Metadata{ID: "abc", Width: 10, Height: 10})
	}))
	defer srv.Close()

	fc, _ := cache.NewFileCache(t.TempDir())
	c, _ := NewClient(srv.URL, WithHTTPClient(srv.Client()), WithCache(fc, nil))

	for range 3 {
		if _, err := c.Metadata(context.Background(), "abc"); err != nil {
			t.Fatalf("Metadata: %v", err)
		}
	}
	if hits.Load() != 1 {
		t.Errorf("server hit %d times, want 1", hits.Load())
	}
}

// ttlCache records the TTL of every Set and never hits.
type ttlCache struct {
	cache.NullCache
	ttls map[string]time.Duration
}

func (c *ttlCache) Set(_ context.Context, key string, _ []byte, ttl time.Duration) error {
	c.ttls[key] = ttl
	return nil
}

func TestClientMetadataExpiresQuickly(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(Metadata{ID: "abc", Name: "live", Width: 10, Height: 10})
	}))
	defer srv.Close()

	rc := &ttlCache{ttls: map[string]time.Duration{}}
	c, _ := NewClient(srv.URL, WithHTTPClient(srv.Client()), WithCache(rc, nil))
	if _, err := c.Metadata(context.Background(), "abc"); err != nil {
		t.Fatalf("Metadata: %v", err)
	}

	if len(rc.ttls) != 1 {
		t.Fatalf("cache writes = %d, want 1", len(rc.ttls))
	}
	for key, ttl := range rc.ttls {
		if ttl != cache.TTLHTTP {
			t.Errorf("%s cached for %v, want %v", key, ttl, cache.TTLHTTP)
		}
	}
}

func TestClientHistory(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/object/abc/history" {
			t.Errorf("path = %s", r.URL.Path)
		}
		w.Write([]byte(`[
			{"timestamp":"2025-05-06T20:49:02","action":"create","params":{"x":400,"y":300,"color":"#222"}},
			{"timestamp":"2025-05-06T20:49:03","action":"draw_point","params":{"x":1,"y":2,"color":"#fff","radius":3}}
		]`))
	})

	entries, err := c.History(context.Background(), "abc")
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(entries) != 2 || entries[0].Action != "create" || entries[1].Action != "draw_point" {
		t.Fatalf("History = %+v", entries)
	}
	var p struct{ X, Y float64 }
	json.Unmarshal(entries[0].Params, &p)
	if p.X != 400 || p.Y != 300 {
		t.Errorf("params = %+v", p)
	}
}

func TestClientNotFound(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	_, err := c.Metadata(context.Background(), "missing")
	if !stderrors.Is(err, ErrNotFound) {
		t.Errorf("Metadata error = %v, want ErrNotFound", err)
	}
	if errors.GetCode(err) != errors.ErrCodeCanvasNotFound {
		t.Errorf("code = %v, want CANVAS_NOT_FOUND", errors.GetCode(err))
	}
}

func TestClientClientErrorNotRetried(t *testing.T) {
	var hits atomic.Int32
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	})

	_, err := c.History(context.Background(), "abc")
	if !stderrors.Is(err, ErrNetwork) {
		t.Errorf("History error = %v, want ErrNetwork", err)
	}
	if hits.Load() != 1 {
		t.Errorf("4xx should not be retried, server hit %d times", hits.Load())
	}
}

func TestClientRetriesServerErrors(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		json.NewEncoder(w).Encode([]Entry{})
	}))
	t.Cleanup(srv.Close)

	c, err := NewClient(srv.URL, WithRetry(httputil.Policy{Attempts: 3, Delay: time.Millisecond}))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := c.History(context.Background(), "abc"); err != nil {
		t.Fatalf("History: %v", err)
	}
	if hits.Load() != 3 {
		t.Errorf("server hit %d times, want 3", hits.Load())
	}
}

func TestClientInvalidID(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("invalid ids must not reach the server")
	})
	if _, err := c.History(context.Background(), "../etc"); !errors.Is(err, errors.ErrCodeInvalidCanvasID) {
		t.Errorf("History error = %v, want INVALID_CANVAS_ID", err)
	}
}

func TestCheckStatus(t *testing.T) {
	tests := []struct {
		code      int
		wantErr   bool
		retryable bool
	}{
		{200, false, false},
		{404, true, false},
		{429, true, true},
		{500, true, true},
		{503, true, true},
		{403, true, false},
	}
	for _, tt := range tests {
		resp := &http.Response{StatusCode: tt.code, Header: http.Header{}}
		err := checkStatus(resp)
		if (err != nil) != tt.wantErr {
			t.Errorf("checkStatus(%d) = %v, wantErr %v", tt.code, err, tt.wantErr)
		}
		if got := isRetryable(err); got != tt.retryable {
			t.Errorf("checkStatus(%d) retryable = %v, want %v", tt.code, got, tt.retryable)
		}
	}
}
