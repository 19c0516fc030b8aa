package canvas

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/wordcanvas/pkg/cache"
	"github.com/matzehuels/wordcanvas/pkg/errors"
	"github.com/matzehuels/wordcanvas/pkg/httputil"
	"github.com/matzehuels/wordcanvas/pkg/observability"
)

const httpTimeout = 10 * time.Second

// DefaultBaseURL is the address of a locally running canvas server.
const DefaultBaseURL = "http://localhost:8000"

// Client fetches canvas metadata and history. It is safe for concurrent use.
type Client struct {
	base    string
	http    *http.Client
	cache   cache.Cache
	keyer   cache.Keyer
	headers map[string]string
	logger  *log.Logger
	retry   httputil.Policy
}

// Option configures a [Client].
type Option func(*Client)

// WithHTTPClient replaces the default client (10s timeout).
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithCache caches metadata responses. Histories are live and never cached.
func WithCache(cc cache.Cache, keyer cache.Keyer) Option {
	return func(c *Client) {
		c.cache = cc
		if keyer != nil {
			c.keyer = keyer
		}
	}
}

// WithRetry replaces the retry policy for transient failures.
func WithRetry(p httputil.Policy) Option {
	return func(c *Client) { c.retry = p }
}

// WithHeader adds a header to every request.
func WithHeader(key, value string) Option {
	return func(c *Client) { c.headers[key] = value }
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l *log.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewClient creates a client for the canvas server at baseURL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	if err := errors.ValidateURL(baseURL); err != nil {
		return nil, err
	}
	c := &Client{
		base:    strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: httpTimeout},
		cache:   cache.NewNullCache(),
		keyer:   cache.NewDefaultKeyer(),
		headers: map[string]string{"Accept": "application/json"},
		logger:  log.New(io.Discard),
		retry:   httputil.DefaultPolicy,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the server address without a trailing slash.
func (c *Client) BaseURL() string { return c.base }

// Metadata fetches the canvas description.
func (c *Client) Metadata(ctx context.Context, id string) (*Metadata, error) {
	if err := errors.ValidateCanvasID(id); err != nil {
		return nil, err
	}

	key := c.keyer.HTTPKey("meta", c.base+"/"+id)
	var m Metadata
	if err := cache.GetJSON(ctx, c.cache, key, &m); err == nil {
		observability.Cache().OnCacheHit(ctx, "http")
		return &m, nil
	}
	observability.Cache().OnCacheMiss(ctx, "http")

	err := c.retry.Do(ctx, func() error {
		return c.get(ctx, "/object/"+url.PathEscape(id), &m)
	})
	if err != nil {
		return nil, fmt.Errorf("canvas %s: %w", id, err)
	}
	if err := cache.SetJSON(ctx, c.cache, key, m, cache.TTLHTTP); err == nil {
		observability.Cache().OnCacheSet(ctx, "http", 0)
	}
	return &m, nil
}

// History fetches the full action history of a canvas, oldest first.
func (c *Client) History(ctx context.Context, id string) ([]Entry, error) {
	if err := errors.ValidateCanvasID(id); err != nil {
		return nil, err
	}
	var entries []Entry
	err := c.retry.Do(ctx, func() error {
		entries = nil
		return c.get(ctx, "/object/"+url.PathEscape(id)+"/history", &entries)
	})
	if err != nil {
		return nil, fmt.Errorf("canvas %s history: %w", id, err)
	}
	return entries, nil
}

func (c *Client) get(ctx context.Context, path string, v any) error {
	u := c.base + path
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	for k, val := range c.headers {
		req.Header.Set(k, val)
	}

	hooks := observability.HTTP()
	host := req.URL.Host
	hooks.OnRequest(ctx, http.MethodGet, host, path)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		hooks.OnError(ctx, http.MethodGet, host, path, err)
		c.logger.Debug("request failed", "url", u, "err", err)
		return &httputil.RetryableError{Err: fmt.Errorf("%w: %v", ErrNetwork, err)}
	}
	defer resp.Body.Close()

	hooks.OnResponse(ctx, http.MethodGet, host, path, resp.StatusCode, time.Since(start))
	c.logger.Debug("request", "url", u, "status", resp.StatusCode, "duration", time.Since(start))

	if err := checkStatus(resp); err != nil {
		return err
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidHistory, err, "decode %s", path)
	}
	return nil
}

func checkStatus(resp *http.Response) error {
	code := resp.StatusCode
	switch {
	case code == http.StatusOK:
		return nil
	case code == http.StatusNotFound:
		return errors.Wrap(errors.ErrCodeCanvasNotFound, ErrNotFound, "no such canvas")
	case code == http.StatusTooManyRequests:
		retryAfter, _ := strconv.Atoi(resp.Header.Get("Retry-After"))
		return &httputil.RetryableError{
			Err:   &errors.RateLimitedError{RetryAfter: retryAfter},
			After: time.Duration(retryAfter) * time.Second,
		}
	case code >= 500:
		return &httputil.RetryableError{Err: fmt.Errorf("%w: status %d", ErrNetwork, code)}
	default:
		return fmt.Errorf("%w: status %d", ErrNetwork, code)
	}
}
