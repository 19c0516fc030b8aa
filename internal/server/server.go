// Package server is the HTTP render service.
//
// Routes:
//
//	POST /v1/wordcloud              lay out a word cloud (JSON, or ?format=svg|png|pdf|json to render it)
//	GET  /v1/canvas/{id}.{format}   replay a remote canvas and render it
//	GET  /v1/stats                  pipeline and cache counters
//	GET  /healthz                   liveness
//
// Every response carries an X-Render-ID header. Errors are JSON bodies of
// the form {"error": CODE, "message": ..., "render_id": ...}.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/matzehuels/wordcanvas/pkg/actions"
	"github.com/matzehuels/wordcanvas/pkg/canvas"
	"github.com/matzehuels/wordcanvas/pkg/observability"
	"github.com/matzehuels/wordcanvas/pkg/pipeline"
)

// DefaultTimeout bounds a single request.
const DefaultTimeout = 30 * time.Second

// maxBodyBytes caps word cloud request bodies.
const maxBodyBytes = 1 << 20

// RenderIDHeader names the response header carrying the render id.
const RenderIDHeader = "X-Render-ID"

// Server serves renders through a shared pipeline runner.
type Server struct {
	runner    *pipeline.Runner
	client    *canvas.Client
	wordCloud actions.WordCloudConfig
	defaults  pipeline.Options
	counters  *observability.Counters
	logger    *log.Logger
	timeout   time.Duration
}

// Option configures a [Server].
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithDefaults sets the pipeline options every render starts from.
func WithDefaults(opts pipeline.Options) Option {
	return func(s *Server) {
		s.defaults = opts
		s.wordCloud = opts.WordCloud
	}
}

// WithCounters exposes c at /v1/stats.
func WithCounters(c *observability.Counters) Option {
	return func(s *Server) { s.counters = c }
}

// New creates a server. client may be nil, in which case canvas routes
// answer 404.
func New(runner *pipeline.Runner, client *canvas.Client, opts ...Option) *Server {
	s := &Server{
		runner:  runner,
		client:  client,
		logger:  log.New(io.Discard),
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Routes returns the HTTP handler.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.timeout))
	r.Use(renderID)

	r.Get("/healthz", s.health)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/wordcloud", s.wordCloudHandler)
		r.Get("/canvas/{id}.{format}", s.canvasHandler)
		if s.counters != nil {
			r.Get("/stats", s.stats)
		}
	})
	return r
}

// ListenAndServe serves on addr until ctx ends, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      s.timeout + 5*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// =============================================================================
// Middleware
// =============================================================================

type renderIDKey struct{}

// renderID tags each request with a fresh id, echoed in the response header.
func renderID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		w.Header().Set(RenderIDHeader, id)
		ctx := context.WithValue(r.Context(), renderIDKey{}, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RenderID returns the render id of the request context.
func RenderID(ctx context.Context) string {
	id, _ := ctx.Value(renderIDKey{}).(string)
	return id
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}

// =============================================================================
// Responses
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) stats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.counters.Snapshot())
}
