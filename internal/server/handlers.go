package server

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/wordcanvas/pkg/errors"
	"github.com/matzehuels/wordcanvas/pkg/pipeline"
	"github.com/matzehuels/wordcanvas/pkg/render/sink"
)

// wordCloudHandler lays out the posted cloud. Without ?format the placement
// is returned as JSON; with one, the drawn cloud is rendered in that format.
func (s *Server) wordCloudHandler(w http.ResponseWriter, r *http.Request) {
	var req pipeline.WordCloud
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid request body"))
		return
	}

	res, err := pipeline.Layout(r.Context(), req, s.wordCloud)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	format := r.URL.Query().Get("format")
	if format == "" {
		writeJSON(w, http.StatusOK, res)
		return
	}
	if err := errors.ValidateFormat(format, sink.Formats...); err != nil {
		s.writeError(w, r, err)
		return
	}
	data, err := sink.Render(res.Scene, format, s.sinkOptions())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeArtifact(w, format, data)
}

// canvasHandler replays a remote canvas and serves one rendering of it.
func (s *Server) canvasHandler(w http.ResponseWriter, r *http.Request) {
	if s.client == nil {
		s.writeError(w, r, errors.New(errors.ErrCodeNotFound, "canvas rendering is disabled"))
		return
	}
	id, format := chi.URLParam(r, "id"), chi.URLParam(r, "format")
	if err := errors.ValidateFormat(format, sink.Formats...); err != nil {
		s.writeError(w, r, err)
		return
	}

	opts := s.defaults
	opts.CanvasID = id
	opts.Formats = []string{format}
	opts.Refresh = r.URL.Query().Has("refresh")

	res, err := s.runner.FetchAndExecute(r.Context(), s.client, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if res.CacheInfo.SceneHit {
		w.Header().Set("X-Cache-Scene", "hit")
	}
	if res.CacheInfo.RenderHit {
		w.Header().Set("X-Cache-Render", "hit")
	}
	writeArtifact(w, format, res.Artifacts[format])
}

func (s *Server) sinkOptions() sink.Options {
	scale := s.defaults.Scale
	if scale <= 0 {
		scale = pipeline.DefaultScale
	}
	return sink.Options{Scale: scale}
}

func writeArtifact(w http.ResponseWriter, format string, data []byte) {
	w.Header().Set("Content-Type", sink.ContentType(format))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// =============================================================================
// Errors
// =============================================================================

// statusClientClosed is nginx's non-standard "client closed request".
const statusClientClosed = 499

type errorBody struct {
	Error    string `json:"error"`
	Message  string `json:"message"`
	RenderID string `json:"render_id,omitempty"`
}

// StatusCode maps an error to the HTTP status the service answers with.
func StatusCode(err error) int {
	switch {
	case stderrors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case stderrors.Is(err, context.Canceled):
		return statusClientClosed
	}
	return errors.HTTPStatus(errors.GetCode(err))
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusCode(err)
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	msg := errors.UserMessage(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "err", err)
	}
	writeJSON(w, status, errorBody{
		Error:    string(code),
		Message:  msg,
		RenderID: RenderID(r.Context()),
	})
}
