package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/morphtree/pkg/buildinfo"
	"github.com/matzehuels/morphtree/pkg/errors"
	"github.com/matzehuels/morphtree/pkg/gesture"
	"github.com/matzehuels/morphtree/pkg/morph"
	"github.com/matzehuels/morphtree/pkg/sink"
)

// maxSnapshotSide bounds requested snapshot dimensions.
const maxSnapshotSide = 4096

type landmarksRequest struct {
	Landmarks gesture.Hand `json:"landmarks"`
}

type landmarksResponse struct {
	Seq     uint64 `json:"seq"`
	Present bool   `json:"present"`
}

type statusResponse struct {
	Ready bool           `json:"ready"`
	Seq   uint64         `json:"seq"`
	Focus int            `json:"focus"` // -1 when no photo is focused
	Morph morph.Snapshot `json:"morph"`
}

type errorResponse struct {
	Error string      `json:"error"`
	Code  errors.Code `json:"code,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildinfo.Version,
	})
}

func (s *Server) handleLandmarks(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxBodyBytes)
	var req landmarksRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode landmarks"))
		return
	}
	if n := len(req.Landmarks); n > gesture.LandmarkCount {
		s.writeError(w, errors.New(errors.ErrCodeInvalidInput, "too many landmarks: %d (max %d)", n, gesture.LandmarkCount))
		return
	}

	s.tracker.Set(req.Landmarks)
	writeJSON(w, http.StatusOK, landmarksResponse{
		Seq:     s.tracker.Seq(),
		Present: req.Landmarks.Present(),
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	focus, _ := s.eng.Focus().Index()
	resp := statusResponse{
		Ready: s.tracker.Ready(),
		Focus: focus,
		Morph: s.eng.State().Snapshot(),
		Seq:   s.eng.LatestSeq(),
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleFrame(w http.ResponseWriter, r *http.Request) {
	f := s.eng.Latest()
	if f == nil {
		s.writeError(w, errors.New(errors.ErrCodeNotFound, "no frame yet"))
		return
	}
	opts := []sink.JSONOption{sink.WithJSONTransforms(), sink.WithJSONCompact()}
	if r.URL.Query().Get("ribbon") == "1" {
		opts = append(opts, sink.WithJSONRibbon())
	}
	data, err := sink.RenderJSON(s.eng.Set(), f, opts...)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeBytes(w, sink.ContentTypes[sink.FormatJSON], data)
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.eng.Set())
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	format := chi.URLParam(r, "format")
	if err := sink.ValidateFormat(format); err != nil {
		s.writeError(w, err)
		return
	}
	f := s.eng.Latest()
	if f == nil {
		s.writeError(w, errors.New(errors.ErrCodeNotFound, "no frame yet"))
		return
	}

	opts := append([]sink.Option(nil), s.opts.Snapshot...)
	q := r.URL.Query()
	width, err := sideParam(q.Get("w"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	height, err := sideParam(q.Get("h"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	if width > 0 || height > 0 {
		opts = append(opts, sink.WithSize(width, height))
	}
	if q.Get("status") == "1" {
		opts = append(opts, sink.WithStatus())
	}

	data, err := sink.Render(format, s.eng.Set(), f, opts...)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeBytes(w, sink.ContentTypes[format], data)
}

func (s *Server) handleTraces(w http.ResponseWriter, r *http.Request) {
	list, err := s.opts.Traces.List(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// sideParam parses an optional snapshot dimension. Empty means unset.
func sideParam(v string) (int, error) {
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 || n > maxSnapshotSide {
		return 0, errors.New(errors.ErrCodeInvalidInput, "snapshot side must be in [1, %d] (got %q)", maxSnapshotSide, v)
	}
	return n, nil
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := errors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "err", err)
	}
	writeJSON(w, status, errorResponse{
		Error: errors.UserMessage(err),
		Code:  errors.GetCode(err),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeBytes(w http.ResponseWriter, contentType string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(data)
}
