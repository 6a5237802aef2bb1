// Package server exposes a running engine over HTTP.
//
// A browser-side hand tracker posts landmarks to /v1/landmarks; the server
// forwards them to a [gesture.LatestTracker] that the engine's sampler reads.
// Read-only endpoints report the morph state, the latest frame, the layout
// and rendered snapshots.
//
//	GET  /healthz
//	POST /v1/landmarks          {"landmarks": [[x,y,z], ...]} or {"landmarks": null}
//	GET  /v1/status
//	GET  /v1/frame              ?ribbon=1
//	GET  /v1/layout
//	GET  /v1/snapshot.{format}  svg, png, webp or json; ?w=&h=&status=1
//	GET  /v1/traces             when a trace store is attached
package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/morphtree/pkg/buildinfo"
	"github.com/matzehuels/morphtree/pkg/engine"
	"github.com/matzehuels/morphtree/pkg/gesture"
	"github.com/matzehuels/morphtree/pkg/sink"
	"github.com/matzehuels/morphtree/pkg/trace"
)

// Defaults for [Options].
const (
	DefaultAddr            = "127.0.0.1:8080"
	DefaultReadTimeout     = 10 * time.Second
	DefaultShutdownTimeout = 5 * time.Second
	DefaultMaxBodyBytes    = 64 << 10
)

// Options configures a [Server].
type Options struct {
	Addr            string
	ReadTimeout     time.Duration
	ShutdownTimeout time.Duration
	MaxBodyBytes    int64

	// Snapshot holds the default renderer options for /v1/snapshot.
	Snapshot []sink.Option

	// Traces lists recordings at /v1/traces when set.
	Traces trace.Store

	Logger *log.Logger
}

func (o *Options) setDefaults() {
	if o.Addr == "" {
		o.Addr = DefaultAddr
	}
	if o.ReadTimeout <= 0 {
		o.ReadTimeout = DefaultReadTimeout
	}
	if o.ShutdownTimeout <= 0 {
		o.ShutdownTimeout = DefaultShutdownTimeout
	}
	if o.MaxBodyBytes <= 0 {
		o.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// Server serves one engine.
type Server struct {
	opts    Options
	eng     *engine.Engine
	tracker *gesture.LatestTracker
	logger  *log.Logger
	router  chi.Router
}

// New creates a server for eng. Landmarks posted over HTTP go to tracker.
func New(eng *engine.Engine, tracker *gesture.LatestTracker, opts Options) *Server {
	opts.setDefaults()
	s := &Server{
		opts:    opts,
		eng:     eng,
		tracker: tracker,
		logger:  opts.Logger,
	}
	s.router = s.routes()
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// Addr returns the listen address.
func (s *Server) Addr() string { return s.opts.Addr }

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.SetHeader("Server", buildinfo.UserAgent()))

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/landmarks", s.handleLandmarks)
		r.Get("/status", s.handleStatus)
		r.Get("/frame", s.handleFrame)
		r.Get("/layout", s.handleLayout)
		r.Get("/snapshot.{format}", s.handleSnapshot)
		if s.opts.Traces != nil {
			r.Get("/traces", s.handleTraces)
		}
	})
	return r
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.opts.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: s.opts.ReadTimeout,
		ReadTimeout:       s.opts.ReadTimeout,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.opts.Addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
	defer cancel()
	s.logger.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
