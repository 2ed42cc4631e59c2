// Package server exposes the bake pipeline over HTTP.
//
// Routes:
//
//	GET  /healthz                 liveness probe
//	POST /v1/bakes                bake an uploaded source (multipart field "source")
//	GET  /v1/bakes/{id}/{kind}    fetch a baked file; kind is obj, shd or manifest
//	POST /v1/preview?index=n      PNG of angle n mod count, object merged over shadow
//
// Bake options are passed as form fields named like their config keys
// (slices, rot_inc, v_step, ...). Unset fields keep the pipeline defaults.
// Each bake is written to its own directory under the output root, named by
// a random UUID.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/stakr/pkg/pipeline"
)

// DefaultMaxUpload is the largest accepted multipart body.
const DefaultMaxUpload = 32 << 20

// Config configures a Server.
type Config struct {
	OutDir    string // root of per-bake output directories
	MaxUpload int64  // 0 uses DefaultMaxUpload
	Defaults  pipeline.Options
	Logger    *log.Logger
}

// Server serves bakes and previews.
type Server struct {
	runner    *pipeline.Runner
	outDir    string
	maxUpload int64
	defaults  pipeline.Options
	logger    *log.Logger
}

// New creates a server backed by runner.
func New(runner *pipeline.Runner, cfg Config) *Server {
	if cfg.MaxUpload <= 0 {
		cfg.MaxUpload = DefaultMaxUpload
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	return &Server{
		runner:    runner,
		outDir:    cfg.OutDir,
		maxUpload: cfg.MaxUpload,
		defaults:  cfg.Defaults,
		logger:    cfg.Logger,
	}
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.instrument)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/v1", func(r chi.Router) {
		r.Post("/bakes", s.handleBake)
		r.Get("/bakes/{id}/{kind}", s.handleArtifact)
		r.Post("/preview", s.handlePreview)
	})
	return r
}

// ListenAndServe serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		errc <- srv.ListenAndServe()
	}()
	s.logger.Info("listening", "addr", addr, "out", s.outDir)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return ctx.Err()
	}
}
