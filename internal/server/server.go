// Package server implements the genposter web control panel.
//
// The panel is a small chi application: the index page is an HTML form with
// every poster parameter, and the poster itself is served as an image whose
// URL carries the form values as query parameters. A JSON API exposes the
// same renderer for scripts.
//
// Routes:
//
//	GET  /                        control panel
//	GET  /poster.{format}         render from query parameters (download=1 for an attachment)
//	POST /api/v1/render           render from a JSON body
//	GET  /api/v1/styles           palette styles, shape kinds, alpha modes, formats, presets
//	GET  /api/v1/presets/{name}   built-in preset parameters
//	GET  /api/v1/version          build information
//	GET  /healthz                 liveness probe
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"runtime"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/semaphore"

	"github.com/matzehuels/genposter/pkg/pipeline"
)

// DefaultAddr is the listen address when none is configured.
const DefaultAddr = "127.0.0.1:8080"

const (
	maxBodyBytes    = 1 << 20
	shutdownTimeout = 5 * time.Second
	renderTimeout   = 60 * time.Second
)

// Server serves the control panel and the render API.
type Server struct {
	runner  *pipeline.Runner
	logger  *log.Logger
	router  chi.Router
	renders *semaphore.Weighted

	mu  sync.Mutex
	srv *http.Server
}

// New creates a server that renders through runner.
func New(runner *pipeline.Runner, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{runner: runner, logger: logger}
	s.SetMaxRenders(0)
	s.router = s.routes()
	return s
}

// SetMaxRenders bounds how many posters render at once; n <= 0 selects
// GOMAXPROCS. Requests beyond the bound wait for a slot until their
// context ends. Call it before serving.
func (s *Server) SetMaxRenders(n int) {
	if n <= 0 {
		n = runtime.GOMAXPROCS(0)
	}
	s.renders = semaphore.NewWeighted(int64(n))
}

// execute runs one render once a slot is free.
func (s *Server) execute(ctx context.Context, opts pipeline.Options) (*pipeline.Result, error) {
	if err := s.renders.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer s.renders.Release(1)
	return s.runner.Execute(ctx, opts)
}

// Handler returns the HTTP handler with all routes and middleware.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.observe)
	r.Use(middleware.Timeout(renderTimeout))

	r.Get("/", s.handleIndex)
	r.Get("/healthz", s.handleHealth)
	r.Get("/poster.{format}", s.handlePoster)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/render", s.handleRender)
		r.Get("/styles", s.handleStyles)
		r.Get("/presets/{name}", s.handlePreset)
		r.Get("/version", s.handleVersion)
	})
	return r
}

// ListenAndServe serves on addr until ctx is canceled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	if addr == "" {
		addr = DefaultAddr
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is canceled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.mu.Lock()
	if s.srv != nil {
		s.mu.Unlock()
		ln.Close()
		return errors.New("server already running")
	}
	s.srv = &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
	srv := s.srv
	s.mu.Unlock()

	s.logger.Info("serving control panel", "addr", "http://"+ln.Addr().String())

	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ln) }()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.logger.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	<-errc
	return nil
}
