package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotingest/internal/metrics"
	"github.com/desertthunder/spotingest/internal/shared"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Middleware wraps an http.Handler and returns a new http.Handler with additional behavior.
type Middleware func(http.Handler) http.Handler

// Route is one method and path served by a [Handler].
type Route struct {
	Method  string
	Pattern string
}

// Handler is an http.Handler that declares the routes it serves.
type Handler interface {
	http.Handler
	Routes() []Route
}

// Options configures a [Server].
type Options struct {
	Addr    string
	Loader  Loader
	Metrics *metrics.Metrics
	Logger  *log.Logger
}

// Server is the trigger web service.
type Server struct {
	router chi.Router
	server *http.Server
	logger *log.Logger
}

// New creates a Server with its routes and middleware configured.
func New(opts Options) (*Server, error) {
	if opts.Loader == nil {
		return nil, fmt.Errorf("%w: loader", shared.ErrMissingArgument)
	}
	if opts.Logger == nil {
		opts.Logger = shared.DiscardLogger()
	}

	load, err := NewLoadHandler(opts.Loader)
	if err != nil {
		return nil, err
	}

	s := &Server{router: chi.NewRouter(), logger: opts.Logger}

	s.Use(middleware.RequestID, middleware.RealIP, RequestLogger(opts.Logger), middleware.Recoverer)
	s.Handler(load)
	s.router.Get("/healthz", health)
	s.router.Method(http.MethodGet, "/metrics", opts.Metrics.Handler())

	// Ingestion runs for minutes, so only header reads are bounded.
	s.server = &http.Server{
		Addr:              opts.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s, nil
}

// Use adds middleware to the router, applied in the order added.
func (s *Server) Use(mw ...Middleware) {
	for _, m := range mw {
		s.router.Use(m)
	}
}

// Handler registers every route of h.
func (s *Server) Handler(h Handler) {
	for _, r := range h.Routes() {
		s.router.Method(r.Method, r.Pattern, h)
	}
}

// ServeHTTP implements [http.Handler] for the entire router.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Addr is the configured listen address.
func (s *Server) Addr() string { return s.server.Addr }

// Run serves until ctx is cancelled, then shuts down gracefully, waiting up to 30s for in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "addr", s.server.Addr)
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		s.logger.Info("shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	s.logger.Info("server stopped")
	return nil
}

func health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
