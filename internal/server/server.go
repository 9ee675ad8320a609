package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/wiring/pkg/color"
	"github.com/matzehuels/wiring/pkg/pipeline"
)

const (
	defaultMaxBodyBytes     = 1 << 20
	gracefulShutdownTimeout = 10 * time.Second
)

// Config holds the listener settings.
type Config struct {
	Addr         string
	MaxBodyBytes int64
	// Defaults seeds the pipeline options of every request. Query
	// parameters override Strict, Combine and Group.
	Defaults pipeline.Options
}

// Deps are the collaborators of a Server.
type Deps struct {
	Config Config
	Runner *pipeline.Runner
	Colors *color.Table
	Logger *log.Logger
}

// Server serves the wiring HTTP API.
type Server struct {
	cfg    Config
	runner *pipeline.Runner
	colors *color.Table
	logger *log.Logger
	server *http.Server
}

// New creates a server. Runner is required; Colors defaults to
// [color.Default] and Logger to [log.Default].
func New(deps Deps) (*Server, error) {
	if deps.Runner == nil {
		return nil, errors.New("server: runner is required")
	}
	s := &Server{
		cfg:    deps.Config,
		runner: deps.Runner,
		colors: deps.Colors,
		logger: deps.Logger,
	}
	if s.colors == nil {
		s.colors = color.Default()
	}
	if s.logger == nil {
		s.logger = log.Default()
	}
	if s.cfg.MaxBodyBytes <= 0 {
		s.cfg.MaxBodyBytes = defaultMaxBodyBytes
	}
	if s.cfg.Defaults.Colors == nil {
		s.cfg.Defaults.Colors = s.colors
	}
	return s, nil
}

// Handler returns the HTTP handler with all routes and middleware.
func (s *Server) Handler() http.Handler {
	return s.buildRouter()
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully,
// waiting up to 10 seconds for in-flight requests.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.cfg.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is [Server.ListenAndServe] on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.server = &http.Server{
		Handler:           s.buildRouter(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      2 * time.Minute,
		IdleTimeout:       time.Minute,
		BaseContext:       func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("API server listening", "addr", ln.Addr().String())
		errCh <- s.server.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), gracefulShutdownTimeout)
	defer cancel()
	s.logger.Info("API server shutting down")
	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down API server: %w", err)
	}
	return nil
}
