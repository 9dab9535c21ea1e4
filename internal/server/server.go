// Package server exposes the interception pipeline over HTTP: one
// endpoint to run a request, a health check, and an explicit ruleset
// reload hook.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"oncostrike/internal/intercept"
	"oncostrike/internal/ruleset"
)

// Interceptor runs one request through the pipeline. Implemented by
// intercept.Pipeline.
type Interceptor interface {
	Intercept(ctx context.Context, req intercept.Request) (*intercept.InterceptionResult, error)
}

// Config configures the HTTP service.
type Config struct {
	ListenAddr     string
	RequestTimeout time.Duration
	ShutdownGrace  time.Duration
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		ListenAddr:     ":8080",
		RequestTimeout: 120 * time.Second,
		ShutdownGrace:  10 * time.Second,
	}
}

// Server is the HTTP front of the pipeline.
type Server struct {
	cfg      Config
	pipeline Interceptor
	rules    *ruleset.Store
	log      *zap.Logger
	httpSrv  *http.Server
}

// New builds the server and its handler chain.
func New(cfg Config, pipeline Interceptor, rules *ruleset.Store, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{cfg: cfg, pipeline: pipeline, rules: rules, log: log}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/intercept", s.handleIntercept)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("POST /v1/ruleset/reload", s.handleReload)

	s.httpSrv = &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           s.withRequestID(s.withLogging(mux)),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the full middleware-wrapped handler, for tests.
func (s *Server) Handler() http.Handler {
	return s.httpSrv.Handler
}

// Run serves until ctx is cancelled, then drains in-flight requests
// within the shutdown grace window.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("http server listening", zap.String("addr", s.cfg.ListenAddr))
		if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	s.log.Info("shutting down http server",
		zap.Duration("grace", s.cfg.ShutdownGrace))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownGrace)
	defer cancel()
	if err := s.httpSrv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}
	return nil
}
