package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/popmap/popmap/internal/config"
)

// Server wraps the standard library HTTP server with configured timeouts and
// graceful shutdown.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
	cfg        config.ServerConfig
}

// New creates a Server serving the given handler.
func New(cfg config.ServerConfig, handler http.Handler, logger *slog.Logger) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:         ":" + cfg.Port,
			Handler:      handler,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
		},
		logger: logger,
		cfg:    cfg,
	}
}

// Start begins serving HTTP requests. It blocks until the server stops.
func (s *Server) Start() error {
	s.logger.Info("starting http server", "addr", s.httpServer.Addr)

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server failed: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the server within the configured timeout.
func (s *Server) Shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, s.cfg.ShutdownTimeout)
	defer cancel()

	s.logger.Info("shutting down http server")
	return s.httpServer.Shutdown(shutdownCtx)
}
