package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"burnoutd/internal/config"

	"go.uber.org/zap"
)

const (
	readTimeout  = 15 * time.Second
	writeTimeout = 30 * time.Second
)

// Server wraps the HTTP listener with graceful shutdown.
type Server struct {
	httpServer *http.Server
	logger     *zap.Logger
}

// NewServer creates a server for the given handler set.
func NewServer(cfg config.ServerConfig, handlers *Handlers, logger *zap.Logger) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:         fmt.Sprintf(":%s", cfg.Port),
			Handler:      handlers.Routes(),
			ReadTimeout:  readTimeout,
			WriteTimeout: writeTimeout,
		},
		logger: logger,
	}
}

// ListenAndServe blocks until the listener stops. http.ErrServerClosed is
// swallowed so a clean Shutdown does not surface as a failure.
func (s *Server) ListenAndServe() error {
	s.logger.Info("http server listening", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests, bounded by the given timeout.
func (s *Server) Shutdown(timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	s.logger.Info("http server shutting down")
	return s.httpServer.Shutdown(ctx)
}
