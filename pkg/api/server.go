package api

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"

	"github.com/jasonlovesdoggo/put/internal/logger"
	"github.com/jasonlovesdoggo/put/pkg/config"
)

// Server is the HTTP server for the upload and management endpoints.
//
// The server is created in a stopped state; call Start to begin serving.
// It supports graceful shutdown with the configured timeout. Upload
// PATCH requests run without a write timeout because a chunk transfer
// legitimately takes as long as the client's uplink allows; only the
// request header read is bounded.
type Server struct {
	server       *http.Server
	cfg          config.ServerConfig
	shutdownOnce sync.Once
}

// NewServer creates a new HTTP server around the given handler.
func NewServer(cfg config.ServerConfig, handler http.Handler) *Server {
	server := &http.Server{
		Addr:              net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		Handler:           handler,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}

	return &Server{
		server: server,
		cfg:    cfg,
	}
}

// Start starts the HTTP server and blocks until the context is
// cancelled or an error occurs.
//
// When the context is cancelled, Start initiates graceful shutdown
// bounded by the configured shutdown timeout and returns its result.
func (s *Server) Start(ctx context.Context) error {
	errChan := make(chan error, 1)
	go func() {
		logger.Info("Server listening", "addr", s.server.Addr)

		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			select {
			case errChan <- err:
			default:
				// Context was cancelled, error is not needed
			}
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("Server shutdown signal received")
		// Fresh context for the drain; the cancelled one would abort
		// shutdown immediately
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()
		return s.Stop(shutdownCtx)
	case err := <-errChan:
		return fmt.Errorf("server failed: %w", err)
	}
}

// Stop initiates graceful shutdown of the server.
//
// Stop is safe to call multiple times and safe to call concurrently
// with Start.
func (s *Server) Stop(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		logger.Debug("Server shutdown initiated")

		if err := s.server.Shutdown(ctx); err != nil {
			shutdownErr = fmt.Errorf("server shutdown error: %w", err)
			logger.Error("Server shutdown error", logger.KeyError, err)
		} else {
			logger.Info("Server stopped gracefully")
		}
	})
	return shutdownErr
}

// Addr returns the address the server binds to.
func (s *Server) Addr() string {
	return s.server.Addr
}
