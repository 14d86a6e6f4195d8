package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/euystacio/pulse-hub/internal/auth"
)

// Server is the HTTP API server.
type Server struct {
	httpServer *http.Server

	dispatcher DispatcherPort
	registry   RegistryPort
	window     WindowPort
	ledger     LedgerPort

	authMiddleware *auth.Middleware
	recentCount    int

	upgrader  websocket.Upgrader
	startTime time.Time
}

// NewServer creates an API server without authorization: the read endpoints
// are left open. Intended for tests and local development.
func NewServer(dispatcher DispatcherPort, registry RegistryPort, window WindowPort, ledger LedgerPort, recentCount int) *Server {
	return &Server{
		dispatcher:  dispatcher,
		registry:    registry,
		window:      window,
		ledger:      ledger,
		recentCount: recentCount,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			// Producers and dashboards live on other origins.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		startTime: time.Now(),
	}
}

// NewServerWithAuth creates an API server with role gating on the read
// endpoints.
func NewServerWithAuth(dispatcher DispatcherPort, registry RegistryPort, window WindowPort, ledger LedgerPort, recentCount int, authMiddleware *auth.Middleware) *Server {
	s := NewServer(dispatcher, registry, window, ledger, recentCount)
	s.authMiddleware = authMiddleware
	return s
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start(addr string) error {
	mux := http.NewServeMux()
	s.RegisterRoutes(mux)

	s.httpServer = &http.Server{
		Addr:        addr,
		Handler:     mux,
		ReadTimeout: 30 * time.Second,
		// No WriteTimeout: /live connections stay open indefinitely.
		IdleTimeout: 120 * time.Second,
	}

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}
	return nil
}

// Stop gracefully stops the HTTP server.
func (s *Server) Stop(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shutdown HTTP server: %w", err)
	}
	return nil
}
