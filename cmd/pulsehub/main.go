// Package main implements the pulse hub entry point.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/euystacio/pulse-hub/internal/api"
	"github.com/euystacio/pulse-hub/internal/audit"
	"github.com/euystacio/pulse-hub/internal/auth"
	"github.com/euystacio/pulse-hub/internal/config"
	"github.com/euystacio/pulse-hub/internal/hub"
	"github.com/euystacio/pulse-hub/internal/metrics"
)

const Version = "1.0.0"

func main() {
	log.Printf("Starting pulse hub v%s", Version)

	// Step 1: Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	log.Println("Configuration loaded successfully")

	// Step 2: Initialize the council ledger
	ledger, err := audit.NewLogger(cfg.AuditLogDir)
	if err != nil {
		log.Fatalf("Failed to initialize council ledger: %v", err)
	}
	log.Println("Council ledger initialized")

	// Step 3: Initialize the sample window
	window := metrics.NewWindow(cfg.WindowCapacity)
	log.Printf("Sample window initialized (capacity %d)", cfg.WindowCapacity)

	// Step 4: Initialize the connection registry and dispatcher
	registry := hub.NewRegistry(cfg.MaxConnections, ledger)
	dispatcher := hub.NewDispatcher(window, registry, cfg.CeilingBytes(), ledger)
	log.Printf("Broadcast hub initialized (ceiling %d KB, max connections %d)",
		cfg.BufferMaxKB, cfg.MaxConnections)

	// Step 5: Create the API server, role-gated when a verifier is configured
	var server *api.Server
	if cfg.JWTAlgorithm != "" {
		verifier, err := auth.NewJWTVerifier(auth.VerifierConfig{
			Algorithm:    cfg.JWTAlgorithm,
			SecretKey:    cfg.JWTSecret,
			PublicKeyPEM: cfg.JWTPublicKeyPEM,
		})
		if err != nil {
			log.Fatalf("Failed to initialize token verifier: %v", err)
		}
		resolver := auth.NewResolver(cfg.SeedbringerEmails, cfg.CouncilEmails)
		middleware := auth.NewMiddleware(verifier, resolver)
		server = api.NewServerWithAuth(dispatcher, registry, window, ledger,
			cfg.WindowRecentCount, middleware)
		log.Println("API server created with role gating")
	} else {
		server = api.NewServer(dispatcher, registry, window, ledger, cfg.WindowRecentCount)
		log.Println("API server created without authentication (no JWT algorithm configured)")
	}

	// Step 6: Start HTTP server
	log.Printf("Starting HTTP server on %s", cfg.Addr)
	serverErr := make(chan error, 1)
	go func() {
		if err := server.Start(cfg.Addr); err != nil {
			serverErr <- fmt.Errorf("HTTP server failed: %w", err)
		}
	}()

	log.Printf("Pulse hub started successfully")
	log.Printf("Live stream: ws://localhost%s/live", cfg.Addr)
	log.Printf("API base URL: http://localhost%s/api/v1", cfg.Addr)

	// Set up graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-shutdown:
		log.Printf("Received signal %v, initiating graceful shutdown...", sig)
	case err := <-serverErr:
		log.Printf("Server error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Stop HTTP server first so no new connections or pulses arrive
	if err := server.Stop(ctx); err != nil {
		log.Printf("Error stopping HTTP server: %v", err)
	} else {
		log.Println("HTTP server stopped gracefully")
	}

	// Close remaining live connections
	registry.Close()
	log.Println("Connection registry closed")

	// Close the ledger last so shutdown events are recorded
	if err := ledger.Close(); err != nil {
		log.Printf("Error closing council ledger: %v", err)
	}
	log.Println("Council ledger closed")

	log.Println("Pulse hub shutdown complete")
}
