// If you are AI: This is the main entrypoint for the logbook server.
// It handles configuration loading, storage bootstrap, server startup, and graceful shutdown.

package main

import (
	"context"
	"flag"
	"log"
	"os"

	"logbook/internal/config"
	"logbook/internal/server"
)

// main is the entrypoint for the logbook server.
// It loads configuration, rebuilds the registry from storage, starts the server, and handles graceful shutdown.
func main() {
	// Parse command-line flags
	configPath := flag.String("config", "configs/logbook.example.yaml", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	logger := cfg.Log.NewLogger(os.Stderr)

	// Create root context
	ctx := context.Background()

	store, err := server.OpenStorage(ctx, cfg.Storage)
	if err != nil {
		logger.Error("open storage failed", "error", err)
		os.Exit(1)
	}

	// Create server
	srv, err := server.New(cfg, store, logger)
	if err != nil {
		logger.Error("create server failed", "error", err)
		store.Close()
		os.Exit(1)
	}

	// Streams must be known before the API accepts requests
	if err := srv.Bootstrap(ctx); err != nil {
		logger.Error("bootstrap failed", "error", err)
		store.Close()
		os.Exit(1)
	}

	// Create shutdown handler
	shutdownHandler := server.NewShutdownHandler(ctx, srv, logger)

	// Start server in a goroutine
	serveErr := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil {
			serveErr <- err
			shutdownHandler.Trigger()
		}
	}()

	// Wait for shutdown signal
	if err := shutdownHandler.Wait(); err != nil {
		logger.Error("shutdown error", "error", err)
		os.Exit(1)
	}

	select {
	case err := <-serveErr:
		logger.Error("server error", "error", err)
		os.Exit(1)
	default:
	}

	logger.Info("server shut down cleanly")
}
