// If you are AI: This file handles graceful shutdown orchestration for the server process.

package server

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"
)

// ShutdownHandler manages graceful shutdown on SIGINT or SIGTERM.
type ShutdownHandler struct {
	server  *Server
	ctx     context.Context
	cancel  context.CancelFunc
	timeout time.Duration
	logger  *slog.Logger
}

// NewShutdownHandler creates a handler that listens for termination signals.
// The provided context is used as the parent for shutdown operations.
func NewShutdownHandler(ctx context.Context, server *Server, logger *slog.Logger) *ShutdownHandler {
	if logger == nil {
		logger = slog.Default()
	}
	shutdownCtx, cancel := context.WithCancel(ctx)
	return &ShutdownHandler{
		server:  server,
		ctx:     shutdownCtx,
		cancel:  cancel,
		timeout: 10 * time.Second,
		logger:  logger,
	}
}

// Wait blocks until a termination signal is received, then initiates shutdown.
// This method should be called from the main goroutine.
func (h *ShutdownHandler) Wait() error {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case sig := <-sigChan:
		h.logger.Info("shutdown signal received", "signal", sig.String())
	case <-h.ctx.Done():
	}

	// Cancel context to signal shutdown
	h.cancel()

	// Segments are sealed during shutdown, so allow more than a bare HTTP drain
	shutdownCtx, cancel := context.WithTimeout(context.Background(), h.timeout)
	defer cancel()

	return h.server.Shutdown(shutdownCtx)
}

// Trigger starts shutdown without a signal, e.g. when a listener fails.
func (h *ShutdownHandler) Trigger() {
	h.cancel()
}

// Context returns the shutdown context that is cancelled when shutdown begins.
func (h *ShutdownHandler) Context() context.Context {
	return h.ctx
}
