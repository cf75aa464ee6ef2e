// If you are AI: This file implements the HTTP server lifecycle and routing.
// One listener serves the stream API and tail; the other serves health and metrics.

package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"logbook/internal/config"
	"logbook/internal/core/bus"
	"logbook/internal/core/metadata"
	"logbook/internal/storage"
	"logbook/internal/svc/api"
	"logbook/internal/svc/health"
	"logbook/internal/svc/ingest"
	"logbook/internal/svc/metrics"
	"logbook/internal/svc/tail"
)

// Server wires the registry, storage and services to two HTTP listeners.
type Server struct {
	cfg    *config.Config
	logger *slog.Logger

	registry  *metadata.Registry
	store     storage.Backend
	hub       *bus.Hub
	ingestSvc *ingest.Service
	healthSvc *health.Service

	apiServer    *http.Server
	healthServer *http.Server

	stopOnce sync.Once
	stopped  chan struct{}
}

// New creates a new server instance with the given configuration.
// The server takes ownership of store and closes it on Shutdown.
// The server is not started until Start is called.
func New(cfg *config.Config, store storage.Backend, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}

	registry := metadata.NewRegistry(metadata.WithLogger(logger))
	hub := bus.NewHub()

	promRegistry := prometheus.NewRegistry()
	promRegistry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metricsSvc, err := metrics.New(promRegistry, registry)
	if err != nil {
		return nil, fmt.Errorf("register metrics: %w", err)
	}

	ingestSvc := ingest.NewService(registry, store, hub, ingest.Options{
		MaxSegmentBytes: cfg.Ingest.MaxSegmentBytes,
		FlushInterval:   cfg.Ingest.FlushInterval,
		Logger:          logger,
		Observer:        metricsSvc,
	})

	apiSvc := api.NewService(registry, store, ingestSvc, hub, api.Options{
		MaxBodyBytes: cfg.Ingest.MaxBodyBytes,
		RateLimit:    cfg.Ingest.RateLimit,
		RateBurst:    cfg.Ingest.RateBurst,
		Logger:       logger,
		Recorder:     metricsSvc,
	})
	tailHandler := tail.NewHandler(registry, hub, cfg.Ingest.TailBuffer, logger)

	apiMux := http.NewServeMux()
	apiSvc.RegisterRoutes(apiMux)
	tailHandler.RegisterRoutes(apiMux)

	healthSvc := health.New()
	healthMux := http.NewServeMux()
	healthSvc.RegisterRoutes(healthMux)
	metricsSvc.RegisterRoutes(healthMux)

	return &Server{
		cfg:       cfg,
		logger:    logger,
		registry:  registry,
		store:     store,
		hub:       hub,
		ingestSvc: ingestSvc,
		healthSvc: healthSvc,
		apiServer: &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Server.HTTPPort),
			Handler:           apiMux,
			ReadHeaderTimeout: 10 * time.Second,
		},
		healthServer: &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Server.HealthPort),
			Handler:           healthMux,
			ReadHeaderTimeout: 10 * time.Second,
		},
		stopped: make(chan struct{}),
	}, nil
}

// Registry returns the metadata registry served by this server.
func (s *Server) Registry() *metadata.Registry {
	return s.registry
}

// Bootstrap loads stream metadata from storage and marks the server ready.
// The load is bounded by the configured bootstrap timeout.
func (s *Server) Bootstrap(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.Bootstrap.Timeout)
	defer cancel()

	if err := s.registry.Load(ctx, s.store); err != nil {
		return fmt.Errorf("bootstrap registry: %w", err)
	}
	s.healthSvc.SetReady(true)
	return nil
}

// Start listens on the configured ports and serves until Shutdown.
// This method blocks until the server is stopped or a listener fails.
func (s *Server) Start() error {
	apiLn, err := net.Listen("tcp", s.apiServer.Addr)
	if err != nil {
		return fmt.Errorf("listen api: %w", err)
	}
	healthLn, err := net.Listen("tcp", s.healthServer.Addr)
	if err != nil {
		apiLn.Close()
		return fmt.Errorf("listen health: %w", err)
	}
	return s.Serve(apiLn, healthLn)
}

// Serve runs both HTTP servers and the ingest flusher on the given listeners.
// If either server fails, the other is shut down and the error is returned.
func (s *Server) Serve(apiLn, healthLn net.Listener) error {
	s.ingestSvc.Start()

	g, gctx := errgroup.WithContext(context.Background())
	g.Go(func() error {
		return serveHTTP(s.apiServer, apiLn)
	})
	g.Go(func() error {
		return serveHTTP(s.healthServer, healthLn)
	})
	g.Go(func() error {
		select {
		case <-s.stopped:
			return nil
		case <-gctx.Done():
			// A listener failed; release the other one
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			s.apiServer.Shutdown(ctx)
			s.healthServer.Shutdown(ctx)
			return nil
		}
	})

	s.logger.Info("server started", "api_addr", apiLn.Addr().String(), "health_addr", healthLn.Addr().String())
	return g.Wait()
}

// serveHTTP treats a graceful close as success.
func serveHTTP(srv *http.Server, ln net.Listener) error {
	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server with a timeout.
// HTTP servers stop first so no new events arrive, then open segments are
// sealed, then storage is closed.
func (s *Server) Shutdown(ctx context.Context) error {
	s.stopOnce.Do(func() { close(s.stopped) })
	s.healthSvc.SetReady(false)

	var errs []error
	if err := s.apiServer.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("shutdown api: %w", err))
	}
	if err := s.ingestSvc.Stop(ctx); err != nil {
		errs = append(errs, fmt.Errorf("flush segments: %w", err))
	}
	if err := s.healthServer.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("shutdown health: %w", err))
	}
	if err := s.store.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close storage: %w", err))
	}
	return errors.Join(errs...)
}

// ShutdownWithTimeout stops the server with a fixed 5-second timeout.
// This is a convenience wrapper around Shutdown.
func (s *Server) ShutdownWithTimeout() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.Shutdown(ctx)
}
