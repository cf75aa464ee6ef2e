// If you are AI: This file provides HTTP API service integration.
// The API exposes stream lifecycle, metadata reads, alert updates and ingest over the registry.

package api

import (
	"context"
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"

	"golang.org/x/time/rate"

	"logbook/internal/core/bus"
	"logbook/internal/core/metadata"
)

// StreamStore is the storage surface the API mutates.
type StreamStore interface {
	CreateStream(ctx context.Context, name string) error
	DeleteStream(ctx context.Context, name string) error
	PutAlert(ctx context.Context, name string, alert []byte) error
}

// Ingester accepts event bodies for a stream.
type Ingester interface {
	Ingest(ctx context.Context, name string, body []byte) (int, error)
	Drop(name string)
}

// Recorder receives API accounting.
type Recorder interface {
	// RegistryMiss counts a lookup of an unknown stream.
	RegistryMiss(op string)
	// Forget drops per-stream accounting of a deleted stream.
	Forget(stream string)
}

// Options configures request limits.
type Options struct {
	MaxBodyBytes int64   // Largest accepted request body
	RateLimit    float64 // Ingest requests per second; 0 disables limiting
	RateBurst    int
	Logger       *slog.Logger
	Recorder     Recorder
}

// Service provides HTTP API functionality.
type Service struct {
	registry  *metadata.Registry
	store     StreamStore
	ingester  Ingester
	hub       *bus.Hub
	limiter   *rate.Limiter
	maxBody   int64
	logger    *slog.Logger
	recorder  Recorder
	startTime time.Time
	version   string
}

// NewService creates a new API service. hub may be nil.
func NewService(registry *metadata.Registry, store StreamStore, ingester Ingester, hub *bus.Hub, opts Options) *Service {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	maxBody := opts.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = 10 << 20
	}

	var limiter *rate.Limiter
	if opts.RateLimit > 0 {
		burst := opts.RateBurst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}

	return &Service{
		registry:  registry,
		store:     store,
		ingester:  ingester,
		hub:       hub,
		limiter:   limiter,
		maxBody:   maxBody,
		logger:    logger.With("component", "api"),
		recorder:  opts.Recorder,
		startTime: time.Now(),
		version:   buildVersion(),
	}
}

// RegisterRoutes registers API routes on the provided mux.
// The tail route is owned by the tail service and registered separately.
func (s *Service) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/server", s.handleServer)
	mux.HandleFunc("GET /api/v1/logstream", s.handleListStreams)
	mux.HandleFunc("PUT /api/v1/logstream/{name}", s.handleCreateStream)
	mux.HandleFunc("DELETE /api/v1/logstream/{name}", s.handleDeleteStream)
	mux.HandleFunc("POST /api/v1/logstream/{name}", s.handleIngest)
	mux.HandleFunc("GET /api/v1/logstream/{name}/schema", s.handleGetSchema)
	mux.HandleFunc("GET /api/v1/logstream/{name}/alert", s.handleGetAlert)
	mux.HandleFunc("PUT /api/v1/logstream/{name}/alert", s.handlePutAlert)
	mux.HandleFunc("GET /api/v1/logstream/{name}/stats", s.handleStats)
}

// buildVersion returns the main module version from build info.
func buildVersion() string {
	info, ok := debug.ReadBuildInfo()
	if !ok || info.Main.Version == "" {
		return "devel"
	}
	return info.Main.Version
}
