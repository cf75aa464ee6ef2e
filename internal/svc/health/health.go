// If you are AI: This file implements the health and readiness endpoints for monitoring and integration tests.

package health

import (
	"net/http"
	"sync/atomic"
)

// Service provides health check functionality.
type Service struct {
	ready atomic.Bool
}

// New creates a new health service instance. It starts not ready.
func New() *Service {
	return &Service{}
}

// SetReady marks whether the registry has been bootstrapped from storage.
func (s *Service) SetReady(ready bool) {
	s.ready.Store(ready)
}

// RegisterRoutes adds health check routes to the provided mux.
// /healthz reports liveness, /readyz reports whether the bootstrap load finished.
func (s *Service) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/readyz", s.handleReady)
}

// handleHealth responds to health check requests.
// Returns 200 OK to indicate the server is running.
func (s *Service) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// handleReady returns 503 until SetReady(true).
func (s *Service) handleReady(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if !s.ready.Load() {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
}
