// If you are AI: This file implements HTTP API handlers.
// Handlers validate the stream name, consult the registry and map errors to status codes.

package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"runtime"
	"time"

	"logbook/internal/core/metadata"
	"logbook/internal/storage"
	"logbook/internal/svc/ingest"
)

// ServerResponse represents the /api/server response.
type ServerResponse struct {
	Version   string `json:"version"`
	Uptime    int64  `json:"uptime"` // seconds
	GoVersion string `json:"go_version"`
	Streams   int    `json:"streams"`
}

// StreamsResponse represents the /api/v1/logstream response.
type StreamsResponse struct {
	Streams []string `json:"streams"`
}

// IngestResponse reports how many events a POST accepted.
type IngestResponse struct {
	Ingested int `json:"ingested"`
}

// ErrorResponse represents an API error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// handleServer handles GET /api/server.
func (s *Service) handleServer(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, ServerResponse{
		Version:   s.version,
		Uptime:    int64(time.Since(s.startTime) / time.Second),
		GoVersion: runtime.Version(),
		Streams:   s.registry.Len(),
	})
}

// handleListStreams handles GET /api/v1/logstream.
func (s *Service) handleListStreams(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, StreamsResponse{Streams: s.registry.Streams()})
}

// handleCreateStream handles PUT /api/v1/logstream/{name}.
func (s *Service) handleCreateStream(w http.ResponseWriter, r *http.Request) {
	name, ok := s.streamName(w, r)
	if !ok {
		return
	}
	if s.registry.Contains(name) {
		s.writeError(w, http.StatusConflict, "stream already exists")
		return
	}

	if err := s.store.CreateStream(r.Context(), name); err != nil {
		s.logger.Error("create stream failed", "stream", name, "error", err)
		s.writeError(w, http.StatusInternalServerError, "create stream failed")
		return
	}
	s.registry.AddStream(name, "", "")

	s.logger.Info("stream created", "stream", name)
	s.writeJSON(w, http.StatusCreated, map[string]string{"stream": name})
}

// handleDeleteStream handles DELETE /api/v1/logstream/{name}.
// Deleting an unknown stream succeeds.
func (s *Service) handleDeleteStream(w http.ResponseWriter, r *http.Request) {
	name, ok := s.streamName(w, r)
	if !ok {
		return
	}

	// Registry first: ingest racing the delete then fails with not-found
	// instead of opening a fresh segment after Drop.
	s.registry.DeleteStream(name)
	s.ingester.Drop(name)
	if s.hub != nil {
		s.hub.Remove(name)
	}
	if s.recorder != nil {
		s.recorder.Forget(name)
	}
	if err := s.store.DeleteStream(r.Context(), name); err != nil {
		s.logger.Error("delete stream failed", "stream", name, "error", err)
		s.writeError(w, http.StatusInternalServerError, "delete stream failed")
		return
	}

	s.logger.Info("stream deleted", "stream", name)
	w.WriteHeader(http.StatusNoContent)
}

// handleIngest handles POST /api/v1/logstream/{name}.
func (s *Service) handleIngest(w http.ResponseWriter, r *http.Request) {
	if s.limiter != nil && !s.limiter.Allow() {
		s.writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
		return
	}
	name, ok := s.streamName(w, r)
	if !ok {
		return
	}

	body, ok := s.readBody(w, r)
	if !ok {
		return
	}

	n, err := s.ingester.Ingest(r.Context(), name, body)
	switch {
	case err == nil:
		s.writeJSON(w, http.StatusOK, IngestResponse{Ingested: n})
	case errors.Is(err, ingest.ErrInvalidEvent):
		s.writeError(w, http.StatusBadRequest, err.Error())
	default:
		s.writeRegistryError(w, "ingest", name, err)
	}
}

// handleGetSchema handles GET /api/v1/logstream/{name}/schema.
func (s *Service) handleGetSchema(w http.ResponseWriter, r *http.Request) {
	name, ok := s.streamName(w, r)
	if !ok {
		return
	}
	schema, err := s.registry.Schema(name)
	if err != nil {
		s.writeRegistryError(w, "schema", name, err)
		return
	}
	if schema == "" {
		s.writeError(w, http.StatusNotFound, "stream has no schema yet")
		return
	}
	s.writeRaw(w, schema)
}

// handleGetAlert handles GET /api/v1/logstream/{name}/alert.
func (s *Service) handleGetAlert(w http.ResponseWriter, r *http.Request) {
	name, ok := s.streamName(w, r)
	if !ok {
		return
	}
	alert, err := s.registry.Alert(name)
	if err != nil {
		s.writeRegistryError(w, "alert", name, err)
		return
	}
	if alert == "" {
		s.writeError(w, http.StatusNotFound, "stream has no alert config")
		return
	}
	s.writeRaw(w, alert)
}

// handlePutAlert handles PUT /api/v1/logstream/{name}/alert.
// The body must be a JSON document; it is stored verbatim.
func (s *Service) handlePutAlert(w http.ResponseWriter, r *http.Request) {
	name, ok := s.streamName(w, r)
	if !ok {
		return
	}
	body, ok := s.readBody(w, r)
	if !ok {
		return
	}
	if !json.Valid(body) {
		s.writeError(w, http.StatusBadRequest, "alert config must be valid JSON")
		return
	}
	if _, err := s.registry.Alert(name); err != nil {
		s.writeRegistryError(w, "alert", name, err)
		return
	}

	if err := s.store.PutAlert(r.Context(), name, body); err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			s.writeError(w, http.StatusNotFound, "stream not found in storage")
			return
		}
		s.logger.Error("persist alert failed", "stream", name, "error", err)
		s.writeError(w, http.StatusInternalServerError, "persist alert failed")
		return
	}
	if err := s.registry.SetAlert(name, string(body)); err != nil {
		s.writeRegistryError(w, "alert", name, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleStats handles GET /api/v1/logstream/{name}/stats.
func (s *Service) handleStats(w http.ResponseWriter, r *http.Request) {
	name, ok := s.streamName(w, r)
	if !ok {
		return
	}
	stats, err := s.registry.Stats(name)
	if err != nil {
		s.writeRegistryError(w, "stats", name, err)
		return
	}
	s.writeJSON(w, http.StatusOK, stats)
}

// streamName extracts and validates the {name} path value.
func (s *Service) streamName(w http.ResponseWriter, r *http.Request) (string, bool) {
	name := r.PathValue("name")
	if err := ValidateStreamName(name); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return "", false
	}
	return name, true
}

// readBody reads the request body up to the configured limit.
func (s *Service) readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return nil, false
		}
		s.writeError(w, http.StatusBadRequest, "read request body failed")
		return nil, false
	}
	return body, true
}

// writeRegistryError maps a registry miss to 404 and anything else to 500.
func (s *Service) writeRegistryError(w http.ResponseWriter, op, name string, err error) {
	if metadata.IsNotFound(err) {
		if s.recorder != nil {
			s.recorder.RegistryMiss(op)
		}
		s.writeError(w, http.StatusNotFound, err.Error())
		return
	}
	s.logger.Error("request failed", "op", op, "stream", name, "error", err)
	s.writeError(w, http.StatusInternalServerError, op+" failed")
}

// writeJSON writes a JSON response.
func (s *Service) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeRaw writes stored JSON text as-is.
func (s *Service) writeRaw(w http.ResponseWriter, text string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, text)
}

// writeError writes an error response.
func (s *Service) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, ErrorResponse{Error: message})
}
