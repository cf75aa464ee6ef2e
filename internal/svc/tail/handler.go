// If you are AI: This file implements the WebSocket handler for live tail requests.
// Handles GET /api/v1/logstream/{name}/tail and manages client lifecycle.

package tail

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"logbook/internal/core/bus"
	"logbook/internal/core/metadata"
)

// DefaultPingInterval keeps idle tail connections alive through proxies.
const DefaultPingInterval = 30 * time.Second

// Handler handles live tail requests.
type Handler struct {
	registry     *metadata.Registry
	hub          *bus.Hub
	bufferSize   uint32
	pingInterval time.Duration
	logger       *slog.Logger
	upgrader     websocket.Upgrader
}

// NewHandler creates a tail handler. bufferSize bounds events queued per client.
func NewHandler(registry *metadata.Registry, hub *bus.Hub, bufferSize uint32, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	if bufferSize == 0 {
		bufferSize = 1024
	}
	return &Handler{
		registry:     registry,
		hub:          hub,
		bufferSize:   bufferSize,
		pingInterval: DefaultPingInterval,
		logger:       logger.With("component", "tail"),
		upgrader: websocket.Upgrader{
			// Tail is read-only and unauthenticated like the rest of the API
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// ServeHTTP upgrades the request and streams events until the client leaves.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if !h.registry.Contains(name) {
		http.Error(w, metadata.ErrStreamMetaNotFound.Error(), http.StatusNotFound)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade failed, response already sent
		return
	}
	defer conn.Close()

	client := NewClient(conn, h.hub, name, h.bufferSize, h.pingInterval)
	client.Attach()
	h.logger.Debug("tail attached", "stream", name, "remote", r.RemoteAddr)

	err = client.Run()

	dropped := client.Detach()
	h.logger.Debug("tail detached", "stream", name, "dropped", dropped, "error", err)
}

// RegisterRoutes registers the tail route on the given mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.Handle("GET /api/v1/logstream/{name}/tail", h)
}
