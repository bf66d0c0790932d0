// Package ws serves the real-time game interface over WebSocket. Each
// connection gets a fresh session id; the same id seats the player in rooms
// and engines, so a dropped connection is a dropped player.
package ws

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/bananopoly/backend/internal/room"
)

// Handler upgrades HTTP requests to WebSocket connections and hands each one
// to the hub.
type Handler struct {
	hub      *Hub
	logger   *zap.Logger
	upgrader websocket.Upgrader
}

// NewHandler builds the WebSocket endpoint for a registry.
func NewHandler(registry *room.Registry, logger *zap.Logger) *Handler {
	return &Handler{
		hub:    NewHub(registry, logger),
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The game server fronts a browser client on another origin.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	c := newClient(uuid.NewString(), conn, h.hub)
	h.hub.register(c)
	h.logger.Info("session connected", zap.String("session", c.sessionID))

	go c.writePump()
	c.readPump()
}
