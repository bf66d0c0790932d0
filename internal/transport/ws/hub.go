package ws

import (
	"sync"

	"go.uber.org/zap"

	"github.com/bananopoly/backend/internal/room"
)

// Hub tracks connected clients by session id and fans engine snapshots out to
// the members of each room. One pump goroutine runs per live room; it exits
// when the room's engine closes its updates channel.
type Hub struct {
	registry *room.Registry
	logger   *zap.Logger

	mu      sync.RWMutex
	clients map[string]*Client
	pumped  map[string]struct{}
}

// NewHub creates a hub bound to a room registry.
//
// Precondition: registry and logger are non-nil.
func NewHub(registry *room.Registry, logger *zap.Logger) *Hub {
	return &Hub{
		registry: registry,
		logger:   logger,
		clients:  make(map[string]*Client),
		pumped:   make(map[string]struct{}),
	}
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c.sessionID] = c
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[c.sessionID] == c {
		delete(h.clients, c.sessionID)
	}
}

// sendTo queues a message for a single session. Messages for sessions without
// a live connection are dropped.
func (h *Hub) sendTo(sessionID string, msg Outbound) {
	h.mu.RLock()
	c := h.clients[sessionID]
	h.mu.RUnlock()
	if c != nil {
		c.enqueue(msg)
	}
}

// broadcast queues a message for every current member of a room.
func (h *Hub) broadcast(rm *room.Room, msg Outbound) {
	for _, session := range rm.Members() {
		h.sendTo(session, msg)
	}
}

// ensurePump starts the snapshot fan-out goroutine for a room if it is not
// already running. Rooms created over the polling interface get their pump the
// first time a WebSocket client touches them.
func (h *Hub) ensurePump(rm *room.Room) {
	h.mu.Lock()
	if _, ok := h.pumped[rm.Code]; ok {
		h.mu.Unlock()
		return
	}
	h.pumped[rm.Code] = struct{}{}
	h.mu.Unlock()

	go h.pump(rm)
}

func (h *Hub) pump(rm *room.Room) {
	for snap := range rm.Engine.Updates() {
		h.broadcast(rm, Outbound{Type: EventGameStateUpdated, Data: snap})
	}
	h.mu.Lock()
	delete(h.pumped, rm.Code)
	h.mu.Unlock()
	h.logger.Debug("room update pump stopped", zap.String("room", rm.Code))
}
