package ws

import (
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/bananopoly/backend/internal/room"
	"github.com/bananopoly/backend/internal/transport"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBuffer     = 32
)

// Client is one WebSocket connection. Its session id doubles as the player
// identity inside rooms and engines.
type Client struct {
	sessionID string
	hub       *Hub
	conn      *websocket.Conn
	logger    *zap.Logger

	mu     sync.Mutex
	send   chan Outbound
	closed bool
}

func newClient(sessionID string, conn *websocket.Conn, hub *Hub) *Client {
	return &Client{
		sessionID: sessionID,
		hub:       hub,
		conn:      conn,
		logger:    hub.logger.With(zap.String("session", sessionID)),
		send:      make(chan Outbound, sendBuffer),
	}
}

// enqueue queues an outbound message, dropping it if the client's buffer is
// full or the connection is already closing.
func (c *Client) enqueue(msg Outbound) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.send <- msg:
	default:
		c.logger.Warn("dropping message for slow client", zap.String("type", msg.Type))
	}
}

func (c *Client) closeSend() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

func (c *Client) sendError(err error) {
	c.enqueue(Outbound{Type: EventError, Data: ErrorData{Message: transport.Message(err)}})
}

// readPump drains inbound events until the connection drops, then tears the
// session down: the client leaves its room and the other member is told.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister(c)
		c.closeSend()
		_ = c.conn.Close()
		c.handleDisconnect()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Debug("connection closed unexpectedly", zap.Error(err))
			}
			return
		}
		var env Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			c.enqueue(Outbound{Type: EventError, Data: ErrorData{Message: "Malformed event"}})
			continue
		}
		c.dispatch(env)
	}
}

// writePump serializes all writes to the connection and keeps it alive with
// pings. It exits when the send channel closes.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			if err := c.conn.WriteJSON(msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) dispatch(env Envelope) {
	switch env.Type {
	case EventCreateRoom:
		c.createRoom()
	case EventJoinRoom:
		c.joinRoom(env.Data)
	case EventStartGame:
		c.startGame()
	case EventRollDice:
		c.engineOp(func(rm *room.Room) error { return rm.Engine.RollDice(c.sessionID) })
	case EventRequestPurchase:
		c.engineOp(func(rm *room.Room) error { return rm.Engine.RequestPurchase(c.sessionID) })
	case EventAnswerQuestion:
		c.answerQuestion(env.Data)
	case EventSellProperty:
		c.sellProperty(env.Data)
	case EventNextTurn:
		c.engineOp(func(rm *room.Room) error { return rm.Engine.NextTurn(c.sessionID) })
	default:
		c.enqueue(Outbound{Type: EventError, Data: ErrorData{Message: "Unknown event type"}})
	}
}

func (c *Client) createRoom() {
	rm := c.hub.registry.Create(c.sessionID)
	c.hub.ensurePump(rm)
	playerID, err := rm.Engine.Join(c.sessionID)
	if err != nil {
		c.sendError(err)
		return
	}
	c.logger.Info("room created", zap.String("room", rm.Code))
	c.enqueue(Outbound{Type: EventRoomCreated, Data: RoomJoinedData{
		Code:      rm.Code,
		IsHost:    true,
		PlayerID:  playerID,
		GameState: rm.Engine.Snapshot(),
	}})
}

func (c *Client) joinRoom(data json.RawMessage) {
	var payload JoinRoomData
	if err := json.Unmarshal(data, &payload); err != nil || payload.Code == "" {
		c.enqueue(Outbound{Type: EventError, Data: ErrorData{Message: "Malformed event"}})
		return
	}
	code := strings.ToUpper(strings.TrimSpace(payload.Code))
	rm, err := c.hub.registry.Join(code, c.sessionID)
	if err != nil {
		c.sendError(err)
		return
	}
	c.hub.ensurePump(rm)
	playerID, err := rm.Engine.Join(c.sessionID)
	if err != nil {
		c.sendError(err)
		return
	}
	c.logger.Info("room joined", zap.String("room", rm.Code))
	c.enqueue(Outbound{Type: EventRoomJoined, Data: RoomJoinedData{
		Code:      rm.Code,
		IsHost:    rm.IsHost(c.sessionID),
		PlayerID:  playerID,
		GameState: rm.Engine.Snapshot(),
	}})
}

func (c *Client) startGame() {
	rm, ok := c.hub.registry.BySession(c.sessionID)
	if !ok {
		c.sendError(room.ErrNotFound)
		return
	}
	if !rm.IsHost(c.sessionID) {
		c.enqueue(Outbound{Type: EventError, Data: ErrorData{Message: "Only the host can start the game"}})
		return
	}
	if err := rm.Engine.Start(); err != nil {
		c.sendError(err)
		return
	}
	c.hub.broadcast(rm, Outbound{Type: EventGameStarted, Data: rm.Engine.Snapshot()})
}

func (c *Client) answerQuestion(data json.RawMessage) {
	var payload AnswerQuestionData
	if err := json.Unmarshal(data, &payload); err != nil {
		c.enqueue(Outbound{Type: EventError, Data: ErrorData{Message: "Malformed event"}})
		return
	}
	rm, ok := c.hub.registry.BySession(c.sessionID)
	if !ok {
		c.sendError(room.ErrNotFound)
		return
	}
	correct, err := rm.Engine.AnswerQuestion(c.sessionID, payload.OptionIndex)
	if err != nil {
		c.sendError(err)
		return
	}
	c.enqueue(Outbound{Type: EventAnswerResult, Data: AnswerResultData{IsCorrect: correct}})
}

func (c *Client) sellProperty(data json.RawMessage) {
	var payload SellPropertyData
	if err := json.Unmarshal(data, &payload); err != nil {
		c.enqueue(Outbound{Type: EventError, Data: ErrorData{Message: "Malformed event"}})
		return
	}
	c.engineOp(func(rm *room.Room) error {
		return rm.Engine.SellProperty(c.sessionID, payload.PropertyID)
	})
}

// engineOp resolves the client's room and applies an engine action. State
// changes reach members through the room's update pump, so successful actions
// need no direct reply.
func (c *Client) engineOp(op func(rm *room.Room) error) {
	rm, ok := c.hub.registry.BySession(c.sessionID)
	if !ok {
		c.sendError(room.ErrNotFound)
		return
	}
	if err := op(rm); err != nil {
		c.sendError(err)
	}
}

func (c *Client) handleDisconnect() {
	rm, deleted := c.hub.registry.RemoveSession(c.sessionID)
	if rm == nil {
		return
	}
	c.logger.Info("session left room", zap.String("room", rm.Code), zap.Bool("roomDeleted", deleted))
	if !deleted {
		c.hub.broadcast(rm, Outbound{Type: EventPlayerDisconnected, Data: PlayerDisconnectedData{SessionID: c.sessionID}})
	}
}
