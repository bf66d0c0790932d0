package ws

import (
	"encoding/json"

	"github.com/bananopoly/backend/internal/game/engine"
)

// Client-to-server event types.
const (
	EventCreateRoom      = "create-room"
	EventJoinRoom        = "join-room"
	EventStartGame       = "start-game"
	EventRollDice        = "roll-dice"
	EventRequestPurchase = "request-purchase"
	EventAnswerQuestion  = "answer-question"
	EventSellProperty    = "sell-property"
	EventNextTurn        = "next-turn"
)

// Server-to-client event types.
const (
	EventRoomCreated        = "room-created"
	EventRoomJoined         = "room-joined"
	EventGameStarted        = "game-started"
	EventGameStateUpdated   = "game-state-updated"
	EventAnswerResult       = "answer-result"
	EventPlayerDisconnected = "player-disconnected"
	EventError              = "error"
)

// Envelope is the wire frame for client-to-server events. Data is left raw so
// each handler can decode its own payload shape.
type Envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Outbound is the wire frame for server-to-client events.
type Outbound struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

// JoinRoomData is the payload of a join-room event.
type JoinRoomData struct {
	Code string `json:"code"`
}

// AnswerQuestionData is the payload of an answer-question event.
type AnswerQuestionData struct {
	OptionIndex int `json:"optionIndex"`
}

// SellPropertyData is the payload of a sell-property event.
type SellPropertyData struct {
	PropertyID int `json:"propertyId"`
}

// RoomJoinedData is sent to a client after it has been seated in a room,
// both on creation and on joining an existing room.
type RoomJoinedData struct {
	Code      string          `json:"code"`
	IsHost    bool            `json:"isHost"`
	PlayerID  int             `json:"playerId"`
	GameState engine.Snapshot `json:"gameState"`
}

// AnswerResultData carries the verdict for an answered purchase question.
type AnswerResultData struct {
	IsCorrect bool `json:"isCorrect"`
}

// PlayerDisconnectedData names the session that left a room.
type PlayerDisconnectedData struct {
	SessionID string `json:"sessionId"`
}

// ErrorData carries the user-facing message for a rejected event.
type ErrorData struct {
	Message string `json:"message"`
}
