// Package rest serves the polling game interface. Clients identify themselves
// with a Client-Id header they mint once and reuse; the header value plays the
// same session role a WebSocket connection's id does, so the two interfaces
// can share rooms.
package rest

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/bananopoly/backend/internal/room"
	"github.com/bananopoly/backend/internal/transport"
)

const clientIDHeader = "Client-Id"

// Handler exposes room and game operations as JSON-over-HTTP endpoints.
type Handler struct {
	registry *room.Registry
	logger   *zap.Logger
}

// NewHandler builds the polling interface for a registry.
func NewHandler(registry *room.Registry, logger *zap.Logger) *Handler {
	return &Handler{registry: registry, logger: logger}
}

// Routes mounts every polling endpoint on a fresh router.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", h.health)
	r.Post("/rooms", h.createRoom)
	r.Post("/rooms/{code}/join", h.joinRoom)
	r.Get("/game/state", h.state)
	r.Post("/game/start", h.start)
	r.Post("/game/roll", h.roll)
	r.Post("/game/purchase", h.purchase)
	r.Post("/game/answer", h.answer)
	r.Post("/game/sell", h.sell)
	r.Post("/game/next-turn", h.nextTurn)
	r.Post("/session/leave", h.leave)
	return r
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Warn("response encode failed", zap.Error(err))
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}

func (h *Handler) rejectAction(w http.ResponseWriter, err error) {
	h.writeError(w, transport.HTTPStatus(err), transport.Message(err))
}

// clientID extracts the caller's session id, writing a 400 when the header is
// missing.
func (h *Handler) clientID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := r.Header.Get(clientIDHeader)
	if id == "" {
		h.writeError(w, http.StatusBadRequest, "Client-Id header required")
		return "", false
	}
	return id, true
}

func (h *Handler) roomFor(w http.ResponseWriter, session string) (*room.Room, bool) {
	rm, ok := h.registry.BySession(session)
	if !ok {
		h.writeError(w, http.StatusNotFound, "You are not in a room")
		return nil, false
	}
	return rm, true
}

func (h *Handler) health(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"rooms":  h.registry.Count(),
	})
}

type seatResponse struct {
	Code      string `json:"code"`
	IsHost    bool   `json:"isHost"`
	PlayerID  int    `json:"playerId"`
	GameState any    `json:"gameState"`
}

func (h *Handler) createRoom(w http.ResponseWriter, r *http.Request) {
	session, ok := h.clientID(w, r)
	if !ok {
		return
	}
	rm := h.registry.Create(session)
	playerID, err := rm.Engine.Join(session)
	if err != nil {
		h.rejectAction(w, err)
		return
	}
	h.logger.Info("room created over polling interface",
		zap.String("room", rm.Code),
		zap.String("session", session),
	)
	h.writeJSON(w, http.StatusCreated, seatResponse{
		Code:      rm.Code,
		IsHost:    true,
		PlayerID:  playerID,
		GameState: rm.Engine.Snapshot(),
	})
}

func (h *Handler) joinRoom(w http.ResponseWriter, r *http.Request) {
	session, ok := h.clientID(w, r)
	if !ok {
		return
	}
	code := strings.ToUpper(chi.URLParam(r, "code"))
	rm, err := h.registry.Join(code, session)
	if err != nil {
		h.rejectAction(w, err)
		return
	}
	playerID, err := rm.Engine.Join(session)
	if err != nil {
		h.rejectAction(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, seatResponse{
		Code:      rm.Code,
		IsHost:    rm.IsHost(session),
		PlayerID:  playerID,
		GameState: rm.Engine.Snapshot(),
	})
}

func (h *Handler) state(w http.ResponseWriter, r *http.Request) {
	session, ok := h.clientID(w, r)
	if !ok {
		return
	}
	rm, ok := h.roomFor(w, session)
	if !ok {
		return
	}
	h.writeJSON(w, http.StatusOK, rm.Engine.Snapshot())
}

func (h *Handler) start(w http.ResponseWriter, r *http.Request) {
	session, ok := h.clientID(w, r)
	if !ok {
		return
	}
	rm, ok := h.roomFor(w, session)
	if !ok {
		return
	}
	if !rm.IsHost(session) {
		h.writeError(w, http.StatusForbidden, "Only the host can start the game")
		return
	}
	if err := rm.Engine.Start(); err != nil {
		h.rejectAction(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, rm.Engine.Snapshot())
}

func (h *Handler) roll(w http.ResponseWriter, r *http.Request) {
	h.engineOp(w, r, func(rm *room.Room, session string) error {
		return rm.Engine.RollDice(session)
	})
}

func (h *Handler) purchase(w http.ResponseWriter, r *http.Request) {
	h.engineOp(w, r, func(rm *room.Room, session string) error {
		return rm.Engine.RequestPurchase(session)
	})
}

type answerRequest struct {
	OptionIndex int `json:"optionIndex"`
}

type answerResponse struct {
	IsCorrect bool `json:"isCorrect"`
	GameState any  `json:"gameState"`
}

func (h *Handler) answer(w http.ResponseWriter, r *http.Request) {
	session, ok := h.clientID(w, r)
	if !ok {
		return
	}
	var req answerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Malformed request body")
		return
	}
	rm, ok := h.roomFor(w, session)
	if !ok {
		return
	}
	correct, err := rm.Engine.AnswerQuestion(session, req.OptionIndex)
	if err != nil {
		h.rejectAction(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, answerResponse{
		IsCorrect: correct,
		GameState: rm.Engine.Snapshot(),
	})
}

type sellRequest struct {
	PropertyID int `json:"propertyId"`
}

func (h *Handler) sell(w http.ResponseWriter, r *http.Request) {
	session, ok := h.clientID(w, r)
	if !ok {
		return
	}
	var req sellRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Malformed request body")
		return
	}
	rm, ok := h.roomFor(w, session)
	if !ok {
		return
	}
	if err := rm.Engine.SellProperty(session, req.PropertyID); err != nil {
		h.rejectAction(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, rm.Engine.Snapshot())
}

func (h *Handler) nextTurn(w http.ResponseWriter, r *http.Request) {
	h.engineOp(w, r, func(rm *room.Room, session string) error {
		return rm.Engine.NextTurn(session)
	})
}

func (h *Handler) leave(w http.ResponseWriter, r *http.Request) {
	session, ok := h.clientID(w, r)
	if !ok {
		return
	}
	rm, deleted := h.registry.RemoveSession(session)
	if rm == nil {
		h.writeError(w, http.StatusNotFound, "You are not in a room")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"code":        rm.Code,
		"roomDeleted": deleted,
	})
}

// engineOp resolves the caller's room, applies an engine action, and replies
// with the resulting state.
func (h *Handler) engineOp(w http.ResponseWriter, r *http.Request, op func(rm *room.Room, session string) error) {
	session, ok := h.clientID(w, r)
	if !ok {
		return
	}
	rm, ok := h.roomFor(w, session)
	if !ok {
		return
	}
	if err := op(rm, session); err != nil {
		h.rejectAction(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, rm.Engine.Snapshot())
}
