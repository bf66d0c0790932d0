// Package transport maps engine and registry rejections onto the user-facing
// error contract shared by the WebSocket and polling interfaces.
package transport

import (
	"errors"
	"net/http"

	"github.com/bananopoly/backend/internal/game/engine"
	"github.com/bananopoly/backend/internal/room"
)

// Message returns the user-facing text for a rejected action.
func Message(err error) string {
	switch {
	case errors.Is(err, room.ErrNotFound):
		return "Room not found"
	case errors.Is(err, room.ErrFull):
		return "Room full"
	case errors.Is(err, engine.ErrNoSeats):
		return "No free seat in this game"
	case errors.Is(err, engine.ErrUnknownSession):
		return "You are not part of this game"
	case errors.Is(err, engine.ErrNotYourTurn):
		return "Not your turn"
	case errors.Is(err, engine.ErrWrongPhase):
		return "Action not allowed in this phase"
	case errors.Is(err, engine.ErrRollInFlight):
		return "A roll is already in progress"
	case errors.Is(err, engine.ErrQuestionPending):
		return "Answer the question first"
	case errors.Is(err, engine.ErrNoQuestionPending):
		return "No question to answer"
	case errors.Is(err, engine.ErrPurchaseAttempted):
		return "Purchase already attempted this turn"
	case errors.Is(err, engine.ErrSpaceNotPurchasable):
		return "This space cannot be purchased"
	case errors.Is(err, engine.ErrInsufficientFunds):
		return "Not enough money"
	case errors.Is(err, engine.ErrNotOwned):
		return "You do not own that property"
	case errors.Is(err, engine.ErrClosed):
		return "Room no longer exists"
	default:
		return "Action rejected"
	}
}

// HTTPStatus returns the status code the polling interface uses for a
// rejected action.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, room.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, room.ErrFull):
		return http.StatusConflict
	case errors.Is(err, engine.ErrNoSeats):
		return http.StatusConflict
	case errors.Is(err, engine.ErrClosed):
		return http.StatusGone
	default:
		// Every other rejection is a validation failure of the request.
		return http.StatusUnprocessableEntity
	}
}
