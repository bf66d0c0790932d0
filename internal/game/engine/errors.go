package engine

import "errors"

// All rejections are validation failures: the action is declined and no state
// is mutated, with the single exception of the purchase-attempt latch (see
// RequestPurchase). Nothing here is fatal and nothing panics across the
// engine boundary.
var (
	// ErrNoSeats is returned when both player slots are already bound.
	ErrNoSeats = errors.New("engine: no free player slot")
	// ErrUnknownSession is returned when the session is bound to no slot.
	ErrUnknownSession = errors.New("engine: session not bound to a player")
	// ErrNotYourTurn is returned when the caller is not the turn holder.
	ErrNotYourTurn = errors.New("engine: session is not the turn holder")
	// ErrWrongPhase is returned when the action is invalid in the current phase.
	ErrWrongPhase = errors.New("engine: action not allowed in this phase")
	// ErrRollInFlight is returned while an initial-order roll is resolving.
	ErrRollInFlight = errors.New("engine: a roll is already resolving")
	// ErrQuestionPending is returned when a purchase question blocks the action.
	ErrQuestionPending = errors.New("engine: a question is pending")
	// ErrNoQuestionPending is returned by AnswerQuestion with nothing to answer.
	ErrNoQuestionPending = errors.New("engine: no question is pending")
	// ErrPurchaseAttempted is returned on a second purchase attempt in one turn.
	ErrPurchaseAttempted = errors.New("engine: purchase already attempted this turn")
	// ErrSpaceNotPurchasable is returned for corners and owned properties.
	ErrSpaceNotPurchasable = errors.New("engine: space cannot be purchased")
	// ErrInsufficientFunds is returned when the player cannot afford the space.
	ErrInsufficientFunds = errors.New("engine: not enough money")
	// ErrNotOwned is returned when selling a space outside the caller's list.
	ErrNotOwned = errors.New("engine: property not owned by this player")
	// ErrClosed is returned after the engine's room has been destroyed.
	ErrClosed = errors.New("engine: engine is closed")
)
