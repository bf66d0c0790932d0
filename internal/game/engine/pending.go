package engine

import "github.com/bananopoly/backend/internal/game/quiz"

// pendingState is the engine's sub-state between a triggering action and its
// resolution. A nil pendingState means idle. Modelling this as a tagged
// variant keeps illegal combinations (a pending question without a purchase
// target, or a roll resolving during a quiz) unrepresentable.
type pendingState interface {
	isPending()
}

// awaitingRollResolution holds while an initial-order roll waits for its
// timed resolution.
type awaitingRollResolution struct{}

func (awaitingRollResolution) isPending() {}

// awaitingPurchaseAnswer holds while the turn holder must answer the purchase
// question for spaceID.
type awaitingPurchaseAnswer struct {
	question quiz.Question
	spaceID  int
}

func (awaitingPurchaseAnswer) isPending() {}
