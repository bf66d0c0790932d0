package engine

import (
	"github.com/bananopoly/backend/internal/game/board"
	"github.com/bananopoly/backend/internal/game/quiz"
)

// Snapshot is the full view of one engine's state, safe to serialize and
// broadcast. Every field is a deep copy; mutating a Snapshot never touches
// the engine.
type Snapshot struct {
	Players            []Player       `json:"players"`
	CurrentPlayerIndex int            `json:"currentPlayerIndex"`
	DiceValue          *[2]int        `json:"diceValue"`
	Board              []board.Space  `json:"boardConfig"`
	Rolling            bool           `json:"isRolling"`
	Question           *quiz.Question `json:"currentQuestion"`
	PendingPurchaseID  *int           `json:"pendingPurchaseId"`
	Phase              Phase          `json:"gamePhase"`
}

// snapshotLocked builds a Snapshot. Caller must hold e.mu.
func (e *Engine) snapshotLocked() Snapshot {
	snap := Snapshot{
		Players:            make([]Player, len(e.players)),
		CurrentPlayerIndex: e.current,
		Board:              make([]board.Space, len(e.board)),
		Phase:              e.phase,
	}

	for i, p := range e.players {
		snap.Players[i] = p.clone()
	}

	for i, s := range e.board {
		copied := s
		if s.OwnerID != nil {
			owner := *s.OwnerID
			copied.OwnerID = &owner
		}
		snap.Board[i] = copied
	}

	if e.dice != nil {
		snap.DiceValue = &[2]int{e.dice.First, e.dice.Second}
	}

	switch pending := e.pending.(type) {
	case awaitingRollResolution:
		snap.Rolling = true
	case awaitingPurchaseAnswer:
		q := pending.question
		q.Options = append([]string(nil), pending.question.Options...)
		snap.Question = &q
		spaceID := pending.spaceID
		snap.PendingPurchaseID = &spaceID
	}

	return snap
}

// Snapshot returns the engine's current state.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}
