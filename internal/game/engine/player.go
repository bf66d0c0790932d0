package engine

// Phase is the engine's top-level state. It only advances forward:
// WAITING → INITIAL_ROLL → PLAYING.
type Phase string

const (
	// PhaseWaiting accepts joins; no turn order exists yet.
	PhaseWaiting Phase = "WAITING"
	// PhaseInitialRoll has each joined player roll once to establish order.
	PhaseInitialRoll Phase = "INITIAL_ROLL"
	// PhasePlaying is the normal turn loop. It has no terminal transition.
	PhasePlaying Phase = "PLAYING"
)

// Player is one of the two fixed slots owned by an engine.
//
// Invariant: Position is in [0, board.Size). Money has no floor. Properties
// holds owned space ids in acquisition order. SessionID is empty while the
// slot is unbound.
type Player struct {
	ID                  int    `json:"id"`
	Color               string `json:"color"`
	Position            int    `json:"position"`
	Money               int    `json:"money"`
	Properties          []int  `json:"properties"`
	SessionID           string `json:"clientId,omitempty"`
	PurchaseAttemptUsed bool   `json:"purchaseAttemptUsed"`
	// InitialRoll is the tie-break dice sum recorded during INITIAL_ROLL;
	// nil until the slot has rolled.
	InitialRoll *int `json:"initialRoll,omitempty"`
}

// bound reports whether a session occupies this slot.
func (p *Player) bound() bool {
	return p.SessionID != ""
}

// clone returns a deep copy safe to hand outside the engine lock.
func (p *Player) clone() Player {
	out := *p
	out.Properties = append([]int(nil), p.Properties...)
	if p.InitialRoll != nil {
		v := *p.InitialRoll
		out.InitialRoll = &v
	}
	return out
}
