// Package engine implements the per-room turn-based game state machine.
//
// One Engine instance is exclusively owned by one room. All mutating
// operations are session-scoped, validate before touching state, and run to
// completion under a single mutex, so each room follows a single-writer
// discipline. Every mutation publishes a Snapshot on the updates channel; the
// transport layer subscribes and broadcasts.
package engine

import (
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/bananopoly/backend/internal/game/board"
	"github.com/bananopoly/backend/internal/game/dice"
	"github.com/bananopoly/backend/internal/game/quiz"
)

// Seats is the fixed number of player slots per engine.
const Seats = 2

// playerColors are the display colors for the two slots, in slot order.
var playerColors = [Seats]string{"#ff0000", "#0000ff"}

// Options holds the tunable game rules.
type Options struct {
	// InitialMoney is each player's starting balance.
	InitialMoney int
	// PassStartBonus is credited when a move wraps past the start corner.
	PassStartBonus int
	// RollDelay is the pause before an initial-order roll resolves.
	RollDelay time.Duration
}

// DefaultOptions returns the standard rules.
func DefaultOptions() Options {
	return Options{
		InitialMoney:   500,
		PassStartBonus: 100,
		RollDelay:      1500 * time.Millisecond,
	}
}

// Engine is the turn-based state machine for one room.
type Engine struct {
	mu     sync.Mutex
	logger *zap.Logger
	src    dice.Source
	bank   *quiz.Bank
	opts   Options

	players []*Player
	current int
	dice    *dice.Pair
	board   []board.Space
	pending pendingState
	phase   Phase

	rollTimer *resolveTimer
	updates   chan Snapshot
	closed    bool
}

// New creates an engine in the WAITING phase with two unbound slots and a
// freshly generated board.
//
// Precondition: bank, src, and logger must be non-nil.
func New(bank *quiz.Bank, src dice.Source, logger *zap.Logger, opts Options) *Engine {
	players := make([]*Player, Seats)
	for i := range players {
		players[i] = &Player{
			ID:         i + 1,
			Color:      playerColors[i],
			Money:      opts.InitialMoney,
			Properties: []int{},
		}
	}

	return &Engine{
		logger:  logger,
		src:     src,
		bank:    bank,
		opts:    opts,
		players: players,
		board:   board.Generate(),
		phase:   PhaseWaiting,
		updates: make(chan Snapshot, 16),
	}
}

// Updates returns the channel carrying a Snapshot after every mutation,
// including the timer-driven initial-roll resolution. The channel is closed
// when the engine closes. Slow consumers drop updates rather than block the
// engine.
func (e *Engine) Updates() <-chan Snapshot {
	return e.updates
}

// Close stops the engine: pending timers are cancelled, the updates channel
// is closed, and every further operation fails with ErrClosed.
// Safe to call multiple times.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	e.closed = true
	if e.rollTimer != nil {
		e.rollTimer.Stop()
	}
	close(e.updates)
}

// publishLocked emits a snapshot on the updates channel. Caller must hold e.mu.
func (e *Engine) publishLocked() {
	if e.closed {
		return
	}
	select {
	case e.updates <- e.snapshotLocked():
	default:
		e.logger.Debug("dropping state update, subscriber too slow")
	}
}

// Join binds session to a player slot. Rebinding an already-bound session is
// idempotent and returns the same slot id.
//
// Postcondition: Returns the 1-based player id, or ErrNoSeats when both slots
// are bound to other sessions.
func (e *Engine) Join(session string) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return 0, ErrClosed
	}

	for _, p := range e.players {
		if p.SessionID == session {
			return p.ID, nil
		}
	}
	for _, p := range e.players {
		if !p.bound() {
			p.SessionID = session
			e.logger.Info("player joined",
				zap.Int("player_id", p.ID),
				zap.String("session", session),
			)
			e.publishLocked()
			return p.ID, nil
		}
	}
	return 0, ErrNoSeats
}

// Start moves the engine from WAITING to INITIAL_ROLL, handing the first
// bound slot the opening roll.
//
// Postcondition: On success the phase is INITIAL_ROLL and currentPlayerIndex
// points at the first bound slot (0 when none is bound).
func (e *Engine) Start() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return ErrClosed
	}
	if e.phase != PhaseWaiting {
		return ErrWrongPhase
	}

	e.current = 0
	for i, p := range e.players {
		if p.bound() {
			e.current = i
			break
		}
	}
	e.phase = PhaseInitialRoll
	e.logger.Info("game started", zap.Int("first_slot", e.current))
	e.publishLocked()
	return nil
}

// turnHolderLocked reports whether session is bound to the player at
// currentPlayerIndex. Caller must hold e.mu.
func (e *Engine) turnHolderLocked(session string) bool {
	p := e.players[e.current]
	return p.bound() && p.SessionID == session
}

// pendingErrLocked maps the active sub-state to its rejection. Caller must
// hold e.mu.
func (e *Engine) pendingErrLocked() error {
	switch e.pending.(type) {
	case awaitingRollResolution:
		return ErrRollInFlight
	case awaitingPurchaseAnswer:
		return ErrQuestionPending
	}
	return nil
}

// RollDice throws two dice for the turn holder.
//
// In INITIAL_ROLL the sum is recorded as the tie-break value and resolution
// is deferred by Options.RollDelay; the outcome arrives on the updates
// channel. In PLAYING the player moves immediately, collecting the pass-start
// bonus on wraparound and paying rent when landing on another player's
// property.
func (e *Engine) RollDice(session string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return ErrClosed
	}
	if !e.turnHolderLocked(session) {
		return ErrNotYourTurn
	}
	if err := e.pendingErrLocked(); err != nil {
		return err
	}

	switch e.phase {
	case PhaseInitialRoll:
		e.rollInitialLocked()
		return nil
	case PhasePlaying:
		e.rollMoveLocked()
		return nil
	default:
		return ErrWrongPhase
	}
}

// rollInitialLocked records the tie-break roll and schedules its resolution.
// Caller must hold e.mu.
func (e *Engine) rollInitialLocked() {
	pair := dice.RollPair(e.src)
	e.dice = &pair
	sum := pair.Sum()
	e.players[e.current].InitialRoll = &sum
	e.pending = awaitingRollResolution{}
	e.rollTimer = newResolveTimer(e.opts.RollDelay, e.resolveInitialRoll)

	e.logger.Debug("initial roll",
		zap.Int("player_id", e.players[e.current].ID),
		zap.Int("sum", sum),
	)
	e.publishLocked()
}

// resolveInitialRoll runs on the roll timer once the display delay elapses.
// It either hands the dice to the next bound slot that has not rolled, or,
// when every bound slot has rolled, fixes the turn order and enters PLAYING.
func (e *Engine) resolveInitialRoll() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	if _, ok := e.pending.(awaitingRollResolution); !ok {
		return
	}
	e.pending = nil

	next := -1
	for i := e.current + 1; i < len(e.players); i++ {
		if e.players[i].bound() && e.players[i].InitialRoll == nil {
			next = i
			break
		}
	}

	if next >= 0 {
		e.current = next
		e.publishLocked()
		return
	}

	// Everyone rolled: order bound players by descending tie-break sum.
	// Equal sums keep join order (stable sort, no re-roll).
	var bound, unbound []*Player
	for _, p := range e.players {
		if p.bound() {
			bound = append(bound, p)
		} else {
			unbound = append(unbound, p)
		}
	}
	sort.SliceStable(bound, func(i, j int) bool {
		return tieBreak(bound[i]) > tieBreak(bound[j])
	})
	e.players = append(bound, unbound...)
	e.current = 0
	e.dice = nil
	e.phase = PhasePlaying

	e.logger.Info("turn order resolved",
		zap.Int("first_player", e.players[0].ID),
	)
	e.publishLocked()
}

func tieBreak(p *Player) int {
	if p.InitialRoll == nil {
		return 0
	}
	return *p.InitialRoll
}

// rollMoveLocked performs a normal movement roll. Caller must hold e.mu and
// have validated turn, phase, and sub-state.
func (e *Engine) rollMoveLocked() {
	pair := dice.RollPair(e.src)
	player := e.players[e.current]

	newPos := player.Position + pair.Sum()
	if newPos >= board.Size {
		newPos -= board.Size
		player.Money += e.opts.PassStartBonus
	}
	player.Position = newPos

	space := e.board[newPos]
	if space.Kind == board.KindProperty && space.OwnerID != nil && *space.OwnerID != player.ID {
		if owner := e.playerByIDLocked(*space.OwnerID); owner != nil {
			rent := space.Price / 2
			player.Money -= rent
			owner.Money += rent
			e.logger.Debug("rent paid",
				zap.Int("payer", player.ID),
				zap.Int("owner", owner.ID),
				zap.Int("amount", rent),
			)
		}
	}

	e.dice = &pair
	e.publishLocked()
}

// playerByIDLocked returns the player with the given id, or nil. Caller must
// hold e.mu.
func (e *Engine) playerByIDLocked(id int) *Player {
	for _, p := range e.players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// RequestPurchase starts the purchase quiz for the space under the turn
// holder. Each player gets one attempt per turn: once the turn and phase
// checks pass, the attempt is latched regardless of whether the space turns
// out to be purchasable or affordable.
func (e *Engine) RequestPurchase(session string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return ErrClosed
	}
	if e.phase != PhasePlaying {
		return ErrWrongPhase
	}
	if !e.turnHolderLocked(session) {
		return ErrNotYourTurn
	}
	if err := e.pendingErrLocked(); err != nil {
		return err
	}

	player := e.players[e.current]
	if player.PurchaseAttemptUsed {
		return ErrPurchaseAttempted
	}
	player.PurchaseAttemptUsed = true

	space := e.board[player.Position]
	if space.Kind != board.KindProperty || space.OwnerID != nil {
		e.publishLocked()
		return ErrSpaceNotPurchasable
	}
	if player.Money < space.Price {
		e.publishLocked()
		return ErrInsufficientFunds
	}

	question := e.bank.Pick(space.Level, e.src)
	e.pending = awaitingPurchaseAnswer{question: question, spaceID: space.ID}

	e.logger.Debug("purchase quiz started",
		zap.Int("player_id", player.ID),
		zap.Int("space_id", space.ID),
		zap.String("level", string(space.Level)),
	)
	e.publishLocked()
	return nil
}

// AnswerQuestion resolves the pending purchase question. A correct answer
// transfers the price to the bank and the space to the player; either way the
// pending question clears.
//
// Postcondition: On a nil error the returned bool reports correctness and no
// question is pending.
func (e *Engine) AnswerQuestion(session string, optionIndex int) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return false, ErrClosed
	}
	if !e.turnHolderLocked(session) {
		return false, ErrNotYourTurn
	}
	pending, ok := e.pending.(awaitingPurchaseAnswer)
	if !ok {
		return false, ErrNoQuestionPending
	}

	player := e.players[e.current]
	correct := optionIndex == pending.question.CorrectIndex
	if correct {
		space := &e.board[pending.spaceID]
		player.Money -= space.Price
		player.Properties = append(player.Properties, space.ID)
		owner := player.ID
		space.OwnerID = &owner
	}

	e.pending = nil
	e.logger.Info("purchase answered",
		zap.Int("player_id", player.ID),
		zap.Int("space_id", pending.spaceID),
		zap.Bool("correct", correct),
	)
	e.publishLocked()
	return correct, nil
}

// SellProperty sells a space owned by the caller's player back to the bank
// for a quarter of its price. Sale is not turn-gated: any bound session may
// sell its own property at any time.
func (e *Engine) SellProperty(session string, spaceID int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return ErrClosed
	}

	var player *Player
	for _, p := range e.players {
		if p.bound() && p.SessionID == session {
			player = p
			break
		}
	}
	if player == nil {
		return ErrUnknownSession
	}

	idx := -1
	for i, id := range player.Properties {
		if id == spaceID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrNotOwned
	}

	space := &e.board[spaceID]
	player.Money += space.Price / 4
	player.Properties = append(player.Properties[:idx], player.Properties[idx+1:]...)
	space.OwnerID = nil

	e.logger.Debug("property sold",
		zap.Int("player_id", player.ID),
		zap.Int("space_id", spaceID),
	)
	e.publishLocked()
	return nil
}

// NextTurn passes the dice to the next bound slot, clearing the dice display
// and resetting the next player's purchase attempt.
func (e *Engine) NextTurn(session string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return ErrClosed
	}
	if e.phase != PhasePlaying {
		return ErrWrongPhase
	}
	if !e.turnHolderLocked(session) {
		return ErrNotYourTurn
	}

	next := e.current
	for i := 0; i < len(e.players); i++ {
		next = (next + 1) % len(e.players)
		if e.players[next].bound() {
			break
		}
	}
	e.current = next
	e.dice = nil
	e.players[e.current].PurchaseAttemptUsed = false

	e.logger.Debug("turn advanced", zap.Int("player_id", e.players[e.current].ID))
	e.publishLocked()
	return nil
}
