package engine_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/bananopoly/backend/internal/game/board"
	"github.com/bananopoly/backend/internal/game/engine"
	"github.com/bananopoly/backend/internal/game/quiz"
)

// queueSource returns scripted values, cycling when exhausted.
type queueSource struct {
	values []int
	next   int
}

func (q *queueSource) Intn(n int) int {
	v := q.values[q.next%len(q.values)]
	q.next++
	return v % n
}

// testBank holds exactly one question per tier so Pick is deterministic
// regardless of how many random values precede it.
func testBank(t *testing.T) *quiz.Bank {
	t.Helper()
	bank, err := quiz.NewBank([]quiz.Question{
		{Level: board.LevelEasy, Text: "easy?", Options: []string{"right", "wrong"}, CorrectIndex: 0},
		{Level: board.LevelMedium, Text: "medium?", Options: []string{"wrong", "right"}, CorrectIndex: 1},
		{Level: board.LevelHard, Text: "hard?", Options: []string{"right", "wrong"}, CorrectIndex: 0},
		{Level: board.LevelExtreme, Text: "extreme?", Options: []string{"right", "wrong"}, CorrectIndex: 0},
	})
	require.NoError(t, err)
	return bank
}

func testOptions() engine.Options {
	opts := engine.DefaultOptions()
	opts.RollDelay = 2 * time.Millisecond
	return opts
}

func newTestEngine(t *testing.T, values []int, opts engine.Options) *engine.Engine {
	t.Helper()
	e := engine.New(testBank(t), &queueSource{values: values}, zap.NewNop(), opts)
	t.Cleanup(e.Close)
	return e
}

// waitPhase blocks until the engine reaches the wanted phase.
func waitPhase(t *testing.T, e *engine.Engine, want engine.Phase) {
	t.Helper()
	require.Eventually(t, func() bool {
		return e.Snapshot().Phase == want
	}, time.Second, time.Millisecond, "engine never reached phase %s", want)
}

// startPlaying joins the sessions, starts the game, and drives every bound
// player through the initial-order roll.
func startPlaying(t *testing.T, e *engine.Engine, sessions ...string) {
	t.Helper()
	for _, s := range sessions {
		_, err := e.Join(s)
		require.NoError(t, err)
	}
	require.NoError(t, e.Start())

	for range sessions {
		snap := e.Snapshot()
		holder := snap.Players[snap.CurrentPlayerIndex].SessionID
		require.NoError(t, e.RollDice(holder))
		require.Eventually(t, func() bool {
			return !e.Snapshot().Rolling
		}, time.Second, time.Millisecond)
	}
	waitPhase(t, e, engine.PhasePlaying)
}

func TestNew_InitialState(t *testing.T) {
	e := newTestEngine(t, []int{0}, testOptions())
	snap := e.Snapshot()

	assert.Equal(t, engine.PhaseWaiting, snap.Phase)
	require.Len(t, snap.Players, 2)
	assert.Equal(t, 1, snap.Players[0].ID)
	assert.Equal(t, 2, snap.Players[1].ID)
	for _, p := range snap.Players {
		assert.Equal(t, 500, p.Money)
		assert.Zero(t, p.Position)
		assert.Empty(t, p.Properties)
		assert.Empty(t, p.SessionID)
	}
	assert.Len(t, snap.Board, board.Size)
	assert.Nil(t, snap.DiceValue)
	assert.Nil(t, snap.Question)
	assert.Nil(t, snap.PendingPurchaseID)
	assert.False(t, snap.Rolling)
}

func TestJoin_BindsSlotsInOrder(t *testing.T) {
	e := newTestEngine(t, []int{0}, testOptions())

	id, err := e.Join("alice")
	require.NoError(t, err)
	assert.Equal(t, 1, id)

	id, err = e.Join("bob")
	require.NoError(t, err)
	assert.Equal(t, 2, id)
}

func TestJoin_Idempotent(t *testing.T) {
	e := newTestEngine(t, []int{0}, testOptions())

	first, err := e.Join("alice")
	require.NoError(t, err)
	again, err := e.Join("alice")
	require.NoError(t, err)
	assert.Equal(t, first, again)
}

func TestJoin_NoSeats(t *testing.T) {
	e := newTestEngine(t, []int{0}, testOptions())
	_, err := e.Join("alice")
	require.NoError(t, err)
	_, err = e.Join("bob")
	require.NoError(t, err)

	_, err = e.Join("carol")
	assert.ErrorIs(t, err, engine.ErrNoSeats)
}

func TestStart_EntersInitialRoll(t *testing.T) {
	e := newTestEngine(t, []int{0}, testOptions())
	_, err := e.Join("alice")
	require.NoError(t, err)
	_, err = e.Join("bob")
	require.NoError(t, err)

	require.NoError(t, e.Start())
	snap := e.Snapshot()
	assert.Equal(t, engine.PhaseInitialRoll, snap.Phase)
	assert.Equal(t, 0, snap.CurrentPlayerIndex, "first bound slot opens the rolling")
}

func TestStart_OnlyOnce(t *testing.T) {
	e := newTestEngine(t, []int{0}, testOptions())
	_, err := e.Join("alice")
	require.NoError(t, err)
	require.NoError(t, e.Start())
	assert.ErrorIs(t, e.Start(), engine.ErrWrongPhase)
}

func TestRollDice_RejectedWhileWaiting(t *testing.T) {
	e := newTestEngine(t, []int{0}, testOptions())
	_, err := e.Join("alice")
	require.NoError(t, err)
	assert.ErrorIs(t, e.RollDice("alice"), engine.ErrWrongPhase)
}

func TestInitialRoll_HigherSumGoesFirst(t *testing.T) {
	// alice draws 4+5=9, bob draws 2+3=5.
	e := newTestEngine(t, []int{3, 4, 1, 2}, testOptions())
	startPlaying(t, e, "alice", "bob")

	snap := e.Snapshot()
	assert.Equal(t, 1, snap.Players[0].ID, "alice rolled higher and goes first")
	assert.Equal(t, 2, snap.Players[1].ID)
	assert.Equal(t, 0, snap.CurrentPlayerIndex)
	assert.Nil(t, snap.DiceValue, "dice display clears when order resolves")
	assert.Equal(t, 9, *snap.Players[0].InitialRoll)
	assert.Equal(t, 5, *snap.Players[1].InitialRoll)
}

func TestInitialRoll_LowerFirstRollerGoesSecond(t *testing.T) {
	// alice draws 1+2=3, bob draws 5+6=11.
	e := newTestEngine(t, []int{0, 1, 4, 5}, testOptions())
	startPlaying(t, e, "alice", "bob")

	snap := e.Snapshot()
	assert.Equal(t, 2, snap.Players[0].ID, "bob rolled higher and goes first")
	assert.Equal(t, 1, snap.Players[1].ID)
}

func TestInitialRoll_TieKeepsJoinOrder(t *testing.T) {
	// Both draw 3+3=6.
	e := newTestEngine(t, []int{2, 2, 2, 2}, testOptions())
	startPlaying(t, e, "alice", "bob")

	snap := e.Snapshot()
	assert.Equal(t, 1, snap.Players[0].ID, "equal sums keep join order")
	assert.Equal(t, 2, snap.Players[1].ID)
}

func TestInitialRoll_SecondRollBlockedWhileResolving(t *testing.T) {
	opts := testOptions()
	opts.RollDelay = 100 * time.Millisecond
	e := newTestEngine(t, []int{2}, opts)
	_, err := e.Join("alice")
	require.NoError(t, err)
	require.NoError(t, e.Start())

	require.NoError(t, e.RollDice("alice"))
	assert.ErrorIs(t, e.RollDice("alice"), engine.ErrRollInFlight)
	assert.True(t, e.Snapshot().Rolling)
}

func TestRollDice_WrongSessionDoesNotMutate(t *testing.T) {
	e := newTestEngine(t, []int{2}, testOptions())
	startPlaying(t, e, "alice", "bob")

	before := e.Snapshot()
	intruder := before.Players[1].SessionID
	assert.ErrorIs(t, e.RollDice(intruder), engine.ErrNotYourTurn)
	assert.Equal(t, before, e.Snapshot(), "rejected actions must not mutate state")
}

func TestRollDice_MovesCurrentPlayer(t *testing.T) {
	// Every draw is 3+3=6.
	e := newTestEngine(t, []int{2}, testOptions())
	startPlaying(t, e, "alice")

	require.NoError(t, e.RollDice("alice"))
	snap := e.Snapshot()
	holder := snap.Players[snap.CurrentPlayerIndex]
	assert.Equal(t, 6, holder.Position)
	require.NotNil(t, snap.DiceValue)
	assert.Equal(t, [2]int{3, 3}, *snap.DiceValue)
}

func TestRollDice_WrapCreditsBonus(t *testing.T) {
	// Every draw is 6+6=12: positions 12, 24, 36, then 48 → 8 with the bonus.
	e := newTestEngine(t, []int{5}, testOptions())
	startPlaying(t, e, "alice")

	moneyBefore := e.Snapshot().Players[0].Money
	for i := 0; i < 4; i++ {
		require.NoError(t, e.RollDice("alice"))
	}
	snap := e.Snapshot()
	holder := snap.Players[snap.CurrentPlayerIndex]
	assert.Equal(t, 8, holder.Position, "(36+12) mod 40")
	assert.Equal(t, moneyBefore+100, holder.Money, "wrap past start pays the bonus")
}

func TestRent_PaidToOwner(t *testing.T) {
	// alice rolls 9 initially, bob 5, then both movement draws are 1+2=3.
	e := newTestEngine(t, []int{3, 4, 1, 2, 0, 1, 0, 0, 1}, testOptions())
	startPlaying(t, e, "alice", "bob")

	// alice moves to space 3 (easy tier, price 50) and buys it.
	require.NoError(t, e.RollDice("alice"))
	require.Equal(t, 3, e.Snapshot().Players[0].Position)
	require.NoError(t, e.RequestPurchase("alice"))
	correct, err := e.AnswerQuestion("alice", 0)
	require.NoError(t, err)
	require.True(t, correct)
	require.NoError(t, e.NextTurn("alice"))

	// bob lands on the same space and owes half the price.
	require.NoError(t, e.RollDice("bob"))
	snap := e.Snapshot()
	alice, bob := snap.Players[0], snap.Players[1]
	require.Equal(t, 3, bob.Position)
	assert.Equal(t, 500-25, bob.Money, "rent is floor(50*0.5)")
	assert.Equal(t, 500-50+25, alice.Money, "owner collects the rent")
}

func TestRequestPurchase_SuccessPicksMatchingQuestion(t *testing.T) {
	e := newTestEngine(t, []int{0, 1}, testOptions())
	startPlaying(t, e, "alice")

	require.NoError(t, e.RollDice("alice")) // 1+2=3 → easy space, price 50
	require.NoError(t, e.RequestPurchase("alice"))

	snap := e.Snapshot()
	require.NotNil(t, snap.Question)
	assert.Equal(t, board.LevelEasy, snap.Question.Level)
	require.NotNil(t, snap.PendingPurchaseID)
	assert.Equal(t, 3, *snap.PendingPurchaseID)
	assert.True(t, snap.Players[0].PurchaseAttemptUsed)
}

func TestRequestPurchase_LatchedEvenOnFailure(t *testing.T) {
	// The player never moves, so they stand on the start corner.
	e := newTestEngine(t, []int{2}, testOptions())
	startPlaying(t, e, "alice")

	err := e.RequestPurchase("alice")
	assert.ErrorIs(t, err, engine.ErrSpaceNotPurchasable)
	assert.True(t, e.Snapshot().Players[0].PurchaseAttemptUsed,
		"a failed attempt still consumes the per-turn latch")

	assert.ErrorIs(t, e.RequestPurchase("alice"), engine.ErrPurchaseAttempted)
	assert.Nil(t, e.Snapshot().Question)
}

func TestRequestPurchase_LatchResetsOnNextTurn(t *testing.T) {
	e := newTestEngine(t, []int{2}, testOptions())
	startPlaying(t, e, "alice")

	require.ErrorIs(t, e.RequestPurchase("alice"), engine.ErrSpaceNotPurchasable)
	require.NoError(t, e.NextTurn("alice"))
	// Sole bound player: the turn circles straight back with a fresh latch.
	assert.False(t, e.Snapshot().Players[0].PurchaseAttemptUsed)
}

func TestRequestPurchase_InsufficientFunds(t *testing.T) {
	opts := testOptions()
	opts.InitialMoney = 10
	e := newTestEngine(t, []int{0, 1}, opts)
	startPlaying(t, e, "alice")

	require.NoError(t, e.RollDice("alice")) // space 3, price 50
	err := e.RequestPurchase("alice")
	assert.ErrorIs(t, err, engine.ErrInsufficientFunds)
	assert.Nil(t, e.Snapshot().Question)
	assert.True(t, e.Snapshot().Players[0].PurchaseAttemptUsed)
}

func TestRollDice_RejectedWhileQuestionPending(t *testing.T) {
	e := newTestEngine(t, []int{0, 1}, testOptions())
	startPlaying(t, e, "alice")

	require.NoError(t, e.RollDice("alice"))
	require.NoError(t, e.RequestPurchase("alice"))
	assert.ErrorIs(t, e.RollDice("alice"), engine.ErrQuestionPending)
}

func TestAnswerQuestion_CorrectBuysProperty(t *testing.T) {
	opts := testOptions()
	opts.InitialMoney = 50
	e := newTestEngine(t, []int{0, 1}, opts)
	startPlaying(t, e, "alice")

	require.NoError(t, e.RollDice("alice")) // space 3, price 50, money 50
	require.NoError(t, e.RequestPurchase("alice"))

	correct, err := e.AnswerQuestion("alice", 0)
	require.NoError(t, err)
	assert.True(t, correct)

	snap := e.Snapshot()
	p := snap.Players[0]
	assert.Equal(t, 0, p.Money, "full price deducted")
	assert.Equal(t, []int{3}, p.Properties)
	require.NotNil(t, snap.Board[3].OwnerID)
	assert.Equal(t, p.ID, *snap.Board[3].OwnerID)
	assert.Nil(t, snap.Question, "pending question clears after answering")
	assert.Nil(t, snap.PendingPurchaseID)
}

func TestAnswerQuestion_WrongLeavesStateUnchanged(t *testing.T) {
	e := newTestEngine(t, []int{0, 1}, testOptions())
	startPlaying(t, e, "alice")

	require.NoError(t, e.RollDice("alice"))
	require.NoError(t, e.RequestPurchase("alice"))

	correct, err := e.AnswerQuestion("alice", 1)
	require.NoError(t, err)
	assert.False(t, correct)

	snap := e.Snapshot()
	assert.Equal(t, 500, snap.Players[0].Money)
	assert.Empty(t, snap.Players[0].Properties)
	assert.Nil(t, snap.Board[3].OwnerID)
	assert.Nil(t, snap.Question, "pending question clears either way")
	assert.Nil(t, snap.PendingPurchaseID)
}

func TestAnswerQuestion_NoQuestionPending(t *testing.T) {
	e := newTestEngine(t, []int{2}, testOptions())
	startPlaying(t, e, "alice")

	_, err := e.AnswerQuestion("alice", 0)
	assert.ErrorIs(t, err, engine.ErrNoQuestionPending)
}

func TestSellProperty_RefundsQuarterPrice(t *testing.T) {
	e := newTestEngine(t, []int{0, 1}, testOptions())
	startPlaying(t, e, "alice")

	require.NoError(t, e.RollDice("alice"))
	require.NoError(t, e.RequestPurchase("alice"))
	_, err := e.AnswerQuestion("alice", 0)
	require.NoError(t, err)

	moneyAfterBuy := e.Snapshot().Players[0].Money
	require.NoError(t, e.SellProperty("alice", 3))

	snap := e.Snapshot()
	assert.Equal(t, moneyAfterBuy+12, snap.Players[0].Money, "refund is floor(50*0.25)")
	assert.Empty(t, snap.Players[0].Properties)
	assert.Nil(t, snap.Board[3].OwnerID)
}

func TestSellProperty_RepeatIsRejected(t *testing.T) {
	e := newTestEngine(t, []int{0, 1}, testOptions())
	startPlaying(t, e, "alice")

	require.NoError(t, e.RollDice("alice"))
	require.NoError(t, e.RequestPurchase("alice"))
	_, err := e.AnswerQuestion("alice", 0)
	require.NoError(t, err)
	require.NoError(t, e.SellProperty("alice", 3))

	before := e.Snapshot()
	assert.ErrorIs(t, e.SellProperty("alice", 3), engine.ErrNotOwned)
	assert.Equal(t, before, e.Snapshot(), "double sale must be a no-op")
}

func TestSellProperty_NotTurnGated(t *testing.T) {
	// alice goes first; bob may still sell his own property out of turn.
	e := newTestEngine(t, []int{3, 4, 1, 2, 0, 1, 0, 1, 3}, testOptions())
	startPlaying(t, e, "alice", "bob")

	// alice buys space 3 and hands the turn to bob, who moves past it and
	// buys whatever unowned easy space he lands on.
	require.NoError(t, e.RollDice("alice"))
	require.NoError(t, e.RequestPurchase("alice"))
	_, err := e.AnswerQuestion("alice", 0)
	require.NoError(t, err)
	require.NoError(t, e.NextTurn("alice"))
	require.NoError(t, e.RollDice("bob"))
	bobSpace := e.Snapshot().Players[1].Position
	require.Nil(t, e.Snapshot().Board[bobSpace].OwnerID)
	require.NoError(t, e.RequestPurchase("bob"))
	_, err = e.AnswerQuestion("bob", 0)
	require.NoError(t, err)
	require.NoError(t, e.NextTurn("bob"))

	// It is alice's turn, yet bob can sell.
	require.NoError(t, e.SellProperty("bob", bobSpace))
	assert.Nil(t, e.Snapshot().Board[bobSpace].OwnerID)
}

func TestSellProperty_OtherPlayersPropertyRejected(t *testing.T) {
	e := newTestEngine(t, []int{3, 4, 1, 2, 0, 1, 0}, testOptions())
	startPlaying(t, e, "alice", "bob")

	require.NoError(t, e.RollDice("alice"))
	require.NoError(t, e.RequestPurchase("alice"))
	_, err := e.AnswerQuestion("alice", 0)
	require.NoError(t, err)

	assert.ErrorIs(t, e.SellProperty("bob", 3), engine.ErrNotOwned)
}

func TestSellProperty_UnknownSession(t *testing.T) {
	e := newTestEngine(t, []int{2}, testOptions())
	startPlaying(t, e, "alice")
	assert.ErrorIs(t, e.SellProperty("ghost", 3), engine.ErrUnknownSession)
}

func TestNextTurn_AlternatesBoundPlayers(t *testing.T) {
	e := newTestEngine(t, []int{2}, testOptions())
	startPlaying(t, e, "alice", "bob")

	first := e.Snapshot().CurrentPlayerIndex
	holder := e.Snapshot().Players[first].SessionID
	require.NoError(t, e.NextTurn(holder))
	snap := e.Snapshot()
	assert.NotEqual(t, first, snap.CurrentPlayerIndex)
	assert.Nil(t, snap.DiceValue, "dice display clears on turn change")

	second := snap.Players[snap.CurrentPlayerIndex].SessionID
	require.NoError(t, e.NextTurn(second))
	assert.Equal(t, first, e.Snapshot().CurrentPlayerIndex)
}

func TestNextTurn_RequiresTurnHolder(t *testing.T) {
	e := newTestEngine(t, []int{2}, testOptions())
	startPlaying(t, e, "alice", "bob")

	snap := e.Snapshot()
	intruder := snap.Players[(snap.CurrentPlayerIndex+1)%2].SessionID
	assert.ErrorIs(t, e.NextTurn(intruder), engine.ErrNotYourTurn)
}

func TestClose_StopsEngine(t *testing.T) {
	e := engine.New(testBank(t), &queueSource{values: []int{2}}, zap.NewNop(), testOptions())
	_, err := e.Join("alice")
	require.NoError(t, err)

	e.Close()
	e.Close() // idempotent

	_, err = e.Join("bob")
	assert.ErrorIs(t, err, engine.ErrClosed)
	assert.ErrorIs(t, e.Start(), engine.ErrClosed)
	assert.ErrorIs(t, e.RollDice("alice"), engine.ErrClosed)

	_, open := <-e.Updates()
	assert.False(t, open, "updates channel closes with the engine")
}

func TestClose_CancelsPendingRollResolution(t *testing.T) {
	opts := testOptions()
	opts.RollDelay = 20 * time.Millisecond
	e := engine.New(testBank(t), &queueSource{values: []int{2}}, zap.NewNop(), opts)
	_, err := e.Join("alice")
	require.NoError(t, err)
	require.NoError(t, e.Start())
	require.NoError(t, e.RollDice("alice"))

	require.Equal(t, engine.PhaseInitialRoll, e.Snapshot().Phase)
	e.Close()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, engine.PhaseInitialRoll, e.Snapshot().Phase,
		"closing pre-empts the delayed resolution")
}

func TestUpdates_PublishedOnMutation(t *testing.T) {
	e := newTestEngine(t, []int{2}, testOptions())

	_, err := e.Join("alice")
	require.NoError(t, err)

	select {
	case snap := <-e.Updates():
		assert.Equal(t, "alice", snap.Players[0].SessionID)
	case <-time.After(time.Second):
		t.Fatal("no update published for join")
	}
}

func TestUpdates_CarriesDelayedRollResolution(t *testing.T) {
	e := newTestEngine(t, []int{2}, testOptions())
	_, err := e.Join("alice")
	require.NoError(t, err)
	require.NoError(t, e.Start())
	require.NoError(t, e.RollDice("alice"))

	deadline := time.After(time.Second)
	for {
		select {
		case snap, ok := <-e.Updates():
			require.True(t, ok)
			if snap.Phase == engine.PhasePlaying {
				return // the async outcome arrived on the channel
			}
		case <-deadline:
			t.Fatal("delayed roll resolution never published")
		}
	}
}
