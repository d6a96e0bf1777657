package game

import (
	"encoding/json"
	"testing"

	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/holdem-engine/internal/deck"
	"github.com/lox/holdem-engine/internal/randutil"
)

func TestNewValidatesConfiguration(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		seats []Seat
		sb    int
		bb    int
		stack int
		opts  []Option
	}{
		{name: "one player", seats: seats(1), sb: 5, bb: 10, stack: 1000},
		{name: "ten players", seats: append(seats(9), Seat{ID: "judy"}), sb: 5, bb: 10, stack: 1000},
		{name: "zero small blind", seats: seats(2), sb: 0, bb: 10, stack: 1000},
		{name: "big blind below small", seats: seats(2), sb: 10, bb: 5, stack: 1000},
		{name: "no stack", seats: seats(2), sb: 5, bb: 10, stack: 0},
		{name: "duplicate ids", seats: []Seat{{ID: "a"}, {ID: "a"}}, sb: 5, bb: 10, stack: 1000},
		{name: "empty id", seats: []Seat{{ID: "a"}, {}}, sb: 5, bb: 10, stack: 1000},
		{name: "chip count mismatch", seats: seats(3), sb: 5, bb: 10, stack: 1000, opts: []Option{WithChips([]int{1, 2})}},
		{name: "zero chips", seats: seats(2), sb: 5, bb: 10, stack: 1000, opts: []Option{WithChips([]int{100, 0})}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New(tc.seats, tc.sb, tc.bb, tc.stack, tc.opts...)
			require.ErrorIs(t, err, ErrConfiguration)
		})
	}

	e, err := New([]Seat{{ID: "a"}, {ID: "b", Name: "Bob"}}, 5, 10, 1000)
	require.NoError(t, err)
	state := e.State()
	assert.Equal(t, Waiting, state.Phase)
	assert.Equal(t, "a", state.Players[0].Name, "name defaults to id")
	assert.Equal(t, "Bob", state.Players[1].Name)
	assert.Equal(t, 1, state.DealerPosition)
	assert.Equal(t, -1, state.CurrentPlayer)
	assert.NotEmpty(t, e.ID(), "id is generated when not given")
}

// Heads-up check-down: the button posts the big blind and the small blind acts first preflop.
func TestHeadsUpCheckDown(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, 2, stackDeck([]string{"KsKh", "AsAh"}, "2c7d9hJs3c"))

	state, err := e.StartHand()
	require.NoError(t, err)
	assert.Equal(t, PreFlop, state.Phase)
	assert.Equal(t, 0, state.DealerPosition)
	assert.Equal(t, 10, state.Players[0].CurrentBet, "button posts big blind heads-up")
	assert.Equal(t, 5, state.Players[1].CurrentBet)
	assert.Equal(t, 10, state.CurrentBet)
	assert.Equal(t, 15, state.Pot)
	assert.Equal(t, 1, state.CurrentPlayer)

	state = act(t, e, 1, Call, 0)
	assert.Equal(t, 20, state.Pot)
	assert.Equal(t, 0, state.CurrentPlayer, "big blind has the option")

	state = act(t, e, 0, Check, 0)
	assert.Equal(t, Flop, state.Phase)
	assert.Len(t, state.CommunityCards, 3)
	assert.Equal(t, 0, state.CurrentBet)
	assert.Equal(t, 1, state.CurrentPlayer, "non-button acts first postflop")

	for _, phase := range []Phase{Turn, River} {
		act(t, e, 1, Check, 0)
		state = act(t, e, 0, Check, 0)
		assert.Equal(t, phase, state.Phase)
	}
	assert.Equal(t, 20, state.Pot)

	act(t, e, 1, Check, 0)
	state = act(t, e, 0, Check, 0)

	assert.Equal(t, Showdown, state.Phase)
	assert.Equal(t, 0, state.Pot)
	assert.Equal(t, 990, state.Players[0].Stack)
	assert.Equal(t, 1010, state.Players[1].Stack)
	assert.Equal(t, -1, state.CurrentPlayer)

	require.Len(t, state.HandHistory, 1)
	summary := state.HandHistory[0]
	assert.Equal(t, 20, summary.Pot)
	assert.True(t, summary.Showdown)
	assert.Equal(t, []Winner{{PlayerID: "bob", PlayerName: "bob", Amount: 20}}, summary.Winners)
	assert.Equal(t, deck.MustParseCards("2c7d9hJs3c"), summary.Board)

	bob, ok := summary.Result("bob")
	require.True(t, ok)
	assert.Equal(t, 10, bob.Result)
	assert.Equal(t, "Pair of Aces", bob.Hand)
	assert.Equal(t, deck.MustParseCards("AsAh"), bob.Cards)
	alice, _ := summary.Result("alice")
	assert.Equal(t, -10, alice.Result)
	assert.Len(t, summary.Actions, 8)
}

func TestFoldsAwardPotImmediately(t *testing.T) {
	t.Parallel()

	clock := quartz.NewMock(t)
	e := newTestEngine(t, 3, WithClock(clock))

	state, err := e.StartHand()
	require.NoError(t, err)
	assert.Equal(t, 0, state.DealerPosition)
	assert.Equal(t, 0, state.CurrentPlayer, "under the gun is left of the big blind")

	state = act(t, e, 0, Raise, 30)
	assert.Equal(t, 30, state.CurrentBet)
	assert.Equal(t, 1, state.CurrentPlayer)

	act(t, e, 1, Fold, 0)
	state = act(t, e, 2, Fold, 0)

	assert.Equal(t, Complete, state.Phase)
	assert.Equal(t, 0, state.Pot)
	assert.Equal(t, 1015, state.Players[0].Stack)
	assert.Equal(t, 995, state.Players[1].Stack)
	assert.Equal(t, 990, state.Players[2].Stack)
	assert.Empty(t, state.CommunityCards)

	summary := state.HandHistory[0]
	assert.False(t, summary.Showdown)
	assert.Equal(t, 45, summary.Pot)
	assert.Equal(t, []Winner{{PlayerID: "alice", PlayerName: "alice", Amount: 45}}, summary.Winners)
	for _, p := range summary.Players {
		assert.Empty(t, p.Cards, "mucked cards are not recorded")
		assert.Empty(t, p.Hand, "too few cards to describe a hand")
	}

	require.Len(t, summary.Actions, 3)
	first := summary.Actions[0]
	assert.Equal(t, ActionLogEntry{
		HandNumber: 1,
		PlayerID:   "alice",
		PlayerName: "alice",
		Action:     Raise,
		Amount:     30,
		Phase:      PreFlop,
		Timestamp:  clock.Now().UTC(),
	}, first)
	assert.Equal(t, 0, summary.Actions[1].Amount)
}

func TestAllInCreatesSidePot(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, 3,
		WithChips([]int{100, 500, 500}),
		stackDeck([]string{"AsAh", "KsKh", "QsQh"}, "2c7d9h4s3d"))

	state, err := e.StartHand()
	require.NoError(t, err)
	require.Equal(t, 0, state.CurrentPlayer)

	state = act(t, e, 0, AllIn, 0)
	assert.True(t, state.Players[0].AllIn)
	assert.Equal(t, 100, state.CurrentBet)

	state = act(t, e, 1, Call, 0)
	assert.Equal(t, 2, state.CurrentPlayer)
	state = act(t, e, 2, Call, 0)
	require.Equal(t, Flop, state.Phase)
	assert.Equal(t, 1, state.CurrentPlayer, "all-in player is skipped")
	assert.Equal(t, 300, state.Pot)

	act(t, e, 1, Bet, 200)
	state = act(t, e, 2, Call, 0)
	require.Equal(t, Turn, state.Phase)
	assert.Equal(t, 700, state.Pot)

	state = checkDown(t, e)
	require.Equal(t, Showdown, state.Phase)

	summary := state.HandHistory[0]
	assert.Equal(t, []Pot{
		{Amount: 300, Eligible: []string{"alice", "bob", "carol"}, Contributors: []string{"alice", "bob", "carol"}},
		{Amount: 400, Eligible: []string{"bob", "carol"}, Contributors: []string{"bob", "carol"}},
	}, summary.Pots)
	assert.Equal(t, 300, state.Players[0].Stack)
	assert.Equal(t, 600, state.Players[1].Stack)
	assert.Equal(t, 200, state.Players[2].Stack)
	assert.Equal(t, 1100, totalChips(state))
}

func TestSplitPotOddChipGoesLeftOfButton(t *testing.T) {
	t.Parallel()

	// Everyone plays the board; three-way split of an odd pot
	e := newTestEngine(t, 3, stackDeck([]string{"2s3h", "2h3d", "2d3c"}, "AsKdQcJhTs"))

	_, err := e.StartHand()
	require.NoError(t, err)
	act(t, e, 0, Raise, 25)
	act(t, e, 1, Call, 0)
	act(t, e, 2, Fold, 0)
	state := checkDown(t, e)

	require.Equal(t, Showdown, state.Phase)
	// Pot is 25 + 25 + 10 = 60 split between alice and bob
	assert.Equal(t, 1005, state.Players[0].Stack)
	assert.Equal(t, 1005, state.Players[1].Stack)
	assert.Equal(t, 990, state.Players[2].Stack)

	// Four players, the small blind folds: 35 chips split three ways. Layers
	// are 20 and 15, so the first two seats left of the button get the odd
	// chips of the first layer.
	e2 := newTestEngine(t, 4, stackDeck([]string{"2s3h", "2h3d", "2d3c", "3s4c"}, "AsKdQcJhTs"))
	_, err = e2.StartHand()
	require.NoError(t, err)
	act(t, e2, 3, Call, 0)
	act(t, e2, 0, Call, 0)
	act(t, e2, 1, Fold, 0)
	act(t, e2, 2, Check, 0)
	state = checkDown(t, e2)

	require.Equal(t, Showdown, state.Phase)
	assert.Equal(t, 1001, state.Players[0].Stack)
	assert.Equal(t, 995, state.Players[1].Stack)
	assert.Equal(t, 1002, state.Players[2].Stack)
	assert.Equal(t, 1002, state.Players[3].Stack)
	assert.Equal(t, []Winner{
		{PlayerID: "carol", PlayerName: "carol", Amount: 12},
		{PlayerID: "dave", PlayerName: "dave", Amount: 12},
		{PlayerID: "alice", PlayerName: "alice", Amount: 11},
	}, state.HandHistory[0].Winners)
}

func TestShortBlindRunsOutBoard(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, 2,
		WithChips([]int{1000, 5}),
		stackDeck([]string{"AsAh", "KsKh"}, "2c7d9h4s3d"))

	state, err := e.StartHand()
	require.NoError(t, err)

	assert.Equal(t, Showdown, state.Phase, "nobody left to bet against")
	assert.Len(t, state.CommunityCards, 5)
	assert.Equal(t, 1005, state.Players[0].Stack)
	assert.Equal(t, 0, state.Players[1].Stack)

	_, err = e.StartHand()
	require.ErrorIs(t, err, ErrPrecondition)
}

func TestBustedSeatSitsOut(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, 3,
		WithChips([]int{1000, 5, 1000}),
		stackDeck([]string{"AsAh", "KsKh", "QsQh"}, "2c7d9h4s3d"))

	state, err := e.StartHand()
	require.NoError(t, err)
	assert.True(t, state.Players[1].AllIn, "small blind covers the whole stack")
	assert.Equal(t, 0, state.CurrentPlayer)

	act(t, e, 0, Call, 0)
	state = act(t, e, 2, Check, 0)
	require.Equal(t, Flop, state.Phase)
	assert.Equal(t, 2, state.CurrentPlayer)

	state = checkDown(t, e)
	require.Equal(t, Showdown, state.Phase)
	assert.Equal(t, []int{1015, 0, 990}, []int{state.Players[0].Stack, state.Players[1].Stack, state.Players[2].Stack})

	state, err = e.StartHand()
	require.NoError(t, err)
	assert.True(t, state.Players[1].Folded)
	assert.Empty(t, state.Players[1].Cards)
	assert.Equal(t, 2, state.DealerPosition)
	assert.Equal(t, 5, state.Players[0].CurrentBet)
	assert.Equal(t, 10, state.Players[2].CurrentBet)
	assert.Equal(t, 0, state.CurrentPlayer)
}

func TestFailedActionLeavesStateUnchanged(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, 3)
	_, err := e.StartHand()
	require.NoError(t, err)
	before := e.State()

	tests := []struct {
		name   string
		seat   int
		action Action
		amount int
		want   error
	}{
		{"out of turn", 1, Fold, 0, ErrPrecondition},
		{"unknown seat", 7, Fold, 0, ErrPrecondition},
		{"check facing bet", 0, Check, 0, ErrIllegalAction},
		{"bet over bet", 0, Bet, 50, ErrIllegalAction},
		{"raise below minimum", 0, Raise, 15, ErrIllegalAction},
		{"raise to nothing", 0, Raise, 0, ErrIllegalAction},
		{"unknown action", 0, Action(42), 0, ErrIllegalAction},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := e.ProcessAction(tc.seat, tc.action, tc.amount)
			require.ErrorIs(t, err, tc.want)
			assert.Equal(t, before, e.State())
		})
	}

	_, err = e.StartHand()
	require.ErrorIs(t, err, ErrPrecondition, "hand in progress")
	assert.Equal(t, before, e.State())
}

func TestBetValidationPostflop(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, 2)
	_, err := e.StartHand()
	require.NoError(t, err)
	act(t, e, 1, Call, 0)
	state := act(t, e, 0, Check, 0)
	require.Equal(t, Flop, state.Phase)
	before := e.State()

	for _, amount := range []int{0, -5, 5} {
		_, err := e.ProcessAction(1, Bet, amount)
		require.ErrorIs(t, err, ErrIllegalAction, "bet %d", amount)
	}
	_, err = e.ProcessAction(1, Call, 0)
	require.ErrorIs(t, err, ErrIllegalAction, "nothing to call")
	_, err = e.ProcessAction(1, Raise, 20)
	require.ErrorIs(t, err, ErrIllegalAction, "nothing to raise")
	assert.Equal(t, before, e.State())

	state = act(t, e, 1, Bet, 5000)
	assert.True(t, state.Players[1].AllIn, "oversized bet is capped at the stack")
	assert.Equal(t, 990, state.CurrentBet)
	assert.Equal(t, []Action{Fold, Call, AllIn}, e.ValidActions(0), "cannot raise an all-in it cannot cover")

	state = act(t, e, 0, Call, 0)
	assert.Equal(t, Showdown, state.Phase)
	assert.Equal(t, 2000, totalChips(state))
}

func TestRaiseReopensAction(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, 3)
	_, err := e.StartHand()
	require.NoError(t, err)

	act(t, e, 0, Call, 0)
	act(t, e, 1, Call, 0)
	state := act(t, e, 2, Raise, 40)
	assert.Equal(t, 40, state.CurrentBet)
	assert.Equal(t, PreFlop, state.Phase)
	assert.Equal(t, 0, state.CurrentPlayer, "raise reopens action for earlier callers")

	act(t, e, 0, Call, 0)
	state = act(t, e, 1, Call, 0)
	assert.Equal(t, Flop, state.Phase)
	assert.Equal(t, 120, state.Pot)

	entry := state.CurrentHandLog[2]
	assert.Equal(t, Raise, entry.Action)
	assert.Equal(t, 30, entry.Amount, "log records chips committed, not the raise target")
}

func TestValidActions(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, 2)
	assert.Nil(t, e.ValidActions(0), "no hand yet")

	_, err := e.StartHand()
	require.NoError(t, err)
	assert.Equal(t, []Action{Fold, Call, Raise, AllIn}, e.ValidActions(1))
	assert.Nil(t, e.ValidActions(0), "big blind is not on turn yet")
	assert.Nil(t, e.ValidActions(5))

	act(t, e, 1, Call, 0)
	assert.Equal(t, []Action{Fold, Check, Raise, AllIn}, e.ValidActions(0))
	assert.Nil(t, e.ValidActions(1))

	act(t, e, 0, Check, 0)
	assert.Equal(t, []Action{Fold, Check, Bet, AllIn}, e.ValidActions(1))
	assert.Nil(t, e.ValidActions(0))
}

func TestHistoryIsCapped(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, 2)
	for range 25 {
		state, err := e.StartHand()
		require.NoError(t, err)
		act(t, e, state.CurrentPlayer, Fold, 0)
	}

	state := e.State()
	require.Len(t, state.HandHistory, DefaultHistoryLimit)
	assert.Equal(t, 6, state.HandHistory[0].HandNumber)
	assert.Equal(t, 25, state.HandHistory[DefaultHistoryLimit-1].HandNumber)
	assert.Equal(t, 2000, totalChips(state))
}

func TestSnapshotIsDeepCopy(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, 2)
	state, err := e.StartHand()
	require.NoError(t, err)

	state.Players[0].Stack = 0
	state.Players[0].Cards[0] = deck.Card{}
	state.CurrentHandLog = append(state.CurrentHandLog, ActionLogEntry{})

	fresh := e.State()
	assert.NotEqual(t, 0, fresh.Players[0].Stack)
	assert.NotEqual(t, deck.Card{}, fresh.Players[0].Cards[0])
	assert.Empty(t, fresh.CurrentHandLog)
}

func TestVisibleToHidesHoleCards(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, 2, stackDeck([]string{"KsKh", "AsAh"}, "2c7d9hJs3c"))
	_, err := e.StartHand()
	require.NoError(t, err)

	view := e.State().VisibleTo("alice")
	assert.Len(t, view.Players[0].Cards, 2)
	assert.Empty(t, view.Players[1].Cards)
	assert.Empty(t, e.State().VisibleTo("").Players[0].Cards, "spectators see no hole cards")

	act(t, e, 1, Call, 0)
	act(t, e, 0, Check, 0)
	state := checkDown(t, e)
	require.Equal(t, Showdown, state.Phase)

	view = state.VisibleTo("")
	assert.Len(t, view.Players[0].Cards, 2)
	assert.Len(t, view.Players[1].Cards, 2)
}

func TestStateJSON(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, 2, stackDeck([]string{"KsKh", "AsAh"}, "2c7d9hJs3c"))
	_, err := e.StartHand()
	require.NoError(t, err)
	act(t, e, 1, Call, 0)

	b, err := json.Marshal(e.State())
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(b, &decoded))
	assert.Equal(t, "test-game", decoded["game_id"])
	assert.Equal(t, "pre_flop", decoded["phase"])
	assert.EqualValues(t, 20, decoded["pot"])
	assert.EqualValues(t, 0, decoded["current_player"])

	players := decoded["players"].([]any)
	assert.Equal(t, []any{"Ks", "Kh"}, players[0].(map[string]any)["cards"])

	log := decoded["current_hand_log"].([]any)
	assert.Equal(t, "call", log[0].(map[string]any)["action"])

	var back State
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, PreFlop, back.Phase)
	assert.Equal(t, deck.MustParseCards("KsKh"), back.Players[0].Cards)
}

func TestParseAction(t *testing.T) {
	t.Parallel()

	for input, want := range map[string]Action{
		"fold": Fold, "CHECK": Check, "call": Call, "bet": Bet,
		"raise": Raise, "all_in": AllIn, "allin": AllIn, "all-in": AllIn,
	} {
		got, err := ParseAction(input)
		require.NoError(t, err, input)
		assert.Equal(t, want, got, input)
	}
	_, err := ParseAction("limp")
	require.ErrorIs(t, err, ErrIllegalAction)
}

// Random legal play over many hands must never create or destroy chips or
// deal a card twice.
func TestRandomPlayConservesChipsAndCards(t *testing.T) {
	t.Parallel()

	for seed := range int64(5) {
		e := newTestEngine(t, 4, WithRNG(randutil.New(seed)))
		rng := randutil.New(seed + 100)
		const total = 4000

		for hand := 0; hand < 60; hand++ {
			state, err := e.StartHand()
			if err != nil {
				require.ErrorIs(t, err, ErrPrecondition)
				break
			}

			for state.Phase.IsBetting() {
				seat := state.CurrentPlayer
				require.GreaterOrEqual(t, seat, 0)
				valid := e.ValidActions(seat)
				require.NotEmpty(t, valid)

				action := valid[rng.IntN(len(valid))]
				amount := 0
				stack := state.Players[seat].Stack
				switch action {
				case Bet:
					amount = state.BigBlind + rng.IntN(stack)
				case Raise:
					amount = state.MinRaiseTo() + rng.IntN(stack)
				}

				state = act(t, e, seat, action, amount)
				require.Equal(t, total, totalChips(state))

				seen := make(map[deck.Card]bool)
				for _, c := range append(e.cardsInPlay(), e.deck.Cards()...) {
					require.False(t, seen[c], "card %s dealt twice", c)
					seen[c] = true
				}
			}

			require.True(t, state.Phase.IsHandOver())
			require.Equal(t, 0, state.Pot)
			require.Equal(t, total, totalChips(state))
			last := state.HandHistory[len(state.HandHistory)-1]
			net := 0
			for _, p := range last.Players {
				net += p.Result
				assert.Equal(t, p.StackEnd-p.StackStart, p.Result)
			}
			require.Zero(t, net, "hand %d results must net to zero", hand)
		}
	}
}
