package game

import (
	"testing"

	"github.com/coder/quartz"
	"github.com/stretchr/testify/require"

	"github.com/lox/holdem-engine/internal/deck"
	"github.com/lox/holdem-engine/internal/randutil"
)

var names = []string{"alice", "bob", "carol", "dave", "erin", "frank", "grace", "heidi", "ivan"}

func seats(n int) []Seat {
	out := make([]Seat, n)
	for i := range n {
		out[i] = Seat{ID: names[i], Name: names[i]}
	}
	return out
}

func newTestEngine(t *testing.T, n int, opts ...Option) *Engine {
	t.Helper()
	base := []Option{
		WithRNG(randutil.New(1)),
		WithClock(quartz.NewMock(t)),
		WithGameID("test-game"),
	}
	e, err := New(seats(n), 5, 10, 1000, append(base, opts...)...)
	require.NoError(t, err)
	return e
}

// stackDeck fixes the cards of every hand: holes are per seat in seat order
// ("" for a seat that is sitting out) and board is the five community cards
func stackDeck(holes []string, board string) Option {
	used := make(map[deck.Card]bool)
	hands := make([][]deck.Card, 0, len(holes))
	for _, h := range holes {
		if h == "" {
			continue
		}
		cards := deck.MustParseCards(h)
		hands = append(hands, cards)
		for _, c := range cards {
			used[c] = true
		}
	}
	community := deck.MustParseCards(board)
	for _, c := range community {
		used[c] = true
	}

	var burns []deck.Card
	for _, c := range deck.New(randutil.New(0)).Cards() {
		if !used[c] && len(burns) < 3 {
			burns = append(burns, c)
		}
	}

	var top []deck.Card
	for pass := range 2 {
		for _, h := range hands {
			top = append(top, h[pass])
		}
	}
	top = append(top,
		burns[0], community[0], community[1], community[2],
		burns[1], community[3],
		burns[2], community[4])

	return WithDeckSetup(func(d *deck.Deck) error {
		return d.Stack(top...)
	})
}

func act(t *testing.T, e *Engine, seat int, action Action, amount int) State {
	t.Helper()
	state, err := e.ProcessAction(seat, action, amount)
	require.NoError(t, err, "seat %d %s %d", seat, action, amount)
	return state
}

// checkDown checks every remaining street through to the end of the hand
func checkDown(t *testing.T, e *Engine) State {
	t.Helper()
	state := e.State()
	for state.Phase.IsBetting() {
		state = act(t, e, state.CurrentPlayer, Check, 0)
	}
	return state
}

func totalChips(s State) int {
	total := s.Pot
	for _, p := range s.Players {
		total += p.Stack
	}
	return total
}
