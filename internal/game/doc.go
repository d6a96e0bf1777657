// Package game implements the No-Limit Texas Hold'em engine.
//
// The main type is Engine, a synchronous state machine for one table. It
// posts blinds, deals through a deck.Deck, runs the four betting streets,
// builds side pots from each player's contribution and settles the hand with
// the evaluator package.
//
// # Basic Usage
//
//	e, err := game.New([]game.Seat{{ID: "alice"}, {ID: "bob"}}, 5, 10, 1000)
//	if err != nil {
//	    return err
//	}
//	state, err := e.StartHand()
//	// The seat to act is state.CurrentPlayer
//	state, err = e.ProcessAction(state.CurrentPlayer, game.Call, 0)
//
// # Deterministic Testing
//
// Shuffles come from an injected *rand.Rand and log timestamps from a
// quartz.Clock, so a seed and a mock clock replay a hand exactly:
//
//	e, _ := game.New(seats, 5, 10, 1000,
//	    game.WithRNG(randutil.New(42)),
//	    game.WithClock(quartz.NewMock(t)))
//
// WithDeckSetup can also stack the deck after each shuffle to force exact
// hole cards and boards.
//
// # Concurrency
//
// The engine is not safe for concurrent use. Hosts serialise calls per
// engine; every State returned is a deep copy and may be shared freely.
package game
