// Package agent holds the decision makers that play seats at a table.
//
// An Agent sees an immutable game.State and the actions the engine allows and
// answers with a game.Decision. Agents never touch the engine; the table
// validates whatever they return.
package agent

import (
	"context"
	"fmt"
	"io"
	"math/rand/v2"
	"slices"
	"sort"

	"github.com/charmbracelet/log"

	"github.com/lox/holdem-engine/internal/game"
	"github.com/lox/holdem-engine/internal/randutil"
)

// Agent decides actions for one seat
type Agent interface {
	// Name identifies the strategy, e.g. "aggressive"
	Name() string
	// Decide picks an action for playerID from valid
	Decide(ctx context.Context, state game.State, playerID string, valid []game.Action) (game.Decision, error)
}

// Factory builds an agent with its own random source
type Factory func(rng *rand.Rand, logger *log.Logger) Agent

// Strategy describes a built-in agent
type Strategy struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	factory     Factory
}

var strategies = map[string]Strategy{
	"random": {
		Name:        "random",
		Description: "Picks any legal action at random",
		factory:     func(rng *rand.Rand, logger *log.Logger) Agent { return NewRandom(rng, logger) },
	},
	"aggressive": {
		Name:        "aggressive",
		Description: "Loose-aggressive: plays many hands and bets them hard",
		factory:     func(rng *rand.Rand, logger *log.Logger) Agent { return NewAggressive(rng, logger) },
	},
	"conservative": {
		Name:        "conservative",
		Description: "Tight-aggressive: plays strong starting hands and bets on equity",
		factory:     func(rng *rand.Rand, logger *log.Logger) Agent { return NewConservative(rng, logger) },
	},
	"calling_station": {
		Name:        "calling_station",
		Description: "Checks or calls every street and never raises",
		factory:     func(rng *rand.Rand, logger *log.Logger) Agent { return NewCallingStation(logger) },
	},
}

// New builds a built-in agent by strategy name
func New(name string, rng *rand.Rand, logger *log.Logger) (Agent, error) {
	s, ok := strategies[name]
	if !ok {
		return nil, fmt.Errorf("unknown strategy %q (have %v)", name, Names())
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	if rng == nil {
		rng, _ = randutil.NewFromEntropy()
	}
	return s.factory(rng, logger), nil
}

// Names lists the built-in strategies in sorted order
func Names() []string {
	names := make([]string, 0, len(strategies))
	for name := range strategies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Strategies lists the built-in strategies in name order
func Strategies() []Strategy {
	out := make([]Strategy, 0, len(strategies))
	for _, name := range Names() {
		out = append(out, strategies[name])
	}
	return out
}

// Fallback is the decision used when an agent fails: check if possible,
// otherwise fold
func Fallback(valid []game.Action, reason string) game.Decision {
	if slices.Contains(valid, game.Check) {
		return game.Decision{Action: game.Check, Reason: reason}
	}
	return game.Decision{Action: game.Fold, Reason: reason}
}

// seatView gathers what strategies need to know about the acting seat
type seatView struct {
	seat   int
	player game.PlayerState
	toCall int
	state  game.State
}

func view(state game.State, playerID string) (seatView, error) {
	seat := state.Seat(playerID)
	if seat < 0 {
		return seatView{}, fmt.Errorf("player %q not at table", playerID)
	}
	return seatView{
		seat:   seat,
		player: state.Players[seat],
		toCall: state.ToCall(seat),
		state:  state,
	}, nil
}

// raiseTo sizes a raise to a street total, lifting it to the legal minimum
func (v seatView) raiseTo(target int, reason string) game.Decision {
	target = max(target, v.state.MinRaiseTo())
	return game.Decision{Action: game.Raise, Amount: target, Reason: reason}
}

// bet sizes an opening bet, at least one big blind
func (v seatView) bet(amount int, reason string) game.Decision {
	amount = max(amount, v.state.BigBlind)
	return game.Decision{Action: game.Bet, Amount: amount, Reason: reason}
}

func has(valid []game.Action, a game.Action) bool {
	return slices.Contains(valid, a)
}

func decide(a game.Action, reason string) game.Decision {
	return game.Decision{Action: a, Reason: reason}
}
