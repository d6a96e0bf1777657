package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/lox/holdem-engine/internal/game"
)

// command is one line typed into the action box
type command struct {
	quit     bool
	next     bool // start the next hand
	decision game.Decision
}

var errNotYourTurn = errors.New("wait for your turn, or press Enter to deal the next hand")

// parseCommand turns input into a command. Bet and raise default to the
// smallest legal size; "raise 40" and "raise to 40" both raise the street
// total to 40.
func parseCommand(input string, state game.State, seat int) (command, error) {
	fields := strings.Fields(strings.ToLower(input))
	if len(fields) == 0 {
		if state.Phase.IsBetting() {
			return command{}, fmt.Errorf("enter an action")
		}
		return command{next: true}, nil
	}
	if fields[0] == "quit" || fields[0] == "exit" || fields[0] == "q" {
		return command{quit: true}, nil
	}
	if !state.Phase.IsBetting() || state.CurrentPlayer != seat {
		return command{}, errNotYourTurn
	}

	action, err := game.ParseAction(fields[0])
	if err != nil {
		return command{}, err
	}

	args := fields[1:]
	if len(args) > 0 && args[0] == "to" {
		args = args[1:]
	}

	d := game.Decision{Action: action}
	switch action {
	case game.Bet:
		d.Amount = state.BigBlind
	case game.Raise:
		d.Amount = state.MinRaiseTo()
	default:
		if len(args) > 0 {
			return command{}, fmt.Errorf("%s takes no amount", action)
		}
		return command{decision: d}, nil
	}
	if len(args) > 0 {
		amount, err := strconv.Atoi(strings.TrimPrefix(args[0], "$"))
		if err != nil || amount <= 0 {
			return command{}, fmt.Errorf("bad amount %q", args[0])
		}
		d.Amount = amount
	}
	return command{decision: d}, nil
}
