package game

import (
	"slices"
	"time"

	"github.com/lox/holdem-engine/internal/deck"
)

// DefaultHistoryLimit is how many finished hands an engine keeps
const DefaultHistoryLimit = 20

// ActionLogEntry records one player action
type ActionLogEntry struct {
	HandNumber int       `json:"hand_number"`
	PlayerID   string    `json:"player_id"`
	PlayerName string    `json:"player_name"`
	Action     Action    `json:"action"`
	Amount     int       `json:"amount"` // chips actually committed
	Phase      Phase     `json:"phase"`
	Timestamp  time.Time `json:"timestamp"`
}

// PlayerResult is one seat's outcome of a finished hand. Cards are only set
// for players who showed at showdown.
type PlayerResult struct {
	PlayerID   string      `json:"player_id"`
	PlayerName string      `json:"player_name"`
	Cards      []deck.Card `json:"cards,omitempty"`
	Hand       string      `json:"hand,omitempty"`
	Result     int         `json:"result"`
	StackStart int         `json:"stack_start"`
	StackEnd   int         `json:"stack_end"`
	TotalBet   int         `json:"total_bet"`
	Blind      int         `json:"blind,omitempty"` // blind posted at the start of the hand
}

// Winner is a player paid from at least one pot
type Winner struct {
	PlayerID   string `json:"player_id"`
	PlayerName string `json:"player_name"`
	Amount     int    `json:"amount"`
}

// HandSummary describes a finished hand
type HandSummary struct {
	HandNumber int              `json:"hand_number"`
	Timestamp  time.Time        `json:"timestamp"`
	Dealer     int              `json:"dealer"`
	Board      []deck.Card      `json:"board"`
	Pot        int              `json:"pot"`
	Pots       []Pot            `json:"pots"`
	Showdown   bool             `json:"showdown"`
	Winners    []Winner         `json:"winners"`
	Players    []PlayerResult   `json:"players"`
	Actions    []ActionLogEntry `json:"actions"`
}

func (h HandSummary) clone() HandSummary {
	out := h
	out.Board = slices.Clone(h.Board)
	out.Pots = make([]Pot, len(h.Pots))
	for i, p := range h.Pots {
		out.Pots[i] = Pot{
			Amount:       p.Amount,
			Eligible:     slices.Clone(p.Eligible),
			Contributors: slices.Clone(p.Contributors),
		}
	}
	out.Winners = slices.Clone(h.Winners)
	out.Players = make([]PlayerResult, len(h.Players))
	for i, p := range h.Players {
		p.Cards = slices.Clone(p.Cards)
		out.Players[i] = p
	}
	out.Actions = slices.Clone(h.Actions)
	return out
}

// Result returns the result for a player id
func (h HandSummary) Result(playerID string) (PlayerResult, bool) {
	for _, p := range h.Players {
		if p.PlayerID == playerID {
			return p, true
		}
	}
	return PlayerResult{}, false
}

// pushHistory appends a summary, dropping the oldest beyond the limit
func (e *Engine) pushHistory(summary HandSummary) {
	e.history = append(e.history, summary)
	if over := len(e.history) - e.historyLimit; over > 0 {
		e.history = slices.Delete(e.history, 0, over)
	}
}
