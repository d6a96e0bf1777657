package game

import (
	"slices"

	"github.com/lox/holdem-engine/internal/deck"
)

// PlayerState is a player as seen in a snapshot
type PlayerState struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	Stack      int         `json:"stack"`
	Position   int         `json:"position"`
	CurrentBet int         `json:"current_bet"`
	TotalBet   int         `json:"total_bet"`
	Folded     bool        `json:"folded"`
	AllIn      bool        `json:"all_in"`
	Cards      []deck.Card `json:"cards"`
}

// CanAct reports whether the player still has decisions to make this hand
func (p PlayerState) CanAct() bool {
	return !p.Folded && !p.AllIn && p.Stack > 0
}

// State is an immutable snapshot of an engine. It shares no memory with the
// engine that produced it.
type State struct {
	GameID         string           `json:"game_id"`
	Phase          Phase            `json:"phase"`
	Pot            int              `json:"pot"`
	CurrentBet     int              `json:"current_bet"`
	CommunityCards []deck.Card      `json:"community_cards"`
	Players        []PlayerState    `json:"players"`
	DealerPosition int              `json:"dealer_position"`
	CurrentPlayer  int              `json:"current_player"` // -1 when nobody is to act
	SmallBlind     int              `json:"small_blind"`
	BigBlind       int              `json:"big_blind"`
	HandNumber     int              `json:"hand_number"`
	HandHistory    []HandSummary    `json:"hand_history"`
	CurrentHandLog []ActionLogEntry `json:"current_hand_log"`
}

// Seat returns the index of the player with the given id, or -1
func (s State) Seat(playerID string) int {
	for i, p := range s.Players {
		if p.ID == playerID {
			return i
		}
	}
	return -1
}

// Acting returns the player to act, if any
func (s State) Acting() (PlayerState, bool) {
	if s.CurrentPlayer < 0 || s.CurrentPlayer >= len(s.Players) {
		return PlayerState{}, false
	}
	return s.Players[s.CurrentPlayer], true
}

// ToCall is the number of chips the seat needs to match the current bet
func (s State) ToCall(seat int) int {
	if seat < 0 || seat >= len(s.Players) {
		return 0
	}
	p := s.Players[seat]
	return min(max(s.CurrentBet-p.CurrentBet, 0), p.Stack)
}

// MinRaiseTo is the smallest street total a raise may target
func (s State) MinRaiseTo() int {
	return s.CurrentBet + s.BigBlind
}

// ActivePlayers counts players who have not folded
func (s State) ActivePlayers() int {
	n := 0
	for _, p := range s.Players {
		if !p.Folded {
			n++
		}
	}
	return n
}

// Clone returns a deep copy
func (s State) Clone() State {
	out := s
	out.CommunityCards = slices.Clone(s.CommunityCards)
	out.Players = make([]PlayerState, len(s.Players))
	for i, p := range s.Players {
		p.Cards = slices.Clone(p.Cards)
		out.Players[i] = p
	}
	out.HandHistory = make([]HandSummary, len(s.HandHistory))
	for i, h := range s.HandHistory {
		out.HandHistory[i] = h.clone()
	}
	out.CurrentHandLog = slices.Clone(s.CurrentHandLog)
	return out
}

// VisibleTo returns a copy with the hole cards a given viewer must not see
// removed. Viewers see their own cards, and everyone sees the cards of
// players still in the hand once it reached showdown. An empty viewer is a
// spectator.
func (s State) VisibleTo(viewerID string) State {
	out := s.Clone()
	for i, p := range out.Players {
		if p.ID == viewerID {
			continue
		}
		if s.Phase == Showdown && !p.Folded {
			continue
		}
		out.Players[i].Cards = nil
	}
	return out
}

// State returns a snapshot of the engine
func (e *Engine) State() State {
	s := State{
		GameID:         e.id,
		Phase:          e.phase,
		CurrentBet:     e.currentBet,
		CommunityCards: slices.Clone(e.board),
		Players:        make([]PlayerState, len(e.players)),
		DealerPosition: e.dealer,
		CurrentPlayer:  e.current,
		SmallBlind:     e.smallBlind,
		BigBlind:       e.bigBlind,
		HandNumber:     e.handNumber,
		HandHistory:    make([]HandSummary, len(e.history)),
		CurrentHandLog: slices.Clone(e.log),
	}
	for i, p := range e.players {
		s.Pot += p.TotalBet
		s.Players[i] = PlayerState{
			ID:         p.ID,
			Name:       p.Name,
			Stack:      p.Stack,
			Position:   p.Position,
			CurrentBet: p.CurrentBet,
			TotalBet:   p.TotalBet,
			Folded:     p.Folded,
			AllIn:      p.AllIn,
			Cards:      slices.Clone(p.Cards),
		}
	}
	for i, h := range e.history {
		s.HandHistory[i] = h.clone()
	}
	return s
}
