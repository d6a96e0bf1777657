package game

import "github.com/lox/holdem-engine/internal/deck"

// Seat identifies a participant when the table is built
type Seat struct {
	ID   string
	Name string
}

// Player is the engine's record of one seat
type Player struct {
	ID         string
	Name       string
	Stack      int
	Position   int
	CurrentBet int // chips committed this street
	TotalBet   int // chips committed this hand
	Folded     bool
	AllIn      bool
	Cards      []deck.Card
}

// CanAct reports whether the player still has decisions to make this hand
func (p *Player) CanAct() bool {
	return !p.Folded && !p.AllIn && p.Stack > 0
}

// commit moves up to amount chips from the stack into the player's bets and
// returns what was actually moved
func (p *Player) commit(amount int) int {
	if amount <= 0 || p.Stack <= 0 {
		return 0
	}
	n := min(amount, p.Stack)
	p.Stack -= n
	p.CurrentBet += n
	p.TotalBet += n
	if p.Stack == 0 {
		p.AllIn = true
	}
	return n
}

func (p *Player) resetForHand() {
	p.CurrentBet = 0
	p.TotalBet = 0
	p.Folded = false
	p.AllIn = false
	p.Cards = nil
}
