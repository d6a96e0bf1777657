package game

import (
	"slices"

	"github.com/lox/holdem-engine/internal/deck"
	"github.com/lox/holdem-engine/internal/evaluator"
)

// settle evaluates every hand still in at showdown and pays each pot to its
// best eligible hands
func (e *Engine) settle() error {
	hands := make(map[string]evaluator.HandValue)
	for _, p := range e.players {
		if p.Folded || len(p.Cards) == 0 {
			continue
		}
		v, err := evaluator.Evaluate(append(slices.Clone(p.Cards), e.board...))
		if err != nil {
			return err
		}
		hands[p.ID] = v
	}

	pots := CalculatePots(e.contributions())
	order := e.payoutOrder()
	won := make(map[string]int)

	for _, pot := range pots {
		winners := bestHands(pot, hands, order)
		payouts := DistributePot(pot, winners)
		if payouts == nil {
			// Nobody eligible holds a hand; the layer goes back to its contributors
			e.logger.Warn("returning unclaimed pot", "hand", e.handNumber, "amount", pot.Amount)
			payouts = refund(pot)
		} else {
			for _, pay := range payouts {
				won[pay.PlayerID] += pay.Amount
			}
		}
		for _, pay := range payouts {
			e.player(pay.PlayerID).Stack += pay.Amount
		}
	}

	e.recordHand(pots, won, hands, true)
	e.clearBets()

	e.logger.Debug("showdown settled", "hand", e.handNumber, "pots", len(pots), "winners", len(won))
	return nil
}

// awardUncontested gives the whole pot to the last player standing
func (e *Engine) awardUncontested() {
	var winner *Player
	for _, p := range e.players {
		if !p.Folded {
			winner = p
			break
		}
	}

	pot := Pot{Eligible: []string{winner.ID}}
	for _, p := range e.players {
		if p.TotalBet > 0 {
			pot.Amount += p.TotalBet
			pot.Contributors = append(pot.Contributors, p.ID)
		}
	}
	winner.Stack += pot.Amount

	// The winner's hand is described when enough cards are out; the cards stay hidden
	hands := make(map[string]evaluator.HandValue)
	if cards := append(slices.Clone(winner.Cards), e.board...); len(cards) >= 5 {
		if v, err := evaluator.Best(cards); err == nil {
			hands[winner.ID] = v
		}
	}

	e.recordHand([]Pot{pot}, map[string]int{winner.ID: pot.Amount}, hands, false)
	e.clearBets()
	e.clearPending()
	e.phase = Complete
	e.current = -1

	e.logger.Debug("pot awarded uncontested", "hand", e.handNumber, "winner", winner.ID, "amount", pot.Amount)
}

// bestHands returns the eligible players holding the strongest hand for a pot,
// in payout order
func bestHands(pot Pot, hands map[string]evaluator.HandValue, order []string) []string {
	var (
		best    evaluator.HandValue
		winners []string
	)
	for _, id := range order {
		v, ok := hands[id]
		if !ok || !slices.Contains(pot.Eligible, id) {
			continue
		}
		switch c := evaluator.Compare(v, best); {
		case len(winners) == 0 || c > 0:
			best = v
			winners = []string{id}
		case c == 0:
			winners = append(winners, id)
		}
	}
	return winners
}

// payoutOrder lists player ids starting left of the button. Odd chips from a
// split go to the earliest seats in this order.
func (e *Engine) payoutOrder() []string {
	n := len(e.players)
	order := make([]string, 0, n)
	for off := 1; off <= n; off++ {
		order = append(order, e.players[(e.dealer+off)%n].ID)
	}
	return order
}

func (e *Engine) contributions() []Contribution {
	out := make([]Contribution, len(e.players))
	for i, p := range e.players {
		out[i] = Contribution{PlayerID: p.ID, Amount: p.TotalBet, Folded: p.Folded}
	}
	return out
}

// recordHand appends the summary of a settled hand. Stacks must already
// include the winnings.
func (e *Engine) recordHand(pots []Pot, won map[string]int, hands map[string]evaluator.HandValue, showdown bool) {
	summary := HandSummary{
		HandNumber: e.handNumber,
		Timestamp:  e.clock.Now().UTC(),
		Dealer:     e.dealer,
		Board:      slices.Clone(e.board),
		Pots:       pots,
		Showdown:   showdown,
		Actions:    slices.Clone(e.log),
	}
	for _, pot := range pots {
		summary.Pot += pot.Amount
	}

	for i, p := range e.players {
		result := PlayerResult{
			PlayerID:   p.ID,
			PlayerName: p.Name,
			StackStart: e.startStacks[i],
			StackEnd:   p.Stack,
			Result:     p.Stack - e.startStacks[i],
			TotalBet:   p.TotalBet,
			Blind:      e.blinds[i],
		}
		if showdown && !p.Folded {
			result.Cards = slices.Clone(p.Cards)
		}
		if v, ok := hands[p.ID]; ok {
			result.Hand = v.String()
		}
		summary.Players = append(summary.Players, result)
	}

	for _, id := range e.payoutOrder() {
		if amount := won[id]; amount > 0 {
			summary.Winners = append(summary.Winners, Winner{
				PlayerID:   id,
				PlayerName: e.player(id).Name,
				Amount:     amount,
			})
		}
	}

	e.pushHistory(summary)
}

func (e *Engine) clearBets() {
	e.currentBet = 0
	for _, p := range e.players {
		p.CurrentBet = 0
		p.TotalBet = 0
	}
}

func (e *Engine) player(id string) *Player {
	for _, p := range e.players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// cardsInPlay returns every hole and board card of the current hand
func (e *Engine) cardsInPlay() []deck.Card {
	cards := slices.Clone(e.board)
	for _, p := range e.players {
		cards = append(cards, p.Cards...)
	}
	return cards
}
