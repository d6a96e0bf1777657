package phh

import (
	"fmt"
	"strings"

	"github.com/lox/holdem-engine/internal/deck"
	"github.com/lox/holdem-engine/internal/game"
)

const hiddenCards = "????"

// FromSummary converts a finished hand. Hole cards that were not shown are
// written as "????". Seats that sat the hand out are left out.
func FromSummary(table string, bigBlind int, summary game.HandSummary) *HandHistory {
	order := seatOrder(summary)
	player := make(map[string]string, len(order))
	for i, seat := range order {
		player[summary.Players[seat].PlayerID] = fmt.Sprintf("p%d", i+1)
	}
	won := make(map[string]int, len(summary.Winners))
	for _, w := range summary.Winners {
		won[w.PlayerID] += w.Amount
	}

	h := &HandHistory{
		Variant:   VariantNoLimitHoldem,
		Table:     table,
		SeatCount: len(summary.Players),
		MinBet:    bigBlind,
		Hand:      summary.HandNumber,
	}
	if ts := summary.Timestamp.UTC(); !ts.IsZero() {
		h.Time = ts.Format("15:04:05")
		h.TimeZone = "UTC"
		h.Day, h.Month, h.Year = ts.Day(), int(ts.Month()), ts.Year()
	}

	committed := make(map[string]int, len(order))
	streetBet := 0
	for _, seat := range order {
		p := summary.Players[seat]
		h.Seats = append(h.Seats, seat+1)
		h.Players = append(h.Players, p.PlayerName)
		h.Antes = append(h.Antes, 0)
		h.BlindsOrStraddles = append(h.BlindsOrStraddles, p.Blind)
		h.StartingStacks = append(h.StartingStacks, p.StackStart)
		h.FinishingStacks = append(h.FinishingStacks, p.StackEnd)
		h.Winnings = append(h.Winnings, won[p.PlayerID])
		committed[p.PlayerID] = p.Blind
		streetBet = max(streetBet, p.Blind)

		cards := hiddenCards
		if len(p.Cards) > 0 {
			cards = joinCards(p.Cards)
		}
		h.Actions = append(h.Actions, fmt.Sprintf("d dh %s %s", player[p.PlayerID], cards))
	}

	street, dealt := game.PreFlop, 0
	for _, a := range summary.Actions {
		if a.Phase != street {
			street = a.Phase
			h.Actions, dealt = dealBoard(h.Actions, summary.Board, dealt, boardSize(street))
			clear(committed)
			streetBet = 0
		}

		p := player[a.PlayerID]
		switch a.Action {
		case game.Fold:
			h.Actions = append(h.Actions, p+" f")
		case game.Check, game.Call:
			committed[a.PlayerID] += a.Amount
			h.Actions = append(h.Actions, p+" cc")
		case game.Bet, game.Raise, game.AllIn:
			committed[a.PlayerID] += a.Amount
			if total := committed[a.PlayerID]; total > streetBet {
				streetBet = total
				h.Actions = append(h.Actions, fmt.Sprintf("%s cbr %d", p, total))
			} else {
				h.Actions = append(h.Actions, p+" cc")
			}
		}
	}
	h.Actions, _ = dealBoard(h.Actions, summary.Board, dealt, len(summary.Board))

	if summary.Showdown {
		for _, seat := range order {
			if p := summary.Players[seat]; len(p.Cards) > 0 {
				h.Actions = append(h.Actions, fmt.Sprintf("%s sm %s", player[p.PlayerID], joinCards(p.Cards)))
			}
		}
	}
	return h
}

// seatOrder lists the seats dealt into the hand, starting left of the button
func seatOrder(summary game.HandSummary) []int {
	n := len(summary.Players)
	var order []int
	for i := 1; i <= n; i++ {
		seat := (summary.Dealer + i) % n
		if summary.Players[seat].StackStart > 0 {
			order = append(order, seat)
		}
	}
	return order
}

func boardSize(street game.Phase) int {
	switch street {
	case game.Flop:
		return 3
	case game.Turn:
		return 4
	case game.River, game.Showdown:
		return 5
	default:
		return 0
	}
}

// dealBoard appends the board deals needed to show want cards
func dealBoard(actions []string, board []deck.Card, dealt, want int) ([]string, int) {
	want = min(want, len(board))
	for dealt < want {
		n := 1
		if dealt == 0 {
			n = 3
		}
		actions = append(actions, "d db "+joinCards(board[dealt:dealt+n]))
		dealt += n
	}
	return actions, dealt
}

func joinCards(cards []deck.Card) string {
	var b strings.Builder
	for _, c := range cards {
		b.WriteString(c.String())
	}
	return b.String()
}
