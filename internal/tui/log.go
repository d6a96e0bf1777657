package tui

import (
	"fmt"
	"strings"

	"github.com/lox/holdem-engine/internal/deck"
	"github.com/lox/holdem-engine/internal/game"
)

// transcript turns successive snapshots into hand history lines, emitting
// each action once
type transcript struct {
	playerID string
	hand     int
	street   game.Phase
	actions  int
	settled  bool
}

func (tr *transcript) update(state game.State) []string {
	var lines []string
	if state.HandNumber != tr.hand {
		tr.hand = state.HandNumber
		tr.street = game.PreFlop
		tr.actions = 0
		tr.settled = false
		lines = append(lines, tr.handStart(state)...)
	}

	for _, entry := range state.CurrentHandLog[min(tr.actions, len(state.CurrentHandLog)):] {
		if entry.Phase != tr.street {
			lines = append(lines, streetLines(entry.Phase, state.CommunityCards)...)
			tr.street = entry.Phase
		}
		lines = append(lines, actionLine(entry))
	}
	tr.actions = len(state.CurrentHandLog)

	if state.Phase.IsBetting() && state.Phase != tr.street {
		lines = append(lines, streetLines(state.Phase, state.CommunityCards)...)
		tr.street = state.Phase
	}

	if last := len(state.HandHistory) - 1; state.Phase.IsHandOver() && !tr.settled && last >= 0 && state.HandHistory[last].HandNumber == state.HandNumber {
		tr.settled = true
		lines = append(lines, handEndLines(state.HandHistory[last])...)
	}
	return lines
}

func (tr *transcript) handStart(state game.State) []string {
	lines := []string{
		fmt.Sprintf("Hand #%d • %d players • $%d/$%d", state.HandNumber, len(state.Players), state.SmallBlind, state.BigBlind),
		"",
		"*** HOLE CARDS ***",
	}
	if seat := state.Seat(tr.playerID); seat >= 0 && len(state.Players[seat].Cards) > 0 {
		lines = append(lines, "Dealt to You: "+formatCards(state.Players[seat].Cards))
	}
	if dealer := state.DealerPosition; dealer >= 0 && dealer < len(state.Players) {
		lines = append(lines, fmt.Sprintf("%s has the button", state.Players[dealer].Name))
	}
	return append(lines, "", "*** PRE-FLOP ***")
}

func streetLines(street game.Phase, board []deck.Card) []string {
	var n int
	switch street {
	case game.Flop:
		n = 3
	case game.Turn:
		n = 4
	case game.River:
		n = 5
	default:
		return nil
	}
	header := "*** " + strings.ToUpper(street.String()) + " ***"
	if len(board) < n {
		return []string{"", header}
	}
	return []string{"", header, "Board: " + formatCards(board[:n])}
}

func actionLine(entry game.ActionLogEntry) string {
	switch entry.Action {
	case game.Fold:
		return entry.PlayerName + ": folds"
	case game.Check:
		return entry.PlayerName + ": checks"
	case game.Call:
		return fmt.Sprintf("%s: calls $%d", entry.PlayerName, entry.Amount)
	case game.Bet:
		return fmt.Sprintf("%s: bets $%d", entry.PlayerName, entry.Amount)
	case game.Raise:
		return fmt.Sprintf("%s: raises $%d", entry.PlayerName, entry.Amount)
	case game.AllIn:
		return fmt.Sprintf("%s: goes all-in for $%d", entry.PlayerName, entry.Amount)
	default:
		return fmt.Sprintf("%s: %s", entry.PlayerName, entry.Action)
	}
}

func handEndLines(summary game.HandSummary) []string {
	lines := []string{""}
	if summary.Showdown {
		lines = append(lines, "*** SHOWDOWN ***", "Final Board: "+formatCards(summary.Board))
		for _, p := range summary.Players {
			if p.Hand != "" {
				lines = append(lines, fmt.Sprintf("%s shows %s (%s)", p.PlayerName, formatCards(p.Cards), p.Hand))
			}
		}
	}
	lines = append(lines, fmt.Sprintf("=== Hand #%d Complete ===", summary.HandNumber), fmt.Sprintf("Pot: $%d", summary.Pot))
	for _, w := range summary.Winners {
		line := fmt.Sprintf("Winner: %s ($%d)", w.PlayerName, w.Amount)
		if res, ok := summary.Result(w.PlayerID); ok && res.Hand != "" {
			line += " - " + res.Hand
		}
		lines = append(lines, line)
	}
	return append(lines, "")
}

// formatCards renders cards with red and black suits
func formatCards(cards []deck.Card) string {
	if len(cards) == 0 {
		return ""
	}
	formatted := make([]string, len(cards))
	for i, card := range cards {
		if card.IsRed() {
			formatted[i] = RedCardStyle.Render(card.Pretty())
		} else {
			formatted[i] = BlackCardStyle.Render(card.Pretty())
		}
	}
	return "[" + strings.Join(formatted, " ") + "]"
}
