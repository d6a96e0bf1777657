package evaluator

import (
	"fmt"

	"github.com/lox/holdem-engine/internal/deck"
)

// Describe renders a hand value for people, e.g. "Full House, Kings over Nines"
func Describe(h HandValue) string {
	tb := h.Tiebreak
	if len(tb) == 0 {
		return h.Category.String()
	}

	switch h.Category {
	case RoyalFlush:
		return "Royal Flush"
	case StraightFlush:
		return fmt.Sprintf("Straight Flush, %s high", rankName(tb[0]))
	case FourOfAKind:
		return fmt.Sprintf("Four of a Kind, %s", plural(tb[0]))
	case FullHouse:
		return fmt.Sprintf("Full House, %s over %s", plural(tb[0]), plural(tb[1]))
	case Flush:
		return fmt.Sprintf("Flush, %s high", rankName(tb[0]))
	case Straight:
		return fmt.Sprintf("Straight, %s high", rankName(tb[0]))
	case ThreeOfAKind:
		return fmt.Sprintf("Three of a Kind, %s", plural(tb[0]))
	case TwoPair:
		return fmt.Sprintf("Two Pair, %s and %s", plural(tb[0]), plural(tb[1]))
	case OnePair:
		return fmt.Sprintf("Pair of %s", plural(tb[0]))
	default:
		return fmt.Sprintf("High Card, %s", rankName(tb[0]))
	}
}

func rankName(v int) string {
	if v < int(deck.Two) || v > int(deck.Ace) {
		return "?"
	}
	return deck.Rank(v).Name()
}

func plural(v int) string {
	name := rankName(v)
	if name == "Six" {
		return "Sixes"
	}
	return name + "s"
}
