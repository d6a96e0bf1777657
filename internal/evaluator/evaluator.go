// Package evaluator ranks poker hands of five or seven cards.
//
// A HandValue is a category plus a tiebreak vector; two values compare by
// category first and then element-wise by tiebreak. Seven-card hands are
// ranked as the best of their 21 five-card subsets.
package evaluator

import (
	"cmp"
	"errors"
	"fmt"
	"slices"

	"github.com/lox/holdem-engine/internal/deck"
)

// ErrCardCount is returned when Evaluate is given anything other than 5 or 7 cards
var ErrCardCount = errors.New("hand must have exactly 5 or 7 cards")

// Category is the class of a poker hand, ordered from weakest to strongest
type Category uint8

const (
	HighCard Category = iota
	OnePair
	TwoPair
	ThreeOfAKind
	Straight
	Flush
	FullHouse
	FourOfAKind
	StraightFlush
	RoyalFlush
)

func (c Category) String() string {
	switch c {
	case HighCard:
		return "High Card"
	case OnePair:
		return "One Pair"
	case TwoPair:
		return "Two Pair"
	case ThreeOfAKind:
		return "Three of a Kind"
	case Straight:
		return "Straight"
	case Flush:
		return "Flush"
	case FullHouse:
		return "Full House"
	case FourOfAKind:
		return "Four of a Kind"
	case StraightFlush:
		return "Straight Flush"
	case RoyalFlush:
		return "Royal Flush"
	default:
		return "Unknown"
	}
}

// HandValue is the comparable strength of a five-card hand
type HandValue struct {
	Category Category
	// Tiebreak holds card values (2..14) in significance order
	Tiebreak []int
	// Cards are the five cards that make the hand
	Cards []deck.Card
}

// Compare returns -1 if h is weaker than other, 0 if equal and 1 if stronger
func (h HandValue) Compare(other HandValue) int {
	return Compare(h, other)
}

// String returns the human description of the hand
func (h HandValue) String() string {
	return Describe(h)
}

// Compare orders two hand values by category, then tiebreak vector
func Compare(a, b HandValue) int {
	if c := cmp.Compare(a.Category, b.Category); c != 0 {
		return c
	}
	return slices.Compare(a.Tiebreak, b.Tiebreak)
}

// Evaluate ranks exactly five or seven cards
func Evaluate(cards []deck.Card) (HandValue, error) {
	switch len(cards) {
	case 5:
		return evaluateFive(cards), nil
	case 7:
		return bestOfSeven(cards), nil
	default:
		return HandValue{}, fmt.Errorf("%w: got %d", ErrCardCount, len(cards))
	}
}

// Best ranks the strongest five-card hand within 5 to 7 cards. It is used
// where a partial board is all there is, such as a hand won before the river.
func Best(cards []deck.Card) (HandValue, error) {
	switch len(cards) {
	case 5, 7:
		return Evaluate(cards)
	case 6:
		var best HandValue
		five := make([]deck.Card, 0, 5)
		for skip := range cards {
			five = five[:0]
			for i, c := range cards {
				if i != skip {
					five = append(five, c)
				}
			}
			v := evaluateFive(five)
			if skip == 0 || Compare(v, best) > 0 {
				best = v
			}
		}
		return best, nil
	default:
		return HandValue{}, fmt.Errorf("%w: got %d", ErrCardCount, len(cards))
	}
}

// MustEvaluate is like Evaluate but panics on a bad card count
func MustEvaluate(cards []deck.Card) HandValue {
	v, err := Evaluate(cards)
	if err != nil {
		panic(err)
	}
	return v
}

// fiveOfSeven lists the 21 index sets choosing five of seven cards
var fiveOfSeven = func() [][5]int {
	var combos [][5]int
	for a := 0; a < 7; a++ {
		for b := a + 1; b < 7; b++ {
			for c := b + 1; c < 7; c++ {
				for d := c + 1; d < 7; d++ {
					for e := d + 1; e < 7; e++ {
						combos = append(combos, [5]int{a, b, c, d, e})
					}
				}
			}
		}
	}
	return combos
}()

func bestOfSeven(cards []deck.Card) HandValue {
	var (
		best HandValue
		five [5]deck.Card
	)
	for i, idx := range fiveOfSeven {
		for j, k := range idx {
			five[j] = cards[k]
		}
		v := evaluateFive(five[:])
		if i == 0 || Compare(v, best) > 0 {
			best = v
		}
	}
	return best
}

func evaluateFive(cards []deck.Card) HandValue {
	values := make([]int, 5)
	for i, c := range cards {
		values[i] = c.Value()
	}
	slices.SortFunc(values, func(a, b int) int { return cmp.Compare(b, a) })

	hand := make([]deck.Card, 5)
	copy(hand, cards)

	flush := isFlush(cards)
	straightHigh, straight := straightHighCard(values)

	if flush && straight {
		tb := straightTiebreak(straightHigh, values)
		if straightHigh == int(deck.Ace) {
			return HandValue{Category: RoyalFlush, Tiebreak: tb, Cards: hand}
		}
		return HandValue{Category: StraightFlush, Tiebreak: tb, Cards: hand}
	}

	groups := groupByValue(values)

	switch {
	case groups[0].count == 4:
		return HandValue{Category: FourOfAKind, Tiebreak: []int{groups[0].value, groups[1].value}, Cards: hand}
	case groups[0].count == 3 && groups[1].count == 2:
		return HandValue{Category: FullHouse, Tiebreak: []int{groups[0].value, groups[1].value}, Cards: hand}
	case flush:
		return HandValue{Category: Flush, Tiebreak: values, Cards: hand}
	case straight:
		return HandValue{Category: Straight, Tiebreak: straightTiebreak(straightHigh, values), Cards: hand}
	case groups[0].count == 3:
		return HandValue{Category: ThreeOfAKind, Tiebreak: groupValues(groups), Cards: hand}
	case groups[0].count == 2 && groups[1].count == 2:
		return HandValue{Category: TwoPair, Tiebreak: groupValues(groups), Cards: hand}
	case groups[0].count == 2:
		return HandValue{Category: OnePair, Tiebreak: groupValues(groups), Cards: hand}
	default:
		return HandValue{Category: HighCard, Tiebreak: values, Cards: hand}
	}
}

func isFlush(cards []deck.Card) bool {
	for _, c := range cards[1:] {
		if c.Suit != cards[0].Suit {
			return false
		}
	}
	return true
}

// straightHighCard reports whether the descending values form a straight and
// its top card. The wheel (A-2-3-4-5) is a five-high straight.
func straightHighCard(desc []int) (int, bool) {
	for i := 1; i < len(desc); i++ {
		if desc[i] == desc[i-1] {
			return 0, false
		}
	}
	if desc[0]-desc[4] == 4 {
		return desc[0], true
	}
	if slices.Equal(desc, []int{14, 5, 4, 3, 2}) {
		return 5, true
	}
	return 0, false
}

// straightTiebreak orders a straight from its high card down; the wheel's ace plays as 1
func straightTiebreak(high int, desc []int) []int {
	if high == 5 && desc[0] == int(deck.Ace) {
		return []int{5, 4, 3, 2, 1}
	}
	return slices.Clone(desc)
}

type valueGroup struct {
	value int
	count int
}

// groupByValue buckets values by multiplicity, larger groups first then higher values
func groupByValue(desc []int) []valueGroup {
	groups := make([]valueGroup, 0, 5)
	for _, v := range desc {
		if n := len(groups); n > 0 && groups[n-1].value == v {
			groups[n-1].count++
			continue
		}
		groups = append(groups, valueGroup{value: v, count: 1})
	}
	slices.SortStableFunc(groups, func(a, b valueGroup) int {
		if c := cmp.Compare(b.count, a.count); c != 0 {
			return c
		}
		return cmp.Compare(b.value, a.value)
	})
	return groups
}

func groupValues(groups []valueGroup) []int {
	out := make([]int, len(groups))
	for i, g := range groups {
		out[i] = g.value
	}
	return out
}
