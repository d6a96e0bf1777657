package deck

import (
	"errors"
	"fmt"
	"math/rand/v2"
)

// Size is the number of cards in a full deck
const Size = 52

// ErrInsufficientCards is returned when more cards are requested than remain
var ErrInsufficientCards = errors.New("insufficient cards")

// Deck represents a deck of playing cards. Cards are dealt from the front.
type Deck struct {
	cards []Card
	rng   *rand.Rand
}

// New creates a full 52-card deck in canonical order using rng for shuffling.
// The deck is not shuffled until Shuffle is called.
func New(rng *rand.Rand) *Deck {
	if rng == nil {
		panic("deck: rng is required")
	}
	d := &Deck{
		cards: make([]Card, 0, Size),
		rng:   rng,
	}
	d.Reset()
	return d
}

// Reset restores all 52 cards in canonical order (suit-major, deuce to ace)
func (d *Deck) Reset() {
	d.cards = d.cards[:0]
	for _, suit := range Suits {
		for rank := Two; rank <= Ace; rank++ {
			d.cards = append(d.cards, NewCard(rank, suit))
		}
	}
}

// Shuffle randomizes the order of the remaining cards (Fisher-Yates)
func (d *Deck) Shuffle() {
	for i := len(d.cards) - 1; i > 0; i-- {
		j := d.rng.IntN(i + 1)
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	}
}

// Deal removes and returns the first n cards
func (d *Deck) Deal(n int) ([]Card, error) {
	if n < 0 || n > len(d.cards) {
		return nil, fmt.Errorf("%w: want %d, have %d", ErrInsufficientCards, n, len(d.cards))
	}

	dealt := make([]Card, n)
	copy(dealt, d.cards[:n])
	d.cards = d.cards[n:]
	return dealt, nil
}

// DealOne removes and returns the top card
func (d *Deck) DealOne() (Card, error) {
	cards, err := d.Deal(1)
	if err != nil {
		return Card{}, err
	}
	return cards[0], nil
}

// Burn deals one card and discards it
func (d *Deck) Burn() error {
	_, err := d.DealOne()
	return err
}

// Remaining returns the number of cards left in the deck
func (d *Deck) Remaining() int {
	return len(d.cards)
}

// Cards returns a copy of the remaining cards in deal order
func (d *Deck) Cards() []Card {
	out := make([]Card, len(d.cards))
	copy(out, d.cards)
	return out
}

// Stack moves the given cards to the top of the deck in order, keeping the rest
// of the deck in its current order. It is used to set up exact boards in tests
// and replays; every card must still be in the deck.
func (d *Deck) Stack(top ...Card) error {
	rest := make([]Card, 0, len(d.cards))
	want := make(map[Card]bool, len(top))
	for _, c := range top {
		if want[c] {
			return fmt.Errorf("%w: %s stacked twice", ErrInvalidCard, c)
		}
		want[c] = true
	}

	found := 0
	for _, c := range d.cards {
		if want[c] {
			found++
			continue
		}
		rest = append(rest, c)
	}
	if found != len(top) {
		return fmt.Errorf("%w: stacked card not in deck", ErrInvalidCard)
	}

	d.cards = append(append(d.cards[:0:0], top...), rest...)
	return nil
}
