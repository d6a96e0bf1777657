package game

import (
	"math/rand/v2"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/holdem-engine/internal/deck"
)

// Option configures an Engine during creation
type Option func(*engineConfig)

type engineConfig struct {
	rng          *rand.Rand
	clock        quartz.Clock
	logger       *log.Logger
	gameID       string
	historyLimit int
	chips        []int
	deckSetup    func(*deck.Deck) error
}

// WithRNG sets the random source used for shuffling. Without it the engine
// seeds itself from the operating system.
func WithRNG(rng *rand.Rand) Option {
	return func(c *engineConfig) {
		c.rng = rng
	}
}

// WithClock sets the clock used for log and history timestamps
func WithClock(clock quartz.Clock) Option {
	return func(c *engineConfig) {
		c.clock = clock
	}
}

// WithLogger sets the logger. The engine logs under the "engine" prefix.
func WithLogger(logger *log.Logger) Option {
	return func(c *engineConfig) {
		c.logger = logger
	}
}

// WithGameID sets the game id instead of generating one
func WithGameID(id string) Option {
	return func(c *engineConfig) {
		c.gameID = id
	}
}

// WithHistoryLimit sets how many finished hands are kept
func WithHistoryLimit(n int) Option {
	return func(c *engineConfig) {
		c.historyLimit = n
	}
}

// WithChips sets individual starting stacks, one per seat. It overrides the
// uniform starting stack.
func WithChips(chips []int) Option {
	return func(c *engineConfig) {
		c.chips = chips
	}
}

// WithDeckSetup registers a function run on the deck after every shuffle,
// before any card is dealt. Tests use it with deck.Stack to fix the cards.
func WithDeckSetup(fn func(*deck.Deck) error) Option {
	return func(c *engineConfig) {
		c.deckSetup = fn
	}
}
