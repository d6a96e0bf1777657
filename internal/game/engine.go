package game

import (
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/holdem-engine/internal/deck"
	"github.com/lox/holdem-engine/internal/gameid"
	"github.com/lox/holdem-engine/internal/randutil"
)

// Table size limits
const (
	MinPlayers = 2
	MaxPlayers = 9
)

// Engine runs hands of No-Limit Texas Hold'em for a fixed set of seats
type Engine struct {
	id         string
	players    []*Player // indexed by seat
	smallBlind int
	bigBlind   int

	deck       *deck.Deck
	board      []deck.Card
	phase      Phase
	currentBet int
	dealer     int
	current    int
	// pending marks seats that still owe a decision this street
	pending []bool

	handNumber  int
	startStacks []int
	blinds      []int // posted by seat this hand
	log         []ActionLogEntry
	history     []HandSummary

	historyLimit int
	deckSetup    func(*deck.Deck) error
	clock        quartz.Clock
	logger       *log.Logger
}

// New creates an engine for the given seats. Seat order is table order.
func New(seats []Seat, smallBlind, bigBlind, startingStack int, opts ...Option) (*Engine, error) {
	cfg := engineConfig{historyLimit: DefaultHistoryLimit}
	for _, opt := range opts {
		opt(&cfg)
	}

	if len(seats) < MinPlayers || len(seats) > MaxPlayers {
		return nil, fmt.Errorf("%w: need %d-%d players, got %d", ErrConfiguration, MinPlayers, MaxPlayers, len(seats))
	}
	if smallBlind <= 0 || bigBlind <= 0 {
		return nil, fmt.Errorf("%w: blinds must be positive, got %d/%d", ErrConfiguration, smallBlind, bigBlind)
	}
	if bigBlind < smallBlind {
		return nil, fmt.Errorf("%w: big blind %d is smaller than small blind %d", ErrConfiguration, bigBlind, smallBlind)
	}
	if cfg.chips == nil && startingStack <= 0 {
		return nil, fmt.Errorf("%w: starting stack must be positive, got %d", ErrConfiguration, startingStack)
	}
	if cfg.chips != nil && len(cfg.chips) != len(seats) {
		return nil, fmt.Errorf("%w: %d chip counts for %d seats", ErrConfiguration, len(cfg.chips), len(seats))
	}
	if cfg.historyLimit <= 0 {
		return nil, fmt.Errorf("%w: history limit must be positive", ErrConfiguration)
	}

	seen := make(map[string]bool, len(seats))
	players := make([]*Player, len(seats))
	for i, s := range seats {
		if s.ID == "" {
			return nil, fmt.Errorf("%w: seat %d has no id", ErrConfiguration, i)
		}
		if seen[s.ID] {
			return nil, fmt.Errorf("%w: duplicate player id %q", ErrConfiguration, s.ID)
		}
		seen[s.ID] = true

		stack := startingStack
		if cfg.chips != nil {
			stack = cfg.chips[i]
			if stack <= 0 {
				return nil, fmt.Errorf("%w: seat %d starting stack must be positive, got %d", ErrConfiguration, i, stack)
			}
		}
		name := s.Name
		if name == "" {
			name = s.ID
		}
		players[i] = &Player{ID: s.ID, Name: name, Stack: stack, Position: i}
	}

	logger := cfg.logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	if cfg.clock == nil {
		cfg.clock = quartz.NewReal()
	}
	if cfg.gameID == "" {
		cfg.gameID = gameid.Generate()
	}
	if cfg.rng == nil {
		var seed int64
		cfg.rng, seed = randutil.NewFromEntropy()
		logger.Debug("seeded shuffler", "game_id", cfg.gameID, "seed", seed)
	}

	return &Engine{
		id:           cfg.gameID,
		players:      players,
		smallBlind:   smallBlind,
		bigBlind:     bigBlind,
		deck:         deck.New(cfg.rng),
		phase:        Waiting,
		dealer:       len(players) - 1,
		current:      -1,
		pending:      make([]bool, len(players)),
		historyLimit: cfg.historyLimit,
		deckSetup:    cfg.deckSetup,
		clock:        cfg.clock,
		logger:       logger.WithPrefix("engine").With("game_id", cfg.gameID),
	}, nil
}

// ID returns the game id
func (e *Engine) ID() string { return e.id }

// Phase returns the current phase
func (e *Engine) Phase() Phase { return e.phase }

// StartHand begins a new hand. It fails with ErrPrecondition while a hand is
// in progress or when fewer than two players have chips.
func (e *Engine) StartHand() (State, error) {
	if e.phase.IsBetting() {
		return State{}, fmt.Errorf("%w: hand %d is still in progress", ErrPrecondition, e.handNumber)
	}
	if funded := e.countPlayers(func(p *Player) bool { return p.Stack > 0 }); funded < MinPlayers {
		return State{}, fmt.Errorf("%w: need at least %d players with chips, have %d", ErrPrecondition, MinPlayers, funded)
	}

	e.deck.Reset()
	e.deck.Shuffle()
	if e.deckSetup != nil {
		if err := e.deckSetup(e.deck); err != nil {
			return State{}, fmt.Errorf("deck setup: %w", err)
		}
	}

	e.handNumber++
	e.log = nil
	e.board = nil
	e.currentBet = 0
	e.startStacks = make([]int, len(e.players))
	for i, p := range e.players {
		p.resetForHand()
		// Busted seats sit the hand out
		p.Folded = p.Stack == 0
		e.startStacks[i] = p.Stack
	}

	e.dealer = e.nextFunded(e.dealer)
	sb := e.nextFunded(e.dealer)
	bb := e.nextFunded(sb)
	e.blinds = make([]int, len(e.players))
	e.blinds[sb] = e.players[sb].commit(e.smallBlind)
	e.blinds[bb] = e.players[bb].commit(e.bigBlind)
	e.currentBet = max(e.players[sb].CurrentBet, e.players[bb].CurrentBet)

	if err := e.dealHoleCards(); err != nil {
		return State{}, err
	}

	e.phase = PreFlop
	e.resetPending(-1)

	e.logger.Debug("hand started",
		"hand", e.handNumber,
		"dealer", e.dealer,
		"small_blind", e.players[sb].ID,
		"big_blind", e.players[bb].ID)

	// Preflop action starts left of the big blind
	if err := e.progress(bb); err != nil {
		return State{}, err
	}
	return e.State(), nil
}

// ValidActions lists the actions the seat may take now. It is empty outside
// the betting phases and for any seat that is not on turn.
func (e *Engine) ValidActions(seat int) []Action {
	if !e.phase.IsBetting() || seat < 0 || seat >= len(e.players) || seat != e.current {
		return nil
	}
	p := e.players[seat]
	if !p.CanAct() {
		return nil
	}

	actions := []Action{Fold}
	toCall := e.currentBet - p.CurrentBet
	if toCall <= 0 {
		actions = append(actions, Check)
	} else {
		actions = append(actions, Call)
	}
	if e.currentBet == 0 {
		actions = append(actions, Bet)
	}
	if e.currentBet > 0 && p.Stack > toCall {
		actions = append(actions, Raise)
	}
	return append(actions, AllIn)
}

func (e *Engine) dealHoleCards() error {
	for range 2 {
		for _, p := range e.players {
			if p.Folded {
				continue
			}
			card, err := e.deck.DealOne()
			if err != nil {
				return fmt.Errorf("dealing hole cards: %w", err)
			}
			p.Cards = append(p.Cards, card)
		}
	}
	return nil
}

// nextFunded returns the first seat after from holding chips
func (e *Engine) nextFunded(from int) int {
	n := len(e.players)
	for off := 1; off <= n; off++ {
		if seat := (from + off) % n; e.players[seat].Stack > 0 {
			return seat
		}
	}
	return from
}

func (e *Engine) countPlayers(pred func(*Player) bool) int {
	n := 0
	for _, p := range e.players {
		if pred(p) {
			n++
		}
	}
	return n
}
