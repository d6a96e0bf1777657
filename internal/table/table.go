// Package table hosts one game: it owns the engine, serializes every call
// on it, and drives the seats that are played by agents.
package table

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/holdem-engine/internal/agent"
	"github.com/lox/holdem-engine/internal/game"
)

// ErrUnknownPlayer is returned for a player id that has no seat at the table
var ErrUnknownPlayer = errors.New("unknown player")

var errDecisionTimeout = errors.New("decision timed out")

const (
	DefaultDecisionTimeout = 10 * time.Second
	DefaultMaxSteps        = 500
)

// Config holds the stakes and autoplay limits of a table
type Config struct {
	SmallBlind      int
	BigBlind        int
	StartingStack   int
	DecisionTimeout time.Duration
	MaxSteps        int
}

// Option configures a Table
type Option func(*Table)

// WithClock sets the clock used for decision timeouts and the engine log
func WithClock(c quartz.Clock) Option {
	return func(t *Table) { t.clock = c }
}

// WithLogger sets the table logger
func WithLogger(l *log.Logger) Option {
	return func(t *Table) { t.logger = l }
}

// WithEngineOptions passes options through to the engine
func WithEngineOptions(opts ...game.Option) Option {
	return func(t *Table) { t.engineOpts = append(t.engineOpts, opts...) }
}

// Table is one hosted game. Seats listed in agents are played by those
// agents; every other seat belongs to a human acting through Act.
type Table struct {
	mu sync.Mutex

	engine  *game.Engine
	agents  map[string]agent.Agent
	cfg     Config
	created time.Time

	subs    map[int]subscriber
	nextSub int
	closed  bool

	engineOpts []game.Option
	clock      quartz.Clock
	logger     *log.Logger
}

type subscriber struct {
	viewer string
	ch     chan game.State
}

// New seats players and builds the engine. agents maps player ids to the
// agent playing that seat.
func New(seats []game.Seat, agents map[string]agent.Agent, cfg Config, opts ...Option) (*Table, error) {
	t := &Table{
		agents: make(map[string]agent.Agent, len(agents)),
		cfg:    cfg,
		subs:   make(map[int]subscriber),
		clock:  quartz.NewReal(),
		logger: log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.cfg.DecisionTimeout <= 0 {
		t.cfg.DecisionTimeout = DefaultDecisionTimeout
	}
	if t.cfg.MaxSteps <= 0 {
		t.cfg.MaxSteps = DefaultMaxSteps
	}

	ids := make(map[string]bool, len(seats))
	for _, s := range seats {
		ids[s.ID] = true
	}
	for id, a := range agents {
		if !ids[id] {
			return nil, fmt.Errorf("%w: agent for unseated player %q", game.ErrConfiguration, id)
		}
		t.agents[id] = a
	}

	engineOpts := append([]game.Option{game.WithClock(t.clock), game.WithLogger(t.logger)}, t.engineOpts...)
	engine, err := game.New(seats, cfg.SmallBlind, cfg.BigBlind, cfg.StartingStack, engineOpts...)
	if err != nil {
		return nil, err
	}
	t.engine = engine
	t.created = t.clock.Now()
	t.logger = t.logger.WithPrefix("table").With("game_id", engine.ID())
	return t, nil
}

// ID is the game id of the hosted engine
func (t *Table) ID() string {
	return t.engine.ID()
}

// Created is when the table was opened
func (t *Table) Created() time.Time {
	return t.created
}

// IsAgent reports whether playerID is played by an agent
func (t *Table) IsAgent(playerID string) bool {
	_, ok := t.agents[playerID]
	return ok
}

// Snapshot returns the game as viewerID may see it. An empty viewer sees no
// hole cards before showdown.
func (t *Table) Snapshot(viewerID string) game.State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.engine.State().VisibleTo(viewerID)
}

// State returns the full state, hole cards included
func (t *Table) State() game.State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.engine.State()
}

// Start deals the next hand
func (t *Table) Start() (game.State, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	state, err := t.engine.StartHand()
	if err != nil {
		return state, err
	}
	t.logger.Info("hand started", "hand", state.HandNumber, "dealer", state.DealerPosition)
	t.publish(state)
	return state, nil
}

// Act applies a human player's action. It rejects unknown players, seats
// played by agents and players acting out of turn.
func (t *Table) Act(playerID string, action game.Action, amount int) (game.State, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	state := t.engine.State()
	seat := state.Seat(playerID)
	if seat < 0 {
		return state, fmt.Errorf("%w: %q", ErrUnknownPlayer, playerID)
	}
	if t.IsAgent(playerID) {
		return state, fmt.Errorf("%w: seat %q is played by an agent", game.ErrPrecondition, playerID)
	}
	if state.CurrentPlayer != seat {
		return state, fmt.Errorf("%w: not %s's turn", game.ErrPrecondition, playerID)
	}

	next, err := t.engine.ProcessAction(seat, action, amount)
	if err != nil {
		return state, err
	}
	t.publish(next)
	return next, nil
}

// ValidActions lists the actions playerID may take now
func (t *Table) ValidActions(playerID string) []game.Action {
	t.mu.Lock()
	defer t.mu.Unlock()

	state := t.engine.State()
	seat := state.Seat(playerID)
	if seat < 0 || seat != state.CurrentPlayer {
		return nil
	}
	return t.engine.ValidActions(seat)
}

// HumanToAct reports whether a human seat is able to act in the current hand
func (t *Table) HumanToAct() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	state := t.engine.State()
	if !state.Phase.IsBetting() {
		return false
	}
	for _, p := range state.Players {
		if !t.IsAgent(p.ID) && p.CanAct() {
			return true
		}
	}
	return false
}

// Advance lets the agent to act make one decision. It reports false when
// nobody is to act or the player to act is human.
func (t *Table) Advance(ctx context.Context) (game.State, bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.step(ctx)
}

// RunBots makes agent decisions until a human must act, the hand ends or
// the step limit is reached. It returns the number of decisions made.
func (t *Table) RunBots(ctx context.Context) (game.State, int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	state := t.engine.State()
	steps := 0
	for steps < t.cfg.MaxSteps {
		if err := ctx.Err(); err != nil {
			return state, steps, err
		}
		next, advanced, err := t.step(ctx)
		if err != nil {
			return next, steps, err
		}
		state = next
		if !advanced {
			break
		}
		steps++
	}
	if steps == t.cfg.MaxSteps {
		t.logger.Warn("agent step limit reached", "steps", steps, "phase", state.Phase)
	}
	return state, steps, nil
}

func (t *Table) step(ctx context.Context) (game.State, bool, error) {
	state := t.engine.State()
	acting, ok := state.Acting()
	if !ok {
		return state, false, nil
	}
	a, ok := t.agents[acting.ID]
	if !ok {
		return state, false, nil
	}

	seat := state.CurrentPlayer
	valid := t.engine.ValidActions(seat)
	decision, err := t.decide(ctx, a, state.VisibleTo(acting.ID), acting.ID, valid)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return state, false, ctxErr
		}
		t.logger.Warn("agent failed, folding", "player", acting.ID, "agent", a.Name(), "error", err)
		decision = game.Decision{Action: game.Fold, Reason: err.Error()}
	}

	next, err := t.engine.ProcessAction(seat, decision.Action, decision.Amount)
	if err != nil {
		t.logger.Warn("agent chose an illegal action, folding",
			"player", acting.ID,
			"agent", a.Name(),
			"decision", decision,
			"error", err)
		next, err = t.engine.ProcessAction(seat, game.Fold, 0)
		if err != nil {
			return state, false, fmt.Errorf("folding %s: %w", acting.ID, err)
		}
	}

	t.logger.Debug("agent acted", "player", acting.ID, "decision", decision)
	t.publish(next)
	return next, true, nil
}

// decide asks the agent for a decision, cancelling it once the decision
// timeout elapses on the table clock.
func (t *Table) decide(ctx context.Context, a agent.Agent, state game.State, playerID string, valid []game.Action) (game.Decision, error) {
	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	timer := t.clock.AfterFunc(t.cfg.DecisionTimeout, func() {
		cancel(errDecisionTimeout)
	})
	defer timer.Stop()

	decision, err := a.Decide(ctx, state, playerID, valid)
	if cause := context.Cause(ctx); errors.Is(cause, errDecisionTimeout) {
		return game.Decision{}, fmt.Errorf("%w after %s", errDecisionTimeout, t.cfg.DecisionTimeout)
	}
	return decision, err
}
