// Package simulator plays many games between built-in agents, checking the
// engine's invariants after every hand and aggregating results by strategy.
package simulator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/lox/holdem-engine/internal/agent"
	"github.com/lox/holdem-engine/internal/deck"
	"github.com/lox/holdem-engine/internal/game"
	"github.com/lox/holdem-engine/internal/randutil"
	"github.com/lox/holdem-engine/internal/statistics"
)

// Config holds configuration for running simulations
type Config struct {
	Strategies    []string // one seat per entry
	Games         int
	HandsPerGame  int
	SmallBlind    int
	BigBlind      int
	StartingStack int
	Seed          int64
	Workers       int           // parallel games, defaults to the CPU count
	Timeout       time.Duration // per game, 0 for none
	Logger        *log.Logger

	// Progress, if set, is called after each finished game with the number
	// of games done so far
	Progress func(done int)
}

// StrategyResult aggregates every seat played by one strategy
type StrategyResult struct {
	Name      string                `json:"name"`
	Seats     int                   `json:"seats"` // seats played across all games
	NetChips  int                   `json:"net_chips"`
	HandsWon  int                   `json:"hands_won"`
	Showdowns int                   `json:"showdowns"`
	Stats     statistics.Statistics `json:"stats"`
}

// Result is the outcome of a simulation
type Result struct {
	Games      int              `json:"games"`
	Hands      int              `json:"hands"`
	Seed       int64            `json:"seed"`
	Duration   time.Duration    `json:"duration"`
	Strategies []StrategyResult `json:"strategies"` // sorted by name
}

// Strategy returns the result for name
func (r *Result) Strategy(name string) (StrategyResult, bool) {
	for _, s := range r.Strategies {
		if s.Name == name {
			return s, true
		}
	}
	return StrategyResult{}, false
}

// Validate checks the configuration
func (c Config) Validate() error {
	if len(c.Strategies) < game.MinPlayers || len(c.Strategies) > game.MaxPlayers {
		return fmt.Errorf("need %d-%d strategies, got %d", game.MinPlayers, game.MaxPlayers, len(c.Strategies))
	}
	known := agent.Names()
	for _, s := range c.Strategies {
		if !slices.Contains(known, s) {
			return fmt.Errorf("unknown strategy %q (have %v)", s, known)
		}
	}
	if c.Games <= 0 || c.HandsPerGame <= 0 {
		return fmt.Errorf("games and hands per game must be positive")
	}
	return nil
}

// Run plays cfg.Games games in parallel. Seats rotate between games so every
// strategy plays every position.
func Run(ctx context.Context, cfg Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Logger == nil {
		cfg.Logger = log.New(io.Discard)
	}
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}
	cfg.SmallBlind = max(cfg.SmallBlind, 1)
	cfg.BigBlind = max(cfg.BigBlind, cfg.SmallBlind*2)
	if cfg.StartingStack <= 0 {
		cfg.StartingStack = cfg.BigBlind * 100
	}
	logger := cfg.Logger.WithPrefix("simulator")

	start := time.Now()
	var (
		mu     sync.Mutex
		totals = make(map[string]*StrategyResult)
		hands  int
		done   int
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Workers)
	for n := range cfg.Games {
		g.Go(func() error {
			out, err := playGame(ctx, cfg, n, logger)
			if err != nil {
				return fmt.Errorf("game %d (seed %d): %w", n, cfg.Seed, err)
			}

			mu.Lock()
			defer mu.Unlock()
			hands += out.hands
			for name, r := range out.strategies {
				t, ok := totals[name]
				if !ok {
					t = &StrategyResult{Name: name}
					totals[name] = t
				}
				t.Seats += r.Seats
				t.NetChips += r.NetChips
				t.HandsWon += r.HandsWon
				t.Showdowns += r.Showdowns
				t.Stats.Merge(&r.Stats)
			}
			done++
			if cfg.Progress != nil {
				cfg.Progress(done)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := &Result{
		Games:    cfg.Games,
		Hands:    hands,
		Seed:     cfg.Seed,
		Duration: time.Since(start),
	}
	for _, t := range totals {
		if err := t.Stats.Validate(); err != nil {
			return nil, fmt.Errorf("%s statistics: %w", t.Name, err)
		}
		result.Strategies = append(result.Strategies, *t)
	}
	slices.SortFunc(result.Strategies, func(a, b StrategyResult) int {
		return strings.Compare(a.Name, b.Name)
	})

	logger.Info("simulation finished", "games", result.Games, "hands", result.Hands, "duration", result.Duration)
	return result, nil
}

type gameOutcome struct {
	hands      int
	strategies map[string]*StrategyResult
}

// playGame plays one game until the hand limit or until one player holds
// every chip
func playGame(ctx context.Context, cfg Config, n int, logger *log.Logger) (gameOutcome, error) {
	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	rng := randutil.Derive(cfg.Seed, n)
	seats := make([]game.Seat, len(cfg.Strategies))
	agents := make([]agent.Agent, len(cfg.Strategies))
	for i := range seats {
		name := cfg.Strategies[(i+n)%len(cfg.Strategies)]
		a, err := agent.New(name, randutil.New(rng.Int64()), logger)
		if err != nil {
			return gameOutcome{}, err
		}
		seats[i] = game.Seat{ID: fmt.Sprintf("seat_%d", i), Name: name}
		agents[i] = a
	}

	engine, err := game.New(seats, cfg.SmallBlind, cfg.BigBlind, cfg.StartingStack,
		game.WithRNG(randutil.New(rng.Int64())),
		game.WithLogger(logger),
		game.WithHistoryLimit(1))
	if err != nil {
		return gameOutcome{}, err
	}

	out := gameOutcome{strategies: make(map[string]*StrategyResult)}
	for _, s := range seats {
		r, ok := out.strategies[s.Name]
		if !ok {
			r = &StrategyResult{Name: s.Name}
			out.strategies[s.Name] = r
		}
		r.Seats++
	}

	total := cfg.StartingStack * len(seats)
	for range cfg.HandsPerGame {
		state, err := engine.StartHand()
		if errors.Is(err, game.ErrPrecondition) {
			break // one player has every chip
		}
		if err != nil {
			return out, err
		}

		for state.Phase.IsBetting() {
			if err := ctx.Err(); err != nil {
				return out, err
			}
			if err := checkCards(state); err != nil {
				return out, err
			}
			seat := state.CurrentPlayer
			valid := engine.ValidActions(seat)
			id := seats[seat].ID

			decision, err := agents[seat].Decide(ctx, state.VisibleTo(id), id, valid)
			if err != nil {
				logger.Warn("agent failed, falling back", "seat", id, "strategy", seats[seat].Name, "error", err)
				decision = agent.Fallback(valid, err.Error())
			}
			next, err := engine.ProcessAction(seat, decision.Action, decision.Amount)
			if errors.Is(err, game.ErrIllegalAction) {
				logger.Warn("illegal decision, falling back", "seat", id, "strategy", seats[seat].Name, "decision", decision, "error", err)
				fallback := agent.Fallback(valid, err.Error())
				next, err = engine.ProcessAction(seat, fallback.Action, fallback.Amount)
			}
			if err != nil {
				return out, fmt.Errorf("%s chose %s: %w", seats[seat].Name, decision, err)
			}
			state = next
		}

		if err := checkChips(state, total); err != nil {
			return out, err
		}
		out.hands++
		record(out.strategies, state, seats)
	}
	return out, nil
}

// record adds the last finished hand to the per-strategy results
func record(results map[string]*StrategyResult, state game.State, seats []game.Seat) {
	if len(state.HandHistory) == 0 {
		return
	}
	summary := state.HandHistory[len(state.HandHistory)-1]
	street := streetReached(len(summary.Board))
	bb := float64(state.BigBlind)

	for i, s := range seats {
		res, ok := summary.Result(s.ID)
		if !ok || res.StackStart == 0 {
			continue // sat out
		}
		r := results[s.Name]
		r.NetChips += res.Result
		if res.Result > 0 {
			r.HandsWon++
		}
		if summary.Showdown {
			r.Showdowns++
		}
		r.Stats.Add(statistics.HandResult{
			NetBB:    float64(res.Result) / bb,
			Seat:     i,
			Showdown: summary.Showdown,
			PotBB:    float64(summary.Pot) / bb,
			Street:   street,
		})
	}
}

func streetReached(boardCards int) game.Phase {
	switch boardCards {
	case 5:
		return game.River
	case 4:
		return game.Turn
	case 3:
		return game.Flop
	default:
		return game.PreFlop
	}
}

// checkChips verifies that no chips were created or destroyed
func checkChips(state game.State, total int) error {
	sum := state.Pot
	for _, p := range state.Players {
		if p.Stack < 0 {
			return fmt.Errorf("hand %d: %s has a negative stack %d", state.HandNumber, p.ID, p.Stack)
		}
		sum += p.Stack
	}
	if sum != total {
		return fmt.Errorf("hand %d: chips not conserved, have %d want %d", state.HandNumber, sum, total)
	}
	return nil
}

// checkCards verifies that no card is in play twice
func checkCards(state game.State) error {
	seen := make(map[deck.Card]bool, 2*len(state.Players)+5)
	cards := slices.Clone(state.CommunityCards)
	for _, p := range state.Players {
		cards = append(cards, p.Cards...)
	}
	for _, c := range cards {
		if seen[c] {
			return fmt.Errorf("hand %d: %s dealt twice", state.HandNumber, c)
		}
		seen[c] = true
	}
	return nil
}

// PrintSummary writes a human readable report of r
func PrintSummary(w io.Writer, r *Result) {
	fmt.Fprintf(w, "\n=== RESULTS (seed %d) ===\n", r.Seed)
	fmt.Fprintf(w, "Games: %d, hands: %d, took %s\n", r.Games, r.Hands, r.Duration.Round(time.Millisecond))

	for _, s := range r.Strategies {
		stats := &s.Stats
		low, high := stats.ConfidenceInterval95()
		fmt.Fprintf(w, "\n--- %s (%d seats) ---\n", s.Name, s.Seats)
		fmt.Fprintf(w, "Net chips: %+d over %d hands, won %d, showdowns %d\n",
			s.NetChips, stats.Hands, s.HandsWon, s.Showdowns)
		fmt.Fprintf(w, "Mean: %.4f bb/hand, median %.4f, std dev %.4f\n",
			stats.Mean(), stats.Median(), stats.StdDev())
		fmt.Fprintf(w, "95%% CI: [%.4f, %.4f] bb/hand\n", low, high)
		fmt.Fprintf(w, "Percentiles: P5=%.3f, P25=%.3f, P75=%.3f, P95=%.3f\n",
			stats.Percentile(0.05), stats.Percentile(0.25), stats.Percentile(0.75), stats.Percentile(0.95))

		if wins := stats.ShowdownWins + stats.NonShowdownWins; wins > 0 {
			fmt.Fprintf(w, "Winning hands: %d showdown (%.1f%%), %d fold equity (%.1f%%)\n",
				stats.ShowdownWins, pct(stats.ShowdownWins, wins),
				stats.NonShowdownWins, pct(stats.NonShowdownWins, wins))
		}
		if stats.Hands > 0 {
			fmt.Fprintf(w, "Big pots (>=%dbb): %d hands (%.1f%%), %.2f bb total, max pot %.1f bb\n",
				statistics.BigPotBB, stats.BigPots, pct(stats.BigPots, stats.Hands), stats.BigPotsBB, stats.MaxPotBB)
		}
		for seat := range stats.Seats {
			if n := stats.Seats[seat].Hands; n > 0 {
				fmt.Fprintf(w, "Seat %d: %d hands, %.3f bb/hand\n", seat, n, stats.SeatMean(seat))
			}
		}
	}
}

func pct(n, of int) float64 {
	return float64(n) / float64(of) * 100
}
