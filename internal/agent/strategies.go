package agent

import (
	"context"
	"math/rand/v2"

	"github.com/charmbracelet/log"

	"github.com/lox/holdem-engine/internal/deck"
	"github.com/lox/holdem-engine/internal/evaluator"
	"github.com/lox/holdem-engine/internal/game"
)

// Random picks any legal action. Bets and raises are sized between the
// minimum and half the stack.
type Random struct {
	rng    *rand.Rand
	logger *log.Logger
}

func NewRandom(rng *rand.Rand, logger *log.Logger) *Random {
	return &Random{rng: rng, logger: logger.WithPrefix("random")}
}

func (r *Random) Name() string { return "random" }

func (r *Random) Decide(_ context.Context, state game.State, playerID string, valid []game.Action) (game.Decision, error) {
	v, err := view(state, playerID)
	if err != nil {
		return game.Decision{}, err
	}
	if len(valid) == 0 {
		return decide(game.Fold, "no legal actions"), nil
	}

	action := valid[r.rng.IntN(len(valid))]
	spread := max(v.player.Stack/2, 1)
	switch action {
	case game.Bet:
		return v.bet(state.BigBlind+r.rng.IntN(spread), "random bet"), nil
	case game.Raise:
		return v.raiseTo(state.MinRaiseTo()+r.rng.IntN(spread), "random raise"), nil
	default:
		return decide(action, "random"), nil
	}
}

// Aggressive plays a loose-aggressive style: it enters many pots, opens for
// three big blinds and keeps betting three quarters of the pot after the flop.
type Aggressive struct {
	rng    *rand.Rand
	logger *log.Logger

	VPIP       float64 // share of hands played preflop
	PFR        float64 // share of hands raised preflop
	Aggression float64 // share of postflop decisions that bet or raise
}

func NewAggressive(rng *rand.Rand, logger *log.Logger) *Aggressive {
	return &Aggressive{
		rng:        rng,
		logger:     logger.WithPrefix("aggressive"),
		VPIP:       0.45,
		PFR:        0.35,
		Aggression: 0.7,
	}
}

func (a *Aggressive) Name() string { return "aggressive" }

func (a *Aggressive) Decide(_ context.Context, state game.State, playerID string, valid []game.Action) (game.Decision, error) {
	v, err := view(state, playerID)
	if err != nil {
		return game.Decision{}, err
	}
	if len(valid) == 0 {
		return decide(game.Fold, "no legal actions"), nil
	}

	if state.Phase == game.PreFlop {
		strength := deck.StartingHandPercentile(v.player.Cards)
		switch {
		case has(valid, game.Raise) && (strength >= 0.9 || a.rng.Float64() < a.PFR):
			return v.raiseTo(3*state.BigBlind, "open for three big blinds"), nil
		case has(valid, game.Bet):
			return v.bet(3*state.BigBlind, "open for three big blinds"), nil
		case has(valid, game.Call) && (strength >= 0.5 || a.rng.Float64() < a.VPIP):
			return decide(game.Call, "loose call"), nil
		case has(valid, game.Check):
			return decide(game.Check, "free flop"), nil
		default:
			return decide(game.Fold, "too weak to continue"), nil
		}
	}

	if a.rng.Float64() < a.Aggression {
		size := state.Pot * 3 / 4
		switch {
		case has(valid, game.Raise):
			return v.raiseTo(state.CurrentBet+size, "three quarter pot raise"), nil
		case has(valid, game.Bet):
			return v.bet(size, "three quarter pot bet"), nil
		case has(valid, game.Call):
			return decide(game.Call, "keep pressure on"), nil
		case has(valid, game.Check):
			return decide(game.Check, "nothing to raise"), nil
		}
	}

	switch {
	case has(valid, game.Check):
		return decide(game.Check, "pot control"), nil
	case has(valid, game.Call) && a.rng.Float64() < 0.5:
		return decide(game.Call, "float"), nil
	default:
		return decide(game.Fold, "give up"), nil
	}
}

// Conservative plays a tight-aggressive style: it enters only with strong
// starting hands and after the flop bets or calls on its estimated equity.
type Conservative struct {
	rng    *rand.Rand
	logger *log.Logger

	VPIP       float64 // share of starting hands played
	PFR        float64 // share of starting hands raised
	Aggression float64 // equity above which it bets or raises
	Samples    int     // Monte Carlo samples per equity estimate
}

func NewConservative(rng *rand.Rand, logger *log.Logger) *Conservative {
	return &Conservative{
		rng:        rng,
		logger:     logger.WithPrefix("conservative"),
		VPIP:       0.18,
		PFR:        0.15,
		Aggression: 0.7,
		Samples:    300,
	}
}

func (c *Conservative) Name() string { return "conservative" }

func (c *Conservative) Decide(ctx context.Context, state game.State, playerID string, valid []game.Action) (game.Decision, error) {
	v, err := view(state, playerID)
	if err != nil {
		return game.Decision{}, err
	}
	if len(valid) == 0 {
		return decide(game.Fold, "no legal actions"), nil
	}

	if state.Phase == game.PreFlop {
		strength := deck.StartingHandPercentile(v.player.Cards)
		switch {
		case strength < 1-c.VPIP:
			if has(valid, game.Check) {
				return decide(game.Check, "weak hand, free look"), nil
			}
			return decide(game.Fold, "outside starting range"), nil
		case strength >= 1-c.PFR && has(valid, game.Raise):
			return v.raiseTo(3*state.BigBlind, "premium hand"), nil
		case has(valid, game.Call):
			return decide(game.Call, "playable hand"), nil
		default:
			return decide(game.Check, "playable hand"), nil
		}
	}

	opponents := state.ActivePlayers() - 1
	equity, err := evaluator.Equity(ctx, v.player.Cards, state.CommunityCards, max(opponents, 1), c.Samples, c.rng.Int64())
	if err != nil {
		c.logger.Warn("equity estimate failed", "player", playerID, "error", err)
		return Fallback(valid, "no equity estimate"), nil
	}
	c.logger.Debug("equity", "player", playerID, "phase", state.Phase, "equity", equity)

	if equity >= c.Aggression {
		size := state.Pot / 2
		switch {
		case has(valid, game.Bet):
			return v.bet(size, "value bet"), nil
		case has(valid, game.Raise):
			return v.raiseTo(state.CurrentBet+size, "value raise"), nil
		}
	}

	if has(valid, game.Check) {
		return decide(game.Check, "check behind"), nil
	}
	// Call when the price is below our share of the final pot
	potOdds := float64(v.toCall) / float64(state.Pot+v.toCall)
	if has(valid, game.Call) && equity > potOdds {
		return decide(game.Call, "priced in"), nil
	}
	return decide(game.Fold, "not enough equity"), nil
}

// CallingStation never raises: it checks when it can and calls otherwise
type CallingStation struct {
	logger *log.Logger
}

func NewCallingStation(logger *log.Logger) *CallingStation {
	return &CallingStation{logger: logger.WithPrefix("calling_station")}
}

func (c *CallingStation) Name() string { return "calling_station" }

func (c *CallingStation) Decide(_ context.Context, _ game.State, _ string, valid []game.Action) (game.Decision, error) {
	switch {
	case has(valid, game.Check):
		return decide(game.Check, "check"), nil
	case has(valid, game.Call):
		return decide(game.Call, "call"), nil
	case has(valid, game.AllIn):
		return decide(game.AllIn, "call all-in"), nil
	default:
		return decide(game.Fold, "no legal actions"), nil
	}
}
