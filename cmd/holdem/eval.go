package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/lox/holdem-engine/internal/deck"
	"github.com/lox/holdem-engine/internal/evaluator"
	"github.com/lox/holdem-engine/internal/randutil"
)

// EvalCmd evaluates five to seven cards, and optionally the equity of the
// first two against random hands
type EvalCmd struct {
	Cards     []string `arg:"" help:"Cards such as 'As Kd' or 'AsKd2c3h4s'"`
	Equity    bool     `help:"Estimate the equity of the first two cards against random hands"`
	Opponents int      `default:"1" help:"Opponents for --equity"`
	Samples   int      `default:"20000" help:"Monte Carlo samples for --equity"`
	Seed      int64    `help:"Seed for --equity (default: random)"`
}

func (c *EvalCmd) Run() error {
	cards, err := deck.ParseCards(strings.Join(c.Cards, ""))
	if err != nil {
		return err
	}

	if len(cards) >= 5 {
		best, err := evaluator.Best(cards)
		if err != nil {
			return err
		}
		fmt.Printf("%s: %s (%s)\n", formatCards(cards), evaluator.Describe(best), best.Category)
	} else if !c.Equity {
		return fmt.Errorf("need 5 to 7 cards to evaluate, or --equity with 2 to 7")
	}

	if c.Equity {
		if len(cards) < 2 {
			return fmt.Errorf("--equity needs two hole cards")
		}
		seed := c.Seed
		if seed == 0 {
			seed = randutil.Seed()
		}
		equity, err := evaluator.Equity(context.Background(), cards[:2], cards[2:], c.Opponents, c.Samples, seed)
		if err != nil {
			return err
		}
		fmt.Printf("Equity of %s vs %d random hand(s): %.1f%% (%d samples)\n",
			formatCards(cards[:2]), c.Opponents, equity*100, c.Samples)
	}
	return nil
}

func formatCards(cards []deck.Card) string {
	out := make([]string, len(cards))
	for i, c := range cards {
		out[i] = c.Pretty()
	}
	return strings.Join(out, " ")
}
