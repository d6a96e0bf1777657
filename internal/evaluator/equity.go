package evaluator

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/lox/holdem-engine/internal/deck"
	"github.com/lox/holdem-engine/internal/randutil"
)

// ErrEquityInput is returned when the hole cards, board or opponent count cannot form a deal
var ErrEquityInput = errors.New("invalid equity input")

// parallelThreshold is the sample count above which work is split across workers
const parallelThreshold = 500

// workerResult holds the results from a Monte Carlo worker
type workerResult struct {
	wins    float64
	samples int
}

// Equity estimates the share of the pot hole wins against the given number of
// opponents holding random cards, completing the board at random. Ties count
// as a fractional win split between the tied hands. The seed makes the result
// reproducible.
func Equity(ctx context.Context, hole, board []deck.Card, opponents, samples int, seed int64) (float64, error) {
	available, err := equityDeck(hole, board, opponents)
	if err != nil {
		return 0, err
	}
	if samples <= 0 {
		return 0, nil
	}

	workers := 1
	if samples >= parallelThreshold {
		workers = min(runtime.NumCPU(), 8)
	}

	g, ctx := errgroup.WithContext(ctx)
	results := make(chan workerResult, workers)

	perWorker, remainder := samples/workers, samples%workers
	for w := range workers {
		n := perWorker
		if w < remainder {
			n++
		}
		rng := randutil.Derive(seed, w)

		g.Go(func() error {
			res, err := runEquityWorker(ctx, hole, board, available, opponents, n, rng)
			if err != nil {
				return err
			}
			results <- res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return 0, err
	}
	close(results)

	var total workerResult
	for res := range results {
		total.wins += res.wins
		total.samples += res.samples
	}
	if total.samples == 0 {
		return 0, nil
	}
	return total.wins / float64(total.samples), nil
}

func equityDeck(hole, board []deck.Card, opponents int) ([]deck.Card, error) {
	if len(hole) != 2 {
		return nil, fmt.Errorf("%w: need 2 hole cards, got %d", ErrEquityInput, len(hole))
	}
	if len(board) > 5 {
		return nil, fmt.Errorf("%w: board has %d cards", ErrEquityInput, len(board))
	}
	if opponents < 1 {
		return nil, fmt.Errorf("%w: need at least one opponent", ErrEquityInput)
	}

	used := make(map[deck.Card]bool, 7)
	for _, c := range append(append([]deck.Card{}, hole...), board...) {
		if used[c] {
			return nil, fmt.Errorf("%w: duplicate card %s", ErrEquityInput, c)
		}
		used[c] = true
	}

	available := make([]deck.Card, 0, deck.Size-len(used))
	for _, suit := range deck.Suits {
		for rank := deck.Two; rank <= deck.Ace; rank++ {
			if c := deck.NewCard(rank, suit); !used[c] {
				available = append(available, c)
			}
		}
	}
	if need := 2*opponents + 5 - len(board); need > len(available) {
		return nil, fmt.Errorf("%w: %d opponents need %d cards, %d left", ErrEquityInput, opponents, need, len(available))
	}
	return available, nil
}

func runEquityWorker(ctx context.Context, hole, board, available []deck.Card, opponents, samples int, rng *rand.Rand) (workerResult, error) {
	pool := make([]deck.Card, len(available))
	hero := make([]deck.Card, 7)
	villain := make([]deck.Card, 7)
	need := 2*opponents + 5 - len(board)

	var res workerResult
	for i := range samples {
		if i%256 == 0 {
			if err := ctx.Err(); err != nil {
				return res, err
			}
		}

		// Partial Fisher-Yates: only the first need cards are drawn
		copy(pool, available)
		for j := range need {
			k := j + rng.IntN(len(pool)-j)
			pool[j], pool[k] = pool[k], pool[j]
		}
		runout := pool[2*opponents : need]

		copy(hero, hole)
		copy(hero[2:], board)
		copy(hero[2+len(board):], runout)
		heroValue := bestOfSeven(hero)

		best, tied := true, 1
		for o := range opponents {
			villain[0], villain[1] = pool[2*o], pool[2*o+1]
			copy(villain[2:], hero[2:])
			switch c := Compare(bestOfSeven(villain), heroValue); {
			case c > 0:
				best = false
			case c == 0:
				tied++
			}
			if !best {
				break
			}
		}

		if best {
			res.wins += 1 / float64(tied)
		}
		res.samples++
	}
	return res, nil
}
