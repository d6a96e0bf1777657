package simulator

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func smallConfig() Config {
	return Config{
		Strategies:   []string{"random", "aggressive", "conservative", "calling_station"},
		Games:        6,
		HandsPerGame: 25,
		SmallBlind:   5,
		BigBlind:     10,
		Seed:         42,
		Workers:      3,
	}
}

func TestRunConservesChips(t *testing.T) {
	t.Parallel()

	result, err := Run(context.Background(), smallConfig())
	require.NoError(t, err)

	assert.Equal(t, 6, result.Games)
	assert.Positive(t, result.Hands)
	require.Len(t, result.Strategies, 4)

	net, seats := 0, 0
	for _, s := range result.Strategies {
		net += s.NetChips
		seats += s.Seats
		require.NoError(t, s.Stats.Validate())
		assert.LessOrEqual(t, s.HandsWon, s.Stats.Hands)
	}
	assert.Zero(t, net, "chips won must equal chips lost")
	assert.Equal(t, 6*4, seats)
}

func TestRunIsDeterministicPerSeed(t *testing.T) {
	t.Parallel()

	a, err := Run(context.Background(), smallConfig())
	require.NoError(t, err)

	cfg := smallConfig()
	cfg.Workers = 1
	b, err := Run(context.Background(), cfg)
	require.NoError(t, err)

	require.Equal(t, a.Hands, b.Hands)
	for i := range a.Strategies {
		assert.Equal(t, a.Strategies[i].Name, b.Strategies[i].Name)
		assert.Equal(t, a.Strategies[i].NetChips, b.Strategies[i].NetChips)
		assert.Equal(t, a.Strategies[i].HandsWon, b.Strategies[i].HandsWon)
	}
}

func TestRunRotatesSeats(t *testing.T) {
	t.Parallel()

	cfg := smallConfig()
	cfg.Strategies = []string{"calling_station", "calling_station", "random"}
	cfg.Games = 3
	result, err := Run(context.Background(), cfg)
	require.NoError(t, err)

	random, ok := result.Strategy("random")
	require.True(t, ok)
	assert.Equal(t, 3, random.Seats)
	played := 0
	for seat := range random.Stats.Seats {
		if random.Stats.Seats[seat].Hands > 0 {
			played++
		}
	}
	assert.Equal(t, 3, played, "each game seats the strategy somewhere new")

	station, ok := result.Strategy("calling_station")
	require.True(t, ok)
	assert.Equal(t, 6, station.Seats)
	_, ok = result.Strategy("missing")
	assert.False(t, ok)
}

func TestRunReportsProgress(t *testing.T) {
	t.Parallel()

	cfg := smallConfig()
	var calls []int
	cfg.Workers = 1
	cfg.Progress = func(done int) { calls = append(calls, done) }
	_, err := Run(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6}, calls)
}

func TestRunRejectsBadConfig(t *testing.T) {
	t.Parallel()

	cfg := smallConfig()
	cfg.Strategies = []string{"random"}
	_, err := Run(context.Background(), cfg)
	require.Error(t, err)

	cfg = smallConfig()
	cfg.Strategies = []string{"random", "telepathic"}
	_, err = Run(context.Background(), cfg)
	require.ErrorContains(t, err, "telepathic")

	cfg = smallConfig()
	cfg.Games = 0
	_, err = Run(context.Background(), cfg)
	require.Error(t, err)
}

func TestRunStopsWhenCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Run(ctx, smallConfig())
	require.ErrorIs(t, err, context.Canceled)
}

func TestPrintSummary(t *testing.T) {
	t.Parallel()

	result, err := Run(context.Background(), smallConfig())
	require.NoError(t, err)

	var buf bytes.Buffer
	PrintSummary(&buf, result)
	out := buf.String()
	assert.Contains(t, out, "RESULTS (seed 42)")
	for _, name := range []string{"random", "aggressive", "conservative", "calling_station"} {
		assert.Contains(t, out, "--- "+name)
	}
	assert.Contains(t, out, "95% CI")
}
