package main

import (
	"fmt"
	"os"
	"slices"

	"github.com/charmbracelet/log"

	"github.com/lox/holdem-engine/internal/agent"
	"github.com/lox/holdem-engine/internal/game"
	"github.com/lox/holdem-engine/internal/randutil"
	"github.com/lox/holdem-engine/internal/table"
	"github.com/lox/holdem-engine/internal/tui"
)

const humanID = "player_1"

// PlayCmd seats one human against agents in the terminal
type PlayCmd struct {
	Opponents     []string `arg:"" optional:"" help:"Opponent strategies, one per seat (default: one of each built-in)"`
	Name          string   `default:"You" help:"Your display name"`
	SmallBlind    int      `default:"5" help:"Small blind"`
	BigBlind      int      `default:"10" help:"Big blind"`
	StartingStack int      `default:"1000" help:"Starting stack"`
	Seed          int64    `help:"RNG seed (default: random)"`
	LogFile       string   `default:"holdem-play.log" help:"Debug log file, the terminal belongs to the game" type:"path"`
	Debug         bool     `help:"Enable debug logging"`
}

func (c *PlayCmd) Run() error {
	opponents := c.Opponents
	if len(opponents) == 0 {
		opponents = slices.DeleteFunc(agent.Names(), func(name string) bool { return name == "random" })
	}
	if n := len(opponents) + 1; n > game.MaxPlayers {
		return fmt.Errorf("at most %d opponents", game.MaxPlayers-1)
	}

	logFile, err := os.OpenFile(c.LogFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	defer func() { _ = logFile.Close() }()

	level := log.InfoLevel
	if c.Debug {
		level = log.DebugLevel
	}
	logger := newLogger(logFile, level)

	seed := c.Seed
	if seed == 0 {
		seed = randutil.Seed()
	}
	logger.Info("starting game", "seed", seed, "opponents", opponents)
	rng := randutil.New(seed)

	seats := []game.Seat{{ID: humanID, Name: c.Name}}
	agents := make(map[string]agent.Agent, len(opponents))
	for i, name := range opponents {
		a, err := agent.New(name, randutil.New(rng.Int64()), logger)
		if err != nil {
			return err
		}
		id := fmt.Sprintf("ai_%s_%d", name, i+2)
		seats = append(seats, game.Seat{ID: id, Name: fmt.Sprintf("AI-%s", name)})
		agents[id] = a
	}

	t, err := table.New(seats, agents, table.Config{
		SmallBlind:    c.SmallBlind,
		BigBlind:      c.BigBlind,
		StartingStack: c.StartingStack,
	},
		table.WithLogger(logger),
		table.WithEngineOptions(game.WithRNG(randutil.New(rng.Int64()))))
	if err != nil {
		return err
	}
	defer t.Close()

	ctx, stop := signalContext()
	defer stop()
	return tui.Run(ctx, t, humanID, logger)
}
