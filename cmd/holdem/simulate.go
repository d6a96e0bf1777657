package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/schollz/progressbar/v3"

	"github.com/lox/holdem-engine/internal/agent"
	"github.com/lox/holdem-engine/internal/fileutil"
	"github.com/lox/holdem-engine/internal/simulator"
)

// SimulateCmd plays agents against each other
type SimulateCmd struct {
	Strategies    []string      `arg:"" optional:"" help:"Strategies to seat, one per seat (default: one of each built-in)"`
	Games         int           `short:"g" default:"100" help:"Number of games"`
	Hands         int           `short:"n" default:"100" help:"Hands per game"`
	SmallBlind    int           `default:"5" help:"Small blind"`
	BigBlind      int           `default:"10" help:"Big blind"`
	StartingStack int           `default:"1000" help:"Starting stack"`
	Seed          int64         `help:"RNG seed (default: current time)"`
	Workers       int           `short:"w" help:"Parallel games (default: CPU count)"`
	Timeout       time.Duration `default:"1m" help:"Time limit per game"`
	Debug         bool          `help:"Enable debug logging"`
	Quiet         bool          `short:"q" help:"Hide the progress bar"`
	Output        string        `short:"o" help:"Also write the results as JSON to this file" type:"path"`
}

func (c *SimulateCmd) Run() error {
	level := log.WarnLevel
	if c.Debug {
		level = log.DebugLevel
	}
	logger := newLogger(os.Stderr, level)

	strategies := c.Strategies
	if len(strategies) == 0 {
		strategies = agent.Names()
	}
	seed := c.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	cfg := simulator.Config{
		Strategies:    strategies,
		Games:         c.Games,
		HandsPerGame:  c.Hands,
		SmallBlind:    c.SmallBlind,
		BigBlind:      c.BigBlind,
		StartingStack: c.StartingStack,
		Seed:          seed,
		Workers:       c.Workers,
		Timeout:       c.Timeout,
		Logger:        logger,
	}

	if !c.Quiet {
		bar := progressbar.NewOptions(c.Games,
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionSetDescription("Simulating "+strings.Join(strategies, " vs ")),
			progressbar.OptionShowCount(),
			progressbar.OptionSetWidth(40),
			progressbar.OptionClearOnFinish(),
		)
		defer func() { _ = bar.Finish() }()
		cfg.Progress = func(done int) { _ = bar.Set(done) }
	}

	ctx, stop := signalContext()
	defer stop()

	result, err := simulator.Run(ctx, cfg)
	if err != nil {
		return err
	}
	simulator.PrintSummary(os.Stdout, result)
	if c.Output != "" {
		if err := fileutil.WriteJSON(c.Output, result); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Results written to %s\n", c.Output)
	}
	return nil
}
