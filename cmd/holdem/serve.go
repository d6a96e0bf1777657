package main

import (
	"fmt"
	"os"

	"github.com/lox/holdem-engine/internal/config"
	"github.com/lox/holdem-engine/internal/server"
)

// ServeCmd runs the HTTP server. Flags override the config file.
type ServeCmd struct {
	Config    string `short:"c" help:"HCL config file" default:"holdem.hcl" env:"HOLDEM_CONFIG" type:"path"`
	Address   string `help:"Listen address" env:"HOLDEM_ADDRESS"`
	Port      int    `help:"Listen port" env:"HOLDEM_PORT"`
	LogLevel  string `help:"Log level (debug, info, warn, error)" env:"HOLDEM_LOG_LEVEL"`
	Seed      *int64 `help:"Deterministic RNG seed (optional)" env:"HOLDEM_SEED"`
	AccessLog bool   `help:"Log every HTTP request" env:"HOLDEM_ACCESS_LOG"`
}

func (c *ServeCmd) Run() error {
	cfg, err := config.Load(c.Config)
	if err != nil {
		return err
	}
	if c.Address != "" {
		cfg.Server.Address = c.Address
	}
	if c.Port != 0 {
		cfg.Server.Port = c.Port
	}
	if c.LogLevel != "" {
		cfg.Server.LogLevel = c.LogLevel
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config %s: %w", c.Config, err)
	}

	logger := newLogger(os.Stderr, cfg.Level())
	opts := []server.Option{
		server.WithLogger(logger),
		server.WithAccessLog(c.AccessLog),
	}
	if c.Seed != nil {
		logger.Info("using deterministic seed", "seed", *c.Seed)
		opts = append(opts, server.WithSeed(*c.Seed))
	}

	logger.Info("starting server",
		"address", cfg.Addr(),
		"small_blind", cfg.Game.SmallBlind,
		"big_blind", cfg.Game.BigBlind,
		"starting_stack", cfg.Game.StartingStack,
		"autoplay", cfg.AutoplayEnabled(),
		"bots", len(cfg.Bots))

	ctx, stop := signalContext()
	defer stop()
	if err := server.New(cfg, opts...).Run(ctx); err != nil {
		return err
	}
	logger.Info("server stopped")
	return nil
}
