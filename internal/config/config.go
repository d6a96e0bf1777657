// Package config loads the HCL configuration shared by the server and the
// command line tools.
package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"time"

	"github.com/charmbracelet/log"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/lox/holdem-engine/internal/agent"
)

// RemoteStrategy is the bot strategy backed by an HTTP decision service
const RemoteStrategy = "remote"

// Config is the complete configuration
type Config struct {
	Server   ServerConfig
	Game     GameConfig
	Autoplay AutoplayConfig
	Bots     []BotConfig
}

// ServerConfig contains listener and logging settings
type ServerConfig struct {
	Address     string   `hcl:"address,optional"`
	Port        int      `hcl:"port,optional"`
	LogLevel    string   `hcl:"log_level,optional"`
	CORSOrigins []string `hcl:"cors_origins,optional"`
	MaxGames    int      `hcl:"max_games,optional"`
}

// GameConfig holds the defaults for newly created games
type GameConfig struct {
	SmallBlind    int `hcl:"small_blind,optional"`
	BigBlind      int `hcl:"big_blind,optional"`
	StartingStack int `hcl:"starting_stack,optional"`
	HistoryLimit  int `hcl:"history_limit,optional"`
}

// AutoplayConfig controls how agent seats are driven
type AutoplayConfig struct {
	// Enabled runs agent seats after every start or human action while a
	// human is still in the hand
	Enabled         *bool  `hcl:"enabled,optional"`
	MaxSteps        int    `hcl:"max_steps,optional"`
	DecisionTimeout string `hcl:"decision_timeout,optional"`
}

// BotConfig defines a named agent usable as a strategy when creating games.
// Remote bots ask an HTTP decision service; any other strategy names a
// built-in agent.
type BotConfig struct {
	Name         string `hcl:"name,label"`
	Strategy     string `hcl:"strategy"`
	URL          string `hcl:"url,optional"`
	Instructions string `hcl:"instructions,optional"`
	Timeout      string `hcl:"timeout,optional"`
}

// file mirrors the HCL layout; every block is optional
type file struct {
	Server   *ServerConfig   `hcl:"server,block"`
	Game     *GameConfig     `hcl:"game,block"`
	Autoplay *AutoplayConfig `hcl:"autoplay,block"`
	Bots     []BotConfig     `hcl:"bot,block"`
}

// Default returns the configuration used when no file is present
func Default() *Config {
	enabled := true
	return &Config{
		Server: ServerConfig{
			Address:     "localhost",
			Port:        8080,
			LogLevel:    "info",
			CORSOrigins: []string{"*"},
			MaxGames:    100,
		},
		Game: GameConfig{
			SmallBlind:    5,
			BigBlind:      10,
			StartingStack: 1000,
			HistoryLimit:  20,
		},
		Autoplay: AutoplayConfig{
			Enabled:         &enabled,
			MaxSteps:        500,
			DecisionTimeout: "10s",
		},
	}
}

// Load reads an HCL file. A missing file yields the defaults.
func Load(filename string) (*Config, error) {
	src, err := os.ReadFile(filename)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return Parse(src, filename)
}

// Parse decodes HCL source, filling unset values with defaults
func Parse(src []byte, filename string) (*Config, error) {
	parser := hclparse.NewParser()
	f, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var raw file
	if diags := gohcl.DecodeBody(f.Body, nil, &raw); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	cfg := Default()
	if raw.Server != nil {
		cfg.Server = *raw.Server
	}
	if raw.Game != nil {
		cfg.Game = *raw.Game
	}
	if raw.Autoplay != nil {
		cfg.Autoplay = *raw.Autoplay
	}
	cfg.Bots = raw.Bots
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	def := Default()

	if c.Server.Address == "" {
		c.Server.Address = def.Server.Address
	}
	if c.Server.Port == 0 {
		c.Server.Port = def.Server.Port
	}
	if c.Server.LogLevel == "" {
		c.Server.LogLevel = def.Server.LogLevel
	}
	if c.Server.CORSOrigins == nil {
		c.Server.CORSOrigins = def.Server.CORSOrigins
	}
	if c.Server.MaxGames == 0 {
		c.Server.MaxGames = def.Server.MaxGames
	}

	if c.Game.SmallBlind == 0 {
		c.Game.SmallBlind = def.Game.SmallBlind
	}
	if c.Game.BigBlind == 0 {
		c.Game.BigBlind = c.Game.SmallBlind * 2
	}
	if c.Game.StartingStack == 0 {
		c.Game.StartingStack = c.Game.BigBlind * 100
	}
	if c.Game.HistoryLimit == 0 {
		c.Game.HistoryLimit = def.Game.HistoryLimit
	}

	if c.Autoplay.Enabled == nil {
		c.Autoplay.Enabled = def.Autoplay.Enabled
	}
	if c.Autoplay.MaxSteps == 0 {
		c.Autoplay.MaxSteps = def.Autoplay.MaxSteps
	}
	if c.Autoplay.DecisionTimeout == "" {
		c.Autoplay.DecisionTimeout = def.Autoplay.DecisionTimeout
	}

	for i := range c.Bots {
		if c.Bots[i].Strategy == RemoteStrategy && c.Bots[i].Timeout == "" {
			c.Bots[i].Timeout = agent.DefaultRemoteTimeout.String()
		}
	}
}

// Validate checks the configuration for values the server cannot run with
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}
	if _, err := log.ParseLevel(c.Server.LogLevel); err != nil {
		return fmt.Errorf("invalid log level %q", c.Server.LogLevel)
	}
	if c.Server.MaxGames < 0 {
		return fmt.Errorf("max games must not be negative")
	}

	if c.Game.SmallBlind <= 0 {
		return fmt.Errorf("game: small blind must be positive")
	}
	if c.Game.BigBlind < c.Game.SmallBlind {
		return fmt.Errorf("game: big blind must be at least the small blind")
	}
	if c.Game.StartingStack <= 0 {
		return fmt.Errorf("game: starting stack must be positive")
	}
	if c.Game.HistoryLimit <= 0 {
		return fmt.Errorf("game: history limit must be positive")
	}

	if c.Autoplay.MaxSteps <= 0 {
		return fmt.Errorf("autoplay: max steps must be positive")
	}
	if d, err := time.ParseDuration(c.Autoplay.DecisionTimeout); err != nil || d <= 0 {
		return fmt.Errorf("autoplay: invalid decision timeout %q", c.Autoplay.DecisionTimeout)
	}

	builtin := agent.Names()
	seen := make(map[string]bool, len(c.Bots))
	for _, bot := range c.Bots {
		if seen[bot.Name] || slices.Contains(builtin, bot.Name) {
			return fmt.Errorf("bot %s: name already in use", bot.Name)
		}
		seen[bot.Name] = true

		switch {
		case bot.Strategy == RemoteStrategy:
			if bot.URL == "" {
				return fmt.Errorf("bot %s: remote bots need a url", bot.Name)
			}
			if d, err := time.ParseDuration(bot.Timeout); err != nil || d <= 0 {
				return fmt.Errorf("bot %s: invalid timeout %q", bot.Name, bot.Timeout)
			}
		case slices.Contains(builtin, bot.Strategy):
		default:
			return fmt.Errorf("bot %s: invalid strategy %s", bot.Name, bot.Strategy)
		}
	}
	return nil
}

// Addr returns the listen address
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Address, c.Server.Port)
}

// Level returns the configured log level, info if it does not parse
func (c *Config) Level() log.Level {
	level, err := log.ParseLevel(c.Server.LogLevel)
	if err != nil {
		return log.InfoLevel
	}
	return level
}

// AutoplayEnabled reports whether agent seats are driven automatically
func (c *Config) AutoplayEnabled() bool {
	return c.Autoplay.Enabled == nil || *c.Autoplay.Enabled
}

// DecisionTimeout returns the per-decision agent timeout
func (c *Config) DecisionTimeout() time.Duration {
	d, err := time.ParseDuration(c.Autoplay.DecisionTimeout)
	if err != nil {
		return 0
	}
	return d
}

// Bot returns the bot named name
func (c *Config) Bot(name string) (BotConfig, bool) {
	for _, b := range c.Bots {
		if b.Name == name {
			return b, true
		}
	}
	return BotConfig{}, false
}

// TimeoutDuration returns the remote timeout of a bot
func (b BotConfig) TimeoutDuration() time.Duration {
	d, err := time.ParseDuration(b.Timeout)
	if err != nil {
		return agent.DefaultRemoteTimeout
	}
	return d
}
