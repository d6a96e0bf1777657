package server

import (
	"cmp"
	"fmt"
	"math/rand/v2"

	"github.com/lox/holdem-engine/internal/agent"
	"github.com/lox/holdem-engine/internal/config"
	"github.com/lox/holdem-engine/internal/game"
	"github.com/lox/holdem-engine/internal/randutil"
	"github.com/lox/holdem-engine/internal/table"
)

// CreateGameRequest seats humans and agents at a new table. AI seats are
// named by strategy; prompts and names line up with AIPlayers by index.
type CreateGameRequest struct {
	PlayerNames   []string `json:"player_names"`
	AIPlayers     []string `json:"ai_players"`
	AIPrompts     []string `json:"ai_prompts,omitempty"`
	AINames       []string `json:"ai_names,omitempty"`
	SmallBlind    int      `json:"small_blind,omitempty"`
	BigBlind      int      `json:"big_blind,omitempty"`
	StartingStack int      `json:"starting_stack,omitempty"`
}

// StrategyInfo describes an agent a game can seat
type StrategyInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Remote      bool   `json:"remote,omitempty"`
}

// strategies lists the built-in agents followed by the configured bots
func (s *Server) strategies() []StrategyInfo {
	var out []StrategyInfo
	for _, st := range agent.Strategies() {
		out = append(out, StrategyInfo{Name: st.Name, Description: st.Description})
	}
	for _, bot := range s.cfg.Bots {
		info := StrategyInfo{Name: bot.Name, Description: fmt.Sprintf("%s profile", bot.Strategy)}
		if bot.Strategy == config.RemoteStrategy {
			info.Description = "remote decision service at " + bot.URL
			info.Remote = true
		}
		out = append(out, info)
	}
	return out
}

func (s *Server) newAgent(strategy, prompt string, rng *rand.Rand) (agent.Agent, error) {
	bot, ok := s.cfg.Bot(strategy)
	if !ok {
		a, err := agent.New(strategy, rng, s.logger)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", errBadRequest, err)
		}
		return a, nil
	}

	if bot.Strategy != config.RemoteStrategy {
		return agent.New(bot.Strategy, rng, s.logger)
	}
	instructions := bot.Instructions
	if prompt != "" {
		instructions = prompt
	}
	return agent.NewRemote(bot.URL, s.logger,
		agent.WithHTTPClient(s.client),
		agent.WithTimeout(bot.TimeoutDuration()),
		agent.WithClock(s.clock),
		agent.WithInstructions(instructions)), nil
}

// createTable seats humans as player_<n> and agents as ai_<strategy>_<n>,
// humans first
func (s *Server) createTable(req CreateGameRequest) (*table.Table, error) {
	total := len(req.PlayerNames) + len(req.AIPlayers)
	if total < game.MinPlayers || total > game.MaxPlayers {
		return nil, fmt.Errorf("%w: need %d-%d players, got %d", errBadRequest, game.MinPlayers, game.MaxPlayers, total)
	}

	rng := s.rng()
	seats := make([]game.Seat, 0, total)
	agents := make(map[string]agent.Agent, len(req.AIPlayers))

	for i, name := range req.PlayerNames {
		id := fmt.Sprintf("player_%d", i+1)
		if name == "" {
			name = id
		}
		seats = append(seats, game.Seat{ID: id, Name: name})
	}
	for i, strategy := range req.AIPlayers {
		id := fmt.Sprintf("ai_%s_%d", strategy, i+1)
		name := "AI-" + strategy
		if i < len(req.AINames) && req.AINames[i] != "" {
			name = req.AINames[i]
		}
		prompt := ""
		if i < len(req.AIPrompts) {
			prompt = req.AIPrompts[i]
		}

		a, err := s.newAgent(strategy, prompt, randutil.New(rng.Int64()))
		if err != nil {
			return nil, err
		}
		seats = append(seats, game.Seat{ID: id, Name: name})
		agents[id] = a
	}

	cfg := table.Config{
		SmallBlind:      cmp.Or(req.SmallBlind, s.cfg.Game.SmallBlind),
		BigBlind:        cmp.Or(req.BigBlind, s.cfg.Game.BigBlind),
		StartingStack:   cmp.Or(req.StartingStack, s.cfg.Game.StartingStack),
		DecisionTimeout: s.cfg.DecisionTimeout(),
		MaxSteps:        s.cfg.Autoplay.MaxSteps,
	}
	return table.New(seats, agents, cfg,
		table.WithClock(s.clock),
		table.WithLogger(s.logger),
		table.WithEngineOptions(
			game.WithRNG(randutil.New(rng.Int64())),
			game.WithHistoryLimit(s.cfg.Game.HistoryLimit),
		))
}
