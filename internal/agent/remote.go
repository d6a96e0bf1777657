package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/holdem-engine/internal/game"
)

// DefaultRemoteTimeout bounds a remote decision when none is configured
const DefaultRemoteTimeout = 5 * time.Second

// DecisionRequest is the body posted to a remote decision service
type DecisionRequest struct {
	GameID       string        `json:"game_id"`
	PlayerID     string        `json:"player_id"`
	State        game.State    `json:"state"`
	ValidActions []game.Action `json:"valid_actions"`
	ToCall       int           `json:"to_call"`
	MinRaiseTo   int           `json:"min_raise_to"`
	Instructions string        `json:"instructions,omitempty"`
}

// Remote asks an HTTP service for each decision. The service receives a
// DecisionRequest and answers with a game.Decision as JSON. The state it sees
// hides the other players' hole cards.
type Remote struct {
	url          string
	instructions string
	client       *http.Client
	timeout      time.Duration
	clock        quartz.Clock
	logger       *log.Logger
}

// RemoteOption configures a Remote agent
type RemoteOption func(*Remote)

// WithHTTPClient sets the client used for requests
func WithHTTPClient(c *http.Client) RemoteOption {
	return func(r *Remote) { r.client = c }
}

// WithTimeout bounds each decision request
func WithTimeout(d time.Duration) RemoteOption {
	return func(r *Remote) { r.timeout = d }
}

// WithClock sets the clock used to time decisions
func WithClock(c quartz.Clock) RemoteOption {
	return func(r *Remote) { r.clock = c }
}

// WithInstructions passes free-form strategy instructions to the service
func WithInstructions(s string) RemoteOption {
	return func(r *Remote) { r.instructions = s }
}

func NewRemote(url string, logger *log.Logger, opts ...RemoteOption) *Remote {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	r := &Remote{
		url:     url,
		client:  http.DefaultClient,
		timeout: DefaultRemoteTimeout,
		clock:   quartz.NewReal(),
		logger:  logger.WithPrefix("remote"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Remote) Name() string { return "remote" }

func (r *Remote) Decide(ctx context.Context, state game.State, playerID string, valid []game.Action) (game.Decision, error) {
	seat := state.Seat(playerID)
	if seat < 0 {
		return game.Decision{}, fmt.Errorf("player %q not at table", playerID)
	}

	body, err := json.Marshal(DecisionRequest{
		GameID:       state.GameID,
		PlayerID:     playerID,
		State:        state.VisibleTo(playerID),
		ValidActions: valid,
		ToCall:       state.ToCall(seat),
		MinRaiseTo:   state.MinRaiseTo(),
		Instructions: r.instructions,
	})
	if err != nil {
		return game.Decision{}, fmt.Errorf("encoding decision request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewReader(body))
	if err != nil {
		return game.Decision{}, fmt.Errorf("building decision request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := r.clock.Now()
	resp, err := r.client.Do(req)
	if err != nil {
		return game.Decision{}, fmt.Errorf("requesting decision: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return game.Decision{}, fmt.Errorf("decision service returned %s: %s", resp.Status, bytes.TrimSpace(msg))
	}

	var decision game.Decision
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<16)).Decode(&decision); err != nil {
		return game.Decision{}, fmt.Errorf("decoding decision: %w", err)
	}

	r.logger.Debug("remote decision",
		"player", playerID,
		"decision", decision,
		"latency", r.clock.Since(start))

	if !has(valid, decision.Action) {
		r.logger.Warn("remote chose an unavailable action", "player", playerID, "action", decision.Action, "valid", valid)
		return Fallback(valid, fmt.Sprintf("remote chose unavailable %s", decision.Action)), nil
	}
	return decision, nil
}
