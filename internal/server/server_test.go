package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/holdem-engine/internal/agent"
	"github.com/lox/holdem-engine/internal/config"
	"github.com/lox/holdem-engine/internal/game"
	"github.com/lox/holdem-engine/internal/registry"
	"github.com/lox/holdem-engine/internal/table"
)

func newTestServer(t *testing.T, cfg *config.Config) *httptest.Server {
	t.Helper()
	if cfg == nil {
		cfg = config.Default()
	}
	require.NoError(t, cfg.Validate())
	s := New(cfg,
		WithSeed(7),
		WithClock(quartz.NewMock(t)),
		WithLogger(log.New(io.Discard)),
		WithAccessLog(true))
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return ts
}

// call sends body as JSON (unless it is nil) and decodes the response into out
func call(t *testing.T, ts *httptest.Server, method, path string, body, out any) int {
	t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, ts.URL+path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil && resp.StatusCode < 300 {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func createGame(t *testing.T, ts *httptest.Server, req CreateGameRequest) game.State {
	t.Helper()
	var state game.State
	require.Equal(t, http.StatusCreated, call(t, ts, http.MethodPost, "/api/games", req, &state))
	return state
}

func TestHealthAndStrategies(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.Bots = []config.BotConfig{{Name: "oracle", Strategy: config.RemoteStrategy, URL: "http://127.0.0.1:1", Timeout: "1s"}}
	ts := newTestServer(t, cfg)

	var health struct {
		Status      string   `json:"status"`
		Games       int      `json:"games"`
		AvailableAI []string `json:"available_ai"`
	}
	require.Equal(t, http.StatusOK, call(t, ts, http.MethodGet, "/health", nil, &health))
	assert.Equal(t, "healthy", health.Status)
	assert.Equal(t, append(agent.Names(), "oracle"), health.AvailableAI)

	var body struct {
		Strategies []StrategyInfo `json:"strategies"`
	}
	require.Equal(t, http.StatusOK, call(t, ts, http.MethodGet, "/api/strategies", nil, &body))
	require.Len(t, body.Strategies, len(agent.Names())+1)
	oracle := body.Strategies[len(body.Strategies)-1]
	assert.True(t, oracle.Remote)
	assert.Contains(t, oracle.Description, "http://127.0.0.1:1")
}

func TestCreateGame(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t, nil)
	state := createGame(t, ts, CreateGameRequest{
		PlayerNames: []string{"Ada"},
		AIPlayers:   []string{"calling_station", "aggressive"},
		AINames:     []string{"Station"},
		BigBlind:    20,
	})

	assert.NotEmpty(t, state.GameID)
	assert.Equal(t, game.Waiting, state.Phase)
	assert.Equal(t, 5, state.SmallBlind)
	assert.Equal(t, 20, state.BigBlind)

	var ids, names []string
	for _, p := range state.Players {
		ids = append(ids, p.ID)
		names = append(names, p.Name)
		assert.Equal(t, 1000, p.Stack)
	}
	assert.Equal(t, []string{"player_1", "ai_calling_station_1", "ai_aggressive_2"}, ids)
	assert.Equal(t, []string{"Ada", "Station", "AI-aggressive"}, names)

	var list struct {
		Games []GameSummary `json:"games"`
	}
	require.Equal(t, http.StatusOK, call(t, ts, http.MethodGet, "/api/games", nil, &list))
	require.Len(t, list.Games, 1)
	assert.Equal(t, state.GameID, list.Games[0].GameID)
	assert.Equal(t, 3, list.Games[0].NumPlayers)
}

func TestCreateGameRejectsBadRequests(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t, nil)
	tests := []struct {
		name string
		req  any
		want int
	}{
		{"too few players", CreateGameRequest{PlayerNames: []string{"solo"}}, http.StatusBadRequest},
		{"too many players", CreateGameRequest{AIPlayers: strings.Split("random,random,random,random,random,random,random,random,random,random", ",")}, http.StatusBadRequest},
		{"unknown strategy", CreateGameRequest{PlayerNames: []string{"a"}, AIPlayers: []string{"shark"}}, http.StatusBadRequest},
		{"bad blinds", CreateGameRequest{PlayerNames: []string{"a", "b"}, SmallBlind: 10, BigBlind: 5}, http.StatusBadRequest},
		{"unknown field", map[string]any{"players": 3}, http.StatusBadRequest},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, call(t, ts, http.MethodPost, "/api/games", tc.req, nil))
		})
	}

	req, err := http.NewRequest(http.MethodPost, ts.URL+"/api/games", strings.NewReader("player_names=a"))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnsupportedMediaType, resp.StatusCode)
}

func TestPlayHandAgainstAgents(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t, nil)
	created := createGame(t, ts, CreateGameRequest{
		PlayerNames: []string{"Ada"},
		AIPlayers:   []string{"calling_station", "calling_station"},
	})
	base := "/api/games/" + created.GameID

	// The first button is the human's seat: they open preflop and close
	// every later street behind the agents
	var state game.State
	require.Equal(t, http.StatusOK, call(t, ts, http.MethodPost, base+"/start?player=player_1", nil, &state))
	assert.Equal(t, game.PreFlop, state.Phase)
	assert.Equal(t, 0, state.CurrentPlayer)
	assert.Len(t, state.Players[0].Cards, 2)
	assert.Empty(t, state.Players[1].Cards)
	assert.Empty(t, state.Players[2].Cards)
	assert.Empty(t, state.CurrentHandLog)

	assert.Equal(t, http.StatusConflict, call(t, ts, http.MethodPost, base+"/start", nil, nil), "hand in progress")

	errorCases := []struct {
		name string
		req  ActionRequest
		want int
	}{
		{"unknown player", ActionRequest{PlayerID: "player_9", Action: "call"}, http.StatusNotFound},
		{"agent seat", ActionRequest{PlayerID: "ai_calling_station_2", Action: "call"}, http.StatusConflict},
		{"unknown action", ActionRequest{PlayerID: "player_1", Action: "limp"}, http.StatusBadRequest},
		{"illegal check", ActionRequest{PlayerID: "player_1", Action: "check"}, http.StatusBadRequest},
		{"undersized raise", ActionRequest{PlayerID: "player_1", Action: "raise", Amount: 15}, http.StatusBadRequest},
	}
	for _, tc := range errorCases {
		assert.Equal(t, tc.want, call(t, ts, http.MethodPost, base+"/action", tc.req, nil), tc.name)
	}

	// The blinds call and check, then both agents check the flop
	require.Equal(t, http.StatusOK, call(t, ts, http.MethodPost, base+"/action",
		ActionRequest{PlayerID: "player_1", Action: "call"}, &state))
	assert.Equal(t, game.Flop, state.Phase)
	assert.Len(t, state.CommunityCards, 3)
	assert.Equal(t, 0, state.CurrentPlayer)
	assert.Equal(t, 30, state.Pot)

	for _, phase := range []game.Phase{game.Turn, game.River} {
		require.Equal(t, http.StatusOK, call(t, ts, http.MethodPost, base+"/action",
			ActionRequest{PlayerID: "player_1", Action: "check"}, &state))
		assert.Equal(t, phase, state.Phase)
	}
	require.Equal(t, http.StatusOK, call(t, ts, http.MethodPost, base+"/action",
		ActionRequest{PlayerID: "player_1", Action: "check"}, &state))
	assert.Equal(t, game.Showdown, state.Phase)
	assert.Equal(t, -1, state.CurrentPlayer)
	require.Len(t, state.HandHistory, 1)
	assert.True(t, state.HandHistory[0].Showdown)

	total := 0
	for _, p := range state.Players {
		total += p.Stack
		assert.Len(t, p.Cards, 2, "every hand is shown at showdown")
	}
	assert.Equal(t, 3000, total)

	var summary game.HandSummary
	require.Equal(t, http.StatusOK, call(t, ts, http.MethodGet, base+"/hands/1", nil, &summary))
	assert.Equal(t, 1, summary.HandNumber)
	assert.Equal(t, 30, summary.Pot)
	assert.Equal(t, http.StatusNotFound, call(t, ts, http.MethodGet, base+"/hands/2", nil, nil))
	assert.Equal(t, http.StatusBadRequest, call(t, ts, http.MethodGet, base+"/hands/1?format=xml", nil, nil))

	resp, err := http.Get(ts.URL + base + "/hands/1?format=phh")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/toml", resp.Header.Get("Content-Type"))
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `variant = "NT"`)
	assert.Contains(t, string(body), `players = ["AI-calling_station", "AI-calling_station", "Ada"]`)
}

func TestAdvanceDrivesAgentOnlyGame(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t, nil)
	created := createGame(t, ts, CreateGameRequest{AIPlayers: []string{"random", "aggressive", "conservative"}})
	base := "/api/games/" + created.GameID

	var state game.State
	require.Equal(t, http.StatusOK, call(t, ts, http.MethodPost, base+"/start", nil, &state))
	assert.Equal(t, game.PreFlop, state.Phase, "agents wait for advance without a human")
	assert.Equal(t, 0, state.CurrentPlayer)

	steps := 0
	for call(t, ts, http.MethodPost, base+"/advance", nil, &state) == http.StatusOK {
		steps++
		require.Less(t, steps, 200)
	}
	assert.Positive(t, steps)
	assert.True(t, state.Phase.IsHandOver())
	assert.Equal(t, 3000, state.Players[0].Stack+state.Players[1].Stack+state.Players[2].Stack)
}

func TestRemoteBotGame(t *testing.T) {
	t.Parallel()

	var (
		mu       sync.Mutex
		requests []agent.DecisionRequest
	)
	oracle := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req agent.DecisionRequest
		if !assert.NoError(t, json.NewDecoder(r.Body).Decode(&req)) {
			return
		}
		mu.Lock()
		requests = append(requests, req)
		mu.Unlock()

		action := game.Check
		if req.ToCall > 0 {
			action = game.Call
		}
		_ = json.NewEncoder(w).Encode(game.Decision{Action: action, Reason: "oracle"})
	}))
	defer oracle.Close()

	cfg := config.Default()
	cfg.Bots = []config.BotConfig{{Name: "oracle", Strategy: config.RemoteStrategy, URL: oracle.URL, Timeout: "2s", Instructions: "default"}}
	ts := newTestServer(t, cfg)

	created := createGame(t, ts, CreateGameRequest{
		PlayerNames: []string{"Ada"},
		AIPlayers:   []string{"oracle"},
		AIPrompts:   []string{"bluff more"},
	})
	base := "/api/games/" + created.GameID

	// Heads-up the button posts the big blind, so the agent completes the
	// small blind first and then opens the flop
	var state game.State
	require.Equal(t, http.StatusOK, call(t, ts, http.MethodPost, base+"/start", nil, &state))
	assert.Equal(t, 0, state.CurrentPlayer)
	assert.Equal(t, 10, state.Players[1].CurrentBet)

	require.Equal(t, http.StatusOK, call(t, ts, http.MethodPost, base+"/action",
		ActionRequest{PlayerID: "player_1", Action: "check"}, &state))
	assert.Equal(t, game.Flop, state.Phase)
	assert.Equal(t, 0, state.CurrentPlayer)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, requests, 2)
	first := requests[0]
	assert.Equal(t, "ai_oracle_1", first.PlayerID)
	assert.Equal(t, "bluff more", first.Instructions)
	assert.Equal(t, created.GameID, first.GameID)
	assert.Equal(t, 5, first.ToCall)
	assert.Contains(t, first.ValidActions, game.Call)
	assert.Empty(t, first.State.Players[0].Cards, "the service never sees the human's cards")
	assert.Len(t, first.State.Players[1].Cards, 2)
	assert.Contains(t, requests[1].ValidActions, game.Check)
	assert.Equal(t, game.Flop, requests[1].State.Phase)
}

func TestGetAndDeleteGame(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t, nil)
	created := createGame(t, ts, CreateGameRequest{PlayerNames: []string{"a", "b"}})
	base := "/api/games/" + created.GameID

	var state game.State
	require.Equal(t, http.StatusOK, call(t, ts, http.MethodGet, base, nil, &state))
	assert.Equal(t, created.GameID, state.GameID)

	assert.Equal(t, http.StatusConflict, call(t, ts, http.MethodPost, base+"/advance", nil, nil), "no agents")
	assert.Equal(t, http.StatusNoContent, call(t, ts, http.MethodDelete, base, nil, nil))
	assert.Equal(t, http.StatusNotFound, call(t, ts, http.MethodGet, base, nil, nil))
	assert.Equal(t, http.StatusNotFound, call(t, ts, http.MethodDelete, base, nil, nil))
	assert.Equal(t, http.StatusNotFound, call(t, ts, http.MethodGet, "/nowhere", nil, nil))
}

func TestGameLimit(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.Server.MaxGames = 1
	ts := newTestServer(t, cfg)

	createGame(t, ts, CreateGameRequest{PlayerNames: []string{"a", "b"}})
	assert.Equal(t, http.StatusServiceUnavailable,
		call(t, ts, http.MethodPost, "/api/games", CreateGameRequest{PlayerNames: []string{"a", "b"}}, nil))
}

func TestCORSPreflight(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t, nil)
	req, err := http.NewRequest(http.MethodOptions, ts.URL+"/api/games", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestWebSocketStreamsSnapshots(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t, nil)
	created := createGame(t, ts, CreateGameRequest{PlayerNames: []string{"Ada"}, AIPlayers: []string{"calling_station"}})
	base := "/api/games/" + created.GameID

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + base + "/ws?player=player_1"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	var state game.State
	require.NoError(t, conn.ReadJSON(&state))
	assert.Equal(t, game.Waiting, state.Phase)

	require.Equal(t, http.StatusOK, call(t, ts, http.MethodPost, base+"/start", nil, nil))
	require.NoError(t, conn.ReadJSON(&state))
	assert.Equal(t, game.PreFlop, state.Phase)
	assert.Len(t, state.Players[0].Cards, 2)
	assert.Empty(t, state.Players[1].Cards)

	require.Equal(t, http.StatusNoContent, call(t, ts, http.MethodDelete, base, nil, nil))
	for {
		if _, _, err = conn.ReadMessage(); err != nil {
			break
		}
	}
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "got %v", err)
}

func TestStatusFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("%w: x", registry.ErrNotFound), http.StatusNotFound},
		{fmt.Errorf("%w: x", table.ErrUnknownPlayer), http.StatusNotFound},
		{fmt.Errorf("%w: x", game.ErrPrecondition), http.StatusConflict},
		{fmt.Errorf("%w: x", game.ErrIllegalAction), http.StatusBadRequest},
		{fmt.Errorf("%w: x", game.ErrConfiguration), http.StatusBadRequest},
		{fmt.Errorf("%w: x", registry.ErrFull), http.StatusServiceUnavailable},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, statusFor(tc.err), tc.err.Error())
	}
}
