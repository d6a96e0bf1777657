package server

import (
	"fmt"
	"net/http"
	"time"

	gmux "github.com/gorilla/mux"

	"github.com/lox/holdem-engine/internal/game"
	"github.com/lox/holdem-engine/internal/table"
)

// ActionRequest is a human player's action. Amount is the street total for
// bets and raises.
type ActionRequest struct {
	PlayerID string `json:"player_id"`
	Action   string `json:"action"`
	Amount   int    `json:"amount,omitempty"`
}

// GameSummary is one entry of the game list
type GameSummary struct {
	GameID     string     `json:"game_id"`
	Phase      game.Phase `json:"phase"`
	NumPlayers int        `json:"num_players"`
	Pot        int        `json:"pot"`
	HandNumber int        `json:"hand_number"`
	CreatedAt  time.Time  `json:"created_at"`
}

func (s *Server) getHealth(w http.ResponseWriter, _ *http.Request) {
	names := make([]string, 0)
	for _, info := range s.strategies() {
		names = append(names, info.Name)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":       "healthy",
		"games":        s.games.Len(),
		"available_ai": names,
	})
}

func (s *Server) getStrategies(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"strategies": s.strategies()})
}

func (s *Server) getGames(w http.ResponseWriter, _ *http.Request) {
	games := make([]GameSummary, 0)
	for _, t := range s.games.List() {
		state := t.Snapshot("")
		games = append(games, GameSummary{
			GameID:     state.GameID,
			Phase:      state.Phase,
			NumPlayers: len(state.Players),
			Pot:        state.Pot,
			HandNumber: state.HandNumber,
			CreatedAt:  t.Created().UTC(),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"games": games})
}

func (s *Server) postGames(w http.ResponseWriter, r *http.Request) {
	var req CreateGameRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	t, err := s.createTable(req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.games.Add(t); err != nil {
		s.writeError(w, err)
		return
	}

	s.logger.Info("game created",
		"game_id", t.ID(),
		"humans", len(req.PlayerNames),
		"agents", req.AIPlayers)
	writeJSON(w, http.StatusCreated, t.Snapshot(viewer(r)))
}

func (s *Server) getGame(w http.ResponseWriter, r *http.Request) {
	t, ok := s.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, t.Snapshot(viewer(r)))
}

func (s *Server) deleteGame(w http.ResponseWriter, r *http.Request) {
	if err := s.games.Delete(gmux.Vars(r)["id"]); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// postStart deals a new hand. With autoplay on and a human in the hand the
// agents act until the human is to act.
func (s *Server) postStart(w http.ResponseWriter, r *http.Request) {
	t, ok := s.lookup(w, r)
	if !ok {
		return
	}
	if _, err := t.Start(); err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.autoplay(r, t); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t.Snapshot(viewer(r)))
}

func (s *Server) postAction(w http.ResponseWriter, r *http.Request) {
	t, ok := s.lookup(w, r)
	if !ok {
		return
	}

	var req ActionRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	action, err := game.ParseAction(req.Action)
	if err != nil {
		s.writeError(w, err)
		return
	}

	if _, err := t.Act(req.PlayerID, action, req.Amount); err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.autoplay(r, t); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t.Snapshot(req.PlayerID))
}

// postAdvance makes a single agent decision
func (s *Server) postAdvance(w http.ResponseWriter, r *http.Request) {
	t, ok := s.lookup(w, r)
	if !ok {
		return
	}

	_, advanced, err := t.Advance(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	if !advanced {
		s.writeError(w, fmt.Errorf("%w: no agent is to act", game.ErrPrecondition))
		return
	}
	writeJSON(w, http.StatusOK, t.Snapshot(viewer(r)))
}

func (s *Server) autoplay(r *http.Request, t *table.Table) error {
	if !s.cfg.AutoplayEnabled() || !t.HumanToAct() {
		return nil
	}
	_, steps, err := t.RunBots(r.Context())
	s.logger.Debug("agents acted", "game_id", t.ID(), "steps", steps)
	return err
}

func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (*table.Table, bool) {
	t, err := s.games.Get(gmux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, err)
		return nil, false
	}
	return t, true
}

// viewer is the player whose hole cards a response may show
func viewer(r *http.Request) string {
	return r.URL.Query().Get("player")
}
