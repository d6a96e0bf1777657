package server

import (
	"fmt"
	"net/http"
	"strconv"

	gmux "github.com/gorilla/mux"

	"github.com/lox/holdem-engine/internal/phh"
	"github.com/lox/holdem-engine/internal/registry"
)

// getHand returns one finished hand from the game's history, as JSON or, with
// ?format=phh, as a Poker Hand History document
func (s *Server) getHand(w http.ResponseWriter, r *http.Request) {
	t, ok := s.lookup(w, r)
	if !ok {
		return
	}
	number, err := strconv.Atoi(gmux.Vars(r)["hand"])
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, fmt.Errorf("%w: bad hand number", errBadRequest))
		return
	}

	state := t.State()
	for _, summary := range state.HandHistory {
		if summary.HandNumber != number {
			continue
		}
		switch format := r.URL.Query().Get("format"); format {
		case "", "json":
			writeJSON(w, http.StatusOK, summary)
		case "phh":
			body, err := phh.Marshal(phh.FromSummary(t.ID(), state.BigBlind, summary))
			if err != nil {
				s.writeError(w, err)
				return
			}
			w.Header().Set("Content-Type", "application/toml")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write(body)
		default:
			writeJSONError(w, http.StatusBadRequest, fmt.Errorf("%w: unknown format %q", errBadRequest, format))
		}
		return
	}
	s.writeError(w, fmt.Errorf("%w: hand %d is not in the history of game %s", registry.ErrNotFound, number, t.ID()))
}
