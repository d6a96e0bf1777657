package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"

	"github.com/lox/holdem-engine/internal/game"
	"github.com/lox/holdem-engine/internal/registry"
	"github.com/lox/holdem-engine/internal/table"
)

// errBadRequest marks request bodies the server cannot act on
var errBadRequest = errors.New("bad request")

const maxBodyBytes = 1 << 16

type errorResponse struct {
	Message    string `json:"message"`
	StatusCode int    `json:"statusCode"`
}

func decodeRequest(w http.ResponseWriter, r *http.Request, payload any) bool {
	if r.ContentLength == 0 {
		return true
	}
	if ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type")); ct != "application/json" {
		writeJSONError(w, http.StatusUnsupportedMediaType, nil)
		return false
	}

	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(payload); err != nil {
		writeJSONError(w, http.StatusBadRequest, fmt.Errorf("%w: %v", errBadRequest, err))
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(body)
}

func writeJSONError(w http.ResponseWriter, statusCode int, err error) {
	msg := http.StatusText(statusCode)
	if statusCode < 500 && err != nil {
		msg = err.Error()
	}
	writeJSON(w, statusCode, errorResponse{Message: msg, StatusCode: statusCode})
}

// writeError maps domain errors onto HTTP status codes
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= 500 {
		s.logger.Error("request failed", "status", status, "error", err)
	}
	writeJSONError(w, status, err)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, registry.ErrNotFound), errors.Is(err, table.ErrUnknownPlayer):
		return http.StatusNotFound
	case errors.Is(err, game.ErrPrecondition), errors.Is(err, registry.ErrExists):
		return http.StatusConflict
	case errors.Is(err, game.ErrIllegalAction), errors.Is(err, game.ErrConfiguration), errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, registry.ErrFull):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
