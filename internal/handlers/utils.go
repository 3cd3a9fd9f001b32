package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/arcana-gg/arcana/internal/game"
)

// decodeJSONBody decodes the request body into v.
func decodeJSONBody(r *http.Request, v interface{}) error {
	return json.NewDecoder(r.Body).Decode(v)
}

// writeJSON marshals v to the response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeGameError maps the game error taxonomy onto HTTP status codes and
// returns the message as a structured body. Unknown errors are 500s.
func writeGameError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, game.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, game.ErrNotYourTurn):
		status = http.StatusConflict
	case errors.Is(err, game.ErrInvalidSelection):
		status = http.StatusBadRequest
	case errors.Is(err, game.ErrState):
		status = http.StatusConflict
	case errors.Is(err, game.ErrInsufficientGold):
		status = http.StatusPaymentRequired
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
