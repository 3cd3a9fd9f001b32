// internal/handlers/game.go
package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/arcana-gg/arcana/internal/game"
	"github.com/arcana-gg/arcana/internal/models"
)

// actionRequest is the JSON body of card-selection actions.
type actionRequest struct {
	PlayerID string                 `json:"player_id"`
	Cards    []models.CardSelection `json:"cards"`
}

// CreateGameHandler registers a new session under the caller-chosen id.
// POST /game/{game_id}/create
func CreateGameHandler(gs *GameServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		gameID := r.PathValue("game_id")
		if gameID == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing game_id"})
			return
		}
		if _, ok := gs.CreateSession(r.Context(), gameID); !ok {
			writeJSON(w, http.StatusConflict, map[string]string{"error": "game id already exists, choose a different id"})
			return
		}
		gs.Logger.Infof("Created game %s", gameID)
		writeJSON(w, http.StatusOK, map[string]string{"message": fmt.Sprintf("Game %s created successfully", gameID)})
	}
}

// JoinGameHandler adds a player to a session.
// POST /game/{game_id}/join?player_id=...
func JoinGameHandler(gs *GameServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		g, ok := gs.Sessions.Get(r.PathValue("game_id"))
		if !ok {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "game not found"})
			return
		}
		playerID := r.URL.Query().Get("player_id")
		if playerID == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing player_id"})
			return
		}
		if err := g.AddPlayer(playerID); err != nil {
			writeGameError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{
			"message": fmt.Sprintf("%s joined game %s", playerID, r.PathValue("game_id")),
		})
	}
}

// ListPlayersHandler is the read-only participant query.
// GET /game/{game_id}/players
func ListPlayersHandler(gs *GameServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		g, ok := gs.Sessions.Get(r.PathValue("game_id"))
		if !ok {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "game not found"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"players": g.PlayerNames()})
	}
}

// DiscardHandler spends a discard to swap out selected cards.
// POST /game/{game_id}/discard
func DiscardHandler(gs *GameServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		g, req, ok := sessionAndBody(gs, w, r)
		if !ok {
			return
		}
		result, err := g.Discard(req.PlayerID, req.Cards)
		if err != nil {
			writeGameError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"message":            "Cards discarded and new ones drawn",
			"discarded":          result.Discarded,
			"new_hand":           result.NewHand,
			"remaining_discards": result.RemainingDiscards,
		})
	}
}

// PlayHandHandler scores the selection and applies damage to the opponent.
// POST /game/{game_id}/play_hand
func PlayHandHandler(gs *GameServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		g, req, ok := sessionAndBody(gs, w, r)
		if !ok {
			return
		}
		result, err := g.PlayHand(req.PlayerID, req.Cards)
		if err != nil {
			writeGameError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"message":    fmt.Sprintf("%s played a hand", req.PlayerID),
			"damage":     result.Damage,
			"hand_type":  result.HandType,
			"multiplier": result.Multiplier,
			"new_hand":   result.NewHand,
			"winner":     result.Winner,
		})
	}
}

// EndTurnHandler passes the turn.
// POST /game/{game_id}/end_turn?player_id=...
func EndTurnHandler(gs *GameServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		g, ok := gs.Sessions.Get(r.PathValue("game_id"))
		if !ok {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "game not found"})
			return
		}
		next, err := g.EndTurn(r.URL.Query().Get("player_id"))
		if err != nil {
			writeGameError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{
			"message":     "Turn ended",
			"next_player": next,
		})
	}
}

// BuyUpgradeHandler purchases a store upgrade for a player.
// POST /game/{game_id}/{player_id}/buyupgrade/{upgrade_id}
func BuyUpgradeHandler(gs *GameServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		g, ok := gs.Sessions.Get(r.PathValue("game_id"))
		if !ok {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "game not found"})
			return
		}
		playerID := r.PathValue("player_id")
		upgradeID, err := strconv.Atoi(r.PathValue("upgrade_id"))
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid upgrade id"})
			return
		}
		result, err := g.BuyUpgrade(playerID, upgradeID)
		if err != nil {
			writeGameError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"message": fmt.Sprintf("%s bought upgrade %d", playerID, upgradeID),
			"price":   result.Price,
			"upgrade": result.Upgrade,
		})
	}
}

// sessionAndBody resolves the session from the path and decodes the common
// action request body, writing the error response itself on failure.
func sessionAndBody(gs *GameServer, w http.ResponseWriter, r *http.Request) (*game.GameSession, *actionRequest, bool) {
	g, ok := gs.Sessions.Get(r.PathValue("game_id"))
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "game not found"})
		return nil, nil, false
	}
	var req actionRequest
	if err := decodeJSONBody(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return nil, nil, false
	}
	if req.PlayerID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing player_id"})
		return nil, nil, false
	}
	return g, &req, true
}
