// internal/handlers/game_ws.go
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/coder/websocket"
	"github.com/sirupsen/logrus"

	"github.com/arcana-gg/arcana/internal/middleware"
)

// GameWSHandler upgrades the HTTP connection to a WebSocket for one
// participant of one session. It verifies the player has joined, registers
// the connection with the session's broadcaster, deals the initial hand if
// needed (which sends the unicast new_hand event), and then runs the read
// loop until the peer goes away.
//
// GET /game/{game_id}/ws/{player_id}
func GameWSHandler(logger *logrus.Logger, gs *GameServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		gameID := r.PathValue("game_id")
		playerID := r.PathValue("player_id")
		if gameID == "" || playerID == "" {
			http.Error(w, "missing game_id or player_id in path", http.StatusBadRequest)
			return
		}

		g, ok := gs.Sessions.Get(gameID)
		if !ok {
			http.Error(w, "game not found", http.StatusNotFound)
			return
		}
		joined := false
		for _, name := range g.PlayerNames() {
			if name == playerID {
				joined = true
				break
			}
		}
		if !joined {
			http.Error(w, "player has not joined this game", http.StatusForbidden)
			return
		}

		b, ok := gs.Broadcaster(gameID)
		if !ok {
			http.Error(w, "game not found", http.StatusNotFound)
			return
		}

		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			OriginPatterns: []string{"*"}, // Adjust for production security.
		})
		if err != nil {
			logger.Warnf("WebSocket accept error for game %s: %v", gameID, err)
			return
		}
		defer c.Close(websocket.StatusInternalError, "internal server error during handler exit")
		middleware.LogWebSocketConnect(logger, r.RemoteAddr, r.URL.Path)

		b.Register(playerID, c)
		if err := g.HandleConnect(playerID); err != nil {
			b.Unregister(playerID, c)
			c.Close(websocket.StatusPolicyViolation, "unknown player")
			return
		}

		// Deal only fills an empty hand; a reconnect mid-round just gets the
		// current hand re-sent.
		if _, err := g.DealInitialHand(playerID); err != nil {
			logger.Warnf("Failed to deal initial hand to %s in game %s: %v", playerID, gameID, err)
		}

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()
		readErr := readGameMessages(ctx, c, b, playerID, logger)

		b.Unregister(playerID, c)
		g.HandleDisconnect(playerID)
		middleware.LogWebSocketDisconnect(logger, r.RemoteAddr, r.URL.Path, readErr)
	}
}

// readGameMessages relays client frames to the rest of the session. Game
// actions arrive over HTTP; the socket's inbound direction only carries
// lightweight client-to-client traffic (emotes, cursor state) plus pings.
func readGameMessages(ctx context.Context, c *websocket.Conn, b *Broadcaster, playerID string, logger *logrus.Logger) error {
	for {
		msgType, data, err := c.Read(ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway ||
				strings.Contains(err.Error(), "context canceled") {
				return nil
			}
			return err
		}
		if msgType != websocket.MessageText {
			logger.Warnf("Received non-text message type %d from %s. Ignoring.", msgType, playerID)
			continue
		}

		var head struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(data, &head); err != nil {
			logger.Warnf("Invalid JSON from %s: %v", playerID, err)
			continue
		}
		if head.Type == "ping" {
			pong, _ := json.Marshal(map[string]string{"type": "pong"})
			if err := writeFrame(c, pong); err != nil {
				return err
			}
			continue
		}

		logger.Debugf("Relaying %q message from %s", head.Type, playerID)
		b.BroadcastRaw(data)
	}
}
