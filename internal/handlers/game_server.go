// internal/handlers/game_server.go
package handlers

import (
	"context"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/arcana-gg/arcana/internal/catalog"
	"github.com/arcana-gg/arcana/internal/database"
	"github.com/arcana-gg/arcana/internal/game"
	"github.com/arcana-gg/arcana/internal/models"
)

// GameServer holds the session registry, the shared upgrade catalog, and
// one broadcaster per session. Constructed once in main and passed to
// every handler.
type GameServer struct {
	mu           sync.Mutex
	Sessions     *game.SessionStore
	Catalog      *catalog.Catalog
	Logger       *log.Logger
	broadcasters map[string]*Broadcaster
}

func NewGameServer(logger *log.Logger) *GameServer {
	return &GameServer{
		Sessions:     game.NewSessionStore(),
		Catalog:      catalog.New(),
		Logger:       logger,
		broadcasters: make(map[string]*Broadcaster),
	}
}

// CreateSession builds a new session under the caller-chosen id, wires its
// broadcast callbacks and round-end persistence, and registers it.
// Returns false if the id is already taken.
func (gs *GameServer) CreateSession(ctx context.Context, id string) (*game.GameSession, bool) {
	g := game.NewGameSession(gs.Catalog)

	b := NewBroadcaster(gs.Logger)
	b.OnDrop = g.HandleDisconnect
	g.BroadcastFn = b.Broadcast
	g.BroadcastToPlayerFn = b.Unicast
	g.OnRoundEnd = func(winner string, players []*models.Player) {
		database.RecordRoundResultAsync(g.ID, winner, players)
	}

	if !gs.Sessions.Add(id, g) {
		return nil, false
	}
	gs.mu.Lock()
	gs.broadcasters[id] = b
	gs.mu.Unlock()

	if err := database.UpsertMatch(ctx, g.ID, id); err != nil {
		gs.Logger.Warnf("failed to record match %s: %v", id, err)
	}
	return g, true
}

// Broadcaster returns the broadcaster attached to a session id.
func (gs *GameServer) Broadcaster(id string) (*Broadcaster, bool) {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	b, ok := gs.broadcasters[id]
	return b, ok
}

// DeleteSession removes a session and its broadcaster.
func (gs *GameServer) DeleteSession(id string) {
	gs.Sessions.Delete(id)
	gs.mu.Lock()
	delete(gs.broadcasters, id)
	gs.mu.Unlock()
}
