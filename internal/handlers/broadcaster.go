package handlers

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/sirupsen/logrus"

	"github.com/arcana-gg/arcana/internal/game"
)

// writeTimeout bounds each outbound frame so a dead peer fails fast
// instead of stalling the sender goroutine.
const writeTimeout = 3 * time.Second

// Broadcaster owns every live connection of one session. The game core
// never sees a connection; it calls the closures this type provides. All
// connection state lives behind the broadcaster's own mutex, separate from
// the session lock.
type Broadcaster struct {
	mu     sync.Mutex
	conns  map[string]*websocket.Conn
	logger *logrus.Logger

	// OnDrop is called (from a send goroutine) for each peer whose write
	// failed and whose connection was removed.
	OnDrop func(player string)
}

func NewBroadcaster(logger *logrus.Logger) *Broadcaster {
	return &Broadcaster{
		conns:  make(map[string]*websocket.Conn),
		logger: logger,
	}
}

// Register attaches a player's connection, replacing any previous one.
func (b *Broadcaster) Register(player string, conn *websocket.Conn) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.conns[player] = conn
}

// Unregister detaches a player's connection if it is still the given one.
// A stale handle from a replaced connection is left alone.
func (b *Broadcaster) Unregister(player string, conn *websocket.Conn) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.conns[player] == conn {
		delete(b.conns, player)
	}
}

// Broadcast fans an event out to every connected peer. Called while the
// session lock is held, so the actual writes happen on a separate
// goroutine; each send is independent and a failure only drops that peer.
func (b *Broadcaster) Broadcast(ev game.Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		b.logger.Errorf("Failed to marshal broadcast event (%s): %v", ev.Type, err)
		return
	}
	b.BroadcastRaw(data)
}

// BroadcastRaw sends pre-marshaled bytes to every connected peer.
func (b *Broadcaster) BroadcastRaw(data []byte) {
	b.mu.Lock()
	peers := make(map[string]*websocket.Conn, len(b.conns))
	for name, conn := range b.conns {
		peers[name] = conn
	}
	b.mu.Unlock()

	go func() {
		var failed []string
		for name, conn := range peers {
			if err := writeFrame(conn, data); err != nil {
				b.logger.Warnf("Failed to write broadcast message to player %s: %v", name, err)
				failed = append(failed, name)
			}
		}
		// Drop failed peers only after the fan-out completes.
		for _, name := range failed {
			b.drop(name, peers[name])
		}
	}()
}

// Unicast sends an event to a single peer.
func (b *Broadcaster) Unicast(player string, ev game.Event) {
	b.mu.Lock()
	conn, ok := b.conns[player]
	b.mu.Unlock()
	if !ok {
		return
	}

	data, err := json.Marshal(ev)
	if err != nil {
		b.logger.Errorf("Failed to marshal private event (%s) for player %s: %v", ev.Type, player, err)
		return
	}
	go func() {
		if err := writeFrame(conn, data); err != nil {
			b.logger.Warnf("Failed to write private message to player %s: %v", player, err)
			b.drop(player, conn)
		}
	}()
}

func (b *Broadcaster) drop(player string, conn *websocket.Conn) {
	b.Unregister(player, conn)
	if b.OnDrop != nil {
		b.OnDrop(player)
	}
}

func writeFrame(conn *websocket.Conn, data []byte) error {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	return conn.Write(ctx, websocket.MessageText, data)
}
