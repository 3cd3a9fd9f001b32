package handlers

import (
	"io"
	"testing"

	"github.com/coder/websocket"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"github.com/arcana-gg/arcana/internal/game"
)

func TestBroadcasterRegistry(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	b := NewBroadcaster(logger)

	first := &websocket.Conn{}
	second := &websocket.Conn{}

	b.Register("alice", first)
	b.mu.Lock()
	assert.Same(t, first, b.conns["alice"])
	b.mu.Unlock()

	// A reconnect replaces the handle.
	b.Register("alice", second)
	b.mu.Lock()
	assert.Same(t, second, b.conns["alice"])
	b.mu.Unlock()

	// The old connection's deferred cleanup must not evict the new one.
	b.Unregister("alice", first)
	b.mu.Lock()
	assert.Same(t, second, b.conns["alice"])
	b.mu.Unlock()

	b.Unregister("alice", second)
	b.mu.Lock()
	_, ok := b.conns["alice"]
	b.mu.Unlock()
	assert.False(t, ok)
}

func TestBroadcasterDropNotifies(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	b := NewBroadcaster(logger)

	var dropped []string
	b.OnDrop = func(player string) { dropped = append(dropped, player) }

	conn := &websocket.Conn{}
	b.Register("alice", conn)
	b.drop("alice", conn)

	assert.Equal(t, []string{"alice"}, dropped)
	b.mu.Lock()
	_, ok := b.conns["alice"]
	b.mu.Unlock()
	assert.False(t, ok)
}

// Sending with no peers attached must be a no-op rather than a panic.
func TestBroadcasterNoPeers(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	b := NewBroadcaster(logger)

	b.BroadcastRaw([]byte(`{"type":"turn_ended"}`))
	b.Unicast("ghost", game.Event{Type: game.EventTurnEnded})
}
