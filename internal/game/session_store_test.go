package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arcana-gg/arcana/internal/catalog"
)

func TestSessionStore(t *testing.T) {
	store := NewSessionStore()
	cat := catalog.New()

	a := NewGameSession(cat)
	b := NewGameSession(cat)

	require.True(t, store.Add("duel-1", a))
	assert.False(t, store.Add("duel-1", b), "duplicate id must be rejected")
	require.True(t, store.Add("duel-2", b))

	got, ok := store.Get("duel-1")
	require.True(t, ok)
	assert.Same(t, a, got)

	_, ok = store.Get("no-such")
	assert.False(t, ok)

	assert.ElementsMatch(t, []string{"duel-1", "duel-2"}, store.IDs())

	store.Delete("duel-1")
	_, ok = store.Get("duel-1")
	assert.False(t, ok)
	assert.Equal(t, []string{"duel-2"}, store.IDs())
}
