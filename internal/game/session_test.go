package game

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arcana-gg/arcana/internal/catalog"
	"github.com/arcana-gg/arcana/internal/models"
)

// mockBroadcaster records every event the session emits, in place of the
// websocket fan-out layer.
type mockBroadcaster struct {
	mu           sync.Mutex
	events       []Event
	playerEvents map[string][]Event
}

func newMockBroadcaster() *mockBroadcaster {
	return &mockBroadcaster{playerEvents: make(map[string][]Event)}
}

func (m *mockBroadcaster) broadcast(ev Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, ev)
}

func (m *mockBroadcaster) unicast(player string, ev Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.playerEvents[player] = append(m.playerEvents[player], ev)
}

func (m *mockBroadcaster) lastOfType(t EventType) (Event, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.events) - 1; i >= 0; i-- {
		if m.events[i].Type == t {
			return m.events[i], true
		}
	}
	return Event{}, false
}

func (m *mockBroadcaster) lastUnicastOfType(player string, t EventType) (Event, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	evs := m.playerEvents[player]
	for i := len(evs) - 1; i >= 0; i-- {
		if evs[i].Type == t {
			return evs[i], true
		}
	}
	return Event{}, false
}

// newTestSession builds a full two-player session ("alice" to move first)
// wired to a mock broadcaster.
func newTestSession(t *testing.T) (*GameSession, *mockBroadcaster) {
	t.Helper()
	g := NewGameSession(catalog.New())
	mb := newMockBroadcaster()
	g.BroadcastFn = mb.broadcast
	g.BroadcastToPlayerFn = mb.unicast

	require.NoError(t, g.AddPlayer("alice"))
	require.NoError(t, g.AddPlayer("bob"))
	require.Equal(t, PhaseInProgress, g.CurrentPhase())
	return g, mb
}

// rigHand replaces a player's hand with known cards, each with a fresh
// instance id.
func rigHand(g *GameSession, name string, cards ...models.Card) []models.Card {
	g.Mu.Lock()
	defer g.Mu.Unlock()
	p := g.playerByName(name)
	p.Hand = p.Hand[:0]
	for _, c := range cards {
		c.ID = uuid.New()
		p.Hand = append(p.Hand, c)
	}
	return append([]models.Card(nil), p.Hand...)
}

func sel(rank, suit string) models.CardSelection {
	return models.CardSelection{Rank: rank, Suit: suit}
}

func TestAddPlayerLifecycle(t *testing.T) {
	g := NewGameSession(catalog.New())
	mb := newMockBroadcaster()
	g.BroadcastFn = mb.broadcast

	require.NoError(t, g.AddPlayer("alice"))
	assert.Equal(t, PhaseWaitingForPlayers, g.CurrentPhase())

	require.NoError(t, g.AddPlayer("bob"))
	assert.Equal(t, PhaseInProgress, g.CurrentPhase())

	// Re-joining is idempotent, a third participant is not allowed.
	require.NoError(t, g.AddPlayer("alice"))
	err := g.AddPlayer("carol")
	require.ErrorIs(t, err, ErrState)

	assert.Equal(t, []string{"alice", "bob"}, g.PlayerNames())
	ev, ok := mb.lastOfType(EventPlayersUpdated)
	require.True(t, ok)
	assert.Equal(t, []string{"alice", "bob"}, ev.Players)
}

func TestActionsRequireFullMatch(t *testing.T) {
	g := NewGameSession(catalog.New())
	require.NoError(t, g.AddPlayer("alice"))

	_, err := g.Discard("alice", []models.CardSelection{sel("2", models.SuitFire)})
	assert.ErrorIs(t, err, ErrState)
	_, err = g.PlayHand("alice", []models.CardSelection{sel("2", models.SuitFire)})
	assert.ErrorIs(t, err, ErrState)
	_, err = g.EndTurn("alice")
	assert.ErrorIs(t, err, ErrState)
}

func TestTurnOrderEnforced(t *testing.T) {
	g, _ := newTestSession(t)
	rigHand(g, "bob", models.Card{Rank: "5", Suit: models.SuitFire})

	_, err := g.Discard("bob", []models.CardSelection{sel("5", models.SuitFire)})
	require.ErrorIs(t, err, ErrNotYourTurn)
	_, err = g.PlayHand("bob", []models.CardSelection{sel("5", models.SuitFire)})
	require.ErrorIs(t, err, ErrNotYourTurn)
	_, err = g.EndTurn("bob")
	require.ErrorIs(t, err, ErrNotYourTurn)

	// The rejected actions changed nothing.
	g.Mu.Lock()
	bob := g.playerByName("bob")
	assert.Len(t, bob.Hand, 1)
	assert.Equal(t, bob.MaxDiscards, bob.RemainingDiscards)
	assert.Equal(t, 0, g.turnIndex)
	g.Mu.Unlock()

	_, err = g.EndTurn("mallory")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEndTurnAlternates(t *testing.T) {
	g, mb := newTestSession(t)

	next, err := g.EndTurn("alice")
	require.NoError(t, err)
	assert.Equal(t, "bob", next)

	ev, ok := mb.lastOfType(EventTurnEnded)
	require.True(t, ok)
	assert.Equal(t, "bob", ev.NextPlayer)

	next, err = g.EndTurn("bob")
	require.NoError(t, err)
	assert.Equal(t, "alice", next)
}

func TestDealInitialHand(t *testing.T) {
	g, mb := newTestSession(t)

	hand, err := g.DealInitialHand("alice")
	require.NoError(t, err)
	require.Len(t, hand, HandSize)

	ev, ok := mb.lastUnicastOfType("alice", EventNewHand)
	require.True(t, ok)
	assert.Len(t, ev.Cards, HandSize)

	// A second deal (reconnect) re-sends the same hand instead of redrawing.
	again, err := g.DealInitialHand("alice")
	require.NoError(t, err)
	require.Len(t, again, HandSize)
	for i := range hand {
		assert.Equal(t, hand[i].ID, again[i].ID)
	}

	_, err = g.DealInitialHand("mallory")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDiscardFlow(t *testing.T) {
	g, mb := newTestSession(t)
	rigged := rigHand(g, "alice",
		models.Card{Rank: "2", Suit: models.SuitFire},
		models.Card{Rank: "7", Suit: models.SuitWater},
		models.Card{Rank: "K", Suit: models.SuitEarth},
	)

	res, err := g.Discard("alice", []models.CardSelection{{ID: rigged[0].ID}})
	require.NoError(t, err)
	require.Len(t, res.Discarded, 1)
	assert.Equal(t, rigged[0].ID, res.Discarded[0].ID)
	assert.Equal(t, 0, res.RemainingDiscards)
	// The hand refills to full after a discard.
	assert.Len(t, res.NewHand, HandSize)
	for _, c := range res.NewHand {
		assert.NotEqual(t, rigged[0].ID, c.ID)
	}

	ev, ok := mb.lastOfType(EventHandUpdated)
	require.True(t, ok)
	assert.Equal(t, "alice", ev.Player)
	require.NotNil(t, ev.RemainingDiscards)
	assert.Equal(t, 0, *ev.RemainingDiscards)

	// Discards are spent for the round.
	_, err = g.Discard("alice", []models.CardSelection{sel("7", models.SuitWater)})
	assert.ErrorIs(t, err, ErrState)
}

func TestDiscardSelectionValidation(t *testing.T) {
	g, _ := newTestSession(t)
	rigHand(g, "alice",
		models.Card{Rank: "2", Suit: models.SuitFire},
		models.Card{Rank: "7", Suit: models.SuitWater},
	)

	_, err := g.Discard("alice", nil)
	assert.ErrorIs(t, err, ErrInvalidSelection)

	// A face that exists in the game but not in this hand.
	_, err = g.Discard("alice", []models.CardSelection{sel("A", models.SuitAir)})
	assert.ErrorIs(t, err, ErrInvalidSelection)

	// A face that does not exist at all.
	_, err = g.Discard("alice", []models.CardSelection{sel("11", "plasma")})
	assert.ErrorIs(t, err, ErrInvalidSelection)

	// Nothing was consumed by the rejected attempts.
	g.Mu.Lock()
	alice := g.playerByName("alice")
	assert.Equal(t, alice.MaxDiscards, alice.RemainingDiscards)
	assert.Len(t, alice.Hand, 2)
	g.Mu.Unlock()
}

func TestDiscardDuplicateFaceRemovesOne(t *testing.T) {
	g, _ := newTestSession(t)
	rigged := rigHand(g, "alice",
		models.Card{Rank: "9", Suit: models.SuitEarth},
		models.Card{Rank: "9", Suit: models.SuitEarth},
		models.Card{Rank: "4", Suit: models.SuitFire},
	)

	res, err := g.Discard("alice", []models.CardSelection{sel("9", models.SuitEarth)})
	require.NoError(t, err)
	require.Len(t, res.Discarded, 1)

	// Exactly one of the two identical instances is gone.
	remaining := make(map[uuid.UUID]bool)
	for _, c := range res.NewHand {
		remaining[c.ID] = true
	}
	assert.NotEqual(t, remaining[rigged[0].ID], remaining[rigged[1].ID])
	assert.True(t, remaining[rigged[2].ID])
}

func TestPlayHandDamage(t *testing.T) {
	g, mb := newTestSession(t)
	rigHand(g, "alice",
		models.Card{Rank: "10", Suit: models.SuitFire},
		models.Card{Rank: "10", Suit: models.SuitWater},
		models.Card{Rank: "10", Suit: models.SuitEarth},
		models.Card{Rank: "3", Suit: models.SuitFire},
		models.Card{Rank: "3", Suit: models.SuitWater},
	)

	res, err := g.PlayHand("alice", []models.CardSelection{
		sel("10", models.SuitFire), sel("10", models.SuitWater), sel("10", models.SuitEarth),
		sel("3", models.SuitFire), sel("3", models.SuitWater),
	})
	require.NoError(t, err)
	assert.Equal(t, HandFullHouse, res.HandType)
	assert.Equal(t, 4, res.Multiplier)
	assert.Equal(t, 28, res.Damage) // floor(36/5) * 4
	assert.Nil(t, res.Winner)
	assert.Equal(t, 4, res.Gold)
	assert.Len(t, res.NewHand, HandSize)

	g.Mu.Lock()
	assert.Equal(t, 72, g.playerByName("bob").Health)
	assert.Equal(t, 4, g.playerByName("alice").Gold)
	assert.Equal(t, 1, g.turnIndex)
	g.Mu.Unlock()

	ev, ok := mb.lastOfType(EventHandPlayed)
	require.True(t, ok)
	assert.Equal(t, "alice", ev.Player)
	assert.Equal(t, 28, ev.Damage)
	assert.Equal(t, HandFullHouse, ev.HandType)
	assert.Equal(t, 72, ev.HealthUpdate["bob"])
	assert.Equal(t, 100, ev.HealthUpdate["alice"])
	assert.Equal(t, "bob", ev.NextPlayer)
	assert.Nil(t, ev.Winner)
}

func TestPlayHandDamageModifiers(t *testing.T) {
	g, _ := newTestSession(t)
	rigHand(g, "alice",
		models.Card{Rank: "A", Suit: models.SuitFire},
		models.Card{Rank: "A", Suit: models.SuitFire},
	)

	g.Mu.Lock()
	alice := g.playerByName("alice")
	alice.DamageMod = 1.2
	alice.ElementMods[models.SuitFire] = 1.5
	g.Mu.Unlock()

	res, err := g.PlayHand("alice", []models.CardSelection{
		sel("A", models.SuitFire), sel("A", models.SuitFire),
	})
	require.NoError(t, err)
	assert.Equal(t, HandPair, res.HandType)
	// Raw floor(28/5)*2 = 10, scaled by 1.2 * 1.5 and floored once.
	assert.Equal(t, 18, res.Damage)
}

func TestPlayHandMixedElementsAverage(t *testing.T) {
	g, _ := newTestSession(t)
	rigHand(g, "alice",
		models.Card{Rank: "A", Suit: models.SuitFire},
		models.Card{Rank: "A", Suit: models.SuitWater},
	)

	g.Mu.Lock()
	g.playerByName("alice").ElementMods[models.SuitFire] = 2.0
	g.Mu.Unlock()

	res, err := g.PlayHand("alice", []models.CardSelection{
		sel("A", models.SuitFire), sel("A", models.SuitWater),
	})
	require.NoError(t, err)
	// Only half the hand is Fire: mean(2.0, 1.0) = 1.5, so 10 becomes 15.
	assert.Equal(t, 15, res.Damage)
}

// A single low card can legitimately deal zero damage; the broadcast must
// still carry the damage field rather than omitting it.
func TestPlayHandZeroDamage(t *testing.T) {
	g, mb := newTestSession(t)
	rigHand(g, "alice", models.Card{Rank: "2", Suit: models.SuitFire})

	res, err := g.PlayHand("alice", []models.CardSelection{sel("2", models.SuitFire)})
	require.NoError(t, err)
	assert.Equal(t, HandHighCard, res.HandType)
	assert.Equal(t, 0, res.Damage)
	assert.Equal(t, 1, res.Gold)

	g.Mu.Lock()
	assert.Equal(t, 100, g.playerByName("bob").Health)
	g.Mu.Unlock()

	ev, ok := mb.lastOfType(EventHandPlayed)
	require.True(t, ok)
	data, err := json.Marshal(ev)
	require.NoError(t, err)
	wire := map[string]interface{}{}
	require.NoError(t, json.Unmarshal(data, &wire))
	damage, present := wire["damage"]
	require.True(t, present)
	assert.Equal(t, float64(0), damage)
}

func TestPlayHandWinAndReset(t *testing.T) {
	g, mb := newTestSession(t)
	rigHand(g, "alice",
		models.Card{Rank: "A", Suit: models.SuitFire},
		models.Card{Rank: "A", Suit: models.SuitWater},
	)
	rigHand(g, "bob", models.Card{Rank: "2", Suit: models.SuitFire})

	g.Mu.Lock()
	g.playerByName("bob").Health = 5
	g.Mu.Unlock()

	var roundWinner string
	g.OnRoundEnd = func(winner string, players []*models.Player) {
		roundWinner = winner
		assert.Len(t, players, 2)
	}

	res, err := g.PlayHand("alice", []models.CardSelection{
		sel("A", models.SuitFire), sel("A", models.SuitWater),
	})
	require.NoError(t, err)
	require.NotNil(t, res.Winner)
	assert.Equal(t, "alice", *res.Winner)
	assert.Equal(t, "alice", roundWinner)

	g.Mu.Lock()
	alice := g.playerByName("alice")
	bob := g.playerByName("bob")
	assert.Equal(t, 1, alice.Wins)
	assert.Equal(t, 0, bob.Wins)
	// Both players are refreshed for the next round.
	assert.Equal(t, alice.MaxHealth, alice.Health)
	assert.Equal(t, bob.MaxHealth, bob.Health)
	assert.Equal(t, bob.MaxDiscards, bob.RemainingDiscards)
	// Hands survive the reset; the winner's was refilled after playing.
	assert.Len(t, alice.Hand, HandSize)
	assert.Len(t, bob.Hand, 1)
	// The winner does not get an extra turn: order restarts from the top.
	assert.Equal(t, 0, g.turnIndex)
	g.Mu.Unlock()
	assert.Equal(t, PhaseInProgress, g.CurrentPhase())

	// Both participants received a private store selection.
	for _, name := range []string{"alice", "bob"} {
		ev, ok := mb.lastUnicastOfType(name, EventOpenStore)
		require.Truef(t, ok, "no open_store for %s", name)
		assert.Len(t, ev.Upgrades, StoreSelectionSize)
	}

	ev, ok := mb.lastOfType(EventHandPlayed)
	require.True(t, ok)
	require.NotNil(t, ev.Winner)
	assert.Equal(t, "alice", *ev.Winner)
	assert.Equal(t, 1, ev.ScoreUpdate["alice"])
}

func TestPlayHandHealthFloorsAtZero(t *testing.T) {
	g, _ := newTestSession(t)
	rigHand(g, "alice",
		models.Card{Rank: "A", Suit: models.SuitFire},
		models.Card{Rank: "A", Suit: models.SuitWater},
	)

	g.Mu.Lock()
	g.playerByName("bob").Health = 1
	g.Mu.Unlock()

	_, err := g.PlayHand("alice", []models.CardSelection{
		sel("A", models.SuitFire), sel("A", models.SuitWater),
	})
	require.NoError(t, err)

	// Reset put bob back to max; the intermediate value never went negative
	// because the winner check fires exactly at zero.
	g.Mu.Lock()
	assert.Equal(t, g.playerByName("bob").MaxHealth, g.playerByName("bob").Health)
	assert.Equal(t, 1, g.playerByName("alice").Wins)
	g.Mu.Unlock()
}

func TestPlayHandRestoresDiscards(t *testing.T) {
	g, _ := newTestSession(t)
	rigHand(g, "alice",
		models.Card{Rank: "2", Suit: models.SuitFire},
		models.Card{Rank: "7", Suit: models.SuitWater},
	)

	_, err := g.Discard("alice", []models.CardSelection{sel("2", models.SuitFire)})
	require.NoError(t, err)

	res, err := g.PlayHand("alice", []models.CardSelection{sel("7", models.SuitWater)})
	require.NoError(t, err)
	assert.Len(t, res.NewHand, HandSize)

	g.Mu.Lock()
	alice := g.playerByName("alice")
	assert.Equal(t, alice.MaxDiscards, alice.RemainingDiscards)
	g.Mu.Unlock()
}

func TestBuyUpgrade(t *testing.T) {
	g, mb := newTestSession(t)

	g.Mu.Lock()
	g.playerByName("alice").Gold = 10
	g.Mu.Unlock()

	res, err := g.BuyUpgrade("alice", 1) // +20 HP, cost 4
	require.NoError(t, err)
	assert.Equal(t, 1, res.Upgrade.ID)
	assert.Equal(t, 4, res.Price)

	g.Mu.Lock()
	alice := g.playerByName("alice")
	assert.Equal(t, 6, alice.Gold)
	assert.Equal(t, 120, alice.MaxHealth)
	assert.Equal(t, 120, alice.Health)
	g.Mu.Unlock()

	ev, ok := mb.lastOfType(EventChangeMaxHealth)
	require.True(t, ok)
	assert.Equal(t, "alice", ev.Player)
	assert.Equal(t, 120, ev.MaxHealth)
	assert.Equal(t, 120, ev.Health)
}

func TestBuyUpgradeRejections(t *testing.T) {
	g, _ := newTestSession(t)

	g.Mu.Lock()
	g.playerByName("alice").Gold = 3
	g.Mu.Unlock()

	_, err := g.BuyUpgrade("alice", 1) // cost 4 > gold 3
	require.ErrorIs(t, err, ErrInsufficientGold)

	_, err = g.BuyUpgrade("alice", 999)
	require.ErrorIs(t, err, ErrInvalidSelection)

	_, err = g.BuyUpgrade("mallory", 1)
	require.ErrorIs(t, err, ErrNotFound)

	g.Mu.Lock()
	alice := g.playerByName("alice")
	assert.Equal(t, 3, alice.Gold)
	assert.Empty(t, alice.Upgrades)
	g.Mu.Unlock()
}

func TestConnectDisconnect(t *testing.T) {
	g, _ := newTestSession(t)

	require.NoError(t, g.HandleConnect("alice"))
	g.Mu.Lock()
	assert.True(t, g.playerByName("alice").Connected)
	g.Mu.Unlock()

	g.HandleDisconnect("alice")
	g.Mu.Lock()
	assert.False(t, g.playerByName("alice").Connected)
	g.Mu.Unlock()

	assert.ErrorIs(t, g.HandleConnect("mallory"), ErrNotFound)
	g.HandleDisconnect("mallory") // no-op, must not panic
}
