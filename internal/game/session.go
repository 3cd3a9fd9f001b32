package game

import (
	"context"
	"fmt"
	"log"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/arcana-gg/arcana/internal/cache"
	"github.com/arcana-gg/arcana/internal/catalog"
	"github.com/arcana-gg/arcana/internal/models"
)

// Phase tracks the session's round life-cycle.
type Phase string

const (
	PhaseWaitingForPlayers Phase = "waiting_for_players"
	PhaseInProgress        Phase = "in_progress"
	PhaseRoundOver         Phase = "round_over"
)

const (
	// MaxPlayers is a hard invariant: gameplay requires exactly two
	// participants, and a third join is rejected rather than undefined.
	MaxPlayers = 2

	// HandSize is the number of cards a hand refills to.
	HandSize = 8

	// StoreSelectionSize is how many upgrades each store roll offers.
	StoreSelectionSize = 5
)

// OnRoundEndFunc receives the finished round's winner and the final player
// states, e.g. to persist win/gold ledgers.
type OnRoundEndFunc func(winner string, players []*models.Player)

// GameSession holds the entire state of a single two-player match in
// memory. Mu serializes every mutating operation: the turn check and the
// mutation it guards are always one critical section. Sessions never share
// decks or players.
type GameSession struct {
	ID uuid.UUID

	players   []*models.Player // insertion order = turn order
	turnIndex int
	deck      *Deck
	phase     Phase
	catalog   *catalog.Catalog

	actionIndex int

	Mu sync.Mutex

	// BroadcastFn sends an event to every connected participant. Nil means
	// no transport is attached yet.
	BroadcastFn func(ev Event)

	// BroadcastToPlayerFn sends an event to a single participant.
	BroadcastToPlayerFn func(player string, ev Event)

	// OnRoundEnd is invoked (lock held) when a round finishes.
	OnRoundEnd OnRoundEndFunc
}

// NewGameSession builds an empty session with a full deck.
func NewGameSession(cat *catalog.Catalog) *GameSession {
	return &GameSession{
		ID:      uuid.New(),
		deck:    NewDeck(rand.New(rand.NewSource(time.Now().UnixNano()))),
		phase:   PhaseWaitingForPlayers,
		catalog: cat,
	}
}

// CurrentPhase returns the current round phase.
func (g *GameSession) CurrentPhase() Phase {
	g.Mu.Lock()
	defer g.Mu.Unlock()
	return g.phase
}

// PlayerNames returns the participants in turn order.
func (g *GameSession) PlayerNames() []string {
	g.Mu.Lock()
	defer g.Mu.Unlock()
	names := make([]string, len(g.players))
	for i, p := range g.players {
		names[i] = p.Name
	}
	return names
}

// AddPlayer registers a participant. Re-joining with a known name is a
// no-op. A third participant is rejected.
func (g *GameSession) AddPlayer(name string) error {
	g.Mu.Lock()
	defer g.Mu.Unlock()

	if g.playerByName(name) != nil {
		g.logAction(name, "player_rejoin", nil)
		g.broadcastPlayers()
		return nil
	}
	if len(g.players) >= MaxPlayers {
		return fmt.Errorf("%w: match already has %d players", ErrState, MaxPlayers)
	}

	g.players = append(g.players, models.NewPlayer(name))
	if len(g.players) == MaxPlayers {
		g.phase = PhaseInProgress
	}
	log.Printf("Session %s: player %q joined (%d/%d).", g.ID, name, len(g.players), MaxPlayers)
	g.logAction(name, "player_join", nil)
	g.broadcastPlayers()
	return nil
}

// HandleConnect marks a participant connected. The connection handle
// itself stays with the broadcast layer.
func (g *GameSession) HandleConnect(name string) error {
	g.Mu.Lock()
	defer g.Mu.Unlock()
	p := g.playerByName(name)
	if p == nil {
		return fmt.Errorf("%w: player %q", ErrNotFound, name)
	}
	p.Connected = true
	g.logAction(name, "player_connect", nil)
	return nil
}

// HandleDisconnect marks a participant disconnected. Game state is
// otherwise untouched; the player may reconnect and resume.
func (g *GameSession) HandleDisconnect(name string) {
	g.Mu.Lock()
	defer g.Mu.Unlock()
	p := g.playerByName(name)
	if p == nil || !p.Connected {
		return
	}
	p.Connected = false
	log.Printf("Session %s: player %q disconnected.", g.ID, name)
	g.logAction(name, "player_disconnect", nil)
}

// DealInitialHand fills the player's hand to HandSize if it is empty and
// sends them a unicast new_hand event. Triggered when the transport
// reports a connection established, not on join. A non-empty hand (e.g. a
// reconnect mid-round) is left alone.
func (g *GameSession) DealInitialHand(name string) ([]models.Card, error) {
	g.Mu.Lock()
	defer g.Mu.Unlock()

	p := g.playerByName(name)
	if p == nil {
		return nil, fmt.Errorf("%w: player %q", ErrNotFound, name)
	}
	if len(p.Hand) == 0 {
		for len(p.Hand) < HandSize {
			p.Hand = append(p.Hand, g.deck.DrawRandom())
		}
		g.logAction(name, "hand_dealt", map[string]interface{}{"cards": len(p.Hand)})
	}
	g.unicast(name, Event{Type: EventNewHand, Player: name, Cards: append([]models.Card(nil), p.Hand...)})
	return append([]models.Card(nil), p.Hand...), nil
}

// DiscardResult is the caller-facing outcome of a discard action.
type DiscardResult struct {
	Discarded         []models.Card `json:"discarded"`
	NewHand           []models.Card `json:"new_hand"`
	RemainingDiscards int           `json:"remaining_discards"`
}

// Discard removes the selected cards from the active player's hand, spends
// one discard, and refills the hand from the deck.
func (g *GameSession) Discard(name string, selection []models.CardSelection) (*DiscardResult, error) {
	g.Mu.Lock()
	defer g.Mu.Unlock()

	p, err := g.requireActive(name)
	if err != nil {
		return nil, err
	}
	if len(selection) == 0 {
		return nil, fmt.Errorf("%w: no cards selected", ErrInvalidSelection)
	}
	if p.RemainingDiscards < 1 {
		return nil, fmt.Errorf("%w: no discards remaining", ErrState)
	}

	discarded, err := g.removeSelected(p, selection)
	if err != nil {
		return nil, err
	}
	p.RemainingDiscards--
	g.refillHand(p)

	g.logAction(name, "action_discard", map[string]interface{}{
		"discarded": len(discarded),
		"remaining": p.RemainingDiscards,
	})

	remaining := p.RemainingDiscards
	g.broadcast(Event{
		Type:              EventHandUpdated,
		Player:            name,
		Cards:             append([]models.Card(nil), p.Hand...),
		RemainingDiscards: &remaining,
	})

	return &DiscardResult{
		Discarded:         discarded,
		NewHand:           append([]models.Card(nil), p.Hand...),
		RemainingDiscards: p.RemainingDiscards,
	}, nil
}

// PlayResult is the caller-facing outcome of a played hand.
type PlayResult struct {
	Cards      []models.Card `json:"cards"`
	Damage     int           `json:"damage"`
	HandType   HandCategory  `json:"hand_type"`
	Multiplier int           `json:"multiplier"`
	NewHand    []models.Card `json:"new_hand"`
	Winner     *string       `json:"winner"`
	Gold       int           `json:"gold"`
}

// PlayHand scores the selected cards, applies the damage to the opponent,
// and advances the round. On a kill the winner's counter increments and
// the whole round resets: fresh deck, both players refreshed, turn index
// back to 0, and a fresh store selection pushed to each participant.
func (g *GameSession) PlayHand(name string, selection []models.CardSelection) (*PlayResult, error) {
	g.Mu.Lock()
	defer g.Mu.Unlock()

	p, err := g.requireActive(name)
	if err != nil {
		return nil, err
	}
	if len(selection) == 0 {
		return nil, fmt.Errorf("%w: no cards selected", ErrInvalidSelection)
	}

	played, err := g.removeSelected(p, selection)
	if err != nil {
		return nil, err
	}

	raw, category, multiplier := Score(played)
	damage := scaleDamage(raw, played, p)

	opponent := g.opponentOf(p)
	opponent.Health -= damage
	if opponent.Health < 0 {
		opponent.Health = 0
	}

	var winner *string
	if opponent.Health == 0 {
		p.Wins++
		w := p.Name
		winner = &w
		g.resetRound(w)
	}

	g.refillHand(p)
	p.RemainingDiscards = p.MaxDiscards
	p.Gold += multiplier

	if winner == nil {
		g.advanceTurn()
	}

	g.logAction(name, "action_play_hand", map[string]interface{}{
		"hand_type":  string(category),
		"damage":     damage,
		"multiplier": multiplier,
		"winner":     winner != nil,
	})

	remaining := p.RemainingDiscards
	g.broadcast(Event{
		Type:              EventHandPlayed,
		Player:            name,
		Cards:             played,
		Damage:            damage,
		HandType:          category,
		Multiplier:        multiplier,
		HealthUpdate:      g.healthByName(),
		MaxHealthUpdate:   g.maxHealthByName(),
		ScoreUpdate:       g.winsByName(),
		NextPlayer:        g.players[g.turnIndex].Name,
		NewHand:           append([]models.Card(nil), p.Hand...),
		Winner:            winner,
		RemainingDiscards: &remaining,
		Gold:              multiplier,
	})

	return &PlayResult{
		Cards:      played,
		Damage:     damage,
		HandType:   category,
		Multiplier: multiplier,
		NewHand:    append([]models.Card(nil), p.Hand...),
		Winner:     winner,
		Gold:       multiplier,
	}, nil
}

// EndTurn passes the turn without playing.
func (g *GameSession) EndTurn(name string) (string, error) {
	g.Mu.Lock()
	defer g.Mu.Unlock()

	if _, err := g.requireActive(name); err != nil {
		return "", err
	}
	g.advanceTurn()
	next := g.players[g.turnIndex].Name

	g.logAction(name, "action_end_turn", map[string]interface{}{"next_player": next})
	g.broadcast(Event{Type: EventTurnEnded, NextPlayer: next})
	return next, nil
}

// PurchaseResult is the caller-facing outcome of a store purchase.
type PurchaseResult struct {
	Upgrade models.Upgrade `json:"upgrade"`
	Price   int            `json:"price"`
}

// BuyUpgrade deducts the catalog price from the player's gold, appends the
// upgrade, and recomputes their stats from scratch.
func (g *GameSession) BuyUpgrade(name string, upgradeID int) (*PurchaseResult, error) {
	g.Mu.Lock()
	defer g.Mu.Unlock()

	p := g.playerByName(name)
	if p == nil {
		return nil, fmt.Errorf("%w: player %q", ErrNotFound, name)
	}
	upgrade, ok := g.catalog.ByID(upgradeID)
	if !ok {
		return nil, fmt.Errorf("%w: unknown upgrade id %d", ErrInvalidSelection, upgradeID)
	}
	if upgrade.Cost > p.Gold {
		return nil, fmt.Errorf("%w: upgrade costs %d, player has %d", ErrInsufficientGold, upgrade.Cost, p.Gold)
	}

	p.Gold -= upgrade.Cost
	p.Upgrades = append(p.Upgrades, upgrade)
	health, maxHealth := p.ApplyUpgrades()

	g.logAction(name, "action_buy_upgrade", map[string]interface{}{
		"upgrade_id": upgrade.ID,
		"price":      upgrade.Cost,
	})
	g.broadcast(Event{
		Type:      EventChangeMaxHealth,
		Player:    name,
		Health:    health,
		MaxHealth: maxHealth,
	})

	return &PurchaseResult{Upgrade: upgrade, Price: upgrade.Cost}, nil
}

// --- internal helpers, lock held by caller ---

func (g *GameSession) playerByName(name string) *models.Player {
	for _, p := range g.players {
		if p.Name == name {
			return p
		}
	}
	return nil
}

// requireActive resolves the player and verifies the turn-order invariant
// under the already-held session lock.
func (g *GameSession) requireActive(name string) (*models.Player, error) {
	p := g.playerByName(name)
	if p == nil {
		return nil, fmt.Errorf("%w: player %q", ErrNotFound, name)
	}
	if len(g.players) != MaxPlayers {
		return nil, fmt.Errorf("%w: match is not full (%d/%d players)", ErrState, len(g.players), MaxPlayers)
	}
	if g.players[g.turnIndex].Name != name {
		return nil, fmt.Errorf("%w: active player is %q", ErrNotYourTurn, g.players[g.turnIndex].Name)
	}
	return p, nil
}

func (g *GameSession) opponentOf(p *models.Player) *models.Player {
	for _, other := range g.players {
		if other.Name != p.Name {
			return other
		}
	}
	return nil
}

// removeSelected matches the selection against the hand and removes the
// matched instances. A selection entry with an instance id pins that exact
// card; a bare rank/suit entry consumes at most one value-equal instance,
// so duplicate-valued hands lose only what was asked for.
func (g *GameSession) removeSelected(p *models.Player, selection []models.CardSelection) ([]models.Card, error) {
	taken := make(map[int]bool, len(selection))
	matched := make([]models.Card, 0, len(selection))

	for _, sel := range selection {
		if !sel.Valid() {
			return nil, fmt.Errorf("%w: unknown card %s of %s", ErrInvalidSelection, sel.Rank, sel.Suit)
		}
		for i, card := range p.Hand {
			if taken[i] {
				continue
			}
			if sel.ID != uuid.Nil {
				if card.ID != sel.ID {
					continue
				}
			} else if card.Rank != sel.Rank || card.Suit != sel.Suit {
				continue
			}
			taken[i] = true
			matched = append(matched, card)
			break
		}
	}
	if len(matched) == 0 {
		return nil, fmt.Errorf("%w: selected cards not found in hand", ErrInvalidSelection)
	}

	newHand := make([]models.Card, 0, len(p.Hand)-len(matched))
	for i, card := range p.Hand {
		if !taken[i] {
			newHand = append(newHand, card)
		}
	}
	p.Hand = newHand
	return matched, nil
}

func (g *GameSession) refillHand(p *models.Player) {
	for len(p.Hand) < HandSize {
		p.Hand = append(p.Hand, g.deck.DrawRandom())
	}
}

// scaleDamage applies the player's damage modifiers to a raw score: the
// generic modifier times the mean of the per-card element modifiers, so a
// mono-element hand gets its full element bonus and a mixed hand a
// proportional share. Floored once, after all scaling.
func scaleDamage(raw int, played []models.Card, p *models.Player) int {
	if len(played) == 0 {
		return 0
	}
	elemSum := 0.0
	for _, c := range played {
		elemSum += p.ElementMods[c.Suit]
	}
	scale := p.DamageMod * elemSum / float64(len(played))
	return int(math.Floor(float64(raw) * scale))
}

func (g *GameSession) healthByName() map[string]int {
	m := make(map[string]int, len(g.players))
	for _, p := range g.players {
		m[p.Name] = p.Health
	}
	return m
}

func (g *GameSession) maxHealthByName() map[string]int {
	m := make(map[string]int, len(g.players))
	for _, p := range g.players {
		m[p.Name] = p.MaxHealth
	}
	return m
}

func (g *GameSession) winsByName() map[string]int {
	m := make(map[string]int, len(g.players))
	for _, p := range g.players {
		m[p.Name] = p.Wins
	}
	return m
}

// advanceTurn moves the active index to the next participant.
func (g *GameSession) advanceTurn() {
	g.turnIndex = (g.turnIndex + 1) % len(g.players)
}

// resetRound starts a fresh round after a kill: new deck, both players
// refreshed (hands retained), turn order back to the first joiner, and
// each participant gets a private store selection.
func (g *GameSession) resetRound(winner string) {
	g.phase = PhaseRoundOver
	g.deck.Regenerate()
	for _, p := range g.players {
		p.ResetForRound()
	}
	g.turnIndex = 0
	log.Printf("Session %s: round over, %q wins.", g.ID, winner)
	g.logAction(winner, "round_won", map[string]interface{}{"wins": g.playerByName(winner).Wins})

	if g.OnRoundEnd != nil {
		g.OnRoundEnd(winner, g.players)
	}
	g.openStore()
	g.phase = PhaseInProgress
}

// openStore sends each participant their own weighted upgrade selection.
func (g *GameSession) openStore() {
	for _, p := range g.players {
		g.unicast(p.Name, Event{
			Type:     EventOpenStore,
			Player:   p.Name,
			Upgrades: g.catalog.Selection(StoreSelectionSize),
		})
	}
}

func (g *GameSession) broadcastPlayers() {
	names := make([]string, len(g.players))
	for i, p := range g.players {
		names[i] = p.Name
	}
	g.broadcast(Event{Type: EventPlayersUpdated, Players: names})
}

// broadcast fans an event out to all participants via the transport
// callback. Nil means no transport attached (e.g. unit tests).
func (g *GameSession) broadcast(ev Event) {
	if g.BroadcastFn != nil {
		g.BroadcastFn(ev)
	}
}

func (g *GameSession) unicast(name string, ev Event) {
	if g.BroadcastToPlayerFn != nil {
		g.BroadcastToPlayerFn(name, ev)
	}
}

// logAction publishes a match action record to the history queue,
// fire-and-forget. A nil Redis client drops the record.
func (g *GameSession) logAction(actor, actionType string, payload map[string]interface{}) {
	g.actionIndex++
	if payload == nil {
		payload = make(map[string]interface{})
	}
	record := cache.MatchActionRecord{
		SessionID:   g.ID,
		ActionIndex: g.actionIndex,
		Actor:       actor,
		ActionType:  actionType,
		Payload:     payload,
		Timestamp:   time.Now().UnixMilli(),
	}
	go func(rec cache.MatchActionRecord) {
		if cache.Rdb == nil {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := cache.PublishMatchAction(ctx, rec); err != nil {
			log.Printf("Error publishing action %d for session %s: %v", rec.ActionIndex, g.ID, err)
		}
	}(record)
}
