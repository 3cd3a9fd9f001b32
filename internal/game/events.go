package game

import "github.com/arcana-gg/arcana/internal/models"

// EventType is an enum-like type for outbound broadcast messages.
type EventType string

const (
	EventPlayersUpdated  EventType = "players_updated"
	EventOpenStore       EventType = "open_store" // unicast
	EventNewHand         EventType = "new_hand"   // unicast on connect
	EventHandUpdated     EventType = "hand_updated"
	EventHandPlayed      EventType = "hand_played"
	EventTurnEnded       EventType = "turn_ended"
	EventChangeMaxHealth EventType = "change_max_health"
)

// Event is one outbound message in a consistent wire shape. Only the
// fields relevant to each Type are populated; the rest marshal away.
type Event struct {
	Type   EventType `json:"type"`
	Player string    `json:"player,omitempty"`

	Players []string `json:"players,omitempty"`

	Cards             []models.Card `json:"cards,omitempty"`
	RemainingDiscards *int          `json:"remaining_discards,omitempty"`

	Upgrades []models.Upgrade `json:"upgrades,omitempty"`

	// hand_played fields. Damage and Gold stay un-omitted: zero is a
	// legitimate result of a low-value play.
	Damage          int            `json:"damage"`
	HandType        HandCategory   `json:"hand_type,omitempty"`
	Multiplier      int            `json:"multiplier,omitempty"`
	HealthUpdate    map[string]int `json:"health_update,omitempty"`
	MaxHealthUpdate map[string]int `json:"max_health_update,omitempty"`
	ScoreUpdate     map[string]int `json:"score_update,omitempty"`
	NewHand         []models.Card  `json:"new_hand,omitempty"`
	Winner          *string        `json:"winner,omitempty"`
	Gold            int            `json:"gold"`

	NextPlayer string `json:"next_player,omitempty"`

	// change_max_health fields.
	Health    int `json:"health,omitempty"`
	MaxHealth int `json:"max_health,omitempty"`
}
