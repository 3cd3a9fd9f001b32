package models

import "math"

// Base stats every player starts from. ApplyUpgrades always recomputes
// from these, never incrementally.
const (
	BaseMaxHealth   = 100
	BaseMaxDiscards = 1
)

// Player is one participant's mutable state within a session. Health, hand
// and discards reset each round; wins, gold, upgrades and modifiers persist
// for the life of the session.
type Player struct {
	Name              string    `json:"name"`
	Health            int       `json:"health"`
	MaxHealth         int       `json:"max_health"`
	Wins              int       `json:"wins"`
	Gold              int       `json:"gold"`
	Hand              []Card    `json:"hand"`
	RemainingDiscards int       `json:"remaining_discards"`
	MaxDiscards       int       `json:"max_discards"`
	Upgrades          []Upgrade `json:"-"`

	// DamageMod scales all damage dealt; ElementMods scale damage per suit.
	DamageMod   float64            `json:"-"`
	ElementMods map[string]float64 `json:"-"`

	// Connected mirrors the broadcast layer's view of this player; the
	// connection handle itself lives with the broadcaster, not here.
	Connected bool `json:"connected"`
}

// NewPlayer creates a participant with base stats and an empty hand.
func NewPlayer(name string) *Player {
	p := &Player{
		Name:        name,
		MaxHealth:   BaseMaxHealth,
		MaxDiscards: BaseMaxDiscards,
		DamageMod:   1.0,
		ElementMods: make(map[string]float64, len(Suits)),
	}
	for _, s := range Suits {
		p.ElementMods[s] = 1.0
	}
	p.Health = p.MaxHealth
	p.RemainingDiscards = p.MaxDiscards
	return p
}

// ResetForRound refills health and discards for a new round. The hand is
// deliberately retained; dealing stays connection-driven.
func (p *Player) ResetForRound() {
	p.Health = p.MaxHealth
	p.RemainingDiscards = p.MaxDiscards
}

// ApplyUpgrades recomputes max health, max discards and all five damage
// modifiers from base values, folding owned upgrades in acquisition order.
// Percentage health bonuses accumulate multiplicatively and apply once at
// the end. Health and discards refill to the new maxima. Returns the new
// health and max health for broadcast.
func (p *Player) ApplyUpgrades() (health, maxHealth int) {
	p.MaxHealth = BaseMaxHealth
	p.MaxDiscards = BaseMaxDiscards
	p.DamageMod = 1.0
	for _, s := range Suits {
		p.ElementMods[s] = 1.0
	}

	healthPct := 1.0
	for _, u := range p.Upgrades {
		switch u.Effect.Kind {
		case EffectFlatHealth:
			p.MaxHealth += int(u.Effect.Amount)
		case EffectHealthPct:
			healthPct *= 1.0 + u.Effect.Amount
		case EffectExtraDiscards:
			p.MaxDiscards += int(u.Effect.Amount)
		case EffectDamagePct:
			p.DamageMod += u.Effect.Amount
		case EffectElementPct:
			p.ElementMods[u.Effect.Element] += u.Effect.Amount
		}
	}
	p.MaxHealth = int(math.Floor(float64(p.MaxHealth) * healthPct))

	p.Health = p.MaxHealth
	p.RemainingDiscards = p.MaxDiscards
	return p.Health, p.MaxHealth
}
