package models

// Rarity tiers for store upgrades.
const (
	RarityCommon    = "common"
	RarityUncommon  = "uncommon"
	RarityRare      = "rare"
	RarityEpic      = "epic"
	RarityLegendary = "legendary"
)

// Rarities lists all tiers in ascending order of scarcity.
var Rarities = []string{RarityCommon, RarityUncommon, RarityRare, RarityEpic, RarityLegendary}

// EffectKind discriminates what an upgrade modifies.
type EffectKind string

const (
	EffectFlatHealth    EffectKind = "flat_health"
	EffectHealthPct     EffectKind = "health_pct"
	EffectExtraDiscards EffectKind = "extra_discards"
	EffectDamagePct     EffectKind = "damage_pct"
	EffectElementPct    EffectKind = "element_pct"
)

// Effect is the typed stat change an upgrade applies. Amount is HP for
// EffectFlatHealth, a count for EffectExtraDiscards, and a fraction
// (0.25 == +25%) for the percentage kinds. Element is set only for
// EffectElementPct.
type Effect struct {
	Kind    EffectKind `json:"kind"`
	Amount  float64    `json:"amount"`
	Element string     `json:"element,omitempty"`
}

// Upgrade is an immutable catalog entry. Description is the human-readable
// effect text shown in the store; Effect is what the engine folds.
type Upgrade struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Tier        int    `json:"tier"`
	Rarity      string `json:"rarity"`
	Description string `json:"effect"`
	Cost        int    `json:"cost"`
	Effect      Effect `json:"-"`
}
