// Package catalog holds the static upgrade store: every purchasable stat
// upgrade grouped by rarity, plus the weighted selection the store UI
// presents between rounds. The catalog is built once at startup and is
// read-only afterwards, so any number of sessions may query it concurrently.
package catalog

import (
	"fmt"
	"math/rand"

	"github.com/arcana-gg/arcana/internal/models"
)

// rarityWeights drive the store's tier roll. Higher weight, more common.
var rarityWeights = map[string]int{
	models.RarityCommon:    20,
	models.RarityUncommon:  10,
	models.RarityRare:      5,
	models.RarityEpic:      3,
	models.RarityLegendary: 1,
}

// selectionAttempts bounds the dedup sampling loop so a catalog with fewer
// unique entries than requested cannot spin forever.
const selectionAttempts = 1000

// Catalog is the read-only upgrade registry.
type Catalog struct {
	byRarity    map[string][]models.Upgrade
	byID        map[int]models.Upgrade
	totalWeight int
}

// New builds the standard catalog.
func New() *Catalog {
	c := &Catalog{
		byRarity: make(map[string][]models.Upgrade),
		byID:     make(map[int]models.Upgrade),
	}
	for _, w := range rarityWeights {
		c.totalWeight += w
	}

	// Flat health.
	c.add(1, "Increase Health", 1, models.RarityCommon, "+20 HP", 4, models.Effect{Kind: models.EffectFlatHealth, Amount: 20})
	c.add(2, "Increase Health", 2, models.RarityUncommon, "+40 HP", 10, models.Effect{Kind: models.EffectFlatHealth, Amount: 40})
	c.add(3, "Increase Health", 3, models.RarityRare, "+60 HP", 16, models.Effect{Kind: models.EffectFlatHealth, Amount: 60})

	// Percentage health.
	c.add(4, "Increase Health %", 1, models.RarityCommon, "+25% HP", 4, models.Effect{Kind: models.EffectHealthPct, Amount: 0.25})
	c.add(5, "Increase Health %", 2, models.RarityUncommon, "+50% HP", 8, models.Effect{Kind: models.EffectHealthPct, Amount: 0.50})

	// Discards.
	c.add(6, "Increase Discards", 1, models.RarityCommon, "+1 Discard", 6, models.Effect{Kind: models.EffectExtraDiscards, Amount: 1})
	c.add(7, "Increase Discards", 2, models.RarityRare, "+2 Discards", 12, models.Effect{Kind: models.EffectExtraDiscards, Amount: 2})
	c.add(8, "Increase Discards", 3, models.RarityLegendary, "+3 Discards", 22, models.Effect{Kind: models.EffectExtraDiscards, Amount: 3})

	// Generic damage.
	c.add(9, "Increase Damage", 1, models.RarityUncommon, "+10% Damage", 8, models.Effect{Kind: models.EffectDamagePct, Amount: 0.10})
	c.add(10, "Increase Damage", 2, models.RarityRare, "+20% Damage", 12, models.Effect{Kind: models.EffectDamagePct, Amount: 0.20})
	c.add(11, "Increase Damage", 3, models.RarityEpic, "+30% Damage", 18, models.Effect{Kind: models.EffectDamagePct, Amount: 0.30})
	c.add(12, "Increase Damage", 4, models.RarityLegendary, "+50% Damage", 24, models.Effect{Kind: models.EffectDamagePct, Amount: 0.50})

	// Elemental damage, three tiers per element.
	id := 13
	for _, element := range []string{models.SuitEarth, models.SuitFire, models.SuitWater, models.SuitAir} {
		c.add(id, fmt.Sprintf("Increase %s Damage", element), 1, models.RarityUncommon,
			fmt.Sprintf("+20%% %s Damage", element), 4, models.Effect{Kind: models.EffectElementPct, Amount: 0.20, Element: element})
		id++
		c.add(id, fmt.Sprintf("Increase %s Damage", element), 2, models.RarityRare,
			fmt.Sprintf("+40%% %s Damage", element), 7, models.Effect{Kind: models.EffectElementPct, Amount: 0.40, Element: element})
		id++
		c.add(id, fmt.Sprintf("Increase %s Damage", element), 3, models.RarityEpic,
			fmt.Sprintf("+60%% %s Damage", element), 10, models.Effect{Kind: models.EffectElementPct, Amount: 0.60, Element: element})
		id++
	}

	return c
}

func (c *Catalog) add(id int, name string, tier int, rarity, desc string, cost int, effect models.Effect) {
	u := models.Upgrade{
		ID:          id,
		Name:        name,
		Tier:        tier,
		Rarity:      rarity,
		Description: desc,
		Cost:        cost,
		Effect:      effect,
	}
	c.byRarity[rarity] = append(c.byRarity[rarity], u)
	c.byID[id] = u
}

// ByID returns the upgrade with the given id.
func (c *Catalog) ByID(id int) (models.Upgrade, bool) {
	u, ok := c.byID[id]
	return u, ok
}

// PriceByID returns the cost of the upgrade with the given id.
func (c *Catalog) PriceByID(id int) (int, bool) {
	u, ok := c.byID[id]
	return u.Cost, ok
}

// ByRarity returns all upgrades in a rarity tier.
func (c *Catalog) ByRarity(rarity string) []models.Upgrade {
	return c.byRarity[rarity]
}

// Size returns the number of catalog entries.
func (c *Catalog) Size() int {
	return len(c.byID)
}

// Selection rolls k unique upgrades: a rarity tier is sampled by weight,
// then an upgrade uniformly within it. Duplicates by id are re-rolled. The
// loop is bounded, so a catalog thinner than k returns short rather than
// spinning.
func (c *Catalog) Selection(k int) []models.Upgrade {
	picked := make(map[int]struct{}, k)
	selection := make([]models.Upgrade, 0, k)

	for attempt := 0; attempt < selectionAttempts && len(selection) < k; attempt++ {
		tier := c.byRarity[c.rollRarity()]
		if len(tier) == 0 {
			continue
		}
		u := tier[rand.Intn(len(tier))]
		if _, dup := picked[u.ID]; dup {
			continue
		}
		picked[u.ID] = struct{}{}
		selection = append(selection, u)
	}
	return selection
}

// rollRarity samples a rarity tier according to rarityWeights.
func (c *Catalog) rollRarity() string {
	roll := rand.Intn(c.totalWeight)
	for _, rarity := range models.Rarities {
		roll -= rarityWeights[rarity]
		if roll < 0 {
			return rarity
		}
	}
	return models.RarityCommon
}
