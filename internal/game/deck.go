package game

import (
	"math/rand"

	"github.com/google/uuid"

	"github.com/arcana-gg/arcana/internal/models"
)

// deckCopies multiplies the 52-card base deck so long rounds rarely
// exhaust it; regeneration covers the rest.
const deckCopies = 10

// Deck is an ordered multiset of cards drawn by random index removal.
// It is owned exclusively by one session; the session lock guards it.
type Deck struct {
	cards []models.Card
	rng   *rand.Rand
}

// NewDeck builds a full deck using the given random source. A nil rng
// falls back to the shared package source.
func NewDeck(rng *rand.Rand) *Deck {
	d := &Deck{rng: rng}
	d.Regenerate()
	return d
}

// Regenerate replaces the contents with a fresh full deck: every rank of
// every suit, deckCopies times. Each card gets a fresh instance id.
func (d *Deck) Regenerate() {
	d.cards = make([]models.Card, 0, len(models.Ranks)*len(models.Suits)*deckCopies)
	for i := 0; i < deckCopies; i++ {
		for _, rank := range models.Ranks {
			for _, suit := range models.Suits {
				d.cards = append(d.cards, models.Card{ID: uuid.New(), Rank: rank, Suit: suit})
			}
		}
	}
}

// DrawRandom removes and returns one uniformly random card. An exhausted
// deck regenerates first, so the draw never observably fails.
func (d *Deck) DrawRandom() models.Card {
	if len(d.cards) == 0 {
		d.Regenerate()
	}
	idx := d.intn(len(d.cards))
	card := d.cards[idx]
	d.cards[idx] = d.cards[len(d.cards)-1]
	d.cards = d.cards[:len(d.cards)-1]
	return card
}

// Remaining returns the number of cards left before the next regeneration.
func (d *Deck) Remaining() int {
	return len(d.cards)
}

func (d *Deck) intn(n int) int {
	if d.rng != nil {
		return d.rng.Intn(n)
	}
	return rand.Intn(n)
}
