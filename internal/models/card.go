package models

import "github.com/google/uuid"

// Suit names double as the game's elements.
const (
	SuitFire  = "Fire"
	SuitWater = "Water"
	SuitEarth = "Earth"
	SuitAir   = "Air"
)

// Suits lists the four elemental suits in deck order.
var Suits = []string{SuitFire, SuitAir, SuitEarth, SuitWater}

// Ranks lists card ranks in ascending order of value.
var Ranks = []string{"2", "3", "4", "5", "6", "7", "8", "9", "10", "J", "Q", "K", "A"}

// RankValues maps a rank string to its numeric scoring value.
var RankValues = map[string]int{
	"2": 2, "3": 3, "4": 4, "5": 5, "6": 6, "7": 7, "8": 8, "9": 9,
	"10": 10, "J": 11, "Q": 12, "K": 13, "A": 14,
}

// Card is an immutable playing card. ID is a per-instance identity assigned
// at deal time; rank/suit may repeat across the multiplied deck, the ID
// never does.
type Card struct {
	ID   uuid.UUID `json:"id"`
	Rank string    `json:"rank"`
	Suit string    `json:"suit"`
}

// Value returns the numeric scoring value of the card's rank.
func (c Card) Value() int {
	return RankValues[c.Rank]
}

// SameFace reports whether two cards match by (rank, suit) value, ignoring
// instance identity.
func (c Card) SameFace(o Card) bool {
	return c.Rank == o.Rank && c.Suit == o.Suit
}

// CardSelection is the wire shape clients send when choosing cards.
// ID is optional; when present it pins the exact instance in hand.
type CardSelection struct {
	ID   uuid.UUID `json:"id,omitempty"`
	Rank string    `json:"rank"`
	Suit string    `json:"suit"`
}

// Valid reports whether the selection names a real rank and suit.
func (s CardSelection) Valid() bool {
	if _, ok := RankValues[s.Rank]; !ok {
		return false
	}
	for _, suit := range Suits {
		if s.Suit == suit {
			return true
		}
	}
	return false
}
