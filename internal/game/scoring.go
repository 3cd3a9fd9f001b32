package game

import (
	"sort"

	"github.com/arcana-gg/arcana/internal/models"
)

// HandCategory is the poker-style classification of a played card set.
type HandCategory string

const (
	HandHighCard      HandCategory = "high card"
	HandPair          HandCategory = "pair"
	HandTwoPair       HandCategory = "two pair"
	HandThreeOfAKind  HandCategory = "three of a kind"
	HandStraight      HandCategory = "straight"
	HandFlush         HandCategory = "flush"
	HandFullHouse     HandCategory = "full house"
	HandFourOfAKind   HandCategory = "four of a kind"
	HandStraightFlush HandCategory = "straight flush"
	HandRoyalFlush    HandCategory = "royal flush"
)

// multipliers is the fixed damage scaling table per category.
var multipliers = map[HandCategory]int{
	HandHighCard:      1,
	HandPair:          2,
	HandTwoPair:       2,
	HandThreeOfAKind:  3,
	HandStraight:      4,
	HandFlush:         4,
	HandFullHouse:     4,
	HandFourOfAKind:   7,
	HandStraightFlush: 8,
	HandRoyalFlush:    10,
}

// Score classifies a card set and computes its damage. Unlike standard
// poker this evaluates the FULL input set, not a best-5 subset: every
// played card feeds both the category test and the damage sum. Fewer than
// 5 cards can never make a straight or flush. The function is pure; for a
// fixed multiset the result never varies.
//
// base damage = floor(sum of rank values / 5); total = base * multiplier.
func Score(cards []models.Card) (damage int, category HandCategory, multiplier int) {
	rankCounts := make(map[int]int)
	suitCounts := make(map[string]int)
	sum := 0
	maxRank := 0
	for _, c := range cards {
		v := c.Value()
		rankCounts[v]++
		suitCounts[c.Suit]++
		sum += v
		if v > maxRank {
			maxRank = v
		}
	}

	isFlush := len(cards) >= 5 && len(suitCounts) == 1
	isStraight := hasStraight(rankCounts)

	category = classify(rankCounts, isStraight, isFlush, maxRank)
	multiplier = multipliers[category]
	damage = sum / 5 * multiplier
	return damage, category, multiplier
}

// hasStraight reports whether the distinct ranks contain 5 consecutive
// integers, or the exact ace-low top-5 {2,3,4,5,A}.
func hasStraight(rankCounts map[int]int) bool {
	if len(rankCounts) < 5 {
		return false
	}
	distinct := make([]int, 0, len(rankCounts))
	for r := range rankCounts {
		distinct = append(distinct, r)
	}
	sort.Ints(distinct)

	for i := 0; i+4 < len(distinct); i++ {
		if distinct[i+4]-distinct[i] == 4 {
			return true
		}
	}

	// Ace-low: the five highest distinct ranks are exactly 2,3,4,5,A.
	top5 := distinct[len(distinct)-5:]
	aceLow := [5]int{2, 3, 4, 5, 14}
	for i, r := range top5 {
		if r != aceLow[i] {
			return false
		}
	}
	return true
}

func classify(rankCounts map[int]int, isStraight, isFlush bool, maxRank int) HandCategory {
	// Exact frequency matches, mirroring the product rule: five copies of a
	// rank (possible in the multiplied deck) are not four of a kind.
	var hasFour, hasThree bool
	pairs := 0
	for _, n := range rankCounts {
		switch n {
		case 4:
			hasFour = true
		case 3:
			hasThree = true
		case 2:
			pairs++
		}
	}

	switch {
	case isStraight && isFlush:
		if maxRank == 14 {
			return HandRoyalFlush
		}
		return HandStraightFlush
	case hasFour:
		return HandFourOfAKind
	case hasThree && pairs >= 1:
		return HandFullHouse
	case isFlush:
		return HandFlush
	case isStraight:
		return HandStraight
	case hasThree:
		return HandThreeOfAKind
	case pairs == 2:
		return HandTwoPair
	case pairs >= 1:
		return HandPair
	default:
		return HandHighCard
	}
}
