// Package rules derives the legal 5-card hands a player can make from
// hole cards plus the shared board, per game variant.
//
// The variants differ only in two integers: how many hole cards are dealt
// and how many of them a hand must use. Hold'em is the degenerate case
// (any 5 of hole+board); Omaha must use exactly 2 hole cards with exactly
// 3 board cards. One parameterized enumerator serves all of them.
package rules

import (
	"fmt"

	"github.com/lox/pokersim/internal/deck"
)

// Variant identifies a game ruleset.
type Variant string

const (
	Holdem Variant = "holdem"
	Omaha4 Variant = "omaha4"
	Omaha5 Variant = "omaha5"
	Omaha6 Variant = "omaha6"
)

// BoardCards is the number of community cards in every supported variant.
const BoardCards = 5

// HandSize is the number of cards in an evaluated hand.
const HandSize = 5

// Variants lists all supported variants.
func Variants() []Variant {
	return []Variant{Holdem, Omaha4, Omaha5, Omaha6}
}

// ParseVariant resolves a variant name like "holdem" or "omaha5".
func ParseVariant(s string) (Variant, error) {
	switch Variant(s) {
	case Holdem, Omaha4, Omaha5, Omaha6:
		return Variant(s), nil
	default:
		return "", fmt.Errorf("unknown variant %q", s)
	}
}

// Rules generates the legal 5-card hand candidates for one variant.
type Rules struct {
	variant       Variant
	holeCards     int
	holeCardsUsed int // 0 means any mix of hole and board cards
}

// ForVariant returns the rules for a variant.
func ForVariant(v Variant) (Rules, error) {
	switch v {
	case Holdem:
		return Rules{variant: v, holeCards: 2}, nil
	case Omaha4:
		return Rules{variant: v, holeCards: 4, holeCardsUsed: 2}, nil
	case Omaha5:
		return Rules{variant: v, holeCards: 5, holeCardsUsed: 2}, nil
	case Omaha6:
		return Rules{variant: v, holeCards: 6, holeCardsUsed: 2}, nil
	default:
		return Rules{}, fmt.Errorf("unknown variant %q", v)
	}
}

// Variant returns the variant these rules implement.
func (r Rules) Variant() Variant {
	return r.variant
}

// HoleCards returns the number of hole cards dealt to each player.
func (r Rules) HoleCards() int {
	return r.holeCards
}

// GenerateValidHands enumerates every legal 5-card hand from the player's
// hole cards and the shared board. For Omaha variants each hand uses
// exactly 2 hole cards and exactly 3 board cards; combinations using any
// other split never appear.
func (r Rules) GenerateValidHands(hole, board []deck.Card) ([][]deck.Card, error) {
	if len(hole) != r.holeCards {
		return nil, fmt.Errorf("%s: expected %d hole cards, got %d", r.variant, r.holeCards, len(hole))
	}
	if len(board) != BoardCards {
		return nil, fmt.Errorf("%s: expected %d board cards, got %d", r.variant, BoardCards, len(board))
	}

	hands := make([][]deck.Card, 0, r.CountValidHands())

	if r.holeCardsUsed == 0 {
		all := make([]deck.Card, 0, len(hole)+len(board))
		all = append(all, hole...)
		all = append(all, board...)
		return append(hands, combinations(all, HandSize)...), nil
	}

	boardUsed := HandSize - r.holeCardsUsed
	for _, holePart := range combinations(hole, r.holeCardsUsed) {
		for _, boardPart := range combinations(board, boardUsed) {
			hand := make([]deck.Card, 0, HandSize)
			hand = append(hand, holePart...)
			hand = append(hand, boardPart...)
			hands = append(hands, hand)
		}
	}
	return hands, nil
}

// CountValidHands returns the closed-form number of candidates
// GenerateValidHands produces, without materializing them.
func (r Rules) CountValidHands() int {
	if r.holeCardsUsed == 0 {
		return binomial(r.holeCards+BoardCards, HandSize)
	}
	return binomial(r.holeCards, r.holeCardsUsed) * binomial(BoardCards, HandSize-r.holeCardsUsed)
}

// combinations enumerates all k-card subsets of cards in lexicographic
// index order.
func combinations(cards []deck.Card, k int) [][]deck.Card {
	if k > len(cards) {
		return nil
	}

	var result [][]deck.Card
	indices := make([]int, k)
	for i := range indices {
		indices[i] = i
	}

	for {
		combo := make([]deck.Card, k)
		for i, idx := range indices {
			combo[i] = cards[idx]
		}
		result = append(result, combo)

		// Advance to the next combination, rightmost index first.
		i := k - 1
		for i >= 0 && indices[i] == len(cards)-k+i {
			i--
		}
		if i < 0 {
			return result
		}
		indices[i]++
		for j := i + 1; j < k; j++ {
			indices[j] = indices[j-1] + 1
		}
	}
}

func binomial(n, k int) int {
	if k < 0 || k > n {
		return 0
	}
	if k > n-k {
		k = n - k
	}
	result := 1
	for i := 0; i < k; i++ {
		result = result * (n - i) / (i + 1)
	}
	return result
}
