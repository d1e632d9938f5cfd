package evaluator

import (
	"fmt"
	"strings"

	"github.com/lox/pokersim/internal/deck"
)

// HandType is one of the ten hand-ranking categories, ordered weakest to
// strongest.
type HandType int

const (
	HighCard HandType = iota
	OnePair
	TwoPair
	ThreeOfAKind
	Straight
	Flush
	FullHouse
	FourOfAKind
	StraightFlush
	RoyalFlush
)

// NumHandTypes is the number of hand-ranking categories.
const NumHandTypes = 10

// String returns the string representation of a hand type
func (t HandType) String() string {
	switch t {
	case HighCard:
		return "High Card"
	case OnePair:
		return "One Pair"
	case TwoPair:
		return "Two Pair"
	case ThreeOfAKind:
		return "Three of a Kind"
	case Straight:
		return "Straight"
	case Flush:
		return "Flush"
	case FullHouse:
		return "Full House"
	case FourOfAKind:
		return "Four of a Kind"
	case StraightFlush:
		return "Straight Flush"
	case RoyalFlush:
		return "Royal Flush"
	default:
		return "Unknown"
	}
}

// HandRank is the evaluation of a 5-card hand: its category, the ranks
// defining that category, the remaining tie-break ranks, and a single
// score that totally orders all hands.
type HandRank struct {
	Type         HandType
	Score        int64
	PrimaryRanks []deck.Rank
	Kickers      []deck.Rank
	Cards        []deck.Card // the evaluated 5 cards, sorted by rank descending
}

// positional weights for the ordered rank sequence: each successive rank
// is worth a factor of 100 less, so lexicographic comparison of
// primaryRanks++kickers is preserved in the numeric score.
const typeWeight = 10_000_000_000

var rankWeights = [5]int64{100_000_000, 1_000_000, 10_000, 100, 1}

// computeScore encodes a category and its ordered ranks into a single
// comparable score: any hand of a higher type outscores any hand of a
// lower type regardless of ranks.
func computeScore(t HandType, primary, kickers []deck.Rank) int64 {
	score := int64(t) * typeWeight
	i := 0
	for _, r := range primary {
		score += int64(r) * rankWeights[i]
		i++
	}
	for _, r := range kickers {
		score += int64(r) * rankWeights[i]
		i++
	}
	return score
}

// Compare returns 1 if h is the stronger hand, -1 if other is, 0 on a tie.
func (h HandRank) Compare(other HandRank) int {
	switch {
	case h.Score > other.Score:
		return 1
	case h.Score < other.Score:
		return -1
	default:
		return 0
	}
}

// String returns a description like "Full House [A♠ A♥ A♦ K♠ K♥]".
func (h HandRank) String() string {
	cards := make([]string, len(h.Cards))
	for i, card := range h.Cards {
		cards[i] = card.String()
	}
	return fmt.Sprintf("%s [%s]", h.Type, strings.Join(cards, " "))
}
