// Package evaluator classifies 5-card poker hands into the ten ranking
// categories and scores them on a single total order.
package evaluator

import (
	"errors"
	"fmt"

	"github.com/lox/pokersim/internal/deck"
	"github.com/lox/pokersim/internal/rules"
)

// ErrInvalidHandSize is returned when a hand does not contain exactly 5 cards.
var ErrInvalidHandSize = errors.New("invalid hand size")

// ErrNoCandidates is returned by FindBestHand when given no hands.
var ErrNoCandidates = errors.New("no candidate hands")

// Evaluate classifies a 5-card hand.
func Evaluate(cards []deck.Card) (HandRank, error) {
	if len(cards) != rules.HandSize {
		return HandRank{}, fmt.Errorf("%w: got %d cards, want %d", ErrInvalidHandSize, len(cards), rules.HandSize)
	}

	sorted := deck.SortByRankDesc(cards)

	flush := len(deck.GroupBySuit(sorted)) == 1

	straightHigh := straightHighCard(sorted)
	straight := straightHigh != 0

	// Rank multiplicities, largest group first, equal groups by rank
	// descending. Drives the pair/trips/quads classification.
	groups := rankGroups(sorted)

	var t HandType
	var primary, kickers []deck.Rank

	switch {
	case flush && straight && straightHigh == deck.Ace:
		t = RoyalFlush
		primary = []deck.Rank{deck.Ace}
	case flush && straight:
		t = StraightFlush
		primary = []deck.Rank{straightHigh}
	case groups[0].count == 4:
		t = FourOfAKind
		primary = []deck.Rank{groups[0].rank}
		kickers = []deck.Rank{groups[1].rank}
	case groups[0].count == 3 && groups[1].count == 2:
		t = FullHouse
		primary = []deck.Rank{groups[0].rank, groups[1].rank}
	case flush:
		t = Flush
		primary = []deck.Rank{sorted[0].Rank}
		kickers = ranksOf(sorted[1:])
	case straight:
		t = Straight
		primary = []deck.Rank{straightHigh}
	case groups[0].count == 3:
		t = ThreeOfAKind
		primary = []deck.Rank{groups[0].rank}
		kickers = []deck.Rank{groups[1].rank, groups[2].rank}
	case groups[0].count == 2 && groups[1].count == 2:
		t = TwoPair
		primary = []deck.Rank{groups[0].rank, groups[1].rank}
		kickers = []deck.Rank{groups[2].rank}
	case groups[0].count == 2:
		t = OnePair
		primary = []deck.Rank{groups[0].rank}
		kickers = []deck.Rank{groups[1].rank, groups[2].rank, groups[3].rank}
	default:
		t = HighCard
		primary = []deck.Rank{sorted[0].Rank}
		kickers = ranksOf(sorted[1:])
	}

	return HandRank{
		Type:         t,
		Score:        computeScore(t, primary, kickers),
		PrimaryRanks: primary,
		Kickers:      kickers,
		Cards:        sorted,
	}, nil
}

// FindBestHand evaluates every candidate and returns the one with maximum
// score. When several candidates tie on score, any maximal hand may be
// returned; only score equality is guaranteed.
func FindBestHand(candidates [][]deck.Card) (HandRank, error) {
	if len(candidates) == 0 {
		return HandRank{}, ErrNoCandidates
	}

	var best HandRank
	for i, candidate := range candidates {
		rank, err := Evaluate(candidate)
		if err != nil {
			return HandRank{}, err
		}
		if i == 0 || rank.Score > best.Score {
			best = rank
		}
	}
	return best, nil
}

// EvaluateBestHand composes candidate generation with best-hand selection:
// the strongest legal 5-card hand for the variant's rules.
func EvaluateBestHand(hole, board []deck.Card, r rules.Rules) (HandRank, error) {
	candidates, err := r.GenerateValidHands(hole, board)
	if err != nil {
		return HandRank{}, err
	}
	return FindBestHand(candidates)
}

// straightHighCard returns the high card of a straight formed by the
// 5 rank-descending cards, or 0 if they do not form one. The wheel
// A-5-4-3-2 reports 5, the Ace counting low.
func straightHighCard(sorted []deck.Card) deck.Rank {
	for i := 0; i < len(sorted)-1; i++ {
		if sorted[i].Rank == sorted[i+1].Rank {
			return 0
		}
	}

	if sorted[0].Rank-sorted[len(sorted)-1].Rank == 4 {
		return sorted[0].Rank
	}

	// Wheel: A-5-4-3-2 sorts as [A 5 4 3 2].
	if sorted[0].Rank == deck.Ace && sorted[1].Rank == deck.Five && sorted[1].Rank-sorted[4].Rank == 3 {
		return deck.Five
	}

	return 0
}

type rankGroup struct {
	rank  deck.Rank
	count int
}

// rankGroups collapses rank-descending cards into (rank, count) groups
// ordered by count descending, then rank descending.
func rankGroups(sorted []deck.Card) []rankGroup {
	var groups []rankGroup
	for _, card := range sorted {
		if len(groups) > 0 && groups[len(groups)-1].rank == card.Rank {
			groups[len(groups)-1].count++
		} else {
			groups = append(groups, rankGroup{rank: card.Rank, count: 1})
		}
	}

	// Insertion sort by count desc; input is already rank desc, and the
	// sort is stable, so equal counts stay rank-ordered.
	for i := 1; i < len(groups); i++ {
		for j := i; j > 0 && groups[j].count > groups[j-1].count; j-- {
			groups[j], groups[j-1] = groups[j-1], groups[j]
		}
	}
	return groups
}

func ranksOf(cards []deck.Card) []deck.Rank {
	ranks := make([]deck.Rank, len(cards))
	for i, card := range cards {
		ranks[i] = card.Rank
	}
	return ranks
}
