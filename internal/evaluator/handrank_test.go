package evaluator

import (
	"testing"

	"github.com/lox/pokersim/internal/deck"
)

func TestComputeScoreTypeDominates(t *testing.T) {
	// The best possible rank sequence of a lower type never reaches the
	// worst possible hand of a higher type.
	lowBest := computeScore(OnePair, []deck.Rank{deck.Ace},
		[]deck.Rank{deck.Ace, deck.Ace, deck.Ace, deck.Ace})
	highWorst := computeScore(TwoPair, []deck.Rank{deck.Three, deck.Two}, []deck.Rank{deck.Two})

	if lowBest >= highWorst {
		t.Errorf("pair score %d >= two pair score %d", lowBest, highWorst)
	}
}

func TestComputeScoreLexicographic(t *testing.T) {
	// A higher rank earlier in the sequence outweighs any later ranks.
	a := computeScore(HighCard, []deck.Rank{deck.Ace},
		[]deck.Rank{deck.Seven, deck.Five, deck.Four, deck.Three})
	b := computeScore(HighCard, []deck.Rank{deck.King},
		[]deck.Rank{deck.Queen, deck.Jack, deck.Ten, deck.Eight})

	if a <= b {
		t.Errorf("ace-high %d should outscore king-high %d", a, b)
	}
}

func TestHandTypeStrings(t *testing.T) {
	names := map[HandType]string{
		HighCard:      "High Card",
		OnePair:       "One Pair",
		TwoPair:       "Two Pair",
		ThreeOfAKind:  "Three of a Kind",
		Straight:      "Straight",
		Flush:         "Flush",
		FullHouse:     "Full House",
		FourOfAKind:   "Four of a Kind",
		StraightFlush: "Straight Flush",
		RoyalFlush:    "Royal Flush",
	}
	for ht, want := range names {
		if ht.String() != want {
			t.Errorf("%d.String() = %q, want %q", ht, ht.String(), want)
		}
	}
}

func TestHandRankString(t *testing.T) {
	rank, err := Evaluate(deck.MustParseCards("AsAhAdKsKh"))
	if err != nil {
		t.Fatal(err)
	}
	want := "Full House [A♠ A♥ A♦ K♠ K♥]"
	if rank.String() != want {
		t.Errorf("String() = %q, want %q", rank.String(), want)
	}
}
