package deck

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrInvalidCard is returned when a rank or suit falls outside the legal domain.
var ErrInvalidCard = errors.New("invalid card")

// Suit represents a card suit
type Suit int

const (
	Spades Suit = iota
	Hearts
	Diamonds
	Clubs
)

// String returns the string representation of a suit
func (s Suit) String() string {
	switch s {
	case Spades:
		return "♠"
	case Hearts:
		return "♥"
	case Diamonds:
		return "♦"
	case Clubs:
		return "♣"
	default:
		return "?"
	}
}

// Rank represents a card rank. Aces are high (14) but count low in the
// wheel straight A-2-3-4-5.
type Rank int

const (
	Two Rank = iota + 2
	Three
	Four
	Five
	Six
	Seven
	Eight
	Nine
	Ten
	Jack
	Queen
	King
	Ace
)

// String returns the string representation of a rank
func (r Rank) String() string {
	switch r {
	case Two:
		return "2"
	case Three:
		return "3"
	case Four:
		return "4"
	case Five:
		return "5"
	case Six:
		return "6"
	case Seven:
		return "7"
	case Eight:
		return "8"
	case Nine:
		return "9"
	case Ten:
		return "T"
	case Jack:
		return "J"
	case Queen:
		return "Q"
	case King:
		return "K"
	case Ace:
		return "A"
	default:
		return "?"
	}
}

// Card represents a playing card
type Card struct {
	Suit Suit
	Rank Rank
}

// NewCard creates a new card, validating that rank and suit are in range.
func NewCard(suit Suit, rank Rank) (Card, error) {
	if suit < Spades || suit > Clubs {
		return Card{}, fmt.Errorf("%w: suit %d", ErrInvalidCard, suit)
	}
	if rank < Two || rank > Ace {
		return Card{}, fmt.Errorf("%w: rank %d", ErrInvalidCard, rank)
	}
	return Card{Suit: suit, Rank: rank}, nil
}

// String returns the string representation of a card (e.g., "A♠")
func (c Card) String() string {
	return fmt.Sprintf("%s%s", c.Rank, c.Suit)
}

// Index returns the card's position in the 0-51 encoding used for set
// membership: (rank-2)*4 + suit.
func (c Card) Index() int {
	return (int(c.Rank)-2)*4 + int(c.Suit)
}

// ParseCard parses a two-character card like "As" or "td".
func ParseCard(s string) (Card, error) {
	if len(s) != 2 {
		return Card{}, fmt.Errorf("%w: %q", ErrInvalidCard, s)
	}

	var rank Rank
	switch strings.ToUpper(s[:1]) {
	case "2":
		rank = Two
	case "3":
		rank = Three
	case "4":
		rank = Four
	case "5":
		rank = Five
	case "6":
		rank = Six
	case "7":
		rank = Seven
	case "8":
		rank = Eight
	case "9":
		rank = Nine
	case "T":
		rank = Ten
	case "J":
		rank = Jack
	case "Q":
		rank = Queen
	case "K":
		rank = King
	case "A":
		rank = Ace
	default:
		return Card{}, fmt.Errorf("%w: unknown rank %q", ErrInvalidCard, s[:1])
	}

	var suit Suit
	switch strings.ToLower(s[1:]) {
	case "s":
		suit = Spades
	case "h":
		suit = Hearts
	case "d":
		suit = Diamonds
	case "c":
		suit = Clubs
	default:
		return Card{}, fmt.Errorf("%w: unknown suit %q", ErrInvalidCard, s[1:])
	}

	return Card{Suit: suit, Rank: rank}, nil
}

// ParseCards parses concatenated card notation like "AsKdQh".
func ParseCards(s string) ([]Card, error) {
	if len(s)%2 != 0 {
		return nil, fmt.Errorf("%w: odd-length card string %q", ErrInvalidCard, s)
	}

	cards := make([]Card, 0, len(s)/2)
	for i := 0; i < len(s); i += 2 {
		card, err := ParseCard(s[i : i+2])
		if err != nil {
			return nil, err
		}
		cards = append(cards, card)
	}
	return cards, nil
}

// MustParseCards parses card notation and panics on error. For tests and
// fixed fixtures only.
func MustParseCards(s string) []Card {
	cards, err := ParseCards(s)
	if err != nil {
		panic(err)
	}
	return cards
}

// FormatCards renders a card slice like "A♠ K♦".
func FormatCards(cards []Card) string {
	parts := make([]string, len(cards))
	for i, card := range cards {
		parts[i] = card.String()
	}
	return strings.Join(parts, " ")
}

// GroupByRank buckets cards by rank, preserving input order within each group.
func GroupByRank(cards []Card) map[Rank][]Card {
	groups := make(map[Rank][]Card)
	for _, card := range cards {
		groups[card.Rank] = append(groups[card.Rank], card)
	}
	return groups
}

// GroupBySuit buckets cards by suit, preserving input order within each group.
func GroupBySuit(cards []Card) map[Suit][]Card {
	groups := make(map[Suit][]Card)
	for _, card := range cards {
		groups[card.Suit] = append(groups[card.Suit], card)
	}
	return groups
}

// SortByRankDesc returns a copy of cards sorted highest rank first.
// Cards of equal rank keep their input order.
func SortByRankDesc(cards []Card) []Card {
	sorted := make([]Card, len(cards))
	copy(sorted, cards)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Rank > sorted[j].Rank
	})
	return sorted
}

// CardSet represents a set of cards using a bitset for fast membership
// tests. Each card maps to the bit at its Index.
type CardSet uint64

// NewCardSet creates a CardSet from a slice of cards
func NewCardSet(cards []Card) CardSet {
	var cs CardSet
	for _, card := range cards {
		cs.Add(card)
	}
	return cs
}

// Add adds a card to the set
func (cs *CardSet) Add(card Card) {
	*cs |= 1 << card.Index()
}

// Contains checks if a card is in the set
func (cs CardSet) Contains(card Card) bool {
	return cs&(1<<card.Index()) != 0
}
