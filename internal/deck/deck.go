package deck

import (
	"errors"
	"fmt"
	rand "math/rand/v2"

	"github.com/lox/pokersim/internal/randutil"
)

// ErrDeckExhausted is returned when a deal requests more cards than remain.
var ErrDeckExhausted = errors.New("deck exhausted")

// Size is the number of cards in a standard deck.
const Size = 52

// Deck is an ordered sequence of unique cards with a cursor marking the
// next card to deal. The random source is explicit state, threaded through
// construction and cloning, so parallel owners can derive independent
// reproducible streams.
type Deck struct {
	cards  []Card
	cursor int
	src    *rand.PCG
	rng    *rand.Rand
}

// New creates a standard 52-card deck in canonical order with a
// non-deterministic random source.
func New() *Deck {
	return newWithSource(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}

// NewSeeded creates a standard deck whose randomness is a fixed
// deterministic function of seed (splitmix64-mixed PCG, see randutil).
// Identical seeds and identical operation sequences reproduce identical
// card sequences.
func NewSeeded(seed int64) *Deck {
	return newWithSource(randutil.NewPCG(seed))
}

// NewFromSource creates a standard deck over the caller's random source.
// Used by simulation workers that own a per-worker stream.
func NewFromSource(src *rand.PCG) *Deck {
	return newWithSource(src)
}

func newWithSource(src *rand.PCG) *Deck {
	d := &Deck{
		cards: make([]Card, 0, Size),
		src:   src,
		rng:   rand.New(src),
	}
	for suit := Spades; suit <= Clubs; suit++ {
		for rank := Two; rank <= Ace; rank++ {
			d.cards = append(d.cards, Card{Suit: suit, Rank: rank})
		}
	}
	return d
}

// Shuffle performs an in-place Fisher-Yates permutation over all cards
// and resets the deal cursor.
func (d *Deck) Shuffle() {
	for i := len(d.cards) - 1; i > 0; i-- {
		j := d.rng.IntN(i + 1)
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	}
	d.cursor = 0
}

// Deal returns the next card and advances the cursor.
func (d *Deck) Deal() (Card, error) {
	if d.cursor >= len(d.cards) {
		return Card{}, ErrDeckExhausted
	}
	card := d.cards[d.cursor]
	d.cursor++
	return card, nil
}

// DealMany deals n cards in order. If fewer than n cards remain the whole
// call fails; no partial deal is returned.
func (d *Deck) DealMany(n int) ([]Card, error) {
	if n > d.Remaining() {
		return nil, fmt.Errorf("%w: need %d, have %d", ErrDeckExhausted, n, d.Remaining())
	}
	cards := make([]Card, n)
	copy(cards, d.cards[d.cursor:d.cursor+n])
	d.cursor += n
	return cards, nil
}

// Remove filters the specified cards out of the deck and resets the
// cursor. Used to fix known hole cards or board cards before dealing.
func (d *Deck) Remove(cards []Card) {
	removed := NewCardSet(cards)
	kept := d.cards[:0]
	for _, card := range d.cards {
		if !removed.Contains(card) {
			kept = append(kept, card)
		}
	}
	d.cards = kept
	d.cursor = 0
}

// Remaining returns the number of undealt cards.
func (d *Deck) Remaining() int {
	return len(d.cards) - d.cursor
}

// Len returns the total number of cards in the deck, dealt or not.
func (d *Deck) Len() int {
	return len(d.cards)
}

// Clone produces an independent copy with its own card order, cursor and
// random-source state. The clone replays exactly the sequence the
// original would have produced; neither side's operations affect the other.
func (d *Deck) Clone() *Deck {
	src := new(rand.PCG)
	state, _ := d.src.MarshalBinary()
	_ = src.UnmarshalBinary(state)

	cards := make([]Card, len(d.cards))
	copy(cards, d.cards)

	return &Deck{
		cards:  cards,
		cursor: d.cursor,
		src:    src,
		rng:    rand.New(src),
	}
}
