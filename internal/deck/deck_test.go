package deck

import (
	"errors"
	"testing"
)

func TestNewDeck(t *testing.T) {
	d := NewSeeded(42)

	if d.Remaining() != Size {
		t.Errorf("expected %d cards, got %d", Size, d.Remaining())
	}

	seen := make(map[Card]bool)
	for i := 0; i < Size; i++ {
		card, err := d.Deal()
		if err != nil {
			t.Fatalf("deal %d: %v", i, err)
		}
		if seen[card] {
			t.Errorf("duplicate card %s", card)
		}
		seen[card] = true
	}

	if _, err := d.Deal(); !errors.Is(err, ErrDeckExhausted) {
		t.Errorf("expected ErrDeckExhausted, got %v", err)
	}
}

func TestShuffleIsPermutation(t *testing.T) {
	d := NewSeeded(42)

	before := make(map[Card]bool)
	for _, card := range d.cards {
		before[card] = true
	}

	d.Shuffle()

	if len(d.cards) != Size {
		t.Fatalf("shuffle changed deck size to %d", len(d.cards))
	}
	for _, card := range d.cards {
		if !before[card] {
			t.Errorf("shuffle introduced card %s", card)
		}
	}
}

func TestShuffleResetsCursor(t *testing.T) {
	d := NewSeeded(42)
	d.Shuffle()
	if _, err := d.DealMany(10); err != nil {
		t.Fatal(err)
	}
	if d.Remaining() != Size-10 {
		t.Errorf("remaining = %d, want %d", d.Remaining(), Size-10)
	}

	d.Shuffle()
	if d.Remaining() != Size {
		t.Errorf("remaining after reshuffle = %d, want %d", d.Remaining(), Size)
	}
}

func TestSeededDeterminism(t *testing.T) {
	d1 := NewSeeded(99)
	d2 := NewSeeded(99)

	for round := 0; round < 3; round++ {
		d1.Shuffle()
		d2.Shuffle()

		c1, err1 := d1.DealMany(10)
		c2, err2 := d2.DealMany(10)
		if err1 != nil || err2 != nil {
			t.Fatalf("deal failed: %v %v", err1, err2)
		}
		for i := range c1 {
			if c1[i] != c2[i] {
				t.Fatalf("round %d card %d: %s != %s", round, i, c1[i], c2[i])
			}
		}
	}
}

func TestDifferentSeedsDiffer(t *testing.T) {
	d1 := NewSeeded(1)
	d2 := NewSeeded(2)
	d1.Shuffle()
	d2.Shuffle()

	c1, _ := d1.DealMany(Size)
	c2, _ := d2.DealMany(Size)

	same := true
	for i := range c1 {
		if c1[i] != c2[i] {
			same = false
			break
		}
	}
	if same {
		t.Error("different seeds produced identical shuffles")
	}
}

func TestDealManyNoPartial(t *testing.T) {
	d := NewSeeded(7)
	if _, err := d.DealMany(50); err != nil {
		t.Fatal(err)
	}

	remaining := d.Remaining()
	if _, err := d.DealMany(5); !errors.Is(err, ErrDeckExhausted) {
		t.Fatalf("expected ErrDeckExhausted, got %v", err)
	}
	if d.Remaining() != remaining {
		t.Errorf("failed deal consumed cards: %d -> %d", remaining, d.Remaining())
	}
}

func TestRemove(t *testing.T) {
	d := NewSeeded(7)
	fixed := MustParseCards("AsAh")
	d.Remove(fixed)

	if d.Len() != Size-2 {
		t.Fatalf("expected %d cards after remove, got %d", Size-2, d.Len())
	}

	cards, err := d.DealMany(Size - 2)
	if err != nil {
		t.Fatal(err)
	}
	for _, card := range cards {
		for _, f := range fixed {
			if card == f {
				t.Errorf("removed card %s was dealt", card)
			}
		}
	}
}

func TestClone(t *testing.T) {
	d := NewSeeded(123)
	d.Shuffle()
	if _, err := d.DealMany(5); err != nil {
		t.Fatal(err)
	}

	clone := d.Clone()

	// Clone replays exactly what the original produces.
	c1, err1 := d.DealMany(10)
	c2, err2 := clone.DealMany(10)
	if err1 != nil || err2 != nil {
		t.Fatalf("deal failed: %v %v", err1, err2)
	}
	for i := range c1 {
		if c1[i] != c2[i] {
			t.Fatalf("card %d: %s != %s", i, c1[i], c2[i])
		}
	}

	// Shuffling the clone must produce the same permutation as shuffling
	// the original, from identical RNG state.
	d.Shuffle()
	clone.Shuffle()
	c1, _ = d.DealMany(Size)
	c2, _ = clone.DealMany(Size)
	for i := range c1 {
		if c1[i] != c2[i] {
			t.Fatalf("post-shuffle card %d: %s != %s", i, c1[i], c2[i])
		}
	}
}

func TestCloneIndependence(t *testing.T) {
	d := NewSeeded(5)
	d.Shuffle()
	clone := d.Clone()

	if _, err := clone.DealMany(20); err != nil {
		t.Fatal(err)
	}
	if d.Remaining() != Size {
		t.Errorf("dealing from clone advanced original cursor to %d", Size-d.Remaining())
	}
}
