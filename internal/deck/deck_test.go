package deck

import (
	"errors"
	"testing"

	"github.com/cardroomhq/cardroom/internal/randutil"
)

func TestNewDeckHas52UniqueCards(t *testing.T) {
	d := New(randutil.New(1))

	if d.Remaining() != 52 {
		t.Fatalf("Remaining() = %d, want 52", d.Remaining())
	}

	cards, err := d.Deal(52)
	if err != nil {
		t.Fatalf("Deal(52): %v", err)
	}

	seen := make(map[Card]bool, 52)
	for _, c := range cards {
		if err := c.Validate(); err != nil {
			t.Errorf("invalid card dealt: %v", err)
		}
		if seen[c] {
			t.Errorf("duplicate card dealt: %s", c)
		}
		seen[c] = true
	}
}

func TestDealRemovesFromHead(t *testing.T) {
	d := NewOrdered(MustParse("As", "Kd", "2c")...)

	first, err := d.Deal(2)
	if err != nil {
		t.Fatalf("Deal(2): %v", err)
	}
	if first[0].String() != "A♠" || first[1].String() != "K♦" {
		t.Errorf("unexpected deal order: %v", first)
	}
	if d.Remaining() != 1 {
		t.Errorf("Remaining() = %d, want 1", d.Remaining())
	}
}

func TestDealExhausted(t *testing.T) {
	d := NewOrdered(MustParse("As")...)

	if _, err := d.Deal(2); !errors.Is(err, ErrDeckExhausted) {
		t.Errorf("Deal(2) error = %v, want ErrDeckExhausted", err)
	}
	// A failed deal leaves the deck untouched.
	if d.Remaining() != 1 {
		t.Errorf("Remaining() = %d, want 1", d.Remaining())
	}
}

func TestShuffleIsSeedDeterministic(t *testing.T) {
	a, _ := New(randutil.New(42)).Deal(52)
	b, _ := New(randutil.New(42)).Deal(52)
	c, _ := New(randutil.New(43)).Deal(52)

	same := true
	for i := range a {
		if a[i] != b[i] {
			same = false
			break
		}
	}
	if !same {
		t.Error("same seed should produce the same permutation")
	}

	diff := false
	for i := range a {
		if a[i] != c[i] {
			diff = true
			break
		}
	}
	if !diff {
		t.Error("different seeds should produce different permutations")
	}
}
