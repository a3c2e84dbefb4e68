package deck

import (
	"errors"
	rand "math/rand/v2"
)

// ErrDeckExhausted is returned when a deal asks for more cards than remain.
// Hitting it mid-hand is an engine bug: a 52-card deck covers any table size.
var ErrDeckExhausted = errors.New("deck exhausted")

// Deck is an ordered one-shot pack of 52 unique cards, uniformly permuted
// at construction. A fresh deck is built for every hand.
type Deck struct {
	cards []Card
}

// New builds a shuffled 52-card deck using the provided RNG.
func New(rng *rand.Rand) *Deck {
	cards := make([]Card, 0, 52)
	for suit := Spades; suit <= Clubs; suit++ {
		for rank := Two; rank <= Ace; rank++ {
			cards = append(cards, Card{Rank: rank, Suit: suit})
		}
	}
	rng.Shuffle(len(cards), func(i, j int) {
		cards[i], cards[j] = cards[j], cards[i]
	})
	return &Deck{cards: cards}
}

// NewOrdered builds a deck that deals the given cards in order. Deterministic
// setups in tests deal from a known order instead of stubbing the RNG.
func NewOrdered(cards ...Card) *Deck {
	return &Deck{cards: cards}
}

// Deal removes and returns the top n cards.
func (d *Deck) Deal(n int) ([]Card, error) {
	if n > len(d.cards) {
		return nil, ErrDeckExhausted
	}
	dealt := d.cards[:n]
	d.cards = d.cards[n:]
	return dealt, nil
}

// Remaining returns the number of undealt cards.
func (d *Deck) Remaining() int {
	return len(d.cards)
}
