package deck

import (
	"encoding/json"
	"fmt"
)

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

// Rank represents a card rank. The numeric value doubles as the
// comparison value: Two is 2 through Ace at 14.
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
	switch {
	case r >= Two && r <= Ten:
		return fmt.Sprintf("%d", int(r))
	case r == Jack:
		return "J"
	case r == Queen:
		return "Q"
	case r == King:
		return "K"
	case r == Ace:
		return "A"
	default:
		return "?"
	}
}

// Card represents an immutable playing card
type Card struct {
	Rank Rank
	Suit Suit
}

// NewCard creates a card, rejecting out-of-range ranks and suits.
func NewCard(rank Rank, suit Suit) (Card, error) {
	c := Card{Rank: rank, Suit: suit}
	if err := c.Validate(); err != nil {
		return Card{}, err
	}
	return c, nil
}

// Validate checks the card is a member of the standard 52.
func (c Card) Validate() error {
	if c.Rank < Two || c.Rank > Ace {
		return fmt.Errorf("invalid card rank value %d", int(c.Rank))
	}
	if c.Suit < Spades || c.Suit > Clubs {
		return fmt.Errorf("invalid card suit %d", int(c.Suit))
	}
	return nil
}

// Value returns the numeric comparison value of the card (2..14, aces high)
func (c Card) Value() int {
	return int(c.Rank)
}

// String returns the short representation of a card (e.g., "A♠")
func (c Card) String() string {
	return c.Rank.String() + c.Suit.String()
}

type cardJSON struct {
	Rank  string `json:"rank"`
	Suit  string `json:"suit"`
	Value int    `json:"value"`
}

// MarshalJSON renders the wire form used in snapshots.
func (c Card) MarshalJSON() ([]byte, error) {
	return json.Marshal(cardJSON{Rank: c.Rank.String(), Suit: c.Suit.String(), Value: c.Value()})
}
