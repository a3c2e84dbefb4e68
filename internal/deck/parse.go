package deck

import "fmt"

// ParseCard parses compact card notation like "As", "Td" or "9h".
// "10s" is accepted as an alias for "Ts".
func ParseCard(s string) (Card, error) {
	if len(s) < 2 || len(s) > 3 {
		return Card{}, fmt.Errorf("invalid card %q", s)
	}

	rankStr, suitStr := s[:len(s)-1], s[len(s)-1]

	var rank Rank
	switch rankStr {
	case "2", "3", "4", "5", "6", "7", "8", "9":
		rank = Rank(rankStr[0] - '0')
	case "T", "t", "10":
		rank = Ten
	case "J", "j":
		rank = Jack
	case "Q", "q":
		rank = Queen
	case "K", "k":
		rank = King
	case "A", "a":
		rank = Ace
	default:
		return Card{}, fmt.Errorf("invalid card rank %q", rankStr)
	}

	var suit Suit
	switch suitStr {
	case 's', 'S':
		suit = Spades
	case 'h', 'H':
		suit = Hearts
	case 'd', 'D':
		suit = Diamonds
	case 'c', 'C':
		suit = Clubs
	default:
		return Card{}, fmt.Errorf("invalid card suit %q", string(suitStr))
	}

	return Card{Rank: rank, Suit: suit}, nil
}

// MustParse parses cards or panics. Test and fixture use only.
func MustParse(strs ...string) []Card {
	cards := make([]Card, len(strs))
	for i, s := range strs {
		c, err := ParseCard(s)
		if err != nil {
			panic(err)
		}
		cards[i] = c
	}
	return cards
}
