// Package evaluator ranks showdown hands. Given two hole cards and three to
// five community cards it enumerates every 5-card subset (21 at the river),
// classifies each and keeps the strongest. The enumeration is cheap enough
// per showdown that no precomputed lookup tables are needed.
package evaluator

import (
	"errors"
	"fmt"
	"sort"

	"github.com/cardroomhq/cardroom/internal/deck"
)

// ErrMalformedInput is returned for duplicate cards or wrong card counts.
var ErrMalformedInput = errors.New("malformed evaluator input")

// Hand is the best five-card hand found for a seat, cards sorted
// ascending by value.
type Hand struct {
	Cards []deck.Card
	Rank  HandRank
}

// Evaluate returns the best five-card hand from two hole cards and
// 3..5 community cards.
func Evaluate(hole []deck.Card, community []deck.Card) (Hand, error) {
	if len(hole) != 2 {
		return Hand{}, fmt.Errorf("%w: want 2 hole cards, got %d", ErrMalformedInput, len(hole))
	}
	if len(community) < 3 || len(community) > 5 {
		return Hand{}, fmt.Errorf("%w: want 3-5 community cards, got %d", ErrMalformedInput, len(community))
	}

	all := make([]deck.Card, 0, 7)
	all = append(all, hole...)
	all = append(all, community...)

	seen := make(map[deck.Card]bool, len(all))
	for _, c := range all {
		if err := c.Validate(); err != nil {
			return Hand{}, fmt.Errorf("%w: %v", ErrMalformedInput, err)
		}
		if seen[c] {
			return Hand{}, fmt.Errorf("%w: duplicate card %s", ErrMalformedInput, c)
		}
		seen[c] = true
	}

	var best Hand
	forEachFive(all, func(five []deck.Card) {
		h := classify(five)
		if best.Rank == NoHand || Compare(h, best) > 0 {
			best = h
		}
	})
	return best, nil
}

// forEachFive calls fn with every 5-card subset of cards. fn must copy if it
// retains the slice; classify does.
func forEachFive(cards []deck.Card, fn func([]deck.Card)) {
	n := len(cards)
	pick := make([]deck.Card, 5)
	for a := 0; a < n-4; a++ {
		for b := a + 1; b < n-3; b++ {
			for c := b + 1; c < n-2; c++ {
				for d := c + 1; d < n-1; d++ {
					for e := d + 1; e < n; e++ {
						pick[0], pick[1], pick[2], pick[3], pick[4] =
							cards[a], cards[b], cards[c], cards[d], cards[e]
						fn(pick)
					}
				}
			}
		}
	}
}

// classify ranks exactly five cards.
func classify(five []deck.Card) Hand {
	cards := make([]deck.Card, 5)
	copy(cards, five)
	sort.Slice(cards, func(i, j int) bool { return cards[i].Value() < cards[j].Value() })

	flush := true
	for _, c := range cards[1:] {
		if c.Suit != cards[0].Suit {
			flush = false
			break
		}
	}

	straightHigh := straightHighValue(cards)

	counts := make(map[int]int, 5)
	for _, c := range cards {
		counts[c.Value()]++
	}

	var rank HandRank
	switch {
	case flush && straightHigh == 14:
		rank = RoyalFlush
	case flush && straightHigh > 0:
		rank = StraightFlush
	case hasCount(counts, 4):
		rank = FourOfAKind
	case hasCount(counts, 3) && hasCount(counts, 2):
		rank = FullHouse
	case flush:
		rank = Flush
	case straightHigh > 0:
		rank = Straight
	case hasCount(counts, 3):
		rank = ThreeOfAKind
	case pairCount(counts) == 2:
		rank = TwoPair
	case pairCount(counts) == 1:
		rank = OnePair
	default:
		rank = HighCard
	}

	return Hand{Cards: cards, Rank: rank}
}

// straightHighValue returns the top value of a straight, 5 for the wheel
// A-2-3-4-5, or 0 when the cards are not a straight. Input must be sorted
// ascending.
func straightHighValue(cards []deck.Card) int {
	// Wheel: 2,3,4,5,A sorted ascending.
	if cards[0].Value() == 2 && cards[1].Value() == 3 && cards[2].Value() == 4 &&
		cards[3].Value() == 5 && cards[4].Value() == 14 {
		return 5
	}
	for i := 1; i < 5; i++ {
		if cards[i].Value() != cards[i-1].Value()+1 {
			return 0
		}
	}
	return cards[4].Value()
}

func hasCount(counts map[int]int, n int) bool {
	for _, c := range counts {
		if c == n {
			return true
		}
	}
	return false
}

func pairCount(counts map[int]int) int {
	pairs := 0
	for _, c := range counts {
		if c == 2 {
			pairs++
		}
	}
	return pairs
}

// Compare returns 1 if a beats b, -1 if b beats a, 0 on an exact tie.
func Compare(a, b Hand) int {
	if a.Rank != b.Rank {
		if a.Rank > b.Rank {
			return 1
		}
		return -1
	}

	ta, tb := tiebreak(a), tiebreak(b)
	for i := range ta {
		if ta[i] != tb[i] {
			if ta[i] > tb[i] {
				return 1
			}
			return -1
		}
	}
	return 0
}

// tiebreak returns card values in descending significance for the hand's
// rank, so equal-rank hands compare lexicographically.
func tiebreak(h Hand) []int {
	counts := make(map[int]int, 5)
	for _, c := range h.Cards {
		counts[c.Value()]++
	}

	// Group values by multiplicity, highest value first within a group.
	byCount := func(n int) []int {
		var vals []int
		for v, c := range counts {
			if c == n {
				vals = append(vals, v)
			}
		}
		sort.Sort(sort.Reverse(sort.IntSlice(vals)))
		return vals
	}

	switch h.Rank {
	case StraightFlush, Straight, RoyalFlush:
		high := h.Cards[4].Value()
		if h.Cards[0].Value() == 2 && h.Cards[4].Value() == 14 {
			high = 5 // wheel plays as 5-high
		}
		return []int{high}
	case FourOfAKind:
		return append(byCount(4), byCount(1)...)
	case FullHouse:
		return append(byCount(3), byCount(2)...)
	case ThreeOfAKind:
		return append(byCount(3), byCount(1)...)
	case TwoPair:
		return append(byCount(2), byCount(1)...)
	case OnePair:
		return append(byCount(2), byCount(1)...)
	default: // Flush, HighCard
		return byCount(1)
	}
}
