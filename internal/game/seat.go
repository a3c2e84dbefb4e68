package game

import (
	"github.com/cardroomhq/cardroom/internal/deck"
	"github.com/cardroomhq/cardroom/internal/evaluator"
)

// Seat is the per-player mutable state for one chair at the table.
// All mutation goes through the engine; the seat itself enforces no
// betting legality.
type Seat struct {
	ID        string
	Name      string
	Chips     int
	HoleCards []deck.Card
	BestHand  []deck.Card
	HandRank  evaluator.HandRank

	CurrentBet int // chips contributed in the current betting round
	HasFolded  bool
	IsAllIn    bool
	IsOut      bool // busted; participates in no further hand
}

// NewSeat creates a seat with the buy-in stack.
func NewSeat(id, name string, chips int) *Seat {
	return &Seat{ID: id, Name: name, Chips: chips}
}

// CanAct reports whether the seat can take a betting action.
func (s *Seat) CanAct() bool {
	return !s.HasFolded && !s.IsAllIn && !s.IsOut
}

// PayChips moves up to amount from the stack into the pot, clamped to the
// stack. Used for blinds. Returns the amount actually paid.
func (s *Seat) PayChips(amount int) int {
	if amount > s.Chips {
		amount = s.Chips
	}
	s.Chips -= amount
	s.CurrentBet += amount
	if s.Chips == 0 {
		s.IsAllIn = true
	}
	return amount
}

// ApplyAction mutates the seat for a validated action and returns the new
// pot. Legality is the engine's responsibility; a negative stack here is an
// engine bug.
func (s *Seat) ApplyAction(action Action, amount, pot int) int {
	switch action {
	case Fold:
		s.HasFolded = true
	case Check:
		// no-op
	case Call, Bet, Raise:
		s.Chips -= amount
		s.CurrentBet += amount
		pot += amount
		if s.Chips == 0 {
			s.IsAllIn = true
		}
	case AllIn:
		pot += s.Chips
		s.CurrentBet += s.Chips
		s.Chips = 0
		s.IsAllIn = true
	}
	return pot
}

// ResetForRound zeroes the per-round bet between streets.
func (s *Seat) ResetForRound() {
	s.CurrentBet = 0
}

// ResetForHand clears all per-hand state. IsOut is sticky.
func (s *Seat) ResetForHand() {
	s.ResetForRound()
	s.HoleCards = nil
	s.BestHand = nil
	s.HandRank = evaluator.NoHand
	s.HasFolded = false
	s.IsAllIn = false
}

// Status returns the wire status string for snapshots.
func (s *Seat) Status() string {
	switch {
	case s.HasFolded:
		return "folded"
	case s.IsAllIn:
		return "all-in"
	default:
		return "active"
	}
}
