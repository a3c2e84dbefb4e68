package game

import "errors"

var (
	// ErrNotYourTurn rejects an action from anyone but the current actor.
	ErrNotYourTurn = errors.New("not your turn")

	// ErrIllegalAction rejects an action that is out of order for the
	// betting state: check without parity, bet over an existing bet,
	// raise at or below the current bet, and malformed amounts.
	ErrIllegalAction = errors.New("illegal action")

	// ErrHandNotRunning rejects actions outside a betting phase,
	// including during auto-advance.
	ErrHandNotRunning = errors.New("no hand in progress")

	// ErrUnknownPlayer rejects intents from names with no seat.
	ErrUnknownPlayer = errors.New("unknown player")

	// ErrNotEnoughSeats is returned when a game starts with fewer than
	// two funded seats.
	ErrNotEnoughSeats = errors.New("not enough seats to start")
)
