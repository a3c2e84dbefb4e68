package game

import "fmt"

// Action is a player action kind.
type Action int

const (
	Fold Action = iota
	Check
	Call
	Bet
	Raise
	AllIn
)

var actionNames = [...]string{"FOLD", "CHECK", "CALL", "BET", "RAISE", "ALL_IN"}

func (a Action) String() string {
	if a < Fold || a > AllIn {
		return "UNKNOWN"
	}
	return actionNames[a]
}

// ParseAction parses the wire name of an action.
func ParseAction(s string) (Action, error) {
	for i, name := range actionNames {
		if s == name {
			return Action(i), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown action %q", ErrIllegalAction, s)
}

// RequiresAmount reports whether the action carries an amount on the wire.
// Fold, check and all-in amounts are implied; call amounts are derived by
// the engine, never trusted from the client.
func (a Action) RequiresAmount() bool {
	return a == Bet || a == Raise
}

// Intent is a decoded player action: the kind plus an amount where the kind
// carries one. Amount semantics: for Bet the opening wager, for Raise the
// total currentBet the seat is raising to.
type Intent struct {
	Action Action
	Amount int
}

func (i Intent) String() string {
	if i.Action.RequiresAmount() {
		return fmt.Sprintf("%s %d", i.Action, i.Amount)
	}
	return i.Action.String()
}
