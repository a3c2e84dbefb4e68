package game

// Phase is a stage of the hand state machine.
type Phase int

const (
	Idle Phase = iota
	PreFlop
	Flop
	Turn
	River
	Showdown
	GameOver
)

func (p Phase) String() string {
	return [...]string{"IDLE", "PRE_FLOP", "FLOP", "TURN", "RIVER", "SHOWDOWN", "GAME_OVER"}[p]
}

// Betting reports whether player actions are accepted in this phase.
func (p Phase) Betting() bool {
	return p >= PreFlop && p <= River
}
