package game

import (
	"fmt"
	rand "math/rand/v2"

	"github.com/charmbracelet/log"

	"github.com/cardroomhq/cardroom/internal/deck"
	"github.com/cardroomhq/cardroom/internal/evaluator"
)

// Config carries the table stakes for an engine instance.
type Config struct {
	SmallBlind int
	BigBlind   int
	BuyIn      int
}

// SeatSpec names a seat joining the game.
type SeatSpec struct {
	ID   string
	Name string
}

// StartResult reports what a new hand needs from the caller.
type StartResult struct {
	GameOver    bool // fewer than two live seats remain; no hand started
	AutoAdvance bool // blinds left at most one actor; schedule street pacing
}

// ActionResult reports the consequences of one applied action so the room
// executor knows what to broadcast and which timers to schedule.
type ActionResult struct {
	Seat         *Seat
	Applied      Intent // the action as applied, after any all-in conversion
	Converted    bool   // an unaffordable amount was converted to all-in
	Notification string // player-directed note when Converted
	StreetDealt  bool   // a new street was dealt in normal play
	AutoAdvance  bool   // auto-advance engaged; schedule street pacing
	HandComplete bool   // showdown ran or a lone survivor was paid
}

// Engine is the authoritative state machine for one game: it owns the seats,
// deck, pot and phase, and applies one intent at a time. It is single-owner
// state: the room executor is the only goroutine that touches it.
type Engine struct {
	logger *log.Logger
	rng    *rand.Rand

	gameID string
	cfg    Config

	seats  []*Seat // dealing order, stable for the life of the game
	active []*Seat // seats not out, rebuilt each hand
	button int     // index into seats of the dealer button

	deck      *deck.Deck
	community []deck.Card
	pot       int
	phase     Phase

	currentHighestBet int
	dealerPos         int // indexes into active for the current hand
	sbPos, bbPos      int
	actorPos          int
	acted             map[string]struct{} // seat IDs that acted this round

	autoAdvancing bool
	winners       map[string]int // seat ID -> chips won, set at hand end
	revealed      bool           // best hands computed and visible

	newDeck func() *deck.Deck
}

// Option customises engine construction.
type Option func(*Engine)

// WithDeckFactory overrides deck construction, used by tests to deal known
// cards.
func WithDeckFactory(f func() *deck.Deck) Option {
	return func(e *Engine) { e.newDeck = f }
}

// WithChips seeds individual stacks instead of the uniform buy-in.
func WithChips(chips []int) Option {
	return func(e *Engine) {
		for i, c := range chips {
			if i < len(e.seats) {
				e.seats[i].Chips = c
			}
		}
	}
}

// New creates an engine for the given seats. Chips default to the buy-in.
func New(logger *log.Logger, rng *rand.Rand, gameID string, cfg Config, specs []SeatSpec, opts ...Option) (*Engine, error) {
	if len(specs) < 2 {
		return nil, ErrNotEnoughSeats
	}

	e := &Engine{
		logger: logger.WithPrefix("engine").With("gameId", gameID),
		rng:    rng,
		gameID: gameID,
		cfg:    cfg,
		phase:  Idle,
		acted:  make(map[string]struct{}),
	}
	e.newDeck = func() *deck.Deck { return deck.New(e.rng) }

	for _, spec := range specs {
		e.seats = append(e.seats, NewSeat(spec.ID, spec.Name, cfg.BuyIn))
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// GameID returns the engine's game identifier.
func (e *Engine) GameID() string { return e.gameID }

// Phase returns the current phase.
func (e *Engine) Phase() Phase { return e.phase }

// Pot returns the current pot, including any carry-over remainder.
func (e *Engine) Pot() int { return e.pot }

// AutoAdvancing reports whether the engine is pacing streets itself.
func (e *Engine) AutoAdvancing() bool { return e.autoAdvancing }

// CurrentActorName returns the name of the seat due to act, or "".
func (e *Engine) CurrentActorName() string {
	if !e.phase.Betting() || e.autoAdvancing || e.actorPos < 0 {
		return ""
	}
	return e.active[e.actorPos].Name
}

// StartNewHand resets seats, shuffles a fresh deck, deals hole cards and
// posts blinds. With fewer than two live seats it transitions to GameOver.
func (e *Engine) StartNewHand() (StartResult, error) {
	live := 0
	for _, s := range e.seats {
		if !s.IsOut {
			live++
		}
	}
	if live <= 1 {
		e.phase = GameOver
		e.logger.Info("game over", "liveSeats", live)
		return StartResult{GameOver: true}, nil
	}

	e.active = e.active[:0]
	for _, s := range e.seats {
		if s.IsOut {
			continue
		}
		s.ResetForHand()
		e.active = append(e.active, s)
	}

	e.deck = e.newDeck()
	e.community = nil
	e.winners = nil
	e.revealed = false
	e.autoAdvancing = false
	e.acted = make(map[string]struct{})

	for _, s := range e.active {
		cards, err := e.deck.Deal(2)
		if err != nil {
			return StartResult{}, err
		}
		s.HoleCards = cards
	}

	e.postBlinds()
	e.phase = PreFlop

	e.logger.Debug("hand started",
		"players", len(e.active), "dealer", e.active[e.dealerPos].Name, "pot", e.pot)

	// Blinds can leave nobody free to act when the stacks are that short.
	if e.actorPos == -1 {
		e.autoAdvancing = true
		return StartResult{AutoAdvance: true}, nil
	}
	return StartResult{}, nil
}

func (e *Engine) postBlinds() {
	n := len(e.active)

	e.dealerPos = 0
	for i, s := range e.active {
		if s == e.seats[e.button] {
			e.dealerPos = i
			break
		}
	}

	if n == 2 {
		// Heads-up: the dealer posts the small blind.
		e.sbPos = e.dealerPos
		e.bbPos = (e.dealerPos + 1) % n
	} else {
		e.sbPos = (e.dealerPos + 1) % n
		e.bbPos = (e.dealerPos + 2) % n
	}

	e.pot += e.active[e.sbPos].PayChips(e.cfg.SmallBlind)
	e.pot += e.active[e.bbPos].PayChips(e.cfg.BigBlind)
	e.currentHighestBet = e.cfg.BigBlind

	if n == 2 {
		// Heads-up the dealer acts first preflop.
		e.actorPos = e.nextActor(e.dealerPos)
	} else {
		e.actorPos = e.nextActor((e.bbPos + 1) % n)
	}
}

// nextActor returns the first seat at or after from (wrapping) that can
// still act, or -1.
func (e *Engine) nextActor(from int) int {
	n := len(e.active)
	for i := 0; i < n; i++ {
		pos := (from + i) % n
		if e.active[pos].CanAct() {
			return pos
		}
	}
	return -1
}

func (e *Engine) seatByName(name string) *Seat {
	for _, s := range e.active {
		if s.Name == name {
			return s
		}
	}
	return nil
}

func (e *Engine) countNotFolded() int {
	n := 0
	for _, s := range e.active {
		if !s.HasFolded {
			n++
		}
	}
	return n
}

func (e *Engine) countCanAct() int {
	n := 0
	for _, s := range e.active {
		if s.CanAct() {
			n++
		}
	}
	return n
}

// HandleAction validates and applies one intent from the named player.
// Rejected intents leave the engine untouched.
func (e *Engine) HandleAction(playerName string, intent Intent) (ActionResult, error) {
	if !e.phase.Betting() || e.autoAdvancing {
		return ActionResult{}, ErrHandNotRunning
	}

	seat := e.seatByName(playerName)
	if seat == nil {
		return ActionResult{}, ErrUnknownPlayer
	}
	if e.actorPos < 0 || e.active[e.actorPos] != seat {
		return ActionResult{}, ErrNotYourTurn
	}

	res := ActionResult{Seat: seat, Applied: intent}

	switch intent.Action {
	case Fold:
		e.pot = seat.ApplyAction(Fold, 0, e.pot)

	case Check:
		if seat.CurrentBet != e.currentHighestBet {
			return ActionResult{}, fmt.Errorf("%w: cannot check, %d to call",
				ErrIllegalAction, e.currentHighestBet-seat.CurrentBet)
		}

	case Call:
		if e.currentHighestBet <= seat.CurrentBet {
			return ActionResult{}, fmt.Errorf("%w: nothing to call", ErrIllegalAction)
		}
		toCall := e.currentHighestBet - seat.CurrentBet
		if toCall > seat.Chips {
			e.convertToAllIn(seat, &res, "insufficient chips to call, moved all-in")
		} else {
			e.pot = seat.ApplyAction(Call, toCall, e.pot)
			res.Applied = Intent{Action: Call, Amount: toCall}
		}

	case Bet:
		if e.currentHighestBet != 0 {
			return ActionResult{}, fmt.Errorf("%w: a bet already stands, raise instead", ErrIllegalAction)
		}
		if intent.Amount <= 0 {
			return ActionResult{}, fmt.Errorf("%w: bet amount must be positive", ErrIllegalAction)
		}
		if intent.Amount > seat.Chips {
			e.convertToAllIn(seat, &res, "insufficient chips to bet, moved all-in")
		} else {
			e.pot = seat.ApplyAction(Bet, intent.Amount, e.pot)
			e.currentHighestBet = seat.CurrentBet
		}

	case Raise:
		if intent.Amount <= e.currentHighestBet {
			return ActionResult{}, fmt.Errorf("%w: raise must exceed current bet of %d",
				ErrIllegalAction, e.currentHighestBet)
		}
		if intent.Amount > seat.CurrentBet+seat.Chips {
			e.convertToAllIn(seat, &res, "insufficient chips to raise, moved all-in")
		} else {
			delta := intent.Amount - seat.CurrentBet
			e.pot = seat.ApplyAction(Raise, delta, e.pot)
			e.currentHighestBet = seat.CurrentBet
		}

	case AllIn:
		if seat.Chips <= 0 {
			return ActionResult{}, fmt.Errorf("%w: no chips to move all-in", ErrIllegalAction)
		}
		e.convertToAllIn(seat, &res, "")
		res.Converted = false
		res.Applied = intent

	default:
		return ActionResult{}, fmt.Errorf("%w: unknown action", ErrIllegalAction)
	}

	e.acted[seat.ID] = struct{}{}
	e.actorPos = e.nextActor(e.actorPos + 1)

	e.logger.Debug("action applied",
		"player", playerName, "action", res.Applied.String(),
		"pot", e.pot, "currentBet", e.currentHighestBet)

	if e.roundComplete() {
		if err := e.finishRound(&res); err != nil {
			return res, err
		}
	}
	return res, nil
}

func (e *Engine) convertToAllIn(seat *Seat, res *ActionResult, note string) {
	e.pot = seat.ApplyAction(AllIn, 0, e.pot)
	if seat.CurrentBet > e.currentHighestBet {
		e.currentHighestBet = seat.CurrentBet
	}
	res.Applied = Intent{Action: AllIn}
	if note != "" {
		res.Converted = true
		res.Notification = note
	}
}

// ForceFold folds the named seat out of turn, used when a seated player
// disconnects mid-hand. A no-op outside betting phases.
func (e *Engine) ForceFold(playerName string) (ActionResult, bool) {
	if !e.phase.Betting() || e.autoAdvancing {
		return ActionResult{}, false
	}
	seat := e.seatByName(playerName)
	if seat == nil || seat.HasFolded || seat.IsAllIn {
		return ActionResult{}, false
	}

	wasActor := e.actorPos >= 0 && e.active[e.actorPos] == seat
	e.pot = seat.ApplyAction(Fold, 0, e.pot)
	e.acted[seat.ID] = struct{}{}
	if wasActor {
		e.actorPos = e.nextActor(e.actorPos + 1)
	}

	res := ActionResult{Seat: seat, Applied: Intent{Action: Fold}}
	if e.roundComplete() {
		if err := e.finishRound(&res); err != nil {
			e.logger.Error("finishing round after forced fold", "error", err)
		}
	}
	return res, true
}

// roundComplete reports whether betting is done: at most one live seat, or
// every seat that can still act has matched the highest bet and has acted
// this round. The acted requirement is what gives the big blind its preflop
// option.
func (e *Engine) roundComplete() bool {
	if e.countNotFolded() <= 1 {
		return true
	}
	for _, s := range e.active {
		if !s.CanAct() {
			continue
		}
		if s.CurrentBet != e.currentHighestBet {
			return false
		}
		if _, ok := e.acted[s.ID]; !ok {
			return false
		}
	}
	return true
}

func (e *Engine) finishRound(res *ActionResult) error {
	if e.countNotFolded() <= 1 {
		e.awardToSurvivor()
		res.HandComplete = true
		return nil
	}

	e.resetRound()

	if e.phase == River {
		if err := e.runShowdown(); err != nil {
			return err
		}
		res.HandComplete = true
		return nil
	}

	if e.countCanAct() <= 1 {
		e.autoAdvancing = true
		res.AutoAdvance = true
		return nil
	}

	if err := e.dealNextStreet(); err != nil {
		return err
	}
	e.actorPos = e.nextActor((e.dealerPos + 1) % len(e.active))
	res.StreetDealt = true
	return nil
}

func (e *Engine) resetRound() {
	for _, s := range e.active {
		s.ResetForRound()
	}
	e.currentHighestBet = 0
	e.acted = make(map[string]struct{})
}

func (e *Engine) dealNextStreet() error {
	var n int
	var next Phase
	switch e.phase {
	case PreFlop:
		n, next = 3, Flop
	case Flop:
		n, next = 1, Turn
	case Turn:
		n, next = 1, River
	default:
		return fmt.Errorf("cannot deal street from phase %s", e.phase)
	}

	cards, err := e.deck.Deal(n)
	if err != nil {
		return err
	}
	e.community = append(e.community, cards...)
	e.phase = next
	e.logger.Debug("street dealt", "phase", e.phase, "board", e.community)
	return nil
}

// AutoAdvanceStep deals the next paced street, or runs the showdown once the
// river is out. Returns true when the hand is complete.
func (e *Engine) AutoAdvanceStep() (bool, error) {
	if !e.autoAdvancing || !e.phase.Betting() {
		return false, ErrHandNotRunning
	}
	if e.phase != River {
		if err := e.dealNextStreet(); err != nil {
			return false, err
		}
		return false, nil
	}

	e.autoAdvancing = false
	if err := e.runShowdown(); err != nil {
		return false, err
	}
	return true, nil
}

// awardToSurvivor pays the whole pot to the last unfolded seat without
// revealing cards.
func (e *Engine) awardToSurvivor() {
	e.resetRound()
	e.phase = Showdown

	for _, s := range e.active {
		if s.HasFolded {
			continue
		}
		s.Chips += e.pot
		e.winners = map[string]int{s.ID: e.pot}
		e.logger.Info("hand won uncontested", "player", s.Name, "amount", e.pot)
		e.pot = 0
		return
	}
}

// runShowdown evaluates every unfolded seat, splits the pot equally among
// the winners and leaves any indivisible remainder in the pot for the next
// hand. The whole pot divides equally irrespective of all-in contribution
// depth; true side pots are a future extension.
func (e *Engine) runShowdown() error {
	e.phase = Showdown
	e.revealed = true

	var best evaluator.Hand
	var winners []*Seat
	for _, s := range e.active {
		if s.HasFolded {
			continue
		}
		hand, err := evaluator.Evaluate(s.HoleCards, e.community)
		if err != nil {
			return fmt.Errorf("evaluating %s: %w", s.Name, err)
		}
		s.BestHand = hand.Cards
		s.HandRank = hand.Rank

		if len(winners) == 0 {
			best, winners = hand, []*Seat{s}
			continue
		}
		switch evaluator.Compare(hand, best) {
		case 1:
			best, winners = hand, []*Seat{s}
		case 0:
			winners = append(winners, s)
		}
	}

	share := e.pot / len(winners)
	e.winners = make(map[string]int, len(winners))
	for _, w := range winners {
		w.Chips += share
		e.winners[w.ID] = share
		e.logger.Info("showdown winner",
			"player", w.Name, "hand", w.HandRank.String(), "amount", share)
	}
	e.pot -= share * len(winners)
	return nil
}

// NextHand marks busted seats out, advances the button to the next live
// seat, and starts the following hand.
func (e *Engine) NextHand() (StartResult, error) {
	for _, s := range e.seats {
		if !s.IsOut && s.Chips == 0 {
			s.IsOut = true
			e.logger.Info("player busted", "player", s.Name)
		}
	}

	n := len(e.seats)
	for i := 1; i <= n; i++ {
		pos := (e.button + i) % n
		if !e.seats[pos].IsOut {
			e.button = pos
			break
		}
	}

	return e.StartNewHand()
}
