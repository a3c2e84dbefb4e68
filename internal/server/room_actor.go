package server

import (
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/cardroomhq/cardroom/internal/game"
)

// roomActor is the single logical executor that owns one engine. Every
// intent and timer callback for the room runs sequentially on its goroutine,
// so the engine itself needs no locks and intents apply in dequeue order.
type roomActor struct {
	coord  *Coordinator
	roomID string
	gameID string
	engine *game.Engine
	logger *log.Logger
	clock  quartz.Clock

	queue chan func()
	done  chan struct{}
	stopO sync.Once

	// Owned by the actor goroutine; at most one of each outstanding.
	paceTimer   *quartz.Timer
	actionTimer *quartz.Timer
}

func newRoomActor(coord *Coordinator, roomID, gameID string, engine *game.Engine) *roomActor {
	return &roomActor{
		coord:  coord,
		roomID: roomID,
		gameID: gameID,
		engine: engine,
		logger: coord.logger.WithPrefix("actor").With("roomId", roomID),
		clock:  coord.clock,
		queue:  make(chan func(), 64),
		done:   make(chan struct{}),
	}
}

func (a *roomActor) run() {
	for {
		select {
		case fn := <-a.queue:
			fn()
		case <-a.done:
			return
		}
	}
}

// enqueue schedules fn on the actor goroutine. Dropped once stopped, which
// is how cancelled timers whose callbacks already fired go quiet.
func (a *roomActor) enqueue(fn func()) {
	select {
	case a.queue <- fn:
	case <-a.done:
	}
}

// call runs fn on the actor goroutine and waits for its result.
func (a *roomActor) call(fn func() error) error {
	reply := make(chan error, 1)
	a.enqueue(func() { reply <- fn() })
	select {
	case err := <-reply:
		return err
	case <-a.done:
		return ErrGameNotFound
	}
}

func (a *roomActor) stop() {
	a.stopO.Do(func() {
		if a.paceTimer != nil {
			a.paceTimer.Stop()
		}
		if a.actionTimer != nil {
			a.actionTimer.Stop()
		}
		close(a.done)
	})
}

// schedulePace arms the single street/hand pacing timer, replacing any
// previous one. The callback hops back onto the actor queue.
func (a *roomActor) schedulePace(d time.Duration, fn func()) {
	if a.paceTimer != nil {
		a.paceTimer.Stop()
	}
	a.paceTimer = a.clock.AfterFunc(d, func() {
		a.enqueue(fn)
	})
}

func (a *roomActor) cancelPace() {
	if a.paceTimer != nil {
		a.paceTimer.Stop()
		a.paceTimer = nil
	}
}

// scheduleActionTimeout arms the optional per-player decision timer.
func (a *roomActor) scheduleActionTimeout() {
	if a.actionTimer != nil {
		a.actionTimer.Stop()
		a.actionTimer = nil
	}
	timeout := a.coord.cfg.ActionTimeout()
	if timeout <= 0 {
		return
	}
	actorName := a.engine.CurrentActorName()
	if actorName == "" {
		return
	}
	a.actionTimer = a.clock.AfterFunc(timeout, func() {
		a.enqueue(func() { a.timeoutActor(actorName) })
	})
}

// startFirstHand kicks off the first hand after game start.
func (a *roomActor) startFirstHand() {
	res, err := a.engine.StartNewHand()
	if err != nil {
		a.logger.Error("starting first hand", "error", err)
		return
	}
	a.afterHandStart(res)
}

func (a *roomActor) nextHand() {
	res, err := a.engine.NextHand()
	if err != nil {
		a.logger.Error("starting next hand", "error", err)
		return
	}
	a.afterHandStart(res)
}

func (a *roomActor) afterHandStart(res game.StartResult) {
	if res.GameOver {
		a.broadcastState()
		go a.coord.finishGame(a.roomID, a.gameID)
		return
	}

	a.broadcastState()
	if res.AutoAdvance {
		a.announceAutoAdvance()
		a.schedulePace(a.coord.cfg.AutoAdvanceStep(), a.autoAdvanceStep)
		return
	}
	a.scheduleActionTimeout()
}

// applyIntent runs one player action through the engine. Runs on the actor
// goroutine via call().
func (a *roomActor) applyIntent(playerName string, intent game.Intent) error {
	res, err := a.engine.HandleAction(playerName, intent)
	if err != nil {
		// Rejected intents emit no snapshot.
		return err
	}
	a.afterAction(res)
	return nil
}

// afterAction broadcasts the new state and schedules whatever the action's
// consequences call for.
func (a *roomActor) afterAction(res game.ActionResult) {
	if res.Converted {
		frame, err := NewFrame(FramePlayerNote, a.roomID, NotificationData{Message: res.Notification})
		if err == nil {
			a.coord.hub.SendToPlayer(a.roomID, res.Seat.Name, frame)
		}
	}

	a.broadcastState()

	switch {
	case res.HandComplete:
		a.handComplete()
	case res.AutoAdvance:
		a.announceAutoAdvance()
		a.schedulePace(a.coord.cfg.AutoAdvanceStep(), a.autoAdvanceStep)
	default:
		a.scheduleActionTimeout()
	}
}

// autoAdvanceStep deals one paced street, or runs the showdown after the
// river. Timer callback; runs on the actor goroutine.
func (a *roomActor) autoAdvanceStep() {
	done, err := a.engine.AutoAdvanceStep()
	if err != nil {
		// The hand ended early and the pending timer lost the race.
		a.logger.Debug("auto-advance step skipped", "error", err)
		return
	}

	if done {
		a.broadcastState()
		a.handComplete()
		return
	}

	a.broadcastState()
	delay := a.coord.cfg.AutoAdvanceStep()
	if a.engine.Phase() == game.River {
		delay = a.coord.cfg.PreShowdownDelay()
	}
	a.schedulePace(delay, a.autoAdvanceStep)
}

// handComplete broadcasts showdown results and schedules the next hand
// after the display delay.
func (a *roomActor) handComplete() {
	a.cancelPace()
	if a.actionTimer != nil {
		a.actionTimer.Stop()
		a.actionTimer = nil
	}

	a.coord.hub.BroadcastPersonal(a.roomID, func(playerName string) *Frame {
		frame, err := NewFrame(FrameShowdownResults, a.roomID, a.engine.Snapshot(playerName))
		if err != nil {
			return nil
		}
		return frame
	})
	a.coord.monitor.HandFinished(a.roomID, a.engine.Snapshot(""))

	a.schedulePace(a.coord.cfg.ShowdownDelay(), a.nextHand)
}

// timeoutActor folds a player who ran out the decision clock, if they are
// still the one to act.
func (a *roomActor) timeoutActor(playerName string) {
	if a.engine.CurrentActorName() != playerName {
		return
	}
	res, folded := a.engine.ForceFold(playerName)
	if !folded {
		return
	}
	a.logger.Info("player timed out and folded", "player", playerName)

	frame, err := NewFrame(FramePlayerNote, a.roomID, NotificationData{Message: "folded on timeout"})
	if err == nil {
		a.coord.hub.SendToPlayer(a.roomID, playerName, frame)
	}
	a.afterAction(res)
}

func (a *roomActor) announceAutoAdvance() {
	frame, err := NewFrame(FrameAutoAdvanceNote, a.roomID, NotificationData{
		Message: "all players are all-in, dealing remaining streets",
	})
	if err == nil {
		a.coord.hub.Broadcast(a.roomID, frame)
	}
}

func (a *roomActor) broadcastState() {
	a.coord.hub.BroadcastPersonal(a.roomID, func(playerName string) *Frame {
		frame, err := NewFrame(FrameGameStateUpdate, a.roomID, a.engine.Snapshot(playerName))
		if err != nil {
			return nil
		}
		return frame
	})
}
