package server

import (
	"errors"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/cardroomhq/cardroom/internal/game"
	"github.com/cardroomhq/cardroom/internal/gameid"
	"github.com/cardroomhq/cardroom/internal/randutil"
	"github.com/cardroomhq/cardroom/internal/room"
)

var (
	ErrRoomNotFound  = errors.New("room not found")
	ErrGameNotFound  = errors.New("game not found")
	ErrRoomNameTaken = errors.New("room name already taken")
)

// Coordinator maps room ids to lobby rooms and running engines. Engine
// mutations for one room are serialised on that room's actor goroutine;
// the maps here are the only shared state and sit behind one mutex.
type Coordinator struct {
	logger  *log.Logger
	clock   quartz.Clock
	cfg     *Config
	hub     *Hub
	monitor HandMonitor
	ids     *gameid.Generator

	mu        sync.RWMutex
	rooms     map[string]*room.Room // roomId -> lobby room
	roomNames map[string]string     // room name -> roomId
	actors    map[string]*roomActor // gameId -> actor
}

// NewCoordinator creates a coordinator. A nil monitor disables console
// output; a nil clock uses the real one.
func NewCoordinator(logger *log.Logger, cfg *Config, hub *Hub, monitor HandMonitor, clock quartz.Clock) *Coordinator {
	if clock == nil {
		clock = quartz.NewReal()
	}
	if monitor == nil {
		monitor = NopMonitor{}
	}
	return &Coordinator{
		logger:    logger.WithPrefix("coord"),
		clock:     clock,
		cfg:       cfg,
		hub:       hub,
		monitor:   monitor,
		ids:       gameid.NewGenerator(nil),
		rooms:     make(map[string]*room.Room),
		roomNames: make(map[string]string),
		actors:    make(map[string]*roomActor),
	}
}

// CreateRoom creates a named lobby room with the host seated.
func (c *Coordinator) CreateRoom(roomName, hostName string, maxPlayers, smallBlind, bigBlind, buyIn int, password string) (room.Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, taken := c.roomNames[roomName]; taken {
		return room.Snapshot{}, ErrRoomNameTaken
	}

	r, err := room.New(c.ids.Generate(), roomName, hostName, maxPlayers, smallBlind, bigBlind, buyIn, password)
	if err != nil {
		return room.Snapshot{}, err
	}

	c.rooms[r.ID] = r
	c.roomNames[roomName] = r.ID
	c.logger.Info("room created", "roomId", r.ID, "name", roomName, "host", hostName)
	return r.Snapshot(), nil
}

// JoinRoom seats a player in the identified room.
func (c *Coordinator) JoinRoom(roomID, playerName, password string) (room.Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	r, ok := c.rooms[roomID]
	if !ok {
		return room.Snapshot{}, ErrRoomNotFound
	}
	if err := r.Join(playerName, password); err != nil {
		return room.Snapshot{}, err
	}
	snap := r.Snapshot()
	c.broadcastRoomUpdate(r)
	return snap, nil
}

// JoinRoomByName resolves a room by its lobby name and joins it.
func (c *Coordinator) JoinRoomByName(roomName, playerName, password string) (room.Snapshot, error) {
	c.mu.RLock()
	roomID, ok := c.roomNames[roomName]
	c.mu.RUnlock()
	if !ok {
		return room.Snapshot{}, ErrRoomNotFound
	}
	return c.JoinRoom(roomID, playerName, password)
}

// RoomSnapshot returns the lobby view of a room.
func (c *Coordinator) RoomSnapshot(roomID string) (room.Snapshot, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	r, ok := c.rooms[roomID]
	if !ok {
		return room.Snapshot{}, ErrRoomNotFound
	}
	return r.Snapshot(), nil
}

// LeaveRoom removes a player. The host leaving, or the roster emptying,
// destroys the room and stops any running game.
func (c *Coordinator) LeaveRoom(roomID, playerName string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	r, ok := c.rooms[roomID]
	if !ok {
		return ErrRoomNotFound
	}
	destroy, err := r.Leave(playerName)
	if err != nil {
		return err
	}

	if destroy {
		c.destroyRoomLocked(r)
		return nil
	}

	frame, ferr := NewFrame(FramePlayerLeft, r.ID, PlayerEventData{PlayerName: playerName})
	if ferr == nil {
		c.hub.Broadcast(r.ID, frame)
	}
	c.broadcastRoomUpdate(r)
	return nil
}

// destroyRoomLocked tears a room down: callers hold c.mu.
func (c *Coordinator) destroyRoomLocked(r *room.Room) {
	if r.GameID != "" {
		if actor, ok := c.actors[r.GameID]; ok {
			actor.stop()
			delete(c.actors, r.GameID)
		}
	}
	delete(c.rooms, r.ID)
	delete(c.roomNames, r.Name)

	frame, err := NewFrame(FrameRoomClosed, r.ID, nil)
	if err == nil {
		c.hub.Broadcast(r.ID, frame)
	}
	c.logger.Info("room destroyed", "roomId", r.ID, "name", r.Name)
}

// StartGame builds an engine from the roster and spins up the room actor.
// Host only; at least two seated players.
func (c *Coordinator) StartGame(roomID, playerName string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	r, ok := c.rooms[roomID]
	if !ok {
		return "", ErrRoomNotFound
	}

	gameID := c.ids.Generate()
	if err := r.Start(playerName, gameID); err != nil {
		return "", err
	}

	specs := make([]game.SeatSpec, len(r.Players))
	for i, name := range r.Players {
		specs[i] = game.SeatSpec{ID: c.ids.Generate(), Name: name}
	}

	engine, err := game.New(c.logger, randutil.New(time.Now().UnixNano()), gameID, game.Config{
		SmallBlind: r.SmallBlind,
		BigBlind:   r.BigBlind,
		BuyIn:      r.BuyIn,
	}, specs)
	if err != nil {
		r.GameStarted = false
		r.GameID = ""
		return "", err
	}

	actor := newRoomActor(c, r.ID, gameID, engine)
	c.actors[gameID] = actor
	go actor.run()

	frame, ferr := NewFrame(FrameGameStarted, r.ID, map[string]string{"gameId": gameID})
	if ferr == nil {
		c.hub.Broadcast(r.ID, frame)
	}
	c.logger.Info("game started", "roomId", r.ID, "gameId", gameID, "players", len(specs))

	actor.enqueue(actor.startFirstHand)
	return gameID, nil
}

// SubmitAction queues a player intent for the game's executor and returns
// the engine's verdict. Rejected intents broadcast nothing.
func (c *Coordinator) SubmitAction(gameID, playerName string, intent game.Intent) error {
	actor, err := c.actor(gameID)
	if err != nil {
		return err
	}
	return actor.call(func() error {
		return actor.applyIntent(playerName, intent)
	})
}

// GameSnapshot renders the viewer's snapshot on the game's executor.
func (c *Coordinator) GameSnapshot(gameID, viewer string) (game.Snapshot, error) {
	actor, err := c.actor(gameID)
	if err != nil {
		return game.Snapshot{}, err
	}
	var snap game.Snapshot
	err = actor.call(func() error {
		snap = actor.engine.Snapshot(viewer)
		return nil
	})
	return snap, err
}

// HandleDisconnect force-folds a seated player whose last session dropped.
// The hand itself carries on.
func (c *Coordinator) HandleDisconnect(roomID, playerName string) {
	c.mu.RLock()
	r, ok := c.rooms[roomID]
	var actor *roomActor
	if ok && r.GameID != "" {
		actor = c.actors[r.GameID]
	}
	c.mu.RUnlock()

	if actor == nil {
		return
	}
	actor.enqueue(func() {
		if res, folded := actor.engine.ForceFold(playerName); folded {
			actor.logger.Info("player folded on disconnect", "player", playerName)
			actor.afterAction(res)
		}
	})
}

func (c *Coordinator) actor(gameID string) (*roomActor, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	actor, ok := c.actors[gameID]
	if !ok {
		return nil, ErrGameNotFound
	}
	return actor, nil
}

// finishGame retires an actor after GameOver and reopens the room lobby.
func (c *Coordinator) finishGame(roomID, gameID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if actor, ok := c.actors[gameID]; ok {
		actor.stop()
		delete(c.actors, gameID)
	}
	if r, ok := c.rooms[roomID]; ok {
		r.GameStarted = false
		r.GameID = ""
		c.broadcastRoomUpdate(r)
	}
	c.logger.Info("game finished", "roomId", roomID, "gameId", gameID)
}

func (c *Coordinator) broadcastRoomUpdate(r *room.Room) {
	frame, err := NewFrame(FrameRoomUpdate, r.ID, r.Snapshot())
	if err == nil {
		c.hub.Broadcast(r.ID, frame)
	}
}

// Stop tears down all rooms and actors.
func (c *Coordinator) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, actor := range c.actors {
		actor.stop()
	}
	c.actors = make(map[string]*roomActor)
	c.rooms = make(map[string]*room.Room)
	c.roomNames = make(map[string]string)
}
