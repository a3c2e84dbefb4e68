package server

import (
	"context"
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/stretchr/testify/require"

	"github.com/cardroomhq/cardroom/internal/game"
	"github.com/cardroomhq/cardroom/internal/gameid"
	"github.com/cardroomhq/cardroom/internal/room"
)

func newTestCoordinator(t *testing.T, cfg *Config) (*Coordinator, *quartz.Mock) {
	t.Helper()
	if cfg == nil {
		cfg = DefaultConfig()
	}
	logger := log.New(io.Discard)
	mock := quartz.NewMock(t)
	coord := NewCoordinator(logger, cfg, NewHub(logger), nil, mock)
	t.Cleanup(coord.Stop)
	return coord, mock
}

// flush waits for the room actor to drain its queue by running a no-op
// snapshot on it.
func flush(t *testing.T, coord *Coordinator, gameID string) game.Snapshot {
	t.Helper()
	snap, err := coord.GameSnapshot(gameID, "")
	require.NoError(t, err)
	return snap
}

func startHeadsUpGame(t *testing.T, coord *Coordinator) (roomID, gameID string) {
	t.Helper()
	snap, err := coord.CreateRoom("test table", "alice", 4, 5, 10, 100, "")
	require.NoError(t, err)

	_, err = coord.JoinRoom(snap.RoomID, "bob", "")
	require.NoError(t, err)

	gameID, err = coord.StartGame(snap.RoomID, "alice")
	require.NoError(t, err)
	return snap.RoomID, gameID
}

func TestCreateRoomRejectsDuplicateName(t *testing.T) {
	coord, _ := newTestCoordinator(t, nil)

	snap, err := coord.CreateRoom("friday", "alice", 4, 5, 10, 100, "")
	require.NoError(t, err)
	require.NoError(t, gameid.Validate(snap.RoomID))

	_, err = coord.CreateRoom("friday", "bob", 4, 5, 10, 100, "")
	require.ErrorIs(t, err, ErrRoomNameTaken)
}

func TestJoinRoomByName(t *testing.T) {
	coord, _ := newTestCoordinator(t, nil)

	created, err := coord.CreateRoom("friday", "alice", 4, 5, 10, 100, "")
	require.NoError(t, err)

	snap, err := coord.JoinRoomByName("friday", "bob", "")
	require.NoError(t, err)
	require.Equal(t, created.RoomID, snap.RoomID)
	require.Equal(t, []string{"alice", "bob"}, snap.Players)

	_, err = coord.JoinRoomByName("no such room", "carol", "")
	require.ErrorIs(t, err, ErrRoomNotFound)

	_, err = coord.JoinRoom("bogus-id", "carol", "")
	require.ErrorIs(t, err, ErrRoomNotFound)
}

func TestStartGameDealsFirstHand(t *testing.T) {
	coord, _ := newTestCoordinator(t, nil)

	created, err := coord.CreateRoom("friday", "alice", 4, 5, 10, 100, "")
	require.NoError(t, err)

	_, err = coord.StartGame(created.RoomID, "alice")
	require.ErrorIs(t, err, room.ErrTooFewPlayers)

	_, err = coord.JoinRoom(created.RoomID, "bob", "")
	require.NoError(t, err)

	_, err = coord.StartGame(created.RoomID, "bob")
	require.ErrorIs(t, err, room.ErrNotHost)

	gameID, err := coord.StartGame(created.RoomID, "alice")
	require.NoError(t, err)
	require.NoError(t, gameid.Validate(gameID))

	snap := flush(t, coord, gameID)
	require.Equal(t, "PRE_FLOP", snap.Phase)
	require.Equal(t, 15, snap.Pot)
	require.Len(t, snap.Players, 2)
	require.Equal(t, "alice", snap.CurrentPlayerName, "heads-up dealer acts first")

	roomSnap, err := coord.RoomSnapshot(created.RoomID)
	require.NoError(t, err)
	require.True(t, roomSnap.GameStarted)
	require.Equal(t, gameID, roomSnap.GameID)
}

func TestSubmitActionEnforcesTurnOrder(t *testing.T) {
	coord, _ := newTestCoordinator(t, nil)
	_, gameID := startHeadsUpGame(t, coord)
	flush(t, coord, gameID)

	err := coord.SubmitAction(gameID, "bob", game.Intent{Action: game.Call})
	require.ErrorIs(t, err, game.ErrNotYourTurn)

	err = coord.SubmitAction("bogus-game", "alice", game.Intent{Action: game.Fold})
	require.ErrorIs(t, err, ErrGameNotFound)

	err = coord.SubmitAction(gameID, "alice", game.Intent{Action: game.Check})
	require.ErrorIs(t, err, game.ErrIllegalAction)
}

func TestFoldEndsHandAndShowdownDelayStartsNext(t *testing.T) {
	ctx := context.Background()
	coord, mock := newTestCoordinator(t, nil)
	_, gameID := startHeadsUpGame(t, coord)
	flush(t, coord, gameID)

	require.NoError(t, coord.SubmitAction(gameID, "alice", game.Intent{Action: game.Fold}))

	snap := flush(t, coord, gameID)
	require.Equal(t, "SHOWDOWN", snap.Phase)
	require.True(t, snap.Players[1].IsWinner)
	require.Equal(t, 15, snap.Players[1].ChipsWon)

	// The display delay elapses and the next hand begins with the button
	// passed to bob.
	mock.Advance(DefaultConfig().ShowdownDelay()).MustWait(ctx)

	snap = flush(t, coord, gameID)
	require.Equal(t, "PRE_FLOP", snap.Phase)
	require.Equal(t, 15, snap.Pot)
	require.Equal(t, "bob", snap.CurrentPlayerName)
}

func TestAllInHandIsPacedByTheClock(t *testing.T) {
	ctx := context.Background()
	cfg := DefaultConfig()
	coord, mock := newTestCoordinator(t, cfg)
	_, gameID := startHeadsUpGame(t, coord)
	flush(t, coord, gameID)

	require.NoError(t, coord.SubmitAction(gameID, "alice", game.Intent{Action: game.AllIn}))
	require.NoError(t, coord.SubmitAction(gameID, "bob", game.Intent{Action: game.Call}))

	snap := flush(t, coord, gameID)
	require.True(t, snap.IsAutoAdvancing)
	require.Equal(t, 200, snap.Pot)
	require.Empty(t, snap.CommunityCards)
	require.Empty(t, snap.CurrentPlayerName)

	// Flop, turn, river arrive on the pacing timer.
	for _, want := range []int{3, 4, 5} {
		mock.Advance(cfg.AutoAdvanceStep()).MustWait(ctx)
		snap = flush(t, coord, gameID)
		require.Len(t, snap.CommunityCards, want)
	}
	require.Equal(t, "RIVER", snap.Phase)

	// The shorter pre-showdown pause resolves the hand.
	mock.Advance(cfg.PreShowdownDelay()).MustWait(ctx)
	snap = flush(t, coord, gameID)
	require.Equal(t, "SHOWDOWN", snap.Phase)
	require.Zero(t, snap.Pot, "the pot pays out in full")

	winners := 0
	for _, p := range snap.Players {
		if p.IsWinner {
			winners++
			require.NotEmpty(t, p.HandRank)
			require.Len(t, p.Cards, 5, "showdown reveals best hands")
		}
	}
	require.GreaterOrEqual(t, winners, 1)
}

func TestHostLeavingDestroysRoomAndGame(t *testing.T) {
	coord, _ := newTestCoordinator(t, nil)
	roomID, gameID := startHeadsUpGame(t, coord)
	flush(t, coord, gameID)

	require.NoError(t, coord.LeaveRoom(roomID, "alice"))

	_, err := coord.RoomSnapshot(roomID)
	require.ErrorIs(t, err, ErrRoomNotFound)

	_, err = coord.GameSnapshot(gameID, "bob")
	require.ErrorIs(t, err, ErrGameNotFound)

	err = coord.SubmitAction(gameID, "bob", game.Intent{Action: game.Fold})
	require.ErrorIs(t, err, ErrGameNotFound)
}

func TestLeaveRoomNonHost(t *testing.T) {
	coord, _ := newTestCoordinator(t, nil)

	created, err := coord.CreateRoom("friday", "alice", 4, 5, 10, 100, "")
	require.NoError(t, err)
	_, err = coord.JoinRoom(created.RoomID, "bob", "")
	require.NoError(t, err)

	require.NoError(t, coord.LeaveRoom(created.RoomID, "bob"))

	snap, err := coord.RoomSnapshot(created.RoomID)
	require.NoError(t, err)
	require.Equal(t, []string{"alice"}, snap.Players)

	require.ErrorIs(t, coord.LeaveRoom(created.RoomID, "bob"), room.ErrNotInRoom)
}

func TestDisconnectForceFoldsSeatedPlayer(t *testing.T) {
	coord, _ := newTestCoordinator(t, nil)
	roomID, gameID := startHeadsUpGame(t, coord)
	flush(t, coord, gameID)

	coord.HandleDisconnect(roomID, "alice")

	snap := flush(t, coord, gameID)
	require.Equal(t, "SHOWDOWN", snap.Phase, "heads-up fold ends the hand")
	require.Equal(t, "folded", snap.Players[0].Status)
	require.True(t, snap.Players[1].IsWinner)
}

func TestActionTimeoutFoldsSlowPlayer(t *testing.T) {
	ctx := context.Background()
	cfg := DefaultConfig()
	cfg.Game.ActionTimeoutMs = 30000
	coord, mock := newTestCoordinator(t, cfg)
	_, gameID := startHeadsUpGame(t, coord)
	flush(t, coord, gameID)

	mock.Advance(cfg.ActionTimeout()).MustWait(ctx)

	snap := flush(t, coord, gameID)
	require.Equal(t, "SHOWDOWN", snap.Phase)
	require.Equal(t, "folded", snap.Players[0].Status, "alice timed out")
	require.True(t, snap.Players[1].IsWinner)
}
