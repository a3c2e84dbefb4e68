package server

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/cardroomhq/cardroom/internal/game"
	"github.com/cardroomhq/cardroom/internal/room"
)

func dialWS(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/room"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

// awaitFrame reads frames until one of the wanted type arrives. Unrelated
// broadcasts in between are skipped.
func awaitFrame(t *testing.T, conn *websocket.Conn, frameType string) *Frame {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	for i := 0; i < 20; i++ {
		var frame Frame
		require.NoError(t, conn.ReadJSON(&frame), "waiting for %s", frameType)
		if frame.Type == frameType {
			return &frame
		}
	}
	t.Fatalf("no %s frame arrived", frameType)
	return nil
}

func joinWS(t *testing.T, conn *websocket.Conn, roomID, playerName string) {
	t.Helper()
	require.NoError(t, conn.WriteJSON(Frame{
		Type:       FrameJoinRoom,
		RoomID:     roomID,
		PlayerName: playerName,
	}))
}

func newWSTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	srv := New(DefaultConfig(), log.New(io.Discard), NopMonitor{}, quartz.NewMock(t))
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		srv.Coordinator().Stop()
		ts.Close()
	})
	return srv, ts
}

func TestWebsocketJoinRoom(t *testing.T) {
	srv, ts := newWSTestServer(t)
	created, err := srv.Coordinator().CreateRoom("friday", "alice", 4, 5, 10, 100, "")
	require.NoError(t, err)
	_, err = srv.Coordinator().JoinRoom(created.RoomID, "bob", "")
	require.NoError(t, err)

	alice := dialWS(t, ts)
	joinWS(t, alice, created.RoomID, "alice")

	joined := awaitFrame(t, alice, FrameJoinedRoom)
	var snap room.Snapshot
	require.NoError(t, json.Unmarshal(joined.Data, &snap))
	require.Equal(t, created.RoomID, snap.RoomID)
	require.Equal(t, []string{"alice", "bob"}, snap.Players)

	// Joining announces to the whole room, the joiner included.
	announce := awaitFrame(t, alice, FramePlayerJoined)
	var evt PlayerEventData
	require.NoError(t, json.Unmarshal(announce.Data, &evt))
	require.Equal(t, "alice", evt.PlayerName)

	// A second session joining is announced to the first.
	bob := dialWS(t, ts)
	joinWS(t, bob, created.RoomID, "bob")

	announce = awaitFrame(t, alice, FramePlayerJoined)
	require.NoError(t, json.Unmarshal(announce.Data, &evt))
	require.Equal(t, "bob", evt.PlayerName)
}

func TestWebsocketJoinErrors(t *testing.T) {
	_, ts := newWSTestServer(t)
	conn := dialWS(t, ts)

	require.NoError(t, conn.WriteJSON(Frame{Type: FrameJoinRoom}))
	frame := awaitFrame(t, conn, FrameError)
	var errData ErrorData
	require.NoError(t, json.Unmarshal(frame.Data, &errData))
	require.Equal(t, "invalid_frame", errData.Code)

	joinWS(t, conn, "doesnotexist", "alice")
	frame = awaitFrame(t, conn, FrameError)
	require.NoError(t, json.Unmarshal(frame.Data, &errData))
	require.Equal(t, "room_not_found", errData.Code)

	require.NoError(t, conn.WriteJSON(Frame{Type: "NONSENSE"}))
	frame = awaitFrame(t, conn, FrameError)
	require.NoError(t, json.Unmarshal(frame.Data, &errData))
	require.Equal(t, "unknown_frame_type", errData.Code)
}

func TestWebsocketGameFlow(t *testing.T) {
	srv, ts := newWSTestServer(t)
	coord := srv.Coordinator()

	created, err := coord.CreateRoom("friday", "alice", 4, 5, 10, 100, "")
	require.NoError(t, err)
	_, err = coord.JoinRoom(created.RoomID, "bob", "")
	require.NoError(t, err)

	alice := dialWS(t, ts)
	joinWS(t, alice, created.RoomID, "alice")
	awaitFrame(t, alice, FrameJoinedRoom)

	bob := dialWS(t, ts)
	joinWS(t, bob, created.RoomID, "bob")
	awaitFrame(t, bob, FrameJoinedRoom)

	gameID, err := coord.StartGame(created.RoomID, "alice")
	require.NoError(t, err)

	started := awaitFrame(t, alice, FrameGameStarted)
	var startData map[string]string
	require.NoError(t, json.Unmarshal(started.Data, &startData))
	require.Equal(t, gameID, startData["gameId"])

	// Snapshots are personal: each player sees only their own hole cards.
	stateFrame := awaitFrame(t, alice, FrameGameStateUpdate)
	var aliceView game.Snapshot
	require.NoError(t, json.Unmarshal(stateFrame.Data, &aliceView))
	require.Equal(t, "PRE_FLOP", aliceView.Phase)
	require.Len(t, aliceView.Players[0].Cards, 2)
	require.Empty(t, aliceView.Players[1].Cards)

	stateFrame = awaitFrame(t, bob, FrameGameStateUpdate)
	var bobView game.Snapshot
	require.NoError(t, json.Unmarshal(stateFrame.Data, &bobView))
	require.Empty(t, bobView.Players[0].Cards)
	require.Len(t, bobView.Players[1].Cards, 2)

	// Folding ends the hand; everyone gets the showdown results.
	require.NoError(t, coord.SubmitAction(gameID, "alice", game.Intent{Action: game.Fold}))

	results := awaitFrame(t, bob, FrameShowdownResults)
	var final game.Snapshot
	require.NoError(t, json.Unmarshal(results.Data, &final))
	require.Equal(t, "SHOWDOWN", final.Phase)
	require.True(t, final.Players[1].IsWinner)
	require.Equal(t, 15, final.Players[1].ChipsWon)
}

func TestWebsocketRoomClosedOnHostLeave(t *testing.T) {
	srv, ts := newWSTestServer(t)
	coord := srv.Coordinator()

	created, err := coord.CreateRoom("friday", "alice", 4, 5, 10, 100, "")
	require.NoError(t, err)
	_, err = coord.JoinRoom(created.RoomID, "bob", "")
	require.NoError(t, err)

	bob := dialWS(t, ts)
	joinWS(t, bob, created.RoomID, "bob")
	awaitFrame(t, bob, FrameJoinedRoom)

	require.NoError(t, coord.LeaveRoom(created.RoomID, "alice"))
	awaitFrame(t, bob, FrameRoomClosed)
}

func TestWebsocketLeaveRoomFrame(t *testing.T) {
	srv, ts := newWSTestServer(t)
	coord := srv.Coordinator()

	created, err := coord.CreateRoom("friday", "alice", 4, 5, 10, 100, "")
	require.NoError(t, err)
	_, err = coord.JoinRoom(created.RoomID, "bob", "")
	require.NoError(t, err)

	alice := dialWS(t, ts)
	joinWS(t, alice, created.RoomID, "alice")
	awaitFrame(t, alice, FrameJoinedRoom)

	bob := dialWS(t, ts)
	joinWS(t, bob, created.RoomID, "bob")
	awaitFrame(t, bob, FrameJoinedRoom)
	awaitFrame(t, alice, FramePlayerJoined)

	require.NoError(t, bob.WriteJSON(Frame{
		Type:       FrameLeaveRoom,
		RoomID:     created.RoomID,
		PlayerName: "bob",
	}))

	left := awaitFrame(t, alice, FramePlayerLeft)
	var evt PlayerEventData
	require.NoError(t, json.Unmarshal(left.Data, &evt))
	require.Equal(t, "bob", evt.PlayerName)
}
