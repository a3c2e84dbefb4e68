package server

import "encoding/json"

// Websocket frame types, client to server.
const (
	FrameJoinRoom  = "JOIN_ROOM"
	FrameLeaveRoom = "LEAVE_ROOM"
)

// Websocket frame types, server to client.
const (
	FrameJoinedRoom      = "JOINED_ROOM"
	FrameRoomUpdate      = "ROOM_UPDATE"
	FramePlayerJoined    = "PLAYER_JOINED"
	FramePlayerLeft      = "PLAYER_LEFT"
	FrameRoomClosed      = "ROOM_CLOSED"
	FrameGameStarted     = "GAME_STARTED"
	FrameGameStateUpdate = "GAME_STATE_UPDATE"
	FrameShowdownResults = "SHOWDOWN_RESULTS"
	FramePlayerNote      = "PLAYER_NOTIFICATION"
	FrameAutoAdvanceNote = "AUTO_ADVANCE_NOTIFICATION"
	FrameError           = "ERROR"
)

// Frame is the websocket wire envelope: {type, roomId, playerName?, data?}.
type Frame struct {
	Type       string          `json:"type"`
	RoomID     string          `json:"roomId,omitempty"`
	PlayerName string          `json:"playerName,omitempty"`
	Data       json.RawMessage `json:"data,omitempty"`
}

// NewFrame builds a frame, marshalling data if non-nil.
func NewFrame(frameType, roomID string, data any) (*Frame, error) {
	f := &Frame{Type: frameType, RoomID: roomID}
	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			return nil, err
		}
		f.Data = raw
	}
	return f, nil
}

// PlayerEventData announces a roster change.
type PlayerEventData struct {
	PlayerName string `json:"playerName"`
}

// NotificationData carries a player-directed note, such as an illegal
// amount having been converted to all-in.
type NotificationData struct {
	Message string `json:"message"`
}

// ErrorData is the payload of an ERROR frame.
type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
