package server

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a frame to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum frame size allowed from peer
	maxFrameSize = 8192
)

// ErrSessionClosed is returned when sending on a closed or saturated session.
var ErrSessionClosed = errors.New("session closed")

// Session wraps one websocket connection on /ws/room. A session belongs to
// at most one room at a time; the hub owns the room-to-session index.
type Session struct {
	conn  *websocket.Conn
	send  chan *Frame
	coord *Coordinator
	hub   *Hub

	logger *log.Logger
	ctx    context.Context
	cancel context.CancelFunc

	mu         sync.RWMutex
	playerName string
	roomID     string
	closeOnce  sync.Once
}

// NewSession wraps an upgraded websocket connection.
func NewSession(conn *websocket.Conn, coord *Coordinator, hub *Hub, logger *log.Logger) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	return &Session{
		conn:   conn,
		send:   make(chan *Frame, 256),
		coord:  coord,
		hub:    hub,
		logger: logger.WithPrefix("session"),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Start begins the read and write pumps.
func (s *Session) Start() {
	go s.writePump()
	go s.readPump()
}

// Done is closed when the session terminates.
func (s *Session) Done() <-chan struct{} {
	return s.ctx.Done()
}

// Close tears down the session once.
func (s *Session) Close() error {
	var err error
	s.closeOnce.Do(func() {
		s.cancel()
		close(s.send)
		err = s.conn.Close()
	})
	return err
}

// Send queues a frame for delivery. A full buffer closes the session rather
// than stalling the sender.
func (s *Session) Send(frame *Frame) error {
	defer func() {
		if r := recover(); r != nil {
			// Send channel closed during shutdown; callers treat this
			// like any other dead session.
			s.logger.Debug("send on closed session", "error", r)
		}
	}()

	select {
	case s.send <- frame:
		return nil
	case <-s.ctx.Done():
		return ErrSessionClosed
	default:
		s.logger.Warn("session send buffer full, closing", "player", s.PlayerName())
		_ = s.Close()
		return ErrSessionClosed
	}
}

// PlayerName returns the player associated with this session.
func (s *Session) PlayerName() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.playerName
}

// RoomID returns the room this session is attached to.
func (s *Session) RoomID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.roomID
}

func (s *Session) setIdentity(playerName, roomID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.playerName = playerName
	s.roomID = roomID
}

func (s *Session) readPump() {
	defer func() { _ = s.Close() }()

	s.conn.SetReadLimit(maxFrameSize)
	_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		select {
		case <-s.ctx.Done():
			return
		default:
		}

		var frame Frame
		if err := s.conn.ReadJSON(&frame); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				s.logger.Error("websocket error", "error", err)
			}
			return
		}
		s.handleFrame(&frame)
	}
}

func (s *Session) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = s.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-s.send:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = s.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := s.conn.WriteJSON(frame); err != nil {
				s.logger.Error("failed to write frame", "error", err)
				return
			}

		case <-ticker.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-s.ctx.Done():
			return
		}
	}
}

func (s *Session) handleFrame(frame *Frame) {
	s.logger.Debug("frame received", "type", frame.Type, "roomId", frame.RoomID, "player", frame.PlayerName)

	switch frame.Type {
	case FrameJoinRoom:
		s.handleJoinRoom(frame)
	case FrameLeaveRoom:
		s.handleLeaveRoom(frame)
	default:
		s.sendError("unknown_frame_type", "unknown frame type: "+frame.Type)
	}
}

func (s *Session) handleJoinRoom(frame *Frame) {
	if frame.RoomID == "" || frame.PlayerName == "" {
		s.sendError("invalid_frame", "roomId and playerName are required")
		return
	}

	snap, err := s.coord.RoomSnapshot(frame.RoomID)
	if err != nil {
		s.sendError("room_not_found", err.Error())
		return
	}

	// Leave any previous room first; one room per session.
	if prev := s.RoomID(); prev != "" && prev != frame.RoomID {
		s.hub.Detach(prev, s)
	}

	s.setIdentity(frame.PlayerName, frame.RoomID)
	s.hub.Attach(frame.RoomID, s)

	joined, err := NewFrame(FrameJoinedRoom, frame.RoomID, snap)
	if err == nil {
		_ = s.Send(joined)
	}

	announce, err := NewFrame(FramePlayerJoined, frame.RoomID, PlayerEventData{PlayerName: frame.PlayerName})
	if err == nil {
		s.hub.Broadcast(frame.RoomID, announce)
	}
}

func (s *Session) handleLeaveRoom(frame *Frame) {
	roomID := frame.RoomID
	if roomID == "" {
		roomID = s.RoomID()
	}
	if roomID == "" {
		return
	}

	s.hub.Detach(roomID, s)
	s.setIdentity(s.PlayerName(), "")

	announce, err := NewFrame(FramePlayerLeft, roomID, PlayerEventData{PlayerName: frame.PlayerName})
	if err == nil {
		s.hub.Broadcast(roomID, announce)
	}
}

func (s *Session) sendError(code, message string) {
	frame, err := NewFrame(FrameError, "", ErrorData{Code: code, Message: message})
	if err != nil {
		return
	}
	_ = s.Send(frame)
}
