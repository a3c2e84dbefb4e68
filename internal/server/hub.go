package server

import (
	"sync"

	"github.com/charmbracelet/log"
)

// Hub fans frames out to the sessions attached to each room. Delivery is
// best-effort: a failed or slow session is evicted, never blocking the rest.
type Hub struct {
	mu       sync.RWMutex
	sessions map[string]map[*Session]struct{} // roomId -> attached sessions
	logger   *log.Logger
}

// NewHub creates an empty hub.
func NewHub(logger *log.Logger) *Hub {
	return &Hub{
		sessions: make(map[string]map[*Session]struct{}),
		logger:   logger.WithPrefix("hub"),
	}
}

// Attach subscribes a session to a room's broadcasts.
func (h *Hub) Attach(roomID string, s *Session) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.sessions[roomID]
	if !ok {
		set = make(map[*Session]struct{})
		h.sessions[roomID] = set
	}
	set[s] = struct{}{}
	h.logger.Debug("session attached", "roomId", roomID, "player", s.PlayerName(), "attached", len(set))
}

// Detach unsubscribes a session from a room.
func (h *Hub) Detach(roomID string, s *Session) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if set, ok := h.sessions[roomID]; ok {
		delete(set, s)
		if len(set) == 0 {
			delete(h.sessions, roomID)
		}
	}
}

// Broadcast sends one frame to every session attached to the room.
func (h *Hub) Broadcast(roomID string, frame *Frame) {
	h.fanout(roomID, func(*Session) *Frame { return frame })
}

// BroadcastPersonal sends a per-viewer frame to every session attached to
// the room, built from the session's player name. Used for snapshots so
// each viewer sees only their own hole cards.
func (h *Hub) BroadcastPersonal(roomID string, build func(playerName string) *Frame) {
	h.fanout(roomID, func(s *Session) *Frame { return build(s.PlayerName()) })
}

// SendToPlayer delivers a frame to one player's sessions in the room.
func (h *Hub) SendToPlayer(roomID, playerName string, frame *Frame) {
	h.fanout(roomID, func(s *Session) *Frame {
		if s.PlayerName() != playerName {
			return nil
		}
		return frame
	})
}

func (h *Hub) fanout(roomID string, pick func(*Session) *Frame) {
	h.mu.RLock()
	targets := make([]*Session, 0, len(h.sessions[roomID]))
	for s := range h.sessions[roomID] {
		targets = append(targets, s)
	}
	h.mu.RUnlock()

	for _, s := range targets {
		frame := pick(s)
		if frame == nil {
			continue
		}
		if err := s.Send(frame); err != nil {
			h.logger.Debug("evicting session after send failure",
				"roomId", roomID, "player", s.PlayerName(), "error", err)
			h.Detach(roomID, s)
		}
	}
}
