package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/cardroomhq/cardroom/internal/deck"
	"github.com/cardroomhq/cardroom/internal/evaluator"
	"github.com/cardroomhq/cardroom/internal/game"
	"github.com/cardroomhq/cardroom/internal/room"
)

// Request and response bodies for the lobby and game API.

type createRoomRequest struct {
	RoomName   string `json:"roomName"`
	PlayerName string `json:"playerName"`
	MaxPlayers int    `json:"maxPlayers"`
	SmallBlind int    `json:"smallBlind"`
	BigBlind   int    `json:"bigBlind"`
	BuyIn      int    `json:"buyIn"`
	Password   string `json:"password,omitempty"`
}

type createRoomResponse struct {
	RoomID   string `json:"roomId"`
	HostName string `json:"hostName"`
	Message  string `json:"message"`
}

type joinRoomRequest struct {
	RoomID     string `json:"roomId,omitempty"`
	RoomName   string `json:"roomName,omitempty"`
	PlayerName string `json:"playerName"`
	Password   string `json:"password,omitempty"`
}

type joinRoomResponse struct {
	RoomID     string `json:"roomId"`
	RoomName   string `json:"roomName"`
	PlayerName string `json:"playerName"`
}

type startGameRequest struct {
	PlayerName string `json:"playerName"`
}

type startGameResponse struct {
	GameID  string `json:"gameId"`
	Message string `json:"message"`
}

type leaveRoomRequest struct {
	PlayerName string `json:"playerName"`
}

type actionRequest struct {
	PlayerName string `json:"playerName"`
	Action     string `json:"action"`
	Amount     int    `json:"amount,omitempty"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/game/create-room", s.handleCreateRoom)
	mux.HandleFunc("POST /api/game/room/join-by-name", s.handleJoinByName)
	mux.HandleFunc("POST /api/game/room/{roomId}/join", s.handleJoinRoom)
	mux.HandleFunc("GET /api/game/room/{roomId}", s.handleGetRoom)
	mux.HandleFunc("POST /api/game/room/{roomId}/start-game", s.handleStartGame)
	mux.HandleFunc("POST /api/game/room/{roomId}/leave", s.handleLeaveRoom)
	mux.HandleFunc("POST /api/game/{gameId}/action", s.handleAction)
	mux.HandleFunc("GET /api/game/{gameId}/state", s.handleGameState)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("/ws/room", s.handleWebSocket)
}

func (s *Server) handleCreateRoom(w http.ResponseWriter, r *http.Request) {
	var req createRoomRequest
	if !s.decode(w, r, &req) {
		return
	}

	snap, err := s.coord.CreateRoom(req.RoomName, req.PlayerName,
		req.MaxPlayers, req.SmallBlind, req.BigBlind, req.BuyIn, req.Password)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, createRoomResponse{
		RoomID:   snap.RoomID,
		HostName: snap.HostName,
		Message:  "room created",
	})
}

func (s *Server) handleJoinByName(w http.ResponseWriter, r *http.Request) {
	var req joinRoomRequest
	if !s.decode(w, r, &req) {
		return
	}

	snap, err := s.coord.JoinRoomByName(req.RoomName, req.PlayerName, req.Password)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, joinRoomResponse{
		RoomID:     snap.RoomID,
		RoomName:   snap.RoomName,
		PlayerName: req.PlayerName,
	})
}

func (s *Server) handleJoinRoom(w http.ResponseWriter, r *http.Request) {
	var req joinRoomRequest
	if !s.decode(w, r, &req) {
		return
	}

	snap, err := s.coord.JoinRoom(r.PathValue("roomId"), req.PlayerName, req.Password)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, joinRoomResponse{
		RoomID:     snap.RoomID,
		RoomName:   snap.RoomName,
		PlayerName: req.PlayerName,
	})
}

func (s *Server) handleGetRoom(w http.ResponseWriter, r *http.Request) {
	snap, err := s.coord.RoomSnapshot(r.PathValue("roomId"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleStartGame(w http.ResponseWriter, r *http.Request) {
	var req startGameRequest
	if !s.decode(w, r, &req) {
		return
	}

	gameID, err := s.coord.StartGame(r.PathValue("roomId"), req.PlayerName)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, startGameResponse{GameID: gameID, Message: "game started"})
}

func (s *Server) handleLeaveRoom(w http.ResponseWriter, r *http.Request) {
	var req leaveRoomRequest
	if !s.decode(w, r, &req) {
		return
	}

	if err := s.coord.LeaveRoom(r.PathValue("roomId"), req.PlayerName); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, messageResponse{Message: "left room"})
}

func (s *Server) handleAction(w http.ResponseWriter, r *http.Request) {
	var req actionRequest
	if !s.decode(w, r, &req) {
		return
	}

	action, err := game.ParseAction(req.Action)
	if err != nil {
		s.writeError(w, err)
		return
	}

	err = s.coord.SubmitAction(r.PathValue("gameId"), req.PlayerName,
		game.Intent{Action: action, Amount: req.Amount})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, messageResponse{Message: "action accepted"})
}

func (s *Server) handleGameState(w http.ResponseWriter, r *http.Request) {
	snap, err := s.coord.GameSnapshot(r.PathValue("gameId"), r.URL.Query().Get("playerName"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return false
	}
	return true
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to encode response", "error", err)
	}
}

// writeError maps error kinds onto transport status codes.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusBadRequest
	switch {
	case errors.Is(err, ErrRoomNotFound), errors.Is(err, ErrGameNotFound):
		status = http.StatusNotFound
	case errors.Is(err, room.ErrNotHost), errors.Is(err, game.ErrNotYourTurn):
		status = http.StatusForbidden
	case errors.Is(err, deck.ErrDeckExhausted), errors.Is(err, evaluator.ErrMalformedInput):
		// Engine bugs surface as 500; the room executor lives on.
		status = http.StatusInternalServerError
	}
	s.writeJSON(w, status, errorResponse{Error: err.Error()})
}
