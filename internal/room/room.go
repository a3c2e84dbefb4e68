// Package room holds lobby state: named rooms with a roster, stakes and an
// optional password. Once a game starts the room id doubles as the key for
// the running engine.
package room

import (
	"errors"
	"fmt"
)

var (
	ErrNameTaken     = errors.New("player name already taken")
	ErrRoomFull      = errors.New("room is full")
	ErrBadPassword   = errors.New("incorrect password")
	ErrNotHost       = errors.New("only the host can do that")
	ErrGameStarted   = errors.New("game already started")
	ErrTooFewPlayers = errors.New("need at least two players to start")
	ErrNotInRoom     = errors.New("player not in room")
)

// Room is the lobby-side view of a table.
type Room struct {
	ID         string
	Name       string
	HostName   string
	MaxPlayers int
	SmallBlind int
	BigBlind   int
	BuyIn      int
	Password   string

	Players     []string // roster in join order; becomes dealing order
	GameStarted bool
	GameID      string
}

// New validates stakes and creates a room with the host seated.
func New(id, name, hostName string, maxPlayers, smallBlind, bigBlind, buyIn int, password string) (*Room, error) {
	if name == "" || hostName == "" {
		return nil, fmt.Errorf("room name and host name are required")
	}
	if maxPlayers < 2 || maxPlayers > 10 {
		return nil, fmt.Errorf("max players must be between 2 and 10, got %d", maxPlayers)
	}
	if smallBlind <= 0 || bigBlind <= smallBlind {
		return nil, fmt.Errorf("big blind must exceed a positive small blind")
	}
	if buyIn < bigBlind {
		return nil, fmt.Errorf("buy-in must cover at least the big blind")
	}

	return &Room{
		ID:         id,
		Name:       name,
		HostName:   hostName,
		MaxPlayers: maxPlayers,
		SmallBlind: smallBlind,
		BigBlind:   bigBlind,
		BuyIn:      buyIn,
		Password:   password,
		Players:    []string{hostName},
	}, nil
}

// Join seats a player in the lobby.
func (r *Room) Join(playerName, password string) error {
	if r.Password != "" && password != r.Password {
		return ErrBadPassword
	}
	if r.GameStarted {
		return ErrGameStarted
	}
	if len(r.Players) >= r.MaxPlayers {
		return ErrRoomFull
	}
	for _, p := range r.Players {
		if p == playerName {
			return ErrNameTaken
		}
	}
	r.Players = append(r.Players, playerName)
	return nil
}

// Leave removes a player from the roster. Returns true when the room should
// be destroyed: the host left or the roster emptied.
func (r *Room) Leave(playerName string) (destroy bool, err error) {
	idx := -1
	for i, p := range r.Players {
		if p == playerName {
			idx = i
			break
		}
	}
	if idx == -1 {
		return false, ErrNotInRoom
	}
	r.Players = append(r.Players[:idx], r.Players[idx+1:]...)

	return playerName == r.HostName || len(r.Players) == 0, nil
}

// Start flips the room into playing state. Host only, two players minimum.
func (r *Room) Start(playerName, gameID string) error {
	if playerName != r.HostName {
		return ErrNotHost
	}
	if r.GameStarted {
		return ErrGameStarted
	}
	if len(r.Players) < 2 {
		return ErrTooFewPlayers
	}
	r.GameStarted = true
	r.GameID = gameID
	return nil
}

// HasPlayer reports roster membership.
func (r *Room) HasPlayer(playerName string) bool {
	for _, p := range r.Players {
		if p == playerName {
			return true
		}
	}
	return false
}

// Snapshot is the lobby wire view of a room. The password never leaves the
// server; only its presence does.
type Snapshot struct {
	RoomID      string   `json:"roomId"`
	RoomName    string   `json:"roomName"`
	HostName    string   `json:"hostName"`
	MaxPlayers  int      `json:"maxPlayers"`
	SmallBlind  int      `json:"smallBlind"`
	BigBlind    int      `json:"bigBlind"`
	BuyIn       int      `json:"buyIn"`
	HasPassword bool     `json:"hasPassword"`
	Players     []string `json:"players"`
	GameStarted bool     `json:"gameStarted"`
	GameID      string   `json:"gameId,omitempty"`
}

// Snapshot renders the room for the lobby API and websocket updates.
func (r *Room) Snapshot() Snapshot {
	return Snapshot{
		RoomID:      r.ID,
		RoomName:    r.Name,
		HostName:    r.HostName,
		MaxPlayers:  r.MaxPlayers,
		SmallBlind:  r.SmallBlind,
		BigBlind:    r.BigBlind,
		BuyIn:       r.BuyIn,
		HasPassword: r.Password != "",
		Players:     append([]string(nil), r.Players...),
		GameStarted: r.GameStarted,
		GameID:      r.GameID,
	}
}
