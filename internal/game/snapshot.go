package game

import "github.com/cardroomhq/cardroom/internal/deck"

// PlayerView is one seat as rendered for a specific viewer.
type PlayerView struct {
	ID              string      `json:"id"`
	Name            string      `json:"name"`
	Chips           int         `json:"chips"`
	CurrentBet      int         `json:"currentBet"`
	Status          string      `json:"status"`
	IsCurrentPlayer bool        `json:"isCurrentPlayer"`
	IsAllIn         bool        `json:"isAllIn"`
	HasFolded       bool        `json:"hasFolded"`
	Cards           []deck.Card `json:"cards"`
	HandRank        string      `json:"handRank,omitempty"`
	IsWinner        bool        `json:"isWinner,omitempty"`
	ChipsWon        int         `json:"chipsWon,omitempty"`
}

// Snapshot is the full game state as seen by one viewer. Other players'
// hole cards stay hidden until showdown reveals best hands.
type Snapshot struct {
	GameID            string       `json:"gameId"`
	Pot               int          `json:"pot"`
	Phase             string       `json:"phase"`
	CurrentBet        int          `json:"currentBet"`
	CommunityCards    []deck.Card  `json:"communityCards"`
	CurrentPlayerName string       `json:"currentPlayerName,omitempty"`
	IsAutoAdvancing   bool         `json:"isAutoAdvancing"`
	Players           []PlayerView `json:"players"`
}

// Snapshot renders the current state for the named viewer.
func (e *Engine) Snapshot(viewer string) Snapshot {
	snap := Snapshot{
		GameID:            e.gameID,
		Pot:               e.pot,
		Phase:             e.phase.String(),
		CurrentBet:        e.currentHighestBet,
		CommunityCards:    append([]deck.Card(nil), e.community...),
		CurrentPlayerName: e.CurrentActorName(),
		IsAutoAdvancing:   e.autoAdvancing,
	}

	for _, s := range e.active {
		view := PlayerView{
			ID:              s.ID,
			Name:            s.Name,
			Chips:           s.Chips,
			CurrentBet:      s.CurrentBet,
			Status:          s.Status(),
			IsCurrentPlayer: s.Name == snap.CurrentPlayerName && snap.CurrentPlayerName != "",
			IsAllIn:         s.IsAllIn,
			HasFolded:       s.HasFolded,
		}

		switch {
		case e.revealed && !s.HasFolded:
			view.Cards = append([]deck.Card(nil), s.BestHand...)
			view.HandRank = s.HandRank.String()
		case s.Name == viewer:
			view.Cards = append([]deck.Card(nil), s.HoleCards...)
		}

		if won, ok := e.winners[s.ID]; ok {
			view.IsWinner = true
			view.ChipsWon = won
		}

		snap.Players = append(snap.Players, view)
	}
	return snap
}
