package server

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/cardroomhq/cardroom/internal/game"
)

// HandMonitor observes completed hands for operator-facing output.
type HandMonitor interface {
	HandFinished(roomID string, snap game.Snapshot)
}

// NopMonitor discards all events.
type NopMonitor struct{}

func (NopMonitor) HandFinished(string, game.Snapshot) {}

// ConsoleMonitor renders hand results to the server console alongside the
// structured logs.
type ConsoleMonitor struct {
	writer io.Writer

	title  lipgloss.Style
	winner lipgloss.Style
	dim    lipgloss.Style
	board  lipgloss.Style
}

// NewConsoleMonitor creates a console monitor. A nil writer uses stdout.
func NewConsoleMonitor(writer io.Writer) *ConsoleMonitor {
	if writer == nil {
		writer = os.Stdout
	}
	return &ConsoleMonitor{
		writer: writer,
		title:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14")),
		winner: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10")),
		dim:    lipgloss.NewStyle().Faint(true),
		board:  lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
	}
}

// HandFinished prints a one-hand summary: board, then each player with
// their revealed hand and winnings.
func (m *ConsoleMonitor) HandFinished(roomID string, snap game.Snapshot) {
	var b strings.Builder

	b.WriteString(m.title.Render(fmt.Sprintf("hand complete · room %s", roomID)))
	b.WriteByte('\n')

	if len(snap.CommunityCards) > 0 {
		cards := make([]string, len(snap.CommunityCards))
		for i, c := range snap.CommunityCards {
			cards[i] = c.String()
		}
		b.WriteString("board: " + m.board.Render(strings.Join(cards, " ")))
		b.WriteByte('\n')
	}

	for _, p := range snap.Players {
		line := fmt.Sprintf("  %-12s %6d chips", p.Name, p.Chips)
		if p.HandRank != "" {
			line += "  " + p.HandRank
		}
		switch {
		case p.IsWinner:
			line += fmt.Sprintf("  wins %d", p.ChipsWon)
			b.WriteString(m.winner.Render(line))
		case p.HasFolded:
			b.WriteString(m.dim.Render(line + "  folded"))
		default:
			b.WriteString(line)
		}
		b.WriteByte('\n')
	}

	fmt.Fprint(m.writer, b.String())
}
