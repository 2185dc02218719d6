// Package status renders the connection/unread status bar.
package status

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/softwarechaser9/elearning-notify/internal/theme"
)

// Model holds the status bar state.
type Model struct {
	Connected bool
	GaveUp    bool
	Unread    int
	Width     int
}

// New creates a status bar model.
func New() Model {
	return Model{}
}

// View renders the status bar.
func (m Model) View() string {
	width := m.Width
	if width < 40 {
		width = 40
	}

	var connStr string
	switch {
	case m.Connected:
		connStr = lipgloss.NewStyle().Foreground(theme.ColorHealthy).Render("● Connected")
	case m.GaveUp:
		connStr = lipgloss.NewStyle().Foreground(theme.ColorDanger).Render("○ Offline (gave up)")
	default:
		connStr = lipgloss.NewStyle().Foreground(theme.ColorWarning).Render("○ Connecting...")
	}

	var badge string
	if m.Unread > 0 {
		badge = theme.Badge.Render(fmt.Sprintf("%d unread", m.Unread))
	} else {
		badge = lipgloss.NewStyle().Foreground(theme.ColorDimmed).Render("all read")
	}

	bar := lipgloss.JoinHorizontal(lipgloss.Center, connStr, "  ", badge)
	return lipgloss.NewStyle().Width(width).Render(bar)
}
