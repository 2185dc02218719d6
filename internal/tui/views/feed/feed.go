// Package feed renders the recent-notification list (the dropdown in the
// web client).
package feed

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/softwarechaser9/elearning-notify/internal/notify"
	"github.com/softwarechaser9/elearning-notify/internal/theme"
)

// Model holds the feed list state.
type Model struct {
	Items    []notify.Notification
	Selected int
	Width    int
}

// New creates an empty feed model.
func New() Model {
	return Model{}
}

// SetItems replaces the list with a new snapshot, clamping the selection.
func (m *Model) SetItems(items []notify.Notification) {
	m.Items = items
	if m.Selected >= len(items) {
		m.Selected = len(items) - 1
	}
	if m.Selected < 0 {
		m.Selected = 0
	}
}

// MoveUp moves the selection toward the newest entry.
func (m *Model) MoveUp() {
	if m.Selected > 0 {
		m.Selected--
	}
}

// MoveDown moves the selection toward the oldest entry.
func (m *Model) MoveDown() {
	if m.Selected < len(m.Items)-1 {
		m.Selected++
	}
}

// Current returns the selected notification, if any.
func (m Model) Current() (notify.Notification, bool) {
	if m.Selected < 0 || m.Selected >= len(m.Items) {
		return notify.Notification{}, false
	}
	return m.Items[m.Selected], true
}

// KindColor maps a notification kind to its accent color.
func KindColor(k notify.Kind) lipgloss.Color {
	switch k {
	case notify.KindEnrollment:
		return theme.ColorEnrollment
	case notify.KindMaterial:
		return theme.ColorMaterial
	case notify.KindFeedback:
		return theme.ColorFeedback
	case notify.KindSystem:
		return theme.ColorSystem
	case notify.KindAnnouncement:
		return theme.ColorAnnouncement
	default:
		return theme.ColorOther
	}
}

// View renders the list, newest first.
func (m Model) View() string {
	if len(m.Items) == 0 {
		return lipgloss.NewStyle().Foreground(theme.ColorDimmed).Render("  no notifications yet")
	}

	var b strings.Builder
	for i, n := range m.Items {
		kind := lipgloss.NewStyle().Foreground(KindColor(n.Kind)).Render("[" + string(n.Kind) + "]")

		title := n.Title
		if n.IsImportant {
			title = lipgloss.NewStyle().Foreground(theme.ColorImportant).Bold(true).Render("! " + title)
		} else {
			title = lipgloss.NewStyle().Foreground(theme.ColorBright).Render(title)
		}

		when := lipgloss.NewStyle().Foreground(theme.ColorDimmed).Render(n.CreatedAt)

		line := "  " + kind + " " + title + "  " + when
		if i == m.Selected {
			line = lipgloss.NewStyle().Background(theme.ColorSelected).Render("> " + kind + " " + title + "  " + when)
		}
		b.WriteString(line)
		b.WriteString("\n")

		if i == m.Selected && n.Message != "" {
			msg := lipgloss.NewStyle().Foreground(theme.ColorDimmed).PaddingLeft(4).Render(n.Message)
			b.WriteString(msg)
			b.WriteString("\n")
		}
	}
	return b.String()
}
