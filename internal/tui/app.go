// Package tui is the terminal presentation layer for the notification
// session. It owns everything the core does not: rendering the feed and
// unread badge, and the transient toast raised when a notification
// arrives, including its timed dismissal.
package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/softwarechaser9/elearning-notify/internal/notify"
	"github.com/softwarechaser9/elearning-notify/internal/theme"
	"github.com/softwarechaser9/elearning-notify/internal/tui/views/feed"
	"github.com/softwarechaser9/elearning-notify/internal/tui/views/status"
)

// toastDuration is how long a transient alert stays up before
// auto-dismissing.
const toastDuration = 5 * time.Second

// MarkReader is the slice of the session the TUI drives: the outbound
// mark-read signal.
type MarkReader interface {
	MarkRead(notificationID string)
}

// toastExpiredMsg dismisses the toast armed with the matching sequence
// number. A newer toast keeps its own timer; stale expiries are ignored.
type toastExpiredMsg struct{ seq int }

// Model is the root Bubble Tea model.
type Model struct {
	sess MarkReader
	keys KeyMap

	width  int
	height int

	statusBar status.Model
	feed      feed.Model

	toast    *notify.Notification
	toastSeq int
}

// New creates the root model.
func New(sess MarkReader) Model {
	return Model{
		sess:      sess,
		keys:      DefaultKeyMap(),
		statusBar: status.New(),
		feed:      feed.New(),
	}
}

// Init does nothing; the session is attached outside the program.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.statusBar.Width = msg.Width
		m.feed.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case ConnMsg:
		m.statusBar.Connected = msg.Connected
		if msg.Connected {
			m.statusBar.GaveUp = false
		}
		return m, nil

	case GaveUpMsg:
		m.statusBar.GaveUp = true
		return m, nil

	case FeedMsg:
		m.feed.SetItems(msg.Items)
		return m, nil

	case UnreadMsg:
		m.statusBar.Unread = msg.Count
		return m, nil

	case ArrivedMsg:
		n := msg.Notification
		m.toast = &n
		m.toastSeq++
		seq := m.toastSeq
		return m, tea.Tick(toastDuration, func(time.Time) tea.Msg {
			return toastExpiredMsg{seq: seq}
		})

	case toastExpiredMsg:
		if msg.seq == m.toastSeq {
			m.toast = nil
		}
		return m, nil
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Up):
		m.feed.MoveUp()
		return m, nil

	case key.Matches(msg, m.keys.Down):
		m.feed.MoveDown()
		return m, nil

	case key.Matches(msg, m.keys.MarkRead):
		if n, ok := m.feed.Current(); ok {
			m.sess.MarkRead(n.ID)
		}
		return m, nil
	}

	return m, nil
}

// View renders the app.
func (m Model) View() string {
	title := lipgloss.NewStyle().Foreground(theme.ColorBright).Bold(true).Render("Notifications")
	help := lipgloss.NewStyle().Foreground(theme.ColorDimmed).Render("j/k move · enter mark read · q quit")

	sections := []string{
		m.statusBar.View(),
		"",
		title,
		m.feed.View(),
		help,
	}

	out := lipgloss.JoinVertical(lipgloss.Left, sections...)

	if m.toast != nil {
		toast := theme.Toast.Render(m.toast.Title)
		out = lipgloss.JoinVertical(lipgloss.Left, toast, out)
	}

	return out
}
