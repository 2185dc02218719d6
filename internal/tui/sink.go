package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/softwarechaser9/elearning-notify/internal/notify"
)

// Messages posted into the Bubble Tea program by the session sink.
type (
	// ConnMsg reports channel connectivity.
	ConnMsg struct{ Connected bool }
	// ArrivedMsg delivers one newly arrived notification; the app may
	// raise a toast for it.
	ArrivedMsg struct{ Notification notify.Notification }
	// FeedMsg delivers the new feed snapshot.
	FeedMsg struct{ Items []notify.Notification }
	// UnreadMsg delivers the new unread count.
	UnreadMsg struct{ Count int }
	// GaveUpMsg reports that reconnection stopped for good.
	GaveUpMsg struct{}
)

// ProgramSink forwards core change events into a Bubble Tea program. Bind
// must be called before the session is attached.
type ProgramSink struct {
	p *tea.Program
}

// NewProgramSink creates an unbound sink.
func NewProgramSink() *ProgramSink {
	return &ProgramSink{}
}

// Bind points the sink at its program.
func (s *ProgramSink) Bind(p *tea.Program) {
	s.p = p
}

func (s *ProgramSink) ConnectionChanged(connected bool) {
	s.p.Send(ConnMsg{Connected: connected})
}

func (s *ProgramSink) NotificationArrived(n notify.Notification) {
	s.p.Send(ArrivedMsg{Notification: n})
}

func (s *ProgramSink) FeedChanged(items []notify.Notification) {
	s.p.Send(FeedMsg{Items: items})
}

func (s *ProgramSink) UnreadChanged(count int) {
	s.p.Send(UnreadMsg{Count: count})
}

func (s *ProgramSink) RetryExhausted() {
	s.p.Send(GaveUpMsg{})
}
