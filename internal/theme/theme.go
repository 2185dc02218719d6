// Package theme provides the Lip Gloss color palette and reusable styles
// for the notification TUI. It is a leaf package with no internal imports
// to avoid import cycles.
package theme

import "github.com/charmbracelet/lipgloss"

// Notification kind colors.
var (
	ColorEnrollment   = lipgloss.Color("#3b82f6")
	ColorMaterial     = lipgloss.Color("#22c55e")
	ColorFeedback     = lipgloss.Color("#a855f7")
	ColorSystem       = lipgloss.Color("#9ca3af")
	ColorAnnouncement = lipgloss.Color("#d97706")
	ColorOther        = lipgloss.Color("#6b7280")
)

// Connectivity colors.
var (
	ColorHealthy = lipgloss.Color("#22c55e")
	ColorWarning = lipgloss.Color("#d97706")
	ColorDanger  = lipgloss.Color("#dc2626")
)

// UI chrome colors.
var (
	ColorBorder    = lipgloss.Color("#4b5563")
	ColorDimmed    = lipgloss.Color("#6b7280")
	ColorBright    = lipgloss.Color("#f9fafb")
	ColorImportant = lipgloss.Color("#f59e0b")
	ColorUnread    = lipgloss.Color("#ef4444")
	ColorSelected  = lipgloss.Color("#1f2937")
)

// Toast is the transient-alert box style.
var Toast = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(ColorImportant).
	Padding(0, 1)

// Badge renders the unread-count pill.
var Badge = lipgloss.NewStyle().
	Foreground(ColorBright).
	Background(ColorUnread).
	Padding(0, 1).
	Bold(true)
