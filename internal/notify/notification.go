// Package notify holds the client-side notification state: the bounded
// feed of recent notifications, the unread counter, and the change-event
// contract the presentation layer consumes. It is a leaf package with no
// internal imports.
package notify

// Kind classifies a notification.
type Kind string

const (
	KindEnrollment   Kind = "enrollment"
	KindMaterial     Kind = "material"
	KindFeedback     Kind = "feedback"
	KindSystem       Kind = "system"
	KindAnnouncement Kind = "announcement"
	KindOther        Kind = "other"
)

// Notification is one notification as delivered over the channel. It is
// immutable once received; the read flag is server-owned and only ever
// changed by sending a mark_read signal back.
type Notification struct {
	ID          string `json:"id"`
	Kind        Kind   `json:"type"`
	Title       string `json:"title"`
	Message     string `json:"message"`
	CreatedAt   string `json:"created_at"` // display string, e.g. "just now"
	IsImportant bool   `json:"is_important"`
}
