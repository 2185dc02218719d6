package hub

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/softwarechaser9/elearning-notify/internal/notify"
)

const schema = `
CREATE TABLE IF NOT EXISTS notifications (
    id TEXT PRIMARY KEY,
    recipient TEXT NOT NULL,
    kind TEXT NOT NULL,
    title TEXT NOT NULL,
    message TEXT NOT NULL,
    is_important INTEGER NOT NULL DEFAULT 0,
    is_read INTEGER NOT NULL DEFAULT 0,
    created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_notifications_recipient
    ON notifications(recipient);

CREATE INDEX IF NOT EXISTS idx_notifications_unread
    ON notifications(recipient, is_read) WHERE is_read = 0;
`

// Store is the server-side notification history, backed by sqlite. The
// client never reads it directly; it only sees frames derived from it.
type Store struct {
	db *sql.DB
}

// OpenStore opens (creating if needed) the notification database at path.
func OpenStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("hub: open store: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("hub: init schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Save persists one notification addressed to recipient. The creation
// time is recorded server-side; the display string on the wire frame is
// the hub's concern.
func (s *Store) Save(recipient string, n notify.Notification) error {
	_, err := s.db.Exec(
		`INSERT INTO notifications (id, recipient, kind, title, message, is_important)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		n.ID, recipient, string(n.Kind), n.Title, n.Message, boolToInt(n.IsImportant),
	)
	if err != nil {
		return fmt.Errorf("hub: save notification: %w", err)
	}
	return nil
}

// Recent returns up to limit notifications for recipient, newest first.
func (s *Store) Recent(recipient string, limit int) ([]notify.Notification, error) {
	rows, err := s.db.Query(
		`SELECT id, kind, title, message, is_important, strftime('%Y-%m-%d %H:%M', created_at)
		 FROM notifications WHERE recipient = ?
		 ORDER BY created_at DESC, rowid DESC LIMIT ?`,
		recipient, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("hub: list notifications: %w", err)
	}
	defer rows.Close()

	var out []notify.Notification
	for rows.Next() {
		var n notify.Notification
		var kind string
		var important int
		if err := rows.Scan(&n.ID, &kind, &n.Title, &n.Message, &important, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("hub: scan notification: %w", err)
		}
		n.Kind = notify.Kind(kind)
		n.IsImportant = important != 0
		out = append(out, n)
	}
	return out, rows.Err()
}

// UnreadCount returns the authoritative unread count for recipient.
func (s *Store) UnreadCount(recipient string) (int, error) {
	var count int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM notifications WHERE recipient = ? AND is_read = 0`,
		recipient,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("hub: unread count: %w", err)
	}
	return count, nil
}

// MarkRead flags one notification read. Unknown ids are ignored, matching
// the fire-and-forget contract of the mark_read signal.
func (s *Store) MarkRead(recipient, id string) error {
	_, err := s.db.Exec(
		`UPDATE notifications SET is_read = 1 WHERE id = ? AND recipient = ?`,
		id, recipient,
	)
	if err != nil {
		return fmt.Errorf("hub: mark read: %w", err)
	}
	return nil
}

// MarkAllRead flags every notification for recipient read.
func (s *Store) MarkAllRead(recipient string) error {
	_, err := s.db.Exec(
		`UPDATE notifications SET is_read = 1 WHERE recipient = ? AND is_read = 0`,
		recipient,
	)
	if err != nil {
		return fmt.Errorf("hub: mark all read: %w", err)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
