// Package hub is the server peer of the notification channel. It keeps a
// per-user registry of connected channels, persists notifications, and
// pushes notification and count_update frames to every channel a user has
// open.
package hub

import (
	"log"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/softwarechaser9/elearning-notify/internal/notify"
	"github.com/softwarechaser9/elearning-notify/internal/wire"
)

type client struct {
	user string
	conn *websocket.Conn
	send chan []byte
}

func newClient(user string, conn *websocket.Conn) *client {
	c := &client{
		user: user,
		conn: conn,
		send: make(chan []byte, 64),
	}
	go c.writePump()
	return c
}

func (c *client) writePump() {
	defer c.conn.Close()
	for msg := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
}

func (c *client) close() {
	close(c.send)
}

// Hub fans notifications out to each recipient's connected channels.
type Hub struct {
	mu     sync.RWMutex
	groups map[string]map[*client]bool
	store  *Store
}

func NewHub(store *Store) *Hub {
	return &Hub{
		groups: make(map[string]map[*client]bool),
		store:  store,
	}
}

// Register adds a channel for user and immediately pushes the
// authoritative unread count, so a reconnecting client resynchronizes its
// counter without waiting for the next event.
func (h *Hub) Register(user string, conn *websocket.Conn) *client {
	c := newClient(user, conn)

	h.mu.Lock()
	group, ok := h.groups[user]
	if !ok {
		group = make(map[*client]bool)
		h.groups[user] = group
	}
	group[c] = true
	h.mu.Unlock()

	h.pushCount(user)
	return c
}

// Remove drops a channel from its user's group.
func (h *Hub) Remove(c *client) {
	h.mu.Lock()
	if group, ok := h.groups[c.user]; ok {
		if group[c] {
			delete(group, c)
			c.close()
		}
		if len(group) == 0 {
			delete(h.groups, c.user)
		}
	}
	h.mu.Unlock()
}

// Publish persists n for user, pushes it to the user's channels, and
// follows with the new authoritative count. Missing fields are filled:
// id minted, kind defaulted, display timestamp set.
func (h *Hub) Publish(user string, n notify.Notification) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.Kind == "" {
		n.Kind = notify.KindOther
	}
	if n.CreatedAt == "" {
		n.CreatedAt = "just now"
	}
	if err := h.store.Save(user, n); err != nil {
		return err
	}

	data, err := wire.EncodeNotification(n)
	if err != nil {
		return err
	}
	h.send(user, data)
	h.pushCount(user)
	return nil
}

// MarkRead flags one notification read and pushes the corrected count.
func (h *Hub) MarkRead(user, id string) {
	if err := h.store.MarkRead(user, id); err != nil {
		log.Printf("hub: %v", err)
		return
	}
	h.pushCount(user)
}

// MarkAllRead flags everything read and pushes the corrected count.
func (h *Hub) MarkAllRead(user string) {
	if err := h.store.MarkAllRead(user); err != nil {
		log.Printf("hub: %v", err)
		return
	}
	h.pushCount(user)
}

func (h *Hub) pushCount(user string) {
	count, err := h.store.UnreadCount(user)
	if err != nil {
		log.Printf("hub: %v", err)
		return
	}
	data, err := wire.EncodeCountUpdate(count)
	if err != nil {
		log.Printf("hub: encode count_update: %v", err)
		return
	}
	h.send(user, data)
}

func (h *Hub) send(user string, data []byte) {
	h.mu.RLock()
	clients := make([]*client, 0, len(h.groups[user]))
	for c := range h.groups[user] {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		select {
		case c.send <- data:
		default:
			// Client can't keep up, disconnect it
			log.Printf("hub: client for %s too slow, disconnecting", user)
			h.Remove(c)
		}
	}
}

// ClientCount reports the number of connected channels across all users.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	count := 0
	for _, group := range h.groups {
		count += len(group)
	}
	return count
}
