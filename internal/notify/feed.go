package notify

// DefaultFeedCapacity bounds the recent-notification feed.
const DefaultFeedCapacity = 10

// Feed is a bounded, newest-first list of recent notifications. Insertion
// is always at the head; once the capacity is reached the oldest entry is
// evicted from the tail. The feed is owned by the session event loop and
// is not safe for concurrent use.
type Feed struct {
	capacity int
	items    []Notification
}

// NewFeed creates an empty feed. A non-positive capacity selects the default.
func NewFeed(capacity int) *Feed {
	if capacity <= 0 {
		capacity = DefaultFeedCapacity
	}
	return &Feed{capacity: capacity}
}

// Insert puts n at the head, evicting past capacity.
func (f *Feed) Insert(n Notification) {
	f.items = append(f.items, Notification{})
	copy(f.items[1:], f.items)
	f.items[0] = n
	if len(f.items) > f.capacity {
		f.items = f.items[:f.capacity]
	}
}

// Items returns a snapshot of the feed, newest first.
func (f *Feed) Items() []Notification {
	out := make([]Notification, len(f.items))
	copy(out, f.items)
	return out
}

// Len reports the number of notifications held.
func (f *Feed) Len() int {
	return len(f.items)
}

// Capacity reports the bound.
func (f *Feed) Capacity() int {
	return f.capacity
}
