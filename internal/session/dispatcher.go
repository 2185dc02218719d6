package session

import (
	"log"

	"github.com/softwarechaser9/elearning-notify/internal/notify"
	"github.com/softwarechaser9/elearning-notify/internal/wire"
)

// Dispatcher routes decoded inbound frames to the feed and the unread
// counter and emits the matching change events. Frames are applied in
// arrival order. No ordering is promised across a reconnect: frames in
// flight at an unclean close are simply lost, and the server's
// count_update is what re-synchronizes the counter afterwards. The feed
// is not resynchronized; see the package doc.
type Dispatcher struct {
	feed    *notify.Feed
	counter *notify.Counter
	sink    notify.Sink
}

// NewDispatcher wires a dispatcher to its state and event sink.
func NewDispatcher(feed *notify.Feed, counter *notify.Counter, sink notify.Sink) *Dispatcher {
	return &Dispatcher{feed: feed, counter: counter, sink: sink}
}

// Dispatch applies one decoded frame.
func (d *Dispatcher) Dispatch(in wire.Inbound) {
	switch in.Type {
	case wire.TypeNotification:
		n := *in.Notification
		d.feed.Insert(n)
		d.counter.Increment() // optimistic; the next count_update overrides
		d.sink.NotificationArrived(n)
		d.sink.FeedChanged(d.feed.Items())
		d.sink.UnreadChanged(d.counter.Value())

	case wire.TypeCountUpdate:
		d.counter.Set(in.Count)
		d.sink.UnreadChanged(d.counter.Value())

	default:
		log.Printf("session: ignoring frame type %q", in.Type)
	}
}
