package session

import (
	"testing"

	"github.com/softwarechaser9/elearning-notify/internal/notify"
	"github.com/softwarechaser9/elearning-notify/internal/wire"
)

func notificationFrame(id string) wire.Inbound {
	return wire.Inbound{
		Type:         wire.TypeNotification,
		Notification: &notify.Notification{ID: id, Kind: notify.KindSystem, Title: id},
	}
}

func countFrame(n int) wire.Inbound {
	return wire.Inbound{Type: wire.TypeCountUpdate, Count: n}
}

func TestDispatchNotification(t *testing.T) {
	sink := newRecordSink()
	feed := notify.NewFeed(10)
	counter := &notify.Counter{}
	d := NewDispatcher(feed, counter, sink)

	d.Dispatch(notificationFrame("n1"))

	if got := feed.Len(); got != 1 {
		t.Fatalf("feed Len = %d, want 1", got)
	}
	if got := counter.Value(); got != 1 {
		t.Errorf("counter = %d, want 1", got)
	}
	if got := len(sink.Arrived()); got != 1 {
		t.Errorf("arrived events = %d, want 1", got)
	}
	if got := sink.LastUnread(); got != 1 {
		t.Errorf("last unread event = %d, want 1", got)
	}
}

func TestDispatchCountThenNotifications(t *testing.T) {
	// count_update 7 followed by two notifications reads 9.
	sink := newRecordSink()
	feed := notify.NewFeed(10)
	counter := &notify.Counter{}
	d := NewDispatcher(feed, counter, sink)

	d.Dispatch(countFrame(7))
	d.Dispatch(notificationFrame("n1"))
	d.Dispatch(notificationFrame("n2"))

	if got := counter.Value(); got != 9 {
		t.Errorf("counter = %d, want 9", got)
	}
	items := feed.Items()
	if len(items) != 2 || items[0].ID != "n2" || items[1].ID != "n1" {
		t.Errorf("feed = %v, want [n2 n1]", items)
	}
}

func TestDispatchInterleavings(t *testing.T) {
	// After any interleaving the counter equals the last absolute set
	// plus the notifications dispatched after it.
	tests := []struct {
		name   string
		frames []wire.Inbound
		want   int
	}{
		{"set last wins", []wire.Inbound{notificationFrame("a"), notificationFrame("b"), countFrame(0)}, 0},
		{"set then bumps", []wire.Inbound{countFrame(3), notificationFrame("a"), countFrame(5), notificationFrame("b"), notificationFrame("c")}, 7},
		{"only bumps", []wire.Inbound{notificationFrame("a"), notificationFrame("b")}, 2},
		{"trailing set overrides", []wire.Inbound{countFrame(10), notificationFrame("a"), countFrame(2)}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sink := newRecordSink()
			counter := &notify.Counter{}
			d := NewDispatcher(notify.NewFeed(10), counter, sink)
			for _, f := range tt.frames {
				d.Dispatch(f)
			}
			if got := counter.Value(); got != tt.want {
				t.Errorf("counter = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestDispatchUnknownTypeIsInert(t *testing.T) {
	sink := newRecordSink()
	feed := notify.NewFeed(10)
	counter := &notify.Counter{}
	d := NewDispatcher(feed, counter, sink)

	d.Dispatch(wire.Inbound{Type: "presence_ping"})

	if feed.Len() != 0 || counter.Value() != 0 {
		t.Error("unknown frame mutated state")
	}
	if len(sink.Arrived()) != 0 || len(sink.Unreads()) != 0 {
		t.Error("unknown frame emitted events")
	}
}

func TestArrivedFiresOncePerInsert(t *testing.T) {
	sink := newRecordSink()
	d := NewDispatcher(notify.NewFeed(10), &notify.Counter{}, sink)

	for i := 0; i < 5; i++ {
		d.Dispatch(notificationFrame("n"))
	}
	if got := len(sink.Arrived()); got != 5 {
		t.Errorf("arrived events = %d, want 5", got)
	}
	if got := len(sink.Feeds()); got != 5 {
		t.Errorf("feed events = %d, want 5", got)
	}
}
