package notify

// Sink receives change events from the notification core. The core never
// renders anything itself; a presentation layer implements Sink and draws
// from the snapshots it is handed. All methods are invoked from the
// session event loop and must not block.
type Sink interface {
	// ConnectionChanged reports channel connectivity transitions.
	ConnectionChanged(connected bool)

	// NotificationArrived fires exactly once per notification inserted
	// into the feed, before the corresponding FeedChanged. The sink may
	// use it to raise a transient alert independently of the feed view.
	NotificationArrived(n Notification)

	// FeedChanged delivers the new feed snapshot, newest first.
	FeedChanged(items []Notification)

	// UnreadChanged delivers the new unread count.
	UnreadChanged(count int)

	// RetryExhausted reports that reconnection gave up. The session stays
	// down until it is re-attached.
	RetryExhausted()
}
