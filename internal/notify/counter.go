package notify

// Counter tracks the unread notification count. The server is the
// authority: an absolute Set always overrides any prior local increments,
// so optimistic bumps only accumulate between server updates. Like the
// feed it is owned by the session event loop.
type Counter struct {
	value int
}

// Set replaces the count with the server-declared value. Negative input
// is clamped to zero; the count is never negative.
func (c *Counter) Set(n int) {
	if n < 0 {
		n = 0
	}
	c.value = n
}

// Increment bumps the count by one for a locally observed notification.
func (c *Counter) Increment() {
	c.value++
}

// Value returns the current count.
func (c *Counter) Value() int {
	return c.value
}
