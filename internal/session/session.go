// Package session owns the notification channel lifecycle: connecting to
// the endpoint, dispatching inbound frames, bounded reconnection after
// unclean closes, and the outbound mark-read signal.
//
// All session state is confined to a single event-loop goroutine. Dials
// and reads run on helper goroutines that only post events back into the
// loop, so handlers run to completion and never race; there is no lock
// around the feed, counter, or connection handle.
//
// The feed is not refilled from the server after a reconnect, so
// notifications delivered during a disconnect window never appear in it
// even though a later count_update corrects the counter. That divergence
// is carried over from the web client on purpose.
package session

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/softwarechaser9/elearning-notify/internal/notify"
	"github.com/softwarechaser9/elearning-notify/internal/wire"
)

// Status is the connection state of a Session.
type Status int

const (
	Disconnected Status = iota
	Connecting
	Open
	Reconnecting
	GivenUp
)

func (s Status) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Open:
		return "open"
	case Reconnecting:
		return "reconnecting"
	case GivenUp:
		return "given_up"
	default:
		return "unknown"
	}
}

var (
	// ErrNoIdentity is returned by Attach when nobody is signed in. No
	// channel is created and no timers are armed.
	ErrNoIdentity = errors.New("session: no identity")

	// ErrAlreadyAttached is returned by a second Attach. A GivenUp
	// session is re-initialized by building a new Session instead.
	ErrAlreadyAttached = errors.New("session: already attached")
)

// Config parameterizes a Session.
type Config struct {
	// BaseURL is the application origin the channel endpoint derives
	// from; see EndpointURL.
	BaseURL string

	// Backoff is the reconnect policy. Zero value selects the default.
	Backoff Backoff

	// FeedCapacity bounds the recent-notification feed. Zero selects
	// the default.
	FeedCapacity int

	// Dialer opens channels. Nil selects the websocket dialer.
	Dialer Dialer

	// Sink receives all change events. Required.
	Sink notify.Sink
}

type eventKind int

const (
	evDialOK eventKind = iota
	evDialFailed
	evFrame
	evClosed
	evTimer
	evMarkRead
)

type event struct {
	kind  eventKind
	epoch int
	conn  Conn
	data  []byte
	err   error
	id    string
}

// Session manages one notification channel for one signed-in user.
type Session struct {
	cfg      Config
	endpoint string

	events       chan event
	done         chan struct{}
	stopped      chan struct{}
	attached     atomic.Bool
	teardownOnce sync.Once

	mu      sync.RWMutex
	status  Status
	attempt int

	// Owned by the run loop.
	conn  Conn
	timer *time.Timer
	epoch int

	feed       *notify.Feed
	counter    *notify.Counter
	dispatcher *Dispatcher
}

// New builds a detached Session. Nothing happens until Attach.
func New(cfg Config) (*Session, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, errors.New("session: base url required")
	}
	if cfg.Sink == nil {
		return nil, errors.New("session: sink required")
	}
	if cfg.Dialer == nil {
		cfg.Dialer = WebsocketDialer{}
	}
	if cfg.Backoff == (Backoff{}) {
		cfg.Backoff = DefaultBackoff()
	}

	s := &Session{
		cfg:     cfg,
		events:  make(chan event, 16),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
		feed:    notify.NewFeed(cfg.FeedCapacity),
		counter: &notify.Counter{},
	}
	s.dispatcher = NewDispatcher(s.feed, s.counter, cfg.Sink)
	return s, nil
}

// Attach resolves the channel endpoint for the given identity and starts
// connecting. An empty identity means nobody is signed in: the session
// stays inert and ErrNoIdentity is returned.
func (s *Session) Attach(identity string) error {
	if strings.TrimSpace(identity) == "" {
		return ErrNoIdentity
	}
	if !s.attached.CompareAndSwap(false, true) {
		return ErrAlreadyAttached
	}
	endpoint, err := EndpointURL(s.cfg.BaseURL, identity)
	if err != nil {
		s.attached.Store(false)
		return err
	}
	s.endpoint = endpoint
	go s.run()
	return nil
}

// Teardown closes the channel and stops the session. It is a clean close:
// no reconnect is scheduled and the pending reconnect timer, if any, is
// cancelled. Safe to call from any state, more than once.
func (s *Session) Teardown() {
	s.teardownOnce.Do(func() { close(s.done) })
	if s.attached.Load() {
		<-s.stopped
	}
}

// MarkRead asks the server to mark one notification read. Fire and
// forget: while the channel is not open the signal is dropped, with no
// buffering and no retry.
func (s *Session) MarkRead(notificationID string) {
	if s.Status() != Open {
		return
	}
	s.post(event{kind: evMarkRead, id: notificationID})
}

// Status reports the current connection state.
func (s *Session) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// Attempts reports the current reconnect attempt count.
func (s *Session) Attempts() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.attempt
}

func (s *Session) setStatus(st Status) {
	s.mu.Lock()
	s.status = st
	s.mu.Unlock()
}

func (s *Session) setAttempt(n int) {
	s.mu.Lock()
	s.attempt = n
	s.mu.Unlock()
}

func (s *Session) post(ev event) {
	select {
	case s.events <- ev:
	case <-s.done:
		if ev.conn != nil {
			ev.conn.Close()
		}
	}
}

func (s *Session) run() {
	defer close(s.stopped)
	s.connect()
	for {
		select {
		case <-s.done:
			s.shutdown()
			return
		case ev := <-s.events:
			s.handle(ev)
		}
	}
}

func (s *Session) handle(ev event) {
	switch ev.kind {
	case evDialOK:
		if ev.epoch != s.epoch {
			ev.conn.Close()
			return
		}
		s.conn = ev.conn
		s.setAttempt(0)
		s.setStatus(Open)
		s.cfg.Sink.ConnectionChanged(true)
		go s.readLoop(ev.conn, s.epoch)

	case evDialFailed:
		if ev.epoch != s.epoch {
			return
		}
		log.Printf("session: dial failed: %v", ev.err)
		s.scheduleReconnect()

	case evFrame:
		if ev.epoch != s.epoch {
			return
		}
		in, err := wire.Decode(ev.data)
		if err != nil {
			// Drop the frame; the channel stays up.
			log.Printf("session: %v", err)
			return
		}
		s.dispatcher.Dispatch(in)

	case evClosed:
		if ev.epoch != s.epoch {
			return
		}
		s.epoch++
		s.conn.Close()
		s.conn = nil
		s.cfg.Sink.ConnectionChanged(false)
		if errors.Is(ev.err, ErrCleanClose) {
			s.setStatus(Disconnected)
			return
		}
		log.Printf("session: channel closed: %v", ev.err)
		s.scheduleReconnect()

	case evTimer:
		if s.Status() != Reconnecting {
			return
		}
		s.connect()

	case evMarkRead:
		s.sendMarkRead(ev.id)
	}
}

// connect is a no-op while a dial is already in flight or the channel is
// open. The dial itself runs off-loop and posts its outcome back.
func (s *Session) connect() {
	st := s.Status()
	if st == Open || st == Connecting {
		return
	}
	s.setStatus(Connecting)
	epoch := s.epoch
	go func() {
		conn, err := s.cfg.Dialer.Dial(context.Background(), s.endpoint)
		if err != nil {
			s.post(event{kind: evDialFailed, epoch: epoch, err: err})
			return
		}
		s.post(event{kind: evDialOK, epoch: epoch, conn: conn})
	}()
}

// scheduleReconnect arms the backoff timer for the next attempt, or gives
// up once the retry budget is spent. GivenUp is terminal until the caller
// builds and attaches a fresh session.
func (s *Session) scheduleReconnect() {
	next := s.Attempts() + 1
	if !s.cfg.Backoff.ShouldRetry(next) {
		s.setStatus(GivenUp)
		log.Printf("session: reconnect attempts exhausted after %d tries", s.Attempts())
		s.cfg.Sink.RetryExhausted()
		return
	}
	s.setAttempt(next)
	s.setStatus(Reconnecting)
	delay := s.cfg.Backoff.NextDelay(next)
	log.Printf("session: reconnecting in %s (attempt %d/%d)", delay, next, s.cfg.Backoff.MaxAttempts)
	s.timer = time.AfterFunc(delay, func() {
		s.post(event{kind: evTimer})
	})
}

func (s *Session) readLoop(conn Conn, epoch int) {
	for {
		data, err := conn.ReadMessage()
		if err != nil {
			s.post(event{kind: evClosed, epoch: epoch, err: err})
			return
		}
		s.post(event{kind: evFrame, epoch: epoch, data: data})
	}
}

func (s *Session) sendMarkRead(id string) {
	if s.Status() != Open || s.conn == nil {
		return
	}
	data, err := wire.EncodeMarkRead(id)
	if err != nil {
		log.Printf("session: encode mark_read: %v", err)
		return
	}
	if err := s.conn.WriteMessage(data); err != nil {
		// The read loop will observe the broken channel and reconnect.
		log.Printf("session: mark_read send failed: %v", err)
	}
}

func (s *Session) shutdown() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	wasOpen := s.Status() == Open
	s.epoch++
	if s.conn != nil {
		s.conn.Close()
		s.conn = nil
	}
	s.setStatus(Disconnected)
	if wasOpen {
		s.cfg.Sink.ConnectionChanged(false)
	}
	// Release any conns stuck in the queue.
	for {
		select {
		case ev := <-s.events:
			if ev.conn != nil {
				ev.conn.Close()
			}
		default:
			return
		}
	}
}
