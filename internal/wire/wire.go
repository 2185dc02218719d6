// Package wire encodes and decodes the text frames exchanged on the
// notification channel. Every frame is a JSON object discriminated by a
// "type" tag. Decode guarantees syntactic well-formedness only: a frame
// with an unknown type still decodes, and is rejected at dispatch instead.
package wire

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/softwarechaser9/elearning-notify/internal/notify"
)

// Frame type tags.
const (
	TypeNotification = "notification"
	TypeCountUpdate  = "count_update"
	TypeMarkRead     = "mark_read"
)

// ErrMalformedFrame reports a payload that does not parse as any frame
// shape. Callers drop the frame and keep the channel up.
var ErrMalformedFrame = errors.New("wire: malformed frame")

// envelope is the superset shape of every frame on the wire.
type envelope struct {
	Type           string          `json:"type"`
	Data           json.RawMessage `json:"data,omitempty"`
	Count          *int            `json:"count,omitempty"`
	NotificationID string          `json:"notification_id,omitempty"`
}

// Inbound is one decoded server-to-client frame.
type Inbound struct {
	Type         string
	Notification *notify.Notification // set when Type == TypeNotification
	Count        int                  // set when Type == TypeCountUpdate
}

// Decode parses one inbound frame.
func Decode(data []byte) (Inbound, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Inbound{}, fmt.Errorf("%w: %v", ErrMalformedFrame, err)
	}
	if env.Type == "" {
		return Inbound{}, fmt.Errorf("%w: missing type", ErrMalformedFrame)
	}

	switch env.Type {
	case TypeNotification:
		if len(env.Data) == 0 {
			return Inbound{}, fmt.Errorf("%w: notification without data", ErrMalformedFrame)
		}
		var n notify.Notification
		if err := json.Unmarshal(env.Data, &n); err != nil {
			return Inbound{}, fmt.Errorf("%w: bad notification data: %v", ErrMalformedFrame, err)
		}
		return Inbound{Type: env.Type, Notification: &n}, nil

	case TypeCountUpdate:
		if env.Count == nil || *env.Count < 0 {
			return Inbound{}, fmt.Errorf("%w: count_update without valid count", ErrMalformedFrame)
		}
		return Inbound{Type: env.Type, Count: *env.Count}, nil

	default:
		return Inbound{Type: env.Type}, nil
	}
}

// EncodeMarkRead builds the client's mark_read frame.
func EncodeMarkRead(notificationID string) ([]byte, error) {
	return json.Marshal(envelope{Type: TypeMarkRead, NotificationID: notificationID})
}

// ClientFrame is one decoded client-to-server frame.
type ClientFrame struct {
	Type           string
	NotificationID string
}

// DecodeClientFrame parses one frame sent by a client. As with Decode,
// unknown types pass; only syntax is checked here.
func DecodeClientFrame(data []byte) (ClientFrame, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return ClientFrame{}, fmt.Errorf("%w: %v", ErrMalformedFrame, err)
	}
	if env.Type == "" {
		return ClientFrame{}, fmt.Errorf("%w: missing type", ErrMalformedFrame)
	}
	return ClientFrame{Type: env.Type, NotificationID: env.NotificationID}, nil
}

// EncodeNotification builds the server's notification frame.
func EncodeNotification(n notify.Notification) ([]byte, error) {
	data, err := json.Marshal(n)
	if err != nil {
		return nil, err
	}
	return json.Marshal(envelope{Type: TypeNotification, Data: data})
}

// EncodeCountUpdate builds the server's authoritative count frame.
func EncodeCountUpdate(count int) ([]byte, error) {
	if count < 0 {
		count = 0
	}
	return json.Marshal(envelope{Type: TypeCountUpdate, Count: &count})
}
