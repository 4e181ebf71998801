// Package messaging defines the broker publishing contract used by the local backend.
package messaging

import (
	"context"
	"time"
)

// TimestampHeader carries Message.Timestamp in RFC 3339 form
const TimestampHeader = "timestamp"

// Message is a payload published to a subject
type Message struct {
	Subject string
	Data    []byte

	// Metadata is sent as message headers.
	Metadata map[string]string

	// Timestamp is sent as the TimestampHeader header when set.
	Timestamp time.Time
}

// Publisher publishes messages to subjects.
type Publisher interface {
	PublishMsg(ctx context.Context, msg *Message) error

	// IsConnected reports whether the broker connection is currently up.
	IsConnected() bool

	Close() error
}
