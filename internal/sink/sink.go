// Package sink defines the capability the forwarding handlers use to publish
// outgoing messages, with an EventBridge implementation for AWS and a NATS
// implementation for the local backend.
package sink

import (
	"context"
	"errors"

	"event-driven-flow/internal/models"
)

// ErrEmptyBatch is returned when Send is called without messages
var ErrEmptyBatch = errors.New("no messages to send")

// Sink publishes an ordered, non-empty sequence of messages to an external system
type Sink interface {
	Send(ctx context.Context, messages []models.OutgoingMessage) error
}

// Func adapts an ordinary function to the Sink interface
type Func func(ctx context.Context, messages []models.OutgoingMessage) error

// Send calls f(ctx, messages)
func (f Func) Send(ctx context.Context, messages []models.OutgoingMessage) error {
	return f(ctx, messages)
}
