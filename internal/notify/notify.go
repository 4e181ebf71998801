// Package notify publishes notifications to a topic.
package notify

import (
	"context"
	"errors"
)

// ErrEmptyMessage is returned when a notification has no message body
var ErrEmptyMessage = errors.New("notification message is empty")

// Notification is a message plus string attributes sent to a topic
type Notification struct {
	Topic      string
	Message    string
	Attributes map[string]string
}

// Notifier publishes notifications
type Notifier interface {
	Publish(ctx context.Context, n Notification) error
}
