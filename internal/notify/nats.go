package notify

import (
	"context"

	"event-driven-flow/internal/external"
	"event-driven-flow/internal/messaging"
)

// NATSNotifier publishes notifications on the subject named by the topic,
// carrying attributes as headers
type NATSNotifier struct {
	publisher messaging.Publisher
}

// NewNATSNotifier creates a notifier backed by a messaging publisher
func NewNATSNotifier(publisher messaging.Publisher) *NATSNotifier {
	return &NATSNotifier{publisher: publisher}
}

// Publish implements Notifier
func (n *NATSNotifier) Publish(ctx context.Context, note Notification) error {
	if note.Message == "" {
		return &external.Error{Op: "Publish", Target: note.Topic, Kind: external.KindValidation, Err: ErrEmptyMessage}
	}

	err := n.publisher.PublishMsg(ctx, &messaging.Message{
		Subject:  note.Topic,
		Data:     []byte(note.Message),
		Metadata: note.Attributes,
	})
	if err != nil {
		return external.NewError("Publish", note.Topic, err)
	}
	return nil
}
