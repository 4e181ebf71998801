package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"event-driven-flow/internal/external"
	"event-driven-flow/internal/messaging"
	"event-driven-flow/internal/models"
)

// Envelope is the JSON body published for each message on the local bus.
// It mirrors the fields an EventBridge rule target would receive.
type Envelope struct {
	Source     string        `json:"source"`
	DetailType string        `json:"detail-type"`
	Detail     models.Detail `json:"detail"`
	Time       time.Time     `json:"time"`
}

// NATSSink publishes each message to the subject named by its destination
type NATSSink struct {
	publisher messaging.Publisher
	now       func() time.Time
}

// NewNATSSink creates a sink backed by a messaging publisher
func NewNATSSink(publisher messaging.Publisher) *NATSSink {
	return &NATSSink{publisher: publisher, now: time.Now}
}

// Send publishes messages one at a time, stopping at the first failure
func (s *NATSSink) Send(ctx context.Context, messages []models.OutgoingMessage) error {
	if len(messages) == 0 {
		return &external.Error{Op: "Publish", Kind: external.KindValidation, Err: ErrEmptyBatch}
	}

	for _, msg := range messages {
		if err := msg.Validate(); err != nil {
			return &external.Error{
				Op:     "Publish",
				Target: msg.Destination,
				Kind:   external.KindValidation,
				Err:    fmt.Errorf("%w: %v", external.ErrValidation, err),
			}
		}

		now := s.now().UTC()
		body, err := json.Marshal(Envelope{
			Source:     msg.Source,
			DetailType: msg.DetailType,
			Detail:     msg.Detail,
			Time:       now,
		})
		if err != nil {
			return &external.Error{Op: "Publish", Target: msg.Destination, Kind: external.KindValidation, Err: err}
		}

		err = s.publisher.PublishMsg(ctx, &messaging.Message{
			Subject: msg.Destination,
			Data:    body,
			Metadata: map[string]string{
				"source":      msg.Source,
				"detail-type": msg.DetailType,
			},
			Timestamp: now,
		})
		if err != nil {
			return external.NewError("Publish", msg.Destination, err)
		}
	}

	return nil
}
