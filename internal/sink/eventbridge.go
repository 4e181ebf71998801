package sink

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge/types"

	"event-driven-flow/internal/external"
	"event-driven-flow/internal/models"
)

// EventsPutter is the subset of the EventBridge client used by EventBridgeSink
type EventsPutter interface {
	PutEvents(ctx context.Context, params *eventbridge.PutEventsInput, optFns ...func(*eventbridge.Options)) (*eventbridge.PutEventsOutput, error)
}

// EventBridgeSink publishes messages as EventBridge entries
type EventBridgeSink struct {
	client EventsPutter
}

// NewEventBridgeSink creates a sink backed by the given EventBridge client
func NewEventBridgeSink(client EventsPutter) *EventBridgeSink {
	return &EventBridgeSink{client: client}
}

// Send forwards all messages in a single PutEvents call
func (s *EventBridgeSink) Send(ctx context.Context, messages []models.OutgoingMessage) error {
	if len(messages) == 0 {
		return &external.Error{Op: "PutEvents", Kind: external.KindValidation, Err: ErrEmptyBatch}
	}

	destination := messages[0].Destination
	entries := make([]types.PutEventsRequestEntry, 0, len(messages))

	for _, msg := range messages {
		if err := msg.Validate(); err != nil {
			return &external.Error{
				Op:     "PutEvents",
				Target: msg.Destination,
				Kind:   external.KindValidation,
				Err:    fmt.Errorf("%w: %v", external.ErrValidation, err),
			}
		}

		detail, err := msg.DetailJSON()
		if err != nil {
			return &external.Error{Op: "PutEvents", Target: msg.Destination, Kind: external.KindValidation, Err: err}
		}

		entries = append(entries, types.PutEventsRequestEntry{
			Source:       aws.String(msg.Source),
			Detail:       aws.String(detail),
			DetailType:   aws.String(msg.DetailType),
			EventBusName: aws.String(msg.Destination),
		})
	}

	out, err := s.client.PutEvents(ctx, &eventbridge.PutEventsInput{Entries: entries})
	if err != nil {
		return external.NewError("PutEvents", destination, err)
	}

	if out != nil && out.FailedEntryCount > 0 {
		return &external.Error{
			Op:     "PutEvents",
			Target: destination,
			Kind:   external.KindRejected,
			Err:    fmt.Errorf("%w: %s", external.ErrRejected, describeFailedEntries(out.Entries)),
		}
	}

	return nil
}

func describeFailedEntries(results []types.PutEventsResultEntry) string {
	for i, r := range results {
		if r.ErrorCode != nil {
			return fmt.Sprintf("entry %d: %s: %s", i, aws.ToString(r.ErrorCode), aws.ToString(r.ErrorMessage))
		}
	}
	return "one or more entries failed"
}
