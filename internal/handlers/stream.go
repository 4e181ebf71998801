package handlers

import (
	"context"

	"github.com/aws/aws-lambda-go/events"
	"github.com/sirupsen/logrus"

	"event-driven-flow/internal/forwarder"
	"event-driven-flow/internal/logging"
)

const (
	StreamSource  = "dynamodb-function"
	StreamSpeaker = "dynamodb function"
)

// StreamHandler forwards table change records to the event bus
type StreamHandler struct {
	forwarder *forwarder.Forwarder
	logger    logrus.FieldLogger
}

// NewStreamHandler creates a new change-stream handler
func NewStreamHandler(f *forwarder.Forwarder, logger logrus.FieldLogger) *StreamHandler {
	return &StreamHandler{forwarder: f, logger: logger}
}

// Handle classifies every record in delivery order and forwards one message per record
func (h *StreamHandler) Handle(ctx context.Context, event events.DynamoDBEvent) error {
	log := logging.ForInvocation(ctx, h.logger, "dynamodb")

	records := make([]forwarder.Record, 0, len(event.Records))
	for _, r := range event.Records {
		record := forwarder.ClassifyChange(StreamSpeaker, r.EventName)

		log.WithFields(logrus.Fields{
			logging.FieldEventName:  r.EventName,
			logging.FieldDetailType: record.DetailType,
			"event_id":              r.EventID,
		}).Info("Classified change record")

		records = append(records, record)
	}

	return h.forwarder.Forward(ctx, records)
}
