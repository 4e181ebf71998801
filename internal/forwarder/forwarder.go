// Package forwarder turns decoded event records into outgoing messages and
// hands them, one per record, to a sink.
package forwarder

import (
	"context"

	"github.com/aws/aws-lambda-go/events"
	"github.com/sirupsen/logrus"

	"event-driven-flow/internal/logging"
	"event-driven-flow/internal/models"
	"event-driven-flow/internal/sink"
)

// Config identifies the producer and the destination of forwarded messages
type Config struct {
	Destination string
	Source      string
}

// Record is a classified input record: what kind of message it becomes and what it says
type Record struct {
	DetailType string
	Message    string
}

// ClassifyChange maps a change-stream event name to a record.
// speaker prefixes the message, e.g. "dynamodb function" gives "dynamodb function says hello".
// Unrecognised event names yield an "unknown" record rather than an error.
func ClassifyChange(speaker, eventName string) Record {
	switch events.DynamoDBOperationType(eventName) {
	case events.DynamoDBOperationTypeInsert:
		return Record{DetailType: models.DetailTypeGreeting, Message: speaker + " says hello"}
	case events.DynamoDBOperationTypeModify:
		return Record{DetailType: models.DetailTypeGreeting, Message: speaker + " says hello, again"}
	case events.DynamoDBOperationTypeRemove:
		return Record{DetailType: models.DetailTypeBye, Message: speaker + " says good bye"}
	default:
		return Record{DetailType: models.DetailTypeUnknown, Message: models.DetailTypeUnknown}
	}
}

// Forwarder sends one message per record through a sink
type Forwarder struct {
	sink   sink.Sink
	cfg    Config
	logger logrus.FieldLogger
}

// New creates a forwarder. The forwarder only ever sees the Sink interface.
func New(s sink.Sink, cfg Config, logger logrus.FieldLogger) *Forwarder {
	return &Forwarder{
		sink:   s,
		cfg:    cfg,
		logger: logger,
	}
}

// Forward sends records in order, one Send per record. The first failure is
// returned unchanged and no later record is sent. Zero records is a no-op.
func (f *Forwarder) Forward(ctx context.Context, records []Record) error {
	for i, record := range records {
		msg := models.NewOutgoingMessage(f.cfg.Source, record.DetailType, record.Message, f.cfg.Destination)

		entry := f.logger.WithFields(logrus.Fields{
			logging.FieldDetailType:  msg.DetailType,
			logging.FieldDestination: msg.Destination,
			logging.FieldMessageID:   msg.Detail.ID,
			"record":                 i,
		})

		entry.Debug("Before sending message")

		if err := f.sink.Send(ctx, []models.OutgoingMessage{msg}); err != nil {
			entry.WithError(err).Error("Failed to send message")
			return err
		}

		entry.Debug("After sending message")
	}

	return nil
}

// ForwardOne is Forward for a single record
func (f *Forwarder) ForwardOne(ctx context.Context, record Record) error {
	return f.Forward(ctx, []Record{record})
}
