package handlers

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-lambda-go/events"
	"github.com/sirupsen/logrus"

	"event-driven-flow/internal/logging"
	"event-driven-flow/internal/notify"
	"event-driven-flow/internal/store"
)

// BusMessage is the notification sent after a bus event has been stored
const BusMessage = "eventbridge function says hello"

// BusDetail is the detail of the greeting events routed to the bus handler
type BusDetail struct {
	ID      string `json:"id"`
	Message string `json:"message"`
}

// BusHandler stores bus events in the table and announces them on the topic
type BusHandler struct {
	store    store.Store
	notifier notify.Notifier
	topic    string
	logger   logrus.FieldLogger
}

// NewBusHandler creates a new bus event handler
func NewBusHandler(s store.Store, n notify.Notifier, topic string, logger logrus.FieldLogger) *BusHandler {
	return &BusHandler{
		store:    s,
		notifier: n,
		topic:    topic,
		logger:   logger,
	}
}

// Handle puts {id, source, message} into the table, then publishes a notification
// whose id attribute points at the stored item
func (h *BusHandler) Handle(ctx context.Context, event events.CloudWatchEvent) error {
	log := logging.ForInvocation(ctx, h.logger, "eventbridge")

	detail, err := parseBusDetail(event.Detail)
	if err != nil {
		return err
	}

	log = log.WithField(logging.FieldItemID, detail.ID)

	item := store.Item{
		store.KeyAttribute: detail.ID,
		"source":           event.Source,
		"message":          detail.Message,
	}

	log.Debug("Before putting item")
	if err := h.store.PutItem(ctx, item); err != nil {
		log.WithError(err).Error("Failed to put item")
		return err
	}
	log.Debug("After putting item")

	note := notify.Notification{
		Topic:      h.topic,
		Message:    BusMessage,
		Attributes: map[string]string{"id": detail.ID},
	}

	log.Debug("Before publishing notification")
	if err := h.notifier.Publish(ctx, note); err != nil {
		log.WithError(err).Error("Failed to publish notification")
		return err
	}
	log.Debug("After publishing notification")

	return nil
}

func parseBusDetail(raw json.RawMessage) (BusDetail, error) {
	var detail BusDetail

	if len(raw) == 0 || string(raw) == "null" {
		return detail, ErrMissingDetail
	}
	if err := json.Unmarshal(raw, &detail); err != nil {
		return detail, fmt.Errorf("decode event detail: %w", err)
	}
	if detail.ID == "" {
		return detail, fmt.Errorf("%w: id", ErrMissingDetail)
	}
	return detail, nil
}
