package handlers

import (
	"context"
	"fmt"

	"github.com/aws/aws-lambda-go/events"
	"github.com/sirupsen/logrus"

	"event-driven-flow/internal/logging"
	"event-driven-flow/internal/store"
)

// EndingAttribute is the item attribute written by the notification handler
const EndingAttribute = "ending"

// NotificationHandler appends a farewell to the item a notification refers to
type NotificationHandler struct {
	store  store.Store
	logger logrus.FieldLogger
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(s store.Store, logger logrus.FieldLogger) *NotificationHandler {
	return &NotificationHandler{store: s, logger: logger}
}

// Handle processes records in order. Each record must carry an "id" message attribute.
// When the referenced item does not exist the invocation ends successfully and
// later records are not looked at.
func (h *NotificationHandler) Handle(ctx context.Context, event events.SNSEvent) error {
	log := logging.ForInvocation(ctx, h.logger, "sns")

	for _, record := range event.Records {
		id, err := stringAttribute(record.SNS.MessageAttributes, "id")
		if err != nil {
			return err
		}

		entry := log.WithFields(logrus.Fields{
			logging.FieldItemID:    id,
			logging.FieldMessageID: record.SNS.MessageID,
		})

		entry.Debug("Before get item")
		_, err = h.store.GetItem(ctx, id)
		if store.IsNotFound(err) {
			entry.Info("Item not found")
			return nil
		}
		if err != nil {
			entry.WithError(err).Error("Failed to get item")
			return err
		}
		entry.Debug("After get item")

		ending := fmt.Sprintf("%s, and the sns function says good bye", record.SNS.Message)

		entry.Debug("Before item update")
		if err := h.store.UpdateItem(ctx, id, map[string]string{EndingAttribute: ending}); err != nil {
			entry.WithError(err).Error("Failed to update item")
			return err
		}
		entry.Debug("After item update")
	}

	return nil
}

// stringAttribute reads a message attribute as delivered by SNS to Lambda:
// {"Type": "String", "Value": "..."}
func stringAttribute(attrs map[string]interface{}, name string) (string, error) {
	raw, ok := attrs[name]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrMissingAttribute, name)
	}

	switch v := raw.(type) {
	case map[string]interface{}:
		if value, ok := v["Value"].(string); ok {
			return value, nil
		}
	case string:
		return v, nil
	}

	return "", fmt.Errorf("%w: %s has no string value", ErrMissingAttribute, name)
}
