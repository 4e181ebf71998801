package models

import (
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// Detail types emitted by the forwarding handlers
const (
	DetailTypeGreeting = "greeting"
	DetailTypeBye      = "bye"
	DetailTypeUnknown  = "unknown"
)

// Detail is the JSON payload carried by an OutgoingMessage
type Detail struct {
	ID      string `json:"id" validate:"required,uuid4"`
	Message string `json:"message" validate:"required"`
}

// OutgoingMessage is a single entry published to the event bus.
// It is built fresh for every record and never mutated afterwards.
type OutgoingMessage struct {
	Source      string `json:"source" validate:"required"`
	Detail      Detail `json:"detail"`
	DetailType  string `json:"detail_type" validate:"required"`
	Destination string `json:"destination" validate:"required"`
}

var messageValidator = validator.New()

// NewOutgoingMessage builds a message with a freshly generated detail id
func NewOutgoingMessage(source, detailType, message, destination string) OutgoingMessage {
	return OutgoingMessage{
		Source: source,
		Detail: Detail{
			ID:      uuid.NewString(),
			Message: message,
		},
		DetailType:  detailType,
		Destination: destination,
	}
}

// Validate checks that every required field is present and the id is a UUID
func (m OutgoingMessage) Validate() error {
	if err := messageValidator.Struct(m); err != nil {
		return fmt.Errorf("invalid outgoing message: %w", err)
	}
	return nil
}

// DetailJSON returns the detail encoded as a JSON string, the form the event bus expects
func (m OutgoingMessage) DetailJSON() (string, error) {
	b, err := json.Marshal(m.Detail)
	if err != nil {
		return "", fmt.Errorf("marshal detail: %w", err)
	}
	return string(b), nil
}
