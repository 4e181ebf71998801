package notify

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"

	"event-driven-flow/internal/external"
)

// SNSPublisher is the subset of the SNS client used by SNSNotifier
type SNSPublisher interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// SNSNotifier publishes notifications to SNS topics
type SNSNotifier struct {
	client SNSPublisher
}

// NewSNSNotifier creates a notifier backed by the given SNS client
func NewSNSNotifier(client SNSPublisher) *SNSNotifier {
	return &SNSNotifier{client: client}
}

// Publish sends the notification with every attribute as a String message attribute
func (n *SNSNotifier) Publish(ctx context.Context, note Notification) error {
	if note.Message == "" {
		return &external.Error{Op: "Publish", Target: note.Topic, Kind: external.KindValidation, Err: ErrEmptyMessage}
	}

	attrs := make(map[string]types.MessageAttributeValue, len(note.Attributes))
	for k, v := range note.Attributes {
		attrs[k] = types.MessageAttributeValue{
			DataType:    aws.String("String"),
			StringValue: aws.String(v),
		}
	}

	_, err := n.client.Publish(ctx, &sns.PublishInput{
		TopicArn:          aws.String(note.Topic),
		Message:           aws.String(note.Message),
		MessageAttributes: attrs,
	})
	if err != nil {
		return external.NewError("Publish", note.Topic, err)
	}
	return nil
}
