package workflow

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/sirupsen/logrus"

	"event-driven-flow/internal/external"
)

// ErrMalformedTask is returned for queue messages that do not carry a task
var ErrMalformedTask = errors.New("malformed task message")

// QueueAPI is the subset of the SQS client used by TaskPoller
type QueueAPI interface {
	ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
}

// Task is a callback task delivered through a topic subscription
type Task struct {
	TaskToken string `json:"taskToken"`
	OrderID   string `json:"orderId"`
}

// envelope is the body SNS writes to a subscribed queue
type envelope struct {
	Message string `json:"Message"`
}

// TaskPoller receives callback tasks from a queue. Messages are deduplicated
// by message id, so a redelivered message yields its task only once.
// Messages that do not decode as a task are logged and skipped.
type TaskPoller struct {
	api      QueueAPI
	queueURL string
	interval time.Duration
	logger   logrus.FieldLogger

	mu   sync.Mutex
	seen map[string]struct{}
}

// NewTaskPoller creates a poller for queueURL that polls every interval
func NewTaskPoller(api QueueAPI, queueURL string, interval time.Duration, logger logrus.FieldLogger) *TaskPoller {
	return &TaskPoller{
		api:      api,
		queueURL: queueURL,
		interval: interval,
		logger:   logger,
		seen:     make(map[string]struct{}),
	}
}

// Poll receives one batch and returns the tasks not seen before
func (p *TaskPoller) Poll(ctx context.Context) ([]Task, error) {
	out, err := p.api.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
		QueueUrl:            aws.String(p.queueURL),
		MaxNumberOfMessages: 10,
	})
	if err != nil {
		return nil, external.NewError("ReceiveMessage", p.queueURL, err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	var tasks []Task
	for _, msg := range out.Messages {
		id := aws.ToString(msg.MessageId)
		if _, ok := p.seen[id]; ok {
			continue
		}

		p.seen[id] = struct{}{}

		task, err := decodeTask(aws.ToString(msg.Body))
		if err != nil {
			p.logger.WithError(err).WithField("message_id", id).Warn("Skipping malformed task message")
			continue
		}

		tasks = append(tasks, task)
	}

	return tasks, nil
}

// WaitFor polls until a task for orderID arrives or ctx is done
func (p *TaskPoller) WaitFor(ctx context.Context, orderID string) (Task, error) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		tasks, err := p.Poll(ctx)
		if err != nil {
			return Task{}, err
		}

		for _, task := range tasks {
			if task.OrderID == orderID {
				return task, nil
			}
			p.logger.WithField("order_id", task.OrderID).Debug("Skipping task for another order")
		}

		select {
		case <-ctx.Done():
			return Task{}, ctx.Err()
		case <-ticker.C:
		}
	}
}

func decodeTask(body string) (Task, error) {
	var env envelope
	if err := json.Unmarshal([]byte(body), &env); err != nil {
		return Task{}, fmt.Errorf("%w: %v", ErrMalformedTask, err)
	}

	var task Task
	if err := json.Unmarshal([]byte(env.Message), &task); err != nil {
		return Task{}, fmt.Errorf("%w: %v", ErrMalformedTask, err)
	}
	if task.TaskToken == "" {
		return Task{}, fmt.Errorf("%w: missing taskToken", ErrMalformedTask)
	}

	return task, nil
}
