package workflow

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	sfntypes "github.com/aws/aws-sdk-go-v2/service/sfn/types"
)

// OrderFlow drives an order execution through its accept and fulfil callbacks
type OrderFlow struct {
	Client   *Client
	Ordered  *TaskPoller
	Accepted *TaskPoller

	Attempts uint
	Delay    time.Duration
}

type orderInput struct {
	OrderID string `json:"orderId"`
}

type acceptOutput struct {
	OrderID  string `json:"orderId"`
	Accepted bool   `json:"accepted"`
}

// Run starts an execution for orderID, accepts then fulfils the order, and
// waits for the execution to succeed
func (f *OrderFlow) Run(ctx context.Context, machineArn, orderID string) (Execution, error) {
	input, err := json.Marshal(orderInput{OrderID: orderID})
	if err != nil {
		return Execution{}, err
	}

	arn, err := f.Client.Start(ctx, machineArn, string(input))
	if err != nil {
		return Execution{}, err
	}

	ordered, err := f.Ordered.WaitFor(ctx, orderID)
	if err != nil {
		return Execution{}, fmt.Errorf("wait for ordered task: %w", err)
	}

	accepted, err := json.Marshal(acceptOutput{OrderID: orderID, Accepted: true})
	if err != nil {
		return Execution{}, err
	}
	if err := f.Client.SendTaskSuccess(ctx, ordered.TaskToken, string(accepted)); err != nil {
		return Execution{}, err
	}
	f.Client.logger.WithField("order_id", orderID).Info("Order accepted")

	fulfil, err := f.Accepted.WaitFor(ctx, orderID)
	if err != nil {
		return Execution{}, fmt.Errorf("wait for accepted task: %w", err)
	}

	if err := f.Client.SendTaskSuccess(ctx, fulfil.TaskToken, string(input)); err != nil {
		return Execution{}, err
	}
	f.Client.logger.WithField("order_id", orderID).Info("Order fulfilled")

	return f.Client.WaitForStatus(ctx, arn, sfntypes.ExecutionStatusSucceeded, f.Attempts, f.Delay)
}
