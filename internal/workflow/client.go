// Package workflow drives state machine executions and their callback tasks.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/avast/retry-go"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sfn"
	sfntypes "github.com/aws/aws-sdk-go-v2/service/sfn/types"
	"github.com/sirupsen/logrus"

	"event-driven-flow/internal/external"
)

var (
	// ErrStatusMismatch is returned while an execution has not reached the wanted status
	ErrStatusMismatch = errors.New("execution status mismatch")

	// ErrTerminalStatus is returned when an execution finished in a status other than the wanted one
	ErrTerminalStatus = errors.New("execution finished in another status")
)

// API is the subset of the Step Functions client used by Client
type API interface {
	StartExecution(ctx context.Context, params *sfn.StartExecutionInput, optFns ...func(*sfn.Options)) (*sfn.StartExecutionOutput, error)
	DescribeExecution(ctx context.Context, params *sfn.DescribeExecutionInput, optFns ...func(*sfn.Options)) (*sfn.DescribeExecutionOutput, error)
	SendTaskSuccess(ctx context.Context, params *sfn.SendTaskSuccessInput, optFns ...func(*sfn.Options)) (*sfn.SendTaskSuccessOutput, error)
}

// Execution is a snapshot of a state machine execution
type Execution struct {
	Arn    string                   `json:"executionArn"`
	Status sfntypes.ExecutionStatus `json:"status"`
	Output string                   `json:"output,omitempty"`
}

// Client starts executions and reports on them
type Client struct {
	api    API
	logger logrus.FieldLogger
}

// NewClient creates a workflow client
func NewClient(api API, logger logrus.FieldLogger) *Client {
	return &Client{api: api, logger: logger}
}

// Start begins an execution of machineArn with a JSON input and returns its ARN
func (c *Client) Start(ctx context.Context, machineArn, input string) (string, error) {
	out, err := c.api.StartExecution(ctx, &sfn.StartExecutionInput{
		StateMachineArn: aws.String(machineArn),
		Input:           aws.String(input),
	})
	if err != nil {
		return "", external.NewError("StartExecution", machineArn, err)
	}

	arn := aws.ToString(out.ExecutionArn)
	c.logger.WithField("execution_arn", arn).Info("Execution started")
	return arn, nil
}

// Describe returns the current state of an execution
func (c *Client) Describe(ctx context.Context, executionArn string) (Execution, error) {
	out, err := c.api.DescribeExecution(ctx, &sfn.DescribeExecutionInput{
		ExecutionArn: aws.String(executionArn),
	})
	if err != nil {
		return Execution{}, external.NewError("DescribeExecution", executionArn, err)
	}

	return Execution{
		Arn:    executionArn,
		Status: out.Status,
		Output: aws.ToString(out.Output),
	}, nil
}

// SendTaskSuccess completes a callback task with a JSON output
func (c *Client) SendTaskSuccess(ctx context.Context, taskToken, output string) error {
	_, err := c.api.SendTaskSuccess(ctx, &sfn.SendTaskSuccessInput{
		TaskToken: aws.String(taskToken),
		Output:    aws.String(output),
	})
	if err != nil {
		return external.NewError("SendTaskSuccess", "task", err)
	}
	return nil
}

// WaitForStatus polls the execution until it reaches want, making at most
// attempts describe calls spaced by delay. An execution that finishes in
// another status stops the wait immediately.
func (c *Client) WaitForStatus(ctx context.Context, executionArn string, want sfntypes.ExecutionStatus, attempts uint, delay time.Duration) (Execution, error) {
	var last Execution

	if attempts == 0 {
		attempts = 1
	}

	err := retry.Do(
		func() error {
			exec, err := c.Describe(ctx, executionArn)
			if err != nil {
				return err
			}
			last = exec

			if exec.Status == want {
				return nil
			}
			if exec.Status != sfntypes.ExecutionStatusRunning {
				return fmt.Errorf("%w: %s", ErrTerminalStatus, exec.Status)
			}
			return fmt.Errorf("%w: %s", ErrStatusMismatch, exec.Status)
		},
		retry.Attempts(attempts),
		retry.Delay(delay),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.Context(ctx),
		retry.RetryIf(func(err error) bool {
			return !errors.Is(err, ErrTerminalStatus)
		}),
		retry.OnRetry(func(n uint, err error) {
			c.logger.WithError(err).WithField("attempt", n+1).Debug("Execution not ready")
		}),
	)

	return last, err
}
