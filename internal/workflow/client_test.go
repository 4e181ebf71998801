package workflow

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sfn"
	sfntypes "github.com/aws/aws-sdk-go-v2/service/sfn/types"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"event-driven-flow/internal/external"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

type fakeSFN struct {
	statuses  []sfntypes.ExecutionStatus
	describes int
	started   *sfn.StartExecutionInput
	succeeded *sfn.SendTaskSuccessInput
	err       error
}

func (f *fakeSFN) StartExecution(ctx context.Context, in *sfn.StartExecutionInput, _ ...func(*sfn.Options)) (*sfn.StartExecutionOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.started = in
	return &sfn.StartExecutionOutput{ExecutionArn: aws.String("arn:execution:1")}, nil
}

func (f *fakeSFN) DescribeExecution(ctx context.Context, in *sfn.DescribeExecutionInput, _ ...func(*sfn.Options)) (*sfn.DescribeExecutionOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	i := f.describes
	if i >= len(f.statuses) {
		i = len(f.statuses) - 1
	}
	f.describes++
	return &sfn.DescribeExecutionOutput{
		ExecutionArn: in.ExecutionArn,
		Status:       f.statuses[i],
		Output:       aws.String(`{"ok":true}`),
	}, nil
}

func (f *fakeSFN) SendTaskSuccess(ctx context.Context, in *sfn.SendTaskSuccessInput, _ ...func(*sfn.Options)) (*sfn.SendTaskSuccessOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.succeeded = in
	return &sfn.SendTaskSuccessOutput{}, nil
}

func TestClient_Start(t *testing.T) {
	api := &fakeSFN{}
	c := NewClient(api, quietLogger())

	arn, err := c.Start(context.Background(), "arn:machine", `{"orderId": "1"}`)
	require.NoError(t, err)
	assert.Equal(t, "arn:execution:1", arn)
	assert.Equal(t, "arn:machine", aws.ToString(api.started.StateMachineArn))
	assert.Equal(t, `{"orderId": "1"}`, aws.ToString(api.started.Input))
}

func TestClient_StartFailure(t *testing.T) {
	c := NewClient(&fakeSFN{err: errors.New("no route")}, quietLogger())

	_, err := c.Start(context.Background(), "arn:machine", "{}")
	var extErr *external.Error
	require.ErrorAs(t, err, &extErr)
	assert.Equal(t, "StartExecution", extErr.Op)
}

func TestClient_SendTaskSuccess(t *testing.T) {
	api := &fakeSFN{}
	c := NewClient(api, quietLogger())

	require.NoError(t, c.SendTaskSuccess(context.Background(), "token", `{"accepted": true}`))
	assert.Equal(t, "token", aws.ToString(api.succeeded.TaskToken))
	assert.Equal(t, `{"accepted": true}`, aws.ToString(api.succeeded.Output))
}

func TestClient_WaitForStatus(t *testing.T) {
	tests := []struct {
		name          string
		statuses      []sfntypes.ExecutionStatus
		attempts      uint
		wantErr       error
		wantDescribes int
	}{
		{
			name:          "succeeds after running",
			statuses:      []sfntypes.ExecutionStatus{sfntypes.ExecutionStatusRunning, sfntypes.ExecutionStatusRunning, sfntypes.ExecutionStatusSucceeded},
			attempts:      5,
			wantDescribes: 3,
		},
		{
			name:          "gives up while running",
			statuses:      []sfntypes.ExecutionStatus{sfntypes.ExecutionStatusRunning},
			attempts:      3,
			wantErr:       ErrStatusMismatch,
			wantDescribes: 3,
		},
		{
			name:          "stops on terminal failure",
			statuses:      []sfntypes.ExecutionStatus{sfntypes.ExecutionStatusRunning, sfntypes.ExecutionStatusFailed},
			attempts:      5,
			wantErr:       ErrTerminalStatus,
			wantDescribes: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &fakeSFN{statuses: tt.statuses}
			c := NewClient(api, quietLogger())

			exec, err := c.WaitForStatus(context.Background(), "arn:execution:1", sfntypes.ExecutionStatusSucceeded, tt.attempts, time.Millisecond)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, sfntypes.ExecutionStatusSucceeded, exec.Status)
				assert.Equal(t, `{"ok":true}`, exec.Output)
			}
			assert.Equal(t, tt.wantDescribes, api.describes)
		})
	}
}

func TestClient_WaitForStatusCancelled(t *testing.T) {
	api := &fakeSFN{statuses: []sfntypes.ExecutionStatus{sfntypes.ExecutionStatusRunning}}
	c := NewClient(api, quietLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.WaitForStatus(ctx, "arn:execution:1", sfntypes.ExecutionStatusSucceeded, 5, time.Second)
	assert.ErrorIs(t, err, context.Canceled)
}
