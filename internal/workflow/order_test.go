package workflow

import (
	"context"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	sfntypes "github.com/aws/aws-sdk-go-v2/service/sfn/types"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderFlow_Run(t *testing.T) {
	api := &fakeSFN{statuses: []sfntypes.ExecutionStatus{sfntypes.ExecutionStatusRunning, sfntypes.ExecutionStatusSucceeded}}
	client := NewClient(api, quietLogger())

	ordered := &fakeQueue{batches: [][]sqstypes.Message{
		{message("o1", `{"Message": "{\"taskToken\": \"ordered-token\", \"orderId\": \"order-9\"}"}`)},
	}}
	accepted := &fakeQueue{batches: [][]sqstypes.Message{
		nil,
		{message("a1", `{"Message": "{\"taskToken\": \"accepted-token\", \"orderId\": \"order-9\"}"}`)},
	}}

	flow := &OrderFlow{
		Client:   client,
		Ordered:  NewTaskPoller(ordered, "ordered", time.Millisecond, quietLogger()),
		Accepted: NewTaskPoller(accepted, "accepted", time.Millisecond, quietLogger()),
		Attempts: 3,
		Delay:    time.Millisecond,
	}

	exec, err := flow.Run(context.Background(), "arn:machine", "order-9")
	require.NoError(t, err)

	assert.Equal(t, sfntypes.ExecutionStatusSucceeded, exec.Status)
	assert.JSONEq(t, `{"orderId": "order-9"}`, aws.ToString(api.started.Input))
	assert.Equal(t, "accepted-token", aws.ToString(api.succeeded.TaskToken))
	assert.JSONEq(t, `{"orderId": "order-9"}`, aws.ToString(api.succeeded.Output))
}
