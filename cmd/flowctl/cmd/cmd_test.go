package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sfn"
	sfntypes "github.com/aws/aws-sdk-go-v2/service/sfn/types"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"event-driven-flow/internal/workflow"
)

type fakeSFN struct {
	started *sfn.StartExecutionInput
	token   string
}

func (f *fakeSFN) StartExecution(ctx context.Context, in *sfn.StartExecutionInput, _ ...func(*sfn.Options)) (*sfn.StartExecutionOutput, error) {
	f.started = in
	return &sfn.StartExecutionOutput{ExecutionArn: aws.String("arn:execution:7")}, nil
}

func (f *fakeSFN) DescribeExecution(ctx context.Context, in *sfn.DescribeExecutionInput, _ ...func(*sfn.Options)) (*sfn.DescribeExecutionOutput, error) {
	return &sfn.DescribeExecutionOutput{ExecutionArn: in.ExecutionArn, Status: sfntypes.ExecutionStatusSucceeded}, nil
}

func (f *fakeSFN) SendTaskSuccess(ctx context.Context, in *sfn.SendTaskSuccessInput, _ ...func(*sfn.Options)) (*sfn.SendTaskSuccessOutput, error) {
	f.token = aws.ToString(in.TaskToken)
	return &sfn.SendTaskSuccessOutput{}, nil
}

type fakeQueue struct{}

func (fakeQueue) ReceiveMessage(ctx context.Context, in *sqs.ReceiveMessageInput, _ ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error) {
	return &sqs.ReceiveMessageOutput{Messages: []sqstypes.Message{{
		MessageId: aws.String("m1"),
		Body:      aws.String(`{"Message": "{\"taskToken\": \"tok\", \"orderId\": \"o-1\"}"}`),
	}}}, nil
}

func run(t *testing.T, api *fakeSFN, args ...string) (string, error) {
	t.Helper()

	orig := clients
	clients = func(ctx context.Context, region string) (workflow.API, workflow.QueueAPI, error) {
		return api, fakeQueue{}, nil
	}
	t.Cleanup(func() { clients = orig })

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs(args)

	err := rootCmd.Execute()
	return out.String(), err
}

func TestCommandsRegistered(t *testing.T) {
	expected := map[string]bool{
		"start":        false,
		"describe":     false,
		"wait":         false,
		"send-success": false,
		"await-task":   false,
		"order-flow":   false,
	}

	for _, c := range rootCmd.Commands() {
		if _, ok := expected[c.Name()]; ok {
			expected[c.Name()] = true
		}
	}

	for name, found := range expected {
		assert.True(t, found, "expected command %q to be registered", name)
	}
}

func TestStartCommand(t *testing.T) {
	api := &fakeSFN{}
	out, err := run(t, api, "start", "--machine", "arn:machine", "--input", `{"orderId": "o-1"}`)
	require.NoError(t, err)

	var result map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, "arn:execution:7", result["executionArn"])
	assert.Equal(t, "arn:machine", aws.ToString(api.started.StateMachineArn))
	assert.JSONEq(t, `{"orderId": "o-1"}`, aws.ToString(api.started.Input))
}

func TestStartCommand_MachineFromEnv(t *testing.T) {
	t.Setenv("OrdersMachineArn", "arn:env-machine")

	api := &fakeSFN{}
	_, err := run(t, api, "start", "--machine", "", "--input", "")
	require.NoError(t, err)
	assert.Equal(t, "arn:env-machine", aws.ToString(api.started.StateMachineArn))
	assert.Contains(t, aws.ToString(api.started.Input), "orderId")
}

func TestWaitCommand(t *testing.T) {
	out, err := run(t, &fakeSFN{}, "wait", "arn:execution:7", "--attempts", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "SUCCEEDED")
}

func TestSendSuccessCommand(t *testing.T) {
	api := &fakeSFN{}
	_, err := run(t, api, "send-success", "tok", "--output", `{"accepted": true}`)
	require.NoError(t, err)
	assert.Equal(t, "tok", api.token)
}

func TestAwaitTaskCommand(t *testing.T) {
	out, err := run(t, &fakeSFN{}, "await-task", "--queue", "queue-url", "--order", "o-1", "--interval", "1ms")
	require.NoError(t, err)

	var task workflow.Task
	require.NoError(t, json.Unmarshal([]byte(out), &task))
	assert.Equal(t, workflow.Task{TaskToken: "tok", OrderID: "o-1"}, task)
}

func TestAwaitTaskCommand_RequiresOrder(t *testing.T) {
	_, err := run(t, &fakeSFN{}, "await-task", "--queue", "queue-url", "--order", "")
	assert.Error(t, err)
}
