package cmd

import (
	"fmt"
	"time"

	sfntypes "github.com/aws/aws-sdk-go-v2/service/sfn/types"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"event-driven-flow/internal/workflow"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start an execution",
	RunE: func(cmd *cobra.Command, args []string) error {
		machine := flagOrEnv(cmd, "machine", "OrdersMachineArn")
		input, _ := cmd.Flags().GetString("input")
		if machine == "" {
			return fmt.Errorf("--machine is required")
		}
		if input == "" {
			input = fmt.Sprintf(`{"orderId": %q}`, uuid.New().String())
		}

		client, _, err := workflowClient(cmd)
		if err != nil {
			return err
		}

		arn, err := client.Start(cmd.Context(), machine, input)
		if err != nil {
			return fmt.Errorf("failed to start execution: %w", err)
		}
		return printJSON(cmd, map[string]string{"executionArn": arn, "input": input})
	},
}

var describeCmd = &cobra.Command{
	Use:   "describe [execution-arn]",
	Short: "Show the status of an execution",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, _, err := workflowClient(cmd)
		if err != nil {
			return err
		}

		exec, err := client.Describe(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("failed to describe execution: %w", err)
		}
		return printJSON(cmd, exec)
	},
}

var waitCmd = &cobra.Command{
	Use:   "wait [execution-arn]",
	Short: "Wait for an execution to reach a status",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		status, _ := cmd.Flags().GetString("status")
		attempts, _ := cmd.Flags().GetUint("attempts")
		delay, _ := cmd.Flags().GetDuration("delay")

		client, _, err := workflowClient(cmd)
		if err != nil {
			return err
		}

		exec, err := client.WaitForStatus(cmd.Context(), args[0], sfntypes.ExecutionStatus(status), attempts, delay)
		if err != nil {
			return fmt.Errorf("execution did not reach %s: %w", status, err)
		}
		return printJSON(cmd, exec)
	},
}

var sendSuccessCmd = &cobra.Command{
	Use:   "send-success [task-token]",
	Short: "Complete a callback task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		output, _ := cmd.Flags().GetString("output")

		client, _, err := workflowClient(cmd)
		if err != nil {
			return err
		}

		if err := client.SendTaskSuccess(cmd.Context(), args[0], output); err != nil {
			return fmt.Errorf("failed to send task success: %w", err)
		}
		logger.Info("Task completed")
		return nil
	},
}

var awaitTaskCmd = &cobra.Command{
	Use:   "await-task",
	Short: "Wait for the callback task of an order to arrive on a queue",
	RunE: func(cmd *cobra.Command, args []string) error {
		queueURL := flagOrEnv(cmd, "queue", "OrderedOrdersQueueUrl")
		orderID, _ := cmd.Flags().GetString("order")
		interval, _ := cmd.Flags().GetDuration("interval")
		timeout, _ := cmd.Flags().GetDuration("timeout")
		if queueURL == "" || orderID == "" {
			return fmt.Errorf("--queue and --order are required")
		}

		_, queue, err := workflowClient(cmd)
		if err != nil {
			return err
		}

		ctx, cancel := contextWithTimeout(cmd, timeout)
		defer cancel()

		task, err := workflow.NewTaskPoller(queue, queueURL, interval, logger).WaitFor(ctx, orderID)
		if err != nil {
			return fmt.Errorf("no task for order %s: %w", orderID, err)
		}
		return printJSON(cmd, task)
	},
}

var orderFlowCmd = &cobra.Command{
	Use:   "order-flow",
	Short: "Run an order through acceptance and fulfilment",
	RunE: func(cmd *cobra.Command, args []string) error {
		machine := flagOrEnv(cmd, "machine", "OrdersMachineArn")
		orderedURL := flagOrEnv(cmd, "ordered-queue", "OrderedOrdersQueueUrl")
		acceptedURL := flagOrEnv(cmd, "accepted-queue", "AcceptedOrdersQueueUrl")
		timeout, _ := cmd.Flags().GetDuration("timeout")
		if machine == "" || orderedURL == "" || acceptedURL == "" {
			return fmt.Errorf("--machine, --ordered-queue and --accepted-queue are required")
		}

		client, queue, err := workflowClient(cmd)
		if err != nil {
			return err
		}

		ctx, cancel := contextWithTimeout(cmd, timeout)
		defer cancel()

		flow := &workflow.OrderFlow{
			Client:   client,
			Ordered:  workflow.NewTaskPoller(queue, orderedURL, 2*time.Second, logger),
			Accepted: workflow.NewTaskPoller(queue, acceptedURL, 2*time.Second, logger),
			Attempts: 5,
			Delay:    time.Second,
		}

		exec, err := flow.Run(ctx, machine, uuid.New().String())
		if err != nil {
			return fmt.Errorf("order flow failed: %w", err)
		}
		return printJSON(cmd, exec)
	},
}

func init() {
	startCmd.Flags().String("machine", "", "state machine ARN (env OrdersMachineArn)")
	startCmd.Flags().String("input", "", "execution input JSON (default: a new orderId)")

	waitCmd.Flags().String("status", string(sfntypes.ExecutionStatusSucceeded), "status to wait for")
	waitCmd.Flags().Uint("attempts", 5, "number of describe attempts")
	waitCmd.Flags().Duration("delay", time.Second, "delay between attempts")

	sendSuccessCmd.Flags().String("output", "{}", "task output JSON")

	awaitTaskCmd.Flags().String("queue", "", "queue URL (env OrderedOrdersQueueUrl)")
	awaitTaskCmd.Flags().String("order", "", "order id")
	awaitTaskCmd.Flags().Duration("interval", 2*time.Second, "polling interval")
	awaitTaskCmd.Flags().Duration("timeout", 2*time.Minute, "how long to wait")

	orderFlowCmd.Flags().String("machine", "", "state machine ARN (env OrdersMachineArn)")
	orderFlowCmd.Flags().String("ordered-queue", "", "queue receiving ordered tasks (env OrderedOrdersQueueUrl)")
	orderFlowCmd.Flags().String("accepted-queue", "", "queue receiving accepted tasks (env AcceptedOrdersQueueUrl)")
	orderFlowCmd.Flags().Duration("timeout", 5*time.Minute, "how long the whole flow may take")

	rootCmd.AddCommand(startCmd, describeCmd, waitCmd, sendSuccessCmd, awaitTaskCmd, orderFlowCmd)
}
