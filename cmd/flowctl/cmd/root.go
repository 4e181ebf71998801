package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sfn"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"event-driven-flow/internal/logging"
	"event-driven-flow/internal/workflow"
)

var (
	envFile string
	logger  *logrus.Logger
)

// clients builds the service clients commands talk to
var clients = func(ctx context.Context, region string) (workflow.API, workflow.QueueAPI, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("could not load AWS config: %w", err)
	}
	return sfn.NewFromConfig(awsCfg), sqs.NewFromConfig(awsCfg), nil
}

var rootCmd = &cobra.Command{
	Use:   "flowctl",
	Short: "Drive event-driven-flow workflows",
	Long: `flowctl starts and inspects state machine executions and completes
their callback tasks.

Settings such as queue URLs can be loaded from an env file, e.g. the
.outputs.env written by a deployment.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if envFile != "" {
			if err := godotenv.Load(envFile); err != nil {
				return fmt.Errorf("could not load %s: %w", envFile, err)
			}
		}

		level, _ := cmd.Flags().GetString("log-level")
		logger = logging.New(logging.Options{Level: level, Output: cmd.ErrOrStderr()})
		return nil
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "env file to load before running")
	rootCmd.PersistentFlags().String("region", "", "AWS region (default: from the AWS config chain)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level")
}

func workflowClient(cmd *cobra.Command) (*workflow.Client, workflow.QueueAPI, error) {
	region, _ := cmd.Flags().GetString("region")

	api, queue, err := clients(cmd.Context(), region)
	if err != nil {
		return nil, nil, err
	}
	return workflow.NewClient(api, logger), queue, nil
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// flagOrEnv returns the flag value, falling back to the environment variable env
func flagOrEnv(cmd *cobra.Command, flag, env string) string {
	if v, _ := cmd.Flags().GetString(flag); v != "" {
		return v
	}
	return os.Getenv(env)
}

func contextWithTimeout(cmd *cobra.Command, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(cmd.Context())
	}
	return context.WithTimeout(cmd.Context(), timeout)
}
