package logging

import (
	"context"
	"io"
	"os"

	"github.com/aws/aws-lambda-go/lambdacontext"
	"github.com/sirupsen/logrus"
)

// Field names shared by every handler
const (
	FieldRequestID    = "aws_request_id"
	FieldFunctionName = "function_name"
	FieldHandler      = "handler"
	FieldDestination  = "destination"
	FieldDetailType   = "detail_type"
	FieldEventName    = "event_name"
	FieldMessageID    = "message_id"
	FieldItemID       = "item_id"
)

// Options configures a logger
type Options struct {
	Level  string
	JSON   bool
	Output io.Writer
}

// New builds a logrus logger. Unknown levels fall back to info.
func New(opts Options) *logrus.Logger {
	logger := logrus.New()

	if opts.Output != nil {
		logger.SetOutput(opts.Output)
	} else {
		logger.SetOutput(os.Stdout)
	}

	level, err := logrus.ParseLevel(opts.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if opts.JSON {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	return logger
}

// ForInvocation returns an entry carrying the Lambda request id and function name when ctx has them
func ForInvocation(ctx context.Context, logger logrus.FieldLogger, handler string) *logrus.Entry {
	fields := logrus.Fields{FieldHandler: handler}

	if lc, ok := lambdacontext.FromContext(ctx); ok {
		fields[FieldRequestID] = lc.AwsRequestID
	}
	if lambdacontext.FunctionName != "" {
		fields[FieldFunctionName] = lambdacontext.FunctionName
	}

	return logger.WithFields(fields)
}
