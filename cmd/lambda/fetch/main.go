package main

import (
	awslambda "github.com/aws/aws-lambda-go/lambda"
	"github.com/go-resty/resty/v2"

	"event-driven-flow/internal/config"
	"event-driven-flow/internal/handlers"
	"event-driven-flow/internal/logging"
)

var handler *handlers.FetchHandler

func init() {
	cfg := config.MustLoad()

	logger := logging.New(logging.Options{Level: cfg.LogLevel, JSON: config.IsServerlessMode()})
	client := resty.New().
		SetTimeout(cfg.Fetch.Timeout).
		SetHeader("User-Agent", "event-driven-flow-fetch")

	handler = handlers.NewFetchHandler(client, logger)
}

func main() {
	awslambda.Start(handler.Handle)
}
