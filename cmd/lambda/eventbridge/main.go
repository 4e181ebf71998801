package main

import (
	"context"

	awslambda "github.com/aws/aws-lambda-go/lambda"

	"event-driven-flow/internal/config"
	"event-driven-flow/internal/handlers"
	"event-driven-flow/pkg/server"
)

var handler *handlers.BusHandler

func init() {
	cfg := config.MustLoad(config.SettingTable, config.SettingTopicArn)

	container, err := server.NewContainer(context.Background(), cfg)
	if err != nil {
		panic("Failed to initialize container: " + err.Error())
	}

	handler = handlers.NewBusHandler(container.Store, container.Notifier, cfg.Destinations.TopicArn, container.Logger)
}

func main() {
	awslambda.Start(handler.Handle)
}
