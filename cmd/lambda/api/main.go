package main

import (
	"context"

	awslambda "github.com/aws/aws-lambda-go/lambda"

	"event-driven-flow/internal/config"
	"event-driven-flow/internal/handlers"
	"event-driven-flow/pkg/server"
)

var handler *handlers.APIHandler

func init() {
	cfg := config.MustLoad(config.SettingEventBus)

	container, err := server.NewContainer(context.Background(), cfg)
	if err != nil {
		panic("Failed to initialize container: " + err.Error())
	}

	handler = handlers.NewAPIHandler(container.Forwarder(handlers.APISource), container.Logger)
}

func main() {
	awslambda.Start(handler.Handle)
}
