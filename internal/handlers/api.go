package handlers

import (
	"context"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/sirupsen/logrus"

	"event-driven-flow/internal/forwarder"
	"event-driven-flow/internal/logging"
	"event-driven-flow/internal/models"
)

const (
	APISource  = "api-function"
	APIMessage = "api function says hello"
)

// APIHandler answers gateway requests by putting a greeting on the event bus
type APIHandler struct {
	forwarder *forwarder.Forwarder
	logger    logrus.FieldLogger
}

// NewAPIHandler creates a new API handler
func NewAPIHandler(f *forwarder.Forwarder, logger logrus.FieldLogger) *APIHandler {
	return &APIHandler{forwarder: f, logger: logger}
}

// Handle sends exactly one greeting regardless of the request path, headers or body
// and responds 200 with an empty body. A sink failure fails the invocation.
func (h *APIHandler) Handle(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	log := logging.ForInvocation(ctx, h.logger, "api")
	log.WithFields(logrus.Fields{
		"method": req.HTTPMethod,
		"path":   req.Path,
	}).Info("Received gateway request")

	record := forwarder.Record{DetailType: models.DetailTypeGreeting, Message: APIMessage}
	if err := h.forwarder.ForwardOne(ctx, record); err != nil {
		return events.APIGatewayProxyResponse{}, err
	}

	return events.APIGatewayProxyResponse{
		StatusCode: http.StatusOK,
	}, nil
}
