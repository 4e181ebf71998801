package handlers

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"

	"event-driven-flow/internal/logging"
)

// FetchInput is the workflow task input
type FetchInput struct {
	URL string `json:"url"`
}

// FetchOutput reports the size of the fetched body
type FetchOutput struct {
	URL  string `json:"url"`
	Size int    `json:"size"`
}

// FetchHandler downloads a URL for a workflow task
type FetchHandler struct {
	client *resty.Client
	logger logrus.FieldLogger
}

// NewFetchHandler creates a new fetch handler using client for requests
func NewFetchHandler(client *resty.Client, logger logrus.FieldLogger) *FetchHandler {
	return &FetchHandler{client: client, logger: logger}
}

// Handle fetches input.URL and returns the body length. Non-2xx responses fail.
func (h *FetchHandler) Handle(ctx context.Context, input FetchInput) (FetchOutput, error) {
	log := logging.ForInvocation(ctx, h.logger, "fetch").WithField("url", input.URL)

	if input.URL == "" {
		return FetchOutput{}, fmt.Errorf("%w: url", ErrMissingDetail)
	}

	resp, err := h.client.R().SetContext(ctx).Get(input.URL)
	if err != nil {
		log.WithError(err).Error("Failed to fetch url")
		return FetchOutput{}, fmt.Errorf("fetch %s: %w", input.URL, err)
	}
	if resp.IsError() {
		return FetchOutput{}, fmt.Errorf("%w: %s returned %d", ErrUnexpectedStatus, input.URL, resp.StatusCode())
	}

	size := len(resp.Body())
	log.WithField("size", size).Info("Fetched url")

	return FetchOutput{URL: input.URL, Size: size}, nil
}
