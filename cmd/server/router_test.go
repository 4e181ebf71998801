package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"event-driven-flow/internal/config"
	"event-driven-flow/internal/forwarder"
	"event-driven-flow/internal/handlers"
	"event-driven-flow/internal/messaging"
	"event-driven-flow/internal/sink/sinktest"
	"event-driven-flow/pkg/lambda"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubBroker struct {
	connected bool
}

func (b *stubBroker) PublishMsg(ctx context.Context, msg *messaging.Message) error { return nil }
func (b *stubBroker) IsConnected() bool                                            { return b.connected }
func (b *stubBroker) Close() error                                                 { return nil }

func testRouter(t *testing.T, rec *sinktest.Recorder) *gin.Engine {
	return testRouterWithBroker(t, rec, nil)
}

func testRouterWithBroker(t *testing.T, rec *sinktest.Recorder, broker messaging.Publisher) *gin.Engine {
	t.Helper()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	cfg := &config.Config{
		Stage:        "test",
		Backend:      config.BackendLocal,
		Destinations: config.DestinationConfig{EventBus: "bus"},
		Gateway:      config.GatewayConfig{Port: "0"},
	}

	f := forwarder.New(rec, forwarder.Config{Destination: "bus", Source: handlers.APISource}, logger)
	api := handlers.NewAPIHandler(f, logger)

	return newRouter(cfg, logger, api.Handle, broker, prometheus.NewRegistry())
}

func TestGateway_ForwardsAPIRequest(t *testing.T) {
	rec := &sinktest.Recorder{}
	router := testRouter(t, rec)

	req := httptest.NewRequest(http.MethodPost, "/api/orders?x=1", strings.NewReader(`{"anything": true}`))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Body.String())
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	require.Equal(t, 1, rec.Calls())
	msg := rec.Messages()[0]
	assert.Equal(t, "api-function", msg.Source)
	assert.Equal(t, "greeting", msg.DetailType)
	assert.Equal(t, "api function says hello", msg.Detail.Message)
	assert.Equal(t, "bus", msg.Destination)
}

func TestGateway_SinkFailureIsBadGateway(t *testing.T) {
	rec := &sinktest.Recorder{FailOn: 1, Err: errors.New("bus unavailable")}
	router := testRouter(t, rec)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/", nil))

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.NotContains(t, w.Body.String(), "bus unavailable")
}

func TestGateway_HealthAndMetrics(t *testing.T) {
	router := testRouter(t, &sinktest.Recorder{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"healthy"`)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "gateway_requests_total")
}

func TestGateway_HealthReportsBroker(t *testing.T) {
	tests := []struct {
		name       string
		connected  bool
		wantCode   int
		wantStatus string
	}{
		{"connected", true, http.StatusOK, `"status":"healthy"`},
		{"disconnected", false, http.StatusServiceUnavailable, `"status":"degraded"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := testRouterWithBroker(t, &sinktest.Recorder{}, &stubBroker{connected: tt.connected})

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

			assert.Equal(t, tt.wantCode, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantStatus)
			assert.Contains(t, w.Body.String(), `"broker_connected"`)
		})
	}
}

func TestGateway_ChunkedBodyTooLarge(t *testing.T) {
	rec := &sinktest.Recorder{}
	router := testRouter(t, rec)

	req := httptest.NewRequest(http.MethodPost, "/api/upload", strings.NewReader(strings.Repeat("a", lambda.MaxBodySize+1)))
	req.ContentLength = -1
	req.TransferEncoding = []string{"chunked"}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Equal(t, 0, rec.Calls())
}

func TestProxy_PassesPathAndStage(t *testing.T) {
	var got events.APIGatewayProxyRequest
	h := func(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
		got = req
		return events.APIGatewayProxyResponse{StatusCode: http.StatusAccepted, Body: "ok"}, nil
	}

	router := gin.New()
	router.Any("/api/*path", proxy("dev", h))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/a/b", nil))

	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, "ok", w.Body.String())
	assert.Equal(t, "a/b", got.PathParameters["proxy"])
	assert.Equal(t, "dev", got.RequestContext.Stage)
	assert.Equal(t, http.MethodDelete, got.HTTPMethod)
}
