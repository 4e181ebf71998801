package main

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"event-driven-flow/internal/config"
	"event-driven-flow/internal/messaging"
	"event-driven-flow/internal/middleware"
	"event-driven-flow/pkg/lambda"
)

// newRouter builds the gateway. broker is nil for the AWS backend; when set,
// /health reports degraded while the broker connection is down.
func newRouter(cfg *config.Config, logger logrus.FieldLogger, api lambda.ProxyHandler, broker messaging.Publisher, registry *prometheus.Registry) *gin.Engine {
	metrics := middleware.NewMetrics(registry)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.StructuredLogger(logger))
	router.Use(metrics.Handler())

	router.GET("/health", func(c *gin.Context) {
		status, code := "healthy", http.StatusOK
		body := gin.H{
			"timestamp": time.Now().UTC(),
			"backend":   cfg.Backend,
			"stage":     cfg.Stage,
			"mode":      config.GetDeploymentMode(),
		}
		if broker != nil {
			connected := broker.IsConnected()
			body["broker_connected"] = connected
			if !connected {
				status, code = "degraded", http.StatusServiceUnavailable
			}
		}
		body["status"] = status
		c.JSON(code, body)
	})

	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	apiGroup := router.Group("/api")
	apiGroup.Use(middleware.CORS())
	apiGroup.Use(middleware.RateLimiter(cfg.Gateway.RateLimit, cfg.Gateway.Burst, logger))
	apiGroup.Use(middleware.RequestSizeLimit(lambda.MaxBodySize))
	apiGroup.Use(middleware.ErrorHandler(logger))
	apiGroup.Any("/*path", proxy(cfg.Stage, api))

	return router
}

// proxy invokes an API Gateway proxy handler for the request
func proxy(stage string, h lambda.ProxyHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		params := map[string]string{"proxy": strings.TrimPrefix(c.Param("path"), "/")}

		event, err := lambda.FromHTTPRequest(c.Request, params)
		if err != nil {
			code := http.StatusBadRequest
			if errors.Is(err, lambda.ErrBodyTooLarge) {
				code = http.StatusRequestEntityTooLarge
			}
			c.AbortWithStatusJSON(code, middleware.ErrorResponse{
				Message:   err.Error(),
				RequestID: c.GetString(middleware.RequestIDKey),
				Timestamp: time.Now().UTC().Format(time.RFC3339),
			})
			return
		}
		event.RequestContext.RequestID = c.GetString(middleware.RequestIDKey)
		event.RequestContext.Stage = stage

		resp, err := h(c.Request.Context(), event)
		if err != nil {
			_ = c.Error(err)
			return
		}

		if err := lambda.WriteResponse(c.Writer, resp); err != nil {
			_ = c.Error(err)
		}
	}
}
