package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"

	"event-driven-flow/internal/config"
	"event-driven-flow/internal/handlers"
	"event-driven-flow/pkg/server"
)

func main() {
	if err := run(); err != nil {
		logrus.WithError(err).Fatal("Gateway stopped")
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load(config.SettingEventBus)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize dependencies
	container, err := server.NewContainer(context.Background(), cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize container: %w", err)
	}
	defer container.Close()

	logger := container.Logger

	if cfg.Stage == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	api := handlers.NewAPIHandler(container.Forwarder(handlers.APISource), logger)
	router := newRouter(cfg, logger, api.Handle, container.Broker, registry)

	srv := &http.Server{
		Addr:              ":" + cfg.Gateway.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	logger.WithFields(logrus.Fields{
		"port":    cfg.Gateway.Port,
		"backend": cfg.Backend,
		"bus":     cfg.Destinations.EventBus,
	}).Info("Gateway starting")

	return serve(srv, quit, 30*time.Second, logger)
}

// serve runs srv until it fails or quit fires, then shuts it down gracefully
func serve(srv *http.Server, quit <-chan os.Signal, grace time.Duration, logger logrus.FieldLogger) error {
	serveErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case err := <-serveErr:
		return fmt.Errorf("failed to start server: %w", err)
	case <-quit:
	}

	logger.Info("Shutting down gateway...")

	ctx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("gateway forced to shutdown: %w", err)
	}

	logger.Info("Gateway exited")
	return nil
}
