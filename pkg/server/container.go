package server

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"event-driven-flow/internal/config"
	"event-driven-flow/internal/forwarder"
	"event-driven-flow/internal/logging"
	"event-driven-flow/internal/messaging"
	natsclient "event-driven-flow/internal/messaging/nats"
	"event-driven-flow/internal/notify"
	"event-driven-flow/internal/sink"
	"event-driven-flow/internal/store"
)

// Container holds the dependencies a handler needs
type Container struct {
	Config   *config.Config
	Logger   *logrus.Logger
	Sink     sink.Sink
	Store    store.Store
	Notifier notify.Notifier

	// Broker is the local backend's publisher; nil for the AWS backend.
	Broker messaging.Publisher

	closers []io.Closer
}

// Clients are the backend connections a container is assembled from.
// Exactly one group is expected to be set.
type Clients struct {
	// AWS backend
	Events    sink.EventsPutter
	Dynamo    store.DynamoAPI
	SNS       notify.SNSPublisher
	AWSConfig aws.Config

	// Local backend
	Publisher messaging.Publisher
	Redis     redis.UniversalClient
}

// NewContainer connects to the backend selected by cfg and wires the sink,
// store and notifier
func NewContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	logger := logging.New(logging.Options{
		Level: cfg.LogLevel,
		JSON:  config.IsServerlessMode(),
	})

	clients, err := connect(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	return NewContainerWithClients(cfg, logger, clients), nil
}

// NewContainerWithClients wires a container from already-built clients
func NewContainerWithClients(cfg *config.Config, logger *logrus.Logger, clients Clients) *Container {
	c := &Container{
		Config: cfg,
		Logger: logger,
	}

	if cfg.Backend == config.BackendLocal {
		c.Sink = sink.NewNATSSink(clients.Publisher)
		c.Notifier = notify.NewNATSNotifier(clients.Publisher)
		c.Store = store.NewRedisStore(clients.Redis, cfg.Destinations.Table)
		c.Broker = clients.Publisher
		c.closers = append(c.closers, c.Store, clients.Publisher)
		return c
	}

	c.Sink = sink.NewEventBridgeSink(clients.Events)
	c.Notifier = notify.NewSNSNotifier(clients.SNS)
	c.Store = store.NewDynamoStore(clients.Dynamo, cfg.Destinations.Table)
	c.closers = append(c.closers, c.Store)
	return c
}

func connect(ctx context.Context, cfg *config.Config, logger logrus.FieldLogger) (Clients, error) {
	if cfg.Backend == config.BackendLocal {
		natsCfg := natsclient.DefaultConfig()
		natsCfg.URL = cfg.Local.NATSURL

		publisher, err := natsclient.NewClient(natsCfg, logger)
		if err != nil {
			return Clients{}, fmt.Errorf("failed to connect publisher: %w", err)
		}

		rdb := redis.NewClient(&redis.Options{Addr: cfg.Local.RedisAddr})
		if err := rdb.Ping(ctx).Err(); err != nil {
			publisher.Close()
			rdb.Close()
			return Clients{}, fmt.Errorf("failed to connect to redis: %w", err)
		}

		return Clients{Publisher: publisher, Redis: rdb}, nil
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return Clients{}, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return Clients{
		Events:    eventbridge.NewFromConfig(awsCfg),
		Dynamo:    dynamodb.NewFromConfig(awsCfg),
		SNS:       sns.NewFromConfig(awsCfg),
		AWSConfig: awsCfg,
	}, nil
}

// Forwarder returns a forwarder that sends to the configured event bus as source
func (c *Container) Forwarder(source string) *forwarder.Forwarder {
	return forwarder.New(c.Sink, forwarder.Config{
		Destination: c.Config.Destinations.EventBus,
		Source:      source,
	}, c.Logger)
}

// Close cleans up all resources
func (c *Container) Close() error {
	var errs []error
	for _, closer := range c.closers {
		if err := closer.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	c.closers = nil

	if len(errs) > 0 {
		return fmt.Errorf("failed to close container: %w", errors.Join(errs...))
	}
	return nil
}
