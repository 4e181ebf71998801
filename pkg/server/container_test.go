package server

import (
	"context"
	"io"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"event-driven-flow/internal/config"
	"event-driven-flow/internal/forwarder"
	"event-driven-flow/internal/messaging"
	"event-driven-flow/internal/notify"
	"event-driven-flow/internal/sink"
	"event-driven-flow/internal/store"
)

type fakePublisher struct {
	subjects []string
	closed   bool
}

func (f *fakePublisher) PublishMsg(ctx context.Context, msg *messaging.Message) error {
	f.subjects = append(f.subjects, msg.Subject)
	return nil
}

func (f *fakePublisher) IsConnected() bool { return !f.closed }

func (f *fakePublisher) Close() error {
	f.closed = true
	return nil
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// TestNewContainer verifies that the AWS backend is wired without network access
func TestNewContainer(t *testing.T) {
	t.Setenv("AWS_ACCESS_KEY_ID", "test")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "test")

	cfg := &config.Config{
		LogLevel: "info",
		Backend:  config.BackendAWS,
		Region:   "us-east-1",
		Destinations: config.DestinationConfig{
			EventBus: "bus",
			Table:    "items",
			TopicArn: "arn:aws:sns:us-east-1:000000000000:topic",
		},
	}

	container, err := NewContainer(context.Background(), cfg)
	require.NoError(t, err)

	assert.IsType(t, &sink.EventBridgeSink{}, container.Sink)
	assert.IsType(t, &store.DynamoStore{}, container.Store)
	assert.IsType(t, &notify.SNSNotifier{}, container.Notifier)
	assert.NotNil(t, container.Forwarder("api-function"))
	assert.Nil(t, container.Broker)

	assert.NoError(t, container.Close())
}

func TestNewContainerWithClients_Local(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	pub := &fakePublisher{}

	cfg := &config.Config{
		Backend:      config.BackendLocal,
		Destinations: config.DestinationConfig{EventBus: "bus", Table: "items"},
		Local:        config.LocalConfig{Enabled: true},
	}

	container := NewContainerWithClients(cfg, quietLogger(), Clients{Publisher: pub, Redis: rdb})

	assert.IsType(t, &sink.NATSSink{}, container.Sink)
	assert.IsType(t, &store.RedisStore{}, container.Store)
	assert.IsType(t, &notify.NATSNotifier{}, container.Notifier)
	assert.Same(t, pub, container.Broker)

	ctx := context.Background()
	require.NoError(t, container.Store.PutItem(ctx, store.Item{"id": "abc"}))
	assert.True(t, mr.Exists("items:abc"))

	require.NoError(t, container.Forwarder("api-function").ForwardOne(ctx, forwarder.Record{DetailType: "greeting", Message: "hello"}))
	assert.Equal(t, []string{"bus"}, pub.subjects)

	assert.True(t, container.Broker.IsConnected())
	require.NoError(t, container.Close())
	assert.True(t, pub.closed)
	assert.False(t, container.Broker.IsConnected())
	assert.NoError(t, container.Close())
}
