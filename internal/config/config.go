package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Backend selects which managed services the handlers talk to
type Backend string

const (
	BackendAWS   Backend = "aws"
	BackendLocal Backend = "local"
)

// Setting names an environment-provided configuration value
type Setting string

const (
	SettingEventBus Setting = "EVENT_BUS"
	SettingTable    Setting = "DYNAMODB_TABLE"
	SettingTopicArn Setting = "SNS_TOPIC_ARN"
)

// ErrMissingSetting is returned when a required setting is absent at cold start
var ErrMissingSetting = errors.New("required setting is missing")

// SettingError reports which required settings were absent
type SettingError struct {
	Missing []Setting
}

func (e *SettingError) Error() string {
	names := make([]string, len(e.Missing))
	for i, s := range e.Missing {
		names[i] = string(s)
	}
	return fmt.Sprintf("%v: %s", ErrMissingSetting, strings.Join(names, ", "))
}

func (e *SettingError) Unwrap() error {
	return ErrMissingSetting
}

// Config holds all configuration for the handlers
type Config struct {
	Stage    string
	LogLevel string  `validate:"oneof=trace debug info warn error"`
	Backend  Backend `validate:"oneof=aws local"`
	Region   string

	Destinations DestinationConfig
	Local        LocalConfig
	Gateway      GatewayConfig
	Fetch        FetchConfig
}

// DestinationConfig identifies the external sinks
type DestinationConfig struct {
	EventBus string
	Table    string
	TopicArn string
}

// LocalConfig holds the endpoints used when Backend is local
type LocalConfig struct {
	NATSURL   string `validate:"required_if=Enabled true"`
	RedisAddr string `validate:"required_if=Enabled true"`
	Enabled   bool
}

// GatewayConfig holds the local HTTP gateway settings
type GatewayConfig struct {
	Port      string  `validate:"required"`
	RateLimit float64 `validate:"gte=0"`
	Burst     int     `validate:"gte=0"`
}

// FetchConfig holds settings for the fetch handler
type FetchConfig struct {
	Timeout time.Duration `validate:"gt=0"`
}

var validate = validator.New()

// Load loads configuration from environment variables and an optional .env file.
// Every setting in required must be present, otherwise a *SettingError is returned.
func Load(required ...Setting) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("STAGE", "dev")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("BACKEND", string(BackendAWS))
	v.SetDefault("AWS_REGION", "us-east-1")
	v.SetDefault("NATS_URL", "nats://127.0.0.1:4222")
	v.SetDefault("REDIS_ADDR", "127.0.0.1:6379")
	v.SetDefault("PORT", "8080")
	v.SetDefault("GATEWAY_RATE_LIMIT", 50.0)
	v.SetDefault("GATEWAY_BURST", 100)
	v.SetDefault("FETCH_TIMEOUT", "10s")

	backend := Backend(strings.ToLower(v.GetString("BACKEND")))

	cfg := &Config{
		Stage:    v.GetString("STAGE"),
		LogLevel: strings.ToLower(v.GetString("LOG_LEVEL")),
		Backend:  backend,
		Region:   v.GetString("AWS_REGION"),
		Destinations: DestinationConfig{
			EventBus: v.GetString(string(SettingEventBus)),
			Table:    v.GetString(string(SettingTable)),
			TopicArn: v.GetString(string(SettingTopicArn)),
		},
		Local: LocalConfig{
			NATSURL:   v.GetString("NATS_URL"),
			RedisAddr: v.GetString("REDIS_ADDR"),
			Enabled:   backend == BackendLocal,
		},
		Gateway: GatewayConfig{
			Port:      v.GetString("PORT"),
			RateLimit: v.GetFloat64("GATEWAY_RATE_LIMIT"),
			Burst:     v.GetInt("GATEWAY_BURST"),
		},
		Fetch: FetchConfig{
			Timeout: v.GetDuration("FETCH_TIMEOUT"),
		},
	}

	if err := cfg.Require(required...); err != nil {
		return nil, err
	}

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Require checks that every named setting has a value
func (c *Config) Require(settings ...Setting) error {
	var missing []Setting
	for _, s := range settings {
		if c.value(s) == "" {
			missing = append(missing, s)
		}
	}
	if len(missing) > 0 {
		return &SettingError{Missing: missing}
	}
	return nil
}

func (c *Config) value(s Setting) string {
	switch s {
	case SettingEventBus:
		return c.Destinations.EventBus
	case SettingTable:
		return c.Destinations.Table
	case SettingTopicArn:
		return c.Destinations.TopicArn
	default:
		return ""
	}
}

// MustLoad loads configuration and panics when it is unusable.
// Handlers call it during cold start so a bad deployment never serves.
func MustLoad(required ...Setting) *Config {
	cfg, err := Load(required...)
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}
	return cfg
}

// GetEnv gets an environment variable with a fallback value
func GetEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
