package config

import (
	"fmt"
	"time"

	"github.com/Netflix/go-env"
)

type Config struct {
	HipChatServer        string        `env:"HIPCHAT_SERVER,required=true"`
	HipChatToken         string        `env:"HIPCHAT_TOKEN,required=true"`
	HipChatRooms         string        `env:"HIPCHAT_ROOMS"`
	HipChatUsers         string        `env:"HIPCHAT_USERS"`
	NotifyTriggeringUser bool          `env:"HIPCHAT_NOTIFY_TRIGGERING_USER,default=false"`
	HTTPTimeout          time.Duration `env:"HIPCHAT_HTTP_TIMEOUT,default=10s"`
	APIPort              int           `env:"API_PORT,default=8080"`
	LogLevel             string        `env:"LOG_LEVEL,default=info"`
	RabbitMQURL          string        `env:"RABBITMQ_URL"`
	RabbitMQPrefetch     int           `env:"RABBITMQ_PREFETCH,default=1"`
	TracingEndpoint      string        `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
}

func Load() (*Config, error) {
	var cfg Config
	_, err := env.UnmarshalFromEnviron(&cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.HTTPTimeout <= 0 {
		return nil, fmt.Errorf("failed to load config: HIPCHAT_HTTP_TIMEOUT must be positive, got %s", cfg.HTTPTimeout)
	}
	return &cfg, nil
}
