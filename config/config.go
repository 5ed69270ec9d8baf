package config

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config хранит все конфигурационные параметры портала.
type Config struct {
	ServerPort int    `envconfig:"SERVER_PORT" default:"8080"`
	JWTSecret  string `envconfig:"JWT_SECRET_KEY" required:"true"`

	// Бекенд турниров (внешний коллаборатор, см. backend.Client).
	BackendBaseURL string `envconfig:"BACKEND_BASE_URL" required:"true"`
	BackendRPM     int    `envconfig:"BACKEND_REQUESTS_PER_MINUTE" default:"120"`

	// Журнал отправок.
	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`

	// Публикация событий регистрации, пустой URL выключает publisher.
	AMQPURL      string `envconfig:"AMQP_URL"`
	AMQPExchange string `envconfig:"AMQP_EXCHANGE" default:"portal.events"`

	// Cloudflare R2 для аватаров и баннеров. PublicBaseURL пустой — бакет
	// приватный, ссылки подписываются.
	R2AccountID       string `envconfig:"R2_ACCOUNT_ID"`
	R2AccessKeyID     string `envconfig:"R2_ACCESS_KEY_ID"`
	R2SecretAccessKey string `envconfig:"R2_SECRET_ACCESS_KEY"`
	R2BucketName      string `envconfig:"R2_BUCKET_NAME"`
	R2PublicBaseURL   string `envconfig:"R2_PUBLIC_BASE_URL"`

	// Ограничение частоты запросов к порталу (на IP).
	RateLimitPerMinute int `envconfig:"RATE_LIMIT_PER_MINUTE" default:"300"`

	// Потоки без активности дольше TTL выметаются.
	FlowTTLMinutes int `envconfig:"FLOW_TTL_MINUTES" default:"30"`
}

// Load загружает конфигурацию из переменных окружения.
// Опционально подгружает .env файл (полезно для локальной разработки).
func Load() (*Config, error) {
	// Загружаем .env файл, если он есть. Ошибку не считаем фатальной.
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment configuration: %w", err)
	}

	if cfg.ServerPort <= 0 || cfg.ServerPort > 65535 {
		return nil, fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", cfg.ServerPort)
	}
	if cfg.BackendRPM <= 0 {
		return nil, fmt.Errorf("BACKEND_REQUESTS_PER_MINUTE must be positive, got %d", cfg.BackendRPM)
	}

	return &cfg, nil
}

// R2Enabled сообщает, настроено ли хранилище изображений.
func (c *Config) R2Enabled() bool {
	return c.R2AccountID != "" && c.R2AccessKeyID != "" &&
		c.R2SecretAccessKey != "" && c.R2BucketName != ""
}
