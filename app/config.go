package app

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

type Config struct {
	ServerAddress    string          `envconfig:"SERVER_ADDRESS" default:":8080" validate:"required"`
	Storage          string          `envconfig:"STORAGE" default:"postgres" validate:"oneof=postgres memory"`
	PostgresConn     string          `envconfig:"POSTGRES_CONN" validate:"required_if=Storage postgres"`
	PostgresDatabase string          `envconfig:"POSTGRES_DATABASE" default:"postgres"`
	MigrationsSource string          `envconfig:"MIGRATIONS_SOURCE" default:"file://migrations"`
	MinBidDecrement  decimal.Decimal `envconfig:"MIN_BID_DECREMENT" default:"50"`
	AwardConcurrency int             `envconfig:"AWARD_CONCURRENCY" default:"4" validate:"gte=1,lte=64"`
	LogLevel         string          `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=trace debug info warn warning error fatal panic"`
	LogFormat        string          `envconfig:"LOG_FORMAT" default:"text" validate:"oneof=text json"`
	ShutdownTimeout  time.Duration   `envconfig:"SHUTDOWN_TIMEOUT" default:"30s" validate:"gt=0"`
}

func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("read config from environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	if c.MinBidDecrement.IsNegative() {
		return fmt.Errorf("invalid config: MIN_BID_DECREMENT can't be negative, got %s", c.MinBidDecrement)
	}

	return nil
}
