package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

const (
	StorageDriverPostgres = "postgres"
	StorageDriverMemory   = "memory"
)

type Config struct {
	App       AppConfig
	Server    ServerConfig
	Storage   StorageConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	Kafka     KafkaConfig
	RateLimit RateLimitConfig
}

type AppConfig struct {
	Name        string `env:"APP_NAME" envDefault:"fundchain"`
	Environment string `env:"APP_ENV" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
}

type ServerConfig struct {
	Port            string        `env:"SERVER_PORT" envDefault:"8080"`
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

type StorageConfig struct {
	Driver string `env:"STORAGE_DRIVER" envDefault:"postgres"`
}

type DatabaseConfig struct {
	Host            string        `env:"DATABASE_HOST" envDefault:"localhost"`
	Port            int           `env:"DATABASE_PORT" envDefault:"5432"`
	User            string        `env:"DATABASE_USER" envDefault:"postgres"`
	Password        string        `env:"DATABASE_PASSWORD" envDefault:"postgres"`
	DBName          string        `env:"DATABASE_NAME" envDefault:"fundchain"`
	SSLMode         string        `env:"DATABASE_SSLMODE" envDefault:"disable"`
	MaxOpenConns    int           `env:"DATABASE_MAX_OPEN_CONNS" envDefault:"25"`
	MaxIdleConns    int           `env:"DATABASE_MAX_IDLE_CONNS" envDefault:"5"`
	ConnMaxLifetime time.Duration `env:"DATABASE_CONN_MAX_LIFETIME" envDefault:"5m"`
	DSN             string        `env:"DATABASE_URL"`
}

type JWTConfig struct {
	Secret string        `env:"JWT_SECRET"`
	Issuer string        `env:"JWT_ISSUER" envDefault:"fundchain"`
	TTL    time.Duration `env:"JWT_TTL" envDefault:"24h"`
}

type KafkaConfig struct {
	Enabled      bool          `env:"KAFKA_ENABLED" envDefault:"false"`
	Brokers      []string      `env:"KAFKA_BROKERS" envSeparator:","`
	Topic        string        `env:"KAFKA_TOPIC" envDefault:"fundchain.campaign-events"`
	WriteTimeout time.Duration `env:"KAFKA_WRITE_TIMEOUT" envDefault:"5s"`
}

type RateLimitConfig struct {
	Requests int           `env:"RATE_LIMIT_REQUESTS" envDefault:"100"`
	Window   time.Duration `env:"RATE_LIMIT_WINDOW" envDefault:"1m"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if cfg.Database.DSN == "" {
		cfg.Database.DSN = fmt.Sprintf(
			"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			cfg.Database.Host,
			cfg.Database.Port,
			cfg.Database.User,
			cfg.Database.Password,
			cfg.Database.DBName,
			cfg.Database.SSLMode,
		)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case StorageDriverPostgres, StorageDriverMemory:
	default:
		return fmt.Errorf("STORAGE_DRIVER invalido: %q (use %s ou %s)", c.Storage.Driver, StorageDriverPostgres, StorageDriverMemory)
	}

	if strings.TrimSpace(c.JWT.Secret) == "" {
		return fmt.Errorf("JWT_SECRET é obrigatório")
	}
	if c.JWT.TTL <= 0 {
		return fmt.Errorf("JWT_TTL deve ser maior que zero")
	}

	if c.Kafka.Enabled {
		if len(c.Kafka.Brokers) == 0 {
			return fmt.Errorf("KAFKA_BROKERS é obrigatório quando KAFKA_ENABLED=true")
		}
		if strings.TrimSpace(c.Kafka.Topic) == "" {
			return fmt.Errorf("KAFKA_TOPIC é obrigatório quando KAFKA_ENABLED=true")
		}
	}

	if c.RateLimit.Requests < 1 || c.RateLimit.Window <= 0 {
		return fmt.Errorf("RATE_LIMIT_REQUESTS e RATE_LIMIT_WINDOW devem ser positivos")
	}
	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}
