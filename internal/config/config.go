package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

type Config struct {
	App struct {
		Name string `envconfig:"APP_NAME" default:"Cashbook"`
		Port int    `envconfig:"PORT" default:"8080"`
	}

	DB struct {
		Host     string `envconfig:"DB_HOST" default:"localhost"`
		Port     int    `envconfig:"DB_PORT" default:"5432"`
		User     string `envconfig:"DB_USER" default:"postgres"`
		Password string `envconfig:"DB_PASSWORD" default:""`
		Name     string `envconfig:"DB_NAME" default:"cashbook"`
		Migrate  bool   `envconfig:"DB_MIGRATE" default:"true"`
	}

	Server struct {
		Timeout time.Duration `envconfig:"SERVER_TIMEOUT" default:"30s"`
	}

	Auth struct {
		// Empty disables bearer-token checks.
		JWTSecret string `envconfig:"AUTH_JWT_SECRET"`
	}

	CORS struct {
		AllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
	}

	Learning struct {
		// File switches the learning store from Postgres to a YAML file.
		File string `envconfig:"LEARNING_FILE"`
	}

	Import struct {
		GuestDeposit     decimal.Decimal `envconfig:"IMPORT_GUEST_DEPOSIT" default:"50.00"`
		DedupeCategories []string        `envconfig:"IMPORT_DEDUPE_CATEGORIES" default:"ATM/Cash-point,Cash-point,Geldautomat"`
	}
}

func (c *Config) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.DB.User, c.DB.Password, c.DB.Host, c.DB.Port, c.DB.Name)
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}
