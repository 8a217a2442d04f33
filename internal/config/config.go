// Package config loads process configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Config struct {
	BotToken    string        `validate:"required"`
	PollTimeout time.Duration `validate:"gt=0"`
	LogMode     string        `validate:"oneof=development dev production prod"`

	Database DatabaseConfig
	Redis    RedisConfig

	SessionTTL   time.Duration `validate:"gte=0"`
	EditPageSize int           `validate:"min=1,max=20"`
	HealthAddr   string
	ChartFont    string
}

type DatabaseConfig struct {
	Driver string `validate:"oneof=sqlite postgres"`
	URL    string `validate:"required_if=Driver postgres"`
	Path   string `validate:"required_if=Driver sqlite"`
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int `validate:"gte=0"`
}

// DSN returns the data source name for the configured driver.
func (c DatabaseConfig) DSN() string {
	if c.Driver == DriverPostgres {
		return c.URL
	}
	return c.Path
}

// Load reads .env when present, then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("DB_DRIVER", DriverSQLite)
	v.SetDefault("DATABASE_PATH", "./data/bodytrack.db")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("SESSION_TTL", "24h")
	v.SetDefault("EDIT_PAGE_SIZE", 5)
	v.SetDefault("POLL_TIMEOUT", "10s")
	v.SetDefault("HEALTH_ADDR", ":8080")
	v.SetDefault("LOG_MODE", "development")

	cfg := &Config{
		BotToken:    v.GetString("BOT_TOKEN"),
		PollTimeout: v.GetDuration("POLL_TIMEOUT"),
		LogMode:     v.GetString("LOG_MODE"),
		Database: DatabaseConfig{
			Driver: v.GetString("DB_DRIVER"),
			URL:    v.GetString("DATABASE_URL"),
			Path:   v.GetString("DATABASE_PATH"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("REDIS_ADDR"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		SessionTTL:   v.GetDuration("SESSION_TTL"),
		EditPageSize: v.GetInt("EDIT_PAGE_SIZE"),
		HealthAddr:   v.GetString("HEALTH_ADDR"),
		ChartFont:    v.GetString("CHART_FONT"),
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
