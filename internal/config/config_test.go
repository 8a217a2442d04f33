package config_test

import (
	"testing"
	"time"

	"bodytrack/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("BOT_TOKEN", "123:abc")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Database.Driver != config.DriverSQLite {
		t.Errorf("expected sqlite driver, got %q", cfg.Database.Driver)
	}
	if cfg.Database.DSN() != "./data/bodytrack.db" {
		t.Errorf("unexpected dsn %q", cfg.Database.DSN())
	}
	if cfg.SessionTTL != 24*time.Hour {
		t.Errorf("expected 24h ttl, got %v", cfg.SessionTTL)
	}
	if cfg.EditPageSize != 5 {
		t.Errorf("expected page size 5, got %d", cfg.EditPageSize)
	}
	if cfg.PollTimeout != 10*time.Second {
		t.Errorf("expected 10s poll timeout, got %v", cfg.PollTimeout)
	}
	if cfg.HealthAddr != ":8080" {
		t.Errorf("expected :8080, got %q", cfg.HealthAddr)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("BOT_TOKEN", "123:abc")
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DATABASE_URL", "postgres://u:p@localhost/body?sslmode=disable")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("SESSION_TTL", "30m")
	t.Setenv("EDIT_PAGE_SIZE", "3")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Database.DSN() != "postgres://u:p@localhost/body?sslmode=disable" {
		t.Errorf("unexpected dsn %q", cfg.Database.DSN())
	}
	if cfg.Redis.Addr != "localhost:6379" || cfg.Redis.DB != 2 {
		t.Errorf("unexpected redis config %+v", cfg.Redis)
	}
	if cfg.SessionTTL != 30*time.Minute || cfg.EditPageSize != 3 {
		t.Errorf("unexpected ttl/page size: %v / %d", cfg.SessionTTL, cfg.EditPageSize)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"missing token", map[string]string{"BOT_TOKEN": ""}},
		{"unknown driver", map[string]string{"BOT_TOKEN": "x", "DB_DRIVER": "mysql"}},
		{"postgres without url", map[string]string{"BOT_TOKEN": "x", "DB_DRIVER": "postgres", "DATABASE_URL": ""}},
		{"zero page size", map[string]string{"BOT_TOKEN": "x", "EDIT_PAGE_SIZE": "0"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			if _, err := config.Load(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}
