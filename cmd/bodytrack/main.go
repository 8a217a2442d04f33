package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	adapthttp "bodytrack/internal/adapter/http"
	"bodytrack/internal/adapter/memory"
	"bodytrack/internal/adapter/redis"
	"bodytrack/internal/adapter/render"
	"bodytrack/internal/adapter/sqlstore"
	"bodytrack/internal/adapter/telegram"
	"bodytrack/internal/app"
	"bodytrack/internal/config"
	"bodytrack/internal/domain"
	"bodytrack/internal/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	db, err := sqlstore.Open(cfg.Database.Driver, cfg.Database.DSN())
	if err != nil {
		log.Fatal("failed to open database", "driver", cfg.Database.Driver, "error", err)
	}
	defer func() { _ = db.Close() }()

	var sessions domain.SessionStore
	if cfg.Redis.Addr != "" {
		client, err := redis.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Fatal("failed to connect to redis", "addr", cfg.Redis.Addr, "error", err)
		}
		defer func() { _ = client.Close() }()
		sessions = redis.NewSessionStore(client, cfg.SessionTTL, log)
	} else {
		sessions = memory.NewSessionStore(cfg.SessionTTL)
	}

	renderer, err := render.New(cfg.ChartFont)
	if err != nil {
		log.Fatal("failed to load chart font", "path", cfg.ChartFont, "error", err)
	}

	entrySvc := app.NewEntryService(db)
	profileSvc := app.NewProfileService(db)
	statsSvc := app.NewStatsService(db, db, renderer)
	dialog := app.NewDialog(entrySvc, profileSvc, statsSvc, sessions, log, cfg.EditPageSize)

	bot, err := telegram.New(cfg.BotToken, cfg.PollTimeout, dialog, log)
	if err != nil {
		log.Fatal("failed to create bot", "error", err)
	}

	var srv *http.Server
	if cfg.HealthAddr != "" {
		srv = &http.Server{
			Addr:              cfg.HealthAddr,
			Handler:           adapthttp.New(db, log).Handler(),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			log.Info("health endpoint listening", "addr", cfg.HealthAddr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("health server stopped", "error", err)
			}
		}()
	}

	go bot.Start()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Info("shutting down")

	bot.Stop()
	if srv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Warn("health server shutdown", "error", err)
		}
	}
}
