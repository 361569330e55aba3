package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sentra/backend/internal/api"
	"sentra/backend/internal/api/handler"
	"sentra/backend/internal/auth"
	"sentra/backend/internal/awareness"
	"sentra/backend/internal/config"
	"sentra/backend/internal/incident"
	"sentra/backend/internal/live"
	"sentra/backend/internal/logger"
	"sentra/backend/internal/models"
	"sentra/backend/internal/notify"
	"sentra/backend/internal/storage"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupDependencies(ctx context.Context, cfg *config.AppConfig, lg *zap.Logger) (*gorm.DB, *redis.Client, error) {
	db, err := gorm.Open(postgres.Open(cfg.Database.DSN), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, nil, fmt.Errorf("connect postgres: %w", err)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, nil, fmt.Errorf("connect redis: %w", err)
	}

	if err := storage.Migrate(db); err != nil {
		return nil, nil, fmt.Errorf("run migrations: %w", err)
	}

	lg.Info("database and redis connections established, migrations complete")
	return db, rdb, nil
}

func newNotifier(cfg config.TelegramConfig, lg *zap.Logger) (incident.Notifier, error) {
	if cfg.BotToken == "" {
		lg.Info("telegram notifier disabled")
		return notify.Nop{}, nil
	}
	bot, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("start telegram bot: %w", err)
	}
	lg.Info("telegram notifier enabled", zap.String("bot", bot.Self.UserName), zap.Int64("chat_id", cfg.ChatID))
	return notify.NewTelegram(bot, cfg.ChatID, models.Priority(cfg.MinPriority), lg.Named("notify")), nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	lg, err := logger.New(cfg.Log.Level, cfg.Log.Format, "sentra-api")
	if err != nil {
		log.Fatalf("build logger: %v", err)
	}
	defer lg.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, rdb, err := setupDependencies(ctx, cfg, lg)
	if err != nil {
		lg.Fatal("startup failed", zap.Error(err))
	}
	defer rdb.Close()

	s := storage.NewStorageService(db, rdb, cfg.Redis.EventsChannel)

	notifier, err := newNotifier(cfg.Telegram, lg)
	if err != nil {
		lg.Fatal("startup failed", zap.Error(err))
	}

	tokens := auth.NewTokens(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.TokenTTL)
	authSvc := auth.NewService(s, tokens, cfg.Auth.BcryptCost, lg.Named("auth"))
	incidentSvc := incident.NewService(s, notifier, lg.Named("incident"))
	awarenessSvc := awareness.NewService(s, lg.Named("awareness"))

	hub := live.NewHub(lg.Named("live"))
	go hub.Run(ctx)
	go hub.Listen(ctx, s)

	h := handler.NewHandler(handler.Deps{
		Auth:           authSvc,
		Incidents:      incidentSvc,
		Awareness:      awarenessSvc,
		Staff:          s,
		Health:         s,
		Hub:            hub,
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
		Log:            lg.Named("http"),
	})
	r := api.NewRouter(h, authSvc, cfg.HTTP, lg.Named("http"))

	server := &http.Server{
		Addr:           cfg.HTTP.ListenAddr,
		Handler:        r,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		lg.Info("http server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			lg.Error("http server failed", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	lg.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		lg.Error("graceful shutdown failed", zap.Error(err))
	}
}
