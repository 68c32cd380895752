// @title           DailySkills Marketplace API
// @version         1.0
// @description     Accounts, job postings and chat for the DailySkills daily-wage marketplace.
// @BasePath        /
//
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
// @description                 Type "Bearer" followed by a space and the JWT.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/dailyskills/marketplace/internal/api"
	"github.com/dailyskills/marketplace/internal/api/metrics"
	"github.com/dailyskills/marketplace/internal/core/service"
	mongodb "github.com/dailyskills/marketplace/internal/infrastructure/db/mongo"
	redisdb "github.com/dailyskills/marketplace/internal/infrastructure/db/redis"
	"github.com/dailyskills/marketplace/internal/infrastructure/http/handlers"
	"github.com/dailyskills/marketplace/internal/infrastructure/queue"
	"github.com/dailyskills/marketplace/internal/pkg/config"
	"github.com/dailyskills/marketplace/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		bootLog := logger.New(logger.Options{Output: os.Stderr})
		bootLog.Fatal().Err(err).Msg("failed to load config")
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.Production(),
		Service: "dailyskills-api",
	})

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		return err
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = mongoClient.Disconnect(disconnectCtx)
	}()

	rdb, err := redisdb.Connect(ctx, redisdb.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
	if err != nil {
		return err
	}
	defer rdb.Close()

	// --- Repositories ---
	accounts := mongodb.NewAccountRepository(db)
	jobs := mongodb.NewJobRepository(db)
	messages := mongodb.NewMessageRepository(db)
	if err := mongodb.EnsureIndexes(ctx, accounts, jobs, messages); err != nil {
		return err
	}

	// --- Change feed ---
	feed := redisdb.NewChangeFeed(rdb, log)
	dispatcher := queue.NewDispatcher(cfg.Workers, log, queue.WithDepthGauge(metrics.ChangeQueueDepth))
	dispatcher.Start(ctx)
	go func() {
		if err := dispatcher.Run(ctx, feed, service.MessagesTable); err != nil {
			log.Error().Err(err).Msg("change feed stopped")
		}
	}()

	// --- Services ---
	tokens := service.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL)
	authService := service.NewAuthService(accounts, tokens, redisdb.NewRevocationList(rdb), log)
	jobService := service.NewJobService(jobs, feed, log)
	messagingService := service.NewMessagingService(messages, feed, dispatcher, log)

	e := api.NewRouter(api.Dependencies{
		Auth:     authService,
		Jobs:     jobService,
		Messages: messagingService,
		Checks: map[string]handlers.Check{
			"mongo": func(ctx context.Context) error { return mongodb.Ping(ctx, db) },
			"redis": func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
		},
		Log: log,
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("server starting")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
