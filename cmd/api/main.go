package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"photoselect/internal/cache"
	"photoselect/internal/config"
	"photoselect/internal/database"
	"photoselect/internal/handlers"
	"photoselect/internal/jobs"
	"photoselect/internal/log"
	"photoselect/internal/ratelimit"
	"photoselect/internal/realtime"
	"photoselect/internal/repository"
	"photoselect/internal/security"
	"photoselect/internal/server"
	"photoselect/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := log.New(cfg.Environment)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dbPool, err := database.NewPostgresPool(ctx, cfg.Postgres)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect postgres")
	}

	redisClient, err := cache.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect redis")
	}

	objectStore, err := storage.New(cfg.Storage)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to init object store")
	}
	if minioStore, ok := objectStore.(*storage.MinioStore); ok {
		if err := minioStore.EnsureBucket(ctx); err != nil {
			logger.Warn().Err(err).Msg("ensure bucket failed")
		}
	}

	csrfStore := security.NewCSRFStore(cfg.Security.CSRFTokenTTL)
	tracker := security.NewSessionTracker(security.TrackerConfig{
		IdleTimeout:      cfg.Security.IdleTimeout,
		ReauthWindow:     cfg.Security.ReauthWindow,
		LockoutThreshold: cfg.Security.LockoutThreshold,
		LockoutDuration:  cfg.Security.LockoutDuration,
	})
	limiter := ratelimit.New(ratelimit.FromConfig(cfg.RateLimit))

	hub := realtime.NewHub(repository.NewSelectionRepository(dbPool), logger)
	go hub.Run(ctx)

	handlerSet := handlers.NewHandlerSet(logger, dbPool, redisClient, objectStore, hub, csrfStore, tracker, limiter, cfg)
	httpServer := server.NewHTTPServer(cfg, logger, handlerSet)

	scheduler := jobs.NewScheduler(repository.NewInvitationRepository(dbPool), csrfStore, tracker, limiter, logger)
	if err := scheduler.Start(); err != nil {
		logger.Error().Err(err).Msg("scheduler start failed")
	}

	go func() {
		if err := httpServer.Start(); err != nil {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	waitForShutdown(ctx, logger, httpServer, scheduler, dbPool, redisClient)
}

func waitForShutdown(ctx context.Context, logger zerolog.Logger, srv *server.HTTPServer, scheduler *jobs.Scheduler, db *pgxpool.Pool, redisClient *redis.Client) {
	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}

	scheduler.Stop()

	db.Close()
	if err := redisClient.Close(); err != nil {
		logger.Error().Err(err).Msg("redis close error")
	}

	logger.Info().Msg("server exited cleanly")
}
