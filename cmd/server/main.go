package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tour-service/internal/application/services"
	"tour-service/internal/config"
	"tour-service/internal/db"
	"tour-service/internal/delivery/handler"
	"tour-service/internal/infrastructure"
	"tour-service/internal/infrastructure/db/mongodb"
	"tour-service/internal/messaging"
	"tour-service/internal/observability"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		observability.InitLogger("tour-service", config.EnvDevelopment)
		observability.GetLogger().Fatal().Err(err).Msg("failed to load config")
	}

	observability.InitLogger("tour-service", cfg.Env)
	logger := *observability.GetLogger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := db.Connect(ctx, cfg.Mongo, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to MongoDB")
	}
	database := client.Database(cfg.Mongo.Database)
	if err := db.EnsureIndexes(ctx, database); err != nil {
		logger.Fatal().Err(err).Msg("failed to create indexes")
	}

	cache := infrastructure.NewRedisService(ctx, cfg.Redis, logger)

	events, closeEvents, err := messaging.ConnectNats(cfg.NatsURL, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to NATS")
	}

	mailer, err := infrastructure.NewMailer(cfg.Mail, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to set up mailer")
	}

	tokens := infrastructure.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpiresIn)
	limiter := infrastructure.NewRateLimiter(cfg.RateLimit.Window, cfg.RateLimit.MaxRequests)
	limiter.StartCleanup(ctx, cfg.RateLimit.Window)

	userRepo := mongodb.NewUserRepository(database)
	tourRepo := mongodb.NewTourRepository(database)
	reviewRepo := mongodb.NewReviewRepository(database)
	ledger := mongodb.NewRatingLedger(database, logger)

	authService := services.NewAuthService(userRepo, tokens, mailer, limiter, logger)
	userService := services.NewUserService(userRepo, reviewRepo, ledger, cache, events, logger)
	tourService := services.NewTourService(tourRepo, reviewRepo, cache, cfg.Redis.CacheTTL, logger)
	reviewService := services.NewReviewService(reviewRepo, tourRepo, ledger, cache, events, logger)

	h := handler.NewHandler(authService, userService, tourService, reviewService, logger).WithAppURL(cfg.AppURL)
	e := handler.NewRouter(h, handler.RouterConfig{
		Development: cfg.IsDevelopment(),
		APIRate:     cfg.RateLimit.APIRate,
		APIBurst:    cfg.RateLimit.APIBurst,
	}, logger)

	go func() {
		logger.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("server started")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("server shutdown failed")
	}

	closeEvents()
	if err := cache.Close(); err != nil {
		logger.Error().Err(err).Msg("failed to close redis")
	}
	if err := client.Disconnect(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to disconnect MongoDB")
	}
	logger.Info().Msg("server stopped")
}
