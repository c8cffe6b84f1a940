package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	httpAdapter "github.com/finwell/cashplan/internal/adapter/http"
	"github.com/finwell/cashplan/internal/adapter/http/handler"
	postgresRepo "github.com/finwell/cashplan/internal/adapter/repository/postgres"
	redisRepo "github.com/finwell/cashplan/internal/adapter/repository/redis"
	"github.com/finwell/cashplan/internal/infrastructure/config"
	"github.com/finwell/cashplan/internal/infrastructure/logger"
	"github.com/finwell/cashplan/internal/infrastructure/metrics"
	"github.com/finwell/cashplan/internal/infrastructure/postgres"
	"github.com/finwell/cashplan/internal/infrastructure/redis"
	"github.com/finwell/cashplan/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})
	log.Logger = appLogger

	ctx := context.Background()

	appMetrics := metrics.New()

	pool, err := postgres.NewPool(ctx, postgres.PoolConfig{
		URL:      cfg.DatabaseURL,
		MaxConns: cfg.DatabaseMaxConns,
		MinConns: cfg.DatabaseMinConns,
		Metrics:  appMetrics,
	})
	if err != nil {
		appLogger.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer pool.Close()
	appLogger.Info().Msg("connected to postgres")

	if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath); err != nil {
		appLogger.Fatal().Err(err).Msg("failed to run migrations")
	}

	// Redis only backs the projection cache; the service runs without it.
	var cache usecase.Cache
	redisClient, err := redis.NewClient(ctx, cfg.RedisURL)
	switch {
	case err != nil:
		appLogger.Warn().Err(err).Msg("redis unavailable, projection cache disabled")
		redisClient = nil
	case redisClient == nil:
		appLogger.Info().Msg("redis not configured, projection cache disabled")
	default:
		defer redisClient.Close()
		cache = redisRepo.NewCache(redisClient)
		appLogger.Info().Msg("connected to redis")
	}

	txManager := postgresRepo.NewTxManager(pool)
	accountRepo := postgresRepo.NewAccountRepository(pool)
	transactionRepo := postgresRepo.NewTransactionRepository(pool)
	scheduleRepo := postgresRepo.NewScheduleRepository(pool)
	modificationRepo := postgresRepo.NewModificationRepository(pool)
	idGen := postgresRepo.NewULIDGenerator()

	transactions := usecase.NewTransactionsService(
		txManager, accountRepo, transactionRepo, scheduleRepo, nil, idGen, appLogger).
		WithRetrier(postgresRepo.NewRetrier(appLogger)).
		WithMetrics(appMetrics)
	accounts := usecase.NewAccountsService(
		txManager, accountRepo, transactionRepo, idGen, appLogger)
	schedules := usecase.NewScheduleService(
		txManager, scheduleRepo, modificationRepo, transactions, nil, idGen, appLogger).
		WithMetrics(appMetrics)
	integrity := usecase.NewAccountsIntegrityService(
		txManager, accountRepo, transactionRepo, transactions, appLogger).
		WithMetrics(appMetrics)
	projections := usecase.NewProjectionService(
		scheduleRepo, modificationRepo, accountRepo, cache, appLogger)
	projections.SetCacheTTL(cfg.ProjectionCacheTTL)
	schedules.AttachProjections(projections)

	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		AccountHandler:     handler.NewAccountHandler(accounts, transactions),
		TransactionHandler: handler.NewTransactionHandler(transactions),
		ScheduleHandler:    handler.NewScheduleHandler(schedules, cfg.UpcomingHorizon),
		CategoryHandler:    handler.NewCategoryHandler(transactions),
		IntegrityHandler:   handler.NewIntegrityHandler(integrity),
		ProjectionHandler:  handler.NewProjectionHandler(projections),
		HealthHandler:      handler.NewHealthHandler(pool, redisClient),
		Logger:             appLogger,
		Metrics:            appMetrics,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	go func() {
		appLogger.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		appLogger.Fatal().Err(err).Msg("server forced to shutdown")
	}

	appLogger.Info().Msg("server stopped")
}
