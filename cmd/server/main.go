package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	httpAdapter "github.com/tixeats/walletsettle/internal/adapter/http"
	"github.com/tixeats/walletsettle/internal/adapter/http/handler"
	"github.com/tixeats/walletsettle/internal/adapter/http/middleware"
	postgresRepo "github.com/tixeats/walletsettle/internal/adapter/repository/postgres"
	redisRepo "github.com/tixeats/walletsettle/internal/adapter/repository/redis"
	"github.com/tixeats/walletsettle/internal/infrastructure/config"
	"github.com/tixeats/walletsettle/internal/infrastructure/eventpublisher"
	"github.com/tixeats/walletsettle/internal/infrastructure/logger"
	"github.com/tixeats/walletsettle/internal/infrastructure/metrics"
	"github.com/tixeats/walletsettle/internal/infrastructure/postgres"
	"github.com/tixeats/walletsettle/internal/infrastructure/redis"
	"github.com/tixeats/walletsettle/internal/usecase"
)

const limiterIdle = time.Hour

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, appLogger); err != nil {
		appLogger.Fatal().Err(err).Msg("server failed")
	}
}

func run(ctx context.Context, cfg *config.Config, logger zerolog.Logger) error {
	pool, err := postgres.NewPoolWithConfig(ctx, postgres.PoolConfig{
		DatabaseURL:    cfg.DatabaseURL,
		MaxConns:       cfg.DatabaseMaxConns,
		MinConns:       cfg.DatabaseMinConns,
		ConnectTimeout: cfg.DatabaseTimeout,
	})
	if err != nil {
		return fmt.Errorf("connect to postgres: %w", err)
	}
	defer pool.Close()
	logger.Info().Msg("connected to postgres")

	var redisClient *goredis.Client
	if cfg.RedisURL != "" {
		redisClient, err = redis.NewClient(ctx, cfg.RedisURL, logger)
		if err != nil {
			return fmt.Errorf("connect to redis: %w", err)
		}
		defer redisClient.Close()
	}

	publisher, err := newPublisher(cfg, logger)
	if err != nil {
		return fmt.Errorf("create event publisher: %w", err)
	}
	defer publisher.Close()

	m := metrics.New(prometheus.DefaultRegisterer)
	a := newApp(cfg, pool, redisClient, publisher, m, logger)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      a.router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	var wg sync.WaitGroup
	a.startWorkers(ctx, &wg)

	serverErr := make(chan error, 1)
	go func() {
		logger.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	wg.Wait()

	logger.Info().Msg("server stopped")
	return nil
}

type closablePublisher interface {
	eventpublisher.Publisher
	Close() error
}

type logPublisher struct {
	*eventpublisher.LogPublisher
}

func (logPublisher) Close() error { return nil }

// newPublisher publishes to RabbitMQ when configured and logs events otherwise.
func newPublisher(cfg *config.Config, logger zerolog.Logger) (closablePublisher, error) {
	if cfg.RabbitMQURL == "" {
		logger.Warn().Msg("RABBITMQ_URL not set, outbox events are logged only")
		return logPublisher{eventpublisher.NewLogPublisher(logger)}, nil
	}

	publisher, err := eventpublisher.NewAMQPPublisher(cfg.RabbitMQURL, cfg.RabbitMQExchange)
	if err != nil {
		return nil, err
	}
	logger.Info().Str("exchange", cfg.RabbitMQExchange).Msg("publishing outbox events to rabbitmq")
	return publisher, nil
}

// newMarkerStore selects the idempotency marker backend.
func newMarkerStore(cfg *config.Config, pool *pgxpool.Pool, redisClient *goredis.Client, m *metrics.Metrics) usecase.MarkerStore {
	if cfg.IdempotencyBackend == config.BackendRedis && redisClient != nil {
		return redisRepo.NewMarkerStore(redisClient, cfg.IdempotencyRetention, m)
	}
	return postgresRepo.NewMarkerRepository(pool)
}

type app struct {
	router      http.Handler
	publisher   *eventpublisher.EventPublisher
	maintenance *usecase.MaintenanceWorker
	limiter     *middleware.RateLimiter
	logger      zerolog.Logger
}

func newApp(
	cfg *config.Config,
	pool *pgxpool.Pool,
	redisClient *goredis.Client,
	publisher eventpublisher.Publisher,
	m *metrics.Metrics,
	logger zerolog.Logger,
) *app {
	// Repositories
	txManager := postgresRepo.NewTxManager(pool)
	walletRepo := postgresRepo.NewWalletRepository(pool)
	recordRepo := postgresRepo.NewTransactionRecordRepository(pool)
	outboxRepo := postgresRepo.NewOutboxRepository(pool)
	ledgerRepo := postgresRepo.NewLedgerRepository(pool)
	itemRepo := postgresRepo.NewOrderItemRepository(pool)
	idGen := postgresRepo.NewULIDGenerator()

	var parties usecase.PartyDirectory = postgresRepo.NewPartyRepository(pool)
	if redisClient != nil {
		parties = usecase.NewCachedPartyDirectory(parties, redisRepo.NewCache(redisClient, m), cfg.PartyCacheTTL, logger)
	}

	// Use cases
	guard := usecase.NewIdempotencyGuard(newMarkerStore(cfg, pool, redisClient, m), cfg.IdempotencyLease, logger)
	engine := usecase.NewTransferEngine(
		txManager,
		walletRepo,
		recordRepo,
		outboxRepo,
		guard,
		postgresRepo.NewRetrier(logger),
		idGen,
		m,
		logger,
		cfg.TransferTimeout,
	)
	eventRouter := usecase.NewEventRouter(parties, usecase.RouterConfig{
		FeeRate:         cfg.PlatformFeeRate,
		PlatformOwnerID: cfg.PlatformOwnerID,
		SubunitDivisor:  cfg.GatewaySubunitDivisor,
	})
	webhookUC := usecase.NewWebhookUseCase(eventRouter, engine, m, logger)
	priceSyncUC := usecase.NewPriceSyncUseCase(itemRepo, logger)
	walletUC := usecase.NewWalletUseCase(txManager, walletRepo, recordRepo, outboxRepo, idGen, m, logger)
	reconciliationUC := usecase.NewReconciliationUseCase(walletRepo, recordRepo, ledgerRepo)

	// HTTP
	var redisPinger handler.Pinger
	if redisClient != nil {
		redisPinger = handler.PingerFunc(func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		})
	}
	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, m)

	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		WebhookHandler:        handler.NewWebhookHandler(webhookUC, priceSyncUC, logger),
		WalletHandler:         handler.NewWalletHandler(walletUC),
		ReconciliationHandler: handler.NewReconciliationHandler(reconciliationUC),
		HealthHandler:         handler.NewHealthHandler(pool, redisPinger),
		RateLimiter:           limiter,
		Metrics:               m,
		MetricsHandler:        promhttp.Handler(),
		Logger:                logger,
	})

	return &app{
		router: router,
		publisher: eventpublisher.NewEventPublisher(eventpublisher.Config{
			OutboxRepo: outboxRepo,
			Publisher:  publisher,
			Metrics:    m,
			Logger:     logger,
			BatchSize:  cfg.OutboxBatchSize,
			Interval:   cfg.OutboxInterval,
		}),
		maintenance: usecase.NewMaintenanceWorker(usecase.MaintenanceConfig{
			Guard:           guard,
			OutboxRepo:      outboxRepo,
			Metrics:         m,
			Logger:          logger,
			MarkerRetention: cfg.IdempotencyRetention,
			OutboxRetention: cfg.OutboxRetention,
		}),
		limiter: limiter,
		logger:  logger,
	}
}

// startWorkers runs the background loops until ctx is cancelled.
func (a *app) startWorkers(ctx context.Context, wg *sync.WaitGroup) {
	a.runWorker(ctx, wg, "event publisher", a.publisher.Start)
	a.runWorker(ctx, wg, "maintenance worker", a.maintenance.Start)
	a.runWorker(ctx, wg, "rate limiter cleanup", a.cleanupLimiters)
}

func (a *app) runWorker(ctx context.Context, wg *sync.WaitGroup, name string, start func(context.Context) error) {
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			a.logger.Error().Err(err).Str("worker", name).Msg("worker stopped")
		}
	}()
}

func (a *app) cleanupLimiters(ctx context.Context) error {
	ticker := time.NewTicker(limiterIdle)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if removed := a.limiter.CleanupLimiters(limiterIdle); removed > 0 {
				a.logger.Debug().Int("removed", removed).Msg("idle rate limiters removed")
			}
		}
	}
}
