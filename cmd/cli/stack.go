package main

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	goredis "github.com/redis/go-redis/v9"

	postgresRepo "github.com/tixeats/walletsettle/internal/adapter/repository/postgres"
	redisRepo "github.com/tixeats/walletsettle/internal/adapter/repository/redis"
	"github.com/tixeats/walletsettle/internal/infrastructure/config"
	"github.com/tixeats/walletsettle/internal/infrastructure/metrics"
	"github.com/tixeats/walletsettle/internal/infrastructure/postgres"
	"github.com/tixeats/walletsettle/internal/infrastructure/redis"
	"github.com/tixeats/walletsettle/internal/usecase"
)

// stack is the subset of the server wiring the commands need.
type stack struct {
	webhooks       *usecase.WebhookUseCase
	reconciliation *usecase.ReconciliationUseCase
	maintenance    *usecase.MaintenanceWorker
	close          func()
}

func (c *cli) openStack(ctx context.Context) (*stack, error) {
	cfg := c.cfg

	pool, err := postgres.NewPoolWithConfig(ctx, postgres.PoolConfig{
		DatabaseURL:    cfg.DatabaseURL,
		MaxConns:       4,
		ConnectTimeout: cfg.DatabaseTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	var redisClient *goredis.Client
	if cfg.IdempotencyBackend == config.BackendRedis {
		redisClient, err = redis.NewClient(ctx, cfg.RedisURL, c.logger)
		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
	}

	// Commands are short lived; nothing scrapes their metrics.
	m := metrics.New(prometheus.NewRegistry())

	var markers usecase.MarkerStore = postgresRepo.NewMarkerRepository(pool)
	if redisClient != nil {
		markers = redisRepo.NewMarkerStore(redisClient, cfg.IdempotencyRetention, m)
	}

	txManager := postgresRepo.NewTxManager(pool)
	walletRepo := postgresRepo.NewWalletRepository(pool)
	recordRepo := postgresRepo.NewTransactionRecordRepository(pool)
	outboxRepo := postgresRepo.NewOutboxRepository(pool)

	guard := usecase.NewIdempotencyGuard(markers, cfg.IdempotencyLease, c.logger)
	engine := usecase.NewTransferEngine(
		txManager,
		walletRepo,
		recordRepo,
		outboxRepo,
		guard,
		postgresRepo.NewRetrier(c.logger),
		postgresRepo.NewULIDGenerator(),
		m,
		c.logger,
		cfg.TransferTimeout,
	)
	router := usecase.NewEventRouter(postgresRepo.NewPartyRepository(pool), usecase.RouterConfig{
		FeeRate:         cfg.PlatformFeeRate,
		PlatformOwnerID: cfg.PlatformOwnerID,
		SubunitDivisor:  cfg.GatewaySubunitDivisor,
	})

	return &stack{
		webhooks:       usecase.NewWebhookUseCase(router, engine, m, c.logger),
		reconciliation: usecase.NewReconciliationUseCase(walletRepo, recordRepo, postgresRepo.NewLedgerRepository(pool)),
		maintenance: usecase.NewMaintenanceWorker(usecase.MaintenanceConfig{
			Guard:           guard,
			OutboxRepo:      outboxRepo,
			Metrics:         m,
			Logger:          c.logger,
			MarkerRetention: cfg.IdempotencyRetention,
			OutboxRetention: cfg.OutboxRetention,
		}),
		close: func() {
			if redisClient != nil {
				redisClient.Close()
			}
			pool.Close()
		},
	}, nil
}
