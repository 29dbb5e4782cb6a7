package postgres_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tixeats/walletsettle/internal/adapter/repository/postgres"
	"github.com/tixeats/walletsettle/internal/domain"
	"github.com/tixeats/walletsettle/internal/infrastructure/metrics"
	infrapg "github.com/tixeats/walletsettle/internal/infrastructure/postgres"
	"github.com/tixeats/walletsettle/internal/usecase"
)

// These tests need a disposable database in DATABASE_URL.
func newIntegrationPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping integration test")
	}
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Skip("DATABASE_URL not set")
	}

	require.NoError(t, infrapg.RunMigrations(dbURL, "../../../infrastructure/postgres/migrations", zerolog.Nop()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := infrapg.NewPool(ctx, dbURL, 20, 2)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	_, err = pool.Exec(ctx, `
		TRUNCATE TABLE transaction_records, idempotency_markers, outbox_events, wallets CASCADE;
		TRUNCATE TABLE users, orders, order_items, biz_withdrawal_details;
	`)
	require.NoError(t, err)

	return pool
}

type integrationStack struct {
	pool    *pgxpool.Pool
	txMgr   *postgres.TxManager
	wallets *postgres.WalletRepository
	records *postgres.TransactionRecordRepository
	engine  *usecase.TransferEngine
}

func newIntegrationStack(t *testing.T) *integrationStack {
	pool := newIntegrationPool(t)

	s := &integrationStack{
		pool:    pool,
		txMgr:   postgres.NewTxManager(pool),
		wallets: postgres.NewWalletRepository(pool),
		records: postgres.NewTransactionRecordRepository(pool),
	}
	guard := usecase.NewIdempotencyGuard(postgres.NewMarkerRepository(pool), 30*time.Second, zerolog.Nop())
	s.engine = usecase.NewTransferEngine(
		s.txMgr,
		s.wallets,
		s.records,
		postgres.NewOutboxRepository(pool),
		guard,
		postgres.NewRetrier(zerolog.Nop()),
		postgres.NewULIDGenerator(),
		metrics.New(prometheus.NewRegistry()),
		zerolog.Nop(),
		10*time.Second,
	)

	return s
}

func (s *integrationStack) createWallet(t *testing.T, kind domain.OwnerKind, ownerID string, balance domain.Money) {
	t.Helper()
	ctx := context.Background()

	now := time.Now().UTC()
	tx, err := s.txMgr.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, s.wallets.Create(ctx, tx, &domain.Wallet{
		ID:             postgres.NewULIDGenerator().Generate(),
		OwnerKind:      kind,
		OwnerID:        ownerID,
		Balance:        balance,
		OpeningBalance: balance,
		Active:         true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}))
	require.NoError(t, tx.Commit(ctx))
}

func (s *integrationStack) balance(t *testing.T, kind domain.OwnerKind, ownerID string) domain.Money {
	t.Helper()
	w, err := s.wallets.GetByOwner(context.Background(), domain.WalletRef{OwnerKind: kind, OwnerID: ownerID})
	require.NoError(t, err)
	return w.Balance
}

func TestIntegration_ConcurrentChargesNoLostUpdate(t *testing.T) {
	s := newIntegrationStack(t)
	s.createWallet(t, domain.OwnerCustomer, "u1", 0)

	const workers = 10
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		applied int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			intent := domain.NewGatewayCharge(domain.EventChargeSuccess, fmt.Sprintf("ref-%d", i), "u1", 100)
			if _, err := s.engine.Apply(context.Background(), intent); err == nil {
				mu.Lock()
				applied++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()

	require.Positive(t, applied)
	assert.Equal(t, domain.Money(applied*100), s.balance(t, domain.OwnerCustomer, "u1"))

	w, err := s.wallets.GetByOwner(context.Background(), domain.WalletRef{OwnerKind: domain.OwnerCustomer, OwnerID: "u1"})
	require.NoError(t, err)
	sum, err := s.records.SumByWallet(context.Background(), w.ID)
	require.NoError(t, err)
	assert.Equal(t, w.Balance, sum)
}

func TestIntegration_DuplicateDeliveryAppliesOnce(t *testing.T) {
	s := newIntegrationStack(t)
	s.createWallet(t, domain.OwnerCustomer, "u1", 0)

	const deliveries = 10
	var wg sync.WaitGroup
	errs := make([]error, deliveries)
	for i := 0; i < deliveries; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			intent := domain.NewGatewayCharge(domain.EventChargeSuccess, "ref-dup", "u1", 5000)
			_, errs[i] = s.engine.Apply(context.Background(), intent)
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			assert.True(t, errors.Is(err, domain.ErrConcurrentDuplicate), "unexpected error: %v", err)
		}
	}

	// A later redelivery is answered from the stored records
	result, err := s.engine.Apply(context.Background(), domain.NewGatewayCharge(domain.EventChargeSuccess, "ref-dup", "u1", 5000))
	require.NoError(t, err)
	assert.True(t, result.Replayed)

	assert.Equal(t, domain.Money(5000), s.balance(t, domain.OwnerCustomer, "u1"))
	records, err := s.records.GetByCorrelation(context.Background(), domain.EventChargeSuccess, "ref-dup")
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestIntegration_OrderSettlementThroughPartyDirectory(t *testing.T) {
	s := newIntegrationStack(t)
	ctx := context.Background()

	s.createWallet(t, domain.OwnerCustomer, "u1", 20000)
	s.createWallet(t, domain.OwnerBusiness, "b1", 0)
	s.createWallet(t, domain.OwnerPlatform, "tixeats", 0)

	_, err := s.pool.Exec(ctx, `INSERT INTO orders (order_id, user_id, business_id, order_status, total) VALUES ('order-1', 'u1', 'b1', 'completed', 10000)`)
	require.NoError(t, err)

	router := usecase.NewEventRouter(postgres.NewPartyRepository(s.pool), usecase.RouterConfig{
		FeeRate:         decimal.RequireFromString("0.015"),
		PlatformOwnerID: "tixeats",
	})
	intent, err := router.Route(ctx, &domain.Envelope{
		Event: domain.EventOrderTrigger,
		Order: &domain.OrderTrigger{OrderID: "order-1", OrderStatus: domain.OrderStatusCompleted},
	})
	require.NoError(t, err)

	_, err = s.engine.Apply(ctx, intent)
	require.NoError(t, err)

	assert.Equal(t, domain.Money(9850), s.balance(t, domain.OwnerCustomer, "u1"))
	assert.Equal(t, domain.Money(10000), s.balance(t, domain.OwnerBusiness, "b1"))
	assert.Equal(t, domain.Money(150), s.balance(t, domain.OwnerPlatform, "tixeats"))

	total, expected, err := postgres.NewLedgerRepository(s.pool).CheckConsistency(ctx)
	require.NoError(t, err)
	assert.Equal(t, expected, total)
}
