package usecase_test

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/tixeats/walletsettle/internal/domain"
	"github.com/tixeats/walletsettle/internal/infrastructure/metrics"
	"github.com/tixeats/walletsettle/internal/usecase"
	"github.com/tixeats/walletsettle/internal/usecase/mocks"
)

const testLease = time.Minute

type engineFixture struct {
	ledger  *mocks.InMemoryLedger
	txMgr   *mocks.InMemoryTransactionManager
	wallets *mocks.InMemoryWalletRepository
	records *mocks.InMemoryRecordRepository
	outbox  *mocks.InMemoryOutboxRepository
	markers *mocks.InMemoryMarkerStore
	parties *mocks.InMemoryPartyDirectory
	retrier *mocks.Retrier
	metrics *metrics.Metrics
	guard   *usecase.IdempotencyGuard
	engine  *usecase.TransferEngine
	router  *usecase.EventRouter
}

func newEngineFixture(t *testing.T) *engineFixture {
	t.Helper()

	ledger := mocks.NewInMemoryLedger()
	f := &engineFixture{
		ledger:  ledger,
		txMgr:   mocks.NewInMemoryTransactionManager(ledger),
		wallets: mocks.NewInMemoryWalletRepository(ledger),
		records: mocks.NewInMemoryRecordRepository(ledger),
		outbox:  mocks.NewInMemoryOutboxRepository(ledger),
		markers: mocks.NewInMemoryMarkerStore(),
		parties: mocks.NewInMemoryPartyDirectory(),
		retrier: mocks.NewRetrier(3),
		metrics: metrics.New(prometheus.NewRegistry()),
	}

	f.guard = usecase.NewIdempotencyGuard(f.markers, testLease, zerolog.Nop())
	f.engine = usecase.NewTransferEngine(
		f.txMgr,
		f.wallets,
		f.records,
		f.outbox,
		f.guard,
		f.retrier,
		mocks.NewIDGenerator(),
		f.metrics,
		zerolog.Nop(),
		5*time.Second,
	)
	f.router = usecase.NewEventRouter(f.parties, usecase.RouterConfig{
		FeeRate:         decimal.RequireFromString("0.015"),
		PlatformOwnerID: "tixeats",
		SubunitDivisor:  100,
	})

	return f
}

func (f *engineFixture) addWallet(kind domain.OwnerKind, ownerID string, balance domain.Money) domain.WalletRef {
	now := time.Now().UTC()
	w := &domain.Wallet{
		ID:             "w-" + string(kind) + "-" + ownerID,
		OwnerKind:      kind,
		OwnerID:        ownerID,
		Balance:        balance,
		OpeningBalance: balance,
		Active:         true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	f.ledger.AddWallet(w)
	return w.Ref()
}

func (f *engineFixture) balance(t *testing.T, ref domain.WalletRef) domain.Money {
	t.Helper()
	w, ok := f.ledger.Wallet(ref)
	require.True(t, ok, "wallet %s not found", ref)
	return w.Balance
}

func (f *engineFixture) markerState(t *testing.T, key domain.MarkerKey) domain.MarkerState {
	t.Helper()
	m, ok := f.markers.Marker(key)
	require.True(t, ok, "marker %s not found", key)
	return m.State
}

func customerRef(id string) domain.WalletRef {
	return domain.WalletRef{OwnerKind: domain.OwnerCustomer, OwnerID: id}
}

func businessRef(id string) domain.WalletRef {
	return domain.WalletRef{OwnerKind: domain.OwnerBusiness, OwnerID: id}
}

func platformRef() domain.WalletRef {
	return domain.WalletRef{OwnerKind: domain.OwnerPlatform, OwnerID: "tixeats"}
}

func settlementIntent(t *testing.T, orderID string, total domain.Money) *domain.Intent {
	t.Helper()
	intent, err := domain.NewOrderSettlement(&domain.Order{
		ID:         orderID,
		UserID:     "u1",
		BusinessID: "b1",
		Status:     domain.OrderStatusCompleted,
		Total:      total,
	}, "tixeats", decimal.RequireFromString("0.015"))
	require.NoError(t, err)
	return intent
}

func int64Ptr(v int64) *int64 { return &v }
