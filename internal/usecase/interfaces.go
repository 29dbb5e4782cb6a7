package usecase

import (
	"context"
	"time"

	"github.com/tixeats/walletsettle/internal/domain"
)

// WalletRepository defines data access for wallets.
type WalletRepository interface {
	Create(ctx context.Context, tx Transaction, wallet *domain.Wallet) error
	GetByID(ctx context.Context, id string) (*domain.Wallet, error)
	GetByOwner(ctx context.Context, ref domain.WalletRef) (*domain.Wallet, error)
	GetByOwnerTx(ctx context.Context, tx Transaction, ref domain.WalletRef) (*domain.Wallet, error)
	// UpdateBalanceIfVersion returns domain.ErrVersionConflict when the stored
	// version is not expectedVersion.
	UpdateBalanceIfVersion(ctx context.Context, tx Transaction, id string, expectedVersion int64, balance domain.Money, updatedAt time.Time) error
	SetActive(ctx context.Context, id string, active bool, updatedAt time.Time) error
	List(ctx context.Context, limit, offset int) ([]*domain.Wallet, error)
}

// TransactionRecordRepository defines data access for the append-only
// transaction log.
type TransactionRecordRepository interface {
	// Create returns domain.ErrDuplicateRecord when a record with the same
	// source, correlation id and leg index exists.
	Create(ctx context.Context, tx Transaction, record *domain.TransactionRecord) error
	GetByCorrelation(ctx context.Context, source, correlationID string) ([]*domain.TransactionRecord, error)
	ListByWallet(ctx context.Context, walletID string, limit, offset int) ([]*domain.TransactionRecord, error)
	SumByWallet(ctx context.Context, walletID string) (domain.Money, error)
}

// LedgerRepository defines data access for ledger-wide checks.
type LedgerRepository interface {
	// CheckConsistency returns the sum of wallet balances and the sum of
	// opening balances plus signed successful records.
	CheckConsistency(ctx context.Context) (totalBalance, expectedBalance domain.Money, err error)
}

// OutboxRepository defines data access for outbox events.
type OutboxRepository interface {
	Create(ctx context.Context, tx Transaction, event *domain.OutboxEvent) error
	GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublished(ctx context.Context, id string, publishedAt time.Time) error
	DeletePublished(ctx context.Context, before time.Time) error
}

// MarkerStore persists idempotency markers.
type MarkerStore interface {
	// Insert registers a pending marker. It reports false when a marker for
	// key already exists.
	Insert(ctx context.Context, key domain.MarkerKey, now time.Time) (bool, error)
	Get(ctx context.Context, key domain.MarkerKey) (*domain.Marker, error)
	// Reclaim moves a rejected marker, or a pending marker last touched
	// before now-lease, back to pending. Only one concurrent caller wins.
	Reclaim(ctx context.Context, key domain.MarkerKey, lease time.Duration, now time.Time) (bool, error)
	Finalize(ctx context.Context, key domain.MarkerKey, state domain.MarkerState, now time.Time) error
	DeleteAppliedBefore(ctx context.Context, before time.Time) (int64, error)
}

// PartyDirectory resolves the parties named by inbound events.
type PartyDirectory interface {
	OrderByID(ctx context.Context, orderID string) (*domain.Order, error)
	CustomerByEmail(ctx context.Context, email string) (string, error)
	BusinessByRecipientCode(ctx context.Context, recipientCode string) (string, error)
}

// OrderItemRepository updates order item prices.
type OrderItemRepository interface {
	UpdateCurrentPrice(ctx context.Context, bizItemID string, price domain.Money) (int64, error)
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// Retrier re-runs an operation on transient store errors.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// Cache defines caching operations. Get returns ErrCacheMiss for absent keys.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
