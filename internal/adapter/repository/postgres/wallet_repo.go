package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/tixeats/walletsettle/internal/domain"
	"github.com/tixeats/walletsettle/internal/infrastructure/postgres/generated"
	"github.com/tixeats/walletsettle/internal/usecase"
)

// WalletRepository implements usecase.WalletRepository.
type WalletRepository struct {
	queries *generated.Queries
}

// NewWalletRepository creates a new WalletRepository.
func NewWalletRepository(db generated.DBTX) *WalletRepository {
	return &WalletRepository{queries: generated.New(db)}
}

// Create inserts a wallet within a transaction.
func (r *WalletRepository) Create(ctx context.Context, tx usecase.Transaction, wallet *domain.Wallet) error {
	err := queriesFor(tx).CreateWallet(ctx, generated.CreateWalletParams{
		ID:             wallet.ID,
		OwnerKind:      string(wallet.OwnerKind),
		OwnerID:        wallet.OwnerID,
		Balance:        int64(wallet.Balance),
		OpeningBalance: int64(wallet.OpeningBalance),
		Version:        wallet.Version,
		Active:         wallet.Active,
		CreatedAt:      timeToPgTimestamptz(wallet.CreatedAt),
		UpdatedAt:      timeToPgTimestamptz(wallet.UpdatedAt),
	})
	if pgErrorCode(err) == pgErrUniqueViolation {
		return fmt.Errorf("%w: %s", domain.ErrWalletExists, wallet.Ref())
	}

	return err
}

// GetByID retrieves a wallet by ID.
func (r *WalletRepository) GetByID(ctx context.Context, id string) (*domain.Wallet, error) {
	row, err := r.queries.GetWalletByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrWalletNotFound
		}

		return nil, err
	}

	return rowToWallet(row), nil
}

// GetByOwner retrieves the wallet of an owner.
func (r *WalletRepository) GetByOwner(ctx context.Context, ref domain.WalletRef) (*domain.Wallet, error) {
	return getWalletByOwner(ctx, r.queries, ref)
}

// GetByOwnerTx retrieves the wallet of an owner within a transaction.
func (r *WalletRepository) GetByOwnerTx(ctx context.Context, tx usecase.Transaction, ref domain.WalletRef) (*domain.Wallet, error) {
	return getWalletByOwner(ctx, queriesFor(tx), ref)
}

func getWalletByOwner(ctx context.Context, q *generated.Queries, ref domain.WalletRef) (*domain.Wallet, error) {
	row, err := q.GetWalletByOwner(ctx, generated.GetWalletByOwnerParams{
		OwnerKind: string(ref.OwnerKind),
		OwnerID:   ref.OwnerID,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrWalletNotFound
		}

		return nil, err
	}

	return rowToWallet(row), nil
}

// UpdateBalanceIfVersion sets the balance and bumps the version when the
// stored version still equals expectedVersion.
func (r *WalletRepository) UpdateBalanceIfVersion(ctx context.Context, tx usecase.Transaction, id string, expectedVersion int64, balance domain.Money, updatedAt time.Time) error {
	affected, err := queriesFor(tx).UpdateWalletBalanceIfVersion(ctx, generated.UpdateWalletBalanceIfVersionParams{
		ID:        id,
		Version:   expectedVersion,
		Balance:   int64(balance),
		UpdatedAt: timeToPgTimestamptz(updatedAt),
	})
	if err != nil {
		if pgErrorCode(err) == pgErrCheckViolation {
			return domain.ErrInsufficientFunds
		}
		return err
	}

	if affected == 0 {
		return fmt.Errorf("%w: wallet %s at version %d", domain.ErrVersionConflict, id, expectedVersion)
	}

	return nil
}

// SetActive activates or deactivates a wallet.
func (r *WalletRepository) SetActive(ctx context.Context, id string, active bool, updatedAt time.Time) error {
	affected, err := r.queries.SetWalletActive(ctx, generated.SetWalletActiveParams{
		ID:        id,
		Active:    active,
		UpdatedAt: timeToPgTimestamptz(updatedAt),
	})
	if err != nil {
		return err
	}

	if affected == 0 {
		return domain.ErrWalletNotFound
	}

	return nil
}

// List lists wallets with pagination.
func (r *WalletRepository) List(ctx context.Context, limit, offset int) ([]*domain.Wallet, error) {
	rows, err := r.queries.ListWallets(ctx, generated.ListWalletsParams{
		Limit:  int32(limit),
		Offset: int32(offset),
	})
	if err != nil {
		return nil, err
	}

	wallets := make([]*domain.Wallet, 0, len(rows))
	for _, row := range rows {
		wallets = append(wallets, rowToWallet(row))
	}

	return wallets, nil
}

func rowToWallet(row generated.Wallet) *domain.Wallet {
	return &domain.Wallet{
		ID:             row.ID,
		OwnerKind:      domain.OwnerKind(row.OwnerKind),
		OwnerID:        row.OwnerID,
		Balance:        domain.Money(row.Balance),
		OpeningBalance: domain.Money(row.OpeningBalance),
		Version:        row.Version,
		Active:         row.Active,
		CreatedAt:      row.CreatedAt.Time,
		UpdatedAt:      row.UpdatedAt.Time,
	}
}
