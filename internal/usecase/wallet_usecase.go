package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/tixeats/walletsettle/internal/domain"
	"github.com/tixeats/walletsettle/internal/infrastructure/metrics"
)

// WalletUseCase handles wallet onboarding and read access.
type WalletUseCase struct {
	txManager  TransactionManager
	walletRepo WalletRepository
	recordRepo TransactionRecordRepository
	outboxRepo OutboxRepository
	idGen      IDGenerator
	metrics    *metrics.Metrics
	logger     zerolog.Logger
}

// NewWalletUseCase creates a new WalletUseCase.
func NewWalletUseCase(
	txManager TransactionManager,
	walletRepo WalletRepository,
	recordRepo TransactionRecordRepository,
	outboxRepo OutboxRepository,
	idGen IDGenerator,
	metrics *metrics.Metrics,
	logger zerolog.Logger,
) *WalletUseCase {
	return &WalletUseCase{
		txManager:  txManager,
		walletRepo: walletRepo,
		recordRepo: recordRepo,
		outboxRepo: outboxRepo,
		idGen:      idGen,
		metrics:    metrics,
		logger:     logger,
	}
}

// CreateWalletInput represents input for onboarding an owner.
type CreateWalletInput struct {
	OwnerKind      domain.OwnerKind
	OwnerID        string
	OpeningBalance domain.Money
}

// CreateWallet creates the wallet of a newly onboarded owner.
func (uc *WalletUseCase) CreateWallet(ctx context.Context, input CreateWalletInput) (*domain.Wallet, error) {
	ref := domain.WalletRef{OwnerKind: input.OwnerKind, OwnerID: input.OwnerID}
	if err := domain.ValidateWalletRef(ref); err != nil {
		return nil, err
	}
	if input.OpeningBalance.IsNegative() {
		return nil, domain.ErrInvalidAmount
	}

	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	now := time.Now().UTC()
	wallet := &domain.Wallet{
		ID:             uc.idGen.Generate(),
		OwnerKind:      input.OwnerKind,
		OwnerID:        input.OwnerID,
		Balance:        input.OpeningBalance,
		OpeningBalance: input.OpeningBalance,
		Version:        0,
		Active:         true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := uc.walletRepo.Create(txCtx, tx, wallet); err != nil {
		return nil, err
	}

	event := &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   wallet.ID,
		AggregateType: domain.AggregateTypeWallet,
		EventType:     domain.EventTypeWalletCreated,
		Payload: map[string]any{
			"wallet_id":       wallet.ID,
			"owner_kind":      string(wallet.OwnerKind),
			"owner_id":        wallet.OwnerID,
			"opening_balance": int64(wallet.OpeningBalance),
		},
		CreatedAt: now,
		Published: false,
	}
	if err := uc.outboxRepo.Create(txCtx, tx, event); err != nil {
		return nil, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.WalletsCreated.WithLabelValues(string(wallet.OwnerKind)).Inc()
	}

	uc.logger.Info().
		Str("wallet_id", wallet.ID).
		Str("owner", ref.String()).
		Msg("wallet created")

	return wallet, nil
}

// GetWallet retrieves a wallet by ID.
func (uc *WalletUseCase) GetWallet(ctx context.Context, id string) (*domain.Wallet, error) {
	return uc.walletRepo.GetByID(ctx, id)
}

// GetWalletByOwner retrieves the wallet of an owner.
func (uc *WalletUseCase) GetWalletByOwner(ctx context.Context, ref domain.WalletRef) (*domain.Wallet, error) {
	if err := domain.ValidateWalletRef(ref); err != nil {
		return nil, err
	}
	return uc.walletRepo.GetByOwner(ctx, ref)
}

// DeactivateWallet stops a wallet from taking part in transfers. Wallets
// are never deleted.
func (uc *WalletUseCase) DeactivateWallet(ctx context.Context, id string) (*domain.Wallet, error) {
	return uc.setActive(ctx, id, false)
}

// ReactivateWallet allows a deactivated wallet to take part in transfers again.
func (uc *WalletUseCase) ReactivateWallet(ctx context.Context, id string) (*domain.Wallet, error) {
	return uc.setActive(ctx, id, true)
}

func (uc *WalletUseCase) setActive(ctx context.Context, id string, active bool) (*domain.Wallet, error) {
	if err := uc.walletRepo.SetActive(ctx, id, active, time.Now().UTC()); err != nil {
		return nil, err
	}

	wallet, err := uc.walletRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	uc.logger.Info().
		Str("wallet_id", id).
		Bool("active", active).
		Msg("wallet status changed")

	return wallet, nil
}

// ListWalletsInput represents input for listing wallets.
type ListWalletsInput struct {
	Limit  int
	Offset int
}

// ListWallets lists wallets with pagination.
func (uc *WalletUseCase) ListWallets(ctx context.Context, input ListWalletsInput) ([]*domain.Wallet, error) {
	limit, offset := domain.ValidatePagination(input.Limit, input.Offset)
	return uc.walletRepo.List(ctx, limit, offset)
}

// ListRecords lists the transaction records of a wallet, newest first.
func (uc *WalletUseCase) ListRecords(ctx context.Context, walletID string, limit, offset int) ([]*domain.TransactionRecord, error) {
	if _, err := uc.walletRepo.GetByID(ctx, walletID); err != nil {
		return nil, err
	}
	limit, offset = domain.ValidatePagination(limit, offset)
	return uc.recordRepo.ListByWallet(ctx, walletID, limit, offset)
}

// GetTransaction returns the records written for one external event.
func (uc *WalletUseCase) GetTransaction(ctx context.Context, source, correlationID string) ([]*domain.TransactionRecord, error) {
	records, err := uc.recordRepo.GetByCorrelation(ctx, source, correlationID)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: %s/%s", domain.ErrTransactionNotFound, source, correlationID)
	}
	return records, nil
}
