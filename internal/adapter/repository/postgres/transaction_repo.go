package postgres

import (
	"context"
	"fmt"

	"github.com/tixeats/walletsettle/internal/domain"
	"github.com/tixeats/walletsettle/internal/infrastructure/postgres/generated"
	"github.com/tixeats/walletsettle/internal/usecase"
)

// TransactionRecordRepository implements usecase.TransactionRecordRepository.
type TransactionRecordRepository struct {
	queries *generated.Queries
}

// NewTransactionRecordRepository creates a new TransactionRecordRepository.
func NewTransactionRecordRepository(db generated.DBTX) *TransactionRecordRepository {
	return &TransactionRecordRepository{queries: generated.New(db)}
}

// Create appends a record within a transaction.
func (r *TransactionRecordRepository) Create(ctx context.Context, tx usecase.Transaction, record *domain.TransactionRecord) error {
	err := queriesFor(tx).CreateTransactionRecord(ctx, generated.CreateTransactionRecordParams{
		ID:            record.ID,
		WalletID:      record.WalletID,
		OwnerKind:     string(record.OwnerKind),
		OwnerID:       record.OwnerID,
		Type:          string(record.Type),
		Status:        string(record.Status),
		IntentKind:    string(record.IntentKind),
		Source:        record.Source,
		CorrelationID: record.CorrelationID,
		LegIndex:      int32(record.LegIndex),
		Amount:        int64(record.Amount),
		BalanceAfter:  int64(record.BalanceAfter),
		CreatedAt:     timeToPgTimestamptz(record.CreatedAt),
	})
	if pgErrorCode(err) == pgErrUniqueViolation {
		return fmt.Errorf("%w: %s/%s leg %d", domain.ErrDuplicateRecord, record.Source, record.CorrelationID, record.LegIndex)
	}

	return err
}

// GetByCorrelation returns the records of one event ordered by leg index.
func (r *TransactionRecordRepository) GetByCorrelation(ctx context.Context, source, correlationID string) ([]*domain.TransactionRecord, error) {
	rows, err := r.queries.GetRecordsByCorrelation(ctx, generated.GetRecordsByCorrelationParams{
		Source:        source,
		CorrelationID: correlationID,
	})
	if err != nil {
		return nil, err
	}

	return rowsToRecords(rows), nil
}

// ListByWallet lists the records of a wallet, newest first.
func (r *TransactionRecordRepository) ListByWallet(ctx context.Context, walletID string, limit, offset int) ([]*domain.TransactionRecord, error) {
	rows, err := r.queries.ListRecordsByWallet(ctx, generated.ListRecordsByWalletParams{
		WalletID: walletID,
		Limit:    int32(limit),
		Offset:   int32(offset),
	})
	if err != nil {
		return nil, err
	}

	return rowsToRecords(rows), nil
}

// SumByWallet returns the signed sum of the wallet's successful records.
func (r *TransactionRecordRepository) SumByWallet(ctx context.Context, walletID string) (domain.Money, error) {
	total, err := r.queries.SumRecordsByWallet(ctx, walletID)
	if err != nil {
		return 0, err
	}

	return domain.Money(total), nil
}

func rowsToRecords(rows []generated.TransactionRecord) []*domain.TransactionRecord {
	records := make([]*domain.TransactionRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, &domain.TransactionRecord{
			ID:            row.ID,
			WalletID:      row.WalletID,
			OwnerKind:     domain.OwnerKind(row.OwnerKind),
			OwnerID:       row.OwnerID,
			Type:          domain.EntryType(row.Type),
			Status:        domain.TransactionStatus(row.Status),
			IntentKind:    domain.IntentKind(row.IntentKind),
			Source:        row.Source,
			CorrelationID: row.CorrelationID,
			LegIndex:      int(row.LegIndex),
			Amount:        domain.Money(row.Amount),
			BalanceAfter:  domain.Money(row.BalanceAfter),
			CreatedAt:     row.CreatedAt.Time,
		})
	}

	return records
}
