package postgres

import (
	"context"

	"github.com/tixeats/walletsettle/internal/domain"
	"github.com/tixeats/walletsettle/internal/infrastructure/postgres/generated"
)

// LedgerRepository implements usecase.LedgerRepository.
type LedgerRepository struct {
	queries *generated.Queries
}

// NewLedgerRepository creates a new LedgerRepository.
func NewLedgerRepository(db generated.DBTX) *LedgerRepository {
	return &LedgerRepository{queries: generated.New(db)}
}

// CheckConsistency returns the sum of wallet balances and the sum of opening
// balances plus signed successful records.
func (r *LedgerRepository) CheckConsistency(ctx context.Context) (domain.Money, domain.Money, error) {
	result, err := r.queries.CheckLedgerConsistency(ctx)
	if err != nil {
		return 0, 0, err
	}

	return domain.Money(result.TotalBalance), domain.Money(result.ExpectedBalance), nil
}
