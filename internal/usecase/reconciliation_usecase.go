package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/tixeats/walletsettle/internal/domain"
)

// ReconciliationUseCase checks wallet balances against the transaction log.
type ReconciliationUseCase struct {
	walletRepo WalletRepository
	recordRepo TransactionRecordRepository
	ledgerRepo LedgerRepository
}

// NewReconciliationUseCase creates a new reconciliation use case
func NewReconciliationUseCase(
	walletRepo WalletRepository,
	recordRepo TransactionRecordRepository,
	ledgerRepo LedgerRepository,
) *ReconciliationUseCase {
	return &ReconciliationUseCase{
		walletRepo: walletRepo,
		recordRepo: recordRepo,
		ledgerRepo: ledgerRepo,
	}
}

// ReconciliationResult represents the result of a reconciliation check
type ReconciliationResult struct {
	LastChecked       time.Time
	WalletID          string
	Owner             domain.WalletRef
	RecordedBalance   domain.Money
	CalculatedBalance domain.Money
	Difference        domain.Money
	IsReconciled      bool
}

// ReconcileWallet compares a wallet's balance with its opening balance plus
// the signed sum of its successful records.
func (uc *ReconciliationUseCase) ReconcileWallet(ctx context.Context, walletID string) (*ReconciliationResult, error) {
	wallet, err := uc.walletRepo.GetByID(ctx, walletID)
	if err != nil {
		return nil, err
	}

	sum, err := uc.recordRepo.SumByWallet(ctx, walletID)
	if err != nil {
		return nil, err
	}

	calculated, err := wallet.OpeningBalance.Add(sum)
	if err != nil {
		return nil, err
	}

	difference, err := wallet.Balance.Sub(calculated)
	if err != nil {
		return nil, err
	}

	return &ReconciliationResult{
		WalletID:          wallet.ID,
		Owner:             wallet.Ref(),
		RecordedBalance:   wallet.Balance,
		CalculatedBalance: calculated,
		Difference:        difference,
		IsReconciled:      difference == 0,
		LastChecked:       time.Now().UTC(),
	}, nil
}

// ReconcileAllWallets reconciles every wallet, page by page.
func (uc *ReconciliationUseCase) ReconcileAllWallets(ctx context.Context) ([]*ReconciliationResult, error) {
	var results []*ReconciliationResult

	for offset := 0; ; offset += domain.MaxPageSize {
		wallets, err := uc.walletRepo.List(ctx, domain.MaxPageSize, offset)
		if err != nil {
			return nil, err
		}

		for _, wallet := range wallets {
			result, err := uc.ReconcileWallet(ctx, wallet.ID)
			if err != nil {
				return nil, fmt.Errorf("failed to reconcile wallet %s: %w", wallet.ID, err)
			}
			results = append(results, result)
		}

		if len(wallets) < domain.MaxPageSize {
			break
		}
	}

	return results, nil
}

// CheckLedgerConsistency verifies that the sum of balances matches the
// transaction log.
func (uc *ReconciliationUseCase) CheckLedgerConsistency(ctx context.Context) error {
	totalBalance, expectedBalance, err := uc.ledgerRepo.CheckConsistency(ctx)
	if err != nil {
		return err
	}

	if totalBalance != expectedBalance {
		return fmt.Errorf(
			"%w: balances=%s expected=%s",
			ErrInconsistentLedger,
			totalBalance,
			expectedBalance,
		)
	}

	return nil
}

// ReconciliationReport represents a full reconciliation report
type ReconciliationReport struct {
	CheckedAt         time.Time
	Discrepancies     []*ReconciliationResult
	TotalWallets      int
	ReconciledWallets int
	LedgerConsistent  bool
}

// GenerateReconciliationReport generates a comprehensive reconciliation report
func (uc *ReconciliationUseCase) GenerateReconciliationReport(ctx context.Context) (*ReconciliationReport, error) {
	results, err := uc.ReconcileAllWallets(ctx)
	if err != nil {
		return nil, err
	}

	ledgerErr := uc.CheckLedgerConsistency(ctx)

	report := &ReconciliationReport{
		TotalWallets:     len(results),
		Discrepancies:    make([]*ReconciliationResult, 0),
		LedgerConsistent: ledgerErr == nil,
		CheckedAt:        time.Now().UTC(),
	}

	for _, result := range results {
		if result.IsReconciled {
			report.ReconciledWallets++
		} else {
			report.Discrepancies = append(report.Discrepancies, result)
		}
	}

	return report, nil
}
