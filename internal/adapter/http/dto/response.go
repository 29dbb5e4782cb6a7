package dto

import (
	"time"

	"github.com/tixeats/walletsettle/internal/domain"
	"github.com/tixeats/walletsettle/internal/usecase"
)

// MessageResponse is the success body of a webhook.
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// WalletResponse represents a wallet in API responses.
type WalletResponse struct {
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
	ID             string    `json:"id"`
	OwnerKind      string    `json:"owner_kind"`
	OwnerID        string    `json:"owner_id"`
	Balance        int64     `json:"balance"`
	OpeningBalance int64     `json:"opening_balance"`
	Version        int64     `json:"version"`
	Active         bool      `json:"active"`
}

// WalletFromDomain converts a domain wallet to a response.
func WalletFromDomain(w *domain.Wallet) *WalletResponse {
	return &WalletResponse{
		ID:             w.ID,
		OwnerKind:      string(w.OwnerKind),
		OwnerID:        w.OwnerID,
		Balance:        int64(w.Balance),
		OpeningBalance: int64(w.OpeningBalance),
		Version:        w.Version,
		Active:         w.Active,
		CreatedAt:      w.CreatedAt,
		UpdatedAt:      w.UpdatedAt,
	}
}

// ListWalletsResponse represents a page of wallets.
type ListWalletsResponse struct {
	Wallets []*WalletResponse `json:"wallets"`
	Total   int64             `json:"total"`
}

// WalletsFromDomain converts domain wallets to responses.
func WalletsFromDomain(wallets []*domain.Wallet) []*WalletResponse {
	result := make([]*WalletResponse, len(wallets))
	for i, w := range wallets {
		result[i] = WalletFromDomain(w)
	}
	return result
}

// RecordResponse represents a transaction record in API responses.
type RecordResponse struct {
	CreatedAt     time.Time `json:"created_at"`
	ID            string    `json:"id"`
	WalletID      string    `json:"wallet_id"`
	OwnerKind     string    `json:"owner_kind"`
	OwnerID       string    `json:"owner_id"`
	Type          string    `json:"type"`
	Status        string    `json:"status"`
	IntentKind    string    `json:"intent_kind"`
	Source        string    `json:"source"`
	CorrelationID string    `json:"correlation_id"`
	Amount        int64     `json:"amount"`
	BalanceAfter  int64     `json:"balance_after"`
	LegIndex      int       `json:"leg_index"`
}

// RecordsFromDomain converts domain records to responses.
func RecordsFromDomain(records []*domain.TransactionRecord) []*RecordResponse {
	result := make([]*RecordResponse, len(records))
	for i, r := range records {
		result[i] = &RecordResponse{
			ID:            r.ID,
			WalletID:      r.WalletID,
			OwnerKind:     string(r.OwnerKind),
			OwnerID:       r.OwnerID,
			Type:          string(r.Type),
			Status:        string(r.Status),
			IntentKind:    string(r.IntentKind),
			Source:        r.Source,
			CorrelationID: r.CorrelationID,
			LegIndex:      r.LegIndex,
			Amount:        int64(r.Amount),
			BalanceAfter:  int64(r.BalanceAfter),
			CreatedAt:     r.CreatedAt,
		}
	}
	return result
}

// ListRecordsResponse represents a page of records.
type ListRecordsResponse struct {
	Records []*RecordResponse `json:"records"`
	Total   int64             `json:"total"`
}

// ReconciliationResponse represents one wallet's reconciliation.
type ReconciliationResponse struct {
	LastChecked       time.Time `json:"last_checked"`
	WalletID          string    `json:"wallet_id"`
	OwnerKind         string    `json:"owner_kind"`
	OwnerID           string    `json:"owner_id"`
	RecordedBalance   int64     `json:"recorded_balance"`
	CalculatedBalance int64     `json:"calculated_balance"`
	Difference        int64     `json:"difference"`
	IsReconciled      bool      `json:"is_reconciled"`
}

// ReconciliationFromUseCase converts a reconciliation result to a response.
func ReconciliationFromUseCase(r *usecase.ReconciliationResult) *ReconciliationResponse {
	return &ReconciliationResponse{
		WalletID:          r.WalletID,
		OwnerKind:         string(r.Owner.OwnerKind),
		OwnerID:           r.Owner.OwnerID,
		RecordedBalance:   int64(r.RecordedBalance),
		CalculatedBalance: int64(r.CalculatedBalance),
		Difference:        int64(r.Difference),
		IsReconciled:      r.IsReconciled,
		LastChecked:       r.LastChecked,
	}
}

// ReconciliationReportResponse represents the full report.
type ReconciliationReportResponse struct {
	CheckedAt         time.Time                 `json:"checked_at"`
	Discrepancies     []*ReconciliationResponse `json:"discrepancies"`
	TotalWallets      int                       `json:"total_wallets"`
	ReconciledWallets int                       `json:"reconciled_wallets"`
	LedgerConsistent  bool                      `json:"ledger_consistent"`
}

// ReportFromUseCase converts a report to a response.
func ReportFromUseCase(r *usecase.ReconciliationReport) *ReconciliationReportResponse {
	discrepancies := make([]*ReconciliationResponse, len(r.Discrepancies))
	for i, d := range r.Discrepancies {
		discrepancies[i] = ReconciliationFromUseCase(d)
	}

	return &ReconciliationReportResponse{
		CheckedAt:         r.CheckedAt,
		Discrepancies:     discrepancies,
		TotalWallets:      r.TotalWallets,
		ReconciledWallets: r.ReconciledWallets,
		LedgerConsistent:  r.LedgerConsistent,
	}
}
