package domain

import "time"

// TransactionStatus is the outcome written on a record.
type TransactionStatus string

const (
	TransactionSuccess TransactionStatus = "success"
	TransactionFailed  TransactionStatus = "failed"
)

// TransactionRecord is an immutable audit row, one per applied leg.
type TransactionRecord struct {
	CreatedAt     time.Time
	ID            string
	WalletID      string
	OwnerKind     OwnerKind
	OwnerID       string
	Type          EntryType
	Status        TransactionStatus
	IntentKind    IntentKind
	Source        string
	CorrelationID string
	Amount        Money
	BalanceAfter  Money
	LegIndex      int
}

// SignedAmount returns the balance effect of the record. Failed records
// have none.
func (r *TransactionRecord) SignedAmount() Money {
	if r.Status != TransactionSuccess {
		return 0
	}
	if r.Type == EntryDebit {
		return -r.Amount
	}
	return r.Amount
}
