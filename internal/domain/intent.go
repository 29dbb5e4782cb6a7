package domain

import "fmt"

// IntentKind selects the business rule that produced a transfer intent.
type IntentKind string

const (
	IntentOrderSettlement      IntentKind = "ORDER_SETTLEMENT"
	IntentGatewayCharge        IntentKind = "GATEWAY_CHARGE"
	IntentGatewayPayout        IntentKind = "GATEWAY_PAYOUT"
	IntentGatewayPayoutFailure IntentKind = "GATEWAY_PAYOUT_FAILURE"
)

// IsValid reports whether k is a known intent kind.
func (k IntentKind) IsValid() bool {
	switch k {
	case IntentOrderSettlement, IntentGatewayCharge, IntentGatewayPayout, IntentGatewayPayoutFailure:
		return true
	}
	return false
}

// Balanced reports whether intents of this kind only move value between
// internal wallets. Gateway intents inject or extract value.
func (k IntentKind) Balanced() bool {
	return k == IntentOrderSettlement
}

// EntryType is the transaction-type label written on a record.
type EntryType string

const (
	EntryCredit EntryType = "credit"
	EntryDebit  EntryType = "debit"
)

// Leg is one balance change against one wallet.
type Leg struct {
	Wallet WalletRef
	Type   EntryType
	Amount Money
	// RecordOnly legs change no balance and are recorded as failed.
	RecordOnly bool
}

// Delta returns the signed balance change of the leg.
func (l Leg) Delta() Money {
	if l.RecordOnly {
		return 0
	}
	if l.Type == EntryDebit {
		return -l.Amount
	}
	return l.Amount
}

// RecordStatus returns the status written for this leg.
func (l Leg) RecordStatus() TransactionStatus {
	if l.RecordOnly {
		return TransactionFailed
	}
	return TransactionSuccess
}

// Intent is a request to move value between named parties.
type Intent struct {
	Kind          IntentKind
	Source        string
	CorrelationID string
	Legs          []Leg
}

// Key returns the idempotency key of the intent.
func (i *Intent) Key() MarkerKey {
	return MarkerKey{Source: i.Source, CorrelationID: i.CorrelationID}
}

// Validate checks the intent without touching any store.
func (i *Intent) Validate() error {
	if !i.Kind.IsValid() {
		return fmt.Errorf("%w: %q", ErrUnknownIntentKind, i.Kind)
	}
	if i.Source == "" || i.CorrelationID == "" {
		return ErrMissingCorrelation
	}
	if len(i.Legs) == 0 {
		return ErrEmptyIntent
	}

	var sum Money
	for idx, leg := range i.Legs {
		if !leg.Wallet.OwnerKind.IsValid() || leg.Wallet.OwnerID == "" {
			return fmt.Errorf("%w: leg %d references %q", ErrInvalidOwnerKind, idx, leg.Wallet)
		}
		if leg.Type != EntryCredit && leg.Type != EntryDebit {
			return fmt.Errorf("%w: leg %d has type %q", ErrValidation, idx, leg.Type)
		}
		if leg.Amount < 0 {
			return fmt.Errorf("%w: leg %d", ErrInvalidAmount, idx)
		}

		var err error
		sum, err = sum.Add(leg.Delta())
		if err != nil {
			return err
		}
	}

	if i.Kind.Balanced() && sum != 0 {
		return fmt.Errorf("%w: sum is %s", ErrUnbalancedIntent, sum)
	}

	return nil
}

// TransferResult is the outcome of applying an intent.
type TransferResult struct {
	Intent   *Intent
	Legs     []*TransactionRecord
	Applied  bool
	Replayed bool
}
