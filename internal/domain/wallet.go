package domain

import "time"

// OwnerKind identifies who a wallet belongs to.
type OwnerKind string

const (
	OwnerCustomer OwnerKind = "customer"
	OwnerBusiness OwnerKind = "business"
	OwnerPlatform OwnerKind = "platform"
)

// IsValid reports whether k is a known owner kind.
func (k OwnerKind) IsValid() bool {
	switch k {
	case OwnerCustomer, OwnerBusiness, OwnerPlatform:
		return true
	}
	return false
}

// WalletRef names a wallet by its owner.
type WalletRef struct {
	OwnerKind OwnerKind
	OwnerID   string
}

func (r WalletRef) String() string {
	return string(r.OwnerKind) + ":" + r.OwnerID
}

// Wallet holds a balance for a single owner.
type Wallet struct {
	CreatedAt      time.Time
	UpdatedAt      time.Time
	ID             string
	OwnerKind      OwnerKind
	OwnerID        string
	Balance        Money
	OpeningBalance Money
	Version        int64
	Active         bool
}

// Ref returns the owner reference of the wallet.
func (w *Wallet) Ref() WalletRef {
	return WalletRef{OwnerKind: w.OwnerKind, OwnerID: w.OwnerID}
}

// ApplyDelta returns the balance after adding delta. The balance may never
// go below zero.
func (w *Wallet) ApplyDelta(delta Money) (Money, error) {
	newBalance, err := w.Balance.Add(delta)
	if err != nil {
		return 0, err
	}
	if newBalance.IsNegative() {
		return 0, ErrInsufficientFunds
	}
	return newBalance, nil
}

// CheckUsable fails for deactivated wallets.
func (w *Wallet) CheckUsable() error {
	if !w.Active {
		return ErrWalletInactive
	}
	return nil
}
