package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// OrderStatusCompleted is the only order status that settles.
const OrderStatusCompleted = "completed"

// SourceOrderSettlement is the idempotency source for order triggers.
const SourceOrderSettlement = "order_settlement"

// Order is the part of an order row needed to settle it.
type Order struct {
	ID         string
	UserID     string
	BusinessID string
	Status     string
	Total      Money
}

// ItemPriceUpdate sets the current price of order items for a catalog item.
type ItemPriceUpdate struct {
	BizItemID string
	Price     Money
}

// NewOrderSettlement builds the three-leg intent for a completed order.
// The customer pays the total plus the platform fee.
func NewOrderSettlement(order *Order, platformOwnerID string, feeRate decimal.Decimal) (*Intent, error) {
	if order.Status != OrderStatusCompleted {
		return nil, fmt.Errorf("%w: order %s is %q", ErrInvalidOrderState, order.ID, order.Status)
	}

	fee, err := FeeOf(order.Total, feeRate)
	if err != nil {
		return nil, err
	}

	debit, err := order.Total.Add(fee)
	if err != nil {
		return nil, err
	}

	return &Intent{
		Kind:          IntentOrderSettlement,
		Source:        SourceOrderSettlement,
		CorrelationID: order.ID,
		Legs: []Leg{
			{Wallet: WalletRef{OwnerKind: OwnerCustomer, OwnerID: order.UserID}, Type: EntryDebit, Amount: debit},
			{Wallet: WalletRef{OwnerKind: OwnerBusiness, OwnerID: order.BusinessID}, Type: EntryCredit, Amount: order.Total},
			{Wallet: WalletRef{OwnerKind: OwnerPlatform, OwnerID: platformOwnerID}, Type: EntryCredit, Amount: fee},
		},
	}, nil
}

// NewGatewayCharge credits a customer with funds received by the gateway.
func NewGatewayCharge(source, correlationID, customerID string, amount Money) *Intent {
	return &Intent{
		Kind:          IntentGatewayCharge,
		Source:        source,
		CorrelationID: correlationID,
		Legs: []Leg{
			{Wallet: WalletRef{OwnerKind: OwnerCustomer, OwnerID: customerID}, Type: EntryCredit, Amount: amount},
		},
	}
}

// NewGatewayPayout debits a business for a completed payout.
func NewGatewayPayout(source, correlationID, businessID string, amount Money) *Intent {
	return &Intent{
		Kind:          IntentGatewayPayout,
		Source:        source,
		CorrelationID: correlationID,
		Legs: []Leg{
			{Wallet: WalletRef{OwnerKind: OwnerBusiness, OwnerID: businessID}, Type: EntryDebit, Amount: amount},
		},
	}
}

// NewGatewayPayoutFailure records a failed payout without moving funds.
func NewGatewayPayoutFailure(source, correlationID, businessID string, amount Money) *Intent {
	return &Intent{
		Kind:          IntentGatewayPayoutFailure,
		Source:        source,
		CorrelationID: correlationID,
		Legs: []Leg{
			{Wallet: WalletRef{OwnerKind: OwnerBusiness, OwnerID: businessID}, Type: EntryDebit, Amount: amount, RecordOnly: true},
		},
	}
}
