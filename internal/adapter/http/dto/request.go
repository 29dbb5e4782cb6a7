package dto

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/tixeats/walletsettle/internal/domain"
	"github.com/tixeats/walletsettle/internal/usecase"
)

// OrderWebhookRequest is the body posted by the order-status trigger.
type OrderWebhookRequest struct {
	Record *OrderRecord `json:"record"`
}

// OrderRecord is the order row carried by the trigger.
type OrderRecord struct {
	OrderID     string `json:"order_id"`
	OrderStatus string `json:"order_status"`
}

// ToEnvelope converts to an inbound event envelope.
func (r *OrderWebhookRequest) ToEnvelope() *domain.Envelope {
	env := &domain.Envelope{Event: domain.EventOrderTrigger}
	if r.Record != nil {
		env.Order = &domain.OrderTrigger{
			OrderID:     r.Record.OrderID,
			OrderStatus: r.Record.OrderStatus,
		}
	}
	return env
}

// GatewayWebhookRequest is the body of a payment gateway webhook.
type GatewayWebhookRequest struct {
	Data  *GatewayData `json:"data"`
	Event string       `json:"event"`
}

// GatewayData is the data block of a gateway webhook.
type GatewayData struct {
	Amount    *int64     `json:"amount"`
	Customer  *Customer  `json:"customer"`
	Recipient *Recipient `json:"recipient"`
	ID        FlexString `json:"id"`
	Reference string     `json:"reference"`
	// RecipientCode is set when the gateway sends the code beside the
	// recipient instead of inside it.
	RecipientCode string `json:"recipient_code"`
}

// Customer identifies the paying customer.
type Customer struct {
	Email string `json:"email"`
}

// Recipient is a payout recipient. The gateway sends either an object with
// recipient_code or the bare code string.
type Recipient struct {
	RecipientCode string `json:"recipient_code"`
}

// UnmarshalJSON accepts both the object and the bare string form.
func (r *Recipient) UnmarshalJSON(data []byte) error {
	if bytes.HasPrefix(bytes.TrimSpace(data), []byte(`"`)) {
		return json.Unmarshal(data, &r.RecipientCode)
	}

	type plain Recipient
	return json.Unmarshal(data, (*plain)(r))
}

// FlexString decodes a JSON string or number into a string.
type FlexString string

// UnmarshalJSON accepts strings, numbers and null.
func (s *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*s = ""
		return nil
	}

	if bytes.HasPrefix(data, []byte(`"`)) {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*s = FlexString(str)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id must be a string or number: %w", err)
	}
	*s = FlexString(n.String())
	return nil
}

// ToEnvelope converts to an inbound event envelope.
func (r *GatewayWebhookRequest) ToEnvelope() *domain.Envelope {
	env := &domain.Envelope{Event: r.Event}
	if r.Data == nil {
		return env
	}

	gw := &domain.GatewayEvent{
		Amount:        r.Data.Amount,
		ID:            string(r.Data.ID),
		Reference:     r.Data.Reference,
		RecipientCode: r.Data.RecipientCode,
	}
	if r.Data.Customer != nil {
		gw.CustomerEmail = r.Data.Customer.Email
	}
	if r.Data.Recipient != nil && r.Data.Recipient.RecipientCode != "" {
		gw.RecipientCode = r.Data.Recipient.RecipientCode
	}
	env.Gateway = gw

	return env
}

// ItemPriceWebhookRequest is the body posted when a catalog item's price
// changes.
type ItemPriceWebhookRequest struct {
	Record *ItemPriceRecord `json:"record"`
}

// ItemPriceRecord is the catalog item row.
type ItemPriceRecord struct {
	BizItemID string      `json:"biz_item_id"`
	ItemPrice json.Number `json:"item_price"`
}

// ToUpdate converts to a price update. The price must be a whole number of
// minor units.
func (r *ItemPriceWebhookRequest) ToUpdate() (domain.ItemPriceUpdate, error) {
	if r.Record == nil {
		return domain.ItemPriceUpdate{}, fmt.Errorf("%w: record is required", domain.ErrMalformedPayload)
	}
	if r.Record.ItemPrice == "" {
		return domain.ItemPriceUpdate{}, fmt.Errorf("%w: record.item_price is required", domain.ErrMalformedPayload)
	}

	price, err := strconv.ParseInt(r.Record.ItemPrice.String(), 10, 64)
	if err != nil {
		return domain.ItemPriceUpdate{}, fmt.Errorf("%w: record.item_price %q is not a whole number", domain.ErrMalformedPayload, r.Record.ItemPrice)
	}

	return domain.ItemPriceUpdate{
		BizItemID: r.Record.BizItemID,
		Price:     domain.Money(price),
	}, nil
}

// CreateWalletRequest represents a request to create a wallet.
type CreateWalletRequest struct {
	OwnerKind      string `json:"owner_kind"`
	OwnerID        string `json:"owner_id"`
	OpeningBalance int64  `json:"opening_balance"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateWalletRequest) ToUseCaseInput() usecase.CreateWalletInput {
	return usecase.CreateWalletInput{
		OwnerKind:      domain.OwnerKind(r.OwnerKind),
		OwnerID:        r.OwnerID,
		OpeningBalance: domain.Money(r.OpeningBalance),
	}
}
