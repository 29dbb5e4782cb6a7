package domain

// Gateway event names
const (
	EventChargeSuccess   = "charge.success"
	EventTransferSuccess = "transfer.success"
	EventTransferFailed  = "transfer.failed"
)

// EventOrderTrigger names deliveries from the order-status trigger.
const EventOrderTrigger = "order.trigger"

// Envelope is an inbound event after transport decoding.
type Envelope struct {
	Order   *OrderTrigger
	Gateway *GatewayEvent
	Event   string
}

// OrderTrigger is the row carried by an order-status trigger.
type OrderTrigger struct {
	OrderID     string
	OrderStatus string
}

// GatewayEvent is the data block of a payment gateway webhook.
type GatewayEvent struct {
	Amount        *int64
	ID            string
	Reference     string
	CustomerEmail string
	RecipientCode string
}

// EventID returns the reference, falling back to the gateway id.
func (g *GatewayEvent) EventID() string {
	if g.Reference != "" {
		return g.Reference
	}
	return g.ID
}
