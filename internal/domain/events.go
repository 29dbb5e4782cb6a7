package domain

import "time"

// Event types
const (
	EventTypeTransferApplied = "transfer.applied"
	EventTypeWalletCreated   = "wallet.created"
)

// Aggregate types
const (
	AggregateTypeTransfer = "transfer"
	AggregateTypeWallet   = "wallet"
)

// OutboxEvent is an event waiting to be published.
type OutboxEvent struct {
	CreatedAt     time.Time
	PublishedAt   *time.Time
	Payload       map[string]any
	ID            string
	AggregateID   string
	AggregateType string
	EventType     string
	Published     bool
}
