package usecase

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/tixeats/walletsettle/internal/domain"
)

// RouterConfig holds the business constants used to build intents.
// FeeRate is taken as given; zero disables the platform fee.
type RouterConfig struct {
	FeeRate         decimal.Decimal
	PlatformOwnerID string
	SubunitDivisor  int64
}

// EventRouter classifies inbound events into transfer intents.
type EventRouter struct {
	parties PartyDirectory
	cfg     RouterConfig
}

// NewEventRouter creates a new EventRouter.
func NewEventRouter(parties PartyDirectory, cfg RouterConfig) *EventRouter {
	if cfg.PlatformOwnerID == "" {
		cfg.PlatformOwnerID = DefaultPlatformOwnerID
	}
	if cfg.SubunitDivisor <= 0 {
		cfg.SubunitDivisor = DefaultSubunitDivisor
	}
	return &EventRouter{parties: parties, cfg: cfg}
}

// Route maps env to an intent. Unknown events fail with
// domain.ErrUnsupportedEvent and incomplete payloads with
// domain.ErrMalformedPayload.
func (r *EventRouter) Route(ctx context.Context, env *domain.Envelope) (*domain.Intent, error) {
	switch env.Event {
	case domain.EventOrderTrigger:
		return r.routeOrder(ctx, env.Order)
	case domain.EventChargeSuccess, domain.EventTransferSuccess, domain.EventTransferFailed:
		return r.routeGateway(ctx, env.Event, env.Gateway)
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedEvent, env.Event)
	}
}

func (r *EventRouter) routeOrder(ctx context.Context, trigger *domain.OrderTrigger) (*domain.Intent, error) {
	if trigger == nil || trigger.OrderID == "" {
		return nil, fmt.Errorf("%w: record.order_id is required", domain.ErrMalformedPayload)
	}

	// Reject before any lookup
	if trigger.OrderStatus != domain.OrderStatusCompleted {
		return nil, fmt.Errorf("%w: order %s is %q", domain.ErrInvalidOrderState, trigger.OrderID, trigger.OrderStatus)
	}

	order, err := r.parties.OrderByID(ctx, trigger.OrderID)
	if err != nil {
		return nil, fmt.Errorf("order %s: %w", trigger.OrderID, err)
	}

	return domain.NewOrderSettlement(order, r.cfg.PlatformOwnerID, r.cfg.FeeRate)
}

func (r *EventRouter) routeGateway(ctx context.Context, event string, data *domain.GatewayEvent) (*domain.Intent, error) {
	if data == nil {
		return nil, fmt.Errorf("%w: data is required", domain.ErrMalformedPayload)
	}

	correlationID := data.EventID()
	if correlationID == "" {
		return nil, fmt.Errorf("%w: data.reference or data.id is required", domain.ErrMalformedPayload)
	}
	if data.Amount == nil {
		return nil, fmt.Errorf("%w: data.amount is required", domain.ErrMalformedPayload)
	}

	amount, err := domain.ConvertSubunits(*data.Amount, r.cfg.SubunitDivisor)
	if err != nil {
		return nil, fmt.Errorf("data.amount %d: %w", *data.Amount, err)
	}

	if event == domain.EventChargeSuccess {
		if data.CustomerEmail == "" {
			return nil, fmt.Errorf("%w: data.customer.email is required", domain.ErrMalformedPayload)
		}
		customerID, err := r.parties.CustomerByEmail(ctx, data.CustomerEmail)
		if err != nil {
			return nil, fmt.Errorf("customer %s: %w", data.CustomerEmail, err)
		}
		return domain.NewGatewayCharge(event, correlationID, customerID, amount), nil
	}

	if data.RecipientCode == "" {
		return nil, fmt.Errorf("%w: data.recipient.recipient_code is required", domain.ErrMalformedPayload)
	}
	businessID, err := r.parties.BusinessByRecipientCode(ctx, data.RecipientCode)
	if err != nil {
		return nil, fmt.Errorf("recipient %s: %w", data.RecipientCode, err)
	}

	if event == domain.EventTransferSuccess {
		return domain.NewGatewayPayout(event, correlationID, businessID, amount), nil
	}
	return domain.NewGatewayPayoutFailure(event, correlationID, businessID, amount), nil
}
