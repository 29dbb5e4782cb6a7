package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/tixeats/walletsettle/internal/domain"
	"github.com/tixeats/walletsettle/internal/infrastructure/postgres/generated"
)

// PartyRepository implements usecase.PartyDirectory over the application's
// orders, users and payout recipient tables.
type PartyRepository struct {
	queries *generated.Queries
}

// NewPartyRepository creates a new PartyRepository.
func NewPartyRepository(db generated.DBTX) *PartyRepository {
	return &PartyRepository{queries: generated.New(db)}
}

// OrderByID retrieves an order.
func (r *PartyRepository) OrderByID(ctx context.Context, orderID string) (*domain.Order, error) {
	row, err := r.queries.GetOrderByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrOrderNotFound
		}

		return nil, err
	}

	return &domain.Order{
		ID:         row.OrderID,
		UserID:     row.UserID,
		BusinessID: row.BusinessID,
		Status:     row.OrderStatus,
		Total:      domain.Money(row.Total),
	}, nil
}

// CustomerByEmail resolves the user id registered with email.
func (r *PartyRepository) CustomerByEmail(ctx context.Context, email string) (string, error) {
	userID, err := r.queries.GetUserIDByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", fmt.Errorf("%w: no user with email %s", domain.ErrPartyNotFound, email)
		}

		return "", err
	}

	return userID, nil
}

// BusinessByRecipientCode resolves the business behind a payout recipient.
func (r *PartyRepository) BusinessByRecipientCode(ctx context.Context, recipientCode string) (string, error) {
	businessID, err := r.queries.GetBusinessIDByRecipientCode(ctx, recipientCode)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", fmt.Errorf("%w: no business with recipient code %s", domain.ErrPartyNotFound, recipientCode)
		}

		return "", err
	}

	return businessID, nil
}

// OrderItemRepository implements usecase.OrderItemRepository.
type OrderItemRepository struct {
	queries *generated.Queries
}

// NewOrderItemRepository creates a new OrderItemRepository.
func NewOrderItemRepository(db generated.DBTX) *OrderItemRepository {
	return &OrderItemRepository{queries: generated.New(db)}
}

// UpdateCurrentPrice sets current_price on every order item of bizItemID.
func (r *OrderItemRepository) UpdateCurrentPrice(ctx context.Context, bizItemID string, price domain.Money) (int64, error) {
	return r.queries.UpdateOrderItemPrice(ctx, generated.UpdateOrderItemPriceParams{
		BizItemID:    bizItemID,
		CurrentPrice: int64(price),
	})
}
