package usecase

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tixeats/walletsettle/internal/domain"
)

// PriceSyncUseCase copies catalog price changes onto order items.
type PriceSyncUseCase struct {
	itemRepo OrderItemRepository
	logger   zerolog.Logger
}

// NewPriceSyncUseCase creates a new PriceSyncUseCase.
func NewPriceSyncUseCase(itemRepo OrderItemRepository, logger zerolog.Logger) *PriceSyncUseCase {
	return &PriceSyncUseCase{
		itemRepo: itemRepo,
		logger:   logger,
	}
}

// UpdateItemPrice sets current_price on every order item of the catalog
// item and returns the number of rows changed.
func (uc *PriceSyncUseCase) UpdateItemPrice(ctx context.Context, update domain.ItemPriceUpdate) (int64, error) {
	if update.BizItemID == "" {
		return 0, fmt.Errorf("%w: record.biz_item_id is required", domain.ErrMalformedPayload)
	}
	if update.Price.IsNegative() {
		return 0, domain.ErrInvalidAmount
	}

	updated, err := uc.itemRepo.UpdateCurrentPrice(ctx, update.BizItemID, update.Price)
	if err != nil {
		return 0, err
	}

	uc.logger.Info().
		Str("biz_item_id", update.BizItemID).
		Int64("price", int64(update.Price)).
		Int64("order_items", updated).
		Msg("order item prices updated")

	return updated, nil
}
