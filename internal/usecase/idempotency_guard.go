package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/tixeats/walletsettle/internal/domain"
)

// IdempotencyGuard ensures an external event is applied at most once.
type IdempotencyGuard struct {
	store  MarkerStore
	lease  time.Duration
	logger zerolog.Logger
	now    func() time.Time
}

// NewIdempotencyGuard creates a new IdempotencyGuard.
func NewIdempotencyGuard(store MarkerStore, lease time.Duration, logger zerolog.Logger) *IdempotencyGuard {
	if lease <= 0 {
		lease = DefaultMarkerLease
	}
	return &IdempotencyGuard{
		store:  store,
		lease:  lease,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Begin registers key. Proceed must be followed by Commit or Rollback.
func (g *IdempotencyGuard) Begin(ctx context.Context, key domain.MarkerKey) (domain.BeginOutcome, error) {
	// A marker can disappear between Insert and Get when cleanup runs, so
	// the registration is attempted twice.
	for attempt := 0; attempt < 2; attempt++ {
		now := g.now()

		inserted, err := g.store.Insert(ctx, key, now)
		if err != nil {
			return 0, fmt.Errorf("%w: insert marker: %w", domain.ErrStoreUnavailable, err)
		}
		if inserted {
			return domain.BeginProceed, nil
		}

		marker, err := g.store.Get(ctx, key)
		if errors.Is(err, domain.ErrMarkerNotFound) {
			continue
		}
		if err != nil {
			return 0, fmt.Errorf("%w: get marker: %w", domain.ErrStoreUnavailable, err)
		}

		if marker.State == domain.MarkerApplied {
			return domain.BeginAlreadyApplied, nil
		}
		if !marker.Reclaimable(now, g.lease) {
			return domain.BeginInProgressConflict, nil
		}

		reclaimed, err := g.store.Reclaim(ctx, key, g.lease, now)
		if err != nil {
			return 0, fmt.Errorf("%w: reclaim marker: %w", domain.ErrStoreUnavailable, err)
		}
		if !reclaimed {
			return domain.BeginInProgressConflict, nil
		}

		g.logger.Info().
			Str("key", key.String()).
			Str("previous_state", string(marker.State)).
			Int("attempts", marker.Attempts+1).
			Msg("reclaimed idempotency marker")

		return domain.BeginProceed, nil
	}

	return domain.BeginInProgressConflict, nil
}

// Commit marks key as applied.
func (g *IdempotencyGuard) Commit(ctx context.Context, key domain.MarkerKey) error {
	if err := g.store.Finalize(ctx, key, domain.MarkerApplied, g.now()); err != nil {
		return fmt.Errorf("%w: finalize marker: %w", domain.ErrStoreUnavailable, err)
	}
	return nil
}

// Rollback marks key as rejected so a later delivery can retry.
func (g *IdempotencyGuard) Rollback(ctx context.Context, key domain.MarkerKey) error {
	if err := g.store.Finalize(ctx, key, domain.MarkerRejected, g.now()); err != nil {
		return fmt.Errorf("%w: finalize marker: %w", domain.ErrStoreUnavailable, err)
	}
	return nil
}

// Cleanup removes applied markers older than retention.
func (g *IdempotencyGuard) Cleanup(ctx context.Context, retention time.Duration) (int64, error) {
	return g.store.DeleteAppliedBefore(ctx, g.now().Add(-retention))
}
