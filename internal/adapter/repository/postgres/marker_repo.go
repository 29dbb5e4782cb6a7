package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/tixeats/walletsettle/internal/domain"
	"github.com/tixeats/walletsettle/internal/infrastructure/postgres/generated"
)

// MarkerRepository implements usecase.MarkerStore on PostgreSQL.
type MarkerRepository struct {
	queries *generated.Queries
}

// NewMarkerRepository creates a new MarkerRepository.
func NewMarkerRepository(db generated.DBTX) *MarkerRepository {
	return &MarkerRepository{queries: generated.New(db)}
}

// Insert registers a pending marker unless one exists.
func (r *MarkerRepository) Insert(ctx context.Context, key domain.MarkerKey, now time.Time) (bool, error) {
	affected, err := r.queries.InsertMarker(ctx, generated.InsertMarkerParams{
		Source:        key.Source,
		CorrelationID: key.CorrelationID,
		CreatedAt:     timeToPgTimestamptz(now),
	})
	if err != nil {
		return false, err
	}

	return affected == 1, nil
}

// Get retrieves the marker for key.
func (r *MarkerRepository) Get(ctx context.Context, key domain.MarkerKey) (*domain.Marker, error) {
	row, err := r.queries.GetMarker(ctx, generated.GetMarkerParams{
		Source:        key.Source,
		CorrelationID: key.CorrelationID,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrMarkerNotFound
		}

		return nil, err
	}

	return &domain.Marker{
		Key:       domain.MarkerKey{Source: row.Source, CorrelationID: row.CorrelationID},
		State:     domain.MarkerState(row.State),
		Attempts:  int(row.Attempts),
		CreatedAt: row.CreatedAt.Time,
		UpdatedAt: row.UpdatedAt.Time,
	}, nil
}

// Reclaim moves a rejected or lease-expired marker back to pending. The
// conditional update lets exactly one concurrent caller win.
func (r *MarkerRepository) Reclaim(ctx context.Context, key domain.MarkerKey, lease time.Duration, now time.Time) (bool, error) {
	affected, err := r.queries.ReclaimMarker(ctx, generated.ReclaimMarkerParams{
		Source:        key.Source,
		CorrelationID: key.CorrelationID,
		UpdatedAt:     timeToPgTimestamptz(now),
		LeaseExpiry:   timeToPgTimestamptz(now.Add(-lease)),
	})
	if err != nil {
		return false, err
	}

	return affected == 1, nil
}

// Finalize moves a pending marker to its terminal state. A marker that is
// missing or already final yields domain.ErrMarkerNotFound.
func (r *MarkerRepository) Finalize(ctx context.Context, key domain.MarkerKey, state domain.MarkerState, now time.Time) error {
	affected, err := r.queries.FinalizeMarker(ctx, generated.FinalizeMarkerParams{
		Source:        key.Source,
		CorrelationID: key.CorrelationID,
		State:         string(state),
		UpdatedAt:     timeToPgTimestamptz(now),
	})
	if err != nil {
		return err
	}

	if affected == 0 {
		return domain.ErrMarkerNotFound
	}

	return nil
}

// DeleteAppliedBefore removes applied markers last updated before before.
func (r *MarkerRepository) DeleteAppliedBefore(ctx context.Context, before time.Time) (int64, error) {
	return r.queries.DeleteAppliedMarkersBefore(ctx, timeToPgTimestamptz(before))
}
