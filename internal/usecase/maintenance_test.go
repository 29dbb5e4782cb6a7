package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/tixeats/walletsettle/internal/domain"
	"github.com/tixeats/walletsettle/internal/usecase"
	"github.com/tixeats/walletsettle/internal/usecase/mocks"
)

func TestMaintenanceWorker_RunOnce(t *testing.T) {
	f := newEngineFixture(t)
	f.addWallet(domain.OwnerCustomer, "u1", 0)

	old := time.Now().UTC().Add(-60 * 24 * time.Hour)
	f.markers.Put(&domain.Marker{Key: domain.MarkerKey{Source: "s", CorrelationID: "old"}, State: domain.MarkerApplied, UpdatedAt: old})
	f.markers.Put(&domain.Marker{Key: domain.MarkerKey{Source: "s", CorrelationID: "stuck"}, State: domain.MarkerPending, UpdatedAt: old})

	ctx := context.Background()
	_, err := f.engine.Apply(ctx, domain.NewGatewayCharge(domain.EventChargeSuccess, "ref-1", "u1", 100))
	require.NoError(t, err)

	outbox := f.ledger.Outbox()
	require.Len(t, outbox, 1)
	require.NoError(t, f.outbox.MarkPublished(ctx, outbox[0].ID, old))

	worker := usecase.NewMaintenanceWorker(usecase.MaintenanceConfig{
		Guard:      f.guard,
		OutboxRepo: f.outbox,
		Metrics:    f.metrics,
		Logger:     zerolog.Nop(),
	})

	require.NoError(t, worker.RunOnce(ctx))

	_, ok := f.markers.Marker(domain.MarkerKey{Source: "s", CorrelationID: "old"})
	assert.False(t, ok)
	_, ok = f.markers.Marker(domain.MarkerKey{Source: "s", CorrelationID: "stuck"})
	assert.True(t, ok)
	_, ok = f.markers.Marker(domain.MarkerKey{Source: domain.EventChargeSuccess, CorrelationID: "ref-1"})
	assert.True(t, ok)

	assert.Empty(t, f.ledger.Outbox())
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.MarkersCleaned))
}

func TestMaintenanceWorker_RunOnce_CleanupError(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockMarkerStore(ctrl)
	outbox := mocks.NewMockOutboxRepository(ctrl)

	store.EXPECT().DeleteAppliedBefore(gomock.Any(), gomock.Any()).Return(int64(0), errors.New("timeout"))

	worker := usecase.NewMaintenanceWorker(usecase.MaintenanceConfig{
		Guard:      usecase.NewIdempotencyGuard(store, testLease, zerolog.Nop()),
		OutboxRepo: outbox,
		Logger:     zerolog.Nop(),
	})

	require.Error(t, worker.RunOnce(context.Background()))
}

func TestMaintenanceWorker_Start_StopsOnCancel(t *testing.T) {
	f := newEngineFixture(t)

	worker := usecase.NewMaintenanceWorker(usecase.MaintenanceConfig{
		Guard:      f.guard,
		OutboxRepo: f.outbox,
		Logger:     zerolog.Nop(),
		Interval:   10 * time.Millisecond,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := worker.Start(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
