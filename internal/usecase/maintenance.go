package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/tixeats/walletsettle/internal/infrastructure/metrics"
)

// MaintenanceWorker periodically removes old applied markers and published
// outbox events.
type MaintenanceWorker struct {
	guard           *IdempotencyGuard
	outboxRepo      OutboxRepository
	metrics         *metrics.Metrics
	logger          zerolog.Logger
	markerRetention time.Duration
	outboxRetention time.Duration
	interval        time.Duration
}

// MaintenanceConfig configures a MaintenanceWorker.
type MaintenanceConfig struct {
	Guard           *IdempotencyGuard
	OutboxRepo      OutboxRepository
	Metrics         *metrics.Metrics
	Logger          zerolog.Logger
	MarkerRetention time.Duration // Applied markers older than this are removed
	OutboxRetention time.Duration // Published events older than this are removed
	Interval        time.Duration
}

// NewMaintenanceWorker creates a new MaintenanceWorker.
func NewMaintenanceWorker(cfg MaintenanceConfig) *MaintenanceWorker {
	if cfg.MarkerRetention == 0 {
		cfg.MarkerRetention = 30 * 24 * time.Hour
	}
	if cfg.OutboxRetention == 0 {
		cfg.OutboxRetention = 7 * 24 * time.Hour
	}
	if cfg.Interval == 0 {
		cfg.Interval = time.Hour
	}

	return &MaintenanceWorker{
		guard:           cfg.Guard,
		outboxRepo:      cfg.OutboxRepo,
		metrics:         cfg.Metrics,
		logger:          cfg.Logger,
		markerRetention: cfg.MarkerRetention,
		outboxRetention: cfg.OutboxRetention,
		interval:        cfg.Interval,
	}
}

// Start runs the worker until ctx is cancelled.
func (w *MaintenanceWorker) Start(ctx context.Context) error {
	w.logger.Info().
		Dur("interval", w.interval).
		Dur("marker_retention", w.markerRetention).
		Msg("maintenance worker started")

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info().Msg("maintenance worker shutting down")
			return ctx.Err()
		case <-ticker.C:
			if err := w.RunOnce(ctx); err != nil {
				w.logger.Error().Err(err).Msg("maintenance run failed")
			}
		}
	}
}

// RunOnce performs a single cleanup pass.
func (w *MaintenanceWorker) RunOnce(ctx context.Context) error {
	removed, err := w.guard.Cleanup(ctx, w.markerRetention)
	if err != nil {
		return err
	}
	if w.metrics != nil {
		w.metrics.MarkersCleaned.Add(float64(removed))
	}

	if err := w.outboxRepo.DeletePublished(ctx, time.Now().UTC().Add(-w.outboxRetention)); err != nil {
		return err
	}

	w.logger.Info().Int64("markers_removed", removed).Msg("maintenance run completed")

	return nil
}
