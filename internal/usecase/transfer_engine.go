package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/tixeats/walletsettle/internal/domain"
	"github.com/tixeats/walletsettle/internal/infrastructure/metrics"
)

// finalizeTimeout bounds guard bookkeeping that runs after the request
// context may already be done.
const finalizeTimeout = 5 * time.Second

// TransferEngine applies transfer intents atomically and at most once.
type TransferEngine struct {
	txManager  TransactionManager
	walletRepo WalletRepository
	recordRepo TransactionRecordRepository
	outboxRepo OutboxRepository
	guard      *IdempotencyGuard
	retrier    Retrier
	idGen      IDGenerator
	metrics    *metrics.Metrics
	logger     zerolog.Logger
	timeout    time.Duration
	now        func() time.Time
}

// NewTransferEngine creates a new TransferEngine.
func NewTransferEngine(
	txManager TransactionManager,
	walletRepo WalletRepository,
	recordRepo TransactionRecordRepository,
	outboxRepo OutboxRepository,
	guard *IdempotencyGuard,
	retrier Retrier,
	idGen IDGenerator,
	metrics *metrics.Metrics,
	logger zerolog.Logger,
	timeout time.Duration,
) *TransferEngine {
	if timeout <= 0 {
		timeout = DefaultTransactionTimeout
	}
	return &TransferEngine{
		txManager:  txManager,
		walletRepo: walletRepo,
		recordRepo: recordRepo,
		outboxRepo: outboxRepo,
		guard:      guard,
		retrier:    retrier,
		idGen:      idGen,
		metrics:    metrics,
		logger:     logger,
		timeout:    timeout,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Apply validates intent, registers it with the idempotency guard and
// applies every leg in one store transaction. A repeated intent returns the
// records written by the first successful application.
func (e *TransferEngine) Apply(ctx context.Context, intent *domain.Intent) (*domain.TransferResult, error) {
	start := time.Now()

	result, err := e.apply(ctx, intent)

	e.observe(intent, result, err, time.Since(start))

	return result, err
}

func (e *TransferEngine) apply(ctx context.Context, intent *domain.Intent) (*domain.TransferResult, error) {
	// 1. Validate without touching the store
	if err := intent.Validate(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	// 2. Every leg must name an existing, active wallet. A wallet closed
	// after the intent was applied must not turn a redelivery into a rejection.
	if err := e.resolveWallets(ctx, intent); err != nil {
		if domain.Classify(err) != domain.ClassRejected {
			return nil, err
		}
		prior, lookupErr := e.replay(ctx, intent)
		if lookupErr != nil || len(prior.Legs) == 0 {
			return nil, err
		}
		return prior, nil
	}

	// 3. Register the intent
	key := intent.Key()

	outcome, err := e.guard.Begin(ctx, key)
	if err != nil {
		return nil, err
	}

	switch outcome {
	case domain.BeginAlreadyApplied:
		return e.replay(ctx, intent)
	case domain.BeginInProgressConflict:
		return nil, fmt.Errorf("%w: %s", domain.ErrConcurrentDuplicate, key)
	}

	// 4. Apply all legs as one unit, retrying optimistic conflicts
	var records []*domain.TransactionRecord
	err = e.retrier.Retry(ctx, func() error {
		var applyErr error
		records, applyErr = e.applyLegs(ctx, intent)
		if errors.Is(applyErr, domain.ErrVersionConflict) && e.metrics != nil {
			e.metrics.VersionConflicts.Inc()
		}
		return applyErr
	})

	finalizeCtx, finalizeCancel := context.WithTimeout(context.WithoutCancel(ctx), finalizeTimeout)
	defer finalizeCancel()

	if errors.Is(err, domain.ErrDuplicateRecord) {
		// Records for this key were committed by an earlier invocation whose
		// marker was never finalized.
		if commitErr := e.guard.Commit(finalizeCtx, key); commitErr != nil {
			e.logger.Warn().Err(commitErr).Str("key", key.String()).Msg("failed to heal idempotency marker")
		}
		return e.replay(finalizeCtx, intent)
	}

	if err != nil {
		if rollbackErr := e.guard.Rollback(finalizeCtx, key); rollbackErr != nil {
			e.logger.Error().Err(rollbackErr).Str("key", key.String()).Msg("failed to roll back idempotency marker")
		}
		if errors.Is(err, domain.ErrVersionConflict) {
			return nil, fmt.Errorf("%w: %w", domain.ErrRetryableStore, err)
		}
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return nil, fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
		}
		return nil, err
	}

	// 5. The legs are durable; a marker left pending is healed on redelivery.
	if err := e.guard.Commit(finalizeCtx, key); err != nil {
		e.logger.Error().Err(err).Str("key", key.String()).Msg("failed to commit idempotency marker")
	}

	return &domain.TransferResult{
		Intent:  intent,
		Legs:    records,
		Applied: true,
	}, nil
}

func (e *TransferEngine) resolveWallets(ctx context.Context, intent *domain.Intent) error {
	seen := make(map[domain.WalletRef]bool, len(intent.Legs))
	for _, leg := range intent.Legs {
		if seen[leg.Wallet] {
			continue
		}
		seen[leg.Wallet] = true

		wallet, err := e.walletRepo.GetByOwner(ctx, leg.Wallet)
		if err != nil {
			return fmt.Errorf("resolve %s: %w", leg.Wallet, err)
		}
		if err := wallet.CheckUsable(); err != nil {
			return fmt.Errorf("resolve %s: %w", leg.Wallet, err)
		}
	}
	return nil
}

// applyLegs runs one attempt inside a single store transaction.
func (e *TransferEngine) applyLegs(ctx context.Context, intent *domain.Intent) ([]*domain.TransactionRecord, error) {
	tx, err := e.txManager.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: begin: %w", domain.ErrStoreUnavailable, err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// Read wallets inside the transaction; their versions drive the
	// conditional updates below.
	wallets := make(map[domain.WalletRef]*domain.Wallet, len(intent.Legs))
	running := make(map[domain.WalletRef]domain.Money, len(intent.Legs))
	for _, leg := range intent.Legs {
		if _, ok := wallets[leg.Wallet]; ok {
			continue
		}
		wallet, err := e.walletRepo.GetByOwnerTx(ctx, tx, leg.Wallet)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", leg.Wallet, err)
		}
		if err := wallet.CheckUsable(); err != nil {
			return nil, fmt.Errorf("load %s: %w", leg.Wallet, err)
		}
		wallets[leg.Wallet] = wallet
		running[leg.Wallet] = wallet.Balance
	}

	now := e.now()

	records := make([]*domain.TransactionRecord, 0, len(intent.Legs))
	for idx, leg := range intent.Legs {
		wallet := wallets[leg.Wallet]

		balance, err := running[leg.Wallet].Add(leg.Delta())
		if err != nil {
			return nil, fmt.Errorf("leg %d: %w", idx, err)
		}
		running[leg.Wallet] = balance

		records = append(records, &domain.TransactionRecord{
			ID:            e.idGen.Generate(),
			WalletID:      wallet.ID,
			OwnerKind:     wallet.OwnerKind,
			OwnerID:       wallet.OwnerID,
			Type:          leg.Type,
			Status:        leg.RecordStatus(),
			IntentKind:    intent.Kind,
			Source:        intent.Source,
			CorrelationID: intent.CorrelationID,
			Amount:        leg.Amount,
			BalanceAfter:  balance,
			LegIndex:      idx,
			CreatedAt:     now,
		})
	}

	// Records go first so a redelivered intent hits the unique key before
	// any balance check.
	for _, record := range records {
		if err := e.recordRepo.Create(ctx, tx, record); err != nil {
			return nil, err
		}
	}

	// Update each changed wallet once, in id order (deadlock prevention)
	changed := make([]*domain.Wallet, 0, len(wallets))
	for ref, wallet := range wallets {
		if running[ref] != wallet.Balance {
			changed = append(changed, wallet)
		}
	}
	sort.Slice(changed, func(i, j int) bool { return changed[i].ID < changed[j].ID })

	for _, wallet := range changed {
		balance := running[wallet.Ref()]
		if balance.IsNegative() {
			return nil, fmt.Errorf("%w: %s", domain.ErrInsufficientFunds, wallet.Ref())
		}
		if err := e.walletRepo.UpdateBalanceIfVersion(ctx, tx, wallet.ID, wallet.Version, balance, now); err != nil {
			return nil, err
		}
	}

	if err := e.outboxRepo.Create(ctx, tx, e.appliedEvent(intent, records, now)); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("%w: commit: %w", domain.ErrStoreUnavailable, err)
	}

	return records, nil
}

func (e *TransferEngine) replay(ctx context.Context, intent *domain.Intent) (*domain.TransferResult, error) {
	records, err := e.recordRepo.GetByCorrelation(ctx, intent.Source, intent.CorrelationID)
	if err != nil {
		return nil, fmt.Errorf("%w: load records: %w", domain.ErrStoreUnavailable, err)
	}

	return &domain.TransferResult{
		Intent:   intent,
		Legs:     records,
		Applied:  true,
		Replayed: true,
	}, nil
}

func (e *TransferEngine) appliedEvent(intent *domain.Intent, records []*domain.TransactionRecord, now time.Time) *domain.OutboxEvent {
	legs := make([]map[string]any, 0, len(records))
	for _, r := range records {
		legs = append(legs, map[string]any{
			"record_id":  r.ID,
			"wallet_id":  r.WalletID,
			"owner_kind": string(r.OwnerKind),
			"owner_id":   r.OwnerID,
			"type":       string(r.Type),
			"status":     string(r.Status),
			"amount":     int64(r.Amount),
		})
	}

	return &domain.OutboxEvent{
		ID:            e.idGen.Generate(),
		AggregateID:   intent.Key().String(),
		AggregateType: domain.AggregateTypeTransfer,
		EventType:     domain.EventTypeTransferApplied,
		Payload: map[string]any{
			"kind":           string(intent.Kind),
			"source":         intent.Source,
			"correlation_id": intent.CorrelationID,
			"legs":           legs,
			"event_at":       now.Format(time.RFC3339Nano),
		},
		CreatedAt: now,
		Published: false,
	}
}

func (e *TransferEngine) observe(intent *domain.Intent, result *domain.TransferResult, err error, elapsed time.Duration) {
	kind := string(intent.Kind)

	if err != nil {
		class := domain.Classify(err)
		reason := domain.Reason(err)

		event := e.logger.Warn()
		if class == domain.ClassRetryable {
			event = e.logger.Error()
		}
		event.Err(err).
			Str("kind", kind).
			Str("key", intent.Key().String()).
			Str("class", string(class)).
			Msg("transfer intent failed")

		if e.metrics != nil {
			e.metrics.IntentsFailed.WithLabelValues(kind, string(class), reason).Inc()
		}
		return
	}

	if result.Replayed {
		e.logger.Info().
			Str("kind", kind).
			Str("key", intent.Key().String()).
			Int("legs", len(result.Legs)).
			Msg("transfer intent replayed")

		if e.metrics != nil {
			e.metrics.IntentsReplayed.WithLabelValues(kind).Inc()
		}
		return
	}

	e.logger.Info().
		Str("kind", kind).
		Str("key", intent.Key().String()).
		Int("legs", len(result.Legs)).
		Dur("elapsed", elapsed).
		Msg("transfer intent applied")

	if e.metrics != nil {
		e.metrics.IntentsApplied.WithLabelValues(kind).Inc()
		e.metrics.ApplyDuration.WithLabelValues(kind).Observe(elapsed.Seconds())
		for _, r := range result.Legs {
			e.metrics.LegAmount.WithLabelValues(kind).Observe(float64(r.Amount))
		}
	}
}
