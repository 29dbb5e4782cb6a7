package usecase

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/tixeats/walletsettle/internal/domain"
	"github.com/tixeats/walletsettle/internal/infrastructure/metrics"
)

// WebhookUseCase routes inbound events and applies the resulting intents.
type WebhookUseCase struct {
	router  *EventRouter
	engine  *TransferEngine
	metrics *metrics.Metrics
	logger  zerolog.Logger
}

// NewWebhookUseCase creates a new WebhookUseCase.
func NewWebhookUseCase(router *EventRouter, engine *TransferEngine, metrics *metrics.Metrics, logger zerolog.Logger) *WebhookUseCase {
	return &WebhookUseCase{
		router:  router,
		engine:  engine,
		metrics: metrics,
		logger:  logger,
	}
}

// Handle routes env and applies the intent. No partial success is ever
// returned: either every leg was applied (now or earlier) or err is set.
func (uc *WebhookUseCase) Handle(ctx context.Context, env *domain.Envelope) (*domain.TransferResult, error) {
	intent, err := uc.router.Route(ctx, env)
	if errors.Is(err, domain.ErrInexactConversion) {
		// Funds moved at the gateway but cannot be booked in minor units;
		// the gateway will not redeliver, so this needs an operator.
		event := uc.logger.Error().Err(err).Str("event", env.Event)
		if env.Gateway != nil {
			event = event.Str("reference", env.Gateway.EventID())
			if env.Gateway.Amount != nil {
				event = event.Int64("gateway_amount", *env.Gateway.Amount)
			}
		}
		event.Msg("gateway amount not representable, manual booking required")
		uc.count(env.Event, OutcomeInexactAmount)
		return nil, err
	}
	if err != nil {
		uc.logger.Warn().Err(err).Str("event", env.Event).Msg("event rejected by router")
		uc.count(env.Event, string(domain.Classify(err)))
		return nil, err
	}

	result, err := uc.engine.Apply(ctx, intent)
	if err != nil {
		uc.count(env.Event, string(domain.Classify(err)))
		return nil, err
	}

	if result.Replayed {
		uc.count(env.Event, "replayed")
	} else {
		uc.count(env.Event, "applied")
	}

	return result, nil
}

func (uc *WebhookUseCase) count(event, outcome string) {
	if uc.metrics == nil {
		return
	}
	uc.metrics.WebhookEvents.WithLabelValues(event, outcome).Inc()
}
