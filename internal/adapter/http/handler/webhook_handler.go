package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/tixeats/walletsettle/internal/adapter/http/dto"
	"github.com/tixeats/walletsettle/internal/domain"
)

// WebhookService applies inbound events.
type WebhookService interface {
	Handle(ctx context.Context, env *domain.Envelope) (*domain.TransferResult, error)
}

// PriceSyncService updates catalog prices on order items.
type PriceSyncService interface {
	UpdateItemPrice(ctx context.Context, update domain.ItemPriceUpdate) (int64, error)
}

// WebhookHandler handles the order, gateway and item price webhooks.
type WebhookHandler struct {
	webhooks  WebhookService
	priceSync PriceSyncService
	logger    zerolog.Logger
}

// NewWebhookHandler creates a new WebhookHandler.
func NewWebhookHandler(webhooks WebhookService, priceSync PriceSyncService, logger zerolog.Logger) *WebhookHandler {
	return &WebhookHandler{
		webhooks:  webhooks,
		priceSync: priceSync,
		logger:    logger,
	}
}

// Orders handles the order-status trigger.
func (h *WebhookHandler) Orders(w http.ResponseWriter, r *http.Request) {
	var req dto.OrderWebhookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	h.apply(w, r, req.ToEnvelope(), "Order processed successfully")
}

// Gateway handles payment gateway webhooks.
func (h *WebhookHandler) Gateway(w http.ResponseWriter, r *http.Request) {
	var req dto.GatewayWebhookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	h.apply(w, r, req.ToEnvelope(), "Webhook processed successfully")
}

func (h *WebhookHandler) apply(w http.ResponseWriter, r *http.Request, env *domain.Envelope, message string) {
	result, err := h.webhooks.Handle(r.Context(), env)
	if err != nil {
		status := webhookStatus(err)
		h.logger.Error().
			Err(err).
			Str("event", env.Event).
			Str("class", string(domain.Classify(err))).
			Int("status", status).
			Msg("webhook failed")

		writeError(w, status, errorMessage(err, status), "")
		return
	}

	h.logger.Info().
		Str("event", env.Event).
		Str("correlation_id", result.Intent.CorrelationID).
		Bool("replayed", result.Replayed).
		Msg("webhook processed")

	writeJSON(w, http.StatusOK, dto.MessageResponse{Message: message})
}

// ItemPrices handles catalog price changes.
func (h *WebhookHandler) ItemPrices(w http.ResponseWriter, r *http.Request) {
	var req dto.ItemPriceWebhookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	update, err := req.ToUpdate()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), "")
		return
	}

	updated, err := h.priceSync.UpdateItemPrice(r.Context(), update)
	if err != nil {
		status := webhookStatus(err)
		h.logger.Error().Err(err).Str("biz_item_id", update.BizItemID).Msg("item price update failed")
		writeError(w, status, errorMessage(err, status), "")
		return
	}

	h.logger.Info().
		Str("biz_item_id", update.BizItemID).
		Int64("order_items", updated).
		Msg("item price updated")

	writeJSON(w, http.StatusOK, dto.MessageResponse{Message: "Success"})
}
