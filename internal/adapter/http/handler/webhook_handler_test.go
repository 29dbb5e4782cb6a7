package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tixeats/walletsettle/internal/adapter/http/dto"
	"github.com/tixeats/walletsettle/internal/domain"
)

type webhookServiceStub struct {
	handleFn func(ctx context.Context, env *domain.Envelope) (*domain.TransferResult, error)
	calls    int
}

func (s *webhookServiceStub) Handle(ctx context.Context, env *domain.Envelope) (*domain.TransferResult, error) {
	s.calls++
	return s.handleFn(ctx, env)
}

type priceSyncStub struct {
	updateFn func(ctx context.Context, update domain.ItemPriceUpdate) (int64, error)
}

func (s *priceSyncStub) UpdateItemPrice(ctx context.Context, update domain.ItemPriceUpdate) (int64, error) {
	return s.updateFn(ctx, update)
}

func appliedResult(correlationID string, replayed bool) *domain.TransferResult {
	return &domain.TransferResult{
		Intent:   &domain.Intent{CorrelationID: correlationID},
		Applied:  !replayed,
		Replayed: replayed,
	}
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) dto.ErrorResponse {
	t.Helper()
	var resp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestWebhookHandler_Orders(t *testing.T) {
	var captured *domain.Envelope
	svc := &webhookServiceStub{handleFn: func(ctx context.Context, env *domain.Envelope) (*domain.TransferResult, error) {
		captured = env
		return appliedResult("order-1", false), nil
	}}
	h := NewWebhookHandler(svc, nil, zerolog.Nop())

	body := `{"record":{"order_id":"order-1","order_status":"completed"}}`
	rec := httptest.NewRecorder()
	h.Orders(rec, httptest.NewRequest(http.MethodPost, "/webhooks/orders", strings.NewReader(body)))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp dto.MessageResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Order processed successfully", resp.Message)

	require.NotNil(t, captured)
	assert.Equal(t, domain.EventOrderTrigger, captured.Event)
	assert.Equal(t, "order-1", captured.Order.OrderID)
}

func TestWebhookHandler_Gateway_StatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantError  string
	}{
		{
			name:       "unsupported event",
			err:        fmt.Errorf("%w: charge.dispute.create", domain.ErrUnsupportedEvent),
			wantStatus: http.StatusBadRequest,
			wantError:  "unsupported event: charge.dispute.create",
		},
		{
			name:       "concurrent duplicate",
			err:        domain.ErrConcurrentDuplicate,
			wantStatus: http.StatusConflict,
			wantError:  domain.ErrConcurrentDuplicate.Error(),
		},
		{
			name:       "insufficient funds",
			err:        fmt.Errorf("wallet w1: %w", domain.ErrInsufficientFunds),
			wantStatus: http.StatusUnprocessableEntity,
			wantError:  "wallet w1: wallet balance would become negative",
		},
		{
			name:       "store failure",
			err:        errors.New("dial tcp: connection refused"),
			wantStatus: http.StatusInternalServerError,
			wantError:  "Internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &webhookServiceStub{handleFn: func(ctx context.Context, env *domain.Envelope) (*domain.TransferResult, error) {
				return nil, tt.err
			}}
			h := NewWebhookHandler(svc, nil, zerolog.Nop())

			body := `{"event":"charge.success","data":{"reference":"ref-1","amount":100,"customer":{"email":"ada@example.com"}}}`
			rec := httptest.NewRecorder()
			h.Gateway(rec, httptest.NewRequest(http.MethodPost, "/webhooks/paystack", strings.NewReader(body)))

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantError, decodeError(t, rec).Error)
		})
	}
}

func TestWebhookHandler_Gateway_Replay(t *testing.T) {
	svc := &webhookServiceStub{handleFn: func(ctx context.Context, env *domain.Envelope) (*domain.TransferResult, error) {
		assert.Equal(t, "ref-1", env.Gateway.EventID())
		return appliedResult("ref-1", true), nil
	}}
	h := NewWebhookHandler(svc, nil, zerolog.Nop())

	body := `{"event":"charge.success","data":{"reference":"ref-1","amount":100,"customer":{"email":"ada@example.com"}}}`
	rec := httptest.NewRecorder()
	h.Gateway(rec, httptest.NewRequest(http.MethodPost, "/webhooks/paystack", strings.NewReader(body)))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Webhook processed successfully")
}

func TestWebhookHandler_InvalidBody(t *testing.T) {
	svc := &webhookServiceStub{}
	h := NewWebhookHandler(svc, nil, zerolog.Nop())

	rec := httptest.NewRecorder()
	h.Gateway(rec, httptest.NewRequest(http.MethodPost, "/webhooks/paystack", strings.NewReader(`{"event":`)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid request body", decodeError(t, rec).Error)
	assert.Zero(t, svc.calls)
}

func TestWebhookHandler_ItemPrices(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		updateErr  error
		wantStatus int
		wantUpdate *domain.ItemPriceUpdate
	}{
		{
			name:       "updates price",
			body:       `{"record":{"biz_item_id":"item-1","item_price":2500}}`,
			wantStatus: http.StatusOK,
			wantUpdate: &domain.ItemPriceUpdate{BizItemID: "item-1", Price: 2500},
		},
		{
			name:       "fractional price",
			body:       `{"record":{"biz_item_id":"item-1","item_price":12.5}}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "store failure",
			body:       `{"record":{"biz_item_id":"item-1","item_price":2500}}`,
			updateErr:  errors.New("connection reset"),
			wantStatus: http.StatusInternalServerError,
			wantUpdate: &domain.ItemPriceUpdate{BizItemID: "item-1", Price: 2500},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got *domain.ItemPriceUpdate
			sync := &priceSyncStub{updateFn: func(ctx context.Context, update domain.ItemPriceUpdate) (int64, error) {
				got = &update
				return 2, tt.updateErr
			}}
			h := NewWebhookHandler(nil, sync, zerolog.Nop())

			rec := httptest.NewRecorder()
			h.ItemPrices(rec, httptest.NewRequest(http.MethodPost, "/webhooks/item-prices", strings.NewReader(tt.body)))

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantUpdate, got)
			if tt.wantStatus == http.StatusOK {
				assert.JSONEq(t, `{"message":"Success"}`, rec.Body.String())
			}
		})
	}
}
