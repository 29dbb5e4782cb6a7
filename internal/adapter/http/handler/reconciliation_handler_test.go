package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tixeats/walletsettle/internal/adapter/http/dto"
	"github.com/tixeats/walletsettle/internal/domain"
	"github.com/tixeats/walletsettle/internal/usecase"
)

type reconciliationStub struct {
	reportErr error
}

func (s *reconciliationStub) ReconcileWallet(ctx context.Context, walletID string) (*usecase.ReconciliationResult, error) {
	if walletID != "w1" {
		return nil, domain.ErrWalletNotFound
	}
	return &usecase.ReconciliationResult{WalletID: "w1", RecordedBalance: 700, CalculatedBalance: 700, IsReconciled: true}, nil
}

func (s *reconciliationStub) GenerateReconciliationReport(ctx context.Context) (*usecase.ReconciliationReport, error) {
	if s.reportErr != nil {
		return nil, s.reportErr
	}
	return &usecase.ReconciliationReport{TotalWallets: 3, ReconciledWallets: 3, LedgerConsistent: true}, nil
}

func newReconciliationRouter(h *ReconciliationHandler) http.Handler {
	r := chi.NewRouter()
	r.Get("/reconciliation/wallets/{id}", h.Wallet)
	r.Get("/reconciliation/report", h.Report)
	return r
}

func TestReconciliationHandler_Wallet(t *testing.T) {
	router := newReconciliationRouter(NewReconciliationHandler(&reconciliationStub{}))

	rec := serve(router, http.MethodGet, "/reconciliation/wallets/w1", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp dto.ReconciliationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.IsReconciled)
	assert.Equal(t, int64(700), resp.RecordedBalance)

	rec = serve(router, http.MethodGet, "/reconciliation/wallets/w404", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestReconciliationHandler_Report(t *testing.T) {
	router := newReconciliationRouter(NewReconciliationHandler(&reconciliationStub{}))

	rec := serve(router, http.MethodGet, "/reconciliation/report", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp dto.ReconciliationReportResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 3, resp.TotalWallets)
	assert.True(t, resp.LedgerConsistent)

	router = newReconciliationRouter(NewReconciliationHandler(&reconciliationStub{reportErr: errors.New("timeout")}))
	rec = serve(router, http.MethodGet, "/reconciliation/report", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
