package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tixeats/walletsettle/internal/adapter/http/dto"
	"github.com/tixeats/walletsettle/internal/usecase"
)

// ReconciliationService checks recorded balances against the records.
type ReconciliationService interface {
	ReconcileWallet(ctx context.Context, walletID string) (*usecase.ReconciliationResult, error)
	GenerateReconciliationReport(ctx context.Context) (*usecase.ReconciliationReport, error)
}

// ReconciliationHandler handles reconciliation requests.
type ReconciliationHandler struct {
	reconciliationUC ReconciliationService
}

// NewReconciliationHandler creates a new ReconciliationHandler.
func NewReconciliationHandler(reconciliationUC ReconciliationService) *ReconciliationHandler {
	return &ReconciliationHandler{reconciliationUC: reconciliationUC}
}

// Wallet reconciles one wallet.
func (h *ReconciliationHandler) Wallet(w http.ResponseWriter, r *http.Request) {
	result, err := h.reconciliationUC.ReconcileWallet(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to reconcile wallet", errorMessage(err, status))
		return
	}

	writeJSON(w, http.StatusOK, dto.ReconciliationFromUseCase(result))
}

// Report reconciles every wallet and checks the ledger totals.
func (h *ReconciliationHandler) Report(w http.ResponseWriter, r *http.Request) {
	report, err := h.reconciliationUC.GenerateReconciliationReport(r.Context())
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to generate report", errorMessage(err, status))
		return
	}

	writeJSON(w, http.StatusOK, dto.ReportFromUseCase(report))
}
