package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tixeats/walletsettle/internal/adapter/http/dto"
	"github.com/tixeats/walletsettle/internal/domain"
	"github.com/tixeats/walletsettle/internal/usecase"
)

// WalletService is the wallet admin surface.
type WalletService interface {
	CreateWallet(ctx context.Context, input usecase.CreateWalletInput) (*domain.Wallet, error)
	GetWallet(ctx context.Context, id string) (*domain.Wallet, error)
	GetWalletByOwner(ctx context.Context, ref domain.WalletRef) (*domain.Wallet, error)
	DeactivateWallet(ctx context.Context, id string) (*domain.Wallet, error)
	ReactivateWallet(ctx context.Context, id string) (*domain.Wallet, error)
	ListWallets(ctx context.Context, input usecase.ListWalletsInput) ([]*domain.Wallet, error)
	ListRecords(ctx context.Context, walletID string, limit, offset int) ([]*domain.TransactionRecord, error)
	GetTransaction(ctx context.Context, source, correlationID string) ([]*domain.TransactionRecord, error)
}

// WalletHandler handles wallet-related HTTP requests.
type WalletHandler struct {
	walletUC WalletService
}

// NewWalletHandler creates a new WalletHandler.
func NewWalletHandler(walletUC WalletService) *WalletHandler {
	return &WalletHandler{walletUC: walletUC}
}

// Create onboards a wallet for an owner.
func (h *WalletHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateWalletRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	wallet, err := h.walletUC.CreateWallet(r.Context(), req.ToUseCaseInput())
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to create wallet", errorMessage(err, status))
		return
	}

	writeJSON(w, http.StatusCreated, dto.WalletFromDomain(wallet))
}

// Get retrieves a wallet by ID.
func (h *WalletHandler) Get(w http.ResponseWriter, r *http.Request) {
	wallet, err := h.walletUC.GetWallet(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to get wallet", errorMessage(err, status))
		return
	}

	writeJSON(w, http.StatusOK, dto.WalletFromDomain(wallet))
}

// GetByOwner retrieves the wallet of an owner.
func (h *WalletHandler) GetByOwner(w http.ResponseWriter, r *http.Request) {
	ref := domain.WalletRef{
		OwnerKind: domain.OwnerKind(chi.URLParam(r, "kind")),
		OwnerID:   chi.URLParam(r, "ownerID"),
	}

	wallet, err := h.walletUC.GetWalletByOwner(r.Context(), ref)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to get wallet", errorMessage(err, status))
		return
	}

	writeJSON(w, http.StatusOK, dto.WalletFromDomain(wallet))
}

// Deactivate blocks transfers touching a wallet.
func (h *WalletHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, h.walletUC.DeactivateWallet)
}

// Reactivate lifts a deactivation.
func (h *WalletHandler) Reactivate(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, h.walletUC.ReactivateWallet)
}

func (h *WalletHandler) setActive(w http.ResponseWriter, r *http.Request, fn func(context.Context, string) (*domain.Wallet, error)) {
	wallet, err := fn(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to update wallet", errorMessage(err, status))
		return
	}

	writeJSON(w, http.StatusOK, dto.WalletFromDomain(wallet))
}

// List lists wallets with pagination.
func (h *WalletHandler) List(w http.ResponseWriter, r *http.Request) {
	wallets, err := h.walletUC.ListWallets(r.Context(), usecase.ListWalletsInput{
		Limit:  parseIntQuery(r, "limit", domain.DefaultPageSize),
		Offset: parseIntQuery(r, "offset", 0),
	})
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to list wallets", errorMessage(err, status))
		return
	}

	writeJSON(w, http.StatusOK, dto.ListWalletsResponse{
		Wallets: dto.WalletsFromDomain(wallets),
		Total:   int64(len(wallets)),
	})
}

// ListRecords lists a wallet's transaction records, newest first.
func (h *WalletHandler) ListRecords(w http.ResponseWriter, r *http.Request) {
	records, err := h.walletUC.ListRecords(
		r.Context(),
		chi.URLParam(r, "id"),
		parseIntQuery(r, "limit", domain.DefaultPageSize),
		parseIntQuery(r, "offset", 0),
	)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to list records", errorMessage(err, status))
		return
	}

	writeJSON(w, http.StatusOK, dto.ListRecordsResponse{
		Records: dto.RecordsFromDomain(records),
		Total:   int64(len(records)),
	})
}

// GetTransaction returns the legs written for one external event.
func (h *WalletHandler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	records, err := h.walletUC.GetTransaction(r.Context(), chi.URLParam(r, "source"), chi.URLParam(r, "id"))
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to get transaction", errorMessage(err, status))
		return
	}

	writeJSON(w, http.StatusOK, dto.ListRecordsResponse{
		Records: dto.RecordsFromDomain(records),
		Total:   int64(len(records)),
	})
}
