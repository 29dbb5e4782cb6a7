package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/tixeats/walletsettle/internal/adapter/http/handler"
	"github.com/tixeats/walletsettle/internal/adapter/http/middleware"
	"github.com/tixeats/walletsettle/internal/infrastructure/metrics"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	WebhookHandler        *handler.WebhookHandler
	WalletHandler         *handler.WalletHandler
	ReconciliationHandler *handler.ReconciliationHandler
	HealthHandler         *handler.HealthHandler
	RateLimiter           *middleware.RateLimiter
	Metrics               *metrics.Metrics
	// MetricsHandler serves /metrics when set.
	MetricsHandler http.Handler
	Logger         zerolog.Logger
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger(cfg.Logger))
	r.Use(middleware.Recovery(cfg.Logger))
	if cfg.Metrics != nil {
		r.Use(middleware.Metrics(cfg.Metrics))
	}

	// Health endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	if cfg.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", cfg.MetricsHandler)
	}

	// Webhooks
	r.Route("/webhooks", func(r chi.Router) {
		if cfg.RateLimiter != nil {
			r.Use(cfg.RateLimiter.Limit)
		}
		r.Use(middleware.CORS)

		r.Post("/orders", cfg.WebhookHandler.Orders)
		r.Post("/paystack", cfg.WebhookHandler.Gateway)
		r.Post("/item-prices", cfg.WebhookHandler.ItemPrices)
	})

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		if cfg.RateLimiter != nil {
			r.Use(cfg.RateLimiter.Limit)
		}

		// Wallets
		r.Route("/wallets", func(r chi.Router) {
			r.Post("/", cfg.WalletHandler.Create)
			r.Get("/", cfg.WalletHandler.List)
			r.Get("/{id}", cfg.WalletHandler.Get)
			r.Get("/{id}/records", cfg.WalletHandler.ListRecords)
			r.Post("/{id}/deactivate", cfg.WalletHandler.Deactivate)
			r.Post("/{id}/reactivate", cfg.WalletHandler.Reactivate)
		})
		r.Get("/owners/{kind}/{ownerID}/wallet", cfg.WalletHandler.GetByOwner)

		// Transactions
		r.Get("/transactions/{source}/{id}", cfg.WalletHandler.GetTransaction)

		// Reconciliation
		r.Route("/reconciliation", func(r chi.Router) {
			r.Get("/wallets/{id}", cfg.ReconciliationHandler.Wallet)
			r.Get("/report", cfg.ReconciliationHandler.Report)
		})
	})

	return r
}
