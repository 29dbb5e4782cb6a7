package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tixeats/walletsettle/internal/adapter/http/handler"
	apimiddleware "github.com/tixeats/walletsettle/internal/adapter/http/middleware"
	"github.com/tixeats/walletsettle/internal/domain"
	"github.com/tixeats/walletsettle/internal/infrastructure/metrics"
	"github.com/tixeats/walletsettle/internal/usecase"
	"github.com/tixeats/walletsettle/internal/usecase/mocks"
)

type testServer struct {
	router  http.Handler
	ledger  *mocks.InMemoryLedger
	metrics *metrics.Metrics
}

func newTestServer(t *testing.T, opts ...func(*RouterConfig)) *testServer {
	t.Helper()

	ledger := mocks.NewInMemoryLedger()
	now := time.Now().UTC()
	for _, w := range []*domain.Wallet{
		{ID: "w-u1", OwnerKind: domain.OwnerCustomer, OwnerID: "u1", Balance: 20000, OpeningBalance: 20000},
		{ID: "w-b1", OwnerKind: domain.OwnerBusiness, OwnerID: "b1"},
		{ID: "w-tixeats", OwnerKind: domain.OwnerPlatform, OwnerID: "tixeats"},
	} {
		w.Active = true
		w.CreatedAt = now
		w.UpdatedAt = now
		ledger.AddWallet(w)
	}

	parties := mocks.NewInMemoryPartyDirectory()
	parties.AddOrder(&domain.Order{ID: "order-1", UserID: "u1", BusinessID: "b1", Status: domain.OrderStatusCompleted, Total: 10000})
	parties.AddOrder(&domain.Order{ID: "order-2", UserID: "u1", BusinessID: "b1", Status: "pending", Total: 10000})
	parties.AddCustomer("ada@example.com", "u1")
	parties.AddBusiness("RCP_b1", "b1")

	m := metrics.New(prometheus.NewRegistry())
	txMgr := mocks.NewInMemoryTransactionManager(ledger)
	wallets := mocks.NewInMemoryWalletRepository(ledger)
	records := mocks.NewInMemoryRecordRepository(ledger)
	outbox := mocks.NewInMemoryOutboxRepository(ledger)
	ids := mocks.NewIDGenerator()

	guard := usecase.NewIdempotencyGuard(mocks.NewInMemoryMarkerStore(), 30*time.Second, zerolog.Nop())
	engine := usecase.NewTransferEngine(txMgr, wallets, records, outbox, guard, mocks.NewRetrier(3), ids, m, zerolog.Nop(), 5*time.Second)
	router := usecase.NewEventRouter(parties, usecase.RouterConfig{
		FeeRate:         decimal.RequireFromString("0.015"),
		PlatformOwnerID: "tixeats",
		SubunitDivisor:  100,
	})

	cfg := RouterConfig{
		WebhookHandler: handler.NewWebhookHandler(
			usecase.NewWebhookUseCase(router, engine, m, zerolog.Nop()),
			usecase.NewPriceSyncUseCase(mocks.NewInMemoryOrderItemRepository(map[string]int64{"item-1": 2}), zerolog.Nop()),
			zerolog.Nop(),
		),
		WalletHandler:         handler.NewWalletHandler(usecase.NewWalletUseCase(txMgr, wallets, records, outbox, ids, m, zerolog.Nop())),
		ReconciliationHandler: handler.NewReconciliationHandler(usecase.NewReconciliationUseCase(wallets, records, mocks.NewInMemoryLedgerRepository(ledger))),
		HealthHandler:         handler.NewHealthHandler(handler.PingerFunc(func(ctx context.Context) error { return nil }), nil),
		Metrics:               m,
		Logger:                zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &testServer{router: NewRouter(cfg), ledger: ledger, metrics: m}
}

func (s *testServer) do(method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) balance(t *testing.T, kind domain.OwnerKind, ownerID string) domain.Money {
	t.Helper()
	w, ok := s.ledger.Wallet(domain.WalletRef{OwnerKind: kind, OwnerID: ownerID})
	require.True(t, ok)
	return w.Balance
}

func TestNewRouter_HealthEndpointAvailable(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = srv.do(http.MethodGet, "/ready", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestNewRouter_OrderSettlement(t *testing.T) {
	srv := newTestServer(t)
	body := `{"record":{"order_id":"order-1","order_status":"completed"}}`

	for i := 0; i < 2; i++ {
		rec := srv.do(http.MethodPost, "/webhooks/orders", body)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.JSONEq(t, `{"message":"Order processed successfully"}`, rec.Body.String())
		assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	}

	assert.Equal(t, domain.Money(9850), srv.balance(t, domain.OwnerCustomer, "u1"))
	assert.Equal(t, domain.Money(10000), srv.balance(t, domain.OwnerBusiness, "b1"))
	assert.Equal(t, domain.Money(150), srv.balance(t, domain.OwnerPlatform, "tixeats"))
	assert.Len(t, srv.ledger.Records(), 3)

	rec := srv.do(http.MethodGet, "/api/v1/transactions/"+domain.SourceOrderSettlement+"/order-1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"total":3`)

	rec = srv.do(http.MethodGet, "/api/v1/reconciliation/report", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ledger_consistent":true`)
}

func TestNewRouter_PendingOrderRejected(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(http.MethodPost, "/webhooks/orders", `{"record":{"order_id":"order-2","order_status":"pending"}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, srv.ledger.Records())
	assert.Equal(t, domain.Money(20000), srv.balance(t, domain.OwnerCustomer, "u1"))
}

func TestNewRouter_GatewayEvents(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(http.MethodPost, "/webhooks/paystack",
		`{"event":"charge.success","data":{"id":1,"reference":"ref-1","amount":500000,"customer":{"email":"ada@example.com"}}}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, domain.Money(25000), srv.balance(t, domain.OwnerCustomer, "u1"))

	rec = srv.do(http.MethodPost, "/webhooks/paystack",
		`{"event":"transfer.failed","data":{"reference":"trf-1","amount":100000,"recipient":{"recipient_code":"RCP_b1"}}}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, domain.Money(0), srv.balance(t, domain.OwnerBusiness, "b1"))
	records := srv.ledger.Records()
	require.Len(t, records, 2)
	assert.Equal(t, domain.TransactionFailed, records[1].Status)

	rec = srv.do(http.MethodPost, "/webhooks/paystack",
		`{"event":"transfer.success","data":{"reference":"trf-2","amount":100000,"recipient":{"recipient_code":"RCP_b1"}}}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = srv.do(http.MethodPost, "/webhooks/paystack", `{"event":"charge.dispute.create","data":{"reference":"d-1"}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestNewRouter_ItemPrices(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(http.MethodPost, "/webhooks/item-prices", `{"record":{"biz_item_id":"item-1","item_price":2500}}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Success"}`, rec.Body.String())
}

func TestNewRouter_WebhookPreflight(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(http.MethodOptions, "/webhooks/paystack", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestNewRouter_WalletAdmin(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(http.MethodPost, "/api/v1/wallets", `{"owner_kind":"business","owner_id":"b2","opening_balance":500}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = srv.do(http.MethodGet, "/api/v1/owners/business/b2/wallet", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"balance":500`)

	rec = srv.do(http.MethodPost, "/api/v1/wallets", `{"owner_kind":"business","owner_id":"b2"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = srv.do(http.MethodPost, "/api/v1/wallets/w-u1/deactivate", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = srv.do(http.MethodPost, "/webhooks/orders", `{"record":{"order_id":"order-1","order_status":"completed"}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, domain.Money(20000), srv.balance(t, domain.OwnerCustomer, "u1"))
}

func TestNewRouter_RateLimiterBlocksExcessRequests(t *testing.T) {
	srv := newTestServer(t, func(cfg *RouterConfig) {
		cfg.RateLimiter = apimiddleware.NewRateLimiter(1, 1, cfg.Metrics)
	})

	send := func() int {
		req := httptest.NewRequest(http.MethodPost, "/webhooks/item-prices", strings.NewReader(`{"record":{"biz_item_id":"item-1","item_price":1}}`))
		req.RemoteAddr = "1.2.3.4:1234"
		rec := httptest.NewRecorder()
		srv.router.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, send())
	assert.Equal(t, http.StatusTooManyRequests, send())
}

func TestNewRouter_RegistersKeyRoutes(t *testing.T) {
	srv := newTestServer(t, func(cfg *RouterConfig) {
		cfg.MetricsHandler = http.NotFoundHandler()
	})

	chiRoutes, ok := srv.router.(chi.Router)
	if !ok {
		t.Fatal("router does not implement chi.Routes")
	}

	seen := map[string]bool{}
	if err := chi.Walk(chiRoutes, func(method string, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		seen[method+" "+route] = true
		return nil
	}); err != nil {
		t.Fatalf("walk failed: %v", err)
	}

	expected := []string{
		"GET /health",
		"GET /ready",
		"GET /metrics",
		"POST /webhooks/orders",
		"POST /webhooks/paystack",
		"POST /webhooks/item-prices",
		"POST /api/v1/wallets/",
		"GET /api/v1/wallets/{id}",
		"GET /api/v1/transactions/{source}/{id}",
		"GET /api/v1/reconciliation/report",
	}

	for _, route := range expected {
		if !seen[route] {
			t.Fatalf("expected route %s to be registered", route)
		}
	}
}
