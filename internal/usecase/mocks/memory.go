package mocks

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/tixeats/walletsettle/internal/domain"
	"github.com/tixeats/walletsettle/internal/usecase"
)

// InMemoryLedger is shared state behind the in-memory repositories. Writes
// staged on an InMemoryTransaction become visible only on Commit, and
// Commit re-checks wallet versions so concurrent writers behave like
// conditional updates against a real store.
type InMemoryLedger struct {
	mu         sync.Mutex
	wallets    map[string]*domain.Wallet
	owners     map[domain.WalletRef]string
	records    []*domain.TransactionRecord
	recordKeys map[recordKey]bool
	outbox     []*domain.OutboxEvent
	commits    int
}

type recordKey struct {
	source        string
	correlationID string
	legIndex      int
}

func keyOf(r *domain.TransactionRecord) recordKey {
	return recordKey{source: r.Source, correlationID: r.CorrelationID, legIndex: r.LegIndex}
}

// NewInMemoryLedger creates an empty ledger.
func NewInMemoryLedger() *InMemoryLedger {
	return &InMemoryLedger{
		wallets:    make(map[string]*domain.Wallet),
		owners:     make(map[domain.WalletRef]string),
		recordKeys: make(map[recordKey]bool),
	}
}

// AddWallet stores a wallet directly, bypassing transactions.
func (l *InMemoryLedger) AddWallet(w *domain.Wallet) {
	l.mu.Lock()
	defer l.mu.Unlock()
	cp := *w
	l.wallets[w.ID] = &cp
	l.owners[w.Ref()] = w.ID
}

// Wallet returns a snapshot of the committed wallet for ref.
func (l *InMemoryLedger) Wallet(ref domain.WalletRef) (*domain.Wallet, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	id, ok := l.owners[ref]
	if !ok {
		return nil, false
	}
	cp := *l.wallets[id]
	return &cp, true
}

// Records returns the committed records in insertion order.
func (l *InMemoryLedger) Records() []*domain.TransactionRecord {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]*domain.TransactionRecord, len(l.records))
	copy(out, l.records)
	return out
}

// Outbox returns the committed outbox events.
func (l *InMemoryLedger) Outbox() []*domain.OutboxEvent {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]*domain.OutboxEvent, len(l.outbox))
	copy(out, l.outbox)
	return out
}

// Commits returns the number of committed transactions.
func (l *InMemoryLedger) Commits() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.commits
}

type walletUpdate struct {
	updatedAt       time.Time
	id              string
	expectedVersion int64
	balance         domain.Money
}

// InMemoryTransaction stages writes until Commit.
type InMemoryTransaction struct {
	ledger     *InMemoryLedger
	wallets    []*domain.Wallet
	updates    []walletUpdate
	records    []*domain.TransactionRecord
	outbox     []*domain.OutboxEvent
	done       bool
	CommitFunc func(ctx context.Context) error
}

// Commit applies staged writes atomically.
func (t *InMemoryTransaction) Commit(ctx context.Context) error {
	if t.done {
		return errors.New("transaction already closed")
	}
	t.done = true

	if t.CommitFunc != nil {
		if err := t.CommitFunc(ctx); err != nil {
			return err
		}
	}

	l := t.ledger
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, u := range t.updates {
		w, ok := l.wallets[u.id]
		if !ok {
			return domain.ErrWalletNotFound
		}
		if w.Version != u.expectedVersion {
			return domain.ErrVersionConflict
		}
	}
	for _, w := range t.wallets {
		if _, exists := l.owners[w.Ref()]; exists {
			return domain.ErrWalletExists
		}
	}
	for _, r := range t.records {
		if l.recordKeys[keyOf(r)] {
			return domain.ErrDuplicateRecord
		}
	}

	for _, w := range t.wallets {
		l.wallets[w.ID] = w
		l.owners[w.Ref()] = w.ID
	}
	for _, u := range t.updates {
		w := l.wallets[u.id]
		w.Balance = u.balance
		w.Version++
		w.UpdatedAt = u.updatedAt
	}
	for _, r := range t.records {
		l.records = append(l.records, r)
		l.recordKeys[keyOf(r)] = true
	}
	l.outbox = append(l.outbox, t.outbox...)
	l.commits++

	return nil
}

// Rollback discards staged writes.
func (t *InMemoryTransaction) Rollback(ctx context.Context) error {
	t.done = true
	t.wallets = nil
	t.updates = nil
	t.records = nil
	t.outbox = nil
	return nil
}

func asMemoryTx(tx usecase.Transaction) (*InMemoryTransaction, error) {
	mtx, ok := tx.(*InMemoryTransaction)
	if !ok {
		return nil, errors.New("not an in-memory transaction")
	}
	if mtx.done {
		return nil, errors.New("transaction already closed")
	}
	return mtx, nil
}

// InMemoryTransactionManager begins InMemoryTransactions.
type InMemoryTransactionManager struct {
	ledger    *InMemoryLedger
	BeginFunc func(ctx context.Context) (usecase.Transaction, error)
}

// NewInMemoryTransactionManager creates a manager over ledger.
func NewInMemoryTransactionManager(ledger *InMemoryLedger) *InMemoryTransactionManager {
	return &InMemoryTransactionManager{ledger: ledger}
}

// Begin starts a transaction.
func (m *InMemoryTransactionManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &InMemoryTransaction{ledger: m.ledger}, nil
}

// InMemoryWalletRepository implements usecase.WalletRepository.
type InMemoryWalletRepository struct {
	ledger *InMemoryLedger

	GetByOwnerTxFunc           func(ctx context.Context, tx usecase.Transaction, ref domain.WalletRef) (*domain.Wallet, error)
	UpdateBalanceIfVersionFunc func(ctx context.Context, tx usecase.Transaction, id string, expectedVersion int64, balance domain.Money, updatedAt time.Time) error
}

// NewInMemoryWalletRepository creates a wallet repository over ledger.
func NewInMemoryWalletRepository(ledger *InMemoryLedger) *InMemoryWalletRepository {
	return &InMemoryWalletRepository{ledger: ledger}
}

func (r *InMemoryWalletRepository) Create(ctx context.Context, tx usecase.Transaction, wallet *domain.Wallet) error {
	mtx, err := asMemoryTx(tx)
	if err != nil {
		return err
	}
	if _, exists := r.ledger.Wallet(wallet.Ref()); exists {
		return domain.ErrWalletExists
	}
	cp := *wallet
	mtx.wallets = append(mtx.wallets, &cp)
	return nil
}

func (r *InMemoryWalletRepository) GetByID(ctx context.Context, id string) (*domain.Wallet, error) {
	r.ledger.mu.Lock()
	defer r.ledger.mu.Unlock()
	w, ok := r.ledger.wallets[id]
	if !ok {
		return nil, domain.ErrWalletNotFound
	}
	cp := *w
	return &cp, nil
}

func (r *InMemoryWalletRepository) GetByOwner(ctx context.Context, ref domain.WalletRef) (*domain.Wallet, error) {
	if w, ok := r.ledger.Wallet(ref); ok {
		return w, nil
	}
	return nil, domain.ErrWalletNotFound
}

func (r *InMemoryWalletRepository) GetByOwnerTx(ctx context.Context, tx usecase.Transaction, ref domain.WalletRef) (*domain.Wallet, error) {
	if r.GetByOwnerTxFunc != nil {
		return r.GetByOwnerTxFunc(ctx, tx, ref)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return r.GetByOwner(ctx, ref)
}

func (r *InMemoryWalletRepository) UpdateBalanceIfVersion(ctx context.Context, tx usecase.Transaction, id string, expectedVersion int64, balance domain.Money, updatedAt time.Time) error {
	if r.UpdateBalanceIfVersionFunc != nil {
		return r.UpdateBalanceIfVersionFunc(ctx, tx, id, expectedVersion, balance, updatedAt)
	}
	mtx, err := asMemoryTx(tx)
	if err != nil {
		return err
	}

	current, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if current.Version != expectedVersion {
		return domain.ErrVersionConflict
	}

	mtx.updates = append(mtx.updates, walletUpdate{
		id:              id,
		expectedVersion: expectedVersion,
		balance:         balance,
		updatedAt:       updatedAt,
	})
	return nil
}

func (r *InMemoryWalletRepository) SetActive(ctx context.Context, id string, active bool, updatedAt time.Time) error {
	r.ledger.mu.Lock()
	defer r.ledger.mu.Unlock()
	w, ok := r.ledger.wallets[id]
	if !ok {
		return domain.ErrWalletNotFound
	}
	w.Active = active
	w.UpdatedAt = updatedAt
	return nil
}

func (r *InMemoryWalletRepository) List(ctx context.Context, limit, offset int) ([]*domain.Wallet, error) {
	r.ledger.mu.Lock()
	defer r.ledger.mu.Unlock()

	wallets := make([]*domain.Wallet, 0, len(r.ledger.wallets))
	for _, w := range r.ledger.wallets {
		cp := *w
		wallets = append(wallets, &cp)
	}
	sort.Slice(wallets, func(i, j int) bool { return wallets[i].ID < wallets[j].ID })

	return page(wallets, limit, offset), nil
}

// InMemoryRecordRepository implements usecase.TransactionRecordRepository.
type InMemoryRecordRepository struct {
	ledger *InMemoryLedger

	CreateFunc func(ctx context.Context, tx usecase.Transaction, record *domain.TransactionRecord) error
}

// NewInMemoryRecordRepository creates a record repository over ledger.
func NewInMemoryRecordRepository(ledger *InMemoryLedger) *InMemoryRecordRepository {
	return &InMemoryRecordRepository{ledger: ledger}
}

func (r *InMemoryRecordRepository) Create(ctx context.Context, tx usecase.Transaction, record *domain.TransactionRecord) error {
	if r.CreateFunc != nil {
		if err := r.CreateFunc(ctx, tx, record); err != nil {
			return err
		}
	}
	mtx, err := asMemoryTx(tx)
	if err != nil {
		return err
	}

	r.ledger.mu.Lock()
	duplicate := r.ledger.recordKeys[keyOf(record)]
	r.ledger.mu.Unlock()
	if duplicate {
		return domain.ErrDuplicateRecord
	}

	cp := *record
	mtx.records = append(mtx.records, &cp)
	return nil
}

func (r *InMemoryRecordRepository) GetByCorrelation(ctx context.Context, source, correlationID string) ([]*domain.TransactionRecord, error) {
	var out []*domain.TransactionRecord
	for _, rec := range r.ledger.Records() {
		if rec.Source == source && rec.CorrelationID == correlationID {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LegIndex < out[j].LegIndex })
	return out, nil
}

func (r *InMemoryRecordRepository) ListByWallet(ctx context.Context, walletID string, limit, offset int) ([]*domain.TransactionRecord, error) {
	var out []*domain.TransactionRecord
	records := r.ledger.Records()
	for i := len(records) - 1; i >= 0; i-- {
		if records[i].WalletID == walletID {
			out = append(out, records[i])
		}
	}
	return page(out, limit, offset), nil
}

func (r *InMemoryRecordRepository) SumByWallet(ctx context.Context, walletID string) (domain.Money, error) {
	var sum domain.Money
	for _, rec := range r.ledger.Records() {
		if rec.WalletID != walletID {
			continue
		}
		var err error
		sum, err = sum.Add(rec.SignedAmount())
		if err != nil {
			return 0, err
		}
	}
	return sum, nil
}

// InMemoryLedgerRepository implements usecase.LedgerRepository.
type InMemoryLedgerRepository struct {
	ledger *InMemoryLedger
}

// NewInMemoryLedgerRepository creates a ledger repository over ledger.
func NewInMemoryLedgerRepository(ledger *InMemoryLedger) *InMemoryLedgerRepository {
	return &InMemoryLedgerRepository{ledger: ledger}
}

func (r *InMemoryLedgerRepository) CheckConsistency(ctx context.Context) (domain.Money, domain.Money, error) {
	r.ledger.mu.Lock()
	defer r.ledger.mu.Unlock()

	var total, expected domain.Money
	for _, w := range r.ledger.wallets {
		total += w.Balance
		expected += w.OpeningBalance
	}
	for _, rec := range r.ledger.records {
		expected += rec.SignedAmount()
	}
	return total, expected, nil
}

// InMemoryOutboxRepository implements usecase.OutboxRepository.
type InMemoryOutboxRepository struct {
	ledger *InMemoryLedger

	CreateFunc func(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error
}

// NewInMemoryOutboxRepository creates an outbox repository over ledger.
func NewInMemoryOutboxRepository(ledger *InMemoryLedger) *InMemoryOutboxRepository {
	return &InMemoryOutboxRepository{ledger: ledger}
}

func (r *InMemoryOutboxRepository) Create(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error {
	if r.CreateFunc != nil {
		if err := r.CreateFunc(ctx, tx, event); err != nil {
			return err
		}
	}
	mtx, err := asMemoryTx(tx)
	if err != nil {
		return err
	}
	mtx.outbox = append(mtx.outbox, event)
	return nil
}

func (r *InMemoryOutboxRepository) GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error) {
	var out []*domain.OutboxEvent
	for _, e := range r.ledger.Outbox() {
		if !e.Published {
			out = append(out, e)
		}
	}
	return page(out, limit, 0), nil
}

func (r *InMemoryOutboxRepository) MarkPublished(ctx context.Context, id string, publishedAt time.Time) error {
	r.ledger.mu.Lock()
	defer r.ledger.mu.Unlock()
	for _, e := range r.ledger.outbox {
		if e.ID == id {
			e.Published = true
			at := publishedAt
			e.PublishedAt = &at
			return nil
		}
	}
	return errors.New("outbox event not found")
}

func (r *InMemoryOutboxRepository) DeletePublished(ctx context.Context, before time.Time) error {
	r.ledger.mu.Lock()
	defer r.ledger.mu.Unlock()
	kept := r.ledger.outbox[:0]
	for _, e := range r.ledger.outbox {
		if e.Published && e.PublishedAt != nil && e.PublishedAt.Before(before) {
			continue
		}
		kept = append(kept, e)
	}
	r.ledger.outbox = kept
	return nil
}

// InMemoryMarkerStore implements usecase.MarkerStore.
type InMemoryMarkerStore struct {
	mu      sync.Mutex
	markers map[domain.MarkerKey]*domain.Marker

	InsertFunc   func(ctx context.Context, key domain.MarkerKey, now time.Time) (bool, error)
	FinalizeFunc func(ctx context.Context, key domain.MarkerKey, state domain.MarkerState, now time.Time) error
}

// NewInMemoryMarkerStore creates an empty marker store.
func NewInMemoryMarkerStore() *InMemoryMarkerStore {
	return &InMemoryMarkerStore{markers: make(map[domain.MarkerKey]*domain.Marker)}
}

// Marker returns a snapshot of the marker for key.
func (s *InMemoryMarkerStore) Marker(key domain.MarkerKey) (*domain.Marker, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.markers[key]
	if !ok {
		return nil, false
	}
	cp := *m
	return &cp, true
}

// Put stores a marker directly.
func (s *InMemoryMarkerStore) Put(m *domain.Marker) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *m
	s.markers[m.Key] = &cp
}

func (s *InMemoryMarkerStore) Insert(ctx context.Context, key domain.MarkerKey, now time.Time) (bool, error) {
	if s.InsertFunc != nil {
		return s.InsertFunc(ctx, key, now)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.markers[key]; exists {
		return false, nil
	}
	s.markers[key] = &domain.Marker{Key: key, State: domain.MarkerPending, Attempts: 1, CreatedAt: now, UpdatedAt: now}
	return true, nil
}

func (s *InMemoryMarkerStore) Get(ctx context.Context, key domain.MarkerKey) (*domain.Marker, error) {
	if m, ok := s.Marker(key); ok {
		return m, nil
	}
	return nil, domain.ErrMarkerNotFound
}

func (s *InMemoryMarkerStore) Reclaim(ctx context.Context, key domain.MarkerKey, lease time.Duration, now time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.markers[key]
	if !ok || !m.Reclaimable(now, lease) {
		return false, nil
	}
	m.State = domain.MarkerPending
	m.Attempts++
	m.UpdatedAt = now
	return true, nil
}

func (s *InMemoryMarkerStore) Finalize(ctx context.Context, key domain.MarkerKey, state domain.MarkerState, now time.Time) error {
	if s.FinalizeFunc != nil {
		return s.FinalizeFunc(ctx, key, state, now)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.markers[key]
	if !ok || m.State != domain.MarkerPending {
		return domain.ErrMarkerNotFound
	}
	m.State = state
	m.UpdatedAt = now
	return nil
}

func (s *InMemoryMarkerStore) DeleteAppliedBefore(ctx context.Context, before time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var removed int64
	for key, m := range s.markers {
		if m.State == domain.MarkerApplied && m.UpdatedAt.Before(before) {
			delete(s.markers, key)
			removed++
		}
	}
	return removed, nil
}

// InMemoryPartyDirectory implements usecase.PartyDirectory.
type InMemoryPartyDirectory struct {
	mu         sync.Mutex
	orders     map[string]*domain.Order
	customers  map[string]string
	businesses map[string]string
	Lookups    int
}

// NewInMemoryPartyDirectory creates an empty directory.
func NewInMemoryPartyDirectory() *InMemoryPartyDirectory {
	return &InMemoryPartyDirectory{
		orders:     make(map[string]*domain.Order),
		customers:  make(map[string]string),
		businesses: make(map[string]string),
	}
}

// AddOrder registers an order.
func (d *InMemoryPartyDirectory) AddOrder(o *domain.Order) {
	d.mu.Lock()
	defer d.mu.Unlock()
	cp := *o
	d.orders[o.ID] = &cp
}

// AddCustomer maps email to a customer id.
func (d *InMemoryPartyDirectory) AddCustomer(email, customerID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.customers[email] = customerID
}

// AddBusiness maps a payout recipient code to a business id.
func (d *InMemoryPartyDirectory) AddBusiness(recipientCode, businessID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.businesses[recipientCode] = businessID
}

func (d *InMemoryPartyDirectory) OrderByID(ctx context.Context, orderID string) (*domain.Order, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Lookups++
	o, ok := d.orders[orderID]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	cp := *o
	return &cp, nil
}

func (d *InMemoryPartyDirectory) CustomerByEmail(ctx context.Context, email string) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Lookups++
	id, ok := d.customers[email]
	if !ok {
		return "", domain.ErrPartyNotFound
	}
	return id, nil
}

func (d *InMemoryPartyDirectory) BusinessByRecipientCode(ctx context.Context, recipientCode string) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Lookups++
	id, ok := d.businesses[recipientCode]
	if !ok {
		return "", domain.ErrPartyNotFound
	}
	return id, nil
}

// InMemoryOrderItemRepository implements usecase.OrderItemRepository.
type InMemoryOrderItemRepository struct {
	mu     sync.Mutex
	Prices map[string]domain.Money
	Items  map[string]int64
}

// NewInMemoryOrderItemRepository creates a repository where items maps a
// catalog item id to its number of order items.
func NewInMemoryOrderItemRepository(items map[string]int64) *InMemoryOrderItemRepository {
	return &InMemoryOrderItemRepository{Prices: make(map[string]domain.Money), Items: items}
}

func (r *InMemoryOrderItemRepository) UpdateCurrentPrice(ctx context.Context, bizItemID string, price domain.Money) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Prices[bizItemID] = price
	return r.Items[bizItemID], nil
}

// InMemoryCache implements usecase.Cache.
type InMemoryCache struct {
	mu   sync.Mutex
	data map[string]string
}

// NewInMemoryCache creates an empty cache.
func NewInMemoryCache() *InMemoryCache {
	return &InMemoryCache{data: make(map[string]string)}
}

func (c *InMemoryCache) Get(ctx context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	if !ok {
		return "", usecase.ErrCacheMiss
	}
	return v, nil
}

func (c *InMemoryCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	return nil
}

func (c *InMemoryCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

// Retrier retries domain.ErrVersionConflict without sleeping.
type Retrier struct {
	MaxRetries int
	Attempts   int
	mu         sync.Mutex
}

// NewRetrier creates a Retrier allowing maxRetries retries.
func NewRetrier(maxRetries int) *Retrier {
	return &Retrier{MaxRetries: maxRetries}
}

func (r *Retrier) Retry(ctx context.Context, operation func() error) error {
	for retry := 0; ; retry++ {
		r.mu.Lock()
		r.Attempts++
		r.mu.Unlock()

		err := operation()
		if err == nil || !errors.Is(err, domain.ErrVersionConflict) || retry >= r.MaxRetries {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
	}
}

// IDGenerator produces sequential ids.
type IDGenerator struct {
	mu      sync.Mutex
	counter int
}

// NewIDGenerator creates a sequential id generator.
func NewIDGenerator() *IDGenerator {
	return &IDGenerator{}
}

func (g *IDGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.counter++
	return "id-" + strconv.Itoa(g.counter)
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
