package eventpublisher

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"

	"github.com/tixeats/walletsettle/internal/domain"
	"github.com/tixeats/walletsettle/internal/infrastructure/metrics"
	"github.com/tixeats/walletsettle/internal/usecase"
)

func TestProcessOncePublishesAndMarks(t *testing.T) {
	repo := &stubOutboxRepo{
		events: []*domain.OutboxEvent{{ID: "evt-1", AggregateID: "charge.success/ref-1", EventType: domain.EventTypeTransferApplied}},
	}
	pub := &stubPublisher{}
	ep, m := newTestPublisher(repo, pub)

	fetched, err := ep.ProcessOnce(context.Background())
	if err != nil {
		t.Fatalf("ProcessOnce failed: %v", err)
	}
	if fetched != 1 {
		t.Fatalf("fetched = %d, want 1", fetched)
	}

	if len(pub.published) != 1 {
		t.Fatalf("expected one published event, got %d", len(pub.published))
	}
	if len(repo.marked) != 1 || repo.marked[0] != "evt-1" {
		t.Fatalf("expected event to be marked published, got %#v", repo.marked)
	}
	if got := testutil.ToFloat64(m.OutboxPublished.WithLabelValues(domain.EventTypeTransferApplied)); got != 1 {
		t.Fatalf("expected published metric 1, got %v", got)
	}
}

func TestProcessOnceHoldsBackFailedAggregate(t *testing.T) {
	repo := &stubOutboxRepo{
		events: []*domain.OutboxEvent{
			{ID: "evt-1", AggregateID: "w1", EventType: domain.EventTypeWalletCreated},
			{ID: "evt-2", AggregateID: "order_settlement/order-1", EventType: domain.EventTypeTransferApplied},
			{ID: "evt-3", AggregateID: "w1", EventType: domain.EventTypeTransferApplied},
		},
	}
	pub := &stubPublisher{
		errorsByID: map[string]error{"evt-1": errors.New("broker unavailable")},
	}
	ep, m := newTestPublisher(repo, pub)

	if _, err := ep.ProcessOnce(context.Background()); err != nil {
		t.Fatalf("ProcessOnce returned error: %v", err)
	}

	if len(pub.published) != 1 || pub.published[0].ID != "evt-2" {
		t.Fatalf("expected only evt-2 to be published, got %#v", pub.published)
	}
	if len(repo.marked) != 1 || repo.marked[0] != "evt-2" {
		t.Fatalf("expected only evt-2 to be marked, got %#v", repo.marked)
	}
	if got := testutil.ToFloat64(m.OutboxFailures.WithLabelValues(domain.EventTypeWalletCreated)); got != 1 {
		t.Fatalf("expected failure metric 1, got %v", got)
	}
}

func TestProcessOnceFetchError(t *testing.T) {
	repo := &stubOutboxRepo{fetchErr: errors.New("db down")}
	ep, _ := newTestPublisher(repo, &stubPublisher{})

	if _, err := ep.ProcessOnce(context.Background()); err == nil {
		t.Fatal("expected fetch error")
	}
}

func TestDrainStopsOnShortBatch(t *testing.T) {
	repo := &stubOutboxRepo{}
	for i := 0; i < 3; i++ {
		repo.events = append(repo.events, &domain.OutboxEvent{ID: fmt.Sprintf("evt-%d", i), AggregateID: fmt.Sprintf("a%d", i)})
	}
	repo.consume = true
	pub := &stubPublisher{}
	ep, _ := newTestPublisher(repo, pub)
	ep.batchSize = 2

	ep.drain(context.Background())

	if len(pub.published) != 3 {
		t.Fatalf("expected backlog drained in one tick, got %d", len(pub.published))
	}
	if repo.fetches != 2 {
		t.Fatalf("fetches = %d, want 2", repo.fetches)
	}
}

func TestStartStopsOnContextCancellation(t *testing.T) {
	repo := &stubOutboxRepo{}
	pub := &stubPublisher{}
	ep, _ := newTestPublisher(repo, pub)
	ep.interval = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- ep.Start(ctx)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("publisher did not stop after cancel")
	}
}

func TestLogPublisher(t *testing.T) {
	p := NewLogPublisher(zerolog.Nop())
	err := p.Publish(context.Background(), &domain.OutboxEvent{ID: "evt-1", Payload: map[string]any{"amount": 100}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func newTestPublisher(repo *stubOutboxRepo, pub *stubPublisher) (*EventPublisher, *metrics.Metrics) {
	m := metrics.New(prometheus.NewRegistry())
	return NewEventPublisher(Config{
		OutboxRepo: repo,
		Publisher:  pub,
		Metrics:    m,
		Logger:     zerolog.Nop(),
		BatchSize:  10,
		Interval:   5 * time.Millisecond,
	}), m
}

type stubOutboxRepo struct {
	fetchErr error
	events   []*domain.OutboxEvent
	marked   []string
	// consume drops marked events from later fetches.
	consume bool
	fetches int
}

func (s *stubOutboxRepo) Create(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error {
	return nil
}

func (s *stubOutboxRepo) GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error) {
	s.fetches++
	if s.fetchErr != nil {
		return nil, s.fetchErr
	}
	if len(s.events) <= limit {
		return append([]*domain.OutboxEvent(nil), s.events...), nil
	}
	return append([]*domain.OutboxEvent(nil), s.events[:limit]...), nil
}

func (s *stubOutboxRepo) MarkPublished(ctx context.Context, id string, publishedAt time.Time) error {
	s.marked = append(s.marked, id)
	if s.consume {
		for i, e := range s.events {
			if e.ID == id {
				s.events = append(s.events[:i], s.events[i+1:]...)
				break
			}
		}
	}
	return nil
}

func (s *stubOutboxRepo) DeletePublished(ctx context.Context, before time.Time) error {
	return nil
}

type stubPublisher struct {
	published  []*domain.OutboxEvent
	errorsByID map[string]error
}

func (s *stubPublisher) Publish(ctx context.Context, event *domain.OutboxEvent) error {
	if err := s.errorsByID[event.ID]; err != nil {
		return err
	}
	s.published = append(s.published, event)
	return nil
}
