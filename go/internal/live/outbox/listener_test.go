package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/tgfriperie/cavalin-tcg-novo/go/internal/live/events"
	"github.com/tgfriperie/cavalin-tcg-novo/go/internal/models"
)

type memStore struct {
	mu     sync.Mutex
	events []OutboxEvent
	sent   map[uuid.UUID]bool
}

func newMemStore(evs ...OutboxEvent) *memStore {
	return &memStore{events: evs, sent: make(map[uuid.UUID]bool)}
}

func (s *memStore) InsertOutboxEvent(_ context.Context, auctionID uuid.UUID, eventType events.EventType, payload []byte) (uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ev := OutboxEvent{ID: uuid.New(), AuctionID: auctionID, EventType: eventType, Payload: payload}
	s.events = append(s.events, ev)
	return ev.ID, nil
}

func (s *memStore) FetchOutboxByID(_ context.Context, id uuid.UUID) (*OutboxEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.events {
		if e.ID == id && !s.sent[id] {
			cp := e
			return &cp, nil
		}
	}
	return nil, models.ErrNotFound
}

func (s *memStore) FetchUnsentOutbox(_ context.Context, limit int) ([]OutboxEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []OutboxEvent
	for _, e := range s.events {
		if !s.sent[e.ID] && len(out) < limit {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *memStore) MarkOutboxSent(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent[id] = true
	return nil
}

// flakyPublisher fails the first failures calls.
type flakyPublisher struct {
	mu        sync.Mutex
	failures  int
	calls     int
	published []uuid.UUID
}

func (p *flakyPublisher) Publish(_ context.Context, event OutboxEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	if p.calls <= p.failures {
		return errors.New("nats unavailable")
	}
	p.published = append(p.published, event.ID)
	return nil
}

func testEvent(t *testing.T, eventType events.EventType, payload interface{}) OutboxEvent {
	t.Helper()
	raw, err := json.Marshal(payload)
	if err != nil {
		t.Fatal(err)
	}
	return OutboxEvent{
		ID:        uuid.New(),
		AuctionID: uuid.New(),
		EventType: eventType,
		Payload:   raw,
		CreatedAt: time.Date(2025, 5, 2, 20, 0, 0, 0, time.UTC),
	}
}

func testListenerConfig() ListenerConfig {
	cfg := DefaultListenerConfig()
	cfg.MaxRetries = 2
	cfg.RetryDelay = time.Millisecond
	cfg.BatchSize = 10
	return cfg
}

func TestListenerHandleNotification(t *testing.T) {
	ctx := context.Background()
	ev := testEvent(t, events.BidPlaced, events.BidPlacedPayload{Value: 40, Client: "Ana"})
	store := newMemStore(ev)
	pub := &flakyPublisher{}
	metrics := NewMetrics(clockwork.NewRealClock())
	l := newListener(NewApp(store), nil, NewMetricPublisher(pub, metrics, clockwork.NewRealClock()), metrics, clockwork.NewRealClock(), testListenerConfig())

	if err := l.handleNotification(ctx, ev.ID.String()); err != nil {
		t.Fatalf("handleNotification() error = %v", err)
	}
	if !store.sent[ev.ID] {
		t.Error("event not marked sent")
	}
	if got := metrics.Snapshot(); got.Published != 1 || got.ByType[events.BidPlaced] != 1 {
		t.Errorf("metrics = %+v, want one BidPlaced published", got)
	}

	if err := l.handleNotification(ctx, "not-a-uuid"); err == nil {
		t.Error("handleNotification() with bad payload should fail")
	}
	// already sent rows are not fetched again
	if err := l.handleNotification(ctx, ev.ID.String()); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("second handleNotification() error = %v, want ErrNotFound", err)
	}
}

func TestListenerProcessUnsent(t *testing.T) {
	ctx := context.Background()
	evs := []OutboxEvent{
		testEvent(t, events.SessionOpened, events.SessionOpenedPayload{AuctionName: "Leilão"}),
		testEvent(t, events.TimerStarted, events.TimerPayload{RemainingSeconds: 30}),
		testEvent(t, events.SaleFinished, events.SaleFinishedPayload{FinalValue: 90, Buyer: "Bruno"}),
	}
	store := newMemStore(evs...)
	pub := &flakyPublisher{}
	l := newListener(NewApp(store), nil, pub, nil, clockwork.NewRealClock(), testListenerConfig())

	if err := l.processUnsent(ctx); err != nil {
		t.Fatalf("processUnsent() error = %v", err)
	}
	if len(pub.published) != len(evs) {
		t.Fatalf("published %d events, want %d", len(pub.published), len(evs))
	}
	for i, ev := range evs {
		if pub.published[i] != ev.ID {
			t.Errorf("published[%d] = %s, want %s", i, pub.published[i], ev.ID)
		}
		if !store.sent[ev.ID] {
			t.Errorf("event %d not marked sent", i)
		}
	}
}

func TestListenerRejectsEmptyBatch(t *testing.T) {
	ev := testEvent(t, events.TimerStarted, events.TimerPayload{RemainingSeconds: 30})
	store := newMemStore(ev)
	pub := &flakyPublisher{}
	cfg := testListenerConfig()
	cfg.BatchSize = 0
	l := newListener(NewApp(store), nil, pub, nil, clockwork.NewRealClock(), cfg)

	if err := l.processUnsent(context.Background()); !errors.Is(err, models.ErrInvalidArgument) {
		t.Errorf("processUnsent() error = %v, want ErrInvalidArgument", err)
	}
	if pub.calls != 0 || store.sent[ev.ID] {
		t.Errorf("nothing should be relayed with an empty batch: calls=%d", pub.calls)
	}
}

func TestPublishWithRetry(t *testing.T) {
	tests := []struct {
		name      string
		failures  int
		wantErr   bool
		wantCalls int
		wantRetry uint64
	}{
		{name: "first attempt", failures: 0, wantCalls: 1},
		{name: "succeeds after retry", failures: 2, wantCalls: 3, wantRetry: 2},
		{name: "gives up", failures: 10, wantErr: true, wantCalls: 3, wantRetry: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := testEvent(t, events.TimerExpired, events.TimerExpiredPayload{CurrentBid: 10})
			store := newMemStore(ev)
			pub := &flakyPublisher{failures: tt.failures}
			metrics := NewMetrics(clockwork.NewRealClock())
			l := newListener(NewApp(store), nil, pub, metrics, clockwork.NewRealClock(), testListenerConfig())

			err := l.relay(context.Background(), ev)
			if (err != nil) != tt.wantErr {
				t.Fatalf("relay() error = %v, wantErr %v", err, tt.wantErr)
			}
			if pub.calls != tt.wantCalls {
				t.Errorf("publish calls = %d, want %d", pub.calls, tt.wantCalls)
			}
			snap := metrics.Snapshot()
			if snap.Retried != tt.wantRetry {
				t.Errorf("retried = %d, want %d", snap.Retried, tt.wantRetry)
			}
			if tt.wantErr {
				if snap.Failed != 1 {
					t.Errorf("failed = %d, want 1", snap.Failed)
				}
				if store.sent[ev.ID] {
					t.Error("failed event must stay unsent")
				}
			}
		})
	}
}

func TestPublishWithRetryStopsOnCancel(t *testing.T) {
	ev := testEvent(t, events.TimerPaused, events.TimerPayload{Paused: true})
	cfg := testListenerConfig()
	cfg.RetryDelay = time.Hour
	l := newListener(NewApp(newMemStore(ev)), nil, &flakyPublisher{failures: 10}, nil, clockwork.NewRealClock(), cfg)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := l.publishWithRetry(ctx, ev); !errors.Is(err, context.Canceled) {
		t.Errorf("publishWithRetry() error = %v, want context.Canceled", err)
	}
}

func TestMarshalEnvelope(t *testing.T) {
	ev := testEvent(t, events.BidPlaced, events.BidPlacedPayload{Value: 55.5, Client: "Carla"})
	data, err := MarshalEnvelope(ev)
	if err != nil {
		t.Fatalf("MarshalEnvelope() error = %v", err)
	}
	var env events.Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		t.Fatal(err)
	}
	if env.EventID != ev.ID.String() || env.AuctionID != ev.AuctionID.String() {
		t.Errorf("envelope ids = %s/%s", env.EventID, env.AuctionID)
	}
	if env.Timestamp != ev.CreatedAt.UnixMilli() {
		t.Errorf("Timestamp = %d, want %d", env.Timestamp, ev.CreatedAt.UnixMilli())
	}
	p, err := events.Decode(env.EventType, env.Payload)
	if err != nil {
		t.Fatal(err)
	}
	if got := p.(*events.BidPlacedPayload); got.Client != "Carla" || got.Value != 55.5 {
		t.Errorf("payload = %+v", got)
	}
}
