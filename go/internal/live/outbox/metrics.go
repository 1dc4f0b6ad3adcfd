package outbox

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
	"github.com/tgfriperie/cavalin-tcg-novo/go/internal/live/events"
)

// MetricsCollector records what happens to outbox events
type MetricsCollector interface {
	RecordPublished(eventType events.EventType, duration time.Duration)
	RecordFailed(eventType events.EventType)
	RecordRetry(eventType events.EventType, attempt int)
}

// NoOpMetricsCollector is a no-op implementation for when metrics aren't needed
type NoOpMetricsCollector struct{}

func (NoOpMetricsCollector) RecordPublished(events.EventType, time.Duration) {}
func (NoOpMetricsCollector) RecordFailed(events.EventType)                   {}
func (NoOpMetricsCollector) RecordRetry(events.EventType, int)               {}

// MetricsSnapshot is a point-in-time copy of the counters.
type MetricsSnapshot struct {
	Published       uint64                      `json:"published"`
	Failed          uint64                      `json:"failed"`
	Retried         uint64                      `json:"retried"`
	ByType          map[events.EventType]uint64 `json:"by_type"`
	LastPublishedAt time.Time                   `json:"last_published_at"`
	TotalLatency    time.Duration               `json:"-"`
}

// Metrics counts published, failed and retried events in memory
type Metrics struct {
	mu    sync.Mutex
	clock clockwork.Clock
	snap  MetricsSnapshot
}

// NewMetrics creates an empty set of counters
func NewMetrics(clock clockwork.Clock) *Metrics {
	return &Metrics{
		clock: clock,
		snap:  MetricsSnapshot{ByType: make(map[events.EventType]uint64)},
	}
}

func (m *Metrics) RecordPublished(eventType events.EventType, duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snap.Published++
	m.snap.ByType[eventType]++
	m.snap.TotalLatency += duration
	m.snap.LastPublishedAt = m.clock.Now()
}

func (m *Metrics) RecordFailed(events.EventType) {
	m.mu.Lock()
	m.snap.Failed++
	m.mu.Unlock()
}

func (m *Metrics) RecordRetry(events.EventType, int) {
	m.mu.Lock()
	m.snap.Retried++
	m.mu.Unlock()
}

// Snapshot returns a copy of the counters
func (m *Metrics) Snapshot() MetricsSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.snap
	s.ByType = make(map[events.EventType]uint64, len(m.snap.ByType))
	for k, v := range m.snap.ByType {
		s.ByType[k] = v
	}
	return s
}

// Report logs the counters every interval until ctx is done
func (m *Metrics) Report(ctx context.Context, interval time.Duration) {
	ticker := m.clock.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			s := m.Snapshot()
			ev := log.Info().
				Uint64("published", s.Published).
				Uint64("failed", s.Failed).
				Uint64("retried", s.Retried)
			if s.Published > 0 {
				ev = ev.Dur("avg_publish_latency", s.TotalLatency/time.Duration(s.Published))
			}
			ev.Msg("outbox metrics")
		}
	}
}

// MetricPublisher wraps a Publisher with latency measurement
type MetricPublisher struct {
	publisher Publisher
	metrics   MetricsCollector
	clock     clockwork.Clock
}

// NewMetricPublisher wraps publisher
func NewMetricPublisher(publisher Publisher, metrics MetricsCollector, clock clockwork.Clock) *MetricPublisher {
	return &MetricPublisher{publisher: publisher, metrics: metrics, clock: clock}
}

func (p *MetricPublisher) Publish(ctx context.Context, event OutboxEvent) error {
	start := p.clock.Now()
	if err := p.publisher.Publish(ctx, event); err != nil {
		return err
	}
	p.metrics.RecordPublished(event.EventType, p.clock.Since(start))
	return nil
}
