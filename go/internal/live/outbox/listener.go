package outbox

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/lib/pq"
	"github.com/rs/zerolog/log"
)

type ListenerConfig struct {
	DatabaseURL      string        // Postgres DSN for LISTEN/NOTIFY
	NotifyChannel    string        // Channel name to LISTEN on
	FallbackInterval time.Duration // How often to poll for missed events
	MaxRetries       int
	RetryDelay       time.Duration
	PingInterval     time.Duration
	BatchSize        int // Max events to fetch per batch
}

func DefaultListenerConfig() ListenerConfig {
	return ListenerConfig{
		NotifyChannel:    "auction_outbox_events",
		FallbackInterval: 30 * time.Second,
		MaxRetries:       5,
		RetryDelay:       200 * time.Millisecond,
		PingInterval:     90 * time.Second,
		BatchSize:        100,
	}
}

// EventStore is the outbox access the listener needs. *App satisfies it.
type EventStore interface {
	GetEventByID(ctx context.Context, eventID uuid.UUID) (*OutboxEvent, error)
	FetchUnsentEvents(ctx context.Context, limit int) ([]OutboxEvent, error)
	MarkEventSent(ctx context.Context, eventID uuid.UUID) error
}

// Listener relays outbox rows to the publisher as they are notified, with a
// periodic sweep for anything a notification missed.
type Listener struct {
	store     EventStore
	listener  *pq.Listener
	publisher Publisher
	metrics   MetricsCollector
	clock     clockwork.Clock
	cfg       ListenerConfig
}

// NewListener opens the LISTEN connection on cfg.NotifyChannel
func NewListener(store EventStore, publisher Publisher, metrics MetricsCollector, clock clockwork.Clock, cfg ListenerConfig) (*Listener, error) {
	l := pq.NewListener(
		cfg.DatabaseURL,
		10*time.Second,
		time.Minute,
		func(ev pq.ListenerEventType, err error) {
			if err != nil {
				log.Error().Err(err).Msg("listener event")
			}
		},
	)
	if err := l.Listen(cfg.NotifyChannel); err != nil {
		return nil, fmt.Errorf("failed to listen to channel: %w", err)
	}

	log.Info().
		Str("channel", cfg.NotifyChannel).
		Msg("listening for notifications")

	return newListener(store, l, publisher, metrics, clock, cfg), nil
}

func newListener(store EventStore, l *pq.Listener, publisher Publisher, metrics MetricsCollector, clock clockwork.Clock, cfg ListenerConfig) *Listener {
	if metrics == nil {
		metrics = NoOpMetricsCollector{}
	}
	return &Listener{
		store:     store,
		listener:  l,
		publisher: publisher,
		metrics:   metrics,
		clock:     clock,
		cfg:       cfg,
	}
}

// Start relays events until ctx is done. It drains the backlog first.
func (l *Listener) Start(ctx context.Context) error {
	log.Info().
		Str("channel", l.cfg.NotifyChannel).
		Dur("ping_interval", l.cfg.PingInterval).
		Dur("fallback_interval", l.cfg.FallbackInterval).
		Msg("listener started")

	if err := l.processUnsent(ctx); err != nil {
		log.Error().Err(err).Msg("failed to process unsent events")
	}

	pingTicker := l.clock.NewTicker(l.cfg.PingInterval)
	fallbackTicker := l.clock.NewTicker(l.cfg.FallbackInterval)
	defer pingTicker.Stop()
	defer fallbackTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("listener shutting down")
			return l.Stop()
		case note := <-l.listener.Notify:
			if note == nil {
				// connection was re-established; notifications may have been lost
				if err := l.processUnsent(ctx); err != nil {
					log.Error().Err(err).Msg("failed to process unsent events after reconnect")
				}
				continue
			}
			if err := l.handleNotification(ctx, note.Extra); err != nil {
				log.Error().Err(err).Msg("failed to handle notification")
			}
		case <-fallbackTicker.Chan():
			if err := l.processUnsent(ctx); err != nil {
				log.Error().Err(err).Msg("failed to process unsent events")
			}
		case <-pingTicker.Chan():
			if err := l.listener.Ping(); err != nil {
				log.Error().Err(err).Msg("failed to ping listener")
			}
		}
	}
}

func (l *Listener) Stop() error {
	return l.listener.Close()
}

// handleNotification publishes the outbox row named by a notification payload.
func (l *Listener) handleNotification(ctx context.Context, extra string) error {
	id, err := uuid.Parse(extra)
	if err != nil {
		return fmt.Errorf("invalid event ID in notification: %w", err)
	}

	event, err := l.store.GetEventByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to fetch outbox event: %w", err)
	}
	return l.relay(ctx, *event)
}

// processUnsent publishes a batch of unsent events, oldest first.
func (l *Listener) processUnsent(ctx context.Context) error {
	unsent, err := l.store.FetchUnsentEvents(ctx, l.cfg.BatchSize)
	if err != nil {
		return fmt.Errorf("failed to fetch unsent outbox events: %w", err)
	}

	for _, event := range unsent {
		if err := l.relay(ctx, event); err != nil {
			log.Error().Err(err).Str("event_id", event.ID.String()).Msg("failed to relay event")
			if ctx.Err() != nil {
				return ctx.Err()
			}
		}
	}
	return nil
}

func (l *Listener) relay(ctx context.Context, event OutboxEvent) error {
	if err := l.publishWithRetry(ctx, event); err != nil {
		l.metrics.RecordFailed(event.EventType)
		return fmt.Errorf("failed to publish event: %w", err)
	}
	if err := l.store.MarkEventSent(ctx, event.ID); err != nil {
		return err
	}
	log.Debug().
		Str("event_id", event.ID.String()).
		Str("event_type", string(event.EventType)).
		Msg("published and marked event as sent")
	return nil
}

// publishWithRetry attempts to publish an outbox event with a linearly growing delay.
func (l *Listener) publishWithRetry(ctx context.Context, event OutboxEvent) error {
	var lastErr error

	for attempt := 0; attempt <= l.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			l.metrics.RecordRetry(event.EventType, attempt)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-l.clock.After(l.cfg.RetryDelay * time.Duration(attempt)):
			}
		}

		if err := l.publisher.Publish(ctx, event); err != nil {
			lastErr = err
			log.Warn().
				Err(err).
				Int("attempt", attempt+1).
				Str("event_id", event.ID.String()).
				Msg("failed to publish, retrying")
			continue
		}

		if attempt > 0 {
			log.Info().
				Int("attempt", attempt+1).
				Str("event_id", event.ID.String()).
				Msg("publish succeeded after retry")
		}
		return nil
	}

	return fmt.Errorf("publish failed after %d attempts: %w", l.cfg.MaxRetries+1, lastErr)
}
