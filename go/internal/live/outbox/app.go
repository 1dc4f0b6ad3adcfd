package outbox

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/tgfriperie/cavalin-tcg-novo/go/internal/live/events"
	"github.com/tgfriperie/cavalin-tcg-novo/go/internal/models"
)

// OutboxRepository defines what the app layer needs from the repository
type OutboxRepository interface {
	InsertOutboxEvent(ctx context.Context, auctionID uuid.UUID, eventType events.EventType, payload []byte) (uuid.UUID, error)
	FetchUnsentOutbox(ctx context.Context, limit int) ([]OutboxEvent, error)
	FetchOutboxByID(ctx context.Context, id uuid.UUID) (*OutboxEvent, error)
	MarkOutboxSent(ctx context.Context, id uuid.UUID) error
}

// App handles outbox business logic
type App struct {
	repo OutboxRepository
}

// NewApp creates a new outbox App
func NewApp(repo OutboxRepository) *App {
	return &App{repo: repo}
}

// InsertEvent validates a raw payload against its event type and appends it to the outbox
func (a *App) InsertEvent(ctx context.Context, auctionID uuid.UUID, eventType events.EventType, payload []byte) (uuid.UUID, error) {
	if auctionID == uuid.Nil {
		return uuid.Nil, fmt.Errorf("%w: auction id is required", models.ErrInvalidArgument)
	}
	if _, err := events.Decode(eventType, payload); err != nil {
		return uuid.Nil, fmt.Errorf("%w: %v", models.ErrInvalidArgument, err)
	}

	id, err := a.repo.InsertOutboxEvent(ctx, auctionID, eventType, payload)
	if err != nil {
		return uuid.Nil, err
	}

	log.Debug().
		Str("auction_id", auctionID.String()).
		Str("event_type", string(eventType)).
		Str("event_id", id.String()).
		Msg("outbox event inserted")
	return id, nil
}

// Emit marshals payload and inserts it as an event of eventType
func (a *App) Emit(ctx context.Context, auctionID uuid.UUID, eventType events.EventType, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal %s payload: %w", eventType, err)
	}
	_, err = a.InsertEvent(ctx, auctionID, eventType, data)
	return err
}

// FetchUnsentEvents fetches unsent outbox events
func (a *App) FetchUnsentEvents(ctx context.Context, limit int) ([]OutboxEvent, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be greater than 0", models.ErrInvalidArgument)
	}
	return a.repo.FetchUnsentOutbox(ctx, limit)
}

// MarkEventSent marks an outbox event as sent
func (a *App) MarkEventSent(ctx context.Context, eventID uuid.UUID) error {
	return a.repo.MarkOutboxSent(ctx, eventID)
}

// GetEventByID fetches an unsent outbox event by ID
func (a *App) GetEventByID(ctx context.Context, eventID uuid.UUID) (*OutboxEvent, error) {
	return a.repo.FetchOutboxByID(ctx, eventID)
}
