package outbox

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/tgfriperie/cavalin-tcg-novo/go/internal/live/events"
)

// OutboxEvent is one row of the auction outbox
type OutboxEvent struct {
	ID        uuid.UUID        `json:"id"`
	AuctionID uuid.UUID        `json:"auction_id"`
	EventType events.EventType `json:"event_type"`
	Payload   json.RawMessage  `json:"payload"`
	CreatedAt time.Time        `json:"created_at"`
	SentAt    *time.Time       `json:"sent_at,omitempty"`
}

// Publisher delivers an outbox event to the message bus.
type Publisher interface {
	Publish(ctx context.Context, event OutboxEvent) error
}

// Backlog describes the events still waiting to be published.
type Backlog struct {
	Count        int        `json:"count"`
	OldestUnsent *time.Time `json:"oldest_unsent,omitempty"`
}
