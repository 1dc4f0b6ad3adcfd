package gateway

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/tgfriperie/cavalin-tcg-novo/go/internal/live/events"
)

// FloorEvent is what websocket observers of an auction receive
type FloorEvent struct {
	ID        string           `json:"id"`         // Outbox event UUID
	AuctionID string           `json:"auction_id"` // Auction UUID
	Type      events.EventType `json:"type"`
	Timestamp time.Time        `json:"timestamp"` // When the engine recorded the event
	Data      json.RawMessage  `json:"data"`
}

// FromEnvelope converts a JetStream envelope into a floor event. It rejects
// unknown event types, bad auction ids and payloads that do not decode into
// their struct.
func FromEnvelope(env events.Envelope) (*FloorEvent, uuid.UUID, error) {
	auctionID, err := uuid.Parse(env.AuctionID)
	if err != nil {
		return nil, uuid.Nil, fmt.Errorf("parse auction ID: %w", err)
	}
	if _, err := events.Decode(env.EventType, env.Payload); err != nil {
		return nil, uuid.Nil, err
	}

	ts := time.Now().UTC()
	if env.Timestamp > 0 {
		ts = time.UnixMilli(env.Timestamp).UTC()
	}
	return &FloorEvent{
		ID:        env.EventID,
		AuctionID: auctionID.String(),
		Type:      env.EventType,
		Timestamp: ts,
		Data:      env.Payload,
	}, auctionID, nil
}

// ParseEventPayload decodes the event data into its payload struct
func ParseEventPayload(event *FloorEvent) (interface{}, error) {
	return events.Decode(event.Type, event.Data)
}
