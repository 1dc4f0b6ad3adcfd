package events

import (
	"encoding/json"
	"fmt"
	"time"
)

// Event payload types shared between the live engine, the outbox relay and the gateway

// EventType names a live-floor event. It is also the last token of the NATS subject.
type EventType string

const (
	SessionOpened EventType = "SessionOpened"
	SessionClosed EventType = "SessionClosed"
	ItemChanged   EventType = "ItemChanged"
	TimerStarted  EventType = "TimerStarted"
	TimerPaused   EventType = "TimerPaused"
	TimerReset    EventType = "TimerReset"
	TimerExpired  EventType = "TimerExpired"
	BidPlaced     EventType = "BidPlaced"
	SaleFinished  EventType = "SaleFinished"
)

// SessionOpenedPayload is the payload for a SessionOpened event
type SessionOpenedPayload struct {
	AuctionID   string    `json:"auction_id"`
	AuctionName string    `json:"auction_name"`
	QueueLength int       `json:"queue_length"`
	OpenedAt    time.Time `json:"opened_at"`
}

// SessionClosedPayload is the payload for a SessionClosed event
type SessionClosedPayload struct {
	AuctionID string    `json:"auction_id"`
	Finalized bool      `json:"finalized"`
	ClosedAt  time.Time `json:"closed_at"`
}

// ItemChangedPayload is the payload for an ItemChanged event
type ItemChangedPayload struct {
	AuctionID     string    `json:"auction_id"`
	CardID        string    `json:"card_id"`
	CardName      string    `json:"card_name"`
	ImageURL      string    `json:"image_url"`
	Index         int       `json:"index"`
	QueueLength   int       `json:"queue_length"`
	CurrentBid    float64   `json:"current_bid"`
	WinningClient string    `json:"winning_client,omitempty"`
	TimerSeconds  int       `json:"timer_seconds"`
	ChangedAt     time.Time `json:"changed_at"`
}

// TimerPayload is the payload for TimerStarted, TimerPaused and TimerReset events
type TimerPayload struct {
	AuctionID        string     `json:"auction_id"`
	CardID           string     `json:"card_id"`
	RemainingSeconds int        `json:"remaining_seconds"`
	Paused           bool       `json:"paused"`
	DeadlineAt       *time.Time `json:"deadline_at,omitempty"`
	At               time.Time  `json:"at"`
}

// TimerExpiredPayload is the payload for a TimerExpired event
type TimerExpiredPayload struct {
	AuctionID     string    `json:"auction_id"`
	CardID        string    `json:"card_id"`
	CurrentBid    float64   `json:"current_bid"`
	WinningClient string    `json:"winning_client,omitempty"`
	ExpiredAt     time.Time `json:"expired_at"`
}

// BidPlacedPayload is the payload for a BidPlaced event
type BidPlacedPayload struct {
	AuctionID string    `json:"auction_id"`
	BidID     string    `json:"bid_id"`
	CardID    string    `json:"card_id"`
	CardName  string    `json:"card_name"`
	Value     float64   `json:"value"`
	Client    string    `json:"client"`
	PlacedAt  time.Time `json:"placed_at"`
}

// SaleFinishedPayload is the payload for a SaleFinished event
type SaleFinishedPayload struct {
	AuctionID  string    `json:"auction_id"`
	CardID     string    `json:"card_id"`
	CardName   string    `json:"card_name"`
	FinalValue float64   `json:"final_value"`
	Buyer      string    `json:"buyer"`
	ClientID   string    `json:"client_id"`
	PaymentID  string    `json:"payment_id"`
	SoldAt     time.Time `json:"sold_at"`
}

// NewPayload returns an empty payload value for t, or false for an unknown type.
func NewPayload(t EventType) (interface{}, bool) {
	switch t {
	case SessionOpened:
		return &SessionOpenedPayload{}, true
	case SessionClosed:
		return &SessionClosedPayload{}, true
	case ItemChanged:
		return &ItemChangedPayload{}, true
	case TimerStarted, TimerPaused, TimerReset:
		return &TimerPayload{}, true
	case TimerExpired:
		return &TimerExpiredPayload{}, true
	case BidPlaced:
		return &BidPlacedPayload{}, true
	case SaleFinished:
		return &SaleFinishedPayload{}, true
	}
	return nil, false
}

// Decode parses raw into the payload struct of t.
func Decode(t EventType, raw []byte) (interface{}, error) {
	p, ok := NewPayload(t)
	if !ok {
		return nil, fmt.Errorf("unknown event type %q", t)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("empty %s payload", t)
	}
	if err := json.Unmarshal(raw, p); err != nil {
		return nil, fmt.Errorf("invalid %s payload: %w", t, err)
	}
	return p, nil
}

// Envelope is the message published on JetStream for every outbox event
type Envelope struct {
	EventID   string          `json:"eventId"`
	EventType EventType       `json:"eventType"`
	AuctionID string          `json:"auctionId"`
	Timestamp int64           `json:"timestamp"`
	Payload   json.RawMessage `json:"payload"`
}

const (
	// StreamName is the JetStream stream carrying live-floor events
	StreamName = "AUCTION_EVENTS"
	// SubjectPrefix prefixes every event subject
	SubjectPrefix = "auction.events."
	// SubjectWildcard matches every event subject
	SubjectWildcard = SubjectPrefix + ">"
)

// Subject returns the NATS subject of an event type
func Subject(t EventType) string {
	return SubjectPrefix + string(t)
}
