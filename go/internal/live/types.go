package live

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/tgfriperie/cavalin-tcg-novo/go/internal/auctions"
	"github.com/tgfriperie/cavalin-tcg-novo/go/internal/live/events"
	"github.com/tgfriperie/cavalin-tcg-novo/go/internal/models"
	"github.com/tgfriperie/cavalin-tcg-novo/go/internal/storeconfig"
)

// NoWinner stands in for an empty winner in share messages.
const NoWinner = "Ninguém"

// Catalog is the auction access a session needs
type Catalog interface {
	GetAuction(ctx context.Context, id uuid.UUID) (*models.Auction, error)
	LoadQueue(ctx context.Context, ids []uuid.UUID) (*auctions.Queue, error)
	UpdateAuctionStatus(ctx context.Context, id uuid.UUID, status models.AuctionStatus) (*models.Auction, error)
}

// SettingsSource provides the timer and increment defaults
type SettingsSource interface {
	Get(ctx context.Context) (*models.Settings, error)
	StoreConfig() *storeconfig.Config
}

// Store persists bids and sales. Each call is a single transaction.
type Store interface {
	RecordBid(ctx context.Context, bid models.Bid) error
	RecordSale(ctx context.Context, sale Sale) (*SaleReceipt, error)
	ListBids(ctx context.Context, auctionID uuid.UUID, cardID *uuid.UUID) ([]models.Bid, error)
}

// EventSink receives floor events; *outbox.App satisfies it
type EventSink interface {
	Emit(ctx context.Context, auctionID uuid.UUID, eventType events.EventType, payload interface{}) error
}

// BidEntry is one line of the in-memory ledger of the active card.
type BidEntry struct {
	Value  float64   `json:"value"`
	Client string    `json:"client"`
	At     time.Time `json:"at"`
}

// State is a snapshot of a live session.
type State struct {
	AuctionID        uuid.UUID            `json:"auction_id"`
	AuctionName      string               `json:"auction_name"`
	Status           models.AuctionStatus `json:"status"`
	Index            int                  `json:"index"`
	QueueLength      int                  `json:"queue_length"`
	Card             *models.Card         `json:"card"`
	RemainingSeconds int                  `json:"remaining_seconds"`
	Paused           bool                 `json:"paused"`
	Expired          bool                 `json:"expired"`
	CurrentBid       float64              `json:"current_bid"`
	WinningClient    string               `json:"winning_client,omitempty"`
	MinIncrement     float64              `json:"min_increment"`
	DefaultTimer     int                  `json:"default_timer"`
	BidHistory       []BidEntry           `json:"bid_history"`
	OpenedAt         time.Time            `json:"opened_at"`
	AsOf             time.Time            `json:"as_of"`
}

// SessionInfo describes an open session in listings.
type SessionInfo struct {
	AuctionID   uuid.UUID `json:"auction_id"`
	AuctionName string    `json:"auction_name"`
	Index       int       `json:"index"`
	QueueLength int       `json:"queue_length"`
	CardName    string    `json:"card_name"`
	OpenedAt    time.Time `json:"opened_at"`
}

// BidResult is the outcome of RegisterBid. Persisted is false when the local
// state moved but the database write failed.
type BidResult struct {
	State     *State     `json:"state"`
	Bid       models.Bid `json:"bid"`
	Persisted bool       `json:"persisted"`
}

// Sale is what FinishSale asks the store to record.
type Sale struct {
	AuctionID  uuid.UUID
	CardID     uuid.UUID
	CardName   string
	FinalValue float64
	Buyer      string
	SoldAt     time.Time
}

// SaleReceipt identifies the rows a sale created.
type SaleReceipt struct {
	ClientID  uuid.UUID `json:"client_id"`
	PaymentID uuid.UUID `json:"payment_id"`
}

// SaleResult is the outcome of FinishSale.
type SaleResult struct {
	State    *State      `json:"state"`
	Sale     SaleReceipt `json:"sale"`
	Buyer    string      `json:"buyer"`
	Value    float64     `json:"value"`
	SoldCard uuid.UUID   `json:"sold_card_id"`
}

// ShareMessage is the WhatsApp announcement of the active card.
type ShareMessage struct {
	Text    string `json:"text"`
	Encoded string `json:"encoded"`
	Link    string `json:"link"`
}
