package models

import (
	"time"

	"github.com/google/uuid"
)

// CardStatus defines where a card sits in its lifecycle.
type CardStatus string

const (
	CardStatusInventory CardStatus = "inventory"
	CardStatusSold      CardStatus = "sold"
)

// Card is a single inventory item. The live fields are written while the card is
// on the auction floor; the sale fields once it is sold.
type Card struct {
	ID           uuid.UUID  `json:"id"`
	Name         string     `json:"name"`
	ImageURL     string     `json:"image_url"`
	Collection   string     `json:"collection"`
	Condition    string     `json:"condition"`
	Language     string     `json:"language"`
	Cost         float64    `json:"cost"`
	InitialValue float64    `json:"initial_value"`
	MarketValue  *float64   `json:"market_value,omitempty"`
	StockOwner   string     `json:"stock_owner"`
	Category     string     `json:"category"`
	Status       CardStatus `json:"status"`

	CurrentBid    *float64   `json:"current_bid,omitempty"`
	WinningClient *string    `json:"winning_client,omitempty"`
	LastBidTime   *time.Time `json:"last_bid_time,omitempty"`

	SoldAt          *time.Time `json:"sold_at,omitempty"`
	SoldInAuctionID *uuid.UUID `json:"sold_in_auction_id,omitempty"`
	FinalValue      *float64   `json:"final_value,omitempty"`
	Buyer           *string    `json:"buyer,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsSold reports whether the card has been sold.
func (c Card) IsSold() bool {
	return c.Status == CardStatusSold
}

// OpeningBid is the value a live session starts from: the last registered bid,
// else the initial value.
func (c Card) OpeningBid() float64 {
	if c.CurrentBid != nil && *c.CurrentBid > 0 {
		return *c.CurrentBid
	}
	return c.InitialValue
}
