package models

import (
	"time"

	"github.com/google/uuid"
)

// AuctionStatus defines the status of an auction.
type AuctionStatus string

const (
	AuctionStatusScheduled AuctionStatus = "Agendado"
	AuctionStatusLive      AuctionStatus = "Em Andamento"
	AuctionStatusFinished  AuctionStatus = "Finalizado"
)

// WinningBid records a card sold during an auction.
type WinningBid struct {
	CardID     uuid.UUID `json:"card_id"`
	FinalValue float64   `json:"final_value"`
	Buyer      string    `json:"buyer"`
	SoldAt     time.Time `json:"sold_at"`
}

// Auction is a scheduled auction and its ordered queue of cards.
type Auction struct {
	ID          uuid.UUID     `json:"id"`
	Name        string        `json:"name"`
	Date        time.Time     `json:"date"`
	Description string        `json:"description"`
	Status      AuctionStatus `json:"status"`
	CardIDs     []uuid.UUID   `json:"card_ids"`
	WinningBids []WinningBid  `json:"winning_bids"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// QueueIndex returns the position of cardID in the queue, or -1.
func (a Auction) QueueIndex(cardID uuid.UUID) int {
	for i, id := range a.CardIDs {
		if id == cardID {
			return i
		}
	}
	return -1
}

// Bid is one row of the durable bid ledger.
type Bid struct {
	ID        uuid.UUID `json:"id"`
	AuctionID uuid.UUID `json:"auction_id"`
	CardID    uuid.UUID `json:"card_id"`
	CardName  string    `json:"card_name"`
	Value     float64   `json:"value"`
	Client    string    `json:"client"`
	CreatedAt time.Time `json:"created_at"`
}
