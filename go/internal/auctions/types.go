package auctions

import (
	"time"

	"github.com/tgfriperie/cavalin-tcg-novo/go/internal/models"
)

// CreateAuctionRequest represents the data needed to schedule an auction
type CreateAuctionRequest struct {
	Name        string    `json:"name"`
	Date        time.Time `json:"date"`
	Description string    `json:"description"`
}

// UpdateAuctionRequest is a partial update of the auction details
type UpdateAuctionRequest struct {
	Name        *string    `json:"name,omitempty"`
	Date        *time.Time `json:"date,omitempty"`
	Description *string    `json:"description,omitempty"`
}

// Direction moves a queue item towards the front (up) or the back (down).
type Direction string

const (
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
)

// Queue is the ordered list of cards of an auction.
type Queue struct {
	Cards             []models.Card `json:"cards"`
	TotalInitialValue float64       `json:"total_initial_value"`
}

var transitions = map[models.AuctionStatus][]models.AuctionStatus{
	models.AuctionStatusScheduled: {models.AuctionStatusLive, models.AuctionStatusFinished},
	models.AuctionStatusLive:      {models.AuctionStatusFinished},
}

// CanTransition reports whether an auction may move from one status to another.
func CanTransition(from, to models.AuctionStatus) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}
