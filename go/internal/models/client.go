package models

import (
	"time"

	"github.com/google/uuid"
)

// Client is a customer who buys at auctions.
type Client struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"created_at"`
}
