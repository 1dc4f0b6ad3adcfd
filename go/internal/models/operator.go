package models

import (
	"time"

	"github.com/google/uuid"
)

// Operator is a console user allowed to run auctions.
type Operator struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	DisplayName  string    `json:"display_name"`
	PasswordHash []byte    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}
