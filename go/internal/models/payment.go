package models

import (
	"time"

	"github.com/google/uuid"
)

// PaymentStatus defines the settlement state of a payment.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "Pendente"
	PaymentStatusPaid      PaymentStatus = "Pago"
	PaymentStatusCancelled PaymentStatus = "Cancelado"
)

// Payment is money owed by a client, usually for a card won at auction.
type Payment struct {
	ID               uuid.UUID     `json:"id"`
	ClientID         uuid.UUID     `json:"client_id"`
	AuctionID        *uuid.UUID    `json:"auction_id,omitempty"`
	CardID           *uuid.UUID    `json:"card_id,omitempty"`
	Amount           float64       `json:"amount"`
	TotalCost        float64       `json:"total_cost"`
	Status           PaymentStatus `json:"status"`
	PaymentDate      *time.Time    `json:"payment_date,omitempty"`
	CancellationDate *time.Time    `json:"cancellation_date,omitempty"`
	CreatedAt        time.Time     `json:"created_at"`
}
