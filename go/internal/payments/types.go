package payments

import (
	"github.com/google/uuid"
	"github.com/tgfriperie/cavalin-tcg-novo/go/internal/models"
)

// UnknownClient is shown for payments whose client no longer exists.
const UnknownClient = "Desconhecido"

// CreatePaymentRequest represents a manually entered payment
type CreatePaymentRequest struct {
	ClientID  uuid.UUID  `json:"client_id"`
	AuctionID *uuid.UUID `json:"auction_id,omitempty"`
	CardID    *uuid.UUID `json:"card_id,omitempty"`
	Amount    float64    `json:"amount"`
	TotalCost float64    `json:"total_cost"`
}

// PaymentView is a payment with its client's name
type PaymentView struct {
	models.Payment
	ClientName string `json:"client_name"`
}
