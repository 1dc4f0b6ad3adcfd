package payments

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
	"github.com/tgfriperie/cavalin-tcg-novo/go/internal/models"
)

// PaymentsRepository defines what the app layer needs from the repository
type PaymentsRepository interface {
	CreatePayment(ctx context.Context, p *models.Payment) error
	GetPayment(ctx context.Context, id uuid.UUID) (*models.Payment, error)
	ListPayments(ctx context.Context, status models.PaymentStatus) ([]PaymentView, error)
	UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status models.PaymentStatus, paidAt, cancelledAt *time.Time) error
}

// ClientGetter checks that a payment's client exists
type ClientGetter interface {
	GetClient(ctx context.Context, id uuid.UUID) (*models.Client, error)
}

// App handles payment business logic
type App struct {
	repo    PaymentsRepository
	clients ClientGetter
	clock   clockwork.Clock
}

// NewApp creates a new payments App
func NewApp(repo PaymentsRepository, clients ClientGetter, clock clockwork.Clock) *App {
	return &App{repo: repo, clients: clients, clock: clock}
}

// CreatePayment records a manual payment, pending until settled
func (a *App) CreatePayment(ctx context.Context, req CreatePaymentRequest) (*models.Payment, error) {
	if req.Amount <= 0 {
		return nil, fmt.Errorf("validation failed: %w: amount must be positive", models.ErrInvalidArgument)
	}
	if req.TotalCost < 0 {
		return nil, fmt.Errorf("validation failed: %w: total cost must not be negative", models.ErrInvalidArgument)
	}
	if _, err := a.clients.GetClient(ctx, req.ClientID); err != nil {
		return nil, err
	}

	p := NewPending(req.ClientID, req.AuctionID, req.CardID, req.Amount, req.TotalCost, a.clock.Now().UTC())
	if err := a.repo.CreatePayment(ctx, p); err != nil {
		return nil, err
	}
	log.Info().
		Str("payment_id", p.ID.String()).
		Str("client_id", p.ClientID.String()).
		Float64("amount", p.Amount).
		Msg("created payment")
	return p, nil
}

// NewPending builds a pending payment.
func NewPending(clientID uuid.UUID, auctionID, cardID *uuid.UUID, amount, totalCost float64, now time.Time) *models.Payment {
	return &models.Payment{
		ID:        uuid.New(),
		ClientID:  clientID,
		AuctionID: auctionID,
		CardID:    cardID,
		Amount:    amount,
		TotalCost: totalCost,
		Status:    models.PaymentStatusPending,
		CreatedAt: now,
	}
}

// ListPayments returns payments with client names, newest first
func (a *App) ListPayments(ctx context.Context, status models.PaymentStatus) ([]PaymentView, error) {
	if status != "" && !validStatus(status) {
		return nil, fmt.Errorf("%w: unknown payment status %q", models.ErrInvalidArgument, status)
	}
	return a.repo.ListPayments(ctx, status)
}

// UpdatePaymentStatus settles, cancels or reopens a payment
func (a *App) UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status models.PaymentStatus) (*models.Payment, error) {
	if !validStatus(status) {
		return nil, fmt.Errorf("%w: unknown payment status %q", models.ErrInvalidArgument, status)
	}
	p, err := a.repo.GetPayment(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Status == models.PaymentStatusCancelled && status == models.PaymentStatusPaid {
		return nil, fmt.Errorf("payment %s: %w: a cancelled payment cannot be paid", id, models.ErrFailedPrecondition)
	}

	now := a.clock.Now().UTC()
	p.Status = status
	p.PaymentDate, p.CancellationDate = nil, nil
	switch status {
	case models.PaymentStatusPaid:
		p.PaymentDate = &now
	case models.PaymentStatusCancelled:
		p.CancellationDate = &now
	}

	if err := a.repo.UpdatePaymentStatus(ctx, id, p.Status, p.PaymentDate, p.CancellationDate); err != nil {
		return nil, err
	}
	log.Info().Str("payment_id", id.String()).Str("status", string(status)).Msg("payment status changed")
	return p, nil
}

func validStatus(s models.PaymentStatus) bool {
	switch s {
	case models.PaymentStatusPending, models.PaymentStatusPaid, models.PaymentStatusCancelled:
		return true
	}
	return false
}
