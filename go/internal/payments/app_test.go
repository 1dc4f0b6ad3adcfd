package payments

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/tgfriperie/cavalin-tcg-novo/go/internal/models"
)

type fakeRepo struct {
	payments map[uuid.UUID]*models.Payment
}

func (f *fakeRepo) CreatePayment(_ context.Context, p *models.Payment) error {
	cp := *p
	f.payments[p.ID] = &cp
	return nil
}

func (f *fakeRepo) GetPayment(_ context.Context, id uuid.UUID) (*models.Payment, error) {
	p, ok := f.payments[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeRepo) ListPayments(_ context.Context, status models.PaymentStatus) ([]PaymentView, error) {
	var out []PaymentView
	for _, p := range f.payments {
		if status == "" || p.Status == status {
			out = append(out, PaymentView{Payment: *p, ClientName: UnknownClient})
		}
	}
	return out, nil
}

func (f *fakeRepo) UpdatePaymentStatus(_ context.Context, id uuid.UUID, status models.PaymentStatus, paidAt, cancelledAt *time.Time) error {
	p, ok := f.payments[id]
	if !ok {
		return models.ErrNotFound
	}
	p.Status, p.PaymentDate, p.CancellationDate = status, paidAt, cancelledAt
	return nil
}

type fakeClients map[uuid.UUID]bool

func (f fakeClients) GetClient(_ context.Context, id uuid.UUID) (*models.Client, error) {
	if !f[id] {
		return nil, models.ErrNotFound
	}
	return &models.Client{ID: id}, nil
}

func newTestApp() (*App, *fakeRepo, *clockwork.FakeClock, uuid.UUID) {
	repo := &fakeRepo{payments: make(map[uuid.UUID]*models.Payment)}
	clientID := uuid.New()
	clock := clockwork.NewFakeClockAt(time.Date(2025, 5, 2, 12, 0, 0, 0, time.UTC))
	return NewApp(repo, fakeClients{clientID: true}, clock), repo, clock, clientID
}

func TestCreatePayment(t *testing.T) {
	ctx := context.Background()
	app, repo, _, clientID := newTestApp()

	p, err := app.CreatePayment(ctx, CreatePaymentRequest{ClientID: clientID, Amount: 250, TotalCost: 120})
	if err != nil {
		t.Fatalf("CreatePayment() error = %v", err)
	}
	if p.Status != models.PaymentStatusPending {
		t.Errorf("Status = %q, want Pendente", p.Status)
	}
	if _, ok := repo.payments[p.ID]; !ok {
		t.Error("payment not stored")
	}

	tests := []struct {
		name string
		req  CreatePaymentRequest
		want error
	}{
		{"zero amount", CreatePaymentRequest{ClientID: clientID}, models.ErrInvalidArgument},
		{"negative cost", CreatePaymentRequest{ClientID: clientID, Amount: 1, TotalCost: -1}, models.ErrInvalidArgument},
		{"unknown client", CreatePaymentRequest{ClientID: uuid.New(), Amount: 1}, models.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := app.CreatePayment(ctx, tt.req); !errors.Is(err, tt.want) {
				t.Errorf("CreatePayment() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestUpdatePaymentStatus(t *testing.T) {
	ctx := context.Background()
	app, _, clock, clientID := newTestApp()

	p, _ := app.CreatePayment(ctx, CreatePaymentRequest{ClientID: clientID, Amount: 80})

	paid, err := app.UpdatePaymentStatus(ctx, p.ID, models.PaymentStatusPaid)
	if err != nil {
		t.Fatalf("UpdatePaymentStatus(Pago) error = %v", err)
	}
	if paid.PaymentDate == nil || !paid.PaymentDate.Equal(clock.Now()) {
		t.Errorf("PaymentDate = %v, want %v", paid.PaymentDate, clock.Now())
	}

	clock.Advance(time.Hour)
	cancelled, err := app.UpdatePaymentStatus(ctx, p.ID, models.PaymentStatusCancelled)
	if err != nil {
		t.Fatalf("UpdatePaymentStatus(Cancelado) error = %v", err)
	}
	if cancelled.PaymentDate != nil || cancelled.CancellationDate == nil {
		t.Errorf("dates after cancel = %v / %v", cancelled.PaymentDate, cancelled.CancellationDate)
	}

	if _, err := app.UpdatePaymentStatus(ctx, p.ID, models.PaymentStatusPaid); !errors.Is(err, models.ErrFailedPrecondition) {
		t.Errorf("Cancelado -> Pago error = %v, want failed precondition", err)
	}

	reopened, err := app.UpdatePaymentStatus(ctx, p.ID, models.PaymentStatusPending)
	if err != nil {
		t.Fatalf("UpdatePaymentStatus(Pendente) error = %v", err)
	}
	if reopened.PaymentDate != nil || reopened.CancellationDate != nil {
		t.Errorf("dates after reopen = %v / %v, want both cleared", reopened.PaymentDate, reopened.CancellationDate)
	}

	if _, err := app.UpdatePaymentStatus(ctx, p.ID, "Estornado"); !errors.Is(err, models.ErrInvalidArgument) {
		t.Errorf("unknown status error = %v, want invalid argument", err)
	}
}
