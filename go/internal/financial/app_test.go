package financial

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/tgfriperie/cavalin-tcg-novo/go/internal/inventory"
	"github.com/tgfriperie/cavalin-tcg-novo/go/internal/models"
	"github.com/tgfriperie/cavalin-tcg-novo/go/internal/payments"
)

type fakeSource struct {
	views    []payments.PaymentView
	auctions []models.Auction
	cards    []models.Card
	clients  []models.Client
	err      error
}

func (f *fakeSource) ListPayments(_ context.Context, status models.PaymentStatus) ([]payments.PaymentView, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []payments.PaymentView
	for _, v := range f.views {
		if status == "" || v.Status == status {
			out = append(out, v)
		}
	}
	return out, nil
}

func (f *fakeSource) ListAuctions(context.Context) ([]models.Auction, error) { return f.auctions, nil }

func (f *fakeSource) ListCards(context.Context, inventory.ListFilter) ([]models.Card, error) {
	return f.cards, nil
}

func (f *fakeSource) ListClients(context.Context) ([]models.Client, error) { return f.clients, nil }

func newTestApp(src *fakeSource) *App {
	clock := clockwork.NewFakeClockAt(time.Date(2025, 3, 28, 12, 0, 0, 0, time.UTC))
	return NewApp(src, src, src, src, clock, time.UTC)
}

func TestMonthlyReportDefaultsToCurrentMonth(t *testing.T) {
	src := &fakeSource{
		views: []payments.PaymentView{
			{Payment: models.Payment{ClientID: uuid.New(), Amount: 70, Status: models.PaymentStatusPaid, PaymentDate: at(2025, 3, 2)}},
			{Payment: models.Payment{ClientID: uuid.New(), Amount: 30, Status: models.PaymentStatusPaid, PaymentDate: at(2025, 2, 2)}},
		},
	}
	report, err := newTestApp(src).MonthlyReport(context.Background(), 0, 0)
	if err != nil {
		t.Fatalf("MonthlyReport() error = %v", err)
	}
	if report.Year != 2025 || report.Month != time.March || report.Revenue != 70 {
		t.Errorf("MonthlyReport() = %+v, want March 2025 with revenue 70", report)
	}

	if _, err := newTestApp(src).MonthlyReport(context.Background(), 2025, 13); !errors.Is(err, models.ErrInvalidArgument) {
		t.Errorf("MonthlyReport(month 13) error = %v, want invalid argument", err)
	}
}

func TestLoadErrorPropagates(t *testing.T) {
	boom := errors.New("connection reset")
	app := newTestApp(&fakeSource{err: boom})

	if _, err := app.Dashboard(context.Background()); !errors.Is(err, boom) {
		t.Errorf("Dashboard() error = %v, want %v", err, boom)
	}
	if _, err := app.PendingPayments(context.Background()); !errors.Is(err, boom) {
		t.Errorf("PendingPayments() error = %v, want %v", err, boom)
	}
}

func TestPaymentHistory(t *testing.T) {
	src := &fakeSource{
		views: []payments.PaymentView{
			{Payment: models.Payment{Amount: 10, Status: models.PaymentStatusPaid}, ClientName: "Ana"},
			{Payment: models.Payment{Amount: 20, Status: models.PaymentStatusPending}, ClientName: "Bia"},
		},
	}
	lines, err := newTestApp(src).PaymentHistory(context.Background())
	if err != nil {
		t.Fatalf("PaymentHistory() error = %v", err)
	}
	if len(lines) != 1 || lines[0].ClientName != "Ana" {
		t.Errorf("PaymentHistory() = %+v, want only Ana's paid payment", lines)
	}
}
