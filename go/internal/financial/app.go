package financial

import (
	"context"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
	"github.com/tgfriperie/cavalin-tcg-novo/go/internal/inventory"
	"github.com/tgfriperie/cavalin-tcg-novo/go/internal/models"
	"github.com/tgfriperie/cavalin-tcg-novo/go/internal/payments"
	"golang.org/x/sync/errgroup"
)

// PaymentLister lists payments with client names
type PaymentLister interface {
	ListPayments(ctx context.Context, status models.PaymentStatus) ([]payments.PaymentView, error)
}

// AuctionLister lists auctions
type AuctionLister interface {
	ListAuctions(ctx context.Context) ([]models.Auction, error)
}

// CardLister lists cards
type CardLister interface {
	ListCards(ctx context.Context, filter inventory.ListFilter) ([]models.Card, error)
}

// ClientLister lists clients
type ClientLister interface {
	ListClients(ctx context.Context) ([]models.Client, error)
}

// App computes the financial reports
type App struct {
	payments PaymentLister
	auctions AuctionLister
	cards    CardLister
	clients  ClientLister
	clock    clockwork.Clock
	loc      *time.Location
}

// NewApp creates a new financial App. Months are cut in loc.
func NewApp(p PaymentLister, a AuctionLister, c CardLister, cl ClientLister, clock clockwork.Clock, loc *time.Location) *App {
	if loc == nil {
		loc = time.UTC
	}
	return &App{payments: p, auctions: a, cards: c, clients: cl, clock: clock, loc: loc}
}

type snapshot struct {
	payments []payments.PaymentView
	auctions []models.Auction
	cards    []models.Card
	clients  []models.Client
}

func (s *snapshot) plainPayments() []models.Payment {
	out := make([]models.Payment, len(s.payments))
	for i, v := range s.payments {
		out[i] = v.Payment
	}
	return out
}

// load fetches everything the reports read, concurrently
func (a *App) load(ctx context.Context) (*snapshot, error) {
	var s snapshot
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		s.payments, err = a.payments.ListPayments(ctx, "")
		return err
	})
	g.Go(func() (err error) {
		s.auctions, err = a.auctions.ListAuctions(ctx)
		return err
	})
	g.Go(func() (err error) {
		s.cards, err = a.cards.ListCards(ctx, inventory.ListFilter{})
		return err
	})
	g.Go(func() (err error) {
		s.clients, err = a.clients.ListClients(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to load financial data: %w", err)
	}
	return &s, nil
}

// MonthlyReport computes the KPIs of a month. A zero year or month means the current one.
func (a *App) MonthlyReport(ctx context.Context, year int, month time.Month) (*MonthlyReport, error) {
	now := a.clock.Now().In(a.loc)
	if year == 0 {
		year = now.Year()
	}
	if month == 0 {
		month = now.Month()
	}
	if month < time.January || month > time.December {
		return nil, fmt.Errorf("%w: month must be between 1 and 12", models.ErrInvalidArgument)
	}

	s, err := a.load(ctx)
	if err != nil {
		return nil, err
	}
	start := time.Date(year, month, 1, 0, 0, 0, 0, a.loc)
	report := CalculateMonthlyReport(s.plainPayments(), s.auctions, s.cards, start)

	log.Debug().
		Int("year", year).
		Str("month", month.String()).
		Float64("revenue", report.Revenue).
		Msg("computed monthly report")
	return report, nil
}

// Dashboard returns the headline numbers
func (a *App) Dashboard(ctx context.Context) (*Dashboard, error) {
	s, err := a.load(ctx)
	if err != nil {
		return nil, err
	}
	return BuildDashboard(s.clients, s.auctions, s.cards, s.plainPayments()), nil
}

// ClientBalances returns pending, paid and LTV per client
func (a *App) ClientBalances(ctx context.Context) ([]ClientBalance, error) {
	clients, err := a.clients.ListClients(ctx)
	if err != nil {
		return nil, err
	}
	views, err := a.payments.ListPayments(ctx, "")
	if err != nil {
		return nil, err
	}
	pays := make([]models.Payment, len(views))
	for i, v := range views {
		pays[i] = v.Payment
	}
	return ClientBalances(clients, pays), nil
}

// PendingPayments lists the payments still to be settled
func (a *App) PendingPayments(ctx context.Context) ([]PaymentLine, error) {
	return a.lines(ctx, models.PaymentStatusPending)
}

// PaymentHistory lists the settled payments
func (a *App) PaymentHistory(ctx context.Context) ([]PaymentLine, error) {
	return a.lines(ctx, models.PaymentStatusPaid)
}

func (a *App) lines(ctx context.Context, status models.PaymentStatus) ([]PaymentLine, error) {
	var (
		views    []payments.PaymentView
		auctions []models.Auction
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		views, err = a.payments.ListPayments(gctx, status)
		return err
	})
	g.Go(func() (err error) {
		auctions, err = a.auctions.ListAuctions(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to load payments: %w", err)
	}
	return PaymentLines(views, auctions, status), nil
}
