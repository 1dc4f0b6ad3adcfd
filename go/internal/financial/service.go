package financial

import (
	"context"
	"net/http"
	"time"

	"connectrpc.com/connect"
	"github.com/tgfriperie/cavalin-tcg-novo/go/internal/rpc"
)

var ServiceName = rpc.ServiceName("financial", "FinancialService")

type MonthlyReportRequest struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

// MonthlyReportResponse carries the report and its headline values already formatted
type MonthlyReportResponse struct {
	Report           *MonthlyReport `json:"report"`
	RevenueFormatted string         `json:"revenue_formatted"`
	ProfitFormatted  string         `json:"profit_formatted"`
	TicketFormatted  string         `json:"avg_ticket_formatted"`
}

type DashboardRequest struct{}

type ClientBalancesRequest struct{}

type ClientBalancesResponse struct {
	Balances []ClientBalance `json:"balances"`
}

type PaymentLinesRequest struct{}

type PaymentLinesResponse struct {
	Payments []PaymentLine `json:"payments"`
}

// FinancialApp defines what the service layer needs from the financial application
type FinancialApp interface {
	MonthlyReport(ctx context.Context, year int, month time.Month) (*MonthlyReport, error)
	Dashboard(ctx context.Context) (*Dashboard, error)
	ClientBalances(ctx context.Context) ([]ClientBalance, error)
	PendingPayments(ctx context.Context) ([]PaymentLine, error)
	PaymentHistory(ctx context.Context) ([]PaymentLine, error)
}

// Service implements the FinancialService Connect interface
type Service struct {
	app FinancialApp
}

// NewService creates a new financial service
func NewService(app FinancialApp) *Service {
	return &Service{app: app}
}

// Handler mounts the service.
func (s *Service) Handler(opts ...connect.HandlerOption) (string, http.Handler) {
	svc := rpc.NewService(ServiceName, opts...)
	rpc.Unary(svc, "MonthlyReport", s.MonthlyReport)
	rpc.Unary(svc, "Dashboard", s.Dashboard)
	rpc.Unary(svc, "ClientBalances", s.ClientBalances)
	rpc.Unary(svc, "PendingPayments", s.PendingPayments)
	rpc.Unary(svc, "PaymentHistory", s.PaymentHistory)
	return svc.Handler()
}

func (s *Service) MonthlyReport(ctx context.Context, req *connect.Request[MonthlyReportRequest]) (*connect.Response[MonthlyReportResponse], error) {
	report, err := s.app.MonthlyReport(ctx, req.Msg.Year, time.Month(req.Msg.Month))
	if err != nil {
		return nil, rpc.ToConnectError(err)
	}
	return connect.NewResponse(&MonthlyReportResponse{
		Report:           report,
		RevenueFormatted: FormatCurrency(report.Revenue),
		ProfitFormatted:  FormatCurrency(report.Profit),
		TicketFormatted:  FormatCurrency(report.AvgTicket),
	}), nil
}

func (s *Service) Dashboard(ctx context.Context, _ *connect.Request[DashboardRequest]) (*connect.Response[Dashboard], error) {
	d, err := s.app.Dashboard(ctx)
	if err != nil {
		return nil, rpc.ToConnectError(err)
	}
	return connect.NewResponse(d), nil
}

func (s *Service) ClientBalances(ctx context.Context, _ *connect.Request[ClientBalancesRequest]) (*connect.Response[ClientBalancesResponse], error) {
	balances, err := s.app.ClientBalances(ctx)
	if err != nil {
		return nil, rpc.ToConnectError(err)
	}
	return connect.NewResponse(&ClientBalancesResponse{Balances: balances}), nil
}

func (s *Service) PendingPayments(ctx context.Context, _ *connect.Request[PaymentLinesRequest]) (*connect.Response[PaymentLinesResponse], error) {
	lines, err := s.app.PendingPayments(ctx)
	if err != nil {
		return nil, rpc.ToConnectError(err)
	}
	return connect.NewResponse(&PaymentLinesResponse{Payments: lines}), nil
}

func (s *Service) PaymentHistory(ctx context.Context, _ *connect.Request[PaymentLinesRequest]) (*connect.Response[PaymentLinesResponse], error) {
	lines, err := s.app.PaymentHistory(ctx)
	if err != nil {
		return nil, rpc.ToConnectError(err)
	}
	return connect.NewResponse(&PaymentLinesResponse{Payments: lines}), nil
}
