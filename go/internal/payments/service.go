package payments

import (
	"context"
	"net/http"

	"connectrpc.com/connect"
	"github.com/google/uuid"
	"github.com/tgfriperie/cavalin-tcg-novo/go/internal/models"
	"github.com/tgfriperie/cavalin-tcg-novo/go/internal/rpc"
)

var ServiceName = rpc.ServiceName("payments", "PaymentService")

type ListPaymentsRequest struct {
	Status models.PaymentStatus `json:"status,omitempty"`
}

type ListPaymentsResponse struct {
	Payments []PaymentView `json:"payments"`
}

type UpdatePaymentStatusRequest struct {
	ID     string               `json:"id"`
	Status models.PaymentStatus `json:"status"`
}

type PaymentResponse struct {
	Payment *models.Payment `json:"payment"`
}

// PaymentsApp defines what the service layer needs from the payments application
type PaymentsApp interface {
	CreatePayment(ctx context.Context, req CreatePaymentRequest) (*models.Payment, error)
	ListPayments(ctx context.Context, status models.PaymentStatus) ([]PaymentView, error)
	UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status models.PaymentStatus) (*models.Payment, error)
}

// Service implements the PaymentService Connect interface
type Service struct {
	app PaymentsApp
}

// NewService creates a new payments service
func NewService(app PaymentsApp) *Service {
	return &Service{app: app}
}

// Handler mounts the service.
func (s *Service) Handler(opts ...connect.HandlerOption) (string, http.Handler) {
	svc := rpc.NewService(ServiceName, opts...)
	rpc.Unary(svc, "CreatePayment", s.CreatePayment)
	rpc.Unary(svc, "ListPayments", s.ListPayments)
	rpc.Unary(svc, "UpdatePaymentStatus", s.UpdatePaymentStatus)
	return svc.Handler()
}

func (s *Service) CreatePayment(ctx context.Context, req *connect.Request[CreatePaymentRequest]) (*connect.Response[PaymentResponse], error) {
	p, err := s.app.CreatePayment(ctx, *req.Msg)
	if err != nil {
		return nil, rpc.ToConnectError(err)
	}
	return connect.NewResponse(&PaymentResponse{Payment: p}), nil
}

func (s *Service) ListPayments(ctx context.Context, req *connect.Request[ListPaymentsRequest]) (*connect.Response[ListPaymentsResponse], error) {
	list, err := s.app.ListPayments(ctx, req.Msg.Status)
	if err != nil {
		return nil, rpc.ToConnectError(err)
	}
	return connect.NewResponse(&ListPaymentsResponse{Payments: list}), nil
}

func (s *Service) UpdatePaymentStatus(ctx context.Context, req *connect.Request[UpdatePaymentStatusRequest]) (*connect.Response[PaymentResponse], error) {
	id, err := rpc.ParseID("id", req.Msg.ID)
	if err != nil {
		return nil, err
	}
	p, err := s.app.UpdatePaymentStatus(ctx, id, req.Msg.Status)
	if err != nil {
		return nil, rpc.ToConnectError(err)
	}
	return connect.NewResponse(&PaymentResponse{Payment: p}), nil
}
