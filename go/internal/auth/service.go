package auth

import (
	"context"
	"errors"
	"net/http"

	"connectrpc.com/connect"
	"github.com/tgfriperie/cavalin-tcg-novo/go/internal/models"
	"github.com/tgfriperie/cavalin-tcg-novo/go/internal/rpc"
)

var ServiceName = rpc.ServiceName("auth", "AuthService")

// Procedures exposed by the AuthService.
var (
	LoginProcedure          = rpc.Procedure(ServiceName, "Login")
	WhoAmIProcedure         = rpc.Procedure(ServiceName, "WhoAmI")
	CreateOperatorProcedure = rpc.Procedure(ServiceName, "CreateOperator")
)

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Session *Session `json:"session"`
}

type WhoAmIRequest struct{}

type OperatorResponse struct {
	Operator *models.Operator `json:"operator"`
}

// AuthApp defines what the service layer needs from the auth application
type AuthApp interface {
	Login(ctx context.Context, email, password string) (*Session, error)
	WhoAmI(ctx context.Context, token string) (*models.Operator, error)
	CreateOperator(ctx context.Context, req CreateOperatorRequest) (*models.Operator, error)
}

// Service implements the AuthService Connect interface
type Service struct {
	app AuthApp
}

// NewService creates a new auth service
func NewService(app AuthApp) *Service {
	return &Service{app: app}
}

// Handler mounts the service.
func (s *Service) Handler(opts ...connect.HandlerOption) (string, http.Handler) {
	svc := rpc.NewService(ServiceName, opts...)
	rpc.Unary(svc, "Login", s.Login)
	rpc.Unary(svc, "WhoAmI", s.WhoAmI)
	rpc.Unary(svc, "CreateOperator", s.CreateOperator)
	return svc.Handler()
}

// Login exchanges credentials for a session token
func (s *Service) Login(ctx context.Context, req *connect.Request[LoginRequest]) (*connect.Response[LoginResponse], error) {
	session, err := s.app.Login(ctx, req.Msg.Email, req.Msg.Password)
	if err != nil {
		return nil, rpc.ToConnectError(err)
	}
	return connect.NewResponse(&LoginResponse{Session: session}), nil
}

// WhoAmI returns the operator behind the caller's token
func (s *Service) WhoAmI(ctx context.Context, req *connect.Request[WhoAmIRequest]) (*connect.Response[OperatorResponse], error) {
	token, ok := bearer(req.Header().Get("Authorization"))
	if !ok {
		return nil, connect.NewError(connect.CodeUnauthenticated, errors.New("missing bearer token"))
	}
	op, err := s.app.WhoAmI(ctx, token)
	if err != nil {
		return nil, rpc.ToConnectError(err)
	}
	return connect.NewResponse(&OperatorResponse{Operator: op}), nil
}

// CreateOperator registers a new console operator
func (s *Service) CreateOperator(ctx context.Context, req *connect.Request[CreateOperatorRequest]) (*connect.Response[OperatorResponse], error) {
	op, err := s.app.CreateOperator(ctx, *req.Msg)
	if err != nil {
		return nil, rpc.ToConnectError(err)
	}
	return connect.NewResponse(&OperatorResponse{Operator: op}), nil
}
