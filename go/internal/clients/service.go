package clients

import (
	"context"
	"net/http"

	"connectrpc.com/connect"
	"github.com/google/uuid"
	"github.com/tgfriperie/cavalin-tcg-novo/go/internal/models"
	"github.com/tgfriperie/cavalin-tcg-novo/go/internal/rpc"
)

var ServiceName = rpc.ServiceName("clients", "ClientService")

type GetClientRequest struct {
	ID string `json:"id"`
}

type UpdateClientMessage struct {
	ID string `json:"id"`
	UpdateClientRequest
}

type ClientResponse struct {
	Client *models.Client `json:"client"`
}

type ListClientsRequest struct{}

type ListClientsResponse struct {
	Clients []models.Client `json:"clients"`
}

// ClientsApp defines what the service layer needs from the clients application
type ClientsApp interface {
	CreateClient(ctx context.Context, req CreateClientRequest) (*models.Client, error)
	GetClient(ctx context.Context, id uuid.UUID) (*models.Client, error)
	ListClients(ctx context.Context) ([]models.Client, error)
	UpdateClient(ctx context.Context, id uuid.UUID, req UpdateClientRequest) (*models.Client, error)
}

// Service implements the ClientService Connect interface
type Service struct {
	app ClientsApp
}

// NewService creates a new clients service
func NewService(app ClientsApp) *Service {
	return &Service{app: app}
}

// Handler mounts the service.
func (s *Service) Handler(opts ...connect.HandlerOption) (string, http.Handler) {
	svc := rpc.NewService(ServiceName, opts...)
	rpc.Unary(svc, "CreateClient", s.CreateClient)
	rpc.Unary(svc, "GetClient", s.GetClient)
	rpc.Unary(svc, "ListClients", s.ListClients)
	rpc.Unary(svc, "UpdateClient", s.UpdateClient)
	return svc.Handler()
}

func (s *Service) CreateClient(ctx context.Context, req *connect.Request[CreateClientRequest]) (*connect.Response[ClientResponse], error) {
	c, err := s.app.CreateClient(ctx, *req.Msg)
	if err != nil {
		return nil, rpc.ToConnectError(err)
	}
	return connect.NewResponse(&ClientResponse{Client: c}), nil
}

func (s *Service) GetClient(ctx context.Context, req *connect.Request[GetClientRequest]) (*connect.Response[ClientResponse], error) {
	id, err := rpc.ParseID("id", req.Msg.ID)
	if err != nil {
		return nil, err
	}
	c, err := s.app.GetClient(ctx, id)
	if err != nil {
		return nil, rpc.ToConnectError(err)
	}
	return connect.NewResponse(&ClientResponse{Client: c}), nil
}

func (s *Service) ListClients(ctx context.Context, _ *connect.Request[ListClientsRequest]) (*connect.Response[ListClientsResponse], error) {
	list, err := s.app.ListClients(ctx)
	if err != nil {
		return nil, rpc.ToConnectError(err)
	}
	return connect.NewResponse(&ListClientsResponse{Clients: list}), nil
}

func (s *Service) UpdateClient(ctx context.Context, req *connect.Request[UpdateClientMessage]) (*connect.Response[ClientResponse], error) {
	id, err := rpc.ParseID("id", req.Msg.ID)
	if err != nil {
		return nil, err
	}
	c, err := s.app.UpdateClient(ctx, id, req.Msg.UpdateClientRequest)
	if err != nil {
		return nil, rpc.ToConnectError(err)
	}
	return connect.NewResponse(&ClientResponse{Client: c}), nil
}
