package inventory

import (
	"context"
	"net/http"

	"connectrpc.com/connect"
	"github.com/google/uuid"
	"github.com/tgfriperie/cavalin-tcg-novo/go/internal/models"
	"github.com/tgfriperie/cavalin-tcg-novo/go/internal/rpc"
)

var ServiceName = rpc.ServiceName("inventory", "InventoryService")

type CardIDRequest struct {
	ID string `json:"id"`
}

type UpdateCardMessage struct {
	ID string `json:"id"`
	UpdateCardRequest
}

type CardResponse struct {
	Card *models.Card `json:"card"`
}

type DeleteCardResponse struct{}

type ListCardsResponse struct {
	Cards []models.Card `json:"cards"`
}

type InventorySummaryRequest struct {
	StockOwner string `json:"stock_owner"`
}

// InventoryApp defines what the service layer needs from the inventory application
type InventoryApp interface {
	CreateCard(ctx context.Context, req CreateCardRequest) (*models.Card, error)
	GetCard(ctx context.Context, id uuid.UUID) (*models.Card, error)
	UpdateCard(ctx context.Context, id uuid.UUID, req UpdateCardRequest) (*models.Card, error)
	DeleteCard(ctx context.Context, id uuid.UUID) error
	ListCards(ctx context.Context, filter ListFilter) ([]models.Card, error)
	InventorySummary(ctx context.Context, owner string) (*Summary, error)
}

// Service implements the InventoryService Connect interface
type Service struct {
	app InventoryApp
}

// NewService creates a new inventory service
func NewService(app InventoryApp) *Service {
	return &Service{app: app}
}

// Handler mounts the service.
func (s *Service) Handler(opts ...connect.HandlerOption) (string, http.Handler) {
	svc := rpc.NewService(ServiceName, opts...)
	rpc.Unary(svc, "CreateCard", s.CreateCard)
	rpc.Unary(svc, "GetCard", s.GetCard)
	rpc.Unary(svc, "UpdateCard", s.UpdateCard)
	rpc.Unary(svc, "DeleteCard", s.DeleteCard)
	rpc.Unary(svc, "ListCards", s.ListCards)
	rpc.Unary(svc, "InventorySummary", s.InventorySummary)
	return svc.Handler()
}

func (s *Service) CreateCard(ctx context.Context, req *connect.Request[CreateCardRequest]) (*connect.Response[CardResponse], error) {
	card, err := s.app.CreateCard(ctx, *req.Msg)
	if err != nil {
		return nil, rpc.ToConnectError(err)
	}
	return connect.NewResponse(&CardResponse{Card: card}), nil
}

func (s *Service) GetCard(ctx context.Context, req *connect.Request[CardIDRequest]) (*connect.Response[CardResponse], error) {
	id, err := rpc.ParseID("id", req.Msg.ID)
	if err != nil {
		return nil, err
	}
	card, err := s.app.GetCard(ctx, id)
	if err != nil {
		return nil, rpc.ToConnectError(err)
	}
	return connect.NewResponse(&CardResponse{Card: card}), nil
}

func (s *Service) UpdateCard(ctx context.Context, req *connect.Request[UpdateCardMessage]) (*connect.Response[CardResponse], error) {
	id, err := rpc.ParseID("id", req.Msg.ID)
	if err != nil {
		return nil, err
	}
	card, err := s.app.UpdateCard(ctx, id, req.Msg.UpdateCardRequest)
	if err != nil {
		return nil, rpc.ToConnectError(err)
	}
	return connect.NewResponse(&CardResponse{Card: card}), nil
}

func (s *Service) DeleteCard(ctx context.Context, req *connect.Request[CardIDRequest]) (*connect.Response[DeleteCardResponse], error) {
	id, err := rpc.ParseID("id", req.Msg.ID)
	if err != nil {
		return nil, err
	}
	if err := s.app.DeleteCard(ctx, id); err != nil {
		return nil, rpc.ToConnectError(err)
	}
	return connect.NewResponse(&DeleteCardResponse{}), nil
}

func (s *Service) ListCards(ctx context.Context, req *connect.Request[ListFilter]) (*connect.Response[ListCardsResponse], error) {
	cards, err := s.app.ListCards(ctx, *req.Msg)
	if err != nil {
		return nil, rpc.ToConnectError(err)
	}
	return connect.NewResponse(&ListCardsResponse{Cards: cards}), nil
}

func (s *Service) InventorySummary(ctx context.Context, req *connect.Request[InventorySummaryRequest]) (*connect.Response[Summary], error) {
	summary, err := s.app.InventorySummary(ctx, req.Msg.StockOwner)
	if err != nil {
		return nil, rpc.ToConnectError(err)
	}
	return connect.NewResponse(summary), nil
}
