package auctions

import (
	"context"
	"net/http"

	"connectrpc.com/connect"
	"github.com/google/uuid"
	"github.com/tgfriperie/cavalin-tcg-novo/go/internal/models"
	"github.com/tgfriperie/cavalin-tcg-novo/go/internal/rpc"
)

var ServiceName = rpc.ServiceName("auctions", "AuctionService")

type AuctionIDRequest struct {
	ID string `json:"id"`
}

type UpdateAuctionMessage struct {
	ID string `json:"id"`
	UpdateAuctionRequest
}

type UpdateAuctionStatusRequest struct {
	ID     string               `json:"id"`
	Status models.AuctionStatus `json:"status"`
}

type QueueItemRequest struct {
	AuctionID string `json:"auction_id"`
	CardID    string `json:"card_id"`
}

type MoveQueueItemRequest struct {
	AuctionID string    `json:"auction_id"`
	Index     int       `json:"index"`
	Direction Direction `json:"direction"`
}

type ListAvailableCardsRequest struct {
	AuctionID string `json:"auction_id"`
	Search    string `json:"search"`
}

type AuctionResponse struct {
	Auction *models.Auction `json:"auction"`
}

type ListAuctionsRequest struct{}

type ListAuctionsResponse struct {
	Auctions []models.Auction `json:"auctions"`
}

type DeleteAuctionResponse struct{}

type ListAvailableCardsResponse struct {
	Cards []models.Card `json:"cards"`
}

// AuctionsApp defines what the service layer needs from the auctions application
type AuctionsApp interface {
	CreateAuction(ctx context.Context, req CreateAuctionRequest) (*models.Auction, error)
	GetAuction(ctx context.Context, id uuid.UUID) (*models.Auction, error)
	ListAuctions(ctx context.Context) ([]models.Auction, error)
	UpdateAuction(ctx context.Context, id uuid.UUID, req UpdateAuctionRequest) (*models.Auction, error)
	UpdateAuctionStatus(ctx context.Context, id uuid.UUID, status models.AuctionStatus) (*models.Auction, error)
	DeleteAuction(ctx context.Context, id uuid.UUID) error
	AddToQueue(ctx context.Context, auctionID, cardID uuid.UUID) (*models.Auction, error)
	RemoveFromQueue(ctx context.Context, auctionID, cardID uuid.UUID) (*models.Auction, error)
	MoveQueueItem(ctx context.Context, auctionID uuid.UUID, index int, dir Direction) (*models.Auction, error)
	GetQueue(ctx context.Context, auctionID uuid.UUID) (*Queue, error)
	ListAvailableCards(ctx context.Context, auctionID uuid.UUID, search string) ([]models.Card, error)
}

// Service implements the AuctionService Connect interface
type Service struct {
	app AuctionsApp
}

// NewService creates a new auctions service
func NewService(app AuctionsApp) *Service {
	return &Service{app: app}
}

// Handler mounts the service.
func (s *Service) Handler(opts ...connect.HandlerOption) (string, http.Handler) {
	svc := rpc.NewService(ServiceName, opts...)
	rpc.Unary(svc, "CreateAuction", s.CreateAuction)
	rpc.Unary(svc, "GetAuction", s.GetAuction)
	rpc.Unary(svc, "ListAuctions", s.ListAuctions)
	rpc.Unary(svc, "UpdateAuction", s.UpdateAuction)
	rpc.Unary(svc, "UpdateAuctionStatus", s.UpdateAuctionStatus)
	rpc.Unary(svc, "DeleteAuction", s.DeleteAuction)
	rpc.Unary(svc, "AddToQueue", s.AddToQueue)
	rpc.Unary(svc, "RemoveFromQueue", s.RemoveFromQueue)
	rpc.Unary(svc, "MoveQueueItem", s.MoveQueueItem)
	rpc.Unary(svc, "GetQueue", s.GetQueue)
	rpc.Unary(svc, "ListAvailableCards", s.ListAvailableCards)
	return svc.Handler()
}

func (s *Service) CreateAuction(ctx context.Context, req *connect.Request[CreateAuctionRequest]) (*connect.Response[AuctionResponse], error) {
	auction, err := s.app.CreateAuction(ctx, *req.Msg)
	return auctionResponse(auction, err)
}

func (s *Service) GetAuction(ctx context.Context, req *connect.Request[AuctionIDRequest]) (*connect.Response[AuctionResponse], error) {
	id, err := rpc.ParseID("id", req.Msg.ID)
	if err != nil {
		return nil, err
	}
	auction, err := s.app.GetAuction(ctx, id)
	return auctionResponse(auction, err)
}

func (s *Service) ListAuctions(ctx context.Context, _ *connect.Request[ListAuctionsRequest]) (*connect.Response[ListAuctionsResponse], error) {
	list, err := s.app.ListAuctions(ctx)
	if err != nil {
		return nil, rpc.ToConnectError(err)
	}
	return connect.NewResponse(&ListAuctionsResponse{Auctions: list}), nil
}

func (s *Service) UpdateAuction(ctx context.Context, req *connect.Request[UpdateAuctionMessage]) (*connect.Response[AuctionResponse], error) {
	id, err := rpc.ParseID("id", req.Msg.ID)
	if err != nil {
		return nil, err
	}
	auction, err := s.app.UpdateAuction(ctx, id, req.Msg.UpdateAuctionRequest)
	return auctionResponse(auction, err)
}

func (s *Service) UpdateAuctionStatus(ctx context.Context, req *connect.Request[UpdateAuctionStatusRequest]) (*connect.Response[AuctionResponse], error) {
	id, err := rpc.ParseID("id", req.Msg.ID)
	if err != nil {
		return nil, err
	}
	auction, err := s.app.UpdateAuctionStatus(ctx, id, req.Msg.Status)
	return auctionResponse(auction, err)
}

func (s *Service) DeleteAuction(ctx context.Context, req *connect.Request[AuctionIDRequest]) (*connect.Response[DeleteAuctionResponse], error) {
	id, err := rpc.ParseID("id", req.Msg.ID)
	if err != nil {
		return nil, err
	}
	if err := s.app.DeleteAuction(ctx, id); err != nil {
		return nil, rpc.ToConnectError(err)
	}
	return connect.NewResponse(&DeleteAuctionResponse{}), nil
}

func (s *Service) AddToQueue(ctx context.Context, req *connect.Request[QueueItemRequest]) (*connect.Response[AuctionResponse], error) {
	auctionID, cardID, err := parseQueueItem(req.Msg)
	if err != nil {
		return nil, err
	}
	auction, err := s.app.AddToQueue(ctx, auctionID, cardID)
	return auctionResponse(auction, err)
}

func (s *Service) RemoveFromQueue(ctx context.Context, req *connect.Request[QueueItemRequest]) (*connect.Response[AuctionResponse], error) {
	auctionID, cardID, err := parseQueueItem(req.Msg)
	if err != nil {
		return nil, err
	}
	auction, err := s.app.RemoveFromQueue(ctx, auctionID, cardID)
	return auctionResponse(auction, err)
}

func (s *Service) MoveQueueItem(ctx context.Context, req *connect.Request[MoveQueueItemRequest]) (*connect.Response[AuctionResponse], error) {
	id, err := rpc.ParseID("auction_id", req.Msg.AuctionID)
	if err != nil {
		return nil, err
	}
	auction, err := s.app.MoveQueueItem(ctx, id, req.Msg.Index, req.Msg.Direction)
	return auctionResponse(auction, err)
}

func (s *Service) GetQueue(ctx context.Context, req *connect.Request[AuctionIDRequest]) (*connect.Response[Queue], error) {
	id, err := rpc.ParseID("id", req.Msg.ID)
	if err != nil {
		return nil, err
	}
	queue, err := s.app.GetQueue(ctx, id)
	if err != nil {
		return nil, rpc.ToConnectError(err)
	}
	return connect.NewResponse(queue), nil
}

func (s *Service) ListAvailableCards(ctx context.Context, req *connect.Request[ListAvailableCardsRequest]) (*connect.Response[ListAvailableCardsResponse], error) {
	id, err := rpc.ParseID("auction_id", req.Msg.AuctionID)
	if err != nil {
		return nil, err
	}
	cards, err := s.app.ListAvailableCards(ctx, id, req.Msg.Search)
	if err != nil {
		return nil, rpc.ToConnectError(err)
	}
	return connect.NewResponse(&ListAvailableCardsResponse{Cards: cards}), nil
}

func auctionResponse(auction *models.Auction, err error) (*connect.Response[AuctionResponse], error) {
	if err != nil {
		return nil, rpc.ToConnectError(err)
	}
	return connect.NewResponse(&AuctionResponse{Auction: auction}), nil
}

func parseQueueItem(msg *QueueItemRequest) (uuid.UUID, uuid.UUID, error) {
	auctionID, err := rpc.ParseID("auction_id", msg.AuctionID)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	cardID, err := rpc.ParseID("card_id", msg.CardID)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	return auctionID, cardID, nil
}
