package live

import (
	"context"
	"net/http"

	"connectrpc.com/connect"
	"github.com/google/uuid"
	"github.com/tgfriperie/cavalin-tcg-novo/go/internal/models"
	"github.com/tgfriperie/cavalin-tcg-novo/go/internal/rpc"
)

// ServiceName is the Connect service name of the live floor
var ServiceName = rpc.ServiceName("live", "LiveService")

// AuctionRequest addresses the session of one auction
type AuctionRequest struct {
	AuctionID string `json:"auction_id"`
}

// CloseSessionRequest closes a session, optionally finalizing the auction
type CloseSessionRequest struct {
	AuctionID string `json:"auction_id"`
	Finalize  bool   `json:"finalize"`
}

// CloseSessionResponse is empty
type CloseSessionResponse struct{}

// StateResponse carries a session snapshot
type StateResponse struct {
	State *State `json:"state"`
}

// RegisterBidRequest is a bid on the active card
type RegisterBidRequest struct {
	AuctionID string  `json:"auction_id"`
	Value     float64 `json:"value"`
	Client    string  `json:"client"`
}

// ListBidsRequest filters the bid ledger by auction and, optionally, card
type ListBidsRequest struct {
	AuctionID string `json:"auction_id"`
	CardID    string `json:"card_id,omitempty"`
}

// ListBidsResponse lists bids newest first
type ListBidsResponse struct {
	Bids []models.Bid `json:"bids"`
}

// ListSessionsRequest is empty
type ListSessionsRequest struct{}

// ListSessionsResponse lists the open sessions
type ListSessionsResponse struct {
	Sessions []SessionInfo `json:"sessions"`
}

// Engine defines what the service layer needs from the live engine
type Engine interface {
	OpenSession(ctx context.Context, auctionID uuid.UUID) (*State, error)
	CloseSession(ctx context.Context, auctionID uuid.UUID, finalize bool) error
	GetState(ctx context.Context, auctionID uuid.UUID) (*State, error)
	ListSessions() []SessionInfo
	StartTimer(ctx context.Context, auctionID uuid.UUID) (*State, error)
	PauseTimer(ctx context.Context, auctionID uuid.UUID) (*State, error)
	ResetTimer(ctx context.Context, auctionID uuid.UUID) (*State, error)
	NextItem(ctx context.Context, auctionID uuid.UUID) (*State, error)
	PrevItem(ctx context.Context, auctionID uuid.UUID) (*State, error)
	RegisterBid(ctx context.Context, auctionID uuid.UUID, value float64, client string) (*BidResult, error)
	FinishSale(ctx context.Context, auctionID uuid.UUID) (*SaleResult, error)
	ListBids(ctx context.Context, auctionID uuid.UUID, cardID *uuid.UUID) ([]models.Bid, error)
	ShareMessage(ctx context.Context, auctionID uuid.UUID) (*ShareMessage, error)
}

// Service implements the LiveService Connect interface
type Service struct {
	engine Engine
}

// NewService creates a new live service
func NewService(engine Engine) *Service {
	return &Service{engine: engine}
}

// Handler mounts the service.
func (s *Service) Handler(opts ...connect.HandlerOption) (string, http.Handler) {
	svc := rpc.NewService(ServiceName, opts...)
	rpc.Unary(svc, "OpenSession", s.OpenSession)
	rpc.Unary(svc, "CloseSession", s.CloseSession)
	rpc.Unary(svc, "GetState", s.GetState)
	rpc.Unary(svc, "ListSessions", s.ListSessions)
	rpc.Unary(svc, "StartTimer", s.stateOp(s.engine.StartTimer))
	rpc.Unary(svc, "PauseTimer", s.stateOp(s.engine.PauseTimer))
	rpc.Unary(svc, "ResetTimer", s.stateOp(s.engine.ResetTimer))
	rpc.Unary(svc, "NextItem", s.stateOp(s.engine.NextItem))
	rpc.Unary(svc, "PrevItem", s.stateOp(s.engine.PrevItem))
	rpc.Unary(svc, "RegisterBid", s.RegisterBid)
	rpc.Unary(svc, "FinishSale", s.FinishSale)
	rpc.Unary(svc, "ListBids", s.ListBids)
	rpc.Unary(svc, "ShareMessage", s.ShareMessage)
	return svc.Handler()
}

// OpenSession opens the floor for an auction
func (s *Service) OpenSession(ctx context.Context, req *connect.Request[AuctionRequest]) (*connect.Response[StateResponse], error) {
	return s.stateOp(s.engine.OpenSession)(ctx, req)
}

// GetState returns the session snapshot
func (s *Service) GetState(ctx context.Context, req *connect.Request[AuctionRequest]) (*connect.Response[StateResponse], error) {
	return s.stateOp(s.engine.GetState)(ctx, req)
}

// stateOp adapts an engine operation that takes an auction and answers with state.
func (s *Service) stateOp(op func(context.Context, uuid.UUID) (*State, error)) func(context.Context, *connect.Request[AuctionRequest]) (*connect.Response[StateResponse], error) {
	return func(ctx context.Context, req *connect.Request[AuctionRequest]) (*connect.Response[StateResponse], error) {
		id, err := rpc.ParseID("auction_id", req.Msg.AuctionID)
		if err != nil {
			return nil, err
		}
		st, err := op(ctx, id)
		if err != nil {
			return nil, rpc.ToConnectError(err)
		}
		return connect.NewResponse(&StateResponse{State: st}), nil
	}
}

// CloseSession closes the floor for an auction
func (s *Service) CloseSession(ctx context.Context, req *connect.Request[CloseSessionRequest]) (*connect.Response[CloseSessionResponse], error) {
	id, err := rpc.ParseID("auction_id", req.Msg.AuctionID)
	if err != nil {
		return nil, err
	}
	if err := s.engine.CloseSession(ctx, id, req.Msg.Finalize); err != nil {
		return nil, rpc.ToConnectError(err)
	}
	return connect.NewResponse(&CloseSessionResponse{}), nil
}

// ListSessions lists the open sessions
func (s *Service) ListSessions(ctx context.Context, req *connect.Request[ListSessionsRequest]) (*connect.Response[ListSessionsResponse], error) {
	return connect.NewResponse(&ListSessionsResponse{Sessions: s.engine.ListSessions()}), nil
}

// RegisterBid registers a bid on the active card
func (s *Service) RegisterBid(ctx context.Context, req *connect.Request[RegisterBidRequest]) (*connect.Response[BidResult], error) {
	id, err := rpc.ParseID("auction_id", req.Msg.AuctionID)
	if err != nil {
		return nil, err
	}
	res, err := s.engine.RegisterBid(ctx, id, req.Msg.Value, req.Msg.Client)
	if err != nil {
		return nil, rpc.ToConnectError(err)
	}
	return connect.NewResponse(res), nil
}

// FinishSale sells the active card to the winning client
func (s *Service) FinishSale(ctx context.Context, req *connect.Request[AuctionRequest]) (*connect.Response[SaleResult], error) {
	id, err := rpc.ParseID("auction_id", req.Msg.AuctionID)
	if err != nil {
		return nil, err
	}
	res, err := s.engine.FinishSale(ctx, id)
	if err != nil {
		return nil, rpc.ToConnectError(err)
	}
	return connect.NewResponse(res), nil
}

// ListBids returns the bid ledger of an auction
func (s *Service) ListBids(ctx context.Context, req *connect.Request[ListBidsRequest]) (*connect.Response[ListBidsResponse], error) {
	id, err := rpc.ParseID("auction_id", req.Msg.AuctionID)
	if err != nil {
		return nil, err
	}
	var cardID *uuid.UUID
	if req.Msg.CardID != "" {
		cid, err := rpc.ParseID("card_id", req.Msg.CardID)
		if err != nil {
			return nil, err
		}
		cardID = &cid
	}
	bids, err := s.engine.ListBids(ctx, id, cardID)
	if err != nil {
		return nil, rpc.ToConnectError(err)
	}
	if bids == nil {
		bids = []models.Bid{}
	}
	return connect.NewResponse(&ListBidsResponse{Bids: bids}), nil
}

// ShareMessage renders the share message for the active card
func (s *Service) ShareMessage(ctx context.Context, req *connect.Request[AuctionRequest]) (*connect.Response[ShareMessage], error) {
	id, err := rpc.ParseID("auction_id", req.Msg.AuctionID)
	if err != nil {
		return nil, err
	}
	msg, err := s.engine.ShareMessage(ctx, id)
	if err != nil {
		return nil, rpc.ToConnectError(err)
	}
	return connect.NewResponse(msg), nil
}
