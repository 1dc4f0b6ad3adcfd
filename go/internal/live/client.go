package live

import (
	"context"

	"connectrpc.com/connect"
	"github.com/tgfriperie/cavalin-tcg-novo/go/internal/rpc"
)

// Client calls LiveService on the console API. The floor console drives the
// session with it and the gateway reads snapshots.
type Client struct {
	open     *connect.Client[AuctionRequest, StateResponse]
	close    *connect.Client[CloseSessionRequest, CloseSessionResponse]
	state    *connect.Client[AuctionRequest, StateResponse]
	sessions *connect.Client[ListSessionsRequest, ListSessionsResponse]
	start    *connect.Client[AuctionRequest, StateResponse]
	pause    *connect.Client[AuctionRequest, StateResponse]
	reset    *connect.Client[AuctionRequest, StateResponse]
	next     *connect.Client[AuctionRequest, StateResponse]
	prev     *connect.Client[AuctionRequest, StateResponse]
	bid      *connect.Client[RegisterBidRequest, BidResult]
	sale     *connect.Client[AuctionRequest, SaleResult]
	bids     *connect.Client[ListBidsRequest, ListBidsResponse]
	share    *connect.Client[AuctionRequest, ShareMessage]
}

// NewClient creates a LiveService client for baseURL
func NewClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *Client {
	proc := func(method string) string { return rpc.Procedure(ServiceName, method) }
	return &Client{
		open:     rpc.NewClient[AuctionRequest, StateResponse](httpClient, baseURL, proc("OpenSession"), opts...),
		close:    rpc.NewClient[CloseSessionRequest, CloseSessionResponse](httpClient, baseURL, proc("CloseSession"), opts...),
		state:    rpc.NewClient[AuctionRequest, StateResponse](httpClient, baseURL, proc("GetState"), opts...),
		sessions: rpc.NewClient[ListSessionsRequest, ListSessionsResponse](httpClient, baseURL, proc("ListSessions"), opts...),
		start:    rpc.NewClient[AuctionRequest, StateResponse](httpClient, baseURL, proc("StartTimer"), opts...),
		pause:    rpc.NewClient[AuctionRequest, StateResponse](httpClient, baseURL, proc("PauseTimer"), opts...),
		reset:    rpc.NewClient[AuctionRequest, StateResponse](httpClient, baseURL, proc("ResetTimer"), opts...),
		next:     rpc.NewClient[AuctionRequest, StateResponse](httpClient, baseURL, proc("NextItem"), opts...),
		prev:     rpc.NewClient[AuctionRequest, StateResponse](httpClient, baseURL, proc("PrevItem"), opts...),
		bid:      rpc.NewClient[RegisterBidRequest, BidResult](httpClient, baseURL, proc("RegisterBid"), opts...),
		sale:     rpc.NewClient[AuctionRequest, SaleResult](httpClient, baseURL, proc("FinishSale"), opts...),
		bids:     rpc.NewClient[ListBidsRequest, ListBidsResponse](httpClient, baseURL, proc("ListBids"), opts...),
		share:    rpc.NewClient[AuctionRequest, ShareMessage](httpClient, baseURL, proc("ShareMessage"), opts...),
	}
}

func callState(ctx context.Context, c *connect.Client[AuctionRequest, StateResponse], auctionID string) (*State, error) {
	res, err := c.CallUnary(ctx, connect.NewRequest(&AuctionRequest{AuctionID: auctionID}))
	if err != nil {
		return nil, err
	}
	return res.Msg.State, nil
}

func (c *Client) OpenSession(ctx context.Context, auctionID string) (*State, error) {
	return callState(ctx, c.open, auctionID)
}

func (c *Client) CloseSession(ctx context.Context, auctionID string, finalize bool) error {
	_, err := c.close.CallUnary(ctx, connect.NewRequest(&CloseSessionRequest{AuctionID: auctionID, Finalize: finalize}))
	return err
}

func (c *Client) GetState(ctx context.Context, auctionID string) (*State, error) {
	return callState(ctx, c.state, auctionID)
}

func (c *Client) ListSessions(ctx context.Context) ([]SessionInfo, error) {
	res, err := c.sessions.CallUnary(ctx, connect.NewRequest(&ListSessionsRequest{}))
	if err != nil {
		return nil, err
	}
	return res.Msg.Sessions, nil
}

func (c *Client) StartTimer(ctx context.Context, auctionID string) (*State, error) {
	return callState(ctx, c.start, auctionID)
}

func (c *Client) PauseTimer(ctx context.Context, auctionID string) (*State, error) {
	return callState(ctx, c.pause, auctionID)
}

func (c *Client) ResetTimer(ctx context.Context, auctionID string) (*State, error) {
	return callState(ctx, c.reset, auctionID)
}

func (c *Client) NextItem(ctx context.Context, auctionID string) (*State, error) {
	return callState(ctx, c.next, auctionID)
}

func (c *Client) PrevItem(ctx context.Context, auctionID string) (*State, error) {
	return callState(ctx, c.prev, auctionID)
}

func (c *Client) RegisterBid(ctx context.Context, auctionID string, value float64, client string) (*BidResult, error) {
	res, err := c.bid.CallUnary(ctx, connect.NewRequest(&RegisterBidRequest{AuctionID: auctionID, Value: value, Client: client}))
	if err != nil {
		return nil, err
	}
	return res.Msg, nil
}

func (c *Client) FinishSale(ctx context.Context, auctionID string) (*SaleResult, error) {
	res, err := c.sale.CallUnary(ctx, connect.NewRequest(&AuctionRequest{AuctionID: auctionID}))
	if err != nil {
		return nil, err
	}
	return res.Msg, nil
}

func (c *Client) ListBids(ctx context.Context, auctionID, cardID string) (*ListBidsResponse, error) {
	res, err := c.bids.CallUnary(ctx, connect.NewRequest(&ListBidsRequest{AuctionID: auctionID, CardID: cardID}))
	if err != nil {
		return nil, err
	}
	return res.Msg, nil
}

func (c *Client) ShareMessage(ctx context.Context, auctionID string) (*ShareMessage, error) {
	res, err := c.share.CallUnary(ctx, connect.NewRequest(&AuctionRequest{AuctionID: auctionID}))
	if err != nil {
		return nil, err
	}
	return res.Msg, nil
}
