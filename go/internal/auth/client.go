package auth

import (
	"context"

	"connectrpc.com/connect"
	"github.com/tgfriperie/cavalin-tcg-novo/go/internal/rpc"
)

// Client calls AuthService.Login for command-line tools that need a session token.
type Client struct {
	login *connect.Client[LoginRequest, LoginResponse]
}

func NewClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *Client {
	return &Client{
		login: rpc.NewClient[LoginRequest, LoginResponse](httpClient, baseURL, LoginProcedure, opts...),
	}
}

func (c *Client) Login(ctx context.Context, email, password string) (*Session, error) {
	res, err := c.login.CallUnary(ctx, connect.NewRequest(&LoginRequest{Email: email, Password: password}))
	if err != nil {
		return nil, err
	}
	return res.Msg.Session, nil
}
