package rpc

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"connectrpc.com/connect"
	"github.com/tgfriperie/cavalin-tcg-novo/go/internal/models"
)

type echoRequest struct {
	Name string `json:"name"`
}

type echoResponse struct {
	Greeting string `json:"greeting"`
}

func newEchoServer(t *testing.T) *httptest.Server {
	t.Helper()
	svc := NewService(ServiceName("test", "EchoService"))
	Unary(svc, "Echo", func(ctx context.Context, req *connect.Request[echoRequest]) (*connect.Response[echoResponse], error) {
		if req.Msg.Name == "" {
			return nil, ToConnectError(fmt.Errorf("validation failed: %w", models.ErrInvalidArgument))
		}
		if req.Msg.Name == "ghost" {
			return nil, ToConnectError(fmt.Errorf("client ghost: %w", models.ErrNotFound))
		}
		return connect.NewResponse(&echoResponse{Greeting: "olá " + req.Msg.Name}), nil
	})

	mux := http.NewServeMux()
	mux.Handle(svc.Handler())
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestUnaryRoundTrip(t *testing.T) {
	srv := newEchoServer(t)
	client := NewClient[echoRequest, echoResponse](srv.Client(), srv.URL, "/cavallin.test.v1.EchoService/Echo")

	res, err := client.CallUnary(context.Background(), connect.NewRequest(&echoRequest{Name: "Rafael"}))
	if err != nil {
		t.Fatalf("CallUnary() error = %v", err)
	}
	if res.Msg.Greeting != "olá Rafael" {
		t.Errorf("Greeting = %q, want %q", res.Msg.Greeting, "olá Rafael")
	}
}

func TestUnaryErrorCodes(t *testing.T) {
	srv := newEchoServer(t)
	client := NewClient[echoRequest, echoResponse](srv.Client(), srv.URL, "/cavallin.test.v1.EchoService/Echo")

	tests := []struct {
		name string
		want connect.Code
	}{
		{"", connect.CodeInvalidArgument},
		{"ghost", connect.CodeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.want.String(), func(t *testing.T) {
			_, err := client.CallUnary(context.Background(), connect.NewRequest(&echoRequest{Name: tt.name}))
			if got := connect.CodeOf(err); got != tt.want {
				t.Errorf("CodeOf() = %v, want %v (err = %v)", got, tt.want, err)
			}
		})
	}
}

func TestUnknownProcedure(t *testing.T) {
	srv := newEchoServer(t)
	res, err := srv.Client().Post(srv.URL+"/cavallin.test.v1.EchoService/Nope", "application/json", nil)
	if err != nil {
		t.Fatalf("Post() error = %v", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", res.StatusCode)
	}
}

func TestToConnectErrorInternal(t *testing.T) {
	err := ToConnectError(errors.New("disk on fire"))
	if connect.CodeOf(err) != connect.CodeInternal {
		t.Errorf("CodeOf() = %v, want internal", connect.CodeOf(err))
	}
	if ToConnectError(nil) != nil {
		t.Error("ToConnectError(nil) should be nil")
	}
}

func TestParseID(t *testing.T) {
	if _, err := ParseID("card_id", "not-a-uuid"); connect.CodeOf(err) != connect.CodeInvalidArgument {
		t.Errorf("ParseID() code = %v, want invalid_argument", connect.CodeOf(err))
	}
}
