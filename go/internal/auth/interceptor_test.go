package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/tgfriperie/cavalin-tcg-novo/go/internal/models"
	"github.com/tgfriperie/cavalin-tcg-novo/go/internal/rpc"
)

type pingRequest struct{}

type pingResponse struct {
	Email string `json:"email"`
}

func TestInterceptor(t *testing.T) {
	issuer, _ := NewTokenIssuer("secret", time.Hour, clockwork.NewRealClock())
	token, _, _ := issuer.Issue(&models.Operator{ID: uuid.New(), Email: "op@cavallin.com"})

	svcName := rpc.ServiceName("test", "PingService")
	svc := rpc.NewService(svcName, connect.WithInterceptors(NewInterceptor(issuer, rpc.Procedure(svcName, "Public"))))
	handler := func(ctx context.Context, _ *connect.Request[pingRequest]) (*connect.Response[pingResponse], error) {
		claims, _ := ClaimsFromContext(ctx)
		return connect.NewResponse(&pingResponse{Email: claims.Email}), nil
	}
	rpc.Unary(svc, "Private", handler)
	rpc.Unary(svc, "Public", handler)

	mux := http.NewServeMux()
	mux.Handle(svc.Handler())
	srv := httptest.NewServer(mux)
	defer srv.Close()

	call := func(method, tok string) (*connect.Response[pingResponse], error) {
		client := rpc.NewClient[pingRequest, pingResponse](srv.Client(), srv.URL, rpc.Procedure(svcName, method),
			connect.WithInterceptors(BearerToken(tok)))
		return client.CallUnary(context.Background(), connect.NewRequest(&pingRequest{}))
	}

	if _, err := call("Private", ""); connect.CodeOf(err) != connect.CodeUnauthenticated {
		t.Errorf("no token: code = %v, want unauthenticated", connect.CodeOf(err))
	}
	if _, err := call("Private", "forged.token"); connect.CodeOf(err) != connect.CodeUnauthenticated {
		t.Errorf("bad token: code = %v, want unauthenticated", connect.CodeOf(err))
	}
	if _, err := call("Public", ""); err != nil {
		t.Errorf("public call error = %v", err)
	}

	res, err := call("Private", token)
	if err != nil {
		t.Fatalf("authorized call error = %v", err)
	}
	if res.Msg.Email != "op@cavallin.com" {
		t.Errorf("Email = %q, want claims email", res.Msg.Email)
	}
}

func TestRequireToken(t *testing.T) {
	issuer, _ := NewTokenIssuer("secret", time.Hour, clockwork.NewRealClock())
	token, _, _ := issuer.Issue(&models.Operator{ID: uuid.New(), Email: "op@cavallin.com"})

	h := RequireToken(issuer, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := ClaimsFromContext(r.Context()); !ok {
			t.Error("claims missing from context")
		}
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name   string
		target string
		header string
		want   int
	}{
		{"query token", "/ws?token=" + token, "", http.StatusNoContent},
		{"header token", "/ws", "Bearer " + token, http.StatusNoContent},
		{"missing", "/ws", "", http.StatusUnauthorized},
		{"invalid", "/ws?token=abc.def", "", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestForwardToken(t *testing.T) {
	issuer, _ := NewTokenIssuer("secret", time.Hour, clockwork.NewRealClock())
	token, _, _ := issuer.Issue(&models.Operator{ID: uuid.New(), Email: "floor@cavallin.com"})

	svcName := rpc.ServiceName("test", "PingService")
	svc := rpc.NewService(svcName, connect.WithInterceptors(NewInterceptor(issuer)))
	rpc.Unary(svc, "Private", func(ctx context.Context, _ *connect.Request[pingRequest]) (*connect.Response[pingResponse], error) {
		claims, _ := ClaimsFromContext(ctx)
		return connect.NewResponse(&pingResponse{Email: claims.Email}), nil
	})
	mux := http.NewServeMux()
	mux.Handle(svc.Handler())
	upstream := httptest.NewServer(mux)
	defer upstream.Close()

	client := rpc.NewClient[pingRequest, pingResponse](upstream.Client(), upstream.URL, rpc.Procedure(svcName, "Private"),
		connect.WithInterceptors(ForwardToken()))
	h := RequireToken(issuer, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		res, err := client.CallUnary(r.Context(), connect.NewRequest(&pingRequest{}))
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadGateway)
			return
		}
		w.Write([]byte(res.Msg.Email))
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/auctions/live?token="+token, nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "floor@cavallin.com" {
		t.Errorf("forwarded call = %d %q", rec.Code, rec.Body.String())
	}
}
