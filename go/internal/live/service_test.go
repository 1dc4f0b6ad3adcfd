package live

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"connectrpc.com/connect"
	"github.com/google/uuid"
)

func newTestServer(t *testing.T, f *fixture) *Client {
	t.Helper()
	mux := http.NewServeMux()
	mux.Handle(NewService(f.manager).Handler())
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return NewClient(srv.Client(), srv.URL)
}

func TestServiceRoundTrip(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	client := newTestServer(t, f)
	id := f.auction.String()

	st, err := client.OpenSession(ctx, id)
	if err != nil {
		t.Fatalf("OpenSession() error = %v", err)
	}
	if st.AuctionName != "Leilão de Sexta" || st.Card == nil || st.Card.Name != "Charizard" {
		t.Errorf("state = %+v", st)
	}

	bid, err := client.RegisterBid(ctx, id, 20, "Ana")
	if err != nil {
		t.Fatalf("RegisterBid() error = %v", err)
	}
	if !bid.Persisted || bid.State.WinningClient != "Ana" {
		t.Errorf("bid = %+v", bid)
	}

	bids, err := client.ListBids(ctx, id, f.cards[0].ID.String())
	if err != nil || len(bids.Bids) != 1 {
		t.Errorf("ListBids() = %+v, %v", bids, err)
	}

	sale, err := client.FinishSale(ctx, id)
	if err != nil {
		t.Fatalf("FinishSale() error = %v", err)
	}
	if sale.State.Index != 1 || sale.Sale.PaymentID == uuid.Nil {
		t.Errorf("sale = %+v", sale)
	}

	sessions, err := client.ListSessions(ctx)
	if err != nil || len(sessions) != 1 {
		t.Errorf("ListSessions() = %+v, %v", sessions, err)
	}
	if err := client.CloseSession(ctx, id, true); err != nil {
		t.Fatalf("CloseSession() error = %v", err)
	}
}

func TestServiceErrorCodes(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	client := newTestServer(t, f)

	tests := []struct {
		name string
		call func() error
		want connect.Code
	}{
		{
			name: "bad auction id",
			call: func() error { _, err := client.GetState(ctx, "nope"); return err },
			want: connect.CodeInvalidArgument,
		},
		{
			name: "no open session",
			call: func() error { _, err := client.StartTimer(ctx, f.auction.String()); return err },
			want: connect.CodeNotFound,
		},
		{
			name: "bad card id",
			call: func() error { _, err := client.ListBids(ctx, f.auction.String(), "x"); return err },
			want: connect.CodeInvalidArgument,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := connect.CodeOf(tt.call()); got != tt.want {
				t.Errorf("code = %v, want %v", got, tt.want)
			}
		})
	}

	if _, err := client.OpenSession(ctx, f.auction.String()); err != nil {
		t.Fatal(err)
	}
	if _, err := client.FinishSale(ctx, f.auction.String()); connect.CodeOf(err) != connect.CodeFailedPrecondition {
		t.Errorf("FinishSale() without winner code = %v", connect.CodeOf(err))
	}
	if _, err := client.RegisterBid(ctx, f.auction.String(), -1, "Ana"); connect.CodeOf(err) != connect.CodeInvalidArgument {
		t.Errorf("RegisterBid(-1) code = %v", connect.CodeOf(err))
	}
}
