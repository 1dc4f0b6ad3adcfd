package gateway

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/tgfriperie/cavalin-tcg-novo/go/internal/live/events"
)

func TestFromEnvelope(t *testing.T) {
	auction := uuid.New()
	at := time.Date(2025, 5, 2, 20, 15, 0, 0, time.UTC)

	tests := []struct {
		name    string
		env     events.Envelope
		wantErr bool
	}{
		{
			name: "bid placed",
			env: events.Envelope{
				EventID:   uuid.NewString(),
				EventType: events.BidPlaced,
				AuctionID: auction.String(),
				Timestamp: at.UnixMilli(),
				Payload:   json.RawMessage(`{"auction_id":"` + auction.String() + `","value":42,"client":"Ana"}`),
			},
		},
		{
			name: "unknown type",
			env: events.Envelope{
				EventType: "PickMade",
				AuctionID: auction.String(),
				Payload:   json.RawMessage(`{}`),
			},
			wantErr: true,
		},
		{
			name: "bad auction id",
			env: events.Envelope{
				EventType: events.TimerExpired,
				AuctionID: "leilao-1",
				Payload:   json.RawMessage(`{}`),
			},
			wantErr: true,
		},
		{
			name: "malformed payload",
			env: events.Envelope{
				EventType: events.SaleFinished,
				AuctionID: auction.String(),
				Payload:   json.RawMessage(`{"final_value":"alto"}`),
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, id, err := FromEnvelope(tt.env)
			if (err != nil) != tt.wantErr {
				t.Fatalf("FromEnvelope() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if id != auction || ev.AuctionID != auction.String() {
				t.Errorf("auction = %v / %q, want %v", id, ev.AuctionID, auction)
			}
			if !ev.Timestamp.Equal(at) {
				t.Errorf("Timestamp = %v, want %v", ev.Timestamp, at)
			}
			p, err := ParseEventPayload(ev)
			if err != nil {
				t.Fatalf("ParseEventPayload() error = %v", err)
			}
			if bid := p.(*events.BidPlacedPayload); bid.Value != 42 || bid.Client != "Ana" {
				t.Errorf("payload = %+v", bid)
			}
		})
	}
}
