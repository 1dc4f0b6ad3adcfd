package events

import (
	"testing"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name    string
		typ     EventType
		raw     string
		wantErr bool
	}{
		{"bid placed", BidPlaced, `{"auction_id":"a","value":12.5,"client":"Ana"}`, false},
		{"timer shares payload", TimerPaused, `{"auction_id":"a","remaining_seconds":12,"paused":true}`, false},
		{"unknown type", "PickMade", `{}`, true},
		{"empty payload", SaleFinished, ``, true},
		{"malformed payload", ItemChanged, `{"index":"first"}`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.typ, []byte(tt.raw))
			if (err != nil) != tt.wantErr {
				t.Errorf("Decode() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}

	p, err := Decode(BidPlaced, []byte(`{"value":30,"client":"Bia"}`))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	bid, ok := p.(*BidPlacedPayload)
	if !ok || bid.Value != 30 || bid.Client != "Bia" {
		t.Errorf("Decode() = %#v", p)
	}
}

func TestSubject(t *testing.T) {
	if got := Subject(TimerExpired); got != "auction.events.TimerExpired" {
		t.Errorf("Subject() = %q", got)
	}
}
