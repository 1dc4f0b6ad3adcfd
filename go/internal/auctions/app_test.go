package auctions

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/tgfriperie/cavalin-tcg-novo/go/internal/inventory"
	"github.com/tgfriperie/cavalin-tcg-novo/go/internal/models"
)

type fakeAuctions struct {
	auctions map[uuid.UUID]*models.Auction
}

func (f *fakeAuctions) CreateAuction(_ context.Context, a *models.Auction) error {
	cp := *a
	f.auctions[a.ID] = &cp
	return nil
}

func (f *fakeAuctions) GetAuction(_ context.Context, id uuid.UUID) (*models.Auction, error) {
	a, ok := f.auctions[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	cp := *a
	cp.CardIDs = append([]uuid.UUID(nil), a.CardIDs...)
	return &cp, nil
}

func (f *fakeAuctions) ListAuctions(context.Context) ([]models.Auction, error) {
	var out []models.Auction
	for _, a := range f.auctions {
		out = append(out, *a)
	}
	return out, nil
}

func (f *fakeAuctions) UpdateAuction(_ context.Context, a *models.Auction) error {
	cp := *a
	cp.CardIDs = append([]uuid.UUID(nil), a.CardIDs...)
	f.auctions[a.ID] = &cp
	return nil
}

func (f *fakeAuctions) DeleteAuction(_ context.Context, id uuid.UUID) error {
	delete(f.auctions, id)
	return nil
}

type fakeCards struct {
	cards []models.Card
}

func (f *fakeCards) GetCard(_ context.Context, id uuid.UUID) (*models.Card, error) {
	for _, c := range f.cards {
		if c.ID == id {
			cp := c
			return &cp, nil
		}
	}
	return nil, models.ErrNotFound
}

func (f *fakeCards) GetCardsByIDs(_ context.Context, ids []uuid.UUID) ([]models.Card, error) {
	var out []models.Card
	for i := len(f.cards) - 1; i >= 0; i-- {
		for _, id := range ids {
			if f.cards[i].ID == id {
				out = append(out, f.cards[i])
				break
			}
		}
	}
	return out, nil
}

func (f *fakeCards) ListCards(_ context.Context, filter inventory.ListFilter) ([]models.Card, error) {
	var out []models.Card
	for _, c := range f.cards {
		if filter.Status == "" || c.Status == filter.Status {
			out = append(out, c)
		}
	}
	return out, nil
}

type fixture struct {
	app      *App
	auctions *fakeAuctions
	cards    *fakeCards
	auction  *models.Auction
	ids      []uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		auctions: &fakeAuctions{auctions: make(map[uuid.UUID]*models.Auction)},
		cards:    &fakeCards{},
	}
	for i, name := range []string{"Pikachu", "Charizard", "Blastoise", "Venusaur"} {
		c := models.Card{ID: uuid.New(), Name: name, InitialValue: float64(10 * (i + 1)), Status: models.CardStatusInventory}
		f.cards.cards = append(f.cards.cards, c)
		f.ids = append(f.ids, c.ID)
	}
	clock := clockwork.NewFakeClockAt(time.Date(2025, 4, 1, 18, 0, 0, 0, time.UTC))
	f.app = NewApp(f.auctions, f.cards, clock)

	var err error
	f.auction, err = f.app.CreateAuction(context.Background(), CreateAuctionRequest{
		Name: "Leilão de Abril",
		Date: time.Date(2025, 4, 5, 20, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("CreateAuction() error = %v", err)
	}
	return f
}

func (f *fixture) queue(t *testing.T) []uuid.UUID {
	t.Helper()
	a, err := f.app.GetAuction(context.Background(), f.auction.ID)
	if err != nil {
		t.Fatalf("GetAuction() error = %v", err)
	}
	return a.CardIDs
}

func TestCreateAuction(t *testing.T) {
	f := newFixture(t)
	if f.auction.Status != models.AuctionStatusScheduled {
		t.Errorf("Status = %q, want %q", f.auction.Status, models.AuctionStatusScheduled)
	}
	if len(f.auction.CardIDs) != 0 {
		t.Errorf("CardIDs = %v, want empty", f.auction.CardIDs)
	}

	_, err := f.app.CreateAuction(context.Background(), CreateAuctionRequest{Name: "Sem data"})
	if !errors.Is(err, models.ErrInvalidArgument) {
		t.Errorf("CreateAuction(no date) error = %v, want invalid argument", err)
	}
}

func TestUpdateAuctionStatus(t *testing.T) {
	tests := []struct {
		from, to models.AuctionStatus
		ok       bool
	}{
		{models.AuctionStatusScheduled, models.AuctionStatusLive, true},
		{models.AuctionStatusScheduled, models.AuctionStatusFinished, true},
		{models.AuctionStatusLive, models.AuctionStatusFinished, true},
		{models.AuctionStatusLive, models.AuctionStatusScheduled, false},
		{models.AuctionStatusFinished, models.AuctionStatusLive, false},
		{models.AuctionStatusFinished, models.AuctionStatusScheduled, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			f := newFixture(t)
			f.auctions.auctions[f.auction.ID].Status = tt.from

			got, err := f.app.UpdateAuctionStatus(context.Background(), f.auction.ID, tt.to)
			if tt.ok {
				if err != nil {
					t.Fatalf("UpdateAuctionStatus() error = %v", err)
				}
				if got.Status != tt.to {
					t.Errorf("Status = %q, want %q", got.Status, tt.to)
				}
				return
			}
			if !errors.Is(err, models.ErrFailedPrecondition) {
				t.Errorf("UpdateAuctionStatus() error = %v, want failed precondition", err)
			}
		})
	}
}

func TestDeleteLiveAuctionRefused(t *testing.T) {
	f := newFixture(t)
	f.auctions.auctions[f.auction.ID].Status = models.AuctionStatusLive
	if err := f.app.DeleteAuction(context.Background(), f.auction.ID); !errors.Is(err, models.ErrFailedPrecondition) {
		t.Errorf("DeleteAuction(live) error = %v, want failed precondition", err)
	}
}

func TestQueueOperations(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	id := f.auction.ID

	for _, cardID := range f.ids[:3] {
		if _, err := f.app.AddToQueue(ctx, id, cardID); err != nil {
			t.Fatalf("AddToQueue() error = %v", err)
		}
	}
	if _, err := f.app.AddToQueue(ctx, id, f.ids[1]); err != nil {
		t.Fatalf("AddToQueue(duplicate) error = %v", err)
	}
	if diff := cmp.Diff(f.ids[:3], f.queue(t)); diff != "" {
		t.Errorf("queue after adds (-want +got):\n%s", diff)
	}

	if _, err := f.app.MoveQueueItem(ctx, id, 2, DirectionUp); err != nil {
		t.Fatalf("MoveQueueItem() error = %v", err)
	}
	want := []uuid.UUID{f.ids[0], f.ids[2], f.ids[1]}
	if diff := cmp.Diff(want, f.queue(t)); diff != "" {
		t.Errorf("queue after move up (-want +got):\n%s", diff)
	}

	// Out of bounds moves change nothing.
	f.app.MoveQueueItem(ctx, id, 0, DirectionUp)
	f.app.MoveQueueItem(ctx, id, 2, DirectionDown)
	if diff := cmp.Diff(want, f.queue(t)); diff != "" {
		t.Errorf("queue after edge moves (-want +got):\n%s", diff)
	}

	if _, err := f.app.MoveQueueItem(ctx, id, 0, "sideways"); !errors.Is(err, models.ErrInvalidArgument) {
		t.Errorf("MoveQueueItem(sideways) error = %v, want invalid argument", err)
	}

	if _, err := f.app.RemoveFromQueue(ctx, id, f.ids[2]); err != nil {
		t.Fatalf("RemoveFromQueue() error = %v", err)
	}
	if _, err := f.app.RemoveFromQueue(ctx, id, uuid.New()); err != nil {
		t.Fatalf("RemoveFromQueue(absent) error = %v", err)
	}
	if diff := cmp.Diff([]uuid.UUID{f.ids[0], f.ids[1]}, f.queue(t)); diff != "" {
		t.Errorf("queue after remove (-want +got):\n%s", diff)
	}
}

func TestAddToQueueRefusesSoldCard(t *testing.T) {
	f := newFixture(t)
	f.cards.cards[0].Status = models.CardStatusSold
	if _, err := f.app.AddToQueue(context.Background(), f.auction.ID, f.ids[0]); !errors.Is(err, models.ErrFailedPrecondition) {
		t.Errorf("AddToQueue(sold) error = %v, want failed precondition", err)
	}
}

func TestQueueRefusedOnFinishedAuction(t *testing.T) {
	f := newFixture(t)
	f.auctions.auctions[f.auction.ID].Status = models.AuctionStatusFinished
	if _, err := f.app.AddToQueue(context.Background(), f.auction.ID, f.ids[0]); !errors.Is(err, models.ErrFailedPrecondition) {
		t.Errorf("AddToQueue(finished) error = %v, want failed precondition", err)
	}
}

func TestGetQueue(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	missing := uuid.New()
	f.auctions.auctions[f.auction.ID].CardIDs = []uuid.UUID{f.ids[2], missing, f.ids[0]}

	q, err := f.app.GetQueue(ctx, f.auction.ID)
	if err != nil {
		t.Fatalf("GetQueue() error = %v", err)
	}
	var names []string
	for _, c := range q.Cards {
		names = append(names, c.Name)
	}
	if diff := cmp.Diff([]string{"Blastoise", "Pikachu"}, names); diff != "" {
		t.Errorf("queue names (-want +got):\n%s", diff)
	}
	if q.TotalInitialValue != 40 {
		t.Errorf("TotalInitialValue = %v, want 40", q.TotalInitialValue)
	}
}

func TestListAvailableCards(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.cards.cards[3].Status = models.CardStatusSold
	f.app.AddToQueue(ctx, f.auction.ID, f.ids[0])

	tests := []struct {
		search string
		want   []string
	}{
		{"", []string{"Charizard", "Blastoise"}},
		{"CHAR", []string{"Charizard"}},
		{"pika", nil},
	}
	for _, tt := range tests {
		t.Run(tt.search, func(t *testing.T) {
			cards, err := f.app.ListAvailableCards(ctx, f.auction.ID, tt.search)
			if err != nil {
				t.Fatalf("ListAvailableCards() error = %v", err)
			}
			var names []string
			for _, c := range cards {
				names = append(names, c.Name)
			}
			if diff := cmp.Diff(tt.want, names); diff != "" {
				t.Errorf("ListAvailableCards(%q) (-want +got):\n%s", tt.search, diff)
			}
		})
	}
}
