package auctions

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
	"github.com/tgfriperie/cavalin-tcg-novo/go/internal/inventory"
	"github.com/tgfriperie/cavalin-tcg-novo/go/internal/models"
)

// AuctionsRepository defines what the app layer needs from the repository
type AuctionsRepository interface {
	CreateAuction(ctx context.Context, a *models.Auction) error
	GetAuction(ctx context.Context, id uuid.UUID) (*models.Auction, error)
	ListAuctions(ctx context.Context) ([]models.Auction, error)
	UpdateAuction(ctx context.Context, a *models.Auction) error
	DeleteAuction(ctx context.Context, id uuid.UUID) error
}

// CardLookup is the inventory access the queue needs
type CardLookup interface {
	GetCard(ctx context.Context, id uuid.UUID) (*models.Card, error)
	GetCardsByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Card, error)
	ListCards(ctx context.Context, filter inventory.ListFilter) ([]models.Card, error)
}

// App handles auction business logic
type App struct {
	repo  AuctionsRepository
	cards CardLookup
	clock clockwork.Clock
}

// NewApp creates a new auctions App
func NewApp(repo AuctionsRepository, cards CardLookup, clock clockwork.Clock) *App {
	return &App{repo: repo, cards: cards, clock: clock}
}

// CreateAuction schedules an auction with an empty queue
func (a *App) CreateAuction(ctx context.Context, req CreateAuctionRequest) (*models.Auction, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := validateCreateAuctionRequest(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	now := a.clock.Now().UTC()
	auction := &models.Auction{
		ID:          uuid.New(),
		Name:        req.Name,
		Date:        req.Date,
		Description: req.Description,
		Status:      models.AuctionStatusScheduled,
		CardIDs:     []uuid.UUID{},
		WinningBids: []models.WinningBid{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := a.repo.CreateAuction(ctx, auction); err != nil {
		return nil, err
	}
	log.Info().Str("auction_id", auction.ID.String()).Str("name", auction.Name).Msg("created auction")
	return auction, nil
}

// GetAuction retrieves an auction by ID
func (a *App) GetAuction(ctx context.Context, id uuid.UUID) (*models.Auction, error) {
	return a.repo.GetAuction(ctx, id)
}

// ListAuctions returns every auction, latest date first
func (a *App) ListAuctions(ctx context.Context) ([]models.Auction, error) {
	return a.repo.ListAuctions(ctx)
}

// UpdateAuction changes the name, date or description of an auction
func (a *App) UpdateAuction(ctx context.Context, id uuid.UUID, req UpdateAuctionRequest) (*models.Auction, error) {
	auction, err := a.repo.GetAuction(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		auction.Name = strings.TrimSpace(*req.Name)
	}
	if req.Date != nil {
		auction.Date = *req.Date
	}
	if req.Description != nil {
		auction.Description = *req.Description
	}
	if err := validateCreateAuctionRequest(CreateAuctionRequest{Name: auction.Name, Date: auction.Date}); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	return auction, a.save(ctx, auction)
}

// UpdateAuctionStatus moves an auction forward in its lifecycle
func (a *App) UpdateAuctionStatus(ctx context.Context, id uuid.UUID, status models.AuctionStatus) (*models.Auction, error) {
	auction, err := a.repo.GetAuction(ctx, id)
	if err != nil {
		return nil, err
	}
	if auction.Status == status {
		return auction, nil
	}
	if !CanTransition(auction.Status, status) {
		return nil, fmt.Errorf("auction %s: %w: cannot move from %q to %q",
			id, models.ErrFailedPrecondition, auction.Status, status)
	}

	auction.Status = status
	if err := a.save(ctx, auction); err != nil {
		return nil, err
	}
	log.Info().Str("auction_id", id.String()).Str("status", string(status)).Msg("auction status changed")
	return auction, nil
}

// DeleteAuction removes an auction that is not live
func (a *App) DeleteAuction(ctx context.Context, id uuid.UUID) error {
	auction, err := a.repo.GetAuction(ctx, id)
	if err != nil {
		return err
	}
	if auction.Status == models.AuctionStatusLive {
		return fmt.Errorf("auction %s: %w: auction is live", id, models.ErrFailedPrecondition)
	}
	if err := a.repo.DeleteAuction(ctx, id); err != nil {
		return err
	}
	log.Info().Str("auction_id", id.String()).Msg("deleted auction")
	return nil
}

// AddToQueue appends an inventory card to the queue. Queued cards are left where they are.
func (a *App) AddToQueue(ctx context.Context, auctionID, cardID uuid.UUID) (*models.Auction, error) {
	auction, err := a.queueAuction(ctx, auctionID)
	if err != nil {
		return nil, err
	}
	if auction.QueueIndex(cardID) >= 0 {
		return auction, nil
	}
	card, err := a.cards.GetCard(ctx, cardID)
	if err != nil {
		return nil, err
	}
	if card.Status != models.CardStatusInventory {
		return nil, fmt.Errorf("card %s: %w: card is not in inventory", cardID, models.ErrFailedPrecondition)
	}

	auction.CardIDs = append(auction.CardIDs, cardID)
	return auction, a.save(ctx, auction)
}

// RemoveFromQueue drops every occurrence of a card from the queue
func (a *App) RemoveFromQueue(ctx context.Context, auctionID, cardID uuid.UUID) (*models.Auction, error) {
	auction, err := a.queueAuction(ctx, auctionID)
	if err != nil {
		return nil, err
	}
	kept := auction.CardIDs[:0]
	for _, id := range auction.CardIDs {
		if id != cardID {
			kept = append(kept, id)
		}
	}
	if len(kept) == len(auction.CardIDs) {
		return auction, nil
	}
	auction.CardIDs = kept
	return auction, a.save(ctx, auction)
}

// MoveQueueItem swaps the card at index with its neighbour in direction
func (a *App) MoveQueueItem(ctx context.Context, auctionID uuid.UUID, index int, dir Direction) (*models.Auction, error) {
	var other int
	switch dir {
	case DirectionUp:
		other = index - 1
	case DirectionDown:
		other = index + 1
	default:
		return nil, fmt.Errorf("%w: direction must be %q or %q", models.ErrInvalidArgument, DirectionUp, DirectionDown)
	}

	auction, err := a.queueAuction(ctx, auctionID)
	if err != nil {
		return nil, err
	}
	n := len(auction.CardIDs)
	if index < 0 || index >= n || other < 0 || other >= n {
		return auction, nil
	}
	auction.CardIDs[index], auction.CardIDs[other] = auction.CardIDs[other], auction.CardIDs[index]
	return auction, a.save(ctx, auction)
}

// GetQueue returns the queued cards in order. Cards that no longer exist are skipped.
func (a *App) GetQueue(ctx context.Context, auctionID uuid.UUID) (*Queue, error) {
	auction, err := a.repo.GetAuction(ctx, auctionID)
	if err != nil {
		return nil, err
	}
	return a.LoadQueue(ctx, auction.CardIDs)
}

// LoadQueue resolves card ids to cards, keeping the queue order
func (a *App) LoadQueue(ctx context.Context, ids []uuid.UUID) (*Queue, error) {
	found, err := a.cards.GetCardsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	return OrderQueue(ids, found), nil
}

// OrderQueue arranges cards in the order of ids, skipping ids with no card.
func OrderQueue(ids []uuid.UUID, cards []models.Card) *Queue {
	byID := make(map[uuid.UUID]models.Card, len(cards))
	for _, c := range cards {
		byID[c.ID] = c
	}
	q := &Queue{Cards: make([]models.Card, 0, len(ids))}
	for _, id := range ids {
		c, ok := byID[id]
		if !ok {
			continue
		}
		q.Cards = append(q.Cards, c)
		q.TotalInitialValue += c.InitialValue
	}
	return q
}

// ListAvailableCards returns inventory cards not yet queued whose name contains search
func (a *App) ListAvailableCards(ctx context.Context, auctionID uuid.UUID, search string) ([]models.Card, error) {
	auction, err := a.repo.GetAuction(ctx, auctionID)
	if err != nil {
		return nil, err
	}
	cards, err := a.cards.ListCards(ctx, inventory.ListFilter{Status: models.CardStatusInventory})
	if err != nil {
		return nil, err
	}

	search = strings.ToLower(strings.TrimSpace(search))
	out := make([]models.Card, 0, len(cards))
	for _, c := range cards {
		if auction.QueueIndex(c.ID) >= 0 {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(c.Name), search) {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func (a *App) queueAuction(ctx context.Context, id uuid.UUID) (*models.Auction, error) {
	auction, err := a.repo.GetAuction(ctx, id)
	if err != nil {
		return nil, err
	}
	if auction.Status == models.AuctionStatusFinished {
		return nil, fmt.Errorf("auction %s: %w: auction is finished", id, models.ErrFailedPrecondition)
	}
	return auction, nil
}

func (a *App) save(ctx context.Context, auction *models.Auction) error {
	auction.UpdatedAt = a.clock.Now().UTC()
	return a.repo.UpdateAuction(ctx, auction)
}

func validateCreateAuctionRequest(req CreateAuctionRequest) error {
	if req.Name == "" {
		return fmt.Errorf("%w: name is required", models.ErrInvalidArgument)
	}
	if req.Date.IsZero() {
		return fmt.Errorf("%w: date is required", models.ErrInvalidArgument)
	}
	return nil
}
