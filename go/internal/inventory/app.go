package inventory

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
	"github.com/tgfriperie/cavalin-tcg-novo/go/internal/models"
	"github.com/tgfriperie/cavalin-tcg-novo/go/internal/storeconfig"
)

// InventoryRepository defines what the app layer needs from the repository
type InventoryRepository interface {
	CreateCard(ctx context.Context, c *models.Card) error
	GetCard(ctx context.Context, id uuid.UUID) (*models.Card, error)
	ListCards(ctx context.Context, filter ListFilter) ([]models.Card, error)
	UpdateCard(ctx context.Context, c *models.Card) error
	DeleteCard(ctx context.Context, id uuid.UUID) error
}

// App handles inventory business logic
type App struct {
	repo  InventoryRepository
	store *storeconfig.Config
	clock clockwork.Clock
}

// NewApp creates a new inventory App
func NewApp(repo InventoryRepository, store *storeconfig.Config, clock clockwork.Clock) *App {
	return &App{repo: repo, store: store, clock: clock}
}

// CreateCard adds a card to inventory, filling in the store defaults
func (a *App) CreateCard(ctx context.Context, req CreateCardRequest) (*models.Card, error) {
	req.Name = strings.TrimSpace(req.Name)
	if req.Condition == "" {
		req.Condition = a.store.DefaultCondition()
	}
	if req.Language == "" {
		req.Language = a.store.DefaultLanguage()
	}
	if req.StockOwner == "" {
		req.StockOwner = a.store.DefaultOwner()
	}
	if req.Category == "" {
		req.Category = a.store.DefaultCategory()
	}
	if err := a.validateCreateCardRequest(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	now := a.clock.Now().UTC()
	card := &models.Card{
		ID:           uuid.New(),
		Name:         req.Name,
		ImageURL:     strings.TrimSpace(req.ImageURL),
		Collection:   strings.TrimSpace(req.Collection),
		Condition:    req.Condition,
		Language:     req.Language,
		Cost:         req.Cost,
		InitialValue: req.InitialValue,
		MarketValue:  req.MarketValue,
		StockOwner:   req.StockOwner,
		Category:     req.Category,
		Status:       models.CardStatusInventory,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := a.repo.CreateCard(ctx, card); err != nil {
		return nil, err
	}

	log.Info().
		Str("card_id", card.ID.String()).
		Str("name", card.Name).
		Str("stock_owner", card.StockOwner).
		Msg("added card to inventory")
	return card, nil
}

// GetCard retrieves a card by ID
func (a *App) GetCard(ctx context.Context, id uuid.UUID) (*models.Card, error) {
	return a.repo.GetCard(ctx, id)
}

// UpdateCard applies a partial update. Sold cards only accept a new image URL.
func (a *App) UpdateCard(ctx context.Context, id uuid.UUID, req UpdateCardRequest) (*models.Card, error) {
	card, err := a.repo.GetCard(ctx, id)
	if err != nil {
		return nil, err
	}
	if card.IsSold() && !req.onlyImage() {
		return nil, fmt.Errorf("card %s: %w: sold cards only accept a new image", id, models.ErrFailedPrecondition)
	}

	if req.Name != nil {
		card.Name = strings.TrimSpace(*req.Name)
	}
	if req.ImageURL != nil {
		card.ImageURL = strings.TrimSpace(*req.ImageURL)
	}
	if req.Collection != nil {
		card.Collection = strings.TrimSpace(*req.Collection)
	}
	if req.Condition != nil {
		card.Condition = *req.Condition
	}
	if req.Language != nil {
		card.Language = *req.Language
	}
	if req.Cost != nil {
		card.Cost = *req.Cost
	}
	if req.InitialValue != nil {
		card.InitialValue = *req.InitialValue
	}
	if req.MarketValue != nil {
		card.MarketValue = req.MarketValue
	}
	if req.StockOwner != nil {
		card.StockOwner = *req.StockOwner
	}
	if req.Category != nil {
		card.Category = *req.Category
	}

	if err := a.validateCreateCardRequest(CreateCardRequest{
		Name:         card.Name,
		Condition:    card.Condition,
		Cost:         card.Cost,
		InitialValue: card.InitialValue,
		MarketValue:  card.MarketValue,
		StockOwner:   card.StockOwner,
		Category:     card.Category,
	}); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	card.UpdatedAt = a.clock.Now().UTC()
	if err := a.repo.UpdateCard(ctx, card); err != nil {
		return nil, err
	}
	return card, nil
}

// DeleteCard removes a card. Sold cards stay for the financial reports.
func (a *App) DeleteCard(ctx context.Context, id uuid.UUID) error {
	card, err := a.repo.GetCard(ctx, id)
	if err != nil {
		return err
	}
	if card.IsSold() {
		return fmt.Errorf("card %s: %w: sold cards cannot be deleted", id, models.ErrFailedPrecondition)
	}
	if err := a.repo.DeleteCard(ctx, id); err != nil {
		return err
	}
	log.Info().Str("card_id", id.String()).Msg("deleted card")
	return nil
}

// ListCards returns the cards matching filter, newest first
func (a *App) ListCards(ctx context.Context, filter ListFilter) ([]models.Card, error) {
	return a.repo.ListCards(ctx, filter)
}

// InventorySummary totals the unsold cards of owner, or of every owner for "all".
func (a *App) InventorySummary(ctx context.Context, owner string) (*Summary, error) {
	cards, err := a.repo.ListCards(ctx, ListFilter{Status: models.CardStatusInventory})
	if err != nil {
		return nil, err
	}
	return Summarize(cards, owner), nil
}

// Summarize totals the inventory-status cards of owner. The per-owner breakdown
// always covers every owner.
func Summarize(cards []models.Card, owner string) *Summary {
	s := &Summary{}
	byOwner := make(map[string]*OwnerTotals)
	for _, c := range cards {
		if c.Status != models.CardStatusInventory {
			continue
		}
		t, ok := byOwner[c.StockOwner]
		if !ok {
			t = &OwnerTotals{StockOwner: c.StockOwner}
			byOwner[c.StockOwner] = t
		}
		t.Count++
		t.TotalCost += c.Cost

		if owner == "" || owner == AllOwners || owner == c.StockOwner {
			s.Count++
			s.TotalCost += c.Cost
		}
	}
	for _, t := range byOwner {
		s.ByOwner = append(s.ByOwner, *t)
	}
	sort.Slice(s.ByOwner, func(i, j int) bool { return s.ByOwner[i].StockOwner < s.ByOwner[j].StockOwner })
	return s
}

func (a *App) validateCreateCardRequest(req CreateCardRequest) error {
	if req.Name == "" {
		return fmt.Errorf("%w: name is required", models.ErrInvalidArgument)
	}
	if req.Cost < 0 || req.InitialValue < 0 {
		return fmt.Errorf("%w: cost and initial value must not be negative", models.ErrInvalidArgument)
	}
	if req.MarketValue != nil && *req.MarketValue < 0 {
		return fmt.Errorf("%w: market value must not be negative", models.ErrInvalidArgument)
	}
	if !a.store.HasOwner(req.StockOwner) {
		return fmt.Errorf("%w: unknown stock owner %q", models.ErrInvalidArgument, req.StockOwner)
	}
	if !a.store.HasCategory(req.Category) {
		return fmt.Errorf("%w: unknown category %q", models.ErrInvalidArgument, req.Category)
	}
	if !a.store.HasCondition(req.Condition) {
		return fmt.Errorf("%w: unknown condition %q", models.ErrInvalidArgument, req.Condition)
	}
	return nil
}
