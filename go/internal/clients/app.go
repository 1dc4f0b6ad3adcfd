package clients

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/tgfriperie/cavalin-tcg-novo/go/internal/models"
)

// ClientsRepository defines what the app layer needs from the repository
type ClientsRepository interface {
	CreateClient(ctx context.Context, req CreateClientRequest) (*models.Client, error)
	GetClient(ctx context.Context, id uuid.UUID) (*models.Client, error)
	GetClientByName(ctx context.Context, name string) (*models.Client, error)
	ListClients(ctx context.Context) ([]models.Client, error)
	UpdateClient(ctx context.Context, c *models.Client) (*models.Client, error)
}

// App handles client business logic
type App struct {
	repo ClientsRepository
}

// NewApp creates a new clients App
func NewApp(repo ClientsRepository) *App {
	return &App{repo: repo}
}

// CreateClient registers a client; names are unique ignoring case
func (a *App) CreateClient(ctx context.Context, req CreateClientRequest) (*models.Client, error) {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return nil, fmt.Errorf("validation failed: %w: name is required", models.ErrInvalidArgument)
	}

	existing, err := a.repo.GetClientByName(ctx, req.Name)
	if err == nil && existing != nil {
		return nil, fmt.Errorf("client %q: %w", req.Name, models.ErrAlreadyExists)
	}

	c, err := a.repo.CreateClient(ctx, req)
	if err != nil {
		return nil, err
	}
	log.Info().Str("client_id", c.ID.String()).Str("name", c.Name).Msg("created client")
	return c, nil
}

// GetClient retrieves a client by ID
func (a *App) GetClient(ctx context.Context, id uuid.UUID) (*models.Client, error) {
	return a.repo.GetClient(ctx, id)
}

// ListClients returns every client
func (a *App) ListClients(ctx context.Context) ([]models.Client, error) {
	return a.repo.ListClients(ctx)
}

// UpdateClient applies a partial update
func (a *App) UpdateClient(ctx context.Context, id uuid.UUID, req UpdateClientRequest) (*models.Client, error) {
	c, err := a.repo.GetClient(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, fmt.Errorf("validation failed: %w: name is required", models.ErrInvalidArgument)
		}
		if !strings.EqualFold(name, c.Name) {
			if other, err := a.repo.GetClientByName(ctx, name); err == nil && other.ID != c.ID {
				return nil, fmt.Errorf("client %q: %w", name, models.ErrAlreadyExists)
			}
		}
		c.Name = name
	}
	if req.Phone != nil {
		c.Phone = strings.TrimSpace(*req.Phone)
	}
	if req.Notes != nil {
		c.Notes = *req.Notes
	}
	return a.repo.UpdateClient(ctx, c)
}

// FindOrCreateByName resolves a bidder's typed name to a client, creating it
// on first sight
func (a *App) FindOrCreateByName(ctx context.Context, name string) (*models.Client, error) {
	return FindOrCreate(ctx, a.repo, name)
}

// FindOrCreate is FindOrCreateByName over any repository, so it can run inside
// a transaction-bound repository.
func FindOrCreate(ctx context.Context, repo ClientsRepository, name string) (*models.Client, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: client name is required", models.ErrInvalidArgument)
	}
	c, err := repo.GetClientByName(ctx, name)
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		return nil, err
	}
	return repo.CreateClient(ctx, CreateClientRequest{Name: name})
}
