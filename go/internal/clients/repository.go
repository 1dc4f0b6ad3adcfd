package clients

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/tgfriperie/cavalin-tcg-novo/go/internal/models"
	"github.com/tgfriperie/cavalin-tcg-novo/go/internal/sqlutil"
)

// Repository implements client data access operations
type Repository struct {
	db sqlutil.DBTX
}

// NewRepository creates a new clients repository
func NewRepository(db sqlutil.DBTX) *Repository {
	return &Repository{db: db}
}

const clientColumns = `id, name, phone, notes, created_at`

// CreateClient inserts a client
func (r *Repository) CreateClient(ctx context.Context, req CreateClientRequest) (*models.Client, error) {
	c := models.Client{
		ID:        uuid.New(),
		Name:      req.Name,
		Phone:     req.Phone,
		Notes:     req.Notes,
		CreatedAt: time.Now().UTC(),
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO clients (`+clientColumns+`) VALUES ($1, $2, $3, $4, $5)`,
		c.ID, c.Name, c.Phone, c.Notes, c.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", sqlutil.Classify(err, "client "+req.Name))
	}
	return &c, nil
}

// GetClient retrieves a client by ID
func (r *Repository) GetClient(ctx context.Context, id uuid.UUID) (*models.Client, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+clientColumns+` FROM clients WHERE id = $1`, id)
	return scanClient(row, "client "+id.String())
}

// GetClientByName retrieves a client by name, ignoring case
func (r *Repository) GetClientByName(ctx context.Context, name string) (*models.Client, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+clientColumns+` FROM clients WHERE lower(name) = lower($1)`, name)
	return scanClient(row, "client "+name)
}

// ListClients returns every client ordered by name
func (r *Repository) ListClients(ctx context.Context) ([]models.Client, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+clientColumns+` FROM clients ORDER BY lower(name)`)
	if err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}
	defer rows.Close()

	var out []models.Client
	for rows.Next() {
		c, err := scanClient(rows, "client")
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}
	return out, nil
}

// UpdateClient writes the full client row
func (r *Repository) UpdateClient(ctx context.Context, c *models.Client) (*models.Client, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE clients SET name = $2, phone = $3, notes = $4 WHERE id = $1`,
		c.ID, c.Name, c.Phone, c.Notes,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update client: %w", sqlutil.Classify(err, "client "+c.Name))
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, fmt.Errorf("failed to update client: client %s: %w", c.ID, models.ErrNotFound)
	}
	return c, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanClient(row rowScanner, what string) (*models.Client, error) {
	var c models.Client
	if err := row.Scan(&c.ID, &c.Name, &c.Phone, &c.Notes, &c.CreatedAt); err != nil {
		return nil, fmt.Errorf("failed to get client: %w", sqlutil.Classify(err, what))
	}
	return &c, nil
}
