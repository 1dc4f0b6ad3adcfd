package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/tgfriperie/cavalin-tcg-novo/go/internal/models"
	"github.com/tgfriperie/cavalin-tcg-novo/go/internal/sqlutil"
)

// Repository implements operator data access
type Repository struct {
	db sqlutil.DBTX
}

// NewRepository creates a new operators repository
func NewRepository(db sqlutil.DBTX) *Repository {
	return &Repository{db: db}
}

const operatorColumns = `id, email, display_name, password_hash, created_at`

// CreateOperator inserts an operator with an already hashed password
func (r *Repository) CreateOperator(ctx context.Context, email, displayName string, hash []byte) (*models.Operator, error) {
	op := models.Operator{
		ID:           uuid.New(),
		Email:        email,
		DisplayName:  displayName,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO operators (`+operatorColumns+`) VALUES ($1, $2, $3, $4, $5)`,
		op.ID, op.Email, op.DisplayName, op.PasswordHash, op.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create operator: %w", sqlutil.Classify(err, "operator "+email))
	}
	return &op, nil
}

// GetOperatorByEmail retrieves an operator by email
func (r *Repository) GetOperatorByEmail(ctx context.Context, email string) (*models.Operator, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+operatorColumns+` FROM operators WHERE email = $1`, email)
	return scanOperator(row, "operator "+email)
}

// GetOperator retrieves an operator by ID
func (r *Repository) GetOperator(ctx context.Context, id uuid.UUID) (*models.Operator, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+operatorColumns+` FROM operators WHERE id = $1`, id)
	return scanOperator(row, "operator "+id.String())
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanOperator(row rowScanner, what string) (*models.Operator, error) {
	var op models.Operator
	if err := row.Scan(&op.ID, &op.Email, &op.DisplayName, &op.PasswordHash, &op.CreatedAt); err != nil {
		return nil, fmt.Errorf("failed to get operator: %w", sqlutil.Classify(err, what))
	}
	return &op, nil
}
