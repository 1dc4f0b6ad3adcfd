package settings

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/sqlc-dev/pqtype"
	"github.com/tgfriperie/cavalin-tcg-novo/go/internal/sqlutil"
)

// GlobalKey is the settings row the console reads and writes.
const GlobalKey = "global"

// Repository stores settings documents as JSONB rows keyed by name
type Repository struct {
	db sqlutil.DBTX
}

// NewRepository creates a new settings repository
func NewRepository(db sqlutil.DBTX) *Repository {
	return &Repository{db: db}
}

// GetDocument returns the raw document stored under key, or nil when there is none
func (r *Repository) GetDocument(ctx context.Context, key string) ([]byte, error) {
	var doc pqtype.NullRawMessage
	err := r.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = $1`, key).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get settings %s: %w", key, err)
	}
	if !doc.Valid {
		return nil, nil
	}
	return doc.RawMessage, nil
}

// PutDocument upserts the document stored under key
func (r *Repository) PutDocument(ctx context.Context, key string, doc []byte, at time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO settings (key, value, updated_at) VALUES ($1, $2, $3)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`,
		key, pqtype.NullRawMessage{RawMessage: doc, Valid: len(doc) > 0}, at,
	)
	if err != nil {
		return fmt.Errorf("failed to put settings %s: %w", key, err)
	}
	return nil
}
