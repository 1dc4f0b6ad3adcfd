package outbox

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sqlc-dev/pqtype"
	"github.com/tgfriperie/cavalin-tcg-novo/go/internal/live/events"
	"github.com/tgfriperie/cavalin-tcg-novo/go/internal/models"
	"github.com/tgfriperie/cavalin-tcg-novo/go/internal/sqlutil"
)

// Repository implements outbox data access. Bound to a transaction it lets
// domain writes and their events commit together.
type Repository struct {
	db sqlutil.DBTX
}

// NewRepository creates a new outbox repository
func NewRepository(db sqlutil.DBTX) *Repository {
	return &Repository{db: db}
}

// InsertOutboxEvent appends an event; the insert trigger notifies the relay
func (r *Repository) InsertOutboxEvent(ctx context.Context, auctionID uuid.UUID, eventType events.EventType, payload []byte) (uuid.UUID, error) {
	id := uuid.New()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO auction_outbox (id, auction_id, event_type, payload, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		id, auctionID, string(eventType), pqtype.NullRawMessage{RawMessage: payload, Valid: true}, time.Now().UTC(),
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to insert %s outbox event: %w", eventType, err)
	}
	return id, nil
}

// FetchUnsentOutbox returns up to limit unsent events, oldest first
func (r *Repository) FetchUnsentOutbox(ctx context.Context, limit int) ([]OutboxEvent, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, auction_id, event_type, payload, created_at, sent_at
		FROM auction_outbox
		WHERE sent_at IS NULL
		ORDER BY created_at
		LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch unsent outbox events: %w", err)
	}
	defer rows.Close()

	var out []OutboxEvent
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to fetch unsent outbox events: %w", err)
	}
	return out, nil
}

// FetchOutboxByID returns an unsent event
func (r *Repository) FetchOutboxByID(ctx context.Context, id uuid.UUID) (*OutboxEvent, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, auction_id, event_type, payload, created_at, sent_at
		FROM auction_outbox
		WHERE id = $1 AND sent_at IS NULL`,
		id,
	)
	e, err := scanEvent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("outbox event %s not found or already sent: %w", id, models.ErrNotFound)
	}
	return e, err
}

// MarkOutboxSent stamps an event as published
func (r *Repository) MarkOutboxSent(ctx context.Context, id uuid.UUID) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE auction_outbox SET sent_at = NOW() WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to mark outbox event as sent: %w", err)
	}
	return nil
}

// Backlog counts the unsent events and finds the oldest
func (r *Repository) Backlog(ctx context.Context) (Backlog, error) {
	var (
		b      Backlog
		oldest sql.NullTime
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*), MIN(created_at) FROM auction_outbox WHERE sent_at IS NULL`,
	).Scan(&b.Count, &oldest)
	if err != nil {
		return Backlog{}, fmt.Errorf("failed to count pending events: %w", err)
	}
	b.OldestUnsent = sqlutil.FromSqlTime(oldest)
	return b, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanEvent(row rowScanner) (*OutboxEvent, error) {
	var (
		e         OutboxEvent
		eventType string
		payload   pqtype.NullRawMessage
		sentAt    sql.NullTime
	)
	if err := row.Scan(&e.ID, &e.AuctionID, &eventType, &payload, &e.CreatedAt, &sentAt); err != nil {
		return nil, fmt.Errorf("failed to scan outbox event: %w", err)
	}
	e.EventType = events.EventType(eventType)
	e.Payload = payload.RawMessage
	e.SentAt = sqlutil.FromSqlTime(sentAt)
	return &e, nil
}
