package auctions

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/sqlc-dev/pqtype"
	"github.com/tgfriperie/cavalin-tcg-novo/go/internal/models"
	"github.com/tgfriperie/cavalin-tcg-novo/go/internal/sqlutil"
)

// Repository implements auction data access operations
type Repository struct {
	db sqlutil.DBTX
}

// NewRepository creates a new auctions repository
func NewRepository(db sqlutil.DBTX) *Repository {
	return &Repository{db: db}
}

const auctionColumns = `id, name, date, description, status, card_ids, winning_bids, created_at, updated_at`

// CreateAuction inserts an auction
func (r *Repository) CreateAuction(ctx context.Context, a *models.Auction) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO auctions (`+auctionColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6::uuid[], $7, $8, $9)`,
		a.ID, a.Name, a.Date, a.Description, string(a.Status), sqlutil.UUIDArray(a.CardIDs),
		winningBidsParam(a.WinningBids), a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create auction: %w", sqlutil.Classify(err, "auction "+a.ID.String()))
	}
	return nil
}

// GetAuction retrieves an auction by ID
func (r *Repository) GetAuction(ctx context.Context, id uuid.UUID) (*models.Auction, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+auctionColumns+` FROM auctions WHERE id = $1`, id)
	return scanAuction(row, id)
}

// ListAuctions returns every auction, latest date first
func (r *Repository) ListAuctions(ctx context.Context) ([]models.Auction, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+auctionColumns+` FROM auctions ORDER BY date DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list auctions: %w", err)
	}
	defer rows.Close()

	var out []models.Auction
	for rows.Next() {
		a, err := scanAuction(rows, uuid.Nil)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list auctions: %w", err)
	}
	return out, nil
}

// UpdateAuction writes the details, status and queue of an auction
func (r *Repository) UpdateAuction(ctx context.Context, a *models.Auction) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE auctions SET name = $2, date = $3, description = $4, status = $5,
			card_ids = $6::uuid[], updated_at = $7
		WHERE id = $1`,
		a.ID, a.Name, a.Date, a.Description, string(a.Status), sqlutil.UUIDArray(a.CardIDs), a.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update auction: %w", err)
	}
	return expectRow(res, a.ID)
}

// AppendWinningBid adds a sold card to the auction's winning bids
func (r *Repository) AppendWinningBid(ctx context.Context, id uuid.UUID, wb models.WinningBid) error {
	data, err := json.Marshal([]models.WinningBid{wb})
	if err != nil {
		return fmt.Errorf("failed to marshal winning bid: %w", err)
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE auctions SET winning_bids = COALESCE(winning_bids, '[]'::jsonb) || $2::jsonb, updated_at = $3
		WHERE id = $1`,
		id, pqtype.NullRawMessage{RawMessage: data, Valid: true}, wb.SoldAt,
	)
	if err != nil {
		return fmt.Errorf("failed to append winning bid: %w", err)
	}
	return expectRow(res, id)
}

// DeleteAuction removes an auction and its bid ledger
func (r *Repository) DeleteAuction(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM auctions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete auction: %w", err)
	}
	return expectRow(res, id)
}

// CreateBid appends a row to the durable bid ledger
func (r *Repository) CreateBid(ctx context.Context, b *models.Bid) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO auction_bids (id, auction_id, card_id, card_name, value, client, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		b.ID, b.AuctionID, b.CardID, b.CardName, b.Value, b.Client, b.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create bid: %w", err)
	}
	return nil
}

// ListBids returns the bid ledger of an auction, newest first. A nil cardID lists every card.
func (r *Repository) ListBids(ctx context.Context, auctionID uuid.UUID, cardID *uuid.UUID) ([]models.Bid, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, auction_id, card_id, card_name, value, client, created_at
		FROM auction_bids
		WHERE auction_id = $1 AND ($2::uuid IS NULL OR card_id = $2)
		ORDER BY created_at DESC`,
		auctionID, sqlutil.ToNullUUID(cardID),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list bids: %w", err)
	}
	defer rows.Close()

	var out []models.Bid
	for rows.Next() {
		var b models.Bid
		if err := rows.Scan(&b.ID, &b.AuctionID, &b.CardID, &b.CardName, &b.Value, &b.Client, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan bid: %w", err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list bids: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanAuction(row rowScanner, id uuid.UUID) (*models.Auction, error) {
	var (
		a           models.Auction
		status      string
		cardIDs     pq.StringArray
		winningBids pqtype.NullRawMessage
	)
	err := row.Scan(&a.ID, &a.Name, &a.Date, &a.Description, &status, &cardIDs, &winningBids, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to scan auction: %w", sqlutil.Classify(err, "auction "+id.String()))
	}
	a.Status = models.AuctionStatus(status)
	if a.CardIDs, err = sqlutil.ParseUUIDArray(cardIDs); err != nil {
		return nil, err
	}
	a.WinningBids = []models.WinningBid{}
	if winningBids.Valid && len(winningBids.RawMessage) > 0 {
		if err := json.Unmarshal(winningBids.RawMessage, &a.WinningBids); err != nil {
			return nil, fmt.Errorf("failed to unmarshal winning bids of auction %s: %w", a.ID, err)
		}
	}
	return &a, nil
}

func winningBidsParam(bids []models.WinningBid) pqtype.NullRawMessage {
	if len(bids) == 0 {
		return pqtype.NullRawMessage{}
	}
	data, err := json.Marshal(bids)
	if err != nil {
		return pqtype.NullRawMessage{}
	}
	return pqtype.NullRawMessage{RawMessage: data, Valid: true}
}

func expectRow(res sql.Result, id uuid.UUID) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("auction %s: %w", id, models.ErrNotFound)
	}
	return nil
}
