package inventory

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tgfriperie/cavalin-tcg-novo/go/internal/models"
	"github.com/tgfriperie/cavalin-tcg-novo/go/internal/sqlutil"
)

// Repository implements card data access operations
type Repository struct {
	db sqlutil.DBTX
}

// NewRepository creates a new inventory repository
func NewRepository(db sqlutil.DBTX) *Repository {
	return &Repository{db: db}
}

const cardColumns = `id, name, image_url, collection, condition, language, cost, initial_value,
	market_value, stock_owner, category, status, current_bid, winning_client, last_bid_time,
	sold_at, sold_in_auction_id, final_value, buyer, created_at, updated_at`

// CreateCard inserts a card
func (r *Repository) CreateCard(ctx context.Context, c *models.Card) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO cards (`+cardColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)`,
		c.ID, c.Name, c.ImageURL, c.Collection, c.Condition, c.Language, c.Cost, c.InitialValue,
		sqlutil.ToSqlFloat64(c.MarketValue), c.StockOwner, c.Category, string(c.Status),
		sqlutil.ToSqlFloat64(c.CurrentBid), sqlutil.ToSqlString(c.WinningClient), sqlutil.ToSqlTime(c.LastBidTime),
		sqlutil.ToSqlTime(c.SoldAt), sqlutil.ToNullUUID(c.SoldInAuctionID), sqlutil.ToSqlFloat64(c.FinalValue),
		sqlutil.ToSqlString(c.Buyer), c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create card: %w", sqlutil.Classify(err, "card "+c.ID.String()))
	}
	return nil
}

// GetCard retrieves a card by ID
func (r *Repository) GetCard(ctx context.Context, id uuid.UUID) (*models.Card, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+cardColumns+` FROM cards WHERE id = $1`, id)
	return scanCard(row, id)
}

// GetCardForUpdate retrieves a card and locks its row until the transaction ends
func (r *Repository) GetCardForUpdate(ctx context.Context, id uuid.UUID) (*models.Card, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+cardColumns+` FROM cards WHERE id = $1 FOR UPDATE`, id)
	return scanCard(row, id)
}

// GetCardsByIDs retrieves the cards with the given IDs in no particular order.
// IDs with no card are skipped.
func (r *Repository) GetCardsByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Card, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := r.db.QueryContext(ctx, `SELECT `+cardColumns+` FROM cards WHERE id = ANY($1::uuid[])`, sqlutil.UUIDArray(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to get cards: %w", err)
	}
	return collectCards(rows)
}

// ListCards returns the cards matching filter, newest first
func (r *Repository) ListCards(ctx context.Context, filter ListFilter) ([]models.Card, error) {
	var (
		where []string
		args  []interface{}
	)
	add := func(cond string, arg interface{}) {
		args = append(args, arg)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if filter.Status != "" {
		add("status = $%d", string(filter.Status))
	}
	if filter.StockOwner != "" && filter.StockOwner != AllOwners {
		add("stock_owner = $%d", filter.StockOwner)
	}
	if filter.Category != "" {
		add("category = $%d", filter.Category)
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		add("name ILIKE '%%' || $%d || '%%'", escapeLike(s))
	}

	query := `SELECT ` + cardColumns + ` FROM cards`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list cards: %w", err)
	}
	return collectCards(rows)
}

// UpdateCard writes the editable fields of a card
func (r *Repository) UpdateCard(ctx context.Context, c *models.Card) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE cards SET name = $2, image_url = $3, collection = $4, condition = $5, language = $6,
			cost = $7, initial_value = $8, market_value = $9, stock_owner = $10, category = $11,
			updated_at = $12
		WHERE id = $1`,
		c.ID, c.Name, c.ImageURL, c.Collection, c.Condition, c.Language, c.Cost, c.InitialValue,
		sqlutil.ToSqlFloat64(c.MarketValue), c.StockOwner, c.Category, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update card: %w", err)
	}
	return expectRow(res, c.ID)
}

// DeleteCard removes a card that has not been sold
func (r *Repository) DeleteCard(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM cards WHERE id = $1 AND status <> 'sold'`, id)
	if err != nil {
		return fmt.Errorf("failed to delete card: %w", err)
	}
	return expectRow(res, id)
}

// UpdateLiveBid records the latest bid on a card
func (r *Repository) UpdateLiveBid(ctx context.Context, id uuid.UUID, value float64, client string, at time.Time) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE cards SET current_bid = $2, winning_client = $3, last_bid_time = $4, updated_at = $4
		WHERE id = $1`,
		id, value, client, at,
	)
	if err != nil {
		return fmt.Errorf("failed to update live bid: %w", err)
	}
	return expectRow(res, id)
}

// MarkSold flags an inventory card as sold. A card already sold is a failed precondition.
func (r *Repository) MarkSold(ctx context.Context, id, auctionID uuid.UUID, value float64, buyer string, at time.Time) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE cards SET status = 'sold', sold_at = $3, sold_in_auction_id = $2, final_value = $4,
			buyer = $5, updated_at = $3
		WHERE id = $1 AND status = 'inventory'`,
		id, auctionID, at, value, buyer,
	)
	if err != nil {
		return fmt.Errorf("failed to mark card sold: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("card %s: %w: not in inventory", id, models.ErrFailedPrecondition)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanCard(row rowScanner, id uuid.UUID) (*models.Card, error) {
	var (
		c             models.Card
		status        string
		marketValue   sql.NullFloat64
		currentBid    sql.NullFloat64
		winningClient sql.NullString
		lastBidTime   sql.NullTime
		soldAt        sql.NullTime
		soldIn        uuid.NullUUID
		finalValue    sql.NullFloat64
		buyer         sql.NullString
	)
	err := row.Scan(
		&c.ID, &c.Name, &c.ImageURL, &c.Collection, &c.Condition, &c.Language, &c.Cost, &c.InitialValue,
		&marketValue, &c.StockOwner, &c.Category, &status, &currentBid, &winningClient, &lastBidTime,
		&soldAt, &soldIn, &finalValue, &buyer, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan card: %w", sqlutil.Classify(err, "card "+id.String()))
	}
	c.Status = models.CardStatus(status)
	c.MarketValue = sqlutil.FromSqlFloat64(marketValue)
	c.CurrentBid = sqlutil.FromSqlFloat64(currentBid)
	c.WinningClient = sqlutil.FromSqlStringPtr(winningClient)
	c.LastBidTime = sqlutil.FromSqlTime(lastBidTime)
	c.SoldAt = sqlutil.FromSqlTime(soldAt)
	c.SoldInAuctionID = sqlutil.FromNullUUID(soldIn)
	c.FinalValue = sqlutil.FromSqlFloat64(finalValue)
	c.Buyer = sqlutil.FromSqlStringPtr(buyer)
	return &c, nil
}

func collectCards(rows *sql.Rows) ([]models.Card, error) {
	defer rows.Close()
	var out []models.Card
	for rows.Next() {
		c, err := scanCard(rows, uuid.Nil)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read cards: %w", err)
	}
	return out, nil
}

func expectRow(res sql.Result, id uuid.UUID) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("card %s: %w", id, models.ErrNotFound)
	}
	return nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
