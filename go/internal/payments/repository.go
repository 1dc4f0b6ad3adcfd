package payments

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/tgfriperie/cavalin-tcg-novo/go/internal/models"
	"github.com/tgfriperie/cavalin-tcg-novo/go/internal/sqlutil"
)

// Repository implements payment data access operations
type Repository struct {
	db sqlutil.DBTX
}

// NewRepository creates a new payments repository
func NewRepository(db sqlutil.DBTX) *Repository {
	return &Repository{db: db}
}

const paymentColumns = `p.id, p.client_id, p.auction_id, p.card_id, p.amount, p.total_cost, p.status,
	p.payment_date, p.cancellation_date, p.created_at`

// CreatePayment inserts a payment
func (r *Repository) CreatePayment(ctx context.Context, p *models.Payment) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO payments (id, client_id, auction_id, card_id, amount, total_cost, status,
			payment_date, cancellation_date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		p.ID, p.ClientID, sqlutil.ToNullUUID(p.AuctionID), sqlutil.ToNullUUID(p.CardID), p.Amount, p.TotalCost,
		string(p.Status), sqlutil.ToSqlTime(p.PaymentDate), sqlutil.ToSqlTime(p.CancellationDate), p.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create payment: %w", err)
	}
	return nil
}

// GetPayment retrieves a payment by ID
func (r *Repository) GetPayment(ctx context.Context, id uuid.UUID) (*models.Payment, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+paymentColumns+` FROM payments p WHERE p.id = $1`, id)
	var p models.Payment
	if err := scanPayment(row, &p); err != nil {
		return nil, fmt.Errorf("failed to get payment: %w", sqlutil.Classify(err, "payment "+id.String()))
	}
	return &p, nil
}

// ListPayments returns payments with their client name, newest first. An empty
// status lists every payment.
func (r *Repository) ListPayments(ctx context.Context, status models.PaymentStatus) ([]PaymentView, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+paymentColumns+`, c.name
		FROM payments p
		LEFT JOIN clients c ON c.id = p.client_id
		WHERE $1 = '' OR p.status = $1
		ORDER BY p.created_at DESC`,
		string(status),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	defer rows.Close()

	var out []PaymentView
	for rows.Next() {
		var (
			v    PaymentView
			name sql.NullString
		)
		if err := scanPayment(rows, &v.Payment, &name); err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		v.ClientName = UnknownClient
		if name.Valid {
			v.ClientName = name.String
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	return out, nil
}

// UpdatePaymentStatus writes the status and settlement dates of a payment
func (r *Repository) UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status models.PaymentStatus, paidAt, cancelledAt *time.Time) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE payments SET status = $2, payment_date = $3, cancellation_date = $4
		WHERE id = $1`,
		id, string(status), sqlutil.ToSqlTime(paidAt), sqlutil.ToSqlTime(cancelledAt),
	)
	if err != nil {
		return fmt.Errorf("failed to update payment status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("payment %s: %w", id, models.ErrNotFound)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPayment(row rowScanner, p *models.Payment, extra ...interface{}) error {
	var (
		status      string
		auctionID   uuid.NullUUID
		cardID      uuid.NullUUID
		paidAt      sql.NullTime
		cancelledAt sql.NullTime
	)
	dest := []interface{}{
		&p.ID, &p.ClientID, &auctionID, &cardID, &p.Amount, &p.TotalCost, &status,
		&paidAt, &cancelledAt, &p.CreatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return err
	}
	p.Status = models.PaymentStatus(status)
	p.AuctionID = sqlutil.FromNullUUID(auctionID)
	p.CardID = sqlutil.FromNullUUID(cardID)
	p.PaymentDate = sqlutil.FromSqlTime(paidAt)
	p.CancellationDate = sqlutil.FromSqlTime(cancelledAt)
	return nil
}
