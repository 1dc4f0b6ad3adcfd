package database

import (
	"context"
	"database/sql"
	"fmt"
)

// CreateSchema creates every table the console needs.
// Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

const schema = `
CREATE TABLE IF NOT EXISTS operators (
    id UUID PRIMARY KEY,
    email TEXT NOT NULL UNIQUE,
    display_name TEXT NOT NULL,
    password_hash BYTEA NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS clients (
    id UUID PRIMARY KEY,
    name TEXT NOT NULL,
    phone TEXT NOT NULL DEFAULT '',
    notes TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_clients_name ON clients (lower(name));

CREATE TABLE IF NOT EXISTS cards (
    id UUID PRIMARY KEY,
    name TEXT NOT NULL,
    image_url TEXT NOT NULL DEFAULT '',
    collection TEXT NOT NULL DEFAULT '',
    condition TEXT NOT NULL,
    language TEXT NOT NULL,
    cost NUMERIC(12,2) NOT NULL DEFAULT 0,
    initial_value NUMERIC(12,2) NOT NULL DEFAULT 0,
    market_value NUMERIC(12,2),
    stock_owner TEXT NOT NULL,
    category TEXT NOT NULL DEFAULT 'Outros',
    status TEXT NOT NULL DEFAULT 'inventory' CHECK (status IN ('inventory', 'sold')),
    current_bid NUMERIC(12,2),
    winning_client TEXT,
    last_bid_time TIMESTAMPTZ,
    sold_at TIMESTAMPTZ,
    sold_in_auction_id UUID,
    final_value NUMERIC(12,2),
    buyer TEXT,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_cards_status_owner ON cards (status, stock_owner);

CREATE TABLE IF NOT EXISTS auctions (
    id UUID PRIMARY KEY,
    name TEXT NOT NULL,
    date TIMESTAMPTZ NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    status TEXT NOT NULL DEFAULT 'Agendado' CHECK (status IN ('Agendado', 'Em Andamento', 'Finalizado')),
    card_ids UUID[] NOT NULL DEFAULT '{}',
    winning_bids JSONB,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS auction_bids (
    id UUID PRIMARY KEY,
    auction_id UUID NOT NULL REFERENCES auctions(id) ON DELETE CASCADE,
    card_id UUID NOT NULL,
    card_name TEXT NOT NULL,
    value NUMERIC(12,2) NOT NULL,
    client TEXT NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_auction_bids_auction ON auction_bids (auction_id, created_at DESC);

CREATE TABLE IF NOT EXISTS payments (
    id UUID PRIMARY KEY,
    client_id UUID NOT NULL,
    auction_id UUID,
    card_id UUID,
    amount NUMERIC(12,2) NOT NULL,
    total_cost NUMERIC(12,2) NOT NULL DEFAULT 0,
    status TEXT NOT NULL DEFAULT 'Pendente' CHECK (status IN ('Pendente', 'Pago', 'Cancelado')),
    payment_date TIMESTAMPTZ,
    cancellation_date TIMESTAMPTZ,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_payments_status ON payments (status, created_at DESC);

CREATE TABLE IF NOT EXISTS settings (
    key TEXT PRIMARY KEY,
    value JSONB,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS auction_outbox (
    id UUID PRIMARY KEY,
    auction_id UUID NOT NULL,
    event_type TEXT NOT NULL,
    payload JSONB,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    sent_at TIMESTAMPTZ
);

CREATE INDEX IF NOT EXISTS idx_auction_outbox_unsent ON auction_outbox (created_at) WHERE sent_at IS NULL;

CREATE OR REPLACE FUNCTION notify_auction_outbox() RETURNS trigger AS $$
BEGIN
    PERFORM pg_notify('auction_outbox_events', NEW.id::text);
    RETURN NEW;
END;
$$ LANGUAGE plpgsql;

DROP TRIGGER IF EXISTS auction_outbox_notify ON auction_outbox;
CREATE TRIGGER auction_outbox_notify
    AFTER INSERT ON auction_outbox
    FOR EACH ROW EXECUTE FUNCTION notify_auction_outbox();
`
