package live

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/tgfriperie/cavalin-tcg-novo/go/internal/auctions"
	"github.com/tgfriperie/cavalin-tcg-novo/go/internal/clients"
	"github.com/tgfriperie/cavalin-tcg-novo/go/internal/inventory"
	"github.com/tgfriperie/cavalin-tcg-novo/go/internal/live/events"
	"github.com/tgfriperie/cavalin-tcg-novo/go/internal/live/outbox"
	"github.com/tgfriperie/cavalin-tcg-novo/go/internal/models"
	"github.com/tgfriperie/cavalin-tcg-novo/go/internal/payments"
	"github.com/tgfriperie/cavalin-tcg-novo/go/internal/sqlutil"
)

// txRepos are the repositories bound to one transaction.
type txRepos struct {
	cards    *inventory.Repository
	auctions *auctions.Repository
	clients  *clients.Repository
	payments *payments.Repository
	outbox   *outbox.App
}

func bindRepos(tx sqlutil.DBTX) txRepos {
	return txRepos{
		cards:    inventory.NewRepository(tx),
		auctions: auctions.NewRepository(tx),
		clients:  clients.NewRepository(tx),
		payments: payments.NewRepository(tx),
		outbox:   outbox.NewApp(outbox.NewRepository(tx)),
	}
}

// PostgresStore writes bids and sales together with their outbox events.
type PostgresStore struct {
	db   *sql.DB
	bids *auctions.Repository
}

// NewPostgresStore creates a store over db
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db, bids: auctions.NewRepository(db)}
}

// RecordBid updates the card's live bid, appends the ledger row and queues BidPlaced
func (s *PostgresStore) RecordBid(ctx context.Context, bid models.Bid) error {
	return sqlutil.Run(ctx, s.db, bindRepos, func(r txRepos) error {
		if err := r.cards.UpdateLiveBid(ctx, bid.CardID, bid.Value, bid.Client, bid.CreatedAt); err != nil {
			return err
		}
		if err := r.auctions.CreateBid(ctx, &bid); err != nil {
			return err
		}
		return r.outbox.Emit(ctx, bid.AuctionID, events.BidPlaced, events.BidPlacedPayload{
			AuctionID: bid.AuctionID.String(),
			BidID:     bid.ID.String(),
			CardID:    bid.CardID.String(),
			CardName:  bid.CardName,
			Value:     bid.Value,
			Client:    bid.Client,
			PlacedAt:  bid.CreatedAt,
		})
	})
}

// RecordSale marks the card sold, adds the winning bid, resolves the buyer,
// opens a pending payment and queues SaleFinished, all or nothing.
func (s *PostgresStore) RecordSale(ctx context.Context, sale Sale) (*SaleReceipt, error) {
	var receipt SaleReceipt
	err := sqlutil.Run(ctx, s.db, bindRepos, func(r txRepos) error {
		card, err := r.cards.GetCardForUpdate(ctx, sale.CardID)
		if err != nil {
			return err
		}
		if card.IsSold() {
			return fmt.Errorf("card %s: %w: card is already sold", card.ID, models.ErrFailedPrecondition)
		}
		if err := r.cards.MarkSold(ctx, sale.CardID, sale.AuctionID, sale.FinalValue, sale.Buyer, sale.SoldAt); err != nil {
			return err
		}
		if err := r.auctions.AppendWinningBid(ctx, sale.AuctionID, models.WinningBid{
			CardID:     sale.CardID,
			FinalValue: sale.FinalValue,
			Buyer:      sale.Buyer,
			SoldAt:     sale.SoldAt,
		}); err != nil {
			return err
		}

		client, err := clients.FindOrCreate(ctx, r.clients, sale.Buyer)
		if err != nil {
			return fmt.Errorf("failed to resolve buyer: %w", err)
		}
		payment := payments.NewPending(client.ID, &sale.AuctionID, &sale.CardID, sale.FinalValue, card.Cost, sale.SoldAt)
		if err := r.payments.CreatePayment(ctx, payment); err != nil {
			return err
		}

		receipt = SaleReceipt{ClientID: client.ID, PaymentID: payment.ID}
		return r.outbox.Emit(ctx, sale.AuctionID, events.SaleFinished, events.SaleFinishedPayload{
			AuctionID:  sale.AuctionID.String(),
			CardID:     sale.CardID.String(),
			CardName:   sale.CardName,
			FinalValue: sale.FinalValue,
			Buyer:      sale.Buyer,
			ClientID:   client.ID.String(),
			PaymentID:  payment.ID.String(),
			SoldAt:     sale.SoldAt,
		})
	})
	if err != nil {
		return nil, err
	}
	return &receipt, nil
}

// ListBids returns the durable ledger, newest first
func (s *PostgresStore) ListBids(ctx context.Context, auctionID uuid.UUID, cardID *uuid.UUID) ([]models.Bid, error) {
	return s.bids.ListBids(ctx, auctionID, cardID)
}
