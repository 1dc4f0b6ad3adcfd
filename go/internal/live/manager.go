package live

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
	"github.com/tgfriperie/cavalin-tcg-novo/go/internal/live/events"
	"github.com/tgfriperie/cavalin-tcg-novo/go/internal/models"
)

// TickInterval is how often Run checks countdown deadlines.
const TickInterval = time.Second

// Manager holds the open floor sessions, one per auction.
type Manager struct {
	catalog  Catalog
	settings SettingsSource
	store    Store
	sink     EventSink
	clock    clockwork.Clock

	mu       sync.Mutex
	sessions map[uuid.UUID]*Session
}

// NewManager creates a Manager with no open sessions
func NewManager(catalog Catalog, settings SettingsSource, store Store, sink EventSink, clock clockwork.Clock) *Manager {
	return &Manager{
		catalog:  catalog,
		settings: settings,
		store:    store,
		sink:     sink,
		clock:    clock,
		sessions: make(map[uuid.UUID]*Session),
	}
}

// Run ticks the countdowns until ctx is done.
func (m *Manager) Run(ctx context.Context) error {
	ticker := m.clock.NewTicker(TickInterval)
	defer ticker.Stop()

	log.Info().Dur("interval", TickInterval).Msg("live engine started")
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("live engine stopped")
			return nil
		case <-ticker.Chan():
			m.checkDeadlines(ctx)
		}
	}
}

// checkDeadlines expires every running countdown that reached zero.
func (m *Manager) checkDeadlines(ctx context.Context) {
	m.mu.Lock()
	open := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		open = append(open, s)
	}
	m.mu.Unlock()

	for _, s := range open {
		s.mu.Lock()
		m.expireIfDue(ctx, s, m.clock.Now())
		s.mu.Unlock()
	}
}

// expireIfDue emits TimerExpired the first time a running countdown hits zero.
func (m *Manager) expireIfDue(ctx context.Context, s *Session, now time.Time) {
	if !s.due(now) {
		return
	}
	s.expire()
	p := events.TimerExpiredPayload{
		AuctionID:     s.auction.ID.String(),
		CurrentBid:    s.currentBid,
		WinningClient: s.winningClient,
		ExpiredAt:     now,
	}
	if c := s.card(); c != nil {
		p.CardID = c.ID.String()
	}
	log.Info().
		Str("auction_id", s.auction.ID.String()).
		Str("card_id", p.CardID).
		Float64("current_bid", s.currentBid).
		Msg("timer expired")
	m.emit(ctx, s.auction.ID, events.TimerExpired, p)
}

// OpenSession starts the floor for an auction, or returns the session already open.
func (m *Manager) OpenSession(ctx context.Context, auctionID uuid.UUID) (*State, error) {
	if st, ok := m.existing(auctionID); ok {
		return st, nil
	}

	auction, err := m.catalog.GetAuction(ctx, auctionID)
	if err != nil {
		return nil, err
	}
	if auction.Status == models.AuctionStatusFinished {
		return nil, fmt.Errorf("auction %s: %w: auction is finished", auctionID, models.ErrFailedPrecondition)
	}
	queue, err := m.catalog.LoadQueue(ctx, auction.CardIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load queue: %w", err)
	}
	if len(queue.Cards) == 0 {
		return nil, fmt.Errorf("auction %s: %w: queue is empty", auctionID, models.ErrFailedPrecondition)
	}
	settings, err := m.settings.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	if auction.Status == models.AuctionStatusScheduled {
		if auction, err = m.catalog.UpdateAuctionStatus(ctx, auctionID, models.AuctionStatusLive); err != nil {
			return nil, fmt.Errorf("failed to start auction: %w", err)
		}
	}

	now := m.clock.Now()
	s := newSession(*auction, queue.Cards, *settings, now)

	m.mu.Lock()
	if other, ok := m.sessions[auctionID]; ok {
		m.mu.Unlock()
		other.mu.Lock()
		defer other.mu.Unlock()
		return other.snapshot(m.clock.Now()), nil
	}
	m.sessions[auctionID] = s
	m.mu.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	log.Info().
		Str("auction_id", auctionID.String()).
		Str("name", auction.Name).
		Int("queue_length", len(s.queue)).
		Msg("live session opened")
	m.emit(ctx, auctionID, events.SessionOpened, events.SessionOpenedPayload{
		AuctionID:   auctionID.String(),
		AuctionName: auction.Name,
		QueueLength: len(s.queue),
		OpenedAt:    now,
	})
	m.emitItemChanged(ctx, s, now)
	return s.snapshot(now), nil
}

func (m *Manager) existing(auctionID uuid.UUID) (*State, bool) {
	m.mu.Lock()
	s, ok := m.sessions[auctionID]
	m.mu.Unlock()
	if !ok {
		return nil, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, false
	}
	return s.snapshot(m.clock.Now()), true
}

// CloseSession drops the session. With finalize the auction becomes Finalizado.
func (m *Manager) CloseSession(ctx context.Context, auctionID uuid.UUID, finalize bool) error {
	m.mu.Lock()
	s, ok := m.sessions[auctionID]
	m.mu.Unlock()
	if !ok {
		return noSession(auctionID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return noSession(auctionID)
	}

	if finalize {
		if _, err := m.catalog.UpdateAuctionStatus(ctx, auctionID, models.AuctionStatusFinished); err != nil {
			return fmt.Errorf("failed to finalize auction: %w", err)
		}
	}

	s.closed = true
	m.mu.Lock()
	delete(m.sessions, auctionID)
	m.mu.Unlock()

	now := m.clock.Now()
	log.Info().
		Str("auction_id", auctionID.String()).
		Bool("finalized", finalize).
		Msg("live session closed")
	m.emit(ctx, auctionID, events.SessionClosed, events.SessionClosedPayload{
		AuctionID: auctionID.String(),
		Finalized: finalize,
		ClosedAt:  now,
	})
	return nil
}

// GetState returns a snapshot of the session
func (m *Manager) GetState(ctx context.Context, auctionID uuid.UUID) (*State, error) {
	var st *State
	err := m.withSession(ctx, auctionID, func(s *Session, now time.Time) error {
		st = s.snapshot(now)
		return nil
	})
	return st, err
}

// ListSessions returns the open sessions, oldest first
func (m *Manager) ListSessions() []SessionInfo {
	m.mu.Lock()
	open := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		open = append(open, s)
	}
	m.mu.Unlock()

	out := make([]SessionInfo, 0, len(open))
	for _, s := range open {
		s.mu.Lock()
		out = append(out, s.info())
		s.mu.Unlock()
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].OpenedAt.Before(out[j].OpenedAt)
	})
	return out
}

// StartTimer resumes the countdown
func (m *Manager) StartTimer(ctx context.Context, auctionID uuid.UUID) (*State, error) {
	return m.update(ctx, auctionID, func(s *Session, now time.Time) error {
		if !s.paused {
			return nil
		}
		if err := s.start(now); err != nil {
			return err
		}
		m.emitTimer(ctx, s, events.TimerStarted, now)
		return nil
	})
}

// PauseTimer stops the countdown, keeping the time left
func (m *Manager) PauseTimer(ctx context.Context, auctionID uuid.UUID) (*State, error) {
	return m.update(ctx, auctionID, func(s *Session, now time.Time) error {
		if s.paused {
			return nil
		}
		s.pause(now)
		m.emitTimer(ctx, s, events.TimerPaused, now)
		return nil
	})
}

// ResetTimer puts the countdown back to the default, paused
func (m *Manager) ResetTimer(ctx context.Context, auctionID uuid.UUID) (*State, error) {
	return m.update(ctx, auctionID, func(s *Session, now time.Time) error {
		s.reset()
		m.emitTimer(ctx, s, events.TimerReset, now)
		return nil
	})
}

// NextItem activates the next card of the queue; at the end it is a no-op
func (m *Manager) NextItem(ctx context.Context, auctionID uuid.UUID) (*State, error) {
	return m.update(ctx, auctionID, func(s *Session, now time.Time) error {
		if s.move(s.index + 1) {
			m.emitItemChanged(ctx, s, now)
		}
		return nil
	})
}

// PrevItem activates the previous card of the queue; at the start it is a no-op
func (m *Manager) PrevItem(ctx context.Context, auctionID uuid.UUID) (*State, error) {
	return m.update(ctx, auctionID, func(s *Session, now time.Time) error {
		if s.move(s.index - 1) {
			m.emitItemChanged(ctx, s, now)
		}
		return nil
	})
}

// RegisterBid takes a bid on the active card. The session moves first; a failed
// write is logged and reported through BidResult.Persisted.
func (m *Manager) RegisterBid(ctx context.Context, auctionID uuid.UUID, value float64, client string) (*BidResult, error) {
	var res *BidResult
	err := m.withSession(ctx, auctionID, func(s *Session, now time.Time) error {
		client = strings.TrimSpace(client)
		if err := s.validateBid(value, client); err != nil {
			return err
		}
		card := s.card()
		s.applyBid(value, client, now)

		bid := models.Bid{
			ID:        uuid.New(),
			AuctionID: auctionID,
			CardID:    card.ID,
			CardName:  card.Name,
			Value:     value,
			Client:    client,
			CreatedAt: now.UTC(),
		}
		res = &BidResult{Bid: bid, Persisted: true}
		if err := m.store.RecordBid(ctx, bid); err != nil {
			res.Persisted = false
			log.Error().
				Err(err).
				Str("auction_id", auctionID.String()).
				Str("card_id", card.ID.String()).
				Float64("value", value).
				Msg("failed to persist bid")
		} else {
			// keep the queue copy in step so revisiting the card resumes here
			card.CurrentBid = &bid.Value
			card.WinningClient = &bid.Client
			card.LastBidTime = &bid.CreatedAt
		}

		log.Info().
			Str("auction_id", auctionID.String()).
			Str("card_id", card.ID.String()).
			Str("client", client).
			Float64("value", value).
			Msg("bid registered")
		res.State = s.snapshot(now)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// FinishSale sells the active card to the winning client and moves on.
// On failure the session is left as it was.
func (m *Manager) FinishSale(ctx context.Context, auctionID uuid.UUID) (*SaleResult, error) {
	var res *SaleResult
	err := m.withSession(ctx, auctionID, func(s *Session, now time.Time) error {
		card := s.card()
		if card == nil {
			return fmt.Errorf("%w: no active card", models.ErrFailedPrecondition)
		}
		if s.winningClient == "" {
			return fmt.Errorf("card %s: %w: no winning client", card.ID, models.ErrFailedPrecondition)
		}
		if card.IsSold() {
			return fmt.Errorf("card %s: %w: card is already sold", card.ID, models.ErrFailedPrecondition)
		}

		sale := Sale{
			AuctionID:  auctionID,
			CardID:     card.ID,
			CardName:   card.Name,
			FinalValue: s.currentBid,
			Buyer:      s.winningClient,
			SoldAt:     now.UTC(),
		}
		receipt, err := m.store.RecordSale(ctx, sale)
		if err != nil {
			return fmt.Errorf("failed to record sale: %w", err)
		}

		log.Info().
			Str("auction_id", auctionID.String()).
			Str("card_id", card.ID.String()).
			Str("buyer", sale.Buyer).
			Float64("final_value", sale.FinalValue).
			Str("payment_id", receipt.PaymentID.String()).
			Msg("sale finished")

		markSold(card, sale)
		m.reloadQueue(ctx, s)
		s.move(s.index + 1)
		// at the end of the queue the sold card stays active with its sale visible
		if c := s.card(); c != nil && c.ID == sale.CardID {
			s.loadCard(s.index)
		}
		m.emitItemChanged(ctx, s, now)

		res = &SaleResult{
			State:    s.snapshot(now),
			Sale:     *receipt,
			Buyer:    sale.Buyer,
			Value:    sale.FinalValue,
			SoldCard: sale.CardID,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func markSold(card *models.Card, sale Sale) {
	card.Status = models.CardStatusSold
	card.SoldAt = &sale.SoldAt
	card.SoldInAuctionID = &sale.AuctionID
	card.FinalValue = &sale.FinalValue
	card.Buyer = &sale.Buyer
}

// reloadQueue refreshes the cards from the store. A failure keeps the local
// queue, which already reflects the sale.
func (m *Manager) reloadQueue(ctx context.Context, s *Session) {
	auction, err := m.catalog.GetAuction(ctx, s.auction.ID)
	if err == nil {
		var queue []models.Card
		if q, qerr := m.catalog.LoadQueue(ctx, auction.CardIDs); qerr == nil {
			queue = q.Cards
		} else {
			err = qerr
		}
		if err == nil && len(queue) > 0 {
			s.auction = *auction
			s.replaceQueue(queue)
			return
		}
	}
	if err != nil {
		log.Warn().Err(err).Str("auction_id", s.auction.ID.String()).Msg("failed to reload queue after sale")
	}
}

// ListBids returns the durable bid ledger of an auction, newest first
func (m *Manager) ListBids(ctx context.Context, auctionID uuid.UUID, cardID *uuid.UUID) ([]models.Bid, error) {
	return m.store.ListBids(ctx, auctionID, cardID)
}

// ShareMessage renders the announcement for the active card
func (m *Manager) ShareMessage(ctx context.Context, auctionID uuid.UUID) (*ShareMessage, error) {
	var msg ShareMessage
	err := m.withSession(ctx, auctionID, func(s *Session, now time.Time) error {
		card := s.card()
		if card == nil {
			return fmt.Errorf("%w: no active card", models.ErrFailedPrecondition)
		}
		msg = RenderShareMessage(m.settings.StoreConfig().WhatsAppTemplate, ShareInput{
			Card:          *card,
			CurrentBid:    s.currentBid,
			WinningClient: s.winningClient,
			MinIncrement:  s.increment,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

// withSession runs fn with the session locked, after settling its countdown.
func (m *Manager) withSession(ctx context.Context, auctionID uuid.UUID, fn func(s *Session, now time.Time) error) error {
	m.mu.Lock()
	s, ok := m.sessions[auctionID]
	m.mu.Unlock()
	if !ok {
		return noSession(auctionID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return noSession(auctionID)
	}
	now := m.clock.Now()
	m.expireIfDue(ctx, s, now)
	return fn(s, now)
}

// update is withSession for operations that answer with the new state.
func (m *Manager) update(ctx context.Context, auctionID uuid.UUID, fn func(s *Session, now time.Time) error) (*State, error) {
	var st *State
	err := m.withSession(ctx, auctionID, func(s *Session, now time.Time) error {
		if err := fn(s, now); err != nil {
			return err
		}
		st = s.snapshot(now)
		return nil
	})
	return st, err
}

func noSession(auctionID uuid.UUID) error {
	return fmt.Errorf("auction %s: %w: no live session", auctionID, models.ErrNotFound)
}

func (m *Manager) emitTimer(ctx context.Context, s *Session, eventType events.EventType, now time.Time) {
	p := events.TimerPayload{
		AuctionID:        s.auction.ID.String(),
		RemainingSeconds: s.remainingSeconds(now),
		Paused:           s.paused,
		At:               now,
	}
	if c := s.card(); c != nil {
		p.CardID = c.ID.String()
	}
	if !s.paused {
		deadline := s.deadline
		p.DeadlineAt = &deadline
	}
	m.emit(ctx, s.auction.ID, eventType, p)
}

func (m *Manager) emitItemChanged(ctx context.Context, s *Session, now time.Time) {
	c := s.card()
	if c == nil {
		return
	}
	m.emit(ctx, s.auction.ID, events.ItemChanged, events.ItemChangedPayload{
		AuctionID:     s.auction.ID.String(),
		CardID:        c.ID.String(),
		CardName:      c.Name,
		ImageURL:      c.ImageURL,
		Index:         s.index,
		QueueLength:   len(s.queue),
		CurrentBid:    s.currentBid,
		WinningClient: s.winningClient,
		TimerSeconds:  s.remainingSeconds(now),
		ChangedAt:     now,
	})
}

// emit hands an event to the sink. Failures never fail the operator action.
func (m *Manager) emit(ctx context.Context, auctionID uuid.UUID, eventType events.EventType, payload interface{}) {
	if m.sink == nil {
		return
	}
	if err := m.sink.Emit(ctx, auctionID, eventType, payload); err != nil {
		log.Error().
			Err(err).
			Str("auction_id", auctionID.String()).
			Str("event_type", string(eventType)).
			Msg("failed to emit live event")
	}
}
