package live

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/tgfriperie/cavalin-tcg-novo/go/internal/models"
)

const fallbackTimerSeconds = 60

// Session is the floor state of one auction. Callers hold mu.
//
// While running the countdown is a deadline; while paused it is the time
// left. Exactly one card of the queue is active.
type Session struct {
	mu sync.Mutex

	auction      models.Auction
	queue        []models.Card
	index        int
	defaultTimer time.Duration
	increment    float64

	paused   bool
	left     time.Duration
	deadline time.Time
	expired  bool

	currentBid    float64
	winningClient string
	history       []BidEntry

	openedAt time.Time
	closed   bool
}

func newSession(auction models.Auction, queue []models.Card, settings models.Settings, now time.Time) *Session {
	timer := settings.DefaultTimer
	if timer <= 0 {
		timer = fallbackTimerSeconds
	}
	s := &Session{
		auction:      auction,
		queue:        queue,
		defaultTimer: time.Duration(timer) * time.Second,
		increment:    settings.DefaultIncrement,
		openedAt:     now,
	}
	s.loadCard(0)
	return s
}

// card returns the active card.
func (s *Session) card() *models.Card {
	if s.index < 0 || s.index >= len(s.queue) {
		return nil
	}
	return &s.queue[s.index]
}

// loadCard makes queue[i] active and resets the per-card state.
func (s *Session) loadCard(i int) {
	s.index = i
	s.paused = true
	s.left = s.defaultTimer
	s.deadline = time.Time{}
	s.expired = false
	s.history = nil
	s.currentBid = 0
	s.winningClient = ""

	c := s.card()
	if c == nil {
		return
	}
	s.currentBid = c.OpeningBid()
	if c.WinningClient != nil {
		s.winningClient = *c.WinningClient
	}
}

func (s *Session) remaining(now time.Time) time.Duration {
	if s.paused {
		return s.left
	}
	if d := s.deadline.Sub(now); d > 0 {
		return d
	}
	return 0
}

// remainingSeconds rounds up, so a fresh 60s countdown reads 60 until a full
// second has passed.
func (s *Session) remainingSeconds(now time.Time) int {
	return int((s.remaining(now) + time.Second - 1) / time.Second)
}

// due reports whether a running countdown has reached zero.
func (s *Session) due(now time.Time) bool {
	return !s.paused && !s.expired && !now.Before(s.deadline)
}

func (s *Session) expire() {
	s.paused = true
	s.left = 0
	s.deadline = time.Time{}
	s.expired = true
}

func (s *Session) start(now time.Time) error {
	if !s.paused {
		return nil
	}
	if s.expired || s.left <= 0 {
		return fmt.Errorf("%w: timer is at zero, reset it or register a bid", models.ErrFailedPrecondition)
	}
	s.paused = false
	s.deadline = now.Add(s.left)
	return nil
}

func (s *Session) pause(now time.Time) {
	if s.paused {
		return
	}
	s.left = s.remaining(now)
	s.paused = true
	s.deadline = time.Time{}
}

func (s *Session) reset() {
	s.paused = true
	s.left = s.defaultTimer
	s.deadline = time.Time{}
	s.expired = false
}

// validateBid checks a bid against the active card.
func (s *Session) validateBid(value float64, client string) error {
	c := s.card()
	if c == nil {
		return fmt.Errorf("%w: no active card", models.ErrFailedPrecondition)
	}
	if c.IsSold() {
		return fmt.Errorf("card %s: %w: card is already sold", c.ID, models.ErrFailedPrecondition)
	}
	if value <= 0 {
		return fmt.Errorf("%w: bid value must be greater than 0", models.ErrInvalidArgument)
	}
	if strings.TrimSpace(client) == "" {
		return fmt.Errorf("%w: client is required", models.ErrInvalidArgument)
	}
	if s.winningClient != "" && value <= s.currentBid {
		return fmt.Errorf("%w: bid must be greater than the current bid of %.2f", models.ErrInvalidArgument, s.currentBid)
	}
	if value < s.currentBid {
		return fmt.Errorf("%w: bid must be at least the opening value of %.2f", models.ErrInvalidArgument, s.currentBid)
	}
	return nil
}

// applyBid is the optimistic local update of a bid: it takes the lead, restarts
// the countdown from the default and heads the ledger.
func (s *Session) applyBid(value float64, client string, now time.Time) {
	s.currentBid = value
	s.winningClient = client
	s.expired = false
	s.paused = false
	s.left = s.defaultTimer
	s.deadline = now.Add(s.defaultTimer)
	s.history = append([]BidEntry{{Value: value, Client: client, At: now}}, s.history...)
}

// move activates the card at i. Out of range is a no-op and reports false.
func (s *Session) move(i int) bool {
	if i < 0 || i >= len(s.queue) || i == s.index {
		return false
	}
	s.loadCard(i)
	return true
}

// replaceQueue swaps in a freshly loaded queue, keeping the active card when it
// is still queued.
func (s *Session) replaceQueue(queue []models.Card) {
	if c := s.card(); c != nil {
		for i := range queue {
			if queue[i].ID == c.ID {
				s.queue = queue
				s.index = i
				return
			}
		}
	}
	s.queue = queue
	if s.index >= len(queue) {
		s.index = len(queue) - 1
	}
}

func (s *Session) snapshot(now time.Time) *State {
	st := &State{
		AuctionID:        s.auction.ID,
		AuctionName:      s.auction.Name,
		Status:           s.auction.Status,
		Index:            s.index,
		QueueLength:      len(s.queue),
		RemainingSeconds: s.remainingSeconds(now),
		Paused:           s.paused,
		Expired:          s.expired,
		CurrentBid:       s.currentBid,
		WinningClient:    s.winningClient,
		MinIncrement:     s.increment,
		DefaultTimer:     int(s.defaultTimer / time.Second),
		BidHistory:       append([]BidEntry{}, s.history...),
		OpenedAt:         s.openedAt,
		AsOf:             now,
	}
	if c := s.card(); c != nil {
		cp := *c
		st.Card = &cp
	}
	return st
}

func (s *Session) info() SessionInfo {
	info := SessionInfo{
		AuctionID:   s.auction.ID,
		AuctionName: s.auction.Name,
		Index:       s.index,
		QueueLength: len(s.queue),
		OpenedAt:    s.openedAt,
	}
	if c := s.card(); c != nil {
		info.CardName = c.Name
	}
	return info
}
