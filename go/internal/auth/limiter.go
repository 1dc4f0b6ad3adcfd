package auth

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/time/rate"
)

// LoginLimiter throttles login attempts per email with a token bucket.
// Buckets idle long enough to have refilled are dropped.
type LoginLimiter struct {
	mu        sync.Mutex
	limiters  map[string]*loginBucket
	every     time.Duration
	burst     int
	clock     clockwork.Clock
	lastSweep time.Time
}

type loginBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewLoginLimiter allows burst attempts, refilled one per every.
func NewLoginLimiter(every time.Duration, burst int, clock clockwork.Clock) *LoginLimiter {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &LoginLimiter{
		limiters:  make(map[string]*loginBucket),
		every:     every,
		burst:     burst,
		clock:     clock,
		lastSweep: clock.Now(),
	}
}

// Allow consumes one attempt for key.
func (l *LoginLimiter) Allow(key string) bool {
	now := l.clock.Now()

	l.mu.Lock()
	l.sweep(now)
	b, ok := l.limiters[key]
	if !ok {
		b = &loginBucket{limiter: rate.NewLimiter(rate.Every(l.every), l.burst)}
		l.limiters[key] = b
	}
	b.lastSeen = now
	l.mu.Unlock()

	return b.limiter.AllowN(now, 1)
}

// idle is how long a bucket takes to refill completely.
func (l *LoginLimiter) idle() time.Duration {
	return l.every * time.Duration(max(l.burst, 1))
}

// sweep drops full buckets at most once per idle period. Callers hold mu.
func (l *LoginLimiter) sweep(now time.Time) {
	idle := l.idle()
	if now.Sub(l.lastSweep) < idle {
		return
	}
	l.lastSweep = now
	for key, b := range l.limiters {
		if now.Sub(b.lastSeen) >= idle {
			delete(l.limiters, key)
		}
	}
}

func (l *LoginLimiter) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.limiters)
}

// Reset forgets key, used after a successful login.
func (l *LoginLimiter) Reset(key string) {
	l.mu.Lock()
	delete(l.limiters, key)
	l.mu.Unlock()
}
