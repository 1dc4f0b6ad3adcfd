package outbox

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) PingContext(ctx context.Context) error { return f(ctx) }

type natsStatus bool

func (s natsStatus) IsConnected() bool { return bool(s) }

type staticBacklog Backlog

func (b staticBacklog) Backlog(context.Context) (Backlog, error) { return Backlog(b), nil }

func TestHealthCheck(t *testing.T) {
	now := time.Date(2025, 5, 2, 21, 0, 0, 0, time.UTC)
	old := now.Add(-10 * time.Minute)
	fresh := now.Add(-5 * time.Second)
	dbUp := pingFunc(func(context.Context) error { return nil })
	dbDown := pingFunc(func(context.Context) error { return errors.New("connection refused") })

	tests := []struct {
		name       string
		db         Pinger
		nats       ConnStatus
		backlog    Backlog
		wantStatus string
		wantCode   int
	}{
		{name: "healthy", db: dbUp, nats: natsStatus(true), backlog: Backlog{Count: 1, OldestUnsent: &fresh}, wantStatus: StatusOK, wantCode: http.StatusOK},
		{name: "log only", db: dbUp, nats: nil, wantStatus: StatusOK, wantCode: http.StatusOK},
		{name: "database down", db: dbDown, nats: natsStatus(true), wantStatus: StatusUnhealthy, wantCode: http.StatusServiceUnavailable},
		{name: "nats down", db: dbUp, nats: natsStatus(false), wantStatus: StatusUnhealthy, wantCode: http.StatusServiceUnavailable},
		{name: "large backlog", db: dbUp, nats: natsStatus(true), backlog: Backlog{Count: 5000}, wantStatus: StatusDegraded, wantCode: http.StatusOK},
		{name: "stale backlog", db: dbUp, nats: natsStatus(true), backlog: Backlog{Count: 3, OldestUnsent: &old}, wantStatus: StatusDegraded, wantCode: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clock := clockwork.NewFakeClockAt(now)
			h := NewHealthChecker(tt.db, tt.nats, staticBacklog(tt.backlog), NewMetrics(clock), clock, DefaultHealthConfig())

			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
			if rec.Code != tt.wantCode {
				t.Errorf("code = %d, want %d", rec.Code, tt.wantCode)
			}

			got := h.Check(context.Background())
			if got.Status != tt.wantStatus {
				t.Errorf("Status = %q, want %q (errors %v)", got.Status, tt.wantStatus, got.Errors)
			}
		})
	}
}
