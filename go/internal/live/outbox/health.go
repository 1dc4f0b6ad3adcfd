package outbox

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/jonboulle/clockwork"
)

const (
	StatusOK        = "ok"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
)

type HealthStatus struct {
	Status            string          `json:"status"`
	DatabaseConnected bool            `json:"database_connected"`
	NATSConnected     bool            `json:"nats_connected"`
	PendingEvents     int             `json:"pending_events"`
	OldestPendingAge  string          `json:"oldest_pending_age,omitempty"`
	Metrics           MetricsSnapshot `json:"metrics"`
	Errors            []string        `json:"errors"`
}

// Pinger checks database connectivity
type Pinger interface {
	PingContext(ctx context.Context) error
}

// ConnStatus reports message bus connectivity; *nats.Conn satisfies it
type ConnStatus interface {
	IsConnected() bool
}

// BacklogReader reports the unsent events
type BacklogReader interface {
	Backlog(ctx context.Context) (Backlog, error)
}

type HealthConfig struct {
	MaxPending int           // Degraded above this many unsent events
	MaxAge     time.Duration // Degraded when the oldest unsent event is older
}

func DefaultHealthConfig() HealthConfig {
	return HealthConfig{MaxPending: 1000, MaxAge: 2 * time.Minute}
}

type HealthChecker struct {
	db      Pinger
	nats    ConnStatus
	backlog BacklogReader
	metrics *Metrics
	clock   clockwork.Clock
	cfg     HealthConfig
}

// NewHealthChecker builds a checker. nats may be nil when events are only logged.
func NewHealthChecker(db Pinger, nats ConnStatus, backlog BacklogReader, metrics *Metrics, clock clockwork.Clock, cfg HealthConfig) *HealthChecker {
	return &HealthChecker{db: db, nats: nats, backlog: backlog, metrics: metrics, clock: clock, cfg: cfg}
}

func (h *HealthChecker) Check(ctx context.Context) HealthStatus {
	status := HealthStatus{Status: StatusOK, Errors: []string{}}
	if h.metrics != nil {
		status.Metrics = h.metrics.Snapshot()
	}

	if err := h.db.PingContext(ctx); err != nil {
		status.Status = StatusUnhealthy
		status.Errors = append(status.Errors, fmt.Sprintf("database ping failed: %v", err))
	} else {
		status.DatabaseConnected = true
	}

	if h.nats != nil {
		status.NATSConnected = h.nats.IsConnected()
		if !status.NATSConnected {
			status.Status = StatusUnhealthy
			status.Errors = append(status.Errors, "NATS disconnected")
		}
	}

	if !status.DatabaseConnected {
		return status
	}
	backlog, err := h.backlog.Backlog(ctx)
	if err != nil {
		status.Errors = append(status.Errors, err.Error())
		return status
	}
	status.PendingEvents = backlog.Count
	degrade := func(msg string) {
		if status.Status == StatusOK {
			status.Status = StatusDegraded
		}
		status.Errors = append(status.Errors, msg)
	}
	if backlog.Count > h.cfg.MaxPending {
		degrade(fmt.Sprintf("high pending event count: %d", backlog.Count))
	}
	if backlog.OldestUnsent != nil {
		age := h.clock.Since(*backlog.OldestUnsent).Round(time.Second)
		status.OldestPendingAge = age.String()
		if age > h.cfg.MaxAge {
			degrade(fmt.Sprintf("oldest pending event is %s old", age))
		}
	}
	return status
}

func (h *HealthChecker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := h.Check(ctx)

	w.Header().Set("Content-Type", "application/json")
	if status.Status == StatusUnhealthy {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	json.NewEncoder(w).Encode(status)
}
