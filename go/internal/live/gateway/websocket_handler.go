package gateway

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/tgfriperie/cavalin-tcg-novo/go/internal/auth"
	"github.com/tgfriperie/cavalin-tcg-novo/go/internal/live/events"
)

// EventTypeSnapshot is sent once to a new observer with the current live state
const EventTypeSnapshot events.EventType = "Snapshot"

type WebSocketHandler struct {
	connectionManager *ConnectionManager
	stateProvider     StateProvider
}

// NewWebSocketHandler creates the handler. provider may be nil, in which
// case new observers get no snapshot.
func NewWebSocketHandler(cm *ConnectionManager, provider StateProvider) *WebSocketHandler {
	return &WebSocketHandler{connectionManager: cm, stateProvider: provider}
}

// HandleAuctionConnection handles /ws/auction?auction_id=...
func (h *WebSocketHandler) HandleAuctionConnection(w http.ResponseWriter, r *http.Request) {
	auctionIDStr := r.URL.Query().Get("auction_id")
	if auctionIDStr == "" {
		http.Error(w, "auction_id is required", http.StatusBadRequest)
		return
	}
	auctionID, err := uuid.Parse(auctionIDStr)
	if err != nil {
		http.Error(w, "invalid auction_id format", http.StatusBadRequest)
		return
	}

	operatorID := "anonymous"
	if claims, ok := auth.ClaimsFromContext(r.Context()); ok {
		operatorID = claims.OperatorID.String()
	}

	conn, err := h.connectionManager.UpgradeConnection(w, r, operatorID, auctionID)
	if err != nil {
		// the upgrader has already replied to the client
		log.Error().
			Err(err).
			Str("auction_id", auctionID.String()).
			Str("operator_id", operatorID).
			Msg("failed to upgrade WebSocket connection")
		return
	}
	h.sendSnapshot(r, conn)
}

func (h *WebSocketHandler) sendSnapshot(r *http.Request, conn *Connection) {
	if h.stateProvider == nil {
		return
	}
	state, err := h.stateProvider.GetState(r.Context(), conn.AuctionID.String())
	if err != nil {
		log.Debug().Err(err).Str("auction_id", conn.AuctionID.String()).Msg("no live snapshot for new observer")
		return
	}
	data, err := json.Marshal(state)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal snapshot")
		return
	}
	err = h.connectionManager.SendTo(conn, &FloorEvent{
		ID:        uuid.NewString(),
		AuctionID: conn.AuctionID.String(),
		Type:      EventTypeSnapshot,
		Timestamp: time.Now().UTC(),
		Data:      data,
	})
	if err != nil {
		log.Warn().Err(err).Str("connection_id", conn.ID).Msg("failed to send snapshot")
	}
}

// HandleConnectionStats returns statistics about active connections
func (h *WebSocketHandler) HandleConnectionStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.connectionManager.Stats())
}

func (h *WebSocketHandler) RegisterRoutes(mux *http.ServeMux, wrap func(http.Handler) http.Handler) {
	mux.Handle("/ws/auction", wrap(http.HandlerFunc(h.HandleAuctionConnection)))
	mux.HandleFunc("GET /ws/stats", h.HandleConnectionStats)
}
