package gateway

import (
	"context"
	"encoding/json"
	"net/http"

	"connectrpc.com/connect"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/tgfriperie/cavalin-tcg-novo/go/internal/live"
)

// StateProvider reads live-floor state from the console API. *live.Client
// satisfies it.
type StateProvider interface {
	GetState(ctx context.Context, auctionID string) (*live.State, error)
	ListSessions(ctx context.Context) ([]live.SessionInfo, error)
}

// SessionList is the body of GET /api/auctions/live
type SessionList struct {
	Sessions []live.SessionInfo `json:"sessions"`
}

type StateHandler struct {
	stateProvider StateProvider
}

func NewStateHandler(provider StateProvider) *StateHandler {
	return &StateHandler{stateProvider: provider}
}

// HandleGetLiveState handles GET /api/auctions/{id}/live
func (h *StateHandler) HandleGetLiveState(w http.ResponseWriter, r *http.Request) {
	auctionID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		http.Error(w, "invalid auction id", http.StatusBadRequest)
		return
	}

	state, err := h.stateProvider.GetState(r.Context(), auctionID.String())
	if err != nil {
		log.Error().Err(err).Str("auction_id", auctionID.String()).Msg("failed to get live state")
		http.Error(w, "failed to get live state", httpStatus(err))
		return
	}
	writeJSON(w, state)
}

// HandleListSessions handles GET /api/auctions/live
func (h *StateHandler) HandleListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.stateProvider.ListSessions(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("failed to list live sessions")
		http.Error(w, "failed to list live sessions", httpStatus(err))
		return
	}
	if sessions == nil {
		sessions = []live.SessionInfo{}
	}
	writeJSON(w, SessionList{Sessions: sessions})
}

func (h *StateHandler) RegisterStateRoutes(mux *http.ServeMux, wrap func(http.Handler) http.Handler) {
	mux.Handle("GET /api/auctions/live", wrap(http.HandlerFunc(h.HandleListSessions)))
	mux.Handle("GET /api/auctions/{id}/live", wrap(http.HandlerFunc(h.HandleGetLiveState)))
}

func httpStatus(err error) int {
	switch connect.CodeOf(err) {
	case connect.CodeNotFound:
		return http.StatusNotFound
	case connect.CodeInvalidArgument:
		return http.StatusBadRequest
	case connect.CodeUnauthenticated:
		return http.StatusUnauthorized
	case connect.CodeFailedPrecondition:
		return http.StatusConflict
	default:
		return http.StatusBadGateway
	}
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}
