package settings

import (
	"context"
	"net/http"

	"connectrpc.com/connect"
	"github.com/tgfriperie/cavalin-tcg-novo/go/internal/models"
	"github.com/tgfriperie/cavalin-tcg-novo/go/internal/rpc"
	"github.com/tgfriperie/cavalin-tcg-novo/go/internal/storeconfig"
)

var ServiceName = rpc.ServiceName("settings", "SettingsService")

type GetSettingsRequest struct{}

type GetStoreConfigRequest struct{}

// SettingsApp defines what the service layer needs from the settings application
type SettingsApp interface {
	Get(ctx context.Context) (*models.Settings, error)
	Update(ctx context.Context, req UpdateSettingsRequest) (*models.Settings, error)
	StoreConfig() *storeconfig.Config
}

// Service implements the SettingsService Connect interface
type Service struct {
	app SettingsApp
}

// NewService creates a new settings service
func NewService(app SettingsApp) *Service {
	return &Service{app: app}
}

// Handler mounts the service.
func (s *Service) Handler(opts ...connect.HandlerOption) (string, http.Handler) {
	svc := rpc.NewService(ServiceName, opts...)
	rpc.Unary(svc, "GetSettings", s.GetSettings)
	rpc.Unary(svc, "UpdateSettings", s.UpdateSettings)
	rpc.Unary(svc, "GetStoreConfig", s.GetStoreConfig)
	return svc.Handler()
}

func (s *Service) GetSettings(ctx context.Context, _ *connect.Request[GetSettingsRequest]) (*connect.Response[models.Settings], error) {
	settings, err := s.app.Get(ctx)
	if err != nil {
		return nil, rpc.ToConnectError(err)
	}
	return connect.NewResponse(settings), nil
}

func (s *Service) UpdateSettings(ctx context.Context, req *connect.Request[UpdateSettingsRequest]) (*connect.Response[models.Settings], error) {
	settings, err := s.app.Update(ctx, *req.Msg)
	if err != nil {
		return nil, rpc.ToConnectError(err)
	}
	return connect.NewResponse(settings), nil
}

func (s *Service) GetStoreConfig(_ context.Context, _ *connect.Request[GetStoreConfigRequest]) (*connect.Response[storeconfig.Config], error) {
	return connect.NewResponse(s.app.StoreConfig()), nil
}
