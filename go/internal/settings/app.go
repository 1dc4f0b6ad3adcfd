package settings

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
	"github.com/tgfriperie/cavalin-tcg-novo/go/internal/models"
	"github.com/tgfriperie/cavalin-tcg-novo/go/internal/storeconfig"
)

const (
	MinTimerSeconds = 5
	MaxTimerSeconds = 3600

	ThemeDark  = "dark"
	ThemeLight = "light"
)

// SettingsRepository defines what the app layer needs from the repository
type SettingsRepository interface {
	GetDocument(ctx context.Context, key string) ([]byte, error)
	PutDocument(ctx context.Context, key string, doc []byte, at time.Time) error
}

// UpdateSettingsRequest is a partial update; nil fields keep their value
type UpdateSettingsRequest struct {
	DefaultTimer     *int     `json:"default_timer,omitempty"`
	DefaultIncrement *float64 `json:"default_increment,omitempty"`
	SoundsEnabled    *bool    `json:"sounds_enabled,omitempty"`
	Theme            *string  `json:"theme,omitempty"`
}

// App handles settings business logic
type App struct {
	repo  SettingsRepository
	store *storeconfig.Config
	clock clockwork.Clock
}

// NewApp creates a new settings App
func NewApp(repo SettingsRepository, store *storeconfig.Config, clock clockwork.Clock) *App {
	return &App{repo: repo, store: store, clock: clock}
}

// Defaults are the settings used before any have been saved.
func Defaults(store *storeconfig.Config) models.Settings {
	return models.Settings{
		DefaultTimer:     store.AuctionDefaults.TimerSeconds,
		DefaultIncrement: store.AuctionDefaults.MinIncrement,
		SoundsEnabled:    true,
		Theme:            ThemeDark,
	}
}

// Get returns the saved settings laid over the defaults
func (a *App) Get(ctx context.Context) (*models.Settings, error) {
	s := Defaults(a.store)
	doc, err := a.repo.GetDocument(ctx, GlobalKey)
	if err != nil {
		return nil, err
	}
	if len(doc) > 0 {
		if err := json.Unmarshal(doc, &s); err != nil {
			log.Warn().Err(err).Msg("ignoring unreadable settings document")
			s = Defaults(a.store)
		}
	}
	if s.DefaultTimer <= 0 {
		s.DefaultTimer = 60
	}
	return &s, nil
}

// Update validates and saves a change to the settings
func (a *App) Update(ctx context.Context, req UpdateSettingsRequest) (*models.Settings, error) {
	s, err := a.Get(ctx)
	if err != nil {
		return nil, err
	}
	if req.DefaultTimer != nil {
		s.DefaultTimer = *req.DefaultTimer
	}
	if req.DefaultIncrement != nil {
		s.DefaultIncrement = *req.DefaultIncrement
	}
	if req.SoundsEnabled != nil {
		s.SoundsEnabled = *req.SoundsEnabled
	}
	if req.Theme != nil {
		s.Theme = *req.Theme
	}
	if err := validateSettings(*s); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	doc, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal settings: %w", err)
	}
	if err := a.repo.PutDocument(ctx, GlobalKey, doc, a.clock.Now().UTC()); err != nil {
		return nil, err
	}
	log.Info().
		Int("default_timer", s.DefaultTimer).
		Float64("default_increment", s.DefaultIncrement).
		Str("theme", s.Theme).
		Msg("settings updated")
	return s, nil
}

// StoreConfig returns the store configuration the console was started with
func (a *App) StoreConfig() *storeconfig.Config {
	return a.store
}

func validateSettings(s models.Settings) error {
	if s.DefaultTimer < MinTimerSeconds || s.DefaultTimer > MaxTimerSeconds {
		return fmt.Errorf("%w: default timer must be between %d and %d seconds",
			models.ErrInvalidArgument, MinTimerSeconds, MaxTimerSeconds)
	}
	if s.DefaultIncrement <= 0 {
		return fmt.Errorf("%w: default increment must be positive", models.ErrInvalidArgument)
	}
	if s.Theme != ThemeDark && s.Theme != ThemeLight {
		return fmt.Errorf("%w: theme must be %q or %q", models.ErrInvalidArgument, ThemeDark, ThemeLight)
	}
	return nil
}
