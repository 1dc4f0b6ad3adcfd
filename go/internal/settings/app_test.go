package settings

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/jonboulle/clockwork"
	"github.com/tgfriperie/cavalin-tcg-novo/go/internal/models"
	"github.com/tgfriperie/cavalin-tcg-novo/go/internal/storeconfig"
)

type fakeRepo struct {
	docs map[string][]byte
}

func (f *fakeRepo) GetDocument(_ context.Context, key string) ([]byte, error) {
	return f.docs[key], nil
}

func (f *fakeRepo) PutDocument(_ context.Context, key string, doc []byte, _ time.Time) error {
	f.docs[key] = doc
	return nil
}

func newTestApp() (*App, *fakeRepo) {
	repo := &fakeRepo{docs: make(map[string][]byte)}
	return NewApp(repo, storeconfig.Default(), clockwork.NewFakeClock()), repo
}

func ptr[T any](v T) *T { return &v }

func TestGetDefaults(t *testing.T) {
	app, _ := newTestApp()
	got, err := app.Get(context.Background())
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	want := &models.Settings{DefaultTimer: 60, DefaultIncrement: 1, SoundsEnabled: true, Theme: "dark"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Get() mismatch (-want +got):\n%s", diff)
	}
}

func TestGetMergesStoredDocument(t *testing.T) {
	app, repo := newTestApp()
	repo.docs[GlobalKey] = []byte(`{"default_timer": 30, "theme": "light"}`)

	got, err := app.Get(context.Background())
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	want := &models.Settings{DefaultTimer: 30, DefaultIncrement: 1, SoundsEnabled: true, Theme: "light"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Get() mismatch (-want +got):\n%s", diff)
	}
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		req     UpdateSettingsRequest
		wantErr bool
	}{
		{"timer", UpdateSettingsRequest{DefaultTimer: ptr(90)}, false},
		{"timer too short", UpdateSettingsRequest{DefaultTimer: ptr(4)}, true},
		{"timer too long", UpdateSettingsRequest{DefaultTimer: ptr(3601)}, true},
		{"increment", UpdateSettingsRequest{DefaultIncrement: ptr(5.0)}, false},
		{"zero increment", UpdateSettingsRequest{DefaultIncrement: ptr(0.0)}, true},
		{"sounds off", UpdateSettingsRequest{SoundsEnabled: ptr(false)}, false},
		{"light theme", UpdateSettingsRequest{Theme: ptr("light")}, false},
		{"unknown theme", UpdateSettingsRequest{Theme: ptr("sepia")}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app, repo := newTestApp()
			_, err := app.Update(ctx, tt.req)
			if tt.wantErr {
				if !errors.Is(err, models.ErrInvalidArgument) {
					t.Errorf("Update() error = %v, want invalid argument", err)
				}
				if _, saved := repo.docs[GlobalKey]; saved {
					t.Error("invalid settings were saved")
				}
				return
			}
			if err != nil {
				t.Fatalf("Update() error = %v", err)
			}
			if _, saved := repo.docs[GlobalKey]; !saved {
				t.Error("settings were not saved")
			}
		})
	}
}

func TestUpdatePersists(t *testing.T) {
	ctx := context.Background()
	app, _ := newTestApp()

	if _, err := app.Update(ctx, UpdateSettingsRequest{DefaultTimer: ptr(45), SoundsEnabled: ptr(false)}); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	got, err := app.Get(ctx)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	want := &models.Settings{DefaultTimer: 45, DefaultIncrement: 1, SoundsEnabled: false, Theme: "dark"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Get() after Update() mismatch (-want +got):\n%s", diff)
	}
}
