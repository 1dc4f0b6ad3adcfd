package storeconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "store.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Errorf("Load() mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, "store.yaml", `
app_name: "Loja Teste"
inventory_owners:
  - id: Ana
    label: Estoque Ana
    color: green
auction_defaults:
  timer_seconds: 45
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.AppName != "Loja Teste" {
		t.Errorf("AppName = %q, want %q", cfg.AppName, "Loja Teste")
	}
	if cfg.DefaultOwner() != "Ana" || cfg.HasOwner("Rafael") {
		t.Errorf("owners = %+v, want only Ana", cfg.InventoryOwners)
	}
	if cfg.AuctionDefaults.TimerSeconds != 45 {
		t.Errorf("TimerSeconds = %d, want 45", cfg.AuctionDefaults.TimerSeconds)
	}
	if cfg.AuctionDefaults.MinIncrement != 1.00 {
		t.Errorf("MinIncrement = %v, want default 1.00", cfg.AuctionDefaults.MinIncrement)
	}
	if cfg.Currency != "BRL" {
		t.Errorf("Currency = %q, want default BRL", cfg.Currency)
	}
}

func TestLoadTOML(t *testing.T) {
	path := writeFile(t, "store.toml", `
categories = ["Pokémon", "Outros"]
whatsapp_template = "[Nome da Carta] por R$ [Lance Atual]"

[auction_defaults]
min_increment = 5.0
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !cfg.HasCategory("Pokémon") || cfg.HasCategory("Vintage") {
		t.Errorf("Categories = %v", cfg.Categories)
	}
	if cfg.AuctionDefaults.MinIncrement != 5.0 {
		t.Errorf("MinIncrement = %v, want 5", cfg.AuctionDefaults.MinIncrement)
	}
	if cfg.WhatsAppTemplate != "[Nome da Carta] por R$ [Lance Atual]" {
		t.Errorf("WhatsAppTemplate = %q", cfg.WhatsAppTemplate)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		file string
		body string
	}{
		{"unknown extension", "store.json", `{}`},
		{"bad yaml", "store.yaml", "app_name: [unclosed"},
		{"duplicate owner", "store.yaml", "inventory_owners:\n  - id: A\n  - id: A\n"},
		{"missing Outros", "store.toml", `categories = ["Vintage"]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(writeFile(t, tt.file, tt.body)); err == nil {
				t.Errorf("Load() expected error")
			}
		})
	}
}

func TestDefaultCondition(t *testing.T) {
	cfg := Default()
	if got := cfg.DefaultCondition(); got != DefaultCondition {
		t.Errorf("DefaultCondition() = %q, want %q", got, DefaultCondition)
	}

	cfg.Conditions = []string{"Nova", "Usada"}
	if got := cfg.DefaultCondition(); got != "Nova" {
		t.Errorf("DefaultCondition() = %q, want %q", got, "Nova")
	}
}
