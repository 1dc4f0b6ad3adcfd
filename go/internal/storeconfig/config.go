// Package storeconfig loads the store identity and catalog vocabulary: stock
// owners, card categories, conditions, auction defaults and the WhatsApp
// announcement template.
//
// The file format is picked by extension (.yaml, .yml or .toml). A missing file
// is not an error; the built-in CAVALLIN TCG defaults are used instead, and any
// field left empty in a file keeps its default.
package storeconfig

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Owner is a stock owner (consignor) that inventory is partitioned by.
type Owner struct {
	ID    string `yaml:"id" toml:"id" json:"id"`
	Label string `yaml:"label" toml:"label" json:"label"`
	Color string `yaml:"color" toml:"color" json:"color"`
}

// AuctionDefaults seed new auctions and the live floor.
type AuctionDefaults struct {
	TimerSeconds int     `yaml:"timer_seconds" toml:"timer_seconds" json:"timer_seconds"`
	MinIncrement float64 `yaml:"min_increment" toml:"min_increment" json:"min_increment"`
	InitialValue float64 `yaml:"initial_value" toml:"initial_value" json:"initial_value"`
}

// Config is the store configuration.
type Config struct {
	AppName          string          `yaml:"app_name" toml:"app_name" json:"app_name"`
	Currency         string          `yaml:"currency" toml:"currency" json:"currency"`
	InventoryOwners  []Owner         `yaml:"inventory_owners" toml:"inventory_owners" json:"inventory_owners"`
	Categories       []string        `yaml:"categories" toml:"categories" json:"categories"`
	Conditions       []string        `yaml:"conditions" toml:"conditions" json:"conditions"`
	AuctionDefaults  AuctionDefaults `yaml:"auction_defaults" toml:"auction_defaults" json:"auction_defaults"`
	WhatsAppTemplate string          `yaml:"whatsapp_template" toml:"whatsapp_template" json:"whatsapp_template"`
}

const (
	DefaultCategory  = "Outros"
	DefaultCondition = "NM (Near Mint)"
	DefaultLanguage  = "PT-BR"
)

// DefaultWhatsAppTemplate is the announcement posted for each card.
const DefaultWhatsAppTemplate = `⚫ Identificação: [Nome da Carta] ([Numeração da Carta])
🧐 Condição: [Condição]
💰 Valor Liga: R$ [Valor de Mercado]
🇯🇵 Idioma: [Idioma]
🤑 Valor inicial: R$ [Valor Inicial]
📈 Incremento mínimo: R$ [Incremento Mínimo]`

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		AppName:  "CAVALLIN TCG",
		Currency: "BRL",
		InventoryOwners: []Owner{
			{ID: "Rafael", Label: "Estoque Rafael", Color: "blue"},
			{ID: "Lucas", Label: "Estoque Lucas", Color: "purple"},
		},
		Categories: []string{"Slab/Graded", "Selo", "Vintage", "Moderno", "Lote", DefaultCategory},
		Conditions: []string{
			"M (Mint)",
			DefaultCondition,
			"SP (Slightly Played)",
			"MP (Moderately Played)",
			"HP (Heavily Played)",
			"D (Damaged)",
		},
		AuctionDefaults: AuctionDefaults{
			TimerSeconds: 60,
			MinIncrement: 1.00,
			InitialValue: 0,
		},
		WhatsAppTemplate: DefaultWhatsAppTemplate,
	}
}

// Load reads the config at path. An empty path or a missing file yields Default().
func Load(path string) (*Config, error) {
	cfg := Default()
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read store config: %w", err)
	}

	var file Config
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &file)
	case ".toml":
		err = toml.Unmarshal(data, &file)
	default:
		return nil, fmt.Errorf("unsupported store config extension %q", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse store config %s: %w", path, err)
	}

	cfg.merge(file)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid store config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) merge(f Config) {
	if f.AppName != "" {
		c.AppName = f.AppName
	}
	if f.Currency != "" {
		c.Currency = f.Currency
	}
	if len(f.InventoryOwners) > 0 {
		c.InventoryOwners = f.InventoryOwners
	}
	if len(f.Categories) > 0 {
		c.Categories = f.Categories
	}
	if len(f.Conditions) > 0 {
		c.Conditions = f.Conditions
	}
	if f.AuctionDefaults.TimerSeconds > 0 {
		c.AuctionDefaults.TimerSeconds = f.AuctionDefaults.TimerSeconds
	}
	if f.AuctionDefaults.MinIncrement > 0 {
		c.AuctionDefaults.MinIncrement = f.AuctionDefaults.MinIncrement
	}
	if f.AuctionDefaults.InitialValue > 0 {
		c.AuctionDefaults.InitialValue = f.AuctionDefaults.InitialValue
	}
	if strings.TrimSpace(f.WhatsAppTemplate) != "" {
		c.WhatsAppTemplate = f.WhatsAppTemplate
	}
}

// Validate checks the config is usable.
func (c *Config) Validate() error {
	seen := make(map[string]bool, len(c.InventoryOwners))
	for _, o := range c.InventoryOwners {
		if o.ID == "" {
			return fmt.Errorf("inventory owner with empty id")
		}
		if seen[o.ID] {
			return fmt.Errorf("duplicate inventory owner %q", o.ID)
		}
		seen[o.ID] = true
	}
	if !c.HasCategory(DefaultCategory) {
		return fmt.Errorf("categories must include %q", DefaultCategory)
	}
	return nil
}

// HasOwner reports whether id is a configured stock owner.
func (c *Config) HasOwner(id string) bool {
	for _, o := range c.InventoryOwners {
		if o.ID == id {
			return true
		}
	}
	return false
}

// HasCategory reports whether category is configured.
func (c *Config) HasCategory(category string) bool {
	return contains(c.Categories, category)
}

// HasCondition reports whether condition is configured.
func (c *Config) HasCondition(condition string) bool {
	return contains(c.Conditions, condition)
}

// DefaultOwner is the first configured owner, or "" when there are none.
func (c *Config) DefaultOwner() string {
	if len(c.InventoryOwners) == 0 {
		return ""
	}
	return c.InventoryOwners[0].ID
}

// DefaultCondition falls back to the first configured condition when NM is not listed.
func (c *Config) DefaultCondition() string {
	if c.HasCondition(DefaultCondition) || len(c.Conditions) == 0 {
		return DefaultCondition
	}
	return c.Conditions[0]
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

// DefaultCategory is the category given to cards created without one.
func (c *Config) DefaultCategory() string {
	return DefaultCategory
}

// DefaultLanguage is the language given to cards created without one.
func (c *Config) DefaultLanguage() string {
	return DefaultLanguage
}
