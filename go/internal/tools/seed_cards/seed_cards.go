package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/pflag"
	"github.com/tgfriperie/cavalin-tcg-novo/go/internal/dbconfig"
	"github.com/tgfriperie/cavalin-tcg-novo/go/internal/storeconfig"
)

// Card mirrors one entry of the import file. Missing catalogue fields fall back
// to the store configuration defaults.
type Card struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	ImageURL     string    `json:"image_url"`
	Collection   string    `json:"collection"`
	Condition    string    `json:"condition"`
	Language     string    `json:"language"`
	Cost         float64   `json:"cost"`
	InitialValue float64   `json:"initial_value"`
	MarketValue  *float64  `json:"market_value"`
	StockOwner   string    `json:"stock_owner"`
	Category     string    `json:"category"`
}

func main() {
	file := pflag.String("file", "go/internal/assets/cards.json", "JSON file with the cards to import")
	storePath := pflag.String("store-config", "", "store configuration (TOML or YAML)")
	dryRun := pflag.Bool("dry-run", false, "validate the file without writing")
	pflag.Parse()

	ctx := context.Background()

	// 1) Load cards
	data, err := os.ReadFile(*file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read %s: %v\n", *file, err)
		os.Exit(1)
	}
	var cards []Card
	if err := json.Unmarshal(data, &cards); err != nil {
		fmt.Fprintf(os.Stderr, "unmarshal cards: %v\n", err)
		os.Exit(1)
	}

	store := storeconfig.Default()
	if *storePath != "" {
		if store, err = storeconfig.Load(*storePath); err != nil {
			fmt.Fprintf(os.Stderr, "load store config: %v\n", err)
			os.Exit(1)
		}
	}

	// 2) Fill defaults and validate
	var invalid int
	valid := make([]Card, 0, len(cards))
	for i, c := range cards {
		c, err := normalize(c, store)
		if err != nil {
			fmt.Fprintf(os.Stderr, "card #%d: %v\n", i+1, err)
			invalid++
			continue
		}
		valid = append(valid, c)
	}

	if *dryRun {
		fmt.Printf("Dry run: %d valid, %d invalid\n", len(valid), invalid)
		return
	}

	// 3) Connect
	cfg := dbconfig.NewConfigFromEnv()
	pool, err := pgxpool.New(ctx, cfg.DSN())
	if err != nil {
		fmt.Fprintf(os.Stderr, "connect to db: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	// 4) Insert in one transaction so a failed import leaves nothing behind
	var inserted, skipped int
	now := time.Now()
	err = pgx.BeginFunc(ctx, pool, func(tx pgx.Tx) error {
		for _, c := range valid {
			tag, err := tx.Exec(ctx, `
				INSERT INTO cards (id, name, image_url, collection, condition, language, cost,
					initial_value, market_value, stock_owner, category, status, created_at, updated_at)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, 'inventory', $12, $12)
				ON CONFLICT (id) DO NOTHING
			`, c.ID, c.Name, c.ImageURL, c.Collection, c.Condition, c.Language, c.Cost,
				c.InitialValue, c.MarketValue, c.StockOwner, c.Category, now)
			if err != nil {
				return fmt.Errorf("insert card %s (%s): %w", c.ID, c.Name, err)
			}
			if tag.RowsAffected() == 0 {
				skipped++
			} else {
				inserted++
			}
		}
		return nil
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "import aborted: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Cards: total=%d inserted=%d skipped=%d invalid=%d\n", len(cards), inserted, skipped, invalid)
}

func normalize(c Card, store *storeconfig.Config) (Card, error) {
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return c, fmt.Errorf("name is required")
	}
	if c.Cost < 0 || c.InitialValue < 0 {
		return c, fmt.Errorf("%s: cost and initial value must not be negative", c.Name)
	}
	if c.MarketValue != nil && *c.MarketValue < 0 {
		return c, fmt.Errorf("%s: market value must not be negative", c.Name)
	}
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.Condition == "" {
		c.Condition = store.DefaultCondition()
	}
	if c.Language == "" {
		c.Language = store.DefaultLanguage()
	}
	if c.Category == "" {
		c.Category = store.DefaultCategory()
	}
	if c.StockOwner == "" {
		c.StockOwner = store.DefaultOwner()
	}
	if !store.HasOwner(c.StockOwner) {
		return c, fmt.Errorf("%s: unknown stock owner %q", c.Name, c.StockOwner)
	}
	return c, nil
}
