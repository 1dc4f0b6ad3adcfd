package main

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/tgfriperie/cavalin-tcg-novo/go/internal/auctions"
	"github.com/tgfriperie/cavalin-tcg-novo/go/internal/auth"
	"github.com/tgfriperie/cavalin-tcg-novo/go/internal/clients"
	"github.com/tgfriperie/cavalin-tcg-novo/go/internal/financial"
	"github.com/tgfriperie/cavalin-tcg-novo/go/internal/inventory"
	"github.com/tgfriperie/cavalin-tcg-novo/go/internal/live"
	"github.com/tgfriperie/cavalin-tcg-novo/go/internal/live/outbox"
	"github.com/tgfriperie/cavalin-tcg-novo/go/internal/payments"
	"github.com/tgfriperie/cavalin-tcg-novo/go/internal/settings"
	"github.com/tgfriperie/cavalin-tcg-novo/go/internal/storeconfig"
)

type Services struct {
	AuthApp *auth.App
	Live    *live.Manager

	Auth      *auth.Service
	Settings  *settings.Service
	Clients   *clients.Service
	Inventory *inventory.Service
	Auctions  *auctions.Service
	Payments  *payments.Service
	Financial *financial.Service
	LiveFloor *live.Service
}

func setupServices(database *sql.DB, store *storeconfig.Config, cfg *Config, clock clockwork.Clock, loc *time.Location) (*Services, error) {
	// Wire up dependency injection chain
	// Database layer → Repository layer → App layer → Service layer

	// Auth
	tokens, err := auth.NewTokenIssuer(cfg.AuthSecret, cfg.TokenTTL, clock)
	if err != nil {
		return nil, fmt.Errorf("failed to create token issuer: %w", err)
	}
	limiter := auth.NewLoginLimiter(cfg.LoginEvery, cfg.LoginBurst, clock)
	authApp := auth.NewApp(auth.NewRepository(database), tokens, limiter, cfg.BcryptCost)

	// Settings
	settingsApp := settings.NewApp(settings.NewRepository(database), store, clock)

	// Clients
	clientsApp := clients.NewApp(clients.NewRepository(database))

	// Inventory
	inventoryRepo := inventory.NewRepository(database)
	inventoryApp := inventory.NewApp(inventoryRepo, store, clock)

	// Auctions
	auctionsApp := auctions.NewApp(auctions.NewRepository(database), inventoryRepo, clock)

	// Payments
	paymentsApp := payments.NewApp(payments.NewRepository(database), clientsApp, clock)

	// Financial
	financialApp := financial.NewApp(paymentsApp, auctionsApp, inventoryApp, clientsApp, clock, loc)

	// Live floor: session events go through the outbox so the relay can
	// publish them to the gateway
	sink := outbox.NewApp(outbox.NewRepository(database))
	manager := live.NewManager(auctionsApp, settingsApp, live.NewPostgresStore(database), sink, clock)

	return &Services{
		AuthApp:   authApp,
		Live:      manager,
		Auth:      auth.NewService(authApp),
		Settings:  settings.NewService(settingsApp),
		Clients:   clients.NewService(clientsApp),
		Inventory: inventory.NewService(inventoryApp),
		Auctions:  auctions.NewService(auctionsApp),
		Payments:  payments.NewService(paymentsApp),
		Financial: financial.NewService(financialApp),
		LiveFloor: live.NewService(manager),
	}, nil
}
