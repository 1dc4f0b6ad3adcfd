package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/tgfriperie/cavalin-tcg-novo/go/internal/auth"
	"github.com/tgfriperie/cavalin-tcg-novo/go/internal/database"
	"github.com/tgfriperie/cavalin-tcg-novo/go/internal/storeconfig"
)

func main() {
	migrate := pflag.Bool("migrate", false, "create the database schema before serving")
	migrateOnly := pflag.Bool("migrate-only", false, "create the database schema and exit")
	storeConfig := pflag.String("store-config", "", "store config file (.yaml or .toml), overrides STORE_CONFIG")
	createOperator := pflag.String("create-operator", "", "create an operator with this email and exit (password from OPERATOR_PASSWORD)")
	operatorName := pflag.String("operator-name", "", "display name for --create-operator")
	pflag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Warn().Err(err).Msg("could not load .env file")
	}

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if lvl, err := zerolog.ParseLevel(os.Getenv("LOG_LEVEL")); err == nil && os.Getenv("LOG_LEVEL") != "" {
		zerolog.SetGlobalLevel(lvl)
	}

	cfg, err := loadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	if *storeConfig != "" {
		cfg.StoreConfigPath = *storeConfig
	}

	store, err := storeconfig.Load(cfg.StoreConfigPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load store config")
	}
	loc, err := cfg.location()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid timezone")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := setupDatabase(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to setup database")
	}
	defer db.Close()

	if *migrate || *migrateOnly {
		if err := database.CreateSchema(ctx, db); err != nil {
			log.Fatal().Err(err).Msg("failed to migrate")
		}
		log.Info().Msg("schema is up to date")
		if *migrateOnly {
			return
		}
	}

	clock := clockwork.NewRealClock()
	services, err := setupServices(db, store, cfg, clock, loc)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to setup services")
	}

	if *createOperator != "" {
		op, err := services.AuthApp.CreateOperator(ctx, auth.CreateOperatorRequest{
			Email:       *createOperator,
			DisplayName: *operatorName,
			Password:    os.Getenv("OPERATOR_PASSWORD"),
		})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create operator")
		}
		log.Info().Str("operator_id", op.ID.String()).Str("email", op.Email).Msg("operator created")
		return
	}

	server := setupServer(cfg.Port, services)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return services.Live.Run(gctx)
	})
	g.Go(func() error {
		log.Info().
			Str("addr", server.Addr).
			Str("store", store.AppName).
			Msg("console API listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("console API exited")
		os.Exit(1)
	}
	log.Info().Msg("graceful shutdown complete")
}
