package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/tgfriperie/cavalin-tcg-novo/go/internal/dbconfig"
	"github.com/tgfriperie/cavalin-tcg-novo/go/internal/live/outbox"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Warn().Err(err).Msg("could not load .env file")
	}

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if lvl, err := zerolog.ParseLevel(os.Getenv("LOG_LEVEL")); err == nil && os.Getenv("LOG_LEVEL") != "" {
		zerolog.SetGlobalLevel(lvl)
	}

	cfg := dbconfig.NewConfigFromEnv()
	dsn := cfg.DSN()
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		log.Fatal().Err(err).Msg("open database")
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("ping database")
	}
	log.Info().
		Str("host", cfg.Host).
		Int("port", cfg.Port).
		Str("database", cfg.Database).
		Msg("connected to database")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	clock := clockwork.NewRealClock()
	metrics := outbox.NewMetrics(clock)
	repo := outbox.NewRepository(db)

	// Without NATS_URL events are only logged, which is enough for a single
	// console with no gateway.
	var (
		publisher outbox.Publisher = outbox.LogPublisher{}
		natsConn  outbox.ConnStatus
	)
	if url := os.Getenv("NATS_URL"); url != "" {
		jsCfg := outbox.DefaultJetStreamConfig()
		jsCfg.URL = url
		js, err := outbox.NewJetStreamPublisher(ctx, jsCfg)
		if err != nil {
			log.Fatal().Err(err).Msg("create JetStream publisher")
		}
		defer func() {
			if err := js.Close(); err != nil {
				log.Error().Err(err).Msg("close publisher")
			}
		}()
		publisher = js
		natsConn = js.Conn()
	} else {
		log.Warn().Msg("NATS_URL not set, outbox events will only be logged")
	}

	ltCfg := outbox.DefaultListenerConfig()
	ltCfg.DatabaseURL = dsn
	if iv := os.Getenv("FALLBACK_INTERVAL"); iv != "" {
		if d, err := time.ParseDuration(iv); err == nil {
			ltCfg.FallbackInterval = d
		}
	}

	listener, err := outbox.NewListener(outbox.NewApp(repo), outbox.NewMetricPublisher(publisher, metrics, clock), metrics, clock, ltCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("create outbox listener")
	}

	healthAddr := os.Getenv("OUTBOX_HEALTH_ADDR")
	if healthAddr == "" {
		healthAddr = ":8081"
	}
	mux := http.NewServeMux()
	mux.Handle("/health", outbox.NewHealthChecker(db, natsConn, repo, metrics, clock, outbox.DefaultHealthConfig()))
	healthSrv := &http.Server{Addr: healthAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Msg("starting realtime listener")
		return listener.Start(gctx)
	})
	g.Go(func() error {
		metrics.Report(gctx, time.Minute)
		return nil
	})
	g.Go(func() error {
		log.Info().Str("addr", healthAddr).Msg("health endpoint listening")
		if err := healthSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return healthSrv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("outbox relay exited")
		os.Exit(1)
	}
	log.Info().Msg("graceful shutdown complete")
}
