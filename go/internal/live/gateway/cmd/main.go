package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"connectrpc.com/connect"
	"github.com/joho/godotenv"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/tgfriperie/cavalin-tcg-novo/go/internal/auth"
	"github.com/tgfriperie/cavalin-tcg-novo/go/internal/live"
	"github.com/tgfriperie/cavalin-tcg-novo/go/internal/live/gateway"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Warn().Err(err).Msg("could not load .env file")
	}

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if lvl, err := zerolog.ParseLevel(os.Getenv("LOG_LEVEL")); err == nil && os.Getenv("LOG_LEVEL") != "" {
		zerolog.SetGlobalLevel(lvl)
	}

	addr := getEnv("GATEWAY_ADDR", ":8082")
	natsURL := getEnv("NATS_URL", "nats://localhost:4222")
	apiURL := getEnv("CONSOLE_API_URL", "http://localhost:8080")

	// The gateway shares the console's session secret so it can check tokens
	// locally; state reads forward the caller's token to the console API.
	var verifier auth.Verifier
	if secret := os.Getenv("AUTH_SECRET"); secret != "" {
		issuer, err := auth.NewTokenIssuer(secret, 0, nil)
		if err != nil {
			log.Fatal().Err(err).Msg("create token verifier")
		}
		verifier = issuer
	} else {
		log.Warn().Msg("AUTH_SECRET not set, gateway routes are unauthenticated")
	}

	log.Info().
		Str("nats_url", natsURL).
		Str("console_api", apiURL).
		Str("addr", addr).
		Msg("starting floor gateway")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	stateProvider := live.NewClient(&http.Client{Timeout: 10 * time.Second}, apiURL,
		connect.WithInterceptors(auth.ForwardToken()))

	gatewayConfig := gateway.DefaultConfig()
	gatewayConfig.JetStreamConfig.URL = natsURL
	if name := os.Getenv("GATEWAY_CONSUMER"); name != "" {
		gatewayConfig.JetStreamConfig.ConsumerName = name
	}

	gatewayService, err := gateway.NewService(ctx, gatewayConfig, stateProvider, verifier)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create gateway service")
	}

	mux := http.NewServeMux()
	gatewayService.RegisterRoutes(mux)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if !gatewayService.Connected() {
			http.Error(w, "NATS disconnected", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	handler := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           86400,
	}).Handler(mux)

	// No WriteTimeout: it would cut long-lived websocket connections.
	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return gatewayService.Start(gctx)
	})
	g.Go(func() error {
		log.Info().Str("addr", server.Addr).Msg("HTTP server starting")
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
		log.Error().Err(err).Msg("floor gateway exited")
		os.Exit(1)
	}
	log.Info().Msg("floor gateway shutdown complete")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
