package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"connectrpc.com/connect"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"

	"github.com/tgfriperie/cavalin-tcg-novo/go/internal/auth"
	"github.com/tgfriperie/cavalin-tcg-novo/go/internal/floor"
	"github.com/tgfriperie/cavalin-tcg-novo/go/internal/live"
)

func main() {
	os.Exit(run())
}

func run() int {
	_ = godotenv.Load()

	apiURL := pflag.String("api", getEnv("CONSOLE_API_URL", "http://localhost:8080"), "console API base URL")
	auctionID := pflag.StringP("auction", "a", "", "auction id to drive (required)")
	email := pflag.String("email", os.Getenv("FLOOR_EMAIL"), "operator email, used when FLOOR_TOKEN is not set")
	poll := pflag.Duration("poll", time.Second, "state refresh interval")
	logPath := pflag.String("log", getEnv("FLOOR_LOG", "floor.log"), "log file; the terminal belongs to the UI")
	pflag.Parse()

	if *auctionID == "" {
		fmt.Fprintln(os.Stderr, "floor: --auction is required")
		pflag.Usage()
		return 2
	}

	logFile, err := os.OpenFile(*logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "floor: open log: %v\n", err)
		return 1
	}
	defer logFile.Close()
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: logFile, NoColor: true})

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	httpClient := &http.Client{Timeout: 15 * time.Second}

	token := os.Getenv("FLOOR_TOKEN")
	if token == "" {
		if *email == "" {
			fmt.Fprintln(os.Stderr, "floor: set FLOOR_TOKEN or --email with FLOOR_PASSWORD")
			return 2
		}
		session, err := auth.NewClient(httpClient, *apiURL).Login(ctx, *email, os.Getenv("FLOOR_PASSWORD"))
		if err != nil {
			fmt.Fprintf(os.Stderr, "floor: login: %v\n", err)
			return 1
		}
		token = session.Token
		log.Info().Str("operator", session.Operator.Email).Time("expires_at", session.ExpiresAt).Msg("logged in")
	}

	client := live.NewClient(httpClient, *apiURL, connect.WithInterceptors(auth.BearerToken(token)))

	log.Info().Str("auction_id", *auctionID).Str("api", *apiURL).Msg("starting floor console")
	if err := floor.Run(floor.Options{
		Context:   ctx,
		Client:    client,
		AuctionID: *auctionID,
		PollTick:  *poll,
	}); err != nil {
		log.Error().Err(err).Msg("floor console failed")
		fmt.Fprintf(os.Stderr, "floor: %v\n", err)
		return 1
	}
	return 0
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
