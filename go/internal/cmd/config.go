package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/tgfriperie/cavalin-tcg-novo/go/internal/dbconfig"
)

// Config is everything the console API reads from the environment
type Config struct {
	Port            string
	StoreConfigPath string
	Timezone        string

	AuthSecret string
	TokenTTL   time.Duration
	BcryptCost int
	LoginEvery time.Duration
	LoginBurst int

	DB dbconfig.Config
}

func loadConfig() (*Config, error) {
	cfg := &Config{
		Port:            getEnv("PORT", "8080"),
		StoreConfigPath: getEnv("STORE_CONFIG", ""),
		Timezone:        getEnv("STORE_TIMEZONE", "America/Sao_Paulo"),
		AuthSecret:      os.Getenv("AUTH_SECRET"),
		TokenTTL:        getEnvAsDuration("AUTH_TOKEN_TTL", 12*time.Hour),
		BcryptCost:      getEnvAsInt("AUTH_BCRYPT_COST", 0),
		LoginEvery:      getEnvAsDuration("AUTH_LOGIN_EVERY", 12*time.Second),
		LoginBurst:      getEnvAsInt("AUTH_LOGIN_BURST", 5),
		DB:              dbconfig.NewConfigFromEnv(),
	}
	if cfg.AuthSecret == "" {
		return nil, fmt.Errorf("AUTH_SECRET environment variable is required")
	}
	return cfg, nil
}

func (c *Config) location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
