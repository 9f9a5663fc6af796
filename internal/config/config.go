// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/jpwyse/bitsofstock-sandbox/pkg/db"
)

// AppConfig holds all application-wide configurations.
type AppConfig struct {
	ServerPort string
	DB         db.Config

	CoinGeckoAPIURL string
	CoinGeckoAPIKey string
	FinnhubAPIKey   string

	PriceUpdateInterval time.Duration
}

// LoadConfig loads configuration from environment variables, reading a .env
// file first if one is present. It returns an AppConfig instance or an error
// if any variable is invalid.
func LoadConfig() (*AppConfig, error) {
	// Missing .env is fine; real environments set variables directly.
	_ = godotenv.Load()

	serverPort := getEnv("SERVER_PORT", "8080")

	dbPortStr := getEnv("DB_PORT", "5432")
	dbPort, err := strconv.Atoi(dbPortStr)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	intervalStr := getEnv("PRICE_UPDATE_INTERVAL", "60s")
	interval, err := time.ParseDuration(intervalStr)
	if err != nil {
		return nil, fmt.Errorf("invalid PRICE_UPDATE_INTERVAL: %w", err)
	}

	return &AppConfig{
		ServerPort: serverPort,
		DB: db.Config{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     dbPort,
			User:     getEnv("DB_USER", "user"),
			Password: getEnv("DB_PASSWORD", "password"),
			DBName:   getEnv("DB_NAME", "cryptosandbox"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		CoinGeckoAPIURL:     getEnv("COINGECKO_API_URL", "https://api.coingecko.com/api/v3"),
		CoinGeckoAPIKey:     os.Getenv("COINGECKO_API_KEY"),
		FinnhubAPIKey:       os.Getenv("FINNHUB_API_KEY"),
		PriceUpdateInterval: interval,
	}, nil
}

// getEnv returns the value of an environment variable or a default.
func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
