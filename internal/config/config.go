package config

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Config holds everything the server needs from the environment
type Config struct {
	Port       string
	Env        string
	AdminToken string

	DBConnStr string

	GatewayURL      string
	GatewayAPIKey   string
	GatewayTimeout  time.Duration
	ValidatorURL    string
	ValidatorAPIKey string

	// Settlement policy
	ValidationTimeout time.Duration
	AmountTolerance   decimal.Decimal
	ReviewThreshold   decimal.Decimal
	ValidationQueue   int

	// Expiry policy for abandoned card payments
	PendingTTL    time.Duration
	SweepInterval time.Duration

	// Fixed USD -> local display rate
	ExchangeRate decimal.Decimal
}

// Load reads the .env file (if present) and assembles the configuration
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		slog.Warn("no .env file found, relying on system env variables")
	}

	return &Config{
		Port:       getEnv("PORT", "8080"),
		Env:        getEnv("ENV", "development"),
		AdminToken: getEnv("ADMIN_TOKEN", "dev-token"),

		DBConnStr: dbConnStr(),

		GatewayURL:      getEnv("GATEWAY_URL", ""),
		GatewayAPIKey:   getEnv("GATEWAY_API_KEY", ""),
		GatewayTimeout:  getDuration("GATEWAY_TIMEOUT", 15*time.Second),
		ValidatorURL:    getEnv("VALIDATOR_URL", ""),
		ValidatorAPIKey: getEnv("VALIDATOR_API_KEY", ""),

		ValidationTimeout: getDuration("VALIDATION_TIMEOUT", 45*time.Second),
		AmountTolerance:   getDecimal("AMOUNT_TOLERANCE", decimal.NewFromFloat(0.5)),
		ReviewThreshold:   getDecimal("REVIEW_THRESHOLD", decimal.NewFromInt(1)),
		ValidationQueue:   getInt("VALIDATION_QUEUE_SIZE", 256),

		PendingTTL:    getDuration("PENDING_TTL", 24*time.Hour),
		SweepInterval: getDuration("SWEEP_INTERVAL", time.Hour),

		ExchangeRate: getDecimal("EXCHANGE_RATE", decimal.NewFromFloat(36.50)),
	}
}

// dbConnStr builds the Postgres connection string, preferring an explicit
// DB_CONN_STR and falling back to discrete vars (Docker friendly)
func dbConnStr() string {
	if explicit := os.Getenv("DB_CONN_STR"); explicit != "" {
		return explicit
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		getEnv("DB_HOST", "localhost"),
		getEnv("DB_PORT", "5432"),
		getEnv("DB_USER", "postgres"),
		getEnv("DB_PASSWORD", "postgres"),
		getEnv("DB_NAME", "giftwell"),
		getEnv("DB_SSLMODE", "disable"),
	)
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	raw, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		slog.Warn("invalid duration in env, using fallback", "key", key, "value", raw)
		return fallback
	}
	return d
}

func getDecimal(key string, fallback decimal.Decimal) decimal.Decimal {
	raw, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		slog.Warn("invalid decimal in env, using fallback", "key", key, "value", raw)
		return fallback
	}
	return d
}

func getInt(key string, fallback int) int {
	raw, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	var n int
	if _, err := fmt.Sscanf(raw, "%d", &n); err != nil || n <= 0 {
		slog.Warn("invalid integer in env, using fallback", "key", key, "value", raw)
		return fallback
	}
	return n
}
