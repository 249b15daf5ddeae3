package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/efreitasn/papertrade/internal/domain"
	"github.com/shopspring/decimal"
)

// Config holds all runtime configuration for the papertrade server.
type Config struct {
	Port                 int
	LogLevel             string
	QuoteLatency         time.Duration
	DefaultBalance       decimal.Decimal
	RandomSeed           uint64 // 0 means unseeded
	DataDir              string // empty keeps accounts in memory
	StoreCodec           string
	SessionTTL           time.Duration
	SessionSweepInterval time.Duration
	ReadTimeout          time.Duration
	WriteTimeout         time.Duration
	IdleTimeout          time.Duration
	ShutdownTimeout      time.Duration
}

// Load reads configuration from environment variables, applies defaults,
// and validates values. It returns an error for any invalid value.
func Load() (*Config, error) {
	port, err := getInt("PORT", 8080)
	if err != nil {
		return nil, fmt.Errorf("invalid PORT: %w", err)
	}
	if port < 1 || port > 65535 {
		return nil, fmt.Errorf("invalid PORT: %d, must be between 1 and 65535", port)
	}

	logLevel := getStr("LOG_LEVEL", "info")
	if !isValidLogLevel(logLevel) {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %q, must be one of: debug, info, warn, error", logLevel)
	}

	quoteLatency, err := getDuration("QUOTE_LATENCY", 300*time.Millisecond)
	if err != nil {
		return nil, fmt.Errorf("invalid QUOTE_LATENCY: %w", err)
	}
	if quoteLatency < 0 {
		return nil, fmt.Errorf("invalid QUOTE_LATENCY: %v, must not be negative", quoteLatency)
	}

	defaultBalance, err := getDecimal("DEFAULT_INITIAL_BALANCE", decimal.NewFromInt(10000))
	if err != nil {
		return nil, fmt.Errorf("invalid DEFAULT_INITIAL_BALANCE: %w", err)
	}
	if err := domain.ValidateAmount(defaultBalance); err != nil {
		return nil, fmt.Errorf("invalid DEFAULT_INITIAL_BALANCE: %w", err)
	}
	if defaultBalance.IsZero() {
		return nil, fmt.Errorf("invalid DEFAULT_INITIAL_BALANCE: must be > 0")
	}

	seed, err := getUint64("RANDOM_SEED", 0)
	if err != nil {
		return nil, fmt.Errorf("invalid RANDOM_SEED: %w", err)
	}

	codec := getStr("STORE_CODEC", "obscured")
	if !isValidCodec(codec) {
		return nil, fmt.Errorf("invalid STORE_CODEC: %q, must be one of: obscured, json", codec)
	}

	sessionTTL, err := getDuration("SESSION_TTL", 24*time.Hour)
	if err != nil {
		return nil, fmt.Errorf("invalid SESSION_TTL: %w", err)
	}

	sweepInterval, err := getDuration("SESSION_SWEEP_INTERVAL", 1*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("invalid SESSION_SWEEP_INTERVAL: %w", err)
	}
	if sweepInterval <= 0 {
		return nil, fmt.Errorf("invalid SESSION_SWEEP_INTERVAL: %v, must be positive", sweepInterval)
	}

	readTimeout, err := getDuration("READ_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid READ_TIMEOUT: %w", err)
	}

	writeTimeout, err := getDuration("WRITE_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid WRITE_TIMEOUT: %w", err)
	}

	idleTimeout, err := getDuration("IDLE_TIMEOUT", 60*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid IDLE_TIMEOUT: %w", err)
	}

	shutdownTimeout, err := getDuration("SHUTDOWN_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid SHUTDOWN_TIMEOUT: %w", err)
	}

	return &Config{
		Port:                 port,
		LogLevel:             logLevel,
		QuoteLatency:         quoteLatency,
		DefaultBalance:       defaultBalance,
		RandomSeed:           seed,
		DataDir:              getStr("DATA_DIR", ""),
		StoreCodec:           codec,
		SessionTTL:           sessionTTL,
		SessionSweepInterval: sweepInterval,
		ReadTimeout:          readTimeout,
		WriteTimeout:         writeTimeout,
		IdleTimeout:          idleTimeout,
		ShutdownTimeout:      shutdownTimeout,
	}, nil
}

func getStr(key, defaultVal string) string {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	return v
}

func getInt(key string, defaultVal int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	return strconv.Atoi(v)
}

func getUint64(key string, defaultVal uint64) (uint64, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	return strconv.ParseUint(v, 10, 64)
}

func getDecimal(key string, defaultVal decimal.Decimal) (decimal.Decimal, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	return decimal.NewFromString(v)
}

func getDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	return time.ParseDuration(v)
}

func isValidLogLevel(level string) bool {
	switch level {
	case "debug", "info", "warn", "error":
		return true
	}
	return false
}

func isValidCodec(name string) bool {
	switch name {
	case "obscured", "json":
		return true
	}
	return false
}
