package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config is everything the server reads from the environment.
type Config struct {
	Addr        string        // listen address
	DatabaseURL string        // postgres DSN for the game archive; empty disables it
	SettleDelay time.Duration // pause before a completed trick is resolved
	ShuffleSeed int64         // fixed shuffle seed, 0 means time-based
}

// Load reads .env if present, then the process environment.
func Load() (Config, error) {
	_ = godotenv.Load() // absent .env is fine

	cfg := Config{
		Addr:        envOr("ADDR", ":8080"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		SettleDelay: time.Second,
	}

	if v := os.Getenv("SETTLE_DELAY"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("parsing SETTLE_DELAY: %w", err)
		}
		cfg.SettleDelay = d
	}

	if v := os.Getenv("SHUFFLE_SEED"); v != "" {
		var seed int64
		if _, err := fmt.Sscanf(v, "%d", &seed); err != nil {
			return Config{}, fmt.Errorf("parsing SHUFFLE_SEED: %w", err)
		}
		cfg.ShuffleSeed = seed
	}

	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
