package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config collects everything the service reads from the environment, so the
// clients built from it can be constructed explicitly in main instead of at
// package scope.
type Config struct {
	Port              string
	CredentialsFile   string
	JWTSecret         string
	JWTRefreshSecret  string
	AllowOrigins      []string
	RemoteCallTimeout time.Duration
	AnalyticsRowLimit int64
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		fmt.Println("Warning: No .env file found or failed to load") // Use only in dev
	}

	cfg := &Config{
		Port:              getEnv("PORT", "8080"),
		CredentialsFile:   os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"),
		JWTSecret:         os.Getenv("JWT_SECRET_KEY"),
		JWTRefreshSecret:  os.Getenv("JWT_REFRESH_SECRET_KEY"),
		RemoteCallTimeout: 10 * time.Second,
		AnalyticsRowLimit: 10,
	}

	if cfg.CredentialsFile == "" {
		return nil, errors.New("environment variable GOOGLE_APPLICATION_CREDENTIALS is not set")
	}
	if cfg.JWTSecret == "" || cfg.JWTRefreshSecret == "" {
		return nil, errors.New("JWT_SECRET_KEY and JWT_REFRESH_SECRET_KEY must be set")
	}

	if origins := os.Getenv("CORS_ALLOW_ORIGINS"); origins != "" {
		for _, origin := range strings.Split(origins, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				cfg.AllowOrigins = append(cfg.AllowOrigins, origin)
			}
		}
	}

	if raw := os.Getenv("REMOTE_CALL_TIMEOUT_SECONDS"); raw != "" {
		seconds, err := strconv.Atoi(raw)
		if err != nil || seconds <= 0 {
			return nil, fmt.Errorf("invalid REMOTE_CALL_TIMEOUT_SECONDS: %q", raw)
		}
		cfg.RemoteCallTimeout = time.Duration(seconds) * time.Second
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
