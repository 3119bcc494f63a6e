package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

// appConfig holds everything the server reads from the environment. It is built
// once at startup and never mutated afterwards.
type appConfig struct {
	DBURL           string
	ListenAddr      string
	GinMode         string
	CORSOrigins     []string
	Location        *time.Location
	DefaultLanguage string
	DefaultTheme    string
}

// loadConfig reads the environment (after godotenv has populated it) and fills
// in defaults for anything unset. DB_URL is the only required value.
func loadConfig() (appConfig, error) {
	cfg := appConfig{
		DBURL:           strings.TrimSpace(os.Getenv("DB_URL")),
		ListenAddr:      envOr("LISTEN_ADDR", "localhost:3000"),
		GinMode:         envOr("GIN_MODE", "release"),
		DefaultLanguage: envOr("DEFAULT_LANGUAGE", "en"),
		DefaultTheme:    envOr("DEFAULT_THEME", "system"),
	}
	if cfg.DBURL == "" {
		return cfg, errors.New("DB_URL is not set")
	}

	for _, origin := range strings.Split(envOr("CORS_ORIGINS", "http://localhost:5173"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.CORSOrigins = append(cfg.CORSOrigins, origin)
		}
	}

	loc, err := time.LoadLocation(envOr("APP_TIMEZONE", "Local"))
	if err != nil {
		return cfg, fmt.Errorf("load APP_TIMEZONE: %w", err)
	}
	cfg.Location = loc

	if err := validateTheme(cfg.DefaultTheme); err != nil {
		return cfg, fmt.Errorf("DEFAULT_THEME: %w", err)
	}
	cfg.DefaultLanguage = matchLanguage(cfg.DefaultLanguage).String()

	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
