// Package config centralises configuration parsing for the activity board.
package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config captures runtime configuration values for the activity board.
type Config struct {
	HTTPAddress     string
	APIBaseURL      string
	APITimeout      time.Duration // Zero leaves API calls bounded by the transport only.
	StatusHideDelay time.Duration
	Title           string
	CSRFKey         string // Empty disables CSRF protection on form posts.
	CSRFSecure      bool // Also marks the browser session cookie Secure.
	SessionIdle     time.Duration
	LogLevel        slog.Level
}

// Load reads an optional .env file, then environment variables into Config,
// applying defaults suited to local development.
func Load() Config {
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv reads Config from the current environment only.
func FromEnv() Config {
	return Config{
		HTTPAddress:     getEnv("HTTP_ADDRESS", ":8000"),
		APIBaseURL:      strings.TrimRight(getEnv("ACTIVITIES_API_URL", "http://localhost:8080"), "/"),
		APITimeout:      getDurationEnv("API_TIMEOUT", 0),
		StatusHideDelay: getDurationEnv("STATUS_HIDE_DELAY", 5*time.Second),
		Title:           getEnv("BOARD_TITLE", "Extracurricular Activities"),
		CSRFKey:         getEnv("CSRF_KEY", ""),
		CSRFSecure:      getBoolEnv("CSRF_SECURE", false),
		SessionIdle:     getDurationEnv("SESSION_IDLE_TIMEOUT", 30*time.Minute),
		LogLevel:        getLevelEnv("LOG_LEVEL", slog.LevelInfo),
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getBoolEnv(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getLevelEnv(key string, fallback slog.Level) slog.Level {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		var level slog.Level
		if err := level.UnmarshalText([]byte(value)); err == nil {
			return level
		}
	}
	return fallback
}
