package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// AppConfig holds all configuration for the application.
type AppConfig struct {
	TelegramToken     string
	DatabaseURL       string // optional; empty selects the JSON file store
	UsersFile         string
	TimetableBaseURL  string
	Timezone          string
	LogLevel          string
	Environment       string
	DefaultNotifyMode string
	HTTPTimeout       time.Duration
	CacheTTL          time.Duration
	CronSpecRefresh   string
}

// Load reads configuration from environment variables and .env file (if
// present). godotenv.Load will not override variables already set.
func Load() (*AppConfig, error) {
	_ = godotenv.Load()

	cfg := &AppConfig{}
	var err error

	cfg.TelegramToken = os.Getenv("TELEGRAM_TOKEN")
	if cfg.TelegramToken == "" {
		return nil, fmt.Errorf("TELEGRAM_TOKEN is not set")
	}

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")

	cfg.UsersFile = os.Getenv("USERS_FILE")
	if cfg.UsersFile == "" {
		cfg.UsersFile = "users.json"
	}

	cfg.TimetableBaseURL = os.Getenv("TIMETABLE_BASE_URL")
	if cfg.TimetableBaseURL == "" {
		cfg.TimetableBaseURL = "https://data.guldu.uz/dars/"
	}

	cfg.Timezone = os.Getenv("TIMEZONE")
	if cfg.Timezone == "" {
		cfg.Timezone = "Asia/Tashkent"
	}

	cfg.LogLevel = strings.ToLower(os.Getenv("LOG_LEVEL"))
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	cfg.Environment = strings.ToLower(os.Getenv("ENVIRONMENT"))
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}

	cfg.DefaultNotifyMode = os.Getenv("DEFAULT_NOTIFY_MODE")
	if cfg.DefaultNotifyMode == "" {
		cfg.DefaultNotifyMode = "tomorrow"
	}

	cfg.HTTPTimeout, err = durationEnv("HTTP_TIMEOUT", 15*time.Second)
	if err != nil {
		return nil, err
	}

	cfg.CacheTTL, err = durationEnv("SCHEDULE_CACHE_TTL", 5*time.Minute)
	if err != nil {
		return nil, err
	}

	cfg.CronSpecRefresh = os.Getenv("CRON_SPEC_REFRESH")
	if cfg.CronSpecRefresh == "" {
		cfg.CronSpecRefresh = "0 5 * * *" // Default: 05:00 daily
	}

	return cfg, nil
}

func durationEnv(name string, fallback time.Duration) (time.Duration, error) {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", name, err)
	}
	return d, nil
}
