package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config keeps runtime settings for the service.
type Config struct {
	HTTPAddr          string
	DatabaseURL       string
	JWTSecret         string
	RecurringInterval time.Duration
	ReminderTime      string
	RateLimitPerMin   int
	AllowedOrigins    []string
}

// Load reads configuration from environment variables with sane defaults.
func Load() (Config, error) {
	cfg := Config{
		HTTPAddr:          strings.TrimSpace(os.Getenv("HTTP_ADDR")),
		DatabaseURL:       strings.TrimSpace(os.Getenv("DATABASE_URL")),
		JWTSecret:         strings.TrimSpace(os.Getenv("JWT_SECRET")),
		RecurringInterval: parseInterval(strings.TrimSpace(os.Getenv("RECURRING_INTERVAL_HOURS"))),
		ReminderTime:      strings.TrimSpace(os.Getenv("REMINDER_TIME")),
		RateLimitPerMin:   parseCount(strings.TrimSpace(os.Getenv("RATE_LIMIT_PER_MIN"))),
		AllowedOrigins:    splitList(os.Getenv("ALLOWED_ORIGINS")),
	}

	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = ":8080"
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = "taskflow.db"
	}

	if cfg.RecurringInterval == 0 {
		cfg.RecurringInterval = time.Hour
	}

	if cfg.ReminderTime == "" {
		cfg.ReminderTime = "22:00"
	}

	if cfg.RateLimitPerMin == 0 {
		cfg.RateLimitPerMin = 120
	}

	if cfg.JWTSecret == "" {
		return cfg, fmt.Errorf("JWT_SECRET is required")
	}

	return cfg, nil
}

func parseInterval(raw string) time.Duration {
	if raw == "" {
		return 0
	}
	hours, err := time.ParseDuration(raw + "h")
	if err != nil || hours <= 0 {
		return 0
	}
	return hours
}

func parseCount(raw string) int {
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
