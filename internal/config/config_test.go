package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("HTTP_ADDR", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("RECURRING_INTERVAL_HOURS", "")
	t.Setenv("REMINDER_TIME", "")
	t.Setenv("RATE_LIMIT_PER_MIN", "")
	t.Setenv("ALLOWED_ORIGINS", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Errorf("HTTPAddr = %q", cfg.HTTPAddr)
	}
	if cfg.DatabaseURL != "taskflow.db" {
		t.Errorf("DatabaseURL = %q", cfg.DatabaseURL)
	}
	if cfg.RecurringInterval != time.Hour {
		t.Errorf("RecurringInterval = %v", cfg.RecurringInterval)
	}
	if cfg.ReminderTime != "22:00" {
		t.Errorf("ReminderTime = %q", cfg.ReminderTime)
	}
	if cfg.RateLimitPerMin != 120 {
		t.Errorf("RateLimitPerMin = %d", cfg.RateLimitPerMin)
	}
	if cfg.AllowedOrigins != nil {
		t.Errorf("AllowedOrigins = %v", cfg.AllowedOrigins)
	}
}

func TestLoadRequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for missing JWT_SECRET")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("RECURRING_INTERVAL_HOURS", "6")
	t.Setenv("REMINDER_TIME", "21:30")
	t.Setenv("RATE_LIMIT_PER_MIN", "60")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.HTTPAddr != ":9090" {
		t.Errorf("HTTPAddr = %q", cfg.HTTPAddr)
	}
	if cfg.RecurringInterval != 6*time.Hour {
		t.Errorf("RecurringInterval = %v", cfg.RecurringInterval)
	}
	if cfg.ReminderTime != "21:30" {
		t.Errorf("ReminderTime = %q", cfg.ReminderTime)
	}
	if cfg.RateLimitPerMin != 60 {
		t.Errorf("RateLimitPerMin = %d", cfg.RateLimitPerMin)
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[0] != "https://a.example" || cfg.AllowedOrigins[1] != "https://b.example" {
		t.Errorf("AllowedOrigins = %v", cfg.AllowedOrigins)
	}
}

func TestLoadIgnoresInvalidNumbers(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("RECURRING_INTERVAL_HOURS", "soon")
	t.Setenv("RATE_LIMIT_PER_MIN", "-5")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.RecurringInterval != time.Hour {
		t.Errorf("RecurringInterval = %v", cfg.RecurringInterval)
	}
	if cfg.RateLimitPerMin != 120 {
		t.Errorf("RateLimitPerMin = %d", cfg.RateLimitPerMin)
	}
}
