package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// Validate checks Config for production-critical problems.
// It collects all errors into a single joined error.
func (c *Config) Validate() error {
	var errs []string

	if len(c.Auth.JWTSecret) < 32 {
		errs = append(errs, "JWT_SECRET must be at least 32 characters")
	}

	if c.Generator.APIKey == "" {
		errs = append(errs, "OPENROUTER_API_KEY is required")
	}

	if c.Payments.WebhookSecret == "" {
		errs = append(errs, "PAYMENTS_WEBHOOK_SECRET is required")
	}
	if c.Payments.StoreURL != "" && !strings.HasPrefix(c.Payments.StoreURL, "https://") {
		errs = append(errs, "PAYMENTS_STORE_URL must be an https URL")
	}

	// DB password
	if c.DB.Password == "" {
		errs = append(errs, "DB_PASSWORD is required")
	}

	// Port ranges
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("SERVER_PORT must be 1–65535, got %d", c.Server.Port))
	}
	if c.DB.Port < 1 || c.DB.Port > 65535 {
		errs = append(errs, fmt.Sprintf("DB_PORT must be 1–65535, got %d", c.DB.Port))
	}
	if c.Redis.Port < 1 || c.Redis.Port > 65535 {
		errs = append(errs, fmt.Sprintf("REDIS_PORT must be 1–65535, got %d", c.Redis.Port))
	}

	// Checkout links degrade to a 400 without variant ids: warn only.
	if c.Payments.PostsVariantID == "" || c.Payments.SubmitsVariantID == "" {
		slog.Warn("payment variant ids are not fully configured — addon checkout is disabled")
	}

	if len(errs) > 0 {
		return errors.New("config validation failed:\n  " + strings.Join(errs, "\n  "))
	}
	return nil
}
