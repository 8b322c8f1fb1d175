package config

import (
	"strings"
	"testing"
	"time"
)

func validConfig() *Config {
	return &Config{
		Server: ServerConfig{Host: "0.0.0.0", Port: 8080},
		DB: DBConfig{
			Host: "localhost", Port: 5432, User: "postmint",
			Password: "secret", Name: "postmint", SSLMode: "disable", MaxConns: 25,
		},
		Redis: RedisConfig{Host: "localhost", Port: 6379},
		Auth: AuthConfig{
			JWTSecret: "signing-secret-that-is-at-least-32-chars",
		},
		Generator: GeneratorConfig{
			APIKey:  "sk-or-test",
			Timeout: 60 * time.Second,
		},
		Payments: PaymentsConfig{
			WebhookSecret:    "whsec-test",
			StoreURL:         "https://postmint.lemonsqueezy.com",
			PostsVariantID:   "111",
			SubmitsVariantID: "222",
		},
	}
}

func TestValidate_ValidConfig(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
}

func TestValidate_JWTSecretTooShort(t *testing.T) {
	cfg := validConfig()
	cfg.Auth.JWTSecret = "short"
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "JWT_SECRET") {
		t.Fatalf("expected JWT_SECRET error, got: %v", err)
	}
}

func TestValidate_GeneratorAPIKeyRequired(t *testing.T) {
	cfg := validConfig()
	cfg.Generator.APIKey = ""
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "OPENROUTER_API_KEY") {
		t.Fatalf("expected OPENROUTER_API_KEY error, got: %v", err)
	}
}

func TestValidate_WebhookSecretRequired(t *testing.T) {
	cfg := validConfig()
	cfg.Payments.WebhookSecret = ""
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "PAYMENTS_WEBHOOK_SECRET") {
		t.Fatalf("expected PAYMENTS_WEBHOOK_SECRET error, got: %v", err)
	}
}

func TestValidate_StoreURLMustBeHTTPS(t *testing.T) {
	cfg := validConfig()
	cfg.Payments.StoreURL = "http://postmint.lemonsqueezy.com"
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "PAYMENTS_STORE_URL") {
		t.Fatalf("expected PAYMENTS_STORE_URL error, got: %v", err)
	}
}

func TestValidate_DBPasswordRequired(t *testing.T) {
	cfg := validConfig()
	cfg.DB.Password = ""
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "DB_PASSWORD") {
		t.Fatalf("expected DB_PASSWORD error, got: %v", err)
	}
}

func TestValidate_InvalidPorts(t *testing.T) {
	cfg := validConfig()
	cfg.Server.Port = 0
	cfg.DB.Port = 99999
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected port validation errors")
	}
	if !strings.Contains(err.Error(), "SERVER_PORT") {
		t.Errorf("expected SERVER_PORT error in: %v", err)
	}
	if !strings.Contains(err.Error(), "DB_PORT") {
		t.Errorf("expected DB_PORT error in: %v", err)
	}
}

func TestValidate_MultipleErrors(t *testing.T) {
	cfg := &Config{
		Server: ServerConfig{Port: 0},
		DB:     DBConfig{Port: 5432},
		Redis:  RedisConfig{Port: 6379},
	}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected multiple validation errors")
	}
	errStr := err.Error()
	for _, substr := range []string{"JWT_SECRET", "OPENROUTER_API_KEY", "PAYMENTS_WEBHOOK_SECRET", "DB_PASSWORD", "SERVER_PORT"} {
		if !strings.Contains(errStr, substr) {
			t.Errorf("expected %q in error: %s", substr, errStr)
		}
	}
}
