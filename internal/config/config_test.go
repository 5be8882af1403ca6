package config

import (
	"testing"
	"time"
)

func validConfig() Config {
	return Config{
		App:   AppConfig{Env: "local", Port: 8080},
		DB:    DBConfig{Host: "localhost", Port: 5432, User: "postgres", Password: "x", Name: "becca", SSLMode: "disable"},
		Redis: RedisConfig{Host: "localhost", Port: 6379},
		Auth:  AuthConfig{JWTSecret: "secret"},
		Voice: VoiceConfig{APIKey: "key", AssistantID: "asst_1"},
	}
}

func TestValidate_ReportsMissingRequired(t *testing.T) {
	c := Config{}
	if err := c.Validate(); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestValidate_ProductionRequiresSSLMode(t *testing.T) {
	c := validConfig()
	c.App.Env = "production"
	c.DB.SSLMode = ""
	if err := c.Validate(); err == nil {
		t.Fatalf("expected error for production without DB_SSLMODE")
	}
}

func TestValidate_LocalDefaultsSSLMode(t *testing.T) {
	c := validConfig()
	c.DB.SSLMode = ""
	if err := c.Validate(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if c.DB.SSLMode != "disable" {
		t.Fatalf("expected sslmode disable default, got %q", c.DB.SSLMode)
	}
}

func TestValidate_RequiresVoiceCredentials(t *testing.T) {
	c := validConfig()
	c.Voice.APIKey = ""
	if err := c.Validate(); err == nil {
		t.Fatalf("expected error for missing VOICE_API_KEY")
	}
}

func TestValidate_DispatchDefaults(t *testing.T) {
	c := validConfig()
	if err := c.Validate(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if c.Dispatch.Interval != time.Minute {
		t.Fatalf("expected default interval 1m, got %v", c.Dispatch.Interval)
	}
	if c.Dispatch.ClaimTimeout != 10*time.Minute {
		t.Fatalf("expected default claim timeout 10m, got %v", c.Dispatch.ClaimTimeout)
	}
}

func TestValidate_CallTimeoutMustFitInPass(t *testing.T) {
	c := validConfig()
	c.Dispatch.PassTimeout = 10 * time.Second
	c.Dispatch.CallTimeout = 20 * time.Second
	if err := c.Validate(); err == nil {
		t.Fatalf("expected error when call timeout exceeds pass timeout")
	}
}

func TestValidate_PricingDefaults(t *testing.T) {
	c := validConfig()
	if err := c.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if c.Pricing.RatePerMinuteMinor != 10 {
		t.Fatalf("expected default rate 10, got %d", c.Pricing.RatePerMinuteMinor)
	}
	if c.Pricing.BillingIncrementSeconds != 60 {
		t.Fatalf("expected default increment 60, got %d", c.Pricing.BillingIncrementSeconds)
	}

	c = validConfig()
	c.Pricing.RatePerMinuteMinor = -1
	if err := c.Validate(); err == nil {
		t.Fatalf("expected error for negative rate")
	}
}
