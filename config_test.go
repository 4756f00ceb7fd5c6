package goSession

import (
	"testing"
	"time"
)

func validConfig() Config {
	cfg := DefaultConfig()
	cfg.Platform.BaseURL = "https://api.example.com/api"
	return cfg
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		wantValid bool
	}{
		{
			name:      "defaults with base url",
			mutate:    func(c *Config) {},
			wantValid: true,
		},
		{
			name: "missing base url",
			mutate: func(c *Config) {
				c.Platform.BaseURL = ""
			},
			wantValid: false,
		},
		{
			name: "base url without scheme",
			mutate: func(c *Config) {
				c.Platform.BaseURL = "api.example.com"
			},
			wantValid: false,
		},
		{
			name: "zero request timeout",
			mutate: func(c *Config) {
				c.Platform.RequestTimeout = 0
			},
			wantValid: false,
		},
		{
			name: "google path without slash",
			mutate: func(c *Config) {
				c.Platform.GoogleLoginPath = "auth/google"
			},
			wantValid: false,
		},
		{
			name: "empty storage name",
			mutate: func(c *Config) {
				c.Credential.StorageName = ""
			},
			wantValid: false,
		},
		{
			name: "sliding expiration without ttl",
			mutate: func(c *Config) {
				c.Credential.SlidingExpiration = true
				c.Credential.TTL = 0
			},
			wantValid: false,
		},
		{
			name: "sliding expiration with ttl",
			mutate: func(c *Config) {
				c.Credential.SlidingExpiration = true
				c.Credential.TTL = time.Hour
			},
			wantValid: true,
		},
		{
			name: "code length too short",
			mutate: func(c *Config) {
				c.Verification.CodeLength = 3
			},
			wantValid: false,
		},
		{
			name: "code length too long",
			mutate: func(c *Config) {
				c.Verification.CodeLength = 11
			},
			wantValid: false,
		},
		{
			name: "zero resend cooldown",
			mutate: func(c *Config) {
				c.Verification.ResendCooldown = 0
			},
			wantValid: false,
		},
		{
			name: "persist pending needs ttl above cooldown",
			mutate: func(c *Config) {
				c.Verification.PersistPending = true
				c.Verification.PendingTTL = 30 * time.Second
			},
			wantValid: false,
		},
		{
			name: "missing route",
			mutate: func(c *Config) {
				c.Routes.VerifyEmail = ""
			},
			wantValid: false,
		},
		{
			name: "route without slash",
			mutate: func(c *Config) {
				c.Routes.AdminHome = "admin"
			},
			wantValid: false,
		},
		{
			name: "audit enabled needs buffer",
			mutate: func(c *Config) {
				c.Audit.Enabled = true
				c.Audit.BufferSize = 0
			},
			wantValid: false,
		},
		{
			name: "production mode baseline",
			mutate: func(c *Config) {
				c.Security.ProductionMode = true
			},
			wantValid: true,
		},
		{
			name: "production mode forbids keeping rejected credentials",
			mutate: func(c *Config) {
				c.Security.ProductionMode = true
				c.Security.ClearCredentialOnUnauthorized = false
			},
			wantValid: false,
		},
		{
			name: "production mode forbids short codes",
			mutate: func(c *Config) {
				c.Security.ProductionMode = true
				c.Verification.CodeLength = 4
			},
			wantValid: false,
		},
		{
			name: "production mode forbids rapid resend",
			mutate: func(c *Config) {
				c.Security.ProductionMode = true
				c.Verification.ResendCooldown = 10 * time.Second
			},
			wantValid: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantValid && err != nil {
				t.Fatalf("expected valid, got %v", err)
			}
			if !tt.wantValid && err == nil {
				t.Fatal("expected validation error, got nil")
			}
		})
	}
}

func TestDefaultConfigBaseline(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Verification.CodeLength != 6 {
		t.Fatalf("expected 6-digit codes, got %d", cfg.Verification.CodeLength)
	}
	if cfg.Verification.ResendCooldown != 60*time.Second {
		t.Fatalf("expected 60s resend cooldown, got %v", cfg.Verification.ResendCooldown)
	}
	if !cfg.Security.ClearCredentialOnUnauthorized {
		t.Fatal("expected rejected credentials dropped by default")
	}
	if cfg.Routes.Login != "/login" || cfg.Routes.VerifyEmail != "/verify-email" {
		t.Fatalf("unexpected default routes: %+v", cfg.Routes)
	}
	if cfg.Routes.FallbackHome != "/" || cfg.Routes.DefaultLanding != "/dashboard" {
		t.Fatalf("unexpected default homes: %+v", cfg.Routes)
	}
}
