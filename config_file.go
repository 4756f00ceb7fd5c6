package goSession

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// fileConfig is the YAML schema for LoadConfigFile. Durations are plain
// seconds so operators never fight duration syntax. Booleans are pointers:
// an absent key keeps the default, which matters for flags that default on.
type fileConfig struct {
	Platform struct {
		BaseURL               string `yaml:"base_url"`
		RequestTimeoutSeconds int    `yaml:"request_timeout_seconds"`
		GoogleLoginPath       string `yaml:"google_login_path"`
	} `yaml:"platform"`

	Credential struct {
		StorageName       string `yaml:"storage_name"`
		RedisPrefix       string `yaml:"redis_prefix"`
		TTLSeconds        int    `yaml:"ttl_seconds"`
		SlidingExpiration *bool  `yaml:"sliding_expiration"`
	} `yaml:"credential"`

	Verification struct {
		CodeLength            int    `yaml:"code_length"`
		ResendCooldownSeconds int    `yaml:"resend_cooldown_seconds"`
		PersistPending        *bool  `yaml:"persist_pending"`
		PendingTTLSeconds     int    `yaml:"pending_ttl_seconds"`
		RedisPrefix           string `yaml:"redis_prefix"`
	} `yaml:"verification"`

	Routes struct {
		Login          string `yaml:"login"`
		JobSeekerHome  string `yaml:"job_seeker_home"`
		EmployerHome   string `yaml:"employer_home"`
		AdminHome      string `yaml:"admin_home"`
		FallbackHome   string `yaml:"fallback_home"`
		DefaultLanding string `yaml:"default_landing"`
		VerifyEmail    string `yaml:"verify_email"`
	} `yaml:"routes"`

	Security struct {
		ClearCredentialOnUnauthorized *bool `yaml:"clear_credential_on_unauthorized"`
		ProductionMode                *bool `yaml:"production_mode"`
	} `yaml:"security"`

	Audit struct {
		Enabled    *bool `yaml:"enabled"`
		BufferSize int   `yaml:"buffer_size"`
		DropIfFull *bool `yaml:"drop_if_full"`
	} `yaml:"audit"`

	Metrics struct {
		Enabled                 *bool `yaml:"enabled"`
		EnableLatencyHistograms *bool `yaml:"enable_latency_histograms"`
	} `yaml:"metrics"`
}

// LoadConfigFile reads a YAML file and overlays it onto DefaultConfig.
// Absent keys keep their defaults. The result is validated before return.
func LoadConfigFile(path string) (Config, error) {
	cfg := DefaultConfig()

	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}

	var file fileConfig
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return Config{}, fmt.Errorf("parse config file: %w", err)
	}

	applyString(&cfg.Platform.BaseURL, file.Platform.BaseURL)
	applySeconds(&cfg.Platform.RequestTimeout, file.Platform.RequestTimeoutSeconds)
	applyString(&cfg.Platform.GoogleLoginPath, file.Platform.GoogleLoginPath)

	applyString(&cfg.Credential.StorageName, file.Credential.StorageName)
	applyString(&cfg.Credential.RedisPrefix, file.Credential.RedisPrefix)
	applySeconds(&cfg.Credential.TTL, file.Credential.TTLSeconds)
	applyBool(&cfg.Credential.SlidingExpiration, file.Credential.SlidingExpiration)

	if file.Verification.CodeLength > 0 {
		cfg.Verification.CodeLength = file.Verification.CodeLength
	}
	applySeconds(&cfg.Verification.ResendCooldown, file.Verification.ResendCooldownSeconds)
	applyBool(&cfg.Verification.PersistPending, file.Verification.PersistPending)
	applySeconds(&cfg.Verification.PendingTTL, file.Verification.PendingTTLSeconds)
	applyString(&cfg.Verification.RedisPrefix, file.Verification.RedisPrefix)

	applyString(&cfg.Routes.Login, file.Routes.Login)
	applyString(&cfg.Routes.JobSeekerHome, file.Routes.JobSeekerHome)
	applyString(&cfg.Routes.EmployerHome, file.Routes.EmployerHome)
	applyString(&cfg.Routes.AdminHome, file.Routes.AdminHome)
	applyString(&cfg.Routes.FallbackHome, file.Routes.FallbackHome)
	applyString(&cfg.Routes.DefaultLanding, file.Routes.DefaultLanding)
	applyString(&cfg.Routes.VerifyEmail, file.Routes.VerifyEmail)

	applyBool(&cfg.Security.ClearCredentialOnUnauthorized, file.Security.ClearCredentialOnUnauthorized)
	applyBool(&cfg.Security.ProductionMode, file.Security.ProductionMode)

	applyBool(&cfg.Audit.Enabled, file.Audit.Enabled)
	if file.Audit.BufferSize > 0 {
		cfg.Audit.BufferSize = file.Audit.BufferSize
	}
	applyBool(&cfg.Audit.DropIfFull, file.Audit.DropIfFull)

	applyBool(&cfg.Metrics.Enabled, file.Metrics.Enabled)
	applyBool(&cfg.Metrics.EnableLatencyHistograms, file.Metrics.EnableLatencyHistograms)

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config file %s: %w", path, err)
	}

	return cfg, nil
}

func applyString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func applySeconds(dst *time.Duration, seconds int) {
	if seconds > 0 {
		*dst = time.Duration(seconds) * time.Second
	}
}

func applyBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}
