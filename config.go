package goSession

import (
	"errors"
	"strings"
	"time"
)

// Config is the engine's full configuration. Start from [DefaultConfig],
// override what you need, and pass it to [Builder.WithConfig]. The builder
// copies it; the engine never reads it again after Build.
type Config struct {
	Platform     PlatformConfig
	Credential   CredentialConfig
	Verification VerificationConfig
	Routes       RoutesConfig
	Security     SecurityConfig
	Audit        AuditConfig
	Metrics      MetricsConfig
}

/*
====================================
PLATFORM CONFIG
====================================
*/

// PlatformConfig locates the platform's auth API.
type PlatformConfig struct {
	BaseURL         string
	RequestTimeout  time.Duration
	GoogleLoginPath string
}

/*
====================================
CREDENTIAL CONFIG
====================================
*/

// CredentialConfig shapes how bearer credentials are stored.
type CredentialConfig struct {
	StorageName       string
	RedisPrefix       string
	TTL               time.Duration // 0 keeps the credential until cleared
	SlidingExpiration bool
}

/*
====================================
VERIFICATION CONFIG
====================================
*/

// VerificationConfig shapes the email-verification challenge. PersistPending
// keeps the pending email and cooldown in Redis so a rebuilt engine resumes
// the challenge.
type VerificationConfig struct {
	CodeLength     int
	ResendCooldown time.Duration
	PersistPending bool
	PendingTTL     time.Duration
	RedisPrefix    string
}

/*
====================================
ROUTES CONFIG
====================================
*/

// RoutesConfig is the path table the route guard decides against. Every path
// must be absolute.
type RoutesConfig struct {
	Login          string
	JobSeekerHome  string
	EmployerHome   string
	AdminHome      string
	FallbackHome   string
	DefaultLanding string
	VerifyEmail    string
}

/*
====================================
SECURITY CONFIG
====================================
*/

// SecurityConfig holds posture toggles. ProductionMode tightens Validate's
// constraints; it changes no runtime behavior on its own.
type SecurityConfig struct {
	ClearCredentialOnUnauthorized bool
	ProductionMode                bool
}

// AuditConfig shapes the async audit dispatcher. With DropIfFull set, events
// are counted as dropped instead of blocking the calling operation.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig toggles the engine's counters and latency histograms.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

/*
====================================
DEFAULT CONFIG
====================================
*/

// DefaultConfig returns the baseline configuration: six-digit codes, a 60s
// resend cooldown, credential cleared on unauthorized, and the platform's
// standard route table. Platform.BaseURL is left empty and must be set.
func DefaultConfig() Config {
	return Config{
		Platform: PlatformConfig{
			RequestTimeout:  30 * time.Second,
			GoogleLoginPath: "/auth/google",
		},
		Credential: CredentialConfig{
			StorageName:       "auth_token",
			RedisPrefix:       "gsc",
			TTL:               0,
			SlidingExpiration: false,
		},
		Verification: VerificationConfig{
			CodeLength:     6,
			ResendCooldown: 60 * time.Second,
			PersistPending: false,
			PendingTTL:     15 * time.Minute,
			RedisPrefix:    "gsp",
		},
		Routes: RoutesConfig{
			Login:          "/login",
			JobSeekerHome:  "/dashboard",
			EmployerHome:   "/employer/dashboard",
			AdminHome:      "/admin/dashboard",
			FallbackHome:   "/",
			DefaultLanding: "/dashboard",
			VerifyEmail:    "/verify-email",
		},
		Security: SecurityConfig{
			ClearCredentialOnUnauthorized: true,
			ProductionMode:                false,
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 1024,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 false,
			EnableLatencyHistograms: false,
		},
	}
}

func cloneConfig(cfg Config) Config {
	// Every field is a value type, so assignment copies fully.
	return cfg
}

/*
====================================
VALIDATION
====================================
*/

// Validate checks the configuration for internal consistency. Build calls it;
// call it directly to fail fast when loading config from a file.
func (c *Config) Validate() error {
	// Platform
	if c.Platform.BaseURL == "" {
		return errors.New("Platform BaseURL is required")
	}
	if !strings.Contains(c.Platform.BaseURL, "://") {
		return errors.New("Platform BaseURL must include a scheme")
	}
	if c.Platform.RequestTimeout <= 0 {
		return errors.New("Platform RequestTimeout must be > 0")
	}
	if c.Platform.GoogleLoginPath != "" && !strings.HasPrefix(c.Platform.GoogleLoginPath, "/") {
		return errors.New("Platform GoogleLoginPath must start with /")
	}

	// Credential
	if c.Credential.StorageName == "" {
		return errors.New("Credential StorageName is required")
	}
	if c.Credential.TTL < 0 {
		return errors.New("Credential TTL must be >= 0")
	}
	if c.Credential.SlidingExpiration && c.Credential.TTL <= 0 {
		return errors.New("Credential SlidingExpiration requires TTL > 0")
	}

	// Verification
	if c.Verification.CodeLength < 4 || c.Verification.CodeLength > 10 {
		return errors.New("Verification CodeLength must be between 4 and 10")
	}
	if c.Verification.ResendCooldown <= 0 {
		return errors.New("Verification ResendCooldown must be > 0")
	}
	if c.Verification.PersistPending {
		if c.Verification.PendingTTL <= 0 {
			return errors.New("Verification PendingTTL must be > 0 when PersistPending is true")
		}
		if c.Verification.PendingTTL < c.Verification.ResendCooldown {
			return errors.New("Verification PendingTTL must be >= ResendCooldown")
		}
	}

	// Routes
	for _, route := range []struct {
		name string
		path string
	}{
		{"Login", c.Routes.Login},
		{"JobSeekerHome", c.Routes.JobSeekerHome},
		{"EmployerHome", c.Routes.EmployerHome},
		{"AdminHome", c.Routes.AdminHome},
		{"FallbackHome", c.Routes.FallbackHome},
		{"DefaultLanding", c.Routes.DefaultLanding},
		{"VerifyEmail", c.Routes.VerifyEmail},
	} {
		if route.path == "" {
			return errors.New("Routes " + route.name + " is required")
		}
		if !strings.HasPrefix(route.path, "/") {
			return errors.New("Routes " + route.name + " must start with /")
		}
	}

	// Audit
	if c.Audit.Enabled {
		if c.Audit.BufferSize <= 0 {
			return errors.New("Audit BufferSize must be > 0 when audit is enabled")
		}
	}

	if c.Security.ProductionMode {
		if !c.Security.ClearCredentialOnUnauthorized {
			return errors.New("ProductionMode requires ClearCredentialOnUnauthorized")
		}
		if c.Verification.CodeLength < 6 {
			return errors.New("ProductionMode requires Verification CodeLength >= 6")
		}
		if c.Verification.ResendCooldown < 30*time.Second {
			return errors.New("ProductionMode requires Verification ResendCooldown >= 30s")
		}
		if c.Verification.PersistPending && c.Verification.PendingTTL > time.Hour {
			return errors.New("ProductionMode requires Verification PendingTTL <= 1h")
		}
		if c.Credential.TTL > 30*24*time.Hour {
			return errors.New("ProductionMode requires Credential TTL <= 30d")
		}
	}

	return nil
}
